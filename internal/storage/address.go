// Package storage derives deterministic storage addresses for the chain's
// key-value state tree. An address is the concatenation of the twox-128
// hashes of the pallet and storage-item names, followed by the map-key
// components encoded under the item's declared hasher.
package storage

import (
	"encoding/hex"
	"fmt"

	"github.com/pirskij/bittensor-quick-register/internal/crypto"
	"github.com/pirskij/bittensor-quick-register/pkg/serialization/codec"
)

// Pallet and storage-item names are a verbatim contract with the chain's
// runtime metadata.
const (
	PalletSubtensor = "SubtensorModule"
	PalletSystem    = "System"

	ItemSubnetworkN          = "SubnetworkN"
	ItemTotalNetworks        = "TotalNetworks"
	ItemDifficulty           = "Difficulty"
	ItemTempo                = "Tempo"
	ItemImmunityPeriod       = "ImmunityPeriod"
	ItemMinAllowedWeights    = "MinAllowedWeights"
	ItemMaxWeightsLimit      = "MaxWeightsLimit"
	ItemMaxAllowedValidators = "MaxAllowedValidators"
	ItemMaxAllowedUids       = "MaxAllowedUids"
	ItemBurn                 = "Burn"
	ItemSubnetOwner          = "SubnetOwner"
	ItemNetworkModality      = "NetworkModality"
	ItemEmissionValues       = "EmissionValues"
	ItemRho                  = "Rho"
	ItemKappa                = "Kappa"
	ItemScalingLawPower      = "ScalingLawPower"
	ItemBlocksSinceLastStep  = "BlocksSinceLastStep"
	ItemUids                 = "Uids"
	ItemNeurons              = "Neurons"
	ItemAccount              = "Account"
)

// Hasher enumerates the key-hashing disciplines the chain declares per
// storage item. Using the wrong discipline yields an address the node
// reports as absent rather than an error, so the mapping is hard-coded
// below and never inferred from the key shape.
type Hasher uint8

const (
	// HasherPlain is a storage value with no map keys.
	HasherPlain Hasher = iota
	// HasherIdentity appends each key component's little-endian encoding raw.
	HasherIdentity
	// HasherBlake2b256 appends the blake2b-256 hash of the concatenated
	// key components (double-map items).
	HasherBlake2b256
	// HasherBlake2b128Concat appends, per component, its blake2b-128 hash
	// followed by the component itself (hash-then-concat).
	HasherBlake2b128Concat
)

// hasherTable is the per-item discipline, keyed by pallet then item name.
var hasherTable = map[string]map[string]Hasher{
	PalletSubtensor: {
		ItemSubnetworkN:          HasherIdentity,
		ItemTotalNetworks:        HasherPlain,
		ItemDifficulty:           HasherIdentity,
		ItemTempo:                HasherIdentity,
		ItemImmunityPeriod:       HasherIdentity,
		ItemMinAllowedWeights:    HasherIdentity,
		ItemMaxWeightsLimit:      HasherIdentity,
		ItemMaxAllowedValidators: HasherIdentity,
		ItemMaxAllowedUids:       HasherIdentity,
		ItemBurn:                 HasherIdentity,
		ItemSubnetOwner:          HasherIdentity,
		ItemNetworkModality:      HasherIdentity,
		ItemEmissionValues:       HasherIdentity,
		ItemRho:                  HasherIdentity,
		ItemKappa:                HasherIdentity,
		ItemScalingLawPower:      HasherIdentity,
		ItemBlocksSinceLastStep:  HasherIdentity,
		ItemUids:                 HasherBlake2b256,
		ItemNeurons:              HasherIdentity,
	},
	PalletSystem: {
		ItemAccount: HasherBlake2b128Concat,
	},
}

// DeriveKey computes the storage address for (pallet, item) and the given
// key components. It is a pure function: identical inputs always yield
// identical bytes.
func DeriveKey(pallet, item string, parts ...[]byte) ([]byte, error) {
	items, ok := hasherTable[pallet]
	if !ok {
		return nil, fmt.Errorf("%w: pallet %q", ErrUnknownStorageItem, pallet)
	}
	hasher, ok := items[item]
	if !ok {
		return nil, fmt.Errorf("%w: %s::%s", ErrUnknownStorageItem, pallet, item)
	}

	palletHash := crypto.Twox128([]byte(pallet))
	itemHash := crypto.Twox128([]byte(item))

	key := make([]byte, 0, 2*crypto.Twox128Size+crypto.HashSize)
	key = append(key, palletHash[:]...)
	key = append(key, itemHash[:]...)

	switch hasher {
	case HasherPlain:
		if len(parts) != 0 {
			return nil, fmt.Errorf("%s::%s is a plain value, got %d key components", pallet, item, len(parts))
		}
	case HasherIdentity:
		for _, part := range parts {
			key = append(key, part...)
		}
	case HasherBlake2b256:
		var composite []byte
		for _, part := range parts {
			composite = append(composite, part...)
		}
		hashed := crypto.HashData(composite)
		key = append(key, hashed[:]...)
	case HasherBlake2b128Concat:
		for _, part := range parts {
			hashed := crypto.Blake2b128(part)
			key = append(key, hashed[:]...)
			key = append(key, part...)
		}
	}
	return key, nil
}

// U16Part encodes a numeric key component the way map keys are serialized.
func U16Part(v uint16) []byte {
	tn := codec.TrivialNatural[uint16]{}
	return tn.Serialize(v, 2)
}

// AccountPart encodes an account-id key component.
func AccountPart(a crypto.AccountID) []byte {
	part := make([]byte, crypto.AccountIDSize)
	copy(part, a[:])
	return part
}

// HexAddress renders an address the way it travels on the wire.
func HexAddress(key []byte) string {
	return "0x" + hex.EncodeToString(key)
}
