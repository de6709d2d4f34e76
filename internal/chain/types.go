package chain

import (
	"github.com/ChainSafe/gossamer/pkg/scale"
	"github.com/holiman/uint256"

	"github.com/pirskij/bittensor-quick-register/internal/crypto"
)

// SubnetSnapshot is a read-only aggregate of per-subnet chain parameters,
// assembled field by field at a single logical point in time.
type SubnetSnapshot struct {
	NetUID uint16

	Difficulty           *uint256.Int
	Tempo                uint16
	ImmunityPeriod       uint16
	MinAllowedWeights    uint16
	MaxWeightsLimit      uint16
	MaxAllowedValidators uint16
	MaxAllowedUIDs       uint16
	NeuronCount          uint16
	Burn                 uint64
	Owner                crypto.AccountID
	Modality             uint16
	EmissionValue        uint64
	Rho                  uint16
	Kappa                uint16
	ScalingLawPower      uint16
	BlocksSinceLastStep  uint64

	// CurrentBlock is the chain height observed while the snapshot was read.
	CurrentBlock uint64
}

// RegistrationOpen reports whether the subnet still has capacity for new
// neurons.
func (s *SubnetSnapshot) RegistrationOpen() bool {
	return s.NeuronCount < s.MaxAllowedUIDs
}

// StakeEntry is one (account, amount) pair in a neuron's stake list.
type StakeEntry struct {
	Account crypto.AccountID
	Amount  uint64
}

// WeightEntry is one (uid, weight) pair a neuron assigns to a peer.
type WeightEntry struct {
	UID    uint16
	Weight uint16
}

// BondEntry is one (uid, bond) pair a neuron holds against a peer.
type BondEntry struct {
	UID  uint16
	Bond uint16
}

// NeuronRecord describes one registered participant in a subnet.
//
// Only the identity fields are populated from chain state today. Full
// structural decoding of the on-chain neuron type needs the authoritative
// runtime layout; until then the scoring fields, stake, weights and bonds
// stay at their zero values and RawSize carries the undecoded record length
// for diagnostics.
type NeuronRecord struct {
	Hotkey  crypto.AccountID
	Coldkey crypto.AccountID
	UID     uint16
	NetUID  uint16
	Active  bool

	Stake           []StakeEntry
	Rank            uint16
	Trust           uint16
	Consensus       uint16
	Incentive       uint16
	Dividends       uint16
	Emission        uint64
	LastUpdate      uint64
	ValidatorPermit bool
	Weights         []WeightEntry
	Bonds           []BondEntry
	PruningScore    uint16

	RawSize int
}

// AccountData is the balance breakdown of an account record, in the chain's
// canonical field order.
type AccountData struct {
	Free     *scale.Uint128
	Reserved *scale.Uint128
	Frozen   *scale.Uint128
	Flags    *scale.Uint128
}

// AccountRecord is the full System::Account value: the transaction nonce,
// reference counters and the balance breakdown.
type AccountRecord struct {
	Nonce       uint32
	Consumers   uint32
	Providers   uint32
	Sufficients uint32
	Data        AccountData
}

// FreeBalance returns the spendable balance in base units. Balances beyond
// the 64-bit range do not occur with the chain's issuance, so the lower half
// of the 128-bit field is authoritative.
func (r AccountRecord) FreeBalance() uint64 {
	if r.Data.Free == nil {
		return 0
	}
	return r.Data.Free.Lower
}

// RegistrationRequest carries everything a burned registration commits to.
// The block number is the height observed when the request was formed.
type RegistrationRequest struct {
	NetUID      uint16
	Hotkey      crypto.AccountID
	Coldkey     crypto.AccountID
	BurnAmount  uint64
	BlockNumber uint64
}
