package chain

import (
	"encoding/binary"

	"github.com/ChainSafe/gossamer/pkg/scale"
	"github.com/holiman/uint256"

	"github.com/pirskij/bittensor-quick-register/internal/crypto"
	"github.com/pirskij/bittensor-quick-register/pkg/serialization/codec"
)

// Scalar decoders default to zero on short input instead of erroring.
// Present-vs-default distinction is made at the read step, where absence is
// an explicit optional, never here.

var scaleCodec = &codec.SCALECodec{}

func decodeU16(raw []byte) uint16 {
	if len(raw) < 2 {
		return 0
	}
	return binary.LittleEndian.Uint16(raw)
}

func decodeU64(raw []byte) uint64 {
	if len(raw) < 8 {
		return 0
	}
	return binary.LittleEndian.Uint64(raw)
}

// decodeU256 interprets 32 little-endian bytes as an unsigned 256-bit value.
func decodeU256(raw []byte) *uint256.Int {
	if len(raw) < 32 {
		return uint256.NewInt(0)
	}
	be := make([]byte, 32)
	for i := 0; i < 32; i++ {
		be[i] = raw[31-i]
	}
	return new(uint256.Int).SetBytes(be)
}

func decodeAccountID(raw []byte) crypto.AccountID {
	var account crypto.AccountID
	if len(raw) < crypto.AccountIDSize {
		return account
	}
	copy(account[:], raw[:crypto.AccountIDSize])
	return account
}

// minFallbackAccountLen is the smallest raw size the fixed-offset account
// layout can be parsed from: four u32 counters plus a u128 free balance,
// a u128 reserved balance and a u64 frozen balance.
const minFallbackAccountLen = 56

// decodeAccountRecord decodes a System::Account value. The canonical typed
// decode is attempted first; when it fails (the on-chain layout has drifted
// across runtime upgrades more than once) a fixed-offset parse takes over.
// Fewer than 56 bytes decode to an all-zero record.
func decodeAccountRecord(raw []byte) AccountRecord {
	var rec AccountRecord
	if err := scaleCodec.Unmarshal(raw, &rec); err == nil {
		return rec
	}

	rec = AccountRecord{Data: AccountData{
		Free:     &scale.Uint128{},
		Reserved: &scale.Uint128{},
		Frozen:   &scale.Uint128{},
		Flags:    &scale.Uint128{},
	}}
	if len(raw) < minFallbackAccountLen {
		return rec
	}

	rec.Nonce = binary.LittleEndian.Uint32(raw[0:4])
	rec.Consumers = binary.LittleEndian.Uint32(raw[4:8])
	rec.Providers = binary.LittleEndian.Uint32(raw[8:12])
	rec.Sufficients = binary.LittleEndian.Uint32(raw[12:16])
	rec.Data.Free = u128FromLE(raw[16:32])
	if len(raw) >= 48 {
		rec.Data.Reserved = u128FromLE(raw[32:48])
	}
	if len(raw) >= minFallbackAccountLen {
		// Frozen is a u64 in this layout, widened to 128 bits.
		rec.Data.Frozen = &scale.Uint128{Lower: binary.LittleEndian.Uint64(raw[48:56])}
	}
	return rec
}

func u128FromLE(b []byte) *scale.Uint128 {
	return &scale.Uint128{
		Lower: binary.LittleEndian.Uint64(b[0:8]),
		Upper: binary.LittleEndian.Uint64(b[8:16]),
	}
}
