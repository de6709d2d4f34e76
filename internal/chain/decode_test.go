package chain

import (
	"encoding/binary"
	"testing"

	"github.com/ChainSafe/gossamer/pkg/scale"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeScalarsDefaultToZero(t *testing.T) {
	assert.Equal(t, uint16(0), decodeU16(nil))
	assert.Equal(t, uint16(0), decodeU16([]byte{0x01}))
	assert.Equal(t, uint16(513), decodeU16([]byte{0x01, 0x02}))

	assert.Equal(t, uint64(0), decodeU64([]byte{1, 2, 3}))
	assert.Equal(t, uint64(1), decodeU64([]byte{1, 0, 0, 0, 0, 0, 0, 0}))
}

func TestDecodeU256(t *testing.T) {
	assert.True(t, decodeU256(nil).IsZero())
	assert.True(t, decodeU256([]byte{0xff}).IsZero())

	// 0x0100...00 little-endian is one.
	raw := make([]byte, 32)
	raw[0] = 0x01
	assert.Equal(t, uint64(1), decodeU256(raw).Uint64())

	// The top little-endian byte lands in the most significant position.
	raw = make([]byte, 32)
	raw[31] = 0x01
	v := decodeU256(raw)
	assert.Equal(t, 249, v.BitLen())
}

func TestDecodeAccountRecordCanonical(t *testing.T) {
	src := AccountRecord{
		Nonce:       7,
		Consumers:   1,
		Providers:   1,
		Sufficients: 0,
		Data: AccountData{
			Free:     &scale.Uint128{Lower: 5 * RaoPerTao},
			Reserved: &scale.Uint128{Lower: 42},
			Frozen:   &scale.Uint128{},
			Flags:    &scale.Uint128{},
		},
	}
	raw, err := scaleCodec.Marshal(src)
	require.NoError(t, err)

	rec := decodeAccountRecord(raw)
	assert.Equal(t, uint32(7), rec.Nonce)
	assert.Equal(t, 5*RaoPerTao, rec.FreeBalance())
	assert.Equal(t, uint64(42), rec.Data.Reserved.Lower)
}

func TestDecodeAccountRecordFallback(t *testing.T) {
	// 56 bytes cannot decode canonically, so the fixed-offset layout is
	// used: four u32 counters, u128 free, u128 reserved, u64 frozen.
	raw := make([]byte, 56)
	binary.LittleEndian.PutUint32(raw[0:4], 3) // nonce
	binary.LittleEndian.PutUint64(raw[16:24], 10_000_000_000)

	rec := decodeAccountRecord(raw)
	assert.Equal(t, uint32(3), rec.Nonce)
	assert.Equal(t, uint64(10_000_000_000), rec.FreeBalance())
	assert.Equal(t, uint64(0), rec.Data.Reserved.Lower)
	assert.Equal(t, uint64(0), rec.Data.Frozen.Lower)
}

func TestDecodeAccountRecordFallbackAllFields(t *testing.T) {
	raw := make([]byte, 56)
	binary.LittleEndian.PutUint32(raw[0:4], 9)   // nonce
	binary.LittleEndian.PutUint32(raw[4:8], 1)   // consumers
	binary.LittleEndian.PutUint32(raw[8:12], 2)  // providers
	binary.LittleEndian.PutUint32(raw[12:16], 3) // sufficients
	binary.LittleEndian.PutUint64(raw[16:24], 100)
	binary.LittleEndian.PutUint64(raw[32:40], 200)
	binary.LittleEndian.PutUint64(raw[48:56], 300)

	rec := decodeAccountRecord(raw)
	assert.Equal(t, uint32(9), rec.Nonce)
	assert.Equal(t, uint32(1), rec.Consumers)
	assert.Equal(t, uint32(2), rec.Providers)
	assert.Equal(t, uint32(3), rec.Sufficients)
	assert.Equal(t, uint64(100), rec.Data.Free.Lower)
	assert.Equal(t, uint64(200), rec.Data.Reserved.Lower)
	assert.Equal(t, uint64(300), rec.Data.Frozen.Lower)
	assert.Equal(t, uint64(0), rec.Data.Flags.Lower)
}

func TestDecodeAccountRecordTooShort(t *testing.T) {
	rec := decodeAccountRecord(make([]byte, 55))
	assert.Equal(t, uint32(0), rec.Nonce)
	assert.Equal(t, uint64(0), rec.FreeBalance())
}
