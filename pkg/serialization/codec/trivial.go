package codec

import "math"

// TrivialNatural implements the trivial little-endian integer encoding of a
// fixed byte width. Storage-map key components and signed-extra fields use it.
type TrivialNatural[T uint8 | uint16 | uint32 | uint64] struct{}

// Serialize serializes x into exactly l little-endian bytes.
func (j *TrivialNatural[T]) Serialize(x T, l uint8) []byte {
	bytes := make([]byte, 0, l)
	for i := uint8(0); i < l; i++ {
		byteVal := byte((x >> (8 * i)) & T(math.MaxUint8))
		bytes = append(bytes, byteVal)
	}
	return bytes
}

// Deserialize reads little-endian bytes into the provided unsigned integer.
// Inputs shorter than the type width decode the bytes that are present.
func (j *TrivialNatural[T]) Deserialize(serialized []byte, u *T) {
	*u = 0
	for i := 0; i < len(serialized); i++ {
		*u |= T(serialized[i]) << (8 * i)
	}
}
