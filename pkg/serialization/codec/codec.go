// Package codec implements the chain's canonical binary encodings: SCALE for
// composite structures and the trivial little-endian encoding for fixed-width
// naturals used inside storage keys and call parameters.
package codec

// Codec is the encoding surface the protocol layer depends on.
type Codec interface {
	Marshal(v interface{}) ([]byte, error)
	Unmarshal(data []byte, v interface{}) error
}
