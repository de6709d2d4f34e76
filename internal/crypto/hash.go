package crypto

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/OneOfOne/xxhash"
	"golang.org/x/crypto/blake2b"
)

type Hash [HashSize]byte

func (h Hash) Hex() string {
	return "0x" + hex.EncodeToString(h[:])
}

// HashData hashes the input data using blake2b-256.
func HashData(data []byte) Hash {
	return blake2b.Sum256(data)
}

// Blake2b128 hashes the input data using blake2b with a 128-bit digest.
// This is the hash half of the Blake2_128Concat storage hasher.
func Blake2b128(data []byte) [Blake128Size]byte {
	h, err := blake2b.New(Blake128Size, nil)
	if err != nil {
		// blake2b only fails on invalid key material, and we pass none
		panic(err)
	}
	h.Write(data)
	var out [Blake128Size]byte
	copy(out[:], h.Sum(nil))
	return out
}

// Twox128 computes the non-cryptographic 128-bit hash Substrate uses for
// pallet and storage-item name prefixes: two xxhash64 runs over the same
// input with seeds 0 and 1, concatenated little-endian.
func Twox128(data []byte) [Twox128Size]byte {
	var out [Twox128Size]byte
	binary.LittleEndian.PutUint64(out[:8], xxhash.Checksum64S(data, 0))
	binary.LittleEndian.PutUint64(out[8:], xxhash.Checksum64S(data, 1))
	return out
}

// HashFromHex parses a 0x-prefixed 32-byte hex string.
func HashFromHex(s string) (Hash, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return Hash{}, err
	}
	if len(b) != HashSize {
		return Hash{}, fmt.Errorf("expected %d hash bytes, got %d", HashSize, len(b))
	}
	var h Hash
	copy(h[:], b)
	return h, nil
}
