package crypto

import (
	"errors"

	"github.com/btcsuite/btcutil/base58"
	"golang.org/x/crypto/blake2b"
)

// ss58ChecksumPreimage is prepended to the payload before hashing the
// checksum, per the SS58 address specification.
var ss58ChecksumPreimage = []byte("SS58PRE")

var (
	ErrInvalidSS58Address  = errors.New("invalid ss58 address")
	ErrInvalidSS58Checksum = errors.New("invalid ss58 checksum")
	ErrWrongSS58Prefix     = errors.New("ss58 address has unexpected network prefix")
)

// SS58 renders the account id as a checksummed base58 address with the
// chain's network prefix.
func (a AccountID) SS58() string {
	payload := make([]byte, 0, 1+AccountIDSize+2)
	payload = append(payload, SS58Prefix)
	payload = append(payload, a[:]...)
	checksum := ss58Checksum(payload)
	payload = append(payload, checksum[:2]...)
	return base58.Encode(payload)
}

// AccountIDFromSS58 parses a checksummed SS58 address back into a raw
// 32-byte account id.
func AccountIDFromSS58(address string) (AccountID, error) {
	decoded := base58.Decode(address)
	if len(decoded) != 1+AccountIDSize+2 {
		return AccountID{}, ErrInvalidSS58Address
	}
	if decoded[0] != SS58Prefix {
		return AccountID{}, ErrWrongSS58Prefix
	}
	body := decoded[:1+AccountIDSize]
	checksum := ss58Checksum(body)
	if decoded[1+AccountIDSize] != checksum[0] || decoded[2+AccountIDSize] != checksum[1] {
		return AccountID{}, ErrInvalidSS58Checksum
	}
	var a AccountID
	copy(a[:], body[1:])
	return a, nil
}

func ss58Checksum(payload []byte) [blake2b.Size]byte {
	return blake2b.Sum512(append(ss58ChecksumPreimage, payload...))
}
