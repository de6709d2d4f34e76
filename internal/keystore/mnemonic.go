package keystore

import (
	"crypto/sha512"
	"fmt"

	"github.com/tyler-smith/go-bip39"
	"golang.org/x/crypto/pbkdf2"

	"github.com/pirskij/bittensor-quick-register/internal/crypto"
)

// seedFromMnemonic derives the sr25519 mini secret from a BIP-39 phrase the
// substrate way: the PBKDF2 stretch runs over the phrase's entropy bytes,
// not over the phrase text as in BIP-39 proper.
func seedFromMnemonic(phrase, password string) ([]byte, error) {
	entropy, err := bip39.EntropyFromMnemonic(phrase)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSecret, err)
	}
	seed := pbkdf2.Key(entropy, []byte("mnemonic"+password), 2048, 64, sha512.New)
	return seed[:crypto.SeedSize], nil
}
