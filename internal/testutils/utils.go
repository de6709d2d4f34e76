package testutils

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pirskij/bittensor-quick-register/internal/crypto"
)

func RandomHash(t *testing.T) crypto.Hash {
	var hash crypto.Hash
	_, err := rand.Read(hash[:])
	require.NoError(t, err)
	return hash
}

func RandomAccountID(t *testing.T) crypto.AccountID {
	var account crypto.AccountID
	_, err := rand.Read(account[:])
	require.NoError(t, err)
	return account
}

func RandomSeed(t *testing.T) []byte {
	seed := make([]byte, crypto.SeedSize)
	_, err := rand.Read(seed)
	require.NoError(t, err)
	return seed
}
