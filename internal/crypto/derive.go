package crypto

import (
	"fmt"

	"github.com/ChainSafe/go-schnorrkel"
	"github.com/ChainSafe/gossamer/pkg/scale"
)

// NewKeypairFromSeedPath expands a mini secret and applies hard derivation
// junctions in order, the way secret URIs like "//Alice" derive from the
// development phrase. Soft junctions are not supported.
func NewKeypairFromSeedPath(seed []byte, junctions ...string) (*Keypair, error) {
	if len(seed) != SeedSize {
		return nil, ErrInvalidSeedLength
	}
	var raw [SeedSize]byte
	copy(raw[:], seed)

	mini, err := schnorrkel.NewMiniSecretKeyFromRaw(raw)
	if err != nil {
		return nil, fmt.Errorf("expanding mini secret: %w", err)
	}
	for _, junction := range junctions {
		cc, err := junctionChainCode(junction)
		if err != nil {
			return nil, fmt.Errorf("junction %q: %w", junction, err)
		}
		mini, _, err = mini.HardDeriveMiniSecretKey(nil, cc)
		if err != nil {
			return nil, fmt.Errorf("hard derivation at %q: %w", junction, err)
		}
	}
	return newKeypairFromMiniSecret(mini)
}

// junctionChainCode builds the 32-byte chain code for a path junction: the
// SCALE encoding of the junction text, hashed when it does not fit.
func junctionChainCode(junction string) ([32]byte, error) {
	var cc [32]byte
	encoded, err := scale.Marshal(junction)
	if err != nil {
		return cc, err
	}
	if len(encoded) > len(cc) {
		return HashData(encoded), nil
	}
	copy(cc[:], encoded)
	return cc, nil
}
