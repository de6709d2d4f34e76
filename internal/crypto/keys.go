package crypto

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/ChainSafe/go-schnorrkel"
)

// signingContext is the transcript label every Substrate chain uses for
// sr25519 extrinsic signatures.
var signingContext = []byte("substrate")

var ErrInvalidSeedLength = errors.New("sr25519 seed must be 32 bytes")

// AccountID is the 32-byte public-key-derived identifier for an on-chain
// account. Equality is byte equality.
type AccountID [AccountIDSize]byte

func (a AccountID) IsZero() bool {
	return a == AccountID{}
}

func (a AccountID) Hex() string {
	return "0x" + hex.EncodeToString(a[:])
}

type Signature [SignatureSize]byte

// Keypair is an sr25519 key pair able to sign extrinsic payloads.
type Keypair struct {
	secret    *schnorrkel.SecretKey
	accountID AccountID
}

// NewKeypairFromSeed expands a 32-byte mini secret into a signing key pair.
func NewKeypairFromSeed(seed []byte) (*Keypair, error) {
	if len(seed) != SeedSize {
		return nil, ErrInvalidSeedLength
	}
	var raw [SeedSize]byte
	copy(raw[:], seed)

	mini, err := schnorrkel.NewMiniSecretKeyFromRaw(raw)
	if err != nil {
		return nil, fmt.Errorf("expanding mini secret: %w", err)
	}
	return newKeypairFromMiniSecret(mini)
}

func newKeypairFromMiniSecret(mini *schnorrkel.MiniSecretKey) (*Keypair, error) {
	return &Keypair{
		secret:    mini.ExpandEd25519(),
		accountID: AccountID(mini.Public().Encode()),
	}, nil
}

// AccountID returns the public key of the pair as an on-chain account id.
func (kp *Keypair) AccountID() AccountID {
	return kp.accountID
}

// Sign signs msg under the substrate signing context. The scheme is
// randomized, so two signatures over the same message differ while both
// verify.
func (kp *Keypair) Sign(msg []byte) (Signature, error) {
	t := schnorrkel.NewSigningContext(signingContext, msg)
	sig, err := kp.secret.Sign(t)
	if err != nil {
		return Signature{}, err
	}
	return sig.Encode(), nil
}

// VerifySignature checks an sr25519 signature made by the account's key over
// msg under the substrate signing context.
func VerifySignature(account AccountID, sig Signature, msg []byte) (bool, error) {
	pub := &schnorrkel.PublicKey{}
	if err := pub.Decode([AccountIDSize]byte(account)); err != nil {
		return false, err
	}
	s := &schnorrkel.Signature{}
	if err := s.Decode([SignatureSize]byte(sig)); err != nil {
		return false, err
	}
	return pub.Verify(s, schnorrkel.NewSigningContext(signingContext, msg))
}
