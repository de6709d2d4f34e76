// Package keystore turns the account notations users hand the CLI into
// signing key pairs and account ids: secret URIs ("//Alice", a mnemonic, a
// 0x hex seed, each with optional hard-derivation junctions), JSON key
// files, and SS58 addresses.
package keystore

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/pirskij/bittensor-quick-register/internal/crypto"
)

// devPhrase is the well-known development mnemonic that dev URIs like
// "//Alice" derive from.
const devPhrase = "bottom drive obey lake curtain smoke basket hold race lonely fit walk"

// keyFile mirrors the JSON layout subkey and wallet exports use. Both the
// camel-case and the short field names occur in the wild.
type keyFile struct {
	SecretSeed   string `json:"secretSeed"`
	Seed         string `json:"seed"`
	SecretPhrase string `json:"secretPhrase"`
	Phrase       string `json:"phrase"`
}

func (f keyFile) secret() (string, error) {
	for _, s := range []string{f.SecretSeed, f.Seed, f.SecretPhrase, f.Phrase} {
		if s != "" {
			return s, nil
		}
	}
	return "", ErrMissingKeyMaterial
}

// KeypairFromSecret derives a key pair from a secret URI: an optional base
// secret (mnemonic phrase or 0x-prefixed hex seed; empty means the
// development phrase) followed by zero or more "//hard" junctions.
func KeypairFromSecret(secret string) (*crypto.Keypair, error) {
	phrase, junctions, err := splitSecretURI(secret)
	if err != nil {
		return nil, err
	}

	seed, err := seedFromPhrase(phrase)
	if err != nil {
		return nil, err
	}
	return crypto.NewKeypairFromSeedPath(seed, junctions...)
}

// splitSecretURI separates the base secret from its derivation junctions.
func splitSecretURI(secret string) (phrase string, junctions []string, err error) {
	parts := strings.Split(secret, "//")
	phrase = parts[0]
	if phrase == "" {
		phrase = devPhrase
	}
	if strings.Contains(phrase, "/") {
		return "", nil, ErrSoftJunction
	}
	for _, junction := range parts[1:] {
		if strings.Contains(junction, "/") {
			return "", nil, ErrSoftJunction
		}
		junctions = append(junctions, junction)
	}
	return phrase, junctions, nil
}

func seedFromPhrase(phrase string) ([]byte, error) {
	phrase = strings.TrimSpace(phrase)
	if strings.HasPrefix(phrase, "0x") {
		seed, err := hex.DecodeString(strings.TrimPrefix(phrase, "0x"))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSecret, err)
		}
		return seed, nil
	}
	return seedFromMnemonic(phrase, "")
}

// LoadKeypair resolves the CLI's key argument: a dev URI, a path to a key
// file (JSON or a bare secret), or the secret itself.
func LoadKeypair(pathOrSecret string) (*crypto.Keypair, error) {
	if strings.HasPrefix(pathOrSecret, "//") {
		return KeypairFromSecret(pathOrSecret)
	}

	if _, err := os.Stat(pathOrSecret); err == nil {
		contents, err := os.ReadFile(pathOrSecret)
		if err != nil {
			return nil, fmt.Errorf("reading key file %s: %w", pathOrSecret, err)
		}
		return keypairFromFileContents(string(contents))
	}

	return KeypairFromSecret(pathOrSecret)
}

func keypairFromFileContents(contents string) (*crypto.Keypair, error) {
	trimmed := strings.TrimSpace(contents)
	if !strings.HasPrefix(trimmed, "{") {
		return KeypairFromSecret(trimmed)
	}

	var file keyFile
	if err := json.Unmarshal([]byte(trimmed), &file); err != nil {
		return nil, fmt.Errorf("parsing key file: %w", err)
	}
	secret, err := file.secret()
	if err != nil {
		return nil, err
	}
	return KeypairFromSecret(secret)
}

// AccountIDFromString resolves any account notation to a 32-byte account
// id: a dev URI, a key-file path, an SS58 address, or a raw secret.
func AccountIDFromString(account string) (crypto.AccountID, error) {
	switch {
	case account == "":
		return crypto.AccountID{}, ErrEmptyAccount

	case strings.HasPrefix(account, "//"):
		kp, err := KeypairFromSecret(account)
		if err != nil {
			return crypto.AccountID{}, err
		}
		return kp.AccountID(), nil

	case fileExists(account):
		kp, err := LoadKeypair(account)
		if err != nil {
			return crypto.AccountID{}, err
		}
		return kp.AccountID(), nil

	case looksLikeSS58(account):
		return crypto.AccountIDFromSS58(account)

	default:
		kp, err := KeypairFromSecret(account)
		if err != nil {
			return crypto.AccountID{}, err
		}
		return kp.AccountID(), nil
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// looksLikeSS58 matches the shape of an address under the generic prefix:
// 48 alphanumeric characters. Checksum validation happens during decoding.
func looksLikeSS58(account string) bool {
	if len(account) != 48 {
		return false
	}
	for _, c := range account {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		default:
			return false
		}
	}
	return true
}
