package keystore

import "errors"

var (
	ErrEmptyAccount       = errors.New("keystore: empty account string")
	ErrMissingKeyMaterial = errors.New("keystore: key file carries neither a secret seed nor a secret phrase")
	ErrSoftJunction       = errors.New("keystore: soft derivation junctions are not supported")
	ErrInvalidSecret      = errors.New("keystore: secret is neither a hex seed nor a mnemonic phrase")
)
