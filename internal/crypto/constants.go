package crypto

const (
	HashSize      = 32
	AccountIDSize = 32
	SignatureSize = 64
	SeedSize      = 32
	Twox128Size   = 16
	Blake128Size  = 16
)

// SS58Prefix is the generic Substrate network prefix the chain uses for
// human-readable addresses.
const SS58Prefix = 42
