package chain

import "time"

// Call-encoding constants are a verbatim contract with the chain runtime.
const (
	// SubtensorModuleIndex is the dispatch index of the SubtensorModule pallet.
	SubtensorModuleIndex = 8
	// RegisterCallIndex is the proof-of-work registration dispatchable.
	RegisterCallIndex = 0
	// BurnedRegisterCallIndex is the burned (fee-paying) registration dispatchable.
	BurnedRegisterCallIndex = 1

	// extrinsicVersionSigned marks a version-4 signed extrinsic envelope.
	extrinsicVersionSigned = 0x84

	// eraPeriod is the mortality window of submitted extrinsics, in blocks.
	eraPeriod = 64

	// signingPayloadHashThreshold is the payload size above which the chain
	// requires the signing payload to be pre-hashed.
	signingPayloadHashThreshold = 256
)

const (
	// RaoPerTao is the number of base units (rao) in one TAO.
	RaoPerTao uint64 = 1_000_000_000

	// BlockTime is the target block interval of the chain.
	BlockTime = 12 * time.Second
)

// DefaultEndpoint is the public finney entrypoint used when no node is
// configured explicitly.
const DefaultEndpoint = "wss://entrypoint-finney.opentensor.ai:443"
