package chain

import "errors"

var (
	// ErrSubnetNotFound is returned when a subnet's defining neuron-count
	// field is absent or zero.
	ErrSubnetNotFound = errors.New("chain: subnet not found")

	// ErrNeuronDataMissing signals that a UID exists for a hotkey but the
	// neuron record behind it is absent. That is a chain inconsistency or a
	// race with block production, not a client bug.
	ErrNeuronDataMissing = errors.New("chain: neuron data missing")

	// ErrInsufficientBalance is returned by pre-submission balance checks.
	// A registration failing this check is never submitted.
	ErrInsufficientBalance = errors.New("chain: insufficient balance")
)
