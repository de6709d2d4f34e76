// Package registrar orchestrates the user-facing workflows: registration
// with pre-flight checks, status reporting, cost estimation, monitoring and
// batch execution. All chain access goes through the ChainClient interface
// so the flows are testable without a node.
package registrar

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/pirskij/bittensor-quick-register/internal/chain"
	"github.com/pirskij/bittensor-quick-register/internal/crypto"
	"github.com/pirskij/bittensor-quick-register/internal/format"
	"github.com/pirskij/bittensor-quick-register/internal/keystore"
	"github.com/pirskij/bittensor-quick-register/internal/store"
	"github.com/pirskij/bittensor-quick-register/pkg/log"
)

const (
	verifyAttempts = 5
	retryDelay     = 30 * time.Second
	batchDelay     = 5 * time.Second
)

// ChainClient is the protocol surface the workflows need. Satisfied by
// *chain.Client.
type ChainClient interface {
	GetSubnetInfo(ctx context.Context, netuid uint16) (*chain.SubnetSnapshot, error)
	CheckRegistration(ctx context.Context, netuid uint16, hotkey crypto.AccountID) (*chain.NeuronRecord, error)
	GetAccountBalance(ctx context.Context, account crypto.AccountID) (uint64, error)
	SubmitBurnedRegistration(ctx context.Context, req chain.RegistrationRequest, signer *crypto.Keypair) (crypto.Hash, error)
	CurrentBlock(ctx context.Context) (uint64, error)
}

// History records accepted submissions. Satisfied by *store.Store.
type History interface {
	Add(rec store.Record) error
}

// Registrar drives the registration workflows over one chain client.
type Registrar struct {
	client  ChainClient
	history History
	out     io.Writer
	sleep   func(ctx context.Context, d time.Duration) error
	log     zerolog.Logger
}

type Option func(*Registrar)

// WithHistory persists every accepted submission.
func WithHistory(h History) Option {
	return func(r *Registrar) { r.history = h }
}

// WithOutput redirects console output, which goes to stdout by default.
func WithOutput(w io.Writer) Option {
	return func(r *Registrar) { r.out = w }
}

func New(client ChainClient, opts ...Option) *Registrar {
	r := &Registrar{
		client: client,
		out:    os.Stdout,
		sleep:  sleepCtx,
		log:    log.Registrar,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (r *Registrar) printf(msg string, args ...interface{}) {
	fmt.Fprintf(r.out, msg+"\n", args...)
}

// RegisterToSubnet runs the full registration flow: load keys, skip if the
// hotkey is already registered, pre-check the balance, submit the burned
// registration and poll until the chain confirms it. A zero burnOverride
// uses the subnet's current burn cost.
func (r *Registrar) RegisterToSubnet(ctx context.Context, netuid uint16, wallet, hotkey string, burnOverride uint64) error {
	r.printf("Starting registration for subnet %d", netuid)

	coldkeyPair, err := keystore.LoadKeypair(wallet)
	if err != nil {
		return fmt.Errorf("loading wallet coldkey: %w", err)
	}
	hotkeyAccount, err := keystore.AccountIDFromString(hotkey)
	if err != nil {
		return fmt.Errorf("loading hotkey: %w", err)
	}
	coldkeyAccount := coldkeyPair.AccountID()

	r.printf("Keys loaded:")
	r.printf("  coldkey: %s", coldkeyAccount.SS58())
	r.printf("  hotkey:  %s", hotkeyAccount.SS58())

	neuron, err := r.client.CheckRegistration(ctx, netuid, hotkeyAccount)
	if err != nil {
		return err
	}
	if neuron != nil {
		r.printf("Already registered in subnet %d with UID %d", netuid, neuron.UID)
		return nil
	}

	snapshot, err := r.client.GetSubnetInfo(ctx, netuid)
	if err != nil {
		return err
	}

	block, err := r.client.CurrentBlock(ctx)
	if err != nil {
		return err
	}
	r.printf("Current block: %d", block)

	burn := burnOverride
	if burn == 0 {
		burn = snapshot.Burn
	}

	req, err := r.prepareBurnRegistration(ctx, netuid, hotkeyAccount, coldkeyAccount, block, burn)
	if err != nil {
		return err
	}

	txHash, err := r.client.SubmitBurnedRegistration(ctx, req, coldkeyPair)
	if err != nil {
		return err
	}

	r.printf("Registration submitted")
	r.printf("  transaction: %s", txHash.Hex())
	r.printf("  subnet:      %d", netuid)
	r.printf("  hotkey:      %s", hotkeyAccount.SS58())

	if r.history != nil {
		rec := store.Record{
			NetUID:      netuid,
			Hotkey:      hotkeyAccount,
			Coldkey:     coldkeyAccount,
			Burn:        burn,
			Block:       block,
			TxHash:      txHash,
			SubmittedAt: uint64(time.Now().Unix()),
		}
		if err := r.history.Add(rec); err != nil {
			r.log.Warn().Err(err).Msg("recording registration history failed")
		}
	}

	return r.verifyRegistration(ctx, netuid, hotkeyAccount)
}

// prepareBurnRegistration checks the coldkey can afford the burn and builds
// the request. A failed check is terminal and nothing is submitted.
func (r *Registrar) prepareBurnRegistration(ctx context.Context, netuid uint16, hotkey, coldkey crypto.AccountID, block, burn uint64) (chain.RegistrationRequest, error) {
	r.printf("Preparing burn registration, cost %s", format.TAO(burn))

	balance, err := r.client.GetAccountBalance(ctx, coldkey)
	if err != nil {
		return chain.RegistrationRequest{}, err
	}
	if balance < burn {
		return chain.RegistrationRequest{}, fmt.Errorf("%w: required %s, available %s",
			chain.ErrInsufficientBalance, format.TAO(burn), format.TAO(balance))
	}
	r.printf("Sufficient balance confirmed: %s", format.TAO(balance))

	return chain.RegistrationRequest{
		NetUID:      netuid,
		Hotkey:      hotkey,
		Coldkey:     coldkey,
		BurnAmount:  burn,
		BlockNumber: block,
	}, nil
}

// verifyRegistration polls until the hotkey shows up registered, waiting a
// block interval between attempts. Running out of attempts is not an error:
// the extrinsic may still be in flight.
func (r *Registrar) verifyRegistration(ctx context.Context, netuid uint16, hotkey crypto.AccountID) error {
	r.printf("Verifying registration...")

	for attempt := 1; attempt <= verifyAttempts; attempt++ {
		r.printf("  attempt %d/%d", attempt, verifyAttempts)
		if err := r.sleep(ctx, chain.BlockTime); err != nil {
			return err
		}

		neuron, err := r.client.CheckRegistration(ctx, netuid, hotkey)
		if err != nil {
			return err
		}
		if neuron != nil {
			r.printf("Registration verified, assigned UID %d", neuron.UID)
			return nil
		}
	}

	r.printf("Registration may still be processing; check status manually in a few minutes")
	return nil
}

// AutoRegister retries the registration flow until it succeeds or the
// attempts run out.
func (r *Registrar) AutoRegister(ctx context.Context, netuid uint16, wallet, hotkey string, maxRetries int) error {
	r.printf("Auto registration with up to %d attempts", maxRetries)

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		r.printf("Registration attempt %d/%d", attempt, maxRetries)

		lastErr = r.RegisterToSubnet(ctx, netuid, wallet, hotkey, 0)
		if lastErr == nil {
			r.printf("Registration successful on attempt %d", attempt)
			return nil
		}
		if errors.Is(lastErr, context.Canceled) || errors.Is(lastErr, context.DeadlineExceeded) {
			return lastErr
		}

		r.printf("Attempt %d failed: %v", attempt, lastErr)
		if attempt < maxRetries {
			r.printf("Waiting %s before retry", retryDelay)
			if err := r.sleep(ctx, retryDelay); err != nil {
				return err
			}
		}
	}
	return fmt.Errorf("%w: last error: %v", ErrAllAttemptsFailed, lastErr)
}
