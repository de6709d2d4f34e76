// Package chain is the protocol layer of the client: typed reads of chain
// state, decoding of raw storage bytes and construction of signed extrinsics,
// all over a single JSON-RPC connection.
package chain

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pirskij/bittensor-quick-register/internal/chainrpc"
	"github.com/pirskij/bittensor-quick-register/internal/crypto"
	"github.com/pirskij/bittensor-quick-register/internal/storage"
	"github.com/pirskij/bittensor-quick-register/pkg/log"
)

// Caller is the RPC round-trip dependency of the client. Satisfied by
// *chainrpc.Conn.
type Caller interface {
	Call(ctx context.Context, method string, params []interface{}, result interface{}) error
	Close() error
}

// Client exposes the chain operations the tool needs. One Client owns one
// connection; concurrent registrations for the same signer must be
// serialized by the caller, or nonce reuse gets one of them rejected.
type Client struct {
	conn Caller
	log  zerolog.Logger
}

func NewClient(conn Caller) *Client {
	return &Client{conn: conn, log: log.Client}
}

func (c *Client) Close() error {
	return c.conn.Close()
}

// readStorage reads one storage value. The second return distinguishes an
// absent value from a present one, which callers need before applying
// decode defaults.
func (c *Client) readStorage(ctx context.Context, pallet, item string, parts ...[]byte) ([]byte, bool, error) {
	key, err := storage.DeriveKey(pallet, item, parts...)
	if err != nil {
		return nil, false, err
	}

	var res *string
	if err := c.conn.Call(ctx, "state_getStorage", []interface{}{storage.HexAddress(key)}, &res); err != nil {
		return nil, false, fmt.Errorf("reading %s::%s: %w", pallet, item, err)
	}
	if res == nil {
		return nil, false, nil
	}

	raw, err := hex.DecodeString(strings.TrimPrefix(*res, "0x"))
	if err != nil {
		return nil, false, fmt.Errorf("%w: %s::%s payload: %v", chainrpc.ErrDecode, pallet, item, err)
	}
	return raw, true, nil
}

// Per-subnet field reads degrade to defaults on absence or decode failure
// so a snapshot survives runtime schema drift. Transport failures still
// propagate.

func (c *Client) subnetU16(ctx context.Context, item string, netuid uint16) (uint16, error) {
	raw, ok, err := c.readStorage(ctx, storage.PalletSubtensor, item, storage.U16Part(netuid))
	if err != nil {
		if errors.Is(err, chainrpc.ErrDecode) {
			c.log.Warn().Str("item", item).Err(err).Msg("field defaulted")
			return 0, nil
		}
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	return decodeU16(raw), nil
}

func (c *Client) subnetU64(ctx context.Context, item string, netuid uint16) (uint64, error) {
	raw, ok, err := c.readStorage(ctx, storage.PalletSubtensor, item, storage.U16Part(netuid))
	if err != nil {
		if errors.Is(err, chainrpc.ErrDecode) {
			c.log.Warn().Str("item", item).Err(err).Msg("field defaulted")
			return 0, nil
		}
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	return decodeU64(raw), nil
}

// GetSubnetInfo assembles a snapshot of the subnet's parameters. The
// neuron-count field defines existence: absent or zero means there is no
// subnet and nothing else is read.
func (c *Client) GetSubnetInfo(ctx context.Context, netuid uint16) (*SubnetSnapshot, error) {
	raw, ok, err := c.readStorage(ctx, storage.PalletSubtensor, storage.ItemSubnetworkN, storage.U16Part(netuid))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: subnet %d", ErrSubnetNotFound, netuid)
	}
	neuronCount := decodeU16(raw)
	if neuronCount == 0 {
		return nil, fmt.Errorf("%w: subnet %d has no registered neurons", ErrSubnetNotFound, netuid)
	}

	snapshot := &SubnetSnapshot{NetUID: netuid, NeuronCount: neuronCount}

	diffRaw, ok, err := c.readStorage(ctx, storage.PalletSubtensor, storage.ItemDifficulty, storage.U16Part(netuid))
	if err != nil && !errors.Is(err, chainrpc.ErrDecode) {
		return nil, err
	}
	if ok {
		snapshot.Difficulty = decodeU256(diffRaw)
	} else {
		snapshot.Difficulty = decodeU256(nil)
	}

	if snapshot.Tempo, err = c.subnetU16(ctx, storage.ItemTempo, netuid); err != nil {
		return nil, err
	}
	if snapshot.ImmunityPeriod, err = c.subnetU16(ctx, storage.ItemImmunityPeriod, netuid); err != nil {
		return nil, err
	}
	if snapshot.MinAllowedWeights, err = c.subnetU16(ctx, storage.ItemMinAllowedWeights, netuid); err != nil {
		return nil, err
	}
	if snapshot.MaxWeightsLimit, err = c.subnetU16(ctx, storage.ItemMaxWeightsLimit, netuid); err != nil {
		return nil, err
	}
	if snapshot.MaxAllowedValidators, err = c.subnetU16(ctx, storage.ItemMaxAllowedValidators, netuid); err != nil {
		return nil, err
	}
	if snapshot.MaxAllowedUIDs, err = c.subnetU16(ctx, storage.ItemMaxAllowedUids, netuid); err != nil {
		return nil, err
	}
	if snapshot.Burn, err = c.subnetU64(ctx, storage.ItemBurn, netuid); err != nil {
		return nil, err
	}
	if snapshot.Modality, err = c.subnetU16(ctx, storage.ItemNetworkModality, netuid); err != nil {
		return nil, err
	}
	if snapshot.EmissionValue, err = c.subnetU64(ctx, storage.ItemEmissionValues, netuid); err != nil {
		return nil, err
	}
	if snapshot.Rho, err = c.subnetU16(ctx, storage.ItemRho, netuid); err != nil {
		return nil, err
	}
	if snapshot.Kappa, err = c.subnetU16(ctx, storage.ItemKappa, netuid); err != nil {
		return nil, err
	}
	if snapshot.ScalingLawPower, err = c.subnetU16(ctx, storage.ItemScalingLawPower, netuid); err != nil {
		return nil, err
	}
	if snapshot.BlocksSinceLastStep, err = c.subnetU64(ctx, storage.ItemBlocksSinceLastStep, netuid); err != nil {
		return nil, err
	}

	ownerRaw, ok, err := c.readStorage(ctx, storage.PalletSubtensor, storage.ItemSubnetOwner, storage.U16Part(netuid))
	if err != nil && !errors.Is(err, chainrpc.ErrDecode) {
		return nil, err
	}
	if ok {
		snapshot.Owner = decodeAccountID(ownerRaw)
	}

	if snapshot.CurrentBlock, err = c.CurrentBlock(ctx); err != nil {
		return nil, err
	}

	c.log.Debug().
		Uint16("netuid", netuid).
		Uint16("neurons", snapshot.NeuronCount).
		Uint64("burn", snapshot.Burn).
		Msg("subnet snapshot assembled")
	return snapshot, nil
}

// CheckRegistration looks up the hotkey's UID in the subnet. A nil record
// with nil error means the hotkey is not registered.
func (c *Client) CheckRegistration(ctx context.Context, netuid uint16, hotkey crypto.AccountID) (*NeuronRecord, error) {
	raw, ok, err := c.readStorage(ctx, storage.PalletSubtensor, storage.ItemUids,
		storage.U16Part(netuid), storage.AccountPart(hotkey))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	uid := decodeU16(raw)

	neuronRaw, ok, err := c.readStorage(ctx, storage.PalletSubtensor, storage.ItemNeurons,
		storage.U16Part(netuid), storage.U16Part(uid))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: subnet %d uid %d", ErrNeuronDataMissing, netuid, uid)
	}

	return &NeuronRecord{
		Hotkey:  hotkey,
		UID:     uid,
		NetUID:  netuid,
		Active:  true,
		RawSize: len(neuronRaw),
	}, nil
}

// GetAccountBalance returns the account's free balance in base units. An
// account absent from chain state has a zero balance.
func (c *Client) GetAccountBalance(ctx context.Context, account crypto.AccountID) (uint64, error) {
	rec, err := c.getAccountRecord(ctx, account)
	if err != nil {
		return 0, err
	}
	return rec.FreeBalance(), nil
}

func (c *Client) getAccountRecord(ctx context.Context, account crypto.AccountID) (AccountRecord, error) {
	raw, ok, err := c.readStorage(ctx, storage.PalletSystem, storage.ItemAccount, storage.AccountPart(account))
	if err != nil {
		return AccountRecord{}, err
	}
	if !ok {
		return AccountRecord{}, nil
	}
	return decodeAccountRecord(raw), nil
}

// CurrentBlock reads the head block number.
func (c *Client) CurrentBlock(ctx context.Context) (uint64, error) {
	var headHash string
	if err := c.conn.Call(ctx, "chain_getBlockHash", nil, &headHash); err != nil {
		return 0, fmt.Errorf("reading head hash: %w", err)
	}

	var header struct {
		Number string `json:"number"`
	}
	if err := c.conn.Call(ctx, "chain_getHeader", []interface{}{headHash}, &header); err != nil {
		return 0, fmt.Errorf("reading header: %w", err)
	}

	number, err := strconv.ParseUint(strings.TrimPrefix(header.Number, "0x"), 16, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: header number %q: %v", chainrpc.ErrDecode, header.Number, err)
	}
	return number, nil
}

// SubmitBurnedRegistration signs and submits a burned registration. The
// signer's nonce and the current block are read immediately before the
// extrinsic is built; the signature commits to both, so this ordering is
// load-bearing.
func (c *Client) SubmitBurnedRegistration(ctx context.Context, req RegistrationRequest, signer *crypto.Keypair) (crypto.Hash, error) {
	call, err := encodeBurnedRegisterCall(req.NetUID, req.Hotkey, req.BurnAmount)
	if err != nil {
		return crypto.Hash{}, err
	}

	rec, err := c.getAccountRecord(ctx, signer.AccountID())
	if err != nil {
		return crypto.Hash{}, err
	}
	block, err := c.CurrentBlock(ctx)
	if err != nil {
		return crypto.Hash{}, err
	}

	extrinsic, err := buildSignedExtrinsic(call, signer, uint64(rec.Nonce), block)
	if err != nil {
		return crypto.Hash{}, err
	}

	var txHash string
	if err := c.conn.Call(ctx, "author_submitExtrinsic",
		[]interface{}{"0x" + hex.EncodeToString(extrinsic)}, &txHash); err != nil {
		return crypto.Hash{}, fmt.Errorf("submitting extrinsic: %w", err)
	}

	hash, err := crypto.HashFromHex(txHash)
	if err != nil {
		return crypto.Hash{}, fmt.Errorf("%w: transaction hash %q: %v", chainrpc.ErrDecode, txHash, err)
	}

	c.log.Info().
		Uint16("netuid", req.NetUID).
		Uint64("burn", req.BurnAmount).
		Uint64("nonce", uint64(rec.Nonce)).
		Uint64("block", block).
		Str("tx", hash.Hex()).
		Msg("burned registration submitted")
	return hash, nil
}
