package chain

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/ChainSafe/gossamer/pkg/scale"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pirskij/bittensor-quick-register/internal/crypto"
	"github.com/pirskij/bittensor-quick-register/internal/storage"
	"github.com/pirskij/bittensor-quick-register/internal/testutils"
)

// mockCaller serves canned responses keyed by method (and storage address
// for state reads), recording every call in order.
type mockCaller struct {
	storage map[string]string // address -> 0x-hex value
	head    uint64
	submit  func(extrinsic string) (string, error)

	calls []string
}

func (m *mockCaller) Call(_ context.Context, method string, params []interface{}, result interface{}) error {
	m.calls = append(m.calls, method)

	var out interface{}
	switch method {
	case "state_getStorage":
		address, ok := params[0].(string)
		if !ok {
			return fmt.Errorf("unexpected address param %v", params[0])
		}
		if value, present := m.storage[address]; present {
			out = value
		}
	case "chain_getBlockHash":
		out = crypto.Hash{}.Hex()
	case "chain_getHeader":
		out = map[string]string{"number": fmt.Sprintf("0x%x", m.head)}
	case "author_submitExtrinsic":
		hash, err := m.submit(params[0].(string))
		if err != nil {
			return err
		}
		out = hash
	default:
		return fmt.Errorf("unexpected method %s", method)
	}

	if result == nil {
		return nil
	}
	raw, err := json.Marshal(out)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, result)
}

func (m *mockCaller) Close() error { return nil }

func (m *mockCaller) callCount(method string) int {
	n := 0
	for _, c := range m.calls {
		if c == method {
			n++
		}
	}
	return n
}

func storageAddress(t *testing.T, pallet, item string, parts ...[]byte) string {
	t.Helper()
	key, err := storage.DeriveKey(pallet, item, parts...)
	require.NoError(t, err)
	return storage.HexAddress(key)
}

func putSubnetU16(t *testing.T, m map[string]string, item string, netuid, v uint16) {
	raw := make([]byte, 2)
	binary.LittleEndian.PutUint16(raw, v)
	m[storageAddress(t, storage.PalletSubtensor, item, storage.U16Part(netuid))] = "0x" + hex.EncodeToString(raw)
}

func putSubnetU64(t *testing.T, m map[string]string, item string, netuid uint16, v uint64) {
	raw := make([]byte, 8)
	binary.LittleEndian.PutUint64(raw, v)
	m[storageAddress(t, storage.PalletSubtensor, item, storage.U16Part(netuid))] = "0x" + hex.EncodeToString(raw)
}

func TestGetSubnetInfoNotFound(t *testing.T) {
	mock := &mockCaller{storage: map[string]string{}}
	client := NewClient(mock)

	_, err := client.GetSubnetInfo(context.Background(), 99)
	require.ErrorIs(t, err, ErrSubnetNotFound)

	// The defining read fails, so no further field reads happen.
	assert.Equal(t, 1, mock.callCount("state_getStorage"))
}

func TestGetSubnetInfoZeroNeurons(t *testing.T) {
	values := map[string]string{}
	putSubnetU16(t, values, storage.ItemSubnetworkN, 3, 0)
	mock := &mockCaller{storage: values}

	_, err := NewClient(mock).GetSubnetInfo(context.Background(), 3)
	require.ErrorIs(t, err, ErrSubnetNotFound)
	assert.Equal(t, 1, mock.callCount("state_getStorage"))
}

func TestGetSubnetInfo(t *testing.T) {
	const netuid = uint16(1)
	owner := testutils.RandomAccountID(t)

	values := map[string]string{}
	putSubnetU16(t, values, storage.ItemSubnetworkN, netuid, 128)
	putSubnetU16(t, values, storage.ItemTempo, netuid, 99)
	putSubnetU16(t, values, storage.ItemImmunityPeriod, netuid, 4096)
	putSubnetU16(t, values, storage.ItemMaxAllowedUids, netuid, 256)
	putSubnetU64(t, values, storage.ItemBurn, netuid, 5*RaoPerTao)

	difficulty := make([]byte, 32)
	binary.LittleEndian.PutUint64(difficulty, 10_000_000)
	values[storageAddress(t, storage.PalletSubtensor, storage.ItemDifficulty, storage.U16Part(netuid))] =
		"0x" + hex.EncodeToString(difficulty)
	values[storageAddress(t, storage.PalletSubtensor, storage.ItemSubnetOwner, storage.U16Part(netuid))] =
		"0x" + hex.EncodeToString(owner[:])

	mock := &mockCaller{storage: values, head: 123456}
	snapshot, err := NewClient(mock).GetSubnetInfo(context.Background(), netuid)
	require.NoError(t, err)

	assert.Equal(t, netuid, snapshot.NetUID)
	assert.Equal(t, uint16(128), snapshot.NeuronCount)
	assert.Equal(t, uint16(99), snapshot.Tempo)
	assert.Equal(t, uint16(4096), snapshot.ImmunityPeriod)
	assert.Equal(t, uint16(256), snapshot.MaxAllowedUIDs)
	assert.Equal(t, 5*RaoPerTao, snapshot.Burn)
	assert.Equal(t, uint64(10_000_000), snapshot.Difficulty.Uint64())
	assert.Equal(t, owner, snapshot.Owner)
	assert.Equal(t, uint64(123456), snapshot.CurrentBlock)
	assert.True(t, snapshot.RegistrationOpen())

	// Absent fields degrade to their zero defaults.
	assert.Equal(t, uint16(0), snapshot.Rho)
	assert.Equal(t, uint64(0), snapshot.EmissionValue)
}

func TestGetSubnetInfoFullSubnetClosed(t *testing.T) {
	const netuid = uint16(2)
	values := map[string]string{}
	putSubnetU16(t, values, storage.ItemSubnetworkN, netuid, 256)
	putSubnetU16(t, values, storage.ItemMaxAllowedUids, netuid, 256)

	mock := &mockCaller{storage: values, head: 1}
	snapshot, err := NewClient(mock).GetSubnetInfo(context.Background(), netuid)
	require.NoError(t, err)
	assert.False(t, snapshot.RegistrationOpen())
}

func TestCheckRegistrationNotRegistered(t *testing.T) {
	mock := &mockCaller{storage: map[string]string{}}
	record, err := NewClient(mock).CheckRegistration(context.Background(), 1, testutils.RandomAccountID(t))
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestCheckRegistrationRegistered(t *testing.T) {
	const netuid = uint16(1)
	hotkey := testutils.RandomAccountID(t)

	values := map[string]string{
		storageAddress(t, storage.PalletSubtensor, storage.ItemUids,
			storage.U16Part(netuid), storage.AccountPart(hotkey)): "0x0700",
		storageAddress(t, storage.PalletSubtensor, storage.ItemNeurons,
			storage.U16Part(netuid), storage.U16Part(7)): "0x" + hex.EncodeToString(make([]byte, 40)),
	}

	mock := &mockCaller{storage: values}
	record, err := NewClient(mock).CheckRegistration(context.Background(), netuid, hotkey)
	require.NoError(t, err)
	require.NotNil(t, record)

	assert.Equal(t, uint16(7), record.UID)
	assert.Equal(t, netuid, record.NetUID)
	assert.Equal(t, hotkey, record.Hotkey)
	assert.True(t, record.Active)
	assert.Equal(t, 40, record.RawSize)
}

func TestCheckRegistrationNeuronMissing(t *testing.T) {
	const netuid = uint16(1)
	hotkey := testutils.RandomAccountID(t)

	values := map[string]string{
		storageAddress(t, storage.PalletSubtensor, storage.ItemUids,
			storage.U16Part(netuid), storage.AccountPart(hotkey)): "0x0300",
	}

	mock := &mockCaller{storage: values}
	_, err := NewClient(mock).CheckRegistration(context.Background(), netuid, hotkey)
	require.ErrorIs(t, err, ErrNeuronDataMissing)
}

func TestGetAccountBalance(t *testing.T) {
	account := testutils.RandomAccountID(t)
	rec := AccountRecord{
		Nonce: 4,
		Data: AccountData{
			Free:     &scale.Uint128{Lower: 3 * RaoPerTao},
			Reserved: &scale.Uint128{},
			Frozen:   &scale.Uint128{},
			Flags:    &scale.Uint128{},
		},
	}
	raw, err := scaleCodec.Marshal(rec)
	require.NoError(t, err)

	values := map[string]string{
		storageAddress(t, storage.PalletSystem, storage.ItemAccount,
			storage.AccountPart(account)): "0x" + hex.EncodeToString(raw),
	}

	mock := &mockCaller{storage: values}
	balance, err := NewClient(mock).GetAccountBalance(context.Background(), account)
	require.NoError(t, err)
	assert.Equal(t, 3*RaoPerTao, balance)
}

func TestGetAccountBalanceAbsentAccount(t *testing.T) {
	mock := &mockCaller{storage: map[string]string{}}
	balance, err := NewClient(mock).GetAccountBalance(context.Background(), testutils.RandomAccountID(t))
	require.NoError(t, err)
	assert.Equal(t, uint64(0), balance)
}

func TestSubmitBurnedRegistration(t *testing.T) {
	signer, err := crypto.NewKeypairFromSeed(testutils.RandomSeed(t))
	require.NoError(t, err)
	coldkey := signer.AccountID()
	hotkey := testutils.RandomAccountID(t)

	rec := AccountRecord{
		Nonce: 11,
		Data: AccountData{
			Free:     &scale.Uint128{Lower: 100 * RaoPerTao},
			Reserved: &scale.Uint128{},
			Frozen:   &scale.Uint128{},
			Flags:    &scale.Uint128{},
		},
	}
	raw, err := scaleCodec.Marshal(rec)
	require.NoError(t, err)

	values := map[string]string{
		storageAddress(t, storage.PalletSystem, storage.ItemAccount,
			storage.AccountPart(coldkey)): "0x" + hex.EncodeToString(raw),
	}

	wantHash := testutils.RandomHash(t)
	var submitted string
	mock := &mockCaller{
		storage: values,
		head:    7000,
		submit: func(extrinsic string) (string, error) {
			submitted = extrinsic
			return wantHash.Hex(), nil
		},
	}

	req := RegistrationRequest{
		NetUID:      11,
		Hotkey:      hotkey,
		Coldkey:     coldkey,
		BurnAmount:  2 * RaoPerTao,
		BlockNumber: 7000,
	}
	got, err := NewClient(mock).SubmitBurnedRegistration(context.Background(), req, signer)
	require.NoError(t, err)
	assert.Equal(t, wantHash, got)

	// Nonce and block are read before the submission.
	assert.Equal(t, []string{
		"state_getStorage", "chain_getBlockHash", "chain_getHeader", "author_submitExtrinsic",
	}, mock.calls)

	ext, err := hex.DecodeString(submitted[2:])
	require.NoError(t, err)
	_, _, extra, call := parseExtrinsic(t, ext)

	assert.Equal(t, uint64(11), binary.LittleEndian.Uint64(extra[2:10]))
	wantCall, err := encodeBurnedRegisterCall(req.NetUID, req.Hotkey, req.BurnAmount)
	require.NoError(t, err)
	assert.Equal(t, wantCall, call)
}
