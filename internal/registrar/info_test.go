package registrar

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pirskij/bittensor-quick-register/internal/chain"
)

func TestCheckStatusNotRegistered(t *testing.T) {
	fake := newFakeChain()
	fake.snapshots[1] = &chain.SubnetSnapshot{NetUID: 1, NeuronCount: 10, MaxAllowedUIDs: 256, Burn: chain.RaoPerTao}

	r, out := newTestRegistrar(t, fake)
	require.NoError(t, r.CheckStatus(context.Background(), 1, "//Alice"))

	assert.Contains(t, out.String(), "NOT registered in subnet 1")
	assert.Contains(t, out.String(), "burn cost: 1.000 TAO")
}

func TestCheckStatusRegistered(t *testing.T) {
	fake := newFakeChain()
	alice := devAccount(t, "//Alice")
	fake.snapshots[2] = &chain.SubnetSnapshot{NetUID: 2, NeuronCount: 50, MaxAllowedUIDs: 64, Burn: chain.RaoPerTao}
	fake.registered[neuronKey(2, alice)] = &chain.NeuronRecord{
		Hotkey: alice,
		UID:    9,
		NetUID: 2,
		Active: true,
		Stake:  []chain.StakeEntry{{Account: alice, Amount: 3 * chain.RaoPerTao}},
	}

	r, out := newTestRegistrar(t, fake)
	require.NoError(t, r.CheckStatus(context.Background(), 2, "//Alice"))

	assert.Contains(t, out.String(), "Neuron is registered in subnet 2")
	assert.Contains(t, out.String(), "UID:              9")
	assert.Contains(t, out.String(), "stake:            3.000 TAO")
	assert.Contains(t, out.String(), "total neurons: 50/64")
}

func TestEstimateCost(t *testing.T) {
	fake := newFakeChain()
	fake.snapshots[1] = &chain.SubnetSnapshot{NetUID: 1, NeuronCount: 10, MaxAllowedUIDs: 256, Burn: chain.RaoPerTao}

	r, out := newTestRegistrar(t, fake)
	require.NoError(t, r.EstimateCost(context.Background(), 1))
	assert.Contains(t, out.String(), "cost:            1.000 TAO")
	assert.Contains(t, out.String(), "~$200.00")
}

func TestShowSubnetInfo(t *testing.T) {
	fake := newFakeChain()
	fake.snapshots[3] = &chain.SubnetSnapshot{
		NetUID:         3,
		NeuronCount:    100,
		MaxAllowedUIDs: 256,
		Burn:           2 * chain.RaoPerTao,
		Tempo:          99,
		Difficulty:     uint256.NewInt(10_000_000),
		CurrentBlock:   5555,
	}

	r, out := newTestRegistrar(t, fake)
	require.NoError(t, r.ShowSubnetInfo(context.Background(), 3))

	assert.Contains(t, out.String(), "registered neurons:     100/256")
	assert.Contains(t, out.String(), "difficulty:             10.00M")
	assert.Contains(t, out.String(), "tempo:                  99 blocks")
	assert.Contains(t, out.String(), "Registration open: true")
}

func TestNetworkStatsSkipsMissingSubnets(t *testing.T) {
	fake := newFakeChain()
	fake.snapshots[1] = &chain.SubnetSnapshot{NetUID: 1, NeuronCount: 30, MaxAllowedUIDs: 64, Burn: chain.RaoPerTao}
	fake.snapshots[3] = &chain.SubnetSnapshot{NetUID: 3, NeuronCount: 20, MaxAllowedUIDs: 64, Burn: chain.RaoPerTao}

	r, out := newTestRegistrar(t, fake)
	require.NoError(t, r.NetworkStats(context.Background()))

	assert.Contains(t, out.String(), "active subnets: 2")
	assert.Contains(t, out.String(), "total neurons:  50")
	assert.Contains(t, out.String(), "current block:  1000")
}

func TestCheckAccountBalance(t *testing.T) {
	fake := newFakeChain()
	alice := devAccount(t, "//Alice")
	fake.balances[alice] = 7 * chain.RaoPerTao

	r, out := newTestRegistrar(t, fake)
	require.NoError(t, r.CheckAccountBalance(context.Background(), "//Alice"))
	assert.Contains(t, out.String(), "7.000 TAO")

	out.Reset()
	require.NoError(t, r.CheckAccountBalance(context.Background(), "//Bob"))
	assert.Contains(t, out.String(), "zero balance")
}

func TestExportConfig(t *testing.T) {
	fake := newFakeChain()
	fake.snapshots[5] = &chain.SubnetSnapshot{
		NetUID:         5,
		NeuronCount:    128,
		MaxAllowedUIDs: 256,
		Burn:           3 * chain.RaoPerTao,
		Difficulty:     uint256.NewInt(42),
	}

	r, _ := newTestRegistrar(t, fake)
	path := filepath.Join(t.TempDir(), "subnet5.json")
	require.NoError(t, r.ExportConfig(context.Background(), 5, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var config exportedConfig
	require.NoError(t, json.Unmarshal(data, &config))
	assert.Equal(t, uint16(5), config.SubnetID)
	assert.Equal(t, 3*chain.RaoPerTao, config.RegistrationInfo.BurnCostRAO)
	assert.InDelta(t, 3.0, config.RegistrationInfo.BurnCostTAO, 1e-9)
	assert.True(t, config.RegistrationInfo.RegistrationOpen)
	assert.Equal(t, "finney", config.Network)
}

func TestMonitorNeurons(t *testing.T) {
	fake := newFakeChain()
	fake.snapshots[1] = &chain.SubnetSnapshot{NetUID: 1, NeuronCount: 10, MaxAllowedUIDs: 64, Burn: chain.RaoPerTao}

	r, out := newTestRegistrar(t, fake)
	targets := []MonitorTarget{
		{NetUID: 1, Hotkey: "//Alice"},
		{NetUID: 9, Hotkey: "//Bob"}, // subnet missing, reported not fatal
	}
	require.NoError(t, r.MonitorNeurons(context.Background(), targets))

	assert.Contains(t, out.String(), "Monitoring 2 registration(s)")
	assert.Contains(t, out.String(), "subnet not found")
}

func TestExecuteBatch(t *testing.T) {
	fake := newFakeChain()
	fake.snapshots[1] = &chain.SubnetSnapshot{NetUID: 1, NeuronCount: 10, MaxAllowedUIDs: 64, Burn: chain.RaoPerTao}

	config := BatchConfig{Operations: []BatchOperation{
		{Operation: "check_status", Subnet: 1, Hotkey: "//Alice"},
		{Operation: "frobnicate", Subnet: 1, Hotkey: "//Alice"},
	}}
	data, err := json.Marshal(config)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "batch.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	r, out := newTestRegistrar(t, fake)
	require.NoError(t, r.ExecuteBatch(context.Background(), path))

	assert.Contains(t, out.String(), "Found 2 operations")
	assert.Contains(t, out.String(), "unknown batch operation")
	assert.Contains(t, out.String(), "Batch operations completed")
}

func TestExecuteBatchMissingFile(t *testing.T) {
	r, _ := newTestRegistrar(t, newFakeChain())
	err := r.ExecuteBatch(context.Background(), filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}
