package registrar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pirskij/bittensor-quick-register/internal/chain"
	"github.com/pirskij/bittensor-quick-register/internal/format"
	"github.com/pirskij/bittensor-quick-register/internal/keystore"
)

// usdPerTAO is a rough conversion used only for informational estimates.
const usdPerTAO = 200.0

// statsSubnets is the fixed set of subnets the network overview samples.
var statsSubnets = []uint16{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}

// CheckStatus reports whether the hotkey is registered in the subnet, with
// neuron details when it is and registration options when it is not.
func (r *Registrar) CheckStatus(ctx context.Context, netuid uint16, hotkey string) error {
	r.printf("Checking registration status...")

	hotkeyAccount, err := keystore.AccountIDFromString(hotkey)
	if err != nil {
		return fmt.Errorf("loading hotkey: %w", err)
	}

	neuron, err := r.client.CheckRegistration(ctx, netuid, hotkeyAccount)
	if err != nil {
		return err
	}

	if neuron == nil {
		r.printf("Hotkey %s is NOT registered in subnet %d", hotkeyAccount.SS58(), netuid)

		snapshot, err := r.client.GetSubnetInfo(ctx, netuid)
		if err != nil {
			return err
		}
		r.printf("Registration options:")
		r.printf("  burn cost: %s", format.TAO(snapshot.Burn))
		return nil
	}

	r.printf("Neuron is registered in subnet %d", netuid)
	r.printf("Neuron details:")
	r.printf("  UID:              %d", neuron.UID)
	r.printf("  hotkey:           %s", neuron.Hotkey.SS58())
	r.printf("  coldkey:          %s", neuron.Coldkey.SS58())
	r.printf("  active:           %t", neuron.Active)
	r.printf("  stake:            %s", format.TAO(totalStake(neuron)))
	r.printf("  emission:         %d", neuron.Emission)
	r.printf("  last update:      block %d", neuron.LastUpdate)
	r.printf("  validator permit: %t", neuron.ValidatorPermit)

	snapshot, err := r.client.GetSubnetInfo(ctx, netuid)
	if err != nil {
		return err
	}
	r.printf("Subnet statistics:")
	r.printf("  total neurons: %d/%d", snapshot.NeuronCount, snapshot.MaxAllowedUIDs)
	r.printf("  difficulty:    %s", format.Difficulty(snapshot.Difficulty))
	r.printf("  burn cost:     %s", format.TAO(snapshot.Burn))
	return nil
}

func totalStake(neuron *chain.NeuronRecord) uint64 {
	var total uint64
	for _, entry := range neuron.Stake {
		total += entry.Amount
	}
	return total
}

// EstimateCost prints the registration cost breakdown for a subnet.
func (r *Registrar) EstimateCost(ctx context.Context, netuid uint16) error {
	r.printf("Estimating registration costs for subnet %d...", netuid)

	snapshot, err := r.client.GetSubnetInfo(ctx, netuid)
	if err != nil {
		return err
	}

	r.printf("Burn registration (instant):")
	r.printf("  cost:            %s", format.TAO(snapshot.Burn))
	r.printf("  USD equivalent:  ~$%.2f (assuming $%.0f/TAO)",
		float64(snapshot.Burn)/float64(chain.RaoPerTao)*usdPerTAO, usdPerTAO)
	r.printf("  processing time: 1-2 blocks (~12-24s)")
	return nil
}

// ShowSubnetInfo prints the full parameter snapshot of a subnet.
func (r *Registrar) ShowSubnetInfo(ctx context.Context, netuid uint16) error {
	r.printf("Fetching subnet %d information...", netuid)

	snapshot, err := r.client.GetSubnetInfo(ctx, netuid)
	if err != nil {
		return err
	}

	r.printf("Subnet %d details:", netuid)
	r.printf("  registered neurons:     %d/%d", snapshot.NeuronCount, snapshot.MaxAllowedUIDs)
	r.printf("  difficulty:             %s", format.Difficulty(snapshot.Difficulty))
	r.printf("  burn cost:              %s", format.TAO(snapshot.Burn))
	r.printf("  tempo:                  %d blocks", snapshot.Tempo)
	r.printf("  immunity period:        %d blocks", snapshot.ImmunityPeriod)
	r.printf("  min allowed weights:    %d", snapshot.MinAllowedWeights)
	r.printf("  max weights limit:      %d", snapshot.MaxWeightsLimit)
	r.printf("  max allowed validators: %d", snapshot.MaxAllowedValidators)
	r.printf("  owner:                  %s", format.Account(snapshot.Owner))
	r.printf("  network modality:       %d", snapshot.Modality)
	r.printf("  emission value:         %d", snapshot.EmissionValue)
	r.printf("  rho:                    %d", snapshot.Rho)
	r.printf("  kappa:                  %d", snapshot.Kappa)
	r.printf("  scaling law power:      %d", snapshot.ScalingLawPower)
	r.printf("  blocks since epoch:     %d", snapshot.BlocksSinceLastStep)
	r.printf("Current block: %d", snapshot.CurrentBlock)
	r.printf("Registration open: %t", snapshot.RegistrationOpen())
	return nil
}

// MonitorTarget is one (subnet, hotkey) pair to watch.
type MonitorTarget struct {
	NetUID uint16
	Hotkey string
}

// MonitorNeurons reports the status of each target in turn. A failing
// target is reported and does not stop the rest.
func (r *Registrar) MonitorNeurons(ctx context.Context, targets []MonitorTarget) error {
	r.printf("Monitoring %d registration(s)...", len(targets))

	for _, target := range targets {
		account, err := keystore.AccountIDFromString(target.Hotkey)
		if err != nil {
			r.printf("Subnet %d: invalid hotkey: %v", target.NetUID, err)
			continue
		}
		r.printf("Subnet %d - %s", target.NetUID, format.Account(account))

		if err := r.CheckStatus(ctx, target.NetUID, target.Hotkey); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			r.printf("Error: %v", err)
		}
	}
	return nil
}

// NetworkStats samples the well-known subnets and prints an overview.
func (r *Registrar) NetworkStats(ctx context.Context) error {
	r.printf("Network statistics")

	var totalNeurons uint32
	var activeSubnets int

	r.printf("Active subnets:")
	r.printf("%5s %13s %12s %12s", "UID", "Neurons", "Burn", "Difficulty")
	for _, netuid := range statsSubnets {
		snapshot, err := r.client.GetSubnetInfo(ctx, netuid)
		if err != nil {
			if errors.Is(err, chain.ErrSubnetNotFound) {
				continue
			}
			return err
		}
		activeSubnets++
		totalNeurons += uint32(snapshot.NeuronCount)
		r.printf("%5d %7d/%-5d %12s %12s",
			netuid, snapshot.NeuronCount, snapshot.MaxAllowedUIDs,
			format.TAO(snapshot.Burn), format.Difficulty(snapshot.Difficulty))
	}

	block, err := r.client.CurrentBlock(ctx)
	if err != nil {
		return err
	}

	r.printf("Network overview:")
	r.printf("  active subnets: %d", activeSubnets)
	r.printf("  total neurons:  %d", totalNeurons)
	r.printf("  current block:  %d", block)
	return nil
}

// CheckAccountBalance resolves the account notation and prints its free
// balance.
func (r *Registrar) CheckAccountBalance(ctx context.Context, account string) error {
	r.printf("Checking account balance...")

	accountID, err := keystore.AccountIDFromString(account)
	if err != nil {
		return fmt.Errorf("parsing account %q: %w", account, err)
	}

	balance, err := r.client.GetAccountBalance(ctx, accountID)
	if err != nil {
		return err
	}

	r.printf("Address: %s", accountID.SS58())
	r.printf("Balance: %d RAO (%s)", balance, format.TAO(balance))
	if balance == 0 {
		r.printf("Note: account has zero balance or does not exist on-chain")
	}
	return nil
}

// exportedConfig is the automation-friendly JSON the export command writes.
type exportedConfig struct {
	SubnetID         uint16           `json:"subnet_id"`
	RegistrationInfo registrationInfo `json:"registration_info"`
	ExportTime       string           `json:"export_time"`
	Network          string           `json:"network"`
}

type registrationInfo struct {
	Difficulty       string  `json:"difficulty"`
	BurnCostRAO      uint64  `json:"burn_cost_rao"`
	BurnCostTAO      float64 `json:"burn_cost_tao"`
	MaxNeurons       uint16  `json:"max_neurons"`
	CurrentNeurons   uint16  `json:"current_neurons"`
	RegistrationOpen bool    `json:"registration_open"`
}

// ExportConfig writes the subnet's registration parameters to a JSON file.
func (r *Registrar) ExportConfig(ctx context.Context, netuid uint16, outputPath string) error {
	r.printf("Exporting configuration for subnet %d...", netuid)

	snapshot, err := r.client.GetSubnetInfo(ctx, netuid)
	if err != nil {
		return err
	}

	config := exportedConfig{
		SubnetID: netuid,
		RegistrationInfo: registrationInfo{
			Difficulty:       format.Difficulty(snapshot.Difficulty),
			BurnCostRAO:      snapshot.Burn,
			BurnCostTAO:      float64(snapshot.Burn) / float64(chain.RaoPerTao),
			MaxNeurons:       snapshot.MaxAllowedUIDs,
			CurrentNeurons:   snapshot.NeuronCount,
			RegistrationOpen: snapshot.RegistrationOpen(),
		},
		ExportTime: time.Now().UTC().Format(time.RFC3339),
		Network:    "finney",
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding export config: %w", err)
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("writing export config: %w", err)
	}

	r.printf("Configuration exported to %s", outputPath)
	return nil
}
