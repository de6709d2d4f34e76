package registrar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// BatchConfig is the JSON file format the batch command consumes.
type BatchConfig struct {
	Operations []BatchOperation `json:"operations"`
}

// BatchOperation is one entry of a batch file. Wallet is only needed for
// the registering operations; MaxRetries only for auto_register.
type BatchOperation struct {
	Operation  string `json:"operation"` // register, check_status, auto_register
	Subnet     uint16 `json:"subnet"`
	Wallet     string `json:"wallet,omitempty"`
	Hotkey     string `json:"hotkey"`
	MaxRetries int    `json:"max_retries,omitempty"`
}

const defaultBatchRetries = 3

// ExecuteBatch runs the operations of a batch file in order. Individual
// operation failures are reported and do not stop the batch; cancellation
// does.
func (r *Registrar) ExecuteBatch(ctx context.Context, configPath string) error {
	r.printf("Executing batch operations from %s", configPath)

	contents, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("reading batch config: %w", err)
	}
	var config BatchConfig
	if err := json.Unmarshal(contents, &config); err != nil {
		return fmt.Errorf("parsing batch config: %w", err)
	}

	r.printf("Found %d operations", len(config.Operations))

	for i, op := range config.Operations {
		r.printf("Operation %d/%d: %s", i+1, len(config.Operations), op.Operation)

		if err := r.runBatchOperation(ctx, op); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			r.printf("Operation failed: %v", err)
		}

		if i < len(config.Operations)-1 {
			r.printf("Waiting %s before next operation", batchDelay)
			if err := r.sleep(ctx, batchDelay); err != nil {
				return err
			}
		}
	}

	r.printf("Batch operations completed")
	return nil
}

func (r *Registrar) runBatchOperation(ctx context.Context, op BatchOperation) error {
	switch op.Operation {
	case "register":
		if op.Wallet == "" {
			return fmt.Errorf("register operation for subnet %d is missing a wallet", op.Subnet)
		}
		return r.RegisterToSubnet(ctx, op.Subnet, op.Wallet, op.Hotkey, 0)

	case "check_status":
		return r.CheckStatus(ctx, op.Subnet, op.Hotkey)

	case "auto_register":
		if op.Wallet == "" {
			return fmt.Errorf("auto_register operation for subnet %d is missing a wallet", op.Subnet)
		}
		retries := op.MaxRetries
		if retries <= 0 {
			retries = defaultBatchRetries
		}
		return r.AutoRegister(ctx, op.Subnet, op.Wallet, op.Hotkey, retries)

	default:
		return fmt.Errorf("%w: %q", ErrUnknownOperation, op.Operation)
	}
}
