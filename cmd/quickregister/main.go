// quickregister is a command-line client for burned subnet registration:
// it reads subnet parameters and registration status straight from chain
// storage and submits signed registration extrinsics over JSON-RPC.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pirskij/bittensor-quick-register/internal/chain"
	"github.com/pirskij/bittensor-quick-register/internal/chainrpc"
	"github.com/pirskij/bittensor-quick-register/internal/registrar"
	"github.com/pirskij/bittensor-quick-register/internal/store"
	"github.com/pirskij/bittensor-quick-register/pkg/db/pebble"
	"github.com/pirskij/bittensor-quick-register/pkg/log"
)

func main() {
	var (
		rpcURL    string
		logLevel  string
		logFormat string
		historyDB string
	)

	rootCmd := &cobra.Command{
		Use:   "quickregister",
		Short: "Quick registration tool for the Bittensor network",
		Long: `quickregister talks directly to a chain node over JSON-RPC: it derives
storage addresses for subnet and account state, decodes the raw values, and
submits signed burned-registration extrinsics.`,
		SilenceUsage: true,
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVarP(&rpcURL, "rpc-url", "r", chain.DefaultEndpoint, "RPC endpoint URL")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "log format (console, json)")
	rootCmd.PersistentFlags().StringVar(&historyDB, "history-db", "", "path to a local registration history database (disabled when empty)")

	// withRegistrar owns the connection lifecycle around one command run.
	withRegistrar := func(run func(ctx context.Context, r *registrar.Registrar) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			level, err := log.ParseLogLevel(logLevel)
			if err != nil {
				return fmt.Errorf("invalid log level %q: %w", logLevel, err)
			}
			loggerType := log.ConsoleLogger
			if logFormat == "json" {
				loggerType = log.JSONLogger
			}
			log.Init(log.Options{LogLevel: level, Type: loggerType})

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			conn, err := chainrpc.Dial(ctx, rpcURL)
			if err != nil {
				return err
			}
			client := chain.NewClient(conn)
			defer client.Close()

			opts := []registrar.Option{}
			if historyDB != "" {
				kv, err := pebble.NewKVStore(historyDB)
				if err != nil {
					return fmt.Errorf("opening history database: %w", err)
				}
				history := store.New(kv)
				defer history.Close()
				opts = append(opts, registrar.WithHistory(history))
			}

			return run(ctx, registrar.New(client, opts...))
		}
	}

	var (
		subnet     uint16
		wallet     string
		hotkey     string
		burn       uint64
		maxRetries int
		neurons    []string
		output     string
		account    string
		batchFile  string
	)

	registerCmd := &cobra.Command{
		Use:   "register",
		Short: "Register a hotkey to a subnet by burning TAO",
		RunE: withRegistrar(func(ctx context.Context, r *registrar.Registrar) error {
			return r.RegisterToSubnet(ctx, subnet, wallet, hotkey, burn)
		}),
	}
	registerCmd.Flags().Uint16VarP(&subnet, "subnet", "s", 0, "subnet netuid")
	registerCmd.Flags().StringVarP(&wallet, "wallet", "w", "", "coldkey: key file path, secret URI or seed")
	registerCmd.Flags().StringVarP(&hotkey, "hotkey", "H", "", "hotkey: SS58 address, key file path or secret URI")
	registerCmd.Flags().Uint64Var(&burn, "burn-amount", 0, "burn amount in RAO (0 uses the subnet's current cost)")
	_ = registerCmd.MarkFlagRequired("subnet")
	_ = registerCmd.MarkFlagRequired("wallet")
	_ = registerCmd.MarkFlagRequired("hotkey")

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Check registration status of a hotkey",
		RunE: withRegistrar(func(ctx context.Context, r *registrar.Registrar) error {
			return r.CheckStatus(ctx, subnet, hotkey)
		}),
	}
	statusCmd.Flags().Uint16VarP(&subnet, "subnet", "s", 0, "subnet netuid")
	statusCmd.Flags().StringVarP(&hotkey, "hotkey", "H", "", "hotkey: SS58 address, key file path or secret URI")
	_ = statusCmd.MarkFlagRequired("subnet")
	_ = statusCmd.MarkFlagRequired("hotkey")

	infoCmd := &cobra.Command{
		Use:   "info",
		Short: "Show detailed subnet information",
		RunE: withRegistrar(func(ctx context.Context, r *registrar.Registrar) error {
			return r.ShowSubnetInfo(ctx, subnet)
		}),
	}
	infoCmd.Flags().Uint16VarP(&subnet, "subnet", "s", 0, "subnet netuid")
	_ = infoCmd.MarkFlagRequired("subnet")

	estimateCmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate registration costs",
		RunE: withRegistrar(func(ctx context.Context, r *registrar.Registrar) error {
			return r.EstimateCost(ctx, subnet)
		}),
	}
	estimateCmd.Flags().Uint16VarP(&subnet, "subnet", "s", 0, "subnet netuid")
	_ = estimateCmd.MarkFlagRequired("subnet")

	balanceCmd := &cobra.Command{
		Use:   "balance",
		Short: "Check an account's free balance",
		RunE: withRegistrar(func(ctx context.Context, r *registrar.Registrar) error {
			return r.CheckAccountBalance(ctx, account)
		}),
	}
	balanceCmd.Flags().StringVarP(&account, "account", "a", "", "account: SS58 address, key file path or secret URI")
	_ = balanceCmd.MarkFlagRequired("account")

	monitorCmd := &cobra.Command{
		Use:   "monitor",
		Short: "Monitor multiple neurons across subnets",
		RunE: withRegistrar(func(ctx context.Context, r *registrar.Registrar) error {
			targets, err := parseMonitorTargets(neurons)
			if err != nil {
				return err
			}
			return r.MonitorNeurons(ctx, targets)
		}),
	}
	monitorCmd.Flags().StringSliceVarP(&neurons, "neurons", "n", nil, "targets as subnet:hotkey pairs")
	_ = monitorCmd.MarkFlagRequired("neurons")

	autoRegisterCmd := &cobra.Command{
		Use:   "auto-register",
		Short: "Register with retry logic",
		RunE: withRegistrar(func(ctx context.Context, r *registrar.Registrar) error {
			return r.AutoRegister(ctx, subnet, wallet, hotkey, maxRetries)
		}),
	}
	autoRegisterCmd.Flags().Uint16VarP(&subnet, "subnet", "s", 0, "subnet netuid")
	autoRegisterCmd.Flags().StringVarP(&wallet, "wallet", "w", "", "coldkey: key file path, secret URI or seed")
	autoRegisterCmd.Flags().StringVarP(&hotkey, "hotkey", "H", "", "hotkey: SS58 address, key file path or secret URI")
	autoRegisterCmd.Flags().IntVar(&maxRetries, "max-retries", 3, "maximum registration attempts")
	_ = autoRegisterCmd.MarkFlagRequired("subnet")
	_ = autoRegisterCmd.MarkFlagRequired("wallet")
	_ = autoRegisterCmd.MarkFlagRequired("hotkey")

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show network statistics",
		RunE: withRegistrar(func(ctx context.Context, r *registrar.Registrar) error {
			return r.NetworkStats(ctx)
		}),
	}

	exportCmd := &cobra.Command{
		Use:   "export-config",
		Short: "Export subnet configuration to a JSON file",
		RunE: withRegistrar(func(ctx context.Context, r *registrar.Registrar) error {
			return r.ExportConfig(ctx, subnet, output)
		}),
	}
	exportCmd.Flags().Uint16VarP(&subnet, "subnet", "s", 0, "subnet netuid")
	exportCmd.Flags().StringVarP(&output, "output", "o", "subnet_config.json", "output file path")
	_ = exportCmd.MarkFlagRequired("subnet")

	batchCmd := &cobra.Command{
		Use:   "batch",
		Short: "Run batch operations from a config file",
		RunE: withRegistrar(func(ctx context.Context, r *registrar.Registrar) error {
			return r.ExecuteBatch(ctx, batchFile)
		}),
	}
	batchCmd.Flags().StringVarP(&batchFile, "config", "c", "", "batch config file path")
	_ = batchCmd.MarkFlagRequired("config")

	rootCmd.AddCommand(registerCmd, statusCmd, infoCmd, estimateCmd, balanceCmd,
		monitorCmd, autoRegisterCmd, statsCmd, exportCmd, batchCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// parseMonitorTargets parses "subnet:hotkey" pairs.
func parseMonitorTargets(specs []string) ([]registrar.MonitorTarget, error) {
	targets := make([]registrar.MonitorTarget, 0, len(specs))
	for _, spec := range specs {
		netuidStr, hotkey, found := strings.Cut(spec, ":")
		if !found || hotkey == "" {
			return nil, fmt.Errorf("invalid neuron spec %q, expected subnet:hotkey", spec)
		}
		netuid, err := strconv.ParseUint(netuidStr, 10, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid subnet in %q: %w", spec, err)
		}
		targets = append(targets, registrar.MonitorTarget{NetUID: uint16(netuid), Hotkey: hotkey})
	}
	return targets, nil
}
