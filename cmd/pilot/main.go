package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"liquidityPilot/internal/chain"
	"liquidityPilot/internal/config"
	"liquidityPilot/internal/dex"
	"liquidityPilot/internal/model"
	"liquidityPilot/internal/orchestrator"
	"liquidityPilot/internal/storage"
	"liquidityPilot/internal/storage/postgres"
)

func main() {
	root := &cobra.Command{
		Use:          "pilot",
		Short:        "V3 liquidity transaction sequencer",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	wrapCmd := &cobra.Command{
		Use:   "wrap",
		Short: "Wrap native asset into WETH and stop",
		RunE:  runMode(model.ModeWrapOnly),
	}

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add full-range liquidity to an existing pool",
		RunE:  runMode(model.ModeAddLiquidity),
	}

	initAddCmd := &cobra.Command{
		Use:   "init-add",
		Short: "Create and initialize the pool, then add full-range liquidity",
		RunE:  runMode(model.ModeInitializeAndAdd),
	}

	for _, cmd := range []*cobra.Command{wrapCmd, addCmd, initAddCmd} {
		registerRunFlags(cmd)
		root.AddCommand(cmd)
	}

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func registerRunFlags(cmd *cobra.Command) {
	cmd.Flags().String("rpc", "", "RPC URL")
	cmd.Flags().String("private-key", "", "hex-encoded signing key (or PILOT_PRIVATE_KEY)")
	cmd.Flags().String("weth", "", "wrapped-native-asset contract address")
	cmd.Flags().String("position-manager", "", "position manager contract address")
	cmd.Flags().Int32("min-tick", -887272, "protocol minimum tick")
	cmd.Flags().Int32("max-tick", 887272, "protocol maximum tick")
	cmd.Flags().String("token", "", "custom token contract address")
	cmd.Flags().Uint32("fee", 3000, "fee tier (100, 500, 3000, 10000)")
	cmd.Flags().String("token-amount", "", "custom token quantity to deposit")
	cmd.Flags().String("weth-amount", "", "WETH quantity to deposit")
	cmd.Flags().String("wrap-amount", "", "native asset quantity to wrap first")
	cmd.Flags().Float64("price", 0, "initial pool price (token units per WETH)")
	cmd.Flags().Duration("deadline-window", 0, "mint deadline grace window")
	cmd.Flags().Duration("confirm-poll", 0, "receipt polling interval")
	cmd.Flags().Duration("confirm-timeout", 0, "per-transaction confirmation bound, 0 means unbounded")
	cmd.Flags().String("journal", "", "transaction journal JSONL path, empty disables")
	cmd.Flags().String("pg-dsn", "", "optional Postgres DSN for run history")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
}

func runMode(mode model.Mode) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		cfgFile, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(cfgFile, cmd.Flags())
		if err != nil {
			return err
		}

		logger, err := newLogger(cfg.LogLevel)
		if err != nil {
			return err
		}
		defer logger.Sync()

		if cfg.RPCURL == "" {
			return fmt.Errorf("rpc url is required")
		}
		if cfg.PrivateKey == "" {
			return fmt.Errorf("private key is required")
		}

		weth, err := parseAddress("weth", cfg.WETH)
		if err != nil {
			return err
		}
		manager, err := parseAddress("position-manager", cfg.PositionManager)
		if err != nil {
			return err
		}

		req := orchestrator.Request{
			Mode:        mode,
			TokenAmount: cfg.TokenAmount,
			WETHAmount:  cfg.WETHAmount,
			WrapAmount:  cfg.WrapAmount,
			FeeTier:     cfg.FeeTier,
			TargetPrice: cfg.TargetPrice,
		}
		if mode != model.ModeWrapOnly {
			req.Token, err = parseAddress("token", cfg.Token)
			if err != nil {
				return err
			}
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		chainClient, err := chain.NewClient(ctx, chain.Options{
			RPCURL:         cfg.RPCURL,
			PrivateKey:     cfg.PrivateKey,
			PollInterval:   cfg.ConfirmPoll,
			ConfirmTimeout: cfg.ConfirmTimeout,
		})
		if err != nil {
			return fmt.Errorf("connect rpc: %w", err)
		}
		defer chainClient.Close()

		journal, closeJournal, err := buildJournal(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeJournal()

		orch := orchestrator.New(orchestrator.Config{
			WETH:            weth,
			PositionManager: manager,
			MinTick:         cfg.MinTick,
			MaxTick:         cfg.MaxTick,
			TickSpacings:    dex.DefaultTickSpacings(),
			DeadlineWindow:  cfg.DeadlineWindow,
		}, chainClient, journal, logger)

		logger.Info("pilot start",
			zap.String("mode", mode.String()),
			zap.String("rpc", cfg.RPCURL),
			zap.String("caller", chainClient.From().Hex()),
			zap.String("chain_id", chainClient.ChainID().String()),
		)

		result, err := orch.Run(ctx, req)
		if err != nil {
			if step, ok := model.StepOf(err); ok {
				logger.Error("run failed",
					zap.String("run_id", result.RunID),
					zap.String("step", step.String()),
					zap.Error(err),
				)
			} else {
				logger.Error("run rejected", zap.Error(err))
			}
			return err
		}

		logger.Info("run done",
			zap.String("run_id", result.RunID),
			zap.String("state", result.FinalState.String()),
			zap.Int("transactions", len(result.Outcomes)),
		)
		return nil
	}
}

func buildJournal(ctx context.Context, cfg config.Config) (storage.Journal, func(), error) {
	journals := storage.Multi{}
	closeJournal := func() {}

	if cfg.Journal != "" {
		journals = append(journals, storage.NewJsonlJournal(cfg.Journal))
	}
	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		journals = append(journals, store)
		closeJournal = store.Close
	}

	if len(journals) == 0 {
		return storage.NopJournal{}, closeJournal, nil
	}
	return journals, closeJournal, nil
}

func parseAddress(name, value string) (common.Address, error) {
	if !common.IsHexAddress(value) {
		return common.Address{}, fmt.Errorf("%s: invalid address %q", name, value)
	}
	return common.HexToAddress(value), nil
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
