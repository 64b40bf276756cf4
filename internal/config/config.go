package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	RPCURL     string
	PrivateKey string

	// Protocol constants for the target deployment.
	WETH            string
	PositionManager string
	MinTick         int32
	MaxTick         int32

	// Per-run parameters.
	Token       string
	FeeTier     uint32
	TokenAmount string
	WETHAmount  string
	WrapAmount  string
	TargetPrice float64

	DeadlineWindow time.Duration
	ConfirmPoll    time.Duration
	ConfirmTimeout time.Duration

	Journal  string
	PGDSN    string
	LogLevel string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PILOT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("min-tick", int32(-887272))
	v.SetDefault("max-tick", int32(887272))
	v.SetDefault("fee", uint32(3000))
	v.SetDefault("deadline-window", 600*time.Second)
	v.SetDefault("confirm-poll", 2*time.Second)
	v.SetDefault("confirm-timeout", time.Duration(0))
	v.SetDefault("journal", "./data/tx_journal.jsonl")
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		RPCURL:          v.GetString("rpc"),
		PrivateKey:      v.GetString("private-key"),
		WETH:            v.GetString("weth"),
		PositionManager: v.GetString("position-manager"),
		MinTick:         v.GetInt32("min-tick"),
		MaxTick:         v.GetInt32("max-tick"),
		Token:           v.GetString("token"),
		FeeTier:         v.GetUint32("fee"),
		TokenAmount:     v.GetString("token-amount"),
		WETHAmount:      v.GetString("weth-amount"),
		WrapAmount:      v.GetString("wrap-amount"),
		TargetPrice:     v.GetFloat64("price"),
		DeadlineWindow:  v.GetDuration("deadline-window"),
		ConfirmPoll:     v.GetDuration("confirm-poll"),
		ConfirmTimeout:  v.GetDuration("confirm-timeout"),
		Journal:         v.GetString("journal"),
		PGDSN:           v.GetString("pg-dsn"),
		LogLevel:        v.GetString("log-level"),
	}

	return cfg, nil
}
