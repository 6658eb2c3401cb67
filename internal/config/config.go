package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("duration must be a scalar")
	}
	if value.Value == "" {
		d.Duration = 0
		return nil
	}
	if value.Tag == "!!int" {
		var v int64
		if err := value.Decode(&v); err != nil {
			return err
		}
		d.Duration = time.Duration(v) * time.Millisecond
		return nil
	}
	dur, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	d.Duration = dur
	return nil
}

// Environment variables recognized by applyEnv. The private key is only ever
// read from the environment, never from the config file.
const (
	EnvRPCURL        = "ETHSEND_RPC_URL"
	EnvPrivateKey    = "ETHSEND_PRIVATE_KEY"
	EnvTo            = "ETHSEND_TO"
	EnvAmountETH     = "ETHSEND_AMOUNT_ETH"
	EnvChainID       = "ETHSEND_CHAIN_ID"
	EnvPriorityGwei  = "ETHSEND_PRIORITY_GWEI"
	EnvFeeMultiplier = "ETHSEND_FEE_MULTIPLIER"
)

type Config struct {
	// ChainID 0 means: ask the node (eth_chainId).
	ChainID uint64 `yaml:"chain_id"`

	RPC struct {
		HTTP string `yaml:"http"`
	} `yaml:"rpc"`

	Transfer struct {
		To        string `yaml:"to"`
		AmountETH string `yaml:"amount_eth"`
	} `yaml:"transfer"`

	Tx struct {
		GasLimit        uint64  `yaml:"gas_limit"`
		PriorityFeeGwei float64 `yaml:"priority_fee_gwei"`
		FeeMultiplier   uint64  `yaml:"fee_multiplier"`
		// MaxFeeGwei is an optional hard cap on max fee per gas. Zero
		// disables the cap.
		MaxFeeGwei float64 `yaml:"max_fee_gwei"`
	} `yaml:"tx"`

	Confirm struct {
		PollInterval Duration `yaml:"poll_interval"`
		MaxPolls     int      `yaml:"max_polls"`
	} `yaml:"confirm"`

	Performance struct {
		RequestTimeout Duration `yaml:"request_timeout"`
	} `yaml:"performance"`

	// DryRun builds and signs but never broadcasts. Usually set by the
	// -dry-run flag rather than the file.
	DryRun bool `yaml:"dry_run"`

	// PrivateKey comes from ETHSEND_PRIVATE_KEY only.
	PrivateKey string `yaml:"-"`
}

// Load reads the YAML file at path (an empty path skips the file), applies
// environment overrides, fills defaults, and validates. The returned config is
// complete; nothing downstream reads the environment.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvRPCURL); v != "" {
		c.RPC.HTTP = v
	}
	if v := os.Getenv(EnvPrivateKey); v != "" {
		c.PrivateKey = v
	}
	if v := os.Getenv(EnvTo); v != "" {
		c.Transfer.To = v
	}
	if v := os.Getenv(EnvAmountETH); v != "" {
		c.Transfer.AmountETH = v
	}
	if v := os.Getenv(EnvChainID); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvChainID, v, err)
		}
		c.ChainID = id
	}
	if v := os.Getenv(EnvPriorityGwei); v != "" {
		p, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvPriorityGwei, v, err)
		}
		c.Tx.PriorityFeeGwei = p
	}
	if v := os.Getenv(EnvFeeMultiplier); v != "" {
		m, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvFeeMultiplier, v, err)
		}
		c.Tx.FeeMultiplier = m
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.ChainID == 0 {
		// Sepolia. An explicit chain_id skips the eth_chainId query.
		c.ChainID = 11155111
	}
	if c.Transfer.AmountETH == "" {
		c.Transfer.AmountETH = "0.001"
	}
	if c.Tx.GasLimit == 0 {
		c.Tx.GasLimit = 21000
	}
	if c.Tx.PriorityFeeGwei == 0 {
		c.Tx.PriorityFeeGwei = 2
	}
	if c.Tx.FeeMultiplier == 0 {
		c.Tx.FeeMultiplier = 2
	}
	if c.Confirm.PollInterval.Duration == 0 {
		c.Confirm.PollInterval = Duration{Duration: 5 * time.Second}
	}
	if c.Confirm.MaxPolls == 0 {
		c.Confirm.MaxPolls = 24
	}
	if c.Performance.RequestTimeout.Duration == 0 {
		c.Performance.RequestTimeout = Duration{Duration: 15 * time.Second}
	}
}

func (c *Config) validate() error {
	if c.RPC.HTTP == "" {
		return fmt.Errorf("rpc.http is required (or %s)", EnvRPCURL)
	}
	if strings.TrimSpace(c.PrivateKey) == "" {
		return fmt.Errorf("%s is required", EnvPrivateKey)
	}
	if strings.TrimSpace(c.Transfer.To) == "" {
		return fmt.Errorf("transfer.to is required (or %s)", EnvTo)
	}
	if c.Tx.PriorityFeeGwei < 0 {
		return fmt.Errorf("tx.priority_fee_gwei must be non-negative")
	}
	if c.Tx.MaxFeeGwei < 0 {
		return fmt.Errorf("tx.max_fee_gwei must be non-negative")
	}
	// A cap below the priority fee can never yield a valid fee pair.
	// Refuse it here, before anything touches the network.
	if c.Tx.MaxFeeGwei > 0 && c.Tx.MaxFeeGwei < c.Tx.PriorityFeeGwei {
		return fmt.Errorf("tx.max_fee_gwei (%v) is below tx.priority_fee_gwei (%v)",
			c.Tx.MaxFeeGwei, c.Tx.PriorityFeeGwei)
	}
	if c.Confirm.MaxPolls < 1 {
		return fmt.Errorf("confirm.max_polls must be >= 1")
	}
	return nil
}
