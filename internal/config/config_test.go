package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const testKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv(EnvRPCURL, "http://localhost:8545")
	t.Setenv(EnvPrivateKey, testKey)
	t.Setenv(EnvTo, "0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
}

func clearOptionalEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvAmountETH, EnvChainID, EnvPriorityGwei, EnvFeeMultiplier} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaultsFromEnvOnly(t *testing.T) {
	setRequiredEnv(t)
	clearOptionalEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.ChainID != 11155111 {
		t.Errorf("default chain id = %d, want 11155111", cfg.ChainID)
	}
	if cfg.Transfer.AmountETH != "0.001" {
		t.Errorf("default amount = %q, want 0.001", cfg.Transfer.AmountETH)
	}
	if cfg.Tx.GasLimit != 21000 {
		t.Errorf("default gas limit = %d, want 21000", cfg.Tx.GasLimit)
	}
	if cfg.Tx.PriorityFeeGwei != 2 {
		t.Errorf("default priority fee = %v, want 2", cfg.Tx.PriorityFeeGwei)
	}
	if cfg.Tx.FeeMultiplier != 2 {
		t.Errorf("default multiplier = %d, want 2", cfg.Tx.FeeMultiplier)
	}
	if cfg.Confirm.PollInterval.Duration != 5*time.Second {
		t.Errorf("default poll interval = %v, want 5s", cfg.Confirm.PollInterval.Duration)
	}
	if cfg.Confirm.MaxPolls != 24 {
		t.Errorf("default max polls = %d, want 24", cfg.Confirm.MaxPolls)
	}
}

func TestLoadFileWithEnvOverride(t *testing.T) {
	setRequiredEnv(t)
	clearOptionalEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := `
chain_id: 1
transfer:
  amount_eth: "0.5"
tx:
  priority_fee_gwei: 3
confirm:
  poll_interval: 2s
  max_polls: 10
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvChainID, "17000")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.ChainID != 17000 {
		t.Errorf("chain id = %d, want env override 17000", cfg.ChainID)
	}
	if cfg.Transfer.AmountETH != "0.5" {
		t.Errorf("amount = %q, want 0.5", cfg.Transfer.AmountETH)
	}
	if cfg.Tx.PriorityFeeGwei != 3 {
		t.Errorf("priority fee = %v, want 3", cfg.Tx.PriorityFeeGwei)
	}
	if cfg.Confirm.PollInterval.Duration != 2*time.Second {
		t.Errorf("poll interval = %v, want 2s", cfg.Confirm.PollInterval.Duration)
	}
	if cfg.Confirm.MaxPolls != 10 {
		t.Errorf("max polls = %d, want 10", cfg.Confirm.MaxPolls)
	}
}

func TestLoadMissingRequired(t *testing.T) {
	cases := []struct {
		name  string
		unset string
		want  string
	}{
		{"rpc", EnvRPCURL, "rpc.http"},
		{"key", EnvPrivateKey, EnvPrivateKey},
		{"to", EnvTo, "transfer.to"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			setRequiredEnv(t)
			clearOptionalEnv(t)
			t.Setenv(tc.unset, "")
			_, err := Load("")
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestLoadFeeCapBelowPriority(t *testing.T) {
	setRequiredEnv(t)
	clearOptionalEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := `
tx:
  priority_fee_gwei: 5
  max_fee_gwei: 3
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for max_fee_gwei below priority_fee_gwei")
	}
	if !strings.Contains(err.Error(), "max_fee_gwei") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoadBadEnvNumber(t *testing.T) {
	setRequiredEnv(t)
	clearOptionalEnv(t)
	t.Setenv(EnvChainID, "not-a-number")

	_, err := Load("")
	if err == nil {
		t.Fatal("expected error for bad chain id")
	}
}
