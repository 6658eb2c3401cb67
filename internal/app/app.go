package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"

	"ethsend/internal/chain"
	"ethsend/internal/config"
	"ethsend/internal/keys"
	"ethsend/internal/sender"
	"ethsend/internal/txbuilder"
)

type App struct {
	cfg    *config.Config
	logger *slog.Logger
}

func New(cfg *config.Config, logger *slog.Logger) *App {
	return &App{cfg: cfg, logger: logger}
}

// Run executes one transfer end to end: parse inputs, read chain state,
// derive fees, assemble, sign, submit, wait. Input parsing happens before the
// dial so that bad configuration never costs a network round trip.
func (a *App) Run(ctx context.Context) (*sender.Result, error) {
	key, err := keys.FromHex(a.cfg.PrivateKey)
	if err != nil {
		return nil, err
	}
	to, err := txbuilder.ParseAddress(a.cfg.Transfer.To)
	if err != nil {
		return nil, err
	}
	amount, err := txbuilder.ParseEth(a.cfg.Transfer.AmountETH)
	if err != nil {
		return nil, err
	}
	feeOpts, err := a.feeOptions()
	if err != nil {
		return nil, err
	}

	client, err := dialHTTP(ctx, a.cfg.RPC.HTTP)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", a.cfg.RPC.HTTP, err)
	}
	defer client.Close()

	reader := chain.NewReader(client, a.cfg.ChainID)
	state, err := reader.Read(ctx, key.Address())
	if err != nil {
		return nil, err
	}
	a.logger.Info("chain state",
		"chain_id", state.ChainID.String(),
		"base_fee_wei", state.BaseFee.String(),
		"nonce", state.Nonce,
	)

	fees, err := txbuilder.EstimateFees(state.BaseFee, feeOpts)
	if err != nil {
		return nil, err
	}

	tx, err := txbuilder.BuildTransferTx(state.ChainID, txbuilder.TransferParams{
		To:       to,
		ValueWei: amount,
		Nonce:    state.Nonce,
		GasLimit: a.cfg.Tx.GasLimit,
		Fee:      fees,
	})
	if err != nil {
		return nil, err
	}
	a.logger.Info("transfer prepared",
		"from", shortAddr(key.Address().Hex()),
		"to", shortAddr(to.Hex()),
		"amount_eth", a.cfg.Transfer.AmountETH,
		"max_fee_wei", fees.MaxFeePerGas.String(),
		"priority_fee_wei", fees.MaxPriorityFeePerGas.String(),
	)

	snd := sender.New(client, a.logger, sender.Config{
		PollInterval:   a.cfg.Confirm.PollInterval.Duration,
		MaxPolls:       a.cfg.Confirm.MaxPolls,
		RequestTimeout: a.cfg.Performance.RequestTimeout.Duration,
		DryRun:         a.cfg.DryRun,
	})
	return snd.Send(ctx, key, tx)
}

func (a *App) feeOptions() (txbuilder.FeeOptions, error) {
	priority, err := txbuilder.GweiToWei(a.cfg.Tx.PriorityFeeGwei)
	if err != nil {
		return txbuilder.FeeOptions{}, fmt.Errorf("priority fee: %w", err)
	}
	opts := txbuilder.FeeOptions{
		PriorityFee: priority,
		Multiplier:  a.cfg.Tx.FeeMultiplier,
	}
	if a.cfg.Tx.MaxFeeGwei > 0 {
		feeCap, err := txbuilder.GweiToWei(a.cfg.Tx.MaxFeeGwei)
		if err != nil {
			return txbuilder.FeeOptions{}, fmt.Errorf("max fee cap: %w", err)
		}
		opts.MaxFeeCap = feeCap
	}
	return opts, nil
}

func dialHTTP(ctx context.Context, url string) (*ethclient.Client, error) {
	rpcClient, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, err
	}
	rpcClient.SetHeader("User-Agent", "ethsend")
	return ethclient.NewClient(rpcClient), nil
}

// shortAddr renders 0xabcdef...1234 for logs.
func shortAddr(hex string) string {
	if len(hex) <= 12 {
		return hex
	}
	return hex[:8] + "..." + hex[len(hex)-4:]
}
