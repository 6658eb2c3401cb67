package sender

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"golang.org/x/sync/errgroup"

	"ethsend/internal/chain"
	"ethsend/internal/keys"
)

type Config struct {
	PollInterval   time.Duration
	MaxPolls       int
	RequestTimeout time.Duration
	// DryRun stops after signing; nothing is broadcast.
	DryRun bool
	// SkipBalanceCheck disables the pre-broadcast funds check.
	SkipBalanceCheck bool
}

// Result is the terminal state of a run that did not error out. Receipt is nil
// for dry runs.
type Result struct {
	Hash    common.Hash
	Receipt *types.Receipt
	DryRun  bool
}

// Sender signs, submits, and waits for inclusion. One transaction per call;
// it never resubmits, bumps fees, or reuses a nonce on its own. An ambiguous
// outcome (timeout) is reported as such rather than "fixed" by a retry that
// could double-spend.
type Sender struct {
	client chain.Client
	logger *slog.Logger
	cfg    Config
	sleep  func(ctx context.Context, d time.Duration) error
}

func New(client chain.Client, logger *slog.Logger, cfg Config) *Sender {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	if cfg.MaxPolls <= 0 {
		cfg.MaxPolls = 24
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 15 * time.Second
	}
	return &Sender{client: client, logger: logger, cfg: cfg, sleep: sleepCtx}
}

// NewWithSleep injects the wait primitive so tests can run the poll loop
// without real delay.
func NewWithSleep(client chain.Client, logger *slog.Logger, cfg Config, sleep func(ctx context.Context, d time.Duration) error) *Sender {
	s := New(client, logger, cfg)
	if sleep != nil {
		s.sleep = sleep
	}
	return s
}

// Send signs tx with key, broadcasts it, and polls for the receipt. Terminal
// outcomes: a Result with a receipt, *RejectedError (never broadcast or
// refused by the node, no polling done), or *TimeoutError (broadcast but
// unconfirmed within the poll budget).
func (s *Sender) Send(ctx context.Context, key *keys.Key, tx *types.Transaction) (*Result, error) {
	if key == nil || tx == nil {
		return nil, errors.New("key and transaction are required")
	}
	signed, err := key.SignTx(tx, tx.ChainId())
	if err != nil {
		return nil, fmt.Errorf("sign: %w", err)
	}

	// A signature that recovers to a different address would spend from the
	// wrong account; refuse it before it leaves the process.
	recovered, err := types.Sender(types.LatestSignerForChainID(tx.ChainId()), signed)
	if err != nil {
		return nil, fmt.Errorf("recover sender: %w", err)
	}
	if recovered != key.Address() {
		return nil, fmt.Errorf("signature recovers to %s, expected %s", recovered.Hex(), key.Address().Hex())
	}

	raw, err := signed.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("encode transaction: %w", err)
	}

	s.logger.Info("transaction signed",
		"hash", signed.Hash().Hex(),
		"nonce", signed.Nonce(),
		"to", addrHex(signed.To()),
		"value_wei", signed.Value().String(),
		"gas", signed.Gas(),
		"max_fee_wei", signed.GasFeeCap().String(),
		"priority_fee_wei", signed.GasTipCap().String(),
		"raw_bytes", len(raw),
	)

	if !s.cfg.SkipBalanceCheck {
		if err := s.checkBalance(ctx, recovered, signed); err != nil {
			return nil, err
		}
	}

	if s.cfg.DryRun {
		s.logger.Info("dry run, not broadcasting", "hash", signed.Hash().Hex())
		return &Result{Hash: signed.Hash(), DryRun: true}, nil
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	err = s.client.SendTransaction(sendCtx, signed)
	cancel()
	if err != nil {
		return nil, &RejectedError{Reason: err.Error(), Err: err}
	}
	s.logger.Info("transaction submitted", "hash", signed.Hash().Hex())

	receipt, err := s.waitForReceipt(ctx, signed.Hash(), signed.GasFeeCap())
	if err != nil {
		return nil, err
	}
	return &Result{Hash: signed.Hash(), Receipt: receipt}, nil
}

// checkBalance refuses to broadcast a transfer the sender cannot possibly pay
// for. Worst case cost is value + gasLimit*maxFeePerGas.
func (s *Sender) checkBalance(ctx context.Context, from common.Address, tx *types.Transaction) error {
	qctx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()
	balance, err := s.client.BalanceAt(qctx, from, nil)
	if err != nil {
		return fmt.Errorf("query balance: %w", err)
	}
	cost := new(big.Int).Mul(tx.GasFeeCap(), new(big.Int).SetUint64(tx.Gas()))
	cost.Add(cost, tx.Value())
	if balance.Cmp(cost) < 0 {
		return &RejectedError{Reason: fmt.Sprintf(
			"insufficient funds: balance %s wei, worst-case cost %s wei", balance.String(), cost.String())}
	}
	return nil
}

// waitForReceipt polls for inclusion a bounded number of times. A second
// goroutine watches the head base fee and warns when it climbs past the
// transaction's fee cap, which means the transaction cannot be mined until the
// base fee falls again.
func (s *Sender) waitForReceipt(ctx context.Context, hash common.Hash, feeCap *big.Int) (*types.Receipt, error) {
	var receipt *types.Receipt

	g, gctx := errgroup.WithContext(ctx)
	watchCtx, stopWatch := context.WithCancel(gctx)

	g.Go(func() error {
		defer stopWatch()
		for i := 1; i <= s.cfg.MaxPolls; i++ {
			if err := s.sleep(gctx, s.cfg.PollInterval); err != nil {
				return err
			}
			qctx, cancel := context.WithTimeout(gctx, s.cfg.RequestTimeout)
			r, err := s.client.TransactionReceipt(qctx, hash)
			cancel()
			if err == nil {
				receipt = r
				return nil
			}
			if errors.Is(err, ethereum.NotFound) {
				s.logger.Debug("no receipt yet", "hash", hash.Hex(), "poll", i)
				continue
			}
			if gctx.Err() != nil {
				return gctx.Err()
			}
			// Transient query failure; the transaction is already out, so
			// keep waiting rather than abandoning it early.
			s.logger.Warn("receipt query failed", "hash", hash.Hex(), "poll", i, "error", err)
		}
		return &TimeoutError{Hash: hash, Polls: s.cfg.MaxPolls}
	})

	g.Go(func() error {
		s.watchBaseFee(watchCtx, hash, feeCap)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return receipt, nil
}

func (s *Sender) watchBaseFee(ctx context.Context, hash common.Hash, feeCap *big.Int) {
	if feeCap == nil {
		return
	}
	warned := false
	for {
		if err := s.sleep(ctx, s.cfg.PollInterval); err != nil {
			return
		}
		qctx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
		header, err := s.client.HeaderByNumber(qctx, nil)
		cancel()
		if err != nil || header == nil || header.BaseFee == nil {
			continue
		}
		if header.BaseFee.Cmp(feeCap) > 0 {
			if !warned {
				s.logger.Warn("head base fee above transaction fee cap",
					"hash", hash.Hex(),
					"base_fee_wei", header.BaseFee.String(),
					"max_fee_wei", feeCap.String(),
				)
				warned = true
			}
		} else {
			warned = false
		}
	}
}

func addrHex(addr *common.Address) string {
	if addr == nil {
		return ""
	}
	return addr.Hex()
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
