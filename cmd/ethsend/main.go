package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/core/types"

	"ethsend/internal/app"
	"ethsend/internal/config"
	"ethsend/internal/sender"
)

// Exit codes. Timeout gets its own code so callers can tell "check the
// explorer later" apart from "this failed".
const (
	exitOK      = 0
	exitFailure = 1
	exitPending = 2
)

func main() {
	configPath := flag.String("config", "", "path to config file (optional; env vars work alone)")
	dryRun := flag.Bool("dry-run", false, "build and sign, do not broadcast")
	debug := flag.Bool("debug", false, "enable debug logs")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(exitFailure)
	}
	if *dryRun {
		cfg.DryRun = true
	}

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, err := app.New(cfg, logger).Run(ctx)
	os.Exit(report(logger, res, err))
}

func report(logger *slog.Logger, res *sender.Result, err error) int {
	var timeout *sender.TimeoutError
	if errors.As(err, &timeout) {
		logger.Warn("transaction submitted but unconfirmed",
			"hash", timeout.Hash.Hex(),
			"polls", timeout.Polls,
		)
		return exitPending
	}
	if err != nil {
		logger.Error("transfer failed", "error", err)
		return exitFailure
	}
	if res.DryRun {
		logger.Info("dry run complete", "hash", res.Hash.Hex())
		return exitOK
	}
	if res.Receipt.Status != types.ReceiptStatusSuccessful {
		logger.Error("transaction mined but reverted",
			"hash", res.Hash.Hex(),
			"block", res.Receipt.BlockNumber.String(),
			"gas_used", res.Receipt.GasUsed,
		)
		return exitFailure
	}
	logger.Info("transfer confirmed",
		"hash", res.Hash.Hex(),
		"block", res.Receipt.BlockNumber.String(),
		"gas_used", res.Receipt.GasUsed,
	)
	return exitOK
}
