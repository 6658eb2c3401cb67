package txbuilder

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/params"
)

const DefaultFeeMultiplier = 2

// DefaultPriorityFee is 2 gwei.
func DefaultPriorityFee() *big.Int {
	return new(big.Int).SetUint64(2 * params.GWei)
}

type FeeParams struct {
	MaxFeePerGas         *big.Int
	MaxPriorityFeePerGas *big.Int
}

type FeeOptions struct {
	// PriorityFee in wei; nil selects the default.
	PriorityFee *big.Int
	// Multiplier applied to the base fee; 0 selects the default.
	Multiplier uint64
	// MaxFeeCap, when non-nil, is a hard upper bound on max fee per gas.
	MaxFeeCap *big.Int
}

// EstimateFees derives the fee pair for a transaction from the current base
// fee:
//
//	maxFee = baseFee*multiplier + priority
//
// The multiplier headroom is what lets the transaction survive base-fee growth
// across the confirmation window. The result always satisfies
// maxFee >= priority; an override combination that cannot is rejected, never
// silently clamped.
func EstimateFees(baseFee *big.Int, opts FeeOptions) (FeeParams, error) {
	if baseFee == nil {
		return FeeParams{}, &ValidationError{Field: "base fee", Reason: "missing"}
	}
	if baseFee.Sign() < 0 {
		return FeeParams{}, &ValidationError{Field: "base fee", Reason: "negative"}
	}
	priority := opts.PriorityFee
	if priority == nil {
		priority = DefaultPriorityFee()
	}
	if priority.Sign() < 0 {
		return FeeParams{}, &ValidationError{Field: "priority fee", Reason: "negative"}
	}
	multiplier := opts.Multiplier
	if multiplier == 0 {
		multiplier = DefaultFeeMultiplier
	}

	maxFee := new(big.Int).Mul(baseFee, new(big.Int).SetUint64(multiplier))
	maxFee.Add(maxFee, priority)
	if maxFee.BitLen() > 256 {
		return FeeParams{}, fmt.Errorf("max fee per gas overflows 256 bits (base fee %s, multiplier %d)",
			baseFee.String(), multiplier)
	}
	if opts.MaxFeeCap != nil {
		if opts.MaxFeeCap.Cmp(priority) < 0 {
			return FeeParams{}, fmt.Errorf("max fee cap %s wei is below priority fee %s wei",
				opts.MaxFeeCap.String(), priority.String())
		}
		if maxFee.Cmp(opts.MaxFeeCap) > 0 {
			maxFee.Set(opts.MaxFeeCap)
		}
	}
	return FeeParams{
		MaxFeePerGas:         maxFee,
		MaxPriorityFeePerGas: new(big.Int).Set(priority),
	}, nil
}
