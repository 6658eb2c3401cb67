package txbuilder

import (
	"errors"
	"math/big"
	"testing"
)

func gwei(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1_000_000_000))
}

func TestEstimateFeesDefaults(t *testing.T) {
	// base 10 gwei, default multiplier 2 and priority 2 gwei -> max 22 gwei.
	fees, err := EstimateFees(gwei(10), FeeOptions{})
	if err != nil {
		t.Fatalf("EstimateFees error: %v", err)
	}
	if fees.MaxFeePerGas.Cmp(gwei(22)) != 0 {
		t.Errorf("max fee = %s, want %s", fees.MaxFeePerGas, gwei(22))
	}
	if fees.MaxPriorityFeePerGas.Cmp(gwei(2)) != 0 {
		t.Errorf("priority fee = %s, want %s", fees.MaxPriorityFeePerGas, gwei(2))
	}
}

func TestEstimateFeesFormula(t *testing.T) {
	cases := []struct {
		baseFee    *big.Int
		multiplier uint64
		priority   *big.Int
	}{
		{big.NewInt(0), 1, big.NewInt(0)},
		{big.NewInt(1), 1, big.NewInt(0)},
		{gwei(10), 2, gwei(2)},
		{gwei(100), 3, gwei(1)},
		{gwei(7), 5, big.NewInt(123)},
		{big.NewInt(0), 4, gwei(9)},
	}
	for _, tc := range cases {
		fees, err := EstimateFees(tc.baseFee, FeeOptions{
			PriorityFee: tc.priority,
			Multiplier:  tc.multiplier,
		})
		if err != nil {
			t.Fatalf("EstimateFees(%s, x%d, %s) error: %v", tc.baseFee, tc.multiplier, tc.priority, err)
		}
		want := new(big.Int).Mul(tc.baseFee, new(big.Int).SetUint64(tc.multiplier))
		want.Add(want, tc.priority)
		if fees.MaxFeePerGas.Cmp(want) != 0 {
			t.Errorf("max fee = %s, want %s", fees.MaxFeePerGas, want)
		}
		if fees.MaxFeePerGas.Cmp(fees.MaxPriorityFeePerGas) < 0 {
			t.Errorf("invariant broken: max fee %s < priority %s", fees.MaxFeePerGas, fees.MaxPriorityFeePerGas)
		}
	}
}

func TestEstimateFeesCap(t *testing.T) {
	fees, err := EstimateFees(gwei(10), FeeOptions{
		PriorityFee: gwei(2),
		Multiplier:  2,
		MaxFeeCap:   gwei(15),
	})
	if err != nil {
		t.Fatalf("EstimateFees error: %v", err)
	}
	if fees.MaxFeePerGas.Cmp(gwei(15)) != 0 {
		t.Errorf("max fee = %s, want capped %s", fees.MaxFeePerGas, gwei(15))
	}
}

func TestEstimateFeesCapBelowPriority(t *testing.T) {
	_, err := EstimateFees(gwei(10), FeeOptions{
		PriorityFee: gwei(5),
		Multiplier:  2,
		MaxFeeCap:   gwei(3),
	})
	if err == nil {
		t.Fatal("expected error for cap below priority fee")
	}
}

func TestEstimateFeesOverflow(t *testing.T) {
	huge := new(big.Int).Lsh(big.NewInt(1), 255)
	_, err := EstimateFees(huge, FeeOptions{Multiplier: 4})
	if err == nil {
		t.Fatal("expected overflow error")
	}
}

func TestEstimateFeesRejectsBadInput(t *testing.T) {
	var verr *ValidationError
	if _, err := EstimateFees(nil, FeeOptions{}); !errors.As(err, &verr) {
		t.Errorf("nil base fee: got %v, want ValidationError", err)
	}
	if _, err := EstimateFees(big.NewInt(-1), FeeOptions{}); !errors.As(err, &verr) {
		t.Errorf("negative base fee: got %v, want ValidationError", err)
	}
	if _, err := EstimateFees(gwei(1), FeeOptions{PriorityFee: big.NewInt(-1)}); !errors.As(err, &verr) {
		t.Errorf("negative priority: got %v, want ValidationError", err)
	}
}
