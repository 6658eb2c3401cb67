package txbuilder

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// TransferGas is the gas a plain native transfer costs. It is fixed by the
// protocol, so no estimation call is needed.
const TransferGas = 21000

type TransferParams struct {
	To       common.Address
	ValueWei *big.Int
	Nonce    uint64
	GasLimit uint64
	Fee      FeeParams
}

// BuildTransferTx assembles an unsigned EIP-1559 native transfer. Data and
// access list stay empty: this builder never produces contract calls. The
// result is deterministic; identical inputs encode to identical bytes.
func BuildTransferTx(chainID *big.Int, p TransferParams) (*types.Transaction, error) {
	if chainID == nil || chainID.Sign() <= 0 {
		return nil, &ValidationError{Field: "chain id", Reason: "missing"}
	}
	if p.ValueWei == nil {
		return nil, &ValidationError{Field: "value", Reason: "missing"}
	}
	if p.ValueWei.Sign() < 0 {
		return nil, &ValidationError{Field: "value", Reason: "negative"}
	}
	if p.ValueWei.BitLen() > 256 {
		return nil, &ValidationError{Field: "value", Reason: "exceeds 256 bits"}
	}
	if p.GasLimit == 0 {
		return nil, &ValidationError{Field: "gas limit", Reason: "zero"}
	}
	if p.Fee.MaxFeePerGas == nil || p.Fee.MaxPriorityFeePerGas == nil {
		return nil, &ValidationError{Field: "fees", Reason: "max fee and priority fee are required"}
	}
	if p.Fee.MaxFeePerGas.Sign() < 0 || p.Fee.MaxPriorityFeePerGas.Sign() < 0 {
		return nil, &ValidationError{Field: "fees", Reason: "negative"}
	}
	if p.Fee.MaxFeePerGas.Cmp(p.Fee.MaxPriorityFeePerGas) < 0 {
		return nil, &ValidationError{Field: "fees", Reason: "max fee per gas below priority fee"}
	}
	to := p.To
	return types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     p.Nonce,
		Gas:       p.GasLimit,
		GasFeeCap: p.Fee.MaxFeePerGas,
		GasTipCap: p.Fee.MaxPriorityFeePerGas,
		To:        &to,
		Value:     p.ValueWei,
	}), nil
}

// ParseAddress validates and parses a 0x-prefixed hex address.
func ParseAddress(value string) (common.Address, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return common.Address{}, &ValidationError{Field: "address", Reason: "empty"}
	}
	if !common.IsHexAddress(value) {
		return common.Address{}, &ValidationError{Field: "address", Reason: "not a 20-byte hex address: " + value}
	}
	return common.HexToAddress(value), nil
}
