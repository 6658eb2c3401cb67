package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// State is everything the network has to tell us before a transaction can be
// built: the head base fee, the sender's next nonce, and the chain id.
type State struct {
	BaseFee *big.Int
	Nonce   uint64
	ChainID *big.Int
}

// Reader performs the read-only queries that feed transaction construction.
// Queries are not retried here; a failed query surfaces immediately.
type Reader struct {
	client  Client
	chainID uint64 // configured override, 0 = query the node
}

func NewReader(client Client, chainID uint64) *Reader {
	return &Reader{client: client, chainID: chainID}
}

func (r *Reader) Read(ctx context.Context, from common.Address) (State, error) {
	if r.client == nil {
		return State{}, errors.New("chain client is nil")
	}
	baseFee, err := r.baseFee(ctx)
	if err != nil {
		return State{}, fmt.Errorf("query base fee: %w", err)
	}
	nonce, err := r.client.PendingNonceAt(ctx, from)
	if err != nil {
		return State{}, fmt.Errorf("query nonce for %s: %w", from.Hex(), err)
	}
	chainID, err := r.resolveChainID(ctx)
	if err != nil {
		return State{}, err
	}
	return State{BaseFee: baseFee, Nonce: nonce, ChainID: chainID}, nil
}

func (r *Reader) baseFee(ctx context.Context) (*big.Int, error) {
	header, err := r.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, err
	}
	if header.BaseFee != nil {
		return new(big.Int).Set(header.BaseFee), nil
	}
	// Pre-London endpoint: approximate with the suggested gas price.
	price, err := r.client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, err
	}
	return price, nil
}

func (r *Reader) resolveChainID(ctx context.Context) (*big.Int, error) {
	if r.chainID != 0 {
		return new(big.Int).SetUint64(r.chainID), nil
	}
	id, err := r.client.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("query chain id: %w", err)
	}
	if id == nil || id.Sign() <= 0 {
		return nil, errors.New("node returned no usable chain id; set chain_id explicitly")
	}
	return id, nil
}
