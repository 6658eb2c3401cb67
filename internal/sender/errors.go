package sender

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// RejectedError means the transaction never entered the mempool: either the
// node refused the raw submission or a local preflight refused to broadcast.
// Reason carries the node's message verbatim.
type RejectedError struct {
	Reason string
	Err    error
}

func (e *RejectedError) Error() string {
	return "transaction rejected: " + e.Reason
}

func (e *RejectedError) Unwrap() error {
	return e.Err
}

// TimeoutError means the transaction was broadcast but no receipt showed up
// within the poll budget. This is not a failure of the transaction itself; it
// may still be mined later. Callers should treat it as "check back", not as
// "lost".
type TimeoutError struct {
	Hash  common.Hash
	Polls int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("no receipt for %s after %d polls; transaction may still confirm", e.Hash.Hex(), e.Polls)
}
