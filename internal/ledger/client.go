// Package ledger is the only boundary between the dashboard and the SPBU
// Diamond contract. Screens never talk to a chain directly; they receive a
// Client and issue Read and Write calls by contract function name.
package ledger

import "context"

// Call names a contract function and its positional arguments. Arguments
// are ledger-neutral Go values: uint64, int64, string, bool and slices of
// those. Implementations coerce them to the ABI types they need.
type Call struct {
	Function string
	Args     []any
}

func NewCall(function string, args ...any) Call {
	return Call{Function: function, Args: args}
}

// TxResult describes a mined write.
type TxResult struct {
	Hash  string `json:"hash"`
	Block uint64 `json:"block"`
}

// Client dispatches contract reads and writes.
type Client interface {
	// Read performs a view call and returns the decoded result in whatever
	// shape the backend produced; pass it through Normalize or the
	// scalar helpers before use.
	Read(ctx context.Context, call Call) (any, error)

	// Write sends a state-changing transaction and waits for it to be mined.
	Write(ctx context.Context, call Call) (TxResult, error)

	// SimulateThenWrite dry-runs the call first so reverts surface before
	// any transaction is sent.
	SimulateThenWrite(ctx context.Context, call Call) (TxResult, error)
}
