package resource

import (
	"context"
	"sync"

	"github.com/emilianohg/spbuadmin/internal/ledger"
)

type fakeClient struct {
	mu     sync.Mutex
	reads  map[string]func(args []any) (any, error)
	writes []ledger.Call
	sims   int
	block  chan struct{}
	werr   error
}

func newFake() *fakeClient {
	return &fakeClient{reads: map[string]func([]any) (any, error){}}
}

func (c *fakeClient) on(fn string, h func(args []any) (any, error)) {
	c.reads[fn] = h
}

func (c *fakeClient) Read(_ context.Context, call ledger.Call) (any, error) {
	h, ok := c.reads[call.Function]
	if !ok {
		return nil, ledger.ErrUnknownFunction
	}
	return h(call.Args)
}

func (c *fakeClient) Write(ctx context.Context, call ledger.Call) (ledger.TxResult, error) {
	if c.block != nil {
		select {
		case <-c.block:
		case <-ctx.Done():
			return ledger.TxResult{}, ctx.Err()
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writes = append(c.writes, call)
	if c.werr != nil {
		return ledger.TxResult{}, c.werr
	}
	return ledger.TxResult{Hash: "0xabc", Block: uint64(len(c.writes))}, nil
}

func (c *fakeClient) SimulateThenWrite(ctx context.Context, call ledger.Call) (ledger.TxResult, error) {
	c.mu.Lock()
	c.sims++
	c.mu.Unlock()
	return c.Write(ctx, call)
}

func (c *fakeClient) written() []ledger.Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]ledger.Call(nil), c.writes...)
}
