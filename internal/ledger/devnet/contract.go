// Package devnet is an in-process stand-in for the Diamond contract. It
// exposes the same function names and argument order as the deployed ABI,
// derived from the resource catalog, and keeps state in sqlite so the
// dashboard can run end to end without a chain.
package devnet

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/emilianohg/spbuadmin/internal/ledger"
	"github.com/emilianohg/spbuadmin/internal/logging"
	"github.com/emilianohg/spbuadmin/internal/repository"
	"github.com/emilianohg/spbuadmin/internal/resource"
)

// MaxLimit caps the page size a list function returns.
const MaxLimit = 1000

type handler struct {
	write bool
	// check runs before any state change and reports reverts.
	check func(ctx context.Context, args []any) error
	run   func(ctx context.Context, args []any) (any, error)
}

// Contract implements ledger.Client over sqlite.
type Contract struct {
	records *repository.RecordRepo
	txs     *repository.TxRepo
	log     logging.Logger
	now     func() time.Time

	kinds map[string]*resource.Resource
	fns   map[string]handler

	// writes are applied one at a time, like transactions in a block
	mu sync.Mutex
}

var _ ledger.Client = (*Contract)(nil)

func New(database *sqlx.DB, resources []*resource.Resource, log logging.Logger) (*Contract, error) {
	c := &Contract{
		records: repository.NewRecordRepo(database),
		txs:     repository.NewTxRepo(database),
		log:     log.With("component", "devnet"),
		now:     time.Now,
		kinds:   make(map[string]*resource.Resource, len(resources)),
		fns:     make(map[string]handler),
	}
	for _, res := range resources {
		c.kinds[res.Name] = res
		if err := c.bind(res); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Functions lists every bound function name.
func (c *Contract) Functions() []string {
	names := make([]string, 0, len(c.fns))
	for name := range c.fns {
		names = append(names, name)
	}
	return names
}

func (c *Contract) register(name string, h handler) error {
	if name == "" {
		return nil
	}
	if _, dup := c.fns[name]; dup {
		return fmt.Errorf("devnet: function %s bound twice", name)
	}
	c.fns[name] = h
	return nil
}

func (c *Contract) bind(res *resource.Resource) error {
	kind := res.Name
	calls := res.Calls

	listParams := calls.ListParams
	if listParams == nil {
		listParams = []resource.Param{resource.Offset(), resource.Limit()}
	}
	if err := c.register(calls.List, handler{run: func(ctx context.Context, args []any) (any, error) {
		f, err := filterFromArgs(listParams, args)
		if err != nil {
			return nil, err
		}
		if f.Limit == 0 {
			return []ledger.Record{}, nil
		}
		stored, err := c.records.List(ctx, kind, f)
		if err != nil {
			return nil, err
		}
		out := make([]ledger.Record, 0, len(stored))
		for i := range stored {
			rec, err := toRecord(&stored[i])
			if err != nil {
				return nil, err
			}
			out = append(out, rec)
		}
		return out, nil
	}}); err != nil {
		return err
	}

	if err := c.register(calls.Count, handler{run: func(ctx context.Context, args []any) (any, error) {
		f, err := filterFromArgs(calls.CountParams, args)
		if err != nil {
			return nil, err
		}
		return c.records.Count(ctx, kind, f)
	}}); err != nil {
		return err
	}

	if err := c.register(calls.Get, handler{run: func(ctx context.Context, args []any) (any, error) {
		id, err := idArg(args)
		if err != nil {
			return nil, err
		}
		stored, err := c.records.Get(ctx, kind, id)
		if err != nil {
			return nil, err
		}
		if stored == nil {
			return zeroRecord(), nil
		}
		return toRecord(stored)
	}}); err != nil {
		return err
	}

	for _, rel := range res.Relations {
		if rel.Get == "" {
			continue
		}
		key := rel.Key
		if err := c.register(rel.Get, handler{run: func(ctx context.Context, args []any) (any, error) {
			id, err := idArg(args)
			if err != nil {
				return nil, err
			}
			stored, err := c.records.Get(ctx, kind, id)
			if err != nil || stored == nil {
				return []uint64{}, err
			}
			rec, err := toRecord(stored)
			if err != nil {
				return nil, err
			}
			ids := rec.Uints(key)
			if ids == nil {
				ids = []uint64{}
			}
			return ids, nil
		}}); err != nil {
			return err
		}
	}

	fieldsOf := func(fn string, args []any) (map[string]any, error) {
		if len(args) != len(res.WriteArgs) {
			return nil, fmt.Errorf("%s: want %d args, got %d: %w", fn, len(res.WriteArgs), len(args), ledger.ErrBadArguments)
		}
		fields := make(map[string]any, len(args))
		for i, key := range res.WriteArgs {
			fields[key] = storable(args[i])
		}
		return fields, nil
	}

	if err := c.register(calls.Create, handler{
		write: true,
		check: func(_ context.Context, args []any) error {
			_, err := fieldsOf(calls.Create, args)
			return err
		},
		run: func(ctx context.Context, args []any) (any, error) {
			fields, err := fieldsOf(calls.Create, args)
			if err != nil {
				return nil, err
			}
			return c.records.Create(ctx, kind, fields, c.now())
		},
	}); err != nil {
		return err
	}

	if err := c.register(calls.Update, handler{
		write: true,
		check: func(ctx context.Context, args []any) error {
			if len(args) == 0 {
				return fmt.Errorf("%s: %w", calls.Update, ledger.ErrBadArguments)
			}
			if err := c.mustExist(ctx, calls.Update, res, args[:1]); err != nil {
				return err
			}
			_, err := fieldsOf(calls.Update, args[1:])
			return err
		},
		run: func(ctx context.Context, args []any) (any, error) {
			id, _ := idArg(args)
			fields, err := fieldsOf(calls.Update, args[1:])
			if err != nil {
				return nil, err
			}
			return nil, c.revertOnMissing(calls.Update, res, c.records.Update(ctx, kind, id, fields, c.now()))
		},
	}); err != nil {
		return err
	}

	return c.register(calls.Delete, handler{
		write: true,
		check: func(ctx context.Context, args []any) error {
			return c.mustExist(ctx, calls.Delete, res, args)
		},
		run: func(ctx context.Context, args []any) (any, error) {
			id, err := idArg(args)
			if err != nil {
				return nil, err
			}
			return nil, c.revertOnMissing(calls.Delete, res, c.records.SoftDelete(ctx, kind, id, c.now()))
		},
	})
}

func (c *Contract) mustExist(ctx context.Context, fn string, res *resource.Resource, args []any) error {
	id, err := idArg(args)
	if err != nil {
		return err
	}
	stored, err := c.records.Get(ctx, res.Name, id)
	if err != nil {
		return err
	}
	if stored == nil || stored.Deleted {
		return &ledger.RevertError{Function: fn, Reason: res.Singular + " tidak ditemukan"}
	}
	return nil
}

func (c *Contract) revertOnMissing(fn string, res *resource.Resource, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return &ledger.RevertError{Function: fn, Reason: res.Singular + " tidak ditemukan"}
	}
	return err
}

func (c *Contract) handler(fn string) (handler, error) {
	h, ok := c.fns[fn]
	if !ok {
		return handler{}, fmt.Errorf("%s: %w", fn, ledger.ErrUnknownFunction)
	}
	return h, nil
}

// Read runs a view function.
func (c *Contract) Read(ctx context.Context, call ledger.Call) (any, error) {
	h, err := c.handler(call.Function)
	if err != nil {
		return nil, err
	}
	if h.write {
		return nil, fmt.Errorf("%s is not a view function: %w", call.Function, ledger.ErrBadArguments)
	}
	return h.run(ctx, call.Args)
}

// Simulate dry-runs a write and reports the revert it would cause.
func (c *Contract) Simulate(ctx context.Context, call ledger.Call) error {
	h, err := c.writeHandler(call.Function)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return h.check(ctx, call.Args)
}

// Write applies a write and appends it to the transaction log.
func (c *Contract) Write(ctx context.Context, call ledger.Call) (ledger.TxResult, error) {
	h, err := c.writeHandler(call.Function)
	if err != nil {
		return ledger.TxResult{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := h.check(ctx, call.Args); err != nil {
		return ledger.TxResult{}, err
	}
	if _, err := h.run(ctx, call.Args); err != nil {
		return ledger.TxResult{}, err
	}

	hash := newTxHash()
	block, err := c.txs.Append(ctx, hash, call.Function, storableArgs(call.Args), c.now())
	if err != nil {
		return ledger.TxResult{}, fmt.Errorf("append tx: %w", err)
	}
	c.log.Debug(ctx, "tx applied", "function", call.Function, "hash", hash, "block", block)
	return ledger.TxResult{Hash: hash, Block: block}, nil
}

func (c *Contract) SimulateThenWrite(ctx context.Context, call ledger.Call) (ledger.TxResult, error) {
	if err := c.Simulate(ctx, call); err != nil {
		return ledger.TxResult{}, err
	}
	return c.Write(ctx, call)
}

// Head is the latest block number.
func (c *Contract) Head(ctx context.Context) (uint64, error) {
	return c.txs.Head(ctx)
}

// Transactions lists the latest writes, newest first.
func (c *Contract) Transactions(ctx context.Context, limit int) ([]repository.Transaction, error) {
	return c.txs.Recent(ctx, limit)
}

func (c *Contract) writeHandler(fn string) (handler, error) {
	h, err := c.handler(fn)
	if err != nil {
		return handler{}, err
	}
	if !h.write {
		return handler{}, fmt.Errorf("%s is a view function: %w", fn, ledger.ErrBadArguments)
	}
	return h, nil
}

// newTxHash returns a 32-byte hex hash built from two random UUIDs.
func newTxHash() string {
	a := strings.ReplaceAll(uuid.NewString(), "-", "")
	b := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "0x" + a + b
}
