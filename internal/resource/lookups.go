package resource

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/emilianohg/spbuadmin/internal/ledger"
	"github.com/emilianohg/spbuadmin/internal/models"
)

// Lookups maps lookup name -> id -> display name. The zero value is usable
// and resolves every id to a placeholder, so views render before lookups
// arrive.
type Lookups struct {
	names    map[string]map[uint64]string
	options  map[string][]models.Option
	singular map[string]string
}

func (l *Lookups) set(lk Lookup, opts []models.Option) {
	if l.names == nil {
		l.names = make(map[string]map[uint64]string)
		l.options = make(map[string][]models.Option)
		l.singular = make(map[string]string)
	}
	byID := make(map[uint64]string, len(opts))
	for _, o := range opts {
		byID[o.ID] = o.Label
	}
	l.names[lk.Name] = byID
	l.options[lk.Name] = opts
	l.singular[lk.Name] = lk.Singular
}

// Name resolves id, falling back to "<Singular> #<id>".
func (l Lookups) Name(lookup string, id uint64) string {
	if name, ok := l.names[lookup][id]; ok && name != "" {
		return name
	}
	singular := l.singular[lookup]
	if singular == "" {
		singular = "Data"
	}
	return fmt.Sprintf("%s #%d", singular, id)
}

// Names resolves ids in order.
func (l Lookups) Names(lookup string, ids []uint64) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = l.Name(lookup, id)
	}
	return out
}

// Options lists the live choices of a lookup in ledger order.
func (l Lookups) Options(lookup string) []models.Option {
	return l.options[lookup]
}

// OptionIDs lists the ids of a lookup in ledger order.
func (l Lookups) OptionIDs(lookup string) []uint64 {
	opts := l.options[lookup]
	ids := make([]uint64, len(opts))
	for i, o := range opts {
		ids[i] = o.ID
	}
	return ids
}

// LoadLookups reads every lookup concurrently. Soft-deleted entries are
// dropped from the choices.
func LoadLookups(ctx context.Context, client ledger.Client, lookups []Lookup) (Lookups, error) {
	var (
		out Lookups
		mu  sync.Mutex
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, lk := range lookups {
		lk := lk
		g.Go(func() error {
			opts, err := readLookup(gctx, client, lk)
			if err != nil {
				return err
			}
			mu.Lock()
			out.set(lk, opts)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Lookups{}, err
	}
	return out, nil
}

func readLookup(ctx context.Context, client ledger.Client, lk Lookup) ([]models.Option, error) {
	raw, err := client.Read(ctx, ledger.NewCall(lk.Call, lk.Args...))
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", lk.Name, err)
	}
	recs, err := ledger.Normalize(raw)
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", lk.Name, err)
	}
	opts := make([]models.Option, 0, len(recs))
	for _, rec := range recs {
		if !rec.Exists() {
			continue
		}
		opts = append(opts, models.Option{ID: rec.ID(), Label: rec.String(lk.labelKey())})
	}
	return opts, nil
}
