package resource

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/emilianohg/spbuadmin/internal/ledger"
	"github.com/emilianohg/spbuadmin/internal/models"
)

// Loader reads a single record together with its relation id sets.
type Loader struct {
	client ledger.Client
	res    *Resource
}

func NewLoader(client ledger.Client, res *Resource) *Loader {
	return &Loader{client: client, res: res}
}

// Load returns ErrNotFound when the contract answers with the zero record,
// a deleted one, or nothing at all.
func (l *Loader) Load(ctx context.Context, id uint64) (Entry, error) {
	if l.res.Calls.Get == "" {
		return Entry{}, fmt.Errorf("%s: %w", l.res.Name, ErrNotSupported)
	}
	if id == 0 {
		return Entry{}, ErrNotFound
	}
	raw, err := l.client.Read(ctx, ledger.NewCall(l.res.Calls.Get, id))
	if err != nil {
		return Entry{}, fmt.Errorf("%s: %w", l.res.Calls.Get, err)
	}
	rec, ok, err := ledger.NormalizeOne(raw)
	if err != nil {
		return Entry{}, fmt.Errorf("%s: %w", l.res.Calls.Get, err)
	}
	if !ok || !rec.Exists() {
		return Entry{}, ErrNotFound
	}

	entry := Entry{Record: rec, Relations: make(map[string][]uint64, len(l.res.Relations))}
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, rel := range l.res.Relations {
		if rel.Get == "" {
			entry.Relations[rel.Key] = rec.Uints(rel.Key)
			continue
		}
		rel := rel
		g.Go(func() error {
			v, err := l.client.Read(gctx, ledger.NewCall(rel.Get, id))
			if err != nil {
				return fmt.Errorf("%s: %w", rel.Get, err)
			}
			ids, err := ledger.IDs(v)
			if err != nil {
				return fmt.Errorf("%s: %w", rel.Get, err)
			}
			mu.Lock()
			entry.Relations[rel.Key] = ids
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// Details renders every field and relation of an entry for the detail view.
func (r *Resource) Details(e Entry, lk Lookups) []models.Detail {
	out := []models.Detail{{Label: "ID", Value: fmt.Sprintf("%d", e.Record.ID())}}
	for _, f := range r.Fields {
		if f.Virtual {
			continue
		}
		out = append(out, models.Detail{
			Label: f.Label,
			Value: FormatValue(f.Kind, f.Lookup, e.Record, f.Key, lk),
		})
	}
	for _, rel := range r.Relations {
		v := "-"
		if ids := e.Relations[rel.Key]; len(ids) > 0 {
			v = joinNames(lk.Names(rel.Lookup, ids))
		}
		out = append(out, models.Detail{Label: rel.Label, Value: v})
	}
	out = append(out,
		models.Detail{Label: "Dibuat", Value: formatStamp(e.Record.CreatedAt())},
		models.Detail{Label: "Diperbarui", Value: formatStamp(e.Record.UpdatedAt())},
	)
	return out
}
