package resource

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/emilianohg/spbuadmin/internal/ledger"
	"github.com/emilianohg/spbuadmin/internal/logging"
	"github.com/emilianohg/spbuadmin/internal/models"
)

// Page is one fetched list page with the lookups used to render it.
type Page struct {
	PageInfo[models.Row]
	Lookups Lookups
}

// Lister fetches, filters and maps pages of one resource.
type Lister struct {
	client ledger.Client
	res    *Resource
	log    logging.Logger
}

func NewLister(client ledger.Client, res *Resource, log logging.Logger) *Lister {
	return &Lister{client: client, res: res, log: log.With("resource", res.Name)}
}

func (l *Lister) Resource() *Resource {
	return l.res
}

// Fetch reads the page, the optional count and every lookup concurrently,
// drops soft-deleted records and maps the rest to rows.
func (l *Lister) Fetch(ctx context.Context, q Query) (Page, error) {
	q = q.Normalized()

	var (
		raw     any
		total   *uint64
		lookups Lookups
		mu      sync.Mutex
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		params := l.res.Calls.ListParams
		if params == nil {
			params = defaultListParams()
		}
		v, err := l.client.Read(gctx, ledger.NewCall(l.res.Calls.List, q.Args(params)...))
		if err != nil {
			return fmt.Errorf("%s: %w", l.res.Calls.List, err)
		}
		mu.Lock()
		raw = v
		mu.Unlock()
		return nil
	})
	if l.res.Calls.Count != "" {
		g.Go(func() error {
			v, err := l.client.Read(gctx, ledger.NewCall(l.res.Calls.Count, q.Args(l.res.Calls.CountParams)...))
			if err != nil {
				return fmt.Errorf("%s: %w", l.res.Calls.Count, err)
			}
			n, err := ledger.Scalar(v)
			if err != nil {
				return fmt.Errorf("%s: %w", l.res.Calls.Count, err)
			}
			mu.Lock()
			total = &n
			mu.Unlock()
			return nil
		})
	}
	if len(l.res.Lookups) > 0 {
		g.Go(func() error {
			lk, err := LoadLookups(gctx, l.client, l.res.Lookups)
			if err != nil {
				return err
			}
			mu.Lock()
			lookups = lk
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		l.log.Warn(ctx, "list fetch failed", "page", q.Page, "error", err)
		return Page{}, err
	}

	recs, err := ledger.Normalize(raw)
	if err != nil {
		return Page{}, fmt.Errorf("%s: %w", l.res.Calls.List, err)
	}

	rows := make([]models.Row, 0, len(recs))
	for _, rec := range recs {
		if !rec.Exists() {
			continue
		}
		rows = append(rows, l.row(rec, lookups))
	}

	l.log.Debug(ctx, "list fetched", "page", q.Page, "size", q.PageSize, "fetched", len(recs), "rows", len(rows))
	return Page{
		PageInfo: NewPageInfo(rows, len(recs), q, total),
		Lookups:  lookups,
	}, nil
}

// Delete soft-deletes one record through the contract.
func (l *Lister) Delete(ctx context.Context, id uint64) (ledger.TxResult, error) {
	if l.res.Calls.Delete == "" {
		return ledger.TxResult{}, fmt.Errorf("%s: %w", l.res.Name, ErrNotSupported)
	}
	tx, err := l.client.Write(ctx, ledger.NewCall(l.res.Calls.Delete, id))
	if err != nil {
		l.log.Warn(ctx, "delete failed", "id", id, "error", err)
		return ledger.TxResult{}, err
	}
	l.log.Info(ctx, "deleted", "id", id, "tx", tx.Hash)
	return tx, nil
}

func (l *Lister) row(rec ledger.Record, lk Lookups) models.Row {
	row := models.Row{
		ID:        rec.ID(),
		Title:     rec.String(l.res.titleKey()),
		Cells:     make([]string, len(l.res.Columns)),
		CreatedAt: rec.CreatedAt(),
		UpdatedAt: rec.UpdatedAt(),
	}
	if row.Title == "" {
		row.Title = l.res.Placeholder(row.ID)
	}
	for i, col := range l.res.Columns {
		row.Cells[i] = formatCell(col, rec, lk)
	}
	return row
}

// FilterRows keeps rows whose title or any cell contains text, ignoring case.
func FilterRows(rows []models.Row, text string) []models.Row {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return rows
	}
	var out []models.Row
	for _, r := range rows {
		if strings.Contains(strings.ToLower(r.Title), text) {
			out = append(out, r)
			continue
		}
		for _, c := range r.Cells {
			if strings.Contains(strings.ToLower(c), text) {
				out = append(out, r)
				break
			}
		}
	}
	return out
}
