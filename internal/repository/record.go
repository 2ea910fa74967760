package repository

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

var ErrNotFound = errors.New("record not found")

var fieldKey = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// StoredRecord is one row of the records table.
type StoredRecord struct {
	Kind      string `db:"kind"`
	ID        uint64 `db:"id"`
	Fields    string `db:"fields"`
	Deleted   bool   `db:"deleted"`
	CreatedAt int64  `db:"created_at"`
	UpdatedAt int64  `db:"updated_at"`
}

// Values decodes the JSON fields, keeping numbers as json.Number.
func (r *StoredRecord) Values() (map[string]any, error) {
	out := map[string]any{}
	dec := json.NewDecoder(bytes.NewReader([]byte(r.Fields)))
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode %s #%d: %w", r.Kind, r.ID, err)
	}
	return out, nil
}

// ListFilter narrows a list or count. Zero values in Eq are ignored, as are
// zero bounds in From and To.
type ListFilter struct {
	Eq     map[string]uint64
	From   map[string]uint64
	To     map[string]uint64
	Offset uint64
	Limit  uint64
}

type RecordRepo struct {
	db *sqlx.DB
}

func NewRecordRepo(db *sqlx.DB) *RecordRepo {
	return &RecordRepo{db: db}
}

// Create stores fields under the next id of kind and returns that id.
func (r *RecordRepo) Create(ctx context.Context, kind string, fields map[string]any, now time.Time) (uint64, error) {
	raw, err := json.Marshal(fields)
	if err != nil {
		return 0, err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var id uint64
	if err := tx.GetContext(ctx, &id, `
		INSERT INTO sequences (kind, last_id) VALUES (?, 1)
		ON CONFLICT(kind) DO UPDATE SET last_id = last_id + 1
		RETURNING last_id
	`, kind); err != nil {
		return 0, fmt.Errorf("next id for %s: %w", kind, err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO records (kind, id, fields, deleted, created_at, updated_at)
		VALUES (?, ?, ?, 0, ?, ?)
	`, kind, id, string(raw), now.Unix(), now.Unix()); err != nil {
		return 0, err
	}

	return id, tx.Commit()
}

// Update replaces the fields of a live record.
func (r *RecordRepo) Update(ctx context.Context, kind string, id uint64, fields map[string]any, now time.Time) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE records SET fields = ?, updated_at = ?
		WHERE kind = ? AND id = ? AND deleted = 0
	`, string(raw), now.Unix(), kind, id)
	if err != nil {
		return err
	}
	return expectOne(res)
}

// SoftDelete flags a live record as deleted.
func (r *RecordRepo) SoftDelete(ctx context.Context, kind string, id uint64, now time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE records SET deleted = 1, updated_at = ?
		WHERE kind = ? AND id = ? AND deleted = 0
	`, now.Unix(), kind, id)
	if err != nil {
		return err
	}
	return expectOne(res)
}

// Get returns nil when the record was never created. Deleted records are
// returned with Deleted set.
func (r *RecordRepo) Get(ctx context.Context, kind string, id uint64) (*StoredRecord, error) {
	var rec StoredRecord
	err := r.db.GetContext(ctx, &rec, `
		SELECT kind, id, fields, deleted, created_at, updated_at
		FROM records
		WHERE kind = ? AND id = ?
	`, kind, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// List returns records of kind ordered by id, deleted ones included, the way
// the contract pages over its storage array.
func (r *RecordRepo) List(ctx context.Context, kind string, f ListFilter) ([]StoredRecord, error) {
	where, args, err := f.where(kind)
	if err != nil {
		return nil, err
	}
	query := `SELECT kind, id, fields, deleted, created_at, updated_at FROM records WHERE ` + where + ` ORDER BY id ASC`
	if f.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, f.Limit, f.Offset)
	}

	var recs []StoredRecord
	if err := r.db.SelectContext(ctx, &recs, query, args...); err != nil {
		return nil, err
	}
	return recs, nil
}

// Count counts records of kind matching f, deleted ones included.
func (r *RecordRepo) Count(ctx context.Context, kind string, f ListFilter) (uint64, error) {
	where, args, err := f.where(kind)
	if err != nil {
		return 0, err
	}
	var n uint64
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM records WHERE `+where, args...); err != nil {
		return 0, err
	}
	return n, nil
}

// CountLive counts records of kind that are not deleted.
func (r *RecordRepo) CountLive(ctx context.Context, kind string) (uint64, error) {
	var n uint64
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM records WHERE kind = ? AND deleted = 0`, kind)
	return n, err
}

func (f ListFilter) where(kind string) (string, []any, error) {
	clauses := []string{"kind = ?"}
	args := []any{kind}
	add := func(m map[string]uint64, op string) error {
		for key, v := range m {
			if v == 0 {
				continue
			}
			if !fieldKey.MatchString(key) {
				return fmt.Errorf("invalid field key %q", key)
			}
			clauses = append(clauses, fmt.Sprintf("CAST(json_extract(fields, '$.%s') AS INTEGER) %s ?", key, op))
			args = append(args, v)
		}
		return nil
	}
	if err := add(f.Eq, "="); err != nil {
		return "", nil, err
	}
	if err := add(f.From, ">="); err != nil {
		return "", nil, err
	}
	if err := add(f.To, "<="); err != nil {
		return "", nil, err
	}
	return strings.Join(clauses, " AND "), args, nil
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
