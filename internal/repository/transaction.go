package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

// Transaction is one write applied to the devnet. Block is its position in
// the write log.
type Transaction struct {
	Block     uint64 `db:"block" json:"block"`
	Hash      string `db:"hash" json:"hash"`
	Function  string `db:"function" json:"function"`
	Args      string `db:"args" json:"args"`
	CreatedAt int64  `db:"created_at" json:"createdAt"`
}

type TxRepo struct {
	db *sqlx.DB
}

func NewTxRepo(db *sqlx.DB) *TxRepo {
	return &TxRepo{db: db}
}

// Append logs a write and returns its block number.
func (r *TxRepo) Append(ctx context.Context, hash, function string, args []any, now time.Time) (uint64, error) {
	raw, err := json.Marshal(args)
	if err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (hash, function, args, created_at)
		VALUES (?, ?, ?, ?)
	`, hash, function, string(raw), now.Unix())
	if err != nil {
		return 0, err
	}
	block, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(block), nil
}

func (r *TxRepo) GetByHash(ctx context.Context, hash string) (*Transaction, error) {
	var t Transaction
	err := r.db.GetContext(ctx, &t, `
		SELECT block, hash, function, args, created_at FROM transactions WHERE hash = ?
	`, hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Recent returns the latest writes, newest first.
func (r *TxRepo) Recent(ctx context.Context, limit int) ([]Transaction, error) {
	var txs []Transaction
	err := r.db.SelectContext(ctx, &txs, `
		SELECT block, hash, function, args, created_at
		FROM transactions
		ORDER BY block DESC
		LIMIT ?
	`, limit)
	return txs, err
}

// Head is the latest block number, zero on an empty log.
func (r *TxRepo) Head(ctx context.Context) (uint64, error) {
	var head sql.NullInt64
	if err := r.db.GetContext(ctx, &head, `SELECT MAX(block) FROM transactions`); err != nil {
		return 0, err
	}
	return uint64(head.Int64), nil
}
