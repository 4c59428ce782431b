package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/ledgerimport/internal/ledger"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const selectTransactionColumns = `
	t.id, t.account_id, t.date, t.amount, t.native_amount, t.native_currency, t.fx_rate,
	t.description, t.raw_description, t.payee_id, t.payee_name, t.category_id,
	t.sub_category_id, t.notes, t.external_id, t.tags, t.import_batch_id, t.created_at
`

// scanTransaction expects the column order of selectTransactionColumns.
func scanTransaction(s scanner) (*ledger.Transaction, error) {
	var tx ledger.Transaction

	var tags []byte

	if err := s.Scan(
		&tx.ID, &tx.AccountID, &tx.Date, &tx.Amount, &tx.NativeAmount, &tx.NativeCurrency, &tx.FXRate,
		&tx.Description, &tx.RawDescription, &tx.PayeeID, &tx.PayeeName, &tx.CategoryID,
		&tx.SubCategoryID, &tx.Notes, &tx.ExternalID, &tags, &tx.ImportBatchID, &tx.CreatedAt,
	); err != nil {
		return nil, err
	}

	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &tx.Tags); err != nil {
			return nil, fmt.Errorf("decoding tags: %w", err)
		}
	}

	return &tx, nil
}

const insertTransaction = `
	INSERT INTO transactions (
		account_id, date, amount, native_amount, native_currency, fx_rate,
		description, raw_description, payee_id, payee_name, category_id,
		sub_category_id, notes, external_id, tags, import_batch_id, created_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, NOW())
	RETURNING id, created_at
`

func insert(ctx context.Context, q execer, tx *ledger.Transaction) error {
	tags, err := json.Marshal(tx.Tags)
	if err != nil {
		return fmt.Errorf("encoding tags: %w", err)
	}

	err = q.QueryRowContext(ctx, insertTransaction,
		tx.AccountID,
		tx.Date,
		tx.Amount,
		tx.NativeAmount,
		tx.NativeCurrency,
		tx.FXRate,
		tx.Description,
		tx.RawDescription,
		tx.PayeeID,
		tx.PayeeName,
		tx.CategoryID,
		tx.SubCategoryID,
		tx.Notes,
		tx.ExternalID,
		tags,
		tx.ImportBatchID,
	).Scan(&tx.ID, &tx.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating transaction: %w", err)
	}

	return nil
}

func adjustBalance(ctx context.Context, q execer, accountID uuid.UUID, delta decimal.Decimal) error {
	res, err := q.ExecContext(ctx, `UPDATE accounts SET balance = balance + $1 WHERE id = $2`, delta, accountID)
	if err != nil {
		return fmt.Errorf("adjusting balance: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("adjusting balance of %s: %w", accountID, ledger.ErrNotFound)
	}

	return nil
}

// CreateTransaction inserts the transaction and applies it to the account
// balance in one database transaction.
func (s *Store) CreateTransaction(ctx context.Context, tx *ledger.Transaction) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	if err := insert(ctx, dbTx, tx); err != nil {
		return err
	}

	if err := adjustBalance(ctx, dbTx, tx.AccountID, tx.Amount); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func (s *Store) ListMaterial(ctx context.Context, accountIDs []uuid.UUID, from, to time.Time) ([]ledger.Material, error) {
	if len(accountIDs) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(accountIDs))
	args := []any{from, to}

	for i, id := range accountIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+3)
		args = append(args, id)
	}

	query := `
		SELECT account_id, date, amount, COALESCE(NULLIF(raw_description, ''), description)
		FROM transactions
		WHERE date >= $1 AND date <= $2 AND account_id IN (` + strings.Join(placeholders, ", ") + `)`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing fingerprint material: %w", err)
	}
	defer rows.Close()

	var out []ledger.Material

	for rows.Next() {
		var m ledger.Material
		if err := rows.Scan(&m.AccountID, &m.Date, &m.Amount, &m.RawDescription); err != nil {
			return nil, fmt.Errorf("scanning fingerprint material: %w", err)
		}

		out = append(out, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating fingerprint material: %w", err)
	}

	return out, nil
}

func (s *Store) LatestImportBatch(ctx context.Context) (*ledger.ImportBatch, error) {
	return latestBatch(ctx, s.db)
}

const selectBatchColumns = `
	id, account_id, profile_id, created_at, source_file_name, header_fingerprint,
	options, summary, transaction_ids, log
`

func latestBatch(ctx context.Context, q execer) (*ledger.ImportBatch, error) {
	query := `SELECT ` + selectBatchColumns + ` FROM import_batches ORDER BY seq DESC LIMIT 1`

	batch, err := scanBatch(q.QueryRowContext(ctx, query))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ledger.ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("getting latest import batch: %w", err)
	}

	return batch, nil
}

func scanBatch(s scanner) (*ledger.ImportBatch, error) {
	var b ledger.ImportBatch

	var options, summary, ids, log []byte

	if err := s.Scan(
		&b.ID, &b.AccountID, &b.ProfileID, &b.CreatedAt, &b.SourceFileName, &b.HeaderFingerprint,
		&options, &summary, &ids, &log,
	); err != nil {
		return nil, err
	}

	for _, field := range []struct {
		raw []byte
		dst any
	}{
		{options, &b.Options},
		{summary, &b.Summary},
		{ids, &b.TransactionIDs},
		{log, &b.Log},
	} {
		if len(field.raw) == 0 {
			continue
		}

		if err := json.Unmarshal(field.raw, field.dst); err != nil {
			return nil, fmt.Errorf("decoding import batch: %w", err)
		}
	}

	return &b, nil
}

// importLockKey is the advisory lock every commit and undo takes, so batches
// and balances change one import at a time.
func importLockKey() int64 {
	h := fnv.New64a()
	h.Write([]byte("ledger-import"))

	return int64(h.Sum64())
}

type importTx struct {
	tx *sql.Tx
}

func (s *Store) BeginImport(ctx context.Context) (ledger.ImportTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning import tx: %w", err)
	}

	if _, err := dbTx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", importLockKey()); err != nil {
		dbTx.Rollback()
		return nil, fmt.Errorf("acquiring import lock: %w", err)
	}

	return &importTx{tx: dbTx}, nil
}

func (itx *importTx) Commit() error { return itx.tx.Commit() }

func (itx *importTx) Rollback() error {
	if err := itx.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}

	return nil
}

func (itx *importTx) CreateTransactions(ctx context.Context, txs []*ledger.Transaction) error {
	for _, tx := range txs {
		if err := insert(ctx, itx.tx, tx); err != nil {
			return err
		}
	}

	return nil
}

func (itx *importTx) AdjustBalances(ctx context.Context, deltas map[uuid.UUID]decimal.Decimal) error {
	for id, delta := range deltas {
		if delta.IsZero() {
			continue
		}

		if err := adjustBalance(ctx, itx.tx, id, delta); err != nil {
			return err
		}
	}

	return nil
}

func (itx *importTx) CreateImportBatch(ctx context.Context, b *ledger.ImportBatch) error {
	encoded := make([][]byte, 0, 4)

	for _, v := range []any{b.Options, b.Summary, b.TransactionIDs, b.Log} {
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encoding import batch: %w", err)
		}

		encoded = append(encoded, raw)
	}

	query := `
		INSERT INTO import_batches (
			id, account_id, profile_id, source_file_name, header_fingerprint,
			options, summary, transaction_ids, log, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		RETURNING created_at
	`

	err := itx.tx.QueryRowContext(ctx, query,
		b.ID,
		b.AccountID,
		b.ProfileID,
		b.SourceFileName,
		b.HeaderFingerprint,
		encoded[0],
		encoded[1],
		encoded[2],
		encoded[3],
	).Scan(&b.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating import batch: %w", err)
	}

	return nil
}

func (itx *importTx) LatestImportBatch(ctx context.Context) (*ledger.ImportBatch, error) {
	return latestBatch(ctx, itx.tx)
}

func (itx *importTx) BatchTransactions(ctx context.Context, batchID uuid.UUID) ([]*ledger.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + `
		FROM transactions t
		WHERE t.import_batch_id = $1
		ORDER BY t.date ASC`

	rows, err := itx.tx.QueryContext(ctx, query, batchID)
	if err != nil {
		return nil, fmt.Errorf("listing batch transactions: %w", err)
	}
	defer rows.Close()

	var txs []*ledger.Transaction

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		txs = append(txs, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating batch transactions: %w", err)
	}

	return txs, nil
}

func (itx *importTx) DeleteBatchTransactions(ctx context.Context, batchID uuid.UUID) error {
	if _, err := itx.tx.ExecContext(ctx, `DELETE FROM transactions WHERE import_batch_id = $1`, batchID); err != nil {
		return fmt.Errorf("deleting batch transactions: %w", err)
	}

	return nil
}

func (itx *importTx) DeleteImportBatch(ctx context.Context, batchID uuid.UUID) error {
	if _, err := itx.tx.ExecContext(ctx, `DELETE FROM import_batches WHERE id = $1`, batchID); err != nil {
		return fmt.Errorf("deleting import batch: %w", err)
	}

	return nil
}
