package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=ledger
type Repository interface {
	CreateTransaction(ctx context.Context, tx *Transaction) error
	ListMaterial(ctx context.Context, accountIDs []uuid.UUID, from, to time.Time) ([]Material, error)
	LatestImportBatch(ctx context.Context) (*ImportBatch, error)

	// BeginImport opens an ImportTx holding the ledger-wide import lock.
	BeginImport(ctx context.Context) (ImportTx, error)
}

// ImportTx applies a commit or undo atomically. Rollback after Commit is a no-op.
type ImportTx interface {
	CreateTransactions(ctx context.Context, txs []*Transaction) error
	AdjustBalances(ctx context.Context, deltas map[uuid.UUID]decimal.Decimal) error
	CreateImportBatch(ctx context.Context, batch *ImportBatch) error
	LatestImportBatch(ctx context.Context) (*ImportBatch, error)
	BatchTransactions(ctx context.Context, batchID uuid.UUID) ([]*Transaction, error)
	DeleteBatchTransactions(ctx context.Context, batchID uuid.UUID) error
	DeleteImportBatch(ctx context.Context, batchID uuid.UUID) error
	Commit() error
	Rollback() error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	AccountID      uuid.UUID
	Date           time.Time
	Amount         decimal.Decimal
	NativeAmount   decimal.NullDecimal
	NativeCurrency string
	FXRate         decimal.NullDecimal
	Description    string
	RawDescription string
	PayeeID        *uuid.UUID
	PayeeName      string
	CategoryID     *uuid.UUID
	SubCategoryID  *uuid.UUID
	Notes          string
	ExternalID     string
	Tags           []string
}

// AddTransaction creates a single transaction and applies it to the account balance.
func (s *Service) AddTransaction(ctx context.Context, params CreateParams) (*Transaction, error) {
	tx := params.transaction()
	if err := s.repo.CreateTransaction(ctx, tx); err != nil {
		return nil, err
	}

	return tx, nil
}

// Material returns duplicate-detection material for the accounts and dates.
func (s *Service) Material(ctx context.Context, accountIDs []uuid.UUID, from, to time.Time) ([]Material, error) {
	return s.repo.ListMaterial(ctx, accountIDs, from, to)
}

// LatestImport returns the most recent batch, or ErrNotFound.
func (s *Service) LatestImport(ctx context.Context) (*ImportBatch, error) {
	return s.repo.LatestImportBatch(ctx)
}

// CommitImport persists the transactions, their balance effect and the
// batch record in one unit. On error nothing is kept.
func (s *Service) CommitImport(ctx context.Context, batch *ImportBatch, params []CreateParams) (*ImportBatch, error) {
	if len(params) == 0 {
		return nil, ErrEmptyBatch
	}

	itx, err := s.repo.BeginImport(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer itx.Rollback()

	if batch.ID == uuid.Nil {
		batch.ID = uuid.New()
	}

	txs := make([]*Transaction, len(params))
	for i, p := range params {
		txs[i] = p.transaction()
		txs[i].ImportBatchID = &batch.ID
	}

	if err := itx.CreateTransactions(ctx, txs); err != nil {
		return nil, fmt.Errorf("create transactions: %w", err)
	}

	if err := itx.AdjustBalances(ctx, NetByAccount(txs)); err != nil {
		return nil, fmt.Errorf("adjust balances: %w", err)
	}

	batch.TransactionIDs = make([]uuid.UUID, len(txs))
	for i, tx := range txs {
		batch.TransactionIDs[i] = tx.ID
	}

	if err := itx.CreateImportBatch(ctx, batch); err != nil {
		return nil, fmt.Errorf("create import batch: %w", err)
	}

	if err := itx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	return batch, nil
}

// UndoLastImport removes the most recent batch and its transactions and
// subtracts their net amount from each account balance. With no batch it
// returns nil, nil.
func (s *Service) UndoLastImport(ctx context.Context) (*ImportBatch, error) {
	itx, err := s.repo.BeginImport(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin undo: %w", err)
	}
	defer itx.Rollback()

	batch, err := itx.LatestImportBatch(ctx)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("latest import batch: %w", err)
	}

	txs, err := itx.BatchTransactions(ctx, batch.ID)
	if err != nil {
		return nil, fmt.Errorf("batch transactions: %w", err)
	}

	deltas := NetByAccount(txs)
	for id, net := range deltas {
		deltas[id] = net.Neg()
	}

	if err := itx.AdjustBalances(ctx, deltas); err != nil {
		return nil, fmt.Errorf("reverse balances: %w", err)
	}

	if err := itx.DeleteBatchTransactions(ctx, batch.ID); err != nil {
		return nil, fmt.Errorf("delete batch transactions: %w", err)
	}

	if err := itx.DeleteImportBatch(ctx, batch.ID); err != nil {
		return nil, fmt.Errorf("delete import batch: %w", err)
	}

	if err := itx.Commit(); err != nil {
		return nil, fmt.Errorf("commit undo: %w", err)
	}

	return batch, nil
}

func (p CreateParams) transaction() *Transaction {
	native := p.Amount
	if p.NativeAmount.Valid {
		native = p.NativeAmount.Decimal
	}

	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}

	return &Transaction{
		AccountID:      p.AccountID,
		Date:           p.Date,
		Amount:         p.Amount,
		NativeAmount:   native,
		NativeCurrency: p.NativeCurrency,
		FXRate:         p.FXRate,
		Description:    p.Description,
		RawDescription: p.RawDescription,
		PayeeID:        p.PayeeID,
		PayeeName:      p.PayeeName,
		CategoryID:     p.CategoryID,
		SubCategoryID:  p.SubCategoryID,
		Notes:          p.Notes,
		ExternalID:     p.ExternalID,
		Tags:           tags,
	}
}
