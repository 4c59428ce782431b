// Package memstore is an in-memory ledger.Repository.
package memstore

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/ledgerimport/internal/ledger"
)

type state struct {
	balances     map[uuid.UUID]decimal.Decimal
	transactions []*ledger.Transaction
	batches      []*ledger.ImportBatch
}

func (s state) clone() state {
	return state{
		balances:     maps.Clone(s.balances),
		transactions: slices.Clone(s.transactions),
		batches:      slices.Clone(s.batches),
	}
}

// Store keeps the ledger in memory. Import transactions work on a staged
// copy that replaces the live state on Commit.
type Store struct {
	mu    sync.Mutex
	ilock sync.Mutex
	state state
	now   func() time.Time
}

// New creates a store with the given opening balances.
func New(balances map[uuid.UUID]decimal.Decimal) *Store {
	b := maps.Clone(balances)
	if b == nil {
		b = map[uuid.UUID]decimal.Decimal{}
	}

	return &Store{state: state{balances: b}, now: time.Now}
}

// Balance returns the running balance of an account.
func (s *Store) Balance(accountID uuid.UUID) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state.balances[accountID]
}

// Transactions returns a copy of every stored transaction.
func (s *Store) Transactions() []ledger.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]ledger.Transaction, len(s.state.transactions))
	for i, tx := range s.state.transactions {
		out[i] = *tx
	}

	return out
}

func (s *Store) CreateTransaction(_ context.Context, tx *ledger.Transaction) error {
	s.ilock.Lock()
	defer s.ilock.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.state.balances[tx.AccountID]; !ok {
		return fmt.Errorf("adjusting balance of %s: %w", tx.AccountID, ledger.ErrNotFound)
	}

	s.stamp(tx)
	s.state.transactions = append(s.state.transactions, copyTx(tx))
	s.state.balances[tx.AccountID] = s.state.balances[tx.AccountID].Add(tx.Amount)

	return nil
}

func (s *Store) ListMaterial(_ context.Context, accountIDs []uuid.UUID, from, to time.Time) ([]ledger.Material, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []ledger.Material

	for _, tx := range s.state.transactions {
		if !slices.Contains(accountIDs, tx.AccountID) || tx.Date.Before(from) || tx.Date.After(to) {
			continue
		}

		raw := tx.RawDescription
		if raw == "" {
			raw = tx.Description
		}

		out = append(out, ledger.Material{AccountID: tx.AccountID, Date: tx.Date, Amount: tx.Amount, RawDescription: raw})
	}

	return out, nil
}

func (s *Store) LatestImportBatch(_ context.Context) (*ledger.ImportBatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return latest(s.state)
}

func latest(st state) (*ledger.ImportBatch, error) {
	if len(st.batches) == 0 {
		return nil, ledger.ErrNotFound
	}

	b := *st.batches[len(st.batches)-1]

	return &b, nil
}

// BeginImport blocks until no other import transaction is open.
func (s *Store) BeginImport(ctx context.Context) (ledger.ImportTx, error) {
	locked := make(chan struct{})

	go func() {
		s.ilock.Lock()
		close(locked)
	}()

	select {
	case <-locked:
	case <-ctx.Done():
		go func() {
			<-locked
			s.ilock.Unlock()
		}()

		return nil, fmt.Errorf("acquiring import lock: %w", ctx.Err())
	}

	s.mu.Lock()
	staged := s.state.clone()
	s.mu.Unlock()

	return &importTx{store: s, staged: staged}, nil
}

func (s *Store) stamp(tx *ledger.Transaction) {
	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}

	tx.CreatedAt = s.now()
}

type importTx struct {
	store  *Store
	staged state
	done   bool
}

func (t *importTx) CreateTransactions(_ context.Context, txs []*ledger.Transaction) error {
	for _, tx := range txs {
		t.store.stamp(tx)
		t.staged.transactions = append(t.staged.transactions, copyTx(tx))
	}

	return nil
}

func (t *importTx) AdjustBalances(_ context.Context, deltas map[uuid.UUID]decimal.Decimal) error {
	for id, delta := range deltas {
		if delta.IsZero() {
			continue
		}

		current, ok := t.staged.balances[id]
		if !ok {
			return fmt.Errorf("adjusting balance of %s: %w", id, ledger.ErrNotFound)
		}

		t.staged.balances[id] = current.Add(delta)
	}

	return nil
}

func (t *importTx) CreateImportBatch(_ context.Context, b *ledger.ImportBatch) error {
	b.CreatedAt = t.store.now()

	stored := *b
	stored.TransactionIDs = slices.Clone(b.TransactionIDs)
	stored.Log = slices.Clone(b.Log)
	t.staged.batches = append(t.staged.batches, &stored)

	return nil
}

func (t *importTx) LatestImportBatch(_ context.Context) (*ledger.ImportBatch, error) {
	return latest(t.staged)
}

func (t *importTx) BatchTransactions(_ context.Context, batchID uuid.UUID) ([]*ledger.Transaction, error) {
	var out []*ledger.Transaction

	for _, tx := range t.staged.transactions {
		if tx.ImportBatchID != nil && *tx.ImportBatchID == batchID {
			out = append(out, copyTx(tx))
		}
	}

	return out, nil
}

func (t *importTx) DeleteBatchTransactions(_ context.Context, batchID uuid.UUID) error {
	t.staged.transactions = slices.DeleteFunc(t.staged.transactions, func(tx *ledger.Transaction) bool {
		return tx.ImportBatchID != nil && *tx.ImportBatchID == batchID
	})

	return nil
}

func (t *importTx) DeleteImportBatch(_ context.Context, batchID uuid.UUID) error {
	t.staged.batches = slices.DeleteFunc(t.staged.batches, func(b *ledger.ImportBatch) bool {
		return b.ID == batchID
	})

	return nil
}

func (t *importTx) Commit() error {
	if t.done {
		return fmt.Errorf("commit: transaction already closed")
	}

	t.store.mu.Lock()
	t.store.state = t.staged
	t.store.mu.Unlock()

	t.finish()

	return nil
}

func (t *importTx) Rollback() error {
	if !t.done {
		t.finish()
	}

	return nil
}

func (t *importTx) finish() {
	t.done = true
	t.store.ilock.Unlock()
}

func copyTx(tx *ledger.Transaction) *ledger.Transaction {
	c := *tx
	c.Tags = slices.Clone(tx.Tags)

	return &c
}
