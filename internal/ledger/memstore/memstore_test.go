package memstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/ledgerimport/internal/ledger"
	"github.com/MrJamesThe3rd/ledgerimport/internal/ledger/memstore"
)

func TestUndoIsInverseOfCommit(t *testing.T) {
	ctx := context.Background()
	checking, card := uuid.New(), uuid.New()

	store := memstore.New(map[uuid.UUID]decimal.Decimal{
		checking: decimal.RequireFromString("1000.00"),
		card:     decimal.RequireFromString("-250.00"),
	})
	svc := ledger.NewService(store)

	_, err := svc.AddTransaction(ctx, ledger.CreateParams{AccountID: checking, Amount: decimal.NewFromInt(-20), Date: time.Now()})
	require.NoError(t, err)

	before := map[uuid.UUID]decimal.Decimal{checking: store.Balance(checking), card: store.Balance(card)}
	existing := len(store.Transactions())

	day := time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC)
	batch, err := svc.CommitImport(ctx, &ledger.ImportBatch{SourceFileName: "a.csv"}, []ledger.CreateParams{
		{AccountID: checking, Amount: decimal.RequireFromString("-3.50"), Date: day},
		{AccountID: checking, Amount: decimal.RequireFromString("1200"), Date: day},
		{AccountID: card, Amount: decimal.RequireFromString("-45.10"), Date: day},
	})
	require.NoError(t, err)
	require.Len(t, batch.TransactionIDs, 3)

	assert.Equal(t, "2176.5", store.Balance(checking).String())
	assert.Equal(t, "-295.1", store.Balance(card).String())
	assert.Len(t, store.Transactions(), existing+3)

	latest, err := svc.LatestImport(ctx)
	require.NoError(t, err)
	assert.Equal(t, batch.ID, latest.ID)

	undone, err := svc.UndoLastImport(ctx)
	require.NoError(t, err)
	require.NotNil(t, undone)
	assert.Equal(t, batch.ID, undone.ID)

	for id, want := range before {
		assert.True(t, want.Equal(store.Balance(id)), "balance of %s", id)
	}

	assert.Len(t, store.Transactions(), existing)

	_, err = svc.LatestImport(ctx)
	require.ErrorIs(t, err, ledger.ErrNotFound)

	again, err := svc.UndoLastImport(ctx)
	require.NoError(t, err)
	assert.Nil(t, again)
}

func TestUndoTargetsOnlyMostRecentBatch(t *testing.T) {
	ctx := context.Background()
	acct := uuid.New()
	store := memstore.New(map[uuid.UUID]decimal.Decimal{acct: decimal.Zero})
	svc := ledger.NewService(store)

	first, err := svc.CommitImport(ctx, &ledger.ImportBatch{}, []ledger.CreateParams{{AccountID: acct, Amount: decimal.NewFromInt(10)}})
	require.NoError(t, err)

	_, err = svc.CommitImport(ctx, &ledger.ImportBatch{}, []ledger.CreateParams{{AccountID: acct, Amount: decimal.NewFromInt(5)}})
	require.NoError(t, err)

	_, err = svc.UndoLastImport(ctx)
	require.NoError(t, err)

	assert.Equal(t, "10", store.Balance(acct).String())

	latest, err := svc.LatestImport(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, latest.ID)
}

func TestCommitUnknownAccountLeavesNothing(t *testing.T) {
	ctx := context.Background()
	acct := uuid.New()
	store := memstore.New(map[uuid.UUID]decimal.Decimal{acct: decimal.Zero})
	svc := ledger.NewService(store)

	_, err := svc.CommitImport(ctx, &ledger.ImportBatch{}, []ledger.CreateParams{
		{AccountID: acct, Amount: decimal.NewFromInt(10)},
		{AccountID: uuid.New(), Amount: decimal.NewFromInt(5)},
	})
	require.ErrorIs(t, err, ledger.ErrNotFound)

	assert.Empty(t, store.Transactions())
	assert.True(t, store.Balance(acct).IsZero())

	_, err = svc.LatestImport(ctx)
	require.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestBeginImportHonoursContext(t *testing.T) {
	store := memstore.New(nil)

	itx, err := store.BeginImport(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = store.BeginImport(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, itx.Rollback())

	next, err := store.BeginImport(context.Background())
	require.NoError(t, err)
	require.NoError(t, next.Rollback())
}

func TestListMaterial(t *testing.T) {
	ctx := context.Background()
	a, b := uuid.New(), uuid.New()
	store := memstore.New(map[uuid.UUID]decimal.Decimal{a: decimal.Zero, b: decimal.Zero})

	day := time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.CreateTransaction(ctx, &ledger.Transaction{AccountID: a, Date: day, Amount: decimal.NewFromInt(1), Description: "Shown", RawDescription: "RAW"}))
	require.NoError(t, store.CreateTransaction(ctx, &ledger.Transaction{AccountID: a, Date: day.AddDate(0, 1, 0), Amount: decimal.NewFromInt(2)}))
	require.NoError(t, store.CreateTransaction(ctx, &ledger.Transaction{AccountID: b, Date: day, Amount: decimal.NewFromInt(3), Description: "Other"}))

	got, err := store.ListMaterial(ctx, []uuid.UUID{a}, day, day)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "RAW", got[0].RawDescription)
}
