package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakib/jobhive_go_server/internal/model"
	"github.com/sakib/jobhive_go_server/internal/testutil"
)

func TestTransactionRepository_MarkFailed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewTransactionRepository(db)
	tran := testutil.TestTransaction(t, db)

	require.NoError(t, repo.MarkFailed(tran.TranID))

	got, err := repo.GetByTranID(tran.TranID)
	require.NoError(t, err)
	assert.Equal(t, model.TranStatusFailed, got.Status)

	// Terminal states stay terminal
	assert.Equal(t, ErrTranTerminal, repo.MarkFailed(tran.TranID))
}

func TestTransactionRepository_Mark_UnknownTranID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewTransactionRepository(db)

	// A missing row is not-found, not a terminal-state conflict
	assert.Equal(t, ErrTranNotFound, repo.MarkFailed("TXN-missing"))

	_, err := repo.MarkCompleted("TXN-missing")
	assert.Equal(t, ErrTranNotFound, err)
}

func TestTransactionRepository_MarkCompleted_OneOffPayment(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewTransactionRepository(db)
	tran := testutil.TestTransaction(t, db, testutil.WithUser(7))

	got, err := repo.MarkCompleted(tran.TranID)
	require.NoError(t, err)
	assert.Equal(t, model.TranStatusCompleted, got.Status)

	// No plan means no subscription aggregate
	sub, err := repo.GetSubscription(7)
	require.NoError(t, err)
	assert.Nil(t, sub)
}

func TestTransactionRepository_MarkCompleted_UpsertsSubscription(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewTransactionRepository(db)
	expires := time.Now().AddDate(0, 1, 0)
	tran := testutil.TestTransaction(t, db,
		testutil.WithUser(7),
		testutil.WithPlan("pro", expires, true),
	)

	_, err := repo.MarkCompleted(tran.TranID)
	require.NoError(t, err)

	sub, err := repo.GetSubscription(7)
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, "pro", sub.Plan)
	assert.True(t, sub.AutoRenew)
	assert.Equal(t, tran.TranID, sub.LastTranID)

	// A later completion replaces the aggregate in place
	expires2 := time.Now().AddDate(0, 2, 0)
	tran2 := testutil.TestTransaction(t, db,
		testutil.WithUser(7),
		testutil.WithPlan("basic", expires2, false),
	)
	_, err = repo.MarkCompleted(tran2.TranID)
	require.NoError(t, err)

	sub, err = repo.GetSubscription(7)
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, "basic", sub.Plan)
	assert.False(t, sub.AutoRenew)

	var count int64
	require.NoError(t, db.Model(&model.Subscription{}).Where("user_id = ?", 7).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestTransactionRepository_MarkCompleted_TerminalRowRejected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewTransactionRepository(db)
	tran := testutil.TestTransaction(t, db, testutil.WithStatus(model.TranStatusFailed))

	_, err := repo.MarkCompleted(tran.TranID)
	assert.Equal(t, ErrTranTerminal, err)
}

func TestTransactionRepository_ListRenewable(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewTransactionRepository(db)
	now := time.Now()
	past := now.AddDate(0, -1, 0)
	future := now.AddDate(0, 1, 0)

	due := testutil.TestTransaction(t, db,
		testutil.WithStatus(model.TranStatusCompleted),
		testutil.WithPlan("pro", past, true),
	)
	// Expired but auto-renew off
	testutil.TestTransaction(t, db,
		testutil.WithStatus(model.TranStatusCompleted),
		testutil.WithPlan("basic", past, false),
	)
	// Not yet expired
	testutil.TestTransaction(t, db,
		testutil.WithStatus(model.TranStatusCompleted),
		testutil.WithPlan("pro", future, true),
	)
	// Expired, auto-renew, but still pending
	testutil.TestTransaction(t, db,
		testutil.WithPlan("pro", past, true),
	)
	// Already picked up by a previous batch
	testutil.TestTransaction(t, db,
		testutil.WithStatus(model.TranStatusCompleted),
		testutil.WithPlan("pro", past, true),
		testutil.WithRenewedAt(now),
	)

	trans, err := repo.ListRenewable(now)
	require.NoError(t, err)
	require.Len(t, trans, 1)
	assert.Equal(t, due.TranID, trans[0].TranID)
}

func TestTransactionRepository_CreateRenewal(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewTransactionRepository(db)
	now := time.Now()
	past := now.AddDate(0, -1, 0)

	source := testutil.TestTransaction(t, db,
		testutil.WithUser(3),
		testutil.WithStatus(model.TranStatusCompleted),
		testutil.WithPlan("pro", past, true),
	)

	newExpires := now.AddDate(0, 1, 0)
	successor := &model.Transaction{
		UserID:          source.UserID,
		TranID:          source.TranID + "-R",
		Amount:          source.Amount,
		Currency:        source.Currency,
		Plan:            source.Plan,
		Status:          model.TranStatusPending,
		ExpiresAt:       &newExpires,
		AutoRenew:       true,
		NextBillingDate: &newExpires,
	}

	require.NoError(t, repo.CreateRenewal(source, successor))

	got, err := repo.GetByTranID(source.TranID)
	require.NoError(t, err)
	assert.NotNil(t, got.RenewedAt)
	assert.Equal(t, successor.TranID, got.SupersededBy)

	// Source transaction status untouched
	assert.Equal(t, model.TranStatusCompleted, got.Status)

	// Stamped rows drop out of the selection
	trans, err := repo.ListRenewable(now)
	require.NoError(t, err)
	assert.Empty(t, trans)

	// Re-stamping an already renewed source fails and rolls back the successor
	dup := &model.Transaction{
		UserID:   source.UserID,
		TranID:   source.TranID + "-R2",
		Amount:   source.Amount,
		Currency: source.Currency,
		Plan:     source.Plan,
		Status:   model.TranStatusPending,
	}
	assert.Equal(t, ErrTranTerminal, repo.CreateRenewal(source, dup))
	_, err = repo.GetByTranID(dup.TranID)
	assert.Equal(t, ErrTranNotFound, err)
}

func TestTransactionRepository_LatestCompletedPlan(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewTransactionRepository(db)

	got, err := repo.LatestCompletedPlan(9)
	require.NoError(t, err)
	assert.Nil(t, got)

	now := time.Now()
	old := testutil.TestTransaction(t, db,
		testutil.WithUser(9),
		testutil.WithStatus(model.TranStatusCompleted),
		testutil.WithPlan("basic", now.AddDate(0, 1, 0), false),
	)
	old.CreatedAt = now.AddDate(0, -2, 0)
	require.NoError(t, db.Save(old).Error)

	latest := testutil.TestTransaction(t, db,
		testutil.WithUser(9),
		testutil.WithStatus(model.TranStatusCompleted),
		testutil.WithPlan("pro", now.AddDate(0, 1, 0), true),
	)

	got, err = repo.LatestCompletedPlan(9)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, latest.TranID, got.TranID)
}
