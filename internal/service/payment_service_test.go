package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sakib/jobhive_go_server/config"
	"github.com/sakib/jobhive_go_server/internal/model"
	"github.com/sakib/jobhive_go_server/internal/model/dto"
	"github.com/sakib/jobhive_go_server/internal/pkg/gateway"
	"github.com/sakib/jobhive_go_server/internal/repository"
	"github.com/sakib/jobhive_go_server/internal/testutil"
)

func setupPaymentService(t *testing.T, gatewayURL string) (*PaymentService, *gorm.DB) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	cfg := &config.Config{
		Gateway: config.GatewayConfig{
			BaseURL:    gatewayURL,
			StoreID:    "jobhive_store",
			SecretKey:  "test-secret",
			Currency:   "BDT",
			SuccessURL: "https://jobhive.example/pay/success",
			CancelURL:  "https://jobhive.example/pay/cancel",
		},
	}

	gw := gateway.NewClient(gateway.Config{
		BaseURL:   cfg.Gateway.BaseURL,
		StoreID:   cfg.Gateway.StoreID,
		SecretKey: cfg.Gateway.SecretKey,
	}, gateway.NewHMACSigner(cfg.Gateway.SecretKey))

	tranRepo := repository.NewTransactionRepository(db)
	return NewPaymentService(tranRepo, gw, nil, cfg), db
}

func redirectGateway(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Location", "https://pay.example/session/xyz")
		w.WriteHeader(http.StatusFound)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestPaymentService_CreateCheckout_OneOffPayment(t *testing.T) {
	srv := redirectGateway(t)
	svc, db := setupPaymentService(t, srv.URL)

	outcome, err := svc.CreateCheckout(context.Background(), 1, &dto.CreateCheckoutRequest{
		Amount: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/session/xyz", outcome.RedirectURL)

	var tran model.Transaction
	require.NoError(t, db.Where("tran_id = ?", outcome.TranID).First(&tran).Error)
	assert.Equal(t, model.TranStatusPending, tran.Status)
	assert.Empty(t, tran.Plan)
	assert.Nil(t, tran.ExpiresAt)
	assert.False(t, tran.AutoRenew)
	assert.Nil(t, tran.NextBillingDate)
}

func TestPaymentService_CreateCheckout_PlanPurchase(t *testing.T) {
	srv := redirectGateway(t)
	svc, db := setupPaymentService(t, srv.URL)

	outcome, err := svc.CreateCheckout(context.Background(), 1, &dto.CreateCheckoutRequest{
		Amount:   500,
		Plan:     "pro",
		CusEmail: "student@example.com",
	})
	require.NoError(t, err)

	var tran model.Transaction
	require.NoError(t, db.Where("tran_id = ?", outcome.TranID).First(&tran).Error)
	assert.Equal(t, "pro", tran.Plan)
	assert.True(t, tran.AutoRenew)
	require.NotNil(t, tran.ExpiresAt)
	require.NotNil(t, tran.NextBillingDate)
	assert.Equal(t, tran.ExpiresAt.Unix(), tran.NextBillingDate.Unix())

	// ExpiresAt is one month out
	expected := time.Now().AddDate(0, 1, 0)
	assert.WithinDuration(t, expected, *tran.ExpiresAt, time.Minute)
}

func TestPaymentService_CreateCheckout_Validation(t *testing.T) {
	srv := redirectGateway(t)
	svc, db := setupPaymentService(t, srv.URL)

	_, err := svc.CreateCheckout(context.Background(), 1, &dto.CreateCheckoutRequest{Amount: 0})
	assert.Equal(t, ErrInvalidAmount, err)

	_, err = svc.CreateCheckout(context.Background(), 1, &dto.CreateCheckoutRequest{
		Amount: 100,
		Plan:   "platinum",
	})
	assert.Equal(t, ErrInvalidPlan, err)

	// free is not purchasable; it must never enter the renewal chain
	_, err = svc.CreateCheckout(context.Background(), 1, &dto.CreateCheckoutRequest{
		Amount: 100,
		Plan:   "free",
	})
	assert.Equal(t, ErrInvalidPlan, err)

	// No state written on validation failure
	var count int64
	require.NoError(t, db.Model(&model.Transaction{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestPaymentService_CreateCheckout_GatewayFailureMarksFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream unavailable"))
	}))
	defer srv.Close()

	svc, db := setupPaymentService(t, srv.URL)

	_, err := svc.CreateCheckout(context.Background(), 1, &dto.CreateCheckoutRequest{Amount: 100})
	require.Error(t, err)

	gwErr, ok := err.(*gateway.GatewayError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadGateway, gwErr.StatusCode)
	assert.Contains(t, gwErr.Body, "upstream unavailable")

	// pending → failed, never left pending on a known failure
	var tran model.Transaction
	require.NoError(t, db.First(&tran).Error)
	assert.Equal(t, model.TranStatusFailed, tran.Status)
}

func TestPaymentService_CreateCheckout_HTMLGateway(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>checkout form</html>"))
	}))
	defer srv.Close()

	svc, _ := setupPaymentService(t, srv.URL)

	outcome, err := svc.CreateCheckout(context.Background(), 1, &dto.CreateCheckoutRequest{Amount: 100})
	require.NoError(t, err)
	assert.Empty(t, outcome.RedirectURL)
	assert.Contains(t, outcome.HTML, "checkout form")
}

func TestPaymentService_ConfirmPayment(t *testing.T) {
	srv := redirectGateway(t)
	svc, db := setupPaymentService(t, srv.URL)

	outcome, err := svc.CreateCheckout(context.Background(), 3, &dto.CreateCheckoutRequest{
		Amount: 500,
		Plan:   "pro",
	})
	require.NoError(t, err)

	tran, err := svc.ConfirmPayment(context.Background(), outcome.TranID, model.TranStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, model.TranStatusCompleted, tran.Status)

	// Subscription aggregate created alongside
	var sub model.Subscription
	require.NoError(t, db.Where("user_id = ?", 3).First(&sub).Error)
	assert.Equal(t, "pro", sub.Plan)

	// Terminal state cannot be confirmed twice
	_, err = svc.ConfirmPayment(context.Background(), outcome.TranID, model.TranStatusFailed)
	assert.Error(t, err)
}

func TestPaymentService_RenewDue(t *testing.T) {
	srv := redirectGateway(t)
	svc, db := setupPaymentService(t, srv.URL)

	now := time.Now()
	past := now.AddDate(0, -1, 0)

	source := testutil.TestTransaction(t, db,
		testutil.WithUser(7),
		testutil.WithStatus(model.TranStatusCompleted),
		testutil.WithPlan("growth", past, true),
	)
	// auto_renew off, ignored even though expired
	testutil.TestTransaction(t, db,
		testutil.WithStatus(model.TranStatusCompleted),
		testutil.WithPlan("basic", past, false),
	)

	result, err := svc.RenewDue(context.Background())
	require.NoError(t, err)

	require.Equal(t, 1, result.Processed)
	item := result.Renewals[0]
	assert.Equal(t, int64(7), item.UserID)
	assert.Equal(t, "growth", item.Plan)
	assert.Equal(t, "pending_manual_payment", item.Status)
	assert.Equal(t, source.TranID, item.SourceTran)
	assert.NotEqual(t, source.TranID, item.TranID)

	var successor model.Transaction
	require.NoError(t, db.Where("tran_id = ?", item.TranID).First(&successor).Error)
	assert.Equal(t, model.TranStatusPending, successor.Status)
	assert.True(t, successor.AutoRenew)
	require.NotNil(t, successor.ExpiresAt)
	assert.WithinDuration(t, now.AddDate(0, 1, 0), *successor.ExpiresAt, time.Minute)

	// Second run is a no-op: the source row is stamped
	result, err = svc.RenewDue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Processed)

	var total int64
	require.NoError(t, db.Model(&model.Transaction{}).Count(&total).Error)
	assert.Equal(t, int64(3), total)
}
