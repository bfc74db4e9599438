package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(baseURL string) *Client {
	return NewClient(Config{
		BaseURL:   baseURL,
		StoreID:   "jobhive_store",
		SecretKey: "test-secret",
	}, NewHMACSigner("test-secret"))
}

func TestHMACSigner_Deterministic(t *testing.T) {
	signer := NewHMACSigner("secret")
	fields := []Field{
		{"store_id", "jobhive_store"},
		{"tran_id", "TXN123"},
		{"amount", "500.00"},
	}

	sig1 := signer.Sign(fields)
	sig2 := signer.Sign(fields)
	assert.Equal(t, sig1, sig2)
	assert.Len(t, sig1, 64) // hex sha256

	// Different secret, different signature
	other := NewHMACSigner("other-secret")
	assert.NotEqual(t, sig1, other.Sign(fields))

	// Field order is part of the contract
	swapped := []Field{fields[1], fields[0], fields[2]}
	assert.NotEqual(t, sig1, signer.Sign(swapped))
}

func TestHMACSigner_Verify(t *testing.T) {
	signer := NewHMACSigner("secret")
	fields := []Field{
		{"tran_id", "TXN123"},
		{"status", "completed"},
	}

	sig := signer.Sign(fields)
	assert.True(t, signer.Verify(fields, sig))

	// Hex case does not matter
	assert.True(t, signer.Verify(fields, strings.ToUpper(sig)))

	assert.False(t, signer.Verify(fields, ""))
	assert.False(t, signer.Verify(fields, "deadbeef"))
	assert.False(t, NewHMACSigner("other-secret").Verify(fields, sig))

	// A signature over different field values must not verify
	tampered := []Field{{"tran_id", "TXN123"}, {"status", "failed"}}
	assert.False(t, signer.Verify(tampered, sig))
}

func TestClient_BuildFields_OmitsEmpty(t *testing.T) {
	c := testClient("http://gateway.example")

	fields, err := c.buildFields(&CheckoutRequest{
		TranID:   "TXN1",
		Amount:   1,
		Currency: "BDT",
	})
	require.NoError(t, err)

	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"store_id", "tran_id", "amount", "currency"}, names)
}

func TestClient_BuildFields_ItemsBase64(t *testing.T) {
	c := testClient("http://gateway.example")

	fields, err := c.buildFields(&CheckoutRequest{
		TranID:   "TXN1",
		Amount:   500,
		Currency: "BDT",
		Items:    []LineItem{{Name: "Pro plan", Quantity: 1, Price: 500}},
	})
	require.NoError(t, err)

	var items string
	for _, f := range fields {
		if f.Name == "items" {
			items = f.Value
		}
	}
	require.NotEmpty(t, items)
	assert.NotContains(t, items, "{") // base64, not raw JSON
}

func TestClient_CreateCheckout_Redirect(t *testing.T) {
	var received url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		received = r.PostForm
		w.Header().Set("Location", "https://pay.example/session/abc")
		w.WriteHeader(http.StatusFound)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	result, err := c.CreateCheckout(context.Background(), &CheckoutRequest{
		TranID:   "TXN1",
		Amount:   500,
		Currency: "BDT",
		CusEmail: "student@example.com",
	})

	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/session/abc", result.RedirectURL)
	assert.Empty(t, result.HTML)

	// Signature travels with the form and covers exactly the sent fields
	assert.NotEmpty(t, received.Get("signature"))
	assert.Equal(t, "500.00", received.Get("amount"))
	assert.Equal(t, "student@example.com", received.Get("cus_email"))
	assert.Empty(t, received.Get("cus_phone"))

	sent := []Field{
		{"store_id", "jobhive_store"},
		{"tran_id", "TXN1"},
		{"amount", "500.00"},
		{"currency", "BDT"},
		{"cus_email", "student@example.com"},
	}
	assert.Equal(t, NewHMACSigner("test-secret").Sign(sent), received.Get("signature"))
}

func TestClient_CreateCheckout_HTMLBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body>pay here</body></html>"))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	result, err := c.CreateCheckout(context.Background(), &CheckoutRequest{
		TranID:   "TXN2",
		Amount:   1,
		Currency: "BDT",
	})

	require.NoError(t, err)
	assert.Empty(t, result.RedirectURL)
	assert.Contains(t, result.HTML, "pay here")
}

func TestClient_CreateCheckout_GatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream unavailable"))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.CreateCheckout(context.Background(), &CheckoutRequest{
		TranID:   "TXN3",
		Amount:   1,
		Currency: "BDT",
	})

	require.Error(t, err)
	gwErr, ok := err.(*GatewayError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadGateway, gwErr.StatusCode)
	assert.Contains(t, gwErr.Body, "upstream unavailable")
}
