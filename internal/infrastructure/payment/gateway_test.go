package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(secret, gatewayOrderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(gatewayOrderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	client := NewGatewayClient("http://unused", "key-id", "top-secret", time.Second)

	good := sign("top-secret", "gw-1", "pay-1")
	assert.True(t, client.VerifySignature("gw-1", "pay-1", good))

	t.Run("tampered signature", func(t *testing.T) {
		assert.False(t, client.VerifySignature("gw-1", "pay-1", good[:len(good)-1]+"0"))
	})
	t.Run("signature for a different payment", func(t *testing.T) {
		assert.False(t, client.VerifySignature("gw-1", "pay-2", good))
	})
	t.Run("wrong secret", func(t *testing.T) {
		assert.False(t, client.VerifySignature("gw-1", "pay-1", sign("other-secret", "gw-1", "pay-1")))
	})
	t.Run("empty signature", func(t *testing.T) {
		assert.False(t, client.VerifySignature("gw-1", "pay-1", ""))
	})
}

func TestCreateRemoteOrder(t *testing.T) {
	var gotIdempotencyKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotIdempotencyKey = r.Header.Get("Idempotency-Key")
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "key-id", user)
		assert.Equal(t, "top-secret", pass)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"gw-77","amount":30000,"currency":"INR"}`))
	}))
	defer srv.Close()

	client := NewGatewayClient(srv.URL, "key-id", "top-secret", time.Second)

	remote, err := client.CreateRemoteOrder(context.Background(), 30000, "INR", "rcpt-1")
	require.NoError(t, err)
	assert.Equal(t, "gw-77", remote.GatewayOrderID)
	assert.Equal(t, int64(30000), remote.Amount)
	assert.Equal(t, "INR", remote.Currency)
	assert.Equal(t, "rcpt-1", gotIdempotencyKey)
}

func TestCreateRemoteOrder_ClientErrorNotRetried(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"amount too small"}`))
	}))
	defer srv.Close()

	client := NewGatewayClient(srv.URL, "key-id", "top-secret", time.Second)

	_, err := client.CreateRemoteOrder(context.Background(), 1, "INR", "rcpt-2")
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}
