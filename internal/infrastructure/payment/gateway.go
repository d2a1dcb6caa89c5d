package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"zelora-backend/internal/domain"
	"zelora-backend/pkg/logger"
)

// GatewayClient talks to the hosted payment provider. Remote order
// creation is retried a bounded number of times with an idempotency key,
// so a client retry cannot double-create a capture.
type GatewayClient struct {
	baseURL    string
	keyID      string
	keySecret  string
	httpClient *http.Client
}

func NewGatewayClient(baseURL, keyID, keySecret string, timeout time.Duration) *GatewayClient {
	return &GatewayClient{
		baseURL:   baseURL,
		keyID:     keyID,
		keySecret: keySecret,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type createOrderReq struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type createOrderResp struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// CreateRemoteOrder registers a pending payment with the gateway. The
// receipt doubles as the idempotency key.
func (c *GatewayClient) CreateRemoteOrder(ctx context.Context, amountMinorUnits int64, currency, receipt string) (*domain.RemoteOrder, error) {
	body, err := json.Marshal(createOrderReq{
		Amount:   amountMinorUnits,
		Currency: currency,
		Receipt:  receipt,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal gateway order: %w", err)
	}

	url := c.baseURL + "/orders"

	var lastErr error
	for i := 0; i < 3; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Idempotency-Key", receipt)
		req.SetBasicAuth(c.keyID, c.keySecret)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("gateway request failed: %w", err)
			time.Sleep(time.Duration(i+1) * time.Second)
			continue
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			continue
		}

		if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated {
			var out createOrderResp
			if err := json.Unmarshal(respBody, &out); err != nil {
				return nil, fmt.Errorf("decode gateway response: %w", err)
			}
			return &domain.RemoteOrder{
				GatewayOrderID: out.ID,
				Amount:         out.Amount,
				Currency:       out.Currency,
			}, nil
		}

		lastErr = fmt.Errorf("gateway error (status %d): %s", resp.StatusCode, string(respBody))

		// 4xx other than 429 will not succeed on retry.
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			break
		}
		time.Sleep(time.Duration(i+1) * time.Second)
	}

	logger.Error().Err(lastErr).Msg("Gateway: CreateRemoteOrder exhausted retries")
	return nil, lastErr
}

// VerifySignature recomputes HMAC-SHA256 over "gatewayOrderID|paymentID"
// with the key secret and compares it to the provided hex signature in
// constant time.
func (c *GatewayClient) VerifySignature(gatewayOrderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(c.keySecret))
	mac.Write([]byte(gatewayOrderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
