// Package flutterwave talks to the Flutterwave v3 API. Only transaction
// verification is needed server-side; checkout runs in the hosted page.
package flutterwave

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ManuelReschke/SongPitch/internal/pkg/env"
)

const (
	defaultBaseURL = "https://api.flutterwave.com"
	defaultTimeout = 15 * time.Second

	StatusSuccess            = "success"
	TransactionStatusSuccess = "successful"
)

var ErrNotConfigured = errors.New("FLUTTERWAVE_SECRET_KEY is not configured")

// StatusError is returned when the API answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("flutterwave request failed: status=%d body=%s", e.StatusCode, e.Body)
}

type Config struct {
	PublicKey string
	SecretKey string
	BaseURL   string
	Timeout   time.Duration
}

func ConfigFromEnv() Config {
	return Config{
		PublicKey: strings.TrimSpace(env.GetEnv("FLUTTERWAVE_PUBLIC_KEY", "")),
		SecretKey: strings.TrimSpace(env.GetEnv("FLUTTERWAVE_SECRET_KEY", "")),
		BaseURL:   strings.TrimSpace(env.GetEnv("FLUTTERWAVE_BASE_URL", defaultBaseURL)),
		Timeout:   env.GetEnvDuration("FLUTTERWAVE_TIMEOUT", defaultTimeout),
	}
}

type Client struct {
	SecretKey string
	BaseURL   string

	HTTPClient *http.Client
}

func NewClient(cfg Config) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		SecretKey: cfg.SecretKey,
		BaseURL:   baseURL,
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type Customer struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type Transaction struct {
	ID            int64    `json:"id"`
	TxRef         string   `json:"tx_ref"`
	FlwRef        string   `json:"flw_ref"`
	Amount        float64  `json:"amount"`
	ChargedAmount float64  `json:"charged_amount"`
	Currency      string   `json:"currency"`
	Status        string   `json:"status"`
	PaymentType   string   `json:"payment_type"`
	CreatedAt     string   `json:"created_at"`
	Customer      Customer `json:"customer"`
}

type VerifyResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Data    Transaction `json:"data"`
}

// Successful reports whether both the request and the transaction itself succeeded.
func (r *VerifyResponse) Successful() bool {
	return r != nil && r.Status == StatusSuccess && r.Data.Status == TransactionStatusSuccess
}

// VerifyTransaction fetches the authoritative state of a transaction.
func (c *Client) VerifyTransaction(ctx context.Context, transactionID string) (*VerifyResponse, error) {
	if strings.TrimSpace(c.SecretKey) == "" {
		return nil, ErrNotConfigured
	}
	id := strings.TrimSpace(transactionID)
	if id == "" {
		return nil, errors.New("transaction id is required")
	}

	endpoint := fmt.Sprintf("%s/v3/transactions/%s/verify", c.BaseURL, url.PathEscape(id))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.SecretKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var out VerifyResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode flutterwave verify response: %w", err)
	}
	return &out, nil
}
