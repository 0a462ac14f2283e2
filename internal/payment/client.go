package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client talks to the hosted payment gateway's REST API. Session
// creation is a network call; signature verification happens locally
// against the shared key secret.
type Client struct {
	httpClient *http.Client
	baseURL    string
	keyID      string
	keySecret  string
}

func NewClient(baseURL, keyID, keySecret string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    baseURL,
		keyID:      keyID,
		keySecret:  keySecret,
	}
}

type createSessionRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

func (c *Client) CreateSession(ctx context.Context, amount int64, currency, receiptID string) (*Session, error) {
	body, err := json.Marshal(createSessionRequest{
		Amount:   amount,
		Currency: currency,
		Receipt:  receiptID,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/sessions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("%w: gateway returned %d", ErrSessionFailed, resp.StatusCode)
	}

	var session Session
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("failed to decode gateway response: %w", err)
	}
	return &session, nil
}

func (c *Client) VerifyPayment(ctx context.Context, conf Confirmation) error {
	if !VerifySignature(c.keySecret, conf.SessionID, conf.PaymentID, conf.Signature) {
		return ErrInvalidSignature
	}
	return nil
}
