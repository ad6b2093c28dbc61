// Package husmodata is the VTU provider client. It performs airtime and
// data top-ups; the ledger treats each call as the external action whose
// outcome decides whether the wallet is debited.
package husmodata

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Network codes accepted by the provider.
var NetworkNames = map[int]string{
	1: "MTN",
	2: "GLO",
	3: "9MOBILE",
	4: "AIRTEL",
}

// ErrPurchaseFailed is returned when the provider rejects a top-up.
var ErrPurchaseFailed = errors.New("provider rejected the purchase")

type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		BaseURL: baseURL,
		Token:   token,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// AirtimeRequest is the provider payload for an airtime top-up. Amount
// is in naira, the unit the provider bills in.
type AirtimeRequest struct {
	Network      int    `json:"network"`
	Amount       int64  `json:"amount"`
	MobileNumber string `json:"mobile_number"`
	PortedNumber bool   `json:"Ported_number"`
	AirtimeType  string `json:"airtime_type"`
}

// DataRequest is the provider payload for a data bundle purchase.
type DataRequest struct {
	Network      int    `json:"network"`
	MobileNumber string `json:"mobile_number"`
	Plan         int    `json:"plan"`
	PortedNumber bool   `json:"Ported_number"`
}

// TopupResponse is the provider's result envelope.
type TopupResponse struct {
	ID      int    `json:"id"`
	Status  string `json:"Status"`
	Message string `json:"api_response"`
}

// Succeeded reports whether the provider confirmed the top-up.
func (r *TopupResponse) Succeeded() bool {
	return r.Status == "successful"
}

// BuyAirtime performs an airtime top-up.
func (c *Client) BuyAirtime(ctx context.Context, req AirtimeRequest) (*TopupResponse, error) {
	return c.post(ctx, "/api/topup/", req)
}

// BuyData purchases a data bundle.
func (c *Client) BuyData(ctx context.Context, req DataRequest) (*TopupResponse, error) {
	return c.post(ctx, "/api/data/", req)
}

func (c *Client) post(ctx context.Context, path string, payload interface{}) (*TopupResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Token "+c.Token)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("provider request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read provider response: %w", err)
	}

	var result TopupResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to decode provider response: %w", err)
	}

	if resp.StatusCode >= 400 || !result.Succeeded() {
		return &result, fmt.Errorf("%w: %s", ErrPurchaseFailed, result.Message)
	}
	return &result, nil
}
