// Package prembly is the identity verification provider client
// (NIN, BVN and IPE lookups).
package prembly

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

// ErrVerificationFailed is returned when the provider could not verify
// the supplied identity number.
var ErrVerificationFailed = errors.New("identity verification failed")

type Client struct {
	BaseURL    string
	APIKey     string
	AppID      string
	HTTPClient *http.Client
}

func NewClient(baseURL, apiKey, appID string) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		AppID:   appID,
		HTTPClient: &http.Client{
			Timeout: 45 * time.Second,
		},
	}
}

// VerificationResponse is the provider result envelope. Data carries the
// matched identity record as returned by the provider.
type VerificationResponse struct {
	Status       bool                   `json:"status"`
	Detail       string                 `json:"detail"`
	Verification struct {
		Status string `json:"status"`
	} `json:"verification"`
	Data map[string]interface{} `json:"data"`
}

// Verified reports whether the lookup resolved to a verified identity.
func (r *VerificationResponse) Verified() bool {
	return r.Status && r.Verification.Status == "VERIFIED"
}

// VerifyNIN looks up a virtual NIN.
func (c *Client) VerifyNIN(ctx context.Context, nin string) (*VerificationResponse, error) {
	return c.post(ctx, "/identitypass/verification/vnin", map[string]string{"number": nin})
}

// VerifyBVN looks up a BVN.
func (c *Client) VerifyBVN(ctx context.Context, bvn string) (*VerificationResponse, error) {
	return c.post(ctx, "/identitypass/verification/bvn", map[string]string{"number": bvn})
}

// CheckIPE checks the status of an IPE clearance tracking id.
func (c *Client) CheckIPE(ctx context.Context, trackingID string) (*VerificationResponse, error) {
	return c.post(ctx, "/identitypass/verification/ipe", map[string]string{"tracking_id": trackingID})
}

// Personalize requests a personalized NIN slip for a cleared tracking
// id.
func (c *Client) Personalize(ctx context.Context, trackingID string) (*VerificationResponse, error) {
	return c.post(ctx, "/identitypass/verification/nin/personalization", map[string]string{"tracking_id": trackingID})
}

func (c *Client) post(ctx context.Context, path string, payload interface{}) (*VerificationResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("x-api-key", c.APIKey)
	httpReq.Header.Set("app-id", c.AppID)
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

	var result VerificationResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to decode provider response: %w", err)
	}

	if resp.StatusCode >= 400 || !result.Verified() {
		detail := result.Detail
		if detail == "" {
			detail = resp.Status
		}
		return &result, fmt.Errorf("%w: %s", ErrVerificationFailed, detail)
	}
	return &result, nil
}
