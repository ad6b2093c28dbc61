// Package monnify is the payment processor client. It provisions the
// reserved bank accounts users fund by transfer; the deposits themselves
// arrive asynchronously through the webhook ingestor.
package monnify

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// ErrProvisioningFailed is returned when the processor could not create
// a reserved account.
var ErrProvisioningFailed = errors.New("reserved account provisioning failed")

type Client struct {
	BaseURL      string
	APIKey       string
	SecretKey    string
	ContractCode string
	HTTPClient   *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func NewClient(baseURL, apiKey, secretKey, contractCode string) *Client {
	return &Client{
		BaseURL:      baseURL,
		APIKey:       apiKey,
		SecretKey:    secretKey,
		ContractCode: contractCode,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ReservedAccountRequest asks the processor for a dedicated bank account
// tied to one customer.
type ReservedAccountRequest struct {
	AccountReference string `json:"accountReference"`
	AccountName      string `json:"accountName"`
	CurrencyCode     string `json:"currencyCode"`
	ContractCode     string `json:"contractCode"`
	CustomerEmail    string `json:"customerEmail"`
	CustomerName     string `json:"customerName"`
	Nin              string `json:"nin,omitempty"`
}

// ReservedAccount is the provisioned account returned by the processor.
type ReservedAccount struct {
	AccountReference string `json:"accountReference"`
	AccountName      string `json:"accountName"`
	AccountNumber    string `json:"accountNumber"`
	BankName         string `json:"bankName"`
	CurrencyCode     string `json:"currencyCode"`
}

type apiResponse struct {
	RequestSuccessful bool            `json:"requestSuccessful"`
	ResponseMessage   string          `json:"responseMessage"`
	ResponseBody      json.RawMessage `json:"responseBody"`
}

type loginBody struct {
	AccessToken string `json:"accessToken"`
	ExpiresIn   int64  `json:"expiresIn"`
}

// CreateReservedAccount provisions a funding account for a user.
func (c *Client) CreateReservedAccount(ctx context.Context, req ReservedAccountRequest) (*ReservedAccount, error) {
	if req.ContractCode == "" {
		req.ContractCode = c.ContractCode
	}
	if req.CurrencyCode == "" {
		req.CurrencyCode = "NGN"
	}

	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.BaseURL+"/api/v1/bank-transfer/reserved-accounts", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("processor request failed: %w", err)
	}
	defer resp.Body.Close()

	envelope, err := decodeResponse(resp)
	if err != nil {
		return nil, err
	}
	if !envelope.RequestSuccessful {
		return nil, fmt.Errorf("%w: %s", ErrProvisioningFailed, envelope.ResponseMessage)
	}

	var account ReservedAccount
	if err := json.Unmarshal(envelope.ResponseBody, &account); err != nil {
		return nil, fmt.Errorf("failed to decode reserved account: %w", err)
	}
	if account.AccountReference == "" {
		return nil, ErrProvisioningFailed
	}
	return &account, nil
}

// token returns a cached access token, logging in again shortly before
// expiry.
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry.Add(-time.Minute)) {
		return c.accessToken, nil
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/v1/auth/login", nil)
	if err != nil {
		return "", fmt.Errorf("failed to build login request: %w", err)
	}
	basic := base64.StdEncoding.EncodeToString([]byte(c.APIKey + ":" + c.SecretKey))
	httpReq.Header.Set("Authorization", "Basic "+basic)

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("processor login failed: %w", err)
	}
	defer resp.Body.Close()

	envelope, err := decodeResponse(resp)
	if err != nil {
		return "", err
	}
	if !envelope.RequestSuccessful {
		return "", fmt.Errorf("processor login rejected: %s", envelope.ResponseMessage)
	}

	var login loginBody
	if err := json.Unmarshal(envelope.ResponseBody, &login); err != nil {
		return "", fmt.Errorf("failed to decode login response: %w", err)
	}

	c.accessToken = login.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(login.ExpiresIn) * time.Second)
	return c.accessToken, nil
}

func decodeResponse(resp *http.Response) (*apiResponse, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read processor response: %w", err)
	}
	var envelope apiResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode processor response (status %d): %w", resp.StatusCode, err)
	}
	return &envelope, nil
}
