// Package escrow is the client of the external stake escrow service. The
// service speaks SOL decimal strings; this package converts to lamports.
package escrow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/chris/habit-pools/pkg/models"
	"github.com/shopspring/decimal"
)

// Client calls the escrow service over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new Client. Callers bound each call with its context.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
}

type transferRequest struct {
	From   string          `json:"from"`
	Amount decimal.Decimal `json:"amount"`
}

type transferResponse struct {
	TxReference string `json:"tx_reference"`
}

type balanceResponse struct {
	Amount decimal.Decimal `json:"amount"`
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("escrow request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("escrow returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

// TransferStake moves amount lamports from a wallet into escrow and returns
// the transfer reference.
func (c *Client) TransferStake(ctx context.Context, from string, amount int64) (string, error) {
	payload, err := json.Marshal(transferRequest{From: from, Amount: models.SOL(amount)})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transfers", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var out transferResponse
	if err := c.do(req, &out); err != nil {
		return "", err
	}
	if out.TxReference == "" {
		return "", fmt.Errorf("escrow returned an empty tx reference")
	}
	return out.TxReference, nil
}

// BalanceOf returns the escrow-visible balance of a wallet in lamports.
func (c *Client) BalanceOf(ctx context.Context, address string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/balances/"+url.PathEscape(address), nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	var out balanceResponse
	if err := c.do(req, &out); err != nil {
		return 0, err
	}
	return models.Lamports(out.Amount)
}
