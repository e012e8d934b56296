// Package verification is the client of the external vision-judgment service.
// Responses are parsed strictly into a Judgment; anything loosely shaped is
// rejected with ErrMalformedResponse.
package verification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ErrMalformedResponse is returned for a response that does not match the
// judgment contract.
var ErrMalformedResponse = errors.New("malformed verification response")

// Verdict is the verifier's boolean-leaning outcome.
type Verdict string

const (
	VerdictApproved Verdict = "approved"
	VerdictRejected Verdict = "rejected"
)

// PoolContext describes the pool a proof belongs to.
type PoolContext struct {
	PoolId       string `json:"pool_id"`
	Title        string `json:"title,omitempty"`
	Day          string `json:"day"`
	DurationDays int    `json:"duration_days"`
}

// Request is the body of a verification call.
type Request struct {
	ProofId              string      `json:"proof_id"`
	Image                string      `json:"image"`
	ProofRequirementText string      `json:"proof_requirement_text"`
	PoolContext          PoolContext `json:"pool_context"`
}

// Judgment is a validated verifier response.
type Judgment struct {
	Status     Verdict
	Confidence float64
	Reasoning  string
	Flags      []string
}

type rawJudgment struct {
	Status     *string  `json:"status"`
	Confidence *float64 `json:"confidence"`
	Reasoning  string   `json:"reasoning"`
	Flags      []string `json:"flags"`
}

// ParseJudgment decodes and validates a verifier response body.
func ParseJudgment(body []byte) (*Judgment, error) {
	var raw rawJudgment
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if raw.Status == nil {
		return nil, fmt.Errorf("%w: missing status", ErrMalformedResponse)
	}
	status := Verdict(strings.ToLower(*raw.Status))
	if status != VerdictApproved && status != VerdictRejected {
		return nil, fmt.Errorf("%w: unknown status %q", ErrMalformedResponse, *raw.Status)
	}
	if raw.Confidence == nil {
		return nil, fmt.Errorf("%w: missing confidence", ErrMalformedResponse)
	}
	if c := *raw.Confidence; c < 0 || c > 1 {
		return nil, fmt.Errorf("%w: confidence %v out of range", ErrMalformedResponse, c)
	}
	flags := raw.Flags
	if flags == nil {
		flags = []string{}
	}
	return &Judgment{
		Status:     status,
		Confidence: *raw.Confidence,
		Reasoning:  raw.Reasoning,
		Flags:      flags,
	}, nil
}

// Client calls the verifier over HTTP.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new Client. The caller bounds each call with its context.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{},
	}
}

// Verify asks the verifier to judge a proof.
func (c *Client) Verify(ctx context.Context, in Request) (*Judgment, error) {
	payload, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/verify", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("verify request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("verifier returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return ParseJudgment(body)
}
