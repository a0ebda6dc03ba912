package rating

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/quoteline/quoteline/internal/calculation"
	"github.com/quoteline/quoteline/internal/domain"
)

var (
	_ calculation.Service = (*Client)(nil)
	_ calculation.Service = (*LocalService)(nil)
)

// Client talks to a remote rating service over HTTP. It imposes no timeout
// of its own beyond the transport's; stale responses are defused by the
// session's fetch generation, not cancelled here.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a rating client for the given base URL. A nil httpClient
// uses http.DefaultClient.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// errorBody is the error envelope returned by the rating server.
type errorBody struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("rating service: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("rating service: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		if json.Unmarshal(data, &eb) == nil && eb.Message != "" {
			return fmt.Errorf("rating service: %s (status %d)", eb.Message, resp.StatusCode)
		}
		return fmt.Errorf("rating service: unexpected status %d", resp.StatusCode)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("rating service: malformed response: %w", err)
	}
	return nil
}

// CalculateRiskItems implements the calculate-risk-items operation.
func (c *Client) CalculateRiskItems(ctx context.Context, req domain.RiskItemCalcRequest) (*domain.RiskItemCalcResponse, error) {
	var out domain.RiskItemCalcResponse
	if err := c.post(ctx, "/api/rating/risk-items", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CalculateAggregate implements the calculate-aggregate operation.
func (c *Client) CalculateAggregate(ctx context.Context, req domain.AggregateRequest) (*domain.AggregateResponse, error) {
	var out domain.AggregateResponse
	if err := c.post(ctx, "/api/rating/aggregate", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ApplyAdjustments implements the apply-proposal-adjustments operation.
func (c *Client) ApplyAdjustments(ctx context.Context, req domain.AdjustmentRequest) (*domain.AdjustmentResult, error) {
	var out domain.AdjustmentResult
	if err := c.post(ctx, "/api/rating/adjustments", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CalculateProRata implements the calculate-pro-rata operation.
func (c *Client) CalculateProRata(ctx context.Context, req domain.ProRataRequest) (*domain.ProRataResult, error) {
	var out domain.ProRataResult
	if err := c.post(ctx, "/api/rating/pro-rata", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetBreakdown implements the calculation-breakdown operation.
func (c *Client) GetBreakdown(ctx context.Context, proposalID string) (*domain.RawBreakdown, error) {
	var out domain.RawBreakdown
	if err := c.get(ctx, "/api/rating/breakdown/"+proposalID, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
