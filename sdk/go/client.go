package finplansdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is a minimal Finplan HTTP API client.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// New creates a client with sane defaults.
func New(baseURL string) *Client {
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		Timeout:    10 * time.Second,
	}
}

// StrategyDefinition identifies a catalog entry (partial API model).
type StrategyDefinition struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Category   string   `json:"category"`
	Tier       int      `json:"tier"`
	Difficulty string   `json:"difficulty"`
	Tags       []string `json:"tags,omitempty"`
}

// Parameter describes one strategy input.
type Parameter struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Label       string   `json:"label,omitempty"`
	Description string   `json:"description,omitempty"`
	Default     any      `json:"default,omitempty"`
	Min         *float64 `json:"min,omitempty"`
	Max         *float64 `json:"max,omitempty"`
	Options     []string `json:"options,omitempty"`
	Required    bool     `json:"required,omitempty"`
}

// Strategy pairs a definition with its parameter schema.
type Strategy struct {
	Definition StrategyDefinition `json:"definition"`
	Parameters []Parameter        `json:"parameters"`
}

// Event is one plan ledger entry. Amounts travel as decimal strings.
type Event struct {
	ID            string         `json:"id"`
	Type          string         `json:"type"`
	Name          string         `json:"name"`
	MonthOffset   int            `json:"month_offset"`
	Amount        string         `json:"amount"`
	Frequency     string         `json:"frequency,omitempty"`
	TargetAccount string         `json:"target_account,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	Details       map[string]any `json:"details,omitempty"`
}

// Context is the plan snapshot a strategy evaluates against.
type Context struct {
	Events      []Event        `json:"events"`
	Inputs      map[string]any `json:"inputs,omitempty"`
	CurrentAge  int            `json:"current_age"`
	CurrentYear int            `json:"current_year"`
	Sim         map[string]any `json:"sim"`
}

// Applicability is a canApply verdict.
type Applicability struct {
	Applicable bool     `json:"applicable"`
	Reasons    []string `json:"reasons"`
}

// GeneratedEvent wraps a new event with its justification.
type GeneratedEvent struct {
	Event      Event  `json:"event"`
	Reason     string `json:"reason"`
	Importance string `json:"importance"`
}

// Result is a strategy execution outcome (partial API model).
type Result struct {
	Success         bool             `json:"success"`
	StrategyID      string           `json:"strategy_id"`
	GeneratedEvents []GeneratedEvent `json:"generated_events,omitempty"`
	Warnings        []string         `json:"warnings,omitempty"`
	NextSteps       []string         `json:"next_steps,omitempty"`
}

// APIError wraps non-2xx responses.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status=%d body=%s", e.StatusCode, e.Body)
}

// Strategies lists the catalog.
func (c *Client) Strategies(ctx context.Context) ([]Strategy, error) {
	var resp struct {
		Strategies []Strategy `json:"strategies"`
	}
	err := c.do(ctx, http.MethodGet, "v0/strategies", nil, &resp)
	return resp.Strategies, err
}

// Strategy describes one catalog entry.
func (c *Client) Strategy(ctx context.Context, id string) (Strategy, error) {
	var resp Strategy
	endpoint := fmt.Sprintf("v0/strategies/%s", url.PathEscape(id))
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp, err
}

// Applicability checks whether a strategy applies to a plan context.
func (c *Client) Applicability(ctx context.Context, id string, pc Context, inputs map[string]any) (Applicability, error) {
	body := map[string]any{"context": pc, "inputs": inputs}
	var resp Applicability
	endpoint := fmt.Sprintf("v0/strategies/%s/applicability", url.PathEscape(id))
	err := c.do(ctx, http.MethodPost, endpoint, body, &resp)
	return resp, err
}

// Run executes a strategy against a plan context.
func (c *Client) Run(ctx context.Context, id string, pc Context, inputs map[string]any) (Result, error) {
	body := map[string]any{"context": pc, "inputs": inputs}
	var resp Result
	endpoint := fmt.Sprintf("v0/strategies/%s/run", url.PathEscape(id))
	err := c.do(ctx, http.MethodPost, endpoint, body, &resp)
	return resp, err
}

// Compose merges a strategy result into an event ledger.
func (c *Client) Compose(ctx context.Context, events []Event, result Result) ([]Event, error) {
	body := map[string]any{"events": events, "result": result}
	var resp struct {
		Events []Event `json:"events"`
	}
	err := c.do(ctx, http.MethodPost, "v0/plans/compose", body, &resp)
	return resp.Events, err
}

// Health pings the server.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "v0/healthz", nil, nil)
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	hc := c.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: c.Timeout}
	}
	url := c.base() + "/" + strings.TrimLeft(endpoint, "/")
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: string(b)}
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *Client) base() string {
	return strings.TrimRight(c.BaseURL, "/")
}
