// internal/dashboard/client.go
package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"expense-tracker/internal/domain"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Expense — строка формы ввода, как её отдаёт и принимает API
type Expense struct {
	Amount   decimal.Decimal `json:"amount"`
	Category string          `json:"category"`
	Notes    string          `json:"notes"`
}

// APIError carries the API's status and its "error" text.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API %d: %s", e.Status, e.Message)
}

// Client talks to the expense API. Only analytics calls have a timeout.
type Client struct {
	baseURL   string
	http      *http.Client
	analytics *http.Client
}

func NewClient(baseURL string, analyticsTimeout time.Duration) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{},
		analytics: &http.Client{Timeout: analyticsTimeout},
	}
}

func (c *Client) Expenses(ctx context.Context, date time.Time) ([]Expense, error) {
	var out []Expense
	err := c.do(ctx, c.http, http.MethodGet, "/expenses/"+date.Format(domain.DateLayout), nil, &out)
	return out, err
}

func (c *Client) SaveExpenses(ctx context.Context, date time.Time, expenses []Expense) error {
	if expenses == nil {
		expenses = []Expense{}
	}
	return c.do(ctx, c.http, http.MethodPost, "/expenses/"+date.Format(domain.DateLayout), expenses, nil)
}

type dateRange struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

func newRange(start, end time.Time) dateRange {
	return dateRange{StartDate: start.Format(domain.DateLayout), EndDate: end.Format(domain.DateLayout)}
}

func (c *Client) Breakdown(ctx context.Context, start, end time.Time) (domain.Breakdown, error) {
	out := domain.Breakdown{}
	err := c.do(ctx, c.analytics, http.MethodPost, "/analytics/", newRange(start, end), &out)
	return out, err
}

func (c *Client) MonthlyBreakdown(ctx context.Context, start, end time.Time) (domain.MonthlyBreakdown, error) {
	out := domain.MonthlyBreakdown{}
	err := c.do(ctx, c.analytics, http.MethodPost, "/analytics/monthly", newRange(start, end), &out)
	return out, err
}

func (c *Client) do(ctx context.Context, hc *http.Client, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if json.Unmarshal(raw, &apiErr) != nil || apiErr.Error == "" {
			apiErr.Error = strings.TrimSpace(string(raw))
		}
		return &APIError{Status: resp.StatusCode, Message: apiErr.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
