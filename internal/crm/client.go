// Package crm implements the HTTP client for the external CRM backend.
// Every operation is a single request/response pair with a fixed timeout:
// no retries, no caching. The backend owns all durable state.
package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/leadana/crmbot/core/logger"
)

// Client talks to the CRM backend API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a Client for the given base URL with the given timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Detail  string `json:"detail"`
}

func (c *Client) do(ctx context.Context, op, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("crm: %s: encode request: %w", op, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("crm: %s: build request: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		logger.Warn(ctx, "crm", "request.fail",
			slog.String("status", "fail"),
			slog.String("operation", op),
			slog.String("method", method),
			slog.String("path", path),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("crm: %s: %w", op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("crm: %s: read response: %w", op, err)
	}

	logger.Debug(ctx, "crm", "request.done",
		slog.String("operation", op),
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("http_code", resp.StatusCode),
		slog.Int64("duration_ms", logger.RoundMS(time.Since(start)).Milliseconds()),
	)

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		if out == nil || len(data) == 0 {
			return nil
		}
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("crm: %s: decode response: %w", op, err)
		}
		return nil
	case resp.StatusCode == http.StatusConflict:
		var eb errorBody
		_ = json.Unmarshal(data, &eb)
		msg := eb.Error
		if msg == "" {
			msg = eb.Message
		}
		if msg == "" {
			msg = eb.Detail
		}
		return &DomainError{Op: op, Message: msg}
	default:
		return fmt.Errorf("crm: %s: backend status %d", op, resp.StatusCode)
	}
}

// StartAuth asks the backend whether the user is already logged in.
func (c *Client) StartAuth(ctx context.Context, telegramID int64) (*AuthStatus, error) {
	var out AuthStatus
	err := c.do(ctx, "auth.start", http.MethodPost, "/auth/start",
		map[string]interface{}{"telegram_id": telegramID}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// SendSMS asks the backend to deliver a verification code to the phone.
// A DomainError means the phone is not registered in the CRM.
func (c *Client) SendSMS(ctx context.Context, telegramID int64, phone string) error {
	return c.do(ctx, "auth.send_sms", http.MethodPost, "/auth/send-sms",
		map[string]interface{}{"telegram_id": telegramID, "phone": phone}, nil)
}

// VerifyCode checks the SMS code with the backend.
// A DomainError means the code was wrong.
func (c *Client) VerifyCode(ctx context.Context, telegramID int64, phone, code string) (*AuthStatus, error) {
	var out AuthStatus
	err := c.do(ctx, "auth.verify_code", http.MethodPost, "/auth/verify-code",
		map[string]interface{}{"telegram_id": telegramID, "phone": phone, "code": code}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout terminates the user's backend session.
func (c *Client) Logout(ctx context.Context, telegramID int64) error {
	return c.do(ctx, "auth.logout", http.MethodPost, "/auth/logout",
		map[string]interface{}{"telegram_id": telegramID, "action": "logout"}, nil)
}

// CheckSession re-queries the backend for the user's login status.
// Session truth is never cached locally.
func (c *Client) CheckSession(ctx context.Context, telegramID int64) (*SessionStatus, error) {
	var out SessionStatus
	err := c.do(ctx, "auth.check_session", http.MethodPost, "/auth/check-session",
		map[string]interface{}{"telegram_id": telegramID}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// SellerProjects lists the projects assigned to a seller.
func (c *Client) SellerProjects(ctx context.Context, userID int64) ([]Project, error) {
	var out struct {
		Projects []Project `json:"projects"`
	}
	path := fmt.Sprintf("/api/sellers/%d/projects", userID)
	if err := c.do(ctx, "projects.list", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Projects, nil
}

// Project fetches a single project by ID.
func (c *Client) Project(ctx context.Context, projectID int64) (*Project, error) {
	var out Project
	path := fmt.Sprintf("/api/projects/%d", projectID)
	if err := c.do(ctx, "projects.get", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ProjectLeads lists a project's leads filtered by status.
func (c *Client) ProjectLeads(ctx context.Context, projectID int64, status string, userID int64) ([]Lead, error) {
	var out struct {
		Leads []Lead `json:"leads"`
	}
	q := url.Values{}
	q.Set("status", status)
	q.Set("user_id", fmt.Sprintf("%d", userID))
	path := fmt.Sprintf("/api/projects/%d/leads?%s", projectID, q.Encode())
	if err := c.do(ctx, "leads.list", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Leads, nil
}

// Lead fetches a single lead by ID.
func (c *Client) Lead(ctx context.Context, leadID, userID int64) (*Lead, error) {
	var out Lead
	path := fmt.Sprintf("/api/leads/%d?user_id=%d", leadID, userID)
	if err := c.do(ctx, "leads.get", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateLeadStatus moves a lead to a new pipeline status.
func (c *Client) UpdateLeadStatus(ctx context.Context, leadID int64, status string, userID int64) error {
	path := fmt.Sprintf("/api/leads/%d/status", leadID)
	return c.do(ctx, "leads.update_status", http.MethodPut, path,
		map[string]interface{}{"status": status, "user_id": userID}, nil)
}

// CreateReminder creates a reminder for a project or lead.
func (c *Client) CreateReminder(ctx context.Context, r Reminder) error {
	return c.do(ctx, "reminders.create", http.MethodPost, "/api/reminders", r, nil)
}

// ProjectReport fetches the aggregated report for a project.
func (c *Client) ProjectReport(ctx context.Context, projectID, userID int64) (*ProjectReport, error) {
	var out ProjectReport
	path := fmt.Sprintf("/api/projects/%d/report?user_id=%d", projectID, userID)
	if err := c.do(ctx, "reports.project", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DailyReport fetches the per-user daily summary for the given date (YYYY-MM-DD).
func (c *Client) DailyReport(ctx context.Context, userID int64, date string) (*DailyReport, error) {
	var out DailyReport
	q := url.Values{}
	q.Set("user_id", fmt.Sprintf("%d", userID))
	q.Set("date", date)
	if err := c.do(ctx, "reports.daily", http.MethodGet, "/api/reports/daily?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
