// Package remote is the HTTP client for the focusflow server.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	apperrors "focusflow/internal/errors"
	"focusflow/internal/model"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

type AuthResult struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return NewClientWithHTTP(baseURL, &http.Client{Timeout: timeout})
}

func NewClientWithHTTP(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

func (c *Client) Register(ctx context.Context, email, password string) (*AuthResult, error) {
	return c.authenticate(ctx, "/api/auth/register", email, password)
}

func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	return c.authenticate(ctx, "/api/auth/login", email, password)
}

// FetchRecentSessions returns at most limit sessions, most recent first.
func (c *Client) FetchRecentSessions(ctx context.Context, token string, limit int) ([]model.RemoteSession, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var resp struct {
		Sessions []model.RemoteSession `json:"sessions"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/pomodoro/sessions?"+query.Encode(), token, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Sessions, nil
}

// PushSession uploads a resolved session and returns the id the server
// assigned to it.
func (c *Client) PushSession(ctx context.Context, token string, session model.Session) (string, error) {
	payload, err := model.ToRemoteSession(session)
	if err != nil {
		return "", err
	}

	var resp struct {
		Session model.RemoteSession `json:"session"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/pomodoro/sessions", token, payload, &resp); err != nil {
		return "", err
	}
	if resp.Session.ID == "" {
		return "", fmt.Errorf("push session %s: server returned no id", session.ID)
	}
	return resp.Session.ID, nil
}

// CurrentUser returns the account the token belongs to.
func (c *Client) CurrentUser(ctx context.Context, token string) (*model.User, error) {
	var user model.User
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", token, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) FetchSettings(ctx context.Context, token string) (*model.PomodoroSettings, error) {
	var resp struct {
		Settings model.PomodoroSettings `json:"settings"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/pomodoro/settings", token, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Settings, nil
}

func (c *Client) Stats(ctx context.Context, token string, from, to *time.Time) (*model.SessionStats, error) {
	query := url.Values{}
	if from != nil {
		query.Set("from", from.UTC().Format(time.RFC3339))
	}
	if to != nil {
		query.Set("to", to.UTC().Format(time.RFC3339))
	}

	var resp struct {
		Stats model.SessionStats `json:"stats"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/pomodoro/stats?"+query.Encode(), token, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Stats, nil
}

func (c *Client) authenticate(ctx context.Context, path, email, password string) (*AuthResult, error) {
	body := map[string]string{"email": email, "password": password}
	var result AuthResult
	if err := c.do(ctx, http.MethodPost, path, "", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, body, dest interface{}) error {
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
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var envelope errorEnvelope
		_ = json.Unmarshal(raw, &envelope)
		return apperrors.FromStatus(resp.StatusCode, envelope.Error.Code, envelope.Error.Message)
	}

	if dest == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
