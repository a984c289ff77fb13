package router_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"focusflow/internal/db"
	"focusflow/internal/router"
	"focusflow/migrations"
)

type authResponse struct {
	Token string `json:"token"`
	User  struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

type sessionBody struct {
	ID              string `json:"id"`
	SessionType     string `json:"sessionType"`
	DurationMinutes int    `json:"durationMinutes"`
	Status          string `json:"status"`
}

type sessionEnvelope struct {
	Session sessionBody `json:"session"`
}

type sessionsEnvelope struct {
	Sessions []sessionBody `json:"sessions"`
}

type settingsEnvelope struct {
	Settings struct {
		FocusDurationMinutes int `json:"focusDurationMinutes"`
		LongBreakInterval    int `json:"longBreakInterval"`
		Version              int `json:"version"`
	} `json:"settings"`
}

type apiErrorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details struct {
			Settings struct {
				Version int `json:"version"`
			} `json:"settings"`
		} `json:"details"`
	} `json:"error"`
}

func TestSessionLifecycleAndIsolation(t *testing.T) {
	engine := setupTestEngine(t)

	user1 := registerUser(t, engine, "user1@example.com", "123456")
	user2 := registerUser(t, engine, "user2@example.com", "123456")

	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	created := createSession(t, engine, user1.Token, map[string]interface{}{
		"sessionType":     "focus",
		"durationMinutes": 25,
		"status":          "completed",
		"startTime":       start,
		"endTime":         start.Add(25 * time.Minute),
	})
	if created.ID == "" {
		t.Fatal("expected server-assigned id")
	}
	createSession(t, engine, user1.Token, map[string]interface{}{
		"sessionType":     "short_break",
		"durationMinutes": 5,
		"status":          "interrupted",
		"startTime":       start.Add(25 * time.Minute),
		"endTime":         start.Add(28 * time.Minute),
	})

	// Most recent first.
	sessions := listSessions(t, engine, user1.Token, "/api/pomodoro/sessions?limit=10")
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}
	if sessions[0].SessionType != "short_break" || sessions[1].ID != created.ID {
		t.Fatalf("unexpected order: %+v", sessions)
	}

	filtered := listSessions(t, engine, user1.Token, "/api/pomodoro/sessions?sessionType=focus")
	if len(filtered) != 1 || filtered[0].ID != created.ID {
		t.Fatalf("expected only the focus session, got %+v", filtered)
	}

	// User isolation.
	if others := listSessions(t, engine, user2.Token, "/api/pomodoro/sessions"); len(others) != 0 {
		t.Fatalf("expected no sessions for user2, got %d", len(others))
	}
	status, _ := requestJSON(t, engine, http.MethodGet, "/api/pomodoro/sessions/"+created.ID, user2.Token, nil)
	if status != http.StatusNotFound {
		t.Fatalf("expected 404 for another user's session, got %d", status)
	}

	status, raw := requestJSON(t, engine, http.MethodPut, "/api/pomodoro/sessions/"+created.ID, user1.Token, map[string]string{
		"status": "interrupted",
		"notes":  "phone rang",
	})
	if status != http.StatusOK {
		t.Fatalf("expected 200 on update, got %d: %s", status, raw)
	}
	var updated sessionEnvelope
	if err := json.Unmarshal(raw, &updated); err != nil {
		t.Fatalf("unmarshal update response: %v", err)
	}
	if updated.Session.Status != "interrupted" {
		t.Fatalf("expected interrupted, got %s", updated.Session.Status)
	}

	status, _ = requestJSON(t, engine, http.MethodDelete, "/api/pomodoro/sessions/"+created.ID, user1.Token, nil)
	if status != http.StatusNoContent {
		t.Fatalf("expected 204 on delete, got %d", status)
	}
	status, _ = requestJSON(t, engine, http.MethodGet, "/api/pomodoro/sessions/"+created.ID, user1.Token, nil)
	if status != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", status)
	}
}

func TestCreateSessionValidation(t *testing.T) {
	engine := setupTestEngine(t)
	user := registerUser(t, engine, "user@example.com", "123456")
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		body map[string]interface{}
		code string
	}{
		{"bad type", map[string]interface{}{"sessionType": "nap", "durationMinutes": 5, "startTime": start, "endTime": start}, "invalid_session_type"},
		{"zero duration", map[string]interface{}{"sessionType": "focus", "durationMinutes": 0, "startTime": start, "endTime": start}, "invalid_duration"},
		{"end before start", map[string]interface{}{"sessionType": "focus", "durationMinutes": 1, "startTime": start, "endTime": start.Add(-time.Minute)}, "invalid_time"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, raw := requestJSON(t, engine, http.MethodPost, "/api/pomodoro/sessions", user.Token, tc.body)
			if status != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", status, raw)
			}
			var resp apiErrorEnvelope
			if err := json.Unmarshal(raw, &resp); err != nil {
				t.Fatalf("unmarshal error response: %v", err)
			}
			if resp.Error.Code != tc.code {
				t.Fatalf("expected %s, got %s", tc.code, resp.Error.Code)
			}
		})
	}
}

func TestSettingsConflict(t *testing.T) {
	engine := setupTestEngine(t)
	user := registerUser(t, engine, "user1@example.com", "123456")

	status, raw := requestJSON(t, engine, http.MethodGet, "/api/pomodoro/settings", user.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200 for settings, got %d: %s", status, raw)
	}
	var initial settingsEnvelope
	if err := json.Unmarshal(raw, &initial); err != nil {
		t.Fatalf("unmarshal settings: %v", err)
	}
	if initial.Settings.Version != 1 || initial.Settings.FocusDurationMinutes != 25 {
		t.Fatalf("unexpected default settings: %+v", initial.Settings)
	}

	update := map[string]interface{}{
		"baseVersion":               1,
		"focusDurationMinutes":      50,
		"shortBreakDurationMinutes": 10,
		"longBreakDurationMinutes":  30,
		"longBreakInterval":         3,
	}
	status, _ = requestJSON(t, engine, http.MethodPut, "/api/pomodoro/settings", user.Token, update)
	if status != http.StatusOK {
		t.Fatalf("expected 200 on update, got %d", status)
	}

	// A second device still holding version 1 conflicts.
	status, raw = requestJSON(t, engine, http.MethodPut, "/api/pomodoro/settings", user.Token, update)
	if status != http.StatusConflict {
		t.Fatalf("expected 409 for stale version, got %d", status)
	}
	var conflict apiErrorEnvelope
	if err := json.Unmarshal(raw, &conflict); err != nil {
		t.Fatalf("unmarshal conflict response: %v", err)
	}
	if conflict.Error.Code != "settings_conflict" {
		t.Fatalf("expected settings_conflict, got %s", conflict.Error.Code)
	}
	if conflict.Error.Details.Settings.Version != 2 {
		t.Fatalf("expected current version 2 in details, got %d", conflict.Error.Details.Settings.Version)
	}
}

func TestAuthRequired(t *testing.T) {
	engine := setupTestEngine(t)

	status, _ := requestJSON(t, engine, http.MethodGet, "/api/pomodoro/sessions", "", nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", status)
	}
	status, _ = requestJSON(t, engine, http.MethodGet, "/api/pomodoro/sessions", "not-a-jwt", nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad token, got %d", status)
	}

	registerUser(t, engine, "dup@example.com", "123456")
	status, _ = requestJSON(t, engine, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    "dup@example.com",
		"password": "123456",
	})
	if status != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate email, got %d", status)
	}
	status, _ = requestJSON(t, engine, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "dup@example.com",
		"password": "wrong-password",
	})
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong password, got %d", status)
	}
}

func TestCurrentUser(t *testing.T) {
	engine := setupTestEngine(t)
	auth := registerUser(t, engine, "Me@Example.com", "123456")

	status, raw := requestJSON(t, engine, http.MethodGet, "/api/auth/me", auth.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200 for /me, got %d: %s", status, string(raw))
	}
	var me struct {
		ID           string `json:"id"`
		Email        string `json:"email"`
		PasswordHash string `json:"passwordHash"`
	}
	if err := json.Unmarshal(raw, &me); err != nil {
		t.Fatalf("unmarshal /me response: %v", err)
	}
	if me.ID != auth.User.ID || me.Email != "me@example.com" {
		t.Fatalf("unexpected user %+v", me)
	}
	if me.PasswordHash != "" {
		t.Fatalf("password hash leaked")
	}

	status, _ = requestJSON(t, engine, http.MethodGet, "/api/auth/me", "", nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401 for /me without token, got %d", status)
	}
}

func TestHealth(t *testing.T) {
	engine := setupTestEngine(t)
	status, _ := requestJSON(t, engine, http.MethodGet, "/health", "", nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200 for health, got %d", status)
	}
}

func TestCORSPreflight(t *testing.T) {
	engine := setupTestEngine(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/auth/login", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	recorder := httptest.NewRecorder()

	engine.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for preflight, got %d", recorder.Code)
	}
	if recorder.Header().Get("Access-Control-Allow-Origin") != "http://localhost:5173" {
		t.Fatalf("unexpected allow-origin header: %s", recorder.Header().Get("Access-Control-Allow-Origin"))
	}
	if recorder.Header().Get("Access-Control-Max-Age") != "86400" {
		t.Fatalf("unexpected max-age header: %s", recorder.Header().Get("Access-Control-Max-Age"))
	}

	req = httptest.NewRequest(http.MethodOptions, "/api/auth/login", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	recorder = httptest.NewRecorder()
	engine.ServeHTTP(recorder, req)
	if got := recorder.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("expected no allow-origin for unknown origin, got %s", got)
	}
}

func setupTestEngine(t *testing.T) http.Handler {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close()
	})

	if err := db.RunMigrations(database, migrations.Server()); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	return router.Wire(database, "test-secret", 24*time.Hour, []string{"http://localhost:5173"})
}

func registerUser(t *testing.T, server http.Handler, email, password string) authResponse {
	t.Helper()
	status, body := requestJSON(t, server, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    email,
		"password": password,
	})
	if status != http.StatusCreated {
		t.Fatalf("register %s failed with status %d: %s", email, status, string(body))
	}
	var resp authResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("unmarshal register response: %v", err)
	}
	if resp.Token == "" {
		t.Fatalf("empty token for user %s", email)
	}
	return resp
}

func createSession(t *testing.T, server http.Handler, token string, body map[string]interface{}) sessionBody {
	t.Helper()
	status, raw := requestJSON(t, server, http.MethodPost, "/api/pomodoro/sessions", token, body)
	if status != http.StatusCreated {
		t.Fatalf("create session failed with status %d: %s", status, string(raw))
	}
	var resp sessionEnvelope
	if err := json.Unmarshal(raw, &resp); err != nil {
		t.Fatalf("unmarshal session response: %v", err)
	}
	return resp.Session
}

func listSessions(t *testing.T, server http.Handler, token, path string) []sessionBody {
	t.Helper()
	status, raw := requestJSON(t, server, http.MethodGet, path, token, nil)
	if status != http.StatusOK {
		t.Fatalf("list sessions failed with status %d: %s", status, string(raw))
	}
	var resp sessionsEnvelope
	if err := json.Unmarshal(raw, &resp); err != nil {
		t.Fatalf("unmarshal sessions response: %v", err)
	}
	return resp.Sessions
}

func requestJSON(
	t *testing.T,
	server http.Handler,
	method, path, token string,
	body interface{},
) (int, []byte) {
	t.Helper()

	var payload []byte
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		payload = raw
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	server.ServeHTTP(recorder, req)
	return recorder.Code, recorder.Body.Bytes()
}
