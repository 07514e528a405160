package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/dreamlift/admin-gateway/internal/config"
	"github.com/dreamlift/admin-gateway/internal/models"
	"github.com/dreamlift/admin-gateway/internal/services"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

const validToken = "tok-1"

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(call string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, call)
}

func (l *callLog) list() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

// fakeDreamLift serves just enough of the admin API for the CLI.
func fakeDreamLift(t *testing.T) (*httptest.Server, *callLog) {
	t.Helper()
	calls := &callLog{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.add(r.Method + " " + r.URL.Path)

		if r.URL.Path == "/api/auth/login" {
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{
				"token": validToken,
				"user":  map[string]any{"id": "a1", "name": "Rina", "email": "rina@dreamlift.test", "role": "admin"},
			}})
			return
		}
		if r.Header.Get("Authorization") != "Bearer "+validToken {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Token expired"})
			return
		}

		switch r.URL.Path {
		case "/api/admin/campaigns":
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": []map[string]any{
				{"id": "c1", "title": "Clean water", "status": "pending", "goal_amount": 1000,
					"description": "<p>Wells for <b>three</b> villages</p>"},
				{"id": "c2", "title": "Library", "status": "active", "goal_amount": 500, "current_amount": 250},
			}})
		case "/api/admin/users":
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": []map[string]any{
				{"id": "u1", "email": "donor@dreamlift.test", "role": "user", "is_active": true},
			}})
		case "/api/admin/analytics":
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{
				"total_campaigns": 2, "pending_approvals": 1, "active_campaigns": 1,
			}})
		case "/api/admin/reports/financial":
			w.Header().Set("Content-Type", "application/pdf")
			_, _ = w.Write([]byte("%PDF-1.7"))
		default:
			writeJSON(w, http.StatusOK, map[string]any{"success": true})
		}
	}))
	t.Cleanup(srv.Close)
	return srv, calls
}

type harness struct {
	cfgPath string
	calls   *callLog
}

func newHarness(t *testing.T, token string) *harness {
	t.Helper()
	srv, calls := fakeDreamLift(t)
	t.Setenv("DREAMLIFT_API_URL", srv.URL)
	t.Setenv("DREAMLIFT_TOKEN", "")
	t.Setenv("DREAMLIFT_TIMEOUT", "")
	t.Setenv("DREAMLIFT_PASSWORD", "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := config.DefaultCLIConfig()
	cfg.Token = token
	require.NoError(t, config.SaveCLI(path, &cfg))
	return &harness{cfgPath: path, calls: calls}
}

func (h *harness) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(append([]string{"--config", h.cfgPath}, args...), &out, strings.NewReader(stdin), func(int) {})
	return out.String(), err
}

func (h *harness) stored(t *testing.T) *config.CLIConfig {
	t.Helper()
	cfg, err := config.LoadCLI(h.cfgPath)
	require.NoError(t, err)
	return cfg
}

func TestNoCommandIsAnError(t *testing.T) {
	var out bytes.Buffer
	err := run(nil, &out, strings.NewReader(""), func(int) {})
	assert.Error(t, err)
}

func TestRoleRejectsUnknownRole(t *testing.T) {
	h := newHarness(t, validToken)
	_, err := h.run(t, "", "role", "u1", "superuser")
	assert.Error(t, err)
	assert.Empty(t, h.calls.list())
}

func TestLoginStoresToken(t *testing.T) {
	h := newHarness(t, "")

	out, err := h.run(t, "hunter22\n", "login", "--email", "rina@dreamlift.test")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in as Rina <rina@dreamlift.test>")

	cfg := h.stored(t)
	assert.Equal(t, validToken, cfg.Token)
	assert.Equal(t, "rina@dreamlift.test", cfg.Email)

	info, err := os.Stat(h.cfgPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestPendingShowsExcerpts(t *testing.T) {
	h := newHarness(t, validToken)

	out, err := h.run(t, "", "pending")
	require.NoError(t, err)
	assert.Contains(t, out, "c1")
	assert.Contains(t, out, "Wells for three villages")
	assert.NotContains(t, out, "Library")
}

func TestDashboard(t *testing.T) {
	h := newHarness(t, validToken)

	out, err := h.run(t, "", "dashboard", "--refresh")
	require.NoError(t, err)
	assert.Contains(t, out, "Cache fresh")
	assert.Contains(t, out, "Awaiting review (1)")
	assert.Contains(t, out, "donor@dreamlift.test")
}

func TestModerationCommands(t *testing.T) {
	h := newHarness(t, validToken)

	out, err := h.run(t, "", "approve", "c1")
	require.NoError(t, err)
	assert.Contains(t, out, "approved campaign c1")

	_, err = h.run(t, "", "reject", "c3", "--reason", "Missing documents")
	require.NoError(t, err)

	_, err = h.run(t, "", "reject", "c3", "--reason", "   ")
	assert.Error(t, err)

	_, err = h.run(t, "", "role", "u1", "creator")
	require.NoError(t, err)

	out, err = h.run(t, "", "deactivate", "u1")
	require.NoError(t, err)
	assert.Contains(t, out, "User u1 deactivated")

	assert.Contains(t, h.calls.list(), "PUT /api/admin/campaigns/c1/approve")
	assert.Contains(t, h.calls.list(), "PUT /api/admin/campaigns/c3/reject")
	assert.Contains(t, h.calls.list(), "PUT /api/admin/users/u1/role")
	assert.Contains(t, h.calls.list(), "PUT /api/admin/users/u1/status")
}

func TestDeleteAsksForConfirmation(t *testing.T) {
	h := newHarness(t, validToken)

	out, err := h.run(t, "n\n", "delete", "c2")
	require.NoError(t, err)
	assert.Contains(t, out, "Aborted")
	assert.NotContains(t, h.calls.list(), "DELETE /api/admin/campaigns/c2")

	_, err = h.run(t, "", "delete", "c2", "--yes")
	require.NoError(t, err)
	assert.Contains(t, h.calls.list(), "DELETE /api/admin/campaigns/c2")
}

func TestReportWritesFile(t *testing.T) {
	h := newHarness(t, validToken)
	dest := filepath.Join(t.TempDir(), "q.pdf")

	_, err := h.run(t, "", "report", "--period", "quarter", "-o", dest)
	require.NoError(t, err)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7", string(data))
}

func TestUnauthorizedClearsStoredToken(t *testing.T) {
	h := newHarness(t, "stale-token")

	_, err := h.run(t, "", "pending")
	require.Error(t, err)
	assert.ErrorIs(t, err, services.ErrUnauthorized)
	assert.Contains(t, err.Error(), "dreamliftctl login")

	assert.Empty(t, h.stored(t).Token)
}

func TestRenderCampaigns(t *testing.T) {
	var buf bytes.Buffer
	renderCampaigns(&buf, []models.Campaign{{
		ID:            "c9",
		Title:         "School roof",
		Status:        models.CampaignStatusPending,
		GoalAmount:    2000,
		CurrentAmount: 500,
		Description:   "<h2>Why</h2><p>The roof leaks every " + strings.Repeat("monsoon ", 20) + "</p>",
	}}, 30)

	out := buf.String()
	assert.Contains(t, out, "500/2000 (25%)")
	assert.Contains(t, out, "Why The roof leaks")
	assert.Contains(t, out, "…")
}
