package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dreamlift/admin-gateway/internal/models"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var (
	ErrTransport     = errors.New("dreamlift: transport error")
	ErrUnauthorized  = errors.New("dreamlift: unauthorized")
	ErrInvalidPeriod = errors.New("dreamlift: invalid report period")
)

// ReportPeriods accepted by the financial report endpoint.
var ReportPeriods = []string{"week", "month", "quarter", "year"}

// APIError is a non-2xx reply, or a 2xx reply with success=false.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("dreamlift: %d: %s", e.Status, e.Message)
}

// Is lets errors.Is(err, ErrUnauthorized) match a 401 reply.
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

// TokenSource supplies the bearer token. Clear is called when the API answers 401.
type TokenSource interface {
	Token() string
	Clear()
}

// StaticToken is an in-memory TokenSource.
type StaticToken struct {
	mu  sync.RWMutex
	tok string
}

func NewStaticToken(tok string) *StaticToken {
	return &StaticToken{tok: tok}
}

func (s *StaticToken) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tok
}

func (s *StaticToken) Set(tok string) {
	s.mu.Lock()
	s.tok = tok
	s.mu.Unlock()
}

func (s *StaticToken) Clear() {
	s.Set("")
}

// DreamLiftClient talks to the DreamLift REST API.
type DreamLiftClient struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	tracer     trace.Tracer
	log        *zap.Logger
}

func NewDreamLiftClient(baseURL string, timeout time.Duration, tokens TokenSource, log *zap.Logger) *DreamLiftClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if tokens == nil {
		tokens = NewStaticToken("")
	}
	return &DreamLiftClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		tokens: tokens,
		tracer: otel.Tracer("github.com/dreamlift/admin-gateway/internal/services"),
		log:    log,
	}
}

// WithTokens returns a client sharing the connection pool but authenticating
// with tokens.
func (c *DreamLiftClient) WithTokens(tokens TokenSource) *DreamLiftClient {
	clone := *c
	clone.tokens = tokens
	return &clone
}

type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

func (e envelope) message() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

// --- Admin: campaigns ---

func (c *DreamLiftClient) ListCampaigns(ctx context.Context) ([]models.Campaign, error) {
	var out []models.Campaign
	if err := c.getList(ctx, "/api/admin/campaigns", "campaigns", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *DreamLiftClient) ListPendingCampaigns(ctx context.Context) ([]models.Campaign, error) {
	var out []models.Campaign
	if err := c.getList(ctx, "/api/admin/campaigns/pending", "campaigns", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *DreamLiftClient) ApproveCampaign(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodPut, "/api/admin/campaigns/"+url.PathEscape(id)+"/approve", nil, nil)
}

func (c *DreamLiftClient) RejectCampaign(ctx context.Context, id, reason string) error {
	body := map[string]string{"reason": reason}
	return c.doJSON(ctx, http.MethodPut, "/api/admin/campaigns/"+url.PathEscape(id)+"/reject", body, nil)
}

func (c *DreamLiftClient) UpdateCampaign(ctx context.Context, id string, upd models.CampaignUpdate) (*models.Campaign, error) {
	var out models.Campaign
	if err := c.doJSON(ctx, http.MethodPut, "/api/admin/campaigns/"+url.PathEscape(id), upd, &out); err != nil {
		return nil, err
	}
	if out.ID == "" {
		out.ID = id
	}
	return &out, nil
}

func (c *DreamLiftClient) DeleteCampaign(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/admin/campaigns/"+url.PathEscape(id), nil, nil)
}

// --- Admin: users ---

func (c *DreamLiftClient) ListUsers(ctx context.Context) ([]models.User, error) {
	var out []models.User
	if err := c.getList(ctx, "/api/admin/users", "users", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *DreamLiftClient) UpdateUserRole(ctx context.Context, id, role string) error {
	body := map[string]string{"role": role}
	return c.doJSON(ctx, http.MethodPut, "/api/admin/users/"+url.PathEscape(id)+"/role", body, nil)
}

func (c *DreamLiftClient) UpdateUserStatus(ctx context.Context, id string, active bool) error {
	body := map[string]bool{"is_active": active}
	return c.doJSON(ctx, http.MethodPut, "/api/admin/users/"+url.PathEscape(id)+"/status", body, nil)
}

// --- Admin: analytics & reports ---

func (c *DreamLiftClient) GetAnalytics(ctx context.Context) (*models.AnalyticsSnapshot, error) {
	var out models.AnalyticsSnapshot
	if err := c.doJSON(ctx, http.MethodGet, "/api/admin/analytics", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func IsValidPeriod(period string) bool {
	for _, p := range ReportPeriods {
		if p == period {
			return true
		}
	}
	return false
}

// DownloadFinancialReport streams the PDF report for period into w and
// returns the number of bytes written.
func (c *DreamLiftClient) DownloadFinancialReport(ctx context.Context, period string, w io.Writer) (int64, error) {
	if !IsValidPeriod(period) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPeriod, period)
	}

	path := "/api/admin/reports/financial?period=" + url.QueryEscape(period)
	ctx, span := c.startSpan(ctx, http.MethodGet, "/api/admin/reports/financial")
	defer span.End()

	resp, err := c.send(ctx, span, http.MethodGet, path, nil, "application/pdf")
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("%w: reading report: %w", ErrTransport, err)
	}
	span.SetAttributes(attribute.Int64("dreamlift.report.bytes", n))
	return n, nil
}

// --- Public ---

func (c *DreamLiftClient) GetCampaign(ctx context.Context, id string) (*models.Campaign, error) {
	var out models.Campaign
	if err := c.doJSON(ctx, http.MethodGet, "/api/campaigns/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- Auth ---

// Login exchanges credentials for a session. It does not store the token.
func (c *DreamLiftClient) Login(ctx context.Context, email, password string) (*models.Session, error) {
	body := map[string]string{"email": email, "password": password}
	raw, err := c.doRaw(ctx, http.MethodPost, "/api/auth/login", body)
	if err != nil {
		return nil, err
	}
	return decodeSession(raw)
}

// Me restores the session for the current token.
func (c *DreamLiftClient) Me(ctx context.Context) (*models.Session, error) {
	raw, err := c.doRaw(ctx, http.MethodGet, "/api/auth/me", nil)
	if err != nil {
		return nil, err
	}
	sess, err := decodeSession(raw)
	if err != nil {
		return nil, err
	}
	if sess.Token == "" {
		sess.Token = c.tokens.Token()
	}
	return sess, nil
}

// decodeSession reads the canonical {success, data:{token, user}} reply. The
// legacy flat {token, user} shape and a bare user under data are accepted too.
func decodeSession(raw []byte) (*models.Session, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("dreamlift: decoding session: %w", err)
	}
	if env.Success != nil && !*env.Success {
		msg := env.message()
		if msg == "" {
			msg = "session request failed"
		}
		return nil, &APIError{Status: http.StatusOK, Message: msg}
	}

	payload := raw
	if len(env.Data) > 0 && string(env.Data) != "null" {
		payload = env.Data
	}

	var sess struct {
		Token string       `json:"token"`
		User  *models.User `json:"user"`
		ID    string       `json:"id"`
	}
	if err := json.Unmarshal(payload, &sess); err != nil {
		return nil, fmt.Errorf("dreamlift: decoding session: %w", err)
	}

	out := &models.Session{Token: sess.Token}
	switch {
	case sess.User != nil:
		out.User = *sess.User
	case sess.ID != "":
		if err := json.Unmarshal(payload, &out.User); err != nil {
			return nil, fmt.Errorf("dreamlift: decoding session user: %w", err)
		}
	default:
		return nil, errors.New("dreamlift: session reply has no user")
	}
	return out, nil
}

// --- transport ---

// getList decodes data as a bare array, or as an object holding the array under key.
func (c *DreamLiftClient) getList(ctx context.Context, path, key string, out any) error {
	var data json.RawMessage
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &data); err != nil {
		return err
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if data[0] == '{' {
		var wrapped map[string]json.RawMessage
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return fmt.Errorf("dreamlift: decoding %s: %w", path, err)
		}
		data = wrapped[key]
		if len(data) == 0 {
			return nil
		}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("dreamlift: decoding %s: %w", path, err)
	}
	return nil
}

// doJSON sends body and decodes the envelope's data into out when out is non-nil.
func (c *DreamLiftClient) doJSON(ctx context.Context, method, path string, body, out any) error {
	raw, err := c.doRaw(ctx, method, path, body)
	if err != nil {
		return err
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("dreamlift: decoding %s %s: %w", method, path, err)
	}
	if env.Success != nil && !*env.Success {
		msg := env.message()
		if msg == "" {
			msg = "request failed"
		}
		return &APIError{Status: http.StatusOK, Message: msg}
	}
	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("dreamlift: decoding %s %s: %w", method, path, err)
	}
	return nil
}

// doRaw returns the body of a 2xx reply. Empty bodies come back as "{}".
func (c *DreamLiftClient) doRaw(ctx context.Context, method, path string, body any) ([]byte, error) {
	ctx, span := c.startSpan(ctx, method, routeOf(path))
	defer span.End()

	resp, err := c.send(ctx, span, method, path, body, "application/json")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s %s: %w", ErrTransport, method, path, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return []byte("{}"), nil
	}
	return raw, nil
}

// send performs the request and maps non-2xx replies to *APIError. The
// caller closes the body of the returned response.
func (c *DreamLiftClient) send(ctx context.Context, span trace.Span, method, path string, body any, accept string) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", accept)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.tokens.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport")
		c.log.Warn("dreamlift api unavailable",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %s %s: %w", ErrTransport, method, path, err)
	}
	span.SetAttributes(semconv.HTTPResponseStatusCode(resp.StatusCode))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()

	apiErr := &APIError{Status: resp.StatusCode, Message: errorMessage(resp)}
	span.SetStatus(codes.Error, apiErr.Message)

	if resp.StatusCode == http.StatusUnauthorized {
		c.tokens.Clear()
		c.log.Info("dreamlift api rejected token, session cleared", zap.String("path", path))
	} else {
		c.log.Debug("dreamlift api error",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", apiErr.Message),
		)
	}
	return nil, apiErr
}

func errorMessage(resp *http.Response) string {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && env.message() != "" {
		return env.message()
	}
	return fmt.Sprintf("request failed with status %d", resp.StatusCode)
}

func (c *DreamLiftClient) startSpan(ctx context.Context, method, route string) (context.Context, trace.Span) {
	return c.tracer.Start(ctx, "dreamlift "+method+" "+route,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			semconv.HTTPRequestMethodKey.String(method),
			semconv.HTTPRoute(route),
		),
	)
}

// routeOf drops the query string.
func routeOf(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		return path[:i]
	}
	return path
}
