package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/chatbridge/go-wa-gateway/internal/config"
	gwerrors "github.com/chatbridge/go-wa-gateway/internal/errors"
	"github.com/chatbridge/go-wa-gateway/messaging"
	"github.com/chatbridge/go-wa-gateway/pairing"
	"github.com/chatbridge/go-wa-gateway/server"
	"github.com/chatbridge/go-wa-gateway/sessions"
)

const testAPIKey = "test-api-key"

// fakeSessionService is a scriptable server.SessionService.
type fakeSessionService struct {
	mu sync.Mutex

	createResult pairing.Result
	createErr    error
	sendErr      error
	teardownErr  error

	createdID      string
	createdWebhook string
	sentID         string
	sentTo         string
	sentText       string
	tornDownID     string
}

func (f *fakeSessionService) CreateSession(_ context.Context, id, webhookURL string) (pairing.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createdID = id
	f.createdWebhook = webhookURL
	return f.createResult, f.createErr
}

func (f *fakeSessionService) SendText(_ context.Context, id, to, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sentID, f.sentTo, f.sentText = id, to, text
	return f.sendErr
}

func (f *fakeSessionService) Teardown(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tornDownID = id
	return f.teardownErr
}

type testFixture struct {
	service  *fakeSessionService
	registry *sessions.InMemoryRegistry
	server   *server.Server
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()
	t.Setenv("API_KEY", testAPIKey)
	t.Setenv("ENV", "production") // keep route banners out of test output

	f := &testFixture{
		service:  &fakeSessionService{},
		registry: sessions.NewInMemoryRegistry(),
	}
	f.server = server.New(config.New(), f.service, f.registry, zerolog.Nop())
	return f
}

func (f *testFixture) do(t *testing.T, method, target, body string, decorate ...func(*http.Request)) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", testAPIKey)
	for _, d := range decorate {
		d(req)
	}

	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)

	var payload map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	}
	return rec, payload
}

func TestCreateSessionReturnsPairingCode(t *testing.T) {
	f := setupTestFixture(t)
	f.service.createResult = pairing.Result{Code: "2@pairing-code"}

	rec, payload := f.do(t, http.MethodPost, server.RouteCreateSession,
		`{"sessionId":"s1","webhookUrl":"http://hooks.example/wh"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, payload["success"])
	require.Equal(t, "2@pairing-code", payload["pairingCode"])
	require.True(t, strings.HasPrefix(payload["qrImage"].(string), "data:image/png;base64,"))

	require.Equal(t, "s1", f.service.createdID)
	require.Equal(t, "http://hooks.example/wh", f.service.createdWebhook)
}

func TestCreateSessionAlreadyConnected(t *testing.T) {
	f := setupTestFixture(t)
	f.service.createResult = pairing.Result{
		Connected: true,
		Identity:  messaging.Identity{Address: "15551234567@s.whatsapp.net"},
	}

	rec, payload := f.do(t, http.MethodPost, server.RouteCreateSession, `{"sessionId":"s1"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, payload["connected"])
	require.Equal(t, "15551234567", payload["phoneNumber"])
	require.NotContains(t, payload, "pairingCode")
}

func TestCreateSessionTimeout(t *testing.T) {
	f := setupTestFixture(t)
	f.service.createErr = gwerrors.ErrPairingTimeout

	rec, payload := f.do(t, http.MethodPost, server.RouteCreateSession, `{"sessionId":"s1"}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, false, payload["success"])
	require.Equal(t, "timeout", payload["error"])
}

func TestCreateSessionValidationErrors(t *testing.T) {
	f := setupTestFixture(t)

	f.service.createErr = gwerrors.ErrInvalidSessionID
	rec, _ := f.do(t, http.MethodPost, server.RouteCreateSession, `{"sessionId":"bad id"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	f.service.createErr = gwerrors.ErrInvalidWebhookURL
	rec, _ = f.do(t, http.MethodPost, server.RouteCreateSession, `{"sessionId":"s1","webhookUrl":"nope"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateSessionInvalidBody(t *testing.T) {
	f := setupTestFixture(t)

	rec, payload := f.do(t, http.MethodPost, server.RouteCreateSession, `{"sessionId":`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "invalid request body", payload["error"])
}

func TestGenerateQRAlias(t *testing.T) {
	f := setupTestFixture(t)
	f.service.createResult = pairing.Result{Code: "2@pairing-code"}

	rec, payload := f.do(t, http.MethodPost, server.RouteGenerateQR, `{"sessionId":"s1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "2@pairing-code", payload["pairingCode"])
}

func TestSendMessage(t *testing.T) {
	f := setupTestFixture(t)

	rec, payload := f.do(t, http.MethodPost, server.RouteSendMessage,
		`{"sessionId":"s1","to":"15551234567","message":"hello"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, payload["success"])
	require.Equal(t, "s1", f.service.sentID)
	require.Equal(t, "15551234567", f.service.sentTo)
	require.Equal(t, "hello", f.service.sentText)
}

func TestSendMessageMissingFields(t *testing.T) {
	f := setupTestFixture(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "missing to", body: `{"sessionId":"s1","message":"hello"}`},
		{name: "missing message", body: `{"sessionId":"s1","to":"15551234567"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := f.do(t, http.MethodPost, server.RouteSendMessage, tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestSendMessageErrorMapping(t *testing.T) {
	f := setupTestFixture(t)

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "unknown session", err: gwerrors.ErrSessionNotFound, wantStatus: http.StatusNotFound},
		{name: "not connected", err: gwerrors.ErrSessionNotConnected, wantStatus: http.StatusConflict},
		{name: "delegate failure", err: errors.New("rate limited by network"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f.service.sendErr = tt.err
			rec, payload := f.do(t, http.MethodPost, server.RouteSendMessage,
				`{"sessionId":"s1","to":"15551234567","message":"hello"}`)
			require.Equal(t, tt.wantStatus, rec.Code)
			require.Equal(t, tt.err.Error(), payload["error"])
		})
	}
}

func TestDeleteSessionUsesPathParam(t *testing.T) {
	f := setupTestFixture(t)

	rec, payload := f.do(t, http.MethodDelete, "/sessions/tenant-a", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, payload["success"])
	require.Equal(t, "tenant-a", f.service.tornDownID)
}

func TestDisconnectAliasUsesBody(t *testing.T) {
	f := setupTestFixture(t)

	rec, payload := f.do(t, http.MethodPost, server.RouteDisconnect, `{"sessionId":"tenant-b"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, payload["success"])
	require.Equal(t, "tenant-b", f.service.tornDownID)
}

func TestTeardownFailureSurfaces(t *testing.T) {
	f := setupTestFixture(t)
	f.service.teardownErr = errors.New("store unavailable")

	rec, payload := f.do(t, http.MethodDelete, "/sessions/s1", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "store unavailable", payload["error"])
}

func TestHealthIsUnauthenticated(t *testing.T) {
	f := setupTestFixture(t)
	f.registry.Put("s1", sessions.New("s1", ""))
	f.registry.Put("s2", sessions.New("s2", ""))

	req := httptest.NewRequest(http.MethodGet, server.RouteHealth, nil)
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Equal(t, "ok", payload["status"])
	require.Equal(t, float64(2), payload["sessions"])
}

func TestAPIKeyRequired(t *testing.T) {
	f := setupTestFixture(t)

	tests := []struct {
		name       string
		decorate   func(*http.Request)
		wantStatus int
	}{
		{
			name:       "missing key",
			decorate:   func(r *http.Request) { r.Header.Del("X-API-Key") },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong key",
			decorate:   func(r *http.Request) { r.Header.Set("X-API-Key", "wrong") },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "bearer token accepted",
			decorate: func(r *http.Request) {
				r.Header.Del("X-API-Key")
				r.Header.Set("Authorization", "Bearer "+testAPIKey)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "bearer scheme is case-insensitive",
			decorate: func(r *http.Request) {
				r.Header.Del("X-API-Key")
				r.Header.Set("Authorization", "bearer "+testAPIKey)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "wrong bearer token",
			decorate: func(r *http.Request) {
				r.Header.Del("X-API-Key")
				r.Header.Set("Authorization", "Bearer wrong")
			},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := f.do(t, http.MethodPost, server.RouteSendMessage,
				`{"sessionId":"s1","to":"15551234567","message":"hello"}`, tt.decorate)
			require.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestAPIKeyHashTakesPrecedence(t *testing.T) {
	t.Setenv("API_KEY", "unused-plaintext")
	// bcrypt hash of "hashed-secret", cost 10.
	t.Setenv("API_KEY_HASH", "$2a$10$N9qo8uLOickgx2ZMRZoMye1VdLSrtIvRJVCYE1pnX9lx0Wk/uFOKq")
	t.Setenv("ENV", "production")

	f := &testFixture{
		service:  &fakeSessionService{},
		registry: sessions.NewInMemoryRegistry(),
	}
	f.server = server.New(config.New(), f.service, f.registry, zerolog.Nop())

	rec, _ := f.do(t, http.MethodPost, server.RouteSendMessage,
		`{"sessionId":"s1","to":"15551234567","message":"hello"}`,
		func(r *http.Request) { r.Header.Set("X-API-Key", "unused-plaintext") })
	require.Equal(t, http.StatusUnauthorized, rec.Code, "plaintext key is ignored once a hash is configured")
}

func TestCreateSessionHonoursRequestTimeout(t *testing.T) {
	f := setupTestFixture(t)
	f.service.createErr = gwerrors.Wrapf(context.DeadlineExceeded, "pairing wait")

	start := time.Now()
	rec, _ := f.do(t, http.MethodPost, server.RouteCreateSession, `{"sessionId":"s1"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Less(t, time.Since(start), time.Second)
}
