package skport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/skport-checkin/internal/domain"
)

func newBootstrapServer(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	for path, handler := range handlers {
		mux.HandleFunc(path, handler)
	}
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func happyBootstrapHandlers(t *testing.T) map[string]http.HandlerFunc {
	t.Helper()

	return map[string]http.HandlerFunc{
		basicInfoPath: func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "token-abc", r.URL.Query().Get("token"))
			_, _ = w.Write([]byte(`{"status":0,"data":{"hgId":"hg-77"}}`))
		},
		oauthGrantPath: func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "token-abc", body["token"])
			assert.Equal(t, oauthAppCode, body["appCode"])
			assert.Equal(t, float64(0), body["type"])
			_, _ = w.Write([]byte(`{"status":0,"data":{"code":"one-time-code"}}`))
		},
		generateCredPath: func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "3", r.Header.Get("platform"))
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "one-time-code", body["code"])
			assert.Equal(t, float64(1), body["kind"])
			_, _ = w.Write([]byte(`{"code":0,"data":{"cred":"cred-1","token":"salt-1","userId":"user-9"}}`))
		},
	}
}

func TestBootstrapHappyPath(t *testing.T) {
	t.Parallel()

	server := newBootstrapServer(t, happyBootstrapHandlers(t))
	obtained := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)

	b := Bootstrapper{
		AuthBaseURL:  server.URL,
		ZonaiBaseURL: server.URL,
		HTTPClient:   server.Client(),
		Now:          func() time.Time { return obtained },
	}

	creds, err := b.Bootstrap(context.Background(), "token-abc")
	require.NoError(t, err)
	assert.Equal(t, "cred-1", creds.Cred)
	assert.Equal(t, "salt-1", creds.Salt)
	assert.Equal(t, "user-9", creds.UserID)
	assert.Equal(t, "hg-77", creds.HgID)
	assert.Equal(t, obtained, creds.ObtainedAt)
}

func TestBootstrapStepOneNonZeroStatus(t *testing.T) {
	t.Parallel()

	handlers := happyBootstrapHandlers(t)
	handlers[basicInfoPath] = func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":3,"msg":"token expired"}`))
	}
	server := newBootstrapServer(t, handlers)

	b := Bootstrapper{AuthBaseURL: server.URL, ZonaiBaseURL: server.URL, HTTPClient: server.Client()}

	_, err := b.Bootstrap(context.Background(), "token-abc")
	require.Error(t, err)

	var bootstrapErr *domain.BootstrapError
	require.ErrorAs(t, err, &bootstrapErr)
	assert.Equal(t, 1, bootstrapErr.Step)
	assert.Contains(t, err.Error(), "token expired")
}

func TestBootstrapStepTwoMissingCode(t *testing.T) {
	t.Parallel()

	handlers := happyBootstrapHandlers(t)
	handlers[oauthGrantPath] = func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":0,"data":{}}`))
	}
	server := newBootstrapServer(t, handlers)

	b := Bootstrapper{AuthBaseURL: server.URL, ZonaiBaseURL: server.URL, HTTPClient: server.Client()}

	_, err := b.Bootstrap(context.Background(), "token-abc")

	var bootstrapErr *domain.BootstrapError
	require.ErrorAs(t, err, &bootstrapErr)
	assert.Equal(t, 2, bootstrapErr.Step)
}

func TestBootstrapStepThreeNonZeroCode(t *testing.T) {
	t.Parallel()

	handlers := happyBootstrapHandlers(t)
	handlers[generateCredPath] = func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":10002,"message":"invalid code"}`))
	}
	server := newBootstrapServer(t, handlers)

	b := Bootstrapper{AuthBaseURL: server.URL, ZonaiBaseURL: server.URL, HTTPClient: server.Client()}

	_, err := b.Bootstrap(context.Background(), "token-abc")

	var bootstrapErr *domain.BootstrapError
	require.ErrorAs(t, err, &bootstrapErr)
	assert.Equal(t, 3, bootstrapErr.Step)
	assert.Contains(t, err.Error(), "invalid code")
}

func TestBootstrapNetworkErrorPropagatesWithoutRetry(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	serverURL := server.URL
	server.Close()

	b := Bootstrapper{AuthBaseURL: serverURL, ZonaiBaseURL: serverURL}

	_, err := b.Bootstrap(context.Background(), "token-abc")

	var bootstrapErr *domain.BootstrapError
	require.ErrorAs(t, err, &bootstrapErr)
	assert.Equal(t, 1, bootstrapErr.Step)
}
