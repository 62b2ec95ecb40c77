package cmd

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gardenrating/infra"
	"gardenrating/internal/airtable"
	"gardenrating/internal/rating"
	"gardenrating/internal/ws"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRecords struct {
	airtable.ClientAPI
}

func testContainer(token string, records airtable.ClientAPI) *infra.ContainerDI {
	logger := zap.NewNop()
	config := infra.Config{AirtableTableName: "Submissions", RateAPIToken: token}
	hub := ws.NewHub(logger)
	opts := rating.Options{Publisher: hub}
	if records != nil {
		opts.Records = records
	}
	service := rating.NewRatingService(rating.NewHTTPImageFetcher(0), config.AirtableTableName, opts, logger)
	return &infra.ContainerDI{
		Config:        config,
		Logger:        logger,
		Hub:           hub,
		WsHandler:     ws.NewWsHandler(hub, logger),
		ServiceRating: service,
		HandlerRating: rating.NewRatingHandler(service),
	}
}

func serve(t *testing.T, token string, method, path, body string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	return serveContainer(t, testContainer(token, nil), method, path, body, header)
}

func serveContainer(t *testing.T, container *infra.ContainerDI, method, path, body string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	e := NewRouter(container)
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRouterHealth(t *testing.T) {
	tests := []struct {
		name    string
		records airtable.ClientAPI
		want    string
	}{
		{"airtable configured", &fakeRecords{}, `{"status":"ok","table":"Submissions"}`},
		{"airtable missing", nil, `{"status":"missing_env","table":"Submissions"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serveContainer(t, testContainer("", tt.records), http.MethodGet, "/health", "", nil)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, tt.want, rec.Body.String())
		})
	}
}

func TestRouterMetrics(t *testing.T) {
	rec := serve(t, "", http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterRateRequiresToken(t *testing.T) {
	body := `{"record_id":"rec1"}`

	rec := serve(t, "s3cret", http.MethodPost, "/rate", body, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Past auth the body fails validation, which shows the token was accepted.
	rec = serve(t, "s3cret", http.MethodPost, "/rate", body, http.Header{"Authorization": {"Bearer s3cret"}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestRouterHistoryDisabled(t *testing.T) {
	rec := serve(t, "", http.MethodGet, "/ratings/rec1", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRouterWebhookNeedsAirtable(t *testing.T) {
	rec := serve(t, "", http.MethodPost, "/webhooks/record-created", `{"recordId":"rec1"}`, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func clearAirtableEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("AIRTABLE_API_KEY", "")
	t.Setenv("AIRTABLE_BASE_ID", "")
}

func TestTriggerCmdWithoutAirtable(t *testing.T) {
	clearAirtableEnv(t)

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"trigger", "recAAAAAAAAAAAAAA"})

	err := root.ExecuteContext(t.Context())
	require.ErrorIs(t, err, infra.ErrAirtableNotConfigured)
	assert.Empty(t, out.String())
}

func TestTriggerCmdNeedsRecordID(t *testing.T) {
	clearAirtableEnv(t)

	root := NewRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"trigger"})
	assert.Error(t, root.ExecuteContext(t.Context()))
}

func TestPollerCmdWithoutAirtable(t *testing.T) {
	clearAirtableEnv(t)

	root := NewRootCmd()
	root.SetArgs([]string{"poller", "--log-level", "error"})
	assert.ErrorIs(t, root.ExecuteContext(t.Context()), infra.ErrAirtableNotConfigured)
}

func TestInvalidLogLevel(t *testing.T) {
	clearAirtableEnv(t)

	root := NewRootCmd()
	root.SetArgs([]string{"poller", "--log-level", "loud"})
	assert.ErrorContains(t, root.ExecuteContext(t.Context()), "invalid LOG_LEVEL")
}
