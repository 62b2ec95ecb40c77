package scoring

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gardenrating/internal/airtable"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRatePostsJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/rate", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Empty(t, r.Header.Get("Authorization"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"record_id":"rec1","photo_url":"https://cdn.example/a.jpg","school_name":null}`, string(body))

		_, _ = io.WriteString(w, `{"record_id":"rec1","health_score":3.5}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL+"/rate", "", time.Second)
	resp, err := client.Rate(t.Context(), Payload{RecordID: "rec1", PhotoURL: "https://cdn.example/a.jpg"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `{"record_id":"rec1","health_score":3.5}`, resp.Body)
}

func TestRateReturnsErrorBodiesVerbatim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer s3cret", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"detail":"failed to download image: HTTP 404"}`)
	}))
	defer srv.Close()

	school := "Hillside"
	client := NewClient(srv.URL, "s3cret", time.Second)
	resp, err := client.Rate(t.Context(), Payload{RecordID: "rec1", PhotoURL: "https://x", SchoolName: &school})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, resp.Body, "failed to download image")
}

func TestRateKeepsWhitespace(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "  ok body\n\n")
	}))
	defer srv.Close()

	resp, err := NewClient(srv.URL, "", time.Second).Rate(t.Context(), Payload{RecordID: "rec1", PhotoURL: "https://x"})
	require.NoError(t, err)
	assert.Equal(t, "  ok body\n\n", resp.Body)
}

func TestRateTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, "", time.Second).Rate(t.Context(), Payload{RecordID: "rec1"})
	assert.Error(t, err)
}

func TestPayloadFromRecord(t *testing.T) {
	record := airtable.Record{
		ID: "rec7",
		Fields: map[string]any{
			"Photos": []any{
				map[string]any{"url": "https://cdn.example/first.jpg"},
				map[string]any{"url": "https://cdn.example/second.jpg"},
			},
			"School Name": "Riverbank Primary",
		},
	}

	payload, ok := PayloadFromRecord(record, "Photos", "School Name")
	require.True(t, ok)
	assert.Equal(t, "rec7", payload.RecordID)
	assert.Equal(t, "https://cdn.example/first.jpg", payload.PhotoURL)
	require.NotNil(t, payload.SchoolName)
	assert.Equal(t, "Riverbank Primary", *payload.SchoolName)
}

func TestPayloadFromRecordWithoutSchool(t *testing.T) {
	record := airtable.Record{ID: "rec8", Fields: map[string]any{
		"Photos":      []any{map[string]any{"url": "https://cdn.example/a.jpg"}},
		"School Name": "",
	}}

	payload, ok := PayloadFromRecord(record, "Photos", "School Name")
	require.True(t, ok)
	assert.Nil(t, payload.SchoolName)
}

func TestPayloadFromRecordWithoutAttachments(t *testing.T) {
	_, ok := PayloadFromRecord(airtable.Record{ID: "rec9", Fields: map[string]any{}}, "Photos", "School Name")
	assert.False(t, ok)
}
