// Package scoring posts photo rating requests to the /rate endpoint.
package scoring

import (
	"context"
	"fmt"
	"time"

	"gardenrating/internal/airtable"

	"github.com/go-resty/resty/v2"
)

const DefaultTimeout = 60 * time.Second

type ClientAPI interface {
	Rate(ctx context.Context, payload Payload) (Response, error)
}

// Payload is the body sent to the rating endpoint. SchoolName is serialised
// as null when unset.
type Payload struct {
	RecordID   string  `json:"record_id"`
	PhotoURL   string  `json:"photo_url"`
	SchoolName *string `json:"school_name"`
}

type Response struct {
	StatusCode int
	Body       string
}

type Client struct {
	http *resty.Client
	url  string
}

var _ ClientAPI = (*Client)(nil)

// NewClient builds a client for the endpoint at url. A non-empty token is
// sent as a bearer token.
func NewClient(url, token string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	client := resty.New().SetTimeout(timeout)
	if token != "" {
		client.SetAuthToken(token)
	}
	return &Client{http: client, url: url}
}

// Rate sends one request. Non-2xx responses are not errors: the caller gets
// the status and body text as returned by the endpoint.
func (c *Client) Rate(ctx context.Context, payload Payload) (Response, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(c.url)
	if err != nil {
		return Response{}, fmt.Errorf("post %s: %w", c.url, err)
	}
	return Response{StatusCode: resp.StatusCode(), Body: string(resp.Body())}, nil
}

// PayloadFromRecord builds the request for a record. ok is false when the
// record has no attachment to rate.
func PayloadFromRecord(record airtable.Record, attachmentField, schoolNameField string) (Payload, bool) {
	attachments := record.Attachments(attachmentField)
	if len(attachments) == 0 {
		return Payload{}, false
	}

	payload := Payload{
		RecordID: record.ID,
		PhotoURL: attachments[0].URL,
	}
	if school := record.CellString(schoolNameField); school != "" {
		payload.SchoolName = &school
	}
	return payload, true
}
