package airtable

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	BaseURL               = "https://api.airtable.com/v0"
	DefaultTimeout        = 20 * time.Second
	DefaultPageSize       = 25
	DefaultMaxRetries     = 3
	DefaultInitialBackoff = 500 * time.Millisecond
	DefaultMaxBackoff     = 10 * time.Second

	ProcessedField = "Processed?"
)

var ErrRecordNotFound = errors.New("record not found")

// ClientAPI is the subset of the Airtable REST API the service relies on.
type ClientAPI interface {
	GetRecord(ctx context.Context, id string) (Record, error)
	ListUnprocessed(ctx context.Context, opts ListOptions) ([]Record, error)
	UpdateRecord(ctx context.Context, id string, fields map[string]any) (Record, error)
}

type Config struct {
	APIKey          string
	BaseID          string
	TableName       string
	AttachmentField string
	// Optional overrides, mostly for tests.
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

type Client struct {
	http   *resty.Client
	config Config
}

var _ ClientAPI = (*Client)(nil)

func NewClient(config Config, logger *zap.Logger) *Client {
	if config.BaseURL == "" {
		config.BaseURL = BaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = DefaultMaxRetries
	}
	if config.InitialBackoff == 0 {
		config.InitialBackoff = DefaultInitialBackoff
	}
	if config.MaxBackoff == 0 {
		config.MaxBackoff = DefaultMaxBackoff
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client := resty.New().
		SetBaseURL(config.BaseURL).
		SetTimeout(config.Timeout).
		SetAuthToken(config.APIKey).
		SetHeader("Accept", "application/json").
		SetRetryCount(config.MaxRetries).
		SetRetryWaitTime(config.InitialBackoff).
		SetRetryMaxWaitTime(config.MaxBackoff).
		AddRetryCondition(shouldRetry).
		SetLogger(logger.Sugar())

	return &Client{http: client, config: config}
}

// shouldRetry retries rate limiting, server errors and transport failures.
// Client errors are final.
func shouldRetry(resp *resty.Response, err error) bool {
	if err != nil {
		return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
	}
	if resp == nil {
		return false
	}
	code := resp.StatusCode()
	return code == http.StatusTooManyRequests || (code >= 500 && code < 600)
}

func (c *Client) request(ctx context.Context) *resty.Request {
	return c.http.R().
		SetContext(ctx).
		SetPathParam("base", c.config.BaseID).
		SetPathParam("table", c.config.TableName)
}

func (c *Client) GetRecord(ctx context.Context, id string) (Record, error) {
	if id == "" {
		return Record{}, ErrRecordNotFound
	}

	resp, err := c.request(ctx).
		SetPathParam("id", id).
		Get("/{base}/{table}/{id}")
	if err != nil {
		return Record{}, fmt.Errorf("get record %s: %w", id, err)
	}
	if resp.StatusCode() == http.StatusNotFound && isRecordNotFound(resp.Body()) {
		return Record{}, ErrRecordNotFound
	}
	if err := statusError(resp); err != nil {
		return Record{}, err
	}

	var record Record
	if err := json.Unmarshal(resp.Body(), &record); err != nil {
		return Record{}, fmt.Errorf("decode record %s: %w", id, err)
	}
	return record, nil
}

// ListUnprocessed returns one page of records that are not yet marked as
// processed and carry at least one attachment.
func (c *Client) ListUnprocessed(ctx context.Context, opts ListOptions) ([]Record, error) {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	req := c.request(ctx).
		SetQueryParam("pageSize", strconv.Itoa(pageSize)).
		SetQueryParam("filterByFormula", UnprocessedFormula(c.config.AttachmentField))
	if opts.View != "" {
		req.SetQueryParam("view", opts.View)
	}

	resp, err := req.Get("/{base}/{table}")
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	if err := statusError(resp); err != nil {
		return nil, err
	}

	var page listResponse
	if err := json.Unmarshal(resp.Body(), &page); err != nil {
		return nil, fmt.Errorf("decode record list: %w", err)
	}
	return page.Records, nil
}

func (c *Client) UpdateRecord(ctx context.Context, id string, fields map[string]any) (Record, error) {
	resp, err := c.request(ctx).
		SetPathParam("id", id).
		SetHeader("Content-Type", "application/json").
		SetBody(updateRequest{Fields: fields}).
		Patch("/{base}/{table}/{id}")
	if err != nil {
		return Record{}, fmt.Errorf("update record %s: %w", id, err)
	}
	if err := statusError(resp); err != nil {
		return Record{}, err
	}

	var record Record
	if err := json.Unmarshal(resp.Body(), &record); err != nil {
		return Record{}, fmt.Errorf("decode record %s: %w", id, err)
	}
	return record, nil
}

func UnprocessedFormula(attachmentField string) string {
	return fmt.Sprintf("AND(NOT({%s}), ARRAY_LENGTH({%s}) > 0)", ProcessedField, attachmentField)
}

// isRecordNotFound tells a missing record apart from other 404s such as an
// unknown base or table, which are configuration errors.
func isRecordNotFound(body []byte) bool {
	var payload struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return false
	}

	var code string
	if err := json.Unmarshal(payload.Error, &code); err != nil {
		var detail struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(payload.Error, &detail); err != nil {
			return false
		}
		code = detail.Type
	}
	switch code {
	case "NOT_FOUND", "MODEL_ID_NOT_FOUND":
		return true
	}
	return false
}

func statusError(resp *resty.Response) error {
	if resp.StatusCode() >= 300 {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode(), string(resp.Body()))
	}
	return nil
}
