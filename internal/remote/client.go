package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mmcdole/roster/internal/domain"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "Roster/1.0"
	acceptJSON     = "application/json;odata=nometadata"
	maxErrorBody   = 512
)

// recorder receives one observation per remote call (consumer-defined interface)
type recorder interface {
	ObserveRemote(op, outcome string, elapsed time.Duration)
}

// Client implements domain.CollectionClient for a SharePoint-style list REST API
type Client struct {
	siteURL    string
	token      string
	httpClient *http.Client
	timeout    time.Duration
	recorder   recorder
	logger     *slog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default traced HTTP client. The client is used
// as given; WithTimeout does not modify it.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRecorder reports call outcomes and latency
func WithRecorder(r recorder) Option {
	return func(c *Client) { c.recorder = r }
}

// WithTimeout sets the per-request timeout of the default HTTP client
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// NewClient creates a new list service client
func NewClient(siteURL, token string, logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		siteURL: strings.TrimRight(siteURL, "/"),
		token:   token,
		timeout: defaultTimeout,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{
			Timeout:   c.timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	return c
}

// listPath returns the endpoint of a list, addressed by title
func listPath(collection string) string {
	title := strings.ReplaceAll(collection, "'", "''")
	return fmt.Sprintf("/_api/web/lists/getbytitle('%s')", url.PathEscape(title))
}

func itemsPath(collection string) string {
	return listPath(collection) + "/items"
}

func itemPath(collection string, id int) string {
	return fmt.Sprintf("%s(%d)", itemsPath(collection), id)
}

// doRequest performs an authenticated request and maps failures to domain errors
func (c *Client) doRequest(
	ctx context.Context,
	op, method, path string,
	query url.Values,
	body any,
	header http.Header,
) (data []byte, err error) {
	start := time.Now()
	defer func() {
		if c.recorder != nil {
			outcome := "success"
			if err != nil {
				outcome = "failure"
			}
			c.recorder.ObserveRemote(op, outcome, time.Since(start))
		}
	}()

	reqURL := c.siteURL + path
	if len(query) > 0 {
		reqURL = reqURL + "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s payload: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", acceptJSON)
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("client-request-id", requestID)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if body != nil {
		req.Header.Set("Content-Type", acceptJSON)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	c.logger.Debug("list request", "op", op, "method", method, "url", reqURL, "requestID", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%s: %w: %w", op, domain.ErrRemoteOperation, ctx.Err())
		}
		c.logger.Error("list request failed", "op", op, "error", err, "requestID", requestID)
		return nil, fmt.Errorf("%s: %w", op, domain.ErrServerOffline)
	}
	defer resp.Body.Close()

	data, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read response: %w: %w", op, domain.ErrRemoteOperation, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%s: %w", op, domain.ErrUnauthorized)
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		c.logger.Error("list request error", "op", op, "status", resp.StatusCode, "requestID", requestID)
		return nil, &domain.RemoteError{Op: op, Status: resp.StatusCode, Body: errorMessage(data)}
	}

	return data, nil
}

// errorMessage extracts a readable message from an error body
func errorMessage(body []byte) string {
	var er errorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.Error.Message.Value != "" {
		return er.Error.Message.Value
	}
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	return strings.TrimSpace(string(body))
}

func unmarshal(data []byte, dest any) error {
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// Get reads a whole collection or a single item and returns the raw payload
func (c *Client) Get(ctx context.Context, q domain.Query) ([]byte, error) {
	query := url.Values{}
	if len(q.Select) > 0 {
		query.Set("$select", strings.Join(q.Select, ","))
	}
	if len(q.Expand) > 0 {
		query.Set("$expand", strings.Join(q.Expand, ","))
	}
	if q.Filter != "" && q.IsList() {
		query.Set("$filter", q.Filter)
	}

	path := itemsPath(q.Collection)
	if !q.IsList() {
		path = itemPath(q.Collection, q.ID)
	}
	return c.doRequest(ctx, "get", http.MethodGet, path, query, nil, nil)
}

// Create adds an item to the collection and returns it with its assigned id
func (c *Client) Create(ctx context.Context, collection string, fields domain.Fields) (*domain.Item, error) {
	body, err := c.doRequest(ctx, "create", http.MethodPost, itemsPath(collection), nil, fields, nil)
	if err != nil {
		return nil, err
	}

	var item domain.Item
	if err := unmarshal(body, &item); err != nil {
		return nil, fmt.Errorf("create: %w: %w", domain.ErrRemoteOperation, err)
	}
	if item.ID <= 0 {
		return nil, fmt.Errorf("create: %w: response carries no id", domain.ErrRemoteOperation)
	}

	c.logger.Debug("created item", "collection", collection, "id", item.ID)
	return &item, nil
}

// Update merges fields into an existing item (last writer wins, no etag check)
func (c *Client) Update(ctx context.Context, collection string, id int, fields domain.Fields) error {
	header := http.Header{}
	header.Set("X-HTTP-Method", "MERGE")
	header.Set("IF-MATCH", "*")

	_, err := c.doRequest(ctx, "update", http.MethodPost, itemPath(collection, id), nil, fields, header)
	return err
}

// Delete removes an item from the collection
func (c *Client) Delete(ctx context.Context, collection string, id int) error {
	header := http.Header{}
	header.Set("X-HTTP-Method", "DELETE")
	header.Set("IF-MATCH", "*")

	_, err := c.doRequest(ctx, "delete", http.MethodPost, itemPath(collection, id), nil, nil, header)
	return err
}

// Ping checks that the list exists and the token is accepted
func (c *Client) Ping(ctx context.Context, collection string) error {
	query := url.Values{}
	query.Set("$select", "Title,ItemCount")
	_, err := c.doRequest(ctx, "ping", http.MethodGet, listPath(collection), query, nil, nil)
	return err
}

// ParseID converts a command-line or UI id into a record id
func ParseID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", domain.ErrInvalidID, s)
	}
	return id, nil
}
