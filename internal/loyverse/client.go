// Package loyverse fetches receipts, items and categories from the Loyverse
// API, one bounded page at a time.
package loyverse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	applog "possales/internal/log"
)

const (
	// DefaultBaseURL is the public Loyverse API root.
	DefaultBaseURL = "https://api.loyverse.com/v1.0"
	// MaxPageLimit is the largest page size the API accepts.
	MaxPageLimit = 250

	maxBodyBytes = 32 << 20
)

// Endpoint names a collection: the URL path and the JSON key holding its records.
type Endpoint struct {
	Path string
	Key  string
}

func (e Endpoint) String() string {
	return "/" + e.Path
}

var (
	ReceiptsEndpoint   = Endpoint{Path: "receipts", Key: "receipts"}
	ItemsEndpoint      = Endpoint{Path: "items", Key: "items"}
	CategoriesEndpoint = Endpoint{Path: "categories", Key: "categories"}
)

// Page is one bounded batch of raw records. An empty Cursor marks the last page.
type Page struct {
	Records []json.RawMessage
	Cursor  string
}

// PageFetcher issues exactly one request per call.
type PageFetcher interface {
	FetchPage(ctx context.Context, endpoint Endpoint, params url.Values, cursor string) (Page, error)
}

// Client is the HTTP PageFetcher. Authentication is the job of the
// http.Client's transport; see auth.NewHTTPClient.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	limit      int
	logger     *applog.Logger
}

var _ PageFetcher = (*Client)(nil)

// NewClient creates a client for baseURL. limit is clamped to 1..MaxPageLimit.
func NewClient(httpClient *http.Client, baseURL string, limit int, logger *applog.Logger) (*Client, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("parse base url %q: scheme and host required", baseURL)
	}
	if limit <= 0 || limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	if logger == nil {
		logger = applog.Wrap(nil, applog.ComponentLoyverse)
	}
	return &Client{httpClient: httpClient, baseURL: u, limit: limit, logger: logger}, nil
}

// Limit returns the page size sent with every request.
func (c *Client) Limit() int {
	return c.limit
}

// FetchPage sends one GET for endpoint with params, the page limit and the
// cursor (omitted when empty). params is not modified.
func (c *Client) FetchPage(ctx context.Context, endpoint Endpoint, params url.Values, cursor string) (Page, error) {
	q := url.Values{}
	for k, vs := range params {
		q[k] = append([]string(nil), vs...)
	}
	q.Set("limit", strconv.Itoa(c.limit))
	if cursor != "" {
		q.Set("cursor", cursor)
	} else {
		q.Del("cursor")
	}

	u := c.baseURL.JoinPath(endpoint.Path)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Page{}, fmt.Errorf("loyverse %s: new request: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("loyverse %s: http: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Page{}, fmt.Errorf("loyverse %s: read body: %w", endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Page{}, &RemoteServiceError{
			Endpoint:   endpoint.String(),
			StatusCode: resp.StatusCode,
			Message:    errorDetails(body),
		}
	}

	page, err := decodePage(body, endpoint.Key)
	if err != nil {
		return Page{}, fmt.Errorf("loyverse %s: %w", endpoint, err)
	}

	c.logger.DebugContext(ctx, "Fetched page",
		applog.FieldEndpoint, endpoint.String(),
		applog.FieldRecords, len(page.Records),
		applog.FieldHasCursor, page.Cursor != "")
	return page, nil
}

func decodePage(body []byte, key string) (Page, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return Page{}, fmt.Errorf("decode page: %w", err)
	}
	var page Page
	if records, ok := raw[key]; ok && !isNull(records) {
		if err := json.Unmarshal(records, &page.Records); err != nil {
			return Page{}, fmt.Errorf("decode %q records: %w", key, err)
		}
	}
	if cursor, ok := raw["cursor"]; ok && !isNull(cursor) {
		if err := json.Unmarshal(cursor, &page.Cursor); err != nil {
			return Page{}, fmt.Errorf("decode cursor: %w", err)
		}
	}
	return page, nil
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

type apiErrorBody struct {
	Errors []struct {
		Code    string `json:"code"`
		Details string `json:"details"`
	} `json:"errors"`
}

// errorDetails extracts the API's error codes and details, falling back to
// a trimmed prefix of the raw body.
func errorDetails(body []byte) string {
	var parsed apiErrorBody
	if err := json.Unmarshal(body, &parsed); err == nil && len(parsed.Errors) > 0 {
		parts := make([]string, 0, len(parsed.Errors))
		for _, e := range parsed.Errors {
			switch {
			case e.Code != "" && e.Details != "":
				parts = append(parts, e.Code+": "+e.Details)
			case e.Code != "":
				parts = append(parts, e.Code)
			default:
				parts = append(parts, e.Details)
			}
		}
		return strings.Join(parts, "; ")
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}

// IsRemoteStatus reports whether err is a RemoteServiceError with the given status.
func IsRemoteStatus(err error, status int) bool {
	var re *RemoteServiceError
	return errors.As(err, &re) && re.StatusCode == status
}
