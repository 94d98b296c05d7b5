package netsuite

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/treyhulse/kcsf-ops/internal/config"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

var (
	ErrMissingRestURL    = errors.New("netsuite rest url is required")
	ErrMissingRestletURL = errors.New("netsuite restlet url is required")
	ErrNotFound          = errors.New("netsuite record not found")
	ErrUnauthorized      = errors.New("netsuite unauthorized")
	ErrServer            = errors.New("netsuite server error")
)

type APIError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("netsuite api error: %s", e.Status)
	}
	return fmt.Sprintf("netsuite api error: %s: %s", e.Status, e.Body)
}

// Row is one untyped result row from a saved search or SuiteQL page.
type Row = map[string]any

// Client speaks the three NetSuite call shapes the dashboard uses:
// record GET/PATCH, saved-search RESTlet GET, and SuiteQL POST with
// cursor pagination. Every request is OAuth1-signed.
type Client struct {
	http       *resty.Client
	signer     *Signer
	restURL    string
	restletURL string
	logger     *zap.Logger
}

func NewClient(cfg config.Config, logger *zap.Logger) (*Client, error) {
	signer, err := NewSigner(Credentials{
		ConsumerKey:    cfg.ConsumerKey,
		ConsumerSecret: cfg.ConsumerSecret,
		TokenKey:       cfg.TokenKey,
		TokenSecret:    cfg.TokenSecret,
		Realm:          cfg.Realm,
	})
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.RestURL) == "" {
		return nil, ErrMissingRestURL
	}

	httpClient := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetRetryCount(3).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(8 * time.Second).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			// Reads only; a PATCH is never replayed.
			if resp != nil && resp.Request != nil && resp.Request.Method != http.MethodGet {
				return false
			}
			if err != nil {
				return true
			}
			return resp != nil && resp.StatusCode() >= http.StatusInternalServerError
		})

	return &Client{
		http:       httpClient,
		signer:     signer,
		restURL:    strings.TrimRight(cfg.RestURL, "/"),
		restletURL: strings.TrimSpace(cfg.RestletURL),
		logger:     logger.Named("netsuite"),
	}, nil
}

// GetRecord fetches /record/v1/{type}/{id} and decodes the body.
func (c *Client) GetRecord(ctx context.Context, recordType, id string) (Row, error) {
	var record Row
	fullURL := fmt.Sprintf("%s/record/v1/%s/%s", c.restURL, url.PathEscape(recordType), url.PathEscape(id))
	if err := c.do(ctx, http.MethodGet, fullURL, nil, nil, &record); err != nil {
		return nil, err
	}
	return record, nil
}

// PatchRecord updates a record. NetSuite answers 204 with an empty body on
// success, occasionally 200; both count.
func (c *Client) PatchRecord(ctx context.Context, recordType, id string, body any) error {
	fullURL := fmt.Sprintf("%s/record/v1/%s/%s", c.restURL, url.PathEscape(recordType), url.PathEscape(id))
	return c.do(ctx, http.MethodPatch, fullURL, nil, body, nil)
}

// SavedSearch runs a saved search through the RESTlet and returns all rows.
// Single-array responses come back as one page; responses shaped
// {results, hasMore} are walked page by page until hasMore clears or a page
// comes back empty.
func (c *Client) SavedSearch(ctx context.Context, searchID string) ([]Row, error) {
	if c.restletURL == "" {
		return nil, ErrMissingRestletURL
	}

	first, err := c.restletPage(ctx, searchID, 0)
	if err != nil {
		return nil, err
	}

	var rows []Row
	if err := json.Unmarshal(first, &rows); err == nil {
		return rows, nil
	}

	var page restletPage
	if err := json.Unmarshal(first, &page); err != nil {
		return nil, fmt.Errorf("decoding restlet response: %w", err)
	}
	rows = append(rows, page.Results...)

	for n := 2; page.HasMore && len(page.Results) > 0; n++ {
		raw, err := c.restletPage(ctx, searchID, n)
		if err != nil {
			return nil, err
		}
		page = restletPage{}
		if err := json.Unmarshal(raw, &page); err != nil {
			return nil, fmt.Errorf("decoding restlet page %d: %w", n, err)
		}
		rows = append(rows, page.Results...)
	}
	return rows, nil
}

func (c *Client) restletPage(ctx context.Context, searchID string, page int) (json.RawMessage, error) {
	u, err := url.Parse(c.restletURL)
	if err != nil {
		return nil, fmt.Errorf("parsing restlet url: %w", err)
	}
	q := u.Query()
	q.Set("savedSearchId", searchID)
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()

	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, u.String(), nil, nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// SuiteQL runs a caller-supplied query and concatenates every page by
// following rel=next links. The query string is passed through verbatim.
func (c *Client) SuiteQL(ctx context.Context, query string) ([]Row, error) {
	next := c.restURL + "/query/v1/suiteql"
	body := map[string]string{"q": query}
	headers := map[string]string{"Prefer": "transient"}

	var rows []Row
	for next != "" {
		var page suiteQLPage
		if err := c.do(ctx, http.MethodPost, next, headers, body, &page); err != nil {
			return nil, err
		}
		rows = append(rows, page.Items...)
		if len(page.Items) == 0 {
			break
		}
		next = ""
		for _, link := range page.Links {
			if link.Rel == "next" {
				next = link.Href
				break
			}
		}
	}
	return rows, nil
}

func (c *Client) do(ctx context.Context, method, fullURL string, headers map[string]string, body, result any) error {
	auth, err := c.signer.Header(method, fullURL)
	if err != nil {
		return err
	}

	req := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", auth)
	if len(headers) > 0 {
		req.SetHeaders(headers)
	}
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, fullURL)
	if err != nil {
		return fmt.Errorf("netsuite request: %w", err)
	}
	if resp.IsError() {
		return c.errorFromResponse(resp)
	}
	if result == nil || resp.StatusCode() == http.StatusNoContent {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), result); err != nil {
		return fmt.Errorf("decoding netsuite response: %w", err)
	}
	return nil
}

func (c *Client) errorFromResponse(resp *resty.Response) error {
	apiErr := &APIError{
		StatusCode: resp.StatusCode(),
		Status:     resp.Status(),
		Body:       strings.TrimSpace(resp.String()),
	}
	c.logger.Warn("netsuite call failed",
		zap.String("url", resp.Request.URL),
		zap.Int("status", apiErr.StatusCode),
	)

	switch resp.StatusCode() {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, apiErr.Error())
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrUnauthorized, apiErr.Error())
	default:
		if resp.StatusCode() >= http.StatusInternalServerError {
			return fmt.Errorf("%w: %s", ErrServer, apiErr.Error())
		}
		return apiErr
	}
}
