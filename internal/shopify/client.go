package shopify

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/treyhulse/kcsf-ops/internal/config"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const apiVersion = "2024-01"

var (
	ErrMissingStore = errors.New("shopify store name is required")
	ErrMissingToken = errors.New("shopify admin api key is required")
)

type APIError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("shopify api error: %s", e.Status)
	}
	return fmt.Sprintf("shopify api error: %s: %s", e.Status, e.Body)
}

// Order is the slim view sales analytics consumes.
type Order struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	CreatedAt       string `json:"created_at"`
	TotalPrice      string `json:"total_price"`
	Currency        string `json:"currency"`
	FinancialStatus string `json:"financial_status"`
}

// Client reads order data from the storefront admin API. Pagination follows
// the page_info cursor Shopify returns in the Link header.
type Client struct {
	http   *resty.Client
	logger *zap.Logger
}

func NewClient(cfg config.Config, logger *zap.Logger) (*Client, error) {
	store := strings.TrimSpace(cfg.ShopifyStore)
	if store == "" {
		return nil, ErrMissingStore
	}
	token := strings.TrimSpace(cfg.ShopifyAdminAPIKey)
	if token == "" {
		return nil, ErrMissingToken
	}

	httpClient := resty.New().
		SetBaseURL(fmt.Sprintf("https://%s.myshopify.com/admin/api/%s", store, apiVersion)).
		SetTimeout(cfg.Timeout).
		SetHeader("X-Shopify-Access-Token", token).
		SetHeader("Content-Type", "application/json")

	return &Client{
		http:   httpClient,
		logger: logger.Named("shopify"),
	}, nil
}

// Orders lists orders with the given status, walking cursor pages until the
// limit is reached or the Link header stops offering a next page.
func (c *Client) Orders(ctx context.Context, status string, limit int) ([]Order, error) {
	var orders []Order
	pageInfo := ""

	for {
		var page struct {
			Orders []Order `json:"orders"`
		}
		query := map[string]string{"limit": "250"}
		if pageInfo != "" {
			// Cursor requests may not carry filter params.
			query["page_info"] = pageInfo
		} else if status != "" {
			query["status"] = status
		}

		resp, err := c.http.R().
			SetContext(ctx).
			SetQueryParams(query).
			SetResult(&page).
			Get("/orders.json")
		if err != nil {
			return nil, fmt.Errorf("shopify request: %w", err)
		}
		if resp.IsError() {
			return nil, &APIError{
				StatusCode: resp.StatusCode(),
				Status:     resp.Status(),
				Body:       strings.TrimSpace(resp.String()),
			}
		}

		orders = append(orders, page.Orders...)
		if limit > 0 && len(orders) >= limit {
			return orders[:limit], nil
		}

		pageInfo = nextPageInfo(resp.Header().Get("Link"))
		if pageInfo == "" || len(page.Orders) == 0 {
			return orders, nil
		}
	}
}

// OrderCount returns the order count for a status.
func (c *Client) OrderCount(ctx context.Context, status string) (int, error) {
	var out struct {
		Count int `json:"count"`
	}
	req := c.http.R().SetContext(ctx).SetResult(&out)
	if status != "" {
		req.SetQueryParam("status", status)
	}

	resp, err := req.Get("/orders/count.json")
	if err != nil {
		return 0, fmt.Errorf("shopify request: %w", err)
	}
	if resp.IsError() {
		return 0, &APIError{
			StatusCode: resp.StatusCode(),
			Status:     resp.Status(),
			Body:       strings.TrimSpace(resp.String()),
		}
	}
	return out.Count, nil
}

var linkNextPattern = regexp.MustCompile(`<[^>]*[?&]page_info=([^&>]+)[^>]*>;\s*rel="next"`)

func nextPageInfo(linkHeader string) string {
	m := linkNextPattern.FindStringSubmatch(linkHeader)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}
