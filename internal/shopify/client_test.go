package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/treyhulse/kcsf-ops/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testShopifyClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	client, err := NewClient(config.Config{
		ShopifyStore:       "kcstorefixtures",
		ShopifyAdminAPIKey: "shpat_test",
		Timeout:            5 * time.Second,
	}, zap.NewNop())
	require.NoError(t, err)
	client.http.SetBaseURL(baseURL)
	return client
}

func TestOrdersFollowsLinkCursor(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		assert.Equal(t, "shpat_test", r.Header.Get("X-Shopify-Access-Token"))
		switch r.URL.Query().Get("page_info") {
		case "":
			assert.Equal(t, "any", r.URL.Query().Get("status"))
			w.Header().Set("Link", fmt.Sprintf(`<%s/orders.json?limit=250&page_info=cursor2>; rel="next"`, "https://kcstorefixtures.myshopify.com/admin/api/2024-01"))
			_ = json.NewEncoder(w).Encode(map[string]any{
				"orders": []map[string]any{{"id": 1, "name": "#1001"}, {"id": 2, "name": "#1002"}},
			})
		case "cursor2":
			assert.Empty(t, r.URL.Query().Get("status"))
			_ = json.NewEncoder(w).Encode(map[string]any{
				"orders": []map[string]any{{"id": 3, "name": "#1003"}},
			})
		default:
			t.Errorf("unexpected page_info %q", r.URL.Query().Get("page_info"))
		}
	}))
	defer server.Close()

	client := testShopifyClient(t, server.URL)
	orders, err := client.Orders(context.Background(), "any", 0)
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.Equal(t, "#1003", orders[2].Name)
}

func TestOrdersHonorsLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"orders": []map[string]any{{"id": 1}, {"id": 2}, {"id": 3}},
		})
	}))
	defer server.Close()

	client := testShopifyClient(t, server.URL)
	orders, err := client.Orders(context.Background(), "", 2)
	require.NoError(t, err)
	assert.Len(t, orders, 2)
}

func TestOrderCount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		assert.Equal(t, "/orders/count.json", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{"count": 128})
	}))
	defer server.Close()

	client := testShopifyClient(t, server.URL)
	count, err := client.OrderCount(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 128, count)
}

func TestNextPageInfo(t *testing.T) {
	link := `<https://x.myshopify.com/admin/api/2024-01/orders.json?limit=250&page_info=abc123>; rel="next", <https://x.myshopify.com/admin/api/2024-01/orders.json?page_info=prev>; rel="previous"`
	assert.Equal(t, "abc123", nextPageInfo(link))
	assert.Empty(t, nextPageInfo(`<https://x.myshopify.com/orders.json?page_info=prev>; rel="previous"`))
	assert.Empty(t, nextPageInfo(""))
}
