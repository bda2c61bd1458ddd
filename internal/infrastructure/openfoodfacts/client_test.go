package openfoodfacts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nutriscan/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(baseURL string) *Client {
	return NewClient(ClientConfig{BaseURL: baseURL})
}

func TestNewClient(t *testing.T) {
	client := NewClient(ClientConfig{
		BaseURL:              "https://off.example.com",
		ProductRatePerMinute: 100,
		SearchRatePerMinute:  10,
	})

	assert.NotNil(t, client)
	assert.Equal(t, "https://off.example.com", client.baseURL)
	assert.Equal(t, "NutriScan/1.0", client.userAgent)
	assert.Equal(t, 30*time.Second, client.httpClient.Timeout)
	assert.NotNil(t, client.productLimiter)
	assert.NotNil(t, client.searchLimiter)
	assert.False(t, client.debug)
}

func TestNewPerMinuteLimiter(t *testing.T) {
	t.Run("zero disables limiting", func(t *testing.T) {
		limiter := newPerMinuteLimiter(0)
		for i := 0; i < 50; i++ {
			assert.True(t, limiter.Allow())
		}
	})

	t.Run("burst is a tenth of the budget", func(t *testing.T) {
		assert.Equal(t, 10, newPerMinuteLimiter(100).Burst())
		assert.Equal(t, 1, newPerMinuteLimiter(10).Burst())
		assert.Equal(t, 1, newPerMinuteLimiter(3).Burst())
	})
}

func TestSetDebug(t *testing.T) {
	client := newTestClient("https://off.example.com")

	client.SetDebug(true)
	assert.True(t, client.debug)

	client.SetDebug(false)
	assert.False(t, client.debug)
}

func TestGetProduct_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v0/product/3017620422003.json", r.URL.Path)
		assert.Equal(t, "NutriScan/1.0", r.Header.Get("User-Agent"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"code": "3017620422003",
			"status": 1,
			"status_verbose": "product found",
			"product": {
				"code": "3017620422003",
				"product_name": "Nutella",
				"brands": "Ferrero",
				"categories": "Spreads, Sweet spreads",
				"ingredients_text": "Sugar, palm oil, hazelnuts 13%, emulsifier: lecithins",
				"nutriments": {"sugars_100g": 56.3, "saturated-fat_100g": 10.6}
			}
		}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	product, err := client.GetProduct(context.Background(), "3017620422003")

	require.NoError(t, err)
	require.NotNil(t, product)
	assert.Equal(t, "Nutella", product.ProductName)
	assert.Equal(t, "Ferrero", product.Brands)
	assert.Equal(t, "Spreads, Sweet spreads", product.Categories)
	assert.Equal(t, 56.3, product.Nutriments["sugars_100g"])
}

func TestGetProduct_NoProductInBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"code":"000","status":0,"status_verbose":"product not found"}`))
	}))
	defer server.Close()

	product, err := newTestClient(server.URL).GetProduct(context.Background(), "000")

	assert.Nil(t, product)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestGetProduct_NotFoundStatusWithBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"code":"000","status":0,"status_verbose":"product not found"}`))
	}))
	defer server.Close()

	product, err := newTestClient(server.URL).GetProduct(context.Background(), "000")

	assert.Nil(t, product)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestGetProduct_EscapesBarcode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v0/product/12%2F34.json", r.URL.RawPath)
		w.Write([]byte(`{"status":0}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).GetProduct(context.Background(), "12/34")

	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestGetProduct_ServerError(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Internal Server Error"))
	}))
	defer server.Close()

	product, err := newTestClient(server.URL).GetProduct(context.Background(), "123")

	assert.Nil(t, product)
	assert.ErrorIs(t, err, domain.ErrFoodFactsAPIFailure)
	assert.Equal(t, 1, attempts) // no retries
}

func TestGetProduct_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>maintenance</html>"))
	}))
	defer server.Close()

	product, err := newTestClient(server.URL).GetProduct(context.Background(), "123")

	assert.Nil(t, product)
	assert.ErrorIs(t, err, domain.ErrFoodFactsAPIFailure)
	assert.Contains(t, err.Error(), "failed to decode response")
}

func TestGetProduct_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	product, err := newTestClient(server.URL).GetProduct(ctx, "123")

	assert.Nil(t, product)
	assert.ErrorIs(t, err, domain.ErrFoodFactsAPIFailure)
}

func TestGetProduct_RequestCreationError(t *testing.T) {
	product, err := newTestClient("://invalid-url").GetProduct(context.Background(), "123")

	assert.Nil(t, product)
	assert.Error(t, err)
}

func TestSearchProducts_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/cgi/search.pl", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "sweet spreads", q.Get("search_terms"))
		assert.Equal(t, "1", q.Get("search_simple"))
		assert.Equal(t, "process", q.Get("action"))
		assert.Equal(t, "1", q.Get("json"))
		assert.Equal(t, "20", q.Get("page_size"))

		response := domain.SearchResponse{
			Count: 2,
			Products: []domain.Product{
				{Code: "1", Brands: "A", ProductName: "First"},
				{Code: "2", Brands: "B", ProductName: "Second"},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	result, err := newTestClient(server.URL).SearchProducts(context.Background(), "sweet spreads", 20)

	require.NoError(t, err)
	require.Len(t, result.Products, 2)
	assert.Equal(t, "First", result.Products[0].ProductName)
	assert.Equal(t, "Second", result.Products[1].ProductName)
}

func TestSearchProducts_EmptyResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"count":0,"products":[]}`))
	}))
	defer server.Close()

	result, err := newTestClient(server.URL).SearchProducts(context.Background(), "nothing", 10)

	require.NoError(t, err)
	assert.Empty(t, result.Products)
}

func TestSearchProducts_ClientError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	result, err := newTestClient(server.URL).SearchProducts(context.Background(), "bad", 10)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrFoodFactsAPIFailure)
}

func TestSearchProducts_UnlimitedByDefault(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"count": 0, "products": []}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	start := time.Now()

	for i := 0; i < 5; i++ {
		_, err := client.SearchProducts(context.Background(), "snacks", 10)
		require.NoError(t, err)
	}

	assert.Less(t, time.Since(start), 2*time.Second, "consecutive searches must not wait on each other")
}

func TestSearchProducts_RateLimiterCancelled(t *testing.T) {
	client := NewClient(ClientConfig{BaseURL: "http://127.0.0.1:1", SearchRatePerMinute: 1})
	// drain the single token
	require.True(t, client.searchLimiter.Allow())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := client.SearchProducts(ctx, "anything", 10)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrRateLimited)
}

func TestDebugLog(t *testing.T) {
	client := newTestClient("https://off.example.com")

	client.debug = false
	client.debugLog("test message %s", "arg")

	client.debug = true
	client.debugLog("test message %s", "arg")
}

func TestReadLimitedBody(t *testing.T) {
	t.Run("reads within limit", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("short content"))
		}))
		defer server.Close()

		resp, err := http.Get(server.URL)
		require.NoError(t, err)
		defer resp.Body.Close()

		body, err := readLimitedBody(resp.Body, 1000)
		require.NoError(t, err)
		assert.Equal(t, "short content", string(body))
	})

	t.Run("truncates beyond limit", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for i := 0; i < 100; i++ {
				w.Write([]byte("0123456789"))
			}
		}))
		defer server.Close()

		resp, err := http.Get(server.URL)
		require.NoError(t, err)
		defer resp.Body.Close()

		body, err := readLimitedBody(resp.Body, 100)
		require.NoError(t, err)
		assert.Len(t, body, 100)
	})
}
