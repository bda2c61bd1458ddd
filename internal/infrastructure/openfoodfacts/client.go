package openfoodfacts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/nutriscan/backend/internal/domain"
	"golang.org/x/time/rate"
)

// maxErrorBodyBytes caps how much of an error response body ends up in logs and errors
const maxErrorBodyBytes = 512

// ClientConfig holds the settings for an Open Food Facts client
type ClientConfig struct {
	BaseURL              string
	UserAgent            string
	Timeout              time.Duration
	ProductRatePerMinute int // 0 disables limiting
	SearchRatePerMinute  int // 0 disables limiting
}

// Client handles communication with the Open Food Facts API
type Client struct {
	httpClient     *http.Client
	baseURL        string
	userAgent      string
	productLimiter *rate.Limiter
	searchLimiter  *rate.Limiter
	debug          bool
}

// NewClient creates a new Open Food Facts API client
func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "NutriScan/1.0"
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:        cfg.BaseURL,
		userAgent:      userAgent,
		productLimiter: newPerMinuteLimiter(cfg.ProductRatePerMinute),
		searchLimiter:  newPerMinuteLimiter(cfg.SearchRatePerMinute),
	}
}

// newPerMinuteLimiter converts a requests-per-minute budget into a token bucket.
// OFF publishes its limits per minute (100 product reads, 10 searches).
// A budget of 0 or less never blocks.
func newPerMinuteLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	burst := perMinute / 10
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), burst)
}

// SetDebug enables or disables request logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

func (c *Client) debugLog(format string, args ...interface{}) {
	if c.debug {
		log.Printf("[OFF] "+format, args...)
	}
}

// doRequest executes an HTTP GET request with proper headers and error handling
func (c *Client) doRequest(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	c.debugLog("GET %s", reqURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFoodFactsAPIFailure, err)
	}

	return resp, nil
}

// wait blocks on the given limiter and maps its failure to ErrRateLimited
func (c *Client) wait(ctx context.Context, limiter *rate.Limiter) error {
	if err := limiter.Wait(ctx); err != nil {
		log.Printf("[OFF] Rate limiter error: %v", err)
		return fmt.Errorf("%w: %v", domain.ErrRateLimited, err)
	}
	return nil
}

// GetProduct fetches a single product by barcode.
// The barcode is passed through unvalidated; it is only path-escaped.
func (c *Client) GetProduct(ctx context.Context, barcode string) (*domain.Product, error) {
	if err := c.wait(ctx, c.productLimiter); err != nil {
		return nil, err
	}

	reqURL := fmt.Sprintf("%s/api/v0/product/%s.json", c.baseURL, url.PathEscape(barcode))

	resp, err := c.doRequest(ctx, reqURL)
	if err != nil {
		log.Printf("[OFF] Product request error for %q: %v", barcode, err)
		return nil, err
	}
	defer resp.Body.Close()

	// OFF answers unknown barcodes with 404 and a regular status document,
	// so 404 is decoded like a 200 and the missing product decides.
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNotFound {
		body, _ := readLimitedBody(resp.Body, maxErrorBodyBytes)
		log.Printf("[OFF] API error - Status: %d, Body: %s", resp.StatusCode, string(body))
		return nil, fmt.Errorf("%w: status %d", domain.ErrFoodFactsAPIFailure, resp.StatusCode)
	}

	var productResp domain.ProductResponse
	if err := json.NewDecoder(resp.Body).Decode(&productResp); err != nil {
		log.Printf("[OFF] JSON decode error: %v", err)
		return nil, fmt.Errorf("%w: failed to decode response: %v", domain.ErrFoodFactsAPIFailure, err)
	}

	if productResp.Product == nil {
		c.debugLog("No product for barcode %q (%s)", barcode, productResp.StatusVerbose)
		return nil, domain.ErrProductNotFound
	}

	return productResp.Product, nil
}

// SearchProducts runs a free-text search and returns up to pageSize products
// in the order the API ranks them.
func (c *Client) SearchProducts(ctx context.Context, term string, pageSize int) (*domain.SearchResponse, error) {
	if err := c.wait(ctx, c.searchLimiter); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("search_terms", term)
	params.Set("search_simple", "1")
	params.Set("action", "process")
	params.Set("json", "1")
	params.Set("page_size", strconv.Itoa(pageSize))

	reqURL := fmt.Sprintf("%s/cgi/search.pl?%s", c.baseURL, params.Encode())

	resp, err := c.doRequest(ctx, reqURL)
	if err != nil {
		log.Printf("[OFF] Search request error for %q: %v", term, err)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := readLimitedBody(resp.Body, maxErrorBodyBytes)
		log.Printf("[OFF] API error - Status: %d, Body: %s", resp.StatusCode, string(body))
		return nil, fmt.Errorf("%w: status %d", domain.ErrFoodFactsAPIFailure, resp.StatusCode)
	}

	var searchResp domain.SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		log.Printf("[OFF] JSON decode error: %v", err)
		return nil, fmt.Errorf("%w: failed to decode response: %v", domain.ErrFoodFactsAPIFailure, err)
	}

	c.debugLog("Found %d products for search %q", len(searchResp.Products), term)
	return &searchResp, nil
}

// readLimitedBody reads at most limit bytes from r
func readLimitedBody(r io.Reader, limit int64) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, limit))
	if err != nil && !errors.Is(err, io.EOF) {
		return body, err
	}
	return body, nil
}
