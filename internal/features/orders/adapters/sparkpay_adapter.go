package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"sparkpay-sync/internal/core/httpclient"
	"sparkpay-sync/internal/core/logger"
	"sparkpay-sync/internal/core/proxy"
	"sparkpay-sync/internal/features/orders/domain"

	"github.com/araddon/dateparse"
	"go.uber.org/zap"
)

const (
	ordersPath      = "/api/v1/orders"
	authTokenHeader = "X-AC-Auth-Token"

	// isoLayout always carries seconds and the UTC offset; fractional
	// seconds appear only when non-zero.
	isoLayout = "2006-01-02T15:04:05.999999999Z07:00"
)

// OrderClient implements the OrderProvider interface against the SparkPay orders API.
// It holds no mutable state and is safe for concurrent use.
type OrderClient struct {
	// client is the HTTP client used for API requests.
	client *http.Client
	// baseStoreURL is the store root, used verbatim.
	baseStoreURL string
	// authToken is sent in the X-AC-Auth-Token header.
	authToken string
}

// ClientOption customizes an OrderClient.
type ClientOption func(*OrderClient)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(oc *OrderClient) {
		oc.client = c
	}
}

// NewOrderClient creates a client for the given store. Neither argument is validated;
// a bad URL surfaces as an error on the first request.
func NewOrderClient(baseStoreURL, authToken string, opts ...ClientOption) *OrderClient {
	c := &OrderClient{
		client:       httpclient.NewClient(0, proxy.Settings{}),
		baseStoreURL: baseStoreURL,
		authToken:    authToken,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetRequestHeaders returns the headers sent with every API request.
func (c *OrderClient) GetRequestHeaders() map[string]string {
	return map[string]string{
		"Content-Type":  "application/json",
		authTokenHeader: c.authToken,
	}
}

// GetOrdersSince parses since and fetches the orders updated after it.
// Any format dateparse understands is accepted; an explicit UTC offset is kept.
func (c *OrderClient) GetOrdersSince(ctx context.Context, since string) (domain.OrderList, error) {
	start, err := ParseStartDate(since)
	if err != nil {
		return nil, err
	}
	return c.GetOrders(ctx, start)
}

// GetOrders fetches every order updated strictly after since with a single GET.
func (c *OrderClient) GetOrders(ctx context.Context, since time.Time) (domain.OrderList, error) {
	// The filter is appended verbatim: the store expects the literal "gt:" and colons.
	requestURL := c.baseStoreURL + ordersPath + "?updated_at=gt:" + FormatTimestamp(since)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for k, v := range c.GetRequestHeaders() {
		req.Header[k] = []string{v}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		orders, err := decodeOrders(resp.Body)
		if err != nil {
			return nil, err
		}
		logger.Get().Debug("Fetched orders",
			zap.String("since", FormatTimestamp(since)),
			zap.Int("count", len(orders)),
		)
		return orders, nil
	case http.StatusTooManyRequests:
		logger.Get().Warn("SparkPay rate limit reached", zap.String("since", FormatTimestamp(since)))
		return nil, ErrRateLimitExceeded
	default:
		return nil, decodeAPIError(resp)
	}
}

// HealthCheck verifies that the store is reachable and accepts the token.
// A rate-limited answer still proves both, so it is reported as healthy.
func (c *OrderClient) HealthCheck(ctx context.Context) error {
	_, err := c.GetOrders(ctx, time.Now())
	if err == nil || errors.Is(err, ErrRateLimitExceeded) {
		return nil
	}
	return fmt.Errorf("health check failed: %w", err)
}

// ParseStartDate parses a date/time string, keeping any UTC offset it carries.
// Strings without an offset are read as UTC.
func ParseStartDate(s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, &DateParseError{Input: s, Err: errEmptyDate}
	}

	t, err := dateparse.ParseAny(s)
	if err != nil {
		return time.Time{}, &DateParseError{Input: s, Err: err}
	}
	return t, nil
}

// FormatTimestamp renders t in the ISO 8601 form used by the updated_at filter.
func FormatTimestamp(t time.Time) string {
	return t.Format(isoLayout)
}

// ordersResponse is the 200 payload. A missing or null "orders" key means no orders.
type ordersResponse struct {
	Orders domain.OrderList `json:"orders"`
}

func decodeOrders(body io.Reader) (domain.OrderList, error) {
	dec := json.NewDecoder(body)
	dec.UseNumber()

	var payload ordersResponse
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if payload.Orders == nil {
		return domain.OrderList{}, nil
	}
	return payload.Orders, nil
}

// decodeAPIError builds the APIError for an unexpected status. A body that is not
// JSON is reported as a decode failure rather than masked.
func decodeAPIError(resp *http.Response) error {
	reason := reasonPhrase(resp)

	var body errorBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("failed to decode error response (status %d %s): %w", resp.StatusCode, reason, err)
	}

	return newAPIError(resp.StatusCode, reason, body)
}
