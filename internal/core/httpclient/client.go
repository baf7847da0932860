package httpclient

import (
	"net/http"
	"time"

	"sparkpay-sync/internal/core/logger"
	"sparkpay-sync/internal/core/proxy"

	"go.uber.org/zap"
)

// LoggingRoundTripper captures request details for debugging.
// Headers are never logged since they carry the store auth token.
type LoggingRoundTripper struct {
	// Proxied is the underlying RoundTripper to execute the request.
	Proxied http.RoundTripper
}

// RoundTrip executes the request and logs details.
func (lrt *LoggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	logger.Get().Debug("HTTP Request Started",
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
	)

	resp, err := lrt.Proxied.RoundTrip(req)

	duration := time.Since(start)

	if err != nil {
		logger.Get().Error("HTTP Request Failed",
			zap.String("method", req.Method),
			zap.String("url", req.URL.String()),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return nil, err
	}

	logger.Get().Debug("HTTP Request Completed",
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.Int("status_code", resp.StatusCode),
		zap.Duration("duration", duration),
	)

	return resp, nil
}

// NewClient returns an http.Client with logging middleware.
// A zero timeout leaves requests bounded only by the transport defaults.
func NewClient(timeout time.Duration, settings proxy.Settings) *http.Client {
	return &http.Client{
		Transport: &LoggingRoundTripper{
			Proxied: newTransport(settings),
		},
		Timeout: timeout,
	}
}

func newTransport(settings proxy.Settings) http.RoundTripper {
	u := settings.URL()
	if u == nil {
		return http.DefaultTransport
	}

	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.Proxy = http.ProxyURL(u)

	logger.Get().Debug("Routing API calls through proxy", zap.String("proxy", settings.HostPort()))
	return tr
}
