package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/j-veylop/hospital-dashboard-tui/internal/logger"
	"github.com/j-veylop/hospital-dashboard-tui/internal/models"
)

// DefaultBaseURL is the public deployment of the analytics backend.
const DefaultBaseURL = "https://hospital-analytics.onrender.com"

// Client fetches resources from the analytics backend.
//
// Every call is a fresh round trip without retries or caching. The only
// timeout is the caller's context.
type Client struct {
	http    *resty.Client
	baseURL string
}

// NewClient creates a client for the backend at baseURL.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetRetryCount(0).
		SetHeader("Accept", "application/json").
		SetLogger(restyLogger{})

	return &Client{
		http:    httpClient,
		baseURL: baseURL,
	}
}

// BaseURL returns the backend origin requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// FetchResource GETs path with the filter query appended and decodes the
// JSON body into out. A non-2xx status yields a *RequestError and the body
// is left undecoded.
func (c *Client) FetchResource(ctx context.Context, path string, f models.FilterState, out any) error {
	target := ResourcePath(path, f)
	start := time.Now()

	resp, err := c.http.R().SetContext(ctx).Get(target)
	if err != nil {
		logger.Error("analytics request failed", "path", target, "error", err)
		return fmt.Errorf("GET %s: %w", target, err)
	}

	logger.Debug("analytics request",
		"path", target,
		"status", resp.StatusCode(),
		"duration", time.Since(start),
	)

	if !resp.IsSuccess() {
		return &RequestError{
			Status:     resp.StatusCode(),
			StatusText: statusText(resp),
			URL:        c.baseURL + target,
		}
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("decode %s: %w", target, err)
	}

	return nil
}

// statusText returns the reason phrase of the response, e.g. "Not Found".
func statusText(resp *resty.Response) string {
	status := resp.Status()
	prefix := strconv.Itoa(resp.StatusCode()) + " "
	if text := strings.TrimPrefix(status, prefix); text != "" && text != status {
		return text
	}
	return http.StatusText(resp.StatusCode())
}

// restyLogger routes resty's internal warnings through the application
// logger so they never write to the terminal the TUI is drawing on.
type restyLogger struct{}

func (restyLogger) Errorf(format string, v ...any) {
	logger.Error(fmt.Sprintf(strings.TrimSpace(format), v...))
}

func (restyLogger) Warnf(format string, v ...any) {
	logger.Warn(fmt.Sprintf(strings.TrimSpace(format), v...))
}

func (restyLogger) Debugf(format string, v ...any) {
	logger.Debug(fmt.Sprintf(strings.TrimSpace(format), v...))
}
