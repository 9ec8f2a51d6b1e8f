package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/ctxutil"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/logger"
)

// JSONClient calls a JSON HTTP API with bounded timeouts and retries on
// retryable failures. Exhausted retries wrap ErrUpstreamUnavailable.
type JSONClient struct {
	Service    string
	BaseURL    string
	HTTP       *http.Client
	MaxRetries int
	Log        *logger.Logger
	// Header is added to every request (auth tokens and the like).
	Header http.Header
	// Sleep defaults to the context-aware Sleep; tests replace it.
	Sleep func(ctx context.Context, d time.Duration) error
}

func NewJSONClient(log *logger.Logger, service, baseURL string, timeout time.Duration, maxRetries int) *JSONClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	if log == nil {
		log = logger.Nop()
	}
	return &JSONClient{
		Service:    service,
		BaseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		HTTP:       &http.Client{Timeout: timeout},
		MaxRetries: maxRetries,
		Log:        log.With("client", service),
	}
}

// Do sends in (when non-nil) as the JSON body and decodes a 2xx response into
// out (when non-nil).
func (c *JSONClient) Do(ctx context.Context, method, path string, in, out any) error {
	_, err := c.Exchange(ctx, method, path, in, out)
	return err
}

// Exchange is Do that also hands back the successful response. Its body has
// already been read and closed.
func (c *JSONClient) Exchange(ctx context.Context, method, path string, in, out any) (*http.Response, error) {
	sleep := c.Sleep
	if sleep == nil {
		sleep = Sleep
	}
	backoff := 500 * time.Millisecond

	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		resp, err := c.doOnce(ctx, method, path, in, out)
		if err == nil {
			return resp, nil
		}
		if !IsRetryableError(err) && StatusCode(err) != 0 {
			return nil, err
		}
		if !IsRetryableError(err) || attempt >= c.MaxRetries {
			return nil, fmt.Errorf("%w: %s: %w", ErrUpstreamUnavailable, c.Service, err)
		}

		sleepFor := JitterSleep(RetryAfterDuration(resp, backoff, 10*time.Second))
		c.Log.Warn("Upstream request retrying",
			"path", path,
			"attempt", attempt+1,
			"max_retries", c.MaxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)
		if err := sleep(ctx, sleepFor); err != nil {
			return nil, err
		}
		backoff *= 2
	}
}

func (c *JSONClient) doOnce(ctx context.Context, method, path string, in, out any) (*http.Response, error) {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctxutil.Default(ctx), method, c.BaseURL+path, body)
	if err != nil {
		return nil, err
	}
	for k, vs := range c.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if td := ctxutil.GetTraceData(ctx); td != nil && td.RequestID != "" {
		req.Header.Set("X-Request-ID", td.RequestID)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	_ = resp.Body.Close()
	if readErr != nil {
		return resp, readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, &StatusError{Service: c.Service, StatusCode: resp.StatusCode, Body: string(raw)}
	}
	if out != nil && len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return resp, fmt.Errorf("%s: decode response: %w", c.Service, err)
		}
	}
	return resp, nil
}
