package googleapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"populartimes-crawler/internal/apperr"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
)

const (
	DefaultPlacesBaseURL = "https://maps.googleapis.com/maps/api/place"
	DefaultSearchBaseURL = "https://www.google.de/search"

	// MobileUserAgent must accompany map-search requests, otherwise the
	// response carries no "d" envelope.
	MobileUserAgent = "Mozilla/5.0 (iPhone; CPU iPhone OS 8_1_1 like Mac OS X) AppleWebKit/600.1.4 (KHTML, like Gecko) Mobile/12B435 mobile/iPhone OS/iPhone/iPhone6,1/8.1.1/KBS kong/1.0.8"

	defaultTimeout = 30 * time.Second
)

// Options configures a Client. Zero values fall back to the public endpoints.
type Options struct {
	APIKey        string
	PlacesBaseURL string
	SearchBaseURL string
	Timeout       time.Duration
	HTTPClient    *http.Client

	// RetryEnabled turns on exponential backoff for transport failures,
	// 429 and 5xx responses. Off by default. RetryMaxAttempts counts the
	// first request.
	RetryEnabled     bool
	RetryMaxAttempts int
	RetryBackOff     func() backoff.BackOff
}

// Client talks to the Places web service and the map-search endpoint.
// A single Client is meant to be shared by all workers of a crawl.
type Client struct {
	apiKey        string
	placesBaseURL string
	searchBaseURL string
	httpClient    *http.Client

	retryEnabled     bool
	retryMaxAttempts int
	retryBackOff     func() backoff.BackOff
}

// NewClient creates a new upstream client
func NewClient(opts Options) *Client {
	c := &Client{
		apiKey:           opts.APIKey,
		placesBaseURL:    opts.PlacesBaseURL,
		searchBaseURL:    opts.SearchBaseURL,
		httpClient:       opts.HTTPClient,
		retryEnabled:     opts.RetryEnabled,
		retryMaxAttempts: opts.RetryMaxAttempts,
		retryBackOff:     opts.RetryBackOff,
	}

	if c.placesBaseURL == "" {
		c.placesBaseURL = DefaultPlacesBaseURL
	}
	if c.searchBaseURL == "" {
		c.searchBaseURL = DefaultSearchBaseURL
	}
	if c.httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		c.httpClient = &http.Client{Timeout: timeout}
	}
	if c.retryMaxAttempts <= 0 {
		c.retryMaxAttempts = 3
	}
	if c.retryBackOff == nil {
		c.retryBackOff = func() backoff.BackOff { return backoff.NewExponentialBackOff() }
	}

	return c
}

// get issues a GET request and returns the full response body.
func (c *Client) get(ctx context.Context, rawURL string, header http.Header) ([]byte, error) {
	if !c.retryEnabled {
		return c.getOnce(ctx, rawURL, header)
	}

	var body []byte
	operation := func() error {
		var err error
		body, err = c.getOnce(ctx, rawURL, header)
		if err != nil && !retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		log.Warn().Err(err).Dur("wait", wait).Msg("retrying upstream request")
	}

	// the first attempt is not a retry
	retries := uint64(c.retryMaxAttempts - 1)
	b := backoff.WithContext(backoff.WithMaxRetries(c.retryBackOff(), retries), ctx)
	if err := backoff.RetryNotify(operation, b, notify); err != nil {
		return nil, err
	}
	return body, nil
}

func (c *Client) getOnce(ctx context.Context, rawURL string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: googleapi: failed to build request: %v", apperr.ErrTransport, err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: googleapi: request failed: %w", apperr.ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: googleapi: failed to read response body: %w", apperr.ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: truncate(string(body), 256)}
	}

	return body, nil
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("googleapi: unexpected status %d: %s", e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error {
	return apperr.ErrUpstream
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode == http.StatusTooManyRequests || se.StatusCode >= 500
	}
	return errors.Is(err, apperr.ErrTransport)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
