// Package fetch is the HTTP client used for page, API and media requests. A single Client keeps one cookie jar for
// the whole session, so cookies set by a page fetch are sent with the media fetches that follow it.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"time"

	"go.uber.org/zap"
)

// StatusError is returned for responses outside the 2xx range.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

type Config struct {
	UserAgent string
	// Timeout for the response headers to arrive; zero means no timeout. Reading the body is not limited, so a
	// long download that keeps receiving data is never cut off.
	Timeout time.Duration
	// Header is sent with every request, unless the request sets the same header itself.
	Header http.Header
}

type Client struct {
	base   *http.Client
	config Config
	log    *zap.SugaredLogger
}

func New(config Config) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = config.Timeout
	return &Client{
		base: &http.Client{
			Jar:       jar,
			Transport: transport,
		},
		config: config,
		log:    zap.S().Named("fetch"),
	}, nil
}

// Get performs a GET request. The response has a 2xx status and the caller must close its Body.
func (c *Client) Get(ctx context.Context, url string, header http.Header) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, values := range header {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}
	for k, values := range c.config.Header {
		if req.Header.Get(k) == "" {
			req.Header[k] = append([]string(nil), values...)
		}
	}
	if req.Header.Get("User-Agent") == "" && c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	c.log.Debugf("GET %s", url)
	resp, err := c.base.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}
	return resp, nil
}
