package util

import (
	"errors"
	"net/url"
	"strings"
)

var (
	ErrNoPath = errors.New("URL has no path")
)

// PathSegments splits the URL path into its non-empty segments.
func PathSegments(u *url.URL) ([]string, error) {
	if u == nil {
		return nil, ErrNoPath
	}
	path := strings.Trim(u.Path, "/")
	if path == "" {
		return nil, ErrNoPath
	}
	var segments []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments, nil
}

// WithQueryParam returns base with key=value added to its query string, value being URL-encoded.
func WithQueryParam(base string, key string, value string) (string, error) {
	parsedURL, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	query := parsedURL.Query()
	query.Set(key, value)
	parsedURL.RawQuery = query.Encode()
	return parsedURL.String(), nil
}
