// Package fetchtest provides an in-memory Fetcher for tests.
package fetchtest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
)

var ErrNoRoute = errors.New("no route")

type Call struct {
	URL    string
	Header http.Header
}

// Fake answers GET requests from a fixed table of URL to body or error, recording every call.
type Fake struct {
	mu     sync.Mutex
	bodies map[string]string
	errors map[string]error
	calls  []Call
}

func New() *Fake {
	return &Fake{
		bodies: make(map[string]string),
		errors: make(map[string]error),
	}
}

func (f *Fake) Respond(url string, body string) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bodies[url] = body
	return f
}

func (f *Fake) Fail(url string, err error) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors[url] = err
	return f
}

func (f *Fake) Get(ctx context.Context, url string, header http.Header) (*http.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{URL: url, Header: header.Clone()})
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := f.errors[url]; ok {
		return nil, err
	}
	body, ok := f.bodies[url]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoRoute, url)
	}
	return &http.Response{
		Status:        "200 OK",
		StatusCode:    http.StatusOK,
		Header:        http.Header{},
		Body:          io.NopCloser(strings.NewReader(body)),
		ContentLength: int64(len(body)),
	}, nil
}

// Calls returns every request so far, in order.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	calls := make([]Call, len(f.calls))
	copy(calls, f.calls)
	return calls
}

// CallsWithPrefix counts requests whose URL starts with prefix.
func (f *Fake) CallsWithPrefix(prefix string) int {
	n := 0
	for _, c := range f.Calls() {
		if strings.HasPrefix(c.URL, prefix) {
			n++
		}
	}
	return n
}
