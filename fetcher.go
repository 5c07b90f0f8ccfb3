package media_archiver

import (
	"context"
	"net/http"
)

// A Fetcher performs GET requests. The returned response has a 2xx status and the caller must close its Body.
// Cookie state is owned by the Fetcher: resolution and retrieval only ever read it implicitly, by fetching.
type Fetcher interface {
	Get(ctx context.Context, url string, header http.Header) (*http.Response, error)
}
