package crawler

import "context"

// Fetcher issues a single HTTP GET and returns the response body as text.
// Implementations return the body even for non-200 responses; only
// transport-level failures surface as errors.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// LinkChecker answers whether a job link is already persisted. Strategies
// consult it before any enrichment fetch so known links cost zero network
// calls.
type LinkChecker interface {
	LinkExists(ctx context.Context, link string) (bool, error)
}
