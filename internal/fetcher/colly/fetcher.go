// Package collyfetcher implements the fetch primitive using gocolly.
package collyfetcher

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/rolehounds/jobscrawler/internal/metrics"
)

// defaultUserAgents is the fallback pool rotated across requests when the
// configuration provides none.
var defaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64; rv:125.0) Gecko/20100101 Firefox/125.0",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:124.0) Gecko/20100101 Firefox/124.0",
	"Mozilla/5.0 (X11; Ubuntu; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
}

// Config controls fetcher behavior.
type Config struct {
	UserAgents []string
	Timeout    time.Duration
}

// Fetcher issues single GET requests through a Colly collector, choosing a
// pseudo-random user agent per request. No retries and no robots handling:
// failures propagate to the calling strategy.
type Fetcher struct {
	cfg           Config
	logger        *zap.Logger
	baseCollector *colly.Collector
}

// New builds a Fetcher.
func New(cfg Config, logger *zap.Logger) *Fetcher {
	c := colly.NewCollector(colly.Async(false))
	c.ParseHTTPErrorResponse = true
	c.WithTransport(newHTTPTransport())

	return &Fetcher{
		cfg:           cfg,
		logger:        logger,
		baseCollector: c,
	}
}

// Fetch executes one HTTP GET and returns the body as text. Non-200
// responses are logged as warnings but their body is still returned; the
// caller decides whether it is usable.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	var (
		body       string
		statusCode int
		fetchErr   error
	)

	collector := f.baseCollector.Clone()
	collector.ParseHTTPErrorResponse = true
	collector.UserAgent = f.pickUserAgent()
	timeout := f.cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	collector.SetRequestTimeout(timeout)

	collector.OnResponse(func(r *colly.Response) {
		statusCode = r.StatusCode
		body = string(r.Body)
	})
	collector.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode > 0 {
			// HTTP-level failure: keep whatever body came back.
			statusCode = r.StatusCode
			body = string(r.Body)
			return
		}
		fetchErr = err
	})

	if err := f.visit(ctx, collector, url); err != nil {
		metrics.FetchErrors.Inc()
		return "", err
	}
	if fetchErr != nil {
		metrics.FetchErrors.Inc()
		return "", fmt.Errorf("fetch %s: %w", url, fetchErr)
	}
	if statusCode != http.StatusOK {
		f.logger.Warn("Received non-200 response",
			zap.String("url", url),
			zap.Int("status_code", statusCode),
		)
	}
	return body, nil
}

func (f *Fetcher) visit(ctx context.Context, collector *colly.Collector, url string) error {
	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("fetch canceled: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return fmt.Errorf("visit %s: %w", url, err)
		}
		return nil
	}
}

func (f *Fetcher) pickUserAgent() string {
	pool := f.cfg.UserAgents
	if len(pool) == 0 {
		pool = defaultUserAgents
	}
	return pool[rand.IntN(len(pool))]
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
