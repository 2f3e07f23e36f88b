package rss

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rolehounds/jobscrawler/internal/crawler"
	"github.com/rolehounds/jobscrawler/internal/sources"
)

type fakeFetcher struct {
	mu    sync.Mutex
	pages map[string]string
	calls []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, url)
	body, ok := f.pages[url]
	if !ok {
		return "", fmt.Errorf("no fixture for %s", url)
	}
	return body, nil
}

type fakeChecker struct {
	mu    sync.Mutex
	known map[string]bool
	calls int
}

func (c *fakeChecker) LinkExists(_ context.Context, link string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return c.known[link], nil
}

const feedXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Jobs</title>
    <item>
      <title>Go Developer</title>
      <link>https://jobs.example/1</link>
      <description>Build services</description>
      <region>Berlin</region>
    </item>
    <item>
      <title>Platform Engineer</title>
      <link>https://jobs.example/2</link>
      <description>Run clusters</description>
      <region>Remote</region>
    </item>
    <item>
      <title>SRE</title>
      <link>https://jobs.example/3</link>
      <description>Keep things up</description>
      <region>London</region>
    </item>
  </channel>
</rss>`

func feedConfig() sources.RSSSource {
	return sources.RSSSource{
		Enabled:        true,
		URL:            "https://jobs.example/feed",
		TitleTag:       "title",
		LinkTag:        "link",
		DescriptionTag: "description",
		LocationTag:    "region",
	}
}

func TestRead(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()

	t.Run("known links are skipped before enrichment", func(t *testing.T) {
		fetcher := &fakeFetcher{pages: map[string]string{"https://jobs.example/feed": feedXML}}
		checker := &fakeChecker{known: map[string]bool{"https://jobs.example/2": true}}

		rows := Read(ctx, fetcher, checker, feedConfig(), logger)

		require.Equal(t, 2, rows.Len())
		assert.True(t, rows.Even())
		assert.Equal(t, []string{"Go Developer", "SRE"}, rows.Titles)
		assert.Equal(t, []string{"https://jobs.example/1", "https://jobs.example/3"}, rows.Links)
		assert.Equal(t, []string{"Berlin", "London"}, rows.Locations)
		assert.Equal(t, 3, checker.calls)
	})

	t.Run("follow link replaces descriptions of new rows only", func(t *testing.T) {
		fetcher := &fakeFetcher{pages: map[string]string{
			"https://jobs.example/feed": feedXML,
			"https://jobs.example/1":    `<html><div class="posting">Full posting one</div></html>`,
			"https://jobs.example/3":    `<html><div class="posting">Full posting three</div></html>`,
		}}
		checker := &fakeChecker{known: map[string]bool{"https://jobs.example/2": true}}

		cfg := feedConfig()
		cfg.FollowLink = true
		cfg.InnerLinkTag = "div.posting"

		rows := Read(ctx, fetcher, checker, cfg, logger)

		require.Equal(t, 2, rows.Len())
		assert.Equal(t, []string{"Full posting one", "Full posting three"}, rows.Descriptions)
		// One feed fetch plus one follow per new row; the known link is
		// never followed.
		assert.Len(t, fetcher.calls, 3)
	})

	t.Run("follow link falls back on selector miss", func(t *testing.T) {
		fetcher := &fakeFetcher{pages: map[string]string{
			"https://jobs.example/feed": feedXML,
			"https://jobs.example/1":    `<html><p>no posting div</p></html>`,
			"https://jobs.example/2":    `<html></html>`,
			"https://jobs.example/3":    `<html></html>`,
		}}
		checker := &fakeChecker{known: map[string]bool{}}

		cfg := feedConfig()
		cfg.FollowLink = true
		cfg.InnerLinkTag = "div.posting"

		rows := Read(ctx, fetcher, checker, cfg, logger)
		require.Equal(t, 3, rows.Len())
		assert.Equal(t, "Build services", rows.Descriptions[0])
	})

	t.Run("fetch failure yields empty rows", func(t *testing.T) {
		fetcher := &fakeFetcher{pages: map[string]string{}}
		checker := &fakeChecker{}

		rows := Read(ctx, fetcher, checker, feedConfig(), logger)
		assert.Zero(t, rows.Len())
		assert.Zero(t, checker.calls)
	})

	t.Run("unparseable body yields empty rows", func(t *testing.T) {
		fetcher := &fakeFetcher{pages: map[string]string{"https://jobs.example/feed": "not xml at all"}}
		checker := &fakeChecker{}

		rows := Read(ctx, fetcher, checker, feedConfig(), logger)
		assert.Zero(t, rows.Len())
	})

	t.Run("namespaced elements resolve through extensions", func(t *testing.T) {
		fetcher := &fakeFetcher{pages: map[string]string{"https://jobs.example/feed": `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:job_listing="https://jobs.example/ns/job_listing">
  <channel>
    <title>Jobs</title>
    <item>
      <title>Go Developer</title>
      <link>https://jobs.example/1</link>
      <description>Build services</description>
      <job_listing:region>EMEA</job_listing:region>
    </item>
  </channel>
</rss>`}}
		checker := &fakeChecker{}

		cfg := feedConfig()
		cfg.LocationTag = "job_listing_region"

		rows := Read(ctx, fetcher, checker, cfg, logger)
		require.Equal(t, 1, rows.Len())
		assert.Equal(t, "EMEA", rows.Locations[0])
	})

	t.Run("absent fields carry the sentinel", func(t *testing.T) {
		fetcher := &fakeFetcher{pages: map[string]string{"https://jobs.example/feed": `<?xml version="1.0"?>
<rss version="2.0"><channel><title>Jobs</title>
<item><title>Bare Role</title><link>https://jobs.example/9</link></item>
</channel></rss>`}}
		checker := &fakeChecker{}

		rows := Read(ctx, fetcher, checker, feedConfig(), logger)
		require.Equal(t, 1, rows.Len())
		assert.Equal(t, crawler.Missing, rows.Descriptions[0])
		assert.Equal(t, crawler.Missing, rows.Locations[0])
	})
}
