// Package html implements the HTML-page extraction strategy, covering both
// the element ("main") and list ("container") selection modes plus numeric
// pagination.
package html

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/rolehounds/jobscrawler/internal/crawler"
	"github.com/rolehounds/jobscrawler/internal/extract"
	"github.com/rolehounds/jobscrawler/internal/metrics"
	"github.com/rolehounds/jobscrawler/internal/sources"
)

// Read crawls the configured page range for one site. Each page is one
// fetch plus one strategy execution; a failed page is logged and skipped
// without aborting the remaining pages.
func Read(
	ctx context.Context,
	fetcher crawler.Fetcher,
	checker crawler.LinkChecker,
	cfg sources.HTMLSource,
	logger *zap.Logger,
) crawler.RowSet {
	var rows crawler.RowSet

	logger.Info("HTML crawl started", zap.String("name", cfg.Name))

	for page := cfg.StartPoint; page <= cfg.PagesToCrawl; page++ {
		pageURL := cfg.URL + strconv.Itoa(page)

		pageRows, err := readPage(ctx, fetcher, checker, cfg, pageURL, logger)
		if err != nil {
			metrics.PagesFailed.Inc()
			logger.Error("Page extraction failed, skipping page",
				zap.String("url", pageURL),
				zap.String("strategy", cfg.Strategy),
				zap.Error(err),
			)
			continue
		}
		rows.Extend(pageRows)
	}

	return rows
}

func readPage(
	ctx context.Context,
	fetcher crawler.Fetcher,
	checker crawler.LinkChecker,
	cfg sources.HTMLSource,
	pageURL string,
	logger *zap.Logger,
) (crawler.RowSet, error) {
	body, err := fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return crawler.RowSet{}, fmt.Errorf("fetch page: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return crawler.RowSet{}, fmt.Errorf("parse page: %w", err)
	}

	switch cfg.Strategy {
	case "main":
		return elementStrategy(ctx, doc, fetcher, checker, cfg, logger)
	case "container":
		return listStrategy(ctx, doc, fetcher, checker, cfg, logger)
	default:
		return crawler.RowSet{}, fmt.Errorf("unrecognized strategy %q", cfg.Strategy)
	}
}

// elementStrategy selects a repeating container node per job, then picks
// the title/link/location/description sub-nodes independently within each.
// The container and the title/link sub-selectors are load-bearing: zero
// matches is a hard error so partial markup changes fail loudly instead of
// silently producing empty rows.
func elementStrategy(
	ctx context.Context,
	doc *goquery.Document,
	fetcher crawler.Fetcher,
	checker crawler.LinkChecker,
	cfg sources.HTMLSource,
	logger *zap.Logger,
) (crawler.RowSet, error) {
	var rows crawler.RowSet
	path := cfg.ElementsPath

	jobs := doc.Find(path.JobsPath)
	if jobs.Length() == 0 {
		return rows, fmt.Errorf("no jobs found using selector %q", path.JobsPath)
	}

	var strategyErr error
	jobs.EachWithBreak(func(_ int, job *goquery.Selection) bool {
		title := job.Find(path.TitlePath).First()
		if title.Length() == 0 {
			strategyErr = fmt.Errorf("no titles found using selector %q", path.TitlePath)
			return false
		}

		linkNode := job.Find(path.LinkPath).First()
		if linkNode.Length() == 0 {
			strategyErr = fmt.Errorf("no links found using selector %q", path.LinkPath)
			return false
		}

		href, _ := linkNode.Attr("href")
		link := cfg.Name + href

		exists, err := checker.LinkExists(ctx, link)
		if err != nil {
			strategyErr = fmt.Errorf("dedup check: %w", err)
			return false
		}
		if exists {
			logger.Debug("Link already in the db, skipping", zap.String("link", link))
			return true
		}

		description := crawler.Missing
		if node := job.Find(path.DescriptionPath).First(); node.Length() > 0 {
			description = node.Text()
		}
		if cfg.FollowLink {
			description = extract.FollowLink(ctx, fetcher, link, cfg.InnerLinkTag, description, logger)
		}

		location := crawler.Missing
		if node := job.Find(path.LocationPath).First(); node.Length() > 0 {
			location = node.Text()
		}

		rows.Append(
			title.Text(),
			link,
			description,
			time.Now().Format("2006-01-02"),
			location,
			time.Now(),
		)
		return true
	})
	if strategyErr != nil {
		return crawler.RowSet{}, strategyErr
	}
	return rows, nil
}

// listStrategy selects one shared container, then flat lists of
// title/link/location/description nodes under it, zipped positionally.
// The zip truncates to the shortest list; a divergence is surfaced as a
// warning and a metric but the truncated rows are still produced.
func listStrategy(
	ctx context.Context,
	doc *goquery.Document,
	fetcher crawler.Fetcher,
	checker crawler.LinkChecker,
	cfg sources.HTMLSource,
	logger *zap.Logger,
) (crawler.RowSet, error) {
	var rows crawler.RowSet
	path := cfg.ElementsPath

	container := doc.Find(path.JobsPath).First()
	if container.Length() == 0 {
		return rows, fmt.Errorf("no elements found for container, check %q", path.JobsPath)
	}

	lists := map[string]*goquery.Selection{
		"title":       container.Find(path.TitlePath),
		"link":        container.Find(path.LinkPath),
		"description": container.Find(path.DescriptionPath),
		"location":    container.Find(path.LocationPath),
	}
	for key, sel := range lists {
		if sel.Length() == 0 {
			return rows, fmt.Errorf("no elements found for %q, check elements_path", key)
		}
	}

	n := lists["title"].Length()
	diverged := false
	for _, sel := range lists {
		if sel.Length() != n {
			diverged = true
		}
		if sel.Length() < n {
			n = sel.Length()
		}
	}
	if diverged {
		metrics.ListZipDivergence.Inc()
		logger.Warn("Parallel node lists diverged, truncating to shortest",
			zap.String("name", cfg.Name),
			zap.Int("titles", lists["title"].Length()),
			zap.Int("links", lists["link"].Length()),
			zap.Int("descriptions", lists["description"].Length()),
			zap.Int("locations", lists["location"].Length()),
		)
	}

	for i := 0; i < n; i++ {
		title := strings.TrimSpace(lists["title"].Eq(i).Text())
		if title == "" {
			title = crawler.Missing
		}

		href, ok := lists["link"].Eq(i).Attr("href")
		if !ok || href == "" {
			href = crawler.Missing
		}
		link := cfg.Name + href

		exists, err := checker.LinkExists(ctx, link)
		if err != nil {
			return crawler.RowSet{}, fmt.Errorf("dedup check: %w", err)
		}
		if exists {
			logger.Debug("Link already in the db, skipping", zap.String("link", link))
			continue
		}

		description := strings.TrimSpace(lists["description"].Eq(i).Text())
		if description == "" {
			description = crawler.Missing
		}
		if cfg.FollowLink {
			description = extract.FollowLink(ctx, fetcher, link, cfg.InnerLinkTag, description, logger)
		}

		location := strings.TrimSpace(lists["location"].Eq(i).Text())
		if location == "" {
			location = crawler.Missing
		}

		rows.Append(
			title,
			link,
			description,
			time.Now().Format("2006-01-02"),
			location,
			time.Now(),
		)
	}

	return rows, nil
}
