// Package rss implements the syndication-feed extraction strategy.
package rss

import (
	"context"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"

	"github.com/rolehounds/jobscrawler/internal/crawler"
	"github.com/rolehounds/jobscrawler/internal/extract"
	"github.com/rolehounds/jobscrawler/internal/sources"
)

// Read fetches and parses one feed, returning the extracted job rows.
// Failures anywhere in the pipeline are logged and yield an empty row set:
// one broken feed never affects its siblings.
func Read(
	ctx context.Context,
	fetcher crawler.Fetcher,
	checker crawler.LinkChecker,
	cfg sources.RSSSource,
	logger *zap.Logger,
) crawler.RowSet {
	var rows crawler.RowSet

	logger.Info("Feed crawl started", zap.String("url", cfg.URL))

	body, err := fetcher.Fetch(ctx, cfg.URL)
	if err != nil {
		logger.Error("Feed fetch failed", zap.String("url", cfg.URL), zap.Error(err))
		return rows
	}

	feed, err := gofeed.NewParser().ParseString(body)
	if err != nil {
		logger.Error("Feed parse failed", zap.String("url", cfg.URL), zap.Error(err))
		return rows
	}

	for _, entry := range feed.Items {
		title := fieldByTag(entry, cfg.TitleTag)
		link := fieldByTag(entry, cfg.LinkTag)

		exists, err := checker.LinkExists(ctx, link)
		if err != nil {
			logger.Error("Dedup check failed", zap.String("link", link), zap.Error(err))
			continue
		}
		if exists {
			logger.Debug("Link already in the db, skipping", zap.String("link", link))
			continue
		}

		description := fieldByTag(entry, cfg.DescriptionTag)
		if cfg.FollowLink {
			description = extract.FollowLink(ctx, fetcher, link, cfg.InnerLinkTag, description, logger)
		}

		location := fieldByTag(entry, cfg.LocationTag)

		rows.Append(
			title,
			link,
			description,
			time.Now().Format("2006-01-02"),
			location,
			time.Now(),
		)
	}

	return rows
}

// fieldByTag resolves a configured tag name against a feed entry. Known
// tag names map onto gofeed's parsed fields; anything else is looked up in
// the entry's custom elements, then in its namespaced extensions. Absent
// fields yield the Missing sentinel.
func fieldByTag(entry *gofeed.Item, tag string) string {
	switch strings.ToLower(tag) {
	case "title":
		if entry.Title != "" {
			return entry.Title
		}
	case "link", "guid":
		if entry.Link != "" {
			return entry.Link
		}
		if strings.HasPrefix(entry.GUID, "http") {
			return entry.GUID
		}
	case "description", "summary":
		if entry.Description != "" {
			return entry.Description
		}
		if entry.Content != "" {
			return entry.Content
		}
	case "content":
		if entry.Content != "" {
			return entry.Content
		}
	case "published", "pubdate":
		if entry.Published != "" {
			return entry.Published
		}
	case "author":
		if entry.Author != nil && entry.Author.Name != "" {
			return entry.Author.Name
		}
	}
	if v, ok := entry.Custom[tag]; ok && v != "" {
		return v
	}
	if v := extensionValue(entry, tag); v != "" {
		return v
	}
	return crawler.Missing
}

// extensionValue resolves flattened namespaced tag names. Descriptor files
// configure elements like <job_listing:region> as "job_listing_region";
// gofeed files those under Extensions["job_listing"]["region"].
func extensionValue(entry *gofeed.Item, tag string) string {
	for prefix, elements := range entry.Extensions {
		name, ok := strings.CutPrefix(tag, prefix+"_")
		if !ok {
			continue
		}
		for _, e := range elements[name] {
			if e.Value != "" {
				return e.Value
			}
		}
	}
	return ""
}
