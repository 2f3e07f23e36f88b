// Package api implements the JSON-API extraction strategy.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rolehounds/jobscrawler/internal/crawler"
	"github.com/rolehounds/jobscrawler/internal/extract"
	"github.com/rolehounds/jobscrawler/internal/metrics"
	"github.com/rolehounds/jobscrawler/internal/sources"
)

// echoJobsName keys the one source family with a bespoke detail-page
// layout: its description lives in a div looked up by class attribute.
const echoJobsName = "echojobs.io"

// Read fetches and parses one JSON endpoint, returning the extracted job
// rows. Failures are logged and yield an empty row set.
func Read(
	ctx context.Context,
	fetcher crawler.Fetcher,
	checker crawler.LinkChecker,
	cfg sources.APISource,
	logger *zap.Logger,
) crawler.RowSet {
	var rows crawler.RowSet

	logger.Info("API crawl started", zap.String("name", cfg.Name))

	body, err := fetcher.Fetch(ctx, cfg.URL)
	if err != nil {
		logger.Error("API fetch failed", zap.String("url", cfg.URL), zap.Error(err))
		return rows
	}

	jobs, err := unwrapPayload(body, cfg)
	if err != nil {
		logger.Error("API payload unusable", zap.String("url", cfg.URL), zap.Error(err))
		return rows
	}

	path := cfg.ElementsPath
	for _, raw := range jobs {
		job, ok := raw.(map[string]any)
		if !ok {
			continue
		}

		if !passesFilters(job, cfg.Filters, path.DescriptionTag) {
			continue
		}

		title := fieldString(job, path.TitleTag)
		if crawler.ShouldSkipTitle(title) {
			metrics.TitlesAutoSkipped.Inc()
			logger.Info(crawler.AutoSkipReason, zap.String("title", title))
			continue
		}

		link := fieldString(job, path.LinkTag)

		exists, err := checker.LinkExists(ctx, link)
		if err != nil {
			logger.Error("Dedup check failed", zap.String("link", link), zap.Error(err))
			continue
		}
		if exists {
			logger.Debug("Link already in the db, skipping", zap.String("link", link))
			continue
		}

		description := fieldString(job, path.DescriptionTag)
		if cfg.FollowLink {
			if cfg.Name == echoJobsName {
				description = extract.FollowLinkDiv(ctx, fetcher, link, cfg.InnerLinkTag, description, logger)
			} else {
				description = extract.FollowLink(ctx, fetcher, link, cfg.InnerLinkTag, description, logger)
			}
		}

		location := fieldString(job, path.LocationTag)
		if location == "" {
			location = path.LocationDefault
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

	return rows
}

// unwrapPayload parses the body and applies the class_json discriminator:
// a bare list, or a named key within a dict.
func unwrapPayload(body string, cfg sources.APISource) ([]any, error) {
	switch cfg.ClassJSON {
	case "list":
		var jobs []any
		if err := json.Unmarshal([]byte(body), &jobs); err != nil {
			return nil, fmt.Errorf("parse list payload: %w", err)
		}
		return jobs, nil
	case "dict":
		var wrapper map[string]any
		if err := json.Unmarshal([]byte(body), &wrapper); err != nil {
			return nil, fmt.Errorf("parse dict payload: %w", err)
		}
		inner, ok := wrapper[cfg.ElementsPath.DictTag]
		if !ok {
			return nil, fmt.Errorf("dict payload has no %q key", cfg.ElementsPath.DictTag)
		}
		jobs, ok := inner.([]any)
		if !ok {
			return nil, fmt.Errorf("dict payload key %q is not a list", cfg.ElementsPath.DictTag)
		}
		return jobs, nil
	default:
		return nil, fmt.Errorf("unknown class_json %q", cfg.ClassJSON)
	}
}

// passesFilters applies the optional pre-filters. Filtered-out items never
// reach the skip list, the dedup check or storage.
func passesFilters(job map[string]any, filters *sources.APIFilters, descriptionTag string) bool {
	if filters == nil {
		return true
	}
	if filters.IsRemote != nil {
		remote, ok := job["is_remote"].(bool)
		if !ok || remote != *filters.IsRemote {
			return false
		}
	}
	if filters.DescriptionContains != "" {
		description := strings.ToLower(fieldString(job, descriptionTag))
		if !strings.Contains(description, strings.ToLower(filters.DescriptionContains)) {
			return false
		}
	}
	return true
}

// fieldString resolves a payload key to text. Absent keys yield the
// Missing sentinel; null values yield the empty string so location
// defaults can apply.
func fieldString(job map[string]any, tag string) string {
	v, ok := job[tag]
	if !ok {
		return crawler.Missing
	}
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		encoded, err := json.Marshal(t)
		if err != nil {
			return crawler.Missing
		}
		return string(encoded)
	}
}
