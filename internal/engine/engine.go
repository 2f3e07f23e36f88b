// Package engine coordinates the strategy families: per-family source
// fan-out, row merging, the length-parity gate, cleaning, location tagging
// and persistence.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rolehounds/jobscrawler/internal/crawler"
	"github.com/rolehounds/jobscrawler/internal/extract/api"
	"github.com/rolehounds/jobscrawler/internal/extract/html"
	"github.com/rolehounds/jobscrawler/internal/extract/rss"
	"github.com/rolehounds/jobscrawler/internal/geo"
	"github.com/rolehounds/jobscrawler/internal/metrics"
	"github.com/rolehounds/jobscrawler/internal/normalize"
	"github.com/rolehounds/jobscrawler/internal/sources"
	"github.com/rolehounds/jobscrawler/internal/store"
)

// Engine runs one strategy family end to end against a shared store.
type Engine struct {
	fetcher   crawler.Fetcher
	store     *store.Store
	gazetteer *geo.Gazetteer
	dir       string
	test      bool
	logger    *zap.Logger
}

// New builds an Engine. The test flag selects both the source descriptor
// variant and the destination table.
func New(
	fetcher crawler.Fetcher,
	st *store.Store,
	gazetteer *geo.Gazetteer,
	dir string,
	test bool,
	logger *zap.Logger,
) *Engine {
	return &Engine{
		fetcher:   fetcher,
		store:     st,
		gazetteer: gazetteer,
		dir:       dir,
		test:      test,
		logger:    logger,
	}
}

// Run executes one family: loads its sources, crawls them concurrently,
// merges the rows and persists the run. A source-descriptor load failure
// is fatal for this family only; an uneven merge discards the whole run
// without writing anything.
func (e *Engine) Run(ctx context.Context, family crawler.Family) error {
	runID := uuid.NewString()
	logger := e.logger.With(
		zap.String("family", string(family)),
		zap.String("run_id", runID),
	)
	start := time.Now()
	table := store.Table(e.test)
	checker := e.store.Dedup(table)

	var (
		rows crawler.RowSet
		err  error
	)
	switch family {
	case crawler.FamilyRSS:
		rows, err = e.runRSS(ctx, checker, logger)
	case crawler.FamilyAPI:
		rows, err = e.runAPI(ctx, checker, logger)
	case crawler.FamilyHTML:
		rows, err = e.runHTML(ctx, checker, logger)
	default:
		err = fmt.Errorf("unknown family %q", family)
	}
	if err != nil {
		return fmt.Errorf("%s run: %w", family, err)
	}

	return e.persistRun(ctx, family, table, rows, start, logger)
}

// persistRun applies the length-parity gate, cleans and tags the rows and
// writes them out. An uneven row set discards the whole run without a
// single write.
func (e *Engine) persistRun(
	ctx context.Context,
	family crawler.Family,
	table string,
	rows crawler.RowSet,
	start time.Time,
	logger *zap.Logger,
) error {
	if !rows.Even() {
		metrics.RunsDiscarded.Inc()
		logger.Error("Row sequences uneven, discarding run",
			zap.Any("lengths", rows.Lengths()),
		)
		return fmt.Errorf("%s run discarded: uneven row sequences", family)
	}

	if rows.Len() == 0 {
		logger.Info("No new rows extracted", zap.Duration("elapsed", time.Since(start)))
		return nil
	}

	switch family {
	case crawler.FamilyRSS:
		normalize.CleanRSS(&rows)
	case crawler.FamilyAPI:
		normalize.CleanAPI(&rows)
	case crawler.FamilyHTML:
		normalize.CleanHTML(&rows)
	}

	tags := e.gazetteer.Tag(&rows)
	records := rows.Records()
	for i := range records {
		records[i].LocationTags = geo.EncodeTags(tags[i])
	}

	var inserted, duplicates int
	for _, rec := range records {
		ok, err := e.store.InsertRecord(ctx, table, rec)
		if err != nil {
			return fmt.Errorf("%s run: %w", family, err)
		}
		if ok {
			inserted++
		} else {
			duplicates++
		}
	}
	metrics.RowsInserted.WithLabelValues(string(family)).Add(float64(inserted))

	total, countErr := e.store.Count(ctx, table)
	if countErr != nil {
		logger.Warn("Row count unavailable", zap.Error(countErr))
	}
	logger.Info("Family run finished",
		zap.String("table", table),
		zap.Int("extracted", len(records)),
		zap.Int("inserted", inserted),
		zap.Int("duplicates", duplicates),
		zap.Int("total_rows", total),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

func (e *Engine) runRSS(ctx context.Context, checker crawler.LinkChecker, logger *zap.Logger) (crawler.RowSet, error) {
	cfgs, err := sources.LoadRSS(e.dir, e.test)
	if err != nil {
		return crawler.RowSet{}, err
	}
	results := make([]crawler.RowSet, len(cfgs))
	var wg sync.WaitGroup
	for i, cfg := range cfgs {
		wg.Add(1)
		go func(i int, cfg sources.RSSSource) {
			defer wg.Done()
			results[i] = rss.Read(ctx, e.fetcher, checker, cfg, logger)
		}(i, cfg)
	}
	wg.Wait()
	return merge(results), nil
}

func (e *Engine) runAPI(ctx context.Context, checker crawler.LinkChecker, logger *zap.Logger) (crawler.RowSet, error) {
	cfgs, err := sources.LoadAPI(e.dir, e.test)
	if err != nil {
		return crawler.RowSet{}, err
	}
	results := make([]crawler.RowSet, len(cfgs))
	var wg sync.WaitGroup
	for i, cfg := range cfgs {
		wg.Add(1)
		go func(i int, cfg sources.APISource) {
			defer wg.Done()
			results[i] = api.Read(ctx, e.fetcher, checker, cfg, logger)
		}(i, cfg)
	}
	wg.Wait()
	return merge(results), nil
}

func (e *Engine) runHTML(ctx context.Context, checker crawler.LinkChecker, logger *zap.Logger) (crawler.RowSet, error) {
	cfgs, err := sources.LoadHTML(e.dir, e.test)
	if err != nil {
		return crawler.RowSet{}, err
	}
	results := make([]crawler.RowSet, len(cfgs))
	var wg sync.WaitGroup
	for i, cfg := range cfgs {
		wg.Add(1)
		go func(i int, cfg sources.HTMLSource) {
			defer wg.Done()
			results[i] = html.Read(ctx, e.fetcher, checker, cfg, logger)
		}(i, cfg)
	}
	wg.Wait()
	return merge(results), nil
}

// merge concatenates per-source row sets in source submission order.
func merge(results []crawler.RowSet) crawler.RowSet {
	var rows crawler.RowSet
	for _, r := range results {
		rows.Extend(r)
	}
	return rows
}
