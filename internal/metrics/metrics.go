// Package metrics exposes Prometheus counters for the crawl pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RowsInserted tracks unique job rows persisted, labeled by strategy family.
	RowsInserted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crawler_rows_inserted_total",
		Help: "The total number of unique job rows inserted.",
	}, []string{"family"})
	// DuplicateLinks tracks links dropped by the dedup check or the storage
	// conflict backstop.
	DuplicateLinks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crawler_duplicate_links_total",
		Help: "The total number of job links skipped as already persisted.",
	})
	// TitlesAutoSkipped tracks jobs dropped by the title denylist.
	TitlesAutoSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crawler_titles_autoskipped_total",
		Help: "The total number of jobs dropped by the title keyword denylist.",
	})
	// FetchErrors tracks transport-level fetch failures.
	FetchErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crawler_fetch_errors_total",
		Help: "The total number of failed HTTP fetches.",
	})
	// PagesFailed tracks HTML pagination pages skipped after a hard
	// extraction error.
	PagesFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crawler_pages_failed_total",
		Help: "The total number of HTML pages skipped after an extraction error.",
	})
	// ListZipDivergence tracks container-strategy runs whose parallel node
	// lists disagreed in length and were truncated to the shortest.
	ListZipDivergence = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crawler_list_zip_divergence_total",
		Help: "The total number of container-strategy extractions truncated by uneven node lists.",
	})
	// RunsDiscarded tracks family runs discarded by the length-parity gate.
	RunsDiscarded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crawler_runs_discarded_total",
		Help: "The total number of family runs discarded for uneven row sequences.",
	})
)
