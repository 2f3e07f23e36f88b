// Package crawler defines the core types shared by the crawl engine and the
// three extraction strategies: job records, row sets, source families, and
// the interfaces the strategies depend on.
package crawler
