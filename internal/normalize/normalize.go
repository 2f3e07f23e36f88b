// Package normalize strips markup and noise from scraped text fields. Each
// strategy family has its own cleaner because the families clean slightly
// different column sets; the underlying substitutions are shared.
package normalize

import (
	"regexp"
	"strings"

	"github.com/rolehounds/jobscrawler/internal/crawler"
)

var (
	markupAndJunk = regexp.MustCompile(`<[^>]*>|[{}\[\]'",]`)
	isoDate       = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	salaryNoise   = regexp.MustCompile(`(USD|GBP)\d+-\d+/yr`)
	dashOrSlash   = regexp.MustCompile(`[-/]`)
	camelBoundary = regexp.MustCompile(`([a-z])([A-Z])`)
	remotePhrase  = regexp.MustCompile(`(?i)\bRemote Job\b|\bRemote Work\b|\bRemote Office\b|\bRemote Global\b|\bRemote with frequent travel\b`)
	remoteExact   = regexp.MustCompile(`(?i)^remote$`)
)

// CleanRSS cleans feed rows: description and location columns, after
// dropping duplicate rows.
func CleanRSS(rows *crawler.RowSet) {
	dropDuplicateRows(rows)
	for i := range rows.Descriptions {
		rows.Descriptions[i] = CleanText(rows.Descriptions[i])
	}
	for i := range rows.Locations {
		rows.Locations[i] = CleanLocation(rows.Locations[i])
	}
}

// CleanAPI cleans API rows: description and location columns.
func CleanAPI(rows *crawler.RowSet) {
	for i := range rows.Descriptions {
		rows.Descriptions[i] = CleanText(rows.Descriptions[i])
	}
	for i := range rows.Locations {
		rows.Locations[i] = CleanLocation(rows.Locations[i])
	}
}

// CleanHTML cleans scraped-page rows: title, description and location
// columns, after dropping duplicate rows.
func CleanHTML(rows *crawler.RowSet) {
	dropDuplicateRows(rows)
	for i := range rows.Titles {
		rows.Titles[i] = CleanText(rows.Titles[i])
	}
	for i := range rows.Descriptions {
		rows.Descriptions[i] = CleanText(rows.Descriptions[i])
	}
	for i := range rows.Locations {
		rows.Locations[i] = CleanLocation(rows.Locations[i])
	}
}

// CleanText removes markup and stray structural characters.
func CleanText(s string) string {
	return strings.TrimSpace(markupAndJunk.ReplaceAllString(s, ""))
}

// CleanLocation applies the full location pipeline: markup removal,
// repeated-word collapse, date and salary noise removal, separator and
// camel-case splitting, and canonicalization of remote phrasings to
// "Worldwide".
func CleanLocation(s string) string {
	s = markupAndJunk.ReplaceAllString(s, "")
	s = collapseRepeatedWords(s)
	s = isoDate.ReplaceAllString(s, "")
	s = salaryNoise.ReplaceAllString(s, "")
	s = dashOrSlash.ReplaceAllString(s, " ")
	s = camelBoundary.ReplaceAllString(s, "$1 $2")
	s = remotePhrase.ReplaceAllString(s, "Worldwide")
	s = strings.TrimSpace(s)
	s = remoteExact.ReplaceAllString(s, "Worldwide")
	return s
}

// collapseRepeatedWords reduces runs of an identical adjacent word to one
// occurrence ("New York New York" stays, "Remote Remote" collapses).
func collapseRepeatedWords(s string) string {
	fields := strings.Fields(s)
	if len(fields) < 2 {
		return s
	}
	out := fields[:1]
	for _, f := range fields[1:] {
		if f == out[len(out)-1] {
			continue
		}
		out = append(out, f)
	}
	return strings.Join(out, " ")
}

// dropDuplicateRows removes rows whose visible columns are identical,
// keeping the first occurrence.
func dropDuplicateRows(rows *crawler.RowSet) {
	if !rows.Even() {
		return
	}
	seen := make(map[string]struct{}, rows.Len())
	var out crawler.RowSet
	for i := 0; i < rows.Len(); i++ {
		key := strings.Join([]string{
			rows.Titles[i],
			rows.Links[i],
			rows.Descriptions[i],
			rows.PubDates[i],
			rows.Locations[i],
		}, "\x1f")
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out.Append(
			rows.Titles[i],
			rows.Links[i],
			rows.Descriptions[i],
			rows.PubDates[i],
			rows.Locations[i],
			rows.Timestamps[i],
		)
	}
	*rows = out
}
