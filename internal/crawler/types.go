package crawler

import "time"

// Missing is the sentinel written for fields absent from a payload. The
// downstream review tooling displays it verbatim, so it is preserved at the
// storage boundary instead of a true NULL.
const Missing = "NaN"

// Family identifies one of the three extraction strategy families.
type Family string

// Strategy families. The engine runs one family per top-level task.
const (
	FamilyRSS  Family = "rss"
	FamilyAPI  Family = "api"
	FamilyHTML Family = "html"
)

// Families lists all strategy families in the order the orchestrator starts
// them.
func Families() []Family {
	return []Family{FamilyRSS, FamilyAPI, FamilyHTML}
}

// Record is the unit persisted to the jobs table.
type Record struct {
	Title        string
	Link         string
	Description  string
	PubDate      string
	Location     string
	Timestamp    time.Time
	LocationTags string
}

// RowSet holds the six parallel sequences accumulated by a strategy run.
// On success all six have equal length; the engine refuses to persist a
// run whose sequences diverge.
type RowSet struct {
	Titles       []string
	Links        []string
	Descriptions []string
	PubDates     []string
	Locations    []string
	Timestamps   []time.Time
}

// Append adds one job row to every sequence.
func (r *RowSet) Append(title, link, description, pubdate, location string, ts time.Time) {
	r.Titles = append(r.Titles, title)
	r.Links = append(r.Links, link)
	r.Descriptions = append(r.Descriptions, description)
	r.PubDates = append(r.PubDates, pubdate)
	r.Locations = append(r.Locations, location)
	r.Timestamps = append(r.Timestamps, ts)
}

// Extend concatenates another row set onto this one, preserving order.
func (r *RowSet) Extend(other RowSet) {
	r.Titles = append(r.Titles, other.Titles...)
	r.Links = append(r.Links, other.Links...)
	r.Descriptions = append(r.Descriptions, other.Descriptions...)
	r.PubDates = append(r.PubDates, other.PubDates...)
	r.Locations = append(r.Locations, other.Locations...)
	r.Timestamps = append(r.Timestamps, other.Timestamps...)
}

// Len reports the number of rows, defined by the title sequence.
func (r *RowSet) Len() int {
	return len(r.Titles)
}

// Lengths reports the length of each sequence keyed by field name, for the
// parity-gate diagnostic log.
func (r *RowSet) Lengths() map[string]int {
	return map[string]int{
		"title":       len(r.Titles),
		"link":        len(r.Links),
		"description": len(r.Descriptions),
		"pubdate":     len(r.PubDates),
		"location":    len(r.Locations),
		"timestamp":   len(r.Timestamps),
	}
}

// Even reports whether all six sequences have the same length.
func (r *RowSet) Even() bool {
	n := len(r.Titles)
	return len(r.Links) == n &&
		len(r.Descriptions) == n &&
		len(r.PubDates) == n &&
		len(r.Locations) == n &&
		len(r.Timestamps) == n
}

// Records converts the row set into persistable records. Callers must have
// verified Even() first.
func (r *RowSet) Records() []Record {
	out := make([]Record, 0, r.Len())
	for i := range r.Titles {
		out = append(out, Record{
			Title:       r.Titles[i],
			Link:        r.Links[i],
			Description: r.Descriptions[i],
			PubDate:     r.PubDates[i],
			Location:    r.Locations[i],
			Timestamp:   r.Timestamps[i],
		})
	}
	return out
}
