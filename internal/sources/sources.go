// Package sources loads the per-family crawl source descriptors. Each
// family has one JSON array on disk; disabled entries are filtered out
// before any network I/O. Descriptors are immutable for the duration of a
// run.
package sources

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Flag decodes the descriptor files' historical "yes"/"no" strings as well
// as plain booleans.
type Flag bool

// UnmarshalJSON accepts true/false, "yes"/"no" and "true"/"false".
func (f *Flag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch string(data) {
	case "true":
		*f = true
		return nil
	case "false":
		*f = false
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("flag value %s: %w", data, err)
	}
	switch s {
	case "yes", "true":
		*f = true
	case "no", "false", "":
		*f = false
	default:
		return fmt.Errorf("flag value %q is not yes/no", s)
	}
	return nil
}

// RSSSource describes one syndication feed.
type RSSSource struct {
	Enabled        bool   `json:"enabled"`
	URL            string `json:"url"`
	TitleTag       string `json:"title_tag"`
	LinkTag        string `json:"link_tag"`
	DescriptionTag string `json:"description_tag"`
	LocationTag    string `json:"location_tag"`
	FollowLink     Flag   `json:"follow_link"`
	InnerLinkTag   string `json:"inner_link_tag"`
}

// APIElementPath maps JSON payload keys onto record fields.
type APIElementPath struct {
	DictTag         string `json:"dict_tag"`
	TitleTag        string `json:"title_tag"`
	LinkTag         string `json:"link_tag"`
	DescriptionTag  string `json:"description_tag"`
	PubDateTag      string `json:"pubdate_tag"`
	LocationTag     string `json:"location_tag"`
	LocationDefault string `json:"location_default"`
}

// APIFilters are applied before any other per-item processing; filtered-out
// items never reach dedup or storage.
type APIFilters struct {
	IsRemote            *bool  `json:"is_remote,omitempty"`
	DescriptionContains string `json:"description_contains,omitempty"`
}

// APISource describes one JSON jobs API endpoint.
type APISource struct {
	Enabled      bool           `json:"enabled"`
	Name         string         `json:"name"`
	URL          string         `json:"url"`
	ClassJSON    string         `json:"class_json"` // "list" or "dict"
	FollowLink   Flag           `json:"follow_link"`
	InnerLinkTag string         `json:"inner_link_tag"`
	ElementsPath APIElementPath `json:"elements_path"`
	Filters      *APIFilters    `json:"filters,omitempty"`
}

// HTMLElementPath holds the CSS selectors used by the HTML strategies.
type HTMLElementPath struct {
	JobsPath        string `json:"jobs_path"`
	TitlePath       string `json:"title_path"`
	LinkPath        string `json:"link_path"`
	LocationPath    string `json:"location_path"`
	DescriptionPath string `json:"description_path"`
}

// HTMLSource describes one paginated HTML listing site.
type HTMLSource struct {
	Enabled      bool            `json:"enabled"`
	Name         string          `json:"name"`
	URL          string          `json:"url"`
	PagesToCrawl int             `json:"pages_to_crawl"`
	StartPoint   int             `json:"start_point"`
	Strategy     string          `json:"strategy"` // "main" or "container"
	FollowLink   Flag            `json:"follow_link"`
	InnerLinkTag string          `json:"inner_link_tag"`
	ElementsPath HTMLElementPath `json:"elements_path"`
}
