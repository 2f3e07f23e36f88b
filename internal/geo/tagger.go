// Package geo maps free-text location strings to canonical geographic tags
// using an embedded gazetteer of continents, zones and countries with
// their city and region aliases.
package geo

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rolehounds/jobscrawler/internal/crawler"
)

//go:embed data/world_locations.json
var gazetteerData []byte

// continentEntry mirrors the gazetteer file layout: each continent carries
// its named sub-regions and its countries, each country mapping its
// canonical name to city/region aliases.
type continentEntry struct {
	Zones     []string              `json:"Zones"`
	Countries []map[string][]string `json:"Countries"`
}

// Gazetteer resolves location tokens to canonical tags. Lookups are exact
// and case-insensitive; the resolved tag for a country alias is the
// country name, everything else resolves to itself.
type Gazetteer struct {
	index map[string]string
}

// Load parses the embedded gazetteer into a lookup index.
func Load() (*Gazetteer, error) {
	var raw map[string]continentEntry
	if err := json.Unmarshal(gazetteerData, &raw); err != nil {
		return nil, fmt.Errorf("parse gazetteer: %w", err)
	}

	index := make(map[string]string)
	for continent, entry := range raw {
		upper := strings.ToUpper(continent)
		index[upper] = upper
		for _, zone := range entry.Zones {
			z := strings.ToUpper(zone)
			index[z] = z
		}
		for _, country := range entry.Countries {
			for name, aliases := range country {
				canonical := strings.ToUpper(name)
				index[canonical] = canonical
				for _, alias := range aliases {
					index[strings.ToUpper(alias)] = canonical
				}
			}
		}
	}
	return &Gazetteer{index: index}, nil
}

// lookup resolves one candidate token. The empty string means no match.
func (g *Gazetteer) lookup(word string) string {
	return g.index[strings.ToUpper(word)]
}

// TagLocation tokenizes one location string and resolves each token
// against the gazetteer. Tokens that fail alone are merged with the
// following token and retried, which catches multi-word place names that
// split into unmatched single tokens. Tokens that still fail carry the
// unmatched sentinel. Returns the tokenized-and-rejoined location plus the
// deduplicated tags in order of first occurrence.
func (g *Gazetteer) TagLocation(location string) (string, []string) {
	cleaned := strings.NewReplacer(",", "", "(", "", ")", "", "|", " ").Replace(location)
	tokens := strings.Fields(cleaned)
	if len(tokens) == 0 {
		return "", nil
	}

	tags := make([]string, 0, len(tokens))
	for i := 0; i < len(tokens); {
		if tag := g.lookup(tokens[i]); tag != "" {
			tags = append(tags, tag)
			i++
			continue
		}
		if i+1 < len(tokens) {
			compound := tokens[i] + " " + tokens[i+1]
			if tag := g.lookup(compound); tag != "" {
				// Both merged tokens carry the compound's tag.
				tags = append(tags, tag, tag)
				i += 2
				continue
			}
		}
		tags = append(tags, crawler.Missing)
		i++
	}

	return strings.Join(tokens, " "), uniquePreserveOrder(tags)
}

// Tag runs TagLocation over every row of a row set, rewriting the
// location column and returning the per-row tag lists.
func (g *Gazetteer) Tag(rows *crawler.RowSet) [][]string {
	tags := make([][]string, len(rows.Locations))
	for i, loc := range rows.Locations {
		rows.Locations[i], tags[i] = g.TagLocation(loc)
	}
	return tags
}

// EncodeTags serializes a tag list the way the historical store did, so
// the review tooling's quote-based parsing keeps working.
func EncodeTags(tags []string) string {
	if len(tags) == 0 {
		return "[]"
	}
	quoted := make([]string, len(tags))
	for i, t := range tags {
		quoted[i] = "'" + t + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

func uniquePreserveOrder(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
