package sources

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Descriptor file names per family. The test variants point at a smaller
// source set and are selected by the crawler's test flag.
const (
	rssMainFile  = "rss_main.json"
	rssTestFile  = "rss_test.json"
	apiMainFile  = "api_main.json"
	apiTestFile  = "api_test.json"
	htmlMainFile = "html_main.json"
	htmlTestFile = "html_test.json"
)

// LoadRSS reads the RSS source descriptors, keeping only enabled entries.
func LoadRSS(dir string, test bool) ([]RSSSource, error) {
	var all []RSSSource
	if err := loadFile(dir, rssMainFile, rssTestFile, test, &all); err != nil {
		return nil, err
	}
	enabled := make([]RSSSource, 0, len(all))
	for _, s := range all {
		if s.Enabled {
			enabled = append(enabled, s)
		}
	}
	return enabled, nil
}

// LoadAPI reads the API source descriptors, keeping only enabled entries.
func LoadAPI(dir string, test bool) ([]APISource, error) {
	var all []APISource
	if err := loadFile(dir, apiMainFile, apiTestFile, test, &all); err != nil {
		return nil, err
	}
	enabled := make([]APISource, 0, len(all))
	for _, s := range all {
		if s.Enabled {
			enabled = append(enabled, s)
		}
	}
	return enabled, nil
}

// LoadHTML reads the HTML source descriptors, keeping only enabled entries.
func LoadHTML(dir string, test bool) ([]HTMLSource, error) {
	var all []HTMLSource
	if err := loadFile(dir, htmlMainFile, htmlTestFile, test, &all); err != nil {
		return nil, err
	}
	enabled := make([]HTMLSource, 0, len(all))
	for _, s := range all {
		if s.Enabled {
			enabled = append(enabled, s)
		}
	}
	return enabled, nil
}

func loadFile(dir, mainFile, testFile string, test bool, out any) error {
	name := mainFile
	if test {
		name = testFile
	}
	path := filepath.Join(dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read sources file %s: %w", path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse sources file %s: %w", path, err)
	}
	return nil
}
