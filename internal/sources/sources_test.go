package sources

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlagUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    bool
		wantErr bool
	}{
		{"bool true", `true`, true, false},
		{"bool false", `false`, false, false},
		{"yes", `"yes"`, true, false},
		{"no", `"no"`, false, false},
		{"string true", `"true"`, true, false},
		{"empty string", `""`, false, false},
		{"garbage", `"maybe"`, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f Flag
			err := json.Unmarshal([]byte(tt.in), &f)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, bool(f))
		})
	}
}

func writeSources(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	return dir
}

func TestLoadRSS(t *testing.T) {
	t.Run("filters disabled entries", func(t *testing.T) {
		dir := writeSources(t, "rss_main.json", `[
			{"enabled": true, "url": "https://a/feed", "title_tag": "title", "link_tag": "link",
			 "description_tag": "description", "location_tag": "region", "follow_link": "no", "inner_link_tag": ""},
			{"enabled": false, "url": "https://b/feed", "title_tag": "title", "link_tag": "link",
			 "description_tag": "description", "location_tag": "region", "follow_link": "no", "inner_link_tag": ""}
		]`)

		cfgs, err := LoadRSS(dir, false)
		require.NoError(t, err)
		require.Len(t, cfgs, 1)
		assert.Equal(t, "https://a/feed", cfgs[0].URL)
	})

	t.Run("test flag selects the test file", func(t *testing.T) {
		dir := writeSources(t, "rss_test.json", `[
			{"enabled": true, "url": "https://test/feed", "title_tag": "title", "link_tag": "link",
			 "description_tag": "description", "location_tag": "region", "follow_link": "no", "inner_link_tag": ""}
		]`)

		cfgs, err := LoadRSS(dir, true)
		require.NoError(t, err)
		require.Len(t, cfgs, 1)
		assert.Equal(t, "https://test/feed", cfgs[0].URL)
	})

	t.Run("missing file errors", func(t *testing.T) {
		_, err := LoadRSS(t.TempDir(), false)
		require.Error(t, err)
	})
}

func TestLoadAPI(t *testing.T) {
	dir := writeSources(t, "api_main.json", `[
		{"enabled": true, "name": "boards.example", "url": "https://boards.example/api",
		 "class_json": "dict", "follow_link": "yes", "inner_link_tag": "div.posting",
		 "elements_path": {"dict_tag": "data", "title_tag": "title", "link_tag": "url",
		                   "description_tag": "description", "pubdate_tag": "created_at",
		                   "location_tag": "location", "location_default": "Worldwide"},
		 "filters": {"is_remote": true, "description_contains": "golang"}}
	]`)

	cfgs, err := LoadAPI(dir, false)
	require.NoError(t, err)
	require.Len(t, cfgs, 1)

	cfg := cfgs[0]
	assert.Equal(t, "dict", cfg.ClassJSON)
	assert.True(t, bool(cfg.FollowLink))
	assert.Equal(t, "data", cfg.ElementsPath.DictTag)
	assert.Equal(t, "Worldwide", cfg.ElementsPath.LocationDefault)
	require.NotNil(t, cfg.Filters)
	require.NotNil(t, cfg.Filters.IsRemote)
	assert.True(t, *cfg.Filters.IsRemote)
	assert.Equal(t, "golang", cfg.Filters.DescriptionContains)
}

func TestLoadHTML(t *testing.T) {
	dir := writeSources(t, "html_main.json", `[
		{"enabled": true, "name": "https://jobs.example", "url": "https://jobs.example/search?page=",
		 "pages_to_crawl": 3, "start_point": 1, "strategy": "main",
		 "follow_link": "no", "inner_link_tag": "",
		 "elements_path": {"jobs_path": "div.job", "title_path": "h2", "link_path": "a",
		                   "location_path": "span.loc", "description_path": "p"}}
	]`)

	cfgs, err := LoadHTML(dir, false)
	require.NoError(t, err)
	require.Len(t, cfgs, 1)

	cfg := cfgs[0]
	assert.Equal(t, 3, cfg.PagesToCrawl)
	assert.Equal(t, 1, cfg.StartPoint)
	assert.Equal(t, "main", cfg.Strategy)
	assert.Equal(t, "div.job", cfg.ElementsPath.JobsPath)
}
