package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/districtviz/pkg/cache"
	"github.com/matzehuels/districtviz/pkg/errors"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "missing.toml"), false)
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if cfg.Server.Addr != ":8080" || cfg.Cache.Backend != cacheFile || cfg.Search.Debounce != 200*time.Millisecond {
		t.Errorf("defaults = %+v", cfg)
	}
}

func TestLoadConfigMissingExplicit(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "missing.toml"), true)
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("err = %v, want INVALID_CONFIG", err)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.toml", `
[server]
addr = ":9000"
request_timeout = "5s"

[data]
path = "districts.json"

[cache]
backend = "none"

[chart]
column = "poverty_rate"
unit = "%"
numeral_format = "0.00"
width = 800

[chart.margin]
top = 10
right = 40
bottom = 10
left = 10

[search]
debounce = "50ms"
`)
	cfg, err := loadConfig(path, true)
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if cfg.Server.Addr != ":9000" || cfg.Server.RequestTimeout != 5*time.Second {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Search.Debounce != 50*time.Millisecond {
		t.Errorf("debounce = %v", cfg.Search.Debounce)
	}
	opts := cfg.chartDefaults()
	if opts.Column != "poverty_rate" || opts.Unit != "%" || opts.Width != 800 || opts.Margin.Right != 40 {
		t.Errorf("chart defaults = %+v", opts)
	}
	if opts.Height == 0 {
		t.Error("height default lost")
	}
}

func TestLoadConfigRejects(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown key", "[server]\nport = 80\n"},
		{"syntax", "[server\n"},
		{"two sources", "[data]\npath = \"a.json\"\nurl = \"https://example.com/a.json\"\n"},
		{"bad backend", "[cache]\nbackend = \"memcached\"\n"},
		{"bad url", "[data]\nurl = \"ftp://example.com\"\n"},
		{"negative debounce", "[search]\ndebounce = \"-1s\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "config.toml", tt.content)
			if _, err := loadConfig(path, true); err == nil {
				t.Error("loadConfig() succeeded, want error")
			}
		})
	}
}

func TestConfigPathXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/custom-config")
	path, err := configPath()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join("/tmp/custom-config", appName, "config.toml"); path != want {
		t.Errorf("configPath() = %q, want %q", path, want)
	}
}

func TestOpenResourcesFile(t *testing.T) {
	cfg := defaultConfig()
	cfg.Data.Path = "districts.json"
	res, err := openResources(context.Background(), cfg, cache.NewNullCache(), false)
	if err != nil {
		t.Fatalf("openResources() error: %v", err)
	}
	defer res.Close(context.Background())
	if res.sourceName != "file:districts.json" || res.addresses != nil {
		t.Errorf("resources = %+v", res)
	}
}

func TestOpenResourcesNoSource(t *testing.T) {
	_, err := openResources(context.Background(), defaultConfig(), cache.NewNullCache(), false)
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("err = %v, want INVALID_CONFIG", err)
	}
}

func TestOpenResourcesSearchURL(t *testing.T) {
	cfg := defaultConfig()
	cfg.Data.URL = "https://example.com/districts.csv"
	cfg.Search.URL = "https://example.com/search"
	res, err := openResources(context.Background(), cfg, cache.NewMemoryCache(), false)
	if err != nil {
		t.Fatalf("openResources() error: %v", err)
	}
	if res.sourceName != "url:https://example.com/districts.csv" || res.addresses == nil {
		t.Errorf("resources = %+v", res)
	}
}
