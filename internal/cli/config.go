package cli

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/districtviz/pkg/cache"
	"github.com/matzehuels/districtviz/pkg/chart"
	"github.com/matzehuels/districtviz/pkg/chart/scale"
	"github.com/matzehuels/districtviz/pkg/district"
	"github.com/matzehuels/districtviz/pkg/errors"
	"github.com/matzehuels/districtviz/pkg/httputil"
	"github.com/matzehuels/districtviz/pkg/pipeline"
	"github.com/matzehuels/districtviz/pkg/schedule"
	"github.com/matzehuels/districtviz/pkg/search"
	"github.com/matzehuels/districtviz/pkg/store/mongo"
)

// Config is the TOML configuration file. Command-line flags override it.
//
//	[server]
//	addr = ":8080"
//	request_timeout = "30s"
//
//	[data]
//	path = "districts.json"       # or url = "https://...", or [data.mongo]
//
//	[cache]
//	backend = "file"              # file, redis or none
//
//	[chart]
//	unit = "%"
//	numeral_format = "0.0"
//
//	[search]
//	url = "https://geosearch.example/v1/search"
//	debounce = "200ms"
type Config struct {
	Server ServerConfig `toml:"server"`
	Data   DataConfig   `toml:"data"`
	Cache  CacheConfig  `toml:"cache"`
	Chart  ChartConfig  `toml:"chart"`
	Search SearchConfig `toml:"search"`
}

type ServerConfig struct {
	Addr           string        `toml:"addr"`
	RequestTimeout time.Duration `toml:"request_timeout"`
}

type DataConfig struct {
	Path  string      `toml:"path"`
	URL   string      `toml:"url"`
	Mongo MongoConfig `toml:"mongo"`
}

type MongoConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

type CacheConfig struct {
	Backend string      `toml:"backend"`
	Dir     string      `toml:"dir"`
	Redis   RedisConfig `toml:"redis"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"`
}

type ChartConfig struct {
	Column        string        `toml:"column"`
	Overlay       string        `toml:"overlay"`
	MoE           string        `toml:"moe"`
	Unit          string        `toml:"unit"`
	NumeralFormat string        `toml:"numeral_format"`
	Width         float64       `toml:"width"`
	Height        float64       `toml:"height"`
	Margin        scale.Margin  `toml:"margin"`
	Palette       chart.Palette `toml:"palette"`
}

type SearchConfig struct {
	URL             string        `toml:"url"`
	Debounce        time.Duration `toml:"debounce"`
	MongoCollection string        `toml:"mongo_collection"`
	Limit           int64         `toml:"limit"`
}

// Cache backends.
const (
	cacheFile  = "file"
	cacheRedis = "redis"
	cacheNone  = "none"
)

// defaultConfig returns the configuration used when no file exists.
func defaultConfig() Config {
	return Config{
		Server: ServerConfig{Addr: ":8080", RequestTimeout: 30 * time.Second},
		Cache:  CacheConfig{Backend: cacheFile, Redis: RedisConfig{Addr: "localhost:6379", Prefix: appName}},
		Chart:  ChartConfig{Width: pipeline.DefaultWidth, Height: pipeline.DefaultHeight},
		Search: SearchConfig{Debounce: schedule.DefaultSearchDebounce, Limit: mongo.DefaultAddressLimit},
	}
}

// configPath returns the default config file location
// (~/.config/districtviz/config.toml).
func configPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// loadConfig reads path over the defaults. A missing file is only an error
// when the path was given explicitly.
func loadConfig(path string, explicit bool) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, errors.New(errors.ErrCodeInvalidConfig, "unknown config key %q in %s", undecoded[0].String(), path)
	}
	return cfg, cfg.Validate()
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	set := 0
	for _, s := range []string{c.Data.Path, c.Data.URL, c.Data.Mongo.URI} {
		if s != "" {
			set++
		}
	}
	if set > 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "set only one of data.path, data.url and data.mongo.uri")
	}
	if c.Data.URL != "" {
		if err := errors.ValidateURL(c.Data.URL); err != nil {
			return err
		}
	}
	switch c.Cache.Backend {
	case "", cacheFile, cacheRedis, cacheNone:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "cache.backend must be file, redis or none, got %q", c.Cache.Backend)
	}
	if c.Search.URL != "" {
		if err := errors.ValidateURL(c.Search.URL); err != nil {
			return err
		}
	}
	if c.Search.Debounce < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "search.debounce must not be negative")
	}
	return nil
}

// chartDefaults converts the [chart] section to pipeline options.
func (c Config) chartDefaults() pipeline.Options {
	return pipeline.Options{
		Column:        c.Chart.Column,
		OverlayColumn: c.Chart.Overlay,
		MoEColumn:     c.Chart.MoE,
		Unit:          c.Chart.Unit,
		NumeralFormat: c.Chart.NumeralFormat,
		Width:         c.Chart.Width,
		Height:        c.Chart.Height,
		Margin:        c.Chart.Margin,
		Palette:       c.Chart.Palette,
	}
}

// resources are opened from the configuration and closed together.
type resources struct {
	source     district.Source
	sourceName string
	addresses  search.AddressSource
	store      *mongo.Store
}

func (r *resources) Close(ctx context.Context) error {
	if r.store != nil {
		return r.store.Close(ctx)
	}
	return nil
}

// openResources resolves the data and address sources. cc backs the HTTP
// response cache of URL sources.
func openResources(ctx context.Context, cfg Config, cc cache.Cache, refresh bool) (*resources, error) {
	r := &resources{}
	client := httputil.New(httputil.WithCache(cc))

	switch {
	case cfg.Data.Path != "":
		src := district.FileSource{Path: cfg.Data.Path}
		r.source, r.sourceName = src, src.String()
	case cfg.Data.URL != "":
		src := district.URLSource{URL: cfg.Data.URL, Client: client, Refresh: refresh}
		r.source, r.sourceName = src, src.String()
	case cfg.Data.Mongo.URI != "":
		store, err := mongo.Open(ctx, cfg.Data.Mongo.URI, cfg.Data.Mongo.Database)
		if err != nil {
			return nil, err
		}
		r.store = store
		src := store.Districts(cfg.Data.Mongo.Collection)
		r.source, r.sourceName = src, src.String()
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "no data source: pass --data or set data.path, data.url or data.mongo.uri")
	}

	switch {
	case cfg.Search.URL != "":
		src, err := search.NewHTTPAddressSource(cfg.Search.URL,
			search.WithClient(client),
			search.WithCache(cc, cacheKeyer(), cache.TTLAddress))
		if err != nil {
			_ = r.Close(ctx)
			return nil, err
		}
		r.addresses = src
	case r.store != nil && cfg.Search.MongoCollection != "":
		r.addresses = r.store.Addresses(cfg.Search.MongoCollection, cfg.Search.Limit)
	}
	return r, nil
}
