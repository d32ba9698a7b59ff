// Package cache provides the byte-oriented caches used by districtviz.
//
// Three backends implement [Cache]:
//   - [NullCache]: caching disabled
//   - [FileCache]: one JSON file per entry under the XDG cache directory (CLI)
//   - [RedisCache]: shared cache for the HTTP server
//
// Keys are produced by a [Keyer] so the CLI, the server and the pipeline agree
// on naming. Use [NewScopedKeyer] to give a tenant its own namespace.
package cache

import (
	"context"
	"time"
)

// Default TTLs per entry kind.
const (
	TTLDataset  = 10 * time.Minute
	TTLArtifact = 24 * time.Hour
	TTLAddress  = time.Hour
)

// Cache is a byte cache with per-entry expiry.
// Get reports a miss as (nil, false, nil); errors are reserved for backend failures.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// ArtifactKeyOpts are the render options that change an artifact's bytes.
type ArtifactKeyOpts struct {
	Format        string     `json:"format"`
	Column        string     `json:"column"`
	OverlayColumn string     `json:"overlay_column,omitempty"`
	MoEColumn     string     `json:"moe_column,omitempty"`
	Unit          string     `json:"unit,omitempty"`
	NumeralFormat string     `json:"numeral_format,omitempty"`
	Selected      string     `json:"selected,omitempty"`
	Hover         string     `json:"hover,omitempty"`
	Width         float64    `json:"width"`
	Height        float64    `json:"height"`
	Margin        [4]float64 `json:"margin"` // top, right, bottom, left
	Palette       string     `json:"palette,omitempty"`
	Title         string     `json:"title,omitempty"`
	Scale         float64    `json:"scale,omitempty"`
	Page          bool       `json:"page,omitempty"`
	Caption       bool       `json:"caption,omitempty"`
}

// Keyer generates cache keys.
type Keyer interface {
	// HTTPKey keys a raw HTTP response body.
	HTTPKey(namespace, key string) string
	// DatasetKey keys a decoded dataset by its source location.
	DatasetKey(source string) string
	// ArtifactKey keys a rendered artifact by dataset hash and render options.
	ArtifactKey(datasetHash string, opts ArtifactKeyOpts) string
	// AddressKey keys an address lookup result.
	AddressKey(source, terms string) string
}

// DefaultKeyer is the standard [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard [Keyer].
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

func (DefaultKeyer) DatasetKey(source string) string {
	return hashKey("dataset", source)
}

func (DefaultKeyer) ArtifactKey(datasetHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", datasetHash, opts)
}

func (DefaultKeyer) AddressKey(source, terms string) string {
	return hashKey("address", source, terms)
}
