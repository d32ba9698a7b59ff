package search

import (
	"context"
	"encoding/json"
	"net/url"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/districtviz/pkg/cache"
	"github.com/matzehuels/districtviz/pkg/errors"
	"github.com/matzehuels/districtviz/pkg/httputil"
)

// HTTPAddressSource queries a JSON address search endpoint:
//
//	GET {BaseURL}?q={terms}  ->  [{"id": "...", "label": "...", "borocd": "..."}]
//
// Responses are cached per terms and identical in-flight queries share one
// request.
type HTTPAddressSource struct {
	baseURL string
	client  *httputil.Client
	cache   cache.Cache
	keyer   cache.Keyer
	ttl     time.Duration
	group   singleflight.Group
}

// HTTPOption configures an HTTPAddressSource.
type HTTPOption func(*HTTPAddressSource)

// WithClient sets the HTTP client.
func WithClient(c *httputil.Client) HTTPOption {
	return func(s *HTTPAddressSource) { s.client = c }
}

// WithCache caches responses for ttl.
func WithCache(c cache.Cache, keyer cache.Keyer, ttl time.Duration) HTTPOption {
	return func(s *HTTPAddressSource) { s.cache, s.keyer, s.ttl = c, keyer, ttl }
}

type addressRecord struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Borocd string `json:"borocd"`
}

// NewHTTPAddressSource validates baseURL and creates the source.
func NewHTTPAddressSource(baseURL string, opts ...HTTPOption) (*HTTPAddressSource, error) {
	if err := errors.ValidateURL(baseURL); err != nil {
		return nil, err
	}
	s := &HTTPAddressSource{
		baseURL: baseURL,
		client:  httputil.New(),
		cache:   cache.NullCache{},
		keyer:   cache.NewDefaultKeyer(),
		ttl:     cache.TTLAddress,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *HTTPAddressSource) Query(ctx context.Context, terms string) ([]Option, error) {
	key := s.keyer.AddressKey(s.baseURL, terms)
	v, err, _ := s.group.Do(key, func() (any, error) {
		return s.fetch(ctx, key, terms)
	})
	if err != nil {
		return nil, err
	}
	opts := v.([]Option)
	return append([]Option(nil), opts...), nil
}

func (s *HTTPAddressSource) fetch(ctx context.Context, key, terms string) ([]Option, error) {
	if data, ok, err := s.cache.Get(ctx, key); err == nil && ok {
		var cached []Option
		if json.Unmarshal(data, &cached) == nil {
			return cached, nil
		}
	}

	var records []addressRecord
	if err := s.client.GetJSON(ctx, s.queryURL(terms), &records); err != nil {
		return nil, err
	}
	opts := make([]Option, 0, len(records))
	for _, r := range records {
		if r.Label == "" {
			continue
		}
		opts = append(opts, Option{Kind: KindAddress, ID: r.ID, Name: r.Label, Borocd: r.Borocd})
	}

	if data, err := json.Marshal(opts); err == nil {
		_ = s.cache.Set(ctx, key, data, s.ttl)
	}
	return opts, nil
}

func (s *HTTPAddressSource) queryURL(terms string) string {
	u, err := url.Parse(s.baseURL)
	if err != nil {
		return s.baseURL
	}
	q := u.Query()
	q.Set("q", terms)
	u.RawQuery = q.Encode()
	return u.String()
}
