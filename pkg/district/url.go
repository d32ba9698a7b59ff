package district

import (
	"bytes"
	"context"
	"net/url"
	"path"
	"strings"

	"github.com/matzehuels/districtviz/pkg/cache"
	"github.com/matzehuels/districtviz/pkg/errors"
	"github.com/matzehuels/districtviz/pkg/httputil"
)

// URLSource fetches a JSON or CSV dataset over HTTP. Response bodies are
// cached through the client's cache under the HTTP "dataset" namespace.
type URLSource struct {
	URL     string
	Client  *httputil.Client // nil uses httputil.New()
	Refresh bool             // bypass the response cache
}

func (s URLSource) Load(ctx context.Context) (Dataset, error) {
	if err := errors.ValidateURL(s.URL); err != nil {
		return nil, err
	}
	client := s.Client
	if client == nil {
		client = httputil.New()
	}

	key := cache.NewDefaultKeyer().HTTPKey("dataset", s.URL)
	body, err := client.Cached(ctx, key, cache.TTLDataset, s.Refresh, func() ([]byte, error) {
		return client.Get(ctx, s.URL)
	})
	if err != nil {
		return nil, err
	}

	if isCSV(s.URL) {
		return DecodeCSV(bytes.NewReader(body))
	}
	return DecodeJSON(bytes.NewReader(body))
}

// String names the source for logs and cache keys.
func (s URLSource) String() string { return "url:" + s.URL }

func isCSV(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return strings.EqualFold(path.Ext(u.Path), ".csv")
}
