package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/matzehuels/districtviz/pkg/cache"
	"github.com/matzehuels/districtviz/pkg/district"
	"github.com/matzehuels/districtviz/pkg/errors"
	"github.com/matzehuels/districtviz/pkg/pipeline"
	"github.com/matzehuels/districtviz/pkg/search"
)

func testData() district.Dataset {
	return district.Dataset{
		{ID: "101", Label: "Manhattan 1", Values: map[string]float64{"poverty_rate": 10}},
		{ID: "201", Label: "Bronx 1", Values: map[string]float64{"poverty_rate": 30}},
		{ID: "301", Label: "Brooklyn 1", Values: map[string]float64{"poverty_rate": 20}},
		{ID: "401", Label: "Queens 1"},
	}
}

func newTestServer(t *testing.T, cfg Config) *Server {
	t.Helper()
	if cfg.Source == nil {
		cfg.Source = district.StaticSource(testData())
	}
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return s
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
	return v
}

func TestNewRequiresSource(t *testing.T) {
	if _, err := New(Config{}); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("err = %v", err)
	}
}

func TestHealth(t *testing.T) {
	rec := get(t, newTestServer(t, Config{}), "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body := decode[healthResponse](t, rec); body.Status != "ok" || body.Build.Version == "" {
		t.Errorf("body = %+v", body)
	}
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Error("missing request id header")
	}
}

func TestRequestIDPropagates(t *testing.T) {
	s := newTestServer(t, Config{})
	const id = "6f1c2b9e-8a4d-4c3e-9f5a-0d7b1e2c3a4f"
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, id)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if got := rec.Header().Get(RequestIDHeader); got != id {
		t.Errorf("request id = %q, want %q", got, id)
	}

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "not-a-uuid")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if got := rec.Header().Get(RequestIDHeader); got == "not-a-uuid" || got == "" {
		t.Errorf("request id = %q, want a fresh uuid", got)
	}
}

func TestDistricts(t *testing.T) {
	rec := get(t, newTestServer(t, Config{}), "/districts")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	body := decode[districtsResponse](t, rec)
	if len(body.Districts) != 4 || len(body.Columns) != 1 || body.Columns[0] != "poverty_rate" {
		t.Errorf("body = %+v", body)
	}
}

func TestIndicator(t *testing.T) {
	rec := get(t, newTestServer(t, Config{}), "/indicators/poverty_rate?borocd=101")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	body := decode[indicatorResponse](t, rec)
	var ids []string
	for _, d := range body.Districts {
		ids = append(ids, d.ID)
	}
	if strings.Join(ids, ",") != "201,301,101,401" {
		t.Errorf("order = %v", ids)
	}
	if body.SelectedRank != 3 || !body.Districts[2].Selected {
		t.Errorf("selected rank = %d", body.SelectedRank)
	}
	if body.Districts[3].Value != nil {
		t.Errorf("missing value should be null, got %v", *body.Districts[3].Value)
	}
}

func TestChart(t *testing.T) {
	s := newTestServer(t, Config{
		Runner: pipeline.NewRunner(cache.NewMemoryCache(), nil, nil),
		Chart:  pipeline.Options{Unit: "%"},
	})

	rec := get(t, s, "/charts/poverty_rate.svg?borocd=301&width=400")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("content type = %q", ct)
	}
	if rec.Header().Get("X-Cache") != "miss" || rec.Header().Get("X-Rank") != "2" {
		t.Errorf("headers = %v", rec.Header())
	}
	if !strings.Contains(rec.Body.String(), "bar-301") {
		t.Error("svg missing selected bar")
	}

	again := get(t, s, "/charts/poverty_rate.svg?borocd=301&width=400")
	if again.Header().Get("X-Cache") != "hit" || again.Body.String() != rec.Body.String() {
		t.Errorf("second request X-Cache = %q", again.Header().Get("X-Cache"))
	}

	png := get(t, s, "/charts/poverty_rate.png?caption=true")
	if png.Code != http.StatusOK || !strings.HasPrefix(png.Body.String(), "\x89PNG") {
		t.Errorf("png status = %d", png.Code)
	}
}

func TestChartErrors(t *testing.T) {
	s := newTestServer(t, Config{})
	tests := []struct {
		target string
		status int
		code   errors.Code
	}{
		{"/charts/poverty_rate", http.StatusBadRequest, errors.ErrCodeInvalidFormat},
		{"/charts/poverty_rate.gif", http.StatusBadRequest, errors.ErrCodeInvalidFormat},
		{"/charts/poverty_rate.svg?width=wide", http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"/charts/poverty_rate.svg?page=maybe", http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"/charts/poverty_rate.png?height=NaN", http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"/charts/poverty_rate.png?width=Inf", http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"/charts/poverty_rate.png?scale=1e4", http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"/charts/poverty_rate.png?height=1e6", http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"/charts/poverty_rate.png?width=-5", http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"/charts/poverty_rate.svg?borocd=999", http.StatusNotFound, errors.ErrCodeNotFound},
		{"/charts/poverty_rate.svg?numeral=zz", http.StatusBadRequest, errors.ErrCodeInvalidPattern},
		{"/charts/unknown_column.svg", http.StatusBadRequest, errors.ErrCodeInvalidColumn},
		{"/indicators/bad-column", http.StatusBadRequest, errors.ErrCodeInvalidColumn},
		{"/nope", http.StatusNotFound, errors.ErrCodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := get(t, s, tt.target)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.status, rec.Body)
			}
			if body := decode[errorBody](t, rec); body.Error.Code != tt.code || body.Error.RequestID == "" {
				t.Errorf("error body = %+v", body)
			}
		})
	}
}

func TestLoadFailureIsBadGateway(t *testing.T) {
	s := newTestServer(t, Config{Source: district.SourceFunc(func(context.Context) (district.Dataset, error) {
		return nil, stderrors.New("upstream down")
	})})
	rec := get(t, s, "/districts")
	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestSearch(t *testing.T) {
	s := newTestServer(t, Config{Addresses: search.StaticAddressSource{
		{ID: "a1", Name: "1 Bronx Park South"},
		{ID: "a2", Name: "120 Broadway"},
	}})

	rec := get(t, s, "/search?q=bronx")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	body := decode[searchResponse](t, rec)
	if len(body.Options) != 2 || body.Options[0].ID != "201" || body.Options[1].Kind != search.KindAddress {
		t.Errorf("options = %+v", body.Options)
	}

	blank := decode[searchResponse](t, get(t, s, "/search?q=+"))
	if len(blank.Options) != 4 {
		t.Errorf("blank search options = %d, want all districts", len(blank.Options))
	}

	if rec := get(t, s, "/search?q=%00"); rec.Code != http.StatusBadRequest {
		t.Errorf("invalid terms status = %d", rec.Code)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errors.New(errors.ErrCodeInvalidIdentifier, "x"), http.StatusBadRequest},
		{errors.New(errors.ErrCodeNotFound, "x"), http.StatusNotFound},
		{errors.New(errors.ErrCodeTimeout, "x"), http.StatusGatewayTimeout},
		{errors.New(errors.ErrCodeNetwork, "x"), http.StatusBadGateway},
		{errors.New(errors.ErrCodeUnsupported, "x"), http.StatusNotImplemented},
		{stderrors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := StatusFor(tt.err); got != tt.want {
			t.Errorf("StatusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestListenAndServeStops(t *testing.T) {
	s := newTestServer(t, Config{Addr: "127.0.0.1:0"})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx) }()
	cancel()
	if err := <-done; err != nil {
		t.Errorf("ListenAndServe() = %v", err)
	}
}
