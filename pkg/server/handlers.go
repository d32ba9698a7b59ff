package server

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/districtviz/pkg/buildinfo"
	"github.com/matzehuels/districtviz/pkg/chart/sink"
	"github.com/matzehuels/districtviz/pkg/district"
	"github.com/matzehuels/districtviz/pkg/errors"
	"github.com/matzehuels/districtviz/pkg/pipeline"
	"github.com/matzehuels/districtviz/pkg/search"
)

type healthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Build: buildinfo.Get()})
}

type districtsResponse struct {
	Columns   []string         `json:"columns"`
	Districts district.Dataset `json:"districts"`
}

func (s *Server) handleDistricts(w http.ResponseWriter, r *http.Request) {
	ds, err := s.load(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if ds == nil {
		ds = district.Dataset{}
	}
	writeJSON(w, http.StatusOK, districtsResponse{Columns: ds.Columns(), Districts: ds})
}

type indicatorEntry struct {
	Rank     int      `json:"rank"`
	ID       string   `json:"borocd"`
	Name     string   `json:"name"`
	Value    *float64 `json:"value"`
	Selected bool     `json:"is_selected,omitempty"`
}

type indicatorResponse struct {
	Column       string           `json:"column"`
	SelectedRank int              `json:"selected_rank,omitempty"`
	Districts    []indicatorEntry `json:"districts"`
}

func (s *Server) handleIndicator(w http.ResponseWriter, r *http.Request) {
	column := chi.URLParam(r, "column")
	if err := errors.ValidateColumn(column); err != nil {
		s.writeError(w, r, err)
		return
	}
	selected := r.URL.Query().Get("borocd")
	if selected != "" {
		if err := errors.ValidateIdentifier(selected); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	ds, err := s.load(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sorted, err := pipeline.Rank(ds, pipeline.Options{Column: column, Selected: selected})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := indicatorResponse{Column: column, Districts: make([]indicatorEntry, 0, len(sorted))}
	for i, row := range sorted {
		e := indicatorEntry{Rank: i + 1, ID: row.ID, Name: row.DisplayName(), Selected: row.Selected}
		if v, ok := row.Value(column); ok {
			e.Value = &v
		}
		if row.Selected {
			resp.SelectedRank = i + 1
		}
		resp.Districts = append(resp.Districts, e)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	column, ext, ok := strings.Cut(chi.URLParam(r, "chart"), ".")
	if !ok {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidFormat, "chart path needs a format extension, e.g. /charts/%s.svg", column))
		return
	}
	format, ok := sink.ParseFormat(ext)
	if !ok {
		s.writeError(w, r, pipeline.ValidateFormat(ext))
		return
	}

	opts, err := s.chartOptions(r, column, format)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Cache-Control", "public, max-age=300")
	if res.CacheInfo.RenderHit {
		w.Header().Set("X-Cache", "hit")
	} else {
		w.Header().Set("X-Cache", "miss")
	}
	if res.Rank > 0 {
		w.Header().Set("X-Rank", strconv.Itoa(res.Rank))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Artifacts[string(format)])
}

// chartOptions overlays query parameters on the configured chart defaults.
func (s *Server) chartOptions(r *http.Request, column string, format sink.Format) (pipeline.Options, error) {
	q := r.URL.Query()
	opts := s.cfg.Chart
	opts.Source = s.cfg.Source
	opts.SourceName = s.cfg.SourceName
	opts.Logger = s.log
	opts.Column = column
	opts.Formats = []string{string(format)}

	setString := func(dst *string, name string) {
		if v := q.Get(name); v != "" {
			*dst = v
		}
	}
	setString(&opts.Selected, "borocd")
	setString(&opts.OverlayColumn, "overlay")
	setString(&opts.MoEColumn, "moe")
	setString(&opts.Unit, "unit")
	setString(&opts.NumeralFormat, "numeral")
	setString(&opts.Hover, "hover")
	setString(&opts.Title, "title")

	for _, p := range []struct {
		name string
		dst  *float64
	}{
		{"width", &opts.Width},
		{"height", &opts.Height},
		{"scale", &opts.Scale},
	} {
		if v := q.Get(p.name); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
				return opts, errors.New(errors.ErrCodeInvalidInput, "%s must be a finite number, got %q", p.name, v)
			}
			*p.dst = f
		}
	}
	for _, p := range []struct {
		name string
		dst  *bool
	}{
		{"page", &opts.Page},
		{"caption", &opts.Caption},
	} {
		if v := q.Get(p.name); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return opts, errors.New(errors.ErrCodeInvalidInput, "%s must be a boolean, got %q", p.name, v)
			}
			*p.dst = b
		}
	}
	return opts, nil
}

type searchResponse struct {
	Terms   string          `json:"terms"`
	Options []search.Option `json:"options"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	terms := r.URL.Query().Get("q")
	if err := errors.ValidateSearchTerms(terms); err != nil {
		s.writeError(w, r, err)
		return
	}
	ds, err := s.load(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	districts := search.DistrictOptions(ds)

	if strings.TrimSpace(terms) == "" {
		writeJSON(w, http.StatusOK, searchResponse{Terms: terms, Options: districts})
		return
	}

	var addresses []search.Option
	if s.cfg.Addresses != nil {
		addresses, err = s.cfg.Addresses.Query(r.Context(), terms)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, searchResponse{
		Terms:   terms,
		Options: search.Filter(search.Combine(districts, addresses), terms),
	})
}
