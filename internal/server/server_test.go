package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Carlsmeister/wikicap/internal/entertainment"
	"github.com/Carlsmeister/wikicap/internal/mediawiki"
	"github.com/Carlsmeister/wikicap/internal/music"
	"github.com/Carlsmeister/wikicap/internal/nobel"
	"github.com/Carlsmeister/wikicap/internal/summary"
)

type fakeSummary struct {
	result *summary.YearSummary
	err    error
}

func (f *fakeSummary) Summarize(_ context.Context, year int) (*summary.YearSummary, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &summary.YearSummary{
		Year:          year,
		EventsByMonth: summary.EventsByMonth{"January": {"Something happened."}},
		Source:        "test",
	}, nil
}

type fakeEntertainment struct {
	err error
}

func (f *fakeEntertainment) MoviesForYear(_ context.Context, _ int) ([]entertainment.Movie, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []entertainment.Movie{{Title: "The Matrix"}}, nil
}

func (f *fakeEntertainment) SeriesForYear(_ context.Context, _ int) ([]entertainment.Series, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []entertainment.Series{{Name: "The Sopranos"}}, nil
}

func (f *fakeEntertainment) HighlightsForYear(_ context.Context, year int) (*entertainment.OscarHighlights, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &entertainment.OscarHighlights{Year: year}, nil
}

type fakeMusic struct {
	err error
}

func (f *fakeMusic) MusicForYear(_ context.Context, year int) (*music.YearMusic, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &music.YearMusic{Year: year, Source: "test"}, nil
}

type fakeNobel struct {
	err error
}

func (f *fakeNobel) PrizesForYear(_ context.Context, year int) (*nobel.YearPrizes, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &nobel.YearPrizes{
		Year:   year,
		Prizes: []nobel.Prize{{Category: "Peace", Laureates: []string{"Someone"}}},
	}, nil
}

func doRequest(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	srv := New(&fakeSummary{}, nil, nil, nil)

	rec := doRequest(t, srv, "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("body = %s, want ok status", rec.Body.String())
	}
}

func TestWikiEndpoint(t *testing.T) {
	srv := New(&fakeSummary{}, nil, nil, nil)

	rec := doRequest(t, srv, "/api/v1/year/1999/wiki")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}

	var got summary.YearSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if got.Year != 1999 {
		t.Errorf("Year = %d, want 1999", got.Year)
	}
	if len(got.EventsByMonth["January"]) != 1 {
		t.Errorf("January events = %v, want one entry", got.EventsByMonth["January"])
	}
}

func TestWikiEndpointFilterQuery(t *testing.T) {
	srv := New(&fakeSummary{result: &summary.YearSummary{
		Year: 1999,
		EventsByMonth: summary.EventsByMonth{
			"January": {"The euro is introduced.", "A treaty is signed."},
			"March":   {"Parliament ratifies the treaty."},
		},
	}}, nil, nil, nil)

	rec := doRequest(t, srv, "/api/v1/year/1999/wiki?q=treaty+month:March")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got summary.YearSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if len(got.EventsByMonth) != 1 || len(got.EventsByMonth["March"]) != 1 {
		t.Errorf("EventsByMonth = %v, want only the March treaty event", got.EventsByMonth)
	}

	rec = doRequest(t, srv, "/api/v1/year/1999/wiki?q=month:Smarch")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad filter query: status = %d, want 400", rec.Code)
	}
}

func TestYearValidation(t *testing.T) {
	srv := New(&fakeSummary{}, nil, nil, nil)

	tests := []struct {
		path string
		want int
	}{
		{"/api/v1/year/1999/wiki", http.StatusOK},
		{"/api/v1/year/1799/wiki", http.StatusBadRequest},
		{"/api/v1/year/2027/wiki", http.StatusBadRequest},
		{"/api/v1/year/abc/wiki", http.StatusBadRequest},
		{"/api/v1/year/-5/wiki", http.StatusBadRequest},
	}
	for _, tt := range tests {
		rec := doRequest(t, srv, tt.path)
		if rec.Code != tt.want {
			t.Errorf("GET %s: status = %d, want %d", tt.path, rec.Code, tt.want)
		}
	}
}

func TestUpstreamErrorsMapToBadGateway(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"unavailable", mediawiki.ErrUnavailable, http.StatusBadGateway},
		{"bad response", mediawiki.ErrBadResponse, http.StatusBadGateway},
		{"invalid year sentinel", summary.ErrInvalidYear, http.StatusBadRequest},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := New(&fakeSummary{err: tt.err}, nil, nil, nil)
			rec := doRequest(t, srv, "/api/v1/year/1999/wiki")
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestAggregateYear(t *testing.T) {
	srv := New(&fakeSummary{}, &fakeEntertainment{}, &fakeMusic{}, &fakeNobel{})

	rec := doRequest(t, srv, "/api/v1/year/1999")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}

	var got yearResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if got.Wiki == nil || got.Wiki.Year != 1999 {
		t.Errorf("Wiki = %+v, want year 1999", got.Wiki)
	}
	if len(got.Movies) != 1 || got.Movies[0].Title != "The Matrix" {
		t.Errorf("Movies = %+v, want The Matrix", got.Movies)
	}
	if got.Music == nil || got.Nobel == nil || got.Oscars == nil {
		t.Errorf("missing optional sections: music=%v nobel=%v oscars=%v",
			got.Music, got.Nobel, got.Oscars)
	}
}

func TestAggregateDegradesOnSectionFailure(t *testing.T) {
	srv := New(&fakeSummary{},
		&fakeEntertainment{err: errors.New("tmdb down")},
		&fakeMusic{err: errors.New("chart down")},
		&fakeNobel{err: errors.New("wiki down")})

	rec := doRequest(t, srv, "/api/v1/year/1999")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 despite section failures", rec.Code)
	}

	var got yearResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if got.Wiki == nil {
		t.Error("Wiki section missing, want it present")
	}
	if got.Movies != nil || got.Music != nil || got.Nobel != nil {
		t.Errorf("failed sections should be omitted: %+v", got)
	}
}

func TestAggregateRequiresSummary(t *testing.T) {
	srv := New(&fakeSummary{err: mediawiki.ErrUnavailable}, &fakeEntertainment{}, &fakeMusic{}, &fakeNobel{})

	rec := doRequest(t, srv, "/api/v1/year/1999")
	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502 when the wiki summary fails", rec.Code)
	}
}

func TestUnconfiguredOptionalRoutes(t *testing.T) {
	srv := New(&fakeSummary{}, nil, nil, nil)

	for _, path := range []string{
		"/api/v1/year/1999/movies",
		"/api/v1/year/1999/series",
		"/api/v1/year/1999/music",
		"/api/v1/year/1999/nobel",
	} {
		rec := doRequest(t, srv, path)
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("GET %s: status = %d, want 503", path, rec.Code)
		}
	}
}

func TestMusicEndpoint(t *testing.T) {
	srv := New(&fakeSummary{}, nil, &fakeMusic{}, nil)

	rec := doRequest(t, srv, "/api/v1/year/1999/music")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got music.YearMusic
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if got.Year != 1999 {
		t.Errorf("Year = %d, want 1999", got.Year)
	}
}
