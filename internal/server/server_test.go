package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/dshills/carverdict/internal/analyze"
	"github.com/dshills/carverdict/internal/listing"
	"github.com/dshills/carverdict/internal/report"
	"github.com/dshills/carverdict/internal/signals"
)

func newTestServer(t *testing.T, s *signals.Static) *httptest.Server {
	t.Helper()
	a := analyze.New(s.Sources(), nil, signals.DefaultTimeouts(), zerolog.Nop())
	a.Version = "test"
	a.Now = func() time.Time { return time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC) }
	ts := httptest.NewServer(New(a, zerolog.Nop(), 5*time.Second).Routes())
	t.Cleanup(ts.Close)
	return ts
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, &signals.Static{})
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestProfiles(t *testing.T) {
	ts := newTestServer(t, &signals.Static{})
	resp, err := http.Get(ts.URL + "/v1/profiles")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var body map[string][]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if len(body["profiles"]) < 2 {
		t.Errorf("profiles = %v", body)
	}
}

func TestAnalyze(t *testing.T) {
	ts := newTestServer(t, &signals.Static{
		History: &signals.VehicleHistory{},
		Market:  &signals.MarketData{Estimates: signals.MarketEstimates{Average: 20000}},
	})
	body := `{"vin":"1HGCM82633A004352","make":"Honda","model":"Accord","askingPrice":20000,"tier":"free"}`
	resp, err := http.Post(ts.URL+"/v1/analyze", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var res report.Result
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		t.Fatal(err)
	}
	if res.Verdict != report.VerdictDeal || res.Tier != report.TierFree {
		t.Errorf("verdict=%s tier=%s", res.Verdict, res.Tier)
	}
}

func TestAnalyzeBadRequests(t *testing.T) {
	ts := newTestServer(t, &signals.Static{})
	tests := []struct {
		name string
		body string
	}{
		{"not json", `{`},
		{"unknown field", `{"askingPrice": 100, "colour": "red"}`},
		{"zero price", `{"askingPrice": 0}`},
		{"malformed vin", `{"askingPrice": 100, "vin": "SHORT"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(ts.URL+"/v1/analyze", "application/json", strings.NewReader(tt.body))
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
		})
	}
}

type failingAnalyzer struct{}

func (failingAnalyzer) Analyze(context.Context, listing.Request) (*report.Result, error) {
	return nil, errors.New("boom")
}

func TestAnalyzeInternalError(t *testing.T) {
	ts := httptest.NewServer(New(failingAnalyzer{}, zerolog.Nop(), 0).Routes())
	defer ts.Close()
	resp, err := http.Post(ts.URL+"/v1/analyze", "application/json", strings.NewReader(`{"askingPrice": 1}`))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", resp.StatusCode)
	}
}
