package weather

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sony/gobreaker"
)

type stubSource struct {
	name    string
	summary Summary
	err     error
	calls   int
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Resolve(ctx context.Context, q Query) (Summary, error) {
	s.calls++
	return s.summary, s.err
}

func TestResolverStopsAtFirstSuccess(t *testing.T) {
	first := &stubSource{name: "proxy", summary: Summary{AvgTempC: 25}}
	second := &stubSource{name: "direct"}
	r := NewResolver(first, second)

	summary, err := r.Resolve(context.Background(), Query{Location: "Pune"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.AvgTempC != 25 {
		t.Fatalf("expected proxy summary, got %+v", summary)
	}
	if second.calls != 0 {
		t.Fatalf("expected direct source untouched, got %d calls", second.calls)
	}
}

func TestResolverFallsThroughOnProviderFailure(t *testing.T) {
	first := &stubSource{name: "proxy", err: ErrProviderUnavailable}
	second := &stubSource{name: "direct", summary: Summary{WindKmh: 12.3}}
	r := NewResolver(first, second)

	summary, err := r.Resolve(context.Background(), Query{Location: "Pune"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.WindKmh != 12.3 {
		t.Fatalf("expected direct summary, got %+v", summary)
	}
}

func TestResolverLocationNotFoundIsAuthoritative(t *testing.T) {
	first := &stubSource{name: "direct", err: ErrLocationNotFound}
	second := &stubSource{name: "never"}
	r := NewResolver(first, second)

	_, err := r.Resolve(context.Background(), Query{Location: "Atlantis"})
	if !errors.Is(err, ErrLocationNotFound) {
		t.Fatalf("expected ErrLocationNotFound, got %v", err)
	}
	if second.calls != 0 {
		t.Fatalf("expected chain to stop, got %d calls", second.calls)
	}
}

func TestResolverSurfacesLastErrorOnExhaustion(t *testing.T) {
	r := NewResolver(
		&stubSource{name: "proxy", err: ErrProviderUnavailable},
		&stubSource{name: "direct", err: ErrGeocodingFailed},
	)

	_, err := r.Resolve(context.Background(), Query{Location: "Pune"})
	if !errors.Is(err, ErrGeocodingFailed) {
		t.Fatalf("expected last error surfaced, got %v", err)
	}
}

func newTestOpenMeteo(t *testing.T, handler http.Handler) *OpenMeteoClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return &OpenMeteoClient{
		httpClient:  srv.Client(),
		geocodeURL:  srv.URL + "/geo",
		forecastURL: srv.URL + "/forecast",
		circuit: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "openmeteo-test",
			MaxRequests: 5,
			Interval:    time.Minute,
			Timeout:     time.Minute,
		}),
	}
}

func TestDirectSourceResolvesByName(t *testing.T) {
	client := newTestOpenMeteo(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/geo/search":
			if got := r.URL.Query().Get("name"); got != "Pune" {
				t.Errorf("expected geocode for Pune, got %q", got)
			}
			w.Write([]byte(`{"results":[{"name":"Pune","latitude":18.52,"longitude":73.86,"country":"India"}]}`))
		case "/forecast":
			w.Write([]byte(`{
				"daily":{"precipitation_sum":[1.0,2.0,0,null,3.0,0,0]},
				"hourly":{"temperature_2m":[20,22]},
				"current":{"temperature_2m":21.5,"relative_humidity_2m":64,"wind_speed_10m":10}
			}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))

	src := NewDirectSource(client, "", "Pune")
	summary, err := src.Resolve(context.Background(), Query{Location: "Pune"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.Location.Name != "Pune" || summary.Location.Country != "India" {
		t.Fatalf("unexpected place: %+v", summary.Location)
	}
	if summary.RainfallMmWeek != 6.0 {
		t.Fatalf("expected 6.0 mm rainfall, got %v", summary.RainfallMmWeek)
	}
	if summary.AvgTempC != 21.0 {
		t.Fatalf("expected 21.0 avg temp, got %v", summary.AvgTempC)
	}
	if summary.HumidityPct != 64 {
		t.Fatalf("expected 64%% humidity, got %v", summary.HumidityPct)
	}
	if summary.WindKmh != 36.0 {
		t.Fatalf("expected 36.0 km/h wind, got %v", summary.WindKmh)
	}
}

func TestDirectSourceLocationNotFound(t *testing.T) {
	client := newTestOpenMeteo(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[]}`))
	}))

	src := NewDirectSource(client, "", "Pune")
	_, err := src.Resolve(context.Background(), Query{Location: "Nowhereville"})
	if !errors.Is(err, ErrLocationNotFound) {
		t.Fatalf("expected ErrLocationNotFound, got %v", err)
	}
}

func TestDirectSourceGeocodingFailed(t *testing.T) {
	client := newTestOpenMeteo(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	src := NewDirectSource(client, "", "Pune")
	_, err := src.Resolve(context.Background(), Query{Location: "Pune"})
	if !errors.Is(err, ErrGeocodingFailed) {
		t.Fatalf("expected ErrGeocodingFailed, got %v", err)
	}
}

func TestDirectSourceCoordinatesSkipGeocoding(t *testing.T) {
	lat, lon := 18.52, 73.86
	client := newTestOpenMeteo(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/geo/search":
			t.Error("forward geocoding must be skipped when coordinates are supplied")
		case "/geo/reverse":
			// Simulate reverse geocoding being down; coordinates become the name.
			w.WriteHeader(http.StatusBadGateway)
		case "/forecast":
			w.Write([]byte(`{"current":{"temperature_2m":30}}`))
		}
	}))

	src := NewDirectSource(client, "", "Pune")
	summary, err := src.Resolve(context.Background(), Query{Latitude: &lat, Longitude: &lon})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Location.Name != "18.52, 73.86" {
		t.Fatalf("expected coordinate name fallback, got %q", summary.Location.Name)
	}
	if summary.Location.Latitude != lat || summary.Location.Longitude != lon {
		t.Fatalf("expected full-precision coordinates, got %+v", summary.Location)
	}
}

func TestProxySourceDecodesSummary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("location"); got != "Nashik" {
			t.Errorf("expected location query passthrough, got %q", got)
		}
		w.Write([]byte(`{"location":{"name":"Nashik","latitude":19.99,"longitude":73.78},"rainfallMmWeek":4.2,"avgTempC":24.1,"humidityPct":58,"windKmh":9.7}`))
	}))
	t.Cleanup(srv.Close)

	src := NewProxySource(srv.Client(), srv.URL)
	summary, err := src.Resolve(context.Background(), Query{Location: "Nashik"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Location.Name != "Nashik" || summary.RainfallMmWeek != 4.2 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestProxySourceFailureIsProviderUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	src := NewProxySource(srv.Client(), srv.URL)
	_, err := src.Resolve(context.Background(), Query{Location: "Pune"})
	if !errors.Is(err, ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
}
