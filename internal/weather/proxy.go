package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"
)

// ProxySource answers weather queries through a deployed proxy endpoint that
// returns ready-made summaries. Any failure is reported as provider
// unavailability so the resolver can fall through to the direct source.
type ProxySource struct {
	httpClient *http.Client
	baseURL    string
	circuit    *gobreaker.CircuitBreaker
}

func NewProxySource(client *http.Client, baseURL string) *ProxySource {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "weather-proxy",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &ProxySource{
		httpClient: client,
		baseURL:    baseURL,
		circuit:    cb,
	}
}

func (s *ProxySource) Name() string { return "proxy" }

func (s *ProxySource) Resolve(ctx context.Context, q Query) (Summary, error) {
	values := url.Values{}
	if q.Location != "" {
		values.Set("location", q.Location)
	}
	if q.Latitude != nil && q.Longitude != nil {
		values.Set("latitude", strconv.FormatFloat(*q.Latitude, 'f', -1, 64))
		values.Set("longitude", strconv.FormatFloat(*q.Longitude, 'f', -1, 64))
	}

	result, err := s.circuit.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+values.Encode(), nil)
		if err != nil {
			return nil, err
		}

		resp, err := s.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		}

		var summary Summary
		if err := json.NewDecoder(resp.Body).Decode(&summary); err != nil {
			return nil, err
		}
		return summary, nil
	})
	if err != nil {
		return Summary{}, fmt.Errorf("%w: proxy: %v", ErrProviderUnavailable, err)
	}
	return result.(Summary), nil
}
