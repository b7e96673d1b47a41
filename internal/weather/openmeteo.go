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

// OpenMeteoClient calls the Open-Meteo geocoding and forecast APIs. Neither
// requires an API key.
type OpenMeteoClient struct {
	httpClient  *http.Client
	geocodeURL  string
	forecastURL string
	circuit     *gobreaker.CircuitBreaker
}

func NewOpenMeteoClient(client *http.Client) *OpenMeteoClient {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openmeteo",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &OpenMeteoClient{
		httpClient:  client,
		geocodeURL:  "https://geocoding-api.open-meteo.com/v1",
		forecastURL: "https://api.open-meteo.com/v1/forecast",
		circuit:     cb,
	}
}

// Geocode resolves a free-text location to a Place. Zero results is
// ErrLocationNotFound; transport or HTTP failures are ErrGeocodingFailed.
func (c *OpenMeteoClient) Geocode(ctx context.Context, location string) (Place, error) {
	values := url.Values{}
	values.Set("name", location)
	values.Set("count", "1")
	values.Set("language", "en")
	values.Set("format", "json")

	var payload struct {
		Results []Place `json:"results"`
	}
	if err := c.getJSON(ctx, c.geocodeURL+"/search?"+values.Encode(), &payload); err != nil {
		return Place{}, fmt.Errorf("%w: %v", ErrGeocodingFailed, err)
	}
	if len(payload.Results) == 0 {
		return Place{}, fmt.Errorf("%w: %q", ErrLocationNotFound, location)
	}
	return payload.Results[0], nil
}

// ReverseGeocode looks up a display name for coordinates. Callers treat
// failures as best-effort and keep the coordinates as the name.
func (c *OpenMeteoClient) ReverseGeocode(ctx context.Context, lat, lon float64) (Place, error) {
	values := url.Values{}
	values.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	values.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	values.Set("count", "1")
	values.Set("language", "en")
	values.Set("format", "json")

	var payload struct {
		Results []Place `json:"results"`
	}
	if err := c.getJSON(ctx, c.geocodeURL+"/reverse?"+values.Encode(), &payload); err != nil {
		return Place{}, err
	}
	if len(payload.Results) == 0 {
		return Place{}, ErrLocationNotFound
	}
	p := payload.Results[0]
	p.Latitude = lat
	p.Longitude = lon
	return p, nil
}

// Observations fetches hourly temperatures, daily precipitation sums and
// current conditions for the past six days plus today.
func (c *OpenMeteoClient) Observations(ctx context.Context, lat, lon float64) (observations, error) {
	values := url.Values{}
	values.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	values.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	values.Set("timezone", "auto")
	values.Set("current", "temperature_2m,relative_humidity_2m,wind_speed_10m")
	values.Set("hourly", "temperature_2m")
	values.Set("daily", "precipitation_sum")
	values.Set("past_days", "6")
	values.Set("forecast_days", "1")

	var obs observations
	if err := c.getJSON(ctx, c.forecastURL+"?"+values.Encode(), &obs); err != nil {
		return observations{}, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	return obs, nil
}

func (c *OpenMeteoClient) getJSON(ctx context.Context, u string, out any) error {
	_, err := c.circuit.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		}
		return nil, json.NewDecoder(resp.Body).Decode(out)
	})
	return err
}
