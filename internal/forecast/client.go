// Package forecast calls the external price-forecast service and normalizes
// its loosely-shaped replies into one canonical Forecast.
package forecast

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
)

var (
	// ErrNotConfigured is returned when no forecast endpoint is set.
	ErrNotConfigured = errors.New("forecast service is not configured")

	// ErrMalformedResponse is returned when the upstream body cannot be
	// parsed as JSON, even after one re-parse of the raw text.
	ErrMalformedResponse = errors.New("malformed forecast response")
)

// RequestError reports a failed upstream request. Status is 0 for transport
// errors.
type RequestError struct {
	Status int
	cause  error
}

func (e *RequestError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("forecast request failed: %v", e.cause)
	}
	return fmt.Sprintf("forecast request failed: status %d", e.Status)
}

func (e *RequestError) Unwrap() error { return e.cause }

// Bounds is the historical price range attached to a forecast.
type Bounds struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Forecast is the canonical shape returned to callers regardless of the
// upstream response shape.
type Forecast struct {
	Commodity   string    `json:"commodity"`
	Steps       int       `json:"steps"`
	Predictions []float64 `json:"predictions"`
	PriceBounds *Bounds   `json:"priceBounds,omitempty"`
}

// Request carries the caller's forecast inputs. Zero Steps means the default
// horizon of 7.
type Request struct {
	Steps     int    `json:"steps"`
	Commodity string `json:"commodity"`
	State     string `json:"state"`
	District  string `json:"district"`
	Market    string `json:"market,omitempty"`
	Variety   string `json:"variety"`
	Grade     string `json:"grade"`
	DateISO   string `json:"dateISO,omitempty"`
}

// wireRequest is the JSON body sent upstream. Date is the plain YYYY-MM-DD
// form of DateISO; both are included for older server versions.
type wireRequest struct {
	Request
	Date string `json:"date,omitempty"`
}

const defaultSteps = 7

// Client posts forecast requests to a primary endpoint with one sibling
// fallback path. Failures are surfaced, never papered over with synthetic
// numbers.
type Client struct {
	httpClient   *http.Client
	base         string
	fallbackPath string
	circuit      *gobreaker.CircuitBreaker
}

func NewClient(client *http.Client, base, fallbackPath string) *Client {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "forecast",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &Client{
		httpClient:   client,
		base:         strings.TrimRight(base, "/"),
		fallbackPath: fallbackPath,
		circuit:      cb,
	}
}

// Predict requests a forecast and normalizes the reply. The primary path is
// <base>/predict; when it fails (transport error or non-2xx), the configured
// fallback path is tried once before the failure is surfaced.
func (c *Client) Predict(ctx context.Context, req Request) (Forecast, error) {
	if c.base == "" {
		return Forecast{}, ErrNotConfigured
	}

	req = withDefaults(req)

	body, err := json.Marshal(wireRequest{
		Request: req,
		Date:    plainDate(req.DateISO),
	})
	if err != nil {
		return Forecast{}, err
	}

	endpoints := []string{c.base + "/predict"}
	if c.fallbackPath != "" {
		endpoints = append(endpoints, c.base+c.fallbackPath)
	}

	var lastErr error
	for _, endpoint := range endpoints {
		raw, err := c.post(ctx, endpoint, body)
		if err != nil {
			lastErr = err
			continue
		}
		return normalize(raw, req)
	}
	return Forecast{}, lastErr
}

func (c *Client) post(ctx context.Context, endpoint string, body []byte) ([]byte, error) {
	result, err := c.circuit.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, &RequestError{cause: err}
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, &RequestError{Status: resp.StatusCode}
		}
		return io.ReadAll(resp.Body)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &RequestError{cause: err}
		}
		return nil, err
	}
	return result.([]byte), nil
}

func withDefaults(req Request) Request {
	if req.Steps <= 0 {
		req.Steps = defaultSteps
	}
	if req.Commodity == "" {
		req.Commodity = "Onion"
	}
	if req.Grade == "" {
		req.Grade = "FAQ"
	}
	return req
}

// plainDate reduces an ISO timestamp to its YYYY-MM-DD prefix.
func plainDate(iso string) string {
	if len(iso) >= 10 {
		return iso[:10]
	}
	return iso
}

// Keys the upstream has been observed to use for the predicted series,
// probed in order.
var (
	arrayKeys  = []string{"predictions", "prices", "predicted"}
	scalarKeys = []string{"price", "prediction", "predicted_price"}
)

// normalize reduces an arbitrary upstream reply to a Forecast. A body that
// is not JSON is re-parsed once as a JSON-encoded string containing JSON
// before giving up.
func normalize(raw []byte, req Request) (Forecast, error) {
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return Forecast{}, ErrMalformedResponse
		}
		if err := json.Unmarshal([]byte(text), &payload); err != nil {
			return Forecast{}, ErrMalformedResponse
		}
	}

	predictions := probePredictions(payload)

	steps := req.Steps
	if v, ok := numberValue(payload["steps"]); ok {
		steps = int(v)
	} else if len(predictions) > 0 {
		steps = len(predictions)
	}

	commodity := req.Commodity
	if s, ok := payload["commodity"].(string); ok && s != "" {
		commodity = s
	}

	return Forecast{
		Commodity:   commodity,
		Steps:       steps,
		Predictions: predictions,
		PriceBounds: probeBounds(payload),
	}, nil
}

func probePredictions(payload map[string]any) []float64 {
	for _, key := range arrayKeys {
		arr, ok := payload[key].([]any)
		if !ok {
			continue
		}
		out := make([]float64, 0, len(arr))
		for _, v := range arr {
			n, _ := numberValue(v)
			out = append(out, n)
		}
		return out
	}
	for _, key := range scalarKeys {
		if v, ok := numberValue(payload[key]); ok {
			return []float64{v}
		}
	}
	return []float64{}
}

func probeBounds(payload map[string]any) *Bounds {
	m, ok := payload["priceBounds"].(map[string]any)
	if !ok {
		return nil
	}
	min, okMin := numberValue(m["min"])
	max, okMax := numberValue(m["max"])
	if !okMin || !okMax {
		return nil
	}
	return &Bounds{Min: min, Max: max}
}

func numberValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// DemoForecast produces a clearly synthetic curve for offline demos. It is
// only reachable when demo mode is enabled explicitly.
func DemoForecast(steps int) Forecast {
	if steps <= 0 {
		steps = defaultSteps
	}
	predictions := make([]float64, steps)
	for i := range predictions {
		predictions[i] = 40 + math.Sin(float64(i)*0.7)*2.5
	}
	return Forecast{Commodity: "Onion", Steps: steps, Predictions: predictions}
}
