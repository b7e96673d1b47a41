package httpapi

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/agrisense/agri-market-data/internal/forecast"
	"github.com/agrisense/agri-market-data/internal/market"
	"github.com/agrisense/agri-market-data/internal/weather"
)

var validate = validator.New()

// ForecastClient is the forecast service dependency of the routes.
type ForecastClient interface {
	Predict(ctx context.Context, req forecast.Request) (forecast.Forecast, error)
}

// WeatherResolver is the weather dependency of the routes.
type WeatherResolver interface {
	Resolve(ctx context.Context, q weather.Query) (weather.Summary, error)
}

// Deps bundles what the handlers need.
type Deps struct {
	DataDir  string
	Forecast ForecastClient
	Weather  WeatherResolver

	// DemoMode answers forecasts with a labeled synthetic curve when the
	// forecast service is not configured. Never enabled in production.
	DemoMode bool
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Deps) {
	v1 := app.Group("/api/v1")

	v1.Get("/meta", func(c *fiber.Ctx) error {
		var q metaQuery
		if err := q.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		commodity, err := market.ParseCommodity(q.Commodity)
		if err != nil {
			return marketStatus(err)
		}
		scope, ok := market.ParseScope(q.Scope)
		if !ok {
			return fiber.NewError(fiber.StatusBadRequest, "invalid scope")
		}

		lines, err := market.LoadTable(deps.DataDir, commodity)
		if err != nil {
			return marketStatus(err)
		}

		result := market.AggregateUnique(lines, scope, market.Filter{
			State:    q.State,
			District: q.District,
		})
		result.Commodity = commodity
		return c.JSON(result)
	})

	// Legacy single-commodity endpoint: onion only, frequency-ranked items,
	// no commodity echoed. Kept alongside /meta because the ordering and
	// duplicate handling are observably different.
	v1.Get("/onion/meta", func(c *fiber.Ctx) error {
		scope, ok := market.ParseScope(c.Query("scope"))
		if !ok {
			return fiber.NewError(fiber.StatusBadRequest, "invalid scope")
		}

		lines, err := market.LoadTable(deps.DataDir, market.Onion)
		if err != nil {
			return marketStatus(err)
		}

		result := market.AggregateRanked(lines, scope, market.Filter{
			State:    c.Query("state"),
			District: c.Query("district"),
		})
		return c.JSON(result)
	})

	v1.Post("/forecast", func(c *fiber.Ctx) error {
		var body forecastBody
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		req := body.toRequest()
		fc, err := deps.Forecast.Predict(c.Context(), req)
		if err != nil {
			if errors.Is(err, forecast.ErrNotConfigured) {
				if deps.DemoMode {
					return c.JSON(forecast.DemoForecast(req.Steps))
				}
				return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
			}
			var reqErr *forecast.RequestError
			if errors.As(err, &reqErr) || errors.Is(err, forecast.ErrMalformedResponse) {
				return fiber.NewError(fiber.StatusBadGateway, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}

		enrichBounds(&fc, deps.DataDir)
		return c.JSON(fc)
	})

	v1.Get("/weather", func(c *fiber.Ctx) error {
		q, err := parseWeatherQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		summary, err := deps.Weather.Resolve(c.Context(), q)
		if err != nil {
			switch {
			case errors.Is(err, weather.ErrLocationNotFound):
				return fiber.NewError(fiber.StatusNotFound, err.Error())
			case errors.Is(err, weather.ErrGeocodingFailed),
				errors.Is(err, weather.ErrProviderUnavailable):
				return fiber.NewError(fiber.StatusBadGateway, err.Error())
			default:
				return fiber.NewError(fiber.StatusInternalServerError, err.Error())
			}
		}
		return c.JSON(summary)
	})
}

// marketStatus maps market package failures to HTTP statuses.
func marketStatus(err error) error {
	switch {
	case errors.Is(err, market.ErrInvalidCommodity):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, market.ErrEmptyDataset):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}

// enrichBounds fills in price bounds from the local table when the upstream
// omitted them. Best-effort: failures leave the forecast untouched.
func enrichBounds(fc *forecast.Forecast, dataDir string) {
	if fc.PriceBounds != nil {
		return
	}
	commodity, err := market.ParseCommodity(fc.Commodity)
	if err != nil {
		return
	}
	lines, err := market.LoadTable(dataDir, commodity)
	if err != nil {
		return
	}
	if min, max, ok := market.PriceBounds(lines); ok {
		fc.PriceBounds = &forecast.Bounds{Min: min, Max: max}
	}
}

// metaQuery holds query parameters for the metadata endpoint.
type metaQuery struct {
	Commodity string `validate:"required"`
	Scope     string
	State     string
	District  string
}

func (q *metaQuery) bind(c *fiber.Ctx) error {
	q.Commodity = c.Query("commodity")
	q.Scope = c.Query("scope")
	q.State = c.Query("state")
	q.District = c.Query("district")
	return validate.Struct(q)
}

// forecastBody is the request body for the forecast endpoint.
type forecastBody struct {
	Steps     int    `json:"steps" validate:"omitempty,min=0,max=30"`
	Commodity string `json:"commodity"`
	State     string `json:"state"`
	District  string `json:"district"`
	Market    string `json:"market"`
	Variety   string `json:"variety"`
	Grade     string `json:"grade"`
	DateISO   string `json:"dateISO"`
}

func (b forecastBody) toRequest() forecast.Request {
	return forecast.Request{
		Steps:     b.Steps,
		Commodity: b.Commodity,
		State:     b.State,
		District:  b.District,
		Market:    b.Market,
		Variety:   b.Variety,
		Grade:     b.Grade,
		DateISO:   b.DateISO,
	}
}

func parseWeatherQuery(c *fiber.Ctx) (weather.Query, error) {
	q := weather.Query{Location: strings.TrimSpace(c.Query("location"))}

	latStr := c.Query("latitude")
	lonStr := c.Query("longitude")
	if latStr == "" && lonStr == "" {
		return q, nil
	}

	lat, latErr := strconv.ParseFloat(latStr, 64)
	lon, lonErr := strconv.ParseFloat(lonStr, 64)
	if latErr == nil && lonErr == nil {
		q.Latitude = &lat
		q.Longitude = &lon
	}
	// A single or unparseable coordinate falls back to the location name.
	return q, nil
}
