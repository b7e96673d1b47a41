package weather

import (
	"context"
	"fmt"

	"github.com/kelvins/geocoder"
)

// DirectSource answers weather queries by calling the geocoding and forecast
// providers itself.
type DirectSource struct {
	client          *OpenMeteoClient
	geocoderKey     string
	defaultLocation string
}

func NewDirectSource(client *OpenMeteoClient, geocoderKey, defaultLocation string) *DirectSource {
	return &DirectSource{
		client:          client,
		geocoderKey:     geocoderKey,
		defaultLocation: defaultLocation,
	}
}

func (s *DirectSource) Name() string { return "direct" }

func (s *DirectSource) Resolve(ctx context.Context, q Query) (Summary, error) {
	var place Place
	if q.Latitude != nil && q.Longitude != nil {
		place = s.displayPlace(ctx, *q.Latitude, *q.Longitude)
	} else {
		location := q.Location
		if location == "" {
			location = s.defaultLocation
		}
		p, err := s.client.Geocode(ctx, location)
		if err != nil {
			return Summary{}, err
		}
		place = p
	}

	obs, err := s.client.Observations(ctx, place.Latitude, place.Longitude)
	if err != nil {
		return Summary{}, err
	}

	m := derive(obs)
	return Summary{
		Location:       place,
		RainfallMmWeek: m.RainfallMmWeek,
		AvgTempC:       m.AvgTempC,
		HumidityPct:    m.HumidityPct,
		WindKmh:        m.WindKmh,
	}, nil
}

// displayPlace enriches explicit coordinates with a reverse-geocoded name.
// This is best-effort: any failure keeps the coordinates as the name.
func (s *DirectSource) displayPlace(ctx context.Context, lat, lon float64) Place {
	if s.geocoderKey != "" {
		if p, err := s.reverseGeocodeGoogle(lat, lon); err == nil {
			return p
		}
	}
	if p, err := s.client.ReverseGeocode(ctx, lat, lon); err == nil {
		return p
	}
	return Place{
		Name:      fmt.Sprintf("%.2f, %.2f", lat, lon),
		Latitude:  lat,
		Longitude: lon,
	}
}

func (s *DirectSource) reverseGeocodeGoogle(lat, lon float64) (Place, error) {
	geocoder.ApiKey = s.geocoderKey
	addresses, err := geocoder.GeocodingReverse(geocoder.Location{Latitude: lat, Longitude: lon})
	if err != nil {
		return Place{}, err
	}
	if len(addresses) == 0 {
		return Place{}, ErrLocationNotFound
	}

	addr := addresses[0]
	name := addr.City
	if name == "" {
		name = addr.State
	}
	if name == "" {
		return Place{}, ErrLocationNotFound
	}
	return Place{
		Name:      name,
		Latitude:  lat,
		Longitude: lon,
		Country:   addr.Country,
	}, nil
}
