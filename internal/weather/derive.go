package weather

import (
	"github.com/agrisense/agri-market-data/internal/common"
)

// observations mirrors the provider's forecast response. Arrays and current
// fields are kept loosely typed because the upstream mixes numbers with
// nulls; coercion happens in derive.
type observations struct {
	Daily struct {
		PrecipitationSum []any `json:"precipitation_sum"`
	} `json:"daily"`
	Hourly struct {
		Temperature2m []any `json:"temperature_2m"`
	} `json:"hourly"`
	Current struct {
		Temperature2m      any `json:"temperature_2m"`
		RelativeHumidity2m any `json:"relative_humidity_2m"`
		WindSpeed10m       any `json:"wind_speed_10m"`
	} `json:"current"`
}

// metrics holds the four derived scalars of a Summary.
type metrics struct {
	RainfallMmWeek float64
	AvgTempC       float64
	HumidityPct    float64
	WindKmh        float64
}

// derive reduces provider observations to the four weekly metrics. The same
// derivation runs regardless of which source served the raw data.
func derive(obs observations) metrics {
	var rainfall float64
	for _, v := range obs.Daily.PrecipitationSum {
		rainfall += common.NumberOrZero(v)
	}
	rainfall = common.Round1(rainfall)

	var avgTemp float64
	if n := len(obs.Hourly.Temperature2m); n > 0 {
		var sum float64
		for _, v := range obs.Hourly.Temperature2m {
			sum += common.NumberOrZero(v)
		}
		avgTemp = common.Round1(sum / float64(n))
	} else {
		// No hourly samples; pass the current temperature through as given.
		avgTemp = common.NumberOrZero(obs.Current.Temperature2m)
	}

	humidity := common.NumberOrZero(obs.Current.RelativeHumidity2m)

	// Provider reports wind in m/s.
	wind := common.Round1(common.NumberOrZero(obs.Current.WindSpeed10m) * 3.6)

	return metrics{
		RainfallMmWeek: rainfall,
		AvgTempC:       avgTemp,
		HumidityPct:    humidity,
		WindKmh:        wind,
	}
}
