package weather

import "testing"

func TestDeriveRainfallTreatsNonNumericAsZero(t *testing.T) {
	var obs observations
	obs.Daily.PrecipitationSum = []any{1.0, 2.25, 0.0, nil}

	m := derive(obs)
	if m.RainfallMmWeek != 3.3 {
		t.Fatalf("expected 3.3 (3.25 rounded to one decimal), got %v", m.RainfallMmWeek)
	}
}

func TestDeriveAverageTemperature(t *testing.T) {
	var obs observations
	obs.Hourly.Temperature2m = []any{20.0, 22.0}

	m := derive(obs)
	if m.AvgTempC != 21.0 {
		t.Fatalf("expected 21.0, got %v", m.AvgTempC)
	}
}

func TestDeriveFallsBackToCurrentTemperature(t *testing.T) {
	var obs observations
	obs.Current.Temperature2m = 18.37

	m := derive(obs)
	// The current-temperature fallback is passed through as given, unrounded.
	if m.AvgTempC != 18.37 {
		t.Fatalf("expected 18.37, got %v", m.AvgTempC)
	}
}

func TestDeriveWindConversion(t *testing.T) {
	var obs observations
	obs.Current.WindSpeed10m = 10.0

	m := derive(obs)
	if m.WindKmh != 36.0 {
		t.Fatalf("expected 36.0 km/h, got %v", m.WindKmh)
	}
}

func TestDeriveHumidityDefaultsToZero(t *testing.T) {
	var obs observations

	m := derive(obs)
	if m.HumidityPct != 0 {
		t.Fatalf("expected 0 for absent humidity, got %v", m.HumidityPct)
	}
}
