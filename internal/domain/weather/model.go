package weather

import "math"

// Reading is a normalized current-weather observation. Celsius is canonical.
type Reading struct {
	LocationName         string  `json:"locationName"`
	CountryCode          string  `json:"countryCode"`
	TemperatureCelsius   float64 `json:"temperatureCelsius"`
	HumidityPercent      float64 `json:"humidityPercent"`
	WindSpeedMps         float64 `json:"windSpeedMps"`
	ConditionDescription string  `json:"conditionDescription"`
}

// Place is a single geocoding match.
type Place struct {
	Name    string  `json:"name"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// CelsiusDisplay rounds the temperature for presentation.
func (r Reading) CelsiusDisplay() int {
	return roundHalfUp(r.TemperatureCelsius)
}

// FahrenheitDisplay converts and rounds for presentation only.
func (r Reading) FahrenheitDisplay() int {
	return roundHalfUp(CelsiusToFahrenheit(r.TemperatureCelsius))
}

// CelsiusToFahrenheit converts without rounding.
func CelsiusToFahrenheit(celsius float64) float64 {
	return celsius*9/5 + 32
}

// roundHalfUp rounds .5 towards positive infinity, so -2.5 becomes -2.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

