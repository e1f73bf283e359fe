package weather

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/skycast/pkg/errors"
)

func TestServiceFetchByCityNameParis(t *testing.T) {
	provider := &stubProvider{
		places: []Place{{Name: "Paris", Country: "FR", Lat: 48.85, Lon: 2.35}},
		reading: Reading{
			LocationName:         "Paris",
			CountryCode:          "FR",
			TemperatureCelsius:   15,
			HumidityPercent:      60,
			WindSpeedMps:         3,
			ConditionDescription: "clear sky",
		},
	}
	svc := NewService(provider, newTestLogger())

	reading, err := svc.FetchByCityName(context.Background(), "  Paris ")
	require.NoError(t, err)
	require.Equal(t, "Paris", provider.lastQuery)
	require.Equal(t, 1, provider.lastLimit)
	require.Equal(t, 48.85, provider.lastLat)
	require.Equal(t, 2.35, provider.lastLon)
	require.Equal(t, "Paris", reading.LocationName)
	require.Equal(t, 15, reading.CelsiusDisplay())
	require.Equal(t, 59, reading.FahrenheitDisplay())
	require.Equal(t, "clear sky", reading.ConditionDescription)
}

func TestServiceFetchByCityNameNotFoundSkipsWeather(t *testing.T) {
	provider := &stubProvider{}
	svc := NewService(provider, newTestLogger())

	_, err := svc.FetchByCityName(context.Background(), "Atlantis")
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.CodeCityNotFound))
	require.Equal(t, CityNotFoundMessage, apperrors.MessageOf(err))
	require.Equal(t, 0, provider.weatherCalls)
}

func TestServiceFetchByCityNameBlank(t *testing.T) {
	provider := &stubProvider{}
	svc := NewService(provider, newTestLogger())

	_, err := svc.FetchByCityName(context.Background(), "   ")
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
	require.Equal(t, 0, provider.geocodeCalls)
}

func TestServiceFetchByCoordinatesKeepsRawCelsius(t *testing.T) {
	provider := &stubProvider{reading: Reading{LocationName: "Oslo", TemperatureCelsius: -2.5}}
	svc := NewService(provider, newTestLogger())

	reading, err := svc.FetchByCoordinates(context.Background(), 59.91, 10.75)
	require.NoError(t, err)
	require.Equal(t, -2.5, reading.TemperatureCelsius)
	require.Equal(t, -2, reading.CelsiusDisplay())
	require.Equal(t, 28, reading.FahrenheitDisplay())
}

func TestServiceFetchByCoordinatesRejectsOutOfRange(t *testing.T) {
	provider := &stubProvider{}
	svc := NewService(provider, newTestLogger())

	_, err := svc.FetchByCoordinates(context.Background(), 91, 0)
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
	_, err = svc.FetchByCoordinates(context.Background(), 0, -181)
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
	require.Equal(t, 0, provider.weatherCalls)
}

func TestServiceWrapsUncodedProviderErrors(t *testing.T) {
	provider := &stubProvider{weatherErr: errors.New("dial tcp: connection refused")}
	svc := NewService(provider, newTestLogger())

	_, err := svc.FetchByCoordinates(context.Background(), 1, 1)
	require.True(t, apperrors.IsCode(err, apperrors.CodeFetchFailed))
	require.Equal(t, "Network Error", apperrors.MessageOf(err))
}

func TestServiceKeepsCodedProviderErrors(t *testing.T) {
	provider := &stubProvider{geocodeErr: apperrors.Wrap(apperrors.CodeFetchFailed, "Request failed with status code 401", nil)}
	svc := NewService(provider, newTestLogger())

	_, err := svc.FetchByCityName(context.Background(), "Paris")
	require.Equal(t, "Request failed with status code 401", apperrors.MessageOf(err))
}

func TestFahrenheitConversion(t *testing.T) {
	cases := []struct {
		celsius float64
		want    int
	}{
		{celsius: 0, want: 32},
		{celsius: 100, want: 212},
		{celsius: 15, want: 59},
		{celsius: 21.3, want: 70},
		{celsius: -40, want: -40},
	}
	for _, tc := range cases {
		reading := Reading{TemperatureCelsius: tc.celsius}
		require.Equal(t, tc.want, reading.FahrenheitDisplay(), "celsius=%v", tc.celsius)
	}
	require.InDelta(t, 70.34, CelsiusToFahrenheit(21.3), 1e-9)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubProvider struct {
	places     []Place
	reading    Reading
	geocodeErr error
	weatherErr error

	geocodeCalls int
	weatherCalls int
	lastQuery    string
	lastLimit    int
	lastLat      float64
	lastLon      float64
}

func (s *stubProvider) CurrentByCoordinates(ctx context.Context, lat, lon float64) (Reading, error) {
	s.weatherCalls++
	s.lastLat, s.lastLon = lat, lon
	if s.weatherErr != nil {
		return Reading{}, s.weatherErr
	}
	return s.reading, nil
}

func (s *stubProvider) Geocode(ctx context.Context, query string, limit int) ([]Place, error) {
	s.geocodeCalls++
	s.lastQuery, s.lastLimit = query, limit
	if s.geocodeErr != nil {
		return nil, s.geocodeErr
	}
	return s.places, nil
}
