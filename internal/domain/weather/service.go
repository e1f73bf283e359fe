package weather

import (
	"context"
	"log/slog"
	"math"
	"strings"

	apperrors "github.com/yanqian/skycast/pkg/errors"
)

// CityNotFoundMessage is shown when geocoding returns no match.
const CityNotFoundMessage = "City not found"

// Service resolves current weather for coordinates or a city name.
type Service interface {
	FetchByCoordinates(ctx context.Context, lat, lon float64) (Reading, error)
	FetchByCityName(ctx context.Context, name string) (Reading, error)
}

// Provider is the upstream weather API.
type Provider interface {
	CurrentByCoordinates(ctx context.Context, lat, lon float64) (Reading, error)
	Geocode(ctx context.Context, query string, limit int) ([]Place, error)
}

type service struct {
	provider Provider
	logger   *slog.Logger
}

// NewService wires up the weather fetcher.
func NewService(provider Provider, logger *slog.Logger) Service {
	return &service{
		provider: provider,
		logger:   logger.With("component", "weather.service"),
	}
}

func (s *service) FetchByCoordinates(ctx context.Context, lat, lon float64) (Reading, error) {
	if err := validateCoordinates(lat, lon); err != nil {
		return Reading{}, err
	}
	reading, err := s.provider.CurrentByCoordinates(ctx, lat, lon)
	if err != nil {
		s.logger.Warn("current weather request failed", "lat", lat, "lon", lon, "error", err)
		return Reading{}, asFetchError(err)
	}
	s.logger.Info("current weather fetched", "location", reading.LocationName, "country", reading.CountryCode)
	return reading, nil
}

func (s *service) FetchByCityName(ctx context.Context, name string) (Reading, error) {
	query := strings.TrimSpace(name)
	if query == "" {
		return Reading{}, apperrors.Wrap(apperrors.CodeInvalidInput, "city name cannot be empty", nil)
	}
	places, err := s.provider.Geocode(ctx, query, 1)
	if err != nil {
		s.logger.Warn("geocoding request failed", "query", query, "error", err)
		return Reading{}, asFetchError(err)
	}
	if len(places) == 0 {
		s.logger.Info("geocoding returned no match", "query", query)
		return Reading{}, apperrors.Wrap(apperrors.CodeCityNotFound, CityNotFoundMessage, nil)
	}
	first := places[0]
	return s.FetchByCoordinates(ctx, first.Lat, first.Lon)
}

func validateCoordinates(lat, lon float64) error {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "coordinates must be numbers", nil)
	}
	if lat < -90 || lat > 90 {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "latitude must be between -90 and 90", nil)
	}
	if lon < -180 || lon > 180 {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "longitude must be between -180 and 180", nil)
	}
	return nil
}

// asFetchError keeps coded provider errors and folds anything else into fetch_failed.
func asFetchError(err error) error {
	if apperrors.CodeOf(err) != "" {
		return err
	}
	return apperrors.Wrap(apperrors.CodeFetchFailed, "Network Error", err)
}
