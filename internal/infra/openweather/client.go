package openweather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/yanqian/skycast/internal/domain/weather"
	apperrors "github.com/yanqian/skycast/pkg/errors"
)

const (
	defaultBaseURL = "https://api.openweathermap.org"
	currentPath    = "/data/2.5/weather"
	geocodePath    = "/geo/1.0/direct"
	maxBodyBytes   = 1 << 20

	// Readings are stored in Celsius, so the unit system is fixed.
	metricUnits = "metric"
)

// Config holds the OpenWeather connection settings.
type Config struct {
	BaseURL            string
	APIKey             string
	Timeout            time.Duration
	BreakerMaxFailures uint32
	BreakerOpenTimeout time.Duration
}

// Client talks to the OpenWeather current weather and geocoding APIs.
// Every call is a single request; the breaker only short-circuits while open.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
}

// NewClient builds an API client.
func NewClient(cfg Config) *Client {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	maxFailures := cfg.BreakerMaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}
	return &Client{
		baseURL: strings.TrimRight(base, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "openweather",
			Timeout: cfg.BreakerOpenTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= maxFailures
			},
		}),
	}
}

// CurrentByCoordinates fetches current weather for a coordinate pair.
func (c *Client) CurrentByCoordinates(ctx context.Context, lat, lon float64) (weather.Reading, error) {
	params := url.Values{}
	params.Set("lat", formatCoordinate(lat))
	params.Set("lon", formatCoordinate(lon))
	params.Set("units", metricUnits)

	var payload currentResponse
	if err := c.getJSON(ctx, currentPath, params, &payload); err != nil {
		return weather.Reading{}, err
	}
	return payload.toReading(), nil
}

// Geocode resolves a free-text place name to at most limit matches.
func (c *Client) Geocode(ctx context.Context, query string, limit int) ([]weather.Place, error) {
	if limit <= 0 {
		limit = 1
	}
	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))

	var payload []geocodeEntry
	if err := c.getJSON(ctx, geocodePath, params, &payload); err != nil {
		return nil, err
	}
	places := make([]weather.Place, 0, len(payload))
	for _, entry := range payload {
		places = append(places, weather.Place{
			Name:    entry.Name,
			Country: entry.Country,
			Lat:     entry.Lat,
			Lon:     entry.Lon,
		})
	}
	return places, nil
}

type upstreamResponse struct {
	status int
	body   []byte
}

type statusError struct {
	status int
	body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("openweather status=%d body=%s", e.status, e.body)
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	if strings.TrimSpace(c.apiKey) == "" {
		return apperrors.Wrap(apperrors.CodeFetchFailed, "weather api key is not configured", nil)
	}
	params.Set("appid", c.apiKey)
	endpoint := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeFetchFailed, "Network Error", fmt.Errorf("build openweather request: %w", err))
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return nil, err
		}
		// Only upstream trouble counts against the breaker; 4xx is the caller's problem.
		if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
			return nil, &statusError{status: resp.StatusCode, body: truncate(body)}
		}
		return upstreamResponse{status: resp.StatusCode, body: body}, nil
	})
	if err != nil {
		return classify(err)
	}

	res := result.(upstreamResponse)
	if res.status < 200 || res.status >= 300 {
		return requestFailed(&statusError{status: res.status, body: truncate(res.body)})
	}
	if err := json.Unmarshal(res.body, out); err != nil {
		return apperrors.Wrap(apperrors.CodeFetchFailed, "Unexpected response from weather service", fmt.Errorf("decode openweather response: %w", err))
	}
	return nil
}

func classify(err error) error {
	var se *statusError
	switch {
	case errors.As(err, &se):
		return requestFailed(se)
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return apperrors.Wrap(apperrors.CodeFetchFailed, "Weather service temporarily unavailable", err)
	default:
		return apperrors.Wrap(apperrors.CodeFetchFailed, "Network Error", err)
	}
}

func requestFailed(se *statusError) error {
	return apperrors.Wrap(apperrors.CodeFetchFailed, fmt.Sprintf("Request failed with status code %d", se.status), se)
}

func truncate(body []byte) string {
	const limit = 4 << 10
	if len(body) > limit {
		body = body[:limit]
	}
	return string(body)
}

func formatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

type currentResponse struct {
	Name string `json:"name"`
	Sys  struct {
		Country string `json:"country"`
	} `json:"sys"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity float64 `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
}

func (r currentResponse) toReading() weather.Reading {
	description := ""
	if len(r.Weather) > 0 {
		description = r.Weather[0].Description
	}
	return weather.Reading{
		LocationName:         r.Name,
		CountryCode:          r.Sys.Country,
		TemperatureCelsius:   r.Main.Temp,
		HumidityPercent:      r.Main.Humidity,
		WindSpeedMps:         r.Wind.Speed,
		ConditionDescription: description,
	}
}

type geocodeEntry struct {
	Name    string  `json:"name"`
	Country string  `json:"country"`
	State   string  `json:"state"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

var _ weather.Provider = (*Client)(nil)
