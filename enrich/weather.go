package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/poiesic/itinera/core"
)

const (
	defaultForecastURL = "https://api.open-meteo.com/v1/forecast"
	defaultGeocodeURL  = "https://geocoding-api.open-meteo.com/v1/search"

	// open-meteo serves forecasts at most this many days ahead.
	forecastHorizonDays = 16

	geocodeCacheTTL = 24 * time.Hour
)

// OpenMeteoWeather is a WeatherProvider backed by the open-meteo.com APIs.
// Geocoding results are cached so repeated queries for the same destination
// cost one lookup.
type OpenMeteoWeather struct {
	client      *http.Client
	forecastURL string
	geocodeURL  string
	geocodes    *cache.Cache
	logger      *slog.Logger
}

var _ WeatherProvider = (*OpenMeteoWeather)(nil)

// WeatherOption configures an OpenMeteoWeather.
type WeatherOption func(*OpenMeteoWeather)

// WithWeatherHTTPClient sets the HTTP client used for API calls.
func WithWeatherHTTPClient(client *http.Client) WeatherOption {
	return func(w *OpenMeteoWeather) {
		if client != nil {
			w.client = client
		}
	}
}

// WithWeatherBaseURLs overrides the forecast and geocoding endpoints.
// Intended for tests.
func WithWeatherBaseURLs(forecastURL, geocodeURL string) WeatherOption {
	return func(w *OpenMeteoWeather) {
		if forecastURL != "" {
			w.forecastURL = forecastURL
		}
		if geocodeURL != "" {
			w.geocodeURL = geocodeURL
		}
	}
}

// WithWeatherLogger sets a custom logger.
// Default is slog.Default().
func WithWeatherLogger(logger *slog.Logger) WeatherOption {
	return func(w *OpenMeteoWeather) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// NewOpenMeteoWeather creates a weather provider backed by open-meteo.com.
func NewOpenMeteoWeather(opts ...WeatherOption) *OpenMeteoWeather {
	w := &OpenMeteoWeather{
		client:      &http.Client{Timeout: 10 * time.Second},
		forecastURL: defaultForecastURL,
		geocodeURL:  defaultGeocodeURL,
		geocodes:    cache.New(geocodeCacheTTL, geocodeCacheTTL),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

type geocodeResult struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Name      string  `json:"name"`
	Country   string  `json:"country"`
}

type geocodeResponse struct {
	Results []geocodeResult `json:"results"`
}

type forecastResponse struct {
	Daily struct {
		Time             []string  `json:"time"`
		WeatherCode      []int     `json:"weather_code"`
		TemperatureMax   []float64 `json:"temperature_2m_max"`
		TemperatureMin   []float64 `json:"temperature_2m_min"`
		PrecipitationSum []float64 `json:"precipitation_sum"`
	} `json:"daily"`
}

// Forecast implements WeatherProvider. Destinations that cannot be geocoded
// and stays beyond the forecast horizon yield (nil, nil).
func (w *OpenMeteoWeather) Forecast(ctx context.Context, destination string, checkIn, checkOut time.Time) ([]core.DayForecast, error) {
	if destination == "" || checkIn.IsZero() {
		return nil, nil
	}

	horizon := time.Now().UTC().AddDate(0, 0, forecastHorizonDays)
	if checkIn.After(horizon) {
		return nil, nil
	}
	if checkOut.IsZero() || checkOut.Before(checkIn) {
		checkOut = checkIn
	}
	if checkOut.After(horizon) {
		checkOut = horizon
	}

	place, err := w.geocode(ctx, destination)
	if err != nil {
		return nil, err
	}
	if place == nil {
		w.logger.Debug("destination not geocodable", "destination", destination)
		return nil, nil
	}

	params := url.Values{}
	params.Set("latitude", fmt.Sprintf("%.4f", place.Latitude))
	params.Set("longitude", fmt.Sprintf("%.4f", place.Longitude))
	params.Set("daily", "weather_code,temperature_2m_max,temperature_2m_min,precipitation_sum")
	params.Set("timezone", "auto")
	params.Set("start_date", checkIn.Format("2006-01-02"))
	params.Set("end_date", checkOut.Format("2006-01-02"))

	var resp forecastResponse
	if err := w.getJSON(ctx, w.forecastURL+"?"+params.Encode(), &resp); err != nil {
		return nil, err
	}

	days := make([]core.DayForecast, 0, len(resp.Daily.Time))
	for i, day := range resp.Daily.Time {
		date, parseErr := time.Parse("2006-01-02", day)
		if parseErr != nil {
			continue
		}
		forecast := core.DayForecast{Date: date}
		if i < len(resp.Daily.WeatherCode) {
			forecast.WeatherCode = resp.Daily.WeatherCode[i]
			forecast.Description = describeWeatherCode(resp.Daily.WeatherCode[i])
		}
		if i < len(resp.Daily.TemperatureMax) {
			forecast.TempMax = resp.Daily.TemperatureMax[i]
		}
		if i < len(resp.Daily.TemperatureMin) {
			forecast.TempMin = resp.Daily.TemperatureMin[i]
		}
		if i < len(resp.Daily.PrecipitationSum) {
			forecast.Precipitation = resp.Daily.PrecipitationSum[i]
		}
		days = append(days, forecast)
	}
	if len(days) == 0 {
		return nil, nil
	}
	return days, nil
}

func (w *OpenMeteoWeather) geocode(ctx context.Context, destination string) (*geocodeResult, error) {
	if cached, ok := w.geocodes.Get(destination); ok {
		if place, ok := cached.(*geocodeResult); ok {
			return place, nil
		}
	}

	params := url.Values{}
	params.Set("name", destination)
	params.Set("count", "1")
	params.Set("language", "en")
	params.Set("format", "json")

	var resp geocodeResponse
	if err := w.getJSON(ctx, w.geocodeURL+"?"+params.Encode(), &resp); err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		// Cache the miss too, a bad destination stays bad.
		w.geocodes.Set(destination, (*geocodeResult)(nil), cache.DefaultExpiration)
		return nil, nil
	}

	place := &resp.Results[0]
	w.geocodes.Set(destination, place, cache.DefaultExpiration)
	return place, nil
}

func (w *OpenMeteoWeather) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %d from %s", ErrUnexpectedStatus, resp.StatusCode, rawURL)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

// describeWeatherCode translates WMO weather interpretation codes into a
// short phrase the response generator can use directly.
func describeWeatherCode(code int) string {
	switch {
	case code == 0:
		return "clear sky"
	case code <= 3:
		return "partly cloudy"
	case code == 45 || code == 48:
		return "foggy"
	case code >= 51 && code <= 57:
		return "drizzle"
	case code >= 61 && code <= 67:
		return "rain"
	case code >= 71 && code <= 77:
		return "snow"
	case code >= 80 && code <= 82:
		return "rain showers"
	case code == 85 || code == 86:
		return "snow showers"
	case code >= 95:
		return "thunderstorm"
	default:
		return "mixed conditions"
	}
}
