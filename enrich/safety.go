package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/poiesic/itinera/core"
)

const defaultCountriesURL = "https://restcountries.com/v3.1/name"

// RestCountriesSafety is a SafetyProvider backed by restcountries.com.
// It resolves a destination to country facts; destinations the API does not
// recognize (city names, typos) yield an absent advisory rather than an error.
type RestCountriesSafety struct {
	client       *http.Client
	countriesURL string
	logger       *slog.Logger
}

var _ SafetyProvider = (*RestCountriesSafety)(nil)

// SafetyOption configures a RestCountriesSafety.
type SafetyOption func(*RestCountriesSafety)

// WithSafetyHTTPClient sets the HTTP client used for API calls.
func WithSafetyHTTPClient(client *http.Client) SafetyOption {
	return func(s *RestCountriesSafety) {
		if client != nil {
			s.client = client
		}
	}
}

// WithSafetyBaseURL overrides the countries endpoint. Intended for tests.
func WithSafetyBaseURL(countriesURL string) SafetyOption {
	return func(s *RestCountriesSafety) {
		if countriesURL != "" {
			s.countriesURL = countriesURL
		}
	}
}

// WithSafetyLogger sets a custom logger.
// Default is slog.Default().
func WithSafetyLogger(logger *slog.Logger) SafetyOption {
	return func(s *RestCountriesSafety) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewRestCountriesSafety creates a safety provider backed by restcountries.com.
func NewRestCountriesSafety(opts ...SafetyOption) *RestCountriesSafety {
	s := &RestCountriesSafety{
		client:       &http.Client{Timeout: 10 * time.Second},
		countriesURL: defaultCountriesURL,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type countryResponse struct {
	Name struct {
		Common string `json:"common"`
	} `json:"name"`
	Region     string   `json:"region"`
	Capital    []string `json:"capital"`
	Currencies map[string]struct {
		Name string `json:"name"`
	} `json:"currencies"`
	Languages map[string]string `json:"languages"`
}

// Advisory implements SafetyProvider. A 404 from the API means the
// destination is not a country name and yields (nil, nil).
func (s *RestCountriesSafety) Advisory(ctx context.Context, destination string) (*core.SafetyInfo, error) {
	if destination == "" {
		return nil, nil
	}

	endpoint := s.countriesURL + "/" + url.PathEscape(destination) +
		"?fields=name,region,capital,currencies,languages"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		s.logger.Debug("destination is not a known country", "destination", destination)
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d from countries api", ErrUnexpectedStatus, resp.StatusCode)
	}

	var countries []countryResponse
	if err := json.NewDecoder(resp.Body).Decode(&countries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(countries) == 0 {
		return nil, nil
	}

	country := countries[0]
	info := &core.SafetyInfo{
		Country: country.Name.Common,
		Region:  country.Region,
	}
	if len(country.Capital) > 0 {
		info.Capital = country.Capital[0]
	}
	for code := range country.Currencies {
		info.Currency = code
		break
	}
	for _, language := range country.Languages {
		info.Languages = append(info.Languages, language)
	}
	info.Tips = safetyTips(info.Country)

	return info, nil
}

func safetyTips(country string) []string {
	tips := []string{
		"Keep digital copies of your passport and reservations.",
		"Check your government's current travel advice before departure.",
	}
	if country != "" {
		tips = append(tips, fmt.Sprintf("Confirm visa and entry requirements for %s.", country))
	}
	return tips
}
