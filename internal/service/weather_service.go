package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/weatherlookup/backend/internal/domain"
	"github.com/weatherlookup/backend/pkg/utils"
)

const (
	// DefaultBaseURL is the OpenWeatherMap API root
	DefaultBaseURL = "https://api.openweathermap.org"

	currentWeatherPath = "/data/2.5/weather"
	unitsMetric        = "metric"
	languagePtBR       = "pt_br"
)

// WeatherService fetches current conditions by city name
type WeatherService struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewWeatherService creates a new weather service.
// An empty baseURL falls back to DefaultBaseURL, a zero timeout to 10 seconds.
func NewWeatherService(apiKey, baseURL string, timeout time.Duration) *WeatherService {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WeatherService{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// OpenWeatherResponse represents the OpenWeatherMap current weather response
type OpenWeatherResponse struct {
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Main *struct {
		Temp      *float64 `json:"temp"`
		FeelsLike float64  `json:"feels_like"`
		TempMin   float64  `json:"temp_min"`
		TempMax   float64  `json:"temp_max"`
		Humidity  float64  `json:"humidity"`
	} `json:"main"`
	Wind *struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Name string `json:"name"`
	Sys  struct {
		Country string `json:"country"`
	} `json:"sys"`
}

// CurrentByCity fetches and maps current weather for a free-text location.
// A 404 from the provider yields domain.ErrLocationNotFound.
func (s *WeatherService) CurrentByCity(ctx context.Context, city string) (domain.WeatherView, error) {
	params := url.Values{}
	params.Set("q", city)
	params.Set("units", unitsMetric)
	params.Set("lang", languagePtBR)
	params.Set("appid", s.apiKey)

	endpoint := s.baseURL + currentWeatherPath + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.WeatherView{}, fmt.Errorf("weather: failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return domain.WeatherView{}, fmt.Errorf("weather: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		_, _ = io.Copy(io.Discard, resp.Body)
		return domain.WeatherView{}, domain.ErrLocationNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return domain.WeatherView{}, fmt.Errorf("weather: %w: status %d", domain.ErrUpstream, resp.StatusCode)
	}

	var owResp OpenWeatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&owResp); err != nil {
		return domain.WeatherView{}, fmt.Errorf("weather: %w: %v", domain.ErrMalformedResponse, err)
	}

	view, err := toWeatherView(owResp)
	if err != nil {
		return domain.WeatherView{}, fmt.Errorf("weather: %w", err)
	}
	return view, nil
}

// toWeatherView maps the provider DTO; only the first condition entry is used
func toWeatherView(r OpenWeatherResponse) (domain.WeatherView, error) {
	if len(r.Weather) == 0 {
		return domain.WeatherView{}, fmt.Errorf("%w: empty condition list", domain.ErrMalformedResponse)
	}
	if r.Main == nil || r.Wind == nil {
		return domain.WeatherView{}, fmt.Errorf("%w: missing main or wind", domain.ErrMalformedResponse)
	}
	if r.Main.Temp == nil {
		return domain.WeatherView{}, fmt.Errorf("%w: missing main.temp", domain.ErrMalformedResponse)
	}

	condition, err := domain.ParseCondition(r.Weather[0].Main)
	if err != nil {
		return domain.WeatherView{}, err
	}

	return domain.WeatherView{
		Condition:   condition,
		Description: r.Weather[0].Description,
		Temperature: domain.Temperature{
			Temp:      utils.RoundHalfAwayFromZero(*r.Main.Temp),
			FeelsLike: r.Main.FeelsLike,
			TempMin:   r.Main.TempMin,
			TempMax:   r.Main.TempMax,
		},
		Humidity:  utils.RoundHalfAwayFromZero(r.Main.Humidity),
		WindSpeed: r.Wind.Speed,
		City:      r.Name,
		Country:   r.Sys.Country,
	}, nil
}
