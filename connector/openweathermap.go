package connector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// OpenWeatherMapOptions configure the weather client.
type OpenWeatherMapOptions struct {
	BaseURL    string
	Units      string
	HTTPClient *http.Client
}

// OpenWeatherMap implements WeatherProvider against the OpenWeatherMap
// data API.
type OpenWeatherMap struct {
	apiKey string
	opts   OpenWeatherMapOptions
}

// NewOpenWeatherMap constructs a weather client with a bounded HTTP timeout.
func NewOpenWeatherMap(apiKey string, optFns ...func(o *OpenWeatherMapOptions)) *OpenWeatherMap {
	opts := OpenWeatherMapOptions{
		BaseURL:    "https://api.openweathermap.org/data/2.5",
		Units:      "imperial",
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &OpenWeatherMap{apiKey: apiKey, opts: opts}
}

// Current implements WeatherProvider.
func (w *OpenWeatherMap) Current(ctx context.Context, lat, lon string) (map[string]any, error) {
	return w.fetch(ctx, "weather", lat, lon)
}

// Forecast implements WeatherProvider.
func (w *OpenWeatherMap) Forecast(ctx context.Context, lat, lon string) (map[string]any, error) {
	return w.fetch(ctx, "forecast", lat, lon)
}

func (w *OpenWeatherMap) fetch(ctx context.Context, endpoint, lat, lon string) (map[string]any, error) {
	q := url.Values{}
	q.Set("lat", lat)
	q.Set("lon", lon)
	q.Set("appid", w.apiKey)
	q.Set("units", w.opts.Units)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/%s?%s", w.opts.BaseURL, endpoint, q.Encode()), nil)
	if err != nil {
		return nil, err
	}
	resp, err := w.opts.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather request failed with status %d", resp.StatusCode)
	}
	var data map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode weather response: %w", err)
	}
	return data, nil
}
