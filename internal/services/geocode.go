package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"weather-consensus/internal/models"
	"weather-consensus/pkg/client"
)

// ErrZipNotResolved and ErrNameNotResolved deliberately hide the upstream
// failure detail: the resolver has no retry and no fallback provider.
var (
	ErrZipNotResolved  = errors.New("unable to resolve location from zip code")
	ErrNameNotResolved = errors.New("unable to resolve location from name")
)

// OpenWeatherGeocoder resolves postal codes and place names through
// OpenWeather's geocoding API, reusing the OpenWeather key.
type OpenWeatherGeocoder struct {
	*client.BaseClient
	apiKey  string
	baseURL string
	logger  *zap.Logger
}

type geocodeZipResponse struct {
	Name    string  `json:"name"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

type geocodeDirectEntry struct {
	Name    string  `json:"name"`
	State   string  `json:"state"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

func NewOpenWeatherGeocoder(apiKey string, config client.ClientConfig, logger *zap.Logger) *OpenWeatherGeocoder {
	return &OpenWeatherGeocoder{
		BaseClient: client.NewBaseClient("openweather-geocode", config, logger),
		apiKey:     apiKey,
		baseURL:    "https://api.openweathermap.org/geo/1.0",
		logger:     logger,
	}
}

func (g *OpenWeatherGeocoder) ResolveZip(ctx context.Context, zipCode, country string) (models.Location, error) {
	if country == "" {
		country = "US"
	}
	if g.apiKey == "" {
		return models.Location{}, ErrZipNotResolved
	}

	reqURL := fmt.Sprintf("%s/zip?zip=%s&appid=%s",
		g.baseURL, url.QueryEscape(zipCode+","+country), g.apiKey)

	var payload geocodeZipResponse
	if err := g.GetJSON(ctx, reqURL, &payload); err != nil {
		g.logger.Warn("Zip code geocoding failed",
			zap.String("zip", zipCode),
			zap.String("country", country),
			zap.Error(err))
		return models.Location{}, ErrZipNotResolved
	}

	return models.Location{
		Name:    payload.Name,
		Country: payload.Country,
		Lat:     payload.Lat,
		Lon:     payload.Lon,
		ZipCode: zipCode,
	}, nil
}

func (g *OpenWeatherGeocoder) ResolveName(ctx context.Context, name, country string) (models.Location, error) {
	if country == "" {
		country = "US"
	}
	if g.apiKey == "" {
		return models.Location{}, ErrNameNotResolved
	}

	reqURL := fmt.Sprintf("%s/direct?q=%s&limit=1&appid=%s",
		g.baseURL, url.QueryEscape(name+","+country), g.apiKey)

	var entries []geocodeDirectEntry
	if err := g.GetJSON(ctx, reqURL, &entries); err != nil {
		g.logger.Warn("Name geocoding failed",
			zap.String("name", name),
			zap.String("country", country),
			zap.Error(err))
		return models.Location{}, ErrNameNotResolved
	}
	if len(entries) == 0 {
		return models.Location{}, ErrNameNotResolved
	}

	entry := entries[0]
	return models.Location{
		Name:    entry.Name,
		Region:  entry.State,
		Country: entry.Country,
		Lat:     entry.Lat,
		Lon:     entry.Lon,
	}, nil
}
