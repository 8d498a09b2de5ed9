package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"weather-consensus/internal/config"
	"weather-consensus/internal/models"
	"weather-consensus/pkg/client"
)

// WeatherAdapter is the capability contract every provider adapter satisfies.
// GetWeather never returns an error: all failures are encoded in the response.
type WeatherAdapter interface {
	Name() string
	GetWeather(ctx context.Context, location models.Location) models.WeatherAPIResponse
}

// LocationResolver turns a postal code or place name into coordinates.
type LocationResolver interface {
	ResolveZip(ctx context.Context, zipCode, country string) (models.Location, error)
	ResolveName(ctx context.Context, name, country string) (models.Location, error)
}

// Aggregator fans a request out to every registered adapter and reduces the
// results to a consensus. Adapters are invoked in registration order and the
// result slice preserves that order regardless of completion timing.
type Aggregator struct {
	adapters []WeatherAdapter
	resolver LocationResolver
	logger   *zap.Logger
}

// New assembles an aggregator from explicit collaborators.
func New(adapters []WeatherAdapter, resolver LocationResolver, logger *zap.Logger) (*Aggregator, error) {
	if len(adapters) == 0 {
		return nil, fmt.Errorf("no weather adapters registered")
	}
	return &Aggregator{
		adapters: adapters,
		resolver: resolver,
		logger:   logger,
	}, nil
}

// NewAggregator builds the adapter registry from configuration. The active
// subset is a deployment choice; registration order is always OpenWeather,
// WeatherAPI, AccuWeather.
func NewAggregator(cfg *config.Config, logger *zap.Logger) (*Aggregator, error) {
	clientConfig := client.ClientConfig{
		Timeout:        cfg.HTTPClient.Timeout,
		BreakerTimeout: cfg.HTTPClient.BreakerTimeout,
	}

	var adapters []WeatherAdapter
	for _, name := range cfg.WeatherAPI.ActiveProviders {
		switch name {
		case config.ProviderOpenWeather:
			adapters = append(adapters, client.NewOpenWeatherClient(cfg.WeatherAPI.OpenWeatherAPIKey, clientConfig, logger))
		case config.ProviderWeatherAPI:
			adapters = append(adapters, client.NewWeatherAPIClient(cfg.WeatherAPI.WeatherAPIKey, clientConfig, logger))
		case config.ProviderAccuWeather:
			adapters = append(adapters, client.NewAccuWeatherClient(cfg.WeatherAPI.AccuWeatherAPIKey, clientConfig, logger))
		}
		logger.Info("Weather adapter registered", zap.String("provider", name))
	}

	resolver := NewOpenWeatherGeocoder(cfg.WeatherAPI.OpenWeatherAPIKey, clientConfig, logger)

	return New(adapters, resolver, logger)
}

// GetWeatherByLocation invokes every adapter concurrently and waits for all
// of them to settle. A failed adapter occupies its slot with a failure entry;
// nothing short-circuits.
func (a *Aggregator) GetWeatherByLocation(ctx context.Context, location models.Location) []models.WeatherAPIResponse {
	results := make([]models.WeatherAPIResponse, len(a.adapters))

	startTime := time.Now()

	var wg sync.WaitGroup
	for i, adapter := range a.adapters {
		wg.Add(1)
		go func(i int, adapter WeatherAdapter) {
			defer wg.Done()

			response := adapter.GetWeather(ctx, location)
			if !response.Success {
				a.logger.Warn("Adapter call failed",
					zap.String("source", adapter.Name()),
					zap.Float64("lat", location.Lat),
					zap.Float64("lon", location.Lon),
					zap.String("error", response.Error))
			}
			results[i] = response
		}(i, adapter)
	}
	wg.Wait()

	a.logger.Info("Weather fan-out completed",
		zap.Int("adapters", len(a.adapters)),
		zap.Duration("duration", time.Since(startTime)))

	return results
}

// GetWeatherByCoordinates builds a minimal location and delegates.
func (a *Aggregator) GetWeatherByCoordinates(ctx context.Context, lat, lon float64) []models.WeatherAPIResponse {
	location := models.Location{
		Name:    "Unknown",
		Country: "Unknown",
		Lat:     lat,
		Lon:     lon,
	}
	return a.GetWeatherByLocation(ctx, location)
}

// GetWeatherByZipCode resolves the postal code first; no adapter is invoked
// when resolution fails.
func (a *Aggregator) GetWeatherByZipCode(ctx context.Context, zipCode, country string) ([]models.WeatherAPIResponse, error) {
	location, err := a.resolver.ResolveZip(ctx, zipCode, country)
	if err != nil {
		return nil, err
	}
	return a.GetWeatherByLocation(ctx, location), nil
}

// GetWeatherByName geocodes a place name first; no adapter is invoked when
// resolution fails.
func (a *Aggregator) GetWeatherByName(ctx context.Context, name, country string) ([]models.WeatherAPIResponse, error) {
	location, err := a.resolver.ResolveName(ctx, name, country)
	if err != nil {
		return nil, err
	}
	return a.GetWeatherByLocation(ctx, location), nil
}

// CalculateConsensus reduces the fan-out results to a single reading, or nil
// when no provider succeeded.
//
// The Celsius and Fahrenheit consensus values are averaged independently
// over each provider's own fields and rounded separately, so the pair may
// differ slightly from a pure conversion. That is accepted behavior.
// Non-temperature fields and the forecast are copied from the first
// successful response in registration order.
func (a *Aggregator) CalculateConsensus(responses []models.WeatherAPIResponse) *models.ConsensusWeatherData {
	var successful []models.WeatherAPIResponse
	for _, r := range responses {
		if r.Success && r.Data != nil {
			successful = append(successful, r)
		}
	}

	if len(successful) == 0 {
		return nil
	}

	var sumC, sumF float64
	sources := make([]string, 0, len(successful))
	for _, r := range successful {
		sumC += r.Data.Current.TempC
		sumF += r.Data.Current.TempF
		sources = append(sources, r.Source)
	}

	n := float64(len(successful))
	consensusTempC := models.Round1(sumC / n)
	consensusTempF := models.Round1(sumF / n)

	first := successful[0].Data

	current := first.Current
	current.TempC = consensusTempC
	current.TempF = consensusTempF

	return &models.ConsensusWeatherData{
		Location:       first.Location,
		Current:        current,
		Forecast:       first.Forecast,
		Sources:        sources,
		ConsensusTempC: consensusTempC,
		ConsensusTempF: consensusTempF,
		Timestamp:      time.Now().UTC(),
	}
}
