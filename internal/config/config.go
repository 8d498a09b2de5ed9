package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Provider identifiers in registration order. The order here fixes the order
// of entries in every aggregated response.
const (
	ProviderOpenWeather = "openweather"
	ProviderWeatherAPI  = "weatherapi"
	ProviderAccuWeather = "accuweather"
)

type Config struct {
	Server struct {
		Port         string
		ReadTimeout  time.Duration
		WriteTimeout time.Duration
	}

	WeatherAPI struct {
		OpenWeatherAPIKey string
		WeatherAPIKey     string
		AccuWeatherAPIKey string

		// ActiveProviders is the subset of adapters the aggregator invokes,
		// in registration order. A listed provider with a missing key stays
		// registered and reports a configuration failure per request.
		ActiveProviders []string
	}

	HTTPClient struct {
		Timeout        time.Duration
		BreakerTimeout time.Duration
	}
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	if err := godotenv.Load(); err != nil {
		zap.L().Info("No .env file found, using environment variables")
	}

	cfg := &Config{}

	// Server configuration
	cfg.Server.Port = getEnv("PORT", "3001")
	cfg.Server.ReadTimeout = parseDuration(getEnv("FIBER_READ_TIMEOUT", "10s"))
	cfg.Server.WriteTimeout = parseDuration(getEnv("FIBER_WRITE_TIMEOUT", "10s"))

	// Provider API keys. An empty key disables that provider's calls, never
	// the process.
	cfg.WeatherAPI.OpenWeatherAPIKey = getEnv("OPENWEATHER_API_KEY", "")
	cfg.WeatherAPI.WeatherAPIKey = getEnv("WEATHERAPI_KEY", "")
	cfg.WeatherAPI.AccuWeatherAPIKey = getEnv("ACCUWEATHER_API_KEY", "")

	providers, err := parseProviders(getEnv("WEATHER_PROVIDERS", "openweather,weatherapi"))
	if err != nil {
		return nil, err
	}
	cfg.WeatherAPI.ActiveProviders = providers

	// Outbound HTTP configuration. The client timeout is the only timeout on
	// the provider call path.
	cfg.HTTPClient.Timeout = parseDuration(getEnv("HTTP_CLIENT_TIMEOUT", "10s"))
	cfg.HTTPClient.BreakerTimeout = parseDuration(getEnv("CIRCUIT_BREAKER_TIMEOUT", "30s"))

	return cfg, nil
}

// parseProviders normalizes the comma-separated provider list, preserving
// registration order regardless of the order given.
func parseProviders(value string) ([]string, error) {
	requested := make(map[string]bool)
	for _, name := range strings.Split(value, ",") {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		switch name {
		case ProviderOpenWeather, ProviderWeatherAPI, ProviderAccuWeather:
			requested[name] = true
		default:
			return nil, fmt.Errorf("unknown weather provider %q", name)
		}
	}

	var providers []string
	for _, name := range []string{ProviderOpenWeather, ProviderWeatherAPI, ProviderAccuWeather} {
		if requested[name] {
			providers = append(providers, name)
		}
	}

	if len(providers) == 0 {
		return nil, fmt.Errorf("WEATHER_PROVIDERS must name at least one provider")
	}

	return providers, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(value string) time.Duration {
	duration, err := time.ParseDuration(value)
	if err != nil {
		zap.L().Warn("Failed to parse duration", zap.String("value", value), zap.Error(err))
		return 0
	}
	return duration
}
