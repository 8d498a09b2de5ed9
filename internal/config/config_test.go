package config

import (
	"reflect"
	"testing"
)

func TestParseProviders(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected []string
		wantErr  bool
	}{
		{
			name:     "default pair",
			value:    "openweather,weatherapi",
			expected: []string{ProviderOpenWeather, ProviderWeatherAPI},
		},
		{
			name:     "all three",
			value:    "openweather,weatherapi,accuweather",
			expected: []string{ProviderOpenWeather, ProviderWeatherAPI, ProviderAccuWeather},
		},
		{
			name:     "order is normalized to registration order",
			value:    "accuweather,openweather",
			expected: []string{ProviderOpenWeather, ProviderAccuWeather},
		},
		{
			name:     "whitespace and case are forgiven",
			value:    " WeatherAPI , OPENWEATHER ",
			expected: []string{ProviderOpenWeather, ProviderWeatherAPI},
		},
		{
			name:     "duplicates collapse",
			value:    "openweather,openweather",
			expected: []string{ProviderOpenWeather},
		},
		{
			name:    "unknown provider",
			value:   "openweather,darksky",
			wantErr: true,
		},
		{
			name:    "empty list",
			value:   "",
			wantErr: true,
		},
		{
			name:    "only separators",
			value:   ", ,",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			providers, err := parseProviders(tt.value)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseProviders(%q) = %v, want error", tt.value, providers)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseProviders(%q) unexpected error: %v", tt.value, err)
			}
			if !reflect.DeepEqual(providers, tt.expected) {
				t.Errorf("parseProviders(%q) = %v, want %v", tt.value, providers, tt.expected)
			}
		})
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != "3001" {
		t.Errorf("port = %q, want 3001", cfg.Server.Port)
	}
	expected := []string{ProviderOpenWeather, ProviderWeatherAPI}
	if !reflect.DeepEqual(cfg.WeatherAPI.ActiveProviders, expected) {
		t.Errorf("active providers = %v, want %v", cfg.WeatherAPI.ActiveProviders, expected)
	}
	if cfg.HTTPClient.Timeout.Seconds() != 10 {
		t.Errorf("client timeout = %v, want 10s", cfg.HTTPClient.Timeout)
	}
}

func TestLoadConfigProvidersFromEnv(t *testing.T) {
	t.Setenv("WEATHER_PROVIDERS", "accuweather")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(cfg.WeatherAPI.ActiveProviders, []string{ProviderAccuWeather}) {
		t.Errorf("active providers = %v, want [accuweather]", cfg.WeatherAPI.ActiveProviders)
	}
}

func TestLoadConfigRejectsUnknownProvider(t *testing.T) {
	t.Setenv("WEATHER_PROVIDERS", "openweather,nope")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}
