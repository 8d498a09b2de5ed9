package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"weather-consensus/internal/models"
	"weather-consensus/internal/services"
)

type stubAdapter struct {
	name     string
	response models.WeatherAPIResponse
	calls    int32
}

func (s *stubAdapter) Name() string { return s.name }

func (s *stubAdapter) GetWeather(ctx context.Context, location models.Location) models.WeatherAPIResponse {
	atomic.AddInt32(&s.calls, 1)
	return s.response
}

type stubResolver struct {
	location models.Location
	err      error
	calls    int32
}

func (s *stubResolver) ResolveZip(ctx context.Context, zipCode, country string) (models.Location, error) {
	atomic.AddInt32(&s.calls, 1)
	return s.location, s.err
}

func (s *stubResolver) ResolveName(ctx context.Context, name, country string) (models.Location, error) {
	atomic.AddInt32(&s.calls, 1)
	return s.location, s.err
}

func successResponse(source string, tempC, tempF float64) models.WeatherAPIResponse {
	return models.WeatherAPIResponse{
		Success: true,
		Data: &models.WeatherData{
			Location:  models.Location{Name: "New York", Country: "US"},
			Current:   models.CurrentWeather{TempC: tempC, TempF: tempF},
			Forecast:  []models.ForecastDay{},
			Source:    source,
			Timestamp: time.Now().UTC(),
		},
		Source: source,
	}
}

func newTestApp(t *testing.T, adapters []services.WeatherAdapter, resolver services.LocationResolver) *fiber.App {
	t.Helper()
	aggregator, err := services.New(adapters, resolver, zap.NewNop())
	if err != nil {
		t.Fatalf("failed to build aggregator: %v", err)
	}
	app := fiber.New()
	SetupRoutes(app, NewHandler(aggregator, zap.NewNop()), zap.NewNop())
	return app
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	var parsed map[string]interface{}
	if err := json.Unmarshal(body, &parsed); err != nil {
		t.Fatalf("failed to parse body %q: %v", body, err)
	}
	return parsed
}

func TestGetWeatherByCoordinates(t *testing.T) {
	openWeather := &stubAdapter{name: "OpenWeather", response: successResponse("OpenWeather", 20.0, 68.0)}
	weatherAPI := &stubAdapter{name: "WeatherAPI", response: successResponse("WeatherAPI", 22.0, 71.6)}
	app := newTestApp(t, []services.WeatherAdapter{openWeather, weatherAPI}, &stubResolver{})

	req := httptest.NewRequest(http.MethodGet, "/api/weather/coordinates?lat=40.7128&lon=-74.0060", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	parsed := decodeBody(t, resp)
	if parsed["success"] != true {
		t.Errorf("success = %v, want true", parsed["success"])
	}

	data := parsed["data"].(map[string]interface{})
	individual := data["individual"].([]interface{})
	if len(individual) != 2 {
		t.Fatalf("got %d individual results, want 2", len(individual))
	}
	first := individual[0].(map[string]interface{})
	if first["source"] != "OpenWeather" {
		t.Errorf("first result source = %v, want OpenWeather in registration order", first["source"])
	}

	consensus := data["consensus"].(map[string]interface{})
	if got := consensus["consensus_temp_c"].(float64); got != 21.0 {
		t.Errorf("consensus_temp_c = %v, want 21.0", got)
	}
	if got := consensus["consensus_temp_f"].(float64); got != 69.8 {
		t.Errorf("consensus_temp_f = %v, want 69.8", got)
	}
	sources := consensus["sources"].([]interface{})
	if len(sources) != 2 || sources[0] != "OpenWeather" || sources[1] != "WeatherAPI" {
		t.Errorf("sources = %v, want [OpenWeather WeatherAPI]", sources)
	}
}

func TestGetWeatherByCoordinatesPartialFailure(t *testing.T) {
	openWeather := &stubAdapter{name: "OpenWeather", response: successResponse("OpenWeather", 20.0, 68.0)}
	weatherAPI := &stubAdapter{name: "WeatherAPI", response: models.WeatherAPIResponse{
		Success: false,
		Error:   "upstream timeout",
		Source:  "WeatherAPI",
	}}
	app := newTestApp(t, []services.WeatherAdapter{openWeather, weatherAPI}, &stubResolver{})

	req := httptest.NewRequest(http.MethodGet, "/api/weather/coordinates?lat=40.7128&lon=-74.0060", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200 for partial failure", resp.StatusCode)
	}

	data := decodeBody(t, resp)["data"].(map[string]interface{})
	individual := data["individual"].([]interface{})
	if len(individual) != 2 {
		t.Fatalf("got %d individual results, want both slots present", len(individual))
	}
	second := individual[1].(map[string]interface{})
	if second["success"] != false || second["error"] != "upstream timeout" {
		t.Errorf("failed slot = %v, want success=false with error text", second)
	}

	consensus := data["consensus"].(map[string]interface{})
	if got := consensus["consensus_temp_c"].(float64); got != 20.0 {
		t.Errorf("consensus_temp_c = %v, want the sole survivor's 20.0", got)
	}
}

func TestGetWeatherByCoordinatesAllFailed(t *testing.T) {
	failed := models.WeatherAPIResponse{Success: false, Error: "down", Source: "OpenWeather"}
	app := newTestApp(t, []services.WeatherAdapter{
		&stubAdapter{name: "OpenWeather", response: failed},
	}, &stubResolver{})

	req := httptest.NewRequest(http.MethodGet, "/api/weather/coordinates?lat=1&lon=2", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200 even when every provider failed", resp.StatusCode)
	}

	data := decodeBody(t, resp)["data"].(map[string]interface{})
	if data["consensus"] != nil {
		t.Errorf("consensus = %v, want null", data["consensus"])
	}
}

func TestGetWeatherByCoordinatesValidation(t *testing.T) {
	tests := []struct {
		name    string
		target  string
		wantErr string
	}{
		{"missing both", "/api/weather/coordinates", "Latitude and longitude are required"},
		{"missing lon", "/api/weather/coordinates?lat=40.7", "Latitude and longitude are required"},
		{"non-numeric", "/api/weather/coordinates?lat=abc&lon=-74", "Invalid latitude or longitude"},
		{"latitude out of range", "/api/weather/coordinates?lat=91&lon=0", "Invalid latitude or longitude"},
		{"longitude out of range", "/api/weather/coordinates?lat=0&lon=181", "Invalid latitude or longitude"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapter := &stubAdapter{name: "OpenWeather", response: successResponse("OpenWeather", 20.0, 68.0)}
			app := newTestApp(t, []services.WeatherAdapter{adapter}, &stubResolver{})

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, tt.target, nil))
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", resp.StatusCode)
			}
			if got := decodeBody(t, resp)["error"]; got != tt.wantErr {
				t.Errorf("error = %v, want %q", got, tt.wantErr)
			}
			if calls := atomic.LoadInt32(&adapter.calls); calls != 0 {
				t.Errorf("adapter called %d times for a rejected request, want 0", calls)
			}
		})
	}
}

func TestGetWeatherByZipCode(t *testing.T) {
	adapter := &stubAdapter{name: "OpenWeather", response: successResponse("OpenWeather", 18.0, 64.4)}
	resolver := &stubResolver{location: models.Location{Name: "San Francisco", Lat: 37.77, Lon: -122.42}}
	app := newTestApp(t, []services.WeatherAdapter{adapter}, resolver)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/weather/zipcode?zip=94103", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if atomic.LoadInt32(&resolver.calls) != 1 {
		t.Errorf("resolver called %d times, want 1", resolver.calls)
	}
	if atomic.LoadInt32(&adapter.calls) != 1 {
		t.Errorf("adapter called %d times, want 1", adapter.calls)
	}
}

func TestGetWeatherByZipCodeMissingZip(t *testing.T) {
	app := newTestApp(t, []services.WeatherAdapter{
		&stubAdapter{name: "OpenWeather", response: successResponse("OpenWeather", 18.0, 64.4)},
	}, &stubResolver{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/weather/zipcode", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if got := decodeBody(t, resp)["error"]; got != "Zip code is required" {
		t.Errorf("error = %v, want zip required message", got)
	}
}

func TestGetWeatherByZipCodeResolverFailure(t *testing.T) {
	adapter := &stubAdapter{name: "OpenWeather", response: successResponse("OpenWeather", 18.0, 64.4)}
	resolver := &stubResolver{err: errors.New("unable to resolve location from zip code")}
	app := newTestApp(t, []services.WeatherAdapter{adapter}, resolver)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/weather/zipcode?zip=00000", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
	if got := decodeBody(t, resp)["error"]; got != "Failed to fetch weather data" {
		t.Errorf("error = %v, want generic failure message", got)
	}
	if calls := atomic.LoadInt32(&adapter.calls); calls != 0 {
		t.Errorf("adapter called %d times after failed resolution, want 0", calls)
	}
}

func TestGetWeatherByName(t *testing.T) {
	adapter := &stubAdapter{name: "OpenWeather", response: successResponse("OpenWeather", 15.0, 59.0)}
	resolver := &stubResolver{location: models.Location{Name: "Seattle", Lat: 47.60, Lon: -122.33}}
	app := newTestApp(t, []services.WeatherAdapter{adapter}, resolver)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/weather/location?name=Seattle", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if atomic.LoadInt32(&resolver.calls) != 1 {
		t.Errorf("resolver called %d times, want 1", resolver.calls)
	}
}

func TestGetWeatherByNameMissingName(t *testing.T) {
	app := newTestApp(t, []services.WeatherAdapter{
		&stubAdapter{name: "OpenWeather", response: successResponse("OpenWeather", 15.0, 59.0)},
	}, &stubResolver{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/weather/location", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if got := decodeBody(t, resp)["error"]; got != "Location name is required" {
		t.Errorf("error = %v, want name required message", got)
	}
}

func TestGetHealth(t *testing.T) {
	app := newTestApp(t, []services.WeatherAdapter{
		&stubAdapter{name: "OpenWeather", response: successResponse("OpenWeather", 20.0, 68.0)},
	}, &stubResolver{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	parsed := decodeBody(t, resp)
	if parsed["status"] != "OK" {
		t.Errorf("status = %v, want OK", parsed["status"])
	}
	if _, err := time.Parse(time.RFC3339, parsed["timestamp"].(string)); err != nil {
		t.Errorf("timestamp %v is not RFC3339: %v", parsed["timestamp"], err)
	}
}

func TestUnknownEndpoint(t *testing.T) {
	app := newTestApp(t, []services.WeatherAdapter{
		&stubAdapter{name: "OpenWeather", response: successResponse("OpenWeather", 20.0, 68.0)},
	}, &stubResolver{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/weather/nope", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	if got := decodeBody(t, resp)["error"]; got != "Endpoint not found" {
		t.Errorf("error = %v, want Endpoint not found", got)
	}
}
