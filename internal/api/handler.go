package api

import (
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"weather-consensus/internal/models"
	"weather-consensus/internal/services"
)

var validate = validator.New()

type Handler struct {
	aggregator *services.Aggregator
	logger     *zap.Logger
}

func NewHandler(aggregator *services.Aggregator, logger *zap.Logger) *Handler {
	return &Handler{
		aggregator: aggregator,
		logger:     logger,
	}
}

// coordinatesQuery bounds are validated after the raw values parse as floats.
type coordinatesQuery struct {
	Lat float64 `validate:"gte=-90,lte=90"`
	Lon float64 `validate:"gte=-180,lte=180"`
}

// GetWeatherByCoordinates handles GET /api/weather/coordinates
func (h *Handler) GetWeatherByCoordinates(c *fiber.Ctx) error {
	latStr := c.Query("lat")
	lonStr := c.Query("lon")
	if latStr == "" || lonStr == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Latitude and longitude are required",
		})
	}

	lat, latErr := strconv.ParseFloat(latStr, 64)
	lon, lonErr := strconv.ParseFloat(lonStr, 64)
	if latErr != nil || lonErr != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid latitude or longitude",
		})
	}

	if err := validate.Struct(coordinatesQuery{Lat: lat, Lon: lon}); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid latitude or longitude",
		})
	}

	h.logger.Info("Fetching weather by coordinates",
		zap.Float64("lat", lat),
		zap.Float64("lon", lon))

	individual := h.aggregator.GetWeatherByCoordinates(c.Context(), lat, lon)
	return h.respond(c, individual)
}

type zipQuery struct {
	Zip     string `validate:"required"`
	Country string
}

// GetWeatherByZipCode handles GET /api/weather/zipcode
func (h *Handler) GetWeatherByZipCode(c *fiber.Ctx) error {
	q := zipQuery{
		Zip:     c.Query("zip"),
		Country: c.Query("country", "US"),
	}
	if err := validate.Struct(q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Zip code is required",
		})
	}

	h.logger.Info("Fetching weather by zip code",
		zap.String("zip", q.Zip),
		zap.String("country", q.Country))

	individual, err := h.aggregator.GetWeatherByZipCode(c.Context(), q.Zip, q.Country)
	if err != nil {
		h.logger.Error("Failed to resolve zip code",
			zap.String("zip", q.Zip),
			zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch weather data",
		})
	}

	return h.respond(c, individual)
}

type nameQuery struct {
	Name    string `validate:"required"`
	Country string
}

// GetWeatherByName handles GET /api/weather/location
func (h *Handler) GetWeatherByName(c *fiber.Ctx) error {
	q := nameQuery{
		Name:    c.Query("name"),
		Country: c.Query("country", "US"),
	}
	if err := validate.Struct(q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Location name is required",
		})
	}

	h.logger.Info("Fetching weather by location name",
		zap.String("name", q.Name),
		zap.String("country", q.Country))

	individual, err := h.aggregator.GetWeatherByName(c.Context(), q.Name, q.Country)
	if err != nil {
		h.logger.Error("Failed to geocode location name",
			zap.String("name", q.Name),
			zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch weather data",
		})
	}

	return h.respond(c, individual)
}

// respond wraps the fan-out results and consensus in the response envelope.
// Partial provider failure is still a 200; consensus is null when every
// provider failed.
func (h *Handler) respond(c *fiber.Ctx, individual []models.WeatherAPIResponse) error {
	consensus := h.aggregator.CalculateConsensus(individual)

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"individual": individual,
			"consensus":  consensus,
		},
	})
}

// GetHealth handles GET /health
func (h *Handler) GetHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "OK",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
