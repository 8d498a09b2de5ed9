package client

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"weather-consensus/internal/models"
)

const weatherAPISource = "WeatherAPI"

// WeatherAPIClient talks to weatherapi.com. Unlike the other providers it
// returns both unit systems, so the transform is a plain field mapping.
type WeatherAPIClient struct {
	*BaseClient
	apiKey  string
	baseURL string
}

type weatherAPICondition struct {
	Text string `json:"text"`
	Icon string `json:"icon"`
	Code int    `json:"code"`
}

type weatherAPIHour struct {
	Time         string              `json:"time"`
	TempC        float64             `json:"temp_c"`
	TempF        float64             `json:"temp_f"`
	Condition    weatherAPICondition `json:"condition"`
	WindKph      float64             `json:"wind_kph"`
	WindMph      float64             `json:"wind_mph"`
	WindDegree   float64             `json:"wind_degree"`
	WindDir      string              `json:"wind_dir"`
	PressureMb   float64             `json:"pressure_mb"`
	PressureIn   float64             `json:"pressure_in"`
	PrecipMm     float64             `json:"precip_mm"`
	PrecipIn     float64             `json:"precip_in"`
	Humidity     float64             `json:"humidity"`
	Cloud        float64             `json:"cloud"`
	FeelslikeC   float64             `json:"feelslike_c"`
	FeelslikeF   float64             `json:"feelslike_f"`
	WindchillC   float64             `json:"windchill_c"`
	WindchillF   float64             `json:"windchill_f"`
	HeatindexC   float64             `json:"heatindex_c"`
	HeatindexF   float64             `json:"heatindex_f"`
	DewpointC    float64             `json:"dewpoint_c"`
	DewpointF    float64             `json:"dewpoint_f"`
	WillItRain   int                 `json:"will_it_rain"`
	ChanceOfRain int                 `json:"chance_of_rain"`
	WillItSnow   int                 `json:"will_it_snow"`
	ChanceOfSnow int                 `json:"chance_of_snow"`
	VisKm        float64             `json:"vis_km"`
	VisMiles     float64             `json:"vis_miles"`
	GustKph      float64             `json:"gust_kph"`
	GustMph      float64             `json:"gust_mph"`
	UV           float64             `json:"uv"`
}

type weatherAPIForecastResponse struct {
	Location *struct {
		Name    string  `json:"name"`
		Region  string  `json:"region"`
		Country string  `json:"country"`
		Lat     float64 `json:"lat"`
		Lon     float64 `json:"lon"`
		TzID    string  `json:"tz_id"`
	} `json:"location"`
	Current *struct {
		TempC      float64             `json:"temp_c"`
		TempF      float64             `json:"temp_f"`
		Condition  weatherAPICondition `json:"condition"`
		Humidity   float64             `json:"humidity"`
		WindKph    float64             `json:"wind_kph"`
		WindMph    float64             `json:"wind_mph"`
		WindDegree float64             `json:"wind_degree"`
		WindDir    string              `json:"wind_dir"`
		PressureMb float64             `json:"pressure_mb"`
		PressureIn float64             `json:"pressure_in"`
		FeelslikeC float64             `json:"feelslike_c"`
		FeelslikeF float64             `json:"feelslike_f"`
		UV         float64             `json:"uv"`
		VisKm      float64             `json:"vis_km"`
		VisMiles   float64             `json:"vis_miles"`
	} `json:"current"`
	Forecast struct {
		ForecastDay []struct {
			Date string `json:"date"`
			Day  struct {
				MaxTempC      float64             `json:"maxtemp_c"`
				MaxTempF      float64             `json:"maxtemp_f"`
				MinTempC      float64             `json:"mintemp_c"`
				MinTempF      float64             `json:"mintemp_f"`
				AvgTempC      float64             `json:"avgtemp_c"`
				AvgTempF      float64             `json:"avgtemp_f"`
				MaxWindKph    float64             `json:"maxwind_kph"`
				MaxWindMph    float64             `json:"maxwind_mph"`
				TotalPrecipMm float64             `json:"totalprecip_mm"`
				TotalPrecipIn float64             `json:"totalprecip_in"`
				AvgVisKm      float64             `json:"avgvis_km"`
				AvgVisMiles   float64             `json:"avgvis_miles"`
				AvgHumidity   float64             `json:"avghumidity"`
				Condition     weatherAPICondition `json:"condition"`
				UV            float64             `json:"uv"`
			} `json:"day"`
			Hour []weatherAPIHour `json:"hour"`
		} `json:"forecastday"`
	} `json:"forecast"`
}

func NewWeatherAPIClient(apiKey string, config ClientConfig, logger *zap.Logger) *WeatherAPIClient {
	return &WeatherAPIClient{
		BaseClient: NewBaseClient("weatherapi", config, logger),
		apiKey:     apiKey,
		baseURL:    "https://api.weatherapi.com/v1",
	}
}

func (c *WeatherAPIClient) Name() string {
	return weatherAPISource
}

// GetWeather fetches current conditions plus a 5-day forecast in one call.
func (c *WeatherAPIClient) GetWeather(ctx context.Context, location models.Location) models.WeatherAPIResponse {
	if c.apiKey == "" {
		return failure(weatherAPISource, "WeatherAPI key not configured")
	}

	url := fmt.Sprintf("%s/forecast.json?key=%s&q=%f,%f&days=5&aqi=no",
		c.baseURL, c.apiKey, location.Lat, location.Lon)

	var payload weatherAPIForecastResponse
	if err := c.GetJSON(ctx, url, &payload); err != nil {
		return failure(weatherAPISource, fmt.Sprintf("failed to fetch weather: %v", err))
	}

	if payload.Location == nil {
		return failure(weatherAPISource, "no location data in WeatherAPI response")
	}
	if payload.Current == nil {
		return failure(weatherAPISource, "no current weather data in WeatherAPI response")
	}

	cur := payload.Current
	data := &models.WeatherData{
		Location: models.Location{
			Name:     payload.Location.Name,
			Region:   payload.Location.Region,
			Country:  payload.Location.Country,
			Lat:      payload.Location.Lat,
			Lon:      payload.Location.Lon,
			Timezone: payload.Location.TzID,
		},
		Current: models.CurrentWeather{
			TempC:           cur.TempC,
			TempF:           cur.TempF,
			Condition:       c.transformCondition(cur.Condition),
			Humidity:        cur.Humidity,
			WindKph:         cur.WindKph,
			WindMph:         cur.WindMph,
			WindDegree:      cur.WindDegree,
			WindDir:         cur.WindDir,
			PressureMb:      cur.PressureMb,
			PressureIn:      cur.PressureIn,
			FeelsLikeC:      cur.FeelslikeC,
			FeelsLikeF:      cur.FeelslikeF,
			UV:              cur.UV,
			VisibilityKm:    cur.VisKm,
			VisibilityMiles: cur.VisMiles,
		},
		Forecast:  c.transformForecast(payload),
		Source:    weatherAPISource,
		Timestamp: time.Now().UTC(),
	}

	return models.WeatherAPIResponse{
		Success: true,
		Data:    data,
		Source:  weatherAPISource,
	}
}

func (c *WeatherAPIClient) transformForecast(payload weatherAPIForecastResponse) []models.ForecastDay {
	days := make([]models.ForecastDay, 0, len(payload.Forecast.ForecastDay))
	for _, day := range payload.Forecast.ForecastDay {
		hours := make([]models.HourForecast, 0, len(day.Hour))
		for _, hour := range day.Hour {
			hours = append(hours, models.HourForecast{
				Time:         hour.Time,
				TempC:        hour.TempC,
				TempF:        hour.TempF,
				Condition:    c.transformCondition(hour.Condition),
				WindKph:      hour.WindKph,
				WindMph:      hour.WindMph,
				WindDegree:   hour.WindDegree,
				WindDir:      hour.WindDir,
				PressureMb:   hour.PressureMb,
				PressureIn:   hour.PressureIn,
				PrecipMm:     hour.PrecipMm,
				PrecipIn:     hour.PrecipIn,
				Humidity:     hour.Humidity,
				Cloud:        hour.Cloud,
				FeelsLikeC:   hour.FeelslikeC,
				FeelsLikeF:   hour.FeelslikeF,
				WindchillC:   hour.WindchillC,
				WindchillF:   hour.WindchillF,
				HeatindexC:   hour.HeatindexC,
				HeatindexF:   hour.HeatindexF,
				DewpointC:    hour.DewpointC,
				DewpointF:    hour.DewpointF,
				WillItRain:   hour.WillItRain,
				ChanceOfRain: hour.ChanceOfRain,
				WillItSnow:   hour.WillItSnow,
				ChanceOfSnow: hour.ChanceOfSnow,
				VisKm:        hour.VisKm,
				VisMiles:     hour.VisMiles,
				GustKph:      hour.GustKph,
				GustMph:      hour.GustMph,
				UV:           hour.UV,
			})
		}

		days = append(days, models.ForecastDay{
			Date: day.Date,
			Day: models.DayForecast{
				MaxTempC:      day.Day.MaxTempC,
				MaxTempF:      day.Day.MaxTempF,
				MinTempC:      day.Day.MinTempC,
				MinTempF:      day.Day.MinTempF,
				AvgTempC:      day.Day.AvgTempC,
				AvgTempF:      day.Day.AvgTempF,
				MaxWindKph:    day.Day.MaxWindKph,
				MaxWindMph:    day.Day.MaxWindMph,
				TotalPrecipMm: day.Day.TotalPrecipMm,
				TotalPrecipIn: day.Day.TotalPrecipIn,
				AvgVisKm:      day.Day.AvgVisKm,
				AvgVisMiles:   day.Day.AvgVisMiles,
				AvgHumidity:   day.Day.AvgHumidity,
				Condition:     c.transformCondition(day.Day.Condition),
				UV:            day.Day.UV,
			},
			Hour: hours,
		})
	}
	return days
}

// transformCondition rewrites the protocol-relative icon reference
// ("//cdn.weatherapi.com/...") into an absolute URL.
func (c *WeatherAPIClient) transformCondition(cond weatherAPICondition) models.WeatherCondition {
	return models.WeatherCondition{
		Text: cond.Text,
		Icon: "https:" + cond.Icon,
		Code: cond.Code,
	}
}
