package client

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"weather-consensus/internal/models"
)

const openWeatherSource = "OpenWeather"

type OpenWeatherClient struct {
	*BaseClient
	apiKey  string
	baseURL string
}

type openWeatherCurrentResponse struct {
	Coord struct {
		Lon float64 `json:"lon"`
		Lat float64 `json:"lat"`
	} `json:"coord"`
	Weather []struct {
		ID          int    `json:"id"`
		Main        string `json:"main"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		TempMin   float64 `json:"temp_min"`
		TempMax   float64 `json:"temp_max"`
		Pressure  float64 `json:"pressure"`
		Humidity  float64 `json:"humidity"`
	} `json:"main"`
	Visibility float64 `json:"visibility"`
	Wind       struct {
		Speed float64 `json:"speed"`
		Deg   float64 `json:"deg"`
	} `json:"wind"`
	Dt  int64 `json:"dt"`
	Sys struct {
		Country string `json:"country"`
	} `json:"sys"`
	Timezone int    `json:"timezone"`
	Name     string `json:"name"`
}

type openWeatherForecastItem struct {
	Dt   int64 `json:"dt"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		TempMin   float64 `json:"temp_min"`
		TempMax   float64 `json:"temp_max"`
		Pressure  float64 `json:"pressure"`
		Humidity  float64 `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		ID          int    `json:"id"`
		Main        string `json:"main"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Clouds struct {
		All float64 `json:"all"`
	} `json:"clouds"`
	Wind struct {
		Speed float64 `json:"speed"`
		Deg   float64 `json:"deg"`
	} `json:"wind"`
	Pop  float64 `json:"pop"`
	Rain struct {
		ThreeH float64 `json:"3h"`
	} `json:"rain"`
}

type openWeatherForecastResponse struct {
	List []openWeatherForecastItem `json:"list"`
}

func NewOpenWeatherClient(apiKey string, config ClientConfig, logger *zap.Logger) *OpenWeatherClient {
	return &OpenWeatherClient{
		BaseClient: NewBaseClient("openweather", config, logger),
		apiKey:     apiKey,
		baseURL:    "https://api.openweathermap.org/data/2.5",
	}
}

func (c *OpenWeatherClient) Name() string {
	return openWeatherSource
}

// GetWeather fetches current conditions and the 5-day/3-hour forecast and
// normalizes both. All failures are reported as a failed response, never an
// error.
func (c *OpenWeatherClient) GetWeather(ctx context.Context, location models.Location) models.WeatherAPIResponse {
	if c.apiKey == "" {
		return failure(openWeatherSource, "OpenWeather API key not configured")
	}

	var current openWeatherCurrentResponse
	currentURL := fmt.Sprintf("%s/weather?lat=%f&lon=%f&appid=%s&units=metric",
		c.baseURL, location.Lat, location.Lon, c.apiKey)
	if err := c.GetJSON(ctx, currentURL, &current); err != nil {
		return failure(openWeatherSource, fmt.Sprintf("failed to fetch current weather: %v", err))
	}

	var forecast openWeatherForecastResponse
	forecastURL := fmt.Sprintf("%s/forecast?lat=%f&lon=%f&appid=%s&units=metric",
		c.baseURL, location.Lat, location.Lon, c.apiKey)
	if err := c.GetJSON(ctx, forecastURL, &forecast); err != nil {
		return failure(openWeatherSource, fmt.Sprintf("failed to fetch forecast: %v", err))
	}

	if len(current.Weather) == 0 {
		return failure(openWeatherSource, "no condition data in OpenWeather response")
	}

	data := &models.WeatherData{
		Location: models.Location{
			Name:     current.Name,
			Country:  current.Sys.Country,
			Lat:      current.Coord.Lat,
			Lon:      current.Coord.Lon,
			Timezone: fmt.Sprintf("%d", current.Timezone),
		},
		Current:   c.transformCurrent(current),
		Forecast:  c.transformForecast(forecast),
		Source:    openWeatherSource,
		Timestamp: time.Now().UTC(),
	}

	return models.WeatherAPIResponse{
		Success: true,
		Data:    data,
		Source:  openWeatherSource,
	}
}

// transformCurrent maps the metric-only payload into the dual-unit model.
func (c *OpenWeatherClient) transformCurrent(data openWeatherCurrentResponse) models.CurrentWeather {
	visKm := data.Visibility / 1000

	return models.CurrentWeather{
		TempC: data.Main.Temp,
		TempF: models.CToF(data.Main.Temp),
		Condition: models.WeatherCondition{
			Text: data.Weather[0].Main,
			Icon: openWeatherIconURL(data.Weather[0].Icon),
			Code: data.Weather[0].ID,
		},
		Humidity:        data.Main.Humidity,
		WindKph:         models.MsToKmh(data.Wind.Speed),
		WindMph:         models.MsToMph(data.Wind.Speed),
		WindDegree:      data.Wind.Deg,
		WindDir:         models.WindDirection(data.Wind.Deg),
		PressureMb:      data.Main.Pressure,
		PressureIn:      models.HpaToInHg(data.Main.Pressure),
		FeelsLikeC:      data.Main.FeelsLike,
		FeelsLikeF:      models.CToF(data.Main.FeelsLike),
		UV:              0, // not available in the free tier
		VisibilityKm:    visKm,
		VisibilityMiles: models.KmToMiles(visKm),
	}
}

// transformForecast groups the 3-hourly list into calendar days by the UTC
// date of each sample. The day's condition comes from the first sample of
// that date, not a computed mode.
func (c *OpenWeatherClient) transformForecast(data openWeatherForecastResponse) []models.ForecastDay {
	byDate := make(map[string][]openWeatherForecastItem)
	var dates []string

	for _, item := range data.List {
		date := time.Unix(item.Dt, 0).UTC().Format("2006-01-02")
		if _, seen := byDate[date]; !seen {
			dates = append(dates, date)
		}
		byDate[date] = append(byDate[date], item)
	}
	sort.Strings(dates)

	days := make([]models.ForecastDay, 0, len(dates))
	for _, date := range dates {
		items := byDate[date]
		first := items[0]

		day := models.DayForecast{
			MaxTempC: items[0].Main.TempMax,
			MinTempC: items[0].Main.TempMin,
			AvgVisKm: 10, // default, not in the 3-hourly payload
		}

		var sumTemp, sumHumidity float64
		for _, item := range items {
			if item.Main.TempMax > day.MaxTempC {
				day.MaxTempC = item.Main.TempMax
			}
			if item.Main.TempMin < day.MinTempC {
				day.MinTempC = item.Main.TempMin
			}
			if kph := models.MsToKmh(item.Wind.Speed); kph > day.MaxWindKph {
				day.MaxWindKph = kph
			}
			sumTemp += item.Main.Temp
			sumHumidity += item.Main.Humidity
			day.TotalPrecipMm += item.Rain.ThreeH
		}

		n := float64(len(items))
		day.AvgTempC = sumTemp / n
		day.AvgHumidity = sumHumidity / n
		day.MaxTempF = models.CToF(day.MaxTempC)
		day.MinTempF = models.CToF(day.MinTempC)
		day.AvgTempF = models.CToF(day.AvgTempC)
		day.MaxWindMph = models.MsToMph(day.MaxWindKph / 3.6)
		day.TotalPrecipIn = models.MmToIn(day.TotalPrecipMm)
		day.AvgVisMiles = 6.2
		if len(first.Weather) > 0 {
			day.Condition = models.WeatherCondition{
				Text: first.Weather[0].Main,
				Icon: openWeatherIconURL(first.Weather[0].Icon),
				Code: first.Weather[0].ID,
			}
		}

		hours := make([]models.HourForecast, 0, len(items))
		for _, item := range items {
			hours = append(hours, c.transformHour(item))
		}

		days = append(days, models.ForecastDay{
			Date: date,
			Day:  day,
			Hour: hours,
		})
	}

	return days
}

func (c *OpenWeatherClient) transformHour(item openWeatherForecastItem) models.HourForecast {
	hour := models.HourForecast{
		Time:         time.Unix(item.Dt, 0).UTC().Format(time.RFC3339),
		TempC:        item.Main.Temp,
		TempF:        models.CToF(item.Main.Temp),
		WindKph:      models.MsToKmh(item.Wind.Speed),
		WindMph:      models.MsToMph(item.Wind.Speed),
		WindDegree:   item.Wind.Deg,
		WindDir:      models.WindDirection(item.Wind.Deg),
		PressureMb:   item.Main.Pressure,
		PressureIn:   models.HpaToInHg(item.Main.Pressure),
		PrecipMm:     item.Rain.ThreeH,
		PrecipIn:     models.MmToIn(item.Rain.ThreeH),
		Humidity:     item.Main.Humidity,
		Cloud:        item.Clouds.All,
		FeelsLikeC:   item.Main.FeelsLike,
		FeelsLikeF:   models.CToF(item.Main.FeelsLike),
		WindchillC:   item.Main.FeelsLike,
		WindchillF:   models.CToF(item.Main.FeelsLike),
		HeatindexC:   item.Main.FeelsLike,
		HeatindexF:   models.CToF(item.Main.FeelsLike),
		ChanceOfRain: int(item.Pop*100 + 0.5),
		VisKm:        10,
		VisMiles:     6.2,
	}
	if item.Pop > 0.5 {
		hour.WillItRain = 1
	}
	if len(item.Weather) > 0 {
		hour.Condition = models.WeatherCondition{
			Text: item.Weather[0].Main,
			Icon: openWeatherIconURL(item.Weather[0].Icon),
			Code: item.Weather[0].ID,
		}
	}
	return hour
}

func openWeatherIconURL(icon string) string {
	return fmt.Sprintf("https://openweathermap.org/img/wn/%s@2x.png", icon)
}

func failure(source, message string) models.WeatherAPIResponse {
	return models.WeatherAPIResponse{
		Success: false,
		Error:   message,
		Source:  source,
	}
}
