package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"weather-consensus/internal/models"
)

const accuWeatherSource = "AccuWeather"

// AccuWeatherClient resolves an internal location key from coordinates
// before the weather calls can be made.
type AccuWeatherClient struct {
	*BaseClient
	apiKey  string
	baseURL string
}

type accuWeatherLocation struct {
	Key         string `json:"Key"`
	EnglishName string `json:"EnglishName"`
	Country     struct {
		EnglishName string `json:"EnglishName"`
	} `json:"Country"`
	GeoPosition struct {
		Latitude  float64 `json:"Latitude"`
		Longitude float64 `json:"Longitude"`
	} `json:"GeoPosition"`
}

type accuWeatherValueUnit struct {
	Value float64 `json:"Value"`
	Unit  string  `json:"Unit"`
}

type accuWeatherCurrentConditions struct {
	WeatherText string `json:"WeatherText"`
	WeatherIcon int    `json:"WeatherIcon"`
	Temperature struct {
		Metric   accuWeatherValueUnit `json:"Metric"`
		Imperial accuWeatherValueUnit `json:"Imperial"`
	} `json:"Temperature"`
	ApparentTemperature struct {
		Metric   accuWeatherValueUnit `json:"Metric"`
		Imperial accuWeatherValueUnit `json:"Imperial"`
	} `json:"ApparentTemperature"`
	RelativeHumidity float64 `json:"RelativeHumidity"`
	Wind             struct {
		Direction struct {
			Degrees float64 `json:"Degrees"`
			English string  `json:"English"`
		} `json:"Direction"`
		Speed struct {
			Metric   accuWeatherValueUnit `json:"Metric"`
			Imperial accuWeatherValueUnit `json:"Imperial"`
		} `json:"Speed"`
	} `json:"Wind"`
	Pressure struct {
		Metric   accuWeatherValueUnit `json:"Metric"`
		Imperial accuWeatherValueUnit `json:"Imperial"`
	} `json:"Pressure"`
	Visibility struct {
		Metric   accuWeatherValueUnit `json:"Metric"`
		Imperial accuWeatherValueUnit `json:"Imperial"`
	} `json:"Visibility"`
	UVIndex float64 `json:"UVIndex"`
}

type accuWeatherDailyForecast struct {
	Date        string `json:"Date"`
	Temperature struct {
		Minimum accuWeatherValueUnit `json:"Minimum"`
		Maximum accuWeatherValueUnit `json:"Maximum"`
	} `json:"Temperature"`
	Day struct {
		Icon       int    `json:"Icon"`
		IconPhrase string `json:"IconPhrase"`
		Wind       struct {
			Speed accuWeatherValueUnit `json:"Speed"`
		} `json:"Wind"`
		TotalLiquid accuWeatherValueUnit `json:"TotalLiquid"`
		Visibility  accuWeatherValueUnit `json:"Visibility"`
		RelativeHumidity struct {
			Average float64 `json:"Average"`
		} `json:"RelativeHumidity"`
	} `json:"Day"`
	AirAndPollen []struct {
		Name  string  `json:"Name"`
		Value float64 `json:"Value"`
	} `json:"AirAndPollen"`
}

type accuWeatherForecastResponse struct {
	DailyForecasts []accuWeatherDailyForecast `json:"DailyForecasts"`
}

func NewAccuWeatherClient(apiKey string, config ClientConfig, logger *zap.Logger) *AccuWeatherClient {
	return &AccuWeatherClient{
		BaseClient: NewBaseClient("accuweather", config, logger),
		apiKey:     apiKey,
		baseURL:    "https://dataservice.accuweather.com",
	}
}

func (c *AccuWeatherClient) Name() string {
	return accuWeatherSource
}

// GetWeather resolves the AccuWeather location key for the coordinates, then
// fetches current conditions and the 5-day forecast.
func (c *AccuWeatherClient) GetWeather(ctx context.Context, location models.Location) models.WeatherAPIResponse {
	if c.apiKey == "" {
		return failure(accuWeatherSource, "AccuWeather API key not configured")
	}

	accuLocation, err := c.getLocation(ctx, location.Lat, location.Lon)
	if err != nil {
		return failure(accuWeatherSource, err.Error())
	}

	var conditions []accuWeatherCurrentConditions
	currentURL := fmt.Sprintf("%s/currentconditions/v1/%s?apikey=%s&details=true",
		c.baseURL, accuLocation.Key, c.apiKey)
	if err := c.GetJSON(ctx, currentURL, &conditions); err != nil {
		return failure(accuWeatherSource, fmt.Sprintf("failed to fetch current conditions: %v", err))
	}
	if len(conditions) == 0 {
		return failure(accuWeatherSource, "no current conditions in AccuWeather response")
	}

	var forecast accuWeatherForecastResponse
	forecastURL := fmt.Sprintf("%s/forecasts/v1/daily/5day/%s?apikey=%s&details=true&metric=true",
		c.baseURL, accuLocation.Key, c.apiKey)
	if err := c.GetJSON(ctx, forecastURL, &forecast); err != nil {
		return failure(accuWeatherSource, fmt.Sprintf("failed to fetch forecast: %v", err))
	}

	loc := models.Location{
		Name:    accuLocation.EnglishName,
		Country: accuLocation.Country.EnglishName,
		Lat:     accuLocation.GeoPosition.Latitude,
		Lon:     accuLocation.GeoPosition.Longitude,
	}
	if loc.Name == "" {
		loc.Name = location.Name
	}
	if loc.Country == "" {
		loc.Country = location.Country
	}

	data := &models.WeatherData{
		Location:  loc,
		Current:   c.transformCurrent(conditions[0]),
		Forecast:  c.transformForecast(forecast),
		Source:    accuWeatherSource,
		Timestamp: time.Now().UTC(),
	}

	return models.WeatherAPIResponse{
		Success: true,
		Data:    data,
		Source:  accuWeatherSource,
	}
}

// getLocation is the preflight call. An unauthorized status gets a more
// specific message than the generic upstream failure.
func (c *AccuWeatherClient) getLocation(ctx context.Context, lat, lon float64) (*accuWeatherLocation, error) {
	url := fmt.Sprintf("%s/locations/v1/cities/geoposition/search?apikey=%s&q=%f,%f",
		c.baseURL, c.apiKey, lat, lon)

	var loc accuWeatherLocation
	if err := c.GetJSON(ctx, url, &loc); err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.Code == http.StatusUnauthorized {
			return nil, fmt.Errorf("AccuWeather API key is invalid or expired")
		}
		return nil, fmt.Errorf("unable to get location key from AccuWeather")
	}

	if loc.Key == "" {
		return nil, fmt.Errorf("no location key found in AccuWeather response")
	}

	return &loc, nil
}

func (c *AccuWeatherClient) transformCurrent(data accuWeatherCurrentConditions) models.CurrentWeather {
	return models.CurrentWeather{
		TempC: data.Temperature.Metric.Value,
		TempF: data.Temperature.Imperial.Value,
		Condition: models.WeatherCondition{
			Text: data.WeatherText,
			Icon: accuWeatherIconURL(data.WeatherIcon),
			Code: data.WeatherIcon,
		},
		Humidity:        data.RelativeHumidity,
		WindKph:         data.Wind.Speed.Metric.Value,
		WindMph:         data.Wind.Speed.Imperial.Value,
		WindDegree:      data.Wind.Direction.Degrees,
		WindDir:         data.Wind.Direction.English,
		PressureMb:      data.Pressure.Metric.Value,
		PressureIn:      data.Pressure.Imperial.Value,
		FeelsLikeC:      data.ApparentTemperature.Metric.Value,
		FeelsLikeF:      data.ApparentTemperature.Imperial.Value,
		UV:              data.UVIndex,
		VisibilityKm:    data.Visibility.Metric.Value,
		VisibilityMiles: data.Visibility.Imperial.Value,
	}
}

// transformForecast maps the metric daily forecasts. AccuWeather's free tier
// has no hourly breakdown, so Hour stays empty.
func (c *AccuWeatherClient) transformForecast(data accuWeatherForecastResponse) []models.ForecastDay {
	days := make([]models.ForecastDay, 0, len(data.DailyForecasts))
	for _, day := range data.DailyForecasts {
		maxC := day.Temperature.Maximum.Value
		minC := day.Temperature.Minimum.Value
		avgC := (maxC + minC) / 2

		var uv float64
		for _, item := range day.AirAndPollen {
			if item.Name == "UVIndex" {
				uv = item.Value
				break
			}
		}

		days = append(days, models.ForecastDay{
			Date: day.Date,
			Day: models.DayForecast{
				MaxTempC:      maxC,
				MaxTempF:      models.CToF(maxC),
				MinTempC:      minC,
				MinTempF:      models.CToF(minC),
				AvgTempC:      avgC,
				AvgTempF:      models.CToF(avgC),
				MaxWindKph:    day.Day.Wind.Speed.Value,
				MaxWindMph:    models.KmToMiles(day.Day.Wind.Speed.Value),
				TotalPrecipMm: day.Day.TotalLiquid.Value,
				TotalPrecipIn: models.MmToIn(day.Day.TotalLiquid.Value),
				AvgVisKm:      day.Day.Visibility.Value,
				AvgVisMiles:   models.KmToMiles(day.Day.Visibility.Value),
				AvgHumidity:   day.Day.RelativeHumidity.Average,
				Condition: models.WeatherCondition{
					Text: day.Day.IconPhrase,
					Icon: accuWeatherIconURL(day.Day.Icon),
					Code: day.Day.Icon,
				},
				UV: uv,
			},
			Hour: []models.HourForecast{},
		})
	}
	return days
}

// accuWeatherIcons maps AccuWeather icon codes to their published icon URLs.
// Codes 9, 10, 27 and 28 are unassigned by AccuWeather.
var accuWeatherIcons = map[int]string{
	1:  "https://developer.accuweather.com/sites/default/files/01-s.png",
	2:  "https://developer.accuweather.com/sites/default/files/02-s.png",
	3:  "https://developer.accuweather.com/sites/default/files/03-s.png",
	4:  "https://developer.accuweather.com/sites/default/files/04-s.png",
	5:  "https://developer.accuweather.com/sites/default/files/05-s.png",
	6:  "https://developer.accuweather.com/sites/default/files/06-s.png",
	7:  "https://developer.accuweather.com/sites/default/files/07-s.png",
	8:  "https://developer.accuweather.com/sites/default/files/08-s.png",
	11: "https://developer.accuweather.com/sites/default/files/11-s.png",
	12: "https://developer.accuweather.com/sites/default/files/12-s.png",
	13: "https://developer.accuweather.com/sites/default/files/13-s.png",
	14: "https://developer.accuweather.com/sites/default/files/14-s.png",
	15: "https://developer.accuweather.com/sites/default/files/15-s.png",
	16: "https://developer.accuweather.com/sites/default/files/16-s.png",
	17: "https://developer.accuweather.com/sites/default/files/17-s.png",
	18: "https://developer.accuweather.com/sites/default/files/18-s.png",
	19: "https://developer.accuweather.com/sites/default/files/19-s.png",
	20: "https://developer.accuweather.com/sites/default/files/20-s.png",
	21: "https://developer.accuweather.com/sites/default/files/21-s.png",
	22: "https://developer.accuweather.com/sites/default/files/22-s.png",
	23: "https://developer.accuweather.com/sites/default/files/23-s.png",
	24: "https://developer.accuweather.com/sites/default/files/24-s.png",
	25: "https://developer.accuweather.com/sites/default/files/25-s.png",
	26: "https://developer.accuweather.com/sites/default/files/26-s.png",
	29: "https://developer.accuweather.com/sites/default/files/29-s.png",
	30: "https://developer.accuweather.com/sites/default/files/30-s.png",
	31: "https://developer.accuweather.com/sites/default/files/31-s.png",
	32: "https://developer.accuweather.com/sites/default/files/32-s.png",
	33: "https://developer.accuweather.com/sites/default/files/33-s.png",
	34: "https://developer.accuweather.com/sites/default/files/34-s.png",
	35: "https://developer.accuweather.com/sites/default/files/35-s.png",
	36: "https://developer.accuweather.com/sites/default/files/36-s.png",
	37: "https://developer.accuweather.com/sites/default/files/37-s.png",
	38: "https://developer.accuweather.com/sites/default/files/38-s.png",
	39: "https://developer.accuweather.com/sites/default/files/39-s.png",
	40: "https://developer.accuweather.com/sites/default/files/40-s.png",
	41: "https://developer.accuweather.com/sites/default/files/41-s.png",
	42: "https://developer.accuweather.com/sites/default/files/42-s.png",
	43: "https://developer.accuweather.com/sites/default/files/43-s.png",
	44: "https://developer.accuweather.com/sites/default/files/44-s.png",
}

// accuWeatherIconURL falls back to the sunny icon for unmapped codes.
func accuWeatherIconURL(code int) string {
	if url, ok := accuWeatherIcons[code]; ok {
		return url
	}
	return accuWeatherIcons[1]
}
