package models

import (
	"time"
)

// Location identifies a geographic point. Identity is the (Lat, Lon) pair;
// name and country are descriptive only.
type Location struct {
	Name     string  `json:"name"`
	Region   string  `json:"region,omitempty"`
	Country  string  `json:"country"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Timezone string  `json:"timezone,omitempty"`
	ZipCode  string  `json:"zip_code,omitempty"`
}

// WeatherCondition is a provider-reported condition. Code is provider-specific
// and not comparable across providers.
type WeatherCondition struct {
	Text string `json:"text"`
	Icon string `json:"icon"`
	Code int    `json:"code"`
}

type CurrentWeather struct {
	TempC           float64          `json:"temp_c"`
	TempF           float64          `json:"temp_f"`
	Condition       WeatherCondition `json:"condition"`
	Humidity        float64          `json:"humidity"`
	WindKph         float64          `json:"wind_kph"`
	WindMph         float64          `json:"wind_mph"`
	WindDegree      float64          `json:"wind_degree"`
	WindDir         string           `json:"wind_dir"`
	PressureMb      float64          `json:"pressure_mb"`
	PressureIn      float64          `json:"pressure_in"`
	FeelsLikeC      float64          `json:"feelslike_c"`
	FeelsLikeF      float64          `json:"feelslike_f"`
	UV              float64          `json:"uv"`
	VisibilityKm    float64          `json:"visibility_km"`
	VisibilityMiles float64          `json:"visibility_miles"`
}

// DayForecast aggregates one calendar day.
type DayForecast struct {
	MaxTempC      float64          `json:"maxtemp_c"`
	MaxTempF      float64          `json:"maxtemp_f"`
	MinTempC      float64          `json:"mintemp_c"`
	MinTempF      float64          `json:"mintemp_f"`
	AvgTempC      float64          `json:"avgtemp_c"`
	AvgTempF      float64          `json:"avgtemp_f"`
	MaxWindKph    float64          `json:"maxwind_kph"`
	MaxWindMph    float64          `json:"maxwind_mph"`
	TotalPrecipMm float64          `json:"totalprecip_mm"`
	TotalPrecipIn float64          `json:"totalprecip_in"`
	AvgVisKm      float64          `json:"avgvis_km"`
	AvgVisMiles   float64          `json:"avgvis_miles"`
	AvgHumidity   float64          `json:"avghumidity"`
	Condition     WeatherCondition `json:"condition"`
	UV            float64          `json:"uv"`
}

type HourForecast struct {
	Time         string           `json:"time"`
	TempC        float64          `json:"temp_c"`
	TempF        float64          `json:"temp_f"`
	Condition    WeatherCondition `json:"condition"`
	WindKph      float64          `json:"wind_kph"`
	WindMph      float64          `json:"wind_mph"`
	WindDegree   float64          `json:"wind_degree"`
	WindDir      string           `json:"wind_dir"`
	PressureMb   float64          `json:"pressure_mb"`
	PressureIn   float64          `json:"pressure_in"`
	PrecipMm     float64          `json:"precip_mm"`
	PrecipIn     float64          `json:"precip_in"`
	Humidity     float64          `json:"humidity"`
	Cloud        float64          `json:"cloud"`
	FeelsLikeC   float64          `json:"feelslike_c"`
	FeelsLikeF   float64          `json:"feelslike_f"`
	WindchillC   float64          `json:"windchill_c"`
	WindchillF   float64          `json:"windchill_f"`
	HeatindexC   float64          `json:"heatindex_c"`
	HeatindexF   float64          `json:"heatindex_f"`
	DewpointC    float64          `json:"dewpoint_c"`
	DewpointF    float64          `json:"dewpoint_f"`
	WillItRain   int              `json:"will_it_rain"`
	ChanceOfRain int              `json:"chance_of_rain"`
	WillItSnow   int              `json:"will_it_snow"`
	ChanceOfSnow int              `json:"chance_of_snow"`
	VisKm        float64          `json:"vis_km"`
	VisMiles     float64          `json:"vis_miles"`
	GustKph      float64          `json:"gust_kph"`
	GustMph      float64          `json:"gust_mph"`
	UV           float64          `json:"uv"`
}

// ForecastDay is one calendar day with its aggregate and an hourly breakdown.
// Hour is empty where a provider offers no hourly data.
type ForecastDay struct {
	Date string         `json:"date"`
	Day  DayForecast    `json:"day"`
	Hour []HourForecast `json:"hour"`
}

// WeatherData is one provider's full reading for one location. Timestamp is
// the request time, not the observation time.
type WeatherData struct {
	Location  Location       `json:"location"`
	Current   CurrentWeather `json:"current"`
	Forecast  []ForecastDay  `json:"forecast,omitempty"`
	Source    string         `json:"source"`
	Timestamp time.Time      `json:"timestamp"`
}

// WeatherAPIResponse is a single adapter's call outcome. Data is present iff
// Success is true.
type WeatherAPIResponse struct {
	Success bool         `json:"success"`
	Data    *WeatherData `json:"data,omitempty"`
	Error   string       `json:"error,omitempty"`
	Source  string       `json:"source"`
}

// ConsensusWeatherData is the cross-provider reduction, recomputed per
// request and never persisted.
type ConsensusWeatherData struct {
	Location       Location       `json:"location"`
	Current        CurrentWeather `json:"current"`
	Forecast       []ForecastDay  `json:"forecast,omitempty"`
	Sources        []string       `json:"sources"`
	ConsensusTempC float64        `json:"consensus_temp_c"`
	ConsensusTempF float64        `json:"consensus_temp_f"`
	Timestamp      time.Time      `json:"timestamp"`
}
