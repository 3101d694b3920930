// Package weatherstack is the client for the current-conditions weather
// provider. It layers a last-known-response cache under every live fetch:
// network first, cache as the fallback, a single user notification when
// both fail.
package weatherstack

import "fmt"

// CodeLocationNotFound is the provider error code for an unknown location.
const CodeLocationNotFound = 615

// Response is the provider's current-conditions payload.
type Response struct {
	Location Location `json:"location"`
	Current  Current  `json:"current"`
}

type Location struct {
	Name      string `json:"name"`
	Region    string `json:"region"`
	Localtime string `json:"localtime"`
}

type Current struct {
	Temperature         float64  `json:"temperature"`
	Feelslike           float64  `json:"feelslike"`
	UVIndex             float64  `json:"uv_index"`
	Humidity            float64  `json:"humidity"`
	WindSpeed           float64  `json:"wind_speed"`
	Pressure            float64  `json:"pressure"`
	Visibility          float64  `json:"visibility"`
	WeatherDescriptions []string `json:"weather_descriptions"`
	WeatherCode         int      `json:"weather_code"`
	WeatherIcons        []string `json:"weather_icons"`
	ObservationTime     string   `json:"observation_time"`
	Astro               Astro    `json:"astro"`
}

type Astro struct {
	Sunrise          string `json:"sunrise"`
	Sunset           string `json:"sunset"`
	Moonrise         string `json:"moonrise"`
	Moonset          string `json:"moonset"`
	MoonPhase        string `json:"moon_phase"`
	MoonIllumination string `json:"moon_illumination"`
}

// APIError is a provider-reported failure. Code distinguishes "location
// not found" (615) from everything else; control flow treats both the same
// and only the notification severity differs.
type APIError struct {
	StatusCode int    // HTTP status of the failed response
	Code       int    `json:"code"`
	Type       string `json:"type"`
	Info       string `json:"info"`
}

func (e *APIError) Error() string {
	if e.Info != "" {
		return fmt.Sprintf("provider error %d (%s): %s", e.Code, e.Type, e.Info)
	}
	return fmt.Sprintf("provider error %d: status %d", e.Code, e.StatusCode)
}

// NotFound reports whether the error is the provider's location-not-found code.
func (e *APIError) NotFound() bool {
	return e.Code == CodeLocationNotFound
}
