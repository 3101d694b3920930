package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/weatherdeck/weatherdeck/internal/location"
	"github.com/weatherdeck/weatherdeck/internal/weatherstack"
)

var validate = validator.New()

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// WeatherResult is the payload for a single city lookup: the flattened
// report plus the detail cards in display order.
type WeatherResult struct {
	Report  weatherstack.Report       `json:"report"`
	Details []weatherstack.DetailCard `json:"details"`
}

func (s *Server) handleWeather(w http.ResponseWriter, r *http.Request) {
	city := strings.TrimSpace(r.URL.Query().Get("city"))
	if city == "" {
		http.Error(w, "city query parameter is required", http.StatusBadRequest)
		return
	}

	params := weatherstack.Params{}.
		Append("access_key", s.apiKey).
		Append("query", city)

	resp, err := s.weather.FetchWithFallback(r.Context(), "current", params)
	if err != nil {
		var apiErr *weatherstack.APIError
		if errors.As(err, &apiErr) && apiErr.NotFound() {
			http.Error(w, "weather info not found", http.StatusNotFound)
			return
		}
		http.Error(w, "weather data unavailable", http.StatusBadGateway)
		return
	}

	report := weatherstack.Transform(resp)
	result := WeatherResult{
		Report:  report,
		Details: weatherstack.DeriveDetails(report),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

type cityInput struct {
	City string `json:"city" validate:"required"`
}

func (s *Server) handleListCities(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.state.Cities())
}

func (s *Server) handleAddCity(w http.ResponseWriter, r *http.Request) {
	var in cityInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	in.City = strings.TrimSpace(in.City)
	if err := validate.Struct(in); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.state.AddCity(in.City)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemoveCity(w http.ResponseWriter, r *http.Request) {
	s.state.RemoveCity(r.PathValue("city"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListFavorites(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.state.Favorites())
}

func (s *Server) handleAddFavorite(w http.ResponseWriter, r *http.Request) {
	city := strings.TrimSpace(r.PathValue("city"))
	if city == "" {
		http.Error(w, "city is required", http.StatusBadRequest)
		return
	}
	s.state.AddFavorite(city)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	s.state.RemoveFavorite(r.PathValue("city"))
	w.WriteHeader(http.StatusNoContent)
}

type noteInput struct {
	City    string `json:"city" validate:"required"`
	Content string `json:"content" validate:"required"`
}

func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	city := strings.TrimSpace(r.URL.Query().Get("city"))
	if city == "" {
		http.Error(w, "city query parameter is required", http.StatusBadRequest)
		return
	}
	notes := s.state.Notes(city)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(notes)
}

func (s *Server) handleAddNote(w http.ResponseWriter, r *http.Request) {
	var in noteInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	in.City = strings.TrimSpace(in.City)
	in.Content = strings.TrimSpace(in.Content)
	if err := validate.Struct(in); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	note := s.state.AddNote(in.City, in.Content)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(note)
}

type noteUpdate struct {
	Content string `json:"content" validate:"required"`
}

func (s *Server) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	var in noteUpdate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	in.Content = strings.TrimSpace(in.Content)
	if err := validate.Struct(in); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.state.UpdateNote(r.PathValue("city"), r.PathValue("id"), in.Content)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemoveNote(w http.ResponseWriter, r *http.Request) {
	s.state.RemoveNote(r.PathValue("city"), r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListToasts(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.state.Toasts())
}

func (s *Server) handleRemoveToast(w http.ResponseWriter, r *http.Request) {
	s.state.RemoveToast(r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

// geoEvent is a browser geolocation report. Exactly one of the fields
// is expected per request.
type geoEvent struct {
	Position *struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"position"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Permission string `json:"permission" validate:"omitempty,oneof=granted denied prompt"`
}

func (s *Server) handleGeolocation(w http.ResponseWriter, r *http.Request) {
	if s.geo == nil {
		http.Error(w, "geolocation disabled", http.StatusNotFound)
		return
	}

	var ev geoEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(ev); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	switch {
	case ev.Position != nil:
		s.geo.ReportPosition(location.Coords{
			Latitude:  ev.Position.Latitude,
			Longitude: ev.Position.Longitude,
		})
	case ev.Error != nil:
		s.geo.ReportError(ev.Error.Code, ev.Error.Message)
	case ev.Permission != "":
		if err := s.geo.ReportPermission(location.PermissionState(ev.Permission)); err != nil {
			http.Error(w, err.Error(), http.StatusTooManyRequests)
			return
		}
	default:
		http.Error(w, "empty geolocation event", http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleGeoRedirect(w http.ResponseWriter, r *http.Request) {
	if s.geo == nil {
		http.Error(w, "geolocation disabled", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if path, ok := s.geo.TakeRedirect(); ok {
		json.NewEncoder(w).Encode(map[string]string{"redirect": path})
		return
	}
	json.NewEncoder(w).Encode(map[string]string{})
}
