package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/weatherdeck/weatherdeck/internal/state"
	"github.com/weatherdeck/weatherdeck/internal/weatherstack"
)

type Server struct {
	state   *state.Store
	weather *weatherstack.Client
	geo     *GeoBridge
	apiKey  string
	addr    string
	logger  *slog.Logger
}

func NewServer(st *state.Store, weather *weatherstack.Client, geo *GeoBridge, apiKey, addr string, logger *slog.Logger) *Server {
	return &Server{
		state:   st,
		weather: weather,
		geo:     geo,
		apiKey:  apiKey,
		addr:    addr,
		logger:  logger,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/weather", s.handleWeather)

	mux.HandleFunc("GET /api/cities", s.handleListCities)
	mux.HandleFunc("POST /api/cities", s.handleAddCity)
	mux.HandleFunc("DELETE /api/cities/{city}", s.handleRemoveCity)

	mux.HandleFunc("GET /api/favorites", s.handleListFavorites)
	mux.HandleFunc("PUT /api/favorites/{city}", s.handleAddFavorite)
	mux.HandleFunc("DELETE /api/favorites/{city}", s.handleRemoveFavorite)

	mux.HandleFunc("GET /api/notes", s.handleListNotes)
	mux.HandleFunc("POST /api/notes", s.handleAddNote)
	mux.HandleFunc("PATCH /api/notes/{city}/{id}", s.handleUpdateNote)
	mux.HandleFunc("DELETE /api/notes/{city}/{id}", s.handleRemoveNote)

	mux.HandleFunc("GET /api/toasts", s.handleListToasts)
	mux.HandleFunc("DELETE /api/toasts/{id}", s.handleRemoveToast)

	mux.HandleFunc("POST /api/geolocation", s.handleGeolocation)
	mux.HandleFunc("GET /api/geolocation/redirect", s.handleGeoRedirect)

	return mux
}

func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("listening", "addr", s.addr)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}
