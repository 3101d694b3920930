package refresh

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/weatherdeck/weatherdeck/internal/weatherstack"
)

// CityLister supplies the cities whose weather should be kept warm.
type CityLister interface {
	Cities() []string
}

// Refresher periodically re-fetches weather for every tracked city so
// the cache stays fresh enough to serve during outages.
type Refresher struct {
	scheduler *gocron.Scheduler
	weather   *weatherstack.Client
	cities    CityLister
	apiKey    string
	interval  time.Duration
	logger    *slog.Logger
}

func New(cities CityLister, weather *weatherstack.Client, apiKey string, interval time.Duration, logger *slog.Logger) *Refresher {
	return &Refresher{
		scheduler: gocron.NewScheduler(time.UTC),
		weather:   weather,
		cities:    cities,
		apiKey:    apiKey,
		interval:  interval,
		logger:    logger,
	}
}

// Start schedules the periodic refresh job and starts the scheduler.
func (r *Refresher) Start() error {
	minutes := int(r.interval.Minutes())
	if minutes <= 0 {
		minutes = 15
	}

	_, err := r.scheduler.Every(minutes).Minutes().Do(r.runOnce)
	if err != nil {
		return err
	}

	r.scheduler.StartAsync()
	return nil
}

func (r *Refresher) runOnce() {
	cities := r.cities.Cities()
	if len(cities) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	r.logger.Info("refreshing tracked cities", "count", len(cities))

	variants := make([]weatherstack.Params, len(cities))
	for i, city := range cities {
		variants[i] = weatherstack.Params{}.
			Append("access_key", r.apiKey).
			Append("query", city)
	}

	results := r.weather.FetchMany(ctx, "current", variants)

	ok := 0
	for _, resp := range results {
		if resp != nil {
			ok++
		}
	}
	r.logger.Info("refresh complete", "ok", ok, "failed", len(cities)-ok)
}

// Stop stops the scheduler and cancels any future jobs.
func (r *Refresher) Stop() {
	if r.scheduler != nil {
		r.scheduler.Stop()
	}
}
