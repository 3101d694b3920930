// Package state is the application state store: tracked cities, favorites,
// per-city notes and transient toasts. The four slices share one persistence
// envelope but never call into each other. Mutators update memory
// synchronously and hand persistence to a write-behind queue, so readers
// always see the freshest state while the durable copy may transiently lag.
package state

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/weatherdeck/weatherdeck/internal/storage"
)

// Persistence keys, one per slice.
const (
	citiesKey    = "cities"
	favoritesKey = "favorites"
	notesKey     = "notes"
	toastsKey    = "toasts"
)

// defaultCities seeds the tracked list on first run. The seed is not
// written back to storage until the user mutates the list.
var defaultCities = []string{
	"Tokyo",
	"Delhi",
	"Shanghai",
	"Dhaka",
	"Cairo",
	"Sao Paulo",
	"Mexico City",
	"Beijing",
	"Mumbai",
	"Osaka-Shi",
	"Chongqing",
	"Karachi",
	"Kinshasa",
	"Lagos",
	"Istanbul",
}

// Store is the process-wide state container. All access is safe for
// concurrent use.
type Store struct {
	mu     sync.Mutex
	kv     *storage.KV
	logger *slog.Logger
	queue  *persister

	// test seams
	now   func() time.Time
	newID func() string

	cities    []string
	favorites []string
	notes     map[string][]Note
	toasts    []Toast
	timers    map[string]*time.Timer
}

// New creates a Store backed by kv and starts its write-behind persister.
// Call Load before use and Close on shutdown.
func New(kv *storage.KV, logger *slog.Logger) *Store {
	return &Store{
		kv:     kv,
		logger: logger,
		queue:  newPersister(kv, logger),
		now:    time.Now,
		newID:  func() string { return uuid.New().String() },
		notes:  make(map[string][]Note),
		timers: make(map[string]*time.Timer),
	}
}

// Load reads all four slices from storage. Absent slices fall back to
// their defaults; the defaults are not persisted. Toasts restored from a
// previous run are swept for expiry and the survivors get fresh removal
// timers.
func (s *Store) Load(ctx context.Context) error {
	var cities []string
	if err := s.kv.GetJSON(ctx, citiesKey, &cities); err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("load cities: %w", err)
		}
		cities = append([]string(nil), defaultCities...)
	}
	sort.Strings(cities)

	var favorites []string
	if err := s.kv.GetJSON(ctx, favoritesKey, &favorites); err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("load favorites: %w", err)
		}
		favorites = nil
	}

	notes := make(map[string][]Note)
	if err := s.kv.GetJSON(ctx, notesKey, &notes); err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("load notes: %w", err)
		}
	}

	var toasts []Toast
	if err := s.kv.GetJSON(ctx, toastsKey, &toasts); err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("load toasts: %w", err)
		}
	}

	s.mu.Lock()
	s.cities = cities
	s.favorites = favorites
	s.notes = notes
	s.toasts = toasts
	s.mu.Unlock()

	// Covers toasts whose removal timer could not have fired because the
	// process was not running when they expired.
	s.CleanExpiredToasts()

	s.mu.Lock()
	for _, t := range s.toasts {
		remaining := ToastLifetime - s.now().Sub(t.Timestamp)
		s.scheduleRemovalLocked(t.ID, remaining)
	}
	s.mu.Unlock()

	return nil
}

// Notify implements the toast-based notifier consumed by the fetch and
// geolocation layers. Unknown severities degrade to info.
func (s *Store) Notify(message, severity string) {
	typ := ToastType(severity)
	switch typ {
	case ToastInfo, ToastWarn, ToastError:
	default:
		typ = ToastInfo
	}
	s.AddToast(message, typ)
}

// Close stops toast timers and drains the persistence queue.
func (s *Store) Close() {
	s.mu.Lock()
	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
	s.mu.Unlock()

	s.queue.close()
}
