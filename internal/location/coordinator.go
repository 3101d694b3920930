// Package location coordinates device geolocation, permission observation
// and the one-time redirect to the resolved city's weather page. The three
// concerns are independent: a failing permission watch never blocks the
// position request, and vice versa.
package location

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"sync"

	"github.com/weatherdeck/weatherdeck/internal/storage"
	"github.com/weatherdeck/weatherdeck/internal/weatherstack"
)

// Persisted markers. Both live for the storage lifetime: the redirect
// happens at most once, and the permission-denied notice is shown at most
// once.
const (
	redirectedKey = "geo-redirected"
	errorShownKey = "geo-error-shown"
	userCityKey   = "user-city"
)

// User-facing copy for geolocation failures.
const (
	msgUnsupported = "Geolocation not supported in this browser."
	msgUnavailable = "Unable to determine location. Try again later."
	msgPermDenied  = "Location permission denied."
)

// Failure classifies a geolocation outcome.
type Failure string

const (
	FailureNone             Failure = ""
	FailureUnsupported      Failure = "UNSUPPORTED"
	FailurePermissionDenied Failure = "PERMISSION_DENIED"
	FailureUnavailable      Failure = "UNAVAILABLE"
)

// Coords is a resolved device position.
type Coords struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// CodePermissionDenied is the platform error code for an explicit refusal;
// every other code maps to FailureUnavailable.
const CodePermissionDenied = 1

// PositionError is a failed position request with its platform code.
type PositionError struct {
	Code    int
	Message string
}

func (e *PositionError) Error() string {
	return fmt.Sprintf("position error %d: %s", e.Code, e.Message)
}

// PositionProvider acquires the current device position. A nil provider
// means the platform has no geolocation capability.
type PositionProvider interface {
	CurrentPosition(ctx context.Context) (Coords, error)
}

// PermissionState is a geolocation permission status reported by the
// platform.
type PermissionState string

const (
	PermissionGranted PermissionState = "granted"
	PermissionDenied  PermissionState = "denied"
	PermissionPrompt  PermissionState = "prompt"
)

// PermissionWatcher surfaces permission changes. A nil watcher means the
// platform has no permission-query capability. The channel closes when the
// watch ends.
type PermissionWatcher interface {
	Watch(ctx context.Context) (<-chan PermissionState, error)
}

// Navigator performs a client navigation.
type Navigator interface {
	Navigate(path string)
}

// Notifier delivers user-facing messages (severity "info", "warn" or
// "error").
type Notifier interface {
	Notify(message, severity string)
}

// Fetcher resolves weather for coordinate queries; satisfied by
// *weatherstack.Client.
type Fetcher interface {
	FetchMany(ctx context.Context, endpoint string, variants []weatherstack.Params) []*weatherstack.Response
}

// Coordinator drives the geolocation flow for one activation span.
type Coordinator struct {
	provider  PositionProvider
	watcher   PermissionWatcher
	fetcher   Fetcher
	navigator Navigator
	notifier  Notifier
	markers   *storage.KV
	accessKey string
	logger    *slog.Logger

	mu         sync.Mutex
	coords     *Coords
	failure    Failure
	redirected bool
}

// New creates a Coordinator. provider and watcher may be nil when the
// corresponding platform capability is absent.
func New(provider PositionProvider, watcher PermissionWatcher, fetcher Fetcher,
	navigator Navigator, notifier Notifier, markers *storage.KV,
	accessKey string, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		provider:  provider,
		watcher:   watcher,
		fetcher:   fetcher,
		navigator: navigator,
		notifier:  notifier,
		markers:   markers,
		accessKey: accessKey,
		logger:    logger,
	}
}

// Run starts both concerns: the immediate position request and the
// permission watch. It blocks until ctx is cancelled; listener teardown is
// tied to ctx.
func (c *Coordinator) Run(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.watchPermissions(ctx)
	}()

	c.RequestPosition(ctx)

	<-done
}

// RequestPosition asks the provider for the current position and applies
// the outcome: coords on success, a mapped failure otherwise.
func (c *Coordinator) RequestPosition(ctx context.Context) {
	if c.provider == nil {
		c.setFailure(ctx, FailureUnsupported)
		return
	}

	coords, err := c.provider.CurrentPosition(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		c.setFailure(ctx, mapPositionError(err))
		return
	}

	c.mu.Lock()
	c.coords = &coords
	c.failure = FailureNone
	c.mu.Unlock()

	c.resolveWeather(ctx, coords)
}

// Coords returns the last acquired position, if any.
func (c *Coordinator) Coords() (Coords, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.coords == nil {
		return Coords{}, false
	}
	return *c.coords, true
}

// LastFailure returns the current failure state.
func (c *Coordinator) LastFailure() Failure {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.failure
}

// mapPositionError classifies a failed position request: an explicit
// permission refusal is PERMISSION_DENIED, everything else UNAVAILABLE.
func mapPositionError(err error) Failure {
	var perr *PositionError
	if errors.As(err, &perr) && perr.Code == CodePermissionDenied {
		return FailurePermissionDenied
	}
	return FailureUnavailable
}

// watchPermissions attaches the permission-change listener and reacts to
// transitions until ctx ends.
func (c *Coordinator) watchPermissions(ctx context.Context) {
	if c.watcher == nil {
		c.setFailure(ctx, FailureUnsupported)
		return
	}

	changes, err := c.watcher.Watch(ctx)
	if err != nil {
		c.setFailure(ctx, FailureUnsupported)
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case state, ok := <-changes:
			if !ok {
				return
			}
			switch state {
			case PermissionGranted:
				c.clearFailure()
				c.RequestPosition(ctx)
			case PermissionDenied:
				if err := c.markers.Delete(ctx, userCityKey); err != nil {
					c.logger.Warn("clearing stored user city failed", "error", err)
				}
				c.setFailure(ctx, FailurePermissionDenied)
			}
		}
	}
}

// resolveWeather looks up weather for the acquired coordinates and, when
// the first result resolves to a named location, performs the one-time
// redirect.
func (c *Coordinator) resolveWeather(ctx context.Context, coords Coords) {
	query := formatCoord(coords.Latitude) + "," + formatCoord(coords.Longitude)
	params := weatherstack.Params{}.
		Append("access_key", c.accessKey).
		Append("query", query)

	results := c.fetcher.FetchMany(ctx, "current", []weatherstack.Params{params})
	if len(results) == 0 || results[0] == nil {
		return
	}

	name := results[0].Location.Name
	if name == "" {
		return
	}
	c.redirectIfNeeded(ctx, name)
}

// redirectIfNeeded navigates to the city's weather page at most once per
// storage lifetime, guarded by the persisted marker.
func (c *Coordinator) redirectIfNeeded(ctx context.Context, city string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.redirected {
		return
	}
	done, err := c.markers.Has(ctx, redirectedKey)
	if err != nil {
		c.logger.Warn("redirect marker read failed", "error", err)
		return
	}
	if done {
		c.redirected = true
		return
	}

	if err := c.markers.Set(ctx, redirectedKey, []byte("true")); err != nil {
		c.logger.Warn("redirect marker write failed", "error", err)
		return
	}
	c.redirected = true
	c.navigator.Navigate("/weather?city=" + url.QueryEscape(city))
}

// clearFailure resets the failure state without notifying.
func (c *Coordinator) clearFailure() {
	c.mu.Lock()
	c.failure = FailureNone
	c.mu.Unlock()
}

// setFailure records the failure and emits the matching notification.
// UNSUPPORTED and UNAVAILABLE notify on every occurrence;
// PERMISSION_DENIED only until the persisted marker is set.
func (c *Coordinator) setFailure(ctx context.Context, f Failure) {
	c.mu.Lock()
	c.failure = f
	c.mu.Unlock()

	switch f {
	case FailureUnsupported:
		c.notifier.Notify(msgUnsupported, "error")
	case FailureUnavailable:
		c.notifier.Notify(msgUnavailable, "error")
	case FailurePermissionDenied:
		shown, err := c.markers.Has(ctx, errorShownKey)
		if err != nil {
			c.logger.Warn("permission marker read failed", "error", err)
			return
		}
		if shown {
			return
		}
		c.notifier.Notify(msgPermDenied, "info")
		if err := c.markers.Set(ctx, errorShownKey, []byte("true")); err != nil {
			c.logger.Warn("permission marker write failed", "error", err)
		}
	}
}

// formatCoord renders a coordinate with minimal digits, matching the
// "{latitude},{longitude}" query shape.
func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
