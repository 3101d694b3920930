package api

import (
	"context"
	"errors"
	"sync"

	"github.com/weatherdeck/weatherdeck/internal/location"
)

// GeoBridge carries browser geolocation reports into the location
// coordinator. Clients POST position fixes, position errors, and
// permission changes; the coordinator consumes them through the
// PositionProvider and PermissionWatcher interfaces. Redirects issued
// by the coordinator are parked here until a client polls for them.
type GeoBridge struct {
	positions   chan positionReport
	permissions chan location.PermissionState

	mu       sync.Mutex
	redirect string
}

type positionReport struct {
	coords location.Coords
	err    error
}

func NewGeoBridge() *GeoBridge {
	return &GeoBridge{
		positions:   make(chan positionReport, 1),
		permissions: make(chan location.PermissionState, 4),
	}
}

// CurrentPosition blocks until a client reports a fix or an error.
func (g *GeoBridge) CurrentPosition(ctx context.Context) (location.Coords, error) {
	select {
	case rep := <-g.positions:
		return rep.coords, rep.err
	case <-ctx.Done():
		return location.Coords{}, ctx.Err()
	}
}

// Watch implements location.PermissionWatcher.
func (g *GeoBridge) Watch(ctx context.Context) (<-chan location.PermissionState, error) {
	return g.permissions, nil
}

// Navigate implements location.Navigator by parking the redirect path
// for the next poll.
func (g *GeoBridge) Navigate(path string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.redirect = path
}

// TakeRedirect returns the pending redirect path, if any, and clears it.
func (g *GeoBridge) TakeRedirect() (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.redirect == "" {
		return "", false
	}
	path := g.redirect
	g.redirect = ""
	return path, true
}

// ReportPosition hands a fix to a waiting CurrentPosition call. A stale
// unconsumed fix is replaced by the newer one.
func (g *GeoBridge) ReportPosition(coords location.Coords) {
	g.offer(positionReport{coords: coords})
}

// ReportError hands a position failure to a waiting CurrentPosition call.
func (g *GeoBridge) ReportError(code int, message string) {
	g.offer(positionReport{err: &location.PositionError{Code: code, Message: message}})
}

func (g *GeoBridge) offer(rep positionReport) {
	for {
		select {
		case g.positions <- rep:
			return
		default:
		}
		select {
		case <-g.positions:
		default:
		}
	}
}

// ReportPermission forwards a permission change to the coordinator.
// Drops the event if the watcher queue is full.
func (g *GeoBridge) ReportPermission(state location.PermissionState) error {
	select {
	case g.permissions <- state:
		return nil
	default:
		return errors.New("permission queue full")
	}
}
