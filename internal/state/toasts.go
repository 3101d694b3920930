package state

import (
	"time"

	"github.com/weatherdeck/weatherdeck/internal/metrics"
)

// ToastLifetime is how long a toast stays visible before auto-removal.
const ToastLifetime = 3000 * time.Millisecond

// ToastType is the toast severity.
type ToastType string

const (
	ToastInfo  ToastType = "info"
	ToastWarn  ToastType = "warn"
	ToastError ToastType = "error"
)

// Toast is a transient user notification. Every toast is removed no later
// than ToastLifetime after creation, by its timer or by a sweep.
type Toast struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Type      ToastType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

// Toasts returns the live toasts in creation order.
func (s *Store) Toasts() []Toast {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Toast(nil), s.toasts...)
}

// AddToast appends a toast, schedules its removal after ToastLifetime and
// returns the toast plus a handle that cancels the pending removal.
// An empty type defaults to info.
func (s *Store) AddToast(message string, typ ToastType) (Toast, func()) {
	if typ == "" {
		typ = ToastInfo
	}
	toast := Toast{
		ID:        s.newID(),
		Message:   message,
		Type:      typ,
		Timestamp: s.now(),
	}

	s.mu.Lock()
	s.toasts = append(s.toasts, toast)
	s.scheduleRemovalLocked(toast.ID, ToastLifetime)
	s.queue.submit("toasts", toastsKey, s.toasts)
	s.mu.Unlock()

	metrics.ToastsEmittedTotal.WithLabelValues(string(typ)).Inc()

	id := toast.ID
	return toast, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if timer, ok := s.timers[id]; ok {
			timer.Stop()
			delete(s.timers, id)
		}
	}
}

// RemoveToast removes a toast by id. Removing an absent id is a no-op;
// the timer and sweep paths may race and both must be safe.
func (s *Store) RemoveToast(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeToastLocked(id)
	s.queue.submit("toasts", toastsKey, s.toasts)
}

// CleanExpiredToasts removes every toast whose age has reached
// ToastLifetime. Run once at startup over the restored snapshot.
func (s *Store) CleanExpiredToasts() {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.toasts[:0]
	for _, t := range s.toasts {
		if now.Sub(t.Timestamp) < ToastLifetime {
			kept = append(kept, t)
			continue
		}
		if timer, ok := s.timers[t.ID]; ok {
			timer.Stop()
			delete(s.timers, t.ID)
		}
	}
	s.toasts = kept
	s.queue.submit("toasts", toastsKey, s.toasts)
}

func (s *Store) removeToastLocked(id string) {
	out := s.toasts[:0]
	for _, t := range s.toasts {
		if t.ID != id {
			out = append(out, t)
		}
	}
	s.toasts = out

	if timer, ok := s.timers[id]; ok {
		timer.Stop()
		delete(s.timers, id)
	}
}

// scheduleRemovalLocked arms the auto-removal timer for a toast.
func (s *Store) scheduleRemovalLocked(id string, d time.Duration) {
	if d <= 0 {
		d = time.Millisecond
	}
	s.timers[id] = time.AfterFunc(d, func() {
		s.RemoveToast(id)
	})
}
