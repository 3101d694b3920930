package state

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/weatherdeck/weatherdeck/internal/storage"
)

func setupTestStore(t *testing.T) (*Store, *storage.KV) {
	t.Helper()

	kv, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("open kv: %v", err)
	}
	t.Cleanup(func() { kv.Close() })

	s := New(kv, slog.New(slog.DiscardHandler))
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return s, kv
}

// drain flushes the write-behind queue so storage reflects all mutations.
// The store is unusable afterwards.
func drain(s *Store) {
	s.Close()
}

func TestLoadSeedsDefaultCitiesWithoutPersisting(t *testing.T) {
	s, kv := setupTestStore(t)

	cities := s.Cities()
	if len(cities) != len(defaultCities) {
		t.Fatalf("len(cities) = %d, want %d", len(cities), len(defaultCities))
	}
	if !sort.StringsAreSorted(cities) {
		t.Error("seeded cities are not sorted")
	}

	drain(s)

	// The seed must not be written back until the user mutates the list.
	if _, err := kv.Get(context.Background(), citiesKey); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("cities key persisted on load: %v", err)
	}
}

func TestRemoveCityPersistsSortedList(t *testing.T) {
	s, kv := setupTestStore(t)

	s.RemoveCity("Tokyo")
	cities := s.Cities()
	for _, c := range cities {
		if c == "Tokyo" {
			t.Fatal("Tokyo still tracked after RemoveCity")
		}
	}

	drain(s)

	var persisted []string
	if err := kv.GetJSON(context.Background(), citiesKey, &persisted); err != nil {
		t.Fatalf("read persisted cities: %v", err)
	}
	if len(persisted) != len(defaultCities)-1 {
		t.Errorf("persisted %d cities, want %d", len(persisted), len(defaultCities)-1)
	}
	if !sort.StringsAreSorted(persisted) {
		t.Error("persisted cities are not sorted")
	}
}

func TestRemoveAbsentCityStillPersists(t *testing.T) {
	s, kv := setupTestStore(t)

	before := s.Cities()
	s.RemoveCity("Nowhere")
	after := s.Cities()
	if len(after) != len(before) {
		t.Fatalf("len changed: %d -> %d", len(before), len(after))
	}

	drain(s)

	var persisted []string
	if err := kv.GetJSON(context.Background(), citiesKey, &persisted); err != nil {
		t.Fatalf("removing an absent city must still persist the list: %v", err)
	}
}

func TestAddCityDeduplicates(t *testing.T) {
	s, _ := setupTestStore(t)
	defer drain(s)

	s.AddCity("Zagreb")
	s.AddCity("Zagreb")

	count := 0
	for _, c := range s.Cities() {
		if c == "Zagreb" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("Zagreb appears %d times, want 1", count)
	}
}

func TestFavoritesRoundTrip(t *testing.T) {
	s, _ := setupTestStore(t)
	defer drain(s)

	before := s.Favorites()
	s.AddFavorite("Cairo")
	if !s.IsFavorite("Cairo") {
		t.Fatal("Cairo not favorited after AddFavorite")
	}
	s.RemoveFavorite("Cairo")
	after := s.Favorites()
	if len(after) != len(before) {
		t.Errorf("favorites not restored: %v", after)
	}
}

func TestAddFavoriteIdempotent(t *testing.T) {
	s, _ := setupTestStore(t)
	defer drain(s)

	s.AddFavorite("Lagos")
	s.AddFavorite("Lagos")
	if got := s.Favorites(); len(got) != 1 {
		t.Errorf("favorites = %v, want one entry", got)
	}
}

// Favorites and tracked cities are deliberately independent sets: a city
// can be favorited without being tracked and vice versa. This pins the
// current behavior so a future coupling is a conscious decision.
func TestFavoritesIndependentOfCities(t *testing.T) {
	s, _ := setupTestStore(t)
	defer drain(s)

	s.AddFavorite("Atlantis") // never tracked
	if !s.IsFavorite("Atlantis") {
		t.Fatal("favoriting an untracked city must succeed")
	}
	for _, c := range s.Cities() {
		if c == "Atlantis" {
			t.Fatal("favoriting must not add the city to the tracked list")
		}
	}

	s.RemoveCity("Tokyo")
	s.AddFavorite("Tokyo") // favoritable even though untracked
	if !s.IsFavorite("Tokyo") {
		t.Fatal("removing a city from tracking must not block favoriting it")
	}
}

func TestNotesLifecycleRoundTrip(t *testing.T) {
	s, _ := setupTestStore(t)
	defer drain(s)

	before := s.Notes("Cairo")

	note := s.AddNote("Cairo", "bring sunscreen")
	if note.ID == "" || note.CreatedAt == "" {
		t.Fatalf("note missing id or timestamp: %+v", note)
	}

	s.UpdateNote("Cairo", note.ID, "bring a hat")
	got := s.Notes("Cairo")
	if len(got) != 1 || got[0].Content != "bring a hat" {
		t.Fatalf("notes after update = %+v", got)
	}
	if got[0].ID != note.ID || got[0].CreatedAt != note.CreatedAt {
		t.Error("update must not touch id or createdAt")
	}

	s.RemoveNote("Cairo", note.ID)
	after := s.Notes("Cairo")
	if len(after) != len(before) {
		t.Errorf("notes not restored after remove: %+v", after)
	}
}

func TestUpdateUnknownNoteIsNoOp(t *testing.T) {
	s, _ := setupTestStore(t)
	defer drain(s)

	note := s.AddNote("Cairo", "original")
	s.UpdateNote("Cairo", "no-such-id", "changed")

	got := s.Notes("Cairo")
	if len(got) != 1 || got[0].Content != "original" {
		t.Errorf("notes = %+v, want untouched original", got)
	}
	_ = note
}

func TestNotesPreserveInsertionOrder(t *testing.T) {
	s, _ := setupTestStore(t)
	defer drain(s)

	for i := 0; i < 3; i++ {
		s.AddNote("Tokyo", fmt.Sprintf("note %d", i))
	}
	got := s.Notes("Tokyo")
	if len(got) != 3 {
		t.Fatalf("len(notes) = %d, want 3", len(got))
	}
	for i, n := range got {
		if n.Content != fmt.Sprintf("note %d", i) {
			t.Errorf("notes[%d] = %q, want insertion order", i, n.Content)
		}
	}
}

func TestStatePersistsAcrossRestart(t *testing.T) {
	kv, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("open kv: %v", err)
	}
	t.Cleanup(func() { kv.Close() })

	s1 := New(kv, slog.New(slog.DiscardHandler))
	if err := s1.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	s1.AddFavorite("Cairo")
	note := s1.AddNote("Cairo", "persisted note")
	s1.Close()

	s2 := New(kv, slog.New(slog.DiscardHandler))
	if err := s2.Load(context.Background()); err != nil {
		t.Fatalf("reload: %v", err)
	}
	defer s2.Close()

	if !s2.IsFavorite("Cairo") {
		t.Error("favorite lost across restart")
	}
	notes := s2.Notes("Cairo")
	if len(notes) != 1 || notes[0].ID != note.ID {
		t.Errorf("notes after restart = %+v", notes)
	}
}
