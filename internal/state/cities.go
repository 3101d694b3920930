package state

import "sort"

// Cities returns the tracked cities, sorted.
func (s *Store) Cities() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.cities...)
}

// AddCity tracks a city. Adding an already-tracked city is observably a
// no-op but still persists the (deduplicated, sorted) list.
func (s *Store) AddCity(city string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cities = insertUnique(s.cities, city)
	s.queue.submit("cities", citiesKey, s.cities)
}

// RemoveCity stops tracking a city. Removing an absent city leaves the
// list unchanged but still persists it.
func (s *Store) RemoveCity(city string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cities = removeString(s.cities, city)
	sort.Strings(s.cities)
	s.queue.submit("cities", citiesKey, s.cities)
}

// insertUnique adds v to a sorted, deduplicated string list.
func insertUnique(list []string, v string) []string {
	for _, s := range list {
		if s == v {
			return list
		}
	}
	list = append(list, v)
	sort.Strings(list)
	return list
}

func removeString(list []string, v string) []string {
	out := list[:0]
	for _, s := range list {
		if s != v {
			out = append(out, s)
		}
	}
	return out
}
