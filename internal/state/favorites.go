package state

// Favorites returns the favorited cities, sorted. Favorites and tracked
// cities are independent sets: favoriting does not imply tracking.
func (s *Store) Favorites() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.favorites...)
}

// IsFavorite reports whether city is favorited.
func (s *Store) IsFavorite(city string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.favorites {
		if f == city {
			return true
		}
	}
	return false
}

// AddFavorite marks a city as favorite. Idempotent; always persists.
func (s *Store) AddFavorite(city string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.favorites = insertUnique(s.favorites, city)
	s.queue.submit("favorites", favoritesKey, s.favorites)
}

// RemoveFavorite unmarks a city. Removing an absent city is a no-op that
// still persists.
func (s *Store) RemoveFavorite(city string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.favorites = removeString(s.favorites, city)
	s.queue.submit("favorites", favoritesKey, s.favorites)
}
