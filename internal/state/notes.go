package state

import "time"

// Note is a free-text annotation owned by exactly one city.
type Note struct {
	ID        string `json:"id"`
	City      string `json:"city"`
	Content   string `json:"content"`
	CreatedAt string `json:"createdAt"` // ISO-8601, UTC
}

// Notes returns a city's notes in insertion order.
func (s *Store) Notes(city string) []Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Note(nil), s.notes[city]...)
}

// AddNote appends a note to a city's list and returns it.
func (s *Store) AddNote(city, content string) Note {
	note := Note{
		ID:        s.newID(),
		City:      city,
		Content:   content,
		CreatedAt: s.now().UTC().Format(time.RFC3339),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.notes[city] = append(s.notes[city], note)
	s.queue.submit("notes", notesKey, s.notes)
	return note
}

// UpdateNote replaces the content of the matching note, leaving id,
// createdAt and city untouched. An unknown id is a no-op that still
// persists the mapping.
func (s *Store) UpdateNote(city, id, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.notes[city]
	for i := range list {
		if list[i].ID == id {
			list[i].Content = content
			break
		}
	}
	s.queue.submit("notes", notesKey, s.notes)
}

// RemoveNote deletes the matching note from a city's list.
func (s *Store) RemoveNote(city, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.notes[city]
	out := list[:0]
	for _, n := range list {
		if n.ID != id {
			out = append(out, n)
		}
	}
	s.notes[city] = out
	s.queue.submit("notes", notesKey, s.notes)
}
