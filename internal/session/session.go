package session

import (
	"time"

	"github.com/mkravets/flightdesk/internal/domain"
)

// Session is the server-side state behind one login token. Itineraries holds
// the results of the user's most recent search; booking resolves positional
// indexes against this snapshot, never against a fresh query.
type Session struct {
	Token       string             `json:"token"`
	Username    string             `json:"username"`
	Itineraries []domain.Itinerary `json:"itineraries"`
	CreatedAt   time.Time          `json:"created_at"`
}

// ItineraryAt returns the search result at position pos, which must match the
// id the search handed back.
func (s *Session) ItineraryAt(pos int) (*domain.Itinerary, error) {
	if pos < 0 || pos >= len(s.Itineraries) {
		return nil, domain.ErrNoSuchItinerary
	}
	return &s.Itineraries[pos], nil
}
