package domain

// Itinerary is an ephemeral search result: one or two legs on the same day.
// It lives only in session state and is addressed by its position in the
// most recent search result list.
type Itinerary struct {
	ID            int     `json:"id"`
	Leg1          Flight  `json:"leg1"`
	Leg2          *Flight `json:"leg2,omitempty"`
	Origin        string  `json:"origin"`
	Dest          string  `json:"dest"`
	Stopover      string  `json:"stopover,omitempty"`
	TotalDuration int     `json:"total_duration"`
}

func (i Itinerary) Direct() bool {
	return i.Leg2 == nil
}

// Day returns the day of month both legs fly on.
func (i Itinerary) Day() int {
	return i.Leg1.DayOfMonth
}

// Price is the fare summed over the legs present.
func (i Itinerary) Price() int {
	if i.Leg2 == nil {
		return i.Leg1.Price
	}
	return i.Leg1.Price + i.Leg2.Price
}
