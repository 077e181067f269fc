package domain

// Reservation is a durable booking of an itinerary under a user.
// FlightID2 is nil for direct itineraries. Paid is the only field ever
// mutated after insert, exactly once, by the payment engine.
type Reservation struct {
	ID         int64  `json:"id"`
	Paid       bool   `json:"paid"`
	DayOfMonth int    `json:"day_of_month"`
	Username   string `json:"username"`
	FlightID1  int64  `json:"flight_id1"`
	FlightID2  *int64 `json:"flight_id2,omitempty"`
}

// LegIDs returns the flight ids referenced by the reservation.
func (r Reservation) LegIDs() []int64 {
	if r.FlightID2 == nil {
		return []int64{r.FlightID1}
	}
	return []int64{r.FlightID1, *r.FlightID2}
}
