package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestItinerary(t *testing.T) {
	direct := Itinerary{Leg1: Flight{FID: 10, DayOfMonth: 5, Price: 100}}
	assert.True(t, direct.Direct())
	assert.Equal(t, 5, direct.Day())
	assert.Equal(t, 100, direct.Price())

	leg2 := Flight{FID: 20, DayOfMonth: 5, Price: 50}
	oneStop := Itinerary{Leg1: direct.Leg1, Leg2: &leg2}
	assert.False(t, oneStop.Direct())
	assert.Equal(t, 150, oneStop.Price())
}

func TestReservation_LegIDs(t *testing.T) {
	direct := Reservation{ID: 1, FlightID1: 10}
	assert.Equal(t, []int64{10}, direct.LegIDs())

	fid2 := int64(20)
	oneStop := Reservation{ID: 2, FlightID1: 10, FlightID2: &fid2}
	assert.Equal(t, []int64{10, 20}, oneStop.LegIDs())
}
