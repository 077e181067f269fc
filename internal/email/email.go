package email

import (
	"context"
	"fmt"

	"github.com/mkravets/flightdesk/internal/kafka"
)

type Sender struct{}

func NewSender() *Sender {
	return &Sender{}
}

func (s *Sender) Send(ctx context.Context, event kafka.ReservationEvent) error {
	switch event.Type {
	case kafka.EventReservationPaid:
		fmt.Printf("notify %s: reservation %d paid, %d charged\n", event.Username, event.ReservationID, event.Price)
	default:
		fmt.Printf("notify %s: reservation %d booked for day %d\n", event.Username, event.ReservationID, event.DayOfMonth)
	}
	return nil
}
