package booking

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/mkravets/flightdesk/internal/domain"
	"github.com/mkravets/flightdesk/internal/kafka"
	"github.com/mkravets/flightdesk/internal/logger"
	"github.com/mkravets/flightdesk/internal/metrics"
	"github.com/mkravets/flightdesk/internal/repository"
	"github.com/mkravets/flightdesk/internal/session"
)

type BookingUseCase interface {
	Book(ctx context.Context, token string, pos int) (*domain.Reservation, error)
	Pay(ctx context.Context, token string, reservationID int64) (int, error)
	ListReservations(ctx context.Context, token string) ([]ReservationDetail, error)
}

// ReservationDetail is a reservation hydrated with its flights for listing.
type ReservationDetail struct {
	ID      int64           `json:"id"`
	Paid    bool            `json:"paid"`
	Flights []domain.Flight `json:"flights"`
}

// SessionStore resolves login tokens to session state.
type SessionStore interface {
	Get(ctx context.Context, token string) (*session.Session, error)
}

type Producer interface {
	PublishWithRetry(ctx context.Context, topic, key string, payload any, maxRetries int) error
}

type BookingService struct {
	sessions     SessionStore
	flights      repository.FlightRepository
	reservations repository.ReservationRepository
	users        repository.UserRepository
	producer     Producer
	metrics      *metrics.Metrics
	topic        string
	attempts     int
	retryBase    time.Duration
}

type BookingServiceOption func(*BookingService)

// WithProducer enables event publishing after successful commits.
func WithProducer(p Producer, topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.producer = p
		s.topic = topic
	}
}

func WithMetrics(m *metrics.Metrics) BookingServiceOption {
	return func(s *BookingService) {
		s.metrics = m
	}
}

func NewBookingService(
	sessions SessionStore,
	flights repository.FlightRepository,
	reservations repository.ReservationRepository,
	users repository.UserRepository,
	attempts int,
	retryBase time.Duration,
	opts ...BookingServiceOption,
) *BookingService {
	if attempts < 1 {
		attempts = 1
	}
	service := &BookingService{
		sessions:     sessions,
		flights:      flights,
		reservations: reservations,
		users:        users,
		attempts:     attempts,
		retryBase:    retryBase,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// Book reserves the itinerary at position pos of the session's latest search.
// The capacity and same-day checks run inside one serializable transaction,
// so two racing bookings for the last seat cannot both commit: the loser is
// rolled back by postgres and retried here from scratch.
func (s *BookingService) Book(ctx context.Context, token string, pos int) (*domain.Reservation, error) {
	var booked *domain.Reservation

	err := s.withRetry(ctx, "book", func(ctx context.Context) error {
		sess, err := s.sessions.Get(ctx, token)
		if err != nil {
			return err
		}
		it, err := sess.ItineraryAt(pos)
		if err != nil {
			return err
		}

		res := &domain.Reservation{
			DayOfMonth: it.Day(),
			Username:   sess.Username,
			FlightID1:  it.Leg1.FID,
		}
		if it.Leg2 != nil {
			fid2 := it.Leg2.FID
			res.FlightID2 = &fid2
		}

		err = s.reservations.WithTx(ctx, func(ctx context.Context) error {
			taken, err := s.reservations.HasSameDayReservation(ctx, sess.Username, it.Day())
			if err != nil {
				return err
			}
			if taken {
				return domain.ErrSameDayConflict
			}

			if err := s.checkCapacity(ctx, it.Leg1, 1, it.Day()); err != nil {
				return err
			}
			if it.Leg2 != nil {
				if err := s.checkCapacity(ctx, *it.Leg2, 2, it.Day()); err != nil {
					return err
				}
			}

			return s.reservations.Create(ctx, res)
		})
		if err != nil {
			return err
		}

		booked = res
		return nil
	})

	s.recordBooking(err)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, kafka.ReservationEvent{
		Type:          kafka.EventReservationBooked,
		ReservationID: booked.ID,
		Username:      booked.Username,
		DayOfMonth:    booked.DayOfMonth,
		FlightID1:     booked.FlightID1,
		FlightID2:     booked.FlightID2,
	})
	return booked, nil
}

// checkCapacity compares the seats already reserved on flight in its leg
// slot for that day against the flight's capacity.
func (s *BookingService) checkCapacity(ctx context.Context, flight domain.Flight, leg, day int) error {
	capacity, err := s.flights.Capacity(ctx, flight.FID)
	if err != nil {
		return err
	}
	taken, err := s.reservations.CountLegSeats(ctx, flight.FID, leg, day)
	if err != nil {
		return err
	}
	if taken >= capacity {
		return domain.ErrCapacityExceeded
	}
	return nil
}

// Pay charges the session's user for an unpaid reservation they own and
// returns the balance left afterwards. The price is the sum of the
// reservation's own legs, read inside the same transaction that debits.
func (s *BookingService) Pay(ctx context.Context, token string, reservationID int64) (int, error) {
	var remaining int
	var paid *domain.Reservation
	var price int

	err := s.withRetry(ctx, "pay", func(ctx context.Context) error {
		sess, err := s.sessions.Get(ctx, token)
		if err != nil {
			return err
		}

		return s.reservations.WithTx(ctx, func(ctx context.Context) error {
			res, err := s.reservations.FindUnpaidForUpdate(ctx, reservationID, sess.Username)
			if err != nil {
				return err
			}

			price, err = s.flights.PriceSum(ctx, res.LegIDs())
			if err != nil {
				return err
			}

			balance, err := s.users.BalanceForUpdate(ctx, sess.Username)
			if err != nil {
				return err
			}
			if balance < price {
				return domain.ErrInsufficientFunds
			}

			if err := s.users.Debit(ctx, sess.Username, price); err != nil {
				return err
			}
			if err := s.reservations.MarkPaid(ctx, res.ID); err != nil {
				return err
			}

			remaining = balance - price
			paid = res
			return nil
		})
	})

	s.recordPayment(err)
	if err != nil {
		return 0, err
	}

	s.publish(ctx, kafka.ReservationEvent{
		Type:          kafka.EventReservationPaid,
		ReservationID: paid.ID,
		Username:      paid.Username,
		DayOfMonth:    paid.DayOfMonth,
		FlightID1:     paid.FlightID1,
		FlightID2:     paid.FlightID2,
		Price:         price,
	})
	return remaining, nil
}

// ListReservations returns the session user's reservations, oldest first,
// each hydrated with its flights.
func (s *BookingService) ListReservations(ctx context.Context, token string) ([]ReservationDetail, error) {
	sess, err := s.sessions.Get(ctx, token)
	if err != nil {
		return nil, err
	}

	reservations, err := s.reservations.ListByUser(ctx, sess.Username)
	if err != nil {
		return nil, err
	}

	details := make([]ReservationDetail, 0, len(reservations))
	for _, res := range reservations {
		detail := ReservationDetail{ID: res.ID, Paid: res.Paid}
		for _, fid := range res.LegIDs() {
			flight, err := s.flights.GetByID(ctx, fid)
			if err != nil {
				return nil, err
			}
			detail.Flights = append(detail.Flights, *flight)
		}
		details = append(details, detail)
	}
	return details, nil
}

// withRetry runs fn until it succeeds, fails with a non-retryable error, or
// the attempt budget runs out. Retryable rollbacks restart fn from the top,
// including the session read, after a jittered exponential backoff.
func (s *BookingService) withRetry(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt < s.attempts; attempt++ {
		if attempt > 0 {
			if s.metrics != nil {
				s.metrics.TxRetriesTotal.WithLabelValues(operation).Inc()
			}
			backoff := s.retryBase << (attempt - 1)
			jitter := time.Duration(rand.Int63n(int64(backoff) + 1))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff + jitter):
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if !repository.IsRetryable(lastErr) {
			return lastErr
		}
		logger.Debug("transaction conflict, retrying",
			zap.String("operation", operation),
			zap.Int("attempt", attempt+1),
			zap.Error(lastErr))
	}
	return fmt.Errorf("%w: %v", domain.ErrTxConflict, lastErr)
}

func (s *BookingService) recordBooking(err error) {
	if s.metrics != nil {
		s.metrics.BookingsTotal.WithLabelValues(outcomeLabel(err)).Inc()
	}
}

func (s *BookingService) recordPayment(err error) {
	if s.metrics != nil {
		s.metrics.PaymentsTotal.WithLabelValues(outcomeLabel(err)).Inc()
	}
}

func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, domain.ErrSameDayConflict):
		return metrics.OutcomeSameDayConflict
	case errors.Is(err, domain.ErrCapacityExceeded):
		return metrics.OutcomeCapacityExceeded
	case errors.Is(err, domain.ErrInsufficientFunds):
		return metrics.OutcomeInsufficientFunds
	case errors.Is(err, domain.ErrReservationNotFound), errors.Is(err, domain.ErrNoSuchItinerary):
		return metrics.OutcomeNotFound
	case errors.Is(err, domain.ErrTxConflict):
		return metrics.OutcomeConflictExhausted
	default:
		return metrics.OutcomeError
	}
}

func (s *BookingService) publish(ctx context.Context, event kafka.ReservationEvent) {
	if s.producer == nil || s.topic == "" {
		return
	}
	key := strconv.FormatInt(event.ReservationID, 10)
	if err := s.producer.PublishWithRetry(ctx, s.topic, key, event, 3); err != nil {
		logger.Error("publish reservation event", zap.String("type", event.Type), zap.Error(err))
	}
}

var _ BookingUseCase = (*BookingService)(nil)
