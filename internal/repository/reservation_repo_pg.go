package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mkravets/flightdesk/internal/domain"
)

// ReservationRepository owns the reservations table. The read predicates
// run inside the caller's transaction so booking sees a consistent snapshot
// of capacity and same-day state.
type ReservationRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	HasSameDayReservation(ctx context.Context, username string, day int) (bool, error)
	// CountLegSeats counts reservations referencing flightID in the given
	// leg slot (1 or 2) on that day. The schema stores two legs in parallel
	// columns, so each slot is counted separately.
	CountLegSeats(ctx context.Context, flightID int64, leg, day int) (int, error)
	// Create inserts the reservation with paid=false and fills in the
	// sequence-assigned id.
	Create(ctx context.Context, res *domain.Reservation) error
	// FindUnpaidForUpdate locks and returns the unpaid reservation owned by
	// username, or domain.ErrReservationNotFound.
	FindUnpaidForUpdate(ctx context.Context, id int64, username string) (*domain.Reservation, error)
	MarkPaid(ctx context.Context, id int64) error
	ListByUser(ctx context.Context, username string) ([]domain.Reservation, error)
}

type PGReservationRepository struct {
	db *pgxpool.Pool
}

func NewReservationRepository(db *pgxpool.Pool) ReservationRepository {
	return &PGReservationRepository{db: db}
}

func (r *PGReservationRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.db, fn)
}

func (r *PGReservationRepository) HasSameDayReservation(ctx context.Context, username string, day int) (bool, error) {
	const query = `SELECT count(*) FROM reservations WHERE day_of_month = $1 AND username = $2`
	var num int
	if err := r.queryRow(ctx, query, day, username).Scan(&num); err != nil {
		return false, fmt.Errorf("same-day check: %w", err)
	}
	return num > 0, nil
}

func (r *PGReservationRepository) CountLegSeats(ctx context.Context, flightID int64, leg, day int) (int, error) {
	var query string
	switch leg {
	case 1:
		query = `SELECT count(*) FROM reservations WHERE day_of_month = $1 AND flight_id1 = $2`
	case 2:
		query = `SELECT count(*) FROM reservations WHERE day_of_month = $1 AND flight_id2 = $2`
	default:
		return 0, fmt.Errorf("count leg seats: invalid leg %d", leg)
	}

	var num int
	if err := r.queryRow(ctx, query, day, flightID).Scan(&num); err != nil {
		return 0, fmt.Errorf("count leg seats: %w", err)
	}
	return num, nil
}

func (r *PGReservationRepository) Create(ctx context.Context, res *domain.Reservation) error {
	const stmt = `
INSERT INTO reservations (paid, day_of_month, username, flight_id1, flight_id2)
VALUES (FALSE, $1, $2, $3, $4)
RETURNING id`

	err := r.queryRow(ctx, stmt, res.DayOfMonth, res.Username, res.FlightID1, res.FlightID2).Scan(&res.ID)
	if err != nil {
		return fmt.Errorf("create reservation: %w", err)
	}
	res.Paid = false
	return nil
}

func (r *PGReservationRepository) FindUnpaidForUpdate(ctx context.Context, id int64, username string) (*domain.Reservation, error) {
	const query = `
SELECT id, paid, day_of_month, username, flight_id1, flight_id2
FROM reservations
WHERE id = $1 AND username = $2 AND paid = FALSE
FOR UPDATE`

	var res domain.Reservation
	err := r.queryRow(ctx, query, id, username).
		Scan(&res.ID, &res.Paid, &res.DayOfMonth, &res.Username, &res.FlightID1, &res.FlightID2)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrReservationNotFound
		}
		return nil, fmt.Errorf("find unpaid reservation: %w", err)
	}
	return &res, nil
}

func (r *PGReservationRepository) MarkPaid(ctx context.Context, id int64) error {
	const stmt = `UPDATE reservations SET paid = TRUE WHERE id = $1 AND paid = FALSE`
	tag, err := r.exec(ctx, stmt, id)
	if err != nil {
		return fmt.Errorf("mark paid: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrReservationNotFound
	}
	return nil
}

func (r *PGReservationRepository) ListByUser(ctx context.Context, username string) ([]domain.Reservation, error) {
	const query = `
SELECT id, paid, day_of_month, username, flight_id1, flight_id2
FROM reservations
WHERE username = $1
ORDER BY id ASC`

	rows, err := r.query(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	defer rows.Close()

	reservations := make([]domain.Reservation, 0)
	for rows.Next() {
		var res domain.Reservation
		if err := rows.Scan(&res.ID, &res.Paid, &res.DayOfMonth, &res.Username, &res.FlightID1, &res.FlightID2); err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		reservations = append(reservations, res)
	}
	return reservations, rows.Err()
}

func (r *PGReservationRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.db.Exec(ctx, sql, args...)
}

func (r *PGReservationRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.db.Query(ctx, sql, args...)
}

func (r *PGReservationRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.db.QueryRow(ctx, sql, args...)
}

var _ ReservationRepository = (*PGReservationRepository)(nil)
