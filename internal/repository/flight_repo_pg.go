package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mkravets/flightdesk/internal/domain"
)

// FlightRepository reads the immutable flight catalog.
type FlightRepository interface {
	GetByID(ctx context.Context, fid int64) (*domain.Flight, error)
	Capacity(ctx context.Context, fid int64) (int, error)
	// PriceSum returns the total fare of the given flights.
	PriceSum(ctx context.Context, fids []int64) (int, error)
	SearchDirect(ctx context.Context, originCity, destCity string, day, limit int) ([]domain.Flight, error)
	SearchOneStop(ctx context.Context, originCity, destCity string, day, limit int) ([][2]domain.Flight, error)
}

type PGFlightRepository struct {
	db *pgxpool.Pool
}

func NewFlightRepository(db *pgxpool.Pool) FlightRepository {
	return &PGFlightRepository{db: db}
}

const flightColumns = `fid, day_of_month, carrier_id, flight_num, origin_city, dest_city, actual_time, capacity, price, canceled`

func scanFlight(row pgx.Row) (*domain.Flight, error) {
	var f domain.Flight
	var canceled int
	if err := row.Scan(&f.FID, &f.DayOfMonth, &f.CarrierID, &f.FlightNum, &f.OriginCity, &f.DestCity, &f.Duration, &f.Capacity, &f.Price, &canceled); err != nil {
		return nil, err
	}
	f.Canceled = canceled != 0
	return &f, nil
}

func (r *PGFlightRepository) GetByID(ctx context.Context, fid int64) (*domain.Flight, error) {
	f, err := scanFlight(r.queryRow(ctx, `SELECT `+flightColumns+` FROM flights WHERE fid=$1`, fid))
	if err != nil {
		return nil, fmt.Errorf("get flight: %w", err)
	}
	return f, nil
}

func (r *PGFlightRepository) Capacity(ctx context.Context, fid int64) (int, error) {
	var capacity int
	if err := r.queryRow(ctx, `SELECT capacity FROM flights WHERE fid=$1`, fid).Scan(&capacity); err != nil {
		return 0, fmt.Errorf("flight capacity: %w", err)
	}
	return capacity, nil
}

func (r *PGFlightRepository) PriceSum(ctx context.Context, fids []int64) (int, error) {
	var total int
	err := r.queryRow(ctx, `SELECT COALESCE(SUM(price), 0) FROM flights WHERE fid = ANY($1)`, fids).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("price sum: %w", err)
	}
	return total, nil
}

func (r *PGFlightRepository) SearchDirect(ctx context.Context, originCity, destCity string, day, limit int) ([]domain.Flight, error) {
	const query = `
SELECT ` + flightColumns + `
FROM flights
WHERE origin_city = $1 AND dest_city = $2 AND day_of_month = $3 AND canceled = 0
ORDER BY actual_time, fid ASC
LIMIT $4`

	rows, err := r.query(ctx, query, originCity, destCity, day, limit)
	if err != nil {
		return nil, fmt.Errorf("search direct: %w", err)
	}
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, fmt.Errorf("scan flight: %w", err)
		}
		flights = append(flights, *f)
	}
	return flights, rows.Err()
}

func (r *PGFlightRepository) SearchOneStop(ctx context.Context, originCity, destCity string, day, limit int) ([][2]domain.Flight, error) {
	const query = `
SELECT f1.fid, f1.day_of_month, f1.carrier_id, f1.flight_num, f1.origin_city, f1.dest_city, f1.actual_time, f1.capacity, f1.price, f1.canceled,
       f2.fid, f2.day_of_month, f2.carrier_id, f2.flight_num, f2.origin_city, f2.dest_city, f2.actual_time, f2.capacity, f2.price, f2.canceled
FROM flights f1
JOIN flights f2 ON f1.dest_city = f2.origin_city AND f1.day_of_month = f2.day_of_month
WHERE f1.origin_city = $1 AND f2.dest_city = $2 AND f1.day_of_month = $3
  AND f1.canceled = 0 AND f2.canceled = 0
ORDER BY f1.actual_time + f2.actual_time, f1.fid, f2.fid ASC
LIMIT $4`

	rows, err := r.query(ctx, query, originCity, destCity, day, limit)
	if err != nil {
		return nil, fmt.Errorf("search one-stop: %w", err)
	}
	defer rows.Close()

	pairs := make([][2]domain.Flight, 0)
	for rows.Next() {
		var f1, f2 domain.Flight
		var c1, c2 int
		if err := rows.Scan(
			&f1.FID, &f1.DayOfMonth, &f1.CarrierID, &f1.FlightNum, &f1.OriginCity, &f1.DestCity, &f1.Duration, &f1.Capacity, &f1.Price, &c1,
			&f2.FID, &f2.DayOfMonth, &f2.CarrierID, &f2.FlightNum, &f2.OriginCity, &f2.DestCity, &f2.Duration, &f2.Capacity, &f2.Price, &c2,
		); err != nil {
			return nil, fmt.Errorf("scan flight pair: %w", err)
		}
		f1.Canceled = c1 != 0
		f2.Canceled = c2 != 0
		pairs = append(pairs, [2]domain.Flight{f1, f2})
	}
	return pairs, rows.Err()
}

func (r *PGFlightRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.db.Query(ctx, sql, args...)
}

func (r *PGFlightRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.db.QueryRow(ctx, sql, args...)
}

var _ FlightRepository = (*PGFlightRepository)(nil)
