package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/td-airways/flightdesk/internal/domain"
)

type FlightRepository interface {
	Create(ctx context.Context, flight *domain.Flight) error
	GetByID(ctx context.Context, id string) (*domain.Flight, error)
	List(ctx context.Context) ([]domain.Flight, error)
	FindAvailable(ctx context.Context, date, start, end string, seats int) ([]domain.Flight, error)
	FindByDeparture(ctx context.Context, date, start, end, journeyTime string) (*domain.Flight, error)
	FindByNameAndSchedule(ctx context.Context, name, date, journeyTime string) (*domain.Flight, error)
	Update(ctx context.Context, id string, upd domain.FlightUpdate) (*domain.Flight, error)
	Cancel(ctx context.Context, id string) error
}

const flightColumns = `flight_id, flight_name, start_point, end_point, journey_date, journey_time,
	available_capacity, flight_price, is_cancelled, created_at, updated_at`

type PGFlightRepository struct {
	db *pgxpool.Pool
}

func NewFlightRepository(db *pgxpool.Pool) FlightRepository {
	return &PGFlightRepository{db: db}
}

func scanFlight(row pgx.Row) (*domain.Flight, error) {
	var f domain.Flight
	err := row.Scan(&f.ID, &f.Name, &f.StartPoint, &f.EndPoint, &f.JourneyDate, &f.JourneyTime,
		&f.AvailableCapacity, &f.Price, &f.IsCancelled, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}

func (r *PGFlightRepository) Create(ctx context.Context, flight *domain.Flight) error {
	return r.db.QueryRow(ctx, `INSERT INTO flights
		(flight_id, flight_name, start_point, end_point, journey_date, journey_time, available_capacity, flight_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`,
		flight.ID, flight.Name, flight.StartPoint, flight.EndPoint, flight.JourneyDate, flight.JourneyTime,
		flight.AvailableCapacity, flight.Price).
		Scan(&flight.CreatedAt, &flight.UpdatedAt)
}

func (r *PGFlightRepository) GetByID(ctx context.Context, id string) (*domain.Flight, error) {
	row := r.db.QueryRow(ctx, `SELECT `+flightColumns+` FROM flights WHERE flight_id=$1`, id)
	return scanFlight(row)
}

func (r *PGFlightRepository) List(ctx context.Context) ([]domain.Flight, error) {
	rows, err := r.db.Query(ctx, `SELECT `+flightColumns+` FROM flights ORDER BY journey_date, journey_time`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectFlights(rows)
}

// FindAvailable returns the non-cancelled flights on the given date and route
// with at least seats remaining. Equality is allowed: a flight may be booked
// out completely.
func (r *PGFlightRepository) FindAvailable(ctx context.Context, date, start, end string, seats int) ([]domain.Flight, error) {
	rows, err := r.db.Query(ctx, `SELECT `+flightColumns+` FROM flights
		WHERE journey_date=$1 AND start_point=$2 AND end_point=$3
		  AND is_cancelled=false AND available_capacity >= $4
		ORDER BY journey_time`, date, start, end, seats)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectFlights(rows)
}

func (r *PGFlightRepository) FindByDeparture(ctx context.Context, date, start, end, journeyTime string) (*domain.Flight, error) {
	row := r.db.QueryRow(ctx, `SELECT `+flightColumns+` FROM flights
		WHERE journey_date=$1 AND start_point=$2 AND end_point=$3 AND journey_time=$4 AND is_cancelled=false`,
		date, start, end, journeyTime)
	return scanFlight(row)
}

func (r *PGFlightRepository) FindByNameAndSchedule(ctx context.Context, name, date, journeyTime string) (*domain.Flight, error) {
	row := r.db.QueryRow(ctx, `SELECT `+flightColumns+` FROM flights
		WHERE flight_name=$1 AND journey_date=$2 AND journey_time=$3`, name, date, journeyTime)
	return scanFlight(row)
}

// Update applies a typed partial update: only non-nil fields are written.
func (r *PGFlightRepository) Update(ctx context.Context, id string, upd domain.FlightUpdate) (*domain.Flight, error) {
	set := ""
	args := []any{}
	add := func(col string, val any) {
		args = append(args, val)
		if set != "" {
			set += ", "
		}
		set += fmt.Sprintf("%s=$%d", col, len(args))
	}

	if upd.Name != nil {
		add("flight_name", *upd.Name)
	}
	if upd.StartPoint != nil {
		add("start_point", *upd.StartPoint)
	}
	if upd.EndPoint != nil {
		add("end_point", *upd.EndPoint)
	}
	if upd.JourneyDate != nil {
		add("journey_date", *upd.JourneyDate)
	}
	if upd.JourneyTime != nil {
		add("journey_time", *upd.JourneyTime)
	}
	if upd.Capacity != nil {
		add("available_capacity", *upd.Capacity)
	}
	if upd.Price != nil {
		add("flight_price", *upd.Price)
	}
	if set == "" {
		return r.GetByID(ctx, id)
	}

	args = append(args, id)
	row := r.db.QueryRow(ctx, fmt.Sprintf(`UPDATE flights SET %s, updated_at=now() WHERE flight_id=$%d RETURNING %s`,
		set, len(args), flightColumns), args...)
	return scanFlight(row)
}

func (r *PGFlightRepository) Cancel(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `UPDATE flights SET is_cancelled=true, updated_at=now() WHERE flight_id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func collectFlights(rows pgx.Rows) ([]domain.Flight, error) {
	flights := make([]domain.Flight, 0)
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, err
		}
		flights = append(flights, *f)
	}
	return flights, rows.Err()
}

var _ FlightRepository = (*PGFlightRepository)(nil)
