package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/td-airways/flightdesk/internal/domain"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	SetFlight(ctx context.Context, id, flightID, flightName, journeyTime string) (*domain.Booking, error)
	SetBill(ctx context.Context, id string, amount float64) (*domain.Booking, error)
	Confirm(ctx context.Context, id string, seats int) (*domain.Booking, error)
	Cancel(ctx context.Context, id string, seats int) (*domain.Booking, error)
	ExpireStaleBefore(ctx context.Context, cutoff time.Time) ([]domain.Booking, error)
}

const bookingColumns = `booking_id, user_id, COALESCE(flight_id, ''), COALESCE(flight_name, ''),
	first_name, last_name, email, phone_no, journey_date, start_point, end_point,
	no_of_adults, no_of_children, no_of_infants, COALESCE(journey_time, ''),
	bill_amount, status, booked_at, cancelled_at, created_at, updated_at`

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	err := row.Scan(&b.ID, &b.UserID, &b.FlightID, &b.FlightName,
		&b.FirstName, &b.LastName, &b.Email, &b.PhoneNo, &b.JourneyDate, &b.StartPoint, &b.EndPoint,
		&b.NoOfAdults, &b.NoOfChildren, &b.NoOfInfants, &b.JourneyTime,
		&b.BillAmount, &b.Status, &b.BookedAt, &b.CancelledAt, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *PGBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	booking.Status = domain.BookingStatusDraft
	return r.db.QueryRow(ctx, `INSERT INTO bookings
		(booking_id, user_id, first_name, last_name, email, phone_no, journey_date, start_point, end_point,
		 no_of_adults, no_of_children, no_of_infants, bill_amount, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, 0, $13)
		RETURNING created_at, updated_at`,
		booking.ID, booking.UserID, booking.FirstName, booking.LastName, booking.Email, booking.PhoneNo,
		booking.JourneyDate, booking.StartPoint, booking.EndPoint,
		booking.NoOfAdults, booking.NoOfChildren, booking.NoOfInfants, booking.Status).
		Scan(&booking.CreatedAt, &booking.UpdatedAt)
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE booking_id=$1`, id)
	return scanBooking(row)
}

func (r *PGBookingRepository) SetFlight(ctx context.Context, id, flightID, flightName, journeyTime string) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `UPDATE bookings
		SET flight_id=$1, flight_name=$2, journey_time=$3, status=$4, updated_at=now()
		WHERE booking_id=$5
		RETURNING `+bookingColumns, flightID, flightName, journeyTime, domain.BookingStatusTimeSelected, id)
	return scanBooking(row)
}

func (r *PGBookingRepository) SetBill(ctx context.Context, id string, amount float64) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `UPDATE bookings
		SET bill_amount=$1, status=$2, updated_at=now()
		WHERE booking_id=$3
		RETURNING `+bookingColumns, amount, domain.BookingStatusPaymentPending, id)
	return scanBooking(row)
}

// Confirm applies the confirmation and the seat decrement as one transaction.
// The capacity check and the decrement are a single conditional UPDATE, so two
// confirmations racing for the last seat cannot both pass it.
func (r *PGBookingRepository) Confirm(ctx context.Context, id string, seats int) (*domain.Booking, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var available int
	err = tx.QueryRow(ctx, `UPDATE flights
		SET available_capacity = available_capacity - $1, updated_at = now()
		WHERE flight_id = (SELECT flight_id FROM bookings WHERE booking_id=$2)
		  AND is_cancelled = false AND available_capacity >= $1
		RETURNING available_capacity`, seats, id).Scan(&available)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: not enough seats remaining", domain.ErrNoAvailability)
		}
		return nil, err
	}

	row := tx.QueryRow(ctx, `UPDATE bookings
		SET status=$1, booked_at=now(), updated_at=now()
		WHERE booking_id=$2 AND status=$3
		RETURNING `+bookingColumns, domain.BookingStatusConfirmed, id, domain.BookingStatusPaymentPending)
	booking, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: booking is not awaiting payment", domain.ErrPrecondition)
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return booking, nil
}

// Cancel restores the seats taken at confirmation. The status guard makes the
// restore apply at most once per booking.
func (r *PGBookingRepository) Cancel(ctx context.Context, id string, seats int) (*domain.Booking, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `UPDATE bookings
		SET status=$1, cancelled_at=now(), updated_at=now()
		WHERE booking_id=$2 AND status=$3
		RETURNING `+bookingColumns, domain.BookingStatusCancelled, id, domain.BookingStatusConfirmed)
	booking, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: cannot cancel an unconfirmed booking", domain.ErrPrecondition)
		}
		return nil, err
	}

	if _, err := tx.Exec(ctx, `UPDATE flights
		SET available_capacity = available_capacity + $1, updated_at = now()
		WHERE flight_id = $2`, seats, booking.FlightID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return booking, nil
}

func (r *PGBookingRepository) ExpireStaleBefore(ctx context.Context, cutoff time.Time) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `UPDATE bookings
		SET status=$1, updated_at=now()
		WHERE status IN ($2, $3, $4) AND updated_at <= $5
		RETURNING `+bookingColumns,
		domain.BookingStatusExpired,
		domain.BookingStatusDraft, domain.BookingStatusTimeSelected, domain.BookingStatusPaymentPending,
		cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expired []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		expired = append(expired, *b)
	}
	return expired, rows.Err()
}

// IsSerializationFailure reports whether err is a transient transaction
// conflict worth retrying (serialization failure or deadlock).
func IsSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}

var _ BookingRepository = (*PGBookingRepository)(nil)
