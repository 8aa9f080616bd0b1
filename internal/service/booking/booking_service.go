package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/td-airways/flightdesk/internal/domain"
	"github.com/td-airways/flightdesk/internal/kafka"
	"github.com/td-airways/flightdesk/internal/repository"
)

// BookingUseCase drives a booking through
// DRAFT -> TIME_SELECTED -> PAYMENT_PENDING -> CONFIRMED (-> CANCELLED).
type BookingUseCase interface {
	StartBooking(ctx context.Context, snapshot domain.ContactSnapshot, input StartBookingInput) (*domain.Booking, error)
	ListCandidateFlights(ctx context.Context, bookingID string) ([]domain.Flight, error)
	SelectTime(ctx context.Context, bookingID, journeyTime string) (*domain.Booking, error)
	InitiatePayment(ctx context.Context, bookingID string) (*domain.Booking, error)
	ConfirmPayment(ctx context.Context, bookingID, email, code string) (*domain.Booking, error)
	CancelBooking(ctx context.Context, bookingID string) (*domain.Booking, error)
	ExpireStaleBookings(ctx context.Context) ([]domain.Booking, error)
}

// Gate is the payment confirmation collaborator: a single-use code challenge
// bound to the booking and its contact email.
type Gate interface {
	IssuePaymentCode(ctx context.Context, bookingID, email string, amount float64) error
	Verify(ctx context.Context, ref, email, code string) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type StartBookingInput struct {
	JourneyDate  string `json:"journey_date"`
	StartPoint   string `json:"start_point"`
	EndPoint     string `json:"end_point"`
	NoOfAdults   int    `json:"no_of_adults"`
	NoOfChildren int    `json:"no_of_children"`
	NoOfInfants  int    `json:"no_of_infants"`
}

type BookingService struct {
	bookings           repository.BookingRepository
	flights            repository.FlightRepository
	gate               Gate
	producer           Producer
	bookingTopic       string
	notificationsTopic string
	infantSurcharge    float64
	staleTTL           time.Duration
	confirmRetries     int
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func WithInfantSurcharge(amount float64) BookingServiceOption {
	return func(s *BookingService) {
		s.infantSurcharge = amount
	}
}

func WithConfirmRetries(n int) BookingServiceOption {
	return func(s *BookingService) {
		s.confirmRetries = n
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	flights repository.FlightRepository,
	gate Gate,
	producer Producer,
	bookingTopic string,
	staleTTL time.Duration,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:        bookings,
		flights:         flights,
		gate:            gate,
		producer:        producer,
		bookingTopic:    bookingTopic,
		staleTTL:        staleTTL,
		infantSurcharge: 5000,
		confirmRetries:  3,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// StartBooking persists a DRAFT booking bound to the caller's contact
// snapshot and search criteria.
func (s *BookingService) StartBooking(ctx context.Context, snapshot domain.ContactSnapshot, input StartBookingInput) (*domain.Booking, error) {
	if input.NoOfAdults < 0 || input.NoOfChildren < 0 || input.NoOfInfants < 0 {
		return nil, fmt.Errorf("%w: passenger counts must be non-negative", domain.ErrValidation)
	}
	if strings.TrimSpace(input.JourneyDate) == "" || strings.TrimSpace(input.StartPoint) == "" || strings.TrimSpace(input.EndPoint) == "" {
		return nil, fmt.Errorf("%w: journey date and route are required", domain.ErrValidation)
	}

	booking := &domain.Booking{
		ID:           uuid.NewString(),
		UserID:       snapshot.UserID,
		FirstName:    snapshot.FirstName,
		LastName:     snapshot.LastName,
		Email:        snapshot.Email,
		PhoneNo:      snapshot.PhoneNo,
		JourneyDate:  input.JourneyDate,
		StartPoint:   input.StartPoint,
		EndPoint:     input.EndPoint,
		NoOfAdults:   input.NoOfAdults,
		NoOfChildren: input.NoOfChildren,
		NoOfInfants:  input.NoOfInfants,
		Status:       domain.BookingStatusDraft,
	}

	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, err
	}

	s.publish(ctx, "booking_created", booking)
	return booking, nil
}

// ListCandidateFlights returns the non-cancelled flights matching the
// booking's date and route with capacity for its seated passengers.
func (s *BookingService) ListCandidateFlights(ctx context.Context, bookingID string) ([]domain.Flight, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	flights, err := s.flights.FindAvailable(ctx, booking.JourneyDate, booking.StartPoint, booking.EndPoint, booking.Seats())
	if err != nil {
		return nil, err
	}
	if len(flights) == 0 {
		return nil, domain.ErrNoAvailability
	}
	return flights, nil
}

// SelectTime binds the flight departing at journeyTime on the booking's date
// and route. Re-selection overwrites the previous choice until the booking
// reaches a terminal state.
func (s *BookingService) SelectTime(ctx context.Context, bookingID, journeyTime string) (*domain.Booking, error) {
	if strings.TrimSpace(journeyTime) == "" {
		return nil, fmt.Errorf("%w: journey time is required", domain.ErrValidation)
	}

	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status.Terminal() {
		return nil, fmt.Errorf("%w: booking is %s", domain.ErrPrecondition, booking.Status)
	}

	flight, err := s.flights.FindByDeparture(ctx, booking.JourneyDate, booking.StartPoint, booking.EndPoint, journeyTime)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrFlightUnavailable
		}
		return nil, err
	}

	updated, err := s.bookings.SetFlight(ctx, bookingID, flight.ID, flight.Name, journeyTime)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, "time_selected", updated)
	return updated, nil
}

// InitiatePayment computes the bill, moves the booking to PAYMENT_PENDING and
// asks the gate to challenge the contact email. Capacity is not reserved
// here; it is taken at confirmation.
func (s *BookingService) InitiatePayment(ctx context.Context, bookingID string) (*domain.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.FlightID == "" {
		return nil, fmt.Errorf("%w: no flight selected", domain.ErrPrecondition)
	}
	if booking.Status.Terminal() {
		return nil, fmt.Errorf("%w: booking is %s", domain.ErrPrecondition, booking.Status)
	}

	flight, err := s.flights.GetByID(ctx, booking.FlightID)
	if err != nil {
		return nil, err
	}

	bill := float64(booking.Seats()) * flight.Price
	if booking.NoOfInfants > 0 {
		bill += float64(booking.NoOfInfants) * s.infantSurcharge
	}

	// The gate runs before the transition so a failed challenge never leaves
	// the booking stuck in PAYMENT_PENDING with a bill nobody was told about.
	if err := s.gate.IssuePaymentCode(ctx, booking.ID, booking.Email, bill); err != nil {
		return nil, err
	}

	updated, err := s.bookings.SetBill(ctx, bookingID, bill)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, "payment_initiated", updated)
	return updated, nil
}

// ConfirmPayment verifies the one-time code, then confirms the booking and
// decrements the flight's capacity in a single transaction. Transient
// transaction conflicts are retried a bounded number of times.
func (s *BookingService) ConfirmPayment(ctx context.Context, bookingID, email, code string) (*domain.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if err := s.gate.Verify(ctx, bookingID, email, code); err != nil {
		return nil, err
	}

	var confirmed *domain.Booking
	for attempt := 0; ; attempt++ {
		confirmed, err = s.bookings.Confirm(ctx, bookingID, booking.Seats())
		if err == nil {
			break
		}
		if !repository.IsSerializationFailure(err) {
			return nil, err
		}
		if attempt+1 >= s.confirmRetries {
			return nil, fmt.Errorf("%w: confirm booking: %v", domain.ErrDependency, err)
		}
	}

	s.publish(ctx, "booking_confirmed", confirmed)
	return confirmed, nil
}

// CancelBooking moves a confirmed booking to CANCELLED and restores its seats
// to the flight.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID string) (*domain.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != domain.BookingStatusConfirmed {
		return nil, fmt.Errorf("%w: cannot cancel an unconfirmed booking", domain.ErrPrecondition)
	}

	var cancelled *domain.Booking
	for attempt := 0; ; attempt++ {
		cancelled, err = s.bookings.Cancel(ctx, bookingID, booking.Seats())
		if err == nil {
			break
		}
		if !repository.IsSerializationFailure(err) {
			return nil, err
		}
		if attempt+1 >= s.confirmRetries {
			return nil, fmt.Errorf("%w: cancel booking: %v", domain.ErrDependency, err)
		}
	}

	s.publish(ctx, "booking_cancelled", cancelled)
	return cancelled, nil
}

// ExpireStaleBookings sweeps non-terminal bookings that have sat idle past
// the stale TTL. Expired bookings hold no seats, so inventory is untouched.
func (s *BookingService) ExpireStaleBookings(ctx context.Context) ([]domain.Booking, error) {
	cutoff := time.Now().Add(-s.staleTTL)
	expired, err := s.bookings.ExpireStaleBefore(ctx, cutoff)
	if err != nil {
		return nil, err
	}
	for i := range expired {
		s.publish(ctx, "booking_expired", &expired[i])
	}
	return expired, nil
}

func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking) {
	if s.producer == nil || s.bookingTopic == "" {
		return
	}
	event := kafka.BookingEvent{
		Type:        eventType,
		BookingID:   booking.ID,
		UserID:      booking.UserID,
		FlightID:    booking.FlightID,
		FlightName:  booking.FlightName,
		Email:       booking.Email,
		Status:      string(booking.Status),
		JourneyDate: booking.JourneyDate,
		JourneyTime: booking.JourneyTime,
		BillAmount:  booking.BillAmount,
	}
	if err := s.producer.Publish(ctx, s.bookingTopic, booking.ID, event); err != nil {
		log.Printf("WARNING: failed to publish %s event for booking %s: %v", eventType, booking.ID, err)
		return
	}
	if s.notificationsTopic != "" {
		if err := s.producer.Publish(ctx, s.notificationsTopic, booking.ID, event); err != nil {
			log.Printf("WARNING: failed to publish %s notification for booking %s: %v", eventType, booking.ID, err)
		}
	}
}

var _ BookingUseCase = (*BookingService)(nil)
