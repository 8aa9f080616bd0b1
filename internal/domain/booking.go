package domain

import "time"

type BookingStatus string

const (
	BookingStatusDraft          BookingStatus = "DRAFT"
	BookingStatusTimeSelected   BookingStatus = "TIME_SELECTED"
	BookingStatusPaymentPending BookingStatus = "PAYMENT_PENDING"
	BookingStatusConfirmed      BookingStatus = "CONFIRMED"
	BookingStatusCancelled      BookingStatus = "CANCELLED"
	BookingStatusExpired        BookingStatus = "EXPIRED"
)

// Terminal reports whether no further forward transition is permitted.
// A confirmed booking is terminal for everything except cancellation.
func (s BookingStatus) Terminal() bool {
	return s == BookingStatusConfirmed || s == BookingStatusCancelled || s == BookingStatusExpired
}

type Booking struct {
	ID           string        `json:"booking_id"`
	UserID       string        `json:"user_id"`
	FlightID     string        `json:"flight_id,omitempty"` // empty until a time is selected
	FlightName   string        `json:"flight_name,omitempty"`
	FirstName    string        `json:"first_name"`
	LastName     string        `json:"last_name"`
	Email        string        `json:"email"`
	PhoneNo      string        `json:"phone_no"`
	JourneyDate  string        `json:"journey_date"`
	StartPoint   string        `json:"start_point"`
	EndPoint     string        `json:"end_point"`
	NoOfAdults   int           `json:"no_of_adults"`
	NoOfChildren int           `json:"no_of_children"`
	NoOfInfants  int           `json:"no_of_infants"`
	JourneyTime  string        `json:"journey_time,omitempty"`
	BillAmount   float64       `json:"bill_amount"`
	Status       BookingStatus `json:"status"`
	BookedAt     *time.Time    `json:"booked_at,omitempty"`
	CancelledAt  *time.Time    `json:"cancelled_at,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// Seats is the number of capacity-consuming passengers. Infants travel on a
// lap and do not take a seat.
func (b *Booking) Seats() int {
	return b.NoOfAdults + b.NoOfChildren
}
