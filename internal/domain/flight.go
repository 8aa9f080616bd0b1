package domain

import "time"

type Flight struct {
	ID                string    `json:"flight_id"`
	Name              string    `json:"flight_name"`
	StartPoint        string    `json:"start_point"`
	EndPoint          string    `json:"end_point"`
	JourneyDate       string    `json:"journey_date"` // YYYY-MM-DD
	JourneyTime       string    `json:"journey_time"` // HH:MM
	AvailableCapacity int       `json:"available_capacity"`
	Price             float64   `json:"flight_price"`
	IsCancelled       bool      `json:"is_cancelled"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// FlightUpdate is a typed partial update: nil fields are left untouched.
type FlightUpdate struct {
	Name        *string  `json:"flight_name,omitempty"`
	StartPoint  *string  `json:"start_point,omitempty"`
	EndPoint    *string  `json:"end_point,omitempty"`
	JourneyDate *string  `json:"journey_date,omitempty"`
	JourneyTime *string  `json:"journey_time,omitempty"`
	Capacity    *int     `json:"available_capacity,omitempty"`
	Price       *float64 `json:"flight_price,omitempty"`
}

// Empty reports whether the update would change nothing.
func (u FlightUpdate) Empty() bool {
	return u.Name == nil && u.StartPoint == nil && u.EndPoint == nil &&
		u.JourneyDate == nil && u.JourneyTime == nil && u.Capacity == nil && u.Price == nil
}
