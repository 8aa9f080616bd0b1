package flights

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/td-airways/flightdesk/internal/domain"
	"github.com/td-airways/flightdesk/internal/repository"
)

// FlightUseCase is the inventory-management surface used by admin flows.
// Flights are never deleted, only flagged cancelled.
type FlightUseCase interface {
	Register(ctx context.Context, input RegisterFlightInput) (*domain.Flight, error)
	Update(ctx context.Context, id string, upd domain.FlightUpdate) (*domain.Flight, error)
	Cancel(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.Flight, error)
	GetByID(ctx context.Context, id string) (*domain.Flight, error)
}

type Cache interface {
	GetFlights(ctx context.Context) ([]domain.Flight, error)
	SetFlights(ctx context.Context, flights []domain.Flight) error
	InvalidateFlights(ctx context.Context) error
}

type RegisterFlightInput struct {
	Name        string  `json:"flight_name"`
	StartPoint  string  `json:"start_point"`
	EndPoint    string  `json:"end_point"`
	JourneyDate string  `json:"journey_date"`
	JourneyTime string  `json:"journey_time"`
	Capacity    int     `json:"available_capacity"`
	Price       float64 `json:"flight_price"`
}

type FlightService struct {
	repo  repository.FlightRepository
	cache Cache
}

func NewFlightService(repo repository.FlightRepository, cache Cache) *FlightService {
	return &FlightService{repo: repo, cache: cache}
}

func (s *FlightService) Register(ctx context.Context, input RegisterFlightInput) (*domain.Flight, error) {
	if strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.JourneyDate) == "" || strings.TrimSpace(input.JourneyTime) == "" {
		return nil, fmt.Errorf("%w: flight name, date and time are required", domain.ErrValidation)
	}
	if input.Capacity < 0 || input.Price < 0 {
		return nil, fmt.Errorf("%w: capacity and price must be non-negative", domain.ErrValidation)
	}

	if err := s.checkDuplicate(ctx, input.Name, input.JourneyDate, input.JourneyTime); err != nil {
		return nil, err
	}

	flight := &domain.Flight{
		ID:                uuid.NewString(),
		Name:              input.Name,
		StartPoint:        input.StartPoint,
		EndPoint:          input.EndPoint,
		JourneyDate:       input.JourneyDate,
		JourneyTime:       input.JourneyTime,
		AvailableCapacity: input.Capacity,
		Price:             input.Price,
	}
	if err := s.repo.Create(ctx, flight); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return flight, nil
}

// Update applies a typed partial update. The duplicate check runs only when a
// field of the (name, date, time) identity actually changes.
func (s *FlightService) Update(ctx context.Context, id string, upd domain.FlightUpdate) (*domain.Flight, error) {
	if upd.Empty() {
		return nil, fmt.Errorf("%w: no fields to update", domain.ErrValidation)
	}
	if upd.Capacity != nil && *upd.Capacity < 0 {
		return nil, fmt.Errorf("%w: capacity must be non-negative", domain.ErrValidation)
	}
	if upd.Price != nil && *upd.Price < 0 {
		return nil, fmt.Errorf("%w: price must be non-negative", domain.ErrValidation)
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil || upd.JourneyDate != nil || upd.JourneyTime != nil {
		name, date, t := current.Name, current.JourneyDate, current.JourneyTime
		if upd.Name != nil {
			name = *upd.Name
		}
		if upd.JourneyDate != nil {
			date = *upd.JourneyDate
		}
		if upd.JourneyTime != nil {
			t = *upd.JourneyTime
		}
		if name != current.Name || date != current.JourneyDate || t != current.JourneyTime {
			if err := s.checkDuplicate(ctx, name, date, t); err != nil {
				return nil, err
			}
		}
	}

	updated, err := s.repo.Update(ctx, id, upd)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return updated, nil
}

func (s *FlightService) Cancel(ctx context.Context, id string) error {
	if err := s.repo.Cancel(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *FlightService) List(ctx context.Context) ([]domain.Flight, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetFlights(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	flights, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetFlights(ctx, flights)
	}
	return flights, nil
}

func (s *FlightService) GetByID(ctx context.Context, id string) (*domain.Flight, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *FlightService) checkDuplicate(ctx context.Context, name, date, journeyTime string) error {
	existing, err := s.repo.FindByNameAndSchedule(ctx, name, date, journeyTime)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	if existing != nil {
		return fmt.Errorf("%w: flight %s already scheduled on %s at %s", domain.ErrValidation, name, date, journeyTime)
	}
	return nil
}

func (s *FlightService) invalidate(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.InvalidateFlights(ctx)
	}
}

var _ FlightUseCase = (*FlightService)(nil)
