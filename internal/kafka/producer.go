package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// BookingEvent is published on every booking lifecycle transition.
type BookingEvent struct {
	Type        string  `json:"type"`
	BookingID   string  `json:"booking_id"`
	UserID      string  `json:"user_id"`
	FlightID    string  `json:"flight_id,omitempty"`
	FlightName  string  `json:"flight_name,omitempty"`
	Email       string  `json:"email"`
	Status      string  `json:"status"`
	JourneyDate string  `json:"journey_date"`
	JourneyTime string  `json:"journey_time,omitempty"`
	BillAmount  float64 `json:"bill_amount,omitempty"`
}

type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 50 * time.Millisecond,
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (p *Producer) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	})
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
