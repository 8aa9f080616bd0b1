package kafka

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

// EventHandler processes one decoded booking event. Returning an error stops
// the consume loop.
type EventHandler func(ctx context.Context, event BookingEvent) error

// Consumer reads booking events from a topic and hands them to a handler
// already decoded. Messages that do not decode are logged and skipped; they
// would fail identically on every redelivery.
type Consumer struct {
	reader *kafka.Reader
}

func NewConsumer(brokers []string, groupID, topic string) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           brokers,
			GroupID:           groupID,
			Topic:             topic,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
		}),
	}
}

func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

func (c *Consumer) Consume(ctx context.Context, handler EventHandler) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			return err
		}

		event, err := decodeEvent(msg.Value)
		if err != nil {
			log.Printf("skipping undecodable event at %s/%d offset %d: %v", msg.Topic, msg.Partition, msg.Offset, err)
			continue
		}

		if err := handler(ctx, event); err != nil {
			return err
		}
	}
}

func decodeEvent(value []byte) (BookingEvent, error) {
	var event BookingEvent
	if err := json.Unmarshal(value, &event); err != nil {
		return BookingEvent{}, err
	}
	return event, nil
}
