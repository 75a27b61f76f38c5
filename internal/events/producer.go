package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

// Event names published to the decks event topic.
const (
	EventDeckGenerated = "deck.generated"
	EventDeckFailed    = "deck.failed"
)

// DeckEvent is the message body for deck lifecycle events.
type DeckEvent struct {
	DeckID      uuid.UUID `json:"deckId"`
	Event       string    `json:"event"`
	Topic       string    `json:"topic"`
	Model       string    `json:"model,omitempty"`
	TotalSlides int       `json:"totalSlides,omitempty"`
	Error       string    `json:"error,omitempty"`
	OccurredAt  time.Time `json:"occurredAt"`
}

// Producer wraps a Kafka producer for deck lifecycle events.
type Producer struct {
	writer *kafka.Writer
	topic  string
}

// NewProducer creates a new Kafka producer. Call only when brokers are
// configured; the service runs fine without one.
func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireOne,
		Async:                  false,
	}

	log.Info().
		Strs("brokers", brokers).
		Str("topic", topic).
		Msg("Kafka producer initialized")

	return &Producer{
		writer: writer,
		topic:  topic,
	}
}

// PublishDeckEvent publishes one lifecycle event keyed by deck ID.
func (p *Producer) PublishDeckEvent(ctx context.Context, event DeckEvent) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal deck event: %w", err)
	}

	kafkaMsg := kafka.Message{
		Key:   []byte(event.DeckID.String()),
		Value: data,
	}

	if err := p.writer.WriteMessages(ctx, kafkaMsg); err != nil {
		return fmt.Errorf("failed to write deck event to kafka: %w", err)
	}

	log.Info().
		Str("deck_id", event.DeckID.String()).
		Str("event", event.Event).
		Str("topic", p.topic).
		Msg("Deck event published to Kafka")

	return nil
}

// Close closes the producer.
func (p *Producer) Close() error {
	log.Info().Msg("Closing Kafka producer")
	return p.writer.Close()
}
