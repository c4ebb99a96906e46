package events

import (
	"log/slog"

	"github.com/IBM/sarama"

	"friendship-service/internal/models"
)

// Publisher sends domain events to the durable Kafka topic. Publication is
// fire-and-forget: the send happens on its own goroutine and failures are
// logged, never returned to the mutating call. There is no outbox linking
// the database write to the broker send; a crash between the two drops the
// broker event (accepted gap, eventual consistency only).
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
}

func NewPublisher(producer sarama.SyncProducer, topic string) *Publisher {
	return &Publisher{producer: producer, topic: topic}
}

// Publish encodes the event envelope and hands it to Kafka asynchronously.
// Events are keyed per DomainEvent.Key so one user's events stay ordered
// within a partition.
func (p *Publisher) Publish(event models.DomainEvent) {
	payload, err := models.EncodeEnvelope(event)
	if err != nil {
		slog.Error("encode event for broker", "topic", event.Topic(), "error", err)
		return
	}

	go func() {
		_, _, err := p.producer.SendMessage(&sarama.ProducerMessage{
			Topic: p.topic,
			Key:   sarama.StringEncoder(event.Key()),
			Value: sarama.ByteEncoder(payload),
		})
		if err != nil {
			slog.Error("publish event to broker", "topic", event.Topic(), "error", err)
		}
	}()
}

// Close flushes and shuts down the underlying producer.
func (p *Publisher) Close() error {
	return p.producer.Close()
}
