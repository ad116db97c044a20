package kafka

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"github.com/shoparak/shop-backend/services/shop/models"
)

// ProducerAPI is the publishing surface the order service depends on.
type ProducerAPI interface {
	SendOrderCreated(ctx context.Context, event models.OrderCreatedEvent) error
}

type Producer struct {
	writer *kafka.Writer
	topic  string
}

func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}
	return &Producer{writer: writer, topic: topic}
}

// SendOrderCreated publishes the event keyed by order number so retries of
// the same order land on the same partition.
func (p *Producer) SendOrderCreated(ctx context.Context, event models.OrderCreatedEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.OrderNumber),
		Value: data,
	})
}

func (p *Producer) Close() {
	_ = p.writer.Close()
}
