package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/shoparak/shop-backend/services/notification/sender"
	"github.com/shoparak/shop-backend/services/shop/models"
)

// OrderConsumer reads order.created events and mails the customer a
// confirmation.
type OrderConsumer struct {
	reader *kafka.Reader
	email  sender.EmailSender
	logger *zap.Logger
}

func NewOrderConsumer(brokers []string, topic, groupID string, email sender.EmailSender, logger *zap.Logger) *OrderConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1e3, // 1KB
		MaxBytes: 1e6, // 1MB
	})
	return &OrderConsumer{reader: reader, email: email, logger: logger}
}

// Run consumes until ctx is cancelled. A bad message is logged and skipped,
// never retried.
func (c *OrderConsumer) Run(ctx context.Context) {
	c.logger.Info("Order consumer started", zap.String("topic", c.reader.Config().Topic))

	for {
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("Failed to read message", zap.Error(err))
			continue
		}

		var event models.OrderCreatedEvent
		if err := json.Unmarshal(m.Value, &event); err != nil {
			c.logger.Warn("Skipping malformed order event",
				zap.Int64("offset", m.Offset), zap.Error(err))
			continue
		}

		c.handleOrderCreated(ctx, event)
	}
}

func (c *OrderConsumer) Close() error {
	return c.reader.Close()
}

func (c *OrderConsumer) handleOrderCreated(ctx context.Context, event models.OrderCreatedEvent) {
	if event.CustomerEmail == "" {
		c.logger.Warn("Order event has no customer email",
			zap.String("order_number", event.OrderNumber))
		return
	}

	subject := fmt.Sprintf("Order %s received", event.OrderNumber)
	result, err := c.email.SendEmail(ctx, event.CustomerEmail, subject, confirmationBody(event))
	if err != nil {
		c.logger.Error("Failed to send confirmation email",
			zap.String("order_number", event.OrderNumber),
			zap.Error(err))
		return
	}

	c.logger.Info("Confirmation email sent",
		zap.String("order_number", event.OrderNumber),
		zap.String("message_id", result.MessageID),
	)
}

func confirmationBody(event models.OrderCreatedEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<p>Hi %s,</p>", event.CustomerName)
	fmt.Fprintf(&b, "<p>We received your order <strong>%s</strong>.</p>", event.OrderNumber)
	b.WriteString("<ul>")
	for _, it := range event.Items {
		fmt.Fprintf(&b, "<li>%s &times; %d</li>", it.ProductName, it.Quantity)
	}
	b.WriteString("</ul>")
	fmt.Fprintf(&b, "<p>Total due: %d</p>", event.FinalAmount)
	return b.String()
}
