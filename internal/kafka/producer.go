package kafka

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/dndstore/panel-store/internal/domain"
)

// FulfillmentEvent is published after every successful provisioning so
// downstream consumers (bot notifications, bookkeeping) can react. The
// generated password is never part of the event.
type FulfillmentEvent struct {
	EventID  string    `json:"event_id"`
	OrderID  string    `json:"order_id"`
	Mode     string    `json:"mode"`
	Username string    `json:"username,omitempty"`
	ServerID int       `json:"server_id"`
	Plan     string    `json:"plan"`
	At       time.Time `json:"at"`
}

type Producer struct {
	w *kafka.Writer
}

func NewProducer(brokersSTR, topic string) *Producer {
	brokers := strings.Split(brokersSTR, ",")

	return &Producer{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireAll,
			Async:        false,
		},
	}
}

func (p *Producer) Close() error {
	return p.w.Close()
}

func (p *Producer) PublishFulfillment(ctx context.Context, orderID string, f *domain.Fulfillment) error {
	ev := FulfillmentEvent{
		EventID:  uuid.NewString(),
		OrderID:  orderID,
		Mode:     f.Mode,
		ServerID: f.Server.ID,
		Plan:     f.Specs.Label,
		At:       time.Now().UTC(),
	}
	if f.User != nil {
		ev.Username = f.User.Username
	}

	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	return p.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(orderID),
		Value: b,
		Headers: []kafka.Header{
			{Key: "content-type", Value: []byte("application/json")},
		},
	})
}
