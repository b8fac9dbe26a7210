package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/anishff444/nepwears/internal/domain"
	pkgkafka "github.com/anishff444/nepwears/pkg/kafka"
	"github.com/anishff444/nepwears/pkg/logger"
)

// Kafka topics for storefront analytics events.
var (
	TopicCartItemAdded   = pkgkafka.Topic("cart", "item_added")
	TopicCartItemRemoved = pkgkafka.Topic("cart", "item_removed")
	TopicCheckoutStarted = pkgkafka.Topic("checkout", "started")
	TopicPaymentVerified = pkgkafka.Topic("payment", "verified")
)

// Aggregate types.
const (
	AggregateTypeSession = "session"
	AggregateTypeOrder   = "order"
)

// SourceStorefront identifies events originating from the storefront.
const SourceStorefront = "storefront"

// Publisher sends an event to a topic. *pkgkafka.Producer implements it.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// NopPublisher drops every event. It is used when Kafka is disabled.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(context.Context, string, *pkgkafka.Event) error { return nil }

// CartItemData is the payload for cart item events.
type CartItemData struct {
	SessionID string  `json:"session_id"`
	UserID    string  `json:"user_id,omitempty"`
	ProductID string  `json:"product_id"`
	ItemCount int     `json:"item_count"`
	Total     float64 `json:"total"`
}

// CheckoutStartedData is the payload for a checkout.started event.
type CheckoutStartedData struct {
	SessionID   string  `json:"session_id"`
	UserID      string  `json:"user_id,omitempty"`
	OrderID     string  `json:"order_id"`
	TotalAmount float64 `json:"total_amount"`
	ItemCount   int     `json:"item_count"`
}

// PaymentVerifiedData is the payload for a payment.verified event.
type PaymentVerifiedData struct {
	SessionID     string               `json:"session_id"`
	OrderID       string               `json:"order_id"`
	TotalAmount   float64              `json:"total_amount"`
	PaymentStatus domain.PaymentStatus `json:"payment_status"`
}

// Producer publishes storefront events.
type Producer struct {
	pub    Publisher
	logger *slog.Logger
}

// NewProducer creates an event producer over pub.
func NewProducer(pub Publisher, logger *slog.Logger) *Producer {
	return &Producer{pub: pub, logger: logger}
}

// PublishCartItemAdded publishes a cart.item_added event.
func (p *Producer) PublishCartItemAdded(ctx context.Context, data CartItemData) error {
	return p.publish(ctx, TopicCartItemAdded, data.SessionID, AggregateTypeSession, data)
}

// PublishCartItemRemoved publishes a cart.item_removed event.
func (p *Producer) PublishCartItemRemoved(ctx context.Context, data CartItemData) error {
	return p.publish(ctx, TopicCartItemRemoved, data.SessionID, AggregateTypeSession, data)
}

// PublishCheckoutStarted publishes a checkout.started event.
func (p *Producer) PublishCheckoutStarted(ctx context.Context, data CheckoutStartedData) error {
	return p.publish(ctx, TopicCheckoutStarted, data.OrderID, AggregateTypeOrder, data)
}

// PublishPaymentVerified publishes a payment.verified event.
func (p *Producer) PublishPaymentVerified(ctx context.Context, data PaymentVerifiedData) error {
	return p.publish(ctx, TopicPaymentVerified, data.OrderID, AggregateTypeOrder, data)
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	event, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		event.WithCorrelationID(id)
	}
	if id := logger.UserIDFromContext(ctx); id != "" {
		event.WithMetadata("user_id", id)
	}

	if err := p.pub.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published storefront event",
		slog.String("topic", topic),
		slog.String("aggregate_id", aggregateID),
	)
	return nil
}
