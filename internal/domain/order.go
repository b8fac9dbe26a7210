package domain

import "time"

// PaymentStatus is the payment state the backend tracks for an order.
type PaymentStatus string

// Payment status constants.
const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

// Order status constants.
const (
	OrderPending   OrderStatus = "pending"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
)

// Order is a placed order. Read-only on the storefront.
type Order struct {
	ID            string        `json:"_id"`
	Products      []LineItem    `json:"products"`
	TotalAmount   float64       `json:"totalAmount"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	OrderStatus   OrderStatus   `json:"orderStatus"`
	CreatedAt     time.Time     `json:"createdAt"`
}

// IsPaid reports whether the payment for o has completed.
func (o *Order) IsPaid() bool {
	return o.PaymentStatus == PaymentCompleted
}
