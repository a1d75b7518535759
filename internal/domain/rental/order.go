package rental

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the lifecycle status of a rental order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusActive    OrderStatus = "active"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// AllOrderStatuses returns every valid order status
func AllOrderStatuses() []OrderStatus {
	return []OrderStatus{OrderStatusPending, OrderStatusActive, OrderStatusCompleted, OrderStatusCancelled}
}

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusActive, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// PaymentStatus represents the payment state of an order.
// Only paid orders contribute to revenue figures.
type PaymentStatus string

const (
	PaymentStatusUnpaid   PaymentStatus = "unpaid"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusUnpaid, PaymentStatusPaid, PaymentStatusRefunded:
		return true
	}
	return false
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// OrderItem is a line item on a rental order. Product name is
// denormalized at order time so reads never depend on the catalog
// write model.
type OrderItem struct {
	ID          uuid.UUID       `json:"id"`
	OrderID     uuid.UUID       `json:"order_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// Order is a rental transaction. It is owned and mutated by the
// order-management collaborator; this engine only reads it.
// Every order has exactly one vendor and one customer.
type Order struct {
	ID            uuid.UUID       `json:"id"`
	TenantID      uuid.UUID       `json:"tenant_id"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	VendorID      uuid.UUID       `json:"vendor_id"`
	Status        OrderStatus     `json:"status"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	RentalStart   time.Time       `json:"rental_start"`
	RentalEnd     time.Time       `json:"rental_end"`
	Items         []OrderItem     `json:"items"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// IsPaid reports whether the order counts toward revenue
func (o *Order) IsPaid() bool {
	return o.PaymentStatus == PaymentStatusPaid
}

// DueWithin reports whether an active rental is due back within d of now
func (o *Order) DueWithin(now time.Time, d time.Duration) bool {
	if o.Status != OrderStatusActive {
		return false
	}
	return !o.RentalEnd.Before(now) && !o.RentalEnd.After(now.Add(d))
}
