// Package models holds the GORM persistence models for the record sets
// the dashboard engine reads. The write models are owned by the order,
// catalog, and identity collaborators; these definitions exist so the
// read queries and local development schema agree on column shapes.
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/rentalhub/backend/internal/domain/catalog"
	"github.com/rentalhub/backend/internal/domain/identity"
	"github.com/rentalhub/backend/internal/domain/rental"
	"github.com/shopspring/decimal"
)

// OrderModel is the persistence model for rental orders.
type OrderModel struct {
	ID            uuid.UUID            `gorm:"type:uuid;primary_key"`
	TenantID      uuid.UUID            `gorm:"type:uuid;not null;index"`
	CustomerID    uuid.UUID            `gorm:"type:uuid;not null;index"`
	VendorID      uuid.UUID            `gorm:"type:uuid;not null;index"`
	Status        rental.OrderStatus   `gorm:"type:varchar(20);not null;default:'pending';index"`
	PaymentStatus rental.PaymentStatus `gorm:"type:varchar(20);not null;default:'unpaid';index"`
	TotalAmount   decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	RentalStart   time.Time            `gorm:"not null"`
	RentalEnd     time.Time            `gorm:"not null;index"`
	Items         []OrderItemModel     `gorm:"foreignKey:OrderID;references:ID"`
	CreatedAt     time.Time            `gorm:"not null;index"`
	UpdatedAt     time.Time            `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order
func (m *OrderModel) ToDomain() rental.Order {
	order := rental.Order{
		ID:            m.ID,
		TenantID:      m.TenantID,
		CustomerID:    m.CustomerID,
		VendorID:      m.VendorID,
		Status:        m.Status,
		PaymentStatus: m.PaymentStatus,
		TotalAmount:   m.TotalAmount,
		RentalStart:   m.RentalStart,
		RentalEnd:     m.RentalEnd,
		Items:         make([]rental.OrderItem, len(m.Items)),
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
	for i, item := range m.Items {
		order.Items[i] = item.ToDomain()
	}
	return order
}

// OrderItemModel is the persistence model for order line items.
type OrderItemModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	Quantity    int             `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts the persistence model to a domain OrderItem
func (m *OrderItemModel) ToDomain() rental.OrderItem {
	return rental.OrderItem{
		ID:          m.ID,
		OrderID:     m.OrderID,
		ProductID:   m.ProductID,
		ProductName: m.ProductName,
		Quantity:    m.Quantity,
		UnitPrice:   m.UnitPrice,
	}
}

// ProductModel is the persistence model for catalog products.
type ProductModel struct {
	ID                uuid.UUID `gorm:"type:uuid;primary_key"`
	TenantID          uuid.UUID `gorm:"type:uuid;not null;index"`
	VendorID          uuid.UUID `gorm:"type:uuid;not null;index"`
	Name              string    `gorm:"type:varchar(200);not null"`
	IsActive          bool      `gorm:"not null;default:true;index"`
	AvailableQuantity int       `gorm:"not null;default:0"`
	CreatedAt         time.Time `gorm:"not null"`
	UpdatedAt         time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product
func (m *ProductModel) ToDomain() catalog.Product {
	return catalog.Product{
		ID:                m.ID,
		TenantID:          m.TenantID,
		VendorID:          m.VendorID,
		Name:              m.Name,
		IsActive:          m.IsActive,
		AvailableQuantity: m.AvailableQuantity,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

// UserModel is the persistence model for marketplace accounts.
type UserModel struct {
	ID             uuid.UUID     `gorm:"type:uuid;primary_key"`
	TenantID       uuid.UUID     `gorm:"type:uuid;index"`
	Role           identity.Role `gorm:"type:varchar(20);not null;index"`
	DisplayName    string        `gorm:"type:varchar(200);not null"`
	Email          string        `gorm:"type:varchar(200)"`
	BusinessName   string        `gorm:"type:varchar(200)"`
	VendorApproved bool          `gorm:"not null;default:false"`
	CreatedAt      time.Time     `gorm:"not null"`
	UpdatedAt      time.Time     `gorm:"not null"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User
func (m *UserModel) ToDomain() identity.User {
	return identity.User{
		ID:             m.ID,
		TenantID:       m.TenantID,
		Role:           m.Role,
		DisplayName:    m.DisplayName,
		Email:          m.Email,
		BusinessName:   m.BusinessName,
		VendorApproved: m.VendorApproved,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}
