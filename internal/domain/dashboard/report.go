package dashboard

import (
	"time"

	"github.com/google/uuid"
	"github.com/rentalhub/backend/internal/domain/catalog"
	"github.com/rentalhub/backend/internal/domain/rental"
	"github.com/shopspring/decimal"
)

// TimeWindow restricts an aggregation to [From, To].
type TimeWindow struct {
	From time.Time
	To   time.Time
}

// MonthlyBucket is one (year, month) group in the revenue trend.
// Revenue sums paid orders only; OrderCount counts every order created
// in the bucket regardless of payment status. Volume and revenue are
// tracked independently by requirement.
type MonthlyBucket struct {
	Year       int             `json:"year"`
	Month      int             `json:"month"`
	Revenue    decimal.Decimal `json:"revenue"`
	OrderCount int64           `json:"order_count"`
}

// VendorRevenueGroup is one vendor's paid-order revenue total, before
// the identity join.
type VendorRevenueGroup struct {
	VendorID   uuid.UUID
	Revenue    decimal.Decimal
	OrderCount int64
}

// VendorRanking is one row of the top-vendors list, with display
// attributes joined from the user directory.
type VendorRanking struct {
	VendorID     uuid.UUID       `json:"vendor_id"`
	Name         string          `json:"name"`
	BusinessName string          `json:"business_name,omitempty"`
	Revenue      decimal.Decimal `json:"revenue"`
	OrderCount   int64           `json:"order_count"`
}

// OrderItemSummary is a line item on an order summary row.
type OrderItemSummary struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// OrderSummary is a read model for the recent-orders lists, with
// customer and vendor display attributes joined in.
type OrderSummary struct {
	ID            uuid.UUID            `json:"id"`
	Status        rental.OrderStatus   `json:"status"`
	PaymentStatus rental.PaymentStatus `json:"payment_status"`
	TotalAmount   decimal.Decimal      `json:"total_amount"`
	CustomerName  string               `json:"customer_name"`
	CustomerEmail string               `json:"customer_email"`
	VendorName    string               `json:"vendor_name"`
	RentalStart   time.Time            `json:"rental_start"`
	RentalEnd     time.Time            `json:"rental_end"`
	Items         []OrderItemSummary   `json:"items"`
	CreatedAt     time.Time            `json:"created_at"`
}

// VendorStats holds the scalar metrics of a vendor dashboard.
type VendorStats struct {
	TotalProducts   int64           `json:"total_products"`
	ActiveProducts  int64           `json:"active_products"`
	TotalOrders     int64           `json:"total_orders"`
	PendingOrders   int64           `json:"pending_orders"`
	ActiveRentals   int64           `json:"active_rentals"`
	CompletedOrders int64           `json:"completed_orders"`
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
}

// VendorReport is the aggregate output of one vendor dashboard request.
// It is assembled once and never mutated afterwards.
type VendorReport struct {
	Stats            VendorStats       `json:"stats"`
	RecentOrders     []OrderSummary    `json:"recent_orders"`
	LowStockProducts []catalog.Product `json:"low_stock_products"`
	MonthlyTrend     []MonthlyBucket   `json:"monthly_trend"`
}

// AdminStats holds the scalar metrics of an admin dashboard. The user
// counts are platform-wide and ignore the tenant filter; everything
// else is tenant-scoped.
type AdminStats struct {
	TotalUsers     int64           `json:"total_users"`
	TotalVendors   int64           `json:"total_vendors"`
	PendingVendors int64           `json:"pending_vendors"`
	TotalCustomers int64           `json:"total_customers"`
	TotalProducts  int64           `json:"total_products"`
	ActiveProducts int64           `json:"active_products"`
	TotalOrders    int64           `json:"total_orders"`
	ActiveRentals  int64           `json:"active_rentals"`
	PendingOrders  int64           `json:"pending_orders"`
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
}

// AdminReport is the aggregate output of one admin dashboard request.
type AdminReport struct {
	Stats        AdminStats      `json:"stats"`
	RecentOrders []OrderSummary  `json:"recent_orders"`
	TopVendors   []VendorRanking `json:"top_vendors"`
	MonthlyTrend []MonthlyBucket `json:"monthly_trend"`
}

// CustomerStats holds the scalar metrics of a customer dashboard.
type CustomerStats struct {
	TotalOrders      int64           `json:"total_orders"`
	ActiveRentals    int64           `json:"active_rentals"`
	CompletedRentals int64           `json:"completed_rentals"`
	PendingOrders    int64           `json:"pending_orders"`
	TotalSpent       decimal.Decimal `json:"total_spent"`
}

// CustomerReport is the aggregate output of one customer dashboard
// request.
type CustomerReport struct {
	Stats           CustomerStats  `json:"stats"`
	RecentRentals   []OrderSummary `json:"recent_rentals"`
	UpcomingReturns []rental.Order `json:"upcoming_returns"`
}
