package dashboard

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rentalhub/backend/internal/domain/catalog"
	"github.com/rentalhub/backend/internal/domain/identity"
	"github.com/rentalhub/backend/internal/domain/rental"
	"github.com/shopspring/decimal"
)

// EntityKind selects the record set a count runs over.
type EntityKind string

const (
	EntityOrder   EntityKind = "orders"
	EntityProduct EntityKind = "products"
	EntityUser    EntityKind = "users"
)

// StatsRepository is the read-only query surface the dashboard engine
// runs on. Implementations must apply the Scope to every query and
// surface store failures as *QueryError; they never mask an error as a
// zero result.
type StatsRepository interface {
	// Count returns the number of records of kind matching scope AND cond.
	// A nil cond counts everything in scope.
	Count(ctx context.Context, kind EntityKind, scope Scope, cond Condition) (int64, error)

	// TotalRevenue sums total_amount over paid orders in scope,
	// optionally restricted to a creation-time window. Returns zero when
	// nothing matches.
	TotalRevenue(ctx context.Context, scope Scope, window *TimeWindow) (decimal.Decimal, error)

	// MonthlyTrend buckets orders created within the last months by
	// (year, month), ascending. Bucket revenue sums paid orders only;
	// bucket order counts include every order. Months with no orders do
	// not appear.
	MonthlyTrend(ctx context.Context, scope Scope, months int) ([]MonthlyBucket, error)

	// VendorRevenue groups paid orders in scope by vendor, unordered and
	// unbounded; ranking happens in the aggregator after the identity join.
	VendorRevenue(ctx context.Context, scope Scope) ([]VendorRevenueGroup, error)

	// RecentOrders returns the newest orders in scope with customer and
	// vendor display attributes joined and line items attached.
	RecentOrders(ctx context.Context, scope Scope, limit int) ([]OrderSummary, error)

	// LowStockProducts returns active products in scope with available
	// quantity at or below threshold, quantity ascending.
	LowStockProducts(ctx context.Context, scope Scope, threshold, limit int) ([]catalog.Product, error)

	// UpcomingReturns returns active orders in scope due back within the
	// given duration of now, earliest due first. Unbounded: every
	// due-soon rental must be visible.
	UpcomingReturns(ctx context.Context, scope Scope, within time.Duration) ([]rental.Order, error)
}

// UserDirectory resolves user ids to accounts for ranking and recency
// joins. Missing ids are simply absent from the result, not errors.
type UserDirectory interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]identity.User, error)
}
