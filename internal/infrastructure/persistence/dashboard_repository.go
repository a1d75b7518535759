package persistence

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rentalhub/backend/internal/domain/catalog"
	"github.com/rentalhub/backend/internal/domain/dashboard"
	"github.com/rentalhub/backend/internal/domain/identity"
	"github.com/rentalhub/backend/internal/domain/rental"
	"github.com/rentalhub/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// entitySpec describes how one entity kind maps onto SQL: its table,
// the predicate fields it exposes, and the column each identity role
// scopes on. Fields and roles absent from the maps are rejected.
type entitySpec struct {
	table     string
	columns   map[dashboard.Field]string
	scopeCols map[identity.Role]string
}

var entitySpecs = map[dashboard.EntityKind]entitySpec{
	dashboard.EntityOrder: {
		table: "orders",
		columns: map[dashboard.Field]string{
			dashboard.FieldStatus:        "status",
			dashboard.FieldPaymentStatus: "payment_status",
			dashboard.FieldCreatedAt:     "created_at",
		},
		scopeCols: map[identity.Role]string{
			identity.RoleVendor:   "vendor_id",
			identity.RoleCustomer: "customer_id",
		},
	},
	dashboard.EntityProduct: {
		table: "products",
		columns: map[dashboard.Field]string{
			dashboard.FieldIsActive:          "is_active",
			dashboard.FieldAvailableQuantity: "available_quantity",
			dashboard.FieldCreatedAt:         "created_at",
		},
		scopeCols: map[identity.Role]string{
			identity.RoleVendor: "vendor_id",
		},
	},
	dashboard.EntityUser: {
		table: "users",
		columns: map[dashboard.Field]string{
			dashboard.FieldRole:           "role",
			dashboard.FieldVendorApproved: "vendor_approved",
			dashboard.FieldCreatedAt:      "created_at",
		},
		scopeCols: map[identity.Role]string{},
	},
}

// GormStatsRepository implements dashboard.StatsRepository using GORM.
// All queries are read-only.
type GormStatsRepository struct {
	db         *gorm.DB
	logger     *zap.Logger
	joinMisses atomic.Int64
}

// NewGormStatsRepository creates a new GORM-based stats repository
func NewGormStatsRepository(db *gorm.DB, logger *zap.Logger) *GormStatsRepository {
	return &GormStatsRepository{db: db, logger: logger}
}

// JoinMisses returns how many recent-order rows were dropped because
// their customer reference no longer resolved.
func (r *GormStatsRepository) JoinMisses() int64 {
	return r.joinMisses.Load()
}

// applyScope narrows q to the scope's tenant and identity. The prefix
// qualifies column names when the query aliases its driving table.
func applyScope(q *gorm.DB, spec entitySpec, scope dashboard.Scope, prefix string) (*gorm.DB, error) {
	if scope.Tenant != nil {
		q = q.Where(prefix+"tenant_id = ?", *scope.Tenant)
	}
	if scope.Identity != nil {
		col, ok := spec.scopeCols[scope.Identity.Role]
		if !ok {
			return nil, fmt.Errorf("entity %s has no %s ownership column", spec.table, scope.Identity.Role)
		}
		q = q.Where(prefix+col+" = ?", scope.Identity.ID)
	}
	return q, nil
}

// applyCondition translates a filter condition into WHERE clauses.
// Unknown fields surface dashboard.ErrUnknownField so a bad predicate
// can never widen a count.
func applyCondition(q *gorm.DB, spec entitySpec, cond dashboard.Condition, prefix string) (*gorm.DB, error) {
	if cond == nil {
		return q, nil
	}
	column := func(f dashboard.Field) (string, error) {
		col, ok := spec.columns[f]
		if !ok {
			return "", fmt.Errorf("field %q on %s: %w", f, spec.table, dashboard.ErrUnknownField)
		}
		return prefix + col, nil
	}

	switch c := cond.(type) {
	case dashboard.Equals:
		col, err := column(c.Field)
		if err != nil {
			return nil, err
		}
		return q.Where(col+" = ?", c.Value), nil
	case dashboard.In:
		col, err := column(c.Field)
		if err != nil {
			return nil, err
		}
		return q.Where(col+" IN ?", c.Values), nil
	case dashboard.Range:
		col, err := column(c.Field)
		if err != nil {
			return nil, err
		}
		if c.Min != nil {
			q = q.Where(col+" >= ?", c.Min)
		}
		if c.Max != nil {
			q = q.Where(col+" <= ?", c.Max)
		}
		return q, nil
	case dashboard.And:
		var err error
		for _, sub := range c.Conds {
			if q, err = applyCondition(q, spec, sub, prefix); err != nil {
				return nil, err
			}
		}
		return q, nil
	}
	return nil, fmt.Errorf("condition %T: %w", cond, dashboard.ErrUnknownField)
}

// Count returns the number of records of kind matching scope AND cond
func (r *GormStatsRepository) Count(ctx context.Context, kind dashboard.EntityKind, scope dashboard.Scope, cond dashboard.Condition) (int64, error) {
	spec, ok := entitySpecs[kind]
	if !ok {
		return 0, dashboard.NewQueryError("count", fmt.Errorf("unknown entity kind %q", kind))
	}

	q := r.db.WithContext(ctx).Table(spec.table)
	q, err := applyScope(q, spec, scope, "")
	if err != nil {
		return 0, dashboard.NewQueryError("count "+string(kind), err)
	}
	q, err = applyCondition(q, spec, cond, "")
	if err != nil {
		return 0, dashboard.NewQueryError("count "+string(kind), err)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, dashboard.NewQueryError("count "+string(kind), err)
	}
	return count, nil
}

// TotalRevenue sums total_amount over paid orders in scope
func (r *GormStatsRepository) TotalRevenue(ctx context.Context, scope dashboard.Scope, window *dashboard.TimeWindow) (decimal.Decimal, error) {
	spec := entitySpecs[dashboard.EntityOrder]

	q := r.db.WithContext(ctx).Table(spec.table).
		Where("payment_status = ?", rental.PaymentStatusPaid)
	q, err := applyScope(q, spec, scope, "")
	if err != nil {
		return decimal.Zero, dashboard.NewQueryError("total revenue", err)
	}
	if window != nil {
		q = q.Where("created_at >= ? AND created_at <= ?", window.From, window.To)
	}

	var row struct {
		Total decimal.Decimal
	}
	if err := q.Select("COALESCE(SUM(total_amount), 0) AS total").Scan(&row).Error; err != nil {
		return decimal.Zero, dashboard.NewQueryError("total revenue", err)
	}
	return row.Total, nil
}

// trendBucketColumns returns the (year, month) bucket expressions for
// the connected dialect. sqlite has no EXTRACT and buckets via strftime.
func trendBucketColumns(dialect string) string {
	if dialect == "sqlite" {
		return "CAST(strftime('%Y', created_at) AS INTEGER) AS year, " +
			"CAST(strftime('%m', created_at) AS INTEGER) AS month"
	}
	return "CAST(EXTRACT(YEAR FROM created_at) AS INTEGER) AS year, " +
		"CAST(EXTRACT(MONTH FROM created_at) AS INTEGER) AS month"
}

// MonthlyTrend buckets orders created within the last months by
// (year, month). Revenue is a conditional sum over paid orders while
// the count spans every order in the bucket, so payment delays shift
// revenue between months without hiding volume. Empty months do not
// appear.
func (r *GormStatsRepository) MonthlyTrend(ctx context.Context, scope dashboard.Scope, months int) ([]dashboard.MonthlyBucket, error) {
	spec := entitySpecs[dashboard.EntityOrder]
	since := time.Now().AddDate(0, -months, 0)

	q := r.db.WithContext(ctx).Table(spec.table).
		Select(trendBucketColumns(r.db.Dialector.Name())+", "+
			"COALESCE(SUM(CASE WHEN payment_status = ? THEN total_amount ELSE 0 END), 0) AS revenue, "+
			"COUNT(*) AS order_count", rental.PaymentStatusPaid).
		Where("created_at >= ?", since)
	q, err := applyScope(q, spec, scope, "")
	if err != nil {
		return nil, dashboard.NewQueryError("monthly trend", err)
	}

	var buckets []dashboard.MonthlyBucket
	if err := q.Group("1, 2").Order("1, 2").Scan(&buckets).Error; err != nil {
		return nil, dashboard.NewQueryError("monthly trend", err)
	}
	return buckets, nil
}

// VendorRevenue groups paid orders in scope by vendor, unordered
func (r *GormStatsRepository) VendorRevenue(ctx context.Context, scope dashboard.Scope) ([]dashboard.VendorRevenueGroup, error) {
	spec := entitySpecs[dashboard.EntityOrder]

	q := r.db.WithContext(ctx).Table(spec.table).
		Select("vendor_id, COALESCE(SUM(total_amount), 0) AS revenue, COUNT(*) AS order_count").
		Where("payment_status = ?", rental.PaymentStatusPaid)
	q, err := applyScope(q, spec, scope, "")
	if err != nil {
		return nil, dashboard.NewQueryError("vendor revenue", err)
	}

	var groups []dashboard.VendorRevenueGroup
	if err := q.Group("vendor_id").Scan(&groups).Error; err != nil {
		return nil, dashboard.NewQueryError("vendor revenue", err)
	}
	return groups, nil
}

// orderSummaryRow is the flat scan target for the recent-orders join.
// CustomerRef mirrors the joined user id so a vanished customer
// account is distinguishable from an empty name.
type orderSummaryRow struct {
	ID            uuid.UUID
	Status        rental.OrderStatus
	PaymentStatus rental.PaymentStatus
	TotalAmount   decimal.Decimal
	CustomerRef   *uuid.UUID
	CustomerName  string
	CustomerEmail string
	VendorName    string
	RentalStart   time.Time
	RentalEnd     time.Time
	CreatedAt     time.Time
}

// RecentOrders returns the newest orders in scope with customer and
// vendor display attributes joined in one query. Line items are batch
// loaded with a single extra query. Orders whose customer account no
// longer resolves are dropped and counted.
func (r *GormStatsRepository) RecentOrders(ctx context.Context, scope dashboard.Scope, limit int) ([]dashboard.OrderSummary, error) {
	spec := entitySpecs[dashboard.EntityOrder]

	q := r.db.WithContext(ctx).Table("orders o").
		Select("o.id, o.status, o.payment_status, o.total_amount, o.rental_start, o.rental_end, o.created_at, "+
			"cu.id AS customer_ref, "+
			"COALESCE(cu.display_name, '') AS customer_name, "+
			"COALESCE(cu.email, '') AS customer_email, "+
			"COALESCE(NULLIF(vu.business_name, ''), vu.display_name, '') AS vendor_name").
		Joins("LEFT JOIN users cu ON cu.id = o.customer_id").
		Joins("LEFT JOIN users vu ON vu.id = o.vendor_id")
	q, err := applyScope(q, spec, scope, "o.")
	if err != nil {
		return nil, dashboard.NewQueryError("recent orders", err)
	}

	var rows []orderSummaryRow
	if err := q.Order("o.created_at DESC, o.id ASC").Limit(limit).Scan(&rows).Error; err != nil {
		return nil, dashboard.NewQueryError("recent orders", err)
	}

	summaries := make([]dashboard.OrderSummary, 0, len(rows))
	orderIDs := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		if row.CustomerRef == nil {
			r.joinMisses.Add(1)
			r.logger.Warn("dropping order with unresolved customer",
				zap.String("order_id", row.ID.String()))
			continue
		}
		summaries = append(summaries, dashboard.OrderSummary{
			ID:            row.ID,
			Status:        row.Status,
			PaymentStatus: row.PaymentStatus,
			TotalAmount:   row.TotalAmount,
			CustomerName:  row.CustomerName,
			CustomerEmail: row.CustomerEmail,
			VendorName:    row.VendorName,
			RentalStart:   row.RentalStart,
			RentalEnd:     row.RentalEnd,
			CreatedAt:     row.CreatedAt,
			Items:         []dashboard.OrderItemSummary{},
		})
		orderIDs = append(orderIDs, row.ID)
	}
	if len(orderIDs) == 0 {
		return summaries, nil
	}

	var items []models.OrderItemModel
	if err := r.db.WithContext(ctx).
		Where("order_id IN ?", orderIDs).
		Order("order_id ASC, id ASC").
		Find(&items).Error; err != nil {
		return nil, dashboard.NewQueryError("recent order items", err)
	}

	byOrder := make(map[uuid.UUID][]dashboard.OrderItemSummary, len(orderIDs))
	for _, item := range items {
		byOrder[item.OrderID] = append(byOrder[item.OrderID], dashboard.OrderItemSummary{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}
	for i := range summaries {
		if got, ok := byOrder[summaries[i].ID]; ok {
			summaries[i].Items = got
		}
	}
	return summaries, nil
}

// LowStockProducts returns active products in scope at or below the
// stock threshold, quantity ascending with id as tie-break so repeated
// reads agree.
func (r *GormStatsRepository) LowStockProducts(ctx context.Context, scope dashboard.Scope, threshold, limit int) ([]catalog.Product, error) {
	spec := entitySpecs[dashboard.EntityProduct]

	q := r.db.WithContext(ctx).Model(&models.ProductModel{}).
		Where("is_active = ?", true).
		Where("available_quantity <= ?", threshold)
	q, err := applyScope(q, spec, scope, "")
	if err != nil {
		return nil, dashboard.NewQueryError("low stock products", err)
	}

	var rows []models.ProductModel
	if err := q.Order("available_quantity ASC, id ASC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, dashboard.NewQueryError("low stock products", err)
	}

	products := make([]catalog.Product, len(rows))
	for i := range rows {
		products[i] = rows[i].ToDomain()
	}
	return products, nil
}

// UpcomingReturns returns active orders in scope due back within the
// given duration of now, earliest due first. Deliberately unbounded:
// every due-soon rental must be visible.
func (r *GormStatsRepository) UpcomingReturns(ctx context.Context, scope dashboard.Scope, within time.Duration) ([]rental.Order, error) {
	spec := entitySpecs[dashboard.EntityOrder]
	now := time.Now()

	q := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Preload("Items").
		Where("status = ?", rental.OrderStatusActive).
		Where("rental_end >= ? AND rental_end <= ?", now, now.Add(within))
	q, err := applyScope(q, spec, scope, "")
	if err != nil {
		return nil, dashboard.NewQueryError("upcoming returns", err)
	}

	var rows []models.OrderModel
	if err := q.Order("rental_end ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, dashboard.NewQueryError("upcoming returns", err)
	}

	orders := make([]rental.Order, len(rows))
	for i := range rows {
		orders[i] = rows[i].ToDomain()
	}
	return orders, nil
}
