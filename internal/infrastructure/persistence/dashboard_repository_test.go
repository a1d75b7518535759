package persistence

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/rentalhub/backend/internal/domain/dashboard"
	"github.com/rentalhub/backend/internal/domain/identity"
	"github.com/rentalhub/backend/internal/domain/rental"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockStatsRepository creates a GormStatsRepository with a mocked SQL connection
func newMockStatsRepository(t *testing.T) (*GormStatsRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormStatsRepository(gormDB, zap.NewNop()), mock, mockDB
}

func vendorScope(tenantID, vendorID uuid.UUID) dashboard.Scope {
	return dashboard.Scope{
		Tenant:   &tenantID,
		Identity: &dashboard.IdentityFilter{Role: identity.RoleVendor, ID: vendorID},
	}
}

func TestGormStatsRepository_Count(t *testing.T) {
	t.Run("applies scope and equals condition", func(t *testing.T) {
		repo, mock, mockDB := newMockStatsRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		vendorID := uuid.New()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "orders" WHERE tenant_id = \$1 AND vendor_id = \$2 AND status = \$3`).
			WithArgs(tenantID, vendorID, rental.OrderStatusPending).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

		count, err := repo.Count(context.Background(), dashboard.EntityOrder,
			vendorScope(tenantID, vendorID),
			dashboard.Equals{Field: dashboard.FieldStatus, Value: rental.OrderStatusPending})

		require.NoError(t, err)
		assert.Equal(t, int64(4), count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty scope counts globally", func(t *testing.T) {
		repo, mock, mockDB := newMockStatsRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "users" WHERE role = \$1`).
			WithArgs(identity.RoleVendor).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(20))

		count, err := repo.Count(context.Background(), dashboard.EntityUser, dashboard.Global(),
			dashboard.Equals{Field: dashboard.FieldRole, Value: identity.RoleVendor})

		require.NoError(t, err)
		assert.Equal(t, int64(20), count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("expands in and range conditions", func(t *testing.T) {
		repo, mock, mockDB := newMockStatsRepository(t)
		defer mockDB.Close()

		since := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

		mock.ExpectQuery(`SELECT count\(\*\) FROM "orders" WHERE status IN \(\$1,\$2\) AND created_at >= \$3`).
			WithArgs(rental.OrderStatusPending, rental.OrderStatusActive, since).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))

		count, err := repo.Count(context.Background(), dashboard.EntityOrder, dashboard.Global(),
			dashboard.AllOf(
				dashboard.In{Field: dashboard.FieldStatus, Values: []any{rental.OrderStatusPending, rental.OrderStatusActive}},
				dashboard.Range{Field: dashboard.FieldCreatedAt, Min: since},
			))

		require.NoError(t, err)
		assert.Equal(t, int64(11), count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("status partitions sum to the unfiltered count", func(t *testing.T) {
		repo, mock, mockDB := newMockStatsRepository(t)
		defer mockDB.Close()

		partitions := map[rental.OrderStatus]int64{
			rental.OrderStatusPending:   3,
			rental.OrderStatusActive:    2,
			rental.OrderStatusCompleted: 4,
			rental.OrderStatusCancelled: 1,
		}

		var sum int64
		for _, status := range rental.AllOrderStatuses() {
			mock.ExpectQuery(`SELECT count\(\*\) FROM "orders" WHERE status = \$1`).
				WithArgs(status).
				WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(partitions[status]))

			n, err := repo.Count(context.Background(), dashboard.EntityOrder, dashboard.Global(),
				dashboard.Equals{Field: dashboard.FieldStatus, Value: status})
			require.NoError(t, err)
			sum += n
		}

		mock.ExpectQuery(`SELECT count\(\*\) FROM "orders"$`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(10))

		total, err := repo.Count(context.Background(), dashboard.EntityOrder, dashboard.Global(), nil)

		require.NoError(t, err)
		assert.Equal(t, sum, total)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown predicate field is rejected before any query", func(t *testing.T) {
		repo, _, mockDB := newMockStatsRepository(t)
		defer mockDB.Close()

		_, err := repo.Count(context.Background(), dashboard.EntityProduct, dashboard.Global(),
			dashboard.Equals{Field: dashboard.FieldRole, Value: identity.RoleVendor})

		var queryErr *dashboard.QueryError
		require.ErrorAs(t, err, &queryErr)
		assert.ErrorIs(t, err, dashboard.ErrUnknownField)
	})

	t.Run("store failure surfaces as query error, not zero", func(t *testing.T) {
		repo, mock, mockDB := newMockStatsRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "orders"`).
			WillReturnError(errors.New("connection refused"))

		_, err := repo.Count(context.Background(), dashboard.EntityOrder, dashboard.Global(), nil)

		var queryErr *dashboard.QueryError
		require.ErrorAs(t, err, &queryErr)
	})
}

func TestGormStatsRepository_TotalRevenue(t *testing.T) {
	t.Run("sums paid orders only", func(t *testing.T) {
		repo, mock, mockDB := newMockStatsRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		vendorID := uuid.New()

		mock.ExpectQuery(`SELECT COALESCE\(SUM\(total_amount\), 0\) AS total FROM "orders" WHERE payment_status = \$1 AND tenant_id = \$2 AND vendor_id = \$3`).
			WithArgs(rental.PaymentStatusPaid, tenantID, vendorID).
			WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow("1234.56"))

		total, err := repo.TotalRevenue(context.Background(), vendorScope(tenantID, vendorID), nil)

		require.NoError(t, err)
		assert.True(t, total.Equal(decimal.RequireFromString("1234.56")))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns zero when nothing matches", func(t *testing.T) {
		repo, mock, mockDB := newMockStatsRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT COALESCE\(SUM\(total_amount\), 0\) AS total FROM "orders"`).
			WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow("0"))

		total, err := repo.TotalRevenue(context.Background(), dashboard.Global(), nil)

		require.NoError(t, err)
		assert.True(t, total.IsZero())
	})

	t.Run("restricts to the window when given", func(t *testing.T) {
		repo, mock, mockDB := newMockStatsRepository(t)
		defer mockDB.Close()

		from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)

		mock.ExpectQuery(`SELECT COALESCE\(SUM\(total_amount\), 0\) AS total FROM "orders" WHERE payment_status = \$1 AND \(created_at >= \$2 AND created_at <= \$3\)`).
			WithArgs(rental.PaymentStatusPaid, from, to).
			WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow("55.00"))

		total, err := repo.TotalRevenue(context.Background(), dashboard.Global(),
			&dashboard.TimeWindow{From: from, To: to})

		require.NoError(t, err)
		assert.True(t, total.Equal(decimal.RequireFromString("55.00")))
	})
}

func TestGormStatsRepository_MonthlyTrend(t *testing.T) {
	t.Run("returns ascending buckets with paid-only revenue", func(t *testing.T) {
		repo, mock, mockDB := newMockStatsRepository(t)
		defer mockDB.Close()

		rows := sqlmock.NewRows([]string{"year", "month", "revenue", "order_count"}).
			AddRow(2026, 3, "100.00", 5).
			AddRow(2026, 4, "0", 2).
			AddRow(2026, 7, "250.50", 3)

		mock.ExpectQuery(`SELECT CAST\(EXTRACT\(YEAR FROM created_at\) AS INTEGER\) AS year,.*GROUP BY 1, 2 ORDER BY 1, 2`).
			WillReturnRows(rows)

		trend, err := repo.MonthlyTrend(context.Background(), dashboard.Global(), 6)

		require.NoError(t, err)
		require.Len(t, trend, 3)
		assert.Equal(t, 2026, trend[0].Year)
		assert.Equal(t, 3, trend[0].Month)
		assert.True(t, trend[0].Revenue.Equal(decimal.RequireFromString("100.00")))
		assert.Equal(t, int64(5), trend[0].OrderCount)
		// A bucket of unpaid orders still reports its volume.
		assert.True(t, trend[1].Revenue.IsZero())
		assert.Equal(t, int64(2), trend[1].OrderCount)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTrendBucketColumns(t *testing.T) {
	t.Run("postgres buckets via EXTRACT", func(t *testing.T) {
		cols := trendBucketColumns("postgres")
		assert.Contains(t, cols, "EXTRACT(YEAR FROM created_at)")
		assert.Contains(t, cols, "EXTRACT(MONTH FROM created_at)")
	})

	t.Run("sqlite buckets via strftime", func(t *testing.T) {
		cols := trendBucketColumns("sqlite")
		assert.Contains(t, cols, "strftime('%Y', created_at)")
		assert.Contains(t, cols, "strftime('%m', created_at)")
	})
}

func TestGormStatsRepository_VendorRevenue(t *testing.T) {
	t.Run("groups paid orders by vendor", func(t *testing.T) {
		repo, mock, mockDB := newMockStatsRepository(t)
		defer mockDB.Close()

		first := uuid.New()
		second := uuid.New()
		rows := sqlmock.NewRows([]string{"vendor_id", "revenue", "order_count"}).
			AddRow(first, "500.00", 5).
			AddRow(second, "120.00", 2)

		mock.ExpectQuery(`SELECT vendor_id, COALESCE\(SUM\(total_amount\), 0\) AS revenue, COUNT\(\*\) AS order_count FROM "orders" WHERE payment_status = \$1.*GROUP BY .?vendor_id.?`).
			WithArgs(rental.PaymentStatusPaid).
			WillReturnRows(rows)

		groups, err := repo.VendorRevenue(context.Background(), dashboard.Global())

		require.NoError(t, err)
		require.Len(t, groups, 2)
		assert.Equal(t, first, groups[0].VendorID)
		assert.True(t, groups[0].Revenue.Equal(decimal.RequireFromString("500.00")))
		assert.Equal(t, int64(5), groups[0].OrderCount)
	})
}

func TestGormStatsRepository_RecentOrders(t *testing.T) {
	t.Run("joins display attributes and batch-loads items", func(t *testing.T) {
		repo, mock, mockDB := newMockStatsRepository(t)
		defer mockDB.Close()

		orderID := uuid.New()
		customerID := uuid.New()
		now := time.Now()

		orderRows := sqlmock.NewRows([]string{
			"id", "status", "payment_status", "total_amount",
			"rental_start", "rental_end", "created_at",
			"customer_ref", "customer_name", "customer_email", "vendor_name",
		}).AddRow(orderID, "active", "paid", "80.00", now, now.Add(48*time.Hour), now,
			customerID, "Ada Lovelace", "ada@example.com", "Gear Garage")

		mock.ExpectQuery(`SELECT o\.id, o\.status, .* FROM orders o LEFT JOIN users cu ON cu\.id = o\.customer_id LEFT JOIN users vu ON vu\.id = o\.vendor_id ORDER BY o\.created_at DESC, o\.id ASC LIMIT \$1`).
			WithArgs(5).
			WillReturnRows(orderRows)

		itemRows := sqlmock.NewRows([]string{"id", "order_id", "product_id", "product_name", "quantity", "unit_price"}).
			AddRow(uuid.New(), orderID, uuid.New(), "Canoe", 1, "80.00")

		mock.ExpectQuery(`SELECT \* FROM "order_items" WHERE order_id IN \(\$1\) ORDER BY order_id ASC, id ASC`).
			WithArgs(orderID).
			WillReturnRows(itemRows)

		orders, err := repo.RecentOrders(context.Background(), dashboard.Global(), 5)

		require.NoError(t, err)
		require.Len(t, orders, 1)
		assert.Equal(t, orderID, orders[0].ID)
		assert.Equal(t, "Ada Lovelace", orders[0].CustomerName)
		assert.Equal(t, "ada@example.com", orders[0].CustomerEmail)
		assert.Equal(t, "Gear Garage", orders[0].VendorName)
		require.Len(t, orders[0].Items, 1)
		assert.Equal(t, "Canoe", orders[0].Items[0].ProductName)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("drops orders whose customer no longer resolves", func(t *testing.T) {
		repo, mock, mockDB := newMockStatsRepository(t)
		defer mockDB.Close()

		keptID := uuid.New()
		orphanID := uuid.New()
		customerID := uuid.New()
		now := time.Now()

		orderRows := sqlmock.NewRows([]string{
			"id", "status", "payment_status", "total_amount",
			"rental_start", "rental_end", "created_at",
			"customer_ref", "customer_name", "customer_email", "vendor_name",
		}).
			AddRow(orphanID, "active", "paid", "10.00", now, now, now, nil, "", "", "Gear Garage").
			AddRow(keptID, "active", "paid", "20.00", now, now, now, customerID, "Ada", "ada@example.com", "Gear Garage")

		mock.ExpectQuery(`SELECT o\.id, o\.status, .* FROM orders o LEFT JOIN`).
			WillReturnRows(orderRows)
		mock.ExpectQuery(`SELECT \* FROM "order_items" WHERE order_id IN \(\$1\)`).
			WithArgs(keptID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "product_id", "product_name", "quantity", "unit_price"}))

		orders, err := repo.RecentOrders(context.Background(), dashboard.Global(), 5)

		require.NoError(t, err)
		require.Len(t, orders, 1)
		assert.Equal(t, keptID, orders[0].ID)
		assert.Equal(t, int64(1), repo.JoinMisses())
	})
}

func TestGormStatsRepository_LowStockProducts(t *testing.T) {
	t.Run("returns active products at or below threshold", func(t *testing.T) {
		repo, mock, mockDB := newMockStatsRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		vendorID := uuid.New()
		productID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "tenant_id", "vendor_id", "name", "is_active", "available_quantity"}).
			AddRow(productID, tenantID, vendorID, "Tent", true, 1)

		mock.ExpectQuery(`SELECT \* FROM "products" WHERE is_active = \$1 AND available_quantity <= \$2 AND tenant_id = \$3 AND vendor_id = \$4 ORDER BY available_quantity ASC, id ASC LIMIT \$5`).
			WithArgs(true, 2, tenantID, vendorID, 5).
			WillReturnRows(rows)

		products, err := repo.LowStockProducts(context.Background(), vendorScope(tenantID, vendorID), 2, 5)

		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, productID, products[0].ID)
		assert.Equal(t, 1, products[0].AvailableQuantity)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormStatsRepository_UpcomingReturns(t *testing.T) {
	t.Run("returns active orders due within the window", func(t *testing.T) {
		repo, mock, mockDB := newMockStatsRepository(t)
		defer mockDB.Close()

		orderID := uuid.New()
		customerID := uuid.New()
		now := time.Now()

		orderRows := sqlmock.NewRows([]string{"id", "customer_id", "status", "payment_status", "total_amount", "rental_end"}).
			AddRow(orderID, customerID, "active", "paid", "45.00", now.Add(24*time.Hour))

		mock.ExpectQuery(`SELECT \* FROM "orders" WHERE status = \$1 AND \(rental_end >= \$2 AND rental_end <= \$3\) AND customer_id = \$4 ORDER BY rental_end ASC, id ASC`).
			WillReturnRows(orderRows)
		mock.ExpectQuery(`SELECT \* FROM "order_items" WHERE "order_items"\."order_id" (= \$1|IN \(\$1\))`).
			WithArgs(orderID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "product_id", "product_name", "quantity", "unit_price"}))

		scope := dashboard.Scope{
			Identity: &dashboard.IdentityFilter{Role: identity.RoleCustomer, ID: customerID},
		}
		orders, err := repo.UpcomingReturns(context.Background(), scope, 7*24*time.Hour)

		require.NoError(t, err)
		require.Len(t, orders, 1)
		assert.Equal(t, orderID, orders[0].ID)
		assert.Equal(t, rental.OrderStatusActive, orders[0].Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormUserDirectory_FindByIDs(t *testing.T) {
	t.Run("resolves existing ids and skips missing ones", func(t *testing.T) {
		mockDB, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer mockDB.Close()

		dialector := postgres.New(postgres.Config{Conn: mockDB, DriverName: "postgres"})
		gormDB, err := gorm.Open(dialector, &gorm.Config{SkipDefaultTransaction: true})
		require.NoError(t, err)

		found := uuid.New()
		missing := uuid.New()
		rows := sqlmock.NewRows([]string{"id", "role", "display_name", "business_name"}).
			AddRow(found, "vendor", "Found Vendor", "Found LLC")

		mock.ExpectQuery(`SELECT \* FROM "users" WHERE id IN \(\$1,\$2\)`).
			WithArgs(found, missing).
			WillReturnRows(rows)

		dir := NewGormUserDirectory(gormDB)
		users, err := dir.FindByIDs(context.Background(), []uuid.UUID{found, missing})

		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, found, users[0].ID)
		assert.Equal(t, "Found LLC", users[0].BusinessName)
	})

	t.Run("empty id list short-circuits", func(t *testing.T) {
		mockDB, _, err := sqlmock.New()
		require.NoError(t, err)
		defer mockDB.Close()

		dialector := postgres.New(postgres.Config{Conn: mockDB, DriverName: "postgres"})
		gormDB, err := gorm.Open(dialector, &gorm.Config{SkipDefaultTransaction: true})
		require.NoError(t, err)

		dir := NewGormUserDirectory(gormDB)
		users, err := dir.FindByIDs(context.Background(), nil)

		require.NoError(t, err)
		assert.Empty(t, users)
	})
}
