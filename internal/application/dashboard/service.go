package dashboard

import (
	"context"
	"errors"
	"time"

	"github.com/rentalhub/backend/internal/domain/catalog"
	"github.com/rentalhub/backend/internal/domain/dashboard"
	"github.com/rentalhub/backend/internal/domain/identity"
	"github.com/rentalhub/backend/internal/domain/rental"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Composition limits. These mirror what each role's dashboard renders;
// they are part of the report contract, not tuning knobs.
const (
	vendorRecentOrdersLimit = 5
	adminRecentOrdersLimit  = 10
	customerRecentLimit     = 5
	lowStockLimit           = 5
	topVendorsLimit         = 5
	trendMonths             = 6
	returnsWindow           = 7 * 24 * time.Hour
)

// Service composes role-scoped dashboard reports. Each request resolves
// a Scope, fans out the independent sub-computations concurrently, and
// assembles one immutable report. A failure in any sub-computation
// aborts the whole request: a silently zeroed metric would be
// indistinguishable from a true zero.
type Service struct {
	stats   dashboard.StatsRepository
	ranking *RankingAggregator
	logger  *zap.Logger
}

// NewService creates a new dashboard Service
func NewService(stats dashboard.StatsRepository, ranking *RankingAggregator, logger *zap.Logger) *Service {
	return &Service{
		stats:   stats,
		ranking: ranking,
		logger:  logger,
	}
}

// VendorDashboard builds the vendor report: product and order counts,
// total revenue, recent orders, low-stock products, and the 6-month
// revenue trend, all scoped to the calling vendor within the tenant.
func (s *Service) VendorDashboard(ctx context.Context, callerID, tenantID string) (*dashboard.VendorReport, error) {
	scope, err := dashboard.Resolve(callerID, identity.RoleVendor, tenantID)
	if err != nil {
		return nil, err
	}

	var report dashboard.VendorReport
	g, ctx := errgroup.WithContext(ctx)

	s.countInto(g, ctx, &report.Stats.TotalProducts, dashboard.EntityProduct, scope, nil)
	s.countInto(g, ctx, &report.Stats.ActiveProducts, dashboard.EntityProduct, scope,
		dashboard.Equals{Field: dashboard.FieldIsActive, Value: true})
	s.countInto(g, ctx, &report.Stats.TotalOrders, dashboard.EntityOrder, scope, nil)
	s.countInto(g, ctx, &report.Stats.PendingOrders, dashboard.EntityOrder, scope,
		dashboard.Equals{Field: dashboard.FieldStatus, Value: rental.OrderStatusPending})
	s.countInto(g, ctx, &report.Stats.ActiveRentals, dashboard.EntityOrder, scope,
		dashboard.Equals{Field: dashboard.FieldStatus, Value: rental.OrderStatusActive})
	s.countInto(g, ctx, &report.Stats.CompletedOrders, dashboard.EntityOrder, scope,
		dashboard.Equals{Field: dashboard.FieldStatus, Value: rental.OrderStatusCompleted})

	g.Go(func() error {
		revenue, err := s.stats.TotalRevenue(ctx, scope, nil)
		if err != nil {
			return err
		}
		report.Stats.TotalRevenue = revenue
		return nil
	})
	g.Go(func() error {
		orders, err := s.stats.RecentOrders(ctx, scope, vendorRecentOrdersLimit)
		if err != nil {
			return err
		}
		report.RecentOrders = orders
		return nil
	})
	g.Go(func() error {
		products, err := s.stats.LowStockProducts(ctx, scope, catalog.LowStockThreshold, lowStockLimit)
		if err != nil {
			return err
		}
		report.LowStockProducts = products
		return nil
	})
	g.Go(func() error {
		trend, err := s.stats.MonthlyTrend(ctx, scope, trendMonths)
		if err != nil {
			return err
		}
		report.MonthlyTrend = trend
		return nil
	})

	if err := s.wait(g); err != nil {
		return nil, err
	}
	return &report, nil
}

// AdminDashboard builds the admin report. User counts are platform-wide
// regardless of tenant; product and order figures, recent orders, the
// top-vendor ranking, and the trend are tenant-scoped.
func (s *Service) AdminDashboard(ctx context.Context, callerID, tenantID string) (*dashboard.AdminReport, error) {
	scope, err := dashboard.Resolve(callerID, identity.RoleAdmin, tenantID)
	if err != nil {
		return nil, err
	}
	global := dashboard.Global()

	var report dashboard.AdminReport
	g, ctx := errgroup.WithContext(ctx)

	s.countInto(g, ctx, &report.Stats.TotalUsers, dashboard.EntityUser, global, nil)
	s.countInto(g, ctx, &report.Stats.TotalVendors, dashboard.EntityUser, global,
		dashboard.Equals{Field: dashboard.FieldRole, Value: identity.RoleVendor})
	s.countInto(g, ctx, &report.Stats.PendingVendors, dashboard.EntityUser, global,
		dashboard.AllOf(
			dashboard.Equals{Field: dashboard.FieldRole, Value: identity.RoleVendor},
			dashboard.Equals{Field: dashboard.FieldVendorApproved, Value: false},
		))
	s.countInto(g, ctx, &report.Stats.TotalCustomers, dashboard.EntityUser, global,
		dashboard.Equals{Field: dashboard.FieldRole, Value: identity.RoleCustomer})

	s.countInto(g, ctx, &report.Stats.TotalProducts, dashboard.EntityProduct, scope, nil)
	s.countInto(g, ctx, &report.Stats.ActiveProducts, dashboard.EntityProduct, scope,
		dashboard.Equals{Field: dashboard.FieldIsActive, Value: true})
	s.countInto(g, ctx, &report.Stats.TotalOrders, dashboard.EntityOrder, scope, nil)
	s.countInto(g, ctx, &report.Stats.ActiveRentals, dashboard.EntityOrder, scope,
		dashboard.Equals{Field: dashboard.FieldStatus, Value: rental.OrderStatusActive})
	s.countInto(g, ctx, &report.Stats.PendingOrders, dashboard.EntityOrder, scope,
		dashboard.Equals{Field: dashboard.FieldStatus, Value: rental.OrderStatusPending})

	g.Go(func() error {
		revenue, err := s.stats.TotalRevenue(ctx, scope, nil)
		if err != nil {
			return err
		}
		report.Stats.TotalRevenue = revenue
		return nil
	})
	g.Go(func() error {
		orders, err := s.stats.RecentOrders(ctx, scope, adminRecentOrdersLimit)
		if err != nil {
			return err
		}
		report.RecentOrders = orders
		return nil
	})
	g.Go(func() error {
		groups, err := s.stats.VendorRevenue(ctx, scope)
		if err != nil {
			return err
		}
		ranked, err := s.ranking.TopVendors(ctx, groups, topVendorsLimit)
		if err != nil {
			return err
		}
		report.TopVendors = ranked
		return nil
	})
	g.Go(func() error {
		trend, err := s.stats.MonthlyTrend(ctx, scope, trendMonths)
		if err != nil {
			return err
		}
		report.MonthlyTrend = trend
		return nil
	})

	if err := s.wait(g); err != nil {
		return nil, err
	}
	return &report, nil
}

// CustomerDashboard builds the customer report: order counts, total
// amount spent on paid orders, recent rentals, and rentals due back
// within the next week. Customer scopes carry no tenant filter.
func (s *Service) CustomerDashboard(ctx context.Context, callerID string) (*dashboard.CustomerReport, error) {
	scope, err := dashboard.Resolve(callerID, identity.RoleCustomer, "")
	if err != nil {
		return nil, err
	}

	var report dashboard.CustomerReport
	g, ctx := errgroup.WithContext(ctx)

	s.countInto(g, ctx, &report.Stats.TotalOrders, dashboard.EntityOrder, scope, nil)
	s.countInto(g, ctx, &report.Stats.ActiveRentals, dashboard.EntityOrder, scope,
		dashboard.Equals{Field: dashboard.FieldStatus, Value: rental.OrderStatusActive})
	s.countInto(g, ctx, &report.Stats.CompletedRentals, dashboard.EntityOrder, scope,
		dashboard.Equals{Field: dashboard.FieldStatus, Value: rental.OrderStatusCompleted})
	s.countInto(g, ctx, &report.Stats.PendingOrders, dashboard.EntityOrder, scope,
		dashboard.Equals{Field: dashboard.FieldStatus, Value: rental.OrderStatusPending})

	g.Go(func() error {
		spent, err := s.stats.TotalRevenue(ctx, scope, nil)
		if err != nil {
			return err
		}
		report.Stats.TotalSpent = spent
		return nil
	})
	g.Go(func() error {
		rentals, err := s.stats.RecentOrders(ctx, scope, customerRecentLimit)
		if err != nil {
			return err
		}
		report.RecentRentals = rentals
		return nil
	})
	g.Go(func() error {
		returns, err := s.stats.UpcomingReturns(ctx, scope, returnsWindow)
		if err != nil {
			return err
		}
		report.UpcomingReturns = returns
		return nil
	})

	if err := s.wait(g); err != nil {
		return nil, err
	}
	return &report, nil
}

// countInto schedules one scoped count into the target field. Each
// sub-computation writes a distinct field, so no locking is needed.
func (s *Service) countInto(g *errgroup.Group, ctx context.Context, target *int64, kind dashboard.EntityKind, scope dashboard.Scope, cond dashboard.Condition) {
	g.Go(func() error {
		n, err := s.stats.Count(ctx, kind, scope, cond)
		if err != nil {
			return err
		}
		*target = n
		return nil
	})
}

// wait joins the fan-out and maps a deadline overrun to ErrTimeout.
// Any other failure propagates as-is; the engine performs no retries.
func (s *Service) wait(g *errgroup.Group) error {
	err := g.Wait()
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		s.logger.Warn("Dashboard request exceeded deadline, cancelling in-flight queries")
		return dashboard.ErrTimeout
	}
	return err
}
