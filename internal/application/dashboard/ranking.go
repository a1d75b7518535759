package dashboard

import (
	"bytes"
	"context"
	"sort"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rentalhub/backend/internal/domain/dashboard"
	"github.com/rentalhub/backend/internal/domain/identity"
	"go.uber.org/zap"
)

// RankingAggregator turns per-vendor revenue groups into a ranked,
// display-ready list by joining vendor ids against the user directory.
type RankingAggregator struct {
	users      dashboard.UserDirectory
	logger     *zap.Logger
	joinMisses atomic.Int64
}

// NewRankingAggregator creates a new RankingAggregator
func NewRankingAggregator(users dashboard.UserDirectory, logger *zap.Logger) *RankingAggregator {
	return &RankingAggregator{
		users:  users,
		logger: logger,
	}
}

// TopVendors ranks the groups by revenue and attaches vendor display
// attributes. Groups whose vendor id no longer resolves to a user are
// dropped rather than emitted with empty attributes; drops are counted
// internally and logged, never surfaced to the caller.
//
// Ordering is total: revenue descending, then vendor id ascending.
// Truncation to n happens after sort and join, so join misses do not
// shorten the list below n unnecessarily.
func (a *RankingAggregator) TopVendors(ctx context.Context, groups []dashboard.VendorRevenueGroup, n int) ([]dashboard.VendorRanking, error) {
	if n < 1 || len(groups) == 0 {
		return []dashboard.VendorRanking{}, nil
	}

	ids := make([]uuid.UUID, len(groups))
	for i, g := range groups {
		ids[i] = g.VendorID
	}

	users, err := a.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, dashboard.NewQueryError("top_vendors", err)
	}

	byID := make(map[uuid.UUID]identity.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	rankings := make([]dashboard.VendorRanking, 0, len(groups))
	for _, g := range groups {
		u, ok := byID[g.VendorID]
		if !ok {
			a.joinMisses.Add(1)
			a.logger.Warn("Vendor ranking join miss, dropping group",
				zap.String("vendor_id", g.VendorID.String()),
			)
			continue
		}
		rankings = append(rankings, dashboard.VendorRanking{
			VendorID:     g.VendorID,
			Name:         u.DisplayName,
			BusinessName: u.BusinessName,
			Revenue:      g.Revenue,
			OrderCount:   g.OrderCount,
		})
	}

	sort.SliceStable(rankings, func(i, j int) bool {
		if cmp := rankings[i].Revenue.Cmp(rankings[j].Revenue); cmp != 0 {
			return cmp > 0
		}
		return bytes.Compare(rankings[i].VendorID[:], rankings[j].VendorID[:]) < 0
	})

	if len(rankings) > n {
		rankings = rankings[:n]
	}
	return rankings, nil
}

// JoinMisses returns the number of groups dropped so far because their
// vendor id did not resolve
func (a *RankingAggregator) JoinMisses() int64 {
	return a.joinMisses.Load()
}
