package handler

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	appdashboard "github.com/rentalhub/backend/internal/application/dashboard"
	"github.com/rentalhub/backend/internal/domain/dashboard"
	"github.com/rentalhub/backend/internal/domain/identity"
	"github.com/rentalhub/backend/internal/interfaces/http/dto"
	"github.com/rentalhub/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// DashboardHandler serves the role-scoped dashboard endpoints. Each
// route requires a token whose role matches the dashboard it asks for;
// the handler bounds the whole composition with the configured request
// deadline.
type DashboardHandler struct {
	BaseHandler
	service        *appdashboard.Service
	requestTimeout time.Duration
	logger         *zap.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(service *appdashboard.Service, requestTimeout time.Duration, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		service:        service,
		requestTimeout: requestTimeout,
		logger:         logger,
	}
}

// RegisterRoutes registers dashboard routes
func (h *DashboardHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/dashboard")
	{
		group.GET("/vendor", h.GetVendorDashboard)
		group.GET("/admin", h.GetAdminDashboard)
		group.GET("/customer", h.GetCustomerDashboard)
	}
}

// requireRole checks that the token role matches the requested
// dashboard and returns the caller's identity on success.
func (h *DashboardHandler) requireRole(c *gin.Context, want identity.Role) (callerID, tenantID string, ok bool) {
	role := middleware.GetJWTRole(c)
	if identity.Role(role) != want {
		h.Forbidden(c, "Token role does not grant access to this dashboard")
		return "", "", false
	}
	return middleware.GetJWTUserID(c), middleware.GetJWTTenantID(c), true
}

// GetVendorDashboard handles GET /api/v1/dashboard/vendor
func (h *DashboardHandler) GetVendorDashboard(c *gin.Context) {
	callerID, tenantID, ok := h.requireRole(c, identity.RoleVendor)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.requestTimeout)
	defer cancel()

	report, err := h.service.VendorDashboard(ctx, callerID, tenantID)
	if err != nil {
		h.handleDashboardError(c, err)
		return
	}
	h.Success(c, report)
}

// GetAdminDashboard handles GET /api/v1/dashboard/admin
func (h *DashboardHandler) GetAdminDashboard(c *gin.Context) {
	callerID, tenantID, ok := h.requireRole(c, identity.RoleAdmin)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.requestTimeout)
	defer cancel()

	report, err := h.service.AdminDashboard(ctx, callerID, tenantID)
	if err != nil {
		h.handleDashboardError(c, err)
		return
	}
	h.Success(c, report)
}

// GetCustomerDashboard handles GET /api/v1/dashboard/customer
func (h *DashboardHandler) GetCustomerDashboard(c *gin.Context) {
	callerID, _, ok := h.requireRole(c, identity.RoleCustomer)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.requestTimeout)
	defer cancel()

	report, err := h.service.CustomerDashboard(ctx, callerID)
	if err != nil {
		h.handleDashboardError(c, err)
		return
	}
	h.Success(c, report)
}

// handleDashboardError maps engine errors to HTTP responses. Query
// failures abort with 500 rather than degrading to zeroed reports.
func (h *DashboardHandler) handleDashboardError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, dashboard.ErrInvalidIdentity):
		h.ErrorWithCode(c, dto.ErrCodeInvalidIdentity, dashboard.ErrInvalidIdentity.Message)
	case errors.Is(err, dashboard.ErrTimeout):
		h.ErrorWithCode(c, dto.ErrCodeTimeout, dashboard.ErrTimeout.Message)
	default:
		var queryErr *dashboard.QueryError
		if errors.As(err, &queryErr) {
			h.logger.Error("dashboard query failed",
				zap.String("op", queryErr.Op),
				zap.Error(queryErr.Err))
			h.ErrorWithCode(c, dto.ErrCodeQueryFailure, "Dashboard computation failed")
			return
		}
		h.HandleDomainError(c, err)
	}
}
