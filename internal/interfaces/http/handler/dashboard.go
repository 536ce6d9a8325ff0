package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/mpvestiario/backend/internal/application/dashboard"
	ledgerapp "github.com/mpvestiario/backend/internal/application/ledger"
)

// DashboardService builds the overview figures
type DashboardService interface {
	Get(ctx context.Context) (*dashboard.Response, error)
}

// DashboardHandler serves the home screen overview
type DashboardHandler struct {
	BaseHandler
	dashboard DashboardService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(svc DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: svc}
}

// Get returns totals, stock per type, top assigned articles and the monthly trend.
// GET /dashboard
func (h *DashboardHandler) Get(c *gin.Context) {
	resp, err := h.dashboard.Get(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ReconciliationRunner checks stock conservation on demand
type ReconciliationRunner interface {
	Run(ctx context.Context) (*ledgerapp.ReconciliationReport, error)
}

// ReconciliationHandler exposes the stock reconciliation check
type ReconciliationHandler struct {
	BaseHandler
	reconciler ReconciliationRunner
}

// NewReconciliationHandler creates a new ReconciliationHandler
func NewReconciliationHandler(reconciler ReconciliationRunner) *ReconciliationHandler {
	return &ReconciliationHandler{reconciler: reconciler}
}

// Run checks every article and reports drift. It never modifies data.
// GET /ledger/reconciliation
func (h *ReconciliationHandler) Run(c *gin.Context) {
	report, err := h.reconciler.Run(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}
