// internal/app/features/dashboard/overview.go
package dashboard

import (
	"context"
	"net/http"
	"time"

	metricsstore "github.com/kmwangemi/church-management-system-v2-sub004/internal/app/store/metrics"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/authz"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/respond"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/timeouts"
)

type overviewData struct {
	Role        string                 `json:"role"`
	Scope       string                 `json:"scope"` // "church", "branch" or "personal"
	Counts      *metricsstore.Counts   `json:"counts,omitempty"`
	Personal    *metricsstore.Personal `json:"personal,omitempty"`
	GeneratedAt time.Time              `json:"generatedAt"`
}

// ServeOverview dispatches on role: staff get church (or branch) totals,
// leaders and members get their own involvement.
func (h *Handler) ServeOverview(w http.ResponseWriter, r *http.Request) {
	scope, err := authz.ScopeFrom(r)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	now := time.Now().UTC()
	out := overviewData{Role: scope.Role, GeneratedAt: now}
	switch {
	case scope.BranchRestricted():
		c := metricsstore.FetchChurchCounts(ctx, h.DB, metricsstore.Scope{ChurchID: scope.ChurchID, BranchID: scope.BranchID}, now)
		out.Scope, out.Counts = "branch", &c
	case scope.IsStaff():
		c := metricsstore.FetchChurchCounts(ctx, h.DB, metricsstore.Scope{ChurchID: scope.ChurchID}, now)
		out.Scope, out.Counts = "church", &c
	default:
		p := metricsstore.FetchPersonalCounts(ctx, h.DB, scope.ChurchID, scope.UserID, now)
		out.Scope, out.Personal = "personal", &p
	}
	respond.OKMessage(w, out, "Overview retrieved successfully")
}
