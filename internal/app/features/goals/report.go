// internal/app/features/goals/report.go
package goals

import (
	"context"
	"net/http"

	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/authz"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/inputval"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/respond"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/timeouts"
	domain "github.com/kmwangemi/church-management-system-v2-sub004/internal/domain/goals"
)

const (
	defaultTimelineDays = 30
	maxTimelineDays     = 365
)

// Report serves GET .../reports/goals?includeCompleted&priority&status&assignedTo&dueSoon&timelineDays.
// Every section is computed from the same filtered snapshot.
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	scope, err := authz.ScopeFrom(r)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	f, err := parseFilter(r)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	days, err := inputval.Int(r, "timelineDays", defaultTimelineDays, 1, maxTimelineDays)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, err := h.Parent(ctx, r, scope)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	now := h.now()
	respond.OK(w, domain.BuildReport(f.Apply(p.Goals, now), now, days))
}
