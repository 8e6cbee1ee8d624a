// internal/app/features/branches/routes.go
package branches

import (
	"github.com/go-chi/chi/v5"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/features/activities"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/auth"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/authz"
)

// Routes mounts /church/branches.
func Routes(h *Handler, g *auth.Guard) chi.Router {
	r := chi.NewRouter()

	// branches
	r.Group(func(pr chi.Router) {
		pr.Use(g.Require(authz.ChurchManagers...))
		pr.Post("/", h.Create)
		pr.Delete("/{branchId}", h.Delete)
	})
	r.Group(func(pr chi.Router) {
		pr.Use(g.Require(authz.Staff...))
		pr.Get("/", h.List)
		pr.Get("/{branchId}", h.Show)
		pr.Put("/{branchId}", h.Update)
	})

	// service schedules
	r.Route("/{branchId}/service-schedules", func(sr chi.Router) {
		sr.Group(func(pr chi.Router) {
			pr.Use(g.Require(authz.Everyone...))
			pr.Get("/", h.ListSchedules)
			pr.Get("/{scheduleId}", h.ShowSchedule)
		})
		sr.Group(func(pr chi.Router) {
			pr.Use(g.Require(authz.Staff...))
			pr.Post("/", h.CreateSchedule)
			pr.Put("/{scheduleId}", h.UpdateSchedule)
			pr.Delete("/{scheduleId}", h.DeleteSchedule)
		})
	})

	// activities
	r.Mount("/{branchId}/activities", activities.Routes(h.activities, g, authz.Everyone, authz.MinistryLeads))

	return r
}
