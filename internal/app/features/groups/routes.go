// internal/app/features/groups/routes.go
package groups

import (
	"github.com/go-chi/chi/v5"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/features/activities"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/features/goals"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/auth"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/authz"
)

// Routes mounts /church/groups. Members and leaders only reach the groups
// they belong to or lead.
func Routes(h *Handler, g *auth.Guard) chi.Router {
	r := chi.NewRouter()

	// groups
	r.Group(func(pr chi.Router) {
		pr.Use(g.Require(authz.Everyone...))
		pr.Get("/", h.List)
		pr.Get("/{groupId}", h.Show)
	})
	r.Group(func(pr chi.Router) {
		pr.Use(g.Require(authz.Staff...))
		pr.Post("/", h.Create)
		pr.Put("/{groupId}", h.Update)
	})

	// members
	r.Group(func(pr chi.Router) {
		pr.Use(g.Require(authz.MinistryLeads...))
		pr.Post("/{groupId}/members", h.AddMember)
		pr.Delete("/{groupId}/members/{userId}", h.RemoveMember)
	})

	// goals and activities
	r.Mount("/{groupId}/goals", goals.Routes(h.goals, g, authz.Everyone, authz.MinistryLeads))
	r.Mount("/{groupId}/activities", activities.Routes(h.activities, g, authz.Everyone, authz.MinistryLeads))

	// reports
	r.Route("/{groupId}/reports", func(rr chi.Router) {
		rr.Use(g.Require(authz.MinistryLeads...))
		rr.Get("/activities", h.activities.Report)
		rr.Get("/goals", h.goals.Report)
	})

	return r
}
