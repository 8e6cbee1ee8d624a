// internal/app/features/departments/routes.go
package departments

import (
	"github.com/go-chi/chi/v5"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/features/activities"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/features/goals"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/auth"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/authz"
)

// Routes mounts /church/departments.
func Routes(h *Handler, g *auth.Guard) chi.Router {
	r := chi.NewRouter()

	// departments
	r.Group(func(pr chi.Router) {
		pr.Use(g.Require(authz.MinistryLeads...))
		pr.Get("/", h.List)
		pr.Get("/{departmentId}", h.Show)
	})
	r.Group(func(pr chi.Router) {
		pr.Use(g.Require(authz.Staff...))
		pr.Post("/", h.Create)
		pr.Put("/{departmentId}", h.Update)
	})

	// expenses
	r.Route("/{departmentId}/expenses", func(er chi.Router) {
		er.Group(func(pr chi.Router) {
			pr.Use(g.Require(authz.MinistryLeads...))
			pr.Get("/", h.ListExpenses)
		})
		er.Group(func(pr chi.Router) {
			pr.Use(g.Require(authz.Staff...))
			pr.Post("/", h.CreateExpense)
			pr.Put("/{expenseId}", h.UpdateExpense)
			pr.Delete("/{expenseId}", h.DeleteExpense)
		})
	})

	// goals and activities
	r.Mount("/{departmentId}/goals", goals.Routes(h.goals, g, authz.MinistryLeads, authz.MinistryLeads))
	r.Mount("/{departmentId}/activities", activities.Routes(h.activities, g, authz.MinistryLeads, authz.MinistryLeads))

	return r
}
