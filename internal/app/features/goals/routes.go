// internal/app/features/goals/routes.go
package goals

import (
	"github.com/go-chi/chi/v5"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/auth"
)

// Routes mounts the goal endpoints below a parent path such as
// /church/groups/{groupId}/goals.
func Routes(h *Handler, g *auth.Guard, read, write []string) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(g.Require(read...))
		pr.Get("/", h.List)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(g.Require(write...))
		pr.Post("/", h.Create)
		pr.Put("/{goalId}", h.Update)
		pr.Delete("/{goalId}", h.Delete)
	})

	return r
}
