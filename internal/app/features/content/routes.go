// internal/app/features/content/routes.go
package content

import (
	"github.com/go-chi/chi/v5"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/auth"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/authz"
)

// Routes mounts /content.
func Routes(h *Handler, g *auth.Guard) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(g.Require(authz.Everyone...))
		pr.Get("/", h.List)
		pr.Get("/{contentId}", h.Show)
	})
	r.Group(func(pr chi.Router) {
		pr.Use(g.Require(authz.Staff...))
		pr.Post("/", h.Create)
	})
	return r
}
