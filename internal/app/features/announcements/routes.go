// internal/app/features/announcements/routes.go
package announcements

import (
	"github.com/go-chi/chi/v5"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/auth"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/authz"
)

// Routes mounts /church/announcements. Updates and deletes address the
// record with ?id=.
func Routes(h *Handler, g *auth.Guard) chi.Router {
	r := chi.NewRouter()

	r.With(g.Require(authz.Everyone...)).Get("/", h.List)

	r.Group(func(pr chi.Router) {
		pr.Use(g.Require(authz.Staff...))
		pr.Post("/", h.Create)
		pr.Put("/", h.Update)
		pr.Delete("/", h.Delete)
	})

	return r
}
