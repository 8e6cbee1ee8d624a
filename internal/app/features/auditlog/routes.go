// internal/app/features/auditlog/routes.go
package auditlog

import (
	"github.com/go-chi/chi/v5"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/auth"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/authz"
)

// Routes mounts the audit trail (typically at "/church/audit-events").
//
// Access is restricted to church managers. Every query is pinned to the
// caller's church.
func Routes(h *Handler, g *auth.Guard) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(g.Require(authz.ChurchManagers...))

		pr.Get("/", h.List)
		pr.Get("/event-types", h.EventTypes)
	})

	return r
}
