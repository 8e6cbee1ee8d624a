// internal/app/features/activities/routes.go
package activities

import (
	"github.com/go-chi/chi/v5"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/auth"
)

// Routes mounts the activity endpoints below a parent path such as
// /church/branches/{branchId}/activities. read and write are the roles
// allowed to view and to change activities.
func Routes(h *Handler, g *auth.Guard, read, write []string) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(g.Require(read...))
		pr.Get("/", h.List)
		pr.Get("/{activityId}", h.Show)
		pr.Get("/{activityId}/attendance", h.ShowAttendance)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(g.Require(write...))
		pr.Post("/", h.Create)
		pr.Put("/{activityId}", h.Update)
		pr.Delete("/{activityId}", h.Delete)
		pr.Post("/{activityId}/attendance", h.SetAttendance)
		pr.Put("/{activityId}/attendance", h.UpsertAttendance)
	})

	return r
}
