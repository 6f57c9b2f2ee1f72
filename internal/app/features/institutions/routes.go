// internal/app/features/institutions/routes.go
package institutions

import "github.com/go-chi/chi/v5"

// Routes mounts all Institution routes under the base path
// (typically "/institutions" from bootstrap).
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	// Form helpers: no stored institution involved.
	r.Post("/curriculum/preview", h.HandlePreview)
	r.Post("/curriculum/edit", h.HandleEdit)

	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)

	r.Route("/{id}", func(ir chi.Router) {
		ir.Get("/", h.ServeView)
		ir.Patch("/", h.HandleUpdate)
		ir.Delete("/", h.HandleDelete)

		ir.Get("/curriculum", h.ServeCurriculum)
		ir.Put("/curriculum", h.HandleSaveCurriculum)
	})

	return r
}
