package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	custommiddleware "github.com/mmeshcher/farm-payroll/internal/middleware"
)

// SetupRouter настраивает HTTP-маршруты и middleware сервиса учёта выплат.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(custommiddleware.GzipMiddleware)
	r.Use(chimw.RequestSize(custommiddleware.MaxBodyBytes))
	r.Use(custommiddleware.Logger(h.logger))

	r.Get("/healthz", h.Healthz)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(h.authMiddleware.Middleware)

		r.Post("/auth/sync", h.SyncUser)

		r.Group(func(r chi.Router) {
			r.Use(h.ActorMiddleware)

			r.Get("/me", h.withActor(h.Me))
			r.Put("/me/profile", h.withActor(h.UpdateProfile))

			r.Route("/games", func(r chi.Router) {
				r.Get("/", h.withActor(h.ListGames))
				r.Post("/", h.withActor(h.CreateGame))
				r.Put("/{id}", h.withActor(h.UpdateGame))
				r.Post("/{id}/archive", h.withActor(h.ArchiveGame))
			})

			r.Route("/earnings", func(r chi.Router) {
				r.Get("/", h.withActor(h.ListEarnings))
				r.Post("/", h.withActor(h.SubmitEarning))
				r.Post("/preview", h.withActor(h.PreviewEarning))
				r.Post("/{id}/approve", h.withActor(h.transition(h.service.ApproveEarning)))
				r.Post("/{id}/reject", h.withActor(h.transition(h.service.RejectEarning)))
				r.Post("/{id}/pay", h.withActor(h.transition(h.service.MarkEarningPaid)))
			})

			r.Route("/inventory", func(r chi.Router) {
				r.Get("/", h.withActor(h.ListInventoryNeeds))
				r.Post("/", h.withActor(h.RequestInventory))
				r.Post("/{id}/approve", h.withActor(h.transition(h.service.ApproveInventory)))
				r.Post("/{id}/fulfill", h.withActor(h.transition(h.service.FulfillInventory)))
				r.Post("/{id}/reject", h.withActor(h.transition(h.service.RejectInventory)))
			})

			r.Route("/users", func(r chi.Router) {
				r.Get("/", h.withActor(h.ListUsers))
				r.Post("/{id}/approve", h.withActor(h.ApproveUser))
				r.Put("/{id}/role", h.withActor(h.ChangeUserRole))
				r.Delete("/{id}", h.withActor(h.DeleteUser))
			})

			r.Get("/payroll", h.withActor(h.PayrollSummary))
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeErrorMessage(w, http.StatusNotFound, "not found")
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeErrorMessage(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}
