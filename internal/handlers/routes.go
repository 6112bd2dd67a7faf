package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers groups everything the router mounts
type Handlers struct {
	Middleware   *Middleware
	Auth         *AuthHandler
	Families     *FamilyHandler
	Trees        *TreeHandler
	JoinRequests *JoinRequestHandler
	Admin        *AdminHandler
	Health       *HealthHandler
	Metrics      http.Handler
}

// Routes builds the application router
func Routes(h Handlers) chi.Router {
	r := chi.NewRouter()
	r.Use(h.Middleware.Logging)

	r.Get("/health", h.Health.Serve)
	metrics := h.Metrics
	if metrics == nil {
		metrics = promhttp.Handler()
	}
	r.Handle("/metrics", metrics)

	r.Route("/api", func(api chi.Router) {
		api.Group(func(pub chi.Router) {
			pub.Use(h.Middleware.RateLimit)
			pub.Post("/auth/register", h.Auth.Register)
			pub.Post("/auth/login", h.Auth.Login)
		})

		api.Group(func(pr chi.Router) {
			pr.Use(h.Middleware.RequireAuth)

			pr.Get("/me", h.Auth.Me)
			pr.Get("/families", h.Families.ListFamilies)
			pr.Post("/families", h.Families.CreateFamily)

			pr.Route("/admin", func(ar chi.Router) {
				ar.Use(h.Admin.RequireAdmin)
				ar.Get("/stats", h.Admin.Stats)
				ar.Get("/backup", h.Admin.ExportDatabase)
				ar.Post("/backup", h.Admin.ImportDatabase)
			})

			pr.Route("/families/{familyID}", func(fr chi.Router) {
				fr.Get("/", h.Families.GetFamily)
				fr.Get("/tree", h.Trees.GetTree)

				fr.Get("/members", h.Families.ListMembers)
				fr.Post("/members", h.Families.AddMember)
				fr.Patch("/members/{memberID}/status", h.Families.UpdateMemberStatus)

				fr.Get("/relationships", h.Families.ListRelationships)
				fr.Post("/relationships", h.Families.CreateRelationship)
				fr.Delete("/relationships/{relationshipID}", h.Families.DeleteRelationship)

				fr.Post("/join-requests", h.JoinRequests.RequestToJoin)
				fr.Get("/join-requests", h.JoinRequests.ListPending)
				fr.Post("/join-requests/{requestID}/approve", h.JoinRequests.Approve)
				fr.Post("/join-requests/{requestID}/reject", h.JoinRequests.Reject)
			})
		})
	})

	return r
}
