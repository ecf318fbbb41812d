package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/FACorreiaa/go-trip-planner/internal/api/auth"
	"github.com/FACorreiaa/go-trip-planner/internal/api/itinerary"
	"github.com/FACorreiaa/go-trip-planner/internal/api/plan"
	"github.com/FACorreiaa/go-trip-planner/internal/api/resolve"
)

// Config contains dependencies needed for the router setup
type Config struct {
	AuthHandler            *auth.AuthHandler
	PlanHandler            *plan.Handler
	ItineraryHandler       *itinerary.Handler
	ResolveHandler         *resolve.Handler
	AuthenticateMiddleware func(http.Handler) http.Handler
}

// SetupRouter initializes and configures the main application router.
// Server-wide middleware (like logger, requestID, recoverer) are expected
// to be applied *before* mounting this router in main.go.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// --- Public Auth Routes ---
		r.Group(func(r chi.Router) {
			r.Post("/auth/register", cfg.AuthHandler.Register)
			r.Post("/auth/login", cfg.AuthHandler.Login)
			r.Post("/auth/refresh", cfg.AuthHandler.RefreshSession)
		})

		// --- Protected Routes ---
		r.Group(func(r chi.Router) {
			r.Use(cfg.AuthenticateMiddleware)

			r.Post("/auth/logout", cfg.AuthHandler.Logout)
			r.Post("/auth/change-password", cfg.AuthHandler.ChangePassword)

			r.Route("/plans", func(r chi.Router) {
				r.Post("/", cfg.PlanHandler.CreatePlan)
				r.Post("/join", cfg.PlanHandler.JoinPlan)
				r.Route("/{planID}", func(r chi.Router) {
					r.Get("/", cfg.PlanHandler.GetPlan)
					r.Delete("/", cfg.PlanHandler.DeletePlan)
					r.Get("/preferences", cfg.PlanHandler.ListPreferences)
					r.Put("/preferences", cfg.PlanHandler.UpsertPreferences)
					r.Post("/itinerary", cfg.ItineraryHandler.GenerateItinerary)
					r.Get("/itinerary", cfg.ItineraryHandler.GetItinerary)
				})
			})

			r.Route("/resolve", func(r chi.Router) {
				r.Post("/geocode", cfg.ResolveHandler.Geocode)
				r.Post("/geocode/batch", cfg.ResolveHandler.GeocodeBatch)
				r.Get("/photo", cfg.ResolveHandler.PlacePhoto)
			})
		})
	})

	return r
}
