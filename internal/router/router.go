package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"

	rh "github.com/senseihimanshu/blood-donation/internal/handler/rest"
	wsh "github.com/senseihimanshu/blood-donation/internal/handler/ws"
	"github.com/senseihimanshu/blood-donation/internal/middleware"
)

func SetupRoutes(
	r chi.Router,
	authHandler *rh.AuthHandler,
	donorHandler *rh.DonorHandler,
	hospitalHandler *rh.HospitalHandler,
	requestHandler *rh.RequestHandler,
	wsHandler *wsh.WSHandler,
	auth *middleware.AuthMiddleware,
	rdb *redis.Client,
) chi.Router {

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Global rate limiting
	r.Use(middleware.RateLimiter(rdb, 100, 15*time.Minute, 10*time.Minute, "global"))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Blood donation service is running"))
	})

	r.Route("/api", func(api chi.Router) {

		// ---------- Public ----------
		api.Route("/auth", func(ar chi.Router) {
			ar.Post("/register/donor", authHandler.RegisterDonor)
			ar.Post("/register/hospital", authHandler.RegisterHospital)
			ar.Post("/login/donor", authHandler.LoginDonor)
			ar.Post("/login/hospital", authHandler.LoginHospital)

			ar.Group(func(pr chi.Router) {
				pr.Use(auth.Require)
				pr.Get("/me", authHandler.Me)
			})
		})

		api.Get("/hospitals/list", hospitalHandler.List)
		api.Get("/requests/emergency", requestHandler.ListEmergency)

		// ---------- Authenticated ----------
		api.Group(func(pr chi.Router) {
			pr.Use(auth.Require)

			pr.Route("/donors", func(dr chi.Router) {
				dr.Get("/profile", donorHandler.GetProfile)
				dr.Put("/profile", donorHandler.UpdateProfile)
				dr.Patch("/availability-toggle", donorHandler.ToggleAvailability)
				dr.Patch("/emergency-toggle", donorHandler.ToggleEmergencyEligible)
				dr.Patch("/max-distance", donorHandler.SetMaxDistance)
			})

			pr.Route("/hospitals", func(hr chi.Router) {
				hr.Get("/profile", hospitalHandler.GetProfile)
				hr.Put("/profile", hospitalHandler.UpdateProfile)
			})

			pr.Route("/requests", func(rr chi.Router) {
				rr.Post("/", requestHandler.Create)
				rr.Get("/hospital", requestHandler.ListForHospital)
				rr.Get("/donor", requestHandler.ListForDonor)
				rr.Patch("/{id}/respond", requestHandler.Respond)
				rr.Patch("/{id}/donated/{donorID}", requestHandler.MarkDonated)
			})

			pr.Get("/ws", wsHandler.HandleNotifications)
		})
	})

	return r
}
