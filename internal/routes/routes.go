package routes

import (
	"net/http"
	"strings"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/sahil06012005/globe-trotter-match/internal/config"
	"github.com/sahil06012005/globe-trotter-match/internal/handlers"
	"github.com/sahil06012005/globe-trotter-match/internal/middleware"
)

// Handlers bundles every handler the router needs
type Handlers struct {
	Auth           *handlers.AuthHandler
	GoogleAuth     *handlers.GoogleAuthHandler
	ForgotPassword *handlers.ForgotPasswordHandler
	Trips          *handlers.TripsHandler
	Requests       *handlers.RequestsHandler
	Messages       *handlers.MessagesHandler
	Profiles       *handlers.ProfileHandler
	Notifications  *handlers.NotificationsHandler
	Uploads        *handlers.UploadsHandler
	Health         *handlers.HealthHandler
	Websocket      *handlers.WebsocketHandler
}

// SetupRoutes configures all application routes on the default mux
func SetupRoutes(h Handlers, cfg *config.Config, limiter *middleware.RateLimiter) {
	jwt := &cfg.JWT
	auth := func(next http.HandlerFunc) http.HandlerFunc {
		return middleware.AuthMiddleware(next, jwt)
	}

	// Health check routes
	http.HandleFunc("/healthz", h.Health.HealthCheck)
	http.HandleFunc("/livez", h.Health.LivenessCheck)
	http.HandleFunc("/readyz", h.Health.ReadinessCheck)

	// Authentication routes
	http.HandleFunc("/api/auth/register", limiter.Limit(h.Auth.Register))
	http.HandleFunc("/api/auth/login", limiter.Limit(h.Auth.Login))
	http.HandleFunc("/api/auth/me", auth(h.Auth.Me))
	http.HandleFunc("/api/auth/google/login", h.GoogleAuth.GoogleLogin)
	http.HandleFunc("/api/auth/google/callback", h.GoogleAuth.GoogleCallback)
	http.HandleFunc("/api/auth/forgot-password", limiter.Limit(h.ForgotPassword.ForgotPassword))
	http.HandleFunc("/api/auth/verify-otp", limiter.Limit(h.ForgotPassword.VerifyOTP))
	http.HandleFunc("/api/auth/reset-password", limiter.Limit(h.ForgotPassword.ResetPassword))

	// Trip routes. /api/trips/{id} subpaths carry requests and image
	// uploads, dispatched here because the default mux has no path params.
	http.HandleFunc("/api/trips", func(w http.ResponseWriter, r *http.Request) {
		// Browsing trips is public; creating one requires auth
		if r.Method == http.MethodGet {
			h.Trips.ListTrips(w, r)
			return
		}
		auth(h.Trips.Trips)(w, r)
	})
	http.HandleFunc("/api/trips/", func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/requests"):
			auth(h.Requests.TripRequests)(w, r)
		case strings.HasSuffix(r.URL.Path, "/image"):
			auth(h.Uploads.TripImage)(w, r)
		case r.Method == http.MethodGet:
			// Trip detail is public
			h.Trips.TripDetail(w, r)
		default:
			auth(h.Trips.Trips)(w, r)
		}
	})

	// Join request routes
	http.HandleFunc("/api/requests", auth(h.Requests.ListMine))
	http.HandleFunc("/api/requests/", auth(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/approve"):
			h.Requests.Approve(w, r)
		case strings.HasSuffix(r.URL.Path, "/reject"):
			h.Requests.Reject(w, r)
		default:
			http.NotFound(w, r)
		}
	}))

	// Messaging routes
	http.HandleFunc("/api/conversations", auth(h.Messages.Conversations))
	http.HandleFunc("/api/messages", auth(h.Messages.Send))
	http.HandleFunc("/api/messages/", auth(h.Messages.History))

	// Profile routes
	http.HandleFunc("/api/profiles/me", auth(h.Profiles.Profiles))
	http.HandleFunc("/api/profiles/me/avatar", auth(h.Uploads.Avatar))
	http.HandleFunc("/api/profiles/", h.Profiles.Profiles)

	// Notification routes
	http.HandleFunc("/api/notifications", auth(h.Notifications.ListNotifications))
	http.HandleFunc("/api/notifications/read-all", auth(h.Notifications.MarkAllRead))
	http.HandleFunc("/api/notifications/", auth(h.Notifications.MarkRead))

	// Realtime push
	http.HandleFunc("/ws", h.Websocket.Serve)

	// Static upload serving
	http.Handle("/uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.Storage.Dir))))

	// Swagger UI
	http.Handle("/swagger/", httpSwagger.WrapHandler)

	// Root route
	http.HandleFunc("/", rootHandler)
}

func rootHandler(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("TripLink backend is running."))
}
