package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"churchsite/internal/delivery/http/controllers"
	"churchsite/internal/delivery/http/middleware"
	"churchsite/internal/domain"
)

// Controllers groups the handlers the router dispatches to.
type Controllers struct {
	Health        *controllers.HealthController
	Auth          *controllers.AuthController
	Events        *controllers.EventController
	Registrations *controllers.RegistrationController
	Attendance    *controllers.AttendanceController
	Content       *controllers.ContentController
}

// NewRouter initializes the HTTP router with all application routes.
// limiter throttles the public write endpoints; verifier checks admin tokens.
func NewRouter(c Controllers, verifier domain.TokenVerifier, limiter *middleware.RateLimiter, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	admin := middleware.RequireAdmin(verifier, logger)
	optional := middleware.OptionalAdmin(verifier, logger)

	mux.HandleFunc("GET /healthz", c.Health.Health)

	// Auth
	mux.HandleFunc("POST /auth/login", limiter.Limit(c.Auth.Login))
	mux.HandleFunc("GET /auth/me", admin(c.Auth.Me))

	// Events
	mux.HandleFunc("GET /events", optional(c.Events.ListEvents))
	mux.HandleFunc("GET /events/{eventID}", optional(c.Events.GetEvent))
	mux.HandleFunc("POST /events", admin(c.Events.CreateEvent))
	mux.HandleFunc("PUT /events", admin(c.Events.UpdateEvent))
	mux.HandleFunc("DELETE /events", admin(c.Events.DeleteEvent))

	// Registrations
	mux.HandleFunc("POST /events/register", limiter.Limit(c.Registrations.Submit))
	mux.HandleFunc("GET /events/register", admin(c.Registrations.List))
	mux.HandleFunc("PUT /events/register", admin(c.Registrations.UpdateStatus))
	mux.HandleFunc("GET /events/register/export", admin(c.Registrations.Export))

	// Attendance
	mux.HandleFunc("GET /attendance", admin(c.Attendance.List))
	mux.HandleFunc("GET /attendance/summary", admin(c.Attendance.Summary))
	mux.HandleFunc("GET /attendance/export", admin(c.Attendance.Export))
	mux.HandleFunc("POST /attendance", admin(c.Attendance.Create))
	mux.HandleFunc("PUT /attendance", admin(c.Attendance.Update))
	mux.HandleFunc("DELETE /attendance", admin(c.Attendance.Delete))

	// Pastors and gallery
	mux.HandleFunc("GET /pastors", optional(c.Content.ListPastors))
	mux.HandleFunc("POST /pastors", admin(c.Content.CreatePastor))
	mux.HandleFunc("PUT /pastors", admin(c.Content.UpdatePastor))
	mux.HandleFunc("DELETE /pastors", admin(c.Content.DeletePastor))
	mux.HandleFunc("GET /gallery", optional(c.Content.ListGallery))
	mux.HandleFunc("POST /gallery", admin(c.Content.CreateGalleryImage))
	mux.HandleFunc("PUT /gallery", admin(c.Content.UpdateGalleryImage))
	mux.HandleFunc("DELETE /gallery", admin(c.Content.DeleteGalleryImage))

	// Blog
	mux.HandleFunc("GET /posts", c.Content.ListPosts)
	mux.HandleFunc("GET /posts/{slug}", c.Content.GetPost)
	mux.HandleFunc("GET /admin/posts", admin(c.Content.ListAllPosts))
	mux.HandleFunc("POST /posts", admin(c.Content.CreatePost))
	mux.HandleFunc("PUT /posts", admin(c.Content.UpdatePost))
	mux.HandleFunc("DELETE /posts", admin(c.Content.DeletePost))

	// Newsletter
	mux.HandleFunc("POST /subscriptions", limiter.Limit(c.Content.Subscribe))
	mux.HandleFunc("DELETE /subscriptions", limiter.Limit(c.Content.Unsubscribe))
	mux.HandleFunc("GET /subscriptions", admin(c.Content.ListSubscriptions))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
