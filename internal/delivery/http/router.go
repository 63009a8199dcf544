package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"posteventcalendar/internal/delivery/http/controllers"
	"posteventcalendar/internal/delivery/http/middleware"
	"posteventcalendar/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes.
func NewRouter(eventController *controllers.EventController, authController *controllers.AuthController, verifier domain.TokenVerifier) *http.ServeMux {
	mux := http.NewServeMux()
	requireAuth := middleware.RequireAuth(verifier)

	// Auth
	mux.HandleFunc("POST /auth/signup", authController.SignUp)
	mux.HandleFunc("POST /auth/login", authController.Login)

	// Events
	mux.HandleFunc("PUT /posts/{postID}/event", requireAuth(eventController.RefreshEvent))
	mux.HandleFunc("GET /events/{eventID}/attendees", requireAuth(eventController.GetAttendees))
	mux.HandleFunc("PUT /events/{eventID}/attendance", requireAuth(eventController.UpdateAttendance))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
