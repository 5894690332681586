package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"tigerengage-backend/internal/handlers"
	"tigerengage-backend/internal/middleware"
	"tigerengage-backend/internal/websocket"
)

func New(
	jwtAuth *middleware.JWTAuth,
	authHandler *handlers.AuthHandler,
	classHandler *handlers.ClassHandler,
	sessionHandler *handlers.SessionHandler,
	questionHandler *handlers.QuestionHandler,
	answerHandler *handlers.AnswerHandler,
	chatHandler *handlers.ChatHandler,
	wsHub *websocket.Hub,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Auth rate limiter (10 req/min per IP)
	authLimiter := middleware.NewRateLimiter(10, time.Minute)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Auth Routes (public) ────
		r.Route("/auth", func(r chi.Router) {
			r.Use(authLimiter.Middleware)
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)

			// Logout requires auth
			r.Group(func(r chi.Router) {
				r.Use(jwtAuth.Middleware)
				r.Post("/logout", authHandler.Logout)
			})
		})

		// ──── Class Routes ────
		r.Route("/classes", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Post("/", classHandler.Create)
			r.Get("/", classHandler.List)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", classHandler.Get)
				r.Post("/enroll", classHandler.Enroll)
				r.Get("/roster", classHandler.Roster)

				// Session lifecycle
				r.Post("/session/start", sessionHandler.Start)
				r.Post("/session/end", sessionHandler.End)
				r.Get("/session/status", sessionHandler.Status)
				r.Post("/checkin", sessionHandler.CheckIn)

				// Question lifecycle
				r.Post("/questions", questionHandler.Add)
				r.Get("/questions", questionHandler.List)
				r.Get("/questions/active", questionHandler.Active)
				r.Get("/questions/displayed", questionHandler.DisplayedQuestion)
				r.Post("/questions/{questionID}/ask", questionHandler.Ask)
				r.Post("/questions/{questionID}/display", questionHandler.Display)

				// Session-scoped chat
				r.Get("/messages", chatHandler.History)
				r.Post("/messages", chatHandler.Send)
			})
		})

		// ──── Question Routes ────
		r.Route("/questions", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Put("/{id}", questionHandler.Update)
			r.Delete("/{id}", questionHandler.Delete)
			r.Post("/{id}/answers", answerHandler.Submit)
			r.Get("/{id}/answers", answerHandler.List)
			r.Get("/{id}/feedback", answerHandler.Feedback)
		})

		// ──── Chat Message Routes ────
		r.Route("/messages", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Put("/{id}", chatHandler.Edit)
			r.Delete("/{id}", chatHandler.Delete)
		})

		// ──── WebSocket ────
		r.Get("/ws", wsHub.HandleWebSocket)
	})

	return r
}
