package apiapp

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yjw768/groupup/internal/transport/http/handlers"
)

type Dependencies struct {
	UserService    handlers.UserService
	SwipeService   handlers.SwipeService
	MatchService   handlers.MatchService
	MessageService handlers.MessageService
	MediaService   handlers.MediaService
	Postgres       handlers.Pinger
	Metrics        http.Handler
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler(deps.Postgres)
	usersHandler := handlers.NewUsersHandler(deps.UserService)
	swipeHandler := handlers.NewSwipeHandler(deps.SwipeService)
	matchesHandler := handlers.NewMatchesHandler(deps.MatchService)
	messagesHandler := handlers.NewMessagesHandler(deps.MessageService)
	mediaHandler := handlers.NewMediaHandler(deps.MediaService)

	r.Get("/health", healthHandler.Get)
	r.Get("/healthz", healthHandler.Ready)
	if deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/users", usersHandler.List)
		r.Post("/users", usersHandler.Create)
		r.Get("/users/{id}", usersHandler.Get)
		r.Post("/swipes", swipeHandler.Handle)
		r.Get("/matches/{user_id}", matchesHandler.Handle)
		r.Get("/matches/by-id/{match_id}", matchesHandler.Get)
		r.Post("/messages", messagesHandler.Send)
		r.Get("/messages/{match_id}", messagesHandler.List)
		r.Post("/media/presign", mediaHandler.Presign)
		r.Post("/media/upload", mediaHandler.Upload)
	})
}
