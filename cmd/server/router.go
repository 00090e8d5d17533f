package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/Wilcolab/Anythink-Market-fnscfx3q/internal/api"
	apimiddleware "github.com/Wilcolab/Anythink-Market-fnscfx3q/internal/api/middleware"
)

// setupRouter configures the router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(apimiddleware.TraceMiddleware)

	userHandler := api.NewUserHandler(app.userService, app.jwtService, app.logger)
	profileHandler := api.NewProfileHandler(app.userService)
	itemHandler := api.NewItemHandler(app.itemService)
	commentHandler := api.NewCommentHandler(app.commentService)
	authMiddleware := apimiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		// Public endpoints
		r.Post("/users", userHandler.Register)
		r.Post("/users/login", userHandler.Login)
		r.Get("/tags", itemHandler.Tags)

		// Read endpoints that project viewer-dependent fields when a
		// token is presented
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Optional)
			r.Get("/profiles/{username}", profileHandler.Get)
			r.Get("/items", itemHandler.List)
			r.Get("/items/{slug}", itemHandler.Get)
			r.Get("/items/{slug}/comments", commentHandler.List)
		})

		// Protected endpoints
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/user", userHandler.Current)
			r.Put("/user", userHandler.Update)

			r.Post("/profiles/{username}/follow", profileHandler.Follow)
			r.Delete("/profiles/{username}/follow", profileHandler.Unfollow)

			r.Get("/items/feed", itemHandler.Feed)
			r.Post("/items", itemHandler.Create)
			r.Put("/items/{slug}", itemHandler.Update)
			r.Delete("/items/{slug}", itemHandler.Delete)

			r.Post("/items/{slug}/favorite", itemHandler.Favorite)
			r.Delete("/items/{slug}/favorite", itemHandler.Unfavorite)

			r.Post("/items/{slug}/comments", commentHandler.Add)
			r.Delete("/items/{slug}/comments/{id}", commentHandler.Delete)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
