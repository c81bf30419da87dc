package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/josh-w-mason/twitter-clone/internal/api/middleware"
	"github.com/josh-w-mason/twitter-clone/internal/core/feeds"
	"github.com/josh-w-mason/twitter-clone/internal/web"
)

// RegisterWebRoutes registers the feed pages and the tweet mutation endpoints.
// Every route runs inside the cookie session; mutations and the token hand-off
// are additionally rate limited.
func RegisterWebRoutes(r chi.Router, feedService feeds.Service, sessions *middleware.SessionManager, limiter *middleware.RateLimiter) {
	// Initialize templates
	templates, err := web.NewTemplates()
	if err != nil {
		panic("failed to load web templates: " + err.Error())
	}

	handlers := web.NewHandlers(templates, feedService, sessions)

	r.Group(func(r chi.Router) {
		r.Use(sessions.Middleware)

		// Feeds
		r.Get("/", handlers.HomeHandler)
		r.Get("/following", handlers.FollowingHandler)
		r.Get("/profiles/{authorID}", handlers.ProfileHandler)
		r.Get("/feeds/more", handlers.MoreHandler)

		// Mutations
		r.Group(func(r chi.Router) {
			r.Use(limiter.Middleware)

			r.Post("/tweets", handlers.CreateHandler)
			r.Post("/tweets/{id}/like", handlers.LikeHandler)
			r.Post("/tweets/{id}/delete", handlers.DeleteHandler)
			r.Post("/session", handlers.SessionHandler)
		})

		r.Post("/logout", handlers.LogoutHandler)
	})
}
