package main

import (
	"net/http"

	"github.com/cuddly-waffle/account-api/internal/api"
	apiMiddleware "github.com/cuddly-waffle/account-api/internal/api/middleware"
	"github.com/cuddly-waffle/account-api/internal/api/shared"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// setupRouter builds the HTTP routes and middleware chain.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))
	r.Use(middleware.Recoverer)
	r.Use(app.metrics.Instrument)

	accountHandler := api.NewAccountHandler(app.accountService, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)
	loginLimit := apiMiddleware.RateLimit(
		app.limiter,
		app.config.RateLimit.LoginPerMinute,
		loginWindow,
		apiMiddleware.KeyByIPAndEmail,
		app.metrics,
	)

	r.Route("/api/users", func(r chi.Router) {
		r.Get("/", accountHandler.ListAccounts)
		r.Post("/accounts", accountHandler.CreateAccount)
		r.With(loginLimit).Post("/login", accountHandler.Login)

		r.Get("/{id}/id", accountHandler.GetAccountByID)
		r.Patch("/{id}/id", accountHandler.UpdateAccount)
		r.Get("/{email}/email", accountHandler.GetAccountByEmail)
		r.Patch("/password/{id}/id", accountHandler.ChangePassword)

		r.With(authMiddleware.Authenticate).Get("/me", accountHandler.Me)
	})

	r.Get("/health", api.NewHealthHandler(app.pinger()).Health)
	r.Handle("/metrics", promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithError(w, r, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}

// pinger returns the database as a health check target, or nil.
func (app *application) pinger() api.Pinger {
	if app.db == nil {
		return nil
	}
	return app.db
}
