package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/studytrack-api/internal/api"
	apiMiddleware "github.com/phrazzld/studytrack-api/internal/api/middleware"
)

// setupRouter creates the router with every route and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.Tracing)
	r.Use(apiMiddleware.TraceMiddleware(app.logger))
	r.Use(middleware.Recoverer)

	authHandler := api.NewAuthHandler(app.users, app.jwtService, app.config.Auth, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)
	sessionHandler := api.NewSessionHandler(app.sessions, app.reports, app.location, app.logger)
	catalogHandler := api.NewCatalogHandler(app.catalog, app.logger)
	goalHandler := api.NewGoalHandler(app.goals, app.logger)
	noteHandler := api.NewNoteHandler(app.notes, app.logger)
	healthHandler := api.NewHealthHandler(app.db, app.logger)

	r.Route("/api", func(r chi.Router) {
		// public
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.RefreshToken)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Route("/sessions", func(r chi.Router) {
				r.Get("/", sessionHandler.List)
				r.Post("/", sessionHandler.Start)
				// static segments before {id}
				r.Get("/calendario", sessionHandler.Calendar)
				r.Get("/dashboard", sessionHandler.Dashboard)
				r.Post("/pausas/{id}/retomar", sessionHandler.Resume)
				r.Get("/{id}", sessionHandler.Get)
				r.Delete("/{id}", sessionHandler.Delete)
				r.Post("/{id}/pausar", sessionHandler.Pause)
				r.Post("/{id}/finalizar", sessionHandler.Finish)
			})

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", catalogHandler.ListCategories)
				r.Post("/", catalogHandler.CreateCategory)
				r.Get("/{id}", catalogHandler.GetCategory)
				r.Put("/{id}", catalogHandler.UpdateCategory)
				r.Delete("/{id}", catalogHandler.DeleteCategory)
			})
			r.Route("/subjects", func(r chi.Router) {
				r.Get("/", catalogHandler.ListSubjects)
				r.Post("/", catalogHandler.CreateSubject)
				r.Get("/{id}", catalogHandler.GetSubject)
				r.Put("/{id}", catalogHandler.UpdateSubject)
				r.Delete("/{id}", catalogHandler.DeleteSubject)
			})
			r.Route("/topics", func(r chi.Router) {
				r.Get("/", catalogHandler.ListTopics)
				r.Post("/", catalogHandler.CreateTopic)
				r.Get("/{id}", catalogHandler.GetTopic)
				r.Put("/{id}", catalogHandler.UpdateTopic)
				r.Delete("/{id}", catalogHandler.DeleteTopic)
			})

			r.Route("/goals", func(r chi.Router) {
				r.Get("/", goalHandler.List)
				r.Post("/", goalHandler.Create)
				r.Get("/{id}", goalHandler.Get)
				r.Put("/{id}", goalHandler.Update)
				r.Delete("/{id}", goalHandler.Delete)
				r.Patch("/{id}/progress", goalHandler.UpdateProgress)
				r.Patch("/{id}/complete", goalHandler.Complete)
			})

			r.Route("/notes", func(r chi.Router) {
				r.Get("/", noteHandler.List)
				r.Post("/", noteHandler.Create)
				r.Get("/{id}", noteHandler.Get)
				r.Put("/{id}", noteHandler.Update)
				r.Delete("/{id}", noteHandler.Delete)
				r.Get("/{id}/history", noteHandler.History)
			})
		})
	})

	r.Get("/health", healthHandler.Check)

	return r
}
