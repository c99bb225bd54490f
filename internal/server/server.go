// Package server wires handlers, middleware, and routes together, and owns
// the process lifecycle. All dependencies are assembled in New — the
// composition root — so nothing else in the codebase constructs its own
// storage or services.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sakif/memeforge/internal/appstate"
	"github.com/sakif/memeforge/internal/auth"
	"github.com/sakif/memeforge/internal/blob"
	"github.com/sakif/memeforge/internal/caption"
	"github.com/sakif/memeforge/internal/handler"
	"github.com/sakif/memeforge/internal/middleware"
	sqliteRepo "github.com/sakif/memeforge/internal/repository/sqlite"
	"github.com/sakif/memeforge/internal/service"
	"github.com/sakif/memeforge/internal/template"
)

// Config holds everything the server needs to start. main.go fills it from
// the environment.
type Config struct {
	Port         int
	DBPath       string // real accounts' meme store
	DemoDBPath   string // demo mode's isolated meme store
	BlobDir      string // oversized rendered images
	AppStatePath string // theme, demo identity, favorites

	JWTSecret string

	GeminiAPIKey string
	GeminiModel  string

	TemplateAPIURL string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleCallbackURL  string

	AllowedOrigins []string
}

// Server owns the router and every resource that needs closing on
// shutdown: both sqlite stores and the app state file.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
	demoDB *sqliteRepo.DB
	state  *appstate.Store
}

// New assembles the full dependency chain: stores first, then services,
// then handlers, then routes. Each layer only receives the interfaces it
// needs.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	demoDB, err := sqliteRepo.New(cfg.DemoDBPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("opening demo database: %w", err)
	}

	state, err := appstate.Open(cfg.AppStatePath)
	if err != nil {
		db.Close()
		demoDB.Close()
		return nil, fmt.Errorf("opening app state: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
		demoDB: demoDB,
		state:  state,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		demoDB.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures middleware and all route handlers.
//
// ROUTE STRUCTURE:
//
//	GET    /auth/google/login          → redirect to Google
//	GET    /auth/google/callback       → complete OAuth, set session cookie
//	POST   /auth/demo                  → start a demo session
//	POST   /auth/logout                → clear the session
//	GET    /api/me                     → current identity            [auth]
//	GET    /api/templates              → template catalog
//	GET    /api/templates/{id}         → one template
//	GET    /api/templates/{id}/slots   → initial overlay layout
//	POST   /api/captions/generate      → AI captions (with fallback)
//	GET    /api/captions/suggestions   → caption ideas per template
//	POST   /api/captions/improve       → improve user-written text
//	POST   /api/render                 → composite a finished PNG
//	GET    /api/memes                  → list saved memes            [auth]
//	POST   /api/memes                  → save a meme                 [auth]
//	DELETE /api/memes/{id}             → delete an owned meme        [auth]
//	POST   /api/memes/{id}/view        → bump view counter           [auth]
//	POST   /api/memes/{id}/share       → bump share counter          [auth]
//	GET    /api/profile/theme          → current theme
//	PUT    /api/profile/theme          → set theme
//	GET    /api/profile/favorites      → favorite template ids       [auth]
//	PUT    /api/profile/favorites/{templateID}    → add              [auth]
//	DELETE /api/profile/favorites/{templateID}    → remove           [auth]
func (s *Server) setupRoutes() error {
	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return err
	}

	blobs, err := blob.NewStore(s.config.BlobDir)
	if err != nil {
		return fmt.Errorf("creating blob store: %w", err)
	}

	// Middleware order matters: request id and IP resolution first, then
	// panic recovery, then logging, then CORS.
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.config.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	templates := template.NewSource(s.config.TemplateAPIURL, s.logger)
	captions := caption.NewGenerator(s.config.GeminiAPIKey, s.config.GeminiModel, s.logger)
	memes := service.NewMemeService(s.db, s.demoDB, blobs, s.logger)
	google := auth.NewGoogleProvider(
		s.config.GoogleClientID,
		s.config.GoogleClientSecret,
		s.config.GoogleCallbackURL,
	)

	templateHandler := handler.NewTemplateHandler(templates, s.logger)
	captionHandler := handler.NewCaptionHandler(captions, s.logger)
	renderHandler := handler.NewRenderHandler(templates, s.logger)
	memeHandler := handler.NewMemeHandler(memes, s.logger)
	profileHandler := handler.NewProfileHandler(s.state, s.logger)
	authHandler := handler.NewAuthHandler(google, tokens, s.db, s.state, s.logger)

	s.router.Route("/auth", func(r chi.Router) {
		r.Get("/google/login", authHandler.HandleGoogleLogin)
		r.Get("/google/callback", authHandler.HandleGoogleCallback)
		r.Post("/demo", authHandler.HandleDemoLogin)
		// Logout needs the identity (if any) to know whether to clear the
		// stored demo session, but must work even with a dead token.
		r.With(auth.OptionalAuth(tokens)).Post("/logout", authHandler.HandleLogout)
	})

	s.router.Route("/api", func(r chi.Router) {
		// Public routes: browsing and editing don't require an account.
		r.Get("/templates", templateHandler.HandleList)
		r.Get("/templates/{id}", templateHandler.HandleGet)
		r.Get("/templates/{id}/slots", templateHandler.HandleSlots)

		r.Post("/captions/generate", captionHandler.HandleGenerate)
		r.Get("/captions/suggestions", captionHandler.HandleSuggestions)
		r.Post("/captions/improve", captionHandler.HandleImprove)

		r.Post("/render", renderHandler.HandleRender)

		r.Get("/profile/theme", profileHandler.HandleGetTheme)
		r.Put("/profile/theme", profileHandler.HandleSetTheme)

		// Protected routes: saving, listing, and preferences are per-user.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))

			r.Get("/me", authHandler.HandleMe)

			r.Get("/memes", memeHandler.HandleList)
			r.Post("/memes", memeHandler.HandleCreate)
			r.Delete("/memes/{id}", memeHandler.HandleDelete)
			r.Post("/memes/{id}/view", memeHandler.HandleView)
			r.Post("/memes/{id}/share", memeHandler.HandleShare)

			r.Get("/profile/favorites", profileHandler.HandleListFavorites)
			r.Put("/profile/favorites/{templateID}", profileHandler.HandleAddFavorite)
			r.Delete("/profile/favorites/{templateID}", profileHandler.HandleRemoveFavorite)
		})
	})

	return nil
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, drain in-flight requests, close
// both databases.
func (s *Server) Start() error {
	defer s.db.Close()
	defer s.demoDB.Close()
	defer s.state.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second, // rendering can take a moment
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
