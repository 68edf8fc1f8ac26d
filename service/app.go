package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inkpost/app/auth"
	"inkpost/app/config"
	"inkpost/app/notify"
	"inkpost/app/repositories"
	"inkpost/app/routes"
	"inkpost/app/services"

	"github.com/sirupsen/logrus"
)

// App is a fully wired server: store, notification hub and HTTP handler.
type App struct {
	Store   *repositories.Store
	Hub     *notify.Hub
	Handler http.Handler
}

// NewApp opens the store and wires every service behind the router.
func NewApp(cfg *config.Config, log *logrus.Logger) (*App, error) {
	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return nil, err
	}

	store, err := repositories.Open(repositories.StoreOptions{
		Path:     cfg.DataDir,
		InMemory: cfg.InMemory,
		Logger:   log,
	})
	if err != nil {
		return nil, err
	}

	hub := notify.NewHub(log.WithField("component", "hub"), 0)
	router := routes.New(routes.Dependencies{
		Auth:       services.NewAuthService(store.Users, tokens, auth.NewHasher(cfg.BcryptCost), cfg.StoreTimeout),
		Categories: services.NewCategoryService(store.Categories, cfg.StoreTimeout),
		Posts: services.NewPostService(store.Posts, store.Users, store.Categories, hub, log, services.PostServiceConfig{
			Timeout:      cfg.StoreTimeout,
			DefaultLimit: cfg.DefaultPageSize,
			MaxLimit:     cfg.MaxPageSize,
		}),
		Tokens:         tokens,
		Hub:            hub,
		AllowedOrigins: cfg.AllowedOrigins,
		Log:            log,
	})

	return &App{Store: store, Hub: hub, Handler: router}, nil
}

// Close disconnects every viewer and closes the store.
func (a *App) Close() error {
	a.Hub.Close()
	return a.Store.Close()
}

// RunAppServer serves the API on ln until ctx is cancelled, then drains
// in-flight requests for at most cfg.ShutdownTimeout.
func RunAppServer(ctx context.Context, cfg *config.Config, log *logrus.Logger, ln net.Listener) error {
	app, err := NewApp(cfg, log)
	if err != nil {
		ln.Close()
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.WithError(err).Error("Failed to close store")
		}
	}()

	srv := &http.Server{
		Handler:           app.Handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.WithField("addr", ln.Addr().String()).Info("Starting inkpost API server")
		serveErr <- srv.Serve(ln)
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	log.Info("Server stopped")
	return nil
}

// serve validates the configuration and runs the server until SIGINT or
// SIGTERM.
func serve(cfg *config.Config) int {
	if err := cfg.Validate(); err != nil {
		fmt.Printf("Invalid configuration:\n%v\n", err)
		return 1
	}
	log, err := cfg.NewLogger()
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		return 1
	}

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		log.WithError(err).Error("Failed to listen")
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := RunAppServer(ctx, cfg, log, ln); err != nil {
		log.WithError(err).Error("Server error")
		return 1
	}
	return 0
}
