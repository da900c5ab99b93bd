// FilePath: internal/server/server.go
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Gibsonzwenyika/iot-dashboard/api"
	"github.com/Gibsonzwenyika/iot-dashboard/internal/auth"
	"github.com/Gibsonzwenyika/iot-dashboard/internal/config"
	"github.com/Gibsonzwenyika/iot-dashboard/internal/database"
	"github.com/Gibsonzwenyika/iot-dashboard/internal/relay"
	"github.com/Gibsonzwenyika/iot-dashboard/internal/repository/postgres"
	"github.com/Gibsonzwenyika/iot-dashboard/internal/state"
	"github.com/gorilla/handlers"
	nuts "github.com/vaudience/go-nuts"
)

// Server represents our HTTP server
type Server struct {
	config *config.Config
	srv    *http.Server
	db     database.DB
}

// New creates a new server instance
func New(cfg *config.Config) *Server {
	return &Server{
		config: cfg,
	}
}

// Start wires the relay, begins listening and blocks until shutdown
func (s *Server) Start() error {
	relaySvc, authSvc, err := s.initializeServices()
	if err != nil {
		return err
	}

	router := api.NewRouter(relaySvc, authSvc, api.Config{
		StaticDir:   s.config.Static.Dir,
		EnforceAuth: s.config.Auth.Enforce,
	})

	// Dashboards and devices call from anywhere, as the original allowed.
	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)

	s.srv = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port),
		Handler:      cors(router),
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
	}

	go func() {
		nuts.L.Infof("[Server] Starting server on %s", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			nuts.L.Errorf("[Server] Error starting server: %v", err)
			os.Exit(1)
		}
	}()

	return s.waitForShutdown()
}

// waitForShutdown waits for interrupt signal and gracefully shuts down the server
func (s *Server) waitForShutdown() error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	nuts.L.Infof("[Server] Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()

	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			nuts.L.Warnf("[Server] Error closing database: %v", err)
		}
	}

	nuts.L.Infof("[Server] Server shut down successfully")
	return nil
}

// initializeServices connects the collaborators and builds the relay core
func (s *Server) initializeServices() (*relay.Service, *auth.Service, error) {
	db, err := database.NewPostgresDB(s.config.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	s.db = db

	readings, err := postgres.NewReadingRepository(db)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize reading repository: %w", err)
	}

	users, err := postgres.NewUserRepository(db)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize user repository: %w", err)
	}

	var cache relay.SnapshotCache = relay.NopSnapshotCache{}
	if s.config.Redis.Host != "" {
		redisCache, err := relay.NewRedisSnapshotCache(s.config.Redis)
		if err != nil {
			// The cache is an optimization; run without it rather than
			// refusing to start.
			nuts.L.Warnf("[Server] Snapshot cache unavailable: %v", err)
		} else {
			cache = redisCache
		}
	}

	relaySvc := relay.NewService(state.NewStore(), relay.NewHub(), readings, cache)
	authSvc := auth.NewService(users, s.config.Auth.JWTSecret, s.config.Auth.TokenTTL)

	return relaySvc, authSvc, nil
}
