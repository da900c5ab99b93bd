package api

import (
	"net/http"
	"path/filepath"

	"github.com/Gibsonzwenyika/iot-dashboard/api/middleware"
	"github.com/Gibsonzwenyika/iot-dashboard/api/resources"
	"github.com/Gibsonzwenyika/iot-dashboard/internal/auth"
	"github.com/Gibsonzwenyika/iot-dashboard/internal/relay"
	"github.com/gorilla/mux"
	nuts "github.com/vaudience/go-nuts"
)

// Config carries the router's knobs.
type Config struct {
	// StaticDir is the directory the entry pages are served from.
	StaticDir string
	// EnforceAuth gates the telemetry and actuator routes behind bearer
	// tokens. The original deployment issued tokens but never checked them
	// on those routes, so this defaults to off.
	EnforceAuth bool
}

type Router struct {
	router    *mux.Router
	auth      *middleware.AuthMiddleware
	resources *resources.Resources
	config    Config
}

func NewRouter(relaySvc *relay.Service, authSvc *auth.Service, cfg Config) *Router {
	r := &Router{
		router:    mux.NewRouter(),
		auth:      middleware.NewAuthMiddleware(authSvc),
		resources: resources.NewResources(relaySvc, authSvc),
		config:    cfg,
	}

	r.setupRoutes()
	return r
}

func (r *Router) setupRoutes() {
	// Auth
	r.router.HandleFunc("/register", r.resources.Auth.Register).Methods(http.MethodPost)
	r.router.HandleFunc("/login", r.resources.Auth.Login).Methods(http.MethodPost)

	// Telemetry and actuator routes. Bearer enforcement is optional; see
	// Config.EnforceAuth.
	mutating := r.router.PathPrefix("").Subrouter()
	if r.config.EnforceAuth {
		nuts.L.Infof("[Router] Bearer token enforcement enabled on telemetry routes")
		mutating.Use(r.auth.Authenticate)
	}
	mutating.HandleFunc("/data", r.resources.Telemetry.IngestData).Methods(http.MethodPost)
	mutating.HandleFunc("/bulb/{state}", r.resources.Bulb.SetBulbState).Methods(http.MethodPost)

	// Reads stay public like the original.
	r.router.HandleFunc("/data", r.resources.Telemetry.GetData).Methods(http.MethodGet)
	r.router.HandleFunc("/readings", r.resources.Telemetry.ListReadings).Methods(http.MethodGet)
	r.router.HandleFunc("/bulb/status", r.resources.Bulb.GetBulbStatus).Methods(http.MethodGet)
	r.router.HandleFunc("/status", r.resources.Bulb.GetBulbStatus).Methods(http.MethodGet)

	// Live channel
	r.router.HandleFunc("/ws", r.resources.Telemetry.ServeWS).Methods(http.MethodGet)

	// Health
	r.router.HandleFunc("/health", r.handleHealth).Methods(http.MethodGet)

	// Static entry pages
	r.router.HandleFunc("/", r.servePage("index.html")).Methods(http.MethodGet)
	r.router.HandleFunc("/register", r.servePage("register.html")).Methods(http.MethodGet)
	r.router.PathPrefix("/static/").Handler(
		http.StripPrefix("/static/", http.FileServer(http.Dir(r.config.StaticDir))))
}

func (r *Router) servePage(name string) http.HandlerFunc {
	page := filepath.Join(r.config.StaticDir, name)
	return func(w http.ResponseWriter, req *http.Request) {
		http.ServeFile(w, req, page)
	}
}

func (r *Router) handleHealth(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok","version":"` + nuts.GetVersion() + `"}`))
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.router.ServeHTTP(w, req)
}
