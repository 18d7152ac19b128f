package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/blocniti/blocniti/internal/auth"
	"github.com/blocniti/blocniti/internal/cache"
	"github.com/blocniti/blocniti/internal/classify"
	"github.com/blocniti/blocniti/internal/config"
	"github.com/blocniti/blocniti/internal/schema"
	"github.com/blocniti/blocniti/pkg/repository"
)

// Deps are the collaborators the handlers are built from. Cache may be nil,
// which disables response caching.
type Deps struct {
	Store      repository.Store
	Classifier *classify.Classifier
	Schemas    *schema.Loader
	Sessions   *auth.Sessions
	Provider   *auth.Provider
	Cache      *cache.ReadThrough
}

func SetupRoutes(cfg *config.Config, version, buildTime string, deps Deps) *mux.Router {
	r := mux.NewRouter()

	// Middleware chain
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware)
	r.Use(RecoveryMiddleware)

	rt := deps.Cache
	if rt == nil {
		rt = cache.NewReadThrough(cache.Nop{}, 0, logger)
	}

	cookieName := cfg.Auth.CookieName
	if cookieName == "" {
		cookieName = auth.DefaultCookieName
	}

	// Create handlers
	systemHandler := NewSystemHandler(deps.Store)
	authHandler := NewAuthHandler(deps.Store, deps.Sessions, deps.Provider, cookieName, !cfg.Development())
	profileHandler := NewProfileHandler(deps.Store, deps.Schemas)
	repairHandler := NewRepairIssueHandler(deps.Store, deps.Classifier, deps.Schemas, rt)
	harassmentHandler := NewHarassmentHandler(deps.Store, deps.Schemas, rt)

	// Preflight requests never match a method-restricted route, so they get
	// their own route for the CORS middleware to answer.
	r.PathPrefix("/").Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	// Open endpoints
	r.HandleFunc("/version", systemHandler.VersionHandler(version, buildTime)).Methods("GET")
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods("GET")
	r.HandleFunc("/api/login", authHandler.Login).Methods("GET")
	r.HandleFunc("/api/callback", authHandler.Callback).Methods("GET")
	r.HandleFunc("/api/logout", authHandler.Logout).Methods("GET")

	// Session protected routes
	protected := r.PathPrefix("/api").Subrouter()
	protected.Use(SessionMiddleware(deps.Sessions, cookieName))

	protected.HandleFunc("/auth/user", authHandler.CurrentUser).Methods("GET")
	protected.HandleFunc("/user/profile", profileHandler.UpdateProfile).Methods("PUT")

	protected.HandleFunc("/repair-issues", repairHandler.ListRepairIssues).Methods("GET")
	protected.HandleFunc("/repair-issues", repairHandler.CreateRepairIssue).Methods("POST")
	protected.HandleFunc("/repair-issues/report.pdf", repairHandler.Report).Methods("GET")
	protected.HandleFunc("/repair-issues/{id}", repairHandler.GetRepairIssue).Methods("GET")
	protected.HandleFunc("/repair-issues/{id}", repairHandler.DeleteRepairIssue).Methods("DELETE")

	protected.HandleFunc("/harassment-reports", harassmentHandler.ListHarassmentReports).Methods("GET")
	protected.HandleFunc("/harassment-reports", harassmentHandler.CreateHarassmentReport).Methods("POST")

	return r
}
