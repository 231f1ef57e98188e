package rest

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RouterConfig carries the handlers and middleware the router is built from.
type RouterConfig struct {
	Loans      *LoanHandler
	Customers  *CustomerHandler
	Health     *HealthHandler
	Metrics    http.Handler
	Middleware []func(http.Handler) http.Handler
}

// NewRouter assembles the HTTP surface. Middleware wraps every route,
// including health and metrics; auth skip-lists are the middleware's problem.
func NewRouter(cfg RouterConfig) *mux.Router {
	r := mux.NewRouter()

	cfg.Health.RegisterRoutes(r)
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics).Methods("GET")
	}
	cfg.Loans.RegisterRoutes(r)
	cfg.Customers.RegisterRoutes(r)

	for _, mw := range cfg.Middleware {
		r.Use(mux.MiddlewareFunc(mw))
	}
	return r
}
