package app

import (
	"net/http"
	"time"

	"github.com/shashiranjanraj/bodega/config"
	"github.com/shashiranjanraj/bodega/pkg/metrics"
	"github.com/shashiranjanraj/bodega/pkg/middleware"
	"github.com/shashiranjanraj/bodega/pkg/reqid"
	"github.com/shashiranjanraj/bodega/pkg/response"
	"github.com/shashiranjanraj/bodega/pkg/router"
)

// DefaultStack is the global middleware, outermost first:
//  1. metrics, so latency covers everything below
//  2. recovery
//  3. request id, before anything logs
//  4. access log
//  5. CORS
//  6. rate limit per client IP
func DefaultStack() []router.Middleware {
	return []router.Middleware{
		metrics.Middleware(),
		middleware.Recovery,
		reqid.Middleware(),
		middleware.Logger,
		middleware.CORS(middleware.DefaultCORSOptions()),
		middleware.RateLimit(config.RateLimitPerMinute(), time.Minute),
	}
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	response.Error(w, http.StatusNotFound, "route not found")
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	response.Error(w, http.StatusMethodNotAllowed, "method not allowed")
}
