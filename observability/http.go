package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// HTTPMetrics records http_request_duration_ms for every request, labelled
// with the matched route pattern and the response status. A nil manager
// yields a pass-through middleware.
func HTTPMetrics(mm *MetricsManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if mm == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			endpoint := r.URL.Path
			if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
				endpoint = rc.RoutePattern()
			}
			mm.Observe(MetricHTTPRequestDurationMs,
				float64(time.Since(start).Microseconds())/1000,
				"ms",
				map[string]string{
					"endpoint": endpoint,
					"method":   r.Method,
					"status":   strconv.Itoa(status),
				})
		})
	}
}
