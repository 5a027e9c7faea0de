package api

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/felixgeelhaar/taskrank/internal/prioritization/infrastructure/ratelimit"
	"github.com/felixgeelhaar/taskrank/pkg/observability"
)

const correlationHeader = "X-Correlation-ID"

// requestContext carries the chi request id and the caller's correlation id
// into the context that handlers and published events see.
func (s *Server) requestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := observability.NewRequestContext(r.Context(), middleware.GetReqID(r.Context()), r.Header.Get(correlationHeader))
		if id, ok := observability.CorrelationIDFromContext(ctx); ok {
			w.Header().Set(correlationHeader, id.String())
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// loggingMiddleware logs each request and records its metrics.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			elapsed := time.Since(start)
			tags := []observability.Tag{
				observability.T("method", r.Method),
				observability.T("route", route),
				observability.T("status", strconv.Itoa(ww.Status())),
			}
			s.deps.Metrics.Counter(observability.MetricHTTPRequests, 1, tags...)
			s.deps.Metrics.Timing(observability.MetricHTTPDuration, elapsed, tags[:2]...)

			s.logger.InfoContext(r.Context(), "http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				observability.DurationKey, elapsed.Milliseconds(),
				"remote_addr", r.RemoteAddr,
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

// rateLimit enforces rule per client IP. The bucket name lets several
// routes share one quota.
func (s *Server) rateLimit(bucket string, rule ratelimit.Rule) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if rule.Limit <= 0 {
				next.ServeHTTP(w, r)
				return
			}
			key := bucket + ":" + clientIP(r)
			decision, err := s.deps.Limiter.Allow(r.Context(), key, rule)
			if err != nil {
				s.logger.WarnContext(r.Context(), "rate limiter failed, allowing request", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
			if !decision.Allowed {
				retry := int(decision.RetryAfter.Round(time.Second) / time.Second)
				w.Header().Set("Retry-After", strconv.Itoa(max(retry, 1)))
				s.deps.Metrics.Counter(observability.MetricRateLimited, 1, observability.T("bucket", bucket))
				writeAPIError(w, ErrRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP strips the port from RemoteAddr, which RealIP has already
// replaced with the forwarded address when present.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
