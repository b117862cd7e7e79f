package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/liamcoop/drills/internal/logger"
	"github.com/liamcoop/drills/internal/rate"
)

// requestLogger logs one record per request and feeds the metrics counters.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			elapsed := time.Since(start)
			logger.TotalRequests.Add(1)

			args := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration_ms", elapsed.Milliseconds(),
				"ip", rate.IPFromRequest(r),
				"request_id", middleware.GetReqID(r.Context()),
			}

			switch {
			case status >= 500:
				logger.ErrorHttp5xx()
				logger.Logger.Error("request failed", args...)
			case status >= 400:
				logger.WarnHttp4xx(status)
				logger.Debug("request rejected", args...)
			default:
				logger.Debug("request", args...)
			}
			if elapsed > slowRequest {
				logger.WarnSlowRequest()
				logger.Warn("slow request", args...)
			}
		}()

		next.ServeHTTP(ww, r)
	})
}

// rateLimit rejects clients that exceed their per-IP budget.
func rateLimit(lm *rate.LimiterMap) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !lm.Allow(rate.IPFromRequest(r)) {
				w.Header().Set("Retry-After", "60")
				respondError(w, http.StatusTooManyRequests, "rate limited", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
