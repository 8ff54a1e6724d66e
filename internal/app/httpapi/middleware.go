package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/R3E-Network/social_layer/pkg/logger"
)

// TraceHeader carries the request trace id in both directions.
const TraceHeader = "X-Trace-ID"

type ctxKey int

const ctxTraceIDKey ctxKey = iota

// TraceID returns the trace id attached to ctx, if any.
func TraceID(ctx context.Context) string {
	id, _ := ctx.Value(ctxTraceIDKey).(string)
	return id
}

// withRequestContext assigns a trace id to every request (reusing an incoming
// one), echoes it on the response and logs the outcome.
func withRequestContext(next http.Handler, log *logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		traceID := r.Header.Get(TraceHeader)
		if traceID == "" {
			traceID = uuid.NewString()
		}
		r = r.WithContext(context.WithValue(r.Context(), ctxTraceIDKey, traceID))
		w.Header().Set(TraceHeader, traceID)

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		requestLogger(r, log).
			WithField("status", wrapped.statusCode).
			WithField("duration_ms", time.Since(start).Milliseconds()).
			Info("request handled")
	})
}

func requestLogger(r *http.Request, log *logger.Logger) *logrus.Entry {
	return log.WithFields(logrus.Fields{
		"trace_id": TraceID(r.Context()),
		"method":   r.Method,
		"path":     r.URL.Path,
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.written = true
		rw.ResponseWriter.WriteHeader(code)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}
