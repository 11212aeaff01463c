package middleware // import "github.com/shelfdesk/shelfdesk/internal/middleware"

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/shelfdesk/shelfdesk/internal/http/request"
	"github.com/shelfdesk/shelfdesk/internal/log"
	"github.com/shelfdesk/shelfdesk/internal/util"
)

func HandleCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "X-Auth-Token, Authorization, Content-Type, Accept, X-Request-Id")
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Max-Age", "7200")
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder remembers the status code written by the handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// LoggingRequest stores the client IP and a request id in the context and
// logs every request once it is served.
func LoggingRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientIP := request.FindClientIP(r)
		requestID := r.Header.Get("X-Request-Id")
		if requestID == "" {
			requestID = util.GenUUID()
			r.Header.Set("X-Request-Id", requestID)
		}
		ctx := r.Context()
		ctx = context.WithValue(ctx, request.ClientIPContextKey, clientIP)
		ctx = context.WithValue(ctx, request.RequestIDContextKey, requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		t1 := time.Now()
		defer func() {
			log.Debug("Incoming request",
				zap.String("request_id", requestID),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("proto", r.Proto),
				zap.String("client_ip", clientIP),
				zap.Int("status", rec.status),
				zap.Duration("duration", time.Since(t1)))
		}()

		next.ServeHTTP(rec, r.WithContext(ctx))
	})
}
