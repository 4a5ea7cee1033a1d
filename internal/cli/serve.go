package cli

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/mrz1836/presale/internal/output"
	presaleerr "github.com/mrz1836/presale/pkg/errors"
)

const shutdownTimeout = 5 * time.Second

// newWatchRouter serves the Prometheus collectors at /metrics, the current
// dashboard view at /status and a liveness check at /healthz.
func newWatchRouter(metrics http.Handler, status func() output.StatusView, log LogWriter) *mux.Router {
	router := mux.NewRouter()
	router.Use(loggingMiddleware(log))
	router.Use(recoveryMiddleware(log))

	router.Handle("/metrics", metrics).Methods(http.MethodGet)
	router.HandleFunc("/status", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(status())
	}).Methods(http.MethodGet)
	router.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)

	return router
}

// serveHTTP listens on addr and serves handler until the returned stop func
// is called. It returns the bound address, which differs from addr for ":0".
func serveHTTP(addr string, handler http.Handler, log LogWriter) (string, func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, presaleerr.WithDetails(presaleerr.WithCause(presaleerr.ErrInvalidInput, err),
			map[string]string{"listen": addr})
	}

	server := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	go func() {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server on %s: %v", ln.Addr(), err)
		}
	}()

	return ln.Addr().String(), func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Error("http server shutdown: %v", err)
		}
	}, nil
}

// loggingMiddleware logs every request at debug level.
func loggingMiddleware(log LogWriter) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)
			log.Debug("http %s %s %d %s", r.Method, r.URL.Path, wrapped.statusCode, time.Since(start))
		})
	}
}

// responseWriter captures the status code written by a handler.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// recoveryMiddleware turns a handler panic into a 500.
func recoveryMiddleware(log LogWriter) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.Error("http %s %s panic: %v", r.Method, r.URL.Path, rec)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_, _ = w.Write([]byte(`{"error":"internal server error"}`))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
