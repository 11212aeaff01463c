package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	v1 "github.com/shelfdesk/shelfdesk/internal/api/v1"
	"github.com/shelfdesk/shelfdesk/internal/circulation"
	"github.com/shelfdesk/shelfdesk/internal/config"
	"github.com/shelfdesk/shelfdesk/internal/http/response"
	"github.com/shelfdesk/shelfdesk/internal/log"
	"github.com/shelfdesk/shelfdesk/internal/version"
)

const (
	readTimeout     = 10 * time.Second
	writeTimeout    = 30 * time.Second
	idleTimeout     = 120 * time.Second
	shutdownTimeout = 10 * time.Second
)

// StartServer starts the HTTP server in the background. Errors other than a
// clean shutdown are sent on the returned channel.
func StartServer(service *circulation.Service, opts *config.Options) (*http.Server, <-chan error) {
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", opts.Host, opts.Port),
		Handler:      setupHandler(service, opts),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	return server, startHTTPServer(server)
}

func startHTTPServer(server *http.Server) <-chan error {
	errc := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Error("HTTP server error", zap.Error(err))
			errc <- err
		}
		close(errc)
	}()
	return errc
}

// Shutdown stops accepting requests and waits for in-flight ones.
func Shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(ctx)
}

func setupHandler(service *circulation.Service, opts *config.Options) http.Handler {
	router := mux.NewRouter()

	// Setup the API routes
	v1.Server(router, v1.NewHandler(service, opts))

	router.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if err := service.Store().Ping(r.Context()); err != nil {
			log.Error("Healthcheck failed", zap.Error(err))
			http.Error(w, "Database Connection Error", http.StatusServiceUnavailable)
			return
		}

		w.Write([]byte("OK"))
	}).Name("healthcheck")

	router.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		current := version.GetCurrentVersion()
		response.New(w, r).WithCaching(`"`+current+`"`, time.Hour, func(b *response.Builder) {
			b.WithHeader("Content-Type", "text/plain; charset=utf-8")
			b.WithBody(current)
			b.Write()
		})
	}).Name("version")

	return router
}
