// Package health serves the hosting platform's health check plus a small
// read-only operator surface. It runs beside the poller and performs no
// bot logic.
package health

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"filestore-bot/internal/repositories"
	"filestore-bot/internal/utils"
)

type Server struct {
	srv *http.Server
}

func NewServer(port string, store *repositories.Store) *Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	})

	mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		stats, err := store.Stats()
		if err != nil {
			utils.JSONResponse(w, http.StatusInternalServerError, utils.Payload{
				Success: false,
				Message: "Failed to read stats",
			})
			return
		}
		utils.JSONResponse(w, http.StatusOK, utils.Payload{
			Success: true,
			Message: "Stats retrieved successfully",
			Data:    stats,
		})
	})

	mux.Handle("/metrics", promhttp.Handler())

	handler := cors.New(cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	}).Handler(mux)

	return &Server{
		srv: &http.Server{
			Addr:    fmt.Sprintf(":%s", port),
			Handler: handler,
			// Timeouts prevent resource exhaustion from slow clients
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
	}
}

// Run blocks until ctx is canceled or the listener fails.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
