package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	logger "github.com/sirupsen/logrus"
)

// Handlers carries the route handlers the trust engine exposes. The router
// is thin JSON glue; all behavior lives in the service layer.
type Handlers struct {
	BuySignal      http.HandlerFunc
	SellSignal     http.HandlerFunc
	Recommendation http.HandlerFunc
	ListPositions  http.HandlerFunc
	Report         http.HandlerFunc
}

func NewRouter(handlers Handlers) *chi.Mux {
	r := chi.NewRouter()

	r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.WithError(err).Error("/healthcheck write failed")
		}
	})

	r.Post("/signals/buy", handlers.BuySignal)
	r.Post("/signals/sell", handlers.SellSignal)
	r.Post("/recommendations", handlers.Recommendation)
	r.Get("/positions", handlers.ListPositions)
	r.Get("/report", handlers.Report)

	return r
}

// StartServer serves the router and blocks until SIGINT/SIGTERM, then shuts
// down gracefully.
func StartServer(config *Config, router http.Handler) {
	addr := ":" + config.Port
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		logger.Infof("Listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server crashed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(config.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Shutdown error")
	}
}
