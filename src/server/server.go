package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tradinganalysis/src/handler"
	"tradinganalysis/src/repository"
	"tradinganalysis/src/signals"

	"github.com/go-chi/chi/v5"
	logger "github.com/sirupsen/logrus"
)

// Dependencies carries everything the REST surface needs.
type Dependencies struct {
	Symbols      *repository.SymbolRepository
	Candles      *repository.CandleRepository
	Chat         *repository.ChatMessageRepository
	SignalReader *signals.Reader
	ChatAI       handler.ChatReplier
}

// NewRouter wires the REST routes to their handlers.
func NewRouter(deps Dependencies) *chi.Mux {
	r := chi.NewRouter()

	r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.WithError(err).Error("\"/healthcheck\" error")
		}
	})

	r.Route("/market", func(r chi.Router) {
		r.Get("/symbols/", handler.ListSymbolsHandler(deps.Symbols))
		r.Get("/candles/{symbolName}/", handler.ListCandlesHandler(deps.Candles))
	})

	r.Get("/signals/latest/{symbolName}/", handler.LatestSignalHandler(deps.SignalReader))

	r.Route("/chat/{symbolName}", func(r chi.Router) {
		r.Get("/", handler.ChatHistoryHandler(deps.Symbols, deps.Chat))
		r.Post("/", handler.ChatMessageHandler(deps.Symbols, deps.Chat, deps.ChatAI))
	})

	return r
}

// StartServer serves the REST API until SIGINT/SIGTERM, then shuts down
// gracefully.
func StartServer(port string, deps Dependencies) {
	r := NewRouter(deps)

	addr := ":" + port
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
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
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Shutdown error")
	}
}
