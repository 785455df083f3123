package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"tradinganalysis/src/model"

	"github.com/go-chi/chi/v5"
	logger "github.com/sirupsen/logrus"
)

// candleListLimit caps how many candles one listing request returns.
const candleListLimit = 1000

type activeSymbolLister interface {
	FindActive(ctx context.Context) ([]model.Symbol, error)
}

type recentCandleLister interface {
	FindRecentBySymbolName(ctx context.Context, name string, limit int) ([]model.Candle, error)
}

// ListSymbolsHandler returns a handler that lists all active symbols.
func ListSymbolsHandler(repo activeSymbolLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		symbols, err := repo.FindActive(r.Context())
		if err != nil {
			logger.WithError(err).Error("failed to list symbols")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		views := make([]model.SymbolView, 0, len(symbols))
		for _, symbol := range symbols {
			views = append(views, symbol.ConvertToView())
		}

		writeJSON(w, http.StatusOK, views)
	}
}

// ListCandlesHandler returns a handler that lists the most recent candles
// for a symbol, newest first. An unknown symbol yields an empty list with
// status 200, not a 404.
func ListCandlesHandler(repo recentCandleLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		symbolName := chi.URLParam(r, "symbolName")

		candles, err := repo.FindRecentBySymbolName(r.Context(), symbolName, candleListLimit)
		if err != nil {
			logger.WithError(err).WithField("symbol", symbolName).Error("failed to list candles")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		views := make([]model.CandleView, 0, len(candles))
		for _, candle := range candles {
			views = append(views, candle.ConvertToView())
		}

		writeJSON(w, http.StatusOK, views)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.WithError(err).Error("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
