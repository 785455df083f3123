package handler

import (
	"context"
	"errors"
	"net/http"

	"tradinganalysis/src/signals"

	"github.com/go-chi/chi/v5"
	logger "github.com/sirupsen/logrus"
)

type latestSignalReader interface {
	Latest(ctx context.Context, symbolName string) ([]byte, error)
}

// LatestSignalHandler returns a handler that serves the latest AI signal
// for a symbol via the cache-aside reader. The reader already returns
// serialized JSON, so the payload is written through unchanged.
func LatestSignalHandler(reader latestSignalReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		symbolName := chi.URLParam(r, "symbolName")

		data, err := reader.Latest(r.Context(), symbolName)
		if err != nil {
			if errors.Is(err, signals.ErrSignalNotFound) {
				writeError(w, http.StatusNotFound, "No signal found for this symbol.")
				return
			}

			logger.WithError(err).WithField("symbol", symbolName).Error("failed to fetch latest signal")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write(data); err != nil {
			logger.WithError(err).Error("failed to write signal response")
		}
	}
}
