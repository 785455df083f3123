package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"tradinganalysis/src/signals"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

type mockSignalReader struct {
	data   []byte
	err    error
	symbol string
}

func (m *mockSignalReader) Latest(_ context.Context, symbolName string) ([]byte, error) {
	m.symbol = symbolName
	return m.data, m.err
}

func newSignalRouter(reader *mockSignalReader) *chi.Mux {
	router := chi.NewRouter()
	router.Get("/signals/latest/{symbolName}/", LatestSignalHandler(reader))
	return router
}

func TestLatestSignalHandler(t *testing.T) {
	payload := []byte(`{"symbol":"BTC-USDT","direction_next_candle":"BULLISH"}`)
	reader := &mockSignalReader{data: payload}

	req := httptest.NewRequest(http.MethodGet, "/signals/latest/BTC-USDT/", nil)
	rr := httptest.NewRecorder()
	newSignalRouter(reader).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if reader.symbol != "BTC-USDT" {
		t.Fatalf("expected reader to be asked for BTC-USDT, got %q", reader.symbol)
	}

	// the reader's serialized payload is passed through untouched
	if rr.Body.String() != string(payload) {
		t.Fatalf("expected passthrough payload, got %q", rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected application/json, got %q", ct)
	}
}

func TestLatestSignalHandlerNotFound(t *testing.T) {
	reader := &mockSignalReader{err: signals.ErrSignalNotFound}

	req := httptest.NewRequest(http.MethodGet, "/signals/latest/DOGE-USDT/", nil)
	rr := httptest.NewRecorder()
	newSignalRouter(reader).ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["error"] != "No signal found for this symbol." {
		t.Fatalf("unexpected error message %q", body["error"])
	}
}

func TestLatestSignalHandlerReaderError(t *testing.T) {
	reader := &mockSignalReader{err: assert.AnError}

	req := httptest.NewRequest(http.MethodGet, "/signals/latest/BTC-USDT/", nil)
	rr := httptest.NewRecorder()
	newSignalRouter(reader).ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rr.Code)
	}
}
