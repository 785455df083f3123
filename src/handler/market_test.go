package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tradinganalysis/src/model"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type mockSymbolLister struct {
	symbols []model.Symbol
	err     error
}

func (m *mockSymbolLister) FindActive(_ context.Context) ([]model.Symbol, error) {
	return m.symbols, m.err
}

type mockCandleLister struct {
	candles map[string][]model.Candle
	err     error
	limit   int
}

func (m *mockCandleLister) FindRecentBySymbolName(_ context.Context, name string, limit int) ([]model.Candle, error) {
	m.limit = limit
	return m.candles[name], m.err
}

func TestListSymbolsHandler(t *testing.T) {
	repo := &mockSymbolLister{symbols: []model.Symbol{
		{ID: 1, Name: "BTC-USDT", IsActive: true},
		{ID: 2, Name: "ETH-USDT", IsActive: true},
	}}

	req := httptest.NewRequest(http.MethodGet, "/market/symbols/", nil)
	rr := httptest.NewRecorder()

	ListSymbolsHandler(repo).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	var views []model.SymbolView
	if err := json.NewDecoder(rr.Body).Decode(&views); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(views) != 2 || views[0].Name != "BTC-USDT" {
		t.Fatalf("unexpected response %+v", views)
	}
}

func TestListSymbolsHandlerRepoError(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/market/symbols/", nil)
	rr := httptest.NewRecorder()

	ListSymbolsHandler(&mockSymbolLister{err: assert.AnError}).ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rr.Code)
	}
}

func TestListCandlesHandler(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	repo := &mockCandleLister{candles: map[string][]model.Candle{
		"BTC-USDT": {
			{ID: 2, Timestamp: ts.Add(15 * time.Minute), Close: decimal.NewFromInt(28100)},
			{ID: 1, Timestamp: ts, Close: decimal.NewFromInt(28000)},
		},
	}}

	router := chi.NewRouter()
	router.Get("/market/candles/{symbolName}/", ListCandlesHandler(repo))

	req := httptest.NewRequest(http.MethodGet, "/market/candles/BTC-USDT/", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if repo.limit != candleListLimit {
		t.Fatalf("expected limit %d, got %d", candleListLimit, repo.limit)
	}

	var views []model.CandleView
	if err := json.NewDecoder(rr.Body).Decode(&views); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 candles, got %d", len(views))
	}
	if !views[0].Timestamp.After(views[1].Timestamp) {
		t.Fatal("expected newest candle first")
	}
}

func TestListCandlesHandlerUnknownSymbol(t *testing.T) {
	router := chi.NewRouter()
	router.Get("/market/candles/{symbolName}/", ListCandlesHandler(&mockCandleLister{}))

	req := httptest.NewRequest(http.MethodGet, "/market/candles/DOGE-USDT/", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	// an unknown symbol is an empty list, not a 404
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	var views []model.CandleView
	if err := json.NewDecoder(rr.Body).Decode(&views); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(views) != 0 {
		t.Fatalf("expected empty list, got %d entries", len(views))
	}
}
