package signals

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"tradinganalysis/src/cache"
	"tradinganalysis/src/model"

	logger "github.com/sirupsen/logrus"
)

// TTL of a cached signal view. Staleness up to this window is accepted by
// design; the durable store stays the source of truth.
const CacheTTL = 24 * time.Hour

// ErrSignalNotFound is returned when neither cache nor durable store holds
// a signal for the symbol.
var ErrSignalNotFound = errors.New("no signal found for this symbol")

// CacheKey is the key the read and write paths share for a symbol's latest
// signal view.
func CacheKey(symbolName string) string {
	return "signal:" + symbolName
}

// CacheLatest overwrites the symbol's cache entry with the serialized view.
// Both the producer (after a durable write) and the reader (after a cache
// miss) go through here, so a reader never needs to know who populated the
// key. A cache write failure is logged and swallowed.
func CacheLatest(ctx context.Context, store cache.Cache, view model.SignalView) []byte {
	data, err := json.Marshal(view)
	if err != nil {
		logger.WithError(err).WithField("symbol", view.Symbol).Error("Failed to marshal signal view")
		return nil
	}

	if err := store.Set(ctx, CacheKey(view.Symbol), data, CacheTTL); err != nil {
		logger.WithError(err).WithField("symbol", view.Symbol).Warn("Failed to cache signal view")
	}

	return data
}

type latestSignalFinder interface {
	FindLatestBySymbolName(ctx context.Context, name string) (*model.Signal, error)
}

// Reader serves the latest signal for a symbol with the cache-aside
// pattern: cache first, durable store on miss, repopulate on fallback.
type Reader struct {
	cache   cache.Cache
	signals latestSignalFinder
}

func NewReader(store cache.Cache, signals latestSignalFinder) *Reader {
	return &Reader{
		cache:   store,
		signals: signals,
	}
}

// Latest returns the serialized latest signal view for the symbol.
// A cache hit is returned as-is even if a newer durable record exists. A
// cache backend failure is treated as a miss so availability never depends
// on the cache. Returns ErrSignalNotFound when no signal exists yet.
func (r *Reader) Latest(ctx context.Context, symbolName string) ([]byte, error) {
	cached, err := r.cache.Get(ctx, CacheKey(symbolName))
	if err != nil {
		logger.WithError(err).WithField("symbol", symbolName).Warn("Signal cache read failed, falling back to database")
	}
	if cached != nil {
		logger.WithField("symbol", symbolName).Debug("Signal served from cache")
		return cached, nil
	}

	signal, err := r.signals.FindLatestBySymbolName(ctx, symbolName)
	if err != nil {
		return nil, err
	}
	if signal == nil {
		return nil, ErrSignalNotFound
	}

	data := CacheLatest(ctx, r.cache, signal.ConvertToView())
	if data == nil {
		// marshal failure; serve straight from the model
		return json.Marshal(signal.ConvertToView())
	}

	return data, nil
}
