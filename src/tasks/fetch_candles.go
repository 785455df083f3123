package tasks

import (
	"context"
	"errors"

	"tradinganalysis/src/connectors"
	"tradinganalysis/src/model"
	"tradinganalysis/src/repository"

	logger "github.com/sirupsen/logrus"
)

// ErrSymbolNotFound is reported when ingestion is requested for a symbol
// name nobody registered. No writes happen in that case.
var ErrSymbolNotFound = errors.New("symbol not found")

// IngestReport summarizes one fetch-and-store run for a symbol.
type IngestReport struct {
	Symbol   string `json:"symbol"`
	NoData   bool   `json:"no_data"`
	Inserted int64  `json:"inserted"`
	Pruned   int64  `json:"pruned"`
	Retained int64  `json:"retained"`
}

type klineFetcher interface {
	GetKlineData(ctx context.Context, symbol, interval string) []connectors.Kline
}

// Ingestor runs the fetch → insert-or-ignore → prune pipeline for one
// symbol at a time. Concurrent runs for the same symbol are safe: inserts
// drop duplicates and the prune only deletes rows outside the current
// newest-K snapshot, so the worst case is redundant work, never data loss.
type Ingestor struct {
	config  Config
	symbols *repository.SymbolRepository
	candles *repository.CandleRepository
	fetcher klineFetcher

	// OnCandlesIngested is called after a run that inserted rows, with the
	// newest stored candle of the symbol. The worker uses it to enqueue
	// signal generation; it is optional.
	OnCandlesIngested func(ctx context.Context, candle *model.Candle)
}

func NewIngestor(symbols *repository.SymbolRepository, candles *repository.CandleRepository, fetcher klineFetcher) *Ingestor {
	return &Ingestor{
		config:  GetConfig(),
		symbols: symbols,
		candles: candles,
		fetcher: fetcher,
	}
}

// FetchAndStoreCandles fetches the latest candles for the symbol, stores
// the new ones and prunes the rest down to the retention ceiling. Returns
// ErrSymbolNotFound for unknown names; a provider failure is not an error,
// just a report with NoData set.
func (i *Ingestor) FetchAndStoreCandles(ctx context.Context, symbolName string) (*IngestReport, error) {
	report := &IngestReport{Symbol: symbolName}

	symbol, err := i.symbols.FindByName(ctx, symbolName)
	if err != nil {
		return nil, err
	}
	if symbol == nil {
		logger.WithField("symbol", symbolName).Warn("Ingestion requested for unknown symbol")
		return nil, ErrSymbolNotFound
	}

	klines := i.fetcher.GetKlineData(ctx, symbolName, connectors.Interval15Min)
	if len(klines) == 0 {
		logger.WithField("symbol", symbolName).Warn("No data received from exchange API")
		report.NoData = true
		return report, nil
	}

	candles := make([]model.Candle, 0, len(klines))
	for _, kline := range klines {
		candles = append(candles, model.Candle{
			SymbolID:  symbol.ID,
			Timestamp: kline.Timestamp.UTC(),
			Open:      kline.Open,
			High:      kline.High,
			Low:       kline.Low,
			Close:     kline.Close,
			Volume:    kline.Volume,
		})
	}

	inserted, err := i.candles.InsertIgnore(ctx, candles)
	if err != nil {
		return nil, err
	}
	report.Inserted = inserted

	pruned, err := i.candles.PruneKeepLatest(ctx, symbol.ID, i.config.RetentionLimit)
	if err != nil {
		return nil, err
	}
	report.Pruned = pruned

	retained, err := i.candles.CountBySymbol(ctx, symbol.ID)
	if err != nil {
		return nil, err
	}
	report.Retained = retained

	logger.WithFields(logger.Fields{
		"symbol":   symbolName,
		"inserted": report.Inserted,
		"pruned":   report.Pruned,
		"retained": report.Retained,
	}).Info("Candle ingestion completed")

	if report.Inserted > 0 && i.OnCandlesIngested != nil {
		newest, err := i.candles.FindNewestBySymbol(ctx, symbol.ID)
		if err == nil && newest != nil {
			i.OnCandlesIngested(ctx, newest)
		}
	}

	return report, nil
}
