package fetchcandles

import (
	"context"
	"errors"

	"tradinganalysis/src/connectors"
	"tradinganalysis/src/repository"
	"tradinganalysis/src/tasks"

	logger "github.com/sirupsen/logrus"
)

// FetchCandles runs one ingestion cycle for a single symbol. Useful for
// backfilling a freshly registered symbol without waiting for the beat.
type FetchCandles struct {
	Log *logger.Entry
}

func (f *FetchCandles) Start() error {
	config := GetConfig()

	ingestor := tasks.NewIngestor(
		repository.NewSymbolRepository(),
		repository.NewCandleRepository(),
		connectors.NewKucoinMarketClient(),
	)

	report, err := ingestor.FetchAndStoreCandles(context.Background(), config.Symbol)
	if err != nil {
		if errors.Is(err, tasks.ErrSymbolNotFound) {
			f.Log.WithField("symbol", config.Symbol).Error("Symbol not found in the database")
			return err
		}
		f.Log.WithError(err).Error("Ingestion failed")
		return err
	}

	if report.NoData {
		f.Log.WithField("symbol", config.Symbol).Warn("No data received from API")
		return nil
	}

	f.Log.WithFields(logger.Fields{
		"symbol":   report.Symbol,
		"inserted": report.Inserted,
		"pruned":   report.Pruned,
		"retained": report.Retained,
	}).Info("Ingestion completed")

	return nil
}
