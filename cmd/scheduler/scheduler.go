package scheduler

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"tradinganalysis/src/cache"
	"tradinganalysis/src/connectors"
	"tradinganalysis/src/database"
	"tradinganalysis/src/model"
	"tradinganalysis/src/repository"
	"tradinganalysis/src/tasks"

	logger "github.com/sirupsen/logrus"
)

// Scheduler is the periodic beat of the ingestion pipeline: every
// BeatPeriod it fans out one staggered fetch job per active symbol onto
// the in-process queue, and newly stored candles feed AI signal
// generation.
type Scheduler struct{}

func (s *Scheduler) Start() error {
	config := GetConfig()

	if err := database.InitMainDB(); err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}

	signalCache, err := cache.NewRedisCacheFromConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to create redis cache client")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	symbolRepo := repository.NewSymbolRepository()
	candleRepo := repository.NewCandleRepository()
	signalRepo := repository.NewSignalRepository()

	queue := tasks.NewLocalQueue()
	ingestor := tasks.NewIngestor(symbolRepo, candleRepo, connectors.NewKucoinMarketClient())

	// Signal generation only runs when the AI backend is configured; the
	// candle pipeline itself never depends on it.
	if aiClient, err := connectors.NewLiaraAIClient(); err != nil {
		logger.WithError(err).Warn("AI client not configured, signal generation disabled")
	} else {
		producer := tasks.NewProducer(candleRepo, signalRepo, signalCache, aiClient)
		ingestor.OnCandlesIngested = func(ctx context.Context, candle *model.Candle) {
			if err := queue.Submit(ctx, producer.SignalJob(candle.ID)); err != nil {
				logger.WithError(err).WithField("candleID", candle.ID).Error("Failed to submit signal job")
			}
		}
	}

	fanout := tasks.NewFanout(symbolRepo, queue, func(ctx context.Context, symbolName string) error {
		_, err := ingestor.FetchAndStoreCandles(ctx, symbolName)
		return err
	})

	ticker := time.NewTicker(config.BeatPeriod)
	defer ticker.Stop()

	logger.WithField("period", config.BeatPeriod.String()).Info("Scheduler started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Scheduler stopping, waiting for running jobs")
			queue.Wait()
			return nil

		case <-ticker.C:
			triggered, err := fanout.TriggerAllActiveSymbols(ctx)
			if err != nil {
				logger.WithError(err).Error("Fanout tick failed")
				continue
			}
			logger.WithField("triggered", triggered).Info("Fanout tick completed")
		}
	}
}
