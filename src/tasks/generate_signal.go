package tasks

import (
	"context"
	"fmt"

	"tradinganalysis/src/cache"
	"tradinganalysis/src/connectors"
	"tradinganalysis/src/model"
	"tradinganalysis/src/repository"
	"tradinganalysis/src/signals"

	logger "github.com/sirupsen/logrus"
)

// signalHistorySize is how many candles are handed to the AI per signal.
const signalHistorySize = 100

type signalGenerator interface {
	GenerateSignalFromCandles(ctx context.Context, candles []model.CandleView) (*connectors.SignalPrediction, error)
}

// Producer generates and persists AI signals for candles. A generation
// either persists a complete signal and refreshes the cache, or persists
// nothing at all.
type Producer struct {
	candles *repository.CandleRepository
	signals *repository.SignalRepository
	cache   cache.Cache
	ai      signalGenerator
}

func NewProducer(candles *repository.CandleRepository, sigs *repository.SignalRepository, store cache.Cache, ai signalGenerator) *Producer {
	return &Producer{
		candles: candles,
		signals: sigs,
		cache:   store,
		ai:      ai,
	}
}

// GenerateSignalForCandle asks the AI for a multi-timeframe prediction on
// the candle and stores it. Non-retryable conditions (candle gone, signal
// already exists, not enough history) return nil so the queue does not
// retry them; AI failures and store errors return an error and are retried
// a bounded number of times by the submitting job.
func (p *Producer) GenerateSignalForCandle(ctx context.Context, candleID uint) error {
	candle, err := p.candles.FindByID(ctx, candleID)
	if err != nil {
		return err
	}
	if candle == nil {
		logger.WithField("candleID", candleID).Error("Candle not found for signal generation")
		return nil
	}

	exists, err := p.signals.ExistsForCandle(ctx, candle.ID)
	if err != nil {
		return err
	}
	if exists {
		logger.WithField("candleID", candle.ID).Info("Signal already exists for candle, skipping")
		return nil
	}

	history, err := p.candles.FindHistoryUpTo(ctx, candle.SymbolID, candle.Timestamp, signalHistorySize)
	if err != nil {
		return err
	}
	if len(history) < signalHistorySize {
		logger.WithFields(logger.Fields{
			"candleID": candle.ID,
			"have":     len(history),
			"need":     signalHistorySize,
		}).Info("Not enough historical data for signal generation")
		return nil
	}

	views := make([]model.CandleView, 0, len(history))
	for _, c := range history {
		views = append(views, c.ConvertToView())
	}

	prediction, err := p.ai.GenerateSignalFromCandles(ctx, views)
	if err != nil {
		return fmt.Errorf("AI signal generation for candle %d: %w", candle.ID, err)
	}

	signal := &model.Signal{
		CandleID:             candle.ID,
		DirectionNextCandle:  prediction.NextCandle.Direction,
		ConfidenceNextCandle: prediction.NextCandle.Confidence,
		Direction3rdCandle:   prediction.ThirdCandle.Direction,
		Confidence3rdCandle:  prediction.ThirdCandle.Confidence,
		Direction5thCandle:   prediction.FifthCandle.Direction,
		Confidence5thCandle:  prediction.FifthCandle.Confidence,
		Direction10thCandle:  prediction.TenthCandle.Direction,
		Confidence10thCandle: prediction.TenthCandle.Confidence,
		ProbabilityText:      prediction.ProbabilityText,
		RiskText:             prediction.RiskText,
	}

	if err := p.signals.Create(ctx, signal); err != nil {
		return err
	}

	signal.Candle = candle
	signals.CacheLatest(ctx, p.cache, signal.ConvertToView())

	logger.WithFields(logger.Fields{
		"candleID": candle.ID,
		"signalID": signal.ID,
	}).Info("Multi-timeframe signal generated")

	return nil
}

// SignalJob wraps GenerateSignalForCandle in a queue job with the bounded
// retry policy from config.
func (p *Producer) SignalJob(candleID uint) Job {
	config := GetConfig()
	return Job{
		Name:       fmt.Sprintf("generate_signal:%d", candleID),
		MaxRetries: config.SignalMaxRetries,
		RetryDelay: config.SignalRetryDelay,
		Run: func(ctx context.Context) error {
			return p.GenerateSignalForCandle(ctx, candleID)
		},
	}
}
