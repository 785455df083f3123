package repository

import (
	"context"
	"errors"

	"tradinganalysis/src/database"
	"tradinganalysis/src/model"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SignalRepository handles persistence for AI-generated signals.
type SignalRepository struct {
	db *gorm.DB
}

// NewSignalRepository creates a new repository using the main database.
func NewSignalRepository() *SignalRepository {
	logger.WithField("component", "SignalRepository").
		Info("Creating new SignalRepository with MainDB")

	return &SignalRepository{
		db: database.MainDB,
	}
}

// WithDB allows overriding the underlying *gorm.DB instance.
// Useful for tests or custom sessions/transactions.
func (r *SignalRepository) WithDB(db *gorm.DB) *SignalRepository {
	return &SignalRepository{db: db}
}

// Create inserts a new signal. The unique index on candle_id rejects a
// second signal for the same candle.
func (r *SignalRepository) Create(ctx context.Context, signal *model.Signal) error {
	err := r.db.WithContext(ctx).Create(signal).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":     "SignalRepository",
			"op":       "Create",
			"candleID": signal.CandleID,
		}).WithError(err).Error("Failed to create signal")

		return err
	}

	logger.WithFields(map[string]interface{}{
		"repo":     "SignalRepository",
		"op":       "Create",
		"signalID": signal.ID,
		"candleID": signal.CandleID,
	}).Info("Signal created")

	return nil
}

// ExistsForCandle reports whether a signal was already generated for the
// candle.
func (r *SignalRepository) ExistsForCandle(ctx context.Context, candleID uint) (bool, error) {
	var count int64

	err := r.db.WithContext(ctx).
		Model(&model.Signal{}).
		Where("candle_id = ?", candleID).
		Count(&count).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":     "SignalRepository",
			"op":       "ExistsForCandle",
			"candleID": candleID,
		}).WithError(err).Error("Failed to check for existing signal")

		return false, err
	}

	return count > 0, nil
}

// FindLatestBySymbolName fetches the signal belonging to the most recent
// candle of the symbol, with candle and symbol preloaded.
// Returns (nil, nil) when no signal exists yet.
func (r *SignalRepository) FindLatestBySymbolName(ctx context.Context, name string) (*model.Signal, error) {
	var signal model.Signal

	err := r.db.WithContext(ctx).
		Joins("JOIN candles ON candles.id = signals.candle_id").
		Joins("JOIN symbols ON symbols.id = candles.symbol_id").
		Where("symbols.name = ?", name).
		Order("candles.timestamp DESC").
		Preload("Candle.Symbol").
		First(&signal).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.WithFields(map[string]interface{}{
				"repo":   "SignalRepository",
				"op":     "FindLatestBySymbolName",
				"symbol": name,
			}).Info("No signal found for symbol")
			return nil, nil
		}

		logger.WithFields(map[string]interface{}{
			"repo":   "SignalRepository",
			"op":     "FindLatestBySymbolName",
			"symbol": name,
		}).WithError(err).Error("Failed to fetch latest signal")

		return nil, err
	}

	return &signal, nil
}
