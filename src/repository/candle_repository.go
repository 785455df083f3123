package repository

import (
	"context"
	"errors"
	"time"

	"tradinganalysis/src/database"
	"tradinganalysis/src/model"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CandleRepository handles persistence for OHLCV candles.
type CandleRepository struct {
	db *gorm.DB
}

// NewCandleRepository creates a new repository using the main database.
func NewCandleRepository() *CandleRepository {
	logger.WithField("component", "CandleRepository").
		Info("Creating new CandleRepository with MainDB")

	return &CandleRepository{
		db: database.MainDB,
	}
}

// WithDB allows overriding the underlying *gorm.DB instance.
// Useful for tests or custom sessions/transactions.
func (r *CandleRepository) WithDB(db *gorm.DB) *CandleRepository {
	return &CandleRepository{db: db}
}

// InsertIgnore bulk-inserts candles, silently skipping rows that collide
// with an existing (symbol_id, timestamp) pair. Existing rows are never
// updated, so re-running with overlapping data is a no-op for the overlap.
// Returns the number of rows actually inserted.
func (r *CandleRepository) InsertIgnore(ctx context.Context, candles []model.Candle) (int64, error) {
	if len(candles) == 0 {
		return 0, nil
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "symbol_id"}, {Name: "timestamp"}},
			DoNothing: true,
		}).
		Create(&candles)

	if result.Error != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "CandleRepository",
			"op":   "InsertIgnore",
			"rows": len(candles),
		}).WithError(result.Error).Error("Failed to bulk insert candles")

		return 0, result.Error
	}

	logger.WithFields(map[string]interface{}{
		"repo":     "CandleRepository",
		"op":       "InsertIgnore",
		"rows":     len(candles),
		"inserted": result.RowsAffected,
	}).Debug("Candles inserted")

	return result.RowsAffected, nil
}

// PruneKeepLatest deletes every candle of the symbol that is not among the
// keep newest ones by timestamp. The retained set is computed in a single
// "keep these, delete the rest" statement so concurrent ingestions of the
// same symbol can only cause redundant work, not data loss. When the symbol
// holds keep rows or fewer, nothing is deleted.
func (r *CandleRepository) PruneKeepLatest(ctx context.Context, symbolID uint, keep int) (int64, error) {
	latest := r.db.
		Model(&model.Candle{}).
		Select("id").
		Where("symbol_id = ?", symbolID).
		Order("timestamp DESC").
		Limit(keep)

	result := r.db.WithContext(ctx).
		Where("symbol_id = ? AND id NOT IN (?)", symbolID, latest).
		Delete(&model.Candle{})

	if result.Error != nil {
		logger.WithFields(map[string]interface{}{
			"repo":     "CandleRepository",
			"op":       "PruneKeepLatest",
			"symbolID": symbolID,
			"keep":     keep,
		}).WithError(result.Error).Error("Failed to prune candles")

		return 0, result.Error
	}

	logger.WithFields(map[string]interface{}{
		"repo":     "CandleRepository",
		"op":       "PruneKeepLatest",
		"symbolID": symbolID,
		"keep":     keep,
		"pruned":   result.RowsAffected,
	}).Debug("Candles pruned")

	return result.RowsAffected, nil
}

// CountBySymbol returns how many candles are stored for the symbol.
func (r *CandleRepository) CountBySymbol(ctx context.Context, symbolID uint) (int64, error) {
	var count int64

	err := r.db.WithContext(ctx).
		Model(&model.Candle{}).
		Where("symbol_id = ?", symbolID).
		Count(&count).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":     "CandleRepository",
			"op":       "CountBySymbol",
			"symbolID": symbolID,
		}).WithError(err).Error("Failed to count candles")

		return 0, err
	}

	return count, nil
}

// FindRecentBySymbolName returns the newest candles for a symbol name,
// descending by timestamp. An unknown symbol yields an empty slice, not an
// error.
func (r *CandleRepository) FindRecentBySymbolName(ctx context.Context, name string, limit int) ([]model.Candle, error) {
	if limit <= 0 {
		limit = 1000
	}

	var candles []model.Candle

	err := r.db.WithContext(ctx).
		Joins("JOIN symbols ON symbols.id = candles.symbol_id").
		Where("symbols.name = ?", name).
		Order("candles.timestamp DESC").
		Limit(limit).
		Find(&candles).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":   "CandleRepository",
			"op":     "FindRecentBySymbolName",
			"symbol": name,
			"limit":  limit,
		}).WithError(err).Error("Failed to fetch recent candles")

		return nil, err
	}

	return candles, nil
}

// FindHistoryUpTo returns up to limit candles of the symbol whose timestamp
// is at or before upTo, descending by timestamp. This is the history window
// handed to the AI signal generation.
func (r *CandleRepository) FindHistoryUpTo(ctx context.Context, symbolID uint, upTo time.Time, limit int) ([]model.Candle, error) {
	if limit <= 0 {
		limit = 100
	}

	var candles []model.Candle

	err := r.db.WithContext(ctx).
		Where("symbol_id = ? AND timestamp <= ?", symbolID, upTo).
		Order("timestamp DESC").
		Limit(limit).
		Find(&candles).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":     "CandleRepository",
			"op":       "FindHistoryUpTo",
			"symbolID": symbolID,
			"limit":    limit,
		}).WithError(err).Error("Failed to fetch candle history")

		return nil, err
	}

	return candles, nil
}

// FindByID fetches a candle with its symbol preloaded.
// Returns (nil, nil) if not found.
func (r *CandleRepository) FindByID(ctx context.Context, id uint) (*model.Candle, error) {
	var candle model.Candle

	err := r.db.WithContext(ctx).
		Preload("Symbol").
		First(&candle, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.WithFields(map[string]interface{}{
				"repo": "CandleRepository",
				"op":   "FindByID",
				"id":   id,
			}).Info("Candle not found by ID")
			return nil, nil
		}

		logger.WithFields(map[string]interface{}{
			"repo": "CandleRepository",
			"op":   "FindByID",
			"id":   id,
		}).WithError(err).Error("Failed to fetch candle by ID")

		return nil, err
	}

	return &candle, nil
}

// FindNewestBySymbol returns the most recent candle of a symbol.
// Returns (nil, nil) when the symbol has no candles yet.
func (r *CandleRepository) FindNewestBySymbol(ctx context.Context, symbolID uint) (*model.Candle, error) {
	var candle model.Candle

	err := r.db.WithContext(ctx).
		Where("symbol_id = ?", symbolID).
		Order("timestamp DESC").
		First(&candle).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		logger.WithFields(map[string]interface{}{
			"repo":     "CandleRepository",
			"op":       "FindNewestBySymbol",
			"symbolID": symbolID,
		}).WithError(err).Error("Failed to fetch newest candle")

		return nil, err
	}

	return &candle, nil
}
