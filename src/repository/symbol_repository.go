package repository

import (
	"context"
	"errors"

	"tradinganalysis/src/database"
	"tradinganalysis/src/model"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SymbolRepository handles persistence for tradeable symbols.
type SymbolRepository struct {
	db *gorm.DB
}

// NewSymbolRepository creates a new repository using the main database.
func NewSymbolRepository() *SymbolRepository {
	logger.WithField("component", "SymbolRepository").
		Info("Creating new SymbolRepository with MainDB")

	return &SymbolRepository{
		db: database.MainDB,
	}
}

// WithDB allows overriding the underlying *gorm.DB instance.
// Useful for tests or custom sessions/transactions.
func (r *SymbolRepository) WithDB(db *gorm.DB) *SymbolRepository {
	return &SymbolRepository{db: db}
}

// Create inserts a new symbol.
func (r *SymbolRepository) Create(ctx context.Context, symbol *model.Symbol) error {
	err := r.db.WithContext(ctx).Create(symbol).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "SymbolRepository",
			"op":   "Create",
			"name": symbol.Name,
		}).WithError(err).Error("Failed to create symbol")
		return err
	}
	return nil
}

// FindByName fetches a symbol by its unique name.
// Returns (nil, nil) if not found.
func (r *SymbolRepository) FindByName(ctx context.Context, name string) (*model.Symbol, error) {
	var symbol model.Symbol

	err := r.db.WithContext(ctx).
		Where("name = ?", name).
		First(&symbol).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.WithFields(map[string]interface{}{
				"repo": "SymbolRepository",
				"op":   "FindByName",
				"name": name,
			}).Info("Symbol not found by name")
			return nil, nil
		}

		logger.WithFields(map[string]interface{}{
			"repo": "SymbolRepository",
			"op":   "FindByName",
			"name": name,
		}).WithError(err).Error("Failed to fetch symbol by name")

		return nil, err
	}

	return &symbol, nil
}

// FindActive returns all symbols with data fetching enabled, in stable
// enumeration order. Fanout order is enumeration order, not priority order.
func (r *SymbolRepository) FindActive(ctx context.Context) ([]model.Symbol, error) {
	var symbols []model.Symbol

	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("id ASC").
		Find(&symbols).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "SymbolRepository",
			"op":   "FindActive",
		}).WithError(err).Error("Failed to fetch active symbols")

		return nil, err
	}

	logger.WithFields(map[string]interface{}{
		"repo":        "SymbolRepository",
		"op":          "FindActive",
		"rows_return": len(symbols),
	}).Debug("Active symbols fetched")

	return symbols, nil
}
