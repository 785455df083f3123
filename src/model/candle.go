package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Candle is one 15-minute OHLCV bar for a symbol. The composite unique
// index on (symbol_id, timestamp) is what makes ingestion idempotent:
// duplicate bars are dropped by the insert-or-ignore path, never updated.
type Candle struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	SymbolID  uint            `gorm:"not null;uniqueIndex:ux_candles_symbol_timestamp,priority:1;index:idx_candles_symbol_timestamp,priority:1" json:"symbol_id"`
	Timestamp time.Time       `gorm:"not null;uniqueIndex:ux_candles_symbol_timestamp,priority:2;index:idx_candles_symbol_timestamp,priority:2" json:"timestamp"`
	Open      decimal.Decimal `gorm:"type:decimal(18,8);not null" json:"open"`
	High      decimal.Decimal `gorm:"type:decimal(18,8);not null" json:"high"`
	Low       decimal.Decimal `gorm:"type:decimal(18,8);not null" json:"low"`
	Close     decimal.Decimal `gorm:"type:decimal(18,8);not null" json:"close"`
	Volume    decimal.Decimal `gorm:"type:decimal(24,8);not null" json:"volume"`

	Symbol *Symbol `gorm:"constraint:OnDelete:CASCADE" json:"symbol,omitempty"`
}

func (Candle) TableName() string {
	return "candles"
}

// CandleView is the API representation of a candle.
type CandleView struct {
	Timestamp time.Time       `json:"timestamp"`
	Open      decimal.Decimal `json:"open"`
	High      decimal.Decimal `json:"high"`
	Low       decimal.Decimal `json:"low"`
	Close     decimal.Decimal `json:"close"`
	Volume    decimal.Decimal `json:"volume"`
}

func (c Candle) ConvertToView() CandleView {
	return CandleView{
		Timestamp: c.Timestamp,
		Open:      c.Open,
		High:      c.High,
		Low:       c.Low,
		Close:     c.Close,
		Volume:    c.Volume,
	}
}
