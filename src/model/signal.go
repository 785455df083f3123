package model

import "time"

// Signal directions as produced by the AI analysis.
const (
	DirectionBullish = "BULLISH"
	DirectionBearish = "BEARISH"
	DirectionNeutral = "NEUTRAL"
)

// Signal is the AI prediction generated for one candle. At most one
// signal exists per candle (unique index on candle_id); the durable row
// is the source of truth, the cache entry under "signal:<symbol>" is a
// denormalized snapshot with a 24h expiry.
type Signal struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	CandleID uint `gorm:"not null;uniqueIndex" json:"candle_id"`

	DirectionNextCandle  string `gorm:"type:varchar(10);not null" json:"direction_next_candle"`
	ConfidenceNextCandle int    `gorm:"not null" json:"confidence_next_candle"`

	Direction3rdCandle  string `gorm:"type:varchar(10);not null" json:"direction_3rd_candle"`
	Confidence3rdCandle int    `gorm:"not null" json:"confidence_3rd_candle"`

	Direction5thCandle  string `gorm:"type:varchar(10);not null" json:"direction_5th_candle"`
	Confidence5thCandle int    `gorm:"not null" json:"confidence_5th_candle"`

	Direction10thCandle  string `gorm:"type:varchar(10);not null" json:"direction_10th_candle"`
	Confidence10thCandle int    `gorm:"not null" json:"confidence_10th_candle"`

	ProbabilityText string `gorm:"type:text;not null" json:"probability_text"`
	RiskText        string `gorm:"type:text;not null" json:"risk_text"`

	CreatedAt time.Time `json:"created_at"`

	Candle *Candle `gorm:"constraint:OnDelete:CASCADE" json:"candle,omitempty"`
}

func (Signal) TableName() string {
	return "signals"
}

// SignalView is the API and cache representation of a signal. Symbol and
// Timestamp are denormalized from the owning candle at serialization time.
type SignalView struct {
	Symbol    string    `json:"symbol"`
	Timestamp time.Time `json:"timestamp"`

	DirectionNextCandle  string `json:"direction_next_candle"`
	ConfidenceNextCandle int    `json:"confidence_next_candle"`

	Direction3rdCandle  string `json:"direction_3rd_candle"`
	Confidence3rdCandle int    `json:"confidence_3rd_candle"`

	Direction5thCandle  string `json:"direction_5th_candle"`
	Confidence5thCandle int    `json:"confidence_5th_candle"`

	Direction10thCandle  string `json:"direction_10th_candle"`
	Confidence10thCandle int    `json:"confidence_10th_candle"`

	ProbabilityText string `json:"probability_text"`
	RiskText        string `json:"risk_text"`
}

// ConvertToView builds the serialized representation. The candle with its
// symbol must be loaded on the signal.
func (s Signal) ConvertToView() SignalView {
	view := SignalView{
		DirectionNextCandle:  s.DirectionNextCandle,
		ConfidenceNextCandle: s.ConfidenceNextCandle,
		Direction3rdCandle:   s.Direction3rdCandle,
		Confidence3rdCandle:  s.Confidence3rdCandle,
		Direction5thCandle:   s.Direction5thCandle,
		Confidence5thCandle:  s.Confidence5thCandle,
		Direction10thCandle:  s.Direction10thCandle,
		Confidence10thCandle: s.Confidence10thCandle,
		ProbabilityText:      s.ProbabilityText,
		RiskText:             s.RiskText,
	}

	if s.Candle != nil {
		view.Timestamp = s.Candle.Timestamp
		if s.Candle.Symbol != nil {
			view.Symbol = s.Candle.Symbol.Name
		}
	}

	return view
}
