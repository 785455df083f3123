package model

import "time"

// Symbol is a tradeable instrument tracked by the ingestion pipeline,
// named in exchange format (e.g. "BTC-USDT"). Operators create symbols
// and toggle IsActive; the pipeline never deletes them.
type Symbol struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(20);not null;uniqueIndex" json:"name"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Symbol) TableName() string {
	return "symbols"
}

// SymbolView is the API representation of a symbol.
type SymbolView struct {
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}

func (s Symbol) ConvertToView() SymbolView {
	return SymbolView{
		Name:     s.Name,
		IsActive: s.IsActive,
	}
}
