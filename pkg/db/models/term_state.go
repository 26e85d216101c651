package models

import "time"

// TermState is the single-row table holding the current term number.
type TermState struct {
	ID          int       `gorm:"primaryKey"`
	CurrentTerm int       `gorm:"column:current_term;not null;default:1"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (TermState) TableName() string {
	return "term_state"
}
