package models

import "time"

// BazaarWindow is the single-row table controlling whether voucher sales
// are open and for which term.
type BazaarWindow struct {
	ID       int        `gorm:"primaryKey"`
	Open     bool       `gorm:"column:open;not null;default:false"`
	Term     int        `gorm:"column:term;not null;default:1"`
	OpenedAt *time.Time `gorm:"column:opened_at"`
	ClosedAt *time.Time `gorm:"column:closed_at"`
}

func (BazaarWindow) TableName() string {
	return "bazaar_window"
}
