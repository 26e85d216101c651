package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BazaarVoucher is a single-use entry ticket for the physical bazaar.
// Name and class group are denormalized so staff can verify at the door.
type BazaarVoucher struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Code        string          `gorm:"column:code;type:text;not null;uniqueIndex"`
	AccountID   uuid.UUID       `gorm:"column:account_id;type:uuid;not null;index"`
	AccountName string          `gorm:"column:account_name;type:text;not null"`
	ClassGroup  string          `gorm:"column:class_group;type:text;not null"`
	Term        int             `gorm:"column:term;not null"`
	Cost        decimal.Decimal `gorm:"column:cost;type:numeric(10,2);not null"`
	Used        bool            `gorm:"column:used;not null;default:false"`
	UsedAt      *time.Time      `gorm:"column:used_at"`
	Notes       *string         `gorm:"column:notes"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
}
