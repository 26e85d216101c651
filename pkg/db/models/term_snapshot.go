package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// TermSnapshot freezes the ranking and totals of a closed term. Rows are
// append-only; the committed flag flips inside the same transaction that
// resets balances.
type TermSnapshot struct {
	ID               uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Term             int             `gorm:"column:term;not null;uniqueIndex"`
	ClosedAt         time.Time       `gorm:"column:closed_at;not null"`
	TotalAccounts    int             `gorm:"column:total_accounts;not null"`
	TotalSubmissions int             `gorm:"column:total_submissions;not null"`
	TotalApproved    int             `gorm:"column:total_approved;not null"`
	Ranking          json.RawMessage `gorm:"column:ranking;type:jsonb"`
	Committed        bool            `gorm:"column:committed;not null;default:false"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime"`
}
