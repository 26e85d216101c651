package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lsalmeida/ecoeletronico-backend/pkg/enums"
)

// Submission records one discarded-electronics entry awaiting admin review.
type Submission struct {
	ID         uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	AccountID  uuid.UUID              `gorm:"column:account_id;type:uuid;not null;index"`
	Reference  string                 `gorm:"column:reference;type:text;not null;uniqueIndex"`
	Line       enums.MaterialLine     `gorm:"column:line;type:text;not null"`
	Material   string                 `gorm:"column:material;type:text;not null"`
	Quantity   int                    `gorm:"column:quantity;not null"`
	Points     decimal.Decimal        `gorm:"column:points;type:numeric(10,2);not null"`
	Status     enums.SubmissionStatus `gorm:"column:status;type:text;not null;default:pending;index"`
	Custom     bool                   `gorm:"column:custom;not null;default:false"`
	ResolvedAt *time.Time             `gorm:"column:resolved_at"`
	CreatedAt  time.Time              `gorm:"column:created_at;autoCreateTime"`
}
