package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lsalmeida/ecoeletronico-backend/pkg/enums"
)

// Redemption records a coupon purchase. Points are debited when the row is
// created; rejection refunds them.
type Redemption struct {
	ID         uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	AccountID  uuid.UUID              `gorm:"column:account_id;type:uuid;not null;index"`
	Category   enums.CouponCategory   `gorm:"column:category;type:text;not null"`
	CouponName string                 `gorm:"column:coupon_name;type:text;not null"`
	Code       string                 `gorm:"column:code;type:text;not null;uniqueIndex"`
	Cost       decimal.Decimal        `gorm:"column:cost;type:numeric(10,2);not null"`
	Term       int                    `gorm:"column:term;not null"`
	Status     enums.RedemptionStatus `gorm:"column:status;type:text;not null;default:pending;index"`
	ResolvedAt *time.Time             `gorm:"column:resolved_at"`
	CreatedAt  time.Time              `gorm:"column:created_at;autoCreateTime"`
}
