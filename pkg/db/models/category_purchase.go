package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/lsalmeida/ecoeletronico-backend/pkg/enums"
)

// CategoryPurchase marks a coupon category as bought by an account within a
// term. The unique index closes the one-coupon-per-category-per-term rule.
type CategoryPurchase struct {
	ID        uuid.UUID            `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	AccountID uuid.UUID            `gorm:"column:account_id;type:uuid;not null;uniqueIndex:ux_category_purchase"`
	Category  enums.CouponCategory `gorm:"column:category;type:text;not null;uniqueIndex:ux_category_purchase"`
	Term      int                  `gorm:"column:term;not null;uniqueIndex:ux_category_purchase"`
	CreatedAt time.Time            `gorm:"column:created_at;autoCreateTime"`
}

func (CategoryPurchase) TableName() string {
	return "account_category_purchases"
}
