package redemptions

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lsalmeida/ecoeletronico-backend/pkg/db/models"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/enums"
)

// PurchaseRequest asks for a coupon in the given subject category.
type PurchaseRequest struct {
	Category enums.CouponCategory `json:"category" validate:"required"`
}

// RedemptionDTO is the transport shape of a redemption.
type RedemptionDTO struct {
	ID         uuid.UUID              `json:"id"`
	AccountID  uuid.UUID              `json:"account_id"`
	Category   enums.CouponCategory   `json:"category"`
	CouponName string                 `json:"coupon_name"`
	Code       string                 `json:"code"`
	Cost       decimal.Decimal        `json:"cost"`
	Term       int                    `json:"term"`
	Status     enums.RedemptionStatus `json:"status"`
	ResolvedAt *time.Time             `json:"resolved_at,omitempty"`
	CreatedAt  time.Time              `json:"created_at"`
}

// CouponOffer is one storefront row: a category, its price, and whether
// the caller already bought it this term.
type CouponOffer struct {
	Category  enums.CouponCategory `json:"category"`
	Name      string               `json:"name"`
	Cost      decimal.Decimal      `json:"cost"`
	Purchased bool                 `json:"purchased"`
}

// Page is a cursor-paged list of redemptions.
type Page struct {
	Items      []RedemptionDTO `json:"items"`
	NextCursor string          `json:"next_cursor,omitempty"`
}

func fromModel(m *models.Redemption) *RedemptionDTO {
	if m == nil {
		return nil
	}

	return &RedemptionDTO{
		ID:         m.ID,
		AccountID:  m.AccountID,
		Category:   m.Category,
		CouponName: m.CouponName,
		Code:       m.Code,
		Cost:       m.Cost,
		Term:       m.Term,
		Status:     m.Status,
		ResolvedAt: m.ResolvedAt,
		CreatedAt:  m.CreatedAt,
	}
}
