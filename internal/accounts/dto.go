package accounts

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lsalmeida/ecoeletronico-backend/pkg/db/models"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/enums"
)

// AccountDTO is the transport shape that omits sensitive credentials.
type AccountDTO struct {
	ID                  uuid.UUID       `json:"id"`
	Email               string          `json:"email"`
	Name                string          `json:"name"`
	ClassGroup          string          `json:"class_group"`
	Balance             decimal.Decimal `json:"balance"`
	ApprovedSubmissions int             `json:"approved_submissions"`
	LGPDConsent         bool            `json:"lgpd_consent"`
	IsActive            bool            `json:"is_active"`
	Role                enums.Role      `json:"role"`
	LastLoginAt         *time.Time      `json:"last_login_at,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// ProfileDTO is the /account/me payload with the current-term purchases.
type ProfileDTO struct {
	Account             *AccountDTO            `json:"account"`
	CurrentTerm         int                    `json:"current_term"`
	PurchasedCategories []enums.CouponCategory `json:"purchased_categories"`
}

// RankingEntryDTO is one row of the admin ranking listing.
type RankingEntryDTO struct {
	ID                  uuid.UUID       `json:"id"`
	Name                string          `json:"name"`
	ClassGroup          string          `json:"class_group"`
	Balance             decimal.Decimal `json:"balance"`
	ApprovedSubmissions int             `json:"approved_submissions"`
	IsActive            bool            `json:"is_active"`
}

func FromModel(a *models.Account) *AccountDTO {
	if a == nil {
		return nil
	}

	return &AccountDTO{
		ID:                  a.ID,
		Email:               a.Email,
		Name:                a.Name,
		ClassGroup:          a.ClassGroup,
		Balance:             a.Balance,
		ApprovedSubmissions: a.ApprovedSubmissions,
		LGPDConsent:         a.LGPDConsent,
		IsActive:            a.IsActive,
		Role:                a.Role,
		LastLoginAt:         a.LastLoginAt,
		CreatedAt:           a.CreatedAt,
		UpdatedAt:           a.UpdatedAt,
	}
}

func rankingEntryFromModel(a models.Account) RankingEntryDTO {
	return RankingEntryDTO{
		ID:                  a.ID,
		Name:                a.Name,
		ClassGroup:          a.ClassGroup,
		Balance:             a.Balance,
		ApprovedSubmissions: a.ApprovedSubmissions,
		IsActive:            a.IsActive,
	}
}
