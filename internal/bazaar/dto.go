package bazaar

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lsalmeida/ecoeletronico-backend/pkg/db/models"
)

// WindowDTO is the transport shape of the voucher sales window.
type WindowDTO struct {
	Open     bool       `json:"open"`
	Term     int        `json:"term"`
	OpenedAt *time.Time `json:"opened_at,omitempty"`
	ClosedAt *time.Time `json:"closed_at,omitempty"`
}

// VoucherDTO is the transport shape of an entry voucher.
type VoucherDTO struct {
	ID          uuid.UUID       `json:"id"`
	Code        string          `json:"code"`
	AccountID   uuid.UUID       `json:"account_id"`
	AccountName string          `json:"account_name"`
	ClassGroup  string          `json:"class_group"`
	Term        int             `json:"term"`
	Cost        decimal.Decimal `json:"cost"`
	Used        bool            `json:"used"`
	UsedAt      *time.Time      `json:"used_at,omitempty"`
	Notes       *string         `json:"notes,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// UseRequest burns a voucher at the door.
type UseRequest struct {
	Code  string  `json:"code" validate:"required"`
	Notes *string `json:"notes,omitempty"`
}

// Stats summarizes voucher sales for the current window term.
type Stats struct {
	Term   int   `json:"term"`
	Open   bool  `json:"open"`
	Total  int64 `json:"total"`
	Used   int64 `json:"used"`
	Unused int64 `json:"unused"`
}

func WindowFromModel(m *models.BazaarWindow) *WindowDTO {
	if m == nil {
		return nil
	}
	return &WindowDTO{
		Open:     m.Open,
		Term:     m.Term,
		OpenedAt: m.OpenedAt,
		ClosedAt: m.ClosedAt,
	}
}

func VoucherFromModel(m *models.BazaarVoucher) *VoucherDTO {
	if m == nil {
		return nil
	}
	return &VoucherDTO{
		ID:          m.ID,
		Code:        m.Code,
		AccountID:   m.AccountID,
		AccountName: m.AccountName,
		ClassGroup:  m.ClassGroup,
		Term:        m.Term,
		Cost:        m.Cost,
		Used:        m.Used,
		UsedAt:      m.UsedAt,
		Notes:       m.Notes,
		CreatedAt:   m.CreatedAt,
	}
}
