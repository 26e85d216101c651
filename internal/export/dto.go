package export

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lsalmeida/ecoeletronico-backend/pkg/db/models"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/enums"
)

// SubmissionRecord is the backup projection of a submission.
type SubmissionRecord struct {
	ID         uuid.UUID              `json:"id"`
	AccountID  uuid.UUID              `json:"account_id"`
	Reference  string                 `json:"reference"`
	Line       enums.MaterialLine     `json:"line"`
	Material   string                 `json:"material"`
	Quantity   int                    `json:"quantity"`
	Points     decimal.Decimal        `json:"points"`
	Status     enums.SubmissionStatus `json:"status"`
	Custom     bool                   `json:"custom"`
	ResolvedAt *time.Time             `json:"resolved_at,omitempty"`
	CreatedAt  time.Time              `json:"created_at"`
}

// RedemptionRecord is the backup projection of a redemption.
type RedemptionRecord struct {
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

// ImpactRecord is the backup projection of an anonymous impact event.
type ImpactRecord struct {
	ID          uuid.UUID          `json:"id"`
	Line        enums.MaterialLine `json:"line"`
	Material    string             `json:"material"`
	Quantity    int                `json:"quantity"`
	WeightKg    float64            `json:"weight_kg"`
	CO2Kg       float64            `json:"co2_avoided_kg"`
	EnergyKWh   float64            `json:"energy_saved_kwh"`
	WaterLiters float64            `json:"water_saved_liters"`
	CreatedAt   time.Time          `json:"created_at"`
}

func submissionRecordFromModel(m *models.Submission) SubmissionRecord {
	return SubmissionRecord{
		ID:         m.ID,
		AccountID:  m.AccountID,
		Reference:  m.Reference,
		Line:       m.Line,
		Material:   m.Material,
		Quantity:   m.Quantity,
		Points:     m.Points,
		Status:     m.Status,
		Custom:     m.Custom,
		ResolvedAt: m.ResolvedAt,
		CreatedAt:  m.CreatedAt,
	}
}

func redemptionRecordFromModel(m *models.Redemption) RedemptionRecord {
	return RedemptionRecord{
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

func impactRecordFromModel(m *models.ImpactEvent) ImpactRecord {
	return ImpactRecord{
		ID:          m.ID,
		Line:        m.Line,
		Material:    m.Material,
		Quantity:    m.Quantity,
		WeightKg:    m.WeightKg,
		CO2Kg:       m.CO2Kg,
		EnergyKWh:   m.EnergyKWh,
		WaterLiters: m.WaterLiters,
		CreatedAt:   m.CreatedAt,
	}
}
