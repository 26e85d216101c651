package submissions

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lsalmeida/ecoeletronico-backend/pkg/db/models"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/enums"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/impact"
)

// SubmitRequest is the payload for registering a discarded item.
type SubmitRequest struct {
	Line     enums.MaterialLine `json:"line" validate:"required"`
	Material string             `json:"material" validate:"required"`
	Quantity int                `json:"quantity" validate:"required,min=1"`

	// CustomUnitPoints is only honored for materials outside the catalog.
	CustomUnitPoints *decimal.Decimal `json:"custom_unit_points,omitempty"`
}

// SubmissionDTO is the transport shape of a submission.
type SubmissionDTO struct {
	ID         uuid.UUID              `json:"id"`
	AccountID  uuid.UUID              `json:"account_id"`
	Reference  string                 `json:"reference"`
	Line       enums.MaterialLine     `json:"line"`
	LineLabel  string                 `json:"line_label"`
	Material   string                 `json:"material"`
	Quantity   int                    `json:"quantity"`
	Points     decimal.Decimal        `json:"points"`
	Status     enums.SubmissionStatus `json:"status"`
	Custom     bool                   `json:"custom"`
	ResolvedAt *time.Time             `json:"resolved_at,omitempty"`
	CreatedAt  time.Time              `json:"created_at"`
}

// SubmitResponse pairs the created submission with its impact preview.
// The preview is informational; points are only credited on approval.
type SubmitResponse struct {
	Submission *SubmissionDTO `json:"submission"`
	Impact     *impact.Totals `json:"impact,omitempty"`
}

// Page is a cursor-paged list of submissions.
type Page struct {
	Items      []SubmissionDTO `json:"items"`
	NextCursor string          `json:"next_cursor,omitempty"`
}

func fromModel(m *models.Submission) *SubmissionDTO {
	if m == nil {
		return nil
	}

	return &SubmissionDTO{
		ID:         m.ID,
		AccountID:  m.AccountID,
		Reference:  m.Reference,
		Line:       m.Line,
		LineLabel:  m.Line.Label(),
		Material:   m.Material,
		Quantity:   m.Quantity,
		Points:     m.Points,
		Status:     m.Status,
		Custom:     m.Custom,
		ResolvedAt: m.ResolvedAt,
		CreatedAt:  m.CreatedAt,
	}
}
