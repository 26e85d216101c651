package terms

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lsalmeida/ecoeletronico-backend/pkg/db/models"
)

// AdvanceRequest asks for a transition into the target term.
type AdvanceRequest struct {
	TargetTerm int `json:"target_term" validate:"required,min=1,max=4"`
}

// RankingEntry is one frozen row inside a term snapshot.
type RankingEntry struct {
	Position            int             `json:"position"`
	AccountID           uuid.UUID       `json:"account_id"`
	Name                string          `json:"name"`
	ClassGroup          string          `json:"class_group"`
	Balance             decimal.Decimal `json:"balance"`
	ApprovedSubmissions int             `json:"approved_submissions"`
}

// SnapshotDTO is the transport shape of a closed term.
type SnapshotDTO struct {
	ID               uuid.UUID      `json:"id"`
	Term             int            `json:"term"`
	ClosedAt         time.Time      `json:"closed_at"`
	TotalAccounts    int            `json:"total_accounts"`
	TotalSubmissions int            `json:"total_submissions"`
	TotalApproved    int            `json:"total_approved"`
	Ranking          []RankingEntry `json:"ranking"`
}

// AdvanceResult reports a completed term transition.
type AdvanceResult struct {
	PreviousTerm  int          `json:"previous_term"`
	CurrentTerm   int          `json:"current_term"`
	ResetAccounts int64        `json:"reset_accounts"`
	Snapshot      *SnapshotDTO `json:"snapshot"`
}

func SnapshotFromModel(m *models.TermSnapshot) (*SnapshotDTO, error) {
	if m == nil {
		return nil, nil
	}

	var ranking []RankingEntry
	if len(m.Ranking) > 0 {
		if err := json.Unmarshal(m.Ranking, &ranking); err != nil {
			return nil, err
		}
	}

	return &SnapshotDTO{
		ID:               m.ID,
		Term:             m.Term,
		ClosedAt:         m.ClosedAt,
		TotalAccounts:    m.TotalAccounts,
		TotalSubmissions: m.TotalSubmissions,
		TotalApproved:    m.TotalApproved,
		Ranking:          ranking,
	}, nil
}
