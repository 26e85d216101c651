package terms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/lsalmeida/ecoeletronico-backend/internal/accounts"
	"github.com/lsalmeida/ecoeletronico-backend/internal/submissions"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/db"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/db/models"
	pkgerrors "github.com/lsalmeida/ecoeletronico-backend/pkg/errors"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/metrics"
)

const minTerm = 1

// Service defines the trimester lifecycle operations.
type Service interface {
	Current(ctx context.Context) (int, error)
	Advance(ctx context.Context, req AdvanceRequest) (*AdvanceResult, error)
	Snapshots(ctx context.Context) ([]SnapshotDTO, error)
	Snapshot(ctx context.Context, term int) (*SnapshotDTO, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	tx          txRunner
	repo        Repository
	accounts    accounts.Repository
	submissions submissions.Repository
	metrics     *metrics.DecisionMetrics
}

// ServiceParams bundles the dependencies required to build a terms service.
type ServiceParams struct {
	TxRunner    txRunner
	Repo        Repository
	Accounts    accounts.Repository
	Submissions submissions.Repository
	Metrics     *metrics.DecisionMetrics
}

// NewService constructs a terms service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.TxRunner == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("terms repository is required")
	}
	if params.Accounts == nil {
		return nil, fmt.Errorf("accounts repository is required")
	}
	if params.Submissions == nil {
		return nil, fmt.Errorf("submissions repository is required")
	}
	return &service{
		tx:          params.TxRunner,
		repo:        params.Repo,
		accounts:    params.Accounts,
		submissions: params.Submissions,
		metrics:     params.Metrics,
	}, nil
}

func (s *service) Current(ctx context.Context) (int, error) {
	term, err := s.repo.CurrentTerm(ctx)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load current term")
	}
	return term, nil
}

// Advance freezes the closing term and opens the target one. The
// snapshot, the balance reset, and the state change land in a single
// transaction so a failure leaves the closing term untouched. Terms only
// move forward; each term is closed exactly once.
func (s *service) Advance(ctx context.Context, req AdvanceRequest) (*AdvanceResult, error) {
	if req.TargetTerm < minTerm {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("target_term must be at least %d", minTerm))
	}

	current, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	if req.TargetTerm == current {
		return nil, pkgerrors.New(pkgerrors.CodeSameTerm, "already in the target term")
	}
	if req.TargetTerm < current {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "target term precedes the current term")
	}

	result := &AdvanceResult{PreviousTerm: current, CurrentTerm: req.TargetTerm}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txTerms := s.repo.WithTx(tx)
		txAccounts := s.accounts.WithTx(tx)
		txSubmissions := s.submissions.WithTx(tx)

		ranked, err := txAccounts.ListRanked(ctx)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list ranked accounts")
		}
		totalSubmissions, err := txSubmissions.CountAll(ctx)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count submissions")
		}
		totalApproved, err := txSubmissions.CountApproved(ctx)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count approved submissions")
		}

		ranking := buildRanking(ranked)
		rankingJSON, err := json.Marshal(ranking)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode ranking")
		}

		snapshot := &models.TermSnapshot{
			Term:             current,
			ClosedAt:         time.Now().UTC(),
			TotalAccounts:    len(ranked),
			TotalSubmissions: int(totalSubmissions),
			TotalApproved:    int(totalApproved),
			Ranking:          rankingJSON,
			Committed:        true,
		}
		if err := txTerms.CreateSnapshot(ctx, snapshot); err != nil {
			// A concurrent advance already closed this term.
			if db.IsUniqueViolation(err, "ux_term_snapshots_term") {
				return pkgerrors.New(pkgerrors.CodeConflict, "term already closed")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create term snapshot")
		}

		reset, err := txAccounts.ResetAllBalances(ctx)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reset balances")
		}
		if err := txTerms.SetCurrentTerm(ctx, req.TargetTerm); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set current term")
		}

		result.ResetAccounts = reset
		dto, err := SnapshotFromModel(snapshot)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode snapshot")
		}
		result.Snapshot = dto
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncTermTransition()
	return result, nil
}

func (s *service) Snapshots(ctx context.Context) ([]SnapshotDTO, error) {
	rows, err := s.repo.ListSnapshots(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list snapshots")
	}

	out := make([]SnapshotDTO, 0, len(rows))
	for i := range rows {
		dto, err := SnapshotFromModel(&rows[i])
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode snapshot")
		}
		out = append(out, *dto)
	}
	return out, nil
}

func (s *service) Snapshot(ctx context.Context, term int) (*SnapshotDTO, error) {
	snapshot, err := s.repo.FindSnapshotByTerm(ctx, term)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "term snapshot not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup snapshot")
	}

	dto, err := SnapshotFromModel(snapshot)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode snapshot")
	}
	return dto, nil
}

func buildRanking(ranked []models.Account) []RankingEntry {
	entries := make([]RankingEntry, 0, len(ranked))
	for i, account := range ranked {
		entries = append(entries, RankingEntry{
			Position:            i + 1,
			AccountID:           account.ID,
			Name:                account.Name,
			ClassGroup:          account.ClassGroup,
			Balance:             account.Balance,
			ApprovedSubmissions: account.ApprovedSubmissions,
		})
	}
	return entries
}
