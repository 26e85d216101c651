package submissions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/lsalmeida/ecoeletronico-backend/internal/accounts"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/catalog"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/db/models"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/enums"
	pkgerrors "github.com/lsalmeida/ecoeletronico-backend/pkg/errors"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/impact"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/metrics"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/pagination"
)

// Service defines the submission lifecycle operations.
type Service interface {
	Submit(ctx context.Context, accountID uuid.UUID, req SubmitRequest) (*SubmitResponse, error)
	ListMine(ctx context.Context, accountID uuid.UUID, params pagination.Params) (*Page, error)
	ListPending(ctx context.Context, params pagination.Params) (*Page, error)
	Approve(ctx context.Context, id uuid.UUID) (*SubmissionDTO, error)
	Reject(ctx context.Context, id uuid.UUID) (*SubmissionDTO, error)
}

type impactRecorder interface {
	Record(ctx context.Context, line enums.MaterialLine, totals impact.Totals) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	tx       txRunner
	repo     Repository
	accounts accounts.Repository
	impact   impactRecorder
	metrics  *metrics.DecisionMetrics
}

// ServiceParams bundles the dependencies required to build a submissions service.
type ServiceParams struct {
	TxRunner txRunner
	Repo     Repository
	Accounts accounts.Repository
	Impact   impactRecorder
	Metrics  *metrics.DecisionMetrics
}

// NewService constructs a submissions service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.TxRunner == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("submissions repository is required")
	}
	if params.Accounts == nil {
		return nil, fmt.Errorf("accounts repository is required")
	}
	return &service{
		tx:       params.TxRunner,
		repo:     params.Repo,
		accounts: params.Accounts,
		impact:   params.Impact,
		metrics:  params.Metrics,
	}, nil
}

func (s *service) Submit(ctx context.Context, accountID uuid.UUID, req SubmitRequest) (*SubmitResponse, error) {
	if !req.Line.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid material line")
	}
	if req.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	materialName := strings.TrimSpace(req.Material)
	if materialName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "material is required")
	}

	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup account")
	}

	unitPoints, custom, err := resolveUnitPoints(req.Line, materialName, req.CustomUnitPoints)
	if err != nil {
		return nil, err
	}

	submission := &models.Submission{
		AccountID: accountID,
		Reference: newReference(),
		Line:      req.Line,
		Material:  materialName,
		Quantity:  req.Quantity,
		Points:    unitPoints.Mul(decimal.NewFromInt(int64(req.Quantity))),
		Status:    enums.SubmissionStatusPending,
		Custom:    custom,
	}
	if err := s.repo.Create(ctx, submission); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create submission")
	}

	resp := &SubmitResponse{Submission: fromModel(submission)}
	if totals, ok := impact.Calculate(materialName, req.Quantity); ok {
		resp.Impact = &totals
		if account.LGPDConsent && s.impact != nil {
			if err := s.impact.Record(ctx, req.Line, totals); err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record impact event")
			}
		}
	}
	return resp, nil
}

func (s *service) ListMine(ctx context.Context, accountID uuid.UUID, params pagination.Params) (*Page, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	rows, err := s.repo.ListByAccount(ctx, accountID, cursor, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list submissions")
	}
	return buildPage(rows, params.Limit), nil
}

func (s *service) ListPending(ctx context.Context, params pagination.Params) (*Page, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	rows, err := s.repo.ListPending(ctx, cursor, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pending submissions")
	}
	return buildPage(rows, params.Limit), nil
}

// Approve credits the submission points and the status flip in a single
// transaction so a crash cannot leave one without the other.
func (s *service) Approve(ctx context.Context, id uuid.UUID) (*SubmissionDTO, error) {
	submission, err := s.findSubmission(ctx, id)
	if err != nil {
		return nil, err
	}
	if submission.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeAlreadyResolved, "submission already resolved")
	}

	now := time.Now().UTC()
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		ok, err := repo.UpdateStatusIfPending(ctx, id, enums.SubmissionStatusApproved, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "approve submission")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeAlreadyResolved, "submission already resolved")
		}

		txAccounts := s.accounts.WithTx(tx)
		credited, err := txAccounts.AdjustBalance(ctx, submission.AccountID, submission.Points)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "credit points")
		}
		if !credited {
			return pkgerrors.New(pkgerrors.CodeInternal, "credit did not apply")
		}
		if err := txAccounts.IncrementApproved(ctx, submission.AccountID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increment approved count")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncSubmissionDecision(string(enums.SubmissionStatusApproved))
	submission.Status = enums.SubmissionStatusApproved
	submission.ResolvedAt = &now
	return fromModel(submission), nil
}

func (s *service) Reject(ctx context.Context, id uuid.UUID) (*SubmissionDTO, error) {
	submission, err := s.findSubmission(ctx, id)
	if err != nil {
		return nil, err
	}
	if submission.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeAlreadyResolved, "submission already resolved")
	}

	now := time.Now().UTC()
	ok, err := s.repo.UpdateStatusIfPending(ctx, id, enums.SubmissionStatusRejected, now)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reject submission")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeAlreadyResolved, "submission already resolved")
	}

	s.metrics.IncSubmissionDecision(string(enums.SubmissionStatusRejected))
	submission.Status = enums.SubmissionStatusRejected
	submission.ResolvedAt = &now
	return fromModel(submission), nil
}

func (s *service) findSubmission(ctx context.Context, id uuid.UUID) (*models.Submission, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "submission id required")
	}
	submission, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "submission not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup submission")
	}
	return submission, nil
}

func resolveUnitPoints(line enums.MaterialLine, material string, suggested *decimal.Decimal) (decimal.Decimal, bool, error) {
	if entry, ok := catalog.Find(line, material); ok {
		return entry.UnitPoints, false, nil
	}

	if suggested == nil {
		return decimal.Zero, false, pkgerrors.New(pkgerrors.CodeValidation, "custom materials require custom_unit_points")
	}
	if suggested.LessThan(catalog.CustomUnitPointsMin) || suggested.GreaterThan(catalog.CustomUnitPointsMax) {
		return decimal.Zero, false, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("custom_unit_points must be between %s and %s",
				catalog.CustomUnitPointsMin, catalog.CustomUnitPointsMax))
	}
	return *suggested, true, nil
}

// newReference builds a discard reference unique even for submissions
// landing in the same millisecond.
func newReference() string {
	suffix := strings.ToUpper(uuid.NewString()[:8])
	return fmt.Sprintf("DSC-%d-%s", time.Now().UnixMilli(), suffix)
}

func buildPage(rows []models.Submission, limit int) *Page {
	normalized := pagination.NormalizeLimit(limit)

	page := &Page{Items: make([]SubmissionDTO, 0, len(rows))}
	hasMore := len(rows) > normalized
	if hasMore {
		rows = rows[:normalized]
	}
	for i := range rows {
		page.Items = append(page.Items, *fromModel(&rows[i]))
	}
	if hasMore && len(rows) > 0 {
		last := rows[len(rows)-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return page
}
