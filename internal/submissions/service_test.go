package submissions

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/lsalmeida/ecoeletronico-backend/internal/accounts"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/db/models"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/enums"
	pkgerrors "github.com/lsalmeida/ecoeletronico-backend/pkg/errors"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/impact"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/pagination"
)

type stubTxRunner struct{}

func (s stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeRepository struct {
	Repository

	createFn                func(ctx context.Context, submission *models.Submission) error
	findByIDFn              func(ctx context.Context, id uuid.UUID) (*models.Submission, error)
	listByAccountFn         func(ctx context.Context, accountID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Submission, error)
	updateStatusIfPendingFn func(ctx context.Context, id uuid.UUID, status enums.SubmissionStatus, resolvedAt time.Time) (bool, error)
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository {
	return f
}

func (f *fakeRepository) Create(ctx context.Context, submission *models.Submission) error {
	return f.createFn(ctx, submission)
}

func (f *fakeRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Submission, error) {
	return f.findByIDFn(ctx, id)
}

func (f *fakeRepository) ListByAccount(ctx context.Context, accountID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Submission, error) {
	return f.listByAccountFn(ctx, accountID, cursor, limit)
}

func (f *fakeRepository) UpdateStatusIfPending(ctx context.Context, id uuid.UUID, status enums.SubmissionStatus, resolvedAt time.Time) (bool, error) {
	return f.updateStatusIfPendingFn(ctx, id, status, resolvedAt)
}

type fakeAccounts struct {
	accounts.Repository

	account *models.Account

	adjusted        []decimal.Decimal
	approvedCount   int
	adjustBalanceFn func(ctx context.Context, id uuid.UUID, delta decimal.Decimal) (bool, error)
}

func (f *fakeAccounts) WithTx(tx *gorm.DB) accounts.Repository {
	return f
}

func (f *fakeAccounts) FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	if f.account == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.account, nil
}

func (f *fakeAccounts) AdjustBalance(ctx context.Context, id uuid.UUID, delta decimal.Decimal) (bool, error) {
	if f.adjustBalanceFn != nil {
		return f.adjustBalanceFn(ctx, id, delta)
	}
	f.adjusted = append(f.adjusted, delta)
	return true, nil
}

func (f *fakeAccounts) IncrementApproved(ctx context.Context, id uuid.UUID) error {
	f.approvedCount++
	return nil
}

type fakeImpactRecorder struct {
	recorded []impact.Totals
}

func (f *fakeImpactRecorder) Record(ctx context.Context, line enums.MaterialLine, totals impact.Totals) error {
	f.recorded = append(f.recorded, totals)
	return nil
}

func newSubmissionService(t *testing.T, repo Repository, accts accounts.Repository, recorder impactRecorder) Service {
	t.Helper()

	svc, err := NewService(ServiceParams{
		TxRunner: stubTxRunner{},
		Repo:     repo,
		Accounts: accts,
		Impact:   recorder,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func consentedAccount() *models.Account {
	return &models.Account{
		ID:          uuid.New(),
		Email:       "aluno@escola.edu.br",
		Name:        "Aluno Teste",
		LGPDConsent: true,
		IsActive:    true,
		Role:        enums.RoleStudent,
	}
}

func TestSubmitCatalogMaterial(t *testing.T) {
	account := consentedAccount()

	var created *models.Submission
	repo := &fakeRepository{
		createFn: func(ctx context.Context, submission *models.Submission) error {
			created = submission
			return nil
		},
	}
	recorder := &fakeImpactRecorder{}

	svc := newSubmissionService(t, repo, &fakeAccounts{account: account}, recorder)

	resp, err := svc.Submit(context.Background(), account.ID, SubmitRequest{
		Line:     enums.MaterialLineBrown,
		Material: "Notebook",
		Quantity: 2,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if created == nil {
		t.Fatal("expected submission to be created")
	}
	if want := decimal.RequireFromString("7"); !created.Points.Equal(want) {
		t.Fatalf("expected 7 points, got %s", created.Points)
	}
	if created.Status != enums.SubmissionStatusPending {
		t.Fatalf("expected pending status, got %s", created.Status)
	}
	if created.Custom {
		t.Fatal("catalog material must not be custom")
	}
	if resp.Impact == nil || resp.Impact.Quantity != 2 {
		t.Fatalf("expected impact preview for 2 units, got %+v", resp.Impact)
	}
	if len(recorder.recorded) != 1 {
		t.Fatalf("expected one impact event for consented account, got %d", len(recorder.recorded))
	}
}

func TestSubmitWithoutConsentSkipsImpactEvent(t *testing.T) {
	account := consentedAccount()
	account.LGPDConsent = false

	repo := &fakeRepository{
		createFn: func(ctx context.Context, submission *models.Submission) error {
			return nil
		},
	}
	recorder := &fakeImpactRecorder{}

	svc := newSubmissionService(t, repo, &fakeAccounts{account: account}, recorder)

	resp, err := svc.Submit(context.Background(), account.ID, SubmitRequest{
		Line:     enums.MaterialLineGreen,
		Material: "Celular",
		Quantity: 1,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if resp.Impact == nil {
		t.Fatal("preview is returned regardless of consent")
	}
	if len(recorder.recorded) != 0 {
		t.Fatal("no impact event may be stored without consent")
	}
}

func TestSubmitCustomMaterial(t *testing.T) {
	account := consentedAccount()

	var created *models.Submission
	repo := &fakeRepository{
		createFn: func(ctx context.Context, submission *models.Submission) error {
			created = submission
			return nil
		},
	}

	svc := newSubmissionService(t, repo, &fakeAccounts{account: account}, nil)

	unit := decimal.RequireFromString("2.5")
	resp, err := svc.Submit(context.Background(), account.ID, SubmitRequest{
		Line:             enums.MaterialLineBlue,
		Material:         "Micro-ondas",
		Quantity:         3,
		CustomUnitPoints: &unit,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if !created.Custom {
		t.Fatal("unknown material must be flagged custom")
	}
	if want := decimal.RequireFromString("7.5"); !created.Points.Equal(want) {
		t.Fatalf("expected 7.5 points, got %s", created.Points)
	}
	if resp.Impact != nil {
		t.Fatal("custom materials have no impact table entry")
	}
}

func TestSubmitCustomMaterialOutOfBounds(t *testing.T) {
	svc := newSubmissionService(t, &fakeRepository{}, &fakeAccounts{account: consentedAccount()}, nil)

	unit := decimal.RequireFromString("9")
	_, err := svc.Submit(context.Background(), uuid.New(), SubmitRequest{
		Line:             enums.MaterialLineBlue,
		Material:         "Micro-ondas",
		Quantity:         1,
		CustomUnitPoints: &unit,
	})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSubmitCustomMaterialMissingUnitPoints(t *testing.T) {
	svc := newSubmissionService(t, &fakeRepository{}, &fakeAccounts{account: consentedAccount()}, nil)

	_, err := svc.Submit(context.Background(), uuid.New(), SubmitRequest{
		Line:     enums.MaterialLineBlue,
		Material: "Micro-ondas",
		Quantity: 1,
	})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestApproveCreditsPoints(t *testing.T) {
	account := consentedAccount()
	submission := &models.Submission{
		ID:        uuid.New(),
		AccountID: account.ID,
		Reference: "DSC-1",
		Line:      enums.MaterialLineBrown,
		Material:  "Televisor",
		Quantity:  1,
		Points:    decimal.RequireFromString("5"),
		Status:    enums.SubmissionStatusPending,
	}

	repo := &fakeRepository{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*models.Submission, error) {
			return submission, nil
		},
		updateStatusIfPendingFn: func(ctx context.Context, id uuid.UUID, status enums.SubmissionStatus, resolvedAt time.Time) (bool, error) {
			if status != enums.SubmissionStatusApproved {
				t.Fatalf("expected approved status, got %s", status)
			}
			return true, nil
		},
	}
	accts := &fakeAccounts{account: account}

	svc := newSubmissionService(t, repo, accts, nil)

	dto, err := svc.Approve(context.Background(), submission.ID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if dto.Status != enums.SubmissionStatusApproved {
		t.Fatalf("expected approved, got %s", dto.Status)
	}
	if len(accts.adjusted) != 1 || !accts.adjusted[0].Equal(submission.Points) {
		t.Fatalf("expected credit of %s, got %v", submission.Points, accts.adjusted)
	}
	if accts.approvedCount != 1 {
		t.Fatal("expected approved counter increment")
	}
}

func TestApproveAlreadyResolved(t *testing.T) {
	resolvedAt := time.Now().UTC()
	submission := &models.Submission{
		ID:         uuid.New(),
		Status:     enums.SubmissionStatusApproved,
		ResolvedAt: &resolvedAt,
	}

	repo := &fakeRepository{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*models.Submission, error) {
			return submission, nil
		},
	}
	accts := &fakeAccounts{account: consentedAccount()}

	svc := newSubmissionService(t, repo, accts, nil)

	_, err := svc.Approve(context.Background(), submission.ID)
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeAlreadyResolved {
		t.Fatalf("expected already resolved error, got %v", err)
	}
	if len(accts.adjusted) != 0 {
		t.Fatal("no points may move for a resolved submission")
	}
}

func TestApproveLostRace(t *testing.T) {
	submission := &models.Submission{
		ID:     uuid.New(),
		Status: enums.SubmissionStatusPending,
		Points: decimal.RequireFromString("3"),
	}

	repo := &fakeRepository{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*models.Submission, error) {
			return submission, nil
		},
		updateStatusIfPendingFn: func(ctx context.Context, id uuid.UUID, status enums.SubmissionStatus, resolvedAt time.Time) (bool, error) {
			return false, nil
		},
	}
	accts := &fakeAccounts{account: consentedAccount()}

	svc := newSubmissionService(t, repo, accts, nil)

	_, err := svc.Approve(context.Background(), submission.ID)
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeAlreadyResolved {
		t.Fatalf("expected already resolved error, got %v", err)
	}
	if len(accts.adjusted) != 0 {
		t.Fatal("no credit may happen when the status flip loses the race")
	}
}

func TestRejectDoesNotCredit(t *testing.T) {
	submission := &models.Submission{
		ID:     uuid.New(),
		Status: enums.SubmissionStatusPending,
		Points: decimal.RequireFromString("4"),
	}

	repo := &fakeRepository{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*models.Submission, error) {
			return submission, nil
		},
		updateStatusIfPendingFn: func(ctx context.Context, id uuid.UUID, status enums.SubmissionStatus, resolvedAt time.Time) (bool, error) {
			if status != enums.SubmissionStatusRejected {
				t.Fatalf("expected rejected status, got %s", status)
			}
			return true, nil
		},
	}
	accts := &fakeAccounts{account: consentedAccount()}

	svc := newSubmissionService(t, repo, accts, nil)

	dto, err := svc.Reject(context.Background(), submission.ID)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if dto.Status != enums.SubmissionStatusRejected {
		t.Fatalf("expected rejected, got %s", dto.Status)
	}
	if len(accts.adjusted) != 0 {
		t.Fatal("rejection must not move points")
	}
}

func TestListMinePagination(t *testing.T) {
	accountID := uuid.New()
	now := time.Now().UTC()

	rows := make([]models.Submission, 3)
	for i := range rows {
		rows[i] = models.Submission{
			ID:        uuid.New(),
			AccountID: accountID,
			Status:    enums.SubmissionStatusPending,
			CreatedAt: now.Add(-time.Duration(i) * time.Minute),
		}
	}

	repo := &fakeRepository{
		listByAccountFn: func(ctx context.Context, id uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Submission, error) {
			if limit != 3 {
				t.Fatalf("expected buffered limit 3, got %d", limit)
			}
			return rows, nil
		},
	}

	svc := newSubmissionService(t, repo, &fakeAccounts{account: consentedAccount()}, nil)

	page, err := svc.ListMine(context.Background(), accountID, pagination.Params{Limit: 2})
	if err != nil {
		t.Fatalf("list mine: %v", err)
	}
	if len(page.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(page.Items))
	}
	if page.NextCursor == "" {
		t.Fatal("expected next cursor when more rows exist")
	}

	cursor, err := pagination.ParseCursor(page.NextCursor)
	if err != nil {
		t.Fatalf("parse cursor: %v", err)
	}
	if cursor.ID != rows[1].ID {
		t.Fatal("cursor must point at the last returned row")
	}
}

func TestNewReferenceUniquePerCall(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 200; i++ {
		ref := newReference()
		if !strings.HasPrefix(ref, "DSC-") {
			t.Fatalf("unexpected reference format %q", ref)
		}
		if _, dup := seen[ref]; dup {
			t.Fatalf("duplicate reference %q", ref)
		}
		seen[ref] = struct{}{}
	}
}
