package terms

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/lsalmeida/ecoeletronico-backend/internal/accounts"
	"github.com/lsalmeida/ecoeletronico-backend/internal/submissions"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/db/models"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/enums"
	pkgerrors "github.com/lsalmeida/ecoeletronico-backend/pkg/errors"
)

type stubTxRunner struct{}

func (s stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeTermsRepo struct {
	Repository

	currentTerm int
	setTerm     *int
	snapshot    *models.TermSnapshot
	snapshotErr error
	snapshots   []models.TermSnapshot
}

func (f *fakeTermsRepo) WithTx(tx *gorm.DB) Repository {
	return f
}

func (f *fakeTermsRepo) CurrentTerm(ctx context.Context) (int, error) {
	return f.currentTerm, nil
}

func (f *fakeTermsRepo) SetCurrentTerm(ctx context.Context, term int) error {
	f.setTerm = &term
	return nil
}

func (f *fakeTermsRepo) CreateSnapshot(ctx context.Context, snapshot *models.TermSnapshot) error {
	if f.snapshotErr != nil {
		return f.snapshotErr
	}
	f.snapshot = snapshot
	return nil
}

func (f *fakeTermsRepo) ListSnapshots(ctx context.Context) ([]models.TermSnapshot, error) {
	return f.snapshots, nil
}

func (f *fakeTermsRepo) FindSnapshotByTerm(ctx context.Context, term int) (*models.TermSnapshot, error) {
	for i := range f.snapshots {
		if f.snapshots[i].Term == term {
			return &f.snapshots[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeAccountsRepo struct {
	accounts.Repository

	ranked []models.Account
	reset  int64

	resetCalled bool
}

func (f *fakeAccountsRepo) WithTx(tx *gorm.DB) accounts.Repository {
	return f
}

func (f *fakeAccountsRepo) ListRanked(ctx context.Context) ([]models.Account, error) {
	return f.ranked, nil
}

func (f *fakeAccountsRepo) ResetAllBalances(ctx context.Context) (int64, error) {
	f.resetCalled = true
	return f.reset, nil
}

type fakeSubmissionsRepo struct {
	submissions.Repository

	total    int64
	approved int64
}

func (f *fakeSubmissionsRepo) WithTx(tx *gorm.DB) submissions.Repository {
	return f
}

func (f *fakeSubmissionsRepo) CountAll(ctx context.Context) (int64, error) {
	return f.total, nil
}

func (f *fakeSubmissionsRepo) CountApproved(ctx context.Context) (int64, error) {
	return f.approved, nil
}

func newTermsService(t *testing.T, repo Repository, accts accounts.Repository, subs submissions.Repository) Service {
	t.Helper()

	svc, err := NewService(ServiceParams{
		TxRunner:    stubTxRunner{},
		Repo:        repo,
		Accounts:    accts,
		Submissions: subs,
	})
	require.NoError(t, err)
	return svc
}

func rankedAccounts() []models.Account {
	return []models.Account{
		{
			ID:                  uuid.New(),
			Name:                "Primeira Aluna",
			ClassGroup:          "3A",
			Balance:             decimal.RequireFromString("42.5"),
			ApprovedSubmissions: 9,
			Role:                enums.RoleStudent,
		},
		{
			ID:                  uuid.New(),
			Name:                "Segundo Aluno",
			ClassGroup:          "3B",
			Balance:             decimal.RequireFromString("17"),
			ApprovedSubmissions: 4,
			Role:                enums.RoleStudent,
		},
	}
}

func TestAdvance(t *testing.T) {
	repo := &fakeTermsRepo{currentTerm: 1}
	accts := &fakeAccountsRepo{ranked: rankedAccounts(), reset: 2}
	subs := &fakeSubmissionsRepo{total: 30, approved: 21}

	svc := newTermsService(t, repo, accts, subs)

	result, err := svc.Advance(context.Background(), AdvanceRequest{TargetTerm: 2})
	require.NoError(t, err)

	assert.Equal(t, 1, result.PreviousTerm)
	assert.Equal(t, 2, result.CurrentTerm)
	assert.Equal(t, int64(2), result.ResetAccounts)

	require.NotNil(t, repo.snapshot)
	assert.Equal(t, 1, repo.snapshot.Term)
	assert.True(t, repo.snapshot.Committed)
	assert.Equal(t, 2, repo.snapshot.TotalAccounts)
	assert.Equal(t, 30, repo.snapshot.TotalSubmissions)
	assert.Equal(t, 21, repo.snapshot.TotalApproved)

	require.NotNil(t, result.Snapshot)
	require.Len(t, result.Snapshot.Ranking, 2)
	assert.Equal(t, 1, result.Snapshot.Ranking[0].Position)
	assert.Equal(t, "Primeira Aluna", result.Snapshot.Ranking[0].Name)
	assert.True(t, result.Snapshot.Ranking[0].Balance.Equal(decimal.RequireFromString("42.5")))

	assert.True(t, accts.resetCalled)
	require.NotNil(t, repo.setTerm)
	assert.Equal(t, 2, *repo.setTerm)
}

func TestAdvanceSameTerm(t *testing.T) {
	repo := &fakeTermsRepo{currentTerm: 2}
	accts := &fakeAccountsRepo{}

	svc := newTermsService(t, repo, accts, &fakeSubmissionsRepo{})

	_, err := svc.Advance(context.Background(), AdvanceRequest{TargetTerm: 2})
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeSameTerm, appErr.Code())
	assert.False(t, accts.resetCalled, "a rejected transition must not reset balances")
	assert.Nil(t, repo.snapshot)
}

func TestAdvanceRejectsNonPositiveTerm(t *testing.T) {
	svc := newTermsService(t, &fakeTermsRepo{currentTerm: 1}, &fakeAccountsRepo{}, &fakeSubmissionsRepo{})

	_, err := svc.Advance(context.Background(), AdvanceRequest{TargetTerm: 0})
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
}

func TestAdvanceRejectsEarlierTerm(t *testing.T) {
	repo := &fakeTermsRepo{currentTerm: 2}
	accts := &fakeAccountsRepo{}
	svc := newTermsService(t, repo, accts, &fakeSubmissionsRepo{})

	_, err := svc.Advance(context.Background(), AdvanceRequest{TargetTerm: 1})
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeConflict, appErr.Code())
	assert.False(t, accts.resetCalled, "a rejected transition must not reset balances")
	assert.Nil(t, repo.snapshot)
}

func TestAdvanceSkippingTermsIsAllowed(t *testing.T) {
	repo := &fakeTermsRepo{currentTerm: 1}
	svc := newTermsService(t, repo, &fakeAccountsRepo{ranked: rankedAccounts()}, &fakeSubmissionsRepo{})

	result, err := svc.Advance(context.Background(), AdvanceRequest{TargetTerm: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, result.CurrentTerm)
	require.NotNil(t, repo.setTerm)
	assert.Equal(t, 5, *repo.setTerm)
}

func TestAdvanceConcurrentCloseConflict(t *testing.T) {
	repo := &fakeTermsRepo{
		currentTerm: 1,
		snapshotErr: &pgconn.PgError{Code: "23505", ConstraintName: "ux_term_snapshots_term"},
	}
	svc := newTermsService(t, repo, &fakeAccountsRepo{}, &fakeSubmissionsRepo{})

	_, err := svc.Advance(context.Background(), AdvanceRequest{TargetTerm: 2})
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeConflict, appErr.Code())
}

func TestSnapshotNotFound(t *testing.T) {
	svc := newTermsService(t, &fakeTermsRepo{currentTerm: 2}, &fakeAccountsRepo{}, &fakeSubmissionsRepo{})

	_, err := svc.Snapshot(context.Background(), 1)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code())
}

func TestSnapshotRoundTrip(t *testing.T) {
	repo := &fakeTermsRepo{currentTerm: 1}
	accts := &fakeAccountsRepo{ranked: rankedAccounts()}

	svc := newTermsService(t, repo, accts, &fakeSubmissionsRepo{total: 5, approved: 5})

	_, err := svc.Advance(context.Background(), AdvanceRequest{TargetTerm: 2})
	require.NoError(t, err)

	repo.snapshots = []models.TermSnapshot{*repo.snapshot}

	dto, err := svc.Snapshot(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, dto.Ranking, 2)
	assert.Equal(t, "Segundo Aluno", dto.Ranking[1].Name)
	assert.Equal(t, 2, dto.Ranking[1].Position)
}
