package accounts

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/lsalmeida/ecoeletronico-backend/pkg/config"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/db/models"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/enums"
	pkgerrors "github.com/lsalmeida/ecoeletronico-backend/pkg/errors"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/security"
)

type fakeRepository struct {
	Repository

	findByIDFn           func(ctx context.Context, id uuid.UUID) (*models.Account, error)
	updatePasswordHashFn func(ctx context.Context, id uuid.UUID, hash string) error
	updateConsentFn      func(ctx context.Context, id uuid.UUID, consent bool) error
	setActiveFn          func(ctx context.Context, id uuid.UUID, active bool) error
	adjustBalanceFn      func(ctx context.Context, id uuid.UUID, delta decimal.Decimal) (bool, error)
	listRankedFn         func(ctx context.Context) ([]models.Account, error)
	listPurchasesFn      func(ctx context.Context, accountID uuid.UUID, term int) ([]models.CategoryPurchase, error)
}

func (f *fakeRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	return f.findByIDFn(ctx, id)
}

func (f *fakeRepository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	return f.updatePasswordHashFn(ctx, id, hash)
}

func (f *fakeRepository) UpdateConsent(ctx context.Context, id uuid.UUID, consent bool) error {
	return f.updateConsentFn(ctx, id, consent)
}

func (f *fakeRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return f.setActiveFn(ctx, id, active)
}

func (f *fakeRepository) AdjustBalance(ctx context.Context, id uuid.UUID, delta decimal.Decimal) (bool, error) {
	return f.adjustBalanceFn(ctx, id, delta)
}

func (f *fakeRepository) ListRanked(ctx context.Context) ([]models.Account, error) {
	return f.listRankedFn(ctx)
}

func (f *fakeRepository) ListPurchases(ctx context.Context, accountID uuid.UUID, term int) ([]models.CategoryPurchase, error) {
	return f.listPurchasesFn(ctx, accountID, term)
}

type fakeTermReader struct {
	term int
	err  error
}

func (f *fakeTermReader) Current(ctx context.Context) (int, error) {
	return f.term, f.err
}

func testPasswordCfg() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8 * 1024,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func testAccount(t *testing.T, password string) *models.Account {
	t.Helper()

	hash, err := security.HashPassword(password, testPasswordCfg())
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return &models.Account{
		ID:           uuid.New(),
		Email:        "aluno@escola.edu.br",
		PasswordHash: hash,
		Name:         "Aluno Teste",
		ClassGroup:   "3B",
		Balance:      decimal.RequireFromString("12.5"),
		LGPDConsent:  true,
		IsActive:     true,
		Role:         enums.RoleStudent,
		CreatedAt:    time.Now().UTC(),
	}
}

func newTestService(t *testing.T, repo Repository, terms termReader) Service {
	t.Helper()

	svc, err := NewService(ServiceParams{
		Repo:        repo,
		Terms:       terms,
		PasswordCfg: testPasswordCfg(),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestMe(t *testing.T) {
	account := testAccount(t, "senha123")

	repo := &fakeRepository{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*models.Account, error) {
			if id != account.ID {
				t.Fatalf("unexpected id %s", id)
			}
			return account, nil
		},
		listPurchasesFn: func(ctx context.Context, accountID uuid.UUID, term int) ([]models.CategoryPurchase, error) {
			if term != 2 {
				t.Fatalf("expected term 2, got %d", term)
			}
			return []models.CategoryPurchase{
				{AccountID: accountID, Category: enums.CouponCategoryMath, Term: term},
			}, nil
		},
	}

	svc := newTestService(t, repo, &fakeTermReader{term: 2})

	profile, err := svc.Me(context.Background(), account.ID)
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if profile.CurrentTerm != 2 {
		t.Fatalf("expected term 2, got %d", profile.CurrentTerm)
	}
	if len(profile.PurchasedCategories) != 1 || profile.PurchasedCategories[0] != enums.CouponCategoryMath {
		t.Fatalf("unexpected purchased categories: %v", profile.PurchasedCategories)
	}
	if profile.Account.Email != account.Email {
		t.Fatalf("unexpected email %s", profile.Account.Email)
	}
}

func TestMeAccountNotFound(t *testing.T) {
	repo := &fakeRepository{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*models.Account, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}

	svc := newTestService(t, repo, &fakeTermReader{term: 1})

	_, err := svc.Me(context.Background(), uuid.New())
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	account := testAccount(t, "senha123")

	var storedHash string
	repo := &fakeRepository{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*models.Account, error) {
			return account, nil
		},
		updatePasswordHashFn: func(ctx context.Context, id uuid.UUID, hash string) error {
			storedHash = hash
			return nil
		},
	}

	svc := newTestService(t, repo, &fakeTermReader{term: 1})

	if err := svc.ChangePassword(context.Background(), account.ID, "senha123", "novasenha"); err != nil {
		t.Fatalf("change password: %v", err)
	}

	ok, err := security.VerifyPassword("novasenha", storedHash)
	if err != nil || !ok {
		t.Fatalf("stored hash does not verify new password (ok=%v err=%v)", ok, err)
	}
}

func TestChangePasswordWrongCurrent(t *testing.T) {
	account := testAccount(t, "senha123")

	repo := &fakeRepository{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*models.Account, error) {
			return account, nil
		},
		updatePasswordHashFn: func(ctx context.Context, id uuid.UUID, hash string) error {
			t.Fatal("password must not be updated")
			return nil
		},
	}

	svc := newTestService(t, repo, &fakeTermReader{term: 1})

	err := svc.ChangePassword(context.Background(), account.ID, "errada", "novasenha")
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

func TestChangePasswordTooShort(t *testing.T) {
	svc := newTestService(t, &fakeRepository{}, &fakeTermReader{term: 1})

	err := svc.ChangePassword(context.Background(), uuid.New(), "senha123", "abc")
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAdjustBalanceRejectsNegativeResult(t *testing.T) {
	account := testAccount(t, "senha123")

	repo := &fakeRepository{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*models.Account, error) {
			return account, nil
		},
		adjustBalanceFn: func(ctx context.Context, id uuid.UUID, delta decimal.Decimal) (bool, error) {
			return false, nil
		},
	}

	svc := newTestService(t, repo, &fakeTermReader{term: 1})

	err := svc.AdjustBalance(context.Background(), account.ID, decimal.RequireFromString("-100"))
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeInsufficientPoints {
		t.Fatalf("expected insufficient points error, got %v", err)
	}
}

func TestAdjustBalanceZeroDelta(t *testing.T) {
	svc := newTestService(t, &fakeRepository{}, &fakeTermReader{term: 1})

	err := svc.AdjustBalance(context.Background(), uuid.New(), decimal.Zero)
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRankingOrderPreserved(t *testing.T) {
	first := testAccount(t, "senha123")
	second := testAccount(t, "senha123")
	second.Balance = decimal.Zero

	repo := &fakeRepository{
		listRankedFn: func(ctx context.Context) ([]models.Account, error) {
			return []models.Account{*first, *second}, nil
		},
	}

	svc := newTestService(t, repo, &fakeTermReader{term: 1})

	ranking, err := svc.Ranking(context.Background())
	if err != nil {
		t.Fatalf("ranking: %v", err)
	}
	if len(ranking) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(ranking))
	}
	if ranking[0].ID != first.ID || ranking[1].ID != second.ID {
		t.Fatal("ranking order not preserved")
	}
}
