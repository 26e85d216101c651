package bazaar

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/lsalmeida/ecoeletronico-backend/internal/accounts"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/config"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/db/models"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/enums"
	pkgerrors "github.com/lsalmeida/ecoeletronico-backend/pkg/errors"
)

type stubTxRunner struct{}

func (s stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeTermReader struct {
	term int
}

func (f *fakeTermReader) Current(ctx context.Context) (int, error) {
	return f.term, nil
}

type fakeRepository struct {
	Repository

	window   models.BazaarWindow
	vouchers map[string]*models.BazaarVoucher
}

func newFakeRepository(open bool, term int) *fakeRepository {
	return &fakeRepository{
		window:   models.BazaarWindow{ID: 1, Open: open, Term: term},
		vouchers: map[string]*models.BazaarVoucher{},
	}
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository {
	return f
}

func (f *fakeRepository) Window(ctx context.Context) (*models.BazaarWindow, error) {
	window := f.window
	return &window, nil
}

func (f *fakeRepository) SetWindow(ctx context.Context, open bool, term int, at time.Time) error {
	f.window.Open = open
	f.window.Term = term
	if open {
		f.window.OpenedAt = &at
	} else {
		f.window.ClosedAt = &at
	}
	return nil
}

func (f *fakeRepository) CreateVoucher(ctx context.Context, voucher *models.BazaarVoucher) error {
	voucher.ID = uuid.New()
	f.vouchers[voucher.Code] = voucher
	return nil
}

func (f *fakeRepository) FindVoucherByCode(ctx context.Context, code string) (*models.BazaarVoucher, error) {
	if voucher, ok := f.vouchers[code]; ok {
		copied := *voucher
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) MarkUsedIfUnused(ctx context.Context, id uuid.UUID, at time.Time, notes *string) (bool, error) {
	for _, voucher := range f.vouchers {
		if voucher.ID == id {
			if voucher.Used {
				return false, nil
			}
			voucher.Used = true
			voucher.UsedAt = &at
			voucher.Notes = notes
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepository) CountByTerm(ctx context.Context, term int) (int64, int64, error) {
	var total, used int64
	for _, voucher := range f.vouchers {
		if voucher.Term != term {
			continue
		}
		total++
		if voucher.Used {
			used++
		}
	}
	return total, used, nil
}

type fakeAccountsRepo struct {
	accounts.Repository

	account *models.Account
	balance decimal.Decimal
}

func (f *fakeAccountsRepo) WithTx(tx *gorm.DB) accounts.Repository {
	return f
}

func (f *fakeAccountsRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	if f.account == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.account, nil
}

func (f *fakeAccountsRepo) AdjustBalance(ctx context.Context, id uuid.UUID, delta decimal.Decimal) (bool, error) {
	next := f.balance.Add(delta)
	if next.IsNegative() {
		return false, nil
	}
	f.balance = next
	return true, nil
}

func newBazaarService(t *testing.T, repo Repository, accts accounts.Repository, term int) Service {
	t.Helper()

	svc, err := NewService(ServiceParams{
		TxRunner: stubTxRunner{},
		Repo:     repo,
		Accounts: accts,
		Terms:    &fakeTermReader{term: term},
		Config:   config.BazaarConfig{VoucherCost: 50},
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func student() *models.Account {
	return &models.Account{
		ID:         uuid.New(),
		Name:       "Aluno Teste",
		ClassGroup: "3B",
		Role:       enums.RoleStudent,
		IsActive:   true,
	}
}

func TestPurchaseVoucher(t *testing.T) {
	repo := newFakeRepository(true, 2)
	account := student()
	accts := &fakeAccountsRepo{account: account, balance: decimal.NewFromInt(80)}

	svc := newBazaarService(t, repo, accts, 2)

	voucher, err := svc.Purchase(context.Background(), account.ID)
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}

	if !strings.HasPrefix(voucher.Code, "BAZAR-T2-") {
		t.Fatalf("unexpected code format %q", voucher.Code)
	}
	if voucher.AccountName != account.Name || voucher.ClassGroup != account.ClassGroup {
		t.Fatal("voucher must carry the holder name and class group")
	}
	if !voucher.Cost.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("expected cost 50, got %s", voucher.Cost)
	}
	if !accts.balance.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("expected balance 30 after debit, got %s", accts.balance)
	}
}

func TestPurchaseWindowClosed(t *testing.T) {
	repo := newFakeRepository(false, 1)
	account := student()
	accts := &fakeAccountsRepo{account: account, balance: decimal.NewFromInt(80)}

	svc := newBazaarService(t, repo, accts, 1)

	_, err := svc.Purchase(context.Background(), account.ID)
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeWindowClosed {
		t.Fatalf("expected window closed error, got %v", err)
	}
	if !accts.balance.Equal(decimal.NewFromInt(80)) {
		t.Fatal("no debit may happen while the window is closed")
	}
}

func TestPurchaseInsufficientPoints(t *testing.T) {
	repo := newFakeRepository(true, 1)
	account := student()
	accts := &fakeAccountsRepo{account: account, balance: decimal.NewFromInt(10)}

	svc := newBazaarService(t, repo, accts, 1)

	_, err := svc.Purchase(context.Background(), account.ID)
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeInsufficientPoints {
		t.Fatalf("expected insufficient points error, got %v", err)
	}
	if len(repo.vouchers) != 0 {
		t.Fatal("no voucher may exist without the debit")
	}
}

func TestUseVoucherOnce(t *testing.T) {
	repo := newFakeRepository(true, 1)
	account := student()
	accts := &fakeAccountsRepo{account: account, balance: decimal.NewFromInt(100)}

	svc := newBazaarService(t, repo, accts, 1)

	voucher, err := svc.Purchase(context.Background(), account.ID)
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}

	used, err := svc.Use(context.Background(), UseRequest{Code: voucher.Code})
	if err != nil {
		t.Fatalf("use: %v", err)
	}
	if !used.Used || used.UsedAt == nil {
		t.Fatal("voucher must be marked used")
	}

	_, err = svc.Use(context.Background(), UseRequest{Code: voucher.Code})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeAlreadyResolved {
		t.Fatalf("expected already resolved on second use, got %v", err)
	}
}

func TestUseUnknownVoucher(t *testing.T) {
	svc := newBazaarService(t, newFakeRepository(true, 1), &fakeAccountsRepo{account: student()}, 1)

	_, err := svc.Use(context.Background(), UseRequest{Code: "BAZAR-T1-404"})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestWindowLifecycleAndStats(t *testing.T) {
	repo := newFakeRepository(false, 3)
	account := student()
	accts := &fakeAccountsRepo{account: account, balance: decimal.NewFromInt(200)}

	svc := newBazaarService(t, repo, accts, 3)

	window, err := svc.OpenWindow(context.Background())
	if err != nil {
		t.Fatalf("open window: %v", err)
	}
	if !window.Open || window.Term != 3 || window.OpenedAt == nil {
		t.Fatalf("unexpected window state %+v", window)
	}

	first, err := svc.Purchase(context.Background(), account.ID)
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if _, err := svc.Use(context.Background(), UseRequest{Code: first.Code}); err != nil {
		t.Fatalf("use: %v", err)
	}
	// Voucher codes carry a millisecond timestamp.
	time.Sleep(2 * time.Millisecond)
	if _, err := svc.Purchase(context.Background(), account.ID); err != nil {
		t.Fatalf("second purchase: %v", err)
	}

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != 2 || stats.Used != 1 || stats.Unused != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}

	window, err = svc.CloseWindow(context.Background())
	if err != nil {
		t.Fatalf("close window: %v", err)
	}
	if window.Open || window.ClosedAt == nil {
		t.Fatalf("expected closed window, got %+v", window)
	}
}
