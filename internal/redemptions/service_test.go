package redemptions

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/lsalmeida/ecoeletronico-backend/internal/accounts"
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

	created                 *models.Redemption
	createCalls             int
	createErrs              []error
	findByIDFn              func(ctx context.Context, id uuid.UUID) (*models.Redemption, error)
	updateStatusIfPendingFn func(ctx context.Context, id uuid.UUID, status enums.RedemptionStatus, resolvedAt time.Time) (bool, error)
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository {
	return f
}

func (f *fakeRepository) Create(ctx context.Context, redemption *models.Redemption) error {
	f.createCalls++
	if len(f.createErrs) > 0 {
		err := f.createErrs[0]
		f.createErrs = f.createErrs[1:]
		return err
	}
	f.created = redemption
	return nil
}

func (f *fakeRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Redemption, error) {
	return f.findByIDFn(ctx, id)
}

func (f *fakeRepository) UpdateStatusIfPending(ctx context.Context, id uuid.UUID, status enums.RedemptionStatus, resolvedAt time.Time) (bool, error) {
	return f.updateStatusIfPendingFn(ctx, id, status, resolvedAt)
}

type fakeAccountsRepo struct {
	accounts.Repository

	balance   decimal.Decimal
	purchased map[enums.CouponCategory]bool

	purchaseCreated *models.CategoryPurchase
	adjusted        []decimal.Decimal
}

func newFakeAccountsRepo(balance string) *fakeAccountsRepo {
	return &fakeAccountsRepo{
		balance:   decimal.RequireFromString(balance),
		purchased: map[enums.CouponCategory]bool{},
	}
}

func (f *fakeAccountsRepo) WithTx(tx *gorm.DB) accounts.Repository {
	return f
}

func (f *fakeAccountsRepo) HasPurchase(ctx context.Context, accountID uuid.UUID, category enums.CouponCategory, term int) (bool, error) {
	return f.purchased[category], nil
}

func (f *fakeAccountsRepo) ListPurchases(ctx context.Context, accountID uuid.UUID, term int) ([]models.CategoryPurchase, error) {
	var out []models.CategoryPurchase
	for category := range f.purchased {
		out = append(out, models.CategoryPurchase{AccountID: accountID, Category: category, Term: term})
	}
	return out, nil
}

func (f *fakeAccountsRepo) AdjustBalance(ctx context.Context, id uuid.UUID, delta decimal.Decimal) (bool, error) {
	next := f.balance.Add(delta)
	if next.IsNegative() {
		return false, nil
	}
	f.balance = next
	f.adjusted = append(f.adjusted, delta)
	return true, nil
}

func (f *fakeAccountsRepo) CreatePurchase(ctx context.Context, purchase *models.CategoryPurchase) error {
	f.purchaseCreated = purchase
	f.purchased[purchase.Category] = true
	return nil
}

func newRedemptionService(t *testing.T, repo Repository, accts accounts.Repository, term int) Service {
	t.Helper()

	svc, err := NewService(ServiceParams{
		TxRunner: stubTxRunner{},
		Repo:     repo,
		Accounts: accts,
		Terms:    &fakeTermReader{term: term},
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestPurchase(t *testing.T) {
	repo := &fakeRepository{}
	accts := newFakeAccountsRepo("100")

	svc := newRedemptionService(t, repo, accts, 2)

	accountID := uuid.New()
	dto, err := svc.Purchase(context.Background(), accountID, PurchaseRequest{Category: enums.CouponCategoryMath})
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}

	if dto.Status != enums.RedemptionStatusPending {
		t.Fatalf("expected pending, got %s", dto.Status)
	}
	if !dto.Cost.Equal(decimal.NewFromInt(45)) {
		t.Fatalf("expected cost 45, got %s", dto.Cost)
	}
	if dto.Term != 2 {
		t.Fatalf("expected term 2, got %d", dto.Term)
	}
	if !strings.HasPrefix(dto.Code, "CUP-T2-") {
		t.Fatalf("unexpected code format %q", dto.Code)
	}
	if !accts.balance.Equal(decimal.NewFromInt(55)) {
		t.Fatalf("expected balance 55 after debit, got %s", accts.balance)
	}
	if accts.purchaseCreated == nil || accts.purchaseCreated.Category != enums.CouponCategoryMath {
		t.Fatal("expected category purchase marker")
	}
}

// rollbackAccountsRepo mimics transaction rollback for the retry path:
// the category marker from a failed attempt never becomes visible.
type rollbackAccountsRepo struct {
	*fakeAccountsRepo
}

func (r rollbackAccountsRepo) WithTx(tx *gorm.DB) accounts.Repository {
	return r
}

func (r rollbackAccountsRepo) CreatePurchase(ctx context.Context, purchase *models.CategoryPurchase) error {
	r.purchaseCreated = purchase
	return nil
}

func TestPurchaseRetriesOnCouponCodeCollision(t *testing.T) {
	repo := &fakeRepository{
		createErrs: []error{&pgconn.PgError{Code: "23505", ConstraintName: "ux_redemptions_code"}},
	}
	accts := rollbackAccountsRepo{newFakeAccountsRepo("100")}

	svc := newRedemptionService(t, repo, accts, 1)

	dto, err := svc.Purchase(context.Background(), uuid.New(), PurchaseRequest{Category: enums.CouponCategoryArts})
	if err != nil {
		t.Fatalf("purchase after collision: %v", err)
	}
	if repo.createCalls != 2 {
		t.Fatalf("expected a retry after the code collision, got %d create calls", repo.createCalls)
	}
	if !strings.HasPrefix(dto.Code, "CUP-T1-") {
		t.Fatalf("unexpected code format %q", dto.Code)
	}
}

func TestPurchaseGivesUpAfterRepeatedCollisions(t *testing.T) {
	collision := func() error {
		return &pgconn.PgError{Code: "23505", ConstraintName: "ux_redemptions_code"}
	}
	repo := &fakeRepository{
		createErrs: []error{collision(), collision(), collision(), collision(), collision()},
	}
	accts := rollbackAccountsRepo{newFakeAccountsRepo("100")}

	svc := newRedemptionService(t, repo, accts, 1)

	_, err := svc.Purchase(context.Background(), uuid.New(), PurchaseRequest{Category: enums.CouponCategoryArts})
	if err == nil {
		t.Fatal("expected error once attempts are exhausted")
	}
	if repo.createCalls != 5 {
		t.Fatalf("expected exactly 5 attempts, got %d", repo.createCalls)
	}
}

func TestPurchaseInsufficientPoints(t *testing.T) {
	repo := &fakeRepository{}
	accts := newFakeAccountsRepo("10")

	svc := newRedemptionService(t, repo, accts, 1)

	_, err := svc.Purchase(context.Background(), uuid.New(), PurchaseRequest{Category: enums.CouponCategoryMath})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeInsufficientPoints {
		t.Fatalf("expected insufficient points error, got %v", err)
	}
	if repo.created != nil {
		t.Fatal("no redemption may be created without points")
	}
}

func TestPurchaseCategoryAlreadyBought(t *testing.T) {
	repo := &fakeRepository{}
	accts := newFakeAccountsRepo("100")
	accts.purchased[enums.CouponCategoryHistory] = true

	svc := newRedemptionService(t, repo, accts, 1)

	_, err := svc.Purchase(context.Background(), uuid.New(), PurchaseRequest{Category: enums.CouponCategoryHistory})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeCategoryPurchased {
		t.Fatalf("expected category purchased error, got %v", err)
	}
	if len(accts.adjusted) != 0 {
		t.Fatal("no debit may happen for an already bought category")
	}
}

func TestCoupons(t *testing.T) {
	accts := newFakeAccountsRepo("100")
	accts.purchased[enums.CouponCategoryArts] = true

	svc := newRedemptionService(t, &fakeRepository{}, accts, 1)

	offers, err := svc.Coupons(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("coupons: %v", err)
	}
	if len(offers) != len(enums.AllCouponCategories()) {
		t.Fatalf("expected %d offers, got %d", len(enums.AllCouponCategories()), len(offers))
	}

	var artsSeen, mathSeen bool
	for _, offer := range offers {
		switch offer.Category {
		case enums.CouponCategoryArts:
			artsSeen = true
			if !offer.Purchased {
				t.Fatal("arts must be marked purchased")
			}
		case enums.CouponCategoryMath:
			mathSeen = true
			if offer.Purchased {
				t.Fatal("math must not be marked purchased")
			}
			if !offer.Cost.Equal(decimal.NewFromInt(45)) {
				t.Fatalf("expected math cost 45, got %s", offer.Cost)
			}
		}
	}
	if !artsSeen || !mathSeen {
		t.Fatal("expected both arts and math offers")
	}
}

func TestRejectRefundsButKeepsCategoryMarker(t *testing.T) {
	accountID := uuid.New()
	redemption := &models.Redemption{
		ID:        uuid.New(),
		AccountID: accountID,
		Category:  enums.CouponCategoryScience,
		Cost:      decimal.NewFromInt(40),
		Term:      1,
		Status:    enums.RedemptionStatusPending,
	}

	repo := &fakeRepository{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*models.Redemption, error) {
			return redemption, nil
		},
		updateStatusIfPendingFn: func(ctx context.Context, id uuid.UUID, status enums.RedemptionStatus, resolvedAt time.Time) (bool, error) {
			if status != enums.RedemptionStatusRejected {
				t.Fatalf("expected rejected status, got %s", status)
			}
			return true, nil
		},
	}
	accts := newFakeAccountsRepo("0")
	accts.purchased[enums.CouponCategoryScience] = true

	svc := newRedemptionService(t, repo, accts, 1)

	dto, err := svc.Reject(context.Background(), redemption.ID)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if dto.Status != enums.RedemptionStatusRejected {
		t.Fatalf("expected rejected, got %s", dto.Status)
	}
	if !accts.balance.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("expected refund to 40, got %s", accts.balance)
	}
	if !accts.purchased[enums.CouponCategoryScience] {
		t.Fatal("category marker must survive a rejection")
	}
}

func TestApproveIsStatusOnly(t *testing.T) {
	redemption := &models.Redemption{
		ID:     uuid.New(),
		Cost:   decimal.NewFromInt(45),
		Status: enums.RedemptionStatusPending,
	}

	repo := &fakeRepository{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*models.Redemption, error) {
			return redemption, nil
		},
		updateStatusIfPendingFn: func(ctx context.Context, id uuid.UUID, status enums.RedemptionStatus, resolvedAt time.Time) (bool, error) {
			return true, nil
		},
	}
	accts := newFakeAccountsRepo("0")

	svc := newRedemptionService(t, repo, accts, 1)

	dto, err := svc.Approve(context.Background(), redemption.ID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if dto.Status != enums.RedemptionStatusApproved {
		t.Fatalf("expected approved, got %s", dto.Status)
	}
	if len(accts.adjusted) != 0 {
		t.Fatal("approval must not move points")
	}
}

func TestApproveAlreadyResolved(t *testing.T) {
	resolvedAt := time.Now().UTC()
	redemption := &models.Redemption{
		ID:         uuid.New(),
		Status:     enums.RedemptionStatusApproved,
		ResolvedAt: &resolvedAt,
	}

	repo := &fakeRepository{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*models.Redemption, error) {
			return redemption, nil
		},
	}

	svc := newRedemptionService(t, repo, newFakeAccountsRepo("0"), 1)

	_, err := svc.Approve(context.Background(), redemption.ID)
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeAlreadyResolved {
		t.Fatalf("expected already resolved error, got %v", err)
	}
}
