package redemptions

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/lsalmeida/ecoeletronico-backend/internal/accounts"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/db"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/db/models"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/enums"
	pkgerrors "github.com/lsalmeida/ecoeletronico-backend/pkg/errors"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/metrics"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/pagination"
)

// Service defines the coupon storefront and redemption lifecycle.
type Service interface {
	Coupons(ctx context.Context, accountID uuid.UUID) ([]CouponOffer, error)
	Purchase(ctx context.Context, accountID uuid.UUID, req PurchaseRequest) (*RedemptionDTO, error)
	ListMine(ctx context.Context, accountID uuid.UUID, params pagination.Params) (*Page, error)
	ListPending(ctx context.Context, params pagination.Params) (*Page, error)
	Approve(ctx context.Context, id uuid.UUID) (*RedemptionDTO, error)
	Reject(ctx context.Context, id uuid.UUID) (*RedemptionDTO, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type termReader interface {
	Current(ctx context.Context) (int, error)
}

type service struct {
	tx       txRunner
	repo     Repository
	accounts accounts.Repository
	terms    termReader
	metrics  *metrics.DecisionMetrics
}

// ServiceParams bundles the dependencies required to build a redemptions service.
type ServiceParams struct {
	TxRunner txRunner
	Repo     Repository
	Accounts accounts.Repository
	Terms    termReader
	Metrics  *metrics.DecisionMetrics
}

// NewService constructs a redemptions service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.TxRunner == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("redemptions repository is required")
	}
	if params.Accounts == nil {
		return nil, fmt.Errorf("accounts repository is required")
	}
	if params.Terms == nil {
		return nil, fmt.Errorf("terms reader is required")
	}
	return &service{
		tx:       params.TxRunner,
		repo:     params.Repo,
		accounts: params.Accounts,
		terms:    params.Terms,
		metrics:  params.Metrics,
	}, nil
}

func (s *service) Coupons(ctx context.Context, accountID uuid.UUID) ([]CouponOffer, error) {
	term, err := s.terms.Current(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load current term")
	}

	purchases, err := s.accounts.ListPurchases(ctx, accountID, term)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list purchases")
	}
	purchased := make(map[enums.CouponCategory]bool, len(purchases))
	for _, p := range purchases {
		purchased[p.Category] = true
	}

	categories := enums.AllCouponCategories()
	offers := make([]CouponOffer, 0, len(categories))
	for _, category := range categories {
		offers = append(offers, CouponOffer{
			Category:  category,
			Name:      category.CouponName(),
			Cost:      category.Cost(),
			Purchased: purchased[category],
		})
	}
	return offers, nil
}

// couponCodeAttempts bounds the retries when a generated code collides
// with ux_redemptions_code. The per-term space is four digits, so
// collisions are expected once a few hundred coupons exist.
const couponCodeAttempts = 5

// Purchase debits the coupon cost, marks the category as bought for the
// term, and creates the pending redemption inside one transaction. A
// code collision rolls the whole transaction back and retries with a
// fresh code.
func (s *service) Purchase(ctx context.Context, accountID uuid.UUID, req PurchaseRequest) (*RedemptionDTO, error) {
	if !req.Category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid coupon category")
	}

	term, err := s.terms.Current(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load current term")
	}

	cost := req.Category.Cost()

	var redemption *models.Redemption
	for attempt := 1; ; attempt++ {
		code, err := newCouponCode(term)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate coupon code")
		}

		redemption = &models.Redemption{
			AccountID:  accountID,
			Category:   req.Category,
			CouponName: req.Category.CouponName(),
			Code:       code,
			Cost:       cost,
			Term:       term,
			Status:     enums.RedemptionStatusPending,
		}

		err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			return s.purchaseTx(ctx, tx, accountID, req.Category, cost, term, redemption)
		})
		if err == nil {
			break
		}
		if attempt < couponCodeAttempts && db.IsUniqueViolation(err, "ux_redemptions_code") {
			continue
		}
		return nil, err
	}

	return fromModel(redemption), nil
}

func (s *service) purchaseTx(ctx context.Context, tx *gorm.DB, accountID uuid.UUID, category enums.CouponCategory, cost decimal.Decimal, term int, redemption *models.Redemption) error {
	txAccounts := s.accounts.WithTx(tx)
	txRepo := s.repo.WithTx(tx)

	// Unlimited categories skip the one-per-term marker entirely.
	if !category.Unlimited() {
		bought, err := txAccounts.HasPurchase(ctx, accountID, category, term)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check purchases")
		}
		if bought {
			return pkgerrors.New(pkgerrors.CodeCategoryPurchased, "category already purchased this term")
		}
	}

	debited, err := txAccounts.AdjustBalance(ctx, accountID, cost.Neg())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "debit points")
	}
	if !debited {
		return pkgerrors.New(pkgerrors.CodeInsufficientPoints, "insufficient points for this coupon")
	}

	if !category.Unlimited() {
		if err := txAccounts.CreatePurchase(ctx, &models.CategoryPurchase{
			AccountID: accountID,
			Category:  category,
			Term:      term,
		}); err != nil {
			if db.IsUniqueViolation(err, "ux_category_purchase") {
				return pkgerrors.New(pkgerrors.CodeCategoryPurchased, "category already purchased this term")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark category purchased")
		}
	}

	if err := txRepo.Create(ctx, redemption); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create redemption")
	}
	return nil
}

func (s *service) ListMine(ctx context.Context, accountID uuid.UUID, params pagination.Params) (*Page, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	rows, err := s.repo.ListByAccount(ctx, accountID, cursor, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list redemptions")
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
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pending redemptions")
	}
	return buildPage(rows, params.Limit), nil
}

// Approve settles the redemption. Points moved at purchase time, so the
// decision only flips the status.
func (s *service) Approve(ctx context.Context, id uuid.UUID) (*RedemptionDTO, error) {
	redemption, err := s.findRedemption(ctx, id)
	if err != nil {
		return nil, err
	}
	if redemption.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeAlreadyResolved, "redemption already resolved")
	}

	now := time.Now().UTC()
	ok, err := s.repo.UpdateStatusIfPending(ctx, id, enums.RedemptionStatusApproved, now)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "approve redemption")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeAlreadyResolved, "redemption already resolved")
	}

	s.metrics.IncRedemptionDecision(string(enums.RedemptionStatusApproved))
	redemption.Status = enums.RedemptionStatusApproved
	redemption.ResolvedAt = &now
	return fromModel(redemption), nil
}

// Reject refunds the coupon cost in the same transaction as the status
// flip. The category purchase marker stays in place, so a rejected
// category cannot be bought again within the term.
func (s *service) Reject(ctx context.Context, id uuid.UUID) (*RedemptionDTO, error) {
	redemption, err := s.findRedemption(ctx, id)
	if err != nil {
		return nil, err
	}
	if redemption.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeAlreadyResolved, "redemption already resolved")
	}

	now := time.Now().UTC()
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		ok, err := txRepo.UpdateStatusIfPending(ctx, id, enums.RedemptionStatusRejected, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reject redemption")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeAlreadyResolved, "redemption already resolved")
		}

		refunded, err := s.accounts.WithTx(tx).AdjustBalance(ctx, redemption.AccountID, redemption.Cost)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "refund points")
		}
		if !refunded {
			return pkgerrors.New(pkgerrors.CodeInternal, "refund did not apply")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncRedemptionDecision(string(enums.RedemptionStatusRejected))
	redemption.Status = enums.RedemptionStatusRejected
	redemption.ResolvedAt = &now
	return fromModel(redemption), nil
}

func (s *service) findRedemption(ctx context.Context, id uuid.UUID) (*models.Redemption, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "redemption id required")
	}
	redemption, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "redemption not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup redemption")
	}
	return redemption, nil
}

func newCouponCode(term int) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("CUP-T%d-%04d", term, n.Int64()+1000), nil
}

func buildPage(rows []models.Redemption, limit int) *Page {
	normalized := pagination.NormalizeLimit(limit)

	page := &Page{Items: make([]RedemptionDTO, 0, len(rows))}
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
