package accounts

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/lsalmeida/ecoeletronico-backend/pkg/db/models"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/enums"
)

// Repository exposes account persistence operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, account *models.Account) error
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
	UpdateConsent(ctx context.Context, id uuid.UUID, consent bool) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	AdjustBalance(ctx context.Context, id uuid.UUID, delta decimal.Decimal) (bool, error)
	IncrementApproved(ctx context.Context, id uuid.UUID) error
	ResetAllBalances(ctx context.Context) (int64, error)
	ListRanked(ctx context.Context) ([]models.Account, error)
	CountStudents(ctx context.Context) (int64, error)
	HasPurchase(ctx context.Context, accountID uuid.UUID, category enums.CouponCategory, term int) (bool, error)
	ListPurchases(ctx context.Context, accountID uuid.UUID, term int) ([]models.CategoryPurchase, error)
	CreatePurchase(ctx context.Context, purchase *models.CategoryPurchase) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository constructs an accounts repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, account *models.Account) error {
	return r.db.WithContext(ctx).Create(account).Error
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).First(&account, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *repository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
}

func (r *repository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	return r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ?", id).
		UpdateColumn("password_hash", hash).Error
}

func (r *repository) UpdateConsent(ctx context.Context, id uuid.UUID, consent bool) error {
	return r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ?", id).
		UpdateColumn("lgpd_consent", consent).Error
}

func (r *repository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ?", id).
		UpdateColumn("is_active", active).Error
}

// AdjustBalance applies delta only while the resulting balance stays
// non-negative. The boolean reports whether a row was updated.
func (r *repository) AdjustBalance(ctx context.Context, id uuid.UUID, delta decimal.Decimal) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ? AND balance + ? >= 0", id, delta).
		UpdateColumn("balance", gorm.Expr("balance + ?", delta))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) IncrementApproved(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ?", id).
		UpdateColumn("approved_submissions", gorm.Expr("approved_submissions + 1")).Error
}

func (r *repository) ResetAllBalances(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("balance <> 0").
		UpdateColumn("balance", decimal.Zero)
	return res.RowsAffected, res.Error
}

func (r *repository) ListRanked(ctx context.Context) ([]models.Account, error) {
	var accounts []models.Account
	err := r.db.WithContext(ctx).
		Where("role = ?", enums.RoleStudent).
		Order("balance DESC, created_at ASC").
		Find(&accounts).Error
	return accounts, err
}

func (r *repository) CountStudents(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("role = ?", enums.RoleStudent).
		Count(&count).Error
	return count, err
}

func (r *repository) HasPurchase(ctx context.Context, accountID uuid.UUID, category enums.CouponCategory, term int) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CategoryPurchase{}).
		Where("account_id = ? AND category = ? AND term = ?", accountID, category, term).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) ListPurchases(ctx context.Context, accountID uuid.UUID, term int) ([]models.CategoryPurchase, error) {
	var purchases []models.CategoryPurchase
	err := r.db.WithContext(ctx).
		Where("account_id = ? AND term = ?", accountID, term).
		Find(&purchases).Error
	return purchases, err
}

func (r *repository) CreatePurchase(ctx context.Context, purchase *models.CategoryPurchase) error {
	return r.db.WithContext(ctx).Create(purchase).Error
}
