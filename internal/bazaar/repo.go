package bazaar

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lsalmeida/ecoeletronico-backend/pkg/db/models"
)

const windowRowID = 1

// Repository exposes bazaar window and voucher persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Window(ctx context.Context) (*models.BazaarWindow, error)
	SetWindow(ctx context.Context, open bool, term int, at time.Time) error
	CreateVoucher(ctx context.Context, voucher *models.BazaarVoucher) error
	FindVoucherByCode(ctx context.Context, code string) (*models.BazaarVoucher, error)
	ListVouchersByAccount(ctx context.Context, accountID uuid.UUID) ([]models.BazaarVoucher, error)
	MarkUsedIfUnused(ctx context.Context, id uuid.UUID, at time.Time, notes *string) (bool, error)
	CountByTerm(ctx context.Context, term int) (total int64, used int64, err error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository constructs a bazaar repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

// Window reads the single control row, creating it closed when a fresh
// database has not been seeded yet.
func (r *repository) Window(ctx context.Context) (*models.BazaarWindow, error) {
	var window models.BazaarWindow
	err := r.db.WithContext(ctx).First(&window, "id = ?", windowRowID).Error
	if err == nil {
		return &window, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	window = models.BazaarWindow{ID: windowRowID, Open: false, Term: 1}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&window).Error; err != nil {
		return nil, err
	}
	return &window, nil
}

func (r *repository) SetWindow(ctx context.Context, open bool, term int, at time.Time) error {
	updates := map[string]any{
		"open": open,
		"term": term,
	}
	if open {
		updates["opened_at"] = at
	} else {
		updates["closed_at"] = at
	}
	return r.db.WithContext(ctx).
		Model(&models.BazaarWindow{}).
		Where("id = ?", windowRowID).
		Updates(updates).Error
}

func (r *repository) CreateVoucher(ctx context.Context, voucher *models.BazaarVoucher) error {
	return r.db.WithContext(ctx).Create(voucher).Error
}

func (r *repository) FindVoucherByCode(ctx context.Context, code string) (*models.BazaarVoucher, error) {
	var voucher models.BazaarVoucher
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&voucher).Error; err != nil {
		return nil, err
	}
	return &voucher, nil
}

func (r *repository) ListVouchersByAccount(ctx context.Context, accountID uuid.UUID) ([]models.BazaarVoucher, error) {
	var vouchers []models.BazaarVoucher
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC").
		Find(&vouchers).Error
	return vouchers, err
}

// MarkUsedIfUnused burns the voucher only once. The boolean reports
// whether this call was the one that burned it.
func (r *repository) MarkUsedIfUnused(ctx context.Context, id uuid.UUID, at time.Time, notes *string) (bool, error) {
	updates := map[string]any{
		"used":    true,
		"used_at": at,
	}
	if notes != nil {
		updates["notes"] = notes
	}
	res := r.db.WithContext(ctx).
		Model(&models.BazaarVoucher{}).
		Where("id = ? AND used = ?", id, false).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) CountByTerm(ctx context.Context, term int) (int64, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.BazaarVoucher{}).
		Where("term = ?", term).
		Count(&total).Error; err != nil {
		return 0, 0, err
	}

	var used int64
	if err := r.db.WithContext(ctx).
		Model(&models.BazaarVoucher{}).
		Where("term = ? AND used = ?", term, true).
		Count(&used).Error; err != nil {
		return 0, 0, err
	}
	return total, used, nil
}
