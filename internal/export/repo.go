package export

import (
	"context"

	"gorm.io/gorm"

	"github.com/lsalmeida/ecoeletronico-backend/pkg/db/models"
)

// Repository reads full tables for the backup export.
type Repository interface {
	ListAccounts(ctx context.Context) ([]models.Account, error)
	ListSubmissions(ctx context.Context) ([]models.Submission, error)
	ListRedemptions(ctx context.Context) ([]models.Redemption, error)
	ListSnapshots(ctx context.Context) ([]models.TermSnapshot, error)
	ListVouchers(ctx context.Context) ([]models.BazaarVoucher, error)
	ListImpactEvents(ctx context.Context) ([]models.ImpactEvent, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository constructs an export repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListAccounts(ctx context.Context) ([]models.Account, error) {
	var rows []models.Account
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&rows).Error
	return rows, err
}

func (r *repository) ListSubmissions(ctx context.Context) ([]models.Submission, error) {
	var rows []models.Submission
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&rows).Error
	return rows, err
}

func (r *repository) ListRedemptions(ctx context.Context) ([]models.Redemption, error) {
	var rows []models.Redemption
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&rows).Error
	return rows, err
}

func (r *repository) ListSnapshots(ctx context.Context) ([]models.TermSnapshot, error) {
	var rows []models.TermSnapshot
	err := r.db.WithContext(ctx).Order("term ASC").Find(&rows).Error
	return rows, err
}

func (r *repository) ListVouchers(ctx context.Context) ([]models.BazaarVoucher, error) {
	var rows []models.BazaarVoucher
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&rows).Error
	return rows, err
}

func (r *repository) ListImpactEvents(ctx context.Context) ([]models.ImpactEvent, error) {
	var rows []models.ImpactEvent
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&rows).Error
	return rows, err
}
