package redemptions

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lsalmeida/ecoeletronico-backend/pkg/db/models"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/enums"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/pagination"
)

// Repository exposes redemption persistence operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, redemption *models.Redemption) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Redemption, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Redemption, error)
	ListPending(ctx context.Context, cursor *pagination.Cursor, limit int) ([]models.Redemption, error)
	UpdateStatusIfPending(ctx context.Context, id uuid.UUID, status enums.RedemptionStatus, resolvedAt time.Time) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository constructs a redemptions repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, redemption *models.Redemption) error {
	return r.db.WithContext(ctx).Create(redemption).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Redemption, error) {
	var redemption models.Redemption
	if err := r.db.WithContext(ctx).First(&redemption, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &redemption, nil
}

func (r *repository) ListByAccount(ctx context.Context, accountID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Redemption, error) {
	query := r.db.WithContext(ctx).
		Where("account_id = ?", accountID)
	return r.listPage(query, cursor, limit)
}

func (r *repository) ListPending(ctx context.Context, cursor *pagination.Cursor, limit int) ([]models.Redemption, error) {
	query := r.db.WithContext(ctx).
		Where("status = ?", enums.RedemptionStatusPending)
	return r.listPage(query, cursor, limit)
}

func (r *repository) listPage(query *gorm.DB, cursor *pagination.Cursor, limit int) ([]models.Redemption, error) {
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.Redemption
	err := query.
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *repository) UpdateStatusIfPending(ctx context.Context, id uuid.UUID, status enums.RedemptionStatus, resolvedAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Redemption{}).
		Where("id = ? AND status = ?", id, enums.RedemptionStatusPending).
		Updates(map[string]any{
			"status":      status,
			"resolved_at": resolvedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
