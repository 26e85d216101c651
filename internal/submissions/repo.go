package submissions

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lsalmeida/ecoeletronico-backend/pkg/db/models"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/enums"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/pagination"
)

// Repository exposes submission persistence operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, submission *models.Submission) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Submission, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Submission, error)
	ListPending(ctx context.Context, cursor *pagination.Cursor, limit int) ([]models.Submission, error)
	UpdateStatusIfPending(ctx context.Context, id uuid.UUID, status enums.SubmissionStatus, resolvedAt time.Time) (bool, error)
	CountAll(ctx context.Context) (int64, error)
	CountApproved(ctx context.Context) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository constructs a submissions repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Submission, error) {
	var submission models.Submission
	if err := r.db.WithContext(ctx).First(&submission, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &submission, nil
}

func (r *repository) ListByAccount(ctx context.Context, accountID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Submission, error) {
	query := r.db.WithContext(ctx).
		Where("account_id = ?", accountID)
	return r.listPage(query, cursor, limit)
}

func (r *repository) ListPending(ctx context.Context, cursor *pagination.Cursor, limit int) ([]models.Submission, error) {
	query := r.db.WithContext(ctx).
		Where("status = ?", enums.SubmissionStatusPending)
	return r.listPage(query, cursor, limit)
}

func (r *repository) listPage(query *gorm.DB, cursor *pagination.Cursor, limit int) ([]models.Submission, error) {
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.Submission
	err := query.
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// UpdateStatusIfPending flips the status only while the row is still
// pending. The boolean reports whether the decision landed.
func (r *repository) UpdateStatusIfPending(ctx context.Context, id uuid.UUID, status enums.SubmissionStatus, resolvedAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("id = ? AND status = ?", id, enums.SubmissionStatusPending).
		Updates(map[string]any{
			"status":      status,
			"resolved_at": resolvedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Submission{}).Count(&count).Error
	return count, err
}

func (r *repository) CountApproved(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("status = ?", enums.SubmissionStatusApproved).
		Count(&count).Error
	return count, err
}
