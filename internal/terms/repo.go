package terms

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lsalmeida/ecoeletronico-backend/pkg/db/models"
)

const stateRowID = 1

// Repository exposes term state and snapshot persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CurrentTerm(ctx context.Context) (int, error)
	SetCurrentTerm(ctx context.Context, term int) error
	CreateSnapshot(ctx context.Context, snapshot *models.TermSnapshot) error
	ListSnapshots(ctx context.Context) ([]models.TermSnapshot, error)
	FindSnapshotByTerm(ctx context.Context, term int) (*models.TermSnapshot, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository constructs a terms repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

// CurrentTerm reads the single state row, creating it at term 1 when a
// fresh database has not been seeded yet.
func (r *repository) CurrentTerm(ctx context.Context) (int, error) {
	var state models.TermState
	err := r.db.WithContext(ctx).First(&state, "id = ?", stateRowID).Error
	if err == nil {
		return state.CurrentTerm, nil
	}
	if err != gorm.ErrRecordNotFound {
		return 0, err
	}

	state = models.TermState{ID: stateRowID, CurrentTerm: 1}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&state).Error; err != nil {
		return 0, err
	}
	return state.CurrentTerm, nil
}

func (r *repository) SetCurrentTerm(ctx context.Context, term int) error {
	return r.db.WithContext(ctx).
		Model(&models.TermState{}).
		Where("id = ?", stateRowID).
		UpdateColumn("current_term", term).Error
}

func (r *repository) CreateSnapshot(ctx context.Context, snapshot *models.TermSnapshot) error {
	return r.db.WithContext(ctx).Create(snapshot).Error
}

func (r *repository) ListSnapshots(ctx context.Context) ([]models.TermSnapshot, error) {
	var snapshots []models.TermSnapshot
	err := r.db.WithContext(ctx).
		Order("term ASC").
		Find(&snapshots).Error
	return snapshots, err
}

func (r *repository) FindSnapshotByTerm(ctx context.Context, term int) (*models.TermSnapshot, error) {
	var snapshot models.TermSnapshot
	if err := r.db.WithContext(ctx).Where("term = ?", term).First(&snapshot).Error; err != nil {
		return nil, err
	}
	return &snapshot, nil
}
