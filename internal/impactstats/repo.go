package impactstats

import (
	"context"

	"gorm.io/gorm"

	"github.com/lsalmeida/ecoeletronico-backend/pkg/db/models"
)

// AggregateRow carries the summed environmental columns.
type AggregateRow struct {
	Events      int64   `gorm:"column:events"`
	Items       int64   `gorm:"column:items"`
	WeightKg    float64 `gorm:"column:weight_kg"`
	LeadKg      float64 `gorm:"column:lead_kg"`
	MercuryKg   float64 `gorm:"column:mercury_kg"`
	CadmiumKg   float64 `gorm:"column:cadmium_kg"`
	NickelKg    float64 `gorm:"column:nickel_kg"`
	CO2Kg       float64 `gorm:"column:co2_kg"`
	EnergyKWh   float64 `gorm:"column:energy_kwh"`
	WaterLiters float64 `gorm:"column:water_liters"`
}

// MaterialRow is one material aggregated across events.
type MaterialRow struct {
	Material string  `gorm:"column:material"`
	Items    int64   `gorm:"column:items"`
	WeightKg float64 `gorm:"column:weight_kg"`
	CO2Kg    float64 `gorm:"column:co2_kg"`
}

// Repository exposes anonymous impact event persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, event *models.ImpactEvent) error
	Aggregate(ctx context.Context) (*AggregateRow, error)
	TopMaterials(ctx context.Context, limit int) ([]MaterialRow, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository constructs an impact repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, event *models.ImpactEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *repository) Aggregate(ctx context.Context) (*AggregateRow, error) {
	var row AggregateRow
	err := r.db.WithContext(ctx).
		Model(&models.ImpactEvent{}).
		Select(`COUNT(*) AS events,
			COALESCE(SUM(quantity), 0) AS items,
			COALESCE(SUM(weight_kg), 0) AS weight_kg,
			COALESCE(SUM(lead_kg), 0) AS lead_kg,
			COALESCE(SUM(mercury_kg), 0) AS mercury_kg,
			COALESCE(SUM(cadmium_kg), 0) AS cadmium_kg,
			COALESCE(SUM(nickel_kg), 0) AS nickel_kg,
			COALESCE(SUM(co2_kg), 0) AS co2_kg,
			COALESCE(SUM(energy_kwh), 0) AS energy_kwh,
			COALESCE(SUM(water_liters), 0) AS water_liters`).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) TopMaterials(ctx context.Context, limit int) ([]MaterialRow, error) {
	var rows []MaterialRow
	err := r.db.WithContext(ctx).
		Model(&models.ImpactEvent{}).
		Select(`material,
			COALESCE(SUM(quantity), 0) AS items,
			COALESCE(SUM(weight_kg), 0) AS weight_kg,
			COALESCE(SUM(co2_kg), 0) AS co2_kg`).
		Group("material").
		Order("items DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}
