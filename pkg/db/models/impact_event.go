package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/lsalmeida/ecoeletronico-backend/pkg/enums"
)

// ImpactEvent is an anonymous record emitted for consented submissions.
// It deliberately carries no account reference.
type ImpactEvent struct {
	ID          uuid.UUID          `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Line        enums.MaterialLine `gorm:"column:line;type:text;not null"`
	Material    string             `gorm:"column:material;type:text;not null;index"`
	Quantity    int                `gorm:"column:quantity;not null"`
	WeightKg    float64            `gorm:"column:weight_kg;not null"`
	LeadKg      float64            `gorm:"column:lead_kg;not null"`
	MercuryKg   float64            `gorm:"column:mercury_kg;not null"`
	CadmiumKg   float64            `gorm:"column:cadmium_kg;not null"`
	NickelKg    float64            `gorm:"column:nickel_kg;not null"`
	CO2Kg       float64            `gorm:"column:co2_kg;not null"`
	EnergyKWh   float64            `gorm:"column:energy_kwh;not null"`
	WaterLiters float64            `gorm:"column:water_liters;not null"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime"`
}
