package impactstats

import (
	"context"
	"fmt"

	"github.com/lsalmeida/ecoeletronico-backend/pkg/db/models"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/enums"
	pkgerrors "github.com/lsalmeida/ecoeletronico-backend/pkg/errors"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/impact"
)

const topMaterialsLimit = 10

// MaterialSummary is one material row of the impact report.
type MaterialSummary struct {
	Material string  `json:"material"`
	Items    int64   `json:"items"`
	WeightKg float64 `json:"weight_kg"`
	CO2Kg    float64 `json:"co2_avoided_kg"`
}

// Report aggregates every recorded impact event.
type Report struct {
	Events       int64             `json:"events"`
	Items        int64             `json:"items"`
	WeightKg     float64           `json:"weight_kg"`
	LeadKg       float64           `json:"lead_kg"`
	MercuryKg    float64           `json:"mercury_kg"`
	CadmiumKg    float64           `json:"cadmium_kg"`
	NickelKg     float64           `json:"nickel_kg"`
	CO2Kg        float64           `json:"co2_avoided_kg"`
	EnergyKWh    float64           `json:"energy_saved_kwh"`
	WaterLiters  float64           `json:"water_saved_liters"`
	TopMaterials []MaterialSummary `json:"top_materials"`
}

// Service records anonymous impact events and builds the school report.
type Service interface {
	Record(ctx context.Context, line enums.MaterialLine, totals impact.Totals) error
	Report(ctx context.Context) (*Report, error)
}

type service struct {
	repo Repository
}

// NewService constructs an impact stats service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("impact repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Record(ctx context.Context, line enums.MaterialLine, totals impact.Totals) error {
	event := &models.ImpactEvent{
		Line:        line,
		Material:    totals.Material,
		Quantity:    totals.Quantity,
		WeightKg:    totals.WeightKg,
		LeadKg:      totals.LeadKg,
		MercuryKg:   totals.MercuryKg,
		CadmiumKg:   totals.CadmiumKg,
		NickelKg:    totals.NickelKg,
		CO2Kg:       totals.CO2Kg,
		EnergyKWh:   totals.EnergyKWh,
		WaterLiters: totals.WaterLiters,
	}
	if err := s.repo.Create(ctx, event); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create impact event")
	}
	return nil
}

func (s *service) Report(ctx context.Context) (*Report, error) {
	aggregate, err := s.repo.Aggregate(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate impact events")
	}
	top, err := s.repo.TopMaterials(ctx, topMaterialsLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rank materials")
	}

	report := &Report{
		Events:       aggregate.Events,
		Items:        aggregate.Items,
		WeightKg:     aggregate.WeightKg,
		LeadKg:       aggregate.LeadKg,
		MercuryKg:    aggregate.MercuryKg,
		CadmiumKg:    aggregate.CadmiumKg,
		NickelKg:     aggregate.NickelKg,
		CO2Kg:        aggregate.CO2Kg,
		EnergyKWh:    aggregate.EnergyKWh,
		WaterLiters:  aggregate.WaterLiters,
		TopMaterials: make([]MaterialSummary, 0, len(top)),
	}
	for _, row := range top {
		report.TopMaterials = append(report.TopMaterials, MaterialSummary{
			Material: row.Material,
			Items:    row.Items,
			WeightKg: row.WeightKg,
			CO2Kg:    row.CO2Kg,
		})
	}
	return report, nil
}
