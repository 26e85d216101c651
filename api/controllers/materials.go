package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/lsalmeida/ecoeletronico-backend/api/responses"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/catalog"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/enums"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/impact"
)

type materialEntry struct {
	Line       enums.MaterialLine `json:"line"`
	LineLabel  string             `json:"line_label"`
	Name       string             `json:"name"`
	UnitPoints decimal.Decimal    `json:"unit_points"`
	UnitImpact *impact.Totals     `json:"unit_impact,omitempty"`
}

type materialsResponse struct {
	Materials           []materialEntry `json:"materials"`
	CustomUnitPointsMin decimal.Decimal `json:"custom_unit_points_min"`
	CustomUnitPointsMax decimal.Decimal `json:"custom_unit_points_max"`
}

// MaterialsList exposes the fixed catalog with per-unit points and impact.
func MaterialsList() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all := catalog.All()
		entries := make([]materialEntry, 0, len(all))
		for _, m := range all {
			entry := materialEntry{
				Line:       m.Line,
				LineLabel:  m.Line.Label(),
				Name:       m.Name,
				UnitPoints: m.UnitPoints,
			}
			if totals, ok := impact.Calculate(m.Name, 1); ok {
				entry.UnitImpact = &totals
			}
			entries = append(entries, entry)
		}

		responses.WriteSuccess(w, materialsResponse{
			Materials:           entries,
			CustomUnitPointsMin: catalog.CustomUnitPointsMin,
			CustomUnitPointsMax: catalog.CustomUnitPointsMax,
		})
	}
}
