package impactstats

import (
	"context"
	"testing"

	"github.com/lsalmeida/ecoeletronico-backend/pkg/db/models"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/enums"
	"github.com/lsalmeida/ecoeletronico-backend/pkg/impact"
)

type fakeRepository struct {
	Repository

	created   []models.ImpactEvent
	aggregate AggregateRow
	top       []MaterialRow
}

func (f *fakeRepository) Create(ctx context.Context, event *models.ImpactEvent) error {
	f.created = append(f.created, *event)
	return nil
}

func (f *fakeRepository) Aggregate(ctx context.Context) (*AggregateRow, error) {
	return &f.aggregate, nil
}

func (f *fakeRepository) TopMaterials(ctx context.Context, limit int) ([]MaterialRow, error) {
	if limit < len(f.top) {
		return f.top[:limit], nil
	}
	return f.top, nil
}

func TestRecordMapsTotals(t *testing.T) {
	repo := &fakeRepository{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	totals, ok := impact.Calculate("Celular", 4)
	if !ok {
		t.Fatal("expected catalog material")
	}

	if err := svc.Record(context.Background(), enums.MaterialLineGreen, totals); err != nil {
		t.Fatalf("record: %v", err)
	}

	if len(repo.created) != 1 {
		t.Fatalf("expected one event, got %d", len(repo.created))
	}
	event := repo.created[0]
	if event.Material != "Celular" || event.Quantity != 4 {
		t.Fatalf("unexpected event %+v", event)
	}
	if event.Line != enums.MaterialLineGreen {
		t.Fatalf("unexpected line %s", event.Line)
	}
	if event.WeightKg != totals.WeightKg || event.CO2Kg != totals.CO2Kg {
		t.Fatal("event totals must match the calculation")
	}
}

func TestReport(t *testing.T) {
	repo := &fakeRepository{
		aggregate: AggregateRow{
			Events:      12,
			Items:       30,
			WeightKg:    120.5,
			CO2Kg:       800,
			EnergyKWh:   1500,
			WaterLiters: 20000,
		},
		top: []MaterialRow{
			{Material: "Televisor", Items: 10, WeightKg: 150, CO2Kg: 750},
			{Material: "Celular", Items: 8, WeightKg: 1.2, CO2Kg: 96},
		},
	}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	report, err := svc.Report(context.Background())
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if report.Events != 12 || report.Items != 30 {
		t.Fatalf("unexpected totals %+v", report)
	}
	if len(report.TopMaterials) != 2 || report.TopMaterials[0].Material != "Televisor" {
		t.Fatalf("unexpected top materials %+v", report.TopMaterials)
	}
}
