// Package impact holds the environmental coefficient table for accepted
// materials and the linear calculator used for discard previews and the
// aggregate program report. Values are informational only and never feed
// point math.
package impact

// Coefficients lists the per-unit environmental figures of a material.
// Heavy metals are expressed in kilograms.
type Coefficients struct {
	WeightKg    float64
	LeadKg      float64
	MercuryKg   float64
	CadmiumKg   float64
	NickelKg    float64
	CO2Kg       float64
	EnergyKWh   float64
	WaterLiters float64
	Resources   []string
}

// Totals carries the coefficients multiplied by a submitted quantity.
type Totals struct {
	Material    string   `json:"material"`
	Quantity    int      `json:"quantity"`
	WeightKg    float64  `json:"weight_kg"`
	LeadKg      float64  `json:"lead_kg"`
	MercuryKg   float64  `json:"mercury_kg"`
	CadmiumKg   float64  `json:"cadmium_kg"`
	NickelKg    float64  `json:"nickel_kg"`
	CO2Kg       float64  `json:"co2_avoided_kg"`
	EnergyKWh   float64  `json:"energy_saved_kwh"`
	WaterLiters float64  `json:"water_saved_liters"`
	Resources   []string `json:"resources_preserved"`
}

var table = map[string]Coefficients{
	"Televisor": {
		WeightKg: 15.0, LeadKg: 0.8, MercuryKg: 0.002, CadmiumKg: 0.05, NickelKg: 0.15,
		CO2Kg: 75.0, EnergyKWh: 120.0, WaterLiters: 1500.0,
		Resources: []string{"Cobre", "Vidro", "Plástico", "Metais raros"},
	},
	"Computador": {
		WeightKg: 8.0, LeadKg: 0.5, MercuryKg: 0.001, CadmiumKg: 0.03, NickelKg: 0.1,
		CO2Kg: 50.0, EnergyKWh: 80.0, WaterLiters: 1000.0,
		Resources: []string{"Ouro", "Prata", "Cobre", "Platina", "Alumínio"},
	},
	"Notebook": {
		WeightKg: 2.5, LeadKg: 0.15, MercuryKg: 0.0005, CadmiumKg: 0.01, NickelKg: 0.05,
		CO2Kg: 25.0, EnergyKWh: 40.0, WaterLiters: 500.0,
		Resources: []string{"Lítio", "Cobalto", "Terras raras", "Alumínio"},
	},
	"Monitor": {
		WeightKg: 5.0, LeadKg: 0.3, MercuryKg: 0.001, CadmiumKg: 0.02, NickelKg: 0.08,
		CO2Kg: 30.0, EnergyKWh: 50.0, WaterLiters: 700.0,
		Resources: []string{"Vidro", "Plástico", "Metais raros"},
	},
	"Celular": {
		WeightKg: 0.15, LeadKg: 0.005, MercuryKg: 0.0001, CadmiumKg: 0.002, NickelKg: 0.01,
		CO2Kg: 10.0, EnergyKWh: 15.0, WaterLiters: 200.0,
		Resources: []string{"Ouro", "Prata", "Cobre", "Paládio", "Terras raras"},
	},
	"Liquidificador": {
		WeightKg: 1.5, LeadKg: 0.05, MercuryKg: 0.0002, CadmiumKg: 0.005, NickelKg: 0.02,
		CO2Kg: 8.0, EnergyKWh: 12.0, WaterLiters: 150.0,
		Resources: []string{"Cobre", "Alumínio", "Plástico"},
	},
	"Ferro de Passar": {
		WeightKg: 1.2, LeadKg: 0.04, MercuryKg: 0.0001, CadmiumKg: 0.003, NickelKg: 0.015,
		CO2Kg: 6.0, EnergyKWh: 10.0, WaterLiters: 120.0,
		Resources: []string{"Ferro", "Alumínio", "Cobre"},
	},
	"Ventilador": {
		WeightKg: 2.5, LeadKg: 0.1, MercuryKg: 0.0003, CadmiumKg: 0.01, NickelKg: 0.03,
		CO2Kg: 12.0, EnergyKWh: 18.0, WaterLiters: 250.0,
		Resources: []string{"Cobre", "Aço", "Alumínio", "Plástico"},
	},
	"Bateria": {
		WeightKg: 0.05, LeadKg: 0.01, MercuryKg: 0.0005, CadmiumKg: 0.008, NickelKg: 0.015,
		CO2Kg: 5.0, EnergyKWh: 8.0, WaterLiters: 100.0,
		Resources: []string{"Lítio", "Níquel", "Cobalto", "Manganês"},
	},
	"Carregador": {
		WeightKg: 0.1, LeadKg: 0.003, MercuryKg: 0.0001, CadmiumKg: 0.001, NickelKg: 0.005,
		CO2Kg: 3.0, EnergyKWh: 5.0, WaterLiters: 80.0,
		Resources: []string{"Cobre", "Plástico", "Silício"},
	},
	"Fone de Ouvido": {
		WeightKg: 0.03, LeadKg: 0.001, MercuryKg: 0.00005, CadmiumKg: 0.0005, NickelKg: 0.002,
		CO2Kg: 2.0, EnergyKWh: 3.0, WaterLiters: 50.0,
		Resources: []string{"Cobre", "Plástico", "Borracha"},
	},
}

// CoefficientsFor looks up the per-unit figures for a material.
func CoefficientsFor(material string) (Coefficients, bool) {
	c, ok := table[material]
	return c, ok
}

// Calculate multiplies the material coefficients by quantity. It returns
// ok=false for materials absent from the table (custom submissions).
func Calculate(material string, quantity int) (Totals, bool) {
	c, ok := table[material]
	if !ok || quantity <= 0 {
		return Totals{}, false
	}
	q := float64(quantity)
	resources := make([]string, len(c.Resources))
	copy(resources, c.Resources)
	return Totals{
		Material:    material,
		Quantity:    quantity,
		WeightKg:    c.WeightKg * q,
		LeadKg:      c.LeadKg * q,
		MercuryKg:   c.MercuryKg * q,
		CadmiumKg:   c.CadmiumKg * q,
		NickelKg:    c.NickelKg * q,
		CO2Kg:       c.CO2Kg * q,
		EnergyKWh:   c.EnergyKWh * q,
		WaterLiters: c.WaterLiters * q,
		Resources:   resources,
	}, true
}
