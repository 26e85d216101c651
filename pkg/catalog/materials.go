// Package catalog holds the static material table the school program accepts,
// with the unit point value of each item.
package catalog

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/lsalmeida/ecoeletronico-backend/pkg/enums"
)

// Material describes one accepted electronic item.
type Material struct {
	Line       enums.MaterialLine
	Name       string
	UnitPoints decimal.Decimal
}

// Custom submissions carry a caller-suggested unit value inside these bounds.
var (
	CustomUnitPointsMin = decimal.RequireFromString("0.5")
	CustomUnitPointsMax = decimal.RequireFromString("5")
)

func pts(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

var materials = []Material{
	{Line: enums.MaterialLineBrown, Name: "Televisor", UnitPoints: pts("5")},
	{Line: enums.MaterialLineBrown, Name: "Computador", UnitPoints: pts("4")},
	{Line: enums.MaterialLineBrown, Name: "Notebook", UnitPoints: pts("3.5")},
	{Line: enums.MaterialLineBrown, Name: "Monitor", UnitPoints: pts("3")},
	{Line: enums.MaterialLineBlue, Name: "Liquidificador", UnitPoints: pts("1.5")},
	{Line: enums.MaterialLineBlue, Name: "Ferro de Passar", UnitPoints: pts("1")},
	{Line: enums.MaterialLineBlue, Name: "Ventilador", UnitPoints: pts("2")},
	{Line: enums.MaterialLineGreen, Name: "Celular", UnitPoints: pts("2.5")},
	{Line: enums.MaterialLineGreen, Name: "Bateria", UnitPoints: pts("1.5")},
	{Line: enums.MaterialLineGreen, Name: "Carregador", UnitPoints: pts("1")},
	{Line: enums.MaterialLineGreen, Name: "Fone de Ouvido", UnitPoints: pts("0.5")},
}

// All returns the material table in catalog order.
func All() []Material {
	out := make([]Material, len(materials))
	copy(out, materials)
	return out
}

// ByLine returns the materials belonging to the provided line.
func ByLine(line enums.MaterialLine) []Material {
	var out []Material
	for _, m := range materials {
		if m.Line == line {
			out = append(out, m)
		}
	}
	return out
}

// Find locates a catalog material by line and case-insensitive name.
func Find(line enums.MaterialLine, name string) (Material, bool) {
	for _, m := range materials {
		if m.Line == line && strings.EqualFold(m.Name, name) {
			return m, true
		}
	}
	return Material{}, false
}
