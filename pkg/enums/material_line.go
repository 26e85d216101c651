package enums

import "fmt"

// MaterialLine groups accepted electronics into collection lines.
type MaterialLine string

const (
	MaterialLineBrown MaterialLine = "brown"
	MaterialLineBlue  MaterialLine = "blue"
	MaterialLineGreen MaterialLine = "green"
)

var validMaterialLines = []MaterialLine{
	MaterialLineBrown,
	MaterialLineBlue,
	MaterialLineGreen,
}

var materialLineLabels = map[MaterialLine]string{
	MaterialLineBrown: "Linha Marrom",
	MaterialLineBlue:  "Linha Azul",
	MaterialLineGreen: "Linha Verde",
}

// Label returns the display name used by the school program.
func (m MaterialLine) Label() string {
	return materialLineLabels[m]
}

// IsValid reports whether the value is a known MaterialLine.
func (m MaterialLine) IsValid() bool {
	for _, candidate := range validMaterialLines {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMaterialLine converts raw input into a MaterialLine.
func ParseMaterialLine(value string) (MaterialLine, error) {
	for _, candidate := range validMaterialLines {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid material line %q", value)
}
