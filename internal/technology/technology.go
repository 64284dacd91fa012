// Package technology supplies the combat multiplier the war machine reads
// from a faction's technology set. The research tree itself is an external
// collaborator; this package only interprets the set it populates.
package technology

import "thalren.vale/internal/faction"

// Military technology keys recognized during strength computation.
const (
	Metalwork = "metalwork"
	Weapons   = "weapons"
	Steel     = "steel"
)

// CombatBonus returns the multiplicative strength bonus from military tech.
func CombatBonus(f *faction.Faction) float64 {
	switch {
	case f.Techs[Steel]:
		return 1.80
	case f.Techs[Weapons]:
		return 1.50
	case f.Techs[Metalwork]:
		return 1.30
	default:
		return 1.0
	}
}
