package match

import "github.com/okian/matchday/internal/domain/model"

// Condition weights. A fully fit, happy and sharp player plays at 100% of
// CurrentAbility; one at zero on all three plays at 70%.
const (
	conditionFloor  = 0.7
	conditionWeight = 0.1
	scale           = 100.0
)

// Condition returns the multiplier applied to a player's CurrentAbility.
func Condition(p model.Player) float64 {
	return conditionFloor +
		conditionWeight*unit(p.Fitness) +
		conditionWeight*unit(p.Morale) +
		conditionWeight*unit(p.Sharpness)
}

// Ability returns the contextual strength of a starting eleven.
func Ability(players []model.Player) float64 {
	if len(players) == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range players {
		sum += p.CurrentAbility * Condition(p)
	}
	return sum / float64(len(players))
}

func unit(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > scale:
		return 1
	default:
		return v / scale
	}
}
