package dice

type Rules interface {
	MaxAttackDice() int
	MaxDefendDice() int
	// DetermineAttackOutcome compares rolls sorted in descending order and
	// returns the troops lost by each side.
	DetermineAttackOutcome(attackerRolls, defenderRolls []int) (attackerLosses, defenderLosses int)
}

type StandardRules struct {
	AttackDice int
	DefendDice int
}

func NewStandardRules() *StandardRules {
	return &StandardRules{
		AttackDice: 3,
		DefendDice: 2,
	}
}

func (sr *StandardRules) MaxAttackDice() int {
	return sr.AttackDice
}

func (sr *StandardRules) MaxDefendDice() int {
	return sr.DefendDice
}

// DetermineAttackOutcome pairs the highest attack roll with the highest
// defense roll, and so on. The defender wins ties.
func (sr *StandardRules) DetermineAttackOutcome(attackerRolls, defenderRolls []int) (attackerLosses, defenderLosses int) {
	battles := min(len(attackerRolls), len(defenderRolls))
	for i := 0; i < battles; i++ {
		if attackerRolls[i] > defenderRolls[i] {
			defenderLosses++
		} else {
			attackerLosses++
		}
	}
	return
}

// DiceFor returns how many dice each side rolls given the troops on the
// attacking territory (one must stay behind) and the defending territory.
func DiceFor(r Rules, attackTroops, defenseTroops int) (attackDice, defenseDice int) {
	return min(r.MaxAttackDice(), attackTroops-1), min(r.MaxDefendDice(), defenseTroops)
}
