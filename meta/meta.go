// meta/meta.go
package meta

import "riskodds/dice"

// DefaultSides is the number of faces on each die unless configured.
const DefaultSides = dice.DefaultSides

// DefaultStop is the attack troop count at or below which the attacker stops.
const DefaultStop = 1

// Tolerance bounds the drift allowed when probability mass is summed.
const Tolerance = 1e-9

// SearchStart is the first attack troop count probed by the minimum troops search.
const SearchStart = 2

// MaxSearchTroops is the troop ceiling of the minimum troops search.
const MaxSearchTroops = 4096

// SimulationIterations is the default number of simulated battles.
const SimulationIterations = 50000
