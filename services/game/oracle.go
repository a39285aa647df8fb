package game

import "time"

// InvestigationResult is the report shown to the scanning player.
type InvestigationResult string

const (
	ResultSuspicious InvestigationResult = "suspicious"
	ResultClear      InvestigationResult = "clear"
)

// InvestigationRecord is the full internal record of one scan. Accurate is
// never surfaced to the scanner during play; it exists for post-game
// disclosure only.
type InvestigationRecord struct {
	Scanner   string              `json:"scanner"`
	Target    string              `json:"target"`
	Result    InvestigationResult `json:"result"`
	Accurate  bool                `json:"accurate"`
	Round     int                 `json:"round"`
	Timestamp time.Time           `json:"timestamp"`
}

// InvestigationOracle produces noisy role checks: with probability accuracy
// the report matches the target's true category, otherwise it lies.
type InvestigationOracle struct {
	accuracy float64
}

func NewInvestigationOracle(accuracy float64) *InvestigationOracle {
	return &InvestigationOracle{accuracy: accuracy}
}

// Investigate draws a fresh random bit per call. Results stay unpredictable
// even to a caller who knows the target's true role, because the draw is
// never seeded per game.
func (o *InvestigationOracle) Investigate(scanner, target string, targetRole Role, round int) InvestigationRecord {
	truthful := targetRole == RoleSaboteur

	accurate := randBool(o.accuracy)
	reportSuspicious := truthful
	if !accurate {
		reportSuspicious = !truthful
	}

	result := ResultClear
	if reportSuspicious {
		result = ResultSuspicious
	}

	return InvestigationRecord{
		Scanner:   scanner,
		Target:    target,
		Result:    result,
		Accurate:  accurate,
		Round:     round,
		Timestamp: time.Now(),
	}
}
