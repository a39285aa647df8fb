package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOracleAlwaysAccurate(t *testing.T) {
	oracle := NewInvestigationOracle(1.0)

	rec := oracle.Investigate("0xa", "0xb", RoleSaboteur, 1)
	assert.Equal(t, ResultSuspicious, rec.Result)
	assert.True(t, rec.Accurate)

	rec = oracle.Investigate("0xa", "0xc", RoleChef, 1)
	assert.Equal(t, ResultClear, rec.Result)
	assert.True(t, rec.Accurate)
}

func TestOracleRecordFields(t *testing.T) {
	oracle := NewInvestigationOracle(1.0)
	rec := oracle.Investigate("0xa", "0xb", RoleChef, 3)

	assert.Equal(t, "0xa", rec.Scanner)
	assert.Equal(t, "0xb", rec.Target)
	assert.Equal(t, 3, rec.Round)
	assert.False(t, rec.Timestamp.IsZero())
}

func TestOracleInaccurateReportInverts(t *testing.T) {
	// Accuracy epsilon above zero: essentially every report lies.
	oracle := NewInvestigationOracle(1e-12)

	rec := oracle.Investigate("0xa", "0xb", RoleSaboteur, 1)
	assert.Equal(t, ResultClear, rec.Result)
	assert.False(t, rec.Accurate)

	rec = oracle.Investigate("0xa", "0xc", RoleChef, 1)
	assert.Equal(t, ResultSuspicious, rec.Result)
	assert.False(t, rec.Accurate)
}

func TestOracleNoiseRate(t *testing.T) {
	// 80% accuracy over 2000 draws: the observed rate stays within five
	// standard deviations (~0.045) of the mean unless the draw is broken.
	oracle := NewInvestigationOracle(0.8)

	accurate := 0
	const trials = 2000
	for i := 0; i < trials; i++ {
		if oracle.Investigate("0xa", "0xb", RoleSaboteur, 1).Accurate {
			accurate++
		}
	}

	rate := float64(accurate) / trials
	assert.InDelta(t, 0.8, rate, 0.045)
}
