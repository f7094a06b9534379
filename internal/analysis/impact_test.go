package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcity/transit-optimizer/internal/domain"
)

func TestExpectedWait(t *testing.T) {
	assert.Equal(t, 5.0, ExpectedWait(10))
	assert.Equal(t, 2.5, ExpectedWait(5))
	assert.Equal(t, 7.5, ExpectedWait(15))
}

func TestEvaluateImpact_OneChangedOneUnchanged(t *testing.T) {
	recs := []domain.Recommendation{
		{LineID: 1, CurrentFrequencyMin: 10, RecommendedFrequencyMin: 5},
		{LineID: 2, CurrentFrequencyMin: 15, RecommendedFrequencyMin: 15},
	}

	impact := EvaluateImpact(recs)
	assert.Equal(t, 2.5, impact.TotalWaitReductionMin)
	assert.Equal(t, 1, impact.LinesChanged)
	require.NotNil(t, impact.AveragePerChangedLine)
	assert.Equal(t, 2.5, *impact.AveragePerChangedLine)
}

func TestEvaluateImpact_WideningCountsAsNegative(t *testing.T) {
	recs := []domain.Recommendation{
		{LineID: 1, CurrentFrequencyMin: 10, RecommendedFrequencyMin: 5},
		{LineID: 2, CurrentFrequencyMin: 10, RecommendedFrequencyMin: 15},
		{LineID: 3, CurrentFrequencyMin: 20, RecommendedFrequencyMin: 15},
	}

	impact := EvaluateImpact(recs)
	assert.InDelta(t, 2.5, impact.TotalWaitReductionMin, 1e-12)
	assert.Equal(t, 3, impact.LinesChanged)
	require.NotNil(t, impact.AveragePerChangedLine)
	assert.InDelta(t, 2.5/3, *impact.AveragePerChangedLine, 1e-12)
}

func TestEvaluateImpact_NothingChanged(t *testing.T) {
	for _, recs := range [][]domain.Recommendation{
		nil,
		{{LineID: 1, CurrentFrequencyMin: 12, RecommendedFrequencyMin: 12}},
	} {
		impact := EvaluateImpact(recs)
		assert.Equal(t, 0.0, impact.TotalWaitReductionMin)
		assert.Equal(t, 0, impact.LinesChanged)
		assert.Nil(t, impact.AveragePerChangedLine)
	}
}
