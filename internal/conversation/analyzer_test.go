package conversation

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haven-shield/insight-engine/internal/signal"
)

var analyzeNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func bullyAlert(id string, age time.Duration, content string) signal.Alert {
	return signal.Alert{
		ID:        id,
		ChildName: "Lina",
		Content:   content,
		Category:  signal.CategoryBullying,
		Severity:  signal.SeverityHigh,
		Timestamp: analyzeNow.Add(-age),
	}
}

func TestAnalyzeEmptyInput(t *testing.T) {
	result := Analyze(nil, analyzeNow)

	assert.Zero(t, result.AnalyzedAlerts)
	assert.Zero(t, result.AnalyzedMessages)
	assert.Empty(t, result.RepeatedTerms)
	assert.Empty(t, result.Patterns)
	assert.Len(t, result.ScenarioScores, 13)
	assert.Equal(t, 0.6, result.Temporal.RecencyWeight)
	assert.Equal(t, 0.5, result.Temporal.EscalationIndex)
	assert.Equal(t, 0.2, result.Temporal.PressureIndex)
}

func TestAnalyzePatternMatching(t *testing.T) {
	alerts := []signal.Alert{
		bullyAlert("a1", time.Hour, "you are such a loser, everyone hates you"),
		bullyAlert("a2", 2*time.Hour, "l-o-s-e-r nobody likes you"),
		bullyAlert("a3", 3*time.Hour, "stupid and ugly, just a loser"),
	}

	result := Analyze(alerts, analyzeNow)

	require.Len(t, result.Patterns, 1)
	pattern := result.Patterns[0]
	assert.Equal(t, "pat-insult-repetition", pattern.ID)
	assert.Equal(t, signal.ScenarioBullying, pattern.Scenario)
	assert.GreaterOrEqual(t, pattern.Hits, 5)
	assert.Positive(t, pattern.Score)
	assert.NotEmpty(t, pattern.Evidence)
	assert.Positive(t, result.ScenarioScores[signal.ScenarioBullying])
	assert.Zero(t, result.ScenarioScores[signal.ScenarioGambling])
}

func TestAnalyzeRepeatedTerms(t *testing.T) {
	alerts := []signal.Alert{
		bullyAlert("a1", time.Hour, "loser loser"),
		bullyAlert("a2", 2*time.Hour, "loser again"),
	}

	result := Analyze(alerts, analyzeNow)

	require.NotEmpty(t, result.RepeatedTerms)
	assert.Equal(t, "loser", result.RepeatedTerms[0].Token)
	assert.Equal(t, 3, result.RepeatedTerms[0].Count)
}

func TestAnalyzeStopwordsExcluded(t *testing.T) {
	alerts := []signal.Alert{
		bullyAlert("a1", time.Hour, "you you you and and and"),
	}

	result := Analyze(alerts, analyzeNow)
	assert.Empty(t, result.RepeatedTerms)
}

func TestAnalyzeTermCap(t *testing.T) {
	var alerts []signal.Alert
	content := ""
	for i := 0; i < 25; i++ {
		content += fmt.Sprintf(" term%02d term%02d term%02d", i, i, i)
	}
	alerts = append(alerts, bullyAlert("a1", time.Hour, content))

	result := Analyze(alerts, analyzeNow)
	assert.Len(t, result.RepeatedTerms, 20)
}

func TestAnalyzeEscalation(t *testing.T) {
	t.Run("rising severity lifts the index", func(t *testing.T) {
		alerts := []signal.Alert{
			{ID: "a1", Content: "x y", Severity: signal.SeverityLow, Timestamp: analyzeNow.Add(-10 * time.Hour)},
			{ID: "a2", Content: "x y", Severity: signal.SeverityLow, Timestamp: analyzeNow.Add(-8 * time.Hour)},
			{ID: "a3", Content: "x y", Severity: signal.SeverityCritical, Timestamp: analyzeNow.Add(-2 * time.Hour)},
			{ID: "a4", Content: "x y", Severity: signal.SeverityCritical, Timestamp: analyzeNow.Add(-time.Hour)},
		}
		result := Analyze(alerts, analyzeNow)
		assert.Greater(t, result.Temporal.EscalationIndex, 0.5)
	})

	t.Run("cooling severity lowers the index", func(t *testing.T) {
		alerts := []signal.Alert{
			{ID: "a1", Content: "x y", Severity: signal.SeverityCritical, Timestamp: analyzeNow.Add(-10 * time.Hour)},
			{ID: "a2", Content: "x y", Severity: signal.SeverityCritical, Timestamp: analyzeNow.Add(-8 * time.Hour)},
			{ID: "a3", Content: "x y", Severity: signal.SeverityLow, Timestamp: analyzeNow.Add(-2 * time.Hour)},
			{ID: "a4", Content: "x y", Severity: signal.SeverityLow, Timestamp: analyzeNow.Add(-time.Hour)},
		}
		result := Analyze(alerts, analyzeNow)
		assert.Less(t, result.Temporal.EscalationIndex, 0.5)
	})

	t.Run("single alert stays neutral", func(t *testing.T) {
		result := Analyze([]signal.Alert{bullyAlert("a1", time.Hour, "x y")}, analyzeNow)
		assert.Equal(t, 0.5, result.Temporal.EscalationIndex)
	})
}

func TestAnalyzeRecencyWeight(t *testing.T) {
	fresh := Analyze([]signal.Alert{bullyAlert("a1", time.Hour, "x y")}, analyzeNow)
	stale := Analyze([]signal.Alert{bullyAlert("a1", 300*time.Hour, "x y")}, analyzeNow)

	assert.Equal(t, 1.0, fresh.Temporal.RecencyWeight)
	assert.Equal(t, 0.0, stale.Temporal.RecencyWeight)
}

func TestAnalyzeIsIdempotent(t *testing.T) {
	alerts := []signal.Alert{
		bullyAlert("a1", time.Hour, "you are such a loser"),
		bullyAlert("a2", 2*time.Hour, "stupid loser"),
	}
	first := Analyze(alerts, analyzeNow)
	second := Analyze(alerts, analyzeNow)
	assert.Equal(t, first, second)
}
