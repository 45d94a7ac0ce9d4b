package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/haven-shield/insight-engine/internal/automation"
	"github.com/haven-shield/insight-engine/internal/signal"
)

var pipeNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func newTestEngine() *Engine {
	return New(zap.NewNop(), nil, automation.NewGate(zap.NewNop()))
}

func TestRunEmptyInput(t *testing.T) {
	engine := newTestEngine()

	snapshot, err := engine.Run(context.Background(), Request{ChildName: "Lina", Now: pipeNow})
	require.NoError(t, err)

	assert.NotEmpty(t, snapshot.ID)
	assert.Equal(t, "Lina", snapshot.ChildName)
	assert.Equal(t, pipeNow, snapshot.GeneratedAt)
	assert.Equal(t, signal.SeverityLow, snapshot.OverallSeverity)
	assert.Equal(t, signal.ScenarioInappropriate, snapshot.ActiveScenario)
	assert.Nil(t, snapshot.Diagnosis)
	assert.Empty(t, snapshot.Forecast7.Predictions)
	assert.Empty(t, snapshot.Forecast30.Predictions)
	assert.False(t, snapshot.Automation.LockEnabled)
	assert.Len(t, snapshot.Automation.Decisions, 10)
}

func TestRunFullStream(t *testing.T) {
	engine := newTestEngine()

	alerts := []signal.Alert{
		{ID: "a1", ChildName: "Lina", Content: "you are a loser", Category: signal.CategoryBullying, Severity: signal.SeverityHigh, Timestamp: pipeNow.Add(-time.Hour)},
		{ID: "a2", ChildName: "Lina", Content: "stupid ugly loser", Category: signal.CategoryBullying, Severity: signal.SeverityCritical, Timestamp: pipeNow.Add(-2 * time.Hour)},
	}

	snapshot, err := engine.Run(context.Background(), Request{
		ChildName: "Lina",
		Alerts:    alerts,
		Now:       pipeNow,
	})
	require.NoError(t, err)

	assert.Equal(t, signal.SeverityCritical, snapshot.OverallSeverity)
	assert.Equal(t, signal.ScenarioBullying, snapshot.ActiveScenario)
	require.NotNil(t, snapshot.Diagnosis)
	assert.Equal(t, signal.ScenarioBullying, snapshot.Diagnosis.Scenario)
	assert.Equal(t, 2, snapshot.Context.AnalyzedAlerts)
	assert.NotEmpty(t, snapshot.Fusion.Events)
	assert.NotEmpty(t, snapshot.Forecast7.Predictions)
	// Critical severity forces the lock tier regardless of trajectories.
	assert.True(t, snapshot.Automation.LockEnabled)
	assert.True(t, snapshot.Automation.ContainmentEnabled)
}

func TestRunIsIdempotentExceptID(t *testing.T) {
	engine := newTestEngine()
	req := Request{
		ChildName: "Lina",
		Alerts: []signal.Alert{
			{ID: "a1", ChildName: "Lina", Content: "you are a loser", Category: signal.CategoryBullying, Severity: signal.SeverityHigh, Timestamp: pipeNow.Add(-time.Hour)},
		},
		Events: []signal.Event{
			{ID: "e1", ChildName: "Lina", Type: signal.EventSearchIntent, Content: "how to hide chats", Severity: signal.SeverityMedium, Confidence: 70, Timestamp: pipeNow.Add(-time.Hour)},
		},
		Now: pipeNow,
	}

	first, err := engine.Run(context.Background(), req)
	require.NoError(t, err)
	second, err := engine.Run(context.Background(), req)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	first.ID, second.ID = "", ""
	assert.Equal(t, first, second)
}

func TestRunCancelledContext(t *testing.T) {
	engine := newTestEngine()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.Run(ctx, Request{ChildName: "Lina", Now: pipeNow})
	assert.Error(t, err)
}

func TestOverallSeverity(t *testing.T) {
	t.Run("recent alerts dominate", func(t *testing.T) {
		alerts := []signal.Alert{
			{Severity: signal.SeverityCritical, Timestamp: pipeNow.Add(-72 * time.Hour)},
			{Severity: signal.SeverityMedium, Timestamp: pipeNow.Add(-time.Hour)},
		}
		assert.Equal(t, signal.SeverityMedium, overallSeverity(alerts, pipeNow))
	})

	t.Run("falls back to the stream maximum", func(t *testing.T) {
		alerts := []signal.Alert{
			{Severity: signal.SeverityHigh, Timestamp: pipeNow.Add(-90 * time.Hour)},
			{Severity: signal.SeverityLow, Timestamp: pipeNow.Add(-80 * time.Hour)},
		}
		assert.Equal(t, signal.SeverityHigh, overallSeverity(alerts, pipeNow))
	})

	t.Run("empty stream is low", func(t *testing.T) {
		assert.Equal(t, signal.SeverityLow, overallSeverity(nil, pipeNow))
	})
}
