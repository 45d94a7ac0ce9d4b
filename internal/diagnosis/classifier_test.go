package diagnosis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haven-shield/insight-engine/internal/signal"
)

var diagNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func TestDiagnoseBullyingStream(t *testing.T) {
	alerts := []signal.Alert{
		{ID: "a1", ChildName: "Lina", Content: "you are a loser", Category: signal.CategoryBullying, Severity: signal.SeverityHigh, Timestamp: diagNow.Add(-time.Hour)},
		{ID: "a2", ChildName: "Lina", Content: "so stupid and ugly", Category: signal.CategoryBullying, Severity: signal.SeverityHigh, Timestamp: diagNow.Add(-2 * time.Hour)},
		{ID: "a3", ChildName: "Lina", Content: "everyone hates you loser", Category: signal.CategoryBullying, Severity: signal.SeverityMedium, Timestamp: diagNow.Add(-3 * time.Hour)},
		{ID: "a4", ChildName: "Lina", Content: "nobody wants you here", Category: signal.CategoryBullying, Severity: signal.SeverityMedium, Timestamp: diagNow.Add(-5 * time.Hour)},
		{ID: "a5", ChildName: "Lina", Content: "غبي فاشل", Category: signal.CategoryBullying, Severity: signal.SeverityHigh, Timestamp: diagNow.Add(-4 * time.Hour)},
	}

	diag := Diagnose("Lina", alerts, diagNow)
	require.NotNil(t, diag)

	assert.Equal(t, signal.ScenarioBullying, diag.Scenario)
	assert.GreaterOrEqual(t, diag.Confidence, 60.0)
	assert.LessOrEqual(t, diag.Confidence, 99.0)
	assert.Equal(t, 5, diag.AnalyzedAlerts)
	assert.Len(t, diag.Scores, 13)
	assert.NotEmpty(t, diag.Reasons)

	require.Len(t, diag.TopSignals, 3)
	for i := 1; i < len(diag.TopSignals); i++ {
		assert.GreaterOrEqual(t, diag.TopSignals[i-1].Score, diag.TopSignals[i].Score)
	}
	assert.NotEmpty(t, diag.TopSignals[0].ActionEn)
	assert.NotEmpty(t, diag.TopSignals[0].ActionAr)
	assert.Empty(t, diag.ThreatSubtype)
	assert.Empty(t, diag.ContentSubtype)
}

func TestDiagnoseNoMatchingChild(t *testing.T) {
	alerts := []signal.Alert{
		{ID: "a1", ChildName: "Omar", Content: "loser", Category: signal.CategoryBullying, Severity: signal.SeverityHigh, Timestamp: diagNow.Add(-time.Hour)},
	}

	assert.Nil(t, Diagnose("Lina", alerts, diagNow))
	assert.Nil(t, Diagnose("", alerts, diagNow))
	assert.Nil(t, Diagnose("Lina", nil, diagNow))
}

func TestDiagnoseChildNameContainment(t *testing.T) {
	alerts := []signal.Alert{
		{ID: "a1", ChildName: "lina khalil", Content: "loser", Category: signal.CategoryBullying, Severity: signal.SeverityHigh, Timestamp: diagNow.Add(-time.Hour)},
	}

	t.Run("query inside stored name", func(t *testing.T) {
		diag := Diagnose("Lina", alerts, diagNow)
		require.NotNil(t, diag)
		assert.Equal(t, 1, diag.AnalyzedAlerts)
	})

	t.Run("stored name inside query", func(t *testing.T) {
		diag := Diagnose("LINA KHALIL JR", alerts, diagNow)
		require.NotNil(t, diag)
		assert.Equal(t, 1, diag.AnalyzedAlerts)
	})
}

func TestDiagnoseThreatSubtype(t *testing.T) {
	t.Run("subtype classifier runs when threats win", func(t *testing.T) {
		alerts := []signal.Alert{
			{ID: "a1", ChildName: "Sami", Content: "send photo or i will expose you", Category: signal.CategoryThreats, Severity: signal.SeverityCritical, Timestamp: diagNow.Add(-time.Hour)},
			{ID: "a2", ChildName: "Sami", Content: "share your photos with everyone you know", Category: signal.CategoryThreats, Severity: signal.SeverityHigh, Timestamp: diagNow.Add(-2 * time.Hour)},
		}
		diag := Diagnose("Sami", alerts, diagNow)
		require.NotNil(t, diag)
		assert.Equal(t, signal.ScenarioThreatExposure, diag.Scenario)
		assert.NotEmpty(t, diag.ThreatSubtype)
		assert.Empty(t, diag.ContentSubtype)
	})

	t.Run("plain threats default to direct", func(t *testing.T) {
		alerts := []signal.Alert{
			{ID: "a1", ChildName: "Sami", Content: "i will hurt you tomorrow", Category: signal.CategoryThreats, Severity: signal.SeverityCritical, Timestamp: diagNow.Add(-time.Hour)},
		}
		diag := Diagnose("Sami", alerts, diagNow)
		require.NotNil(t, diag)
		assert.Equal(t, signal.ScenarioThreatExposure, diag.Scenario)
		assert.Equal(t, signal.ThreatSubtypeDirect, diag.ThreatSubtype)
	})
}

func TestDiagnoseContentSubtype(t *testing.T) {
	alerts := []signal.Alert{
		{ID: "a1", ChildName: "Nour", Content: "graphic gore video", Category: signal.CategoryViolence, Severity: signal.SeverityHigh, Timestamp: diagNow.Add(-time.Hour)},
		{ID: "a2", ChildName: "Nour", Content: "another violent clip", Category: signal.CategoryViolence, Severity: signal.SeverityHigh, Timestamp: diagNow.Add(-2 * time.Hour)},
	}

	diag := Diagnose("Nour", alerts, diagNow)
	require.NotNil(t, diag)
	assert.Equal(t, signal.ScenarioInappropriate, diag.Scenario)
	assert.Equal(t, signal.ContentSubtypeViolent, diag.ContentSubtype)
	assert.Empty(t, diag.ThreatSubtype)
}

func TestDiagnoseConfidenceBounds(t *testing.T) {
	// A single-category stream dominates completely; confidence still must
	// stay inside the calibrated band.
	alerts := []signal.Alert{
		{ID: "a1", ChildName: "Lina", Content: "انتحار", Category: signal.CategorySelfHarm, Severity: signal.SeverityCritical, Timestamp: diagNow.Add(-time.Hour)},
	}
	diag := Diagnose("Lina", alerts, diagNow)
	require.NotNil(t, diag)
	assert.GreaterOrEqual(t, diag.Confidence, 42.0)
	assert.LessOrEqual(t, diag.Confidence, 99.0)
}

func TestDiagnoseIsIdempotent(t *testing.T) {
	alerts := []signal.Alert{
		{ID: "a1", ChildName: "Lina", Content: "you are a loser", Category: signal.CategoryBullying, Severity: signal.SeverityHigh, Timestamp: diagNow.Add(-time.Hour)},
		{ID: "a2", ChildName: "Lina", Content: "غبي فاشل", Category: signal.CategoryBullying, Severity: signal.SeverityMedium, Timestamp: diagNow.Add(-2 * time.Hour)},
	}
	first := Diagnose("Lina", alerts, diagNow)
	second := Diagnose("Lina", alerts, diagNow)
	assert.Equal(t, first, second)
}
