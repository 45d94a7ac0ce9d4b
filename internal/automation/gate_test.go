package automation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/haven-shield/insight-engine/internal/fusion"
	"github.com/haven-shield/insight-engine/internal/signal"
)

func criticalTrajectory(scenario signal.Scenario) fusion.Trajectory {
	return fusion.Trajectory{
		ID:         "traj-search-link-escalation",
		Stage:      fusion.StageCritical,
		RiskScore:  92,
		Confidence: 80,
		Scenarios:  []signal.Scenario{scenario},
	}
}

func decisionFor(t *testing.T, result Result, cmd Command) Decision {
	t.Helper()
	for _, d := range result.Decisions {
		if d.Command == cmd {
			return d
		}
	}
	t.Fatalf("no decision for command %s", cmd)
	return Decision{}
}

func TestGateEvaluate(t *testing.T) {
	gate := NewGate(zap.NewNop())

	t.Run("low severity with no trajectories stays open only for observation", func(t *testing.T) {
		result := gate.Evaluate(signal.ScenarioBullying, signal.SeverityLow, nil)

		assert.False(t, result.LockEnabled)
		assert.False(t, result.ContainmentEnabled)
		assert.True(t, decisionFor(t, result, CommandTakeScreenshot).Allowed)
		assert.True(t, decisionFor(t, result, CommandNotifyParent).Allowed)
		assert.False(t, decisionFor(t, result, CommandBlockApp).Allowed)
		assert.False(t, decisionFor(t, result, CommandCutInternet).Allowed)
		assert.False(t, decisionFor(t, result, CommandLockDevice).Allowed)
		assert.False(t, decisionFor(t, result, CommandPlaySiren).Allowed)
	})

	t.Run("critical severity alone enables the full lock tier", func(t *testing.T) {
		result := gate.Evaluate(signal.ScenarioSelfHarm, signal.SeverityCritical, nil)

		assert.True(t, result.LockEnabled)
		assert.True(t, result.ContainmentEnabled)
		assert.True(t, decisionFor(t, result, CommandLockDevice).Allowed)
		assert.True(t, decisionFor(t, result, CommandCutInternet).Allowed)
	})

	t.Run("high severity enables containment but not lock", func(t *testing.T) {
		result := gate.Evaluate(signal.ScenarioBullying, signal.SeverityHigh, nil)

		assert.False(t, result.LockEnabled)
		assert.True(t, result.ContainmentEnabled)
		assert.True(t, decisionFor(t, result, CommandBlockApp).Allowed)
		assert.False(t, decisionFor(t, result, CommandLockscreenBlackout).Allowed)
	})

	t.Run("critical trajectory on the active scenario enables lock", func(t *testing.T) {
		trajectories := []fusion.Trajectory{criticalTrajectory(signal.ScenarioPhishingLinks)}
		result := gate.Evaluate(signal.ScenarioPhishingLinks, signal.SeverityMedium, trajectories)

		assert.True(t, result.LockEnabled)
		assert.True(t, result.ContainmentEnabled)
	})

	t.Run("trajectories for other scenarios are ignored", func(t *testing.T) {
		trajectories := []fusion.Trajectory{criticalTrajectory(signal.ScenarioPhishingLinks)}
		result := gate.Evaluate(signal.ScenarioBullying, signal.SeverityMedium, trajectories)

		assert.False(t, result.LockEnabled)
		assert.False(t, result.ContainmentEnabled)
	})

	t.Run("escalating trajectory above the floor enables containment only", func(t *testing.T) {
		trajectories := []fusion.Trajectory{{
			ID:         "traj-conversation-visual-pressure",
			Stage:      fusion.StageEscalating,
			RiskScore:  70,
			Confidence: 66,
			Scenarios:  []signal.Scenario{signal.ScenarioBullying},
		}}
		result := gate.Evaluate(signal.ScenarioBullying, signal.SeverityMedium, trajectories)

		assert.False(t, result.LockEnabled)
		assert.True(t, result.ContainmentEnabled)
	})

	t.Run("lock always implies containment", func(t *testing.T) {
		severities := []signal.Severity{signal.SeverityLow, signal.SeverityMedium, signal.SeverityHigh, signal.SeverityCritical}
		for _, severity := range severities {
			for _, trajectories := range [][]fusion.Trajectory{nil, {criticalTrajectory(signal.ScenarioBullying)}} {
				result := gate.Evaluate(signal.ScenarioBullying, severity, trajectories)
				if result.LockEnabled {
					assert.True(t, result.ContainmentEnabled)
				}
			}
		}
	})
}

func TestGateConfidence(t *testing.T) {
	gate := NewGate(zap.NewNop())

	t.Run("severity fallback without trajectories", func(t *testing.T) {
		assert.Equal(t, 88.0, gate.Evaluate(signal.ScenarioBullying, signal.SeverityCritical, nil).Confidence)
		assert.Equal(t, 74.0, gate.Evaluate(signal.ScenarioBullying, signal.SeverityHigh, nil).Confidence)
		assert.Equal(t, 61.0, gate.Evaluate(signal.ScenarioBullying, signal.SeverityMedium, nil).Confidence)
		assert.Equal(t, 45.0, gate.Evaluate(signal.ScenarioBullying, signal.SeverityLow, nil).Confidence)
	})

	t.Run("top trajectory blends confidence and risk", func(t *testing.T) {
		trajectories := []fusion.Trajectory{criticalTrajectory(signal.ScenarioBullying)}
		result := gate.Evaluate(signal.ScenarioBullying, signal.SeverityLow, trajectories)
		// round(80*0.62 + 92*0.38)
		assert.Equal(t, 85.0, result.Confidence)
	})
}

func TestGateOverlay(t *testing.T) {
	t.Run("overlay can only further deny", func(t *testing.T) {
		gate, err := NewGateWithOverlay(zap.NewNop(), []OverlayRule{{
			Name:       "no-siren-at-night",
			Expression: `severity == "critical"`,
			Deny:       []string{"playSiren"},
			ReasonAr:   "صفارة الإنذار معطلة بقاعدة المشغل",
			ReasonEn:   "Siren disabled by operator rule",
		}})
		require.NoError(t, err)

		result := gate.Evaluate(signal.ScenarioSelfHarm, signal.SeverityCritical, nil)

		assert.True(t, result.LockEnabled)
		siren := decisionFor(t, result, CommandPlaySiren)
		assert.False(t, siren.Allowed)
		assert.Equal(t, "Siren disabled by operator rule", siren.ReasonEn)
		// Commands outside the deny list keep the base verdict.
		assert.True(t, decisionFor(t, result, CommandLockDevice).Allowed)
	})

	t.Run("untriggered rule changes nothing", func(t *testing.T) {
		gate, err := NewGateWithOverlay(zap.NewNop(), []OverlayRule{{
			Name:       "no-siren-at-night",
			Expression: `severity == "critical"`,
			Deny:       []string{"playSiren"},
		}})
		require.NoError(t, err)

		result := gate.Evaluate(signal.ScenarioSelfHarm, signal.SeverityHigh, nil)
		// High severity never reaches the lock tier; the siren is denied by
		// the base policy, not the overlay.
		siren := decisionFor(t, result, CommandPlaySiren)
		assert.False(t, siren.Allowed)
		assert.NotEqual(t, "Siren disabled by operator rule", siren.ReasonEn)
	})

	t.Run("overlay cannot allow a denied command", func(t *testing.T) {
		gate, err := NewGateWithOverlay(zap.NewNop(), []OverlayRule{{
			Name:       "always-on",
			Expression: `true`,
			Deny:       []string{},
		}})
		require.NoError(t, err)

		result := gate.Evaluate(signal.ScenarioBullying, signal.SeverityLow, nil)
		assert.False(t, result.LockEnabled)
		assert.False(t, decisionFor(t, result, CommandLockDevice).Allowed)
	})

	t.Run("bad expression fails construction", func(t *testing.T) {
		_, err := NewGateWithOverlay(zap.NewNop(), []OverlayRule{{
			Name:       "broken",
			Expression: `severity ==`,
		}})
		assert.Error(t, err)
	})
}

func TestMatchTrajectoriesOrdering(t *testing.T) {
	trajectories := []fusion.Trajectory{
		{ID: "low", Stage: fusion.StageWatch, RiskScore: 30, Confidence: 50, Scenarios: []signal.Scenario{signal.ScenarioBullying}},
		{ID: "high", Stage: fusion.StageCritical, RiskScore: 90, Confidence: 80, Scenarios: []signal.Scenario{signal.ScenarioBullying}},
		{ID: "other", Stage: fusion.StageCritical, RiskScore: 95, Confidence: 85, Scenarios: []signal.Scenario{signal.ScenarioGaming}},
	}

	matched := matchTrajectories(signal.ScenarioBullying, trajectories)

	require.Len(t, matched, 2)
	assert.Equal(t, "high", matched[0].ID)
	assert.Equal(t, "low", matched[1].ID)
}
