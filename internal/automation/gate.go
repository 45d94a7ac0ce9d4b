package automation

import (
	"math"

	"go.uber.org/zap"

	"github.com/haven-shield/insight-engine/internal/fusion"
	"github.com/haven-shield/insight-engine/internal/signal"
)

// Command identifies one protective device command the gate can permit or
// deny.
type Command string

const (
	CommandTakeScreenshot     Command = "takeScreenshot"
	CommandNotifyParent       Command = "notifyParent"
	CommandBlockApp           Command = "blockApp"
	CommandStartLiveStream    Command = "startLiveStream"
	CommandWalkieTalkie       Command = "walkieTalkieEnable"
	CommandCutInternet        Command = "cutInternet"
	CommandBlockCameraMic     Command = "blockCameraAndMic"
	CommandLockDevice         Command = "lockDevice"
	CommandLockscreenBlackout Command = "lockscreenBlackout"
	CommandPlaySiren          Command = "playSiren"
)

// AllCommands returns the full protective command catalog.
func AllCommands() []Command {
	return []Command{
		CommandTakeScreenshot,
		CommandNotifyParent,
		CommandBlockApp,
		CommandStartLiveStream,
		CommandWalkieTalkie,
		CommandCutInternet,
		CommandBlockCameraMic,
		CommandLockDevice,
		CommandLockscreenBlackout,
		CommandPlaySiren,
	}
}

// containmentCommands require the containment tier; lockCommands require the
// full lock tier. Screenshot and parent notification are never gated.
var containmentCommands = map[Command]struct{}{
	CommandStartLiveStream: {},
	CommandWalkieTalkie:    {},
	CommandBlockApp:        {},
	CommandCutInternet:     {},
	CommandBlockCameraMic:  {},
}

var lockCommands = map[Command]struct{}{
	CommandLockDevice:         {},
	CommandLockscreenBlackout: {},
	CommandPlaySiren:          {},
}

// Decision is the gate's verdict for one command.
type Decision struct {
	Command  Command `json:"command"`
	Allowed  bool    `json:"allowed"`
	ReasonAr string  `json:"reason_ar"`
	ReasonEn string  `json:"reason_en"`
}

// Result aggregates per-command decisions into the two-tier view callers
// consume. LockEnabled implies ContainmentEnabled.
type Result struct {
	LockEnabled        bool       `json:"lock_enabled"`
	ContainmentEnabled bool       `json:"containment_enabled"`
	Confidence         float64    `json:"confidence"`
	Decisions          []Decision `json:"decisions"`
}

const (
	criticalRiskFloor       = 78.0
	criticalConfidenceFloor = 64.0
	containRiskFloor        = 62.0
	containConfidenceFloor  = 56.0
)

var severityFallbackConfidence = map[signal.Severity]float64{
	signal.SeverityCritical: 88,
	signal.SeverityHigh:     74,
	signal.SeverityMedium:   61,
	signal.SeverityLow:      45,
}

// Gate is the stateless staged policy evaluator. It holds only immutable
// configuration (the optional operator overlay); every Evaluate call computes
// from scratch and the caller re-runs it whenever severity, scenario, or
// trajectories change.
type Gate struct {
	logger  *zap.Logger
	overlay []overlayRule
}

// NewGate creates a gate with no overlay rules.
func NewGate(logger *zap.Logger) *Gate {
	return &Gate{logger: logger}
}

// Evaluate decides, per protective command, whether current evidence
// justifies executing it.
func (g *Gate) Evaluate(scenario signal.Scenario, severity signal.Severity, trajectories []fusion.Trajectory) Result {
	matched := matchTrajectories(scenario, trajectories)

	hasCritical := false
	hasContainment := false
	for _, t := range matched {
		if t.Stage == fusion.StageCritical && t.RiskScore >= criticalRiskFloor && t.Confidence >= criticalConfidenceFloor {
			hasCritical = true
		}
		if (t.Stage == fusion.StageCritical || t.Stage == fusion.StageEscalating) &&
			t.RiskScore >= containRiskFloor && t.Confidence >= containConfidenceFloor {
			hasContainment = true
		}
	}

	lockEnabled := hasCritical || severity == signal.SeverityCritical
	containmentEnabled := lockEnabled || hasContainment || severity.AtLeast(signal.SeverityHigh)

	confidence := severityFallbackConfidence[severity]
	if len(matched) > 0 {
		top := matched[0]
		confidence = top.Confidence*0.62 + top.RiskScore*0.38
	}
	confidence = math.Round(signal.Clamp(35, 99, confidence))

	decisions := g.decide(lockEnabled, containmentEnabled, scenario, severity, matched)

	if g.logger != nil {
		g.logger.Debug("automation gate evaluated",
			zap.String("scenario", string(scenario)),
			zap.String("severity", severity.String()),
			zap.Bool("lock_enabled", lockEnabled),
			zap.Bool("containment_enabled", containmentEnabled),
			zap.Int("matched_trajectories", len(matched)))
	}

	return Result{
		LockEnabled:        lockEnabled,
		ContainmentEnabled: containmentEnabled,
		Confidence:         confidence,
		Decisions:          decisions,
	}
}

// matchTrajectories filters to trajectories hinting the active scenario,
// ordered by risk then confidence.
func matchTrajectories(scenario signal.Scenario, trajectories []fusion.Trajectory) []fusion.Trajectory {
	matched := make([]fusion.Trajectory, 0, len(trajectories))
	for _, t := range trajectories {
		for _, s := range t.Scenarios {
			if s == scenario {
				matched = append(matched, t)
				break
			}
		}
	}
	// The fusion engine already sorts by (risk desc, confidence desc) and
	// filtering preserves that order, but the gate must not depend on its
	// caller's ordering.
	for i := 1; i < len(matched); i++ {
		for j := i; j > 0; j-- {
			a, b := matched[j-1], matched[j]
			if b.RiskScore > a.RiskScore || (b.RiskScore == a.RiskScore && b.Confidence > a.Confidence) {
				matched[j-1], matched[j] = b, a
			} else {
				break
			}
		}
	}
	return matched
}

func (g *Gate) decide(lockEnabled, containmentEnabled bool, scenario signal.Scenario, severity signal.Severity, matched []fusion.Trajectory) []Decision {
	decisions := make([]Decision, 0, len(AllCommands()))
	for _, cmd := range AllCommands() {
		decision := Decision{
			Command:  cmd,
			Allowed:  true,
			ReasonAr: "مسموح ضمن مستوى الخطورة الحالي",
			ReasonEn: "Permitted at the current risk level",
		}
		if _, needsContainment := containmentCommands[cmd]; needsContainment && !containmentEnabled {
			decision.Allowed = false
			decision.ReasonAr = "لم يبلغ الوضع عتبة الاحتواء"
			decision.ReasonEn = "Situation is below the containment threshold"
		}
		if _, needsLock := lockCommands[cmd]; needsLock && !lockEnabled {
			decision.Allowed = false
			decision.ReasonAr = "لم يبلغ الوضع المرحلة الحرجة"
			decision.ReasonEn = "Situation has not reached the critical stage"
		}
		decisions = append(decisions, decision)
	}
	return g.applyOverlay(decisions, scenario, severity, lockEnabled, containmentEnabled, matched)
}
