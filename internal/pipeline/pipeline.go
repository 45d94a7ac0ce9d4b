package pipeline

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/haven-shield/insight-engine/internal/automation"
	"github.com/haven-shield/insight-engine/internal/conversation"
	"github.com/haven-shield/insight-engine/internal/diagnosis"
	"github.com/haven-shield/insight-engine/internal/forecast"
	"github.com/haven-shield/insight-engine/internal/fusion"
	"github.com/haven-shield/insight-engine/internal/metrics"
	"github.com/haven-shield/insight-engine/internal/signal"
)

// Request bundles everything the pipeline needs for one child. Now defaults
// to the wall clock; tests pin it so repeated runs are bit-identical.
type Request struct {
	ChildName string
	Child     *signal.Child
	Alerts    []signal.Alert
	Events    []signal.Event
	Now       time.Time
}

// Snapshot is one full analysis result, ready for the dashboard layer and
// the automation dispatcher.
type Snapshot struct {
	ID              string                `json:"id"`
	ChildName       string                `json:"child_name"`
	GeneratedAt     time.Time             `json:"generated_at"`
	OverallSeverity signal.Severity       `json:"overall_severity"`
	ActiveScenario  signal.Scenario       `json:"active_scenario"`
	Context         conversation.Analysis `json:"context"`
	Diagnosis       *diagnosis.Diagnosis  `json:"diagnosis,omitempty"`
	Fusion          fusion.Result         `json:"fusion"`
	Forecast7       forecast.Window       `json:"forecast_7d"`
	Forecast30      forecast.Window       `json:"forecast_30d"`
	Automation      automation.Result     `json:"automation"`
}

// Engine runs the five analysis stages in order for one child. It holds no
// per-child state; concurrent Run calls are independent.
type Engine struct {
	logger    *zap.Logger
	collector *metrics.Collector
	fusion    *fusion.Engine
	gate      *automation.Gate
}

// New creates a pipeline engine.
func New(logger *zap.Logger, collector *metrics.Collector, gate *automation.Gate) *Engine {
	return &Engine{
		logger:    logger,
		collector: collector,
		fusion:    fusion.New(logger),
		gate:      gate,
	}
}

// Run executes context analysis, diagnosis, fusion, forecasting, and the
// automation gate. It never fails on empty input; every stage has a defined
// neutral result.
func (e *Engine) Run(ctx context.Context, req Request) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := req.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	started := time.Now()

	contextAnalysis := e.timed("context", func() conversation.Analysis {
		return conversation.Analyze(req.Alerts, now)
	})

	var diag *diagnosis.Diagnosis
	e.timedStage("diagnosis", func() {
		diag = diagnosis.Diagnose(req.ChildName, req.Alerts, now)
	})

	var fused fusion.Result
	e.timedStage("fusion", func() {
		fused = e.fusion.Fuse(req.Child, req.Alerts, req.Events, now)
	})

	var profile *signal.PsychProfile
	if req.Child != nil {
		profile = req.Child.Profile
	}

	var forecast7, forecast30 forecast.Window
	e.timedStage("forecast", func() {
		forecast7, forecast30 = forecast.Forecast(diag, contextAnalysis, fused, profile)
	})

	severity := overallSeverity(req.Alerts, now)
	scenario := activeScenario(diag, fused)

	var gateResult automation.Result
	e.timedStage("automation", func() {
		gateResult = e.gate.Evaluate(scenario, severity, fused.Trajectories)
	})

	snapshot := &Snapshot{
		ID:              uuid.New().String(),
		ChildName:       req.ChildName,
		GeneratedAt:     now,
		OverallSeverity: severity,
		ActiveScenario:  scenario,
		Context:         contextAnalysis,
		Diagnosis:       diag,
		Fusion:          fused,
		Forecast7:       forecast7,
		Forecast30:      forecast30,
		Automation:      gateResult,
	}

	e.record(snapshot)
	e.logger.Info("analysis pipeline completed",
		zap.String("child", req.ChildName),
		zap.String("snapshot_id", snapshot.ID),
		zap.String("scenario", string(scenario)),
		zap.String("severity", severity.String()),
		zap.Int("fused_events", len(fused.Events)),
		zap.Int("trajectories", len(fused.Trajectories)),
		zap.Duration("duration", time.Since(started)))

	return snapshot, nil
}

func (e *Engine) timed(stage string, fn func() conversation.Analysis) conversation.Analysis {
	started := time.Now()
	result := fn()
	e.observe(stage, started)
	return result
}

func (e *Engine) timedStage(stage string, fn func()) {
	started := time.Now()
	fn()
	e.observe(stage, started)
}

func (e *Engine) observe(stage string, started time.Time) {
	if e.collector != nil {
		e.collector.AnalysisDuration.WithLabelValues(stage).Observe(time.Since(started).Seconds())
	}
}

func (e *Engine) record(snapshot *Snapshot) {
	if e.collector == nil {
		return
	}
	e.collector.AnalysesTotal.WithLabelValues("ok").Inc()
	if snapshot.Diagnosis != nil {
		e.collector.DiagnosesTotal.WithLabelValues(string(snapshot.Diagnosis.Scenario)).Inc()
	}
	e.collector.FusedEventsTotal.Add(float64(len(snapshot.Fusion.Events)))
	for _, t := range snapshot.Fusion.Trajectories {
		e.collector.TrajectoriesTotal.WithLabelValues(string(t.Stage)).Inc()
	}
	for _, d := range snapshot.Automation.Decisions {
		e.collector.GateDecisionsTotal.WithLabelValues(string(d.Command), strconv.FormatBool(d.Allowed)).Inc()
	}
}

// overallSeverity is the maximum severity among the last day's alerts,
// falling back to the stream maximum, then low.
func overallSeverity(alerts []signal.Alert, now time.Time) signal.Severity {
	recent := signal.SeverityLow
	overall := signal.SeverityLow
	sawRecent := false
	for _, alert := range alerts {
		if alert.Severity > overall {
			overall = alert.Severity
		}
		if now.Sub(alert.Timestamp) <= 24*time.Hour {
			sawRecent = true
			if alert.Severity > recent {
				recent = alert.Severity
			}
		}
	}
	if sawRecent {
		return recent
	}
	return overall
}

// activeScenario prefers the diagnosis; without one, the top fused scenario
// drives the gate.
func activeScenario(diag *diagnosis.Diagnosis, fused fusion.Result) signal.Scenario {
	if diag != nil {
		return diag.Scenario
	}
	best := signal.ScenarioInappropriate
	bestScore := 0.0
	for _, scenario := range signal.AllScenarios() {
		if score := fused.ScenarioScores[scenario]; score > bestScore {
			best, bestScore = scenario, score
		}
	}
	return best
}
