package forecast

import (
	"math"
	"sort"

	"github.com/haven-shield/insight-engine/internal/conversation"
	"github.com/haven-shield/insight-engine/internal/diagnosis"
	"github.com/haven-shield/insight-engine/internal/fusion"
	"github.com/haven-shield/insight-engine/internal/signal"
)

// Trend labels the shared direction of the conversation stream.
type Trend string

const (
	TrendRising  Trend = "rising"
	TrendStable  Trend = "stable"
	TrendCooling Trend = "cooling"
)

// Prediction is one scenario's forecast for a single horizon. RiskScore,
// Probability, and Confidence are three independently tuned outputs, not
// derivations of each other.
type Prediction struct {
	Scenario         signal.Scenario `json:"scenario"`
	RiskScore        float64         `json:"risk_score"`
	Probability      float64         `json:"probability"`
	Confidence       float64         `json:"confidence"`
	Trend            Trend           `json:"trend"`
	Drivers          []string        `json:"drivers"`
	ExplanationAr    string          `json:"explanation_ar"`
	ExplanationEn    string          `json:"explanation_en"`
	RecommendationAr string          `json:"recommendation_ar"`
	RecommendationEn string          `json:"recommendation_en"`
}

// Window holds the top predictions for one horizon.
type Window struct {
	HorizonDays int          `json:"horizon_days"`
	Predictions []Prediction `json:"predictions"`
}

const (
	defaultProfilePressure = 32.0
	maxPredictions         = 3
	maxDrivers             = 4
)

// Forecast blends the upstream components' scores into 7-day and 30-day
// top-3 scenario forecasts. When no signal exists at all it returns empty
// windows; an all-zero forecast would be misleading.
func Forecast(diag *diagnosis.Diagnosis, ctx conversation.Analysis, fus fusion.Result, profile *signal.PsychProfile) (Window, Window) {
	short := Window{HorizonDays: 7, Predictions: []Prediction{}}
	long := Window{HorizonDays: 30, Predictions: []Prediction{}}

	if diag == nil && ctx.AnalyzedAlerts == 0 && len(fus.Events) == 0 && profile == nil {
		return short, long
	}

	diagScores := rescale(diagScoreMap(diag))
	contextScores := rescale(ctx.ScenarioScores)
	fusionScores := rescale(fus.ScenarioScores)
	pressure := profilePressure(profile)

	diversityBoost := minF(12, float64(fus.Coverage.SourceCount)*1.2+fus.Coverage.DepthScore*0.06)
	trend := sharedTrend(ctx.Temporal.EscalationIndex)

	short.Predictions = horizonPredictions(7, diag, ctx, fus, diagScores, contextScores, fusionScores, pressure, diversityBoost, trend)
	long.Predictions = horizonPredictions(30, diag, ctx, fus, diagScores, contextScores, fusionScores, pressure, diversityBoost, trend)
	return short, long
}

func horizonPredictions(
	horizonDays int,
	diag *diagnosis.Diagnosis,
	ctx conversation.Analysis,
	fus fusion.Result,
	diagScores, contextScores, fusionScores map[signal.Scenario]float64,
	pressure, diversityBoost float64,
	trend Trend,
) []Prediction {
	// The horizons are deliberately asymmetric: short-term forecasts weight
	// "is this still hot", long-term forecasts weight "is pressure
	// sustained".
	horizonFactor := 1.04
	persistenceBoost := ctx.Temporal.RecencyWeight * 8
	horizonAdj := 6.0
	if horizonDays == 30 {
		horizonFactor = 0.92
		persistenceBoost = ctx.Temporal.PressureIndex * 10
		horizonAdj = -2.0
	}

	predictions := make([]Prediction, 0, 13)
	for _, scenario := range signal.AllScenarios() {
		blended := diagScores[scenario]*0.34 +
			contextScores[scenario]*0.24 +
			fusionScores[scenario]*0.30 +
			pressure*0.12 +
			diversityBoost +
			persistenceBoost

		risk := math.Round(signal.Clamp(0, 100, blended*horizonFactor))
		if risk <= 0 {
			continue
		}

		drivers := scenarioDrivers(scenario, ctx, fus)

		probability := math.Round(signal.Clamp(4, 97,
			blended*0.72+float64(len(drivers))*3+float64(fus.Coverage.SourceCount)*2.5+horizonAdj))

		diagConfidence := 0.0
		if diag != nil {
			diagConfidence = diag.Confidence
		}
		confidence := math.Round(signal.Clamp(25, 96,
			28+minF(24, float64(ctx.AnalyzedAlerts)*2.2)+
				minF(18, float64(len(fus.Events))*1.1)+
				float64(fus.Coverage.SourceCount)*3+
				diagConfidence*0.15))

		texts := forecastTexts[scenario]
		predictions = append(predictions, Prediction{
			Scenario:         scenario,
			RiskScore:        risk,
			Probability:      probability,
			Confidence:       confidence,
			Trend:            trend,
			Drivers:          drivers,
			ExplanationAr:    texts.explanationAr,
			ExplanationEn:    texts.explanationEn,
			RecommendationAr: texts.recommendationAr,
			RecommendationEn: texts.recommendationEn,
		})
	}

	sort.SliceStable(predictions, func(i, j int) bool {
		return predictions[i].RiskScore > predictions[j].RiskScore
	})
	if len(predictions) > maxPredictions {
		predictions = predictions[:maxPredictions]
	}
	return predictions
}

// rescale maps each scenario's score to 0-100 relative to the map's own
// maximum. Scenarios with no signal stay at zero.
func rescale(scores map[signal.Scenario]float64) map[signal.Scenario]float64 {
	out := signal.NewScenarioScores()
	if scores == nil {
		return out
	}
	max := 0.0
	for _, v := range scores {
		if v > max {
			max = v
		}
	}
	if max <= 0 {
		return out
	}
	for s, v := range scores {
		if v > 0 {
			out[s] = v / max * 100
		}
	}
	return out
}

func diagScoreMap(diag *diagnosis.Diagnosis) map[signal.Scenario]float64 {
	if diag == nil {
		return nil
	}
	return diag.Scores
}

func profilePressure(profile *signal.PsychProfile) float64 {
	if profile == nil {
		return defaultProfilePressure
	}
	return signal.Clamp(0, 100, profile.Anxiety*0.4+profile.Isolation*0.35+(100-profile.Mood)*0.25)
}

// sharedTrend is a property of the conversation stream, not per-scenario.
func sharedTrend(escalationIndex float64) Trend {
	switch {
	case escalationIndex >= 0.62:
		return TrendRising
	case escalationIndex <= 0.42:
		return TrendCooling
	default:
		return TrendStable
	}
}

// scenarioDrivers deduplicates driver strings from context pattern labels,
// fusion event drivers, and trajectory titles, in that priority order.
func scenarioDrivers(scenario signal.Scenario, ctx conversation.Analysis, fus fusion.Result) []string {
	drivers := make([]string, 0, maxDrivers)
	seen := make(map[string]struct{}, maxDrivers)
	push := func(label string) {
		if label == "" || len(drivers) >= maxDrivers {
			return
		}
		if _, dup := seen[label]; dup {
			return
		}
		seen[label] = struct{}{}
		drivers = append(drivers, label)
	}

	for _, p := range ctx.Patterns {
		if p.Scenario == scenario {
			push(p.LabelEn)
		}
	}
	for _, ev := range fus.Events {
		for _, s := range ev.Scenarios {
			if s == scenario {
				push(ev.DriverEn)
				break
			}
		}
	}
	for _, t := range fus.Trajectories {
		for _, s := range t.Scenarios {
			if s == scenario {
				push(t.TitleEn)
				break
			}
		}
	}

	if len(drivers) == 0 {
		for _, term := range ctx.RepeatedTerms {
			push("repeated term: " + term.Token)
		}
	}
	if len(drivers) == 0 {
		for _, label := range fus.TopDriversEn {
			push(label)
		}
	}
	return drivers
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
