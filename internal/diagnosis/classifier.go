package diagnosis

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/haven-shield/insight-engine/internal/signal"
)

const keywordFactor = 0.35

// TopSignal pairs a high-scoring alert with the suggested protective action
// for the diagnosed scenario.
type TopSignal struct {
	AlertID  string  `json:"alert_id"`
	Content  string  `json:"content"`
	Score    float64 `json:"score"`
	ActionAr string  `json:"action_ar"`
	ActionEn string  `json:"action_en"`
}

// Diagnosis is the classifier's best-guess scenario for one child. A nil
// Diagnosis is a normal outcome, not an error: it means no alert belonged to
// the child or nothing scored.
type Diagnosis struct {
	Scenario       signal.Scenario             `json:"scenario"`
	ThreatSubtype  signal.ThreatSubtype        `json:"threat_subtype,omitempty"`
	ContentSubtype signal.ContentSubtype       `json:"content_subtype,omitempty"`
	Confidence     float64                     `json:"confidence"`
	AnalyzedAlerts int                         `json:"analyzed_alerts"`
	Reasons        []string                    `json:"reasons"`
	Scores         map[signal.Scenario]float64 `json:"scores"`
	TopSignals     []TopSignal                 `json:"top_signals"`
}

// Diagnose scores the fixed scenario set from the child's alerts. Child
// identity upstream is free text, so alerts are matched by case-insensitive
// bidirectional name containment.
func Diagnose(childName string, alerts []signal.Alert, now time.Time) *Diagnosis {
	matched := filterByChild(childName, alerts)
	if len(matched) == 0 {
		return nil
	}

	scores := signal.NewScenarioScores()
	// Per-alert contribution toward each scenario, kept for top-signal
	// selection.
	perAlert := make([]map[signal.Scenario]float64, len(matched))

	for i, alert := range matched {
		contrib := make(map[signal.Scenario]float64)
		weight := alert.Weight(now)
		text := signal.NormalizeText(alert.Content)

		for scenario, boost := range categoryBoosts[alert.Category] {
			contrib[scenario] += weight * boost
		}
		for scenario, keywords := range scenarioKeywords {
			hits := countHits(text, keywords)
			if hits > 0 {
				contrib[scenario] += weight * keywordFactor * float64(hits)
			}
		}

		for scenario, v := range contrib {
			scores[scenario] += v
		}
		perAlert[i] = contrib
	}

	winner, top, second, sum := rankScores(scores)
	if top <= 0 {
		return nil
	}

	dominance := top / sum
	spread := (top - second) / top
	confidence := math.Round(signal.Clamp(42, 99, dominance*65+spread*35))

	diag := &Diagnosis{
		Scenario:       winner,
		Confidence:     confidence,
		AnalyzedAlerts: len(matched),
		Scores:         scores,
	}

	switch winner {
	case signal.ScenarioThreatExposure:
		diag.ThreatSubtype = classifyThreatSubtype(matched, now)
	case signal.ScenarioInappropriate:
		diag.ContentSubtype = classifyContentSubtype(matched, now)
	}

	diag.TopSignals = topSignals(matched, perAlert, winner, diag.ThreatSubtype, diag.ContentSubtype)
	diag.Reasons = buildReasons(matched, winner, dominance)
	return diag
}

func filterByChild(childName string, alerts []signal.Alert) []signal.Alert {
	name := strings.ToLower(strings.TrimSpace(childName))
	if name == "" {
		return nil
	}
	matched := make([]signal.Alert, 0, len(alerts))
	for _, alert := range alerts {
		owner := strings.ToLower(strings.TrimSpace(alert.ChildName))
		if owner == "" {
			continue
		}
		if strings.Contains(owner, name) || strings.Contains(name, owner) {
			matched = append(matched, alert)
		}
	}
	return matched
}

func countHits(text string, keywords []string) int {
	hits := 0
	for _, kw := range keywords {
		hits += strings.Count(text, kw)
	}
	return hits
}

func rankScores(scores map[signal.Scenario]float64) (winner signal.Scenario, top, second, sum float64) {
	for _, scenario := range signal.AllScenarios() {
		v := scores[scenario]
		sum += v
		if v > top {
			second = top
			top = v
			winner = scenario
		} else if v > second {
			second = v
		}
	}
	return winner, top, second, sum
}

func classifyThreatSubtype(alerts []signal.Alert, now time.Time) signal.ThreatSubtype {
	scores := map[signal.ThreatSubtype]float64{
		signal.ThreatSubtypeDirect:             0,
		signal.ThreatSubtypeFinancialBlackmail: 0,
		signal.ThreatSubtypeSexualBlackmail:    0,
	}
	for _, alert := range alerts {
		weight := alert.Weight(now)
		text := signal.NormalizeText(alert.Content)
		for subtype, boost := range threatSubtypeCategoryBoosts[alert.Category] {
			scores[subtype] += weight * boost
		}
		for subtype, keywords := range threatSubtypeKeywords {
			scores[subtype] += weight * keywordFactor * float64(countHits(text, keywords))
		}
	}
	best := signal.ThreatSubtypeDirect
	for _, subtype := range []signal.ThreatSubtype{signal.ThreatSubtypeFinancialBlackmail, signal.ThreatSubtypeSexualBlackmail} {
		if scores[subtype] > scores[best] {
			best = subtype
		}
	}
	return best
}

func classifyContentSubtype(alerts []signal.Alert, now time.Time) signal.ContentSubtype {
	scores := map[signal.ContentSubtype]float64{
		signal.ContentSubtypeSexual:  0,
		signal.ContentSubtypeViolent: 0,
	}
	for _, alert := range alerts {
		weight := alert.Weight(now)
		text := signal.NormalizeText(alert.Content)
		for subtype, boost := range contentSubtypeCategoryBoosts[alert.Category] {
			scores[subtype] += weight * boost
		}
		for subtype, keywords := range contentSubtypeKeywords {
			scores[subtype] += weight * keywordFactor * float64(countHits(text, keywords))
		}
	}
	if scores[signal.ContentSubtypeViolent] > scores[signal.ContentSubtypeSexual] {
		return signal.ContentSubtypeViolent
	}
	return signal.ContentSubtypeSexual
}

func topSignals(alerts []signal.Alert, perAlert []map[signal.Scenario]float64, winner signal.Scenario, threat signal.ThreatSubtype, content signal.ContentSubtype) []TopSignal {
	actionAr, actionEn := actionFor(winner, threat, content)

	type ranked struct {
		idx   int
		score float64
	}
	contenders := make([]ranked, 0, len(alerts))
	for i := range alerts {
		if score := perAlert[i][winner]; score > 0 {
			contenders = append(contenders, ranked{idx: i, score: score})
		}
	}
	sort.Slice(contenders, func(i, j int) bool {
		if contenders[i].score != contenders[j].score {
			return contenders[i].score > contenders[j].score
		}
		return contenders[i].idx < contenders[j].idx
	})
	if len(contenders) > 3 {
		contenders = contenders[:3]
	}

	signals := make([]TopSignal, 0, len(contenders))
	for _, c := range contenders {
		signals = append(signals, TopSignal{
			AlertID:  alerts[c.idx].ID,
			Content:  alerts[c.idx].Content,
			Score:    c.score,
			ActionAr: actionAr,
			ActionEn: actionEn,
		})
	}
	return signals
}

// actionFor selects the suggested action text. Subtype actions take
// precedence when a subtype classifier ran.
func actionFor(winner signal.Scenario, threat signal.ThreatSubtype, content signal.ContentSubtype) (string, string) {
	if threat != "" {
		if pair, ok := threatSubtypeActions[threat]; ok {
			return pair[0], pair[1]
		}
	}
	if content != "" {
		if pair, ok := contentSubtypeActions[content]; ok {
			return pair[0], pair[1]
		}
	}
	pair := scenarioActions[winner]
	return pair[0], pair[1]
}

func buildReasons(alerts []signal.Alert, winner signal.Scenario, dominance float64) []string {
	categories := make(map[signal.Category]int)
	highOrCritical := 0
	for _, alert := range alerts {
		categories[alert.Category]++
		if alert.Severity.AtLeast(signal.SeverityHigh) {
			highOrCritical++
		}
	}
	var topCategory signal.Category
	topCount := 0
	for c, n := range categories {
		if n > topCount || (n == topCount && c < topCategory) {
			topCategory, topCount = c, n
		}
	}

	reasons := []string{
		fmt.Sprintf("%d of %d alerts carry category %s", topCount, len(alerts), topCategory),
		fmt.Sprintf("scenario %s holds %.0f%% of the accumulated score", winner, dominance*100),
	}
	if highOrCritical > 0 {
		reasons = append(reasons, fmt.Sprintf("%d alerts at high or critical severity", highOrCritical))
	}
	return reasons
}
