package conversation

import (
	"sort"
	"strings"
	"time"

	"github.com/haven-shield/insight-engine/internal/signal"
)

const (
	maxRepeatedTerms    = 20
	minTermCount        = 3
	maxPatternEvidence  = 4
	maxEvidenceSnippet  = 180
)

// Term is a token repeated across the analyzed alerts.
type Term struct {
	Token string `json:"token"`
	Count int    `json:"count"`
}

// PatternSignal is one fixed pattern's accumulated evidence for this
// analysis call. Rebuilt fresh on every invocation.
type PatternSignal struct {
	ID       string          `json:"id"`
	Scenario signal.Scenario `json:"scenario"`
	LabelAr  string          `json:"label_ar"`
	LabelEn  string          `json:"label_en"`
	Hits     int             `json:"hits"`
	Score    float64         `json:"score"`
	Evidence []string        `json:"evidence,omitempty"`
}

// Temporal carries the conversation-stream pressure indices.
type Temporal struct {
	RecencyWeight   float64 `json:"recency_weight"`
	EscalationIndex float64 `json:"escalation_index"`
	PressureIndex   float64 `json:"pressure_index"`
}

// Analysis is the context analyzer's output for one child's alert stream.
type Analysis struct {
	AnalyzedMessages int                         `json:"analyzed_messages"`
	AnalyzedAlerts   int                         `json:"analyzed_alerts"`
	RepeatedTerms    []Term                      `json:"repeated_terms"`
	Patterns         []PatternSignal             `json:"patterns"`
	ScenarioScores   map[signal.Scenario]float64 `json:"scenario_scores"`
	Temporal         Temporal                    `json:"temporal"`
}

// Analyze normalizes and tokenizes the alert stream, matches the fixed
// behavioral patterns, and computes the temporal indices. Empty input yields
// a defined neutral result, never an error.
func Analyze(alerts []signal.Alert, now time.Time) Analysis {
	if len(alerts) == 0 {
		return Analysis{
			RepeatedTerms:  []Term{},
			Patterns:       []PatternSignal{},
			ScenarioScores: signal.NewScenarioScores(),
			Temporal: Temporal{
				RecencyWeight:   0.6,
				EscalationIndex: 0.5,
				PressureIndex:   0.2,
			},
		}
	}

	analysis := Analysis{
		AnalyzedAlerts: len(alerts),
		ScenarioScores: signal.NewScenarioScores(),
	}

	normalized := make([]string, len(alerts))
	weights := make([]float64, len(alerts))
	termCounts := make(map[string]int)

	for i, alert := range alerts {
		normalized[i] = signal.NormalizeText(alert.Content)
		weights[i] = alert.Weight(now)
		if normalized[i] != "" {
			analysis.AnalyzedMessages++
		}
		for _, tok := range signal.Tokenize(normalized[i]) {
			if _, skip := stopwords[tok]; skip {
				continue
			}
			termCounts[tok]++
		}
	}

	analysis.RepeatedTerms = topTerms(termCounts)
	analysis.Patterns = matchPatterns(alerts, normalized, weights, analysis.ScenarioScores)
	analysis.Temporal = temporalIndices(alerts, weights, analysis, now)
	return analysis
}

func topTerms(counts map[string]int) []Term {
	terms := make([]Term, 0, len(counts))
	for tok, count := range counts {
		if count >= minTermCount {
			terms = append(terms, Term{Token: tok, Count: count})
		}
	}
	sort.Slice(terms, func(i, j int) bool {
		if terms[i].Count != terms[j].Count {
			return terms[i].Count > terms[j].Count
		}
		return terms[i].Token < terms[j].Token
	})
	if len(terms) > maxRepeatedTerms {
		terms = terms[:maxRepeatedTerms]
	}
	return terms
}

func matchPatterns(alerts []signal.Alert, normalized []string, weights []float64, scores map[signal.Scenario]float64) []PatternSignal {
	signals := make([]PatternSignal, 0, len(patternDefs))
	for _, def := range patternDefs {
		ps := PatternSignal{
			ID:       def.ID,
			Scenario: def.Scenario,
			LabelAr:  def.LabelAr,
			LabelEn:  def.LabelEn,
		}
		for i, text := range normalized {
			hits := 0
			for _, kw := range def.Keywords {
				hits += strings.Count(text, kw)
			}
			if hits == 0 {
				continue
			}
			contribution := float64(hits) * def.Weight * weights[i]
			ps.Hits += hits
			ps.Score += contribution
			scores[def.Scenario] += contribution
			if len(ps.Evidence) < maxPatternEvidence {
				ps.Evidence = append(ps.Evidence, snippet(alerts[i].Content))
			}
		}
		if ps.Hits > 0 {
			signals = append(signals, ps)
		}
	}
	return signals
}

func snippet(content string) string {
	runes := []rune(content)
	if len(runes) > maxEvidenceSnippet {
		return string(runes[:maxEvidenceSnippet])
	}
	return content
}

type stampedWeight struct {
	ts     time.Time
	weight float64
}

func temporalIndices(alerts []signal.Alert, weights []float64, analysis Analysis, now time.Time) Temporal {
	ordered := make([]stampedWeight, len(alerts))
	for i, alert := range alerts {
		ordered[i] = stampedWeight{ts: alert.Timestamp, weight: weights[i]}
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ts.Before(ordered[j].ts) })

	// Escalation: compare average alert weight before and after the midpoint
	// of the chronological sequence.
	escalation := 0.5
	if len(ordered) >= 2 {
		mid := len(ordered) / 2
		earlyAvg := avgWeight(ordered[:mid])
		lateAvg := avgWeight(ordered[mid:])
		escalation = signal.Clamp01(0.5 + (lateAvg-earlyAvg)/4)
	}

	latest := ordered[len(ordered)-1].ts
	recency := signal.RecencyWeight(signal.RecencyFactor(now.Sub(latest)))

	highOrCritical := 0
	for _, alert := range alerts {
		if alert.Severity.AtLeast(signal.SeverityHigh) {
			highOrCritical++
		}
	}
	pressure := signal.Clamp01(0.22 +
		0.03*float64(len(analysis.RepeatedTerms)) +
		minF(0.35, 0.05*float64(len(analysis.Patterns))) +
		minF(0.35, 0.04*float64(highOrCritical)))

	return Temporal{
		RecencyWeight:   recency,
		EscalationIndex: escalation,
		PressureIndex:   pressure,
	}
}

func avgWeight(part []stampedWeight) float64 {
	if len(part) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range part {
		sum += s.weight
	}
	return sum / float64(len(part))
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
