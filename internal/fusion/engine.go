package fusion

import (
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/haven-shield/insight-engine/internal/signal"
)

// UnifiedEvent is a value-copy event in the fused stream, tagged with its
// source channel. It owns no reference to the raw input it was derived from.
type UnifiedEvent struct {
	ID        string                `json:"id"`
	Channel   signal.SourceChannel  `json:"channel"`
	Scenarios []signal.Scenario     `json:"scenarios"`
	Severity  signal.Severity       `json:"severity"`
	Score     float64               `json:"score"`
	Timestamp time.Time             `json:"timestamp"`
	Evidence  string                `json:"evidence,omitempty"`
	DriverAr  string                `json:"driver_ar"`
	DriverEn  string                `json:"driver_en"`
}

// Coverage summarizes how broadly the evidence spans the source channels.
type Coverage struct {
	Counts      map[signal.SourceChannel]int `json:"counts"`
	SourceCount int                          `json:"source_count"`
	DepthScore  float64                      `json:"depth_score"`
}

// Result is the fusion engine's output for one child.
type Result struct {
	Events         []UnifiedEvent              `json:"events"`
	ScenarioScores map[signal.Scenario]float64 `json:"scenario_scores"`
	Coverage       Coverage                    `json:"coverage"`
	Trajectories   []Trajectory                `json:"trajectories"`
	TopDriversAr   []string                    `json:"top_drivers_ar"`
	TopDriversEn   []string                    `json:"top_drivers_en"`
}

// typeChannel maps each typed event type to its fixed source channel.
var typeChannel = map[signal.EventType]signal.SourceChannel{
	signal.EventSearchIntent:        signal.ChannelActivityPattern,
	signal.EventWatchIntent:         signal.ChannelVisualDetection,
	signal.EventAudioTranscript:     signal.ChannelConversationText,
	signal.EventLinkIntent:          signal.ChannelWebLink,
	signal.EventConversationPattern: signal.ChannelConversationText,
	signal.EventBehavioralDrift:     signal.ChannelPsychProfile,
}

// typeFallbackScenario supplies a hint when a typed event arrives without
// explicit scenario hints.
var typeFallbackScenario = map[signal.EventType]signal.Scenario{
	signal.EventSearchIntent:        signal.ScenarioInappropriate,
	signal.EventWatchIntent:         signal.ScenarioInappropriate,
	signal.EventAudioTranscript:     signal.ScenarioBullying,
	signal.EventLinkIntent:          signal.ScenarioPhishingLinks,
	signal.EventConversationPattern: signal.ScenarioBullying,
	signal.EventBehavioralDrift:     signal.ScenarioSelfHarm,
}

var typeDrivers = map[signal.EventType][2]string{
	signal.EventSearchIntent:        {"نمط بحث مقلق", "Concerning search pattern"},
	signal.EventWatchIntent:         {"نمط مشاهدة مقلق", "Concerning watch pattern"},
	signal.EventAudioTranscript:     {"مقطع صوتي مقلق", "Concerning audio transcript"},
	signal.EventLinkIntent:          {"نية فتح روابط", "Link-opening intent"},
	signal.EventConversationPattern: {"نمط محادثة متكرر", "Recurring conversation pattern"},
	signal.EventBehavioralDrift:     {"انحراف سلوكي", "Behavioral drift"},
}

// Engine fuses alerts, typed signal events, and passive telemetry into one
// event stream with burst statistics and trajectory detection.
type Engine struct {
	logger *zap.Logger
}

// New creates a fusion engine.
func New(logger *zap.Logger) *Engine {
	return &Engine{logger: logger}
}

// Fuse normalizes everything into the unified stream and derives burst
// events, chain events, coverage, and trajectories. Inputs are read-only;
// every output is constructed fresh.
func (e *Engine) Fuse(child *signal.Child, alerts []signal.Alert, events []signal.Event, now time.Time) Result {
	unified := make([]UnifiedEvent, 0, len(alerts)+len(events)+8)

	for _, alert := range alerts {
		unified = append(unified, classifyAlert(alert, now)...)
	}

	types := typeWindows(events, now)
	unified = append(unified, e.fuseTypedEvents(events, types, now)...)
	unified = append(unified, burstEvents(types, now)...)
	if chain, ok := chainEvent(types, now); ok {
		unified = append(unified, chain)
	}
	unified = append(unified, deriveTelemetry(child, now)...)

	scores := signal.NewScenarioScores()
	for _, ev := range unified {
		for _, scenario := range ev.Scenarios {
			scores[scenario] += ev.Score
		}
	}

	coverage := computeCoverage(unified)
	trajectories := evaluateTrajectories(types, channelWindows(unified, now))
	driversAr, driversEn := topDrivers(unified)

	if e.logger != nil {
		e.logger.Debug("fusion completed",
			zap.Int("events", len(unified)),
			zap.Int("sources", coverage.SourceCount),
			zap.Int("trajectories", len(trajectories)))
	}

	return Result{
		Events:         unified,
		ScenarioScores: scores,
		Coverage:       coverage,
		Trajectories:   trajectories,
		TopDriversAr:   driversAr,
		TopDriversEn:   driversEn,
	}
}

func (e *Engine) fuseTypedEvents(events []signal.Event, types map[signal.EventType]*WindowCounts, now time.Time) []UnifiedEvent {
	unified := make([]UnifiedEvent, 0, len(events))
	for _, ev := range events {
		channel, ok := typeChannel[ev.Type]
		if !ok {
			continue
		}
		if now.Sub(ev.Timestamp) > 24*time.Hour {
			continue
		}

		scenarios := ev.Scenarios
		if len(scenarios) == 0 {
			scenarios = []signal.Scenario{typeFallbackScenario[ev.Type]}
		}

		confidence := signal.Clamp(0, 100, ev.Confidence)
		base := ev.Severity.Weight() * 10 * (0.6 + 0.4*confidence/100)
		mult := burstMultiplier(ev.Type, types[ev.Type])

		drivers := typeDrivers[ev.Type]
		unified = append(unified, UnifiedEvent{
			ID:        fmt.Sprintf("fused-%s-%s", ev.Type, ev.ID),
			Channel:   channel,
			Scenarios: scenarios,
			Severity:  ev.Severity,
			Score:     base * mult,
			Timestamp: ev.Timestamp,
			Evidence:  evidence(ev.Content),
			DriverAr:  drivers[0],
			DriverEn:  drivers[1],
		})
	}
	return unified
}

// burstEvents emits one synthetic event per type whose 6h/24h window alone
// crossed the burst bars, independent of the individual raw events.
func burstEvents(types map[signal.EventType]*WindowCounts, now time.Time) []UnifiedEvent {
	bursts := make([]UnifiedEvent, 0, 2)
	for _, t := range signal.AllEventTypes() {
		w := types[t]
		severity, ok := burstSeverity(w)
		if !ok {
			continue
		}
		drivers := typeDrivers[t]
		bursts = append(bursts, UnifiedEvent{
			ID:        fmt.Sprintf("sig-burst-%s", t),
			Channel:   typeChannel[t],
			Scenarios: []signal.Scenario{typeFallbackScenario[t]},
			Severity:  severity,
			Score:     severity.Weight() * 10 * (1 + w.Acceleration),
			Timestamp: now,
			Evidence:  fmt.Sprintf("burst: %d/6h, %d/24h, accel %.2f", w.Count6h, w.Count24h, w.Acceleration),
			DriverAr:  fmt.Sprintf("تسارع إشارات: %s", drivers[0]),
			DriverEn:  fmt.Sprintf("Signal burst: %s", drivers[1]),
		})
	}
	return bursts
}

// chainEvent captures the lure-then-click pattern: search intent and link
// intent both spiking inside the same 6h window, which neither source alone
// reveals.
func chainEvent(types map[signal.EventType]*WindowCounts, now time.Time) (UnifiedEvent, bool) {
	search := types[signal.EventSearchIntent]
	link := types[signal.EventLinkIntent]
	if search.Count6h < 3 || link.Count6h < 3 {
		return UnifiedEvent{}, false
	}
	return UnifiedEvent{
		ID:        "sig-chain-search-link",
		Channel:   signal.ChannelWebLink,
		Scenarios: []signal.Scenario{signal.ScenarioPhishingLinks, signal.ScenarioCryptoScams},
		Severity:  signal.SeverityHigh,
		Score:     signal.Clamp(0, 90, 20+5*float64(search.Count6h+link.Count6h)),
		Timestamp: now,
		Evidence:  fmt.Sprintf("search=%d and link=%d inside 6h", search.Count6h, link.Count6h),
		DriverAr:  "سلسلة بحث ثم فتح روابط",
		DriverEn:  "Search-then-link chain",
	}, true
}

func computeCoverage(events []UnifiedEvent) Coverage {
	counts := make(map[signal.SourceChannel]int, 8)
	for _, c := range signal.AllChannels() {
		counts[c] = 0
	}
	for _, ev := range events {
		counts[ev.Channel]++
	}
	distinct := 0
	for _, n := range counts {
		if n > 0 {
			distinct++
		}
	}
	volume := float64(len(events))
	if volume > 55 {
		volume = 55
	}
	depth := math.Round(signal.Clamp(0, 100, float64(distinct)/8*62+minF(38, volume*0.69)))
	return Coverage{Counts: counts, SourceCount: distinct, DepthScore: depth}
}

const maxTopDrivers = 8

func topDrivers(events []UnifiedEvent) ([]string, []string) {
	ordered := make([]UnifiedEvent, len(events))
	copy(ordered, events)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Score > ordered[j].Score })

	seen := make(map[string]struct{}, maxTopDrivers)
	driversAr := make([]string, 0, maxTopDrivers)
	driversEn := make([]string, 0, maxTopDrivers)
	for _, ev := range ordered {
		if len(driversEn) >= maxTopDrivers {
			break
		}
		if _, dup := seen[ev.DriverEn]; dup || ev.DriverEn == "" {
			continue
		}
		seen[ev.DriverEn] = struct{}{}
		driversAr = append(driversAr, ev.DriverAr)
		driversEn = append(driversEn, ev.DriverEn)
	}
	return driversAr, driversEn
}
