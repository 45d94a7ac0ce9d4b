package fusion

import (
	"fmt"
	"sort"

	"github.com/haven-shield/insight-engine/internal/signal"
)

// Stage labels how far along a trajectory has progressed.
type Stage string

const (
	StageWatch      Stage = "watch"
	StageEscalating Stage = "escalating"
	StageCritical   Stage = "critical"
)

// Trajectory is a derived correlation across at least two source channels
// within a time window.
type Trajectory struct {
	ID          string                 `json:"id"`
	TitleAr     string                 `json:"title_ar"`
	TitleEn     string                 `json:"title_en"`
	Stage       Stage                  `json:"stage"`
	RiskScore   float64                `json:"risk_score"`
	Confidence  float64                `json:"confidence"`
	Scenarios   []signal.Scenario      `json:"scenarios"`
	Sources     []signal.SourceChannel `json:"sources"`
	EvidenceKey string                 `json:"evidence_key"`
}

const maxTrajectories = 6

// evaluateTrajectories runs the fixed correlation templates over the rolling
// window counters and returns matches sorted by risk then confidence.
func evaluateTrajectories(types map[signal.EventType]*WindowCounts, channels map[signal.SourceChannel]*WindowCounts) []Trajectory {
	trajectories := make([]Trajectory, 0, 4)

	search := types[signal.EventSearchIntent]
	link := types[signal.EventLinkIntent]
	watch := types[signal.EventWatchIntent]
	drift := types[signal.EventBehavioralDrift]
	conv := channels[signal.ChannelConversationText]
	visual := channels[signal.ChannelVisualDetection]
	dns := channels[signal.ChannelDNSNetwork]

	// Lure-then-click: searches and link opens spiking inside the same 6h
	// window.
	if search.Count6h >= 3 && link.Count6h >= 3 {
		risk := signal.Clamp(0, 100, 34+6*float64(search.Count6h+link.Count6h)+18*link.Acceleration)
		trajectories = append(trajectories, build(
			"traj-search-link-escalation",
			"تصاعد من البحث إلى فتح الروابط",
			"Search-to-link escalation",
			risk,
			search.Count6h+link.Count6h,
			[]signal.Scenario{signal.ScenarioPhishingLinks, signal.ScenarioCryptoScams},
			[]signal.SourceChannel{signal.ChannelActivityPattern, signal.ChannelWebLink},
			fmt.Sprintf("search6=%d|link6=%d|accel=%.2f", search.Count6h, link.Count6h, link.Acceleration),
		))
	}

	// Pressure applied over chat while imagery flows in the same window.
	if conv.Count6h >= 4 && visual.Count6h >= 2 {
		risk := signal.Clamp(0, 100, 30+7*float64(conv.Count6h)+9*float64(visual.Count6h))
		trajectories = append(trajectories, build(
			"traj-conversation-visual-pressure",
			"ضغط محادثة مع محتوى بصري",
			"Conversation-visual pressure",
			risk,
			conv.Count6h+visual.Count6h,
			[]signal.Scenario{signal.ScenarioSexualExploitation, signal.ScenarioBullying},
			[]signal.SourceChannel{signal.ChannelConversationText, signal.ChannelVisualDetection},
			fmt.Sprintf("conv6=%d|visual6=%d", conv.Count6h, visual.Count6h),
		))
	}

	// Behavioral drift co-occurring with compulsive watch/search activity
	// over a day.
	if drift.Count24h >= 4 && watch.Count24h+search.Count24h >= 4 {
		risk := signal.Clamp(0, 100, 28+8*float64(drift.Count24h)+4*float64(watch.Count24h+search.Count24h))
		trajectories = append(trajectories, build(
			"traj-behavioral-spiral",
			"دوامة سلوكية",
			"Behavioral spiral",
			risk,
			drift.Count24h+watch.Count24h+search.Count24h,
			[]signal.Scenario{signal.ScenarioSelfHarm, signal.ScenarioInappropriate},
			[]signal.SourceChannel{signal.ChannelPsychProfile, signal.ChannelActivityPattern},
			fmt.Sprintf("drift24=%d|watch24=%d|search24=%d", drift.Count24h, watch.Count24h, search.Count24h),
		))
	}

	// DNS blocks landing while links are still being chased.
	if dns.Count24h >= 2 && link.Count6h+search.Count6h >= 2 {
		risk := signal.Clamp(0, 100, 30+10*float64(dns.Count24h)+6*float64(link.Count6h+search.Count6h))
		trajectories = append(trajectories, build(
			"traj-dns-link-surface",
			"سطح هجوم شبكي عبر الروابط",
			"DNS-link attack surface",
			risk,
			dns.Count24h+link.Count6h+search.Count6h,
			[]signal.Scenario{signal.ScenarioPhishingLinks, signal.ScenarioCyberCrime},
			[]signal.SourceChannel{signal.ChannelDNSNetwork, signal.ChannelWebLink},
			fmt.Sprintf("dns24=%d|link6=%d|search6=%d", dns.Count24h, link.Count6h, search.Count6h),
		))
	}

	sort.Slice(trajectories, func(i, j int) bool {
		if trajectories[i].RiskScore != trajectories[j].RiskScore {
			return trajectories[i].RiskScore > trajectories[j].RiskScore
		}
		return trajectories[i].Confidence > trajectories[j].Confidence
	})
	if len(trajectories) > maxTrajectories {
		trajectories = trajectories[:maxTrajectories]
	}
	return trajectories
}

func build(id, titleAr, titleEn string, risk float64, windowCount int, scenarios []signal.Scenario, sources []signal.SourceChannel, evidenceKey string) Trajectory {
	stage := StageWatch
	switch {
	case risk >= 78:
		stage = StageCritical
	case risk >= 52:
		stage = StageEscalating
	}

	base := 48.0
	switch stage {
	case StageCritical:
		base = 74
	case StageEscalating:
		base = 62
	}
	confidence := signal.Clamp(0, 99, base+minF(24, 2*float64(windowCount)))

	return Trajectory{
		ID:          id,
		TitleAr:     titleAr,
		TitleEn:     titleEn,
		Stage:       stage,
		RiskScore:   risk,
		Confidence:  confidence,
		Scenarios:   scenarios,
		Sources:     sources,
		EvidenceKey: evidenceKey,
	}
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
