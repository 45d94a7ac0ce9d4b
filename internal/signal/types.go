package signal

import (
	"strings"
	"time"
)

// Severity represents the ordered severity scale shared by alerts and signal events
type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Weight returns the scoring weight attached to a severity level.
func (s Severity) Weight() float64 {
	switch s {
	case SeverityMedium:
		return 1.8
	case SeverityHigh:
		return 2.8
	case SeverityCritical:
		return 4.2
	default:
		return 1.0
	}
}

// AtLeast reports whether s ranks at or above other.
func (s Severity) AtLeast(other Severity) bool {
	return s >= other
}

// ParseSeverity normalizes a wire severity string. Unknown values degrade to
// low rather than failing; upstream feeds are free text.
func ParseSeverity(raw string) Severity {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "medium", "med", "moderate":
		return SeverityMedium
	case "high", "elevated":
		return SeverityHigh
	case "critical", "severe", "urgent":
		return SeverityCritical
	default:
		return SeverityLow
	}
}

// Scenario identifies one of the fixed safety scenarios a child's digital
// behavior can be classified into.
type Scenario string

const (
	ScenarioBullying           Scenario = "bullying"
	ScenarioThreatExposure     Scenario = "threat_exposure"
	ScenarioGaming             Scenario = "gaming"
	ScenarioInappropriate      Scenario = "inappropriate_content"
	ScenarioCyberCrime         Scenario = "cyber_crime"
	ScenarioCryptoScams        Scenario = "crypto_scams"
	ScenarioPhishingLinks      Scenario = "phishing_links"
	ScenarioSelfHarm           Scenario = "self_harm"
	ScenarioSexualExploitation Scenario = "sexual_exploitation"
	ScenarioAccountTheft       Scenario = "account_theft_fraud"
	ScenarioGambling           Scenario = "gambling_betting"
	ScenarioPrivacyTracking    Scenario = "privacy_tracking"
	ScenarioHarmfulChallenges  Scenario = "harmful_challenges"
)

// AllScenarios returns the closed scenario set in a stable order.
func AllScenarios() []Scenario {
	return []Scenario{
		ScenarioBullying,
		ScenarioThreatExposure,
		ScenarioGaming,
		ScenarioInappropriate,
		ScenarioCyberCrime,
		ScenarioCryptoScams,
		ScenarioPhishingLinks,
		ScenarioSelfHarm,
		ScenarioSexualExploitation,
		ScenarioAccountTheft,
		ScenarioGambling,
		ScenarioPrivacyTracking,
		ScenarioHarmfulChallenges,
	}
}

// NewScenarioScores returns a score map total over the scenario set. Every
// scoring map in the pipeline starts from this so consumers never see a
// partial map.
func NewScenarioScores() map[Scenario]float64 {
	scores := make(map[Scenario]float64, 13)
	for _, s := range AllScenarios() {
		scores[s] = 0
	}
	return scores
}

// ThreatSubtype refines a threat_exposure diagnosis.
type ThreatSubtype string

const (
	ThreatSubtypeDirect             ThreatSubtype = "direct_threat"
	ThreatSubtypeFinancialBlackmail ThreatSubtype = "financial_blackmail"
	ThreatSubtypeSexualBlackmail    ThreatSubtype = "sexual_blackmail"
)

// ContentSubtype refines an inappropriate_content diagnosis.
type ContentSubtype string

const (
	ContentSubtypeSexual  ContentSubtype = "sexual_content"
	ContentSubtypeViolent ContentSubtype = "violent_content"
)

// SourceChannel tags a fused event with its signal origin.
type SourceChannel string

const (
	ChannelConversationText SourceChannel = "conversation_text"
	ChannelVisualDetection  SourceChannel = "visual_detection"
	ChannelWebLink          SourceChannel = "web_link"
	ChannelDNSNetwork       SourceChannel = "dns_network"
	ChannelLocationRisk     SourceChannel = "location_risk"
	ChannelAppBehavior      SourceChannel = "app_behavior"
	ChannelPsychProfile     SourceChannel = "psych_profile"
	ChannelActivityPattern  SourceChannel = "activity_pattern"
)

// AllChannels returns the fixed source channel set.
func AllChannels() []SourceChannel {
	return []SourceChannel{
		ChannelConversationText,
		ChannelVisualDetection,
		ChannelWebLink,
		ChannelDNSNetwork,
		ChannelLocationRisk,
		ChannelAppBehavior,
		ChannelPsychProfile,
		ChannelActivityPattern,
	}
}

// DNSMeta carries the trigger metadata attached to DNS-originated alerts.
type DNSMeta struct {
	// Mode is "sandbox" for automatic sandbox blocks, "policy" for policy
	// blocks.
	Mode string `json:"mode"`
	// DecisionScore is the upstream resolver's decision score (0-100).
	DecisionScore float64 `json:"decision_score"`
}

// Alert is a flagged message or detection produced by the monitoring feeds.
// Alerts are externally owned input; the analysis core never mutates them.
type Alert struct {
	ID        string    `json:"id"`
	ChildName string    `json:"child_name"`
	Content   string    `json:"content"`
	Category  Category  `json:"category"`
	Severity  Severity  `json:"severity"`
	Timestamp time.Time `json:"timestamp"`
	Platform  string    `json:"platform,omitempty"`
	HasImage  bool      `json:"has_image"`
	DNS       *DNSMeta  `json:"dns,omitempty"`
}

// Weight combines severity weight and recency decay for one alert.
func (a Alert) Weight(now time.Time) float64 {
	return a.Severity.Weight() * RecencyFactor(now.Sub(a.Timestamp))
}

// RecencyFactor buckets an alert's age into a decay multiplier. Negative ages
// (clock skew from upstream devices) count as fresh.
func RecencyFactor(age time.Duration) float64 {
	hours := age.Hours()
	switch {
	case hours <= 6:
		return 1.35
	case hours <= 24:
		return 1.22
	case hours <= 72:
		return 1.1
	case hours <= 168:
		return 0.95
	default:
		return 0.78
	}
}

// RecencyWeight rescales a recency factor to the 0-1 range.
func RecencyWeight(factor float64) float64 {
	return Clamp01((factor - 0.78) / (1.35 - 0.78))
}

// EventType enumerates the typed signal events the device agents emit.
type EventType string

const (
	EventSearchIntent        EventType = "search_intent"
	EventWatchIntent         EventType = "watch_intent"
	EventAudioTranscript     EventType = "audio_transcript"
	EventLinkIntent          EventType = "link_intent"
	EventConversationPattern EventType = "conversation_pattern"
	EventBehavioralDrift     EventType = "behavioral_drift"
)

// AllEventTypes returns the fixed typed-event set.
func AllEventTypes() []EventType {
	return []EventType{
		EventSearchIntent,
		EventWatchIntent,
		EventAudioTranscript,
		EventLinkIntent,
		EventConversationPattern,
		EventBehavioralDrift,
	}
}

// Event is a typed signal event from a device agent. Externally owned input.
type Event struct {
	ID         string     `json:"id"`
	ChildName  string     `json:"child_name"`
	Type       EventType  `json:"type"`
	Content    string     `json:"content"`
	Severity   Severity   `json:"severity"`
	Confidence float64    `json:"confidence"`
	Scenarios  []Scenario `json:"scenarios,omitempty"`
	Timestamp  time.Time  `json:"timestamp"`
}

// AppUsage is one app's usage telemetry for the current day.
type AppUsage struct {
	AppName string `json:"app_name"`
	Minutes int    `json:"minutes"`
}

// Location is the device's last known location fix.
type Location struct {
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	UpdatedAt    time.Time `json:"updated_at"`
	DeviceOnline bool      `json:"device_online"`
}

// PsychProfile is the running psychological profile maintained upstream.
// Scores are 0-100; WeeklyTrend holds the last weeks' composite pressure
// points, oldest first.
type PsychProfile struct {
	Anxiety     float64   `json:"anxiety"`
	Mood        float64   `json:"mood"`
	Isolation   float64   `json:"isolation"`
	Keywords    []string  `json:"keywords,omitempty"`
	RiskSignals []string  `json:"risk_signals,omitempty"`
	WeeklyTrend []float64 `json:"weekly_trend,omitempty"`
}

// Child bundles the passive telemetry the fusion engine consumes.
type Child struct {
	Name               string        `json:"name"`
	AppUsage           []AppUsage    `json:"app_usage,omitempty"`
	Location           *Location     `json:"location,omitempty"`
	Profile            *PsychProfile `json:"profile,omitempty"`
	ScreenTimeLimitMin int           `json:"screen_time_limit_min,omitempty"`
	ScreenTimeTodayMin int           `json:"screen_time_today_min,omitempty"`
}

// Clamp bounds v to [lo, hi].
func Clamp(lo, hi, v float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp01 bounds v to [0, 1].
func Clamp01(v float64) float64 {
	return Clamp(0, 1, v)
}
