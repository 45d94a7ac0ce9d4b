package fusion

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/haven-shield/insight-engine/internal/signal"
)

var (
	urlPattern    = regexp.MustCompile(`(https?://|www\.)\S+|\b([a-z0-9][a-z0-9\-]*\.)+[a-z]{2,}\b`)
	domainPattern = regexp.MustCompile(`([a-z0-9][a-z0-9\-]*\.)+[a-z]{2,}`)
)

var visualCues = []string{"photo", "image", "video", "screenshot", "camera", "صورة", "فيديو", "لقطة"}

const alertBaseScale = 10.0

// classifyAlert maps one alert onto 0-3 source channels and emits a fused
// event per channel. DNS-tagged alerts map exclusively to dns_network.
func classifyAlert(alert signal.Alert, now time.Time) []UnifiedEvent {
	if alert.DNS != nil {
		return []UnifiedEvent{dnsEvent(alert, now)}
	}

	normalized := signal.NormalizeText(alert.Content)
	base := alert.Weight(now) * alertBaseScale
	scenarios := alertScenarios(alert)
	events := make([]UnifiedEvent, 0, 3)

	if len(signal.Tokenize(normalized)) >= 2 || alert.Platform != "" {
		events = append(events, UnifiedEvent{
			ID:        "fused-text-" + alert.ID,
			Channel:   signal.ChannelConversationText,
			Scenarios: scenarios,
			Severity:  alert.Severity,
			Score:     base,
			Timestamp: alert.Timestamp,
			Evidence:  evidence(alert.Content),
			DriverAr:  "محادثة مقلقة",
			DriverEn:  "Concerning conversation",
		})
	}

	if alert.HasImage || containsAny(normalized, visualCues) {
		events = append(events, UnifiedEvent{
			ID:        "fused-visual-" + alert.ID,
			Channel:   signal.ChannelVisualDetection,
			Scenarios: scenarios,
			Severity:  alert.Severity,
			Score:     base * 1.1,
			Timestamp: alert.Timestamp,
			Evidence:  evidence(alert.Content),
			DriverAr:  "رصد محتوى بصري",
			DriverEn:  "Visual content detection",
		})
	}

	if urlPattern.MatchString(normalized) || alert.Category == signal.CategoryPhishing {
		linkScenarios := scenarios
		if !containsScenario(linkScenarios, signal.ScenarioPhishingLinks) {
			linkScenarios = append(append([]signal.Scenario{}, linkScenarios...), signal.ScenarioPhishingLinks)
		}
		events = append(events, UnifiedEvent{
			ID:        "fused-link-" + alert.ID,
			Channel:   signal.ChannelWebLink,
			Scenarios: linkScenarios,
			Severity:  alert.Severity,
			Score:     base * 1.15,
			Timestamp: alert.Timestamp,
			Evidence:  evidence(alert.Content),
			DriverAr:  "رابط مشبوه",
			DriverEn:  "Suspicious link",
		})
	}

	return events
}

// dnsEvent builds the single dns_network event for a DNS-triggered alert.
// Sandbox auto-blocks score higher than policy blocks, and the resolver's
// decision score adds a diminishing-returns boost capped at 0.4x.
func dnsEvent(alert signal.Alert, now time.Time) UnifiedEvent {
	mult := 1.15
	if strings.EqualFold(alert.DNS.Mode, "sandbox") {
		mult = 1.5
	}
	score := signal.Clamp(0, 100, alert.DNS.DecisionScore)
	boost := 0.4 * math.Sqrt(score/100)

	domain := domainPattern.FindString(strings.ToLower(alert.Content))
	driverEn := "Malicious domain blocked"
	driverAr := "حجب نطاق خبيث"
	if domain != "" {
		driverEn = fmt.Sprintf("Malicious domain blocked (%s)", domain)
	}

	scenarios := []signal.Scenario{signal.ScenarioPhishingLinks}
	if primary := alert.Category.PrimaryScenario(); primary != signal.ScenarioPhishingLinks {
		scenarios = append(scenarios, primary)
	}

	return UnifiedEvent{
		ID:        "fused-dns-" + alert.ID,
		Channel:   signal.ChannelDNSNetwork,
		Scenarios: scenarios,
		Severity:  alert.Severity,
		Score:     alert.Weight(now) * alertBaseScale * (mult + boost),
		Timestamp: alert.Timestamp,
		Evidence:  evidence(alert.Content),
		DriverAr:  driverAr,
		DriverEn:  driverEn,
	}
}

func alertScenarios(alert signal.Alert) []signal.Scenario {
	return []signal.Scenario{alert.Category.PrimaryScenario()}
}

func containsAny(text string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}

func containsScenario(scenarios []signal.Scenario, target signal.Scenario) bool {
	for _, s := range scenarios {
		if s == target {
			return true
		}
	}
	return false
}

func evidence(content string) string {
	runes := []rune(content)
	if len(runes) > 180 {
		return string(runes[:180])
	}
	return content
}
