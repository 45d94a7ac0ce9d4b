package fusion

import (
	"fmt"
	"strings"
	"time"

	"github.com/haven-shield/insight-engine/internal/signal"
)

// Passive telemetry thresholds. These exist so risk can surface from
// app-usage, location, and profile data even when no alert has fired.
const (
	appScenarioMinutes  = 40
	appHeavyMinutes     = 120
	maxAppEvents        = 4
	gpsStaleHours       = 12
	profileScoreCeiling = 70
)

// appScenarioCues maps app-name substrings to the scenario that usage of the
// app indicates.
var appScenarioCues = []struct {
	cue      string
	scenario signal.Scenario
}{
	{"bet", signal.ScenarioGambling},
	{"casino", signal.ScenarioGambling},
	{"poker", signal.ScenarioGambling},
	{"crypto", signal.ScenarioCryptoScams},
	{"trading", signal.ScenarioCryptoScams},
	{"pubg", signal.ScenarioGaming},
	{"fortnite", signal.ScenarioGaming},
	{"roblox", signal.ScenarioGaming},
	{"dating", signal.ScenarioSexualExploitation},
	{"chat roulette", signal.ScenarioSexualExploitation},
}

// deriveTelemetry turns app-usage, location, and psych-profile data into a
// handful of fused events.
func deriveTelemetry(child *signal.Child, now time.Time) []UnifiedEvent {
	if child == nil {
		return nil
	}
	events := make([]UnifiedEvent, 0, 6)
	events = append(events, appUsageEvents(child, now)...)
	if ev, ok := locationEvent(child, now); ok {
		events = append(events, ev)
	}
	events = append(events, profileEvents(child, now)...)
	return events
}

func appUsageEvents(child *signal.Child, now time.Time) []UnifiedEvent {
	events := make([]UnifiedEvent, 0, maxAppEvents)
	for _, usage := range child.AppUsage {
		if len(events) >= maxAppEvents {
			break
		}
		name := strings.ToLower(usage.AppName)

		scenario, matched := signal.Scenario(""), false
		for _, cue := range appScenarioCues {
			if strings.Contains(name, cue.cue) {
				scenario, matched = cue.scenario, true
				break
			}
		}

		switch {
		case matched && usage.Minutes >= appScenarioMinutes:
			events = append(events, UnifiedEvent{
				ID:        "fused-app-" + slug(usage.AppName),
				Channel:   signal.ChannelAppBehavior,
				Scenarios: []signal.Scenario{scenario},
				Severity:  signal.SeverityMedium,
				Score:     signal.Clamp(0, 60, float64(usage.Minutes)*0.4),
				Timestamp: now,
				Evidence:  fmt.Sprintf("%s used %d minutes today", usage.AppName, usage.Minutes),
				DriverAr:  fmt.Sprintf("استخدام مكثف لتطبيق %s", usage.AppName),
				DriverEn:  fmt.Sprintf("Heavy use of %s", usage.AppName),
			})
		case usage.Minutes >= appHeavyMinutes:
			events = append(events, UnifiedEvent{
				ID:        "fused-app-" + slug(usage.AppName),
				Channel:   signal.ChannelAppBehavior,
				Scenarios: []signal.Scenario{signal.ScenarioGaming},
				Severity:  signal.SeverityLow,
				Score:     signal.Clamp(0, 45, float64(usage.Minutes)*0.25),
				Timestamp: now,
				Evidence:  fmt.Sprintf("%s used %d minutes today", usage.AppName, usage.Minutes),
				DriverAr:  "وقت شاشة مرتفع",
				DriverEn:  "Extended screen time",
			})
		}
	}
	return events
}

func locationEvent(child *signal.Child, now time.Time) (UnifiedEvent, bool) {
	loc := child.Location
	if loc == nil || !loc.DeviceOnline {
		return UnifiedEvent{}, false
	}
	staleness := now.Sub(loc.UpdatedAt)
	if staleness < gpsStaleHours*time.Hour {
		return UnifiedEvent{}, false
	}
	// Device reports online but GPS has gone dark: location sharing was
	// likely disabled deliberately.
	return UnifiedEvent{
		ID:        "fused-location-stale",
		Channel:   signal.ChannelLocationRisk,
		Scenarios: []signal.Scenario{signal.ScenarioPrivacyTracking},
		Severity:  signal.SeverityMedium,
		Score:     signal.Clamp(20, 55, staleness.Hours()*2),
		Timestamp: now,
		Evidence:  fmt.Sprintf("GPS stale for %.0fh while device online", staleness.Hours()),
		DriverAr:  "انقطاع بيانات الموقع مع اتصال الجهاز",
		DriverEn:  "Location went dark while device online",
	}, true
}

func profileEvents(child *signal.Child, now time.Time) []UnifiedEvent {
	profile := child.Profile
	if profile == nil {
		return nil
	}
	events := make([]UnifiedEvent, 0, 2)

	overrun := child.ScreenTimeLimitMin > 0 && child.ScreenTimeTodayMin > child.ScreenTimeLimitMin
	if overrun && trendRising(profile.WeeklyTrend) {
		events = append(events, UnifiedEvent{
			ID:        "fused-profile-overrun",
			Channel:   signal.ChannelPsychProfile,
			Scenarios: []signal.Scenario{signal.ScenarioSelfHarm, signal.ScenarioGaming},
			Severity:  signal.SeverityMedium,
			Score:     38,
			Timestamp: now,
			Evidence: fmt.Sprintf("screen time %dm over a %dm limit with rising weekly pressure",
				child.ScreenTimeTodayMin-child.ScreenTimeLimitMin, child.ScreenTimeLimitMin),
			DriverAr: "تجاوز حد وقت الشاشة مع ضغط نفسي متصاعد",
			DriverEn: "Screen-time overrun with rising weekly pressure",
		})
	}

	if profile.Anxiety >= profileScoreCeiling || profile.Isolation >= profileScoreCeiling {
		events = append(events, UnifiedEvent{
			ID:        "fused-profile-pressure",
			Channel:   signal.ChannelPsychProfile,
			Scenarios: []signal.Scenario{signal.ScenarioSelfHarm, signal.ScenarioBullying},
			Severity:  signal.SeverityHigh,
			Score:     signal.Clamp(30, 70, (profile.Anxiety+profile.Isolation)/2),
			Timestamp: now,
			Evidence: fmt.Sprintf("anxiety %.0f / isolation %.0f on the running profile",
				profile.Anxiety, profile.Isolation),
			DriverAr: "مؤشرات قلق وعزلة مرتفعة",
			DriverEn: "Elevated anxiety and isolation profile",
		})
	}

	return events
}

func trendRising(points []float64) bool {
	if len(points) < 2 {
		return false
	}
	return points[len(points)-1] > points[0]
}

func slug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.ReplaceAll(s, " ", "-")
}
