package fusion

import (
	"time"

	"github.com/haven-shield/insight-engine/internal/signal"
)

// WindowCounts holds the rolling 1h/6h/24h counters for one signal type or
// channel, recomputed from the flat event list on every call.
type WindowCounts struct {
	Count1h      int     `json:"count_1h"`
	Count6h      int     `json:"count_6h"`
	Count24h     int     `json:"count_24h"`
	Acceleration float64 `json:"acceleration"`
	BurstRatio   float64 `json:"burst_ratio"`
}

func (w *WindowCounts) add(age time.Duration) {
	if age > 24*time.Hour {
		return
	}
	w.Count24h++
	if age <= 6*time.Hour {
		w.Count6h++
	}
	if age <= time.Hour {
		w.Count1h++
	}
}

func (w *WindowCounts) finalize() {
	if w.Count24h > 0 {
		w.Acceleration = float64(w.Count6h) / float64(w.Count24h)
	}
	if w.Count6h > 0 {
		w.BurstRatio = float64(w.Count1h) / float64(w.Count6h)
	}
}

// typeWindows computes rolling counters per typed-event type. Events older
// than 24h are discarded.
func typeWindows(events []signal.Event, now time.Time) map[signal.EventType]*WindowCounts {
	windows := make(map[signal.EventType]*WindowCounts, 6)
	for _, t := range signal.AllEventTypes() {
		windows[t] = &WindowCounts{}
	}
	for _, ev := range events {
		w, ok := windows[ev.Type]
		if !ok {
			continue
		}
		w.add(now.Sub(ev.Timestamp))
	}
	for _, w := range windows {
		w.finalize()
	}
	return windows
}

// channelWindows computes rolling counters per source channel over the fused
// event stream.
func channelWindows(events []UnifiedEvent, now time.Time) map[signal.SourceChannel]*WindowCounts {
	windows := make(map[signal.SourceChannel]*WindowCounts, 8)
	for _, c := range signal.AllChannels() {
		windows[c] = &WindowCounts{}
	}
	for _, ev := range events {
		windows[ev.Channel].add(now.Sub(ev.Timestamp))
	}
	for _, w := range windows {
		w.finalize()
	}
	return windows
}

// burstMultiplier scales a typed event's base score when its type is inside a
// frequency burst. Ranges 1.0-1.7.
func burstMultiplier(t signal.EventType, w *WindowCounts) float64 {
	if w.Count1h < 6 && w.Count6h < 8 && w.Count24h < 18 {
		return 1.0
	}
	mult := 1.35
	if w.Acceleration >= 0.6 {
		mult += 0.15
	}
	if w.BurstRatio >= 0.5 {
		mult += 0.1
	}
	if t == signal.EventLinkIntent || t == signal.EventConversationPattern {
		mult += 0.1
	}
	if mult > 1.7 {
		mult = 1.7
	}
	return mult
}

// burstSeverity decides whether a type's 6h/24h window alone justifies a
// synthetic burst event, and at which severity.
func burstSeverity(w *WindowCounts) (signal.Severity, bool) {
	sharp6 := w.Count6h >= 6
	sharp24 := w.Count24h >= 16
	accelerated := w.Count24h >= 8 && w.Acceleration >= 0.55
	switch {
	case sharp6 && sharp24:
		return signal.SeverityCritical, true
	case sharp6 || sharp24:
		return signal.SeverityHigh, true
	case accelerated:
		return signal.SeverityMedium, true
	default:
		return signal.SeverityLow, false
	}
}
