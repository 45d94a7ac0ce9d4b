package signal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseSeverity(t *testing.T) {
	cases := []struct {
		raw  string
		want Severity
	}{
		{"critical", SeverityCritical},
		{"URGENT", SeverityCritical},
		{"High", SeverityHigh},
		{"elevated", SeverityHigh},
		{"medium", SeverityMedium},
		{" moderate ", SeverityMedium},
		{"low", SeverityLow},
		{"whatever", SeverityLow},
		{"", SeverityLow},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ParseSeverity(tc.raw), "raw=%q", tc.raw)
	}
}

func TestSeverityWeight(t *testing.T) {
	assert.Equal(t, 1.0, SeverityLow.Weight())
	assert.Equal(t, 1.8, SeverityMedium.Weight())
	assert.Equal(t, 2.8, SeverityHigh.Weight())
	assert.Equal(t, 4.2, SeverityCritical.Weight())
	assert.True(t, SeverityCritical.AtLeast(SeverityHigh))
	assert.False(t, SeverityMedium.AtLeast(SeverityHigh))
}

func TestRecencyFactor(t *testing.T) {
	assert.Equal(t, 1.35, RecencyFactor(2*time.Hour))
	assert.Equal(t, 1.35, RecencyFactor(-time.Minute))
	assert.Equal(t, 1.22, RecencyFactor(12*time.Hour))
	assert.Equal(t, 1.1, RecencyFactor(48*time.Hour))
	assert.Equal(t, 0.95, RecencyFactor(100*time.Hour))
	assert.Equal(t, 0.78, RecencyFactor(400*time.Hour))
}

func TestAlertWeight(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	alert := Alert{Severity: SeverityHigh, Timestamp: now.Add(-2 * time.Hour)}
	assert.InDelta(t, 2.8*1.35, alert.Weight(now), 1e-9)
}

func TestNewScenarioScores(t *testing.T) {
	scores := NewScenarioScores()
	assert.Len(t, scores, 13)
	for _, s := range AllScenarios() {
		v, ok := scores[s]
		assert.True(t, ok, "missing scenario %s", s)
		assert.Zero(t, v)
	}
}

func TestNormalizeCategory(t *testing.T) {
	assert.Equal(t, CategoryBullying, NormalizeCategory("cyber-bullying"))
	assert.Equal(t, CategoryBullying, NormalizeCategory("CYBERBULLYING"))
	assert.Equal(t, CategoryThreats, NormalizeCategory(" blackmail "))
	assert.Equal(t, CategorySelfHarm, NormalizeCategory("self harm"))
	assert.Equal(t, CategoryDNSBlock, NormalizeCategory("dns"))
	assert.Equal(t, CategoryGeneral, NormalizeCategory("something-new"))
	assert.Equal(t, CategoryGeneral, NormalizeCategory(""))
}

func TestCategoryPrimaryScenario(t *testing.T) {
	assert.Equal(t, ScenarioBullying, CategoryBullying.PrimaryScenario())
	assert.Equal(t, ScenarioPhishingLinks, CategoryDNSBlock.PrimaryScenario())
	assert.Equal(t, ScenarioInappropriate, CategoryGeneral.PrimaryScenario())
	assert.Equal(t, ScenarioSexualExploitation, CategoryGrooming.PrimaryScenario())
}
