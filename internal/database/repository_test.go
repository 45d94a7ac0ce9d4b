package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haven-shield/insight-engine/internal/signal"
)

func TestChildRecordRoundTrip(t *testing.T) {
	t.Run("zero-score profile survives a round trip", func(t *testing.T) {
		child := signal.Child{
			Name: "Lina",
			Profile: &signal.PsychProfile{
				Anxiety:   0,
				Mood:      0,
				Isolation: 0,
				Keywords:  []string{"alone"},
			},
		}

		record, err := childRecordFrom(child)
		require.NoError(t, err)
		require.True(t, record.HasProfile)

		loaded := record.toChild()
		require.NotNil(t, loaded.Profile)
		assert.Equal(t, 0.0, loaded.Profile.Mood)
		assert.Equal(t, []string{"alone"}, loaded.Profile.Keywords)
	})

	t.Run("no profile stays nil", func(t *testing.T) {
		record, err := childRecordFrom(signal.Child{Name: "Omar"})
		require.NoError(t, err)
		assert.False(t, record.HasProfile)
		assert.Nil(t, record.toChild().Profile)
	})

	t.Run("telemetry fields carry through", func(t *testing.T) {
		fixedAt := time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)
		child := signal.Child{
			Name:     "Lina",
			AppUsage: []signal.AppUsage{{AppName: "chatly", Minutes: 95}},
			Location: &signal.Location{
				Latitude:     24.71,
				Longitude:    46.68,
				UpdatedAt:    fixedAt,
				DeviceOnline: true,
			},
			ScreenTimeLimitMin: 180,
			ScreenTimeTodayMin: 140,
		}

		record, err := childRecordFrom(child)
		require.NoError(t, err)

		loaded := record.toChild()
		require.NotNil(t, loaded.Location)
		assert.Equal(t, fixedAt, loaded.Location.UpdatedAt)
		assert.True(t, loaded.Location.DeviceOnline)
		assert.Equal(t, child.AppUsage, loaded.AppUsage)
		assert.Equal(t, 180, loaded.ScreenTimeLimitMin)
	})
}
