package kafka

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	t.Run("rfc3339", func(t *testing.T) {
		ts := parseTimestamp("2026-03-14T12:30:00Z")
		assert.Equal(t, time.Date(2026, 3, 14, 12, 30, 0, 0, time.UTC), ts)
	})

	t.Run("legacy space-separated format", func(t *testing.T) {
		ts := parseTimestamp("2026-03-14 12:30:00")
		assert.Equal(t, time.Date(2026, 3, 14, 12, 30, 0, 0, time.UTC), ts)
	})

	t.Run("garbage degrades to now", func(t *testing.T) {
		before := time.Now().UTC()
		ts := parseTimestamp("not-a-timestamp")
		after := time.Now().UTC()
		require.False(t, ts.Before(before))
		require.False(t, ts.After(after))
	})
}
