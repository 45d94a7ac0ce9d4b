package database

import (
	"time"
)

// AlertRecord is the stored form of an ingested alert.
type AlertRecord struct {
	ID            string    `gorm:"primaryKey"`
	ChildName     string    `gorm:"index"`
	Content       string
	Category      string
	Severity      string
	Platform      string
	HasImage      bool
	DNSMode       string
	DecisionScore float64
	Timestamp     time.Time `gorm:"index"`
	CreatedAt     time.Time
}

// EventRecord is the stored form of an ingested typed signal event.
type EventRecord struct {
	ID         string    `gorm:"primaryKey"`
	ChildName  string    `gorm:"index"`
	Type       string
	Content    string
	Severity   string
	Confidence float64
	Scenarios  string // JSON array
	Timestamp  time.Time `gorm:"index"`
	CreatedAt  time.Time
}

// ChildRecord carries the passive telemetry for one monitored child.
type ChildRecord struct {
	Name               string `gorm:"primaryKey"`
	AppUsage           string // JSON array of {app_name, minutes}
	LocationLat        float64
	LocationLng        float64
	LocationUpdatedAt  time.Time
	DeviceOnline       bool
	HasProfile         bool
	ProfileAnxiety     float64
	ProfileMood        float64
	ProfileIsolation   float64
	ProfileKeywords    string // JSON array
	ProfileRiskSignals string // JSON array
	ProfileWeeklyTrend string // JSON array
	ScreenTimeLimitMin int
	ScreenTimeTodayMin int
	UpdatedAt          time.Time
}

// SnapshotRecord stores a serialized analysis snapshot for dashboard reads.
type SnapshotRecord struct {
	ID          string    `gorm:"primaryKey"`
	ChildName   string    `gorm:"index"`
	Scenario    string
	Severity    string
	Payload     string // JSON-encoded pipeline.Snapshot
	GeneratedAt time.Time `gorm:"index"`
}
