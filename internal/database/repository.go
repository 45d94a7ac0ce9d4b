package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/haven-shield/insight-engine/internal/config"
	"github.com/haven-shield/insight-engine/internal/signal"
)

// Repository wraps the postgres store for alerts, events, children, and
// analysis snapshots.
type Repository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewRepository opens the postgres connection and migrates the schema.
func NewRepository(cfg config.DatabaseConfig, logger *zap.Logger) (*Repository, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sql db: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxConnections)
	sqlDB.SetConnMaxIdleTime(cfg.MaxIdleTime)
	sqlDB.SetConnMaxLifetime(cfg.MaxLifetime)

	if err := db.AutoMigrate(&AlertRecord{}, &EventRecord{}, &ChildRecord{}, &SnapshotRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &Repository{db: db, logger: logger}, nil
}

// NewRepositoryWithDB builds a repository over an existing gorm handle.
// Used by tests running against sqlite or a transaction.
func NewRepositoryWithDB(db *gorm.DB, logger *zap.Logger) *Repository {
	return &Repository{db: db, logger: logger}
}

// SaveAlert upserts one alert.
func (r *Repository) SaveAlert(ctx context.Context, alert signal.Alert) error {
	record := AlertRecord{
		ID:        alert.ID,
		ChildName: alert.ChildName,
		Content:   alert.Content,
		Category:  string(alert.Category),
		Severity:  alert.Severity.String(),
		Platform:  alert.Platform,
		HasImage:  alert.HasImage,
		Timestamp: alert.Timestamp,
	}
	if alert.DNS != nil {
		record.DNSMode = alert.DNS.Mode
		record.DecisionScore = alert.DNS.DecisionScore
	}
	if err := r.db.WithContext(ctx).Save(&record).Error; err != nil {
		return fmt.Errorf("failed to save alert %s: %w", alert.ID, err)
	}
	return nil
}

// SaveEvent upserts one typed signal event.
func (r *Repository) SaveEvent(ctx context.Context, event signal.Event) error {
	scenarios, err := json.Marshal(event.Scenarios)
	if err != nil {
		return fmt.Errorf("failed to encode scenarios for event %s: %w", event.ID, err)
	}
	record := EventRecord{
		ID:         event.ID,
		ChildName:  event.ChildName,
		Type:       string(event.Type),
		Content:    event.Content,
		Severity:   event.Severity.String(),
		Confidence: event.Confidence,
		Scenarios:  string(scenarios),
		Timestamp:  event.Timestamp,
	}
	if err := r.db.WithContext(ctx).Save(&record).Error; err != nil {
		return fmt.Errorf("failed to save event %s: %w", event.ID, err)
	}
	return nil
}

// AlertsByChild returns the child's alerts newer than since, oldest first.
func (r *Repository) AlertsByChild(ctx context.Context, childName string, since time.Time) ([]signal.Alert, error) {
	var records []AlertRecord
	err := r.db.WithContext(ctx).
		Where("child_name = ? AND timestamp >= ?", childName, since).
		Order("timestamp asc").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load alerts for %s: %w", childName, err)
	}

	alerts := make([]signal.Alert, 0, len(records))
	for _, record := range records {
		alert := signal.Alert{
			ID:        record.ID,
			ChildName: record.ChildName,
			Content:   record.Content,
			Category:  signal.NormalizeCategory(record.Category),
			Severity:  signal.ParseSeverity(record.Severity),
			Platform:  record.Platform,
			HasImage:  record.HasImage,
			Timestamp: record.Timestamp,
		}
		if record.DNSMode != "" {
			alert.DNS = &signal.DNSMeta{Mode: record.DNSMode, DecisionScore: record.DecisionScore}
		}
		alerts = append(alerts, alert)
	}
	return alerts, nil
}

// EventsByChild returns the child's typed events newer than since, oldest
// first.
func (r *Repository) EventsByChild(ctx context.Context, childName string, since time.Time) ([]signal.Event, error) {
	var records []EventRecord
	err := r.db.WithContext(ctx).
		Where("child_name = ? AND timestamp >= ?", childName, since).
		Order("timestamp asc").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load events for %s: %w", childName, err)
	}

	events := make([]signal.Event, 0, len(records))
	for _, record := range records {
		var scenarios []signal.Scenario
		if record.Scenarios != "" {
			// Malformed hint data degrades to no hints rather than failing
			// the analysis.
			_ = json.Unmarshal([]byte(record.Scenarios), &scenarios)
		}
		events = append(events, signal.Event{
			ID:         record.ID,
			ChildName:  record.ChildName,
			Type:       signal.EventType(record.Type),
			Content:    record.Content,
			Severity:   signal.ParseSeverity(record.Severity),
			Confidence: record.Confidence,
			Scenarios:  scenarios,
			Timestamp:  record.Timestamp,
		})
	}
	return events, nil
}

// SaveChild upserts the child's telemetry record.
func (r *Repository) SaveChild(ctx context.Context, child signal.Child) error {
	record, err := childRecordFrom(child)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Save(&record).Error; err != nil {
		return fmt.Errorf("failed to save child %s: %w", child.Name, err)
	}
	return nil
}

func childRecordFrom(child signal.Child) (ChildRecord, error) {
	usage, err := json.Marshal(child.AppUsage)
	if err != nil {
		return ChildRecord{}, fmt.Errorf("failed to encode app usage for %s: %w", child.Name, err)
	}
	record := ChildRecord{
		Name:               child.Name,
		AppUsage:           string(usage),
		ScreenTimeLimitMin: child.ScreenTimeLimitMin,
		ScreenTimeTodayMin: child.ScreenTimeTodayMin,
	}
	if child.Location != nil {
		record.LocationLat = child.Location.Latitude
		record.LocationLng = child.Location.Longitude
		record.LocationUpdatedAt = child.Location.UpdatedAt
		record.DeviceOnline = child.Location.DeviceOnline
	}
	if child.Profile != nil {
		record.HasProfile = true
		record.ProfileAnxiety = child.Profile.Anxiety
		record.ProfileMood = child.Profile.Mood
		record.ProfileIsolation = child.Profile.Isolation
		record.ProfileKeywords = mustJSON(child.Profile.Keywords)
		record.ProfileRiskSignals = mustJSON(child.Profile.RiskSignals)
		record.ProfileWeeklyTrend = mustJSON(child.Profile.WeeklyTrend)
	}
	return record, nil
}

// ChildByName loads the child's telemetry; a missing child yields (nil, nil)
// because analysis can run from alerts alone.
func (r *Repository) ChildByName(ctx context.Context, name string) (*signal.Child, error) {
	var record ChildRecord
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load child %s: %w", name, err)
	}

	return record.toChild(), nil
}

func (record ChildRecord) toChild() *signal.Child {
	child := &signal.Child{
		Name:               record.Name,
		ScreenTimeLimitMin: record.ScreenTimeLimitMin,
		ScreenTimeTodayMin: record.ScreenTimeTodayMin,
	}
	if record.AppUsage != "" {
		_ = json.Unmarshal([]byte(record.AppUsage), &child.AppUsage)
	}
	if !record.LocationUpdatedAt.IsZero() {
		child.Location = &signal.Location{
			Latitude:     record.LocationLat,
			Longitude:    record.LocationLng,
			UpdatedAt:    record.LocationUpdatedAt,
			DeviceOnline: record.DeviceOnline,
		}
	}
	if record.HasProfile {
		profile := &signal.PsychProfile{
			Anxiety:   record.ProfileAnxiety,
			Mood:      record.ProfileMood,
			Isolation: record.ProfileIsolation,
		}
		_ = json.Unmarshal([]byte(record.ProfileKeywords), &profile.Keywords)
		_ = json.Unmarshal([]byte(record.ProfileRiskSignals), &profile.RiskSignals)
		_ = json.Unmarshal([]byte(record.ProfileWeeklyTrend), &profile.WeeklyTrend)
		child.Profile = profile
	}
	return child
}

// SaveSnapshot stores a serialized analysis snapshot.
func (r *Repository) SaveSnapshot(ctx context.Context, id, childName, scenario, severity string, generatedAt time.Time, payload []byte) error {
	record := SnapshotRecord{
		ID:          id,
		ChildName:   childName,
		Scenario:    scenario,
		Severity:    severity,
		Payload:     string(payload),
		GeneratedAt: generatedAt,
	}
	if err := r.db.WithContext(ctx).Save(&record).Error; err != nil {
		return fmt.Errorf("failed to save snapshot %s: %w", id, err)
	}
	return nil
}

// LatestSnapshot returns the newest stored snapshot payload for a child, or
// nil when none exists.
func (r *Repository) LatestSnapshot(ctx context.Context, childName string) ([]byte, error) {
	var record SnapshotRecord
	err := r.db.WithContext(ctx).
		Where("child_name = ?", childName).
		Order("generated_at desc").
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot for %s: %w", childName, err)
	}
	return []byte(record.Payload), nil
}

// Ping verifies database connectivity for readiness checks.
func (r *Repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func mustJSON(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(data)
}
