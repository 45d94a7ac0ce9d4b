package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/haven-shield/insight-engine/internal/cache"
	"github.com/haven-shield/insight-engine/internal/database"
	"github.com/haven-shield/insight-engine/internal/metrics"
	"github.com/haven-shield/insight-engine/internal/pipeline"
	"github.com/haven-shield/insight-engine/internal/realtime"
	"github.com/haven-shield/insight-engine/internal/signal"
)

// lookback bounds how much history one analysis pulls from storage. Recency
// decay makes anything older effectively inert.
const lookback = 30 * 24 * time.Hour

// Handler exposes the ingestion and analysis API.
type Handler struct {
	repo      *database.Repository
	snapshots *cache.SnapshotCache
	engine    *pipeline.Engine
	hub       *realtime.Hub
	logger    *zap.Logger
	collector *metrics.Collector
}

// New creates the API handler.
func New(repo *database.Repository, snapshots *cache.SnapshotCache, engine *pipeline.Engine, hub *realtime.Hub, logger *zap.Logger, collector *metrics.Collector) *Handler {
	return &Handler{
		repo:      repo,
		snapshots: snapshots,
		engine:    engine,
		hub:       hub,
		logger:    logger,
		collector: collector,
	}
}

// RegisterRoutes wires the API onto the router. Auth middleware is applied by
// the server on the /api group before this is called.
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	api.POST("/alerts", h.IngestAlert)
	api.POST("/events", h.IngestEvent)

	children := api.Group("/children")
	{
		children.PUT("/:name/telemetry", h.UpsertTelemetry)
		children.GET("/:name/analysis", h.GetAnalysis)
		children.GET("/:name/diagnosis", h.GetDiagnosis)
		children.GET("/:name/forecast", h.GetForecast)
		children.GET("/:name/automation", h.GetAutomation)
		children.GET("/:name/snapshot", h.GetStoredSnapshot)
	}
}

type alertRequest struct {
	ID        string           `json:"id"`
	ChildName string           `json:"child_name" binding:"required"`
	Content   string           `json:"content"`
	Category  string           `json:"category"`
	Severity  string           `json:"severity"`
	Timestamp time.Time        `json:"timestamp"`
	Platform  string           `json:"platform"`
	HasImage  bool             `json:"has_image"`
	DNS       *signal.DNSMeta  `json:"dns,omitempty"`
}

// IngestAlert accepts one flagged alert from the monitoring feeds.
func (h *Handler) IngestAlert(c *gin.Context) {
	var req alertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid alert payload", "details": err.Error()})
		return
	}

	alert := signal.Alert{
		ID:        req.ID,
		ChildName: strings.TrimSpace(req.ChildName),
		Content:   req.Content,
		Category:  signal.NormalizeCategory(req.Category),
		Severity:  signal.ParseSeverity(req.Severity),
		Timestamp: req.Timestamp,
		Platform:  req.Platform,
		HasImage:  req.HasImage,
		DNS:       req.DNS,
	}
	if alert.ID == "" {
		alert.ID = uuid.New().String()
	}
	if alert.Timestamp.IsZero() {
		alert.Timestamp = time.Now().UTC()
	}

	if err := h.repo.SaveAlert(c.Request.Context(), alert); err != nil {
		h.logger.Error("failed to store alert", zap.String("alert_id", alert.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store alert"})
		return
	}
	h.afterIngest(c, alert.ChildName, "alert")

	c.JSON(http.StatusCreated, gin.H{"id": alert.ID, "status": "accepted"})
}

type eventRequest struct {
	ID         string    `json:"id"`
	ChildName  string    `json:"child_name" binding:"required"`
	Type       string    `json:"type" binding:"required"`
	Content    string    `json:"content"`
	Severity   string    `json:"severity"`
	Confidence float64   `json:"confidence"`
	Scenarios  []string  `json:"scenarios"`
	Timestamp  time.Time `json:"timestamp"`
}

// IngestEvent accepts one typed signal event from a device agent.
func (h *Handler) IngestEvent(c *gin.Context) {
	var req eventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event payload", "details": err.Error()})
		return
	}

	eventType, ok := parseEventType(req.Type)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown event type", "type": req.Type})
		return
	}

	event := signal.Event{
		ID:         req.ID,
		ChildName:  strings.TrimSpace(req.ChildName),
		Type:       eventType,
		Content:    req.Content,
		Severity:   signal.ParseSeverity(req.Severity),
		Confidence: signal.Clamp(0, 100, req.Confidence),
		Scenarios:  parseScenarios(req.Scenarios),
		Timestamp:  req.Timestamp,
	}
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	if err := h.repo.SaveEvent(c.Request.Context(), event); err != nil {
		h.logger.Error("failed to store event", zap.String("event_id", event.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store event"})
		return
	}
	h.afterIngest(c, event.ChildName, "event")

	c.JSON(http.StatusCreated, gin.H{"id": event.ID, "status": "accepted"})
}

// UpsertTelemetry stores a child's passive telemetry bundle.
func (h *Handler) UpsertTelemetry(c *gin.Context) {
	name := strings.TrimSpace(c.Param("name"))
	var child signal.Child
	if err := c.ShouldBindJSON(&child); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid telemetry payload", "details": err.Error()})
		return
	}
	child.Name = name

	if err := h.repo.SaveChild(c.Request.Context(), child); err != nil {
		h.logger.Error("failed to store child telemetry", zap.String("child", name), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store telemetry"})
		return
	}
	h.afterIngest(c, name, "telemetry")

	c.JSON(http.StatusOK, gin.H{"child_name": name, "status": "updated"})
}

// GetAnalysis returns the full analysis snapshot for a child, from cache when
// fresh enough. ?refresh=true forces a recomputation.
func (h *Handler) GetAnalysis(c *gin.Context) {
	snapshot, status := h.snapshot(c)
	if snapshot == nil {
		return
	}
	c.Header("X-Snapshot-Source", status)
	c.JSON(http.StatusOK, snapshot)
}

// GetDiagnosis returns the scenario diagnosis slice of the analysis.
func (h *Handler) GetDiagnosis(c *gin.Context) {
	snapshot, _ := h.snapshot(c)
	if snapshot == nil {
		return
	}
	if snapshot.Diagnosis == nil {
		c.JSON(http.StatusOK, gin.H{
			"child_name": snapshot.ChildName,
			"diagnosis":  nil,
			"message":    "no alerts matched this child",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"child_name": snapshot.ChildName,
		"diagnosis":  snapshot.Diagnosis,
	})
}

// GetForecast returns the 7 and 30 day forecast windows.
func (h *Handler) GetForecast(c *gin.Context) {
	snapshot, _ := h.snapshot(c)
	if snapshot == nil {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"child_name":   snapshot.ChildName,
		"forecast_7d":  snapshot.Forecast7,
		"forecast_30d": snapshot.Forecast30,
	})
}

// GetAutomation returns the gate decision set.
func (h *Handler) GetAutomation(c *gin.Context) {
	snapshot, _ := h.snapshot(c)
	if snapshot == nil {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"child_name": snapshot.ChildName,
		"severity":   snapshot.OverallSeverity.String(),
		"scenario":   snapshot.ActiveScenario,
		"automation": snapshot.Automation,
	})
}

// GetStoredSnapshot returns the last persisted snapshot without recomputing.
func (h *Handler) GetStoredSnapshot(c *gin.Context) {
	name := strings.TrimSpace(c.Param("name"))
	payload, err := h.repo.LatestSnapshot(c.Request.Context(), name)
	if err != nil {
		h.logger.Error("failed to load stored snapshot", zap.String("child", name), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load snapshot"})
		return
	}
	if payload == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no snapshot for child", "child_name": name})
		return
	}
	c.Data(http.StatusOK, "application/json", payload)
}

// snapshot resolves the snapshot backing a read endpoint, running the pipeline
// on a cache miss. A nil return means the response was already written.
func (h *Handler) snapshot(c *gin.Context) (*pipeline.Snapshot, string) {
	ctx := c.Request.Context()
	name := strings.TrimSpace(c.Param("name"))
	refresh := c.Query("refresh") == "true"

	if !refresh {
		cached, err := h.snapshots.Get(ctx, name)
		if err != nil {
			h.logger.Warn("snapshot cache read failed", zap.String("child", name), zap.Error(err))
		}
		if cached != nil {
			return cached, "cache"
		}
	}

	since := time.Now().UTC().Add(-lookback)
	alerts, err := h.repo.AlertsByChild(ctx, name, since)
	if err != nil {
		h.logger.Error("failed to load alerts", zap.String("child", name), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load alerts"})
		return nil, ""
	}
	events, err := h.repo.EventsByChild(ctx, name, since)
	if err != nil {
		h.logger.Error("failed to load events", zap.String("child", name), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load events"})
		return nil, ""
	}
	child, err := h.repo.ChildByName(ctx, name)
	if err != nil {
		h.logger.Error("failed to load child telemetry", zap.String("child", name), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load child"})
		return nil, ""
	}

	snapshot, err := h.engine.Run(ctx, pipeline.Request{
		ChildName: name,
		Child:     child,
		Alerts:    alerts,
		Events:    events,
	})
	if err != nil {
		h.logger.Error("analysis pipeline failed", zap.String("child", name), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "analysis failed"})
		return nil, ""
	}

	h.persistSnapshot(c, snapshot)
	if h.hub != nil {
		h.hub.PublishSnapshot(snapshot)
	}
	return snapshot, "computed"
}

func (h *Handler) persistSnapshot(c *gin.Context, snapshot *pipeline.Snapshot) {
	ctx := c.Request.Context()
	if err := h.snapshots.Put(ctx, snapshot); err != nil {
		h.logger.Warn("failed to cache snapshot", zap.String("snapshot_id", snapshot.ID), zap.Error(err))
	}
	payload, err := json.Marshal(snapshot)
	if err != nil {
		h.logger.Error("failed to encode snapshot", zap.String("snapshot_id", snapshot.ID), zap.Error(err))
		return
	}
	err = h.repo.SaveSnapshot(ctx, snapshot.ID, snapshot.ChildName,
		string(snapshot.ActiveScenario), snapshot.OverallSeverity.String(),
		snapshot.GeneratedAt, payload)
	if err != nil {
		h.logger.Error("failed to persist snapshot", zap.String("snapshot_id", snapshot.ID), zap.Error(err))
	}
}

// afterIngest invalidates the cached snapshot so the next read recomputes.
func (h *Handler) afterIngest(c *gin.Context, childName, kind string) {
	if h.collector != nil {
		h.collector.IngestedTotal.WithLabelValues(kind, "http").Inc()
	}
	if err := h.snapshots.Invalidate(c.Request.Context(), childName); err != nil {
		h.logger.Warn("failed to invalidate cached snapshot",
			zap.String("child", childName), zap.Error(err))
	}
}

func parseEventType(raw string) (signal.EventType, bool) {
	candidate := signal.EventType(strings.ToLower(strings.TrimSpace(raw)))
	for _, t := range signal.AllEventTypes() {
		if t == candidate {
			return t, true
		}
	}
	return "", false
}

func parseScenarios(raw []string) []signal.Scenario {
	if len(raw) == 0 {
		return nil
	}
	known := make(map[signal.Scenario]bool, 13)
	for _, s := range signal.AllScenarios() {
		known[s] = true
	}
	var out []signal.Scenario
	for _, r := range raw {
		candidate := signal.Scenario(strings.ToLower(strings.TrimSpace(r)))
		if known[candidate] {
			out = append(out, candidate)
		}
	}
	return out
}
