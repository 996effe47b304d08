package services

import (
	"context"
	"log/slog"
	"runtime"
	"sort"
	"time"

	"palaypulse/internal/dataset"
)

// HealthService reports service liveness and dataset freshness.
type HealthService struct {
	version   string
	buildTime string
	store     *dataset.Store
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus is the /api/health payload.
type HealthStatus struct {
	Status         string   `json:"status"`
	LastUpdate     string   `json:"last_update"`
	TotalRecords   int      `json:"total_records"`
	AvailableTypes []string `json:"available_types"`
}

// VersionInfo is the /api/version payload.
type VersionInfo struct {
	Version   string `json:"version"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// NewHealthService creates a health service bound to the dataset store.
func NewHealthService(version, buildTime string, store *dataset.Store, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:   version,
		buildTime: buildTime,
		store:     store,
		startTime: time.Now(),
		logger:    logger.With(slog.String("component", "health_service")),
	}
}

// HealthCheck reports overall status. A store with zero records is
// degraded, not down: queries still answer, predictions cannot.
func (s *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	status := "healthy"
	if s.store.Count() == 0 {
		status = "degraded"
	}

	index := s.store.TypesIndex()
	types := make([]string, 0, len(index))
	for t := range index {
		types = append(types, t)
	}
	sort.Strings(types)

	lastUpdate := ""
	if !s.store.LastUpdate().IsZero() {
		lastUpdate = s.store.LastUpdate().Format(time.RFC3339)
	}

	return HealthStatus{
		Status:         status,
		LastUpdate:     lastUpdate,
		TotalRecords:   s.store.Count(),
		AvailableTypes: types,
	}
}

// ReadinessCheck reports whether the store has completed a load.
func (s *HealthService) ReadinessCheck(ctx context.Context) map[string]interface{} {
	ready := !s.store.LastUpdate().IsZero()
	return map[string]interface{}{
		"ready":     ready,
		"timestamp": time.Now().Format(time.RFC3339),
	}
}

// LivenessCheck reports process liveness and uptime.
func (s *HealthService) LivenessCheck(ctx context.Context) map[string]interface{} {
	return map[string]interface{}{
		"alive":          true,
		"uptime_seconds": time.Since(s.startTime).Seconds(),
		"timestamp":      time.Now().Format(time.RFC3339),
	}
}

// Version returns build information.
func (s *HealthService) Version() VersionInfo {
	return VersionInfo{
		Version:   s.version,
		BuildTime: s.buildTime,
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}
