package worker

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthReport represents the worker health status
type HealthReport struct {
	WorkerID  string           `json:"worker_id"`
	TaskQueue string           `json:"task_queue"`
	Status    string           `json:"status"`
	Uptime    time.Duration    `json:"uptime"`
	StartedAt time.Time        `json:"started_at"`
	Temporal  ConnectionStatus `json:"temporal"`
	Storage   ConnectionStatus `json:"storage"`
}

// ConnectionStatus represents a connection status
type ConnectionStatus struct {
	Connected bool   `json:"connected"`
	Endpoint  string `json:"endpoint"`
	Error     string `json:"error,omitempty"`
}

// HealthStatus is the worker's mutable health state.
type HealthStatus struct {
	mu     sync.Mutex
	report HealthReport
}

func NewHealthStatus(workerID, taskQueue string) *HealthStatus {
	return &HealthStatus{report: HealthReport{
		WorkerID:  workerID,
		TaskQueue: taskQueue,
		Status:    "starting",
		StartedAt: time.Now(),
	}}
}

func (s *HealthStatus) SetStatus(status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.report.Status = status
}

func (s *HealthStatus) SetTemporal(c ConnectionStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.report.Temporal = c
}

func (s *HealthStatus) SetStorage(c ConnectionStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.report.Storage = c
}

// Report returns the current state.
func (s *HealthStatus) Report() HealthReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.report
	r.Uptime = time.Since(r.StartedAt)
	return r
}

// HealthRouter serves /health, /live and /ready for the worker.
func HealthRouter(status *HealthStatus) *gin.Engine {
	router := gin.New()

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, status.Report())
	})

	// Liveness probe
	router.GET("/live", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	// Readiness probe
	router.GET("/ready", func(c *gin.Context) {
		if status.Report().Temporal.Connected {
			c.String(http.StatusOK, "READY")
			return
		}
		c.String(http.StatusServiceUnavailable, "NOT READY")
	})

	return router
}
