// internal/handlers/jobs/jobs_handler.go
package jobs

import (
	"context"
	"net/http"

	"isp-billing-service/internal/jobs"
	"isp-billing-service/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Queue is the producer side of the background worker.
type Queue interface {
	EnqueueOverdueSweep(ctx context.Context) (*asynq.TaskInfo, error)
	Stats() (*jobs.QueueStats, error)
}

type JobsHandler struct {
	queue  Queue
	logger *zap.Logger
}

func NewJobsHandler(queue Queue, logger *zap.Logger) *JobsHandler {
	return &JobsHandler{queue: queue, logger: logger}
}

// RunOverdueSweep handles POST /jobs/overdue-sweep.
func (h *JobsHandler) RunOverdueSweep(c *gin.Context) {
	info, err := h.queue.EnqueueOverdueSweep(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to enqueue overdue sweep", zap.Error(err))
		response.Error(c, http.StatusServiceUnavailable, "Job queue unavailable")
		return
	}
	response.Success(c, http.StatusAccepted, gin.H{
		"message": "Overdue sweep queued",
		"task_id": info.ID,
	})
}

func (h *JobsHandler) GetStats(c *gin.Context) {
	stats, err := h.queue.Stats()
	if err != nil {
		h.logger.Warn("job queue stats", zap.Error(err))
		response.Error(c, http.StatusServiceUnavailable, "Job queue unavailable")
		return
	}
	response.Success(c, http.StatusOK, stats)
}
