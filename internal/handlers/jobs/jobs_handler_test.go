package jobs

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"isp-billing-service/internal/jobs"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type stubQueue struct {
	err error
}

func (s stubQueue) EnqueueOverdueSweep(context.Context) (*asynq.TaskInfo, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &asynq.TaskInfo{ID: "task-1", Type: jobs.TaskOverdueSweep}, nil
}

func (s stubQueue) Stats() (*jobs.QueueStats, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &jobs.QueueStats{Queue: jobs.QueueDefault, Pending: 2}, nil
}

func router(q Queue) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewJobsHandler(q, zap.NewNop())
	r := gin.New()
	r.POST("/jobs/overdue-sweep", h.RunOverdueSweep)
	r.GET("/jobs/stats", h.GetStats)
	return r
}

func TestJobsHandler(t *testing.T) {
	r := router(stubQueue{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/jobs/overdue-sweep", nil))
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.JSONEq(t, `{"message":"Overdue sweep queued","task_id":"task-1"}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/jobs/stats", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"queue":"default","pending":2,"active":0,"scheduled":0,"retry":0,"failed":0}`, w.Body.String())
}

func TestJobsHandlerQueueDown(t *testing.T) {
	r := router(stubQueue{err: errors.New("dial tcp: connection refused")})

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodPost, "/jobs/overdue-sweep", nil),
		httptest.NewRequest(http.MethodGet, "/jobs/stats", nil),
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.JSONEq(t, `{"error":"Job queue unavailable"}`, w.Body.String())
	}
}
