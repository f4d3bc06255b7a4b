package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the queue every billing task runs on.
	QueueDefault = "default"
	// TaskOverdueSweep flips pending invoices past their due date to overdue.
	TaskOverdueSweep = "billing:overdue_sweep"
)

const dateLayout = "2006-01-02"

// OverdueSweepPayload optionally pins the sweep to a calendar day (YYYY-MM-DD). Empty means today.
type OverdueSweepPayload struct {
	AsOf string `json:"as_of,omitempty"`
}

// NewOverdueSweepTask builds the task. A zero asOf sweeps against the day the task runs.
func NewOverdueSweepTask(asOf time.Time) (*asynq.Task, error) {
	var payload OverdueSweepPayload
	if !asOf.IsZero() {
		payload.AsOf = asOf.Format(dateLayout)
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOverdueSweep, data, asynq.MaxRetry(3), asynq.Timeout(5*time.Minute)), nil
}
