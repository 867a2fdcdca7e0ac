package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLedgerIntegrity checks that every tenant's ledger still balances.
	TaskLedgerIntegrity = "ledger:integrity"
	// TaskReportsWarmup rebuilds today's core reports into the report cache.
	TaskReportsWarmup = "reports:warmup"
)

// ScopePayload limits a job to one company; zero means every company.
type ScopePayload struct {
	CompanyID int64 `json:"company_id,omitempty"`
}

// NewLedgerIntegrityTask constructs a ledger integrity task.
func NewLedgerIntegrityTask(companyID int64) (*asynq.Task, error) {
	return newScopedTask(TaskLedgerIntegrity, companyID)
}

// NewReportsWarmupTask constructs a report warmup task.
func NewReportsWarmupTask(companyID int64) (*asynq.Task, error) {
	return newScopedTask(TaskReportsWarmup, companyID)
}

func newScopedTask(taskType string, companyID int64) (*asynq.Task, error) {
	data, err := json.Marshal(ScopePayload{CompanyID: companyID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(taskType, data), nil
}

func decodeScope(t *asynq.Task) (ScopePayload, error) {
	var payload ScopePayload
	if len(t.Payload()) == 0 {
		return payload, nil
	}
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return ScopePayload{}, err
	}
	return payload, nil
}
