// Package handlers implements the loupe HTTP surface: the huma ops API, the
// Slack events receiver, and the Echo health probes.
package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/loupelabs/loupe/internal/store"
	domain "github.com/loupelabs/loupe/pkg/types"
)

// Triggerer requests an out-of-band worker cycle. Reports false when one is
// already pending.
type Triggerer interface {
	Trigger() bool
}

// OpsHandler serves the read-mostly operator API.
type OpsHandler struct {
	store   store.Store
	trigger Triggerer
}

// NewOpsHandler creates an OpsHandler. trigger may be nil when the worker is
// not running in this process.
func NewOpsHandler(s store.Store, trigger Triggerer) *OpsHandler {
	return &OpsHandler{store: s, trigger: trigger}
}

// Register adds every ops operation to the API.
func (h *OpsHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-tasks",
		Method:      http.MethodGet,
		Path:        "/api/v1/tasks",
		Summary:     "List search tasks",
		Tags:        []string{"tasks"},
	}, h.listTasks)

	huma.Register(api, huma.Operation{
		OperationID: "get-task",
		Method:      http.MethodGet,
		Path:        "/api/v1/tasks/{id}",
		Summary:     "Get one search task",
		Tags:        []string{"tasks"},
	}, h.getTask)

	huma.Register(api, huma.Operation{
		OperationID: "list-matches",
		Method:      http.MethodGet,
		Path:        "/api/v1/matches/{itemType}",
		Summary:     "List matches for an item type",
		Tags:        []string{"matches"},
	}, h.listMatches)

	huma.Register(api, huma.Operation{
		OperationID: "worker-health",
		Method:      http.MethodGet,
		Path:        "/api/v1/worker/health",
		Summary:     "Recent worker cycle summaries",
		Tags:        []string{"worker"},
	}, h.workerHealth)

	huma.Register(api, huma.Operation{
		OperationID:   "trigger-cycle",
		Method:        http.MethodPost,
		Path:          "/api/v1/worker/trigger",
		Summary:       "Request an immediate poll cycle",
		Tags:          []string{"worker"},
		DefaultStatus: http.StatusAccepted,
	}, h.triggerCycle)

	huma.Register(api, huma.Operation{
		OperationID: "list-credentials",
		Method:      http.MethodGet,
		Path:        "/api/v1/credentials",
		Summary:     "List marketplace credentials (secrets redacted)",
		Tags:        []string{"credentials"},
	}, h.listCredentials)
}

// ListTasksInput bounds task pagination.
type ListTasksInput struct {
	Limit  int `query:"limit"  default:"50" minimum:"1" maximum:"500"`
	Offset int `query:"offset" default:"0"  minimum:"0"`
}

// TasksBody wraps a task page.
type TasksBody struct {
	Tasks []domain.Task `json:"tasks"`
}

// ListTasksOutput is the list-tasks response.
type ListTasksOutput struct {
	Body TasksBody
}

func (h *OpsHandler) listTasks(ctx context.Context, in *ListTasksInput) (*ListTasksOutput, error) {
	tasks, err := h.store.ListTasks(ctx, in.Limit, in.Offset)
	if err != nil {
		return nil, huma.Error500InternalServerError("listing tasks", err)
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return &ListTasksOutput{Body: TasksBody{Tasks: tasks}}, nil
}

// GetTaskInput identifies one task.
type GetTaskInput struct {
	ID string `path:"id"`
}

// GetTaskOutput is the get-task response.
type GetTaskOutput struct {
	Body domain.Task
}

func (h *OpsHandler) getTask(ctx context.Context, in *GetTaskInput) (*GetTaskOutput, error) {
	task, err := h.store.GetTask(ctx, in.ID)
	if err != nil {
		return nil, huma.Error500InternalServerError("loading task", err)
	}
	if task == nil {
		return nil, huma.Error404NotFound("task not found")
	}
	return &GetTaskOutput{Body: *task}, nil
}

// WorkerHealthInput bounds the cycle history page.
type WorkerHealthInput struct {
	Limit int `query:"limit" default:"20" minimum:"1" maximum:"500"`
}

// WorkerHealthBody wraps recent cycle rows.
type WorkerHealthBody struct {
	Cycles []domain.HealthMetric `json:"cycles"`
}

// WorkerHealthOutput is the worker-health response.
type WorkerHealthOutput struct {
	Body WorkerHealthBody
}

func (h *OpsHandler) workerHealth(ctx context.Context, in *WorkerHealthInput) (*WorkerHealthOutput, error) {
	cycles, err := h.store.ListHealthMetrics(ctx, in.Limit)
	if err != nil {
		return nil, huma.Error500InternalServerError("listing health metrics", err)
	}
	if cycles == nil {
		cycles = []domain.HealthMetric{}
	}
	return &WorkerHealthOutput{Body: WorkerHealthBody{Cycles: cycles}}, nil
}

// TriggerBody reports whether the trigger was accepted.
type TriggerBody struct {
	Queued bool `json:"queued"`
}

// TriggerOutput is the trigger-cycle response.
type TriggerOutput struct {
	Body TriggerBody
}

func (h *OpsHandler) triggerCycle(_ context.Context, _ *struct{}) (*TriggerOutput, error) {
	if h.trigger == nil {
		return nil, huma.Error503ServiceUnavailable("worker not running in this process")
	}
	return &TriggerOutput{Body: TriggerBody{Queued: h.trigger.Trigger()}}, nil
}
