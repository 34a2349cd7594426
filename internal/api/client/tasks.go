package client

import (
	"context"
	"fmt"

	domain "github.com/loupelabs/loupe/pkg/types"
)

// tasksEnvelope mirrors the list-tasks response body.
type tasksEnvelope struct {
	Tasks []domain.Task `json:"tasks"`
}

// ListTasks returns a page of search tasks.
func (c *Client) ListTasks(ctx context.Context, limit, offset int) ([]domain.Task, error) {
	var env tasksEnvelope
	path := fmt.Sprintf("/api/v1/tasks?limit=%d&offset=%d", limit, offset)
	if err := c.get(ctx, path, &env); err != nil {
		return nil, err
	}
	return env.Tasks, nil
}

// GetTask returns a single task by ID.
func (c *Client) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	var task domain.Task
	if err := c.get(ctx, "/api/v1/tasks/"+id, &task); err != nil {
		return nil, err
	}
	return &task, nil
}
