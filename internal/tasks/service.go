package tasks

import (
	"context"

	"github.com/existflow/todoisland/internal/model"
)

// Service is the task API surface views depend on. *Client implements it.
type Service interface {
	GetMyTasks(ctx context.Context) ([]model.Task, error)
	CreateTask(ctx context.Context, title string) (model.Task, error)
	Toggle(ctx context.Context, id int64) (model.Task, error)
	DeleteTask(ctx context.Context, id int64) error
}

var _ Service = (*Client)(nil)
