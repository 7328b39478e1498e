// Package tasks is the client for the /tasks resource.
package tasks

import (
	"context"
	"net/http"
	"strings"

	"github.com/existflow/todoisland/internal/apperr"
	"github.com/existflow/todoisland/internal/model"
	"github.com/existflow/todoisland/internal/resource"
)

// Path is the task resource path
const Path = "/tasks"

// Client exposes task endpoints on top of the generic resource client
type Client struct {
	res    *resource.Client[model.Task]
	notify resource.Notifier
}

// New creates a task client. Options are passed to the resource client.
func New(doer resource.Doer, notify resource.Notifier, opts ...resource.Option) *Client {
	if notify == nil {
		notify = resource.Discard
	}
	opts = append([]resource.Option{resource.WithNotifier(notify)}, opts...)
	return &Client{
		res:    resource.New[model.Task](doer, Path, opts...),
		notify: notify,
	}
}

// Resource returns the underlying generic client (GetAll, Update, ...)
func (c *Client) Resource() *resource.Client[model.Task] {
	return c.res
}

// GetMyTasks lists the caller's tasks. The server scopes the result.
func (c *Client) GetMyTasks(ctx context.Context) ([]model.Task, error) {
	return c.res.GetAll(ctx)
}

// CreateTask creates a task with title; the server fills in the rest
func (c *Client) CreateTask(ctx context.Context, title string) (model.Task, error) {
	if strings.TrimSpace(title) == "" {
		err := apperr.Validation("task title must not be empty")
		c.notify.Notify(resource.Notice{Level: resource.LevelError, Message: err.Message})
		return model.Task{}, err
	}
	return c.res.Create(ctx, model.NewTask{Title: title})
}

// Toggle flips completion on the server and returns the server's record
func (c *Client) Toggle(ctx context.Context, id int64) (model.Task, error) {
	var task model.Task
	if err := c.res.Exec(ctx, http.MethodPost, c.res.ItemPath(id)+"/toggle", nil, &task); err != nil {
		return model.Task{}, err
	}
	return task, nil
}

// DeleteTask removes task id
func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	return c.res.Delete(ctx, id)
}
