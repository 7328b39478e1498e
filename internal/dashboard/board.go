// Package dashboard holds the task list shown on the dashboard and applies
// server-confirmed changes to it.
package dashboard

import (
	"context"
	"errors"
	"sync"

	"github.com/existflow/todoisland/internal/logger"
	"github.com/existflow/todoisland/internal/model"
	"github.com/existflow/todoisland/internal/resource"
	"github.com/existflow/todoisland/internal/tasks"
)

// ErrNotMounted is returned for operations started while the board is not mounted
var ErrNotMounted = errors.New("dashboard is not mounted")

// Success notices
const (
	NoticeCreated   = "Task created"
	NoticeCompleted = "Task completed"
	NoticePending   = "Task marked as pending"
	NoticeDeleted   = "Task deleted"
)

// Board is the in-memory task collection of one dashboard view. Mutations
// change it only after the server confirms them; failures leave it as is.
// Failure notices come from the task client's notifier.
type Board struct {
	svc    tasks.Service
	notify resource.Notifier

	mu      sync.Mutex
	tasks   []model.Task
	mounted bool
	mountID int // bumped on every Mount; completions from older mounts are dropped
	loading bool

	nextSubID int
	subs      map[int]func([]model.Task)
}

// Option configures a Board
type Option func(*Board)

// WithNotifier sets where success notices are published
func WithNotifier(n resource.Notifier) Option {
	return func(b *Board) { b.notify = n }
}

// New creates an empty, unmounted board
func New(svc tasks.Service, opts ...Option) *Board {
	b := &Board{
		svc:    svc,
		notify: resource.Discard,
		tasks:  []model.Task{},
		subs:   make(map[int]func([]model.Task)),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Mount attaches the board to a view and loads the caller's tasks. Further
// calls while mounted do nothing.
func (b *Board) Mount(ctx context.Context) error {
	b.mu.Lock()
	if b.mounted {
		b.mu.Unlock()
		return nil
	}
	b.mounted = true
	b.mountID++
	b.tasks = []model.Task{}
	id := b.mountID
	b.mu.Unlock()

	return b.load(ctx, id)
}

// Reload fetches the list again
func (b *Board) Reload(ctx context.Context) error {
	id, err := b.current()
	if err != nil {
		return err
	}
	return b.load(ctx, id)
}

// Unmount detaches the board. Requests still in flight complete but their
// results are discarded.
func (b *Board) Unmount() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.mounted = false
	b.loading = false
}

// Mounted reports whether the board is attached to a view
func (b *Board) Mounted() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.mounted
}

// Loading reports whether a list fetch is in flight
func (b *Board) Loading() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loading
}

func (b *Board) load(ctx context.Context, id int) error {
	b.mu.Lock()
	b.loading = true
	b.mu.Unlock()

	list, err := b.svc.GetMyTasks(ctx)

	b.mu.Lock()
	if !b.liveLocked(id) {
		b.mu.Unlock()
		logger.Debug("Dropping task list for unmounted dashboard")
		return nil
	}
	b.loading = false
	if err != nil {
		b.mu.Unlock()
		return err
	}
	b.tasks = append([]model.Task{}, list...)
	snapshot := b.copyLocked()
	b.mu.Unlock()

	b.changed(snapshot)
	return nil
}

// Add creates a task and appends the server's record
func (b *Board) Add(ctx context.Context, title string) (model.Task, error) {
	id, err := b.current()
	if err != nil {
		return model.Task{}, err
	}

	task, err := b.svc.CreateTask(ctx, title)
	if err != nil {
		return model.Task{}, err
	}

	b.apply(id, func(list []model.Task) []model.Task {
		return append(list, task)
	}, NoticeCreated)
	return task, nil
}

// Toggle flips a task on the server and stores exactly what it returns
func (b *Board) Toggle(ctx context.Context, taskID int64) (model.Task, error) {
	id, err := b.current()
	if err != nil {
		return model.Task{}, err
	}

	task, err := b.svc.Toggle(ctx, taskID)
	if err != nil {
		return model.Task{}, err
	}

	notice := NoticePending
	if task.Completed {
		notice = NoticeCompleted
	}
	b.apply(id, func(list []model.Task) []model.Task {
		for i := range list {
			if list[i].ID == taskID {
				list[i] = task
			}
		}
		return list
	}, notice)
	return task, nil
}

// Delete removes a task on the server, then locally
func (b *Board) Delete(ctx context.Context, taskID int64) error {
	id, err := b.current()
	if err != nil {
		return err
	}

	if err := b.svc.DeleteTask(ctx, taskID); err != nil {
		return err
	}

	b.apply(id, func(list []model.Task) []model.Task {
		out := list[:0]
		for _, t := range list {
			if t.ID != taskID {
				out = append(out, t)
			}
		}
		return out
	}, NoticeDeleted)
	return nil
}

// apply runs fn on a copy of the list if the mount id is still live
func (b *Board) apply(id int, fn func([]model.Task) []model.Task, notice string) {
	b.mu.Lock()
	if !b.liveLocked(id) {
		b.mu.Unlock()
		logger.Debug("Dropping completion for unmounted dashboard")
		return
	}
	b.tasks = fn(b.copyLocked())
	snapshot := b.copyLocked()
	b.mu.Unlock()

	b.notify.Notify(resource.Notice{Level: resource.LevelSuccess, Message: notice})
	b.changed(snapshot)
}

func (b *Board) current() (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.mounted {
		return 0, ErrNotMounted
	}
	return b.mountID, nil
}

func (b *Board) liveLocked(id int) bool {
	return b.mounted && b.mountID == id
}

func (b *Board) copyLocked() []model.Task {
	return append([]model.Task{}, b.tasks...)
}

// Tasks returns the tasks in stored order
func (b *Board) Tasks() []model.Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.copyLocked()
}

// Ordered returns the display order: incomplete tasks first, then completed
// ones, each group in stored order
func (b *Board) Ordered() []model.Task {
	return Order(b.Tasks())
}

// Order partitions list into incomplete then completed, keeping relative order
func Order(list []model.Task) []model.Task {
	out := make([]model.Task, 0, len(list))
	for _, t := range list {
		if !t.Completed {
			out = append(out, t)
		}
	}
	for _, t := range list {
		if t.Completed {
			out = append(out, t)
		}
	}
	return out
}

// Counts returns how many tasks remain and how many are completed
func (b *Board) Counts() (remaining, completed int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, t := range b.tasks {
		if t.Completed {
			completed++
		} else {
			remaining++
		}
	}
	return remaining, completed
}

// Subscribe registers fn for every change of the collection
func (b *Board) Subscribe(fn func([]model.Task)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextSubID
	b.nextSubID++
	b.subs[id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
	}
}

func (b *Board) changed(snapshot []model.Task) {
	b.mu.Lock()
	subs := make([]func([]model.Task), 0, len(b.subs))
	for _, fn := range b.subs {
		subs = append(subs, fn)
	}
	b.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
}
