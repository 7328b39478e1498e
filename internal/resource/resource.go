// Package resource provides CRUD operations for one backend resource type
// with uniform error translation.
package resource

import (
	"context"
	"fmt"
	"net/http"

	"github.com/existflow/todoisland/internal/logger"
)

// Doer performs one HTTP exchange. *api.Client implements it.
type Doer interface {
	Do(ctx context.Context, method, path string, in, out any) error
}

// Client is a generic resource client for items of type T under path
type Client[T any] struct {
	doer   Doer
	path   string
	mapErr Mapper
	notify Notifier
}

// Option configures a Client
type Option func(*options)

type options struct {
	mapErr Mapper
	notify Notifier
}

// WithNotifier sets where failure messages are published
func WithNotifier(n Notifier) Option {
	return func(o *options) { o.notify = n }
}

// WithErrorMapper replaces DefaultMapper
func WithErrorMapper(m Mapper) Option {
	return func(o *options) { o.mapErr = m }
}

// New creates a client for the resource at path (e.g. "/tasks")
func New[T any](doer Doer, path string, opts ...Option) *Client[T] {
	o := options{mapErr: DefaultMapper, notify: Discard}
	for _, opt := range opts {
		opt(&o)
	}
	return &Client[T]{doer: doer, path: path, mapErr: o.mapErr, notify: o.notify}
}

// Path returns the resource base path
func (c *Client[T]) Path() string {
	return c.path
}

// ItemPath returns the subpath of one item, relative to Path, for Exec
func (c *Client[T]) ItemPath(id int64) string {
	return fmt.Sprintf("/%d", id)
}

// Exec performs one call relative to the resource path and normalizes any
// failure. Resource-specific operations are built on it.
func (c *Client[T]) Exec(ctx context.Context, method, subpath string, in, out any) error {
	path := c.path + subpath
	if err := c.doer.Do(ctx, method, path, in, out); err != nil {
		appErr := c.mapErr(err)
		logger.Warn("Resource call failed",
			logger.F("method", method),
			logger.F("path", path),
			logger.F("kind", appErr.Kind.String()),
			logger.F("status", appErr.Status))
		c.notify.Notify(Notice{Level: LevelError, Message: appErr.Message})
		return appErr
	}
	return nil
}

// GetAll lists every item
func (c *Client[T]) GetAll(ctx context.Context) ([]T, error) {
	var items []T
	if err := c.Exec(ctx, http.MethodGet, "", nil, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// Create posts data and returns the created item
func (c *Client[T]) Create(ctx context.Context, data any) (T, error) {
	var item T
	if err := c.Exec(ctx, http.MethodPost, "", data, &item); err != nil {
		var zero T
		return zero, err
	}
	return item, nil
}

// Update replaces fields of item id and returns the updated item
func (c *Client[T]) Update(ctx context.Context, id int64, data any) (T, error) {
	var item T
	if err := c.Exec(ctx, http.MethodPut, c.ItemPath(id), data, &item); err != nil {
		var zero T
		return zero, err
	}
	return item, nil
}

// Delete removes item id
func (c *Client[T]) Delete(ctx context.Context, id int64) error {
	return c.Exec(ctx, http.MethodDelete, c.ItemPath(id), nil, nil)
}
