package fakeapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/existflow/todoisland/internal/model"
	"github.com/labstack/echo/v4"
)

func (s *Server) handleListTasks(c echo.Context) error {
	return c.JSON(http.StatusOK, s.store.listTasks(currentUser(c).ID))
}

func (s *Server) handleCreateTask(c echo.Context) error {
	var req model.NewTask
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request")
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return c.JSON(http.StatusBadRequest, map[string]any{
			"statusCode": http.StatusBadRequest,
			"message":    []string{"title must not be empty"},
		})
	}
	return c.JSON(http.StatusCreated, s.store.createTask(currentUser(c), title))
}

func (s *Server) handleToggleTask(c echo.Context) error {
	id, err := taskID(c)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid task id")
	}
	task, err := s.store.updateTask(currentUser(c).ID, id, func(t *model.Task) {
		t.Completed = !t.Completed
	})
	return respondTask(c, task, err)
}

func (s *Server) handleUpdateTask(c echo.Context) error {
	id, err := taskID(c)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid task id")
	}
	var patch model.TaskPatch
	if err := c.Bind(&patch); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request")
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return errorJSON(c, http.StatusBadRequest, "title must not be empty")
	}
	task, err := s.store.updateTask(currentUser(c).ID, id, func(t *model.Task) {
		if patch.Title != nil {
			t.Title = strings.TrimSpace(*patch.Title)
		}
		if patch.Completed != nil {
			t.Completed = *patch.Completed
		}
	})
	return respondTask(c, task, err)
}

func (s *Server) handleDeleteTask(c echo.Context) error {
	id, err := taskID(c)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid task id")
	}
	if err := s.store.deleteTask(currentUser(c).ID, id); err != nil {
		return errorJSON(c, http.StatusNotFound, "task not found")
	}
	return c.NoContent(http.StatusNoContent)
}

func respondTask(c echo.Context, task model.Task, err error) error {
	if errors.Is(err, errNotFound) {
		return errorJSON(c, http.StatusNotFound, "task not found")
	}
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, task)
}

func taskID(c echo.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}
