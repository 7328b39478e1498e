package fakeapi

import (
	"errors"
	"strings"
	"sync"

	"github.com/existflow/todoisland/internal/model"
)

var (
	errDuplicate = errors.New("username or email already exists")
	errNotFound  = errors.New("not found")
)

type userRecord struct {
	user         model.User
	passwordHash string
}

type taskRecord struct {
	task    model.Task
	ownerID int64
}

// memStore holds accounts and tasks in insertion order
type memStore struct {
	mu         sync.Mutex
	users      []*userRecord
	tasks      []*taskRecord
	nextUserID int64
	nextTaskID int64
}

func newMemStore() *memStore {
	return &memStore{nextUserID: 1, nextTaskID: 1}
}

func (s *memStore) createUser(u model.User, passwordHash string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.users {
		if strings.EqualFold(r.user.Username, u.Username) || strings.EqualFold(r.user.Email, u.Email) {
			return model.User{}, errDuplicate
		}
	}
	u.ID = s.nextUserID
	s.nextUserID++
	s.users = append(s.users, &userRecord{user: u, passwordHash: passwordHash})
	return u, nil
}

// findLogin matches username or email
func (s *memStore) findLogin(login string) (*userRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.users {
		if strings.EqualFold(r.user.Username, login) || strings.EqualFold(r.user.Email, login) {
			cp := *r
			return &cp, true
		}
	}
	return nil, false
}

func (s *memStore) findGoogle(googleID, email string) (*userRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.users {
		if (googleID != "" && r.user.GoogleID == googleID) || (email != "" && strings.EqualFold(r.user.Email, email)) {
			cp := *r
			return &cp, true
		}
	}
	return nil, false
}

func (s *memStore) user(id int64) (model.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.users {
		if r.user.ID == id {
			return r.user, true
		}
	}
	return model.User{}, false
}

func (s *memStore) listTasks(ownerID int64) []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Task{}
	for _, r := range s.tasks {
		if r.ownerID == ownerID {
			out = append(out, r.task)
		}
	}
	return out
}

func (s *memStore) createTask(owner model.User, title string) model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := owner
	t := model.Task{ID: s.nextTaskID, Title: title, Completed: false, User: &u}
	s.nextTaskID++
	s.tasks = append(s.tasks, &taskRecord{task: t, ownerID: owner.ID})
	return t
}

// updateTask applies fn to the owner's task id
func (s *memStore) updateTask(ownerID, id int64, fn func(*model.Task)) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.tasks {
		if r.task.ID == id && r.ownerID == ownerID {
			fn(&r.task)
			return r.task, nil
		}
	}
	return model.Task{}, errNotFound
}

func (s *memStore) deleteTask(ownerID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.tasks {
		if r.task.ID == id && r.ownerID == ownerID {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return nil
		}
	}
	return errNotFound
}
