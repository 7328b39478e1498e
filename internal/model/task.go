package model

// Task represents a single todo item owned by the backend
type Task struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
	User      *User  `json:"user,omitempty"`
}

// NewTask is the create payload; the server fills in the defaults
type NewTask struct {
	Title string `json:"title"`
}

// TaskPatch is the update payload for the generic resource Update
type TaskPatch struct {
	Title     *string `json:"title,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

// Status returns a short label for the completion state
func (t Task) Status() string {
	if t.Completed {
		return "done"
	}
	return "pending"
}
