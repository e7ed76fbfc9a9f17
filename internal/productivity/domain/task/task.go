package task

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrEmptyTitle     = errors.New("task title cannot be empty")
	ErrTaskNotFound   = errors.New("task not found")
	ErrInvalidLocalID = errors.New("local task id must be negative")
)

// Status is the task lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// ParseStatus maps a wire or stored value to a Status. Anything unknown is pending.
func ParseStatus(s string) Status {
	if Status(strings.ToLower(strings.TrimSpace(s))) == StatusCompleted {
		return StatusCompleted
	}
	return StatusPending
}

func (s Status) String() string { return string(s) }

// Toggled returns the other status.
func (s Status) Toggled() Status {
	if s == StatusCompleted {
		return StatusPending
	}
	return StatusCompleted
}

// Task is a cached to-do item. A negative id marks a task created offline
// that the server has not assigned an id to yet.
type Task struct {
	id          int
	title       string
	description *string
	status      Status
	dueDate     *string
	synced      bool
	updatedAt   time.Time
}

// NewTask creates an unsaved, pending, unsynced task.
func NewTask(title string, description, dueDate *string) (*Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	return &Task{
		title:       title,
		description: trimOptional(description),
		status:      StatusPending,
		dueDate:     dueDate,
		updatedAt:   time.Now().UTC(),
	}, nil
}

// Rehydrate rebuilds a Task from storage or the server without validation.
func Rehydrate(id int, title string, description *string, status Status, dueDate *string, synced bool, updatedAt time.Time) *Task {
	return &Task{
		id:          id,
		title:       title,
		description: description,
		status:      status,
		dueDate:     dueDate,
		synced:      synced,
		updatedAt:   updatedAt,
	}
}

func (t *Task) ID() int              { return t.id }
func (t *Task) Title() string        { return t.title }
func (t *Task) Description() *string { return t.description }
func (t *Task) Status() Status       { return t.status }
func (t *Task) DueDate() *string     { return t.dueDate }
func (t *Task) IsSynced() bool       { return t.synced }
func (t *Task) UpdatedAt() time.Time { return t.updatedAt }

// IsLocal reports whether the task still carries a temporary id.
func (t *Task) IsLocal() bool { return t.id < 0 }

func (t *Task) IsCompleted() bool { return t.status == StatusCompleted }

// AssignLocalID gives an offline task its temporary id.
func (t *Task) AssignLocalID(id int) error {
	if id >= 0 {
		return ErrInvalidLocalID
	}
	t.id = id
	t.synced = false
	return nil
}

// MarkSynced records that the server confirmed the current state.
func (t *Task) MarkSynced() {
	t.synced = true
}

// Patch is a partial update. Nil fields are left alone.
type Patch struct {
	Title       *string
	Description *string
	Status      *Status
	DueDate     *string
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil && p.DueDate == nil
}

// Apply merges p into t and bumps UpdatedAt.
func (t *Task) Apply(p Patch) error {
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return ErrEmptyTitle
		}
		t.title = title
	}
	if p.Description != nil {
		// Stored as sent, empty included.
		desc := strings.TrimSpace(*p.Description)
		t.description = &desc
	}
	if p.Status != nil {
		t.status = *p.Status
	}
	if p.DueDate != nil {
		due := *p.DueDate
		t.dueDate = &due
	}
	t.updatedAt = time.Now().UTC()
	return nil
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
