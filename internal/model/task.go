package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// TaskStatus 任务状态
type TaskStatus string

const (
	TaskNotStarted TaskStatus = "未着手"
	TaskInProgress TaskStatus = "進行中"
	TaskCompleted  TaskStatus = "完了"
	TaskImpossible TaskStatus = "対応不能" // 不计入进度分母
)

// ParseTaskStatus 识别日文或英文状态写法
func ParseTaskStatus(s string) (TaskStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "未着手", "not_started", "not started", "notstarted":
		return TaskNotStarted, true
	case "進行中", "in_progress", "in progress", "inprogress":
		return TaskInProgress, true
	case "完了", "completed", "complete", "done":
		return TaskCompleted, true
	case "対応不能", "impossible", "n/a":
		return TaskImpossible, true
	}
	return TaskNotStarted, false
}

// Entity 各层级共有字段
type Entity struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func newEntity(name string) Entity {
	now := time.Now()
	return Entity{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (e *Entity) touch() { e.UpdatedAt = time.Now() }

// Task 任务
type Task struct {
	Entity
	Status TaskStatus `json:"status"`
}

// NewTask 创建任务
func NewTask(name string, status TaskStatus) *Task {
	if status == "" {
		status = TaskNotStarted
	}
	return &Task{Entity: newEntity(name), Status: status}
}

// SetStatus 更新状态
func (t *Task) SetStatus(status TaskStatus) {
	t.Status = status
	t.touch()
}
