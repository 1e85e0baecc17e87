// Package model defines the data models for the application.
// Persisted models use GORM with SQLite; the task and log types mirror
// state owned by the remote queue service and are never stored locally.
package model

import (
	"database/sql/driver"
	"encoding/json"
)

// IntArray is a custom type for storing integer arrays in SQLite
type IntArray []int

// Value implements driver.Valuer interface
func (a IntArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(a)
	return string(data), err
}

// Scan implements sql.Scanner interface
func (a *IntArray) Scan(value interface{}) error {
	if value == nil {
		*a = []int{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	}
	return json.Unmarshal(bytes, a)
}

// Contains reports whether the array contains v
func (a IntArray) Contains(v int) bool {
	for _, e := range a {
		if e == v {
			return true
		}
	}
	return false
}

// LogLevel represents the severity of a remote log entry
type LogLevel string

const (
	LogLevelInfo    LogLevel = "info"
	LogLevelSuccess LogLevel = "success"
	LogLevelWarning LogLevel = "warning"
	LogLevelError   LogLevel = "error"
)

// LogEntry is one line of the remote execution log, as mirrored by the
// ingestion buffer. Immutable once created; IDs are assigned locally in
// insertion order because the remote log has no stable identifier.
type LogEntry struct {
	ID        int64    `json:"id"`
	Timestamp string   `json:"timestamp"` // remote-formatted, kept opaque
	Level     LogLevel `json:"level"`
	Message   string   `json:"message"`
}

// TaskType represents the kind of asynchronous job tracked by the queue
type TaskType string

const (
	TaskTypeReport     TaskType = "report"
	TaskTypeRescisao   TaskType = "rescisao"
	TaskTypeDBQuery    TaskType = "db_query"
	TaskTypeQueueBatch TaskType = "queue_batch"
)

// TaskStatus represents the lifecycle state of a queued task
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusError      TaskStatus = "error"
)

// IsTerminal reports whether the status is a final state. The queue
// service historically emitted Portuguese synonyms for the terminal
// states, so both vocabularies are accepted.
func (s TaskStatus) IsTerminal() bool {
	switch s {
	case TaskStatusCompleted, TaskStatusError, "concluido", "erro":
		return true
	}
	return false
}

// IsSuccess reports whether the status is a successful terminal state
func (s TaskStatus) IsSuccess() bool {
	return s == TaskStatusCompleted || s == "concluido"
}

// Task is a read-only, eventually-consistent mirror of one unit of work
// owned by the remote queue. Timestamps are kept as the strings the
// queue service sends; nothing locally depends on parsing them.
type Task struct {
	ID          string                 `json:"id"`
	Type        TaskType               `json:"type"`
	Status      TaskStatus             `json:"status"`
	Data        map[string]interface{} `json:"data,omitempty"`
	Progress    int                    `json:"progress"`
	Message     string                 `json:"message,omitempty"`
	Error       string                 `json:"error,omitempty"`
	CreatedAt   string                 `json:"created_at,omitempty"`
	StartedAt   string                 `json:"started_at,omitempty"`
	CompletedAt string                 `json:"completed_at,omitempty"`
}

// Collaborator tracks per-person progress of a termination batch run.
// Meses is fixed at roster load; Processados and Erros are derived from
// the log stream and never decremented by the caller.
type Collaborator struct {
	Nome        string `json:"nome"`
	Admissao    string `json:"admissao,omitempty"` // dd/mm/yyyy
	Demissao    string `json:"demissao,omitempty"` // dd/mm/yyyy
	Meses       int    `json:"meses"`
	Processados int    `json:"processados"`
	Erros       []int  `json:"erros,omitempty"` // 1-based month indices, sorted
}

// Percent returns the completion percentage, rounded to the nearest
// integer. A zero-month roster entry reports 0.
func (c Collaborator) Percent() int {
	if c.Meses == 0 {
		return 0
	}
	return int(float64(c.Processados)/float64(c.Meses)*100 + 0.5)
}

// Equal reports whether two collaborator records carry the same derived
// state. Used to suppress redundant downstream updates.
func (c Collaborator) Equal(o Collaborator) bool {
	if c.Nome != o.Nome || c.Meses != o.Meses || c.Processados != o.Processados {
		return false
	}
	if len(c.Erros) != len(o.Erros) {
		return false
	}
	for i := range c.Erros {
		if c.Erros[i] != o.Erros[i] {
			return false
		}
	}
	return true
}
