package enrollment

import (
	"context"
	"errors"
	"time"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusProcessed Status = "processed"
	StatusFailed    Status = "failed"
)

var ErrNotFound = errors.New("enrollment not found")

type Enrollment struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Age        int       `json:"age"`
	CPF        string    `json:"cpf"`
	Status     Status    `json:"status"`
	Message    string    `json:"message,omitempty"`
	AgeGroupID string    `json:"age_group_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Task is the envelope published to the queue. It is a snapshot of the
// enrollment at submission time; the consumer treats the store as the source
// of truth and the task only as a trigger carrying the identifier.
type Task struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Age        int    `json:"age"`
	CPF        string `json:"cpf"`
	Status     Status `json:"status"`
	AgeGroupID string `json:"age_group_id,omitempty"`
}

type Store interface {
	Create(ctx context.Context, e *Enrollment) error
	GetByID(ctx context.Context, id string) (*Enrollment, error)
	// MarkProcessed transitions a pending enrollment to processed with the
	// given message. It reports false when no pending row matched the id.
	MarkProcessed(ctx context.Context, id, message string) (bool, error)
	// MarkFailed transitions a pending enrollment to failed. Best effort,
	// same zero-row semantics as MarkProcessed.
	MarkFailed(ctx context.Context, id, message string) (bool, error)
}
