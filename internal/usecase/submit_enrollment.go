package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lksmaxx/enroll-api/internal/domain/agegroup"
	"github.com/lksmaxx/enroll-api/internal/domain/enrollment"
	"github.com/lksmaxx/enroll-api/internal/validator"
)

// TaskPublisher publishes a serialized enrollment task to the work queue.
type TaskPublisher interface {
	Publish(ctx context.Context, key, value []byte) error
}

type SubmitEnrollment struct {
	catalog   agegroup.Catalog
	store     enrollment.Store
	publisher TaskPublisher
}

func NewSubmitEnrollment(catalog agegroup.Catalog, store enrollment.Store, publisher TaskPublisher) *SubmitEnrollment {
	return &SubmitEnrollment{
		catalog:   catalog,
		store:     store,
		publisher: publisher,
	}
}

type SubmitEnrollmentParams struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
	CPF  string `json:"cpf"`
}

// Execute admits a submission: structural validation, age group
// classification, pending record, queued task. The record is written before
// the task is published; a publish failure after the write leaves the
// pending row in place for operator replay and surfaces the error.
func (uc *SubmitEnrollment) Execute(ctx context.Context, params SubmitEnrollmentParams) (string, error) {
	cpf, verr := validator.Submission(params.Name, params.Age, params.CPF)
	if verr != nil {
		return "", verr
	}

	group, err := uc.catalog.FindContaining(ctx, params.Age)
	if err != nil {
		return "", err
	}

	now := time.Now()
	e := &enrollment.Enrollment{
		ID:         uuid.New().String(),
		Name:       params.Name,
		Age:        params.Age,
		CPF:        cpf,
		Status:     enrollment.StatusPending,
		AgeGroupID: group.ID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := uc.store.Create(ctx, e); err != nil {
		return "", fmt.Errorf("create enrollment: %w", err)
	}

	task := enrollment.Task{
		ID:         e.ID,
		Name:       e.Name,
		Age:        e.Age,
		CPF:        e.CPF,
		Status:     e.Status,
		AgeGroupID: e.AgeGroupID,
	}

	payload, err := json.Marshal(task)
	if err != nil {
		return "", fmt.Errorf("marshal task: %w", err)
	}

	if err := uc.publisher.Publish(ctx, []byte(e.ID), payload); err != nil {
		return "", fmt.Errorf("publish task: %w", err)
	}

	return e.ID, nil
}
