package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lksmaxx/enroll-api/internal/domain/enrollment"
)

type EnrollmentRepository struct {
	pool *pgxpool.Pool
}

func NewEnrollmentRepository(pool *pgxpool.Pool) *EnrollmentRepository {
	return &EnrollmentRepository{pool: pool}
}

func (r *EnrollmentRepository) Create(ctx context.Context, e *enrollment.Enrollment) error {
	const sql = `
		INSERT INTO enrollments (id, name, age, cpf, status, message, age_group_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, '')::uuid, $8, $9)
	`

	var executor interface {
		Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	} = r.pool

	if tx := GetTx(ctx); tx != nil {
		executor = tx
	}

	_, err := executor.Exec(ctx, sql,
		e.ID, e.Name, e.Age, e.CPF, string(e.Status), e.Message, e.AgeGroupID,
		e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert enrollment: %w", err)
	}

	return nil
}

func (r *EnrollmentRepository) GetByID(ctx context.Context, id string) (*enrollment.Enrollment, error) {
	const sql = `
		SELECT
			id, name, age, cpf, status,
			COALESCE(message, ''),
			COALESCE(age_group_id::text, ''),
			created_at, updated_at
		FROM enrollments
		WHERE id = $1
	`

	var e enrollment.Enrollment
	var status string
	err := r.pool.QueryRow(ctx, sql, id).Scan(
		&e.ID, &e.Name, &e.Age, &e.CPF, &status,
		&e.Message, &e.AgeGroupID,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, enrollment.ErrNotFound
		}
		return nil, fmt.Errorf("get enrollment by id: %w", err)
	}
	e.Status = enrollment.Status(status)

	return &e, nil
}

// MarkProcessed performs the conditional terminal-state update: the row must
// still be pending, so a redelivered or raced message becomes a no-op.
func (r *EnrollmentRepository) MarkProcessed(ctx context.Context, id, message string) (bool, error) {
	return r.transition(ctx, id, enrollment.StatusProcessed, message)
}

func (r *EnrollmentRepository) MarkFailed(ctx context.Context, id, message string) (bool, error) {
	return r.transition(ctx, id, enrollment.StatusFailed, message)
}

func (r *EnrollmentRepository) transition(ctx context.Context, id string, to enrollment.Status, message string) (bool, error) {
	const sql = `
		UPDATE enrollments
		SET status = $2, message = $3, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
	`

	tag, err := r.pool.Exec(ctx, sql, id, string(to), message)
	if err != nil {
		return false, fmt.Errorf("update enrollment status: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}
