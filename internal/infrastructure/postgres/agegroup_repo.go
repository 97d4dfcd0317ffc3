package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lksmaxx/enroll-api/internal/domain/agegroup"
)

type AgeGroupRepository struct {
	pool *pgxpool.Pool
}

func NewAgeGroupRepository(pool *pgxpool.Pool) *AgeGroupRepository {
	return &AgeGroupRepository{pool: pool}
}

func (r *AgeGroupRepository) Create(ctx context.Context, g *agegroup.AgeGroup) error {
	const sql = `
		INSERT INTO age_groups (id, min_age, max_age, created_at)
		VALUES ($1, $2, $3, $4)
	`

	var executor interface {
		Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	} = r.pool

	if tx := GetTx(ctx); tx != nil {
		executor = tx
	}

	_, err := executor.Exec(ctx, sql, g.ID, g.MinAge, g.MaxAge, g.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert age group: %w", err)
	}

	return nil
}

func (r *AgeGroupRepository) GetByID(ctx context.Context, id string) (*agegroup.AgeGroup, error) {
	const sql = `
		SELECT id, min_age, max_age, created_at
		FROM age_groups
		WHERE id = $1
	`

	var g agegroup.AgeGroup
	err := r.pool.QueryRow(ctx, sql, id).Scan(&g.ID, &g.MinAge, &g.MaxAge, &g.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, agegroup.ErrNotFound
		}
		return nil, fmt.Errorf("get age group by id: %w", err)
	}

	return &g, nil
}

func (r *AgeGroupRepository) List(ctx context.Context) ([]*agegroup.AgeGroup, error) {
	const sql = `
		SELECT id, min_age, max_age, created_at
		FROM age_groups
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.pool.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("query age groups: %w", err)
	}
	defer rows.Close()

	var groups []*agegroup.AgeGroup
	for rows.Next() {
		g := &agegroup.AgeGroup{}
		if err := rows.Scan(&g.ID, &g.MinAge, &g.MaxAge, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan age group: %w", err)
		}
		groups = append(groups, g)
	}

	return groups, nil
}

func (r *AgeGroupRepository) Update(ctx context.Context, g *agegroup.AgeGroup) error {
	const sql = `
		UPDATE age_groups
		SET min_age = $2, max_age = $3
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, sql, g.ID, g.MinAge, g.MaxAge)
	if err != nil {
		return fmt.Errorf("update age group: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return agegroup.ErrNotFound
	}

	return nil
}

func (r *AgeGroupRepository) Delete(ctx context.Context, id string) error {
	const sql = `DELETE FROM age_groups WHERE id = $1`

	tag, err := r.pool.Exec(ctx, sql, id)
	if err != nil {
		return fmt.Errorf("delete age group: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return agegroup.ErrNotFound
	}

	return nil
}

// FindContaining resolves the age group for a given age. Overlapping ranges
// are legal; the first group in insertion order wins.
func (r *AgeGroupRepository) FindContaining(ctx context.Context, age int) (*agegroup.AgeGroup, error) {
	const sql = `
		SELECT id, min_age, max_age, created_at
		FROM age_groups
		WHERE min_age <= $1 AND max_age >= $1
		ORDER BY created_at ASC, id ASC
		LIMIT 1
	`

	var g agegroup.AgeGroup
	err := r.pool.QueryRow(ctx, sql, age).Scan(&g.ID, &g.MinAge, &g.MaxAge, &g.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, agegroup.ErrNoMatch
		}
		return nil, fmt.Errorf("find age group for age: %w", err)
	}

	return &g, nil
}

// SeedDefaults inserts the default catalog when the table is empty. The
// check and the inserts run in one transaction so concurrent startups do not
// produce a partial or duplicated seed.
func (r *AgeGroupRepository) SeedDefaults(ctx context.Context, tm Transactor) error {
	ranges := [][2]int{{0, 12}, {13, 17}, {18, 25}, {26, 35}, {36, 50}, {51, 100}}

	return tm.WithinTransaction(ctx, func(txCtx context.Context) error {
		tx := GetTx(txCtx)

		var count int
		if err := tx.QueryRow(txCtx, `SELECT COUNT(*) FROM age_groups`).Scan(&count); err != nil {
			return fmt.Errorf("count age groups: %w", err)
		}
		if count > 0 {
			return nil
		}

		now := time.Now()
		for i, rng := range ranges {
			g := &agegroup.AgeGroup{
				ID:     uuid.New().String(),
				MinAge: rng[0],
				MaxAge: rng[1],
				// stagger created_at so insertion order stays stable
				CreatedAt: now.Add(time.Duration(i) * time.Millisecond),
			}
			if err := r.Create(txCtx, g); err != nil {
				return err
			}
		}
		return nil
	})
}
