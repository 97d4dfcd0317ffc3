package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/lksmaxx/enroll-api/internal/domain/agegroup"
)

// AgeGroups bundles the administrative CRUD over the age bracket catalog.
type AgeGroups struct {
	catalog agegroup.Catalog
}

func NewAgeGroups(catalog agegroup.Catalog) *AgeGroups {
	return &AgeGroups{catalog: catalog}
}

func (uc *AgeGroups) Create(ctx context.Context, minAge, maxAge int) (*agegroup.AgeGroup, error) {
	if !agegroup.ValidRange(minAge, maxAge) {
		return nil, agegroup.ErrInvalidRange
	}

	g := &agegroup.AgeGroup{
		ID:        uuid.New().String(),
		MinAge:    minAge,
		MaxAge:    maxAge,
		CreatedAt: time.Now(),
	}

	if err := uc.catalog.Create(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

func (uc *AgeGroups) Get(ctx context.Context, id string) (*agegroup.AgeGroup, error) {
	return uc.catalog.GetByID(ctx, id)
}

func (uc *AgeGroups) List(ctx context.Context) ([]*agegroup.AgeGroup, error) {
	return uc.catalog.List(ctx)
}

func (uc *AgeGroups) Update(ctx context.Context, id string, minAge, maxAge int) (*agegroup.AgeGroup, error) {
	if !agegroup.ValidRange(minAge, maxAge) {
		return nil, agegroup.ErrInvalidRange
	}

	g := &agegroup.AgeGroup{ID: id, MinAge: minAge, MaxAge: maxAge}
	if err := uc.catalog.Update(ctx, g); err != nil {
		return nil, err
	}

	return uc.catalog.GetByID(ctx, id)
}

func (uc *AgeGroups) Delete(ctx context.Context, id string) error {
	return uc.catalog.Delete(ctx, id)
}
