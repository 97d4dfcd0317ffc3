package agegroup

import (
	"context"
	"errors"
	"time"
)

const (
	MinAllowedAge = 0
	MaxAllowedAge = 120
)

var (
	ErrNotFound = errors.New("age group not found")
	// ErrNoMatch signals that no configured age group contains the given
	// age. This is a business rule rejection, not a malformed input.
	ErrNoMatch = errors.New("no age group contains the given age")
	// ErrInvalidRange signals a range outside the allowed bounds or with
	// min above max.
	ErrInvalidRange = errors.New("age range must satisfy 0 <= min_age <= max_age <= 120")
)

// AgeGroup is an administrator-defined inclusive age range used to classify
// enrollments. Ranges may overlap; classification takes the first match in
// catalog insertion order.
type AgeGroup struct {
	ID        string    `json:"id"`
	MinAge    int       `json:"min_age"`
	MaxAge    int       `json:"max_age"`
	CreatedAt time.Time `json:"created_at"`
}

// ValidRange reports whether [min, max] is an acceptable age range.
// Degenerate single-age ranges (min == max) are allowed.
func ValidRange(min, max int) bool {
	return min >= MinAllowedAge && min <= max && max <= MaxAllowedAge
}

type Catalog interface {
	Create(ctx context.Context, g *AgeGroup) error
	GetByID(ctx context.Context, id string) (*AgeGroup, error)
	List(ctx context.Context) ([]*AgeGroup, error)
	Update(ctx context.Context, g *AgeGroup) error
	Delete(ctx context.Context, id string) error
	// FindContaining returns the first group in insertion order whose
	// inclusive range contains age, or ErrNoMatch.
	FindContaining(ctx context.Context, age int) (*AgeGroup, error)
}
