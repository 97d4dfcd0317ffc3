package agegroup

import (
	"context"
	"sync"
)

// MemoryCatalog is an in-memory Catalog preserving insertion order, used by
// unit tests and local wiring.
type MemoryCatalog struct {
	mu     sync.RWMutex
	groups []*AgeGroup
}

func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{}
}

func (c *MemoryCatalog) Create(ctx context.Context, g *AgeGroup) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	cp := *g
	c.groups = append(c.groups, &cp)
	return nil
}

func (c *MemoryCatalog) GetByID(ctx context.Context, id string) (*AgeGroup, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, g := range c.groups {
		if g.ID == id {
			cp := *g
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (c *MemoryCatalog) List(ctx context.Context) ([]*AgeGroup, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*AgeGroup, 0, len(c.groups))
	for _, g := range c.groups {
		cp := *g
		out = append(out, &cp)
	}
	return out, nil
}

func (c *MemoryCatalog) Update(ctx context.Context, g *AgeGroup) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, existing := range c.groups {
		if existing.ID == g.ID {
			existing.MinAge = g.MinAge
			existing.MaxAge = g.MaxAge
			return nil
		}
	}
	return ErrNotFound
}

func (c *MemoryCatalog) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, g := range c.groups {
		if g.ID == id {
			c.groups = append(c.groups[:i], c.groups[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (c *MemoryCatalog) FindContaining(ctx context.Context, age int) (*AgeGroup, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, g := range c.groups {
		if age >= g.MinAge && age <= g.MaxAge {
			cp := *g
			return &cp, nil
		}
	}
	return nil, ErrNoMatch
}
