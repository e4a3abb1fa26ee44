// Package memory is an in-process hero.Store for local runs and tests.
package memory

import (
	"context"
	"sync"

	"hero-service/internal/hero"
)

// Store is an in-memory implementation of hero.Store.
// It is safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	nextID int64
	heroes []hero.Hero
}

func NewStore() *Store {
	return &Store{nextID: 1, heroes: make([]hero.Hero, 0)}
}

func (s *Store) Create(ctx context.Context, h hero.Hero) (hero.Hero, error) {
	if err := ctx.Err(); err != nil {
		return hero.Hero{}, err
	}
	if err := h.Validate(); err != nil {
		return hero.Hero{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	h.ID = s.nextID
	s.nextID++
	h = clone(h)
	s.heroes = append(s.heroes, h)
	return clone(h), nil
}

func (s *Store) List(ctx context.Context) ([]hero.Hero, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]hero.Hero, 0, len(s.heroes))
	for _, h := range s.heroes {
		out = append(out, clone(h))
	}
	return out, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// EnsureSchema has nothing to create.
func (s *Store) EnsureSchema(context.Context) error { return nil }

func (s *Store) Close() {}

func clone(h hero.Hero) hero.Hero {
	if h.Age != nil {
		h.Age = hero.IntPtr(*h.Age)
	}
	return h
}
