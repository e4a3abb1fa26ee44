// Package dbtest holds the behavioral contract every hero.Store backend
// must satisfy.
package dbtest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"hero-service/internal/hero"
)

// Factory returns a fresh, schema-initialized, empty store. The cleanup
// func may be nil.
type Factory func(t *testing.T) (hero.Store, func())

func RunHeroStore(t *testing.T, newStore Factory) {
	t.Helper()

	run := func(name string, fn func(t *testing.T, s hero.Store)) {
		t.Run(name, func(t *testing.T) {
			s, cleanup := newStore(t)
			if cleanup != nil {
				t.Cleanup(cleanup)
			}
			fn(t, s)
		})
	}

	run("EmptyList", func(t *testing.T, s hero.Store) {
		hs, err := s.List(ctx(t))
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if hs == nil || len(hs) != 0 {
			t.Fatalf("List()=%v want empty non-nil slice", hs)
		}
	})

	run("CreateAssignsID", func(t *testing.T, s hero.Store) {
		got, err := s.Create(ctx(t), hero.Hero{ID: 999, Name: "Deadpond", SecretName: "Dive Wilson", Age: hero.IntPtr(30)})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if got.ID <= 0 {
			t.Fatalf("ID=%d want store-assigned positive id", got.ID)
		}
		if got.ID == 999 {
			t.Fatalf("caller-supplied id was kept")
		}
		if got.Name != "Deadpond" || got.SecretName != "Dive Wilson" || got.Age == nil || *got.Age != 30 {
			t.Fatalf("Create()=%+v", got)
		}
	})

	run("MaxAgeRoundTrips", func(t *testing.T, s hero.Store) {
		got, err := s.Create(ctx(t), hero.Hero{Name: "Old", SecretName: "Timer", Age: hero.IntPtr(hero.MaxAge)})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if got.Age == nil || *got.Age != hero.MaxAge {
			t.Fatalf("Age=%v want %d", got.Age, hero.MaxAge)
		}
	})

	run("NilAgeRoundTrips", func(t *testing.T, s hero.Store) {
		if _, err := s.Create(ctx(t), hero.Hero{Name: "Spider-Boy", SecretName: "Pedro Parqueador"}); err != nil {
			t.Fatalf("Create: %v", err)
		}
		hs, err := s.List(ctx(t))
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(hs) != 1 || hs[0].Age != nil {
			t.Fatalf("List()=%+v want one hero without age", hs)
		}
	})

	run("InvalidNotPersisted", func(t *testing.T, s hero.Store) {
		for _, h := range []hero.Hero{
			{SecretName: "no name"},
			{Name: "no secret"},
			{Name: "A", SecretName: "B", Age: hero.IntPtr(-1)},
			{Name: "A", SecretName: "B", Age: hero.IntPtr(hero.MaxAge + 1)},
		} {
			_, err := s.Create(ctx(t), h)
			var ve *hero.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("Create(%+v)=%v want *hero.ValidationError", h, err)
			}
		}
		hs, err := s.List(ctx(t))
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(hs) != 0 {
			t.Fatalf("invalid heroes persisted: %+v", hs)
		}
	})

	run("ListReturnsAllCreatedInOrder", func(t *testing.T, s hero.Store) {
		const n = 5
		want := make([]hero.Hero, 0, n)
		for i := 0; i < n; i++ {
			h, err := s.Create(ctx(t), hero.Hero{
				Name:       fmt.Sprintf("hero-%d", i),
				SecretName: fmt.Sprintf("secret-%d", i),
				Age:        hero.IntPtr(20 + i),
			})
			if err != nil {
				t.Fatalf("Create #%d: %v", i, err)
			}
			want = append(want, h)
		}
		got, err := s.List(ctx(t))
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(got) != n {
			t.Fatalf("len=%d want %d", len(got), n)
		}
		for i := range want {
			if got[i].ID != want[i].ID || got[i].Name != want[i].Name || got[i].SecretName != want[i].SecretName || *got[i].Age != *want[i].Age {
				t.Fatalf("got[%d]=%+v want %+v", i, got[i], want[i])
			}
		}
	})

	run("ConcurrentCreatesGetDistinctIDs", func(t *testing.T, s hero.Store) {
		const n = 50
		ids := make(chan int64, n)
		errs := make(chan error, n)
		c := ctx(t)
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				h, err := s.Create(c, hero.Hero{Name: fmt.Sprintf("h%d", i), SecretName: "s"})
				if err != nil {
					errs <- err
					return
				}
				ids <- h.ID
			}(i)
		}
		wg.Wait()
		close(ids)
		close(errs)
		for err := range errs {
			t.Fatalf("Create: %v", err)
		}
		seen := make(map[int64]bool, n)
		for id := range ids {
			if seen[id] {
				t.Fatalf("duplicate id %d", id)
			}
			seen[id] = true
		}
		hs, err := s.List(ctx(t))
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(hs) != n {
			t.Fatalf("len=%d want %d", len(hs), n)
		}
		for _, h := range hs {
			if !seen[h.ID] {
				t.Fatalf("listed id %d was never returned by Create", h.ID)
			}
		}
	})

	run("Ping", func(t *testing.T, s hero.Store) {
		if err := s.Ping(ctx(t)); err != nil {
			t.Fatalf("Ping: %v", err)
		}
	})
}

func ctx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return c
}
