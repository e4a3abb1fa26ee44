package memory

import (
	"context"
	"testing"

	"hero-service/internal/db/dbtest"
	"hero-service/internal/hero"
)

func TestContract_MemoryStore(t *testing.T) {
	dbtest.RunHeroStore(t, func(t *testing.T) (hero.Store, func()) {
		t.Helper()
		return NewStore(), nil
	})
}

func TestStore_ListDoesNotAlias(t *testing.T) {
	t.Parallel()

	s := NewStore()
	if _, err := s.Create(context.Background(), hero.Hero{Name: "A", SecretName: "B", Age: hero.IntPtr(1)}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	hs, _ := s.List(context.Background())
	*hs[0].Age = 99
	hs[0].Name = "mutated"

	again, _ := s.List(context.Background())
	if again[0].Name != "A" || *again[0].Age != 1 {
		t.Fatalf("store state mutated through List result: %+v", again[0])
	}
}

func TestStore_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewStore()
	if _, err := s.Create(ctx, hero.Hero{Name: "A", SecretName: "B"}); err == nil {
		t.Fatal("expected error on canceled context")
	}
	if err := s.Ping(ctx); err == nil {
		t.Fatal("expected ping error on canceled context")
	}
}
