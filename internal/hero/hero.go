// Package hero holds the Hero storage record and the port every backend
// implements.
package hero

import (
	"context"
	"fmt"
	"math"
	"strings"
)

// MaxAge is the largest age the integer column can hold.
const MaxAge = math.MaxInt32

// Hero is the persisted record. ID is zero until the store assigns one.
type Hero struct {
	ID         int64
	Name       string
	SecretName string
	Age        *int
}

// Store is the data-access contract between the HTTP layer and a backend.
// Each call runs in its own short-lived session that the implementation
// releases before returning.
type Store interface {
	// Create persists h and returns it with the store-assigned ID.
	// Any ID already set on h is ignored.
	Create(ctx context.Context, h Hero) (Hero, error)
	// List returns every hero ordered by ID.
	List(ctx context.Context) ([]Hero, error)
	Ping(ctx context.Context) error
}

// FieldError describes one invalid field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned for a payload that cannot become a Hero.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return "invalid hero"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" "+f.Message)
	}
	return "invalid hero: " + strings.Join(parts, "; ")
}

// Validate checks the invariants a record must satisfy before it is stored.
func (h Hero) Validate() error {
	var fields []FieldError
	if strings.TrimSpace(h.Name) == "" {
		fields = append(fields, FieldError{Field: "name", Message: "is required"})
	}
	if strings.TrimSpace(h.SecretName) == "" {
		fields = append(fields, FieldError{Field: "secret_name", Message: "is required"})
	}
	if h.Age != nil && *h.Age < 0 {
		fields = append(fields, FieldError{Field: "age", Message: fmt.Sprintf("must be >= 0, got %d", *h.Age)})
	}
	if h.Age != nil && *h.Age > MaxAge {
		fields = append(fields, FieldError{Field: "age", Message: fmt.Sprintf("must be <= %d, got %d", MaxAge, *h.Age)})
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func IntPtr(v int) *int { return &v }
