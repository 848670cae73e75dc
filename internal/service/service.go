// Package service implements business logic and orchestration between
// HTTP handlers and the stores: field validation, authorization policy
// checks, cross-registry reads, and delegation to the storage layer.
package service

import (
	"context"
	"fmt"

	"github.com/campushub/clubevents/internal/model"
)

// ValidationError marks a malformed or out-of-range request field.
// Handlers map it to a 400 response.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func invalidf(format string, args ...any) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// ClubDirectory is the read-only view of the club registry that other
// registries consult. Satisfied by repository.ClubStore.
type ClubDirectory interface {
	GetByID(ctx context.Context, id string) (*model.Club, error)
}

// EventDirectory is the read-only view of the event registry that the
// registration ledger consults. Satisfied by repository.EventStore.
type EventDirectory interface {
	GetByID(ctx context.Context, id string) (*model.Event, error)
	ListByCreator(ctx context.Context, userID string) ([]model.Event, error)
}
