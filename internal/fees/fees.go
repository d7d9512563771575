// Package fees drafts, stores and settles membership fees through
// repository ports supplied by the caller.
package fees

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ledenadmin/ledenadmin/internal/model"
)

var (
	// ErrNotFound is returned by repositories when a member or fee does not exist.
	ErrNotFound = errors.New("not found")
	// ErrOverlap is returned when a fee period overlaps an existing fee of the same member.
	ErrOverlap = errors.New("fee period overlaps an existing fee")
	// ErrInvalidRequest is returned when a request fails validation.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrInvalidState is returned when a fee's status does not allow the operation.
	ErrInvalidState = errors.New("invalid fee state")
)

// FeeFilter narrows ListFees. Zero fields match everything.
type FeeFilter struct {
	MemberID string
	Status   model.FeeStatus
}

// FeeRepository persists fees.
type FeeRepository interface {
	SaveFee(ctx context.Context, fee model.Fee) error
	GetFee(ctx context.Context, id string) (model.Fee, error)
	ListFees(ctx context.Context, filter FeeFilter) ([]model.Fee, error)
}

// MemberRepository persists members.
type MemberRepository interface {
	SaveMember(ctx context.Context, member model.Member) error
	GetMember(ctx context.Context, id string) (model.Member, error)
	ListMembers(ctx context.Context) ([]model.Member, error)
}

// FieldError is a validation failure of one request field.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationError collects the field errors of one request.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Error()
	}
	return fmt.Sprintf("%v: %s", ErrInvalidRequest, strings.Join(msgs, "; "))
}

// Unwrap makes errors.Is(err, ErrInvalidRequest) hold.
func (e *ValidationError) Unwrap() error { return ErrInvalidRequest }

func (e *ValidationError) add(field, format string, args ...any) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// OverlapError lists the existing fees a candidate period collides with.
type OverlapError struct {
	Conflicts []model.Fee
}

func (e *OverlapError) Error() string {
	ids := make([]string, len(e.Conflicts))
	for i, f := range e.Conflicts {
		ids[i] = f.ID
	}
	return fmt.Sprintf("%v: %s", ErrOverlap, strings.Join(ids, ", "))
}

// Unwrap makes errors.Is(err, ErrOverlap) hold.
func (e *OverlapError) Unwrap() error { return ErrOverlap }
