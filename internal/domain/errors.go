package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Error classes. Every typed error below unwraps to one of these so callers can
// branch with errors.Is without caring about the concrete type.
var (
	ErrValidation          = errors.New("validation failed")
	ErrAuthorization       = errors.New("not allowed")
	ErrConflict            = errors.New("conflict")
	ErrNotFound            = errors.New("not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrRollbackFailure     = errors.New("rollback failed")
)

// ValidationError reports the first violated constraint of an input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + ": " + e.Reason
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

type AuthorizationError struct {
	Reason string
}

func (e *AuthorizationError) Error() string { return e.Reason }

func (e *AuthorizationError) Unwrap() error { return ErrAuthorization }

func Forbidden(reason string) error {
	return &AuthorizationError{Reason: reason}
}

type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string { return e.Reason }

func (e *ConflictError) Unwrap() error { return ErrConflict }

func Conflict(reason string) error {
	return &ConflictError{Reason: reason}
}

type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Entity + " not found"
	}
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

func NotFound(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// InsufficientBalanceError is returned when a debit or withdrawal exceeds what
// the wallet can give. Nothing has been applied when it is returned.
type InsufficientBalanceError struct {
	Balance   BalanceType
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient %s balance: available %s, requested %s",
		e.Balance, e.Available.StringFixed(2), e.Requested.StringFixed(2))
}

func (e *InsufficientBalanceError) Unwrap() error { return ErrInsufficientBalance }

// RollbackFailureError means the compensating step of provider selection failed
// after the assignment write failed. The acceptance ledger and the request no
// longer agree and need manual reconciliation.
type RollbackFailureError struct {
	RequestID    uuid.UUID
	AcceptanceID uuid.UUID
	Primary      error
	Rollback     error
}

func (e *RollbackFailureError) Error() string {
	return fmt.Sprintf("request %s: acceptance %s left chosen: assign failed (%v), reset failed (%v)",
		e.RequestID, e.AcceptanceID, e.Primary, e.Rollback)
}

func (e *RollbackFailureError) Unwrap() []error {
	return []error{ErrRollbackFailure, e.Primary, e.Rollback}
}
