package service

import (
	"errors"
	"fmt"
)

var (
	ErrEntityNotFound = errors.New("entity not found")
	ErrEntityExists   = errors.New("entity already registered")
)

// ValidationError reports a rejected operation on an entity.
// Err carries the domain sentinel (negative amounts, unknown stats, ...).
type ValidationError struct {
	Op     string
	Entity string
	Stat   string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Stat == "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Entity, e.Err)
	}
	return fmt.Sprintf("%s %s/%s: %v", e.Op, e.Entity, e.Stat, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(op, entity, subject string, err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Op: op, Entity: entity, Stat: subject, Err: err}
}
