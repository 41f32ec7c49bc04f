package shared

import (
	"context"
)

// Specification encapsulates a business rule over T.
// Infrastructure translates concrete specifications to queries,
// IsSatisfiedBy is used for in-memory checks.
type Specification[T any] interface {
	IsSatisfiedBy(ctx context.Context, candidate T) bool
}

// ============================================================================
// Composite Specifications
// ============================================================================

// AndSpecification is satisfied when every member is satisfied.
// An empty AndSpecification matches everything.
type AndSpecification[T any] struct {
	Specs []Specification[T]
}

func (spec AndSpecification[T]) IsSatisfiedBy(ctx context.Context, candidate T) bool {
	for _, s := range spec.Specs {
		if !s.IsSatisfiedBy(ctx, candidate) {
			return false
		}
	}
	return true
}

// And combines specifications, skipping nil members.
func And[T any](specs ...Specification[T]) AndSpecification[T] {
	out := make([]Specification[T], 0, len(specs))
	for _, s := range specs {
		if s != nil {
			out = append(out, s)
		}
	}
	return AndSpecification[T]{Specs: out}
}

// OrSpecification is satisfied when any member is satisfied.
type OrSpecification[T any] struct {
	Specs []Specification[T]
}

func (spec OrSpecification[T]) IsSatisfiedBy(ctx context.Context, candidate T) bool {
	for _, s := range spec.Specs {
		if s.IsSatisfiedBy(ctx, candidate) {
			return true
		}
	}
	return false
}

func Or[T any](specs ...Specification[T]) OrSpecification[T] {
	return OrSpecification[T]{Specs: specs}
}

// NotSpecification negates the inner specification.
type NotSpecification[T any] struct {
	Spec Specification[T]
}

func (spec NotSpecification[T]) IsSatisfiedBy(ctx context.Context, candidate T) bool {
	return !spec.Spec.IsSatisfiedBy(ctx, candidate)
}

func Not[T any](inner Specification[T]) NotSpecification[T] {
	return NotSpecification[T]{Spec: inner}
}
