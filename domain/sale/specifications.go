package sale

import (
	"context"
	"strings"
	"time"

	"backoffice/domain/shared"
)

// SearchSpecification matches customer name or location, case-insensitive substring.
type SearchSpecification struct {
	Term string
}

func (spec SearchSpecification) IsSatisfiedBy(ctx context.Context, v *SaleView) bool {
	term := strings.ToLower(spec.Term)
	return strings.Contains(strings.ToLower(v.Customer), term) ||
		strings.Contains(strings.ToLower(v.Location), term)
}

// PaidSpecification matches sales by paid flag.
type PaidSpecification struct {
	Paid bool
}

func (spec PaidSpecification) IsSatisfiedBy(ctx context.Context, v *SaleView) bool {
	return v.Paid == spec.Paid
}

// DateOrderedRangeSpecification is inclusive on both ends; nil bounds are open.
type DateOrderedRangeSpecification struct {
	Start *time.Time
	Stop  *time.Time
}

func (spec DateOrderedRangeSpecification) IsSatisfiedBy(ctx context.Context, v *SaleView) bool {
	return inRange(v.DateOrdered, spec.Start, spec.Stop)
}

// DatePaidRangeSpecification is inclusive; unpaid sales never match.
type DatePaidRangeSpecification struct {
	Start *time.Time
	Stop  *time.Time
}

func (spec DatePaidRangeSpecification) IsSatisfiedBy(ctx context.Context, v *SaleView) bool {
	if v.DatePaid == nil {
		return false
	}
	return inRange(*v.DatePaid, spec.Start, spec.Stop)
}

func inRange(t time.Time, start, stop *time.Time) bool {
	if start != nil && t.Before(*start) {
		return false
	}
	if stop != nil && t.After(*stop) {
		return false
	}
	return true
}

// ListFilter holds the optional listing filters. Zero values mean "not set".
type ListFilter struct {
	Search           string
	Paid             *bool
	DateOrderedStart *time.Time
	DateOrderedStop  *time.Time
	DatePaidStart    *time.Time
	DatePaidStop     *time.Time
}

// Specification combines every provided filter with AND.
func (f ListFilter) Specification() shared.AndSpecification[*SaleView] {
	var specs []shared.Specification[*SaleView]
	if term := strings.TrimSpace(f.Search); term != "" {
		specs = append(specs, SearchSpecification{Term: term})
	}
	if f.Paid != nil {
		specs = append(specs, PaidSpecification{Paid: *f.Paid})
	}
	if f.DateOrderedStart != nil || f.DateOrderedStop != nil {
		specs = append(specs, DateOrderedRangeSpecification{Start: f.DateOrderedStart, Stop: f.DateOrderedStop})
	}
	if f.DatePaidStart != nil || f.DatePaidStop != nil {
		specs = append(specs, DatePaidRangeSpecification{Start: f.DatePaidStart, Stop: f.DatePaidStop})
	}
	return shared.And(specs...)
}
