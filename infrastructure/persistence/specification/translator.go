package specification

import (
	"fmt"
	"strings"
	"time"

	"backoffice/domain/sale"
	"backoffice/domain/shared"

	"gorm.io/gorm"
)

// Columns maps the view fields used by specifications to SQL expressions.
type Columns struct {
	Customer    string
	Location    string
	Paid        string
	DateOrdered string
	DatePaid    string
}

// DefaultColumns matches the aliases used by the sale query service.
var DefaultColumns = Columns{
	Customer:    "c.name",
	Location:    "s.location",
	Paid:        "s.paid",
	DateOrdered: "s.date_ordered",
	DatePaid:    "s.date_paid",
}

// GormTranslator converts sale listing specifications to WHERE fragments.
type GormTranslator struct {
	cols Columns
}

func NewGormTranslator() *GormTranslator {
	return &GormTranslator{cols: DefaultColumns}
}

// Scope returns a GORM scope filtering by spec. A nil spec matches every row;
// a spec with no SQL rendering is an error rather than a silent full scan.
func (t *GormTranslator) Scope(spec shared.Specification[*sale.SaleView]) (func(*gorm.DB) *gorm.DB, error) {
	if spec == nil {
		return func(db *gorm.DB) *gorm.DB { return db }, nil
	}
	query, args, ok := t.Condition(spec)
	if !ok {
		return nil, fmt.Errorf("unsupported sale specification %T", spec)
	}
	return func(db *gorm.DB) *gorm.DB {
		if query == "" {
			return db
		}
		return db.Where(query, args...)
	}, nil
}

// Condition exposes the raw WHERE fragment for callers building SQL by hand.
func (t *GormTranslator) Condition(spec shared.Specification[*sale.SaleView]) (string, []any, bool) {
	return t.condition(spec)
}

func (t *GormTranslator) condition(spec shared.Specification[*sale.SaleView]) (string, []any, bool) {
	switch s := spec.(type) {
	case shared.AndSpecification[*sale.SaleView]:
		return t.join(s.Specs, " AND ")
	case shared.OrSpecification[*sale.SaleView]:
		return t.join(s.Specs, " OR ")
	case shared.NotSpecification[*sale.SaleView]:
		query, args, ok := t.condition(s.Spec)
		if !ok || query == "" {
			return "", nil, ok
		}
		return fmt.Sprintf("NOT (%s)", query), args, true
	}

	return t.concrete(spec)
}

func (t *GormTranslator) join(specs []shared.Specification[*sale.SaleView], op string) (string, []any, bool) {
	var (
		parts []string
		args  []any
	)
	for _, spec := range specs {
		query, partArgs, ok := t.condition(spec)
		if !ok {
			return "", nil, false
		}
		if query == "" {
			continue
		}
		parts = append(parts, "("+query+")")
		args = append(args, partArgs...)
	}

	return strings.Join(parts, op), args, true
}

func (t *GormTranslator) concrete(spec shared.Specification[*sale.SaleView]) (string, []any, bool) {
	switch s := spec.(type) {
	case sale.SearchSpecification:
		pattern := "%" + likeEscaper.Replace(strings.ToLower(s.Term)) + "%"
		query := fmt.Sprintf("LOWER(%s) LIKE ? ESCAPE '!' OR LOWER(%s) LIKE ? ESCAPE '!'", t.cols.Customer, t.cols.Location)
		return query, []any{pattern, pattern}, true
	case sale.PaidSpecification:
		return t.cols.Paid + " = ?", []any{s.Paid}, true
	case sale.DateOrderedRangeSpecification:
		query, args := rangeCondition(t.cols.DateOrdered, s.Start, s.Stop)
		return query, args, true
	case sale.DatePaidRangeSpecification:
		query, args := rangeCondition(t.cols.DatePaid, s.Start, s.Stop)
		if query == "" {
			return t.cols.DatePaid + " IS NOT NULL", nil, true
		}
		return query, args, true
	}

	return "", nil, false
}

// Search terms match literally. '!' is used as the LIKE escape because a
// backslash literal is itself escaped by MySQL.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func rangeCondition(column string, start, stop *time.Time) (string, []any) {
	var (
		parts []string
		args  []any
	)
	if start != nil {
		parts = append(parts, column+" >= ?")
		args = append(args, start.UTC())
	}
	if stop != nil {
		parts = append(parts, column+" <= ?")
		args = append(args, stop.UTC())
	}

	return strings.Join(parts, " AND "), args
}
