/*
Package catalog exposes the reference data the sale workflow reads but
never writes: products, customers and staff.
*/
package catalog

import "context"

// Repository answers existence questions about reference data.
type Repository interface {
	// ExistingProductIDs returns the subset of ids that exist, without duplicates
	ExistingProductIDs(ctx context.Context, ids []int64) ([]int64, error)

	CustomerExists(ctx context.Context, id int64) (bool, error)
	StaffExists(ctx context.Context, id int64) (bool, error)
}
