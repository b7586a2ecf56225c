// Package order defines the sort direction of a search.
package order

// Order is the sort direction.
type Order string

// Sort direction constants.
const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// IsValid checks if the order is one of the supported values.
func (o Order) IsValid() bool {
	return o == Asc || o == Desc
}
