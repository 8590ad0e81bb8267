// Package domain holds the warehouse-side reference types and the static
// taxonomies the loads join against.
package domain

// Customer is one row of the customer reference table. ZoneID is nil when
// the warehouse has not assigned the customer to a sales zone yet.
type Customer struct {
	ID     int64
	Name   string
	ZoneID *int64
}

// ZoneQuotaCustomerID marks zone-level quota rows, which carry no real
// customer. The dedup scan for zone quotas is restricted to this sentinel.
const ZoneQuotaCustomerID int64 = 0
