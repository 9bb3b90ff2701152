package order

import "storefront-be/internal/profile"

type Status string

const (
	// checkout-time statuses, derived from which default profiles resolved
	StatusInProcess       Status = "IN_PROCESS"
	StatusNotCompleted    Status = "NOT_COMPLETED"
	StatusMissingPayment  Status = "MISSING_PAYMENT"
	StatusMissingShipping Status = "MISSING_SHIPPING"

	// fulfillment statuses, strictly monotonic
	StatusPaid      Status = "PAID"
	StatusSent      Status = "SENT"
	StatusDelivered Status = "DELIVERED"
	StatusReceived  Status = "RECEIVED"
)

// InitialStatus computes the checkout status from which profiles resolved.
func InitialStatus(hasPayment, hasShipping bool) Status {
	switch {
	case hasPayment && hasShipping:
		return StatusInProcess
	case hasPayment:
		return StatusMissingShipping
	case hasShipping:
		return StatusMissingPayment
	default:
		return StatusNotCompleted
	}
}

// ProfileSuppliable reports whether a missing profile may still be supplied.
func (s Status) ProfileSuppliable() bool {
	switch s {
	case StatusNotCompleted, StatusMissingPayment, StatusMissingShipping:
		return true
	}
	return false
}

// AfterSupply returns the status after filling the given profile slot.
// The second return is false when the current status has no empty slot of
// that kind, which callers treat as a no-op.
func (s Status) AfterSupply(kind profile.Kind) (Status, bool) {
	switch s {
	case StatusNotCompleted:
		if kind == profile.KindPayment {
			return StatusMissingShipping, true
		}
		return StatusMissingPayment, true
	case StatusMissingPayment:
		if kind == profile.KindPayment {
			return StatusInProcess, true
		}
		return s, false
	case StatusMissingShipping:
		if kind == profile.KindShipping {
			return StatusInProcess, true
		}
		return s, false
	}
	return s, false
}

// shipmentNext is the only legal forward edge from each fulfillment status.
var shipmentNext = map[Status]Status{
	StatusPaid:      StatusSent,
	StatusSent:      StatusDelivered,
	StatusDelivered: StatusReceived,
}

// CanAdvanceShipment reports whether from -> to is a legal shipment move.
func CanAdvanceShipment(from, to Status) bool {
	return shipmentNext[from] == to
}
