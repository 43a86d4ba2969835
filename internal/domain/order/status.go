package order

// Status represents the lifecycle status of an order
type Status string

const (
	StatusPending              Status = "PENDING"
	StatusPaid                 Status = "PAID"
	StatusProcessingAtSupplier Status = "PROCESSING_AT_SUPPLIER"
	StatusShipped              Status = "SHIPPED"
	StatusDelivered            Status = "DELIVERED"
	StatusCancelled            Status = "CANCELLED"
	StatusRequiresAttention    Status = "REQUIRES_ATTENTION"
	StatusFulfilled            Status = "FULFILLED"
)

// AllStatuses lists every defined order status
func AllStatuses() []Status {
	return []Status{
		StatusPending,
		StatusPaid,
		StatusProcessingAtSupplier,
		StatusShipped,
		StatusDelivered,
		StatusCancelled,
		StatusRequiresAttention,
		StatusFulfilled,
	}
}

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	for _, st := range AllStatuses() {
		if s == st {
			return true
		}
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal reports whether no further transitions are possible
func (s Status) IsTerminal() bool {
	return s == StatusFulfilled || s == StatusCancelled
}

// CanTransitionTo checks if the status can transition to the target status.
// SHIPPED and DELIVERED are reserved for carrier tracking and have no transitions yet.
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusPending:
		return target == StatusPaid || target == StatusCancelled
	case StatusPaid:
		return target == StatusProcessingAtSupplier || target == StatusFulfilled || target == StatusCancelled
	case StatusProcessingAtSupplier:
		return target == StatusFulfilled || target == StatusPaid || target == StatusRequiresAttention
	case StatusRequiresAttention:
		return target == StatusPaid || target == StatusCancelled
	case StatusFulfilled, StatusCancelled:
		return false
	}
	return false
}

// PaymentStatus represents the payment state of an order
type PaymentStatus string

const (
	PaymentStatusUnpaid   PaymentStatus = "UNPAID"
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
	PaymentStatusFailed   PaymentStatus = "FAILED"
)

// IsValid checks if the payment status is valid
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusUnpaid, PaymentStatusPaid, PaymentStatusRefunded, PaymentStatusFailed:
		return true
	}
	return false
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}
