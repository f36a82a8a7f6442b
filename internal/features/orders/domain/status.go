package domain

// Transition tables mapping a current status to the ordered set of statuses a
// human operator may move an order to next. One table per payment method
// because the business process differs: electronic payments pass through
// payment-confirmation states before fulfilment, cash-on-delivery orders skip
// them and collect payment after delivery instead.
//
// OnHold is an escape valve reachable from most active states and always
// returns to OrderConfirmed. Cancellation is offered only before the shipment
// leaves for delivery; once OutForDelivery is reached it is irreversible.
// A status with no entry is terminal.

var electronicTransitions = map[Status][]Status{
	StatusPendingPayment:   {StatusPaymentConfirmed, StatusPaymentFailed, StatusCancelled},
	StatusPaymentConfirmed: {StatusOrderConfirmed, StatusOnHold, StatusCancelled},
	StatusPaymentFailed:    {StatusPendingPayment, StatusCancelled},
	StatusOrderConfirmed:   {StatusProcessing, StatusOnHold, StatusCancelled},
	StatusProcessing:       {StatusReadyToShip, StatusOnHold, StatusCancelled},
	StatusReadyToShip:      {StatusShipped, StatusOnHold, StatusCancelled},
	StatusShipped:          {StatusOutForDelivery, StatusOnHold},
	StatusOutForDelivery:   {StatusDelivered},
	StatusDelivered:        {StatusReturnRequested, StatusCompleted},
	StatusReturnRequested:  {StatusReturned, StatusCompleted},
	StatusReturned:         {StatusRefunded, StatusCompleted},
	StatusRefunded:         {StatusCompleted},
	StatusOnHold:           {StatusOrderConfirmed},
}

var cashOnDeliveryTransitions = map[Status][]Status{
	StatusOrderConfirmed:  {StatusProcessing, StatusOnHold, StatusCancelled},
	StatusProcessing:      {StatusReadyToShip, StatusOnHold, StatusCancelled},
	StatusReadyToShip:     {StatusShipped, StatusOnHold, StatusCancelled},
	StatusShipped:         {StatusOutForDelivery, StatusOnHold},
	StatusOutForDelivery:  {StatusDelivered},
	StatusDelivered:       {StatusPaymentReceived, StatusReturnRequested},
	StatusPaymentReceived: {StatusCompleted},
	StatusReturnRequested: {StatusReturned, StatusCompleted},
	StatusReturned:        {StatusRefunded, StatusCompleted},
	StatusRefunded:        {StatusCompleted},
	StatusOnHold:          {StatusOrderConfirmed},
}

// transitionTable returns the transition map for a payment method, or nil for
// an unknown method. Callers treat nil as "no legal transitions".
func transitionTable(method PaymentMethod) map[Status][]Status {
	switch method {
	case PaymentElectronic:
		return electronicTransitions
	case PaymentCashOnDelivery:
		return cashOnDeliveryTransitions
	default:
		return nil
	}
}

// ValidTransitions returns the ordered list of statuses an operator may move
// an order to, given its payment method and current status. An unknown status
// or payment method yields an empty list: when in doubt, disallow.
func ValidTransitions(method PaymentMethod, current Status) []Status {
	table := transitionTable(method)
	if table == nil {
		return nil
	}

	next, ok := table[current]
	if !ok {
		return nil
	}

	// Copy so callers cannot mutate the table.
	out := make([]Status, len(next))
	copy(out, next)
	return out
}

// CanTransition reports whether moving from one status to another is legal for
// the given payment method.
func CanTransition(method PaymentMethod, from, to Status) bool {
	for _, s := range ValidTransitions(method, from) {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether a status has no outgoing transitions for the
// given payment method.
func IsTerminal(method PaymentMethod, status Status) bool {
	return len(ValidTransitions(method, status)) == 0
}

// InitialStatus returns the status the remote platform assigns an order at
// creation time for the given payment method.
func InitialStatus(method PaymentMethod) Status {
	if method == PaymentElectronic {
		return StatusPendingPayment
	}
	return StatusOrderConfirmed
}

// Statuses returns every status reachable in the transition table for the
// given payment method, in a stable order.
func Statuses(method PaymentMethod) []Status {
	table := transitionTable(method)
	if table == nil {
		return nil
	}

	seen := make(map[Status]bool)
	var out []Status
	add := func(s Status) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}

	// Walk breadth-first from the initial status so the order is stable and
	// roughly follows the lifecycle.
	queue := []Status{InitialStatus(method)}
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		if seen[s] {
			continue
		}
		add(s)
		queue = append(queue, table[s]...)
	}

	return out
}
