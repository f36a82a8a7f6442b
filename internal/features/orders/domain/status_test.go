package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestValidTransitions_Electronic verifies the exact edge set for
// electronic-payment orders: zero omissions, zero extras.
func TestValidTransitions_Electronic(t *testing.T) {
	expected := map[Status][]Status{
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
		StatusCancelled:        nil,
		StatusCompleted:        nil,
	}

	for status, want := range expected {
		got := ValidTransitions(PaymentElectronic, status)
		assert.Equal(t, want, got, "status %s", status)
	}
}

// TestValidTransitions_CashOnDelivery verifies the exact edge set for
// cash-on-delivery orders.
func TestValidTransitions_CashOnDelivery(t *testing.T) {
	expected := map[Status][]Status{
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
		StatusCancelled:       nil,
		StatusCompleted:       nil,
		// Payment-confirmation states never occur for cash on delivery.
		StatusPendingPayment:   nil,
		StatusPaymentConfirmed: nil,
		StatusPaymentFailed:    nil,
	}

	for status, want := range expected {
		got := ValidTransitions(PaymentCashOnDelivery, status)
		assert.Equal(t, want, got, "status %s", status)
	}
}

// TestValidTransitions_PendingPaymentScenario pins the moves available to a
// freshly created electronic-payment order.
func TestValidTransitions_PendingPaymentScenario(t *testing.T) {
	got := ValidTransitions(PaymentElectronic, StatusPendingPayment)
	assert.Equal(t, []Status{StatusPaymentConfirmed, StatusPaymentFailed, StatusCancelled}, got)
}

// TestValidTransitions_UnknownInputs verifies fail-safe-closed behavior.
func TestValidTransitions_UnknownInputs(t *testing.T) {
	assert.Empty(t, ValidTransitions(PaymentElectronic, Status("Bogus")))
	assert.Empty(t, ValidTransitions(PaymentMethod("Barter"), StatusProcessing))
	assert.Empty(t, ValidTransitions(PaymentMethod(""), StatusProcessing))
}

// TestValidTransitions_ReturnsCopy verifies callers cannot mutate the table.
func TestValidTransitions_ReturnsCopy(t *testing.T) {
	first := ValidTransitions(PaymentElectronic, StatusProcessing)
	require.NotEmpty(t, first)
	first[0] = Status("Tampered")

	second := ValidTransitions(PaymentElectronic, StatusProcessing)
	assert.Equal(t, StatusReadyToShip, second[0])
}

// TestCanTransition verifies membership checks, including the asymmetry that
// cancellation stops being offered once the shipment is out.
func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(PaymentElectronic, StatusProcessing, StatusReadyToShip))
	assert.True(t, CanTransition(PaymentCashOnDelivery, StatusDelivered, StatusPaymentReceived))

	// No cancel after hand-off to the carrier
	assert.False(t, CanTransition(PaymentElectronic, StatusShipped, StatusCancelled))
	assert.False(t, CanTransition(PaymentElectronic, StatusOutForDelivery, StatusCancelled))
	assert.False(t, CanTransition(PaymentCashOnDelivery, StatusDelivered, StatusCancelled))

	// OnHold always resumes at OrderConfirmed, nothing else
	assert.True(t, CanTransition(PaymentElectronic, StatusOnHold, StatusOrderConfirmed))
	assert.False(t, CanTransition(PaymentElectronic, StatusOnHold, StatusProcessing))
}

// TestIsTerminal verifies the terminal states of both graphs.
func TestIsTerminal(t *testing.T) {
	for _, method := range []PaymentMethod{PaymentElectronic, PaymentCashOnDelivery} {
		assert.True(t, IsTerminal(method, StatusCancelled), "%s Cancelled", method)
		assert.True(t, IsTerminal(method, StatusCompleted), "%s Completed", method)
		assert.False(t, IsTerminal(method, StatusProcessing), "%s Processing", method)
	}
}

// TestInitialStatus verifies the method-dependent creation status.
func TestInitialStatus(t *testing.T) {
	assert.Equal(t, StatusPendingPayment, InitialStatus(PaymentElectronic))
	assert.Equal(t, StatusOrderConfirmed, InitialStatus(PaymentCashOnDelivery))
}

// TestStatuses_CoveredByPresentation verifies the registry invariant: every
// status reachable in a transition table has display metadata.
func TestStatuses_CoveredByPresentation(t *testing.T) {
	for _, method := range []PaymentMethod{PaymentElectronic, PaymentCashOnDelivery} {
		statuses := Statuses(method)
		require.NotEmpty(t, statuses)

		for _, s := range statuses {
			_, ok := PresentationFor(s)
			assert.True(t, ok, "status %s for %s has no presentation", s, method)
		}
	}
}

// TestStatuses_ReachableSets verifies the reachable status sets per method.
func TestStatuses_ReachableSets(t *testing.T) {
	electronic := Statuses(PaymentElectronic)
	assert.Contains(t, electronic, StatusPendingPayment)
	assert.Contains(t, electronic, StatusPaymentFailed)
	assert.NotContains(t, electronic, StatusPaymentReceived)

	cod := Statuses(PaymentCashOnDelivery)
	assert.Equal(t, StatusOrderConfirmed, cod[0])
	assert.Contains(t, cod, StatusPaymentReceived)
	assert.NotContains(t, cod, StatusPendingPayment)
	assert.NotContains(t, cod, StatusPaymentConfirmed)
}

// TestPresentationFor_Unknown verifies bad tags are reported, not defaulted.
func TestPresentationFor_Unknown(t *testing.T) {
	_, ok := PresentationFor(Status("Bogus"))
	assert.False(t, ok)
}
