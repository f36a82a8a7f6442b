package domain

// Presentation holds the display metadata the console uses to render a status.
type Presentation struct {
	// Label is the human-readable status name.
	Label string `json:"label"`
	// Color is the badge color token (e.g. "green", "amber").
	Color string `json:"color"`
	// Icon is the icon identifier shown next to the label.
	Icon string `json:"icon"`
}

// PresentationFor maps a status to its display metadata. The switch is
// exhaustive over all defined statuses; an unknown tag returns ok=false
// instead of a silent default so callers surface bad data.
func PresentationFor(status Status) (Presentation, bool) {
	switch status {
	case StatusPendingPayment:
		return Presentation{Label: "Pending Payment", Color: "amber", Icon: "clock"}, true
	case StatusPaymentConfirmed:
		return Presentation{Label: "Payment Confirmed", Color: "teal", Icon: "credit-card"}, true
	case StatusPaymentFailed:
		return Presentation{Label: "Payment Failed", Color: "red", Icon: "alert-triangle"}, true
	case StatusOrderConfirmed:
		return Presentation{Label: "Order Confirmed", Color: "blue", Icon: "check-circle"}, true
	case StatusProcessing:
		return Presentation{Label: "Processing", Color: "indigo", Icon: "loader"}, true
	case StatusReadyToShip:
		return Presentation{Label: "Ready to Ship", Color: "cyan", Icon: "package"}, true
	case StatusShipped:
		return Presentation{Label: "Shipped", Color: "sky", Icon: "truck"}, true
	case StatusOutForDelivery:
		return Presentation{Label: "Out for Delivery", Color: "violet", Icon: "map-pin"}, true
	case StatusDelivered:
		return Presentation{Label: "Delivered", Color: "green", Icon: "home"}, true
	case StatusPaymentReceived:
		return Presentation{Label: "Payment Received", Color: "emerald", Icon: "banknote"}, true
	case StatusReturnRequested:
		return Presentation{Label: "Return Requested", Color: "orange", Icon: "rotate-ccw"}, true
	case StatusReturned:
		return Presentation{Label: "Returned", Color: "yellow", Icon: "undo"}, true
	case StatusRefunded:
		return Presentation{Label: "Refunded", Color: "purple", Icon: "receipt"}, true
	case StatusCompleted:
		return Presentation{Label: "Completed", Color: "green", Icon: "check"}, true
	case StatusOnHold:
		return Presentation{Label: "On Hold", Color: "gray", Icon: "pause"}, true
	case StatusCancelled:
		return Presentation{Label: "Cancelled", Color: "red", Icon: "x-circle"}, true
	default:
		return Presentation{}, false
	}
}
