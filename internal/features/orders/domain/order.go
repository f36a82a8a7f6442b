package domain

import (
	"time"
)

// PaymentMethod identifies how an order is paid. The order lifecycle differs
// per method: electronic payments pass through payment-confirmation states
// before fulfilment, cash-on-delivery orders start confirmed and collect
// payment after delivery.
type PaymentMethod string

const (
	// PaymentCashOnDelivery indicates payment is collected at delivery time.
	PaymentCashOnDelivery PaymentMethod = "CashOnDelivery"
	// PaymentElectronic indicates payment is made online at checkout.
	PaymentElectronic PaymentMethod = "ElectronicPayment"
)

// Status represents the current state of an order in its lifecycle.
type Status string

const (
	StatusPendingPayment   Status = "PendingPayment"
	StatusPaymentConfirmed Status = "PaymentConfirmed"
	StatusPaymentFailed    Status = "PaymentFailed"
	StatusOrderConfirmed   Status = "OrderConfirmed"
	StatusProcessing       Status = "Processing"
	StatusReadyToShip      Status = "ReadyToShip"
	StatusShipped          Status = "Shipped"
	StatusOutForDelivery   Status = "OutForDelivery"
	StatusDelivered        Status = "Delivered"
	StatusPaymentReceived  Status = "PaymentReceived"
	StatusReturnRequested  Status = "ReturnRequested"
	StatusReturned         Status = "Returned"
	StatusRefunded         Status = "Refunded"
	StatusCompleted        Status = "Completed"
	StatusOnHold           Status = "OnHold"
	StatusCancelled        Status = "Cancelled"
)

// Recipient holds the shipping contact details of an order.
type Recipient struct {
	// Name is the full name of the recipient.
	Name string `json:"name"`
	// Phone is the contact phone number.
	Phone string `json:"phone"`
	// Email is the contact email address.
	Email string `json:"email"`
	// Address is the shipping street address.
	Address string `json:"address"`
	// City is the city of the shipping address.
	City string `json:"city"`
	// State is the state or province of the shipping address.
	State string `json:"state"`
}

// Order represents a customer order. Orders are owned by the remote commerce
// platform; this service consumes them and mutates them only through
// status-transition and return-workflow calls.
type Order struct {
	// ID is the unique identifier for the order.
	ID string `json:"order_id"`
	// Status is the current lifecycle state of the order.
	Status Status `json:"status"`
	// PaymentMethod determines which transition table applies to the order.
	PaymentMethod PaymentMethod `json:"payment_method"`
	// TotalAmount is the grand total charged for the order.
	TotalAmount float64 `json:"total_amount"`
	// OrderDate is when the order was placed.
	OrderDate time.Time `json:"order_date"`
	// ShippingMethod is the selected delivery option.
	ShippingMethod string `json:"shipping_method"`
	// ShippingCost is the delivery fee charged.
	ShippingCost float64 `json:"shipping_cost"`
	// Note is an optional free-text note attached at checkout.
	Note string `json:"note,omitempty"`
	// ReturnReason is set once when a return is requested, empty otherwise.
	ReturnReason string `json:"return_reason,omitempty"`
	// EstimatedDelivery is the projected delivery date, if known.
	EstimatedDelivery *time.Time `json:"estimated_delivery,omitempty"`
	// TrackingNumber is the carrier tracking identifier, if shipped.
	TrackingNumber string `json:"tracking_number,omitempty"`
	// Recipient holds the shipping contact details.
	Recipient Recipient `json:"recipient"`
	// Items contains the purchased line items.
	Items []OrderItem `json:"items"`
	// CreatedAt is when the order record was created.
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is when the order record was last modified.
	UpdatedAt time.Time `json:"updated_at"`
}

// OrderItem represents an individual line item within an order.
type OrderItem struct {
	// Quantity is the number of units purchased.
	Quantity int `json:"quantity"`
	// SKU is the Stock Keeping Unit identifier for the variant.
	SKU string `json:"sku"`
	// Name is the descriptive name of the product.
	Name string `json:"name"`
	// UnitPrice is the price charged per unit.
	UnitPrice float64 `json:"unit_price"`
	// Picture is the URL to an image of the product.
	Picture string `json:"picture,omitempty"`
}

// OrderPage is one page of an order listing.
type OrderPage struct {
	// Orders holds the page contents.
	Orders []Order `json:"orders"`
	// Total is the total number of orders matching the filter.
	Total int `json:"total"`
	// Page is the requested page number, starting at 1.
	Page int `json:"page"`
	// PageSize is the requested page size.
	PageSize int `json:"page_size"`
}

// ListFilter holds the query parameters for a paginated order listing.
type ListFilter struct {
	// Search is a free-text term matched against order id and recipient.
	Search string
	// Status restricts the listing to a single status tag when non-empty.
	Status Status
	// Page is the page number, starting at 1.
	Page int
	// PageSize is the number of orders per page.
	PageSize int
}
