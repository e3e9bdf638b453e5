package domain

import "time"

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPartial PaymentStatus = "partial"
	PaymentStatusPaid    PaymentStatus = "paid"
)

// DerivePaymentStatus maps the paid amount against the selling price:
// nothing paid is pending, anything short of the full price is partial,
// the full price or more is paid.
func DerivePaymentStatus(sellingPrice, paymentAmount int64) PaymentStatus {
	switch {
	case paymentAmount <= 0:
		return PaymentStatusPending
	case paymentAmount < sellingPrice:
		return PaymentStatusPartial
	default:
		return PaymentStatusPaid
	}
}

// Booking is a sale to an end customer, optionally consuming an inventory
// ticket. Profit and DueAmount are derived at creation and stored with the
// record.
type Booking struct {
	ID            string        `json:"id"`
	CustomerName  string        `json:"customer_name"`
	Mobile        string        `json:"mobile"`
	Passport      string        `json:"passport,omitempty"`
	Email         string        `json:"email,omitempty"`
	TicketID      string        `json:"ticket_id,omitempty"`
	PNR           string        `json:"pnr,omitempty"`
	Airline       string        `json:"airline"`
	Route         string        `json:"route"`
	FlightDate    string        `json:"flight_date"`
	SellingPrice  int64         `json:"selling_price"`
	PurchasePrice int64         `json:"purchase_price"`
	PaymentAmount int64         `json:"payment_amount"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	Profit        int64         `json:"profit"`
	DueAmount     int64         `json:"due_amount"`
	Notes         string        `json:"notes,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	CreatedBy     string        `json:"created_by"`
	Manager       string        `json:"manager"`
}
