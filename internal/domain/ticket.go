package domain

import "time"

type TicketStatus string

const (
	TicketStatusAvailable TicketStatus = "available"
	TicketStatusSold      TicketStatus = "sold"
	TicketStatusLocked    TicketStatus = "locked"
)

// InventoryTicket is a ticket bought from a supplier and held for resale.
// Status moves between available and locked via an explicit toggle and one-way to sold
// when a booking consumes the ticket.
type InventoryTicket struct {
	ID              string       `json:"id"`
	PNR             string       `json:"pnr"`
	Airline         string       `json:"airline"`
	Route           string       `json:"route"`
	FlightDate      string       `json:"flight_date"`
	Passengers      int          `json:"passengers"`
	PurchasePrice   int64        `json:"purchase_price"`
	Tax             int64        `json:"tax"`
	TotalCost       int64        `json:"total_cost"`
	Supplier        string       `json:"supplier"`
	SupplierContact string       `json:"supplier_contact,omitempty"`
	Notes           string       `json:"notes,omitempty"`
	Status          TicketStatus `json:"status"`
	PurchaseDate    time.Time    `json:"purchase_date"`
	PurchasedBy     string       `json:"purchased_by"`
	SoldTo          string       `json:"sold_to,omitempty"`
	SoldDate        *time.Time   `json:"sold_date,omitempty"`
}

// SuggestedSellingPrice is the default asking price offered when a ticket
// is picked for a booking: purchase price plus a 15% markup.
func (t *InventoryTicket) SuggestedSellingPrice() int64 {
	return t.PurchasePrice + t.PurchasePrice*15/100
}
