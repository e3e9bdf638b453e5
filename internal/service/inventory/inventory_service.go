package inventory

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mdkarim/traveldesk/internal/domain"
	"github.com/mdkarim/traveldesk/internal/kafka"
	"go.uber.org/zap"
)

var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrTicketNotFound   = errors.New("ticket not found")
	ErrTicketSold       = errors.New("ticket already sold")
)

type InventoryUseCase interface {
	Purchase(ctx context.Context, ident domain.Identity, input PurchaseInput) (*domain.InventoryTicket, error)
	ToggleLock(ctx context.Context, ident domain.Identity, ticketID string) (*domain.InventoryTicket, error)
	Delete(ctx context.Context, ident domain.Identity, ticketID string) error
	Search(ctx context.Context, ident domain.Identity, filterText string, status string) ([]domain.InventoryTicket, error)
	Summary(ctx context.Context, ident domain.Identity) (*Summary, error)
}

type Store interface {
	Tickets(ctx context.Context) ([]domain.InventoryTicket, error)
	SaveTickets(ctx context.Context, tickets []domain.InventoryTicket) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type InventoryService struct {
	store    Store
	producer Producer
	topic    string
	logger   *zap.Logger
	now      func() time.Time
}

type InventoryServiceOption func(*InventoryService)

func WithProducer(producer Producer, topic string) InventoryServiceOption {
	return func(s *InventoryService) {
		s.producer = producer
		s.topic = topic
	}
}

func WithClock(now func() time.Time) InventoryServiceOption {
	return func(s *InventoryService) {
		s.now = now
	}
}

func NewInventoryService(store Store, logger *zap.Logger, opts ...InventoryServiceOption) *InventoryService {
	service := &InventoryService{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

type PurchaseInput struct {
	PNR             string `json:"pnr"`
	Airline         string `json:"airline"`
	Route           string `json:"route"`
	FlightDate      string `json:"flight_date"`
	Passengers      int    `json:"passengers"`
	PurchasePrice   int64  `json:"purchase_price"`
	Tax             int64  `json:"tax"`
	Supplier        string `json:"supplier"`
	SupplierContact string `json:"supplier_contact"`
	Notes           string `json:"notes"`
}

// Summary is recomputed from the full collection on every call; nothing is
// cached.
type Summary struct {
	Total       int   `json:"total"`
	Available   int   `json:"available"`
	Sold        int   `json:"sold"`
	Locked      int   `json:"locked"`
	TotalCost   int64 `json:"total_cost"`
	CostVisible bool  `json:"cost_visible"`
}

func (s *InventoryService) Purchase(ctx context.Context, ident domain.Identity, input PurchaseInput) (*domain.InventoryTicket, error) {
	if !ident.Has(domain.PermPurchaseTickets) {
		return nil, ErrPermissionDenied
	}
	if input.PNR == "" || input.Airline == "" || input.Route == "" ||
		input.FlightDate == "" || input.PurchasePrice <= 0 || input.Supplier == "" {
		return nil, errors.New("pnr, airline, route, flight date, purchase price and supplier are required")
	}
	if input.Passengers <= 0 {
		input.Passengers = 1
	}

	ticket := domain.InventoryTicket{
		ID:              uuid.NewString(),
		PNR:             input.PNR,
		Airline:         input.Airline,
		Route:           input.Route,
		FlightDate:      input.FlightDate,
		Passengers:      input.Passengers,
		PurchasePrice:   input.PurchasePrice,
		Tax:             input.Tax,
		TotalCost:       input.PurchasePrice + input.Tax,
		Supplier:        input.Supplier,
		SupplierContact: input.SupplierContact,
		Notes:           input.Notes,
		Status:          domain.TicketStatusAvailable,
		PurchaseDate:    s.now(),
		PurchasedBy:     ident.Username,
	}

	tickets, err := s.store.Tickets(ctx)
	if err != nil {
		return nil, err
	}
	tickets = append(tickets, ticket)
	if err := s.store.SaveTickets(ctx, tickets); err != nil {
		return nil, err
	}

	s.publish(ctx, kafka.EventTicketPurchased, &ticket, ident.Username)
	s.logger.Info("ticket purchased",
		zap.String("pnr", ticket.PNR),
		zap.String("airline", ticket.Airline),
		zap.Int64("total_cost", ticket.TotalCost))
	return &ticket, nil
}

// ToggleLock flips a ticket between locked and available. Sold tickets are
// out of the lifecycle and the call is rejected.
func (s *InventoryService) ToggleLock(ctx context.Context, ident domain.Identity, ticketID string) (*domain.InventoryTicket, error) {
	if !ident.Has(domain.PermLockTickets) {
		return nil, ErrPermissionDenied
	}

	tickets, err := s.store.Tickets(ctx)
	if err != nil {
		return nil, err
	}
	for i := range tickets {
		if tickets[i].ID != ticketID {
			continue
		}
		if tickets[i].Status == domain.TicketStatusSold {
			return nil, ErrTicketSold
		}
		if tickets[i].Status == domain.TicketStatusLocked {
			tickets[i].Status = domain.TicketStatusAvailable
		} else {
			tickets[i].Status = domain.TicketStatusLocked
		}
		if err := s.store.SaveTickets(ctx, tickets); err != nil {
			return nil, err
		}
		return &tickets[i], nil
	}
	return nil, ErrTicketNotFound
}

func (s *InventoryService) Delete(ctx context.Context, ident domain.Identity, ticketID string) error {
	if !ident.Has(domain.PermPurchaseTickets) {
		return ErrPermissionDenied
	}

	tickets, err := s.store.Tickets(ctx)
	if err != nil {
		return err
	}
	// Copy the record before compacting the slice; filtering in place
	// reuses the backing array and would overwrite it.
	var deleted *domain.InventoryTicket
	kept := make([]domain.InventoryTicket, 0, len(tickets))
	for _, t := range tickets {
		if t.ID == ticketID {
			match := t
			deleted = &match
			continue
		}
		kept = append(kept, t)
	}
	if deleted == nil {
		return ErrTicketNotFound
	}
	if err := s.store.SaveTickets(ctx, kept); err != nil {
		return err
	}

	s.publish(ctx, kafka.EventTicketDeleted, deleted, ident.Username)
	return nil
}

// Search is a case-insensitive substring match over pnr, airline, route
// and supplier combined with an exact status filter. status "" or "all"
// disables the status filter. Pass status "available" to get the pool a
// booking may consume.
func (s *InventoryService) Search(ctx context.Context, ident domain.Identity, filterText string, status string) ([]domain.InventoryTicket, error) {
	if !ident.Has(domain.PermViewAvailableStock) && !ident.Has(domain.PermPurchaseTickets) {
		return nil, ErrPermissionDenied
	}

	tickets, err := s.store.Tickets(ctx)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(filterText)
	filtered := make([]domain.InventoryTicket, 0, len(tickets))
	for _, t := range tickets {
		if needle != "" &&
			!strings.Contains(strings.ToLower(t.PNR), needle) &&
			!strings.Contains(strings.ToLower(t.Airline), needle) &&
			!strings.Contains(strings.ToLower(t.Route), needle) &&
			!strings.Contains(strings.ToLower(t.Supplier), needle) {
			continue
		}
		if status != "" && status != "all" && string(t.Status) != status {
			continue
		}
		if !ident.Has(domain.PermViewPurchasePrice) {
			t.PurchasePrice = 0
			t.Tax = 0
			t.TotalCost = 0
		}
		filtered = append(filtered, t)
	}
	return filtered, nil
}

func (s *InventoryService) Summary(ctx context.Context, ident domain.Identity) (*Summary, error) {
	if !ident.Has(domain.PermViewAvailableStock) && !ident.Has(domain.PermPurchaseTickets) {
		return nil, ErrPermissionDenied
	}

	tickets, err := s.store.Tickets(ctx)
	if err != nil {
		return nil, err
	}

	summary := &Summary{Total: len(tickets), CostVisible: ident.Has(domain.PermViewPurchasePrice)}
	for _, t := range tickets {
		switch t.Status {
		case domain.TicketStatusAvailable:
			summary.Available++
		case domain.TicketStatusSold:
			summary.Sold++
		case domain.TicketStatusLocked:
			summary.Locked++
		}
		summary.TotalCost += t.TotalCost
	}
	if !summary.CostVisible {
		summary.TotalCost = 0
	}
	return summary, nil
}

func (s *InventoryService) publish(ctx context.Context, eventType string, ticket *domain.InventoryTicket, actor string) {
	if s.producer == nil || s.topic == "" {
		return
	}
	event := kafka.Event{
		Type:       eventType,
		TicketID:   ticket.ID,
		PNR:        ticket.PNR,
		Airline:    ticket.Airline,
		Route:      ticket.Route,
		Amount:     ticket.TotalCost,
		Actor:      actor,
		OccurredAt: s.now(),
	}
	if err := s.producer.Publish(ctx, s.topic, ticket.ID, event); err != nil {
		s.logger.Warn("failed to publish inventory event", zap.String("type", eventType), zap.Error(err))
	}
}

var _ InventoryUseCase = (*InventoryService)(nil)
