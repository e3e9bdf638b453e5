package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mdkarim/traveldesk/internal/domain"
	"github.com/mdkarim/traveldesk/internal/kafka"
	"go.uber.org/zap"
)

var (
	ErrPermissionDenied   = errors.New("permission denied")
	ErrTicketNotFound     = errors.New("ticket not found")
	ErrTicketNotAvailable = errors.New("ticket is not available")
	ErrBookingNotFound    = errors.New("booking not found")
	// ErrLossNotConfirmed is returned when the selling price is below the
	// purchase price and the caller has not acknowledged the loss.
	ErrLossNotConfirmed = errors.New("selling below purchase price requires confirmation")
)

type BookingUseCase interface {
	CreateFromTicket(ctx context.Context, ident domain.Identity, input CreateFromTicketInput) (*domain.Booking, error)
	CreateDirect(ctx context.Context, ident domain.Identity, input CreateDirectInput) (*domain.Booking, error)
	Delete(ctx context.Context, ident domain.Identity, bookingID string) error
	List(ctx context.Context, ident domain.Identity, filter Filter) ([]domain.Booking, *Stats, error)
}

type Store interface {
	Bookings(ctx context.Context) ([]domain.Booking, error)
	SaveBookings(ctx context.Context, bookings []domain.Booking) error
	Tickets(ctx context.Context) ([]domain.InventoryTicket, error)
	SaveBookingsAndTickets(ctx context.Context, bookings []domain.Booking, tickets []domain.InventoryTicket) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type BookingService struct {
	store              Store
	producer           Producer
	eventsTopic        string
	notificationsTopic string
	logger             *zap.Logger
	now                func() time.Time
}

type BookingServiceOption func(*BookingService)

func WithProducer(producer Producer, eventsTopic string) BookingServiceOption {
	return func(s *BookingService) {
		s.producer = producer
		s.eventsTopic = eventsTopic
	}
}

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		s.now = now
	}
}

func NewBookingService(store Store, logger *zap.Logger, opts ...BookingServiceOption) *BookingService {
	service := &BookingService{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

type CreateFromTicketInput struct {
	TicketID      string `json:"ticket_id"`
	CustomerName  string `json:"customer_name"`
	Mobile        string `json:"mobile"`
	Passport      string `json:"passport"`
	Email         string `json:"email"`
	SellingPrice  int64  `json:"selling_price"`
	PaymentAmount int64  `json:"payment_amount"`
	Notes         string `json:"notes"`
	ConfirmLoss   bool   `json:"confirm_loss"`
}

type CreateDirectInput struct {
	CustomerName  string `json:"customer_name"`
	Mobile        string `json:"mobile"`
	Passport      string `json:"passport"`
	Email         string `json:"email"`
	Airline       string `json:"airline"`
	Route         string `json:"route"`
	FlightDate    string `json:"flight_date"`
	SellingPrice  int64  `json:"selling_price"`
	PurchasePrice int64  `json:"purchase_price"`
	PaymentAmount int64  `json:"payment_amount"`
	Notes         string `json:"notes"`
}

type Filter struct {
	Search     string `form:"search"`
	Status     string `form:"status"`
	FlightDate string `form:"flight_date"`
}

// Stats summarize the filtered listing the way the booking screen shows
// them. Profit is zeroed for callers without profit visibility.
type Stats struct {
	Count       int   `json:"count"`
	PaidCount   int   `json:"paid_count"`
	TotalProfit int64 `json:"total_profit"`
}

// CreateFromTicket sells an available inventory ticket to a customer. The
// booking append and the ticket's move to sold are handed to the store as
// one combined write so the two collections cannot drift apart.
func (s *BookingService) CreateFromTicket(ctx context.Context, ident domain.Identity, input CreateFromTicketInput) (*domain.Booking, error) {
	if !ident.Has(domain.PermCreateBooking) {
		return nil, ErrPermissionDenied
	}
	if input.CustomerName == "" || input.Mobile == "" || input.TicketID == "" || input.SellingPrice <= 0 {
		return nil, errors.New("customer name, mobile, ticket and selling price are required")
	}

	tickets, err := s.store.Tickets(ctx)
	if err != nil {
		return nil, err
	}
	ticketIdx := -1
	for i := range tickets {
		if tickets[i].ID == input.TicketID {
			ticketIdx = i
			break
		}
	}
	if ticketIdx < 0 {
		return nil, ErrTicketNotFound
	}
	ticket := &tickets[ticketIdx]
	if ticket.Status != domain.TicketStatusAvailable {
		return nil, ErrTicketNotAvailable
	}

	profit := input.SellingPrice - ticket.PurchasePrice
	if profit < 0 && !input.ConfirmLoss {
		return nil, fmt.Errorf("%w: loss of %d", ErrLossNotConfirmed, -profit)
	}

	now := s.now()
	booking := domain.Booking{
		ID:            uuid.NewString(),
		CustomerName:  input.CustomerName,
		Mobile:        input.Mobile,
		Passport:      input.Passport,
		Email:         input.Email,
		TicketID:      ticket.ID,
		PNR:           ticket.PNR,
		Airline:       ticket.Airline,
		Route:         ticket.Route,
		FlightDate:    ticket.FlightDate,
		SellingPrice:  input.SellingPrice,
		PurchasePrice: ticket.PurchasePrice,
		PaymentAmount: input.PaymentAmount,
		PaymentStatus: domain.DerivePaymentStatus(input.SellingPrice, input.PaymentAmount),
		Profit:        profit,
		DueAmount:     input.SellingPrice - input.PaymentAmount,
		Notes:         input.Notes,
		CreatedAt:     now,
		CreatedBy:     ident.Username,
		Manager:       ident.Username,
	}

	ticket.Status = domain.TicketStatusSold
	ticket.SoldTo = booking.CustomerName
	soldAt := now
	ticket.SoldDate = &soldAt

	bookings, err := s.store.Bookings(ctx)
	if err != nil {
		return nil, err
	}
	bookings = append(bookings, booking)
	if err := s.store.SaveBookingsAndTickets(ctx, bookings, tickets); err != nil {
		return nil, err
	}

	s.publish(ctx, kafka.EventBookingCreated, &booking)
	s.publish(ctx, kafka.EventTicketSold, &booking)
	s.logger.Info("booking created",
		zap.String("pnr", booking.PNR),
		zap.String("customer", booking.CustomerName),
		zap.Int64("profit", booking.Profit))
	return &booking, nil
}

// CreateDirect is the legacy path: flight details and purchase price are
// entered by hand and no inventory ticket is consumed. A negative profit
// here is the operator's own number and goes through unguarded.
func (s *BookingService) CreateDirect(ctx context.Context, ident domain.Identity, input CreateDirectInput) (*domain.Booking, error) {
	if !ident.Has(domain.PermCreateBooking) {
		return nil, ErrPermissionDenied
	}
	if input.CustomerName == "" || input.Mobile == "" || input.Airline == "" ||
		input.Route == "" || input.FlightDate == "" || input.SellingPrice <= 0 {
		return nil, errors.New("customer name, mobile, airline, route, flight date and selling price are required")
	}

	booking := domain.Booking{
		ID:            uuid.NewString(),
		CustomerName:  input.CustomerName,
		Mobile:        input.Mobile,
		Passport:      input.Passport,
		Email:         input.Email,
		Airline:       input.Airline,
		Route:         input.Route,
		FlightDate:    input.FlightDate,
		SellingPrice:  input.SellingPrice,
		PurchasePrice: input.PurchasePrice,
		PaymentAmount: input.PaymentAmount,
		PaymentStatus: domain.DerivePaymentStatus(input.SellingPrice, input.PaymentAmount),
		Profit:        input.SellingPrice - input.PurchasePrice,
		DueAmount:     input.SellingPrice - input.PaymentAmount,
		Notes:         input.Notes,
		CreatedAt:     s.now(),
		CreatedBy:     ident.Username,
		Manager:       ident.Username,
	}

	bookings, err := s.store.Bookings(ctx)
	if err != nil {
		return nil, err
	}
	bookings = append(bookings, booking)
	if err := s.store.SaveBookings(ctx, bookings); err != nil {
		return nil, err
	}

	s.publish(ctx, kafka.EventBookingCreated, &booking)
	return &booking, nil
}

func (s *BookingService) Delete(ctx context.Context, ident domain.Identity, bookingID string) error {
	bookings, err := s.store.Bookings(ctx)
	if err != nil {
		return err
	}

	// Copy the record before compacting the slice; filtering in place
	// reuses the backing array and would overwrite it.
	var deleted *domain.Booking
	kept := make([]domain.Booking, 0, len(bookings))
	for _, b := range bookings {
		if b.ID == bookingID {
			match := b
			deleted = &match
			continue
		}
		kept = append(kept, b)
	}
	if deleted == nil {
		return ErrBookingNotFound
	}

	// Managers may only remove their own bookings.
	if !ident.Has(domain.PermDeleteBooking) {
		if !ident.Has(domain.PermEditOwnBooking) || deleted.Manager != ident.Username {
			return ErrPermissionDenied
		}
	}

	if err := s.store.SaveBookings(ctx, kept); err != nil {
		return err
	}
	s.publish(ctx, kafka.EventBookingDeleted, deleted)
	return nil
}

// List applies role visibility first (managers see only their own
// bookings), then the search/status/date filters, and reports stats over
// the result.
func (s *BookingService) List(ctx context.Context, ident domain.Identity, filter Filter) ([]domain.Booking, *Stats, error) {
	bookings, err := s.store.Bookings(ctx)
	if err != nil {
		return nil, nil, err
	}

	profitVisible := ident.Has(domain.PermViewProfit)
	needle := strings.ToLower(filter.Search)
	filtered := make([]domain.Booking, 0, len(bookings))
	stats := &Stats{}
	for _, b := range bookings {
		if !ident.Has(domain.PermViewAllBookings) && b.Manager != ident.Username {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(b.CustomerName), needle) &&
			!strings.Contains(strings.ToLower(b.Mobile), needle) &&
			!strings.Contains(strings.ToLower(b.Passport), needle) {
			continue
		}
		if filter.Status != "" && filter.Status != "all" && string(b.PaymentStatus) != filter.Status {
			continue
		}
		if filter.FlightDate != "" && b.FlightDate != filter.FlightDate {
			continue
		}
		if !profitVisible {
			b.Profit = 0
			b.PurchasePrice = 0
		}
		filtered = append(filtered, b)

		stats.Count++
		if b.PaymentStatus == domain.PaymentStatusPaid {
			stats.PaidCount++
		}
		stats.TotalProfit += b.Profit
	}
	return filtered, stats, nil
}

func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking) {
	if s.producer == nil || s.eventsTopic == "" {
		return
	}
	event := kafka.Event{
		Type:         eventType,
		BookingID:    booking.ID,
		TicketID:     booking.TicketID,
		PNR:          booking.PNR,
		Airline:      booking.Airline,
		Route:        booking.Route,
		CustomerName: booking.CustomerName,
		Email:        booking.Email,
		Amount:       booking.SellingPrice,
		Actor:        booking.CreatedBy,
		OccurredAt:   s.now(),
	}
	if err := s.producer.Publish(ctx, s.eventsTopic, booking.ID, event); err != nil {
		s.logger.Warn("failed to publish booking event", zap.String("type", eventType), zap.Error(err))
	}
	if s.notificationsTopic != "" {
		if err := s.producer.Publish(ctx, s.notificationsTopic, booking.ID, event); err != nil {
			s.logger.Warn("failed to publish notification", zap.String("type", eventType), zap.Error(err))
		}
	}
}

var _ BookingUseCase = (*BookingService)(nil)
