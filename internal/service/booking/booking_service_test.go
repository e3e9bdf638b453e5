package booking

import (
	"context"
	"testing"

	"github.com/mdkarim/traveldesk/internal/domain"
	"github.com/mdkarim/traveldesk/internal/kafka"
	"github.com/mdkarim/traveldesk/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	admin   = domain.Identity{Username: "admin", Role: domain.RoleAdmin}
	manager = domain.Identity{Username: "manager1", Role: domain.RoleManager}
)

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

func newTestStore(t *testing.T, tickets []domain.InventoryTicket) *storage.Collections {
	t.Helper()
	store := storage.NewCollections(storage.NewMemoryKV(), "test", zap.NewNop())
	if tickets != nil {
		require.NoError(t, store.SaveTickets(context.Background(), tickets))
	}
	return store
}

func availableTicket() domain.InventoryTicket {
	return domain.InventoryTicket{
		ID:            "t1",
		PNR:           "XYZ123",
		Airline:       "AirExample",
		Route:         "DAC-DXB",
		FlightDate:    "2025-07-01",
		Passengers:    1,
		PurchasePrice: 10000,
		Tax:           500,
		TotalCost:     10500,
		Supplier:      "GlobalFares",
		Status:        domain.TicketStatusAvailable,
	}
}

func TestCreateFromTicketSellsTheTicket(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, []domain.InventoryTicket{availableTicket()})
	service := NewBookingService(store, zap.NewNop())

	booking, err := service.CreateFromTicket(ctx, admin, CreateFromTicketInput{
		TicketID:      "t1",
		CustomerName:  "Rahim Uddin",
		Mobile:        "01700000000",
		SellingPrice:  13000,
		PaymentAmount: 13000,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(3000), booking.Profit)
	assert.Equal(t, domain.PaymentStatusPaid, booking.PaymentStatus)
	assert.Equal(t, int64(0), booking.DueAmount)
	assert.Equal(t, "XYZ123", booking.PNR)
	assert.Equal(t, "admin", booking.Manager)

	tickets, err := store.Tickets(ctx)
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Equal(t, domain.TicketStatusSold, tickets[0].Status)
	assert.Equal(t, "Rahim Uddin", tickets[0].SoldTo)
	require.NotNil(t, tickets[0].SoldDate)

	bookings, err := store.Bookings(ctx)
	require.NoError(t, err)
	assert.Len(t, bookings, 1)
}

func TestCreateFromTicketLossGuard(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, []domain.InventoryTicket{availableTicket()})
	service := NewBookingService(store, zap.NewNop())

	input := CreateFromTicketInput{
		TicketID:     "t1",
		CustomerName: "Rahim Uddin",
		Mobile:       "01700000000",
		SellingPrice: 9000,
	}
	_, err := service.CreateFromTicket(ctx, admin, input)
	assert.ErrorIs(t, err, ErrLossNotConfirmed)

	// The rejected attempt must leave the ticket untouched.
	tickets, err2 := store.Tickets(ctx)
	require.NoError(t, err2)
	assert.Equal(t, domain.TicketStatusAvailable, tickets[0].Status)

	input.ConfirmLoss = true
	booking, err := service.CreateFromTicket(ctx, admin, input)
	require.NoError(t, err)
	assert.Equal(t, int64(-1000), booking.Profit)
}

func TestCreateFromTicketRequiresAvailableTicket(t *testing.T) {
	ctx := context.Background()
	sold := availableTicket()
	sold.Status = domain.TicketStatusSold
	locked := availableTicket()
	locked.ID = "t2"
	locked.Status = domain.TicketStatusLocked
	store := newTestStore(t, []domain.InventoryTicket{sold, locked})
	service := NewBookingService(store, zap.NewNop())

	input := CreateFromTicketInput{CustomerName: "C", Mobile: "M", SellingPrice: 13000}

	input.TicketID = "t1"
	_, err := service.CreateFromTicket(ctx, admin, input)
	assert.ErrorIs(t, err, ErrTicketNotAvailable)

	input.TicketID = "t2"
	_, err = service.CreateFromTicket(ctx, admin, input)
	assert.ErrorIs(t, err, ErrTicketNotAvailable)

	input.TicketID = "missing"
	_, err = service.CreateFromTicket(ctx, admin, input)
	assert.ErrorIs(t, err, ErrTicketNotFound)
}

func TestCreateFromTicketValidation(t *testing.T) {
	ctx := context.Background()
	service := NewBookingService(newTestStore(t, nil), zap.NewNop())

	_, err := service.CreateFromTicket(ctx, admin, CreateFromTicketInput{TicketID: "t1", Mobile: "M", SellingPrice: 1})
	assert.Error(t, err)
	_, err = service.CreateFromTicket(ctx, admin, CreateFromTicketInput{TicketID: "t1", CustomerName: "C", SellingPrice: 1})
	assert.Error(t, err)
	_, err = service.CreateFromTicket(ctx, admin, CreateFromTicketInput{TicketID: "t1", CustomerName: "C", Mobile: "M"})
	assert.Error(t, err)
}

func TestCreateFromTicketPublishesEvents(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, []domain.InventoryTicket{availableTicket()})

	producer := new(MockProducer)
	producer.On("Publish", mock.Anything, "booking-events", mock.Anything, mock.Anything).Return(nil)
	producer.On("Publish", mock.Anything, "notifications", mock.Anything, mock.Anything).Return(nil)

	service := NewBookingService(store, zap.NewNop(),
		WithProducer(producer, "booking-events"),
		WithNotificationsTopic("notifications"))

	_, err := service.CreateFromTicket(ctx, admin, CreateFromTicketInput{
		TicketID:      "t1",
		CustomerName:  "Rahim Uddin",
		Mobile:        "01700000000",
		SellingPrice:  13000,
		PaymentAmount: 13000,
	})
	require.NoError(t, err)

	// booking_created and ticket_sold, each mirrored to notifications.
	producer.AssertNumberOfCalls(t, "Publish", 4)
	types := map[string]bool{}
	for _, call := range producer.Calls {
		event := call.Arguments.Get(3).(kafka.Event)
		types[event.Type] = true
		assert.Equal(t, int64(13000), event.Amount)
	}
	assert.True(t, types[kafka.EventBookingCreated])
	assert.True(t, types[kafka.EventTicketSold])
}

func TestCreateDirect(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, nil)
	service := NewBookingService(store, zap.NewNop())

	booking, err := service.CreateDirect(ctx, manager, CreateDirectInput{
		CustomerName:  "Karim",
		Mobile:        "01800000000",
		Airline:       "SkyJet",
		Route:         "DAC-KUL",
		FlightDate:    "2025-08-10",
		SellingPrice:  12000,
		PurchasePrice: 14000,
		PaymentAmount: 6000,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(-2000), booking.Profit, "manual entry takes the operator's numbers as given")
	assert.Equal(t, domain.PaymentStatusPartial, booking.PaymentStatus)
	assert.Equal(t, int64(6000), booking.DueAmount)
	assert.Empty(t, booking.TicketID)
}

func TestDeleteOwnershipRules(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, nil)
	service := NewBookingService(store, zap.NewNop())

	mine, err := service.CreateDirect(ctx, manager, CreateDirectInput{
		CustomerName: "A", Mobile: "1", Airline: "X", Route: "R", FlightDate: "2025-08-10", SellingPrice: 100,
	})
	require.NoError(t, err)
	other, err := service.CreateDirect(ctx, admin, CreateDirectInput{
		CustomerName: "B", Mobile: "2", Airline: "X", Route: "R", FlightDate: "2025-08-10", SellingPrice: 100,
	})
	require.NoError(t, err)

	assert.ErrorIs(t, service.Delete(ctx, manager, other.ID), ErrPermissionDenied)
	assert.NoError(t, service.Delete(ctx, manager, mine.ID))
	assert.NoError(t, service.Delete(ctx, admin, other.ID))
	assert.ErrorIs(t, service.Delete(ctx, admin, other.ID), ErrBookingNotFound)
}

func TestDeleteChecksTheRemovedBookingNotASurvivor(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, nil)
	require.NoError(t, store.SaveBookings(ctx, []domain.Booking{
		{ID: "b1", CustomerName: "Mine", Manager: "manager1"},
		{ID: "b2", CustomerName: "Theirs", Manager: "admin"},
	}))

	producer := new(MockProducer)
	producer.On("Publish", mock.Anything, "booking-events", mock.Anything, mock.Anything).Return(nil)
	service := NewBookingService(store, zap.NewNop(), WithProducer(producer, "booking-events"))

	// The owned booking sits before another manager's in the collection;
	// ownership must be judged on the removed record itself.
	require.NoError(t, service.Delete(ctx, manager, "b1"))

	bookings, err := store.Bookings(ctx)
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, "b2", bookings[0].ID)

	require.Len(t, producer.Calls, 1)
	event := producer.Calls[0].Arguments.Get(3).(kafka.Event)
	assert.Equal(t, "b1", event.BookingID)
	assert.Equal(t, "Mine", event.CustomerName)
}

func TestListVisibilityAndFilters(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, nil)
	require.NoError(t, store.SaveBookings(ctx, []domain.Booking{
		{ID: "b1", CustomerName: "Rahim Uddin", Mobile: "01700000000", FlightDate: "2025-07-01", SellingPrice: 13000, PurchasePrice: 10000, Profit: 3000, PaymentStatus: domain.PaymentStatusPaid, Manager: "manager1"},
		{ID: "b2", CustomerName: "Karim Ahmed", Mobile: "01800000000", FlightDate: "2025-07-02", SellingPrice: 9000, PurchasePrice: 8000, Profit: 1000, PaymentStatus: domain.PaymentStatusPending, Manager: "manager1"},
		{ID: "b3", CustomerName: "Salma Khatun", Mobile: "01900000000", FlightDate: "2025-07-01", SellingPrice: 7000, PurchasePrice: 6000, Profit: 1000, PaymentStatus: domain.PaymentStatusPaid, Manager: "admin"},
	}))
	service := NewBookingService(store, zap.NewNop())

	all, stats, err := service.List(ctx, admin, Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, 3, stats.Count)
	assert.Equal(t, 2, stats.PaidCount)
	assert.Equal(t, int64(5000), stats.TotalProfit)

	own, stats, err := service.List(ctx, manager, Filter{})
	require.NoError(t, err)
	assert.Len(t, own, 2)
	for _, b := range own {
		assert.Equal(t, "manager1", b.Manager)
		assert.Zero(t, b.Profit, "profit is hidden from managers")
		assert.Zero(t, b.PurchasePrice)
	}
	assert.Zero(t, stats.TotalProfit)

	bySearch, _, err := service.List(ctx, admin, Filter{Search: "rahim"})
	require.NoError(t, err)
	require.Len(t, bySearch, 1)
	assert.Equal(t, "b1", bySearch[0].ID)

	byStatus, _, err := service.List(ctx, admin, Filter{Status: string(domain.PaymentStatusPending)})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, "b2", byStatus[0].ID)

	byDate, _, err := service.List(ctx, admin, Filter{FlightDate: "2025-07-01"})
	require.NoError(t, err)
	assert.Len(t, byDate, 2)
}

func TestCreateRequiresPermission(t *testing.T) {
	ctx := context.Background()
	service := NewBookingService(newTestStore(t, nil), zap.NewNop())
	nobody := domain.Identity{Username: "guest", Role: domain.Role("guest")}

	_, err := service.CreateFromTicket(ctx, nobody, CreateFromTicketInput{})
	assert.ErrorIs(t, err, ErrPermissionDenied)
	_, err = service.CreateDirect(ctx, nobody, CreateDirectInput{})
	assert.ErrorIs(t, err, ErrPermissionDenied)
}
