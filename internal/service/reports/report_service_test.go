package reports

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/mdkarim/traveldesk/internal/domain"
	"github.com/mdkarim/traveldesk/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	admin   = domain.Identity{Username: "admin", Role: domain.RoleAdmin}
	manager = domain.Identity{Username: "manager1", Role: domain.RoleManager}
)

func seededStore(t *testing.T) *storage.Collections {
	t.Helper()
	ctx := context.Background()
	store := storage.NewCollections(storage.NewMemoryKV(), "test", zap.NewNop())

	july1 := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)
	july2 := time.Date(2025, 7, 2, 15, 30, 0, 0, time.UTC)
	august := time.Date(2025, 8, 5, 9, 0, 0, 0, time.UTC)

	require.NoError(t, store.SaveBookings(ctx, []domain.Booking{
		{ID: "b1", CustomerName: "Rahim", Mobile: "017", Airline: "AirExample", Route: "DAC-DXB", FlightDate: "2025-07-10", SellingPrice: 13000, PurchasePrice: 10000, Profit: 3000, PaymentStatus: domain.PaymentStatusPaid, CreatedAt: july1, Manager: "manager1"},
		{ID: "b2", CustomerName: "Karim", Mobile: "018", Airline: "SkyJet", Route: "DAC-KUL", FlightDate: "2025-07-12", SellingPrice: 9000, PurchasePrice: 8000, Profit: 1000, PaymentStatus: domain.PaymentStatusPending, CreatedAt: july2, Manager: "manager1"},
		{ID: "b3", CustomerName: "Salma", Mobile: "019", Airline: "AirExample", Route: "DAC-SIN", FlightDate: "2025-08-20", SellingPrice: 20000, PurchasePrice: 15000, Profit: 5000, PaymentStatus: domain.PaymentStatusPartial, CreatedAt: august, Manager: "admin"},
	}))
	require.NoError(t, store.SaveTickets(ctx, []domain.InventoryTicket{
		{ID: "t1", PurchasePrice: 10000, Status: domain.TicketStatusSold},
		{ID: "t2", PurchasePrice: 8000, Status: domain.TicketStatusAvailable},
	}))
	return store
}

func TestGenerateAllWindow(t *testing.T) {
	ctx := context.Background()
	service := NewReportService(seededStore(t), zap.NewNop())

	report, err := service.Generate(ctx, admin, Params{Type: ReportAll})
	require.NoError(t, err)

	assert.Equal(t, 3, report.Summary.TotalBookings)
	assert.Equal(t, int64(42000), report.Summary.TotalRevenue)
	assert.Equal(t, int64(9000), report.Summary.TotalProfit)
	assert.Equal(t, 1, report.Summary.PaidBookings)
	assert.Equal(t, 1, report.Summary.PendingBookings)
	assert.Equal(t, 1, report.Summary.PartialBookings)
	assert.InDelta(t, 3000.0, report.Summary.AverageProfit, 0.001)
	assert.InDelta(t, 9000.0/42000.0*100, report.Summary.ProfitMargin, 0.001)
	// Purchase cost covers the whole inventory, sold or not.
	assert.Equal(t, int64(18000), report.Summary.TotalPurchaseCost)
}

func TestGenerateDailyAndMonthlyWindows(t *testing.T) {
	ctx := context.Background()
	service := NewReportService(seededStore(t), zap.NewNop())

	daily, err := service.Generate(ctx, admin, Params{Type: ReportDaily, Date: "2025-07-01"})
	require.NoError(t, err)
	assert.Equal(t, 1, daily.Summary.TotalBookings)
	assert.Equal(t, int64(13000), daily.Summary.TotalRevenue)

	monthly, err := service.Generate(ctx, admin, Params{Type: ReportMonthly, Month: "2025-07"})
	require.NoError(t, err)
	assert.Equal(t, 2, monthly.Summary.TotalBookings)
	assert.Equal(t, int64(22000), monthly.Summary.TotalRevenue)
}

func TestGenerateEmptyWindow(t *testing.T) {
	ctx := context.Background()
	service := NewReportService(seededStore(t), zap.NewNop())

	report, err := service.Generate(ctx, admin, Params{Type: ReportDaily, Date: "1999-01-01"})
	require.NoError(t, err)
	assert.Zero(t, report.Summary.TotalBookings)
	assert.Zero(t, report.Summary.AverageProfit)
	assert.Zero(t, report.Summary.ProfitMargin)
}

func TestGenerateBreakdownsSortedByRevenue(t *testing.T) {
	ctx := context.Background()
	service := NewReportService(seededStore(t), zap.NewNop())

	report, err := service.Generate(ctx, admin, Params{Type: ReportAll})
	require.NoError(t, err)

	require.Len(t, report.Managers, 2)
	assert.Equal(t, "manager1", report.Managers[0].Manager)
	assert.Equal(t, int64(22000), report.Managers[0].Revenue)
	assert.InDelta(t, 11000.0, report.Managers[0].AverageTicketValue, 0.001)

	require.Len(t, report.Airlines, 2)
	assert.Equal(t, "AirExample", report.Airlines[0].Airline)
	assert.Equal(t, int64(33000), report.Airlines[0].Revenue)
	assert.Equal(t, int64(8000), report.Airlines[0].Profit)
}

func TestGenerateForManager(t *testing.T) {
	ctx := context.Background()
	service := NewReportService(seededStore(t), zap.NewNop())

	report, err := service.Generate(ctx, manager, Params{Type: ReportAll})
	require.NoError(t, err)

	// Only the manager's own bookings, with no profit numbers at all.
	assert.Equal(t, 2, report.Summary.TotalBookings)
	assert.Equal(t, int64(22000), report.Summary.TotalRevenue)
	assert.Zero(t, report.Summary.TotalProfit)
	assert.Zero(t, report.Summary.ProfitMargin)
	assert.Zero(t, report.Summary.TotalPurchaseCost)
	assert.Empty(t, report.Managers)
	assert.Empty(t, report.Airlines)
}

func TestGenerateRequiresPermission(t *testing.T) {
	ctx := context.Background()
	service := NewReportService(seededStore(t), zap.NewNop())

	_, err := service.Generate(ctx, domain.Identity{Username: "x", Role: domain.Role("guest")}, Params{Type: ReportAll})
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestExportCSV(t *testing.T) {
	ctx := context.Background()
	service := NewReportService(seededStore(t), zap.NewNop())

	filename, data, err := service.ExportCSV(ctx, admin, Params{Type: ReportMonthly, Month: "2025-07"})
	require.NoError(t, err)
	assert.Equal(t, "travel_report_monthly_2025-07.csv", filename)

	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Contains(t, rows[0], "Profit")
	assert.Contains(t, rows[0], "Manager")
	assert.Equal(t, "Rahim", rows[1][0])
	assert.Equal(t, "13000", rows[1][5])
}

func TestExportCSVHidesProfitFromManagers(t *testing.T) {
	ctx := context.Background()
	service := NewReportService(seededStore(t), zap.NewNop())

	filename, data, err := service.ExportCSV(ctx, manager, Params{Type: ReportAll})
	require.NoError(t, err)
	assert.Equal(t, "travel_report_all_all.csv", filename)

	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3, "header plus the manager's two bookings")
	assert.NotContains(t, rows[0], "Profit")
	assert.NotContains(t, rows[0], "Manager")
}
