package reports

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/mdkarim/traveldesk/internal/domain"
	"go.uber.org/zap"
)

var ErrPermissionDenied = errors.New("permission denied")

type ReportType string

const (
	ReportDaily   ReportType = "daily"
	ReportMonthly ReportType = "monthly"
	ReportAll     ReportType = "all"
)

type Params struct {
	Type  ReportType `form:"type"`
	Date  string     `form:"date"`
	Month string     `form:"month"`
}

// Summary is the base aggregate over the selected window. Profit fields
// are populated only for identities with profit visibility.
type Summary struct {
	TotalBookings     int     `json:"total_bookings"`
	TotalRevenue      int64   `json:"total_revenue"`
	TotalProfit       int64   `json:"total_profit"`
	PaidBookings      int     `json:"paid_bookings"`
	PendingBookings   int     `json:"pending_bookings"`
	PartialBookings   int     `json:"partial_bookings"`
	AverageProfit     float64 `json:"average_profit"`
	TotalPurchaseCost int64   `json:"total_purchase_cost"`
	ProfitMargin      float64 `json:"profit_margin"`
}

type ManagerPerformance struct {
	Manager            string  `json:"manager"`
	Bookings           int     `json:"bookings"`
	Revenue            int64   `json:"revenue"`
	Profit             int64   `json:"profit"`
	AverageTicketValue float64 `json:"average_ticket_value"`
}

type AirlineReport struct {
	Airline      string  `json:"airline"`
	Bookings     int     `json:"bookings"`
	Revenue      int64   `json:"revenue"`
	Profit       int64   `json:"profit"`
	ProfitMargin float64 `json:"profit_margin"`
}

type Report struct {
	Summary  Summary              `json:"summary"`
	Managers []ManagerPerformance `json:"managers,omitempty"`
	Airlines []AirlineReport      `json:"airlines,omitempty"`
}

type ReportUseCase interface {
	Generate(ctx context.Context, ident domain.Identity, params Params) (*Report, error)
	ExportCSV(ctx context.Context, ident domain.Identity, params Params) (string, []byte, error)
}

type Store interface {
	Bookings(ctx context.Context) ([]domain.Booking, error)
	Tickets(ctx context.Context) ([]domain.InventoryTicket, error)
}

// ReportService recomputes everything from the persisted collections on
// every call. There is no cache to invalidate.
type ReportService struct {
	store  Store
	logger *zap.Logger
}

func NewReportService(store Store, logger *zap.Logger) *ReportService {
	return &ReportService{store: store, logger: logger}
}

func (s *ReportService) Generate(ctx context.Context, ident domain.Identity, params Params) (*Report, error) {
	if !ident.Has(domain.PermViewReports) {
		return nil, ErrPermissionDenied
	}

	filtered, err := s.windowedBookings(ctx, ident, params)
	if err != nil {
		return nil, err
	}

	profitVisible := ident.Has(domain.PermViewProfit)
	report := &Report{}
	for _, b := range filtered {
		report.Summary.TotalBookings++
		report.Summary.TotalRevenue += b.SellingPrice
		if profitVisible {
			report.Summary.TotalProfit += b.Profit
		}
		switch b.PaymentStatus {
		case domain.PaymentStatusPaid:
			report.Summary.PaidBookings++
		case domain.PaymentStatusPending:
			report.Summary.PendingBookings++
		case domain.PaymentStatusPartial:
			report.Summary.PartialBookings++
		}
	}
	if report.Summary.TotalBookings > 0 {
		report.Summary.AverageProfit = float64(report.Summary.TotalProfit) / float64(report.Summary.TotalBookings)
	}
	// Margin must read 0 for an empty window rather than divide by zero.
	if report.Summary.TotalRevenue > 0 {
		report.Summary.ProfitMargin = float64(report.Summary.TotalProfit) / float64(report.Summary.TotalRevenue) * 100
	}

	if profitVisible {
		tickets, err := s.store.Tickets(ctx)
		if err != nil {
			return nil, err
		}
		for _, t := range tickets {
			report.Summary.TotalPurchaseCost += t.PurchasePrice
		}
		report.Managers = managerBreakdown(filtered)
		report.Airlines = airlineBreakdown(filtered)
	}
	return report, nil
}

// windowedBookings applies role visibility and the daily/monthly/all
// window to the booking collection.
func (s *ReportService) windowedBookings(ctx context.Context, ident domain.Identity, params Params) ([]domain.Booking, error) {
	bookings, err := s.store.Bookings(ctx)
	if err != nil {
		return nil, err
	}

	filtered := make([]domain.Booking, 0, len(bookings))
	for _, b := range bookings {
		if !ident.Has(domain.PermViewAllBookings) && b.Manager != ident.Username {
			continue
		}
		switch params.Type {
		case ReportDaily:
			if b.CreatedAt.UTC().Format("2006-01-02") != params.Date {
				continue
			}
		case ReportMonthly:
			if b.CreatedAt.UTC().Format("2006-01") != params.Month {
				continue
			}
		}
		filtered = append(filtered, b)
	}
	return filtered, nil
}

func managerBreakdown(bookings []domain.Booking) []ManagerPerformance {
	byManager := make(map[string]*ManagerPerformance)
	for _, b := range bookings {
		manager := b.Manager
		if manager == "" {
			manager = "Unknown"
		}
		entry, ok := byManager[manager]
		if !ok {
			entry = &ManagerPerformance{Manager: manager}
			byManager[manager] = entry
		}
		entry.Bookings++
		entry.Revenue += b.SellingPrice
		entry.Profit += b.Profit
	}

	result := make([]ManagerPerformance, 0, len(byManager))
	for _, entry := range byManager {
		if entry.Bookings > 0 {
			entry.AverageTicketValue = float64(entry.Revenue) / float64(entry.Bookings)
		}
		result = append(result, *entry)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Revenue > result[j].Revenue })
	return result
}

func airlineBreakdown(bookings []domain.Booking) []AirlineReport {
	byAirline := make(map[string]*AirlineReport)
	for _, b := range bookings {
		airline := b.Airline
		if airline == "" {
			airline = "Unknown"
		}
		entry, ok := byAirline[airline]
		if !ok {
			entry = &AirlineReport{Airline: airline}
			byAirline[airline] = entry
		}
		entry.Bookings++
		entry.Revenue += b.SellingPrice
		entry.Profit += b.Profit
	}

	result := make([]AirlineReport, 0, len(byAirline))
	for _, entry := range byAirline {
		if entry.Revenue > 0 {
			entry.ProfitMargin = float64(entry.Profit) / float64(entry.Revenue) * 100
		}
		result = append(result, *entry)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Revenue > result[j].Revenue })
	return result
}

// ExportCSV serializes the windowed booking set. Admin exports carry the
// profit and manager columns; manager exports do not.
func (s *ReportService) ExportCSV(ctx context.Context, ident domain.Identity, params Params) (string, []byte, error) {
	if !ident.Has(domain.PermExportData) {
		return "", nil, ErrPermissionDenied
	}

	filtered, err := s.windowedBookings(ctx, ident, params)
	if err != nil {
		return "", nil, err
	}

	profitVisible := ident.Has(domain.PermViewProfit)
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"Customer Name", "Mobile", "Airline", "Route", "Flight Date", "Selling Price"}
	if profitVisible {
		header = append(header, "Profit", "Payment Status", "Manager")
	} else {
		header = append(header, "Payment Status")
	}
	header = append(header, "Booked At")
	if err := w.Write(header); err != nil {
		return "", nil, err
	}

	for _, b := range filtered {
		row := []string{b.CustomerName, b.Mobile, b.Airline, b.Route, b.FlightDate, strconv.FormatInt(b.SellingPrice, 10)}
		if profitVisible {
			row = append(row, strconv.FormatInt(b.Profit, 10), string(b.PaymentStatus), b.Manager)
		} else {
			row = append(row, string(b.PaymentStatus))
		}
		row = append(row, b.CreatedAt.UTC().Format("2006-01-02"))
		if err := w.Write(row); err != nil {
			return "", nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", nil, err
	}

	window := string(params.Type)
	switch params.Type {
	case ReportDaily:
		window = params.Date
	case ReportMonthly:
		window = params.Month
	}
	filename := fmt.Sprintf("travel_report_%s_%s.csv", params.Type, window)

	s.logger.Info("report exported",
		zap.String("type", string(params.Type)),
		zap.Int("rows", len(filtered)),
		zap.String("by", ident.Username))
	return filename, buf.Bytes(), nil
}

var _ ReportUseCase = (*ReportService)(nil)
