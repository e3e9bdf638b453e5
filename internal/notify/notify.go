package notify

import (
	"context"
	"fmt"

	"github.com/mdkarim/traveldesk/internal/domain"
	"github.com/mdkarim/traveldesk/internal/kafka"
	"go.uber.org/zap"
)

// Settings is where the sender reads the office notification toggles from.
type Settings interface {
	NotificationSettings(ctx context.Context) (domain.NotificationSettings, error)
}

// Sender turns booking and inventory events into office notifications.
// Delivery is a log line standing in for the mail gateway the agency
// does not have yet.
type Sender struct {
	settings Settings
	logger   *zap.Logger
}

func NewSender(settings Settings, logger *zap.Logger) *Sender {
	return &Sender{settings: settings, logger: logger}
}

func (s *Sender) Send(ctx context.Context, event kafka.Event) error {
	settings, err := s.settings.NotificationSettings(ctx)
	if err != nil {
		return err
	}
	if !s.enabled(settings, event.Type) {
		return nil
	}

	s.logger.Info("notification",
		zap.String("type", event.Type),
		zap.String("message", message(event)),
		zap.String("recipient", event.Email))
	return nil
}

func (s *Sender) enabled(settings domain.NotificationSettings, eventType string) bool {
	switch eventType {
	case kafka.EventBookingCreated:
		return settings.BookingCreated
	case kafka.EventTicketSold:
		return settings.TicketSold
	default:
		return settings.EmailEnabled
	}
}

func message(event kafka.Event) string {
	switch event.Type {
	case kafka.EventBookingCreated:
		return fmt.Sprintf("booking for %s on %s %s, amount %d", event.CustomerName, event.Airline, event.Route, event.Amount)
	case kafka.EventTicketSold:
		return fmt.Sprintf("ticket %s sold to %s", event.PNR, event.CustomerName)
	case kafka.EventTicketPurchased:
		return fmt.Sprintf("ticket %s purchased from supplier, cost %d", event.PNR, event.Amount)
	default:
		return fmt.Sprintf("%s by %s", event.Type, event.Actor)
	}
}
