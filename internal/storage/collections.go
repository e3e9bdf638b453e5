package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mdkarim/traveldesk/internal/domain"
	"go.uber.org/zap"
)

// Collections exposes typed access to the persisted data sets. A blob that
// fails to decode is treated as empty rather than surfaced as an error, so
// one corrupted record cannot brick the whole office. That recovery policy
// lives here and nowhere else.
type Collections struct {
	kv     KV
	prefix string
	logger *zap.Logger
}

func NewCollections(kv KV, prefix string, logger *zap.Logger) *Collections {
	if prefix == "" {
		prefix = "traveldesk"
	}
	return &Collections{kv: kv, prefix: prefix, logger: logger}
}

func (c *Collections) key(parts ...string) string {
	k := c.prefix
	for _, p := range parts {
		k += ":" + p
	}
	return k
}

func loadJSON[T any](ctx context.Context, c *Collections, key string, out *T) error {
	data, err := c.kv.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("load %s: %w", key, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		c.logger.Warn("discarding malformed blob", zap.String("key", key), zap.Error(err))
		var zero T
		*out = zero
	}
	return nil
}

func saveJSON(ctx context.Context, c *Collections, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := c.kv.Set(ctx, key, data); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func (c *Collections) Users(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := loadJSON(ctx, c, c.key("users"), &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Collections) SaveUsers(ctx context.Context, users []domain.User) error {
	return saveJSON(ctx, c, c.key("users"), users)
}

// Passwords maps username to password. Plain values, same as the office
// tool this replaces; hashing is tracked separately.
func (c *Collections) Passwords(ctx context.Context) (map[string]string, error) {
	var passwords map[string]string
	if err := loadJSON(ctx, c, c.key("passwords"), &passwords); err != nil {
		return nil, err
	}
	if passwords == nil {
		passwords = make(map[string]string)
	}
	return passwords, nil
}

func (c *Collections) SavePasswords(ctx context.Context, passwords map[string]string) error {
	return saveJSON(ctx, c, c.key("passwords"), passwords)
}

func (c *Collections) Tickets(ctx context.Context) ([]domain.InventoryTicket, error) {
	var tickets []domain.InventoryTicket
	if err := loadJSON(ctx, c, c.key("tickets"), &tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}

func (c *Collections) SaveTickets(ctx context.Context, tickets []domain.InventoryTicket) error {
	return saveJSON(ctx, c, c.key("tickets"), tickets)
}

func (c *Collections) Bookings(ctx context.Context) ([]domain.Booking, error) {
	var bookings []domain.Booking
	if err := loadJSON(ctx, c, c.key("bookings"), &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (c *Collections) SaveBookings(ctx context.Context, bookings []domain.Booking) error {
	return saveJSON(ctx, c, c.key("bookings"), bookings)
}

// SaveBookingsAndTickets writes both collections in one call so a booking
// and the inventory status change it implies are persisted together. With
// a blob-per-collection layout true atomicity is not available; writing the
// booking first means a failure in the second write can never lose a sale,
// only leave a ticket to re-mark.
func (c *Collections) SaveBookingsAndTickets(ctx context.Context, bookings []domain.Booking, tickets []domain.InventoryTicket) error {
	if err := saveJSON(ctx, c, c.key("bookings"), bookings); err != nil {
		return err
	}
	return saveJSON(ctx, c, c.key("tickets"), tickets)
}

func (c *Collections) Session(ctx context.Context, token string) (*domain.Session, error) {
	var session *domain.Session
	if err := loadJSON(ctx, c, c.key("session", token), &session); err != nil {
		return nil, err
	}
	return session, nil
}

func (c *Collections) SaveSession(ctx context.Context, session *domain.Session) error {
	return saveJSON(ctx, c, c.key("session", session.Token), session)
}

func (c *Collections) DeleteSession(ctx context.Context, token string) error {
	return c.kv.Delete(ctx, c.key("session", token))
}

func (c *Collections) SessionKeys(ctx context.Context) ([]string, error) {
	return c.kv.Keys(ctx, c.key("session")+":")
}

func (c *Collections) DeleteSessionKey(ctx context.Context, key string) error {
	return c.kv.Delete(ctx, key)
}

func (c *Collections) SessionByKey(ctx context.Context, key string) (*domain.Session, error) {
	var session *domain.Session
	if err := loadJSON(ctx, c, key, &session); err != nil {
		return nil, err
	}
	return session, nil
}

func (c *Collections) CompanySettings(ctx context.Context) (domain.CompanySettings, error) {
	var settings domain.CompanySettings
	err := loadJSON(ctx, c, c.key("settings", "company"), &settings)
	return settings, err
}

func (c *Collections) SaveCompanySettings(ctx context.Context, settings domain.CompanySettings) error {
	return saveJSON(ctx, c, c.key("settings", "company"), settings)
}

func (c *Collections) NotificationSettings(ctx context.Context) (domain.NotificationSettings, error) {
	var settings domain.NotificationSettings
	err := loadJSON(ctx, c, c.key("settings", "notifications"), &settings)
	return settings, err
}

func (c *Collections) SaveNotificationSettings(ctx context.Context, settings domain.NotificationSettings) error {
	return saveJSON(ctx, c, c.key("settings", "notifications"), settings)
}

func (c *Collections) SecuritySettings(ctx context.Context) (domain.SecuritySettings, error) {
	var settings domain.SecuritySettings
	err := loadJSON(ctx, c, c.key("settings", "security"), &settings)
	return settings, err
}

func (c *Collections) SaveSecuritySettings(ctx context.Context, settings domain.SecuritySettings) error {
	return saveJSON(ctx, c, c.key("settings", "security"), settings)
}
