package domain

import "time"

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
)

// Permission is a closed set of actions a role may perform. Checks go
// through Role.Has so an unknown permission is simply denied.
type Permission string

const (
	PermViewAllBookings     Permission = "view_all_bookings"
	PermViewOwnBookings     Permission = "view_own_bookings"
	PermCreateBooking       Permission = "create_booking"
	PermEditBooking         Permission = "edit_booking"
	PermEditOwnBooking      Permission = "edit_own_booking"
	PermDeleteBooking       Permission = "delete_booking"
	PermPurchaseTickets     Permission = "purchase_tickets"
	PermViewPurchasePrice   Permission = "view_purchase_price"
	PermViewAvailableStock  Permission = "view_available_tickets"
	PermLockTickets         Permission = "lock_tickets"
	PermViewReports         Permission = "view_reports"
	PermViewProfit          Permission = "view_profit"
	PermUpdatePaymentStatus Permission = "update_payment_status"
	PermManageUsers         Permission = "manage_users"
	PermExportData          Permission = "export_data"
	PermSystemSettings      Permission = "system_settings"
)

var rolePermissions = map[Role]map[Permission]struct{}{
	RoleAdmin: permSet(
		PermViewAllBookings,
		PermCreateBooking,
		PermEditBooking,
		PermDeleteBooking,
		PermPurchaseTickets,
		PermViewPurchasePrice,
		PermViewAvailableStock,
		PermLockTickets,
		PermViewReports,
		PermViewProfit,
		PermManageUsers,
		PermExportData,
		PermSystemSettings,
	),
	RoleManager: permSet(
		PermViewOwnBookings,
		PermCreateBooking,
		PermEditOwnBooking,
		PermViewAvailableStock,
		PermViewReports,
		PermExportData,
		PermUpdatePaymentStatus,
	),
}

func permSet(perms ...Permission) map[Permission]struct{} {
	set := make(map[Permission]struct{}, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return set
}

func (r Role) Has(p Permission) bool {
	_, ok := rolePermissions[r][p]
	return ok
}

type User struct {
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	Role      Role       `json:"role"`
	Name      string     `json:"name"`
	Email     string     `json:"email,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	LastLogin *time.Time `json:"last_login,omitempty"`
	IsActive  bool       `json:"is_active"`
}

// Session is the persisted record behind a login token. The identity it
// carries is handed to services explicitly; there is no ambient current
// user.
type Session struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	Role      Role      `json:"role"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Identity is the authenticated caller passed down to services.
type Identity struct {
	Username string
	Role     Role
}

func (id Identity) Has(p Permission) bool {
	return id.Role.Has(p)
}
