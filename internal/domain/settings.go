package domain

// Settings blobs mirror what the back office keeps alongside the booking
// data. They are persisted whole and read back with empty defaults on
// corruption.

type CompanySettings struct {
	CompanyName  string `json:"company_name"`
	Address      string `json:"address,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Email        string `json:"email,omitempty"`
	Website      string `json:"website,omitempty"`
	TaxID        string `json:"tax_id,omitempty"`
	CurrencyCode string `json:"currency_code,omitempty"`
}

type NotificationSettings struct {
	EmailEnabled    bool `json:"email_enabled"`
	BookingCreated  bool `json:"booking_created"`
	PaymentReceived bool `json:"payment_received"`
	TicketSold      bool `json:"ticket_sold"`
	DailySummary    bool `json:"daily_summary"`
}

type SecuritySettings struct {
	PasswordExpiryDays  int  `json:"password_expiry_days"`
	SessionTimeoutMin   int  `json:"session_timeout_minutes"`
	MaxLoginAttempts    int  `json:"max_login_attempts"`
	RequireStrongPasswd bool `json:"require_strong_password"`
}
