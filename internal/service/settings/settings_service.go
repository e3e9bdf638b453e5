package settings

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/mdkarim/traveldesk/internal/domain"
)

var ErrPermissionDenied = errors.New("permission denied")

type SettingsUseCase interface {
	Company(ctx context.Context, ident domain.Identity) (domain.CompanySettings, error)
	SaveCompany(ctx context.Context, ident domain.Identity, settings domain.CompanySettings) error
	Notifications(ctx context.Context, ident domain.Identity) (domain.NotificationSettings, error)
	SaveNotifications(ctx context.Context, ident domain.Identity, settings domain.NotificationSettings) error
	Security(ctx context.Context, ident domain.Identity) (domain.SecuritySettings, error)
	SaveSecurity(ctx context.Context, ident domain.Identity, settings domain.SecuritySettings) error
	Export(ctx context.Context, ident domain.Identity) ([]byte, error)
}

type Store interface {
	CompanySettings(ctx context.Context) (domain.CompanySettings, error)
	SaveCompanySettings(ctx context.Context, settings domain.CompanySettings) error
	NotificationSettings(ctx context.Context) (domain.NotificationSettings, error)
	SaveNotificationSettings(ctx context.Context, settings domain.NotificationSettings) error
	SecuritySettings(ctx context.Context) (domain.SecuritySettings, error)
	SaveSecuritySettings(ctx context.Context, settings domain.SecuritySettings) error
}

type SettingsService struct {
	store Store
	now   func() time.Time
}

func NewSettingsService(store Store) *SettingsService {
	return &SettingsService{store: store, now: time.Now}
}

func (s *SettingsService) Company(ctx context.Context, ident domain.Identity) (domain.CompanySettings, error) {
	if !ident.Has(domain.PermSystemSettings) {
		return domain.CompanySettings{}, ErrPermissionDenied
	}
	return s.store.CompanySettings(ctx)
}

func (s *SettingsService) SaveCompany(ctx context.Context, ident domain.Identity, settings domain.CompanySettings) error {
	if !ident.Has(domain.PermSystemSettings) {
		return ErrPermissionDenied
	}
	return s.store.SaveCompanySettings(ctx, settings)
}

func (s *SettingsService) Notifications(ctx context.Context, ident domain.Identity) (domain.NotificationSettings, error) {
	if !ident.Has(domain.PermSystemSettings) {
		return domain.NotificationSettings{}, ErrPermissionDenied
	}
	return s.store.NotificationSettings(ctx)
}

func (s *SettingsService) SaveNotifications(ctx context.Context, ident domain.Identity, settings domain.NotificationSettings) error {
	if !ident.Has(domain.PermSystemSettings) {
		return ErrPermissionDenied
	}
	return s.store.SaveNotificationSettings(ctx, settings)
}

func (s *SettingsService) Security(ctx context.Context, ident domain.Identity) (domain.SecuritySettings, error) {
	if !ident.Has(domain.PermSystemSettings) {
		return domain.SecuritySettings{}, ErrPermissionDenied
	}
	return s.store.SecuritySettings(ctx)
}

func (s *SettingsService) SaveSecurity(ctx context.Context, ident domain.Identity, settings domain.SecuritySettings) error {
	if !ident.Has(domain.PermSystemSettings) {
		return ErrPermissionDenied
	}
	return s.store.SaveSecuritySettings(ctx, settings)
}

// Export bundles every settings blob into one JSON document for backup.
func (s *SettingsService) Export(ctx context.Context, ident domain.Identity) ([]byte, error) {
	if !ident.Has(domain.PermSystemSettings) {
		return nil, ErrPermissionDenied
	}

	company, err := s.store.CompanySettings(ctx)
	if err != nil {
		return nil, err
	}
	notifications, err := s.store.NotificationSettings(ctx)
	if err != nil {
		return nil, err
	}
	security, err := s.store.SecuritySettings(ctx)
	if err != nil {
		return nil, err
	}

	bundle := struct {
		Company       domain.CompanySettings      `json:"company"`
		Notifications domain.NotificationSettings `json:"notifications"`
		Security      domain.SecuritySettings     `json:"security"`
		ExportedAt    time.Time                   `json:"exported_at"`
	}{company, notifications, security, s.now()}

	return json.MarshalIndent(bundle, "", "  ")
}

var _ SettingsUseCase = (*SettingsService)(nil)
