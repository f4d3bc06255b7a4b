// internal/service/setting/setting.go
package setting

import (
	"context"
	"strconv"
	"strings"

	"isp-billing-service/internal/domain/setting"
	xerrors "isp-billing-service/internal/pkg/errors"

	"go.uber.org/zap"
)

const (
	DefaultInvoicePrefix = "INV-"
	DefaultCurrency      = "IDR"
	DefaultDueDays       = 7
)

type SettingService struct {
	repo   setting.Repository
	logger *zap.Logger
}

func NewSettingService(repo setting.Repository, logger *zap.Logger) *SettingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingService{repo: repo, logger: logger}
}

// GetAll merges the settings rows and the company profile into one key/value map.
func (s *SettingService) GetAll(ctx context.Context) (map[string]string, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make(map[string]string, len(rows)+len(setting.ProfileKeys))
	for _, r := range rows {
		out[r.Key] = r.Value
	}

	profile, err := s.repo.GetProfile(ctx)
	switch {
	case err == nil:
		for key := range setting.ProfileKeys {
			out[key] = profile.Field(key)
		}
	case xerrors.Is(err, xerrors.ErrNotFound):
		s.logger.Warn("company profile row missing")
	default:
		return nil, err
	}
	return out, nil
}

// Update writes a profile column for profile keys and a settings row otherwise.
func (s *SettingService) Update(ctx context.Context, key, value string) (*setting.Setting, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, xerrors.Validation("Setting key is required")
	}

	if setting.ProfileKeys[key] {
		profile, err := s.repo.UpdateProfileField(ctx, key, value)
		if err != nil {
			return nil, err
		}
		s.logger.Info("company profile updated", zap.String("key", key))
		return &setting.Setting{Key: key, Value: profile.Field(key), UpdatedAt: profile.UpdatedAt}, nil
	}

	if key == setting.KeyInvoicePrefix && strings.TrimSpace(value) == "" {
		return nil, xerrors.Validation("Invoice prefix cannot be empty")
	}

	updated, err := s.repo.Update(ctx, key, value)
	if err != nil {
		return nil, err
	}
	s.logger.Info("setting updated", zap.String("key", key))
	return updated, nil
}

func (s *SettingService) value(ctx context.Context, key, fallback string) string {
	row, err := s.repo.Get(ctx, key)
	if err != nil {
		if !xerrors.Is(err, xerrors.ErrNotFound) {
			s.logger.Warn("failed to read setting, using default", zap.String("key", key), zap.Error(err))
		}
		return fallback
	}
	if v := strings.TrimSpace(row.Value); v != "" {
		return v
	}
	return fallback
}

// InvoicePrefix is the identifier prefix for new invoices.
func (s *SettingService) InvoicePrefix(ctx context.Context) string {
	return s.value(ctx, setting.KeyInvoicePrefix, DefaultInvoicePrefix)
}

func (s *SettingService) Currency(ctx context.Context) string {
	return s.value(ctx, setting.KeyCurrency, DefaultCurrency)
}

// DueDays is how many days after issue a new invoice falls due.
func (s *SettingService) DueDays(ctx context.Context) int {
	n, err := strconv.Atoi(s.value(ctx, setting.KeyInvoiceDueDays, ""))
	if err != nil || n < 0 {
		return DefaultDueDays
	}
	return n
}

func (s *SettingService) Profile(ctx context.Context) (*setting.CompanyProfile, error) {
	return s.repo.GetProfile(ctx)
}
