package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/ventech/ventech_api/internal/models"
	"github.com/ventech/ventech_api/internal/utils"
)

const (
	DefaultFlashDealLimit = 8
	MaxFlashDealLimit     = 50
)

// SettingStore is the persistence used by SettingsService.
type SettingStore interface {
	Get(ctx context.Context, key string) (*models.Setting, error)
	List(ctx context.Context, publicOnly bool) ([]models.Setting, error)
	Upsert(ctx context.Context, s *models.Setting) error
}

// SettingsService reads and validates storefront settings. Values are read
// per call and handed to callers explicitly, never cached globally.
type SettingsService struct {
	repo SettingStore
}

// NewSettingsService constructs a SettingsService.
func NewSettingsService(repo SettingStore) *SettingsService {
	return &SettingsService{repo: repo}
}

// AllowBackorders reports the allow_backorders toggle. Read failures fall
// back to false so a settings outage never blocks the storefront.
func (s *SettingsService) AllowBackorders(ctx context.Context) bool {
	v, err := s.value(ctx, models.SettingAllowBackorders)
	if err != nil {
		return false
	}
	b, err := strconv.ParseBool(v)
	return err == nil && b
}

// FlashDealLimit returns the configured carousel size within [1, MaxFlashDealLimit].
func (s *SettingsService) FlashDealLimit(ctx context.Context) int {
	v, err := s.value(ctx, models.SettingFlashDealLimit)
	if err != nil {
		return DefaultFlashDealLimit
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n <= 0 {
		return DefaultFlashDealLimit
	}
	if n > MaxFlashDealLimit {
		return MaxFlashDealLimit
	}
	return n
}

// Get returns one setting.
func (s *SettingsService) Get(ctx context.Context, key string) (*models.Setting, error) {
	return s.repo.Get(ctx, key)
}

// List returns all settings for the back office.
func (s *SettingsService) List(ctx context.Context) ([]models.Setting, error) {
	return s.repo.List(ctx, false)
}

// Storefront returns public settings as a key/value map.
func (s *SettingsService) Storefront(ctx context.Context) (map[string]string, error) {
	rows, err := s.repo.List(ctx, true)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rows))
	for _, r := range rows {
		out[r.Key] = r.Value
	}
	return out, nil
}

// Update validates and stores a setting value.
func (s *SettingsService) Update(ctx context.Context, key, value string) (*models.Setting, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, fmt.Errorf("%w: key is required", utils.ErrInvalidSetting)
	}
	value = strings.TrimSpace(value)

	switch key {
	case models.SettingAllowBackorders:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %s must be true or false", utils.ErrInvalidSetting, key)
		}
		value = strconv.FormatBool(b)
	case models.SettingFlashDealLimit:
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 || n > MaxFlashDealLimit {
			return nil, fmt.Errorf("%w: %s must be between 1 and %d", utils.ErrInvalidSetting, key, MaxFlashDealLimit)
		}
		value = strconv.Itoa(n)
	case models.SettingSupportEmail:
		if !strings.Contains(value, "@") {
			return nil, fmt.Errorf("%w: %s must be an email address", utils.ErrInvalidSetting, key)
		}
	}

	setting := &models.Setting{Key: key, Value: value}
	if err := s.repo.Upsert(ctx, setting); err != nil {
		return nil, fmt.Errorf("store setting %s: %w", key, err)
	}
	log.Info().Str("key", key).Str("value", value).Msg("setting updated")
	return setting, nil
}

func (s *SettingsService) value(ctx context.Context, key string) (string, error) {
	setting, err := s.repo.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, utils.ErrSettingNotFound) {
			log.Warn().Err(err).Str("key", key).Msg("failed to read setting")
		}
		return "", err
	}
	return setting.Value, nil
}

// StoreName returns the store_name setting or fallback.
func (s *SettingsService) StoreName(ctx context.Context, fallback string) string {
	if v, err := s.value(ctx, models.SettingStoreName); err == nil && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

// SupportEmail returns the support_email setting, or "" when unset.
func (s *SettingsService) SupportEmail(ctx context.Context) string {
	v, err := s.value(ctx, models.SettingSupportEmail)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(v)
}
