package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ventech/ventech_api/internal/models"
	"github.com/ventech/ventech_api/internal/utils"
)

func TestSettingsService_Readers(t *testing.T) {
	ctx := context.Background()

	svc := NewSettingsService(newFakeSettingStore(map[string]string{
		models.SettingAllowBackorders: "true",
		models.SettingFlashDealLimit:  "12",
		models.SettingStoreName:       " VENTECH Store ",
		models.SettingSupportEmail:    "help@ventech.id",
	}))
	assert.True(t, svc.AllowBackorders(ctx))
	assert.Equal(t, 12, svc.FlashDealLimit(ctx))
	assert.Equal(t, "VENTECH Store", svc.StoreName(ctx, "fallback"))
	assert.Equal(t, "help@ventech.id", svc.SupportEmail(ctx))

	empty := NewSettingsService(newFakeSettingStore(nil))
	assert.False(t, empty.AllowBackorders(ctx))
	assert.Equal(t, DefaultFlashDealLimit, empty.FlashDealLimit(ctx))
	assert.Equal(t, "fallback", empty.StoreName(ctx, "fallback"))
	assert.Empty(t, empty.SupportEmail(ctx))

	broken := newFakeSettingStore(nil)
	broken.err = errors.New("db down")
	assert.False(t, NewSettingsService(broken).AllowBackorders(ctx))

	for value, want := range map[string]int{"0": DefaultFlashDealLimit, "abc": DefaultFlashDealLimit, "500": MaxFlashDealLimit, " 3 ": 3} {
		s := NewSettingsService(newFakeSettingStore(map[string]string{models.SettingFlashDealLimit: value}))
		assert.Equal(t, want, s.FlashDealLimit(ctx), value)
	}
}

func TestSettingsService_Storefront(t *testing.T) {
	svc := NewSettingsService(newFakeSettingStore(map[string]string{
		models.SettingStoreName:    "VENTECH",
		models.SettingSupportEmail: "help@ventech.id",
	}))

	out, err := svc.Storefront(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{models.SettingStoreName: "VENTECH"}, out)
}

func TestSettingsService_Update(t *testing.T) {
	store := newFakeSettingStore(nil)
	svc := NewSettingsService(store)
	ctx := context.Background()

	s, err := svc.Update(ctx, models.SettingAllowBackorders, " 1 ")
	require.NoError(t, err)
	assert.Equal(t, "true", s.Value)

	s, err = svc.Update(ctx, models.SettingFlashDealLimit, "07")
	require.NoError(t, err)
	assert.Equal(t, "7", s.Value)
	assert.Equal(t, 7, svc.FlashDealLimit(ctx))

	_, err = svc.Update(ctx, "custom_banner", "Hello")
	require.NoError(t, err)

	for key, value := range map[string]string{
		models.SettingAllowBackorders: "maybe",
		models.SettingFlashDealLimit:  "51",
		models.SettingSupportEmail:    "nobody",
		"  ":                          "x",
	} {
		_, err := svc.Update(ctx, key, value)
		assert.ErrorIs(t, err, utils.ErrInvalidSetting, key)
	}
}
