package models

import "time"

// Setting is a single key/value configuration row edited from the back office.
type Setting struct {
	Key         string    `db:"key" json:"key"`
	Value       string    `db:"value" json:"value"`
	Description string    `db:"description" json:"description"`
	IsPublic    bool      `db:"is_public" json:"isPublic"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// Known setting keys.
const (
	SettingAllowBackorders = "allow_backorders"
	SettingFlashDealLimit  = "flash_deal_limit"
	SettingStoreName       = "store_name"
	SettingSupportEmail    = "support_email"
)
