package models

import "time"

// Deal is a time-boxed promotional campaign. DiscountPercentage is the
// campaign-wide default (0 means no default discount).
type Deal struct {
	ID                 string    `db:"id" json:"id"`
	Title              string    `db:"title" json:"title"`
	Description        string    `db:"description" json:"description"`
	DiscountPercentage int       `db:"discount_percentage" json:"discount_percentage"`
	BannerURL          *string   `db:"banner_url" json:"banner_url,omitempty"`
	StartDate          time.Time `db:"start_date" json:"start_date"`
	EndDate            time.Time `db:"end_date" json:"end_date"`
	IsActive           bool      `db:"is_active" json:"is_active"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

// IsActiveAt reports whether the deal is flagged active and now falls inside
// [StartDate, EndDate].
func (d *Deal) IsActiveAt(now time.Time) bool {
	if d == nil || !d.IsActive {
		return false
	}
	return !now.Before(d.StartDate) && !now.After(d.EndDate)
}
