package dealpricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ventech/ventech_api/internal/models"
)

func groupFixture() ([]models.Deal, []models.DealProduct) {
	deals := []models.Deal{
		{ID: "d1", Title: "Ends soon", DiscountPercentage: 10, EndDate: fixedNow.Add(time.Hour), IsActive: true},
		{ID: "d2", Title: "Later", DiscountPercentage: 20, EndDate: fixedNow.Add(72 * time.Hour), IsActive: true},
		{ID: "d3", Title: "Empty", EndDate: fixedNow.Add(96 * time.Hour), IsActive: true},
	}
	rows := []models.DealProduct{
		{ID: "a", DealID: "d2", ProductName: strPtr("A"), OriginalPrice: 100},
		{ID: "b", DealID: "d1", ProductName: strPtr("B"), OriginalPrice: 100},
		{ID: "c", DealID: "d1"},
		{ID: "d", DealID: "d2", ProductName: strPtr("D"), OriginalPrice: 50},
		{ID: "e", DealID: "d3"},
		{ID: "f", DealID: "unknown", ProductName: strPtr("F")},
	}
	return deals, rows
}

func TestGroupByDeal(t *testing.T) {
	deals, rows := groupFixture()

	groups, outcome := newTestResolver().GroupByDeal(deals, rows, Options{})
	require.Len(t, groups, 2)

	assert.Equal(t, "d1", groups[0].Deal.ID)
	require.Len(t, groups[0].Products, 1)
	assert.Equal(t, 90.0, groups[0].Products[0].DealPrice)

	assert.Equal(t, "d2", groups[1].Deal.ID)
	require.Len(t, groups[1].Products, 2)
	assert.Equal(t, "a", groups[1].Products[0].ID)
	assert.Equal(t, 40.0, groups[1].Products[1].DealPrice)

	assert.Equal(t, Outcome{Resolved: 3, Dropped: 2}, outcome)
}

func TestFlash(t *testing.T) {
	deals, rows := groupFixture()
	r := newTestResolver()

	got, outcome := r.Flash(deals, rows, 2, Options{})
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].ID)
	assert.Equal(t, "a", got[1].ID)
	assert.Equal(t, Outcome{Resolved: 2, Dropped: 1}, outcome)

	all, _ := r.Flash(deals, rows, 10, Options{})
	assert.Len(t, all, 3)

	none, _ := r.Flash(deals, rows, 0, Options{})
	assert.Empty(t, none)
}
