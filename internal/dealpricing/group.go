package dealpricing

import "github.com/ventech/ventech_api/internal/models"

// DealGroup is a deal together with its displayable products.
type DealGroup struct {
	Deal     models.Deal           `json:"deal"`
	Products []ResolvedDealProduct `json:"products"`
}

// Outcome counts rows seen by a batch resolution.
type Outcome struct {
	Resolved int
	Dropped  int
}

// GroupByDeal resolves rows under their deal. Deal order is kept, rows whose
// deal is not listed are ignored and deals left without products are omitted.
func (r *Resolver) GroupByDeal(deals []models.Deal, rows []models.DealProduct, opts Options) ([]DealGroup, Outcome) {
	byDeal := rowsByDeal(rows)

	var out Outcome
	groups := make([]DealGroup, 0, len(deals))
	for i := range deals {
		dealRows := byDeal[deals[i].ID]
		products := r.ResolveAll(&deals[i], dealRows, opts)
		out.Resolved += len(products)
		out.Dropped += len(dealRows) - len(products)
		if len(products) == 0 {
			continue
		}
		groups = append(groups, DealGroup{Deal: deals[i], Products: products})
	}
	return groups, out
}

// Flash resolves up to limit products walking deals in the given order, so
// callers pass deals sorted by end date to surface the soonest-ending first.
func (r *Resolver) Flash(deals []models.Deal, rows []models.DealProduct, limit int, opts Options) ([]ResolvedDealProduct, Outcome) {
	if limit < 0 {
		limit = 0
	}
	byDeal := rowsByDeal(rows)

	var out Outcome
	products := make([]ResolvedDealProduct, 0, limit)
	for i := range deals {
		for j := range byDeal[deals[i].ID] {
			if len(products) >= limit {
				return products, out
			}
			p := r.Resolve(&deals[i], &byDeal[deals[i].ID][j], opts)
			if p == nil {
				out.Dropped++
				continue
			}
			out.Resolved++
			products = append(products, *p)
		}
	}
	return products, out
}

func rowsByDeal(rows []models.DealProduct) map[string][]models.DealProduct {
	m := make(map[string][]models.DealProduct)
	for _, row := range rows {
		m[row.DealID] = append(m[row.DealID], row)
	}
	return m
}
