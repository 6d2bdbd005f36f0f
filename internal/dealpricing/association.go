package dealpricing

import (
	"strings"

	"github.com/ventech/ventech_api/internal/models"
)

// Association is a deal product row classified by what backs it. The two
// implementations are AttachedAssociation and StandaloneAssociation.
type Association interface {
	association()
	// Row returns the underlying deal product row.
	Row() *models.DealProduct
}

// AttachedAssociation points at a real catalog product.
type AttachedAssociation struct {
	DealProduct *models.DealProduct
	Product     *models.Product
}

// StandaloneAssociation is a deal-only virtual product described entirely
// by the deal product row.
type StandaloneAssociation struct {
	DealProduct *models.DealProduct
	Name        string
}

func (AttachedAssociation) association()   {}
func (StandaloneAssociation) association() {}

func (a AttachedAssociation) Row() *models.DealProduct   { return a.DealProduct }
func (s StandaloneAssociation) Row() *models.DealProduct { return s.DealProduct }

// Classify returns nil when the row has neither an embedded catalog product
// nor a product name of its own.
func Classify(row *models.DealProduct) Association {
	if row == nil {
		return nil
	}
	if row.Product != nil {
		return AttachedAssociation{DealProduct: row, Product: row.Product}
	}
	if row.ProductName != nil {
		if name := strings.TrimSpace(*row.ProductName); name != "" {
			return StandaloneAssociation{DealProduct: row, Name: name}
		}
	}
	return nil
}
