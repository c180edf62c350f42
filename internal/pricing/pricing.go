package pricing

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/egannguyen/go-ordering-service/internal/entity"
)

// Pricer totals the product cost of an order's items.
type Pricer interface {
	TotalPrice(ctx context.Context, items []entity.OrderItem) (decimal.Decimal, error)
}

// CatalogPricer is a stand-in pricer charging a fixed unit price per
// item amount, until the real product catalog is wired in.
type CatalogPricer struct {
	unitPrice decimal.Decimal
}

func NewCatalogPricer() *CatalogPricer {
	return &CatalogPricer{unitPrice: decimal.NewFromInt(12)}
}

func (p *CatalogPricer) TotalPrice(_ context.Context, items []entity.OrderItem) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(p.unitPrice.Mul(item.Amount))
	}
	return total, nil
}
