package shipping

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/egannguyen/go-ordering-service/internal/entity"
)

// CostCalculator prices the delivery of an order to a destination.
type CostCalculator interface {
	CalculateCost(ctx context.Context, productTotal decimal.Decimal, destination entity.Address) (decimal.Decimal, error)
}

// DistanceProvider resolves the distance from the nearest warehouse to
// a destination address.
type DistanceProvider interface {
	DistanceFromWarehouses(ctx context.Context, destination entity.Address) (float64, error)
}

// Pricing table. Orders at or above the large-order threshold ship for
// free within the free-distance radius and at a flat price beyond it;
// smaller orders pay the base price plus a per-unit surcharge for every
// distance unit past the radius.
var (
	largeOrderThreshold   = decimal.NewFromInt(500)
	flatPrice             = decimal.NewFromInt(50)
	basePrice             = decimal.NewFromInt(50)
	pricePerExtraDistance = decimal.NewFromInt(15)
)

const freeDistanceThreshold = 30.0

// Calculator prices deliveries from warehouse distance and order size.
type Calculator struct {
	maps DistanceProvider
}

func NewCalculator(maps DistanceProvider) *Calculator {
	return &Calculator{maps: maps}
}

func (c *Calculator) CalculateCost(ctx context.Context, productTotal decimal.Decimal, destination entity.Address) (decimal.Decimal, error) {
	distance, err := c.maps.DistanceFromWarehouses(ctx, destination)
	if err != nil {
		return decimal.Zero, err
	}

	if productTotal.GreaterThanOrEqual(largeOrderThreshold) {
		if distance <= freeDistanceThreshold {
			return decimal.Zero, nil
		}
		return flatPrice, nil
	}

	if distance <= freeDistanceThreshold {
		return basePrice, nil
	}
	extra := decimal.NewFromFloat(distance - freeDistanceThreshold)
	return basePrice.Add(pricePerExtraDistance.Mul(extra)), nil
}
