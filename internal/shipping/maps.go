package shipping

import (
	"context"
	"strconv"
	"strings"

	"github.com/egannguyen/go-ordering-service/internal/entity"
)

// GoogleMaps is a stand-in for the maps integration. It derives the
// warehouse distance from the numeric prefix of the destination's house
// number and falls back to 0 when the number is not parseable.
type GoogleMaps struct{}

func NewGoogleMaps() *GoogleMaps {
	return &GoogleMaps{}
}

func (m *GoogleMaps) DistanceFromWarehouses(_ context.Context, destination entity.Address) (float64, error) {
	prefix, _, _ := strings.Cut(destination.HouseNumber, "/")
	distance, err := strconv.ParseFloat(strings.TrimSpace(prefix), 64)
	if err != nil {
		return 0, nil
	}
	return distance, nil
}
