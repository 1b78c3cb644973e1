package services

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"civiclens-be/models"
	"civiclens-be/repository"
)

// ParseCoordinates reads a "<lat>, <lng>" string. Anything other than two
// comma-separated numbers is rejected.
func ParseCoordinates(location string) (lat, lng float64, ok bool) {
	parts := strings.Split(location, ",")
	if len(parts) != 2 {
		return 0, 0, false
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, false
	}
	lng, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, false
	}
	if !finite(lat) || !finite(lng) {
		return 0, 0, false
	}
	return lat, lng, true
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// NearestLocality returns the locality with the smallest squared Euclidean
// distance on raw (lat, lng). This ignores earth curvature, which is fine for
// city-sized areas. Ties go to the earliest candidate; localities without
// coordinates are skipped.
func NearestLocality(lat, lng float64, candidates []models.Locality) (*models.Locality, bool) {
	var (
		best     *models.Locality
		bestDist float64
	)
	for i := range candidates {
		candidate := &candidates[i]
		if !candidate.HasCoordinates() {
			continue
		}
		dLat := *candidate.Latitude - lat
		dLng := *candidate.Longitude - lng
		dist := dLat*dLat + dLng*dLng
		if best == nil || dist < bestDist {
			best = candidate
			bestDist = dist
		}
	}
	return best, best != nil
}

// LocalityResolver maps a free-text location to the nearest known locality.
type LocalityResolver struct {
	localities repository.LocalityRepository
}

func NewLocalityResolver(localities repository.LocalityRepository) *LocalityResolver {
	return &LocalityResolver{localities: localities}
}

// Resolve returns nil without error when location is not a coordinate pair
// or no locality has coordinates.
func (r *LocalityResolver) Resolve(ctx context.Context, location string) (*models.Locality, error) {
	lat, lng, ok := ParseCoordinates(location)
	if !ok {
		return nil, nil
	}

	candidates, err := r.localities.WithCoordinates(ctx)
	if err != nil {
		return nil, fmt.Errorf("load localities: %w", err)
	}

	nearest, found := NearestLocality(lat, lng, candidates)
	if !found {
		return nil, nil
	}
	return nearest, nil
}
