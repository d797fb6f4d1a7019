package detection

import (
	"context"
	"fmt"
	"log"

	"github.com/triplog/trips-backend-go/internal/models"
)

// HomeSource supplies home/exclusion configuration and the observation
// history backing home inference.
type HomeSource interface {
	// ConfiguredHome returns the configured home address, or nil when the
	// user never set one
	ConfiguredHome(ctx context.Context) (*models.HomeReference, error)

	// ExclusionZones returns the user-declared exclusion zones
	ExclusionZones(ctx context.Context) ([]models.HomeReference, error)

	// InferredHome synthesizes a home reference from the most-frequently
	// visited city, counting one observation per calendar day. Returns nil
	// when there is no data to infer from.
	InferredHome(ctx context.Context) (*models.HomeReference, error)
}

// HomeResolver produces the ordered home-reference list for one detection
// run: the configured home address first (inferred when absent), then the
// exclusion zones. An empty list is a legal degenerate outcome, the engine
// then classifies every sample as Away.
type HomeResolver struct {
	source HomeSource
}

// NewHomeResolver creates a resolver over the given configuration source
func NewHomeResolver(source HomeSource) *HomeResolver {
	return &HomeResolver{source: source}
}

// Resolve returns the home references in match priority order
func (r *HomeResolver) Resolve(ctx context.Context) ([]models.HomeReference, error) {
	home, err := r.source.ConfiguredHome(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load configured home: %w", err)
	}

	if home == nil {
		// Inference is best-effort: a failure here degrades to always-Away
		// classification rather than aborting the run
		home, err = r.source.InferredHome(ctx)
		if err != nil {
			log.Printf("[HomeResolver] home inference failed, continuing without home: %v", err)
			home = nil
		} else if home != nil {
			log.Printf("[HomeResolver] no home configured, inferred %q from history", home.City)
		}
	}

	zones, err := r.source.ExclusionZones(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load exclusion zones: %w", err)
	}

	var refs []models.HomeReference
	if home != nil {
		refs = append(refs, *home)
	}
	refs = append(refs, zones...)

	if len(refs) == 0 {
		log.Printf("[HomeResolver] no home references available, all samples will classify as away")
	}
	return refs, nil
}
