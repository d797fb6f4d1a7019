package detection

import (
	"strings"

	"github.com/triplog/trips-backend-go/internal/models"
	"github.com/triplog/trips-backend-go/internal/spatial"
)

// LocationState is the classification of one sample: at home or traveling
type LocationState int

const (
	StateHome LocationState = iota
	StateAway
)

func (s LocationState) String() string {
	if s == StateHome {
		return "home"
	}
	return "away"
}

// PointClassifier decides whether a sample is at a home-equivalent location.
// A sample is Home iff it matches any home reference, either by haversine
// radius around the reference coordinates or by case-insensitive city name.
// Samples with no usable coordinates and no resolved city classify as Away.
type PointClassifier struct {
	refs     []models.HomeReference
	radiusKm float64
}

// NewPointClassifier creates a classifier over the resolved home references
func NewPointClassifier(refs []models.HomeReference, radiusKm float64) *PointClassifier {
	return &PointClassifier{refs: refs, radiusKm: radiusKm}
}

// Classify returns the Home/Away state of a single sample
func (c *PointClassifier) Classify(sample *models.LocationSample) LocationState {
	for i := range c.refs {
		if c.matches(sample, &c.refs[i]) {
			return StateHome
		}
	}
	return StateAway
}

func (c *PointClassifier) matches(sample *models.LocationSample, ref *models.HomeReference) bool {
	if sample.HasCoordinates() && ref.HasCoordinates() {
		dist := spatial.HaversineDistanceKm(sample.Latitude, sample.Longitude, ref.Latitude, ref.Longitude)
		if dist <= c.radiusKm {
			return true
		}
	}

	if sample.City != "" && ref.City != "" {
		sampleCity := strings.ToLower(sample.City)
		refCity := strings.ToLower(ref.City)
		if sampleCity == refCity || strings.Contains(sampleCity, refCity) {
			return true
		}
	}

	return false
}
