package detection

import (
	"math"
	"testing"
	"time"

	"github.com/triplog/trips-backend-go/internal/models"
)

func homeRef(city string, lat, lon float64) models.HomeReference {
	return models.HomeReference{
		Kind:      models.HomeKindAddress,
		City:      city,
		Latitude:  lat,
		Longitude: lon,
	}
}

func coordSample(lat, lon float64) *models.LocationSample {
	return &models.LocationSample{
		RecordedAt: time.Now(),
		Latitude:   lat,
		Longitude:  lon,
	}
}

func TestClassify_WithinRadiusIsHome(t *testing.T) {
	// Amsterdam home, sample in Haarlem (~18 km away)
	c := NewPointClassifier([]models.HomeReference{homeRef("Amsterdam", 52.37, 4.90)}, 50)

	if got := c.Classify(coordSample(52.38, 4.64)); got != StateHome {
		t.Errorf("expected home, got %s", got)
	}
}

func TestClassify_OutsideRadiusIsAway(t *testing.T) {
	// Amsterdam home, sample in Paris (~430 km away)
	c := NewPointClassifier([]models.HomeReference{homeRef("Amsterdam", 52.37, 4.90)}, 50)

	if got := c.Classify(coordSample(48.85, 2.35)); got != StateAway {
		t.Errorf("expected away, got %s", got)
	}
}

func TestClassify_CityNameMatch(t *testing.T) {
	c := NewPointClassifier([]models.HomeReference{homeRef("Amsterdam", math.NaN(), math.NaN())}, 50)

	tests := []struct {
		city string
		want LocationState
	}{
		{"Amsterdam", StateHome},
		{"amsterdam", StateHome},
		{"Amsterdam-Zuidoost", StateHome}, // sample city contains the reference city
		{"Rotterdam", StateAway},
		{"", StateAway},
	}
	for _, tt := range tests {
		s := &models.LocationSample{
			RecordedAt: time.Now(),
			Latitude:   math.NaN(),
			Longitude:  math.NaN(),
			City:       tt.city,
		}
		if got := c.Classify(s); got != tt.want {
			t.Errorf("city %q: expected %s, got %s", tt.city, tt.want, got)
		}
	}
}

func TestClassify_ExclusionZoneCountsAsHome(t *testing.T) {
	refs := []models.HomeReference{
		homeRef("Amsterdam", 52.37, 4.90),
		{Kind: models.HomeKindExclusion, City: "Utrecht", Latitude: math.NaN(), Longitude: math.NaN()},
	}
	c := NewPointClassifier(refs, 50)

	s := &models.LocationSample{RecordedAt: time.Now(), Latitude: math.NaN(), Longitude: math.NaN(), City: "Utrecht"}
	if got := c.Classify(s); got != StateHome {
		t.Errorf("expected exclusion zone to classify as home, got %s", got)
	}
}

func TestClassify_NoDataFailsOpenToAway(t *testing.T) {
	c := NewPointClassifier([]models.HomeReference{homeRef("Amsterdam", 52.37, 4.90)}, 50)

	s := &models.LocationSample{RecordedAt: time.Now(), Latitude: math.NaN(), Longitude: math.NaN()}
	if got := c.Classify(s); got != StateAway {
		t.Errorf("expected away for sample with no coordinates and no city, got %s", got)
	}
}

func TestClassify_OutOfRangeCoordinatesIgnored(t *testing.T) {
	c := NewPointClassifier([]models.HomeReference{homeRef("Amsterdam", 52.37, 4.90)}, 50)

	// Corrupt coordinates must not match by radius; city still matches
	s := &models.LocationSample{RecordedAt: time.Now(), Latitude: 999, Longitude: -400, City: "Amsterdam"}
	if got := c.Classify(s); got != StateHome {
		t.Errorf("expected city match despite corrupt coordinates, got %s", got)
	}

	s.City = "Paris"
	if got := c.Classify(s); got != StateAway {
		t.Errorf("expected away for corrupt coordinates and foreign city, got %s", got)
	}
}

func TestClassify_NoReferencesAlwaysAway(t *testing.T) {
	c := NewPointClassifier(nil, 50)

	if got := c.Classify(coordSample(52.37, 4.90)); got != StateAway {
		t.Errorf("expected away when no home references exist, got %s", got)
	}
}
