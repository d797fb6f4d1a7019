package detection

import (
	"sort"
	"strings"

	"github.com/triplog/trips-backend-go/internal/models"
)

// dominanceShare is the fraction of total duration a single city or country
// must hold to be named alone in a trip title.
const dominanceShare = 0.5

// maxTitleNames caps how many cities or countries a list title names
const maxTitleNames = 3

// GenerateTitle produces the display title and trip type for a finalized away
// episode. filtered is the significance-filtered visited-location set;
// unfiltered is the full working set, needed because the multi-country rule
// recomputes country aggregates before per-city filtering. The function is
// pure and deterministic: duration ties are broken by insertion order of
// first observation.
//
// Rules, first match wins:
//  1. any filtered location in the home country: title by city within that
//     subset (home-country trips are never titled by country name)
//  2. exactly one foreign country: dominant-city rule for up to three cities,
//     the bare country name beyond that
//  3. two or more countries whose unfiltered aggregate clears the country
//     floor: top countries by duration
//  4. one country holding at least half the filtered total: dominant-city
//     rule within it
//  5. fallback: the single most-visited city of the longest-aggregate country
func GenerateTitle(filtered, unfiltered []*VisitedLocation, homeCountryCode string, minCountryHours float64) (string, string) {
	if len(filtered) == 0 {
		return "", ""
	}

	home := strings.ToLower(homeCountryCode)

	// Rule 1: home-country short-circuit
	if home != "" {
		var subset []*VisitedLocation
		for _, e := range filtered {
			if e.CountryCode == home {
				subset = append(subset, e)
			}
		}
		if len(subset) > 0 {
			return titleByCities(subset)
		}
	}

	// Rule 2: single foreign country
	countries := distinctCountries(filtered)
	if len(countries) == 1 {
		if len(filtered) > maxTitleNames && countries[0] != UnknownCountry {
			return "Trip to " + countryDisplayName(filtered, countries[0]), models.TripTypeCountry
		}
		return titleByCities(filtered)
	}

	// Rule 3: multiple significant countries, judged on unfiltered aggregates
	if title, ok := multiCountryTitle(unfiltered, minCountryHours); ok {
		return title, models.TripTypeMultiCountry
	}

	// Rule 4: single dominant country
	total := sumDuration(filtered)
	countryTotals := countryDurations(filtered)
	if total > 0 {
		for _, ct := range countryTotals {
			if ct.hours/total >= dominanceShare {
				return titleByCities(entriesOfCountry(filtered, ct.code))
			}
		}
	}

	// Rule 5: most-visited city of the longest-aggregate country
	sort.SliceStable(countryTotals, func(i, j int) bool {
		return countryTotals[i].hours > countryTotals[j].hours
	})
	top := entriesOfCountry(filtered, countryTotals[0].code)
	best := top[0]
	for _, e := range top[1:] {
		if e.DurationHours > best.DurationHours {
			best = e
		}
	}
	return "Trip to " + best.City, models.TripTypeCity
}

// titleByCities applies the dominant-city rule to a set of entries from one
// country (or the home-country subset): a single city, or a city holding at
// least half the subset's duration, is named alone; otherwise the top cities
// by duration are listed.
func titleByCities(entries []*VisitedLocation) (string, string) {
	if len(entries) == 1 {
		return "Trip to " + entries[0].City, models.TripTypeCity
	}

	subtotal := sumDuration(entries)
	if subtotal > 0 {
		for _, e := range entries {
			if e.DurationHours/subtotal >= dominanceShare {
				return "Trip to " + e.City, models.TripTypeCity
			}
		}
	}

	ranked := make([]*VisitedLocation, len(entries))
	copy(ranked, entries)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].DurationHours > ranked[j].DurationHours
	})

	n := len(ranked)
	if n > maxTitleNames {
		n = maxTitleNames
	}
	names := make([]string, 0, n)
	for _, e := range ranked[:n] {
		names = append(names, e.City)
	}
	return "Trip to " + strings.Join(names, ", "), models.TripTypeMultiCity
}

// multiCountryTitle lists the top countries when at least two clear the
// country floor on unfiltered aggregates, excluding the unknown sentinel
func multiCountryTitle(unfiltered []*VisitedLocation, minCountryHours float64) (string, bool) {
	totals := countryDurations(unfiltered)

	var qualifying []countryDuration
	for _, ct := range totals {
		if ct.code == UnknownCountry {
			continue
		}
		if ct.hours >= minCountryHours {
			qualifying = append(qualifying, ct)
		}
	}
	if len(qualifying) < 2 {
		return "", false
	}

	sort.SliceStable(qualifying, func(i, j int) bool {
		return qualifying[i].hours > qualifying[j].hours
	})

	n := len(qualifying)
	if n > maxTitleNames {
		n = maxTitleNames
	}
	names := make([]string, 0, n)
	for _, ct := range qualifying[:n] {
		names = append(names, countryDisplayName(unfiltered, ct.code))
	}
	return "Trip to " + strings.Join(names, ", "), true
}

type countryDuration struct {
	code  string
	hours float64
}

// countryDurations aggregates per-country duration, ordered by the country's
// first observation
func countryDurations(entries []*VisitedLocation) []countryDuration {
	index := make(map[string]int)
	var totals []countryDuration
	for _, e := range entries {
		i, ok := index[e.CountryCode]
		if !ok {
			i = len(totals)
			index[e.CountryCode] = i
			totals = append(totals, countryDuration{code: e.CountryCode})
		}
		totals[i].hours += e.DurationHours
	}
	return totals
}

func distinctCountries(entries []*VisitedLocation) []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range entries {
		if !seen[e.CountryCode] {
			seen[e.CountryCode] = true
			out = append(out, e.CountryCode)
		}
	}
	return out
}

func entriesOfCountry(entries []*VisitedLocation, code string) []*VisitedLocation {
	var out []*VisitedLocation
	for _, e := range entries {
		if e.CountryCode == code {
			out = append(out, e)
		}
	}
	return out
}

func countryDisplayName(entries []*VisitedLocation, code string) string {
	for _, e := range entries {
		if e.CountryCode == code && e.CountryName != "" {
			return e.CountryName
		}
	}
	return strings.ToUpper(code)
}

func sumDuration(entries []*VisitedLocation) float64 {
	total := 0.0
	for _, e := range entries {
		total += e.DurationHours
	}
	return total
}
