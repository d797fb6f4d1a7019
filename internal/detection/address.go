package detection

// addressCityFields lists the geocode payload fields that may carry a
// city-equivalent name, evaluated in priority order.
var addressCityFields = []string{"city", "town", "village", "municipality"}

// CityFromAddress resolves a city-equivalent name from a reverse-geocoded
// address payload. Returns the first present candidate field, or empty when
// none applies.
func CityFromAddress(addr map[string]string) string {
	for _, field := range addressCityFields {
		if v, ok := addr[field]; ok && v != "" {
			return v
		}
	}
	return ""
}
