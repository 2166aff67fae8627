package portion

// Reference returns a household-measure phrase approximating grams.
func Reference(grams float64) string {
	switch {
	case grams <= 30:
		return "About 2 tablespoons"
	case grams <= 60:
		return "About 1/4 cup"
	case grams <= 120:
		return "About 1/2 cup"
	case grams <= 240:
		return "About 1 cup"
	case grams <= 480:
		return "About 2 cups"
	default:
		return "More than 2 cups"
	}
}
