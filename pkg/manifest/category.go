package manifest

// categoryRanks is the fixed precedence of loyalty categories, highest first.
// Anything not listed ranks 0.
var categoryRanks = map[string]int{
	CategorySignature: 7,
	CategoryTop:       6,
	CategoryBlack:     5,
	CategoryPlatinum:  4,
	CategoryGoldPlus:  3,
	CategoryGold:      2,
}

// CategoryRank returns the precedence of a category, 0 when unrecognized
func CategoryRank(category string) int {
	return categoryRanks[category]
}

// ShouldUpgrade reports whether the category seen on the manifest outranks
// the one already stored for the passenger
func ShouldUpgrade(manifestCategory, storedCategory string) bool {
	return CategoryRank(manifestCategory) > CategoryRank(storedCategory)
}
