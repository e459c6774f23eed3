package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategoryRankOrdering(t *testing.T) {
	ordered := []string{
		CategorySignature,
		CategoryTop,
		CategoryBlack,
		CategoryPlatinum,
		CategoryGoldPlus,
		CategoryGold,
	}

	for i := 0; i < len(ordered)-1; i++ {
		assert.Greater(t, CategoryRank(ordered[i]), CategoryRank(ordered[i+1]),
			"%s should outrank %s", ordered[i], ordered[i+1])
	}
}

func TestCategoryRankUnknown(t *testing.T) {
	assert.Equal(t, 0, CategoryRank("SILVER"))
	assert.Equal(t, 0, CategoryRank(""))
	assert.Equal(t, 0, CategoryRank("gold")) // ranks are keyed on normalized upper case
}

func TestShouldUpgrade(t *testing.T) {
	assert.True(t, ShouldUpgrade(CategoryPlatinum, CategoryGold))
	assert.True(t, ShouldUpgrade(CategorySignature, CategoryTop))
	assert.False(t, ShouldUpgrade(CategoryGold, CategoryPlatinum))
	assert.False(t, ShouldUpgrade(CategoryGold, CategoryGold))

	// Unknown manifest category never upgrades, unknown stored always loses
	assert.False(t, ShouldUpgrade("SILVER", CategoryGold))
	assert.True(t, ShouldUpgrade(CategoryGold, "SILVER"))
}
