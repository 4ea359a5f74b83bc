package ordering

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gino831/DQA-Environmental-Standard-Checker/internal/standard"
)

func TestParseDirection(t *testing.T) {
	dir, err := ParseDirection(" UP ")
	require.NoError(t, err)
	assert.Equal(t, Up, dir)

	_, err = ParseDirection("sideways")
	assert.Error(t, err)
}

func TestMoveCategory(t *testing.T) {
	order := []string{"A", "B", "C"}

	moved, ok := MoveCategory(order, "B", Up)
	require.True(t, ok)
	assert.Equal(t, []string{"B", "A", "C"}, moved)
	assert.Equal(t, []string{"A", "B", "C"}, order, "input must not change")

	_, ok = MoveCategory(order, "A", Up)
	assert.False(t, ok)
	_, ok = MoveCategory(order, "C", Down)
	assert.False(t, ok)
	_, ok = MoveCategory(order, "Z", Down)
	assert.False(t, ok)
}

func TestMoveSubcategoryAppendsUnknownLabel(t *testing.T) {
	order := []string{"溫度類", "濕度類"}

	out, changed := MoveSubcategory(order, "包裝類", Up)
	require.True(t, changed)
	assert.Equal(t, []string{"溫度類", "包裝類", "濕度類"}, out)

	out, changed = MoveSubcategory(order, "包裝類", Down)
	require.True(t, changed, "the append alone is a change")
	assert.Equal(t, []string{"溫度類", "濕度類", "包裝類"}, out)

	_, changed = MoveSubcategory(order, "溫度類", Up)
	assert.False(t, changed)
}

func TestMoveItemWithinSubcategory(t *testing.T) {
	collection := []standard.Standard{
		{ID: "a", Category: "MOXA Standard", StressType: "temperature-low"},
		{ID: "x", Category: "Marine Standard", StressType: "temperature-low"},
		{ID: "b", Category: "MOXA Standard", StressType: "temperature-high"},
		{ID: "c", Category: "MOXA Standard", StressType: "vibration"},
	}

	out, moved := MoveItem(collection, "b", Up)
	require.True(t, moved)
	assert.Equal(t, []string{"b", "x", "a", "c"}, ids(out))
	assert.Equal(t, []string{"a", "x", "b", "c"}, ids(collection))

	_, moved = MoveItem(collection, "a", Up)
	assert.False(t, moved, "first in its group")
	_, moved = MoveItem(collection, "c", Down)
	assert.False(t, moved, "only member of its group")
	_, moved = MoveItem(collection, "nope", Down)
	assert.False(t, moved)
}

func TestMoveItemBlankCategoryGroupsWithOther(t *testing.T) {
	collection := []standard.Standard{
		{ID: "a", Category: ""},
		{ID: "b", Category: "Other"},
	}
	out, moved := MoveItem(collection, "a", Down)
	require.True(t, moved)
	assert.Equal(t, []string{"b", "a"}, ids(out))
}

func TestGroupByOrdersAndFallbacks(t *testing.T) {
	collection := []standard.Standard{
		{ID: "1", Category: "Zeta", StressType: "humidity"},
		{ID: "2", Category: "", StressType: "vibration"},
		{ID: "3", Category: "MOXA Standard", StressType: "shock"},
		{ID: "4", Category: "MOXA Standard", StressType: "temperature-low"},
		{ID: "5", Category: "Alpha", StressType: "marine"},
		{ID: "6", Category: "MOXA Standard", StressType: "vibration"},
		{ID: "7", Category: "MOXA Standard", StressType: "weird"},
	}
	categoryOrder := []string{"MOXA Standard", "Other"}
	subcategoryOrder := []string{"溫度類", "機構類"}

	groups := GroupBy(collection, categoryOrder, subcategoryOrder)
	require.Len(t, groups, 4)
	assert.Equal(t, "MOXA Standard", groups[0].Name)
	assert.Equal(t, "Other", groups[1].Name)
	assert.Equal(t, "Zeta", groups[2].Name)
	assert.Equal(t, "Alpha", groups[3].Name)

	moxa := groups[0].Subgroups
	require.Len(t, moxa, 3)
	assert.Equal(t, "溫度類", moxa[0].Name)
	assert.Equal(t, "機構類", moxa[1].Name)
	assert.Equal(t, []string{"3", "6"}, ids(moxa[1].Items))
	assert.Equal(t, "其他", moxa[2].Name)
	assert.Equal(t, "📋", moxa[2].Icon)

	assert.Equal(t, []string{"MOXA Standard", "Other"}, categoryOrder, "render must not persist unknown labels")
	assert.Equal(t, []string{"溫度類", "機構類"}, subcategoryOrder)
}

func TestGroupBySkipsEmptyOrderedCategories(t *testing.T) {
	groups := GroupBy([]standard.Standard{{ID: "1", Category: "Railway Standard"}}, standard.DefaultCategoryOrder(), nil)
	require.Len(t, groups, 1)
	assert.Equal(t, "Railway Standard", groups[0].Name)
	assert.Empty(t, GroupBy(nil, standard.DefaultCategoryOrder(), nil))
}

func ids(items []standard.Standard) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.ID)
	}
	return out
}
