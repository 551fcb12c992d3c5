package reconstruct_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scantab/internal/reconstruct"
)

func TestAlignToColumns_ConditionNotMet(t *testing.T) {
	grid := reconstruct.Grid{
		{{Text: "a", X: 5}, {Text: "b", X: 60}},
		{{Text: "c", X: 6}, {Text: "d", X: 62}},
	}

	// Anchor count equals the first row's cell count: no realignment.
	same := reconstruct.AlignToColumns(grid, []float64{5, 60})
	assert.Equal(t, grid, same)

	// A single anchor never triggers realignment either.
	same = reconstruct.AlignToColumns(grid, []float64{30})
	assert.Equal(t, grid, same)

	assert.Empty(t, reconstruct.AlignToColumns(nil, []float64{5, 60}))
}

func TestAlignToColumns_MergesSharedAnchor(t *testing.T) {
	grid := reconstruct.Grid{
		{{Text: "Total", X: 5}, {Text: "amount", X: 30}, {Text: "980", X: 200}},
	}
	anchors := []float64{10, 200}

	aligned := reconstruct.AlignToColumns(grid, anchors)

	require.Len(t, aligned, 1)
	require.Len(t, aligned[0], 2)
	assert.Equal(t, "Total amount", aligned[0][0].Text)
	assert.Equal(t, "980", aligned[0][1].Text)
}

func TestAlignToColumns_ShortRowLeavesEmptySlots(t *testing.T) {
	grid := reconstruct.Grid{
		{{Text: "h1", X: 5}, {Text: "h2", X: 100}, {Text: "h3", X: 200}},
		{{Text: "only", X: 198}},
	}
	anchors := []float64{10, 199}

	aligned := reconstruct.AlignToColumns(grid, anchors)

	require.Len(t, aligned, 2)
	assert.Equal(t, "", aligned[1][0].Text)
	assert.Equal(t, "only", aligned[1][1].Text)
}

func TestAlignToColumns_DuplicateTextAssignedByPosition(t *testing.T) {
	// Two cells with identical text resolve by their own retained X, not by
	// a first-match text lookup.
	grid := reconstruct.Grid{
		{{Text: "a", X: 5}, {Text: "b", X: 100}, {Text: "c", X: 200}},
		{{Text: "5", X: 6}, {Text: "5", X: 201}},
	}
	anchors := []float64{5, 200}

	aligned := reconstruct.AlignToColumns(grid, anchors)

	require.Len(t, aligned, 2)
	assert.Equal(t, "5", aligned[1][0].Text)
	assert.Equal(t, "5", aligned[1][1].Text)
}

func TestAlignToColumns_RowWidthEqualsAnchorCount(t *testing.T) {
	grid := reconstruct.Grid{
		{{Text: "a", X: 0}, {Text: "b", X: 50}, {Text: "c", X: 100}, {Text: "d", X: 150}},
		{{Text: "e", X: 1}},
		{{Text: "f", X: 49}, {Text: "g", X: 151}},
	}
	anchors := []float64{0, 50, 150}

	aligned := reconstruct.AlignToColumns(grid, anchors)

	for _, row := range aligned {
		assert.Len(t, row, len(anchors))
	}
}
