package reconstruct

import (
	"sort"

	"scantab/internal/domain"
)

// Cell is an intermediate cell produced by row clustering. It keeps the
// source token's position and confidence so later stages can realign cells
// by identity instead of matching on text.
type Cell struct {
	Text       string
	X          int
	Confidence float64
}

// Row is one clustered line of cells, ordered left to right.
type Row []Cell

// Grid is the not-yet-rectangular intermediate structure: rows may have
// differing lengths.
type Grid []Row

// Default vertical gap when the input has fewer than two distinct Y samples.
const defaultRowGap = 30

// Row threshold bounds in pixels.
const (
	minRowThreshold = 15
	maxRowThreshold = 50
)

// ClusterRows groups tokens into rows using an adaptive vertical-gap
// threshold. Tokens are expected in top-to-bottom reading order as supplied
// by the locator; ordering is a precondition, not re-derived here.
//
// The threshold comparison chains token to token: previousY updates after
// every token, not per row. A single outlier gap can therefore cascade into
// extra row splits. That sensitivity is intentional and matches the
// clustering behavior the thresholds were tuned for.
func ClusterRows(tokens []domain.Token) Grid {
	if len(tokens) == 0 {
		return nil
	}

	threshold := rowThreshold(tokens)

	var grid Grid
	var current Row
	havePrev := false
	prevY := 0

	for _, tok := range tokens {
		if havePrev && float64(absInt(tok.Y-prevY)) >= threshold {
			grid = append(grid, finishRow(current))
			current = nil
		}
		current = append(current, Cell{Text: tok.Text, X: tok.X, Confidence: tok.Confidence})
		prevY = tok.Y
		havePrev = true
	}
	if len(current) > 0 {
		grid = append(grid, finishRow(current))
	}
	return grid
}

// rowThreshold derives the adaptive row-break threshold: 1.3x the median of
// consecutive sorted-Y gaps, clamped to [15, 50].
func rowThreshold(tokens []domain.Token) float64 {
	ys := make([]int, 0, len(tokens))
	for _, tok := range tokens {
		ys = append(ys, tok.Y)
	}
	sort.Ints(ys)

	medianGap := float64(defaultRowGap)
	if g := gaps(ys); len(g) > 0 {
		medianGap = median(g)
	}
	return clamp(medianGap*1.3, minRowThreshold, maxRowThreshold)
}

// finishRow orders a completed row's cells left to right. The sort is stable
// so cells sharing an X keep their encounter order.
func finishRow(row Row) Row {
	sort.SliceStable(row, func(i, j int) bool {
		return row[i].X < row[j].X
	})
	return row
}
