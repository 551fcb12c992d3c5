package reconstruct

import "math"

// AlignToColumns snaps each row's cells to the nearest column anchor,
// producing rows of exactly len(anchors) cells. Cells landing on an occupied
// anchor are concatenated onto it with a single space, in encounter order.
// Cells carry their own X from row clustering, so assignment is by token
// identity and stays deterministic even when a row repeats the same text.
//
// Realignment applies only when the anchor count is strictly between 1 and
// the first row's natural cell count; otherwise the grid is returned
// unchanged.
func AlignToColumns(grid Grid, anchors []float64) Grid {
	if len(grid) == 0 {
		return grid
	}
	if len(anchors) <= 1 || len(anchors) >= len(grid[0]) {
		return grid
	}

	aligned := make(Grid, 0, len(grid))
	for _, row := range grid {
		out := make(Row, len(anchors))
		for _, cell := range row {
			idx := nearestAnchor(float64(cell.X), anchors)
			if out[idx].Text == "" {
				out[idx] = cell
			} else {
				out[idx].Text += " " + cell.Text
			}
		}
		aligned = append(aligned, out)
	}
	return aligned
}

func nearestAnchor(x float64, anchors []float64) int {
	best := 0
	bestDist := math.Abs(x - anchors[0])
	for i := 1; i < len(anchors); i++ {
		if d := math.Abs(x - anchors[i]); d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}
