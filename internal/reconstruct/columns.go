package reconstruct

import (
	"math"
	"sort"

	"scantab/internal/domain"
)

// Minimum horizontal gap in pixels before two X values belong to separate
// column clusters.
const minColumnGap = 20

// ClusterColumns derives column anchor positions from the horizontal
// coordinates of the full token sequence. Each anchor is the median X of one
// cluster; anchors come back in ascending order. Returns nil when the input
// has fewer than two X samples, which skips column realignment downstream.
func ClusterColumns(tokens []domain.Token) []float64 {
	xs := make([]int, 0, len(tokens))
	for _, tok := range tokens {
		xs = append(xs, tok.X)
	}
	sort.Ints(xs)

	g := gaps(xs)
	if len(g) == 0 {
		return nil
	}
	threshold := math.Max(minColumnGap, median(g)*2)
	return clusterAt(xs, threshold)
}

// clusterAt walks ascending X values, growing a cluster while the next value
// stays within threshold of the last value added, and closing it otherwise.
func clusterAt(sortedXs []int, threshold float64) []float64 {
	var anchors []float64
	cluster := []float64{float64(sortedXs[0])}

	for _, x := range sortedXs[1:] {
		if float64(x)-cluster[len(cluster)-1] < threshold {
			cluster = append(cluster, float64(x))
			continue
		}
		anchors = append(anchors, median(cluster))
		cluster = []float64{float64(x)}
	}
	return append(anchors, median(cluster))
}
