package reconstruct

import (
	"context"
	"fmt"
	"time"

	"scantab/internal/domain"
	"scantab/internal/port"
)

// Builder orchestrates the reconstruction pipeline: locate tokens, cluster
// rows and columns, align, normalize, and compute aggregate statistics.
//
// Extract always returns a structured result; stage errors and panics are
// recovered into a failure result rather than propagated. The pipeline holds
// no state between calls.
type Builder struct {
	locator port.TextLocator
}

// NewBuilder creates a Builder backed by the given locator.
func NewBuilder(locator port.TextLocator) *Builder {
	return &Builder{locator: locator}
}

// Extract runs the full pipeline for one image.
func (b *Builder) Extract(ctx context.Context, input port.LocateInput) (result *domain.ExtractionResult) {
	start := time.Now()
	backend := b.locator.Name()

	defer func() {
		if r := recover(); r != nil {
			result = failure(fmt.Sprintf("reconstruction failed: %v", r), backend, start)
		}
	}()

	out, err := b.locator.Locate(ctx, input)
	if err != nil {
		return failure(err.Error(), backend, start)
	}
	if out.Backend != "" {
		backend = out.Backend
	}
	if len(out.Tokens) == 0 {
		return failure(domain.ErrNoTextDetected.Error(), backend, start)
	}

	grid := ClusterRows(out.Tokens)
	grid = AlignToColumns(grid, ClusterColumns(out.Tokens))
	if len(grid) == 0 {
		return failure(domain.ErrNoTableStructure.Error(), backend, start)
	}

	table := Normalize(grid)

	return &domain.ExtractionResult{
		Success:         true,
		RowsExtracted:   len(table.Rows),
		ColumnsDetected: table.Width(),
		Table:           table,
		Confidence:      round4(meanConfidence(out.Tokens)),
		ElapsedSeconds:  round2(time.Since(start).Seconds()),
		Backend:         backend,
	}
}

func failure(msg, backend string, start time.Time) *domain.ExtractionResult {
	return &domain.ExtractionResult{
		Success:        false,
		Error:          msg,
		ElapsedSeconds: round2(time.Since(start).Seconds()),
		Backend:        backend,
	}
}

// meanConfidence is the arithmetic mean over all tokens, not per cell.
func meanConfidence(tokens []domain.Token) float64 {
	if len(tokens) == 0 {
		return 0
	}
	var sum float64
	for _, tok := range tokens {
		sum += tok.Confidence
	}
	return sum / float64(len(tokens))
}
