package port

import (
	"context"

	"scantab/internal/domain"
)

// LocateInput carries the image handed to an OCR backend.
type LocateInput struct {
	ImageBytes  []byte
	ContentType string
}

// LocateOutput contains the positioned tokens from one OCR backend.
type LocateOutput struct {
	Tokens  []domain.Token
	Backend string
}

// TextLocator abstracts an external OCR backend that turns an image into
// positioned text tokens.
//
// Contract: tokens are returned in top-to-bottom reading order, text is
// trimmed and non-empty, coordinates are pixel-scale integers, and
// confidence is in [0,1]. Tokens below the backend's minimum confidence are
// filtered before they are returned; row clustering downstream relies on the
// ordering and does not re-derive it.
type TextLocator interface {
	Locate(ctx context.Context, input LocateInput) (*LocateOutput, error)
	Name() string
}
