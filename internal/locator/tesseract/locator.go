package tesseract

import (
	"context"

	"github.com/otiai10/gosseract/v2"

	"scantab/internal/config"
	"scantab/internal/domain"
	"scantab/internal/locator"
	"scantab/internal/port"
)

// Name is the provider registry key for this backend.
const Name = "tesseract"

func init() {
	locator.RegisterProvider(Name, func(cfg *config.LocatorProviderConfig) (port.TextLocator, error) {
		return NewLocator(cfg), nil
	})
}

// Locator implements port.TextLocator using a local Tesseract installation
// via gosseract. Each word-level bounding box becomes one token positioned
// at its center. Tesseract emits boxes in reading order.
type Locator struct {
	language      string
	minConfidence float64
	clientFactory func() *gosseract.Client
}

// NewLocator creates a Tesseract-backed text locator.
func NewLocator(cfg *config.LocatorProviderConfig) *Locator {
	language := cfg.Language
	if language == "" {
		language = "eng"
	}
	return &Locator{
		language:      language,
		minConfidence: cfg.MinConfidence,
		clientFactory: gosseract.NewClient,
	}
}

func (l *Locator) Name() string { return Name }

func (l *Locator) Locate(ctx context.Context, input port.LocateInput) (*port.LocateOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := l.clientFactory()
	defer c.Close()

	if err := c.SetLanguage(l.language); err != nil {
		return nil, err
	}
	if err := c.SetImageFromBytes(input.ImageBytes); err != nil {
		return nil, err
	}

	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, err
	}

	tokens := make([]domain.Token, 0, len(boxes))
	for _, b := range boxes {
		tokens = append(tokens, domain.Token{
			Text:       b.Word,
			Y:          (b.Box.Min.Y + b.Box.Max.Y) / 2,
			X:          (b.Box.Min.X + b.Box.Max.X) / 2,
			Confidence: b.Confidence / 100,
		})
	}

	return &port.LocateOutput{
		Tokens:  locator.FilterTokens(tokens, l.minConfidence),
		Backend: Name,
	}, nil
}
