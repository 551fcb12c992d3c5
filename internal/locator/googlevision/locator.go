package googlevision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"scantab/internal/config"
	"scantab/internal/domain"
	"scantab/internal/locator"
	"scantab/internal/port"
)

const apiURL = "https://vision.googleapis.com/v1/images:annotate"

// Name is the provider registry key for this backend.
const Name = "google_vision"

func init() {
	locator.RegisterProvider(Name, func(cfg *config.LocatorProviderConfig) (port.TextLocator, error) {
		return NewLocator(cfg), nil
	})
}

// Locator implements port.TextLocator using the Google Cloud Vision REST API
// in DOCUMENT_TEXT_DETECTION mode. Each recognized word becomes one token
// positioned at the center of its bounding box.
type Locator struct {
	apiKey        string
	endpoint      string
	minConfidence float64
	client        *http.Client
}

// NewLocator creates a Google Vision backed text locator.
func NewLocator(cfg *config.LocatorProviderConfig) *Locator {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = apiURL
	}
	return &Locator{
		apiKey:        cfg.APIKey,
		endpoint:      endpoint,
		minConfidence: cfg.MinConfidence,
		client:        &http.Client{Timeout: timeout},
	}
}

func (l *Locator) Name() string { return Name }

func (l *Locator) Locate(ctx context.Context, input port.LocateInput) (*port.LocateOutput, error) {
	reqBody := map[string]interface{}{
		"requests": []map[string]interface{}{
			{
				"image": map[string]interface{}{
					"content": base64.StdEncoding.EncodeToString(input.ImageBytes),
				},
				"features": []map[string]interface{}{
					{"type": "DOCUMENT_TEXT_DETECTION"},
				},
			},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", l.apiKey)

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling vision API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, locator.NewRateLimitError(Name, fmt.Errorf("vision API status %d", resp.StatusCode),
			locator.ParseRetryAfterHeader(resp.Header.Get("Retry-After")))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("vision API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	tokens, err := parseResponse(respBody)
	if err != nil {
		return nil, err
	}
	return &port.LocateOutput{
		Tokens:  locator.FilterTokens(tokens, l.minConfidence),
		Backend: Name,
	}, nil
}

// visionResponse models the slice of the annotate response we consume.
type visionResponse struct {
	Responses []struct {
		Error *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
		FullTextAnnotation *struct {
			Pages []visionPage `json:"pages"`
		} `json:"fullTextAnnotation"`
	} `json:"responses"`
}

type visionPage struct {
	Blocks []struct {
		Paragraphs []struct {
			Words []visionWord `json:"words"`
		} `json:"paragraphs"`
	} `json:"blocks"`
}

type visionWord struct {
	Symbols []struct {
		Text       string  `json:"text"`
		Confidence float64 `json:"confidence"`
	} `json:"symbols"`
	BoundingBox struct {
		Vertices []struct {
			X int `json:"x"`
			Y int `json:"y"`
		} `json:"vertices"`
	} `json:"boundingBox"`
}

// parseResponse walks page > block > paragraph > word and emits one token per
// word, positioned at the mean of its bounding-box vertices with confidence
// averaged over symbols. The traversal order matches the API's top-to-bottom
// reading order, which downstream row clustering relies on.
func parseResponse(body []byte) ([]domain.Token, error) {
	var resp visionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}
	if len(resp.Responses) == 0 {
		return nil, nil
	}
	if apiErr := resp.Responses[0].Error; apiErr != nil {
		return nil, fmt.Errorf("vision API error %d: %s", apiErr.Code, apiErr.Message)
	}
	if resp.Responses[0].FullTextAnnotation == nil {
		return nil, nil
	}

	var tokens []domain.Token
	for _, page := range resp.Responses[0].FullTextAnnotation.Pages {
		for _, block := range page.Blocks {
			for _, para := range block.Paragraphs {
				for _, word := range para.Words {
					if tok, ok := wordToken(word); ok {
						tokens = append(tokens, tok)
					}
				}
			}
		}
	}
	return tokens, nil
}

func wordToken(word visionWord) (domain.Token, bool) {
	if len(word.Symbols) == 0 || len(word.BoundingBox.Vertices) == 0 {
		return domain.Token{}, false
	}

	var text string
	var confSum float64
	for _, sym := range word.Symbols {
		text += sym.Text
		confSum += sym.Confidence
	}

	var xSum, ySum int
	for _, v := range word.BoundingBox.Vertices {
		xSum += v.X
		ySum += v.Y
	}
	n := len(word.BoundingBox.Vertices)

	return domain.Token{
		Text:       text,
		Y:          ySum / n,
		X:          xSum / n,
		Confidence: confSum / float64(len(word.Symbols)),
	}, true
}
