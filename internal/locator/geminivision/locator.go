package geminivision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"scantab/internal/config"
	"scantab/internal/domain"
	"scantab/internal/locator"
	"scantab/internal/port"
)

const apiBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"

// Name is the provider registry key for this backend.
const Name = "gemini_vision"

// Gemini estimates coarse row/column indexes rather than pixels; scale them
// up so downstream gap thresholds behave like pixel coordinates.
const positionScale = 20

const prompt = `Analyze this document image and extract ALL visible text.
For each word or number you find:
1. Extract the exact text content
2. Estimate its Y position (row number, starting from 1 at top)
3. Estimate its X position (column number, starting from 1 at left)
4. Rate your confidence (0-100%)

Format each entry as: TEXT|Y|X|CONFIDENCE
Example: "Book|5|10|85" means "Book" at row 5, column 10, 85% confident

Extract EVERYTHING you can read, even if confidence is low. Be thorough.`

func init() {
	locator.RegisterProvider(Name, func(cfg *config.LocatorProviderConfig) (port.TextLocator, error) {
		return NewLocator(cfg), nil
	})
}

// Locator implements port.TextLocator using Gemini's vision API with a
// positional extraction prompt. It handles handwriting better than
// conventional OCR at the cost of coarse position estimates.
type Locator struct {
	apiKey        string
	model         string
	endpoint      string
	minConfidence float64
	client        *http.Client
}

// NewLocator creates a Gemini-based text locator.
func NewLocator(cfg *config.LocatorProviderConfig) *Locator {
	model := cfg.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("%s/%s:generateContent", apiBaseURL, model)
	}
	return &Locator{
		apiKey:        cfg.APIKey,
		model:         model,
		endpoint:      endpoint,
		minConfidence: cfg.MinConfidence,
		client:        &http.Client{Timeout: timeout},
	}
}

func (l *Locator) Name() string { return Name }

func (l *Locator) Locate(ctx context.Context, input port.LocateInput) (*port.LocateOutput, error) {
	mimeType, err := toGeminiMimeType(input.ContentType)
	if err != nil {
		return nil, err
	}

	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"role": "user",
				"parts": []map[string]interface{}{
					{
						"inline_data": map[string]interface{}{
							"mime_type": mimeType,
							"data":      base64.StdEncoding.EncodeToString(input.ImageBytes),
						},
					},
					{
						"text": prompt,
					},
				},
			},
		},
		"generationConfig": map[string]interface{}{
			"maxOutputTokens": 16384,
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
	req.Header.Set("x-goog-api-key", l.apiKey)

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling gemini API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, locator.NewRateLimitError(Name, fmt.Errorf("gemini API status %d", resp.StatusCode),
			locator.ParseRetryAfterHeader(resp.Header.Get("Retry-After")))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gemini API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	text, err := responseText(respBody)
	if err != nil {
		return nil, err
	}
	return &port.LocateOutput{
		Tokens:  locator.FilterTokens(parseEntries(text), l.minConfidence),
		Backend: Name,
	}, nil
}

func toGeminiMimeType(contentType string) (string, error) {
	switch contentType {
	case "image/jpeg":
		return "image/jpeg", nil
	case "image/png":
		return "image/png", nil
	default:
		return "", fmt.Errorf("unsupported content type for OCR: %s", contentType)
	}
}

// geminiResponse models the Gemini API response.
type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func responseText(body []byte) (string, error) {
	var resp geminiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("unmarshaling response: %w", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from API")
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}

// parseEntries parses TEXT|Y|X|CONFIDENCE lines from the model output.
// Malformed lines are skipped rather than failing the whole extraction.
func parseEntries(text string) []domain.Token {
	var tokens []domain.Token
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if !strings.Contains(line, "|") {
			continue
		}
		parts := strings.Split(line, "|")
		if len(parts) < 4 {
			continue
		}

		word := strings.Trim(strings.TrimSpace(parts[0]), `"`)
		y, errY := strconv.Atoi(strings.TrimSpace(parts[1]))
		x, errX := strconv.Atoi(strings.TrimSpace(parts[2]))
		conf, errC := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(parts[3]), "%"), 64)
		if errY != nil || errX != nil || errC != nil {
			continue
		}

		tokens = append(tokens, domain.Token{
			Text:       word,
			Y:          y * positionScale,
			X:          x * positionScale,
			Confidence: conf / 100,
		})
	}
	return tokens
}
