package locator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"scantab/internal/port"
)

// circuitState tracks rate-limit backoff for a single backend.
type circuitState struct {
	mu      sync.RWMutex
	resetAt time.Time // zero value = closed (healthy)
}

func (c *circuitState) isOpenWithReset(now time.Time) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resetAt, !c.resetAt.IsZero() && now.Before(c.resetAt)
}

func (c *circuitState) open(resetAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetAt = resetAt
}

// ChainLocator tries OCR backends in configured order, skipping those with
// open rate-limit circuits. A backend that responds successfully but finds no
// text is remembered and only wins when every later backend also comes up
// empty or fails. It implements port.TextLocator.
type ChainLocator struct {
	locators []port.TextLocator
	circuits []*circuitState
}

// NewChainLocator creates a ChainLocator from an ordered list of backends.
func NewChainLocator(locators []port.TextLocator) *ChainLocator {
	circuits := make([]*circuitState, len(locators))
	for i := range circuits {
		circuits[i] = &circuitState{}
	}
	return &ChainLocator{
		locators: locators,
		circuits: circuits,
	}
}

func (c *ChainLocator) Name() string { return "chain" }

func (c *ChainLocator) Locate(ctx context.Context, input port.LocateInput) (*port.LocateOutput, error) {
	now := time.Now()
	var lastErr error
	var emptyOut *port.LocateOutput
	allRateLimited := true
	var earliestReset time.Time

	for i, loc := range c.locators {
		if resetAt, open := c.circuits[i].isOpenWithReset(now); open {
			log.Printf("locator.ChainLocator: skipping %s (circuit open until %s)", loc.Name(), resetAt.Format(time.RFC3339))
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
			continue
		}

		out, err := loc.Locate(ctx, input)
		if err == nil {
			if len(out.Tokens) > 0 {
				return out, nil
			}
			log.Printf("locator.ChainLocator: %s found no text, trying next backend", loc.Name())
			if emptyOut == nil {
				emptyOut = out
			}
			allRateLimited = false
			continue
		}

		log.Printf("locator.ChainLocator: %s failed: %v", loc.Name(), err)
		lastErr = err

		var rlErr *RateLimitError
		if errors.As(err, &rlErr) {
			resetAt := now.Add(rlErr.RetryAfter)
			c.circuits[i].open(resetAt)
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
		} else {
			allRateLimited = false
		}
	}

	if emptyOut != nil {
		return emptyOut, nil
	}

	if lastErr == nil || allRateLimited {
		// Every backend was skipped or rate limited
		retryAfter := time.Until(earliestReset)
		if retryAfter < 0 {
			retryAfter = time.Second
		}
		return nil, NewRateLimitError("all", fmt.Errorf("all backends rate limited"), int(retryAfter.Seconds()))
	}

	return nil, fmt.Errorf("all backends failed: %w", lastErr)
}
