// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package labels

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultPrefix is used by the fallback generator when none is configured
const DefaultPrefix = "Group"

var ErrMalformedResponse = errors.New("label response is not a JSON array of strings")

// Generator produces count short labels for a theme
type Generator interface {
	GenerateLabels(ctx context.Context, count int, theme string) ([]string, error)
}

// Static is the offline generator: "<Prefix> 1", "<Prefix> 2", ...
type Static struct {
	Prefix string
}

// Label returns the label for a 1-based group index
func (s Static) Label(index int) string {
	prefix := s.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return prefix + " " + strconv.Itoa(index)
}

// GenerateLabels never fails
func (s Static) GenerateLabels(_ context.Context, count int, _ string) ([]string, error) {
	out := make([]string, 0, count)
	for i := 1; i <= count; i++ {
		out = append(out, s.Label(i))
	}
	return out, nil
}

// DecodeLabels parses a JSON array of strings, dropping blank
// entries and anything past count
func DecodeLabels(text string, count int) ([]string, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	var raw []string
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	out := make([]string, 0, count)
	for _, l := range raw {
		if len(out) == count {
			break
		}
		l = strings.TrimSpace(l)
		if l != "" {
			out = append(out, l)
		}
	}
	return out, nil
}

type timeoutGenerator struct {
	next    Generator
	timeout time.Duration
}

// WithTimeout bounds every call to next. A zero timeout returns next unchanged.
func WithTimeout(next Generator, timeout time.Duration) Generator {
	if timeout <= 0 {
		return next
	}
	return &timeoutGenerator{next: next, timeout: timeout}
}

func (g *timeoutGenerator) GenerateLabels(ctx context.Context, count int, theme string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	type result struct {
		labels []string
		err    error
	}
	done := make(chan result, 1)
	go func() {
		l, err := g.next.GenerateLabels(ctx, count, theme)
		done <- result{l, err}
	}()

	select {
	case res := <-done:
		return res.labels, res.err
	case <-ctx.Done():
		return nil, fmt.Errorf("label generation timed out after %s: %w", g.timeout, ctx.Err())
	}
}
