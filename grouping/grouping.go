// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package grouping

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"strings"

	"github.com/danielhkuo/quickly-draw/labels"
	"github.com/danielhkuo/quickly-draw/models"
)

// DefaultTheme is used when a grouping request has no theme
const DefaultTheme = "创新与未来"

// MinGroupSize is the smallest group the engine will build
const MinGroupSize = 2

var (
	ErrEmptyRoster      = errors.New("roster is empty")
	ErrInvalidGroupSize = errors.New("group size must be at least 2")
)

// Themes are the presets offered for generated group names
var Themes = []string{
	"创新与未来",
	"森林与大自然",
	"超级英雄与传奇",
	"宇宙与星际探险",
	"美食与甜点",
	"中国传统色",
}

// LabelGenerator names groups. It may fail or return fewer labels than
// asked for; the engine fills the gaps.
type LabelGenerator interface {
	GenerateLabels(ctx context.Context, count int, theme string) ([]string, error)
}

// Rand picks an index in [0, n)
type Rand interface {
	IntN(n int) int
}

type runtimeRand struct{}

func (runtimeRand) IntN(n int) int { return rand.IntN(n) }

type Engine struct {
	labels   LabelGenerator
	fallback labels.Static
	rng      Rand
}

// NewEngine creates a grouping engine. A nil generator means every
// group gets its fallback label.
func NewEngine(gen LabelGenerator, fallback labels.Static, rng Rand) *Engine {
	if gen == nil {
		gen = fallback
	}
	if rng == nil {
		rng = runtimeRand{}
	}
	return &Engine{labels: gen, fallback: fallback, rng: rng}
}

// NumGroups is ceil(n / size)
func NumGroups(n, size int) int {
	if n <= 0 || size <= 0 {
		return 0
	}
	return (n + size - 1) / size
}

// Group shuffles names and splits them into groups of size groupSize;
// the last group holds the remainder. Label generation failures never
// fail the grouping.
func (e *Engine) Group(ctx context.Context, names []string, groupSize int, theme string) ([]models.GroupResult, error) {
	if len(names) == 0 {
		return nil, ErrEmptyRoster
	}
	if groupSize < MinGroupSize {
		return nil, ErrInvalidGroupSize
	}
	if strings.TrimSpace(theme) == "" {
		theme = DefaultTheme
	}

	shuffled := e.Shuffle(names)
	numGroups := NumGroups(len(shuffled), groupSize)

	generated, err := e.labels.GenerateLabels(ctx, numGroups, theme)
	if err != nil {
		slog.Warn("label generation failed, using fallback labels",
			"error", err,
			"groups", numGroups,
			"theme", theme,
		)
		generated = nil
	}

	groups := make([]models.GroupResult, 0, numGroups)
	for i := 0; i < numGroups; i++ {
		end := min((i+1)*groupSize, len(shuffled))

		name := ""
		if i < len(generated) {
			name = strings.TrimSpace(generated[i])
		}
		if name == "" {
			name = e.fallback.Label(i + 1)
		}

		groups = append(groups, models.GroupResult{
			GroupName: name,
			Members:   append([]string(nil), shuffled[i*groupSize:end]...),
		})
	}

	return groups, nil
}

// Shuffle returns a uniformly random permutation of names (Fisher-Yates)
func (e *Engine) Shuffle(names []string) []string {
	out := append([]string(nil), names...)
	for i := len(out) - 1; i > 0; i-- {
		j := e.rng.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
