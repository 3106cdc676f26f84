// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package draw

import (
	"errors"
	"math/rand/v2"
)

var (
	ErrExhaustedPool = errors.New("everyone in the pool has been drawn")
	ErrEmptyRoster   = errors.New("roster is empty")
)

// Rand picks an index in [0, n)
type Rand interface {
	IntN(n int) int
}

// runtimeRand uses the math/rand/v2 global generator, which is
// seeded randomly and safe for concurrent use
type runtimeRand struct{}

func (runtimeRand) IntN(n int) int { return rand.IntN(n) }

// DefaultRand is the generator used when none is supplied
var DefaultRand Rand = runtimeRand{}

// State is the draw session record. History is most recent first.
// Pool is only consulted in no-repeat mode.
type State struct {
	Roster     []string
	Pool       []string
	History    []string
	RepeatMode bool
}

// NewState starts a session with a full pool and empty history
func NewState(roster []string, repeatMode bool) State {
	return State{
		Roster:     clone(roster),
		Pool:       clone(roster),
		History:    []string{},
		RepeatMode: repeatMode,
	}
}

// Reset refills the pool from the roster and clears history
func Reset(st State) State {
	return NewState(st.Roster, st.RepeatMode)
}

// SetRepeatMode switches modes without touching pool or history
func SetRepeatMode(st State, repeatMode bool) State {
	next := st.copy()
	next.RepeatMode = repeatMode
	return next
}

// CanDraw reports whether Draw would succeed
func (st State) CanDraw() bool {
	if st.RepeatMode {
		return len(st.Roster) > 0
	}
	return len(st.Pool) > 0
}

// Remaining is the number of names left in the pool
func (st State) Remaining() int {
	return len(st.Pool)
}

func (st State) copy() State {
	return State{
		Roster:     clone(st.Roster),
		Pool:       clone(st.Pool),
		History:    clone(st.History),
		RepeatMode: st.RepeatMode,
	}
}

// Result describes a single settled draw
type Result struct {
	Winner string
	// Index is the winner's position in the selection source
	Index int
}

type Engine struct {
	rng Rand
}

func NewEngine(rng Rand) *Engine {
	if rng == nil {
		rng = DefaultRand
	}
	return &Engine{rng: rng}
}

// Draw selects one winner uniformly from the roster (repeat mode) or
// the remaining pool. The given state is left untouched; the updated
// state is returned.
func (e *Engine) Draw(st State) (Result, State, error) {
	source := st.Pool
	if st.RepeatMode {
		if len(st.Roster) == 0 {
			return Result{}, st, ErrEmptyRoster
		}
		source = st.Roster
	} else if len(st.Pool) == 0 {
		return Result{}, st, ErrExhaustedPool
	}

	idx := e.rng.IntN(len(source))
	winner := source[idx]

	next := st.copy()
	next.History = append([]string{winner}, next.History...)
	if !st.RepeatMode {
		next.Pool = append(next.Pool[:idx], next.Pool[idx+1:]...)
	}

	return Result{Winner: winner, Index: idx}, next, nil
}

func clone(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}
