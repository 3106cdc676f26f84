// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package draw

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// seqRand returns a fixed sequence of indexes, clamped to n
type seqRand struct {
	seq []int
	pos int
}

func (s *seqRand) IntN(n int) int {
	v := s.seq[s.pos%len(s.seq)]
	s.pos++
	if v >= n {
		return n - 1
	}
	return v
}

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func TestNewState(t *testing.T) {
	roster := []string{"a", "b", "c"}
	st := NewState(roster, false)

	roster[0] = "mutated"
	if st.Roster[0] != "a" || st.Pool[0] != "a" {
		t.Error("NewState should copy the roster")
	}
	if len(st.History) != 0 {
		t.Errorf("expected empty history, got %v", st.History)
	}
	if st.Remaining() != 3 {
		t.Errorf("expected 3 remaining, got %d", st.Remaining())
	}
}

func TestDraw_RemovesWinnerAtIndex(t *testing.T) {
	e := NewEngine(&seqRand{seq: []int{1}})
	st := NewState([]string{"a", "b", "c", "d"}, false)

	res, next, err := e.Draw(st)
	if err != nil {
		t.Fatalf("Draw() error = %v", err)
	}
	if res.Winner != "b" || res.Index != 1 {
		t.Errorf("expected b at 1, got %s at %d", res.Winner, res.Index)
	}
	if diff := cmp.Diff([]string{"a", "c", "d"}, next.Pool); diff != "" {
		t.Errorf("pool mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"b"}, next.History); diff != "" {
		t.Errorf("history mismatch (-want +got):\n%s", diff)
	}

	// Input state untouched
	if diff := cmp.Diff([]string{"a", "b", "c", "d"}, st.Pool); diff != "" {
		t.Errorf("input pool was mutated (-want +got):\n%s", diff)
	}
	if len(st.History) != 0 {
		t.Error("input history was mutated")
	}
}

func TestDraw_HistoryMostRecentFirst(t *testing.T) {
	e := NewEngine(&seqRand{seq: []int{0}})
	st := NewState([]string{"a", "b", "c"}, false)

	var err error
	for i := 0; i < 3; i++ {
		_, st, err = e.Draw(st)
		if err != nil {
			t.Fatalf("Draw() #%d error = %v", i, err)
		}
	}

	if diff := cmp.Diff([]string{"c", "b", "a"}, st.History); diff != "" {
		t.Errorf("history mismatch (-want +got):\n%s", diff)
	}
}

func TestDraw_NoRepeatExhaustion(t *testing.T) {
	roster := []string{"王伟", "李芳", "张敏", "李军", "王丽", "张强", "刘洋"}
	e := NewEngine(seeded(1))
	st := NewState(roster, false)

	var err error
	for i := range roster {
		_, st, err = e.Draw(st)
		if err != nil {
			t.Fatalf("Draw() #%d error = %v", i, err)
		}
	}

	if st.Remaining() != 0 {
		t.Errorf("expected empty pool, got %v", st.Pool)
	}
	if len(st.History) != len(roster) {
		t.Errorf("expected %d history entries, got %d", len(roster), len(st.History))
	}

	seen := map[string]bool{}
	for _, name := range st.History {
		if seen[name] {
			t.Errorf("%s drawn twice", name)
		}
		seen[name] = true
	}

	if st.CanDraw() {
		t.Error("CanDraw() should be false on an empty pool")
	}

	before := st
	_, after, err := e.Draw(st)
	if !errors.Is(err, ErrExhaustedPool) {
		t.Fatalf("expected ErrExhaustedPool, got %v", err)
	}
	if diff := cmp.Diff(before, after); diff != "" {
		t.Errorf("failed draw changed state (-want +got):\n%s", diff)
	}
}

func TestDraw_RepeatModeNeverExhausts(t *testing.T) {
	for _, size := range []int{1, 2, 5} {
		roster := make([]string, size)
		for i := range roster {
			roster[i] = string(rune('A' + i))
		}

		e := NewEngine(seeded(uint64(size)))
		st := NewState(roster, true)

		var err error
		for i := 0; i < 100; i++ {
			_, st, err = e.Draw(st)
			if err != nil {
				t.Fatalf("size %d: draw #%d error = %v", size, i, err)
			}
		}

		if len(st.History) != 100 {
			t.Errorf("size %d: expected 100 history entries, got %d", size, len(st.History))
		}
		if diff := cmp.Diff(roster, st.Pool); diff != "" {
			t.Errorf("size %d: repeat mode changed the pool (-want +got):\n%s", size, diff)
		}
	}
}

func TestDefaultRand_UsesRuntimeGenerator(t *testing.T) {
	if _, ok := DefaultRand.(runtimeRand); !ok {
		t.Fatalf("expected runtimeRand default, got %T", DefaultRand)
	}
	if e := NewEngine(nil); e.rng != DefaultRand {
		t.Errorf("nil generator should fall back to DefaultRand")
	}

	seen := make(map[int]int)
	for range 2000 {
		v := DefaultRand.IntN(5)
		if v < 0 || v >= 5 {
			t.Fatalf("IntN(5) returned %d", v)
		}
		seen[v]++
	}
	if len(seen) != 5 {
		t.Errorf("expected every index drawn, got %v", seen)
	}
}

func TestDraw_RepeatModeEmptyRoster(t *testing.T) {
	e := NewEngine(nil)
	_, _, err := e.Draw(NewState(nil, true))
	if !errors.Is(err, ErrEmptyRoster) {
		t.Errorf("expected ErrEmptyRoster, got %v", err)
	}
}

func TestDraw_RepeatModeSamplesFullRoster(t *testing.T) {
	e := NewEngine(&seqRand{seq: []int{0, 2}})
	st := NewState([]string{"a", "b", "c"}, false)

	// Exhaust "a" in no-repeat mode
	_, st, _ = e.Draw(st)
	st = SetRepeatMode(st, true)

	res, next, err := e.Draw(st)
	if err != nil {
		t.Fatalf("Draw() error = %v", err)
	}
	if res.Winner != "c" {
		t.Errorf("expected roster index 2 (c), got %s", res.Winner)
	}
	if diff := cmp.Diff([]string{"b", "c"}, next.Pool); diff != "" {
		t.Errorf("repeat draw changed pool (-want +got):\n%s", diff)
	}
}

func TestReset(t *testing.T) {
	e := NewEngine(seeded(7))
	st := NewState([]string{"a", "b", "c"}, false)
	_, st, _ = e.Draw(st)
	_, st, _ = e.Draw(st)

	reset := Reset(st)
	if diff := cmp.Diff([]string{"a", "b", "c"}, reset.Pool); diff != "" {
		t.Errorf("pool mismatch (-want +got):\n%s", diff)
	}
	if len(reset.History) != 0 {
		t.Errorf("expected empty history, got %v", reset.History)
	}

	if diff := cmp.Diff(reset, Reset(reset)); diff != "" {
		t.Errorf("Reset is not idempotent (-once +twice):\n%s", diff)
	}
}

func TestSetRepeatMode_KeepsPoolAndHistory(t *testing.T) {
	st := State{Roster: []string{"a", "b"}, Pool: []string{"b"}, History: []string{"a"}}
	next := SetRepeatMode(st, true)

	if !next.RepeatMode {
		t.Error("expected repeat mode on")
	}
	if diff := cmp.Diff(st.Pool, next.Pool); diff != "" {
		t.Errorf("pool changed (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(st.History, next.History); diff != "" {
		t.Errorf("history changed (-want +got):\n%s", diff)
	}
}

func TestDraw_Fairness(t *testing.T) {
	pool := []string{"a", "b", "c", "d", "e"}
	const trials = 50000

	e := NewEngine(seeded(42))
	counts := map[string]int{}
	st := NewState(pool, false)
	for i := 0; i < trials; i++ {
		res, _, err := e.Draw(st)
		if err != nil {
			t.Fatalf("Draw() error = %v", err)
		}
		counts[res.Winner]++
	}

	expected := float64(trials) / float64(len(pool))
	for _, name := range pool {
		dev := math.Abs(float64(counts[name])-expected) / expected
		if dev > 0.05 {
			t.Errorf("%s drawn %d times, expected about %.0f (deviation %.3f)", name, counts[name], expected, dev)
		}
	}
}
