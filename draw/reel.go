// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package draw

// DefaultReelTicks matches the number of names the draw screen flashes
// before settling
const DefaultReelTicks = 40

// Spin is a settled draw plus the names shown while it was "spinning"
type Spin struct {
	Frames []string
	Result Result
}

// Reel decorates an Engine with cosmetic display frames. Frames come
// from a separate generator so they never influence the winner.
type Reel struct {
	engine *Engine
	ticks  int
	rng    Rand
}

func NewReel(engine *Engine, ticks int, rng Rand) *Reel {
	if ticks < 0 {
		ticks = 0
	}
	if rng == nil {
		rng = DefaultRand
	}
	return &Reel{engine: engine, ticks: ticks, rng: rng}
}

// Draw runs the underlying draw and, on success, fills in the frames
// shown before the winner. The final frame is always the winner.
func (r *Reel) Draw(st State) (Spin, State, error) {
	res, next, err := r.engine.Draw(st)
	if err != nil {
		return Spin{}, st, err
	}

	frames := make([]string, 0, r.ticks+1)
	for i := 0; i < r.ticks && len(st.Roster) > 0; i++ {
		frames = append(frames, st.Roster[r.rng.IntN(len(st.Roster))])
	}
	frames = append(frames, res.Winner)

	return Spin{Frames: frames, Result: res}, next, nil
}
