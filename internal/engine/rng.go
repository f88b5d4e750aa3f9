package engine

import "math/rand"

// RNG is the explicit random source the engine passes into every
// stochastic sub-component call. It has the same shape as harmony.RNG and
// melody.RNG (Go interfaces match structurally, so one concrete type below
// satisfies all three) — the point is that no sub-component ever reaches
// for a package-level math/rand function, so audio-thread and
// control-thread randomness never share state.
type RNG interface {
	Float32() float32
	IntN(n int) int
}

// MathRandRNG wraps a *rand.Rand. The audio thread owns exactly one
// instance; the control thread, if it ever needs randomness, owns a
// separate one.
type MathRandRNG struct {
	r *rand.Rand
}

// NewMathRandRNG seeds a new generator. Each concurrency domain must call
// this itself rather than share an instance.
func NewMathRandRNG(seed int64) *MathRandRNG {
	return &MathRandRNG{r: rand.New(rand.NewSource(seed))}
}

func (m *MathRandRNG) Float32() float32 { return m.r.Float32() }

func (m *MathRandRNG) IntN(n int) int {
	if n <= 0 {
		return 0
	}
	return m.r.Intn(n)
}
