package melody

import "math/rand"

// seededRNG wraps math/rand for scenario/property tests that need many
// draws; navigator correctness properties hold regardless of seed.
type seededRNG struct {
	r *rand.Rand
}

func newSeededRNG(seed int64) *seededRNG {
	return &seededRNG{r: rand.New(rand.NewSource(seed))}
}

func (s *seededRNG) Float32() float32 { return s.r.Float32() }
func (s *seededRNG) IntN(n int) int {
	if n <= 0 {
		return 0
	}
	return s.r.Intn(n)
}

// fixedRNG returns a deterministic sequence of values for Float32.
type fixedRNG struct {
	values []float32
	i      int
}

func (f *fixedRNG) Float32() float32 {
	if len(f.values) == 0 {
		return 0
	}
	v := f.values[f.i%len(f.values)]
	f.i++
	return v
}

func (f *fixedRNG) IntN(n int) int {
	if n <= 0 {
		return 0
	}
	return 0
}
