// rand/rand.go

package rand

import (
	"hash/fnv"
	"iter"
	gomath "math"
	"slices"
)

///////////////////////////////////////////////////////////////////////////
// PCG32

const (
	pcg32State      = 0x853c49e6748fea9b
	pcg32Increment  = 0xda3e39cb94b95bdb
	pcg32Multiplier = 0x5851f42d4c957f2d
)

type pcg32 struct {
	state     uint64
	increment uint64
}

func newPCG32() pcg32 {
	return pcg32{pcg32State, pcg32Increment}
}

func (p *pcg32) seed(state, sequence uint64) {
	p.increment = (sequence << 1) | 1
	p.state = (state+p.increment)*pcg32Multiplier + p.increment
}

func (p *pcg32) random() uint32 {
	oldState := p.state
	p.state = oldState*pcg32Multiplier + p.increment

	xorShifted := uint32(((oldState >> 18) ^ oldState) >> 27)
	rot := uint32(oldState >> 59)
	return (xorShifted >> rot) | (xorShifted << ((-rot) & 31))
}

func (p *pcg32) bounded(bound uint32) uint32 {
	if bound == 0 {
		return 0
	}
	threshold := -bound % bound
	for {
		r := p.random()
		if r >= threshold {
			return r % bound
		}
	}
}

///////////////////////////////////////////////////////////////////////////
// Rand

// Rand is a seeded, deterministic pseudo-random source. It is not safe for
// concurrent use; each goroutine (each flight process, each engine instance
// in a batch run) should own a private stream, constructed with Make or
// Derive.
type Rand struct {
	pcg32
}

// Make returns a new Rand starting from the fixed default PCG32 state, so
// every Make stream is identical until Seed is called.
func Make() *Rand {
	return &Rand{pcg32: newPCG32()}
}

// Seed resets the stream to start from s.
func (r *Rand) Seed(s uint64) {
	r.pcg32.seed(s, pcg32Increment)
}

// Derive constructs a new, independently-seeded stream from a base seed and
// a label naming the concern the stream is for (e.g. "plan", "wind",
// "noise"). Two calls with the same (seed, label) always produce identical
// streams; two different labels under the same seed produce uncorrelated
// streams, so a single run seed can fan out into per-concern RNGs without
// those concerns' draw counts perturbing each other.
func Derive(seed uint64, label string) *Rand {
	h := fnv.New64a()
	_, _ = h.Write([]byte(label))
	mix := h.Sum64()

	r := Make()
	r.pcg32.seed(seed^mix, pcg32Increment^mix)
	return r
}

func (r *Rand) Intn(n int) int {
	return int(r.bounded(uint32(n)))
}

func (r *Rand) Int31n(n int32) int32 {
	return int32(r.bounded(uint32(n)))
}

func (r *Rand) Float64() float64 {
	return float64(r.random()) / (1<<32 - 1)
}

// NormFloat64 returns a standard-normal sample via the Box-Muller transform,
// built on Float64 so it draws from the same seeded stream as everything
// else (math/rand's NormFloat64 would pull from an independent, unseeded
// source).
func (r *Rand) NormFloat64() float64 {
	u1 := r.Float64()
	for u1 <= 1e-12 {
		u1 = r.Float64()
	}
	u2 := r.Float64()
	return gomath.Sqrt(-2*gomath.Log(u1)) * gomath.Cos(2*gomath.Pi*u2)
}

func (r *Rand) Uint32() uint32 {
	return r.random()
}

///////////////////////////////////////////////////////////////////////////
// Sampling helpers

// SampleSlice uniformly randomly samples an element of a non-empty slice.
func SampleSlice[T any](r *Rand, slice []T) T {
	return slice[r.Intn(len(slice))]
}

// SampleWeighted randomly samples an element from the given slice with the
// probability of choosing each element proportional to the value returned
// by the provided callback.
func SampleWeighted[T any](r *Rand, slice []T, weight func(T) float64) (T, bool) {
	return SampleWeightedSeq(r, slices.Values(slice), weight)
}

func SampleWeightedSeq[T any](r *Rand, it iter.Seq[T], weight func(T) float64) (sample T, ok bool) {
	sumWt := 0.0
	for v := range it {
		w := weight(v)
		if w <= 0 {
			continue
		}
		sumWt += w
		p := w / sumWt
		if r.Float64() < p {
			sample = v
			ok = true
		}
	}
	return
}

// ShuffleSlice performs an in-place Fisher-Yates shuffle.
func ShuffleSlice[T any](r *Rand, s []T) {
	for i := len(s) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		s[i], s[j] = s[j], s[i]
	}
}
