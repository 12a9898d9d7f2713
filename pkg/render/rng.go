package render

// sampleSeed mixes the global seed with pixel coordinates and the sample
// index. Per-sample randomness is a pure function of these four values, so
// renders are reproducible across runs, thread counts, and progressive
// continuations.
func sampleSeed(seed uint64, x, y, sample int) uint64 {
	v := seed ^ uint64(x)<<32 ^ uint64(y)<<16 ^ uint64(sample)
	v += 0x9e3779b97f4a7c15
	v = (v ^ (v >> 30)) * 0xbf58476d1ce4e5b9
	v = (v ^ (v >> 27)) * 0x94d049bb133111eb
	return v ^ (v >> 31)
}

// rng is a 64-bit LCG; the top 32 bits of the state form each output.
// Small and allocation-free so every sample can own one.
type rng struct {
	state uint64
}

func newRNG(seed uint64) rng {
	if seed == 0 {
		seed = 0xdeadbeefcafebabe
	}
	return rng{state: seed}
}

func (r *rng) next() uint32 {
	r.state = r.state*6364136223846793005 + 1
	return uint32(r.state >> 32)
}

// float64 returns a value in [0, 1].
func (r *rng) float64() float64 {
	return float64(r.next()) / float64(^uint32(0))
}
