package approx

import (
	"math"
	"sync"

	algofft "github.com/MeKo-Christian/algo-fft"
)

// planCache memoises FFT plans keyed by transform length, since
// algofft.NewPlan64 does nontrivial setup (twiddle-factor tables) and a
// solve session reuses the same handful of degrees across thousands of
// subcells.
type planCache struct {
	mu    sync.Mutex
	plans map[int]*algofft.Plan[complex128]
}

func newPlanCache() *planCache {
	return &planCache{plans: make(map[int]*algofft.Plan[complex128])}
}

// get returns a cached plan for n, or nil if n admits no FFT plan (the
// underlying library only supports sizes it can factor efficiently; callers
// fall back to a direct transform in that case).
func (c *planCache) get(n int) *algofft.Plan[complex128] {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.plans[n]; ok {
		return p
	}
	p, err := algofft.NewPlan64(n)
	if err != nil {
		c.plans[n] = nil
		return nil
	}
	c.plans[n] = p
	return p
}

// dct1D computes one axis pass of the type-I discrete cosine transform of
// samples taken on the degree-d Chebyshev-Gauss-Lobatto grid (d+1 samples,
// samples[0] at x=1, samples[d] at x=-1), writing the d+1 Chebyshev
// coefficients to out. It does NOT apply the 1/d normalisation factor --
// that is deferred to a single global 1/d^n scaling of the sample tensor
// applied once before any axis pass runs (see normalizeSamples), since the
// factor is identical whichever axis order the separable transform visits.
// dct1D only applies the boundary/interior relative weighting that differs
// per axis.
//
// This realises the transform by even-reflecting samples into a length-2d
// periodic sequence and running it through a complex FFT, exactly the
// "real-to-half-complex transform ... realised through the underlying FFT
// library" construction: for an even-symmetric input the FFT output is
// already real (up to floating point noise), so the DCT-I coefficients
// fall directly out of the real part of the first d+1 bins.
//
// When no FFT plan is available for the resulting length (only power-of-two
// sizes are guaranteed, mirroring how the underlying FFT is used elsewhere
// in this codebase), dct1D falls back to the direct O(d^2) cosine-sum
// definition, which is always correct but slower for large d.
func dct1D(cache *planCache, samples []float64, out []float64) {
	d := len(samples) - 1
	if d == 0 {
		out[0] = samples[0]
		return
	}
	n := 2 * d
	if plan := cache.get(n); plan != nil {
		fftDCT(plan, n, samples, out)
		return
	}
	directDCT(samples, out)
}

// fftDCT implements dct1D's fast path given a usable length-n FFT plan. For
// an even-reflected real sequence, freq[j] = 2*S_j where S_j is the
// boundary-halved cosine sum that defines the DCT-I; dct1D's contract
// (relative weighting only, no 1/d) wants out_j = 2*S_j for interior j and
// out_j = S_j for boundary j, i.e. out[j] = freq[j] halved only at the
// boundary.
func fftDCT(plan *algofft.Plan[complex128], n int, samples []float64, out []float64) {
	d := len(samples) - 1
	buf := make([]complex128, n)
	for k := 0; k <= d; k++ {
		buf[k] = complex(samples[k], 0)
	}
	for k := d + 1; k < n; k++ {
		buf[k] = complex(samples[n-k], 0)
	}
	freq := make([]complex128, n)
	if err := plan.Forward(freq, buf); err != nil {
		directDCT(samples, out)
		return
	}
	for j := 0; j <= d; j++ {
		out[j] = real(freq[j])
	}
	out[0] /= 2
	out[d] /= 2
}

// directDCT is the definitional O(d^2) type-I DCT pass (relative weighting
// only, see dct1D's doc comment), used whenever the reflected length has no
// fast FFT plan.
func directDCT(samples []float64, out []float64) {
	d := len(samples) - 1
	for j := 0; j <= d; j++ {
		sum := 0.0
		for k := 0; k <= d; k++ {
			weight := 1.0
			if k == 0 || k == d {
				weight = 0.5
			}
			sum += weight * samples[k] * math.Cos(math.Pi*float64(j)*float64(k)/float64(d))
		}
		relWeight := 2.0
		if j == 0 || j == d {
			relWeight = 1.0
		}
		out[j] = relWeight * sum
	}
}
