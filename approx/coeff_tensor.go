package approx

// Tensor is the rank-n coefficient tensor described in the data model: a
// padded sideLength^rank buffer whose [0,degree]^rank corner holds the
// active coefficients, stored row-major. sideLength is kept at 2*degree (or
// 1, for degree 0) so the same backing array can be reused without
// reallocation when degree is later doubled, per the Chebyshev
// Approximator's degree-d/degree-2d pair.
type Tensor struct {
	Rank       int
	Degree     int
	SideLength int
	Data       []float64

	strides []int
}

// NewTensor allocates a Tensor able to hold coefficients up to the given
// rank and degree.
func NewTensor(rank, degree int) *Tensor {
	t := &Tensor{}
	t.Reset(rank, degree)
	return t
}

// pow returns base^exp as an int (sideLength^rank gives the buffer length).
func pow(base, exp int) int {
	r := 1
	for range exp {
		r *= base
	}
	return r
}

// Reset reconfigures t for a new rank/degree, reusing the backing array
// when it is already large enough.
func (t *Tensor) Reset(rank, degree int) {
	side := 2 * degree
	if side < 1 {
		side = 1
	}
	t.Rank = rank
	t.Degree = degree
	t.SideLength = side
	needed := pow(side, rank)
	if cap(t.Data) < needed {
		t.Data = make([]float64, needed)
	} else {
		t.Data = t.Data[:needed]
		for i := range t.Data {
			t.Data[i] = 0
		}
	}
	t.strides = strides(rank, side)
}

// Grow reconfigures t to a larger degree at the same rank. It is Reset with
// t's current rank, so the old coefficients are not preserved (used when the
// Chebyshev Approximator reuses a degree-d tensor's buffer for an unrelated
// degree-2d pass -- callers that need the old coefficients must copy them
// out first).
func (t *Tensor) Grow(degree int) {
	t.Reset(t.Rank, degree)
}

// At returns the coefficient at multi-index idx.
func (t *Tensor) At(idx []int) float64 {
	return t.Data[flatIndex(idx, t.strides)]
}

// Set writes the coefficient at multi-index idx.
func (t *Tensor) Set(idx []int, v float64) {
	t.Data[flatIndex(idx, t.strides)] = v
}

// SetCorner copies samples (row-major over (degree+1)^Rank, the "partial
// grid" order) into t's padded corner.
func (t *Tensor) SetCorner(samples []float64) {
	d := t.Degree
	cornerStrides := strides(t.Rank, d+1)
	forEachMultiIndex(t.Rank, d, func(idx []int) {
		t.Data[flatIndex(idx, t.strides)] = samples[flatIndex(idx, cornerStrides)]
	})
}

// ForEachCorner calls visit(idx, value) for every multi-index in the active
// [0,degree]^rank corner.
func (t *Tensor) ForEachCorner(visit func(idx []int, value float64)) {
	t.ForEachUpTo(t.Degree, visit)
}

// ForEachUpTo calls visit(idx, value) for every multi-index in
// [0,bound]^rank, regardless of t's stored Degree -- used to walk a
// trimmed (smaller) active corner.
func (t *Tensor) ForEachUpTo(bound int, visit func(idx []int, value float64)) {
	forEachMultiIndex(t.Rank, bound, func(idx []int) {
		visit(idx, t.Data[flatIndex(idx, t.strides)])
	})
}

// line extracts the degree+1 values along axis at the given fixed other
// coordinates (idx[axis] is ignored and overwritten 0..degree) into dst.
func (t *Tensor) line(axis int, idx []int, dst []float64) {
	base := flatIndex(idx, t.strides) - idx[axis]*t.strides[axis]
	str := t.strides[axis]
	for k := 0; k <= t.Degree; k++ {
		dst[k] = t.Data[base+k*str]
	}
}

// setLine writes dst back along axis at the given fixed other coordinates.
func (t *Tensor) setLine(axis int, idx []int, src []float64) {
	base := flatIndex(idx, t.strides) - idx[axis]*t.strides[axis]
	str := t.strides[axis]
	for k := 0; k <= t.Degree; k++ {
		t.Data[base+k*str] = src[k]
	}
}
