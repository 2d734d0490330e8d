package approx

import (
	"math"
	"sync"
)

// gridCache memoises the Chebyshev-Gauss-Lobatto sample points for a given
// degree: cos(k*pi/d) for k=0..d, ordered from x=1 down to x=-1. These
// depend only on degree, not on the box being sampled, so every subcell at
// the same working degree reuses the same unit-interval grid.
type gridCache struct {
	mu   sync.Mutex
	grid map[int][]float64
}

func newGridCache() *gridCache {
	return &gridCache{grid: make(map[int][]float64)}
}

func (c *gridCache) points(d int) []float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.grid[d]; ok {
		return p
	}
	p := chebyshevLobattoPoints(d)
	c.grid[d] = p
	return p
}

// chebyshevLobattoPoints returns the d+1 Chebyshev-Gauss-Lobatto nodes on
// [-1,1] in decreasing order, x_k = cos(k*pi/d) for k=0..d.
func chebyshevLobattoPoints(d int) []float64 {
	pts := make([]float64, d+1)
	if d == 0 {
		pts[0] = 1
		return pts
	}
	for k := 0; k <= d; k++ {
		pts[k] = math.Cos(float64(k) * math.Pi / float64(d))
	}
	return pts
}

// toWorldAxis maps a unit-interval Chebyshev node to the world coordinate
// on axis' [lo,hi] range.
func toWorldAxis(unit, lo, hi float64) float64 {
	return lo + (unit+1)*0.5*(hi-lo)
}
