//go:build amd64 && !purego

package sse2

import (
	"github.com/cwbudde/chebsolve/internal/cpu"
	"github.com/cwbudde/chebsolve/internal/vecmath/registry"
)

// init registers the SSE2-optimized implementations with the vecmath registry.
//
// SSE2 provides 128-bit SIMD operations and is part of the x86-64 baseline,
// so it's available on all amd64 CPUs.
//
// Only MaxAbs and Sum are registered for SSE2; this entry's ScaleBlock and
// ScaleBlockInPlace fields are nil. Lookup returns a whole entry and does
// not fill nil operations from another implementation.
//
// Priority: 10 (medium - preferred over generic, but lower than AVX2)
func init() {
	registry.Global.Register(registry.OpEntry{
		Name:      "sse2",
		SIMDLevel: cpu.SIMDSSE2,
		Priority:  10,

		// Reduction operations
		MaxAbs: MaxAbs,
		Sum:    Sum,
	})
}
