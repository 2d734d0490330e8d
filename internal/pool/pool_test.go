package pool

import "testing"

func TestPoolGrowsAndKeepsPointersStable(t *testing.T) {
	p := New[int](2)

	a := p.Get()
	b := p.Get()
	*a, *b = 1, 2

	// Pool exhausted: this Get must grow a new slab without invalidating
	// a or b.
	c := p.Get()
	*c = 3

	if *a != 1 || *b != 2 || *c != 3 {
		t.Fatalf("values clobbered after growth: a=%d b=%d c=%d", *a, *b, *c)
	}

	p.Put(a)
	p.Put(b)
	p.Put(c)

	// Growth doubled capacity from 2 to 4; with a, b and c back, all 4
	// slots are free.
	if got := p.Len(); got != 4 {
		t.Fatalf("Len() = %d, want 4", got)
	}
}

func TestPoolGetPutRoundTrip(t *testing.T) {
	p := New[string](4)
	v := p.Get()
	*v = "hello"
	p.Put(v)

	v2 := p.Get()
	if v2 != v {
		t.Fatalf("expected Get after Put to return the same pointer (LIFO reuse)")
	}
}
