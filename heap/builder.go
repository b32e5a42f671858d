package heap

// Builder constructs a List heap with a fluent, chainable API, mirroring
// the teacher's component-builder convention (mem/vm/mmu.Builder and
// friends): every With* method returns the builder by value so calls can
// be chained into a single expression at the call site.
type Builder struct {
	totalSize uint64
	strategy  Strategy
}

// MakeBuilder returns a Builder with the package defaults: first-fit over
// zero bytes. Callers are expected to set WithTotalSize before Build.
func MakeBuilder() Builder {
	return Builder{strategy: FirstFit}
}

// WithTotalSize sets the number of bytes the heap manages.
func (b Builder) WithTotalSize(size uint64) Builder {
	b.totalSize = size
	return b
}

// WithStrategy sets the placement strategy used by Allocate.
func (b Builder) WithStrategy(s Strategy) Builder {
	b.strategy = s
	return b
}

// Build returns a freshly initialized List heap: a single free block
// covering the whole region.
func (b Builder) Build() *List {
	h := &List{
		total:    b.totalSize,
		strategy: b.strategy,
		nextID:   1,
		blocks:   []Block{{ID: 0, Start: 0, Size: b.totalSize, Free: true}},
	}
	return h
}
