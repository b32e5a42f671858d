package vm

// Builder constructs a Translator with a fluent API, following the same
// With*-chaining convention as heap.Builder and the teacher's component
// builders.
type Builder struct {
	vaBits      int
	pageSize    uint64
	physMemSize uint64
	policy      Policy
}

// MakeBuilder returns a Builder defaulting to a 16-bit virtual address
// space, 64-byte pages, and FIFO replacement.
func MakeBuilder() Builder {
	return Builder{vaBits: 16, pageSize: 64, policy: FIFO}
}

// WithVABits sets the virtual address width in bits.
func (b Builder) WithVABits(bits int) Builder {
	b.vaBits = bits
	return b
}

// WithPageSize sets the page size in bytes.
func (b Builder) WithPageSize(size uint64) Builder {
	b.pageSize = size
	return b
}

// WithPhysMemSize sets the physical memory size in bytes; the number of
// frames is derived as physMemSize / pageSize.
func (b Builder) WithPhysMemSize(size uint64) Builder {
	b.physMemSize = size
	return b
}

// WithPolicy sets the page-replacement policy.
func (b Builder) WithPolicy(p Policy) Builder {
	b.policy = p
	return b
}

// Build returns a freshly initialized Translator.
func (b Builder) Build() *Translator {
	return New(b.vaBits, b.pageSize, b.physMemSize, b.policy)
}
