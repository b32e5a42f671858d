package cache

// Builder constructs a single Level with a fluent API, following the
// same With*-chaining convention as heap.Builder and vm.Builder.
type Builder struct {
	name          string
	totalSize     uint64
	blockSize     uint64
	associativity int
	policy        Policy
}

// MakeBuilder returns a Builder with no geometry set; callers must
// supply size, block size, and associativity before Build.
func MakeBuilder() Builder {
	return Builder{policy: PolicyLRU}
}

// WithName sets the level's label.
func (b Builder) WithName(name string) Builder {
	b.name = name
	return b
}

// WithTotalSize sets the level's total capacity in bytes.
func (b Builder) WithTotalSize(size uint64) Builder {
	b.totalSize = size
	return b
}

// WithBlockSize sets the cache block (line) size in bytes.
func (b Builder) WithBlockSize(size uint64) Builder {
	b.blockSize = size
	return b
}

// WithAssociativity sets the number of ways per set.
func (b Builder) WithAssociativity(n int) Builder {
	b.associativity = n
	return b
}

// WithPolicy sets the replacement policy.
func (b Builder) WithPolicy(p Policy) Builder {
	b.policy = p
	return b
}

// Build constructs the Level, validating that the geometry divides
// evenly into a whole number of sets.
func (b Builder) Build() (*Level, error) {
	return NewLevel(b.name, b.totalSize, b.blockSize, b.associativity, b.policy)
}
