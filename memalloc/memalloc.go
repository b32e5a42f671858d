// Package memalloc holds the shared contract between the two heap
// allocators (C1 list-based, C2 buddy): the capability set
// {allocate, deallocate, dump, stats} named in spec.md §9
// "Polymorphism over allocators", plus the statistics shape both
// produce so the driver façade can render either one without knowing
// which is live.
package memalloc

// Stats is the statistics snapshot shared by both allocator kinds.
// InternalFrag is always zero for the list-based heap, which tracks no
// internal fragmentation.
type Stats struct {
	Total              uint64
	Used               uint64
	Free               uint64
	UsedBlocks         int
	FreeBlocks         int
	LargestFreeBlock   uint64
	InternalFrag       uint64
	Requests           uint64
	Successes          uint64
	Failures           uint64
	Frees              uint64
	UtilizationPercent float64
	ExternalFragIndex  float64
	SuccessRatePercent float64
}

// Allocator is the capability set the driver drives polymorphically:
// first/best/worst fit and buddy all implement it, differing only in
// their placement/merge internals.
type Allocator interface {
	Allocate(size uint64) (int, error)
	Deallocate(id int) error
	Dump() string
	Stats() Stats
}
