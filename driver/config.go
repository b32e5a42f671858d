package driver

import (
	"github.com/sarchlab/memsim/cache"
	"github.com/sarchlab/memsim/heap"
	"github.com/sarchlab/memsim/vm"
)

// Config is a read-only snapshot of the live configuration: memory size,
// virtual address width, page size, allocator name and VM policy. It
// does not include cache geometry, and Dump, Stats and the monitoring
// façade do not read it.
type Config struct {
	MemorySize uint64
	VABits     int
	PageSize   uint64
	Allocator  string
	Policy     vm.Policy
}

// AllocatorBuddy is the `set allocator` token that selects the buddy
// allocator; the list-heap tokens come from heap.ParseStrategy.
const (
	AllocatorBuddy = "buddy"
)

// defaultCacheGeometry returns the spec.md §4.5 default L1/L2/L3
// geometry, used whenever a fresh Controller is needed.
func defaultCacheGeometry() *cache.Controller {
	return cache.DefaultController()
}

// strategyName renders an allocator selection back to the command token
// that produced it ("first", "best", "worst", "buddy").
func strategyName(isBuddy bool, s heap.Strategy) string {
	if isBuddy {
		return AllocatorBuddy
	}
	return s.String()
}
