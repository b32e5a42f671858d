// Package driver implements the façade (C6) that the command loop (C7)
// and the monitoring HTTP surface (C8) drive: allocator/policy/cache
// reconfiguration, malloc/free/dump, and the read/write path that
// composes the translator (C3) with the cache controller (C5).
//
// Grounded on original_source/src/main.cpp's command handlers, which
// own a MemoryManager/BuddyAllocator, a VirtualMemory, and a
// CacheController and replace them wholesale on `init`/`set`/`config`
// — the same replace-and-discard ownership model spec.md §5 mandates,
// expressed here as value replacement rather than the original's
// raw-pointer delete-then-new (see spec.md §9 "Cyclic references").
package driver

import (
	"fmt"

	"github.com/sarchlab/memsim/buddy"
	"github.com/sarchlab/memsim/cache"
	"github.com/sarchlab/memsim/heap"
	"github.com/sarchlab/memsim/memalloc"
	"github.com/sarchlab/memsim/simerr"
	"github.com/sarchlab/memsim/vm"
)

// Driver is the simulator façade. It holds the only references to the
// live subsystems and replaces them atomically on reconfigure; the old
// subsystem is discarded before the new one is used, so every id, page
// table entry, and cache line from before a reconfigure is invalidated.
type Driver struct {
	memorySize uint64
	vaBits     int
	pageSize   uint64

	isBuddy      bool
	heapStrategy heap.Strategy
	alloc        memalloc.Allocator

	policy     vm.Policy
	translator Translator

	cacheCtrl CacheController
}

// Option configures a Driver at construction time; used by cmd/memsim to
// seed defaults from environment/config.
type Option func(*Driver)

// WithVABits overrides the default virtual address width.
func WithVABits(bits int) Option {
	return func(d *Driver) { d.vaBits = bits }
}

// WithPageSize overrides the default page size.
func WithPageSize(size uint64) Option {
	return func(d *Driver) { d.pageSize = size }
}

// WithTranslator injects a Translator in place of a real *vm.Translator,
// for façade-level tests that mock C3 out from under C6.
func WithTranslator(t Translator) Option {
	return func(d *Driver) { d.translator = t }
}

// WithCacheController injects a CacheController in place of a real
// *cache.Controller, for façade-level tests that mock C5 out from under
// C6.
func WithCacheController(c CacheController) Option {
	return func(d *Driver) { d.cacheCtrl = c }
}

// New builds a Driver over memorySize bytes, defaulting to the
// first-fit list heap, FIFO virtual memory, and the spec default cache
// geometry, matching original_source/src/main.cpp's startup state.
func New(memorySize uint64, opts ...Option) *Driver {
	d := &Driver{
		memorySize:   memorySize,
		vaBits:       16,
		pageSize:     64,
		heapStrategy: heap.FirstFit,
		policy:       vm.FIFO,
	}
	for _, opt := range opts {
		opt(d)
	}

	d.alloc = heap.MakeBuilder().WithTotalSize(memorySize).WithStrategy(d.heapStrategy).Build()
	if d.translator == nil {
		d.translator = vm.MakeBuilder().
			WithVABits(d.vaBits).WithPageSize(d.pageSize).WithPhysMemSize(memorySize).
			WithPolicy(d.policy).Build()
	}
	if d.cacheCtrl == nil {
		d.cacheCtrl = defaultCacheGeometry()
	}

	return d
}

// Init re-creates the heap and VM translator with a new byte size.
// Invalidates all ids and frames; the cache controller is left
// untouched (it is not keyed off memory size).
func (d *Driver) Init(size uint64) {
	logCommand("init")
	d.memorySize = size
	if d.isBuddy {
		d.alloc = buddy.New(size)
	} else {
		d.alloc = heap.MakeBuilder().WithTotalSize(size).WithStrategy(d.heapStrategy).Build()
	}
	d.translator = vm.MakeBuilder().
		WithVABits(d.vaBits).WithPageSize(d.pageSize).WithPhysMemSize(size).
		WithPolicy(d.policy).Build()
}

// SetAllocator replaces the heap with a fresh instance of the named
// strategy, sized by the current memory-size setting.
func (d *Driver) SetAllocator(name string) error {
	logCommand("set allocator")
	if name == AllocatorBuddy {
		d.isBuddy = true
		d.alloc = buddy.New(d.memorySize)
		return nil
	}

	s, ok := heap.ParseStrategy(name)
	if !ok {
		return simerr.New(simerr.InvalidConfig, "unknown allocator %q", name)
	}
	d.isBuddy = false
	d.heapStrategy = s
	d.alloc = heap.MakeBuilder().WithTotalSize(d.memorySize).WithStrategy(s).Build()
	return nil
}

// SetPolicy replaces the VM translator with one using the given
// replacement policy, keyed off the current memory/page size.
func (d *Driver) SetPolicy(name string) error {
	logCommand("set policy")
	p, ok := vm.ParsePolicy(name)
	if !ok {
		return simerr.New(simerr.InvalidConfig, "unknown VM policy %q", name)
	}
	d.policy = p
	d.translator = vm.MakeBuilder().
		WithVABits(d.vaBits).WithPageSize(d.pageSize).WithPhysMemSize(d.memorySize).
		WithPolicy(p).Build()
	return nil
}

// ConfigCache rebuilds one named cache level with the given geometry and
// LRU policy, per spec.md §6's `config cache` command.
func (d *Driver) ConfigCache(level string, totalSize, blockSize uint64, assoc int) error {
	logCommand("config cache")
	if d.cacheCtrl.Level(level) == nil {
		return simerr.New(simerr.InvalidConfig, "unknown cache level %q", level)
	}
	return d.cacheCtrl.Reconfigure(level, totalSize, blockSize, assoc, cache.PolicyLRU)
}

// Malloc allocates through the current heap.
func (d *Driver) Malloc(size uint64) (int, error) {
	logCommand("malloc")
	return d.alloc.Allocate(size)
}

// Free deallocates through the current heap.
func (d *Driver) Free(id int) error {
	logCommand("free")
	return d.alloc.Deallocate(id)
}

// Dump renders the current heap's block map.
func (d *Driver) Dump() string {
	return d.alloc.Dump()
}

// AccessResult reports the outcome of a read or write.
type AccessResult struct {
	PhysicalAddress uint64
	HitLevel        string
}

// Read translates addr through the VM translator, then performs a
// cache-access (read) against the resulting physical address.
func (d *Driver) Read(addr uint64) (AccessResult, error) {
	return d.access(addr, false)
}

// Write is as Read, but the cache access is a write (sets dirty on the
// installed/hit line).
func (d *Driver) Write(addr uint64) (AccessResult, error) {
	return d.access(addr, true)
}

func (d *Driver) access(addr uint64, isWrite bool) (AccessResult, error) {
	if isWrite {
		logCommand("write")
	} else {
		logCommand("read")
	}

	phys, err := d.translator.Translate(addr)
	if err != nil {
		return AccessResult{}, err
	}
	hitLevel := d.cacheCtrl.AccessMemory(phys, isWrite)
	return AccessResult{PhysicalAddress: phys, HitLevel: hitLevel}, nil
}

// Config returns a read-only snapshot of the live configuration.
func (d *Driver) Config() Config {
	return Config{
		MemorySize: d.memorySize,
		VABits:     d.vaBits,
		PageSize:   d.pageSize,
		Allocator:  strategyName(d.isBuddy, d.heapStrategy),
		Policy:     d.policy,
	}
}

// AllocatorStats exposes the live allocator's statistics, for the
// monitoring façade as well as `stats` rendering.
func (d *Driver) AllocatorStats() memalloc.Stats {
	return d.alloc.Stats()
}

// VMStats exposes the live translator's statistics.
func (d *Driver) VMStats() vm.Stats {
	return d.translator.Stats()
}

// CacheStats exposes the live cache controller's statistics.
func (d *Driver) CacheStats() cache.ControllerStats {
	return d.cacheCtrl.Stats()
}

// Subsystem returns the live subsystem named "heap", "vm", or "cache"
// for reflective inspection by the monitoring façade. It returns the
// live instance itself, not a copy; the façade only ever serializes what
// it gets back.
func (d *Driver) Subsystem(name string) (interface{}, error) {
	switch name {
	case "heap":
		return d.alloc, nil
	case "vm":
		return d.translator, nil
	case "cache":
		return d.cacheCtrl, nil
	default:
		return nil, simerr.New(simerr.InvalidConfig, "unknown subsystem %q", name)
	}
}

// Stats renders every subsystem's counters as the human-readable block
// the original `stats` command printed.
func (d *Driver) Stats() string {
	a := d.AllocatorStats()
	v := d.VMStats()
	c := d.CacheStats()

	out := "=== MEMORY ALLOCATOR STATS ===\n"
	out += fmt.Sprintf("Total heap size        : %d bytes\n", a.Total)
	out += fmt.Sprintf("Used memory            : %d bytes\n", a.Used)
	out += fmt.Sprintf("Free memory            : %d bytes\n", a.Free)
	out += fmt.Sprintf("Used blocks            : %d\n", a.UsedBlocks)
	out += fmt.Sprintf("Free blocks            : %d\n", a.FreeBlocks)
	out += fmt.Sprintf("Internal fragmentation : %d bytes\n", a.InternalFrag)
	out += fmt.Sprintf("Memory utilization     : %.2f%%\n", a.UtilizationPercent)
	out += fmt.Sprintf("External fragmentation : %.3f\n", a.ExternalFragIndex)
	out += fmt.Sprintf("Allocation requests    : %d\n", a.Requests)
	out += fmt.Sprintf("Successful allocs      : %d\n", a.Successes)
	out += fmt.Sprintf("Failed allocs          : %d\n", a.Failures)
	out += fmt.Sprintf("Frees                  : %d\n", a.Frees)
	out += fmt.Sprintf("Success rate           : %.2f%%\n", a.SuccessRatePercent)

	out += "\n=== VIRTUAL MEMORY STATS ===\n"
	out += fmt.Sprintf("Page hits              : %d\n", v.PageHits)
	out += fmt.Sprintf("Page faults            : %d\n", v.PageFaults)
	out += fmt.Sprintf("Disk accesses          : %d\n", v.DiskAccesses)
	out += fmt.Sprintf("Fault rate             : %.2f%%\n", v.FaultRatePct)

	out += "\n=== CACHE STATS ===\n"
	for _, lvl := range c.Levels {
		out += fmt.Sprintf("%-3s hits=%-6d misses=%-6d hit-rate=%.3f write-backs=%d\n",
			lvl.Name, lvl.Hits, lvl.Misses, lvl.HitRate, lvl.WriteBacks)
	}
	out += fmt.Sprintf("Total requests          : %d\n", c.TotalRequests)
	out += fmt.Sprintf("Total cycles            : %d\n", c.TotalCycles)
	out += fmt.Sprintf("AMAT                    : %.3f\n", c.AMAT)

	return out
}
