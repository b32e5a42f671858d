package cache

// Latencies in "cycles", as constants per spec.md §4.5. These never
// change at runtime; only the three levels' geometry is reconfigurable.
const (
	L1Latency  = 1
	L2Latency  = 10
	L3Latency  = 100
	RAMLatency = 500
)

// Controller owns three independent cache levels and a logical clock; it
// never promotes a line from a lower level into a higher one, and it
// never enforces inclusion between levels — each level's state evolves
// independently per the access it happens to see (spec.md §4.5's
// confirmed non-goals).
type Controller struct {
	l1, l2, l3 *Level

	totalRequests uint64
	totalCycles   uint64
}

// DefaultController builds the default L1/L2/L3 geometry from spec.md
// §4.5: L1 1024B/64B/2-way/LRU, L2 4096B/64B/4-way/LRU, L3 16384B/64B/8-way/FIFO.
func DefaultController() *Controller {
	l1, err := NewLevel("L1", 1024, 64, 2, PolicyLRU)
	if err != nil {
		panic(err) // defaults are known-good; a failure here is a programming error
	}
	l2, err := NewLevel("L2", 4096, 64, 4, PolicyLRU)
	if err != nil {
		panic(err)
	}
	l3, err := NewLevel("L3", 16384, 64, 8, PolicyFIFO)
	if err != nil {
		panic(err)
	}
	return &Controller{l1: l1, l2: l2, l3: l3}
}

// Level returns the level by name ("L1", "L2", "L3"), or nil.
func (c *Controller) Level(name string) *Level {
	switch name {
	case "L1":
		return c.l1
	case "L2":
		return c.l2
	case "L3":
		return c.l3
	default:
		return nil
	}
}

// Reconfigure replaces the named level with a freshly constructed one;
// the replaced level's contents and stats are discarded.
func (c *Controller) Reconfigure(name string, totalSize, blockSize uint64, assoc int, policy Policy) error {
	lvl, err := NewLevel(name, totalSize, blockSize, assoc, policy)
	if err != nil {
		return err
	}
	switch name {
	case "L1":
		c.l1 = lvl
	case "L2":
		c.l2 = lvl
	case "L3":
		c.l3 = lvl
	}
	return nil
}

// AccessMemory routes one access top-down through L1, L2, L3, and
// finally main memory, accumulating AMAT cycles. It always pays L1
// latency, then adds each subsequent level's latency only if it is
// actually consulted.
func (c *Controller) AccessMemory(address uint64, isWrite bool) (hitLevel string) {
	cost := L1Latency
	if c.l1.Access(address, isWrite) {
		hitLevel = "L1"
	} else {
		cost += L2Latency
		if c.l2.Access(address, isWrite) {
			hitLevel = "L2"
		} else {
			cost += L3Latency
			if c.l3.Access(address, isWrite) {
				hitLevel = "L3"
			} else {
				cost += RAMLatency
				hitLevel = "RAM"
			}
		}
	}

	c.totalRequests++
	c.totalCycles += uint64(cost)

	return hitLevel
}

// ControllerStats is the read-only statistics snapshot for the
// controller: per-level stats plus AMAT accounting.
type ControllerStats struct {
	Levels        []Stats
	TotalRequests uint64
	TotalCycles   uint64
	AMAT          float64
}

// Stats computes AMAT = total cycles / total requests.
func (c *Controller) Stats() ControllerStats {
	s := ControllerStats{
		Levels:        []Stats{c.l1.Stats(), c.l2.Stats(), c.l3.Stats()},
		TotalRequests: c.totalRequests,
		TotalCycles:   c.totalCycles,
	}
	if s.TotalRequests > 0 {
		s.AMAT = float64(s.TotalCycles) / float64(s.TotalRequests)
	}
	return s
}
