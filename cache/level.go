package cache

import (
	"github.com/sarchlab/memsim/simerr"
)

// Policy selects the per-level replacement algorithm.
type Policy int

const (
	// PolicyLRU evicts the line with the oldest last-use time.
	PolicyLRU Policy = iota
	// PolicyFIFO evicts the line with the oldest insertion time.
	PolicyFIFO
)

// ParsePolicy maps a command token to a Policy.
func ParsePolicy(s string) (Policy, bool) {
	switch s {
	case "LRU", "lru":
		return PolicyLRU, true
	case "FIFO", "fifo":
		return PolicyFIFO, true
	default:
		return 0, false
	}
}

func (p Policy) String() string {
	if p == PolicyFIFO {
		return "FIFO"
	}
	return "LRU"
}

// Level is one set-associative cache level.
type Level struct {
	name          string
	totalSize     uint64
	blockSize     uint64
	associativity int
	policy        Policy

	numSets uint64
	sets    []*set

	clock uint64
	hits  uint64
	miss  uint64

	writeBacks uint64
}

// NewLevel builds a cache level. totalSize must be evenly divisible by
// blockSize * associativity, yielding a whole number of sets.
func NewLevel(name string, totalSize, blockSize uint64, associativity int, policy Policy) (*Level, error) {
	if blockSize == 0 || associativity <= 0 {
		return nil, simerr.New(simerr.InvalidConfig, "%s: block size and associativity must be positive", name)
	}

	denom := blockSize * uint64(associativity)
	if denom == 0 || totalSize%denom != 0 {
		return nil, simerr.New(simerr.InvalidConfig,
			"%s: size %d does not divide evenly by block %d * associativity %d",
			name, totalSize, blockSize, associativity)
	}

	numSets := totalSize / denom
	if numSets == 0 {
		return nil, simerr.New(simerr.InvalidConfig, "%s: geometry yields zero sets", name)
	}

	sets := make([]*set, numSets)
	for i := range sets {
		sets[i] = newSet(associativity)
	}

	return &Level{
		name:          name,
		totalSize:     totalSize,
		blockSize:     blockSize,
		associativity: associativity,
		policy:        policy,
		numSets:       numSets,
		sets:          sets,
	}, nil
}

// Name returns the level's label ("L1", "L2", "L3", ...).
func (l *Level) Name() string { return l.name }

func (l *Level) decode(address uint64) (setIndex, tag uint64) {
	setIndex = (address / l.blockSize) % l.numSets
	tag = address / (l.blockSize * l.numSets)
	return
}

// Access performs one read or write access and reports whether it hit.
// A write-back event is counted (not returned) when the evicted line on
// a miss was dirty — no contents are moved, only the counter advances.
func (l *Level) Access(address uint64, isWrite bool) bool {
	l.clock++

	setIdx, tag := l.decode(address)
	s := l.sets[setIdx]

	if way := s.lookup(tag); way != -1 {
		l.hits++
		if l.policy == PolicyLRU {
			s.lines[way].LastUsed = l.clock
		}
		if isWrite {
			s.lines[way].Dirty = true
		}
		return true
	}

	l.miss++
	l.install(s, tag, isWrite)
	return false
}

// install places tag into set s, evicting per policy if every way is
// already valid.
func (l *Level) install(s *set, tag uint64, isWrite bool) {
	way := s.firstInvalid()
	if way == -1 {
		way = s.victim(l.policy)
		if s.lines[way].Dirty {
			l.writeBacks++
		}
	}

	s.lines[way] = Line{
		Valid:    true,
		Dirty:    isWrite,
		Tag:      tag,
		LastUsed: l.clock,
		Inserted: l.clock,
	}
}

// Stats is the read-only statistics snapshot for one cache level.
type Stats struct {
	Name       string
	Hits       uint64
	Misses     uint64
	HitRate    float64
	WriteBacks uint64
	NumSets    uint64
}

// Stats computes hit rate = hits / (hits + misses) when non-zero.
func (l *Level) Stats() Stats {
	s := Stats{Name: l.name, Hits: l.hits, Misses: l.miss, WriteBacks: l.writeBacks, NumSets: l.numSets}
	total := l.hits + l.miss
	if total > 0 {
		s.HitRate = float64(l.hits) / float64(total)
	}
	return s
}
