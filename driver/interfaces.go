package driver

import (
	"github.com/sarchlab/memsim/cache"
	"github.com/sarchlab/memsim/vm"
)

// Translator is the subset of *vm.Translator the driver depends on.
// Declared as an interface so façade-level tests can substitute a
// go.uber.org/mock double instead of driving a real page table.
type Translator interface {
	Translate(va uint64) (uint64, error)
	Stats() vm.Stats
}

// CacheController is the subset of *cache.Controller the driver depends
// on, mockable for the same reason as Translator.
type CacheController interface {
	AccessMemory(address uint64, isWrite bool) string
	Stats() cache.ControllerStats
	Level(name string) *cache.Level
	Reconfigure(name string, totalSize, blockSize uint64, assoc int, policy cache.Policy) error
}
