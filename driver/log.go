package driver

import (
	"log"

	"github.com/rs/xid"
)

// logCommand emits one log line, tagged with a fresh correlation id, for
// each Init, SetAllocator, SetPolicy, ConfigCache, Malloc, Free, Read and
// Write call; Dump, Stats and the other read-only accessors do not log. The id is purely a log-correlation token; it is
// never exposed to C7's output and is unrelated to heap/page/cache ids,
// which stay small monotonic integers.
func logCommand(name string) {
	log.Printf("cmd=%s corr=%s", name, xid.New().String())
}
