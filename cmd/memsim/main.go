// Command memsim runs the interactive memory-hierarchy simulator: a
// heap allocator, a paged virtual-memory translator, and a three-level
// cache, driven from stdin one command at a time.
//
// Grounded on original_source/src/main.cpp's main(), restructured
// behind a cobra root command the way the teacher's own binaries are
// structured, with .env defaults loaded the way joho/godotenv is meant
// to be used: once, at startup, before anything else runs.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/memsim/driver"
	"github.com/sarchlab/memsim/heap"
	"github.com/sarchlab/memsim/internal/repl"
	"github.com/sarchlab/memsim/vm"
)

func main() {
	var envPath string

	root := &cobra.Command{
		Use:   "memsim",
		Short: "Interactive memory hierarchy simulator",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSimulator(envPath)
		},
	}
	root.Flags().StringVar(&envPath, "config", ".env", "path to a .env file seeding initial defaults")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		atexit.Exit(1)
	}
	atexit.Exit(0)
}

func runSimulator(envPath string) error {
	// godotenv.Load silently does nothing useful if the file is absent;
	// that's fine, the built-in defaults below cover it.
	_ = godotenv.Load(envPath)

	size := envUint("MEMSIM_SIZE", 1024)
	pageSize := envUint("MEMSIM_PAGE_SIZE", 64)
	vaBits := int(envUint("MEMSIM_VA_BITS", 16))

	d := driver.New(size, driver.WithVABits(vaBits), driver.WithPageSize(pageSize))

	if allocName := os.Getenv("MEMSIM_ALLOCATOR"); allocName != "" {
		if _, ok := heap.ParseStrategy(allocName); ok || allocName == driver.AllocatorBuddy {
			_ = d.SetAllocator(allocName)
		}
	}
	if policyName := os.Getenv("MEMSIM_POLICY"); policyName != "" {
		if _, ok := vm.ParsePolicy(policyName); ok {
			_ = d.SetPolicy(policyName)
		}
	}

	r := repl.New(d, os.Stdin, os.Stdout)
	atexit.Register(func() { _ = r.Close() })

	return r.Run()
}

func envUint(key string, def uint64) uint64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseUint(v, 0, 64)
	if err != nil {
		return def
	}
	return n
}
