// Package repl implements the command loop (C7): a tokenizing
// line reader dispatching to the driver façade, the sole place
// simulator errors become user-facing text.
//
// Grounded on original_source/src/main.cpp's getline + stringstream
// dispatch loop, generalized from its fixed if/else chain to a single
// switch, and extended with the monitoring start/stop and sysinfo
// commands SPEC_FULL.md §6 adds.
package repl

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/browser"
	"github.com/shirou/gopsutil/process"

	"github.com/sarchlab/memsim/driver"
	"github.com/sarchlab/memsim/monitoring"
	"github.com/sarchlab/memsim/simerr"
)

// REPL reads command lines from in and writes responses to out, driving
// d. Mu is held around every command that touches d, and handed to the
// monitoring façade so its reads never race a command in flight.
type REPL struct {
	d  *driver.Driver
	mu sync.Mutex

	in  *bufio.Scanner
	out io.Writer

	mon *monitoring.Monitor
}

// New builds a REPL over driver d, reading commands from in and writing
// output to out.
func New(d *driver.Driver, in io.Reader, out io.Writer) *REPL {
	return &REPL{d: d, in: bufio.NewScanner(in), out: out}
}

// Close stops the monitoring server if one is running. Safe to call
// more than once, and safe to call when no monitor was ever started.
func (r *REPL) Close() error {
	r.mu.Lock()
	mon := r.mon
	r.mon = nil
	r.mu.Unlock()

	if mon == nil {
		return nil
	}
	return mon.Stop()
}

// Run reads and dispatches commands until EOF or an `exit` command.
// Returns nil on either clean exit.
func (r *REPL) Run() error {
	fmt.Fprintln(r.out, "System Initialized.")
	r.printHelp()

	for {
		fmt.Fprint(r.out, "\n> ")
		if !r.in.Scan() {
			return r.in.Err()
		}

		line := strings.TrimSpace(r.in.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		cmd := fields[0]
		args := fields[1:]

		if cmd == "exit" {
			return nil
		}

		if err := r.dispatch(cmd, args); err != nil {
			fmt.Fprintf(r.out, "Error: %s\n", err)
		}
	}
}

func (r *REPL) dispatch(cmd string, args []string) error {
	switch cmd {
	case "help":
		r.printHelp()
		return nil
	case "init":
		return r.cmdInit(args)
	case "set":
		return r.cmdSet(args)
	case "config":
		return r.cmdConfig(args)
	case "malloc":
		return r.cmdMalloc(args)
	case "free":
		return r.cmdFree(args)
	case "read":
		return r.cmdAccess(args, false)
	case "write":
		return r.cmdAccess(args, true)
	case "dump":
		r.mu.Lock()
		fmt.Fprintln(r.out, r.d.Dump())
		r.mu.Unlock()
		return nil
	case "stats":
		r.mu.Lock()
		fmt.Fprintln(r.out, r.d.Stats())
		r.mu.Unlock()
		return nil
	case "sysinfo":
		return r.cmdSysinfo()
	case "monitor":
		return r.cmdMonitor(args)
	default:
		return simerr.New(simerr.ParseError, "unknown command %q", cmd)
	}
}

func (r *REPL) printHelp() {
	fmt.Fprintln(r.out, "--- Available Commands ---")
	fmt.Fprintln(r.out, "  init <size>                        : Initialize physical memory size")
	fmt.Fprintln(r.out, "  config cache <L1|L2|L3> <size> <block> <assoc> : Configure cache level")
	fmt.Fprintln(r.out, "  set allocator <first|best|worst|buddy>         : Set allocator")
	fmt.Fprintln(r.out, "  set policy <FIFO|LRU>              : Set VM replacement policy")
	fmt.Fprintln(r.out, "  malloc <size>                      : Allocate virtual memory block")
	fmt.Fprintln(r.out, "  free <id>                          : Free memory block")
	fmt.Fprintln(r.out, "  read <addr>                        : Read address (access)")
	fmt.Fprintln(r.out, "  write <addr>                       : Write address (sets dirty bit)")
	fmt.Fprintln(r.out, "  dump                                : Show heap block map")
	fmt.Fprintln(r.out, "  stats                               : Show all stats")
	fmt.Fprintln(r.out, "  sysinfo                             : Show host CPU/memory usage")
	fmt.Fprintln(r.out, "  monitor start [port] / monitor stop : Control the monitoring server")
	fmt.Fprintln(r.out, "  help / exit                         : Self-explanatory")
	fmt.Fprintln(r.out, "--------------------------")
}

func (r *REPL) cmdInit(args []string) error {
	size, err := parseUint(argOrEmpty(args, 0))
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.d.Init(size)
	r.mu.Unlock()

	fmt.Fprintf(r.out, "Memory initialized to %d bytes.\n", size)
	return nil
}

func (r *REPL) cmdSet(args []string) error {
	if len(args) < 2 {
		return simerr.New(simerr.ParseError, "usage: set <allocator|policy> <value>")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	switch args[0] {
	case "allocator":
		if err := r.d.SetAllocator(args[1]); err != nil {
			return err
		}
		fmt.Fprintf(r.out, "Allocator: %s\n", args[1])
		return nil
	case "policy":
		if err := r.d.SetPolicy(args[1]); err != nil {
			return err
		}
		fmt.Fprintf(r.out, "VM Policy set to: %s\n", strings.ToUpper(args[1]))
		return nil
	default:
		return simerr.New(simerr.ParseError, "usage: set <allocator|policy> <value>")
	}
}

func (r *REPL) cmdConfig(args []string) error {
	if len(args) != 5 || args[0] != "cache" {
		return simerr.New(simerr.ParseError, "usage: config cache <L1|L2|L3> <size> <block> <assoc>")
	}

	level := args[1]
	size, err := parseUint(args[2])
	if err != nil {
		return err
	}
	block, err := parseUint(args[3])
	if err != nil {
		return err
	}
	assoc, err := strconv.ParseInt(args[4], 0, 0)
	if err != nil {
		return simerr.New(simerr.ParseError, "invalid associativity %q", args[4])
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.d.ConfigCache(level, size, block, int(assoc)); err != nil {
		return err
	}
	fmt.Fprintf(r.out, "Cache %s reconfigured.\n", level)
	return nil
}

func (r *REPL) cmdMalloc(args []string) error {
	size, err := parseUint(argOrEmpty(args, 0))
	if err != nil {
		return err
	}

	r.mu.Lock()
	id, err := r.d.Malloc(size)
	r.mu.Unlock()
	if err != nil {
		return err
	}

	fmt.Fprintf(r.out, "Allocated id %d\n", id)
	return nil
}

func (r *REPL) cmdFree(args []string) error {
	id64, err := strconv.ParseInt(argOrEmpty(args, 0), 0, 0)
	if err != nil {
		return simerr.New(simerr.ParseError, "invalid id %q", argOrEmpty(args, 0))
	}
	id := int(id64)

	r.mu.Lock()
	err = r.d.Free(id)
	r.mu.Unlock()
	if err != nil {
		return err
	}

	fmt.Fprintf(r.out, "Freed id %d\n", id)
	return nil
}

func (r *REPL) cmdAccess(args []string, isWrite bool) error {
	addr, err := parseUint(argOrEmpty(args, 0))
	if err != nil {
		return simerr.New(simerr.ParseError, "invalid address %q", argOrEmpty(args, 0))
	}

	r.mu.Lock()
	var res driver.AccessResult
	if isWrite {
		res, err = r.d.Write(addr)
	} else {
		res, err = r.d.Read(addr)
	}
	r.mu.Unlock()
	if err != nil {
		return err
	}

	fmt.Fprintf(r.out, "      -> Phys Addr: 0x%x (%s)\n", res.PhysicalAddress, res.HitLevel)
	return nil
}

func (r *REPL) cmdSysinfo() error {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}
	cpuPercent, err := proc.CPUPercent()
	if err != nil {
		return err
	}
	memInfo, err := proc.MemoryInfo()
	if err != nil {
		return err
	}

	fmt.Fprintf(r.out, "CPU: %.2f%%  RSS: %d bytes\n", cpuPercent, memInfo.RSS)
	return nil
}

func (r *REPL) cmdMonitor(args []string) error {
	if len(args) == 0 {
		return simerr.New(simerr.ParseError, "usage: monitor <start|stop> [port]")
	}

	switch args[0] {
	case "start":
		if r.mon != nil {
			return simerr.New(simerr.InvalidConfig, "monitor already running at %s", r.mon.Addr())
		}

		rest := args[1:]
		open := false
		var portArgs []string
		for _, a := range rest {
			if a == "--open" {
				open = true
				continue
			}
			portArgs = append(portArgs, a)
		}

		port := 0
		if len(portArgs) > 0 {
			p, err := strconv.ParseInt(portArgs[0], 0, 0)
			if err != nil {
				return simerr.New(simerr.ParseError, "invalid port %q", portArgs[0])
			}
			port = int(p)
		}

		mon := monitoring.New(&r.mu, r.d).WithPortNumber(port)
		if err := mon.Start(); err != nil {
			return err
		}
		r.mon = mon

		fmt.Fprintf(r.out, "Monitoring at http://%s\n", mon.Addr())

		if open {
			if err := browser.OpenURL("http://" + mon.Addr()); err != nil {
				fmt.Fprintf(r.out, "Could not open browser: %s\n", err)
			}
		}
		return nil

	case "stop":
		if r.mon == nil {
			return simerr.New(simerr.InvalidConfig, "monitor is not running")
		}
		if err := r.mon.Stop(); err != nil {
			return err
		}
		r.mon = nil

		fmt.Fprintln(r.out, "Monitoring stopped.")
		return nil

	default:
		return simerr.New(simerr.ParseError, "usage: monitor <start|stop> [port]")
	}
}

// parseUint parses a decimal or 0x-prefixed hex unsigned integer, the
// numeric-argument convention spec.md §6 requires everywhere.
func parseUint(s string) (uint64, error) {
	if s == "" {
		return 0, simerr.New(simerr.ParseError, "missing numeric argument")
	}
	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, simerr.New(simerr.ParseError, "invalid number %q", s)
	}
	return v, nil
}

func argOrEmpty(args []string, i int) string {
	if i >= len(args) {
		return ""
	}
	return args[i]
}
