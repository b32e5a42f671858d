// Package monitoring implements the read-only HTTP façade (C8): a
// gorilla/mux router exposing the driver's stats, heap dump, host
// resource usage, and a reflective per-subsystem inspector, plus the
// standard net/http/pprof profiling endpoints.
//
// Grounded on monitoring/monitor.go's StartServer/listResources/
// listComponentDetails handlers, trimmed to the read-only surface
// SPEC_FULL.md §4.8 names — no pause/continue/run/tick, since the
// command loop (C7) is the only thing that ever mutates driver state.
package monitoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"sync"
	"time"

	// Registers /debug/pprof/* as a side effect.
	_ "net/http/pprof"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	gopsutilprocess "github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/sarchlab/memsim/simerr"
)

// Accessor is the read-only slice of the driver the monitor needs.
// Implemented by *driver.Driver; declared here rather than imported
// directly so the monitor never gets write access to the simulator.
type Accessor interface {
	Stats() string
	Dump() string
	Subsystem(name string) (interface{}, error)
}

// Monitor serves the read-only HTTP surface over an Accessor. All reads
// go through mu, the one lock shared with whatever goroutine is mutating
// the driver concurrently with the server (see SPEC_FULL.md §5).
type Monitor struct {
	mu       *sync.Mutex
	accessor Accessor

	portNumber int
	listener   net.Listener
}

// New builds a Monitor over driver, guarded by mu.
func New(driverMu *sync.Mutex, accessor Accessor) *Monitor {
	return &Monitor{mu: driverMu, accessor: accessor}
}

// WithPortNumber sets the port the server binds on Start; 0 picks a
// free port.
func (m *Monitor) WithPortNumber(port int) *Monitor {
	m.portNumber = port
	return m
}

// Addr returns the server's bound address; only valid after Start.
func (m *Monitor) Addr() string {
	if m.listener == nil {
		return ""
	}
	return m.listener.Addr().String()
}

// Start binds a listener and serves in the background. It returns once
// the listener is bound, not once the server exits.
func (m *Monitor) Start() error {
	r := mux.NewRouter()
	r.HandleFunc("/api/stats", m.handleStats)
	r.HandleFunc("/api/dump", m.handleDump)
	r.HandleFunc("/api/resource", m.handleResource)
	r.HandleFunc("/api/inspect/{subsystem}", m.handleInspect)
	r.HandleFunc("/api/profile", m.handleProfile)
	r.PathPrefix("/debug/pprof/").Handler(http.DefaultServeMux)

	addr := ":0"
	if m.portNumber > 0 {
		addr = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	m.listener = listener

	go func() {
		_ = http.Serve(listener, r)
	}()

	return nil
}

// Stop closes the listener, ending the background Serve goroutine.
func (m *Monitor) Stop() error {
	if m.listener == nil {
		return nil
	}
	err := m.listener.Close()
	m.listener = nil
	return err
}

func (m *Monitor) handleStats(w http.ResponseWriter, _ *http.Request) {
	m.mu.Lock()
	out := m.accessor.Stats()
	m.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"stats": out})
}

func (m *Monitor) handleDump(w http.ResponseWriter, _ *http.Request) {
	m.mu.Lock()
	out := m.accessor.Dump()
	m.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"dump": out})
}

type resourceResponse struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemoryRSS  uint64  `json:"memory_rss"`
}

func (m *Monitor) handleResource(w http.ResponseWriter, _ *http.Request) {
	proc, err := gopsutilprocess.NewProcess(int32(os.Getpid()))
	if err != nil {
		writeErr(w, err)
		return
	}

	cpuPercent, err := proc.CPUPercent()
	if err != nil {
		writeErr(w, err)
		return
	}

	memInfo, err := proc.MemoryInfo()
	if err != nil {
		writeErr(w, err)
		return
	}

	rsp := resourceResponse{CPUPercent: cpuPercent, MemoryRSS: memInfo.RSS}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(rsp)
}

func (m *Monitor) handleInspect(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["subsystem"]

	m.mu.Lock()
	sub, err := m.accessor.Subsystem(name)
	m.mu.Unlock()

	if err != nil {
		if simerr.Is(err, simerr.InvalidConfig) {
			w.WriteHeader(http.StatusNotFound)
		} else {
			w.WriteHeader(http.StatusInternalServerError)
		}
		fmt.Fprintf(w, "error: %s", err)
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(sub)
	serializer.SetMaxDepth(3)

	if err := serializer.Serialize(w); err != nil {
		writeErr(w, err)
	}
}

// handleProfile captures one second of CPU profile and returns it as the
// JSON-encoded google/pprof profile.Profile, for tooling that wants a
// parsed profile rather than the raw pprof.proto bytes /debug/pprof
// serves.
func (m *Monitor) handleProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	if err := pprof.StartCPUProfile(buf); err != nil {
		writeErr(w, err)
		return
	}
	time.Sleep(time.Second)
	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	if err != nil {
		writeErr(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(prof)
}

func writeErr(w http.ResponseWriter, err error) {
	w.WriteHeader(http.StatusInternalServerError)
	fmt.Fprintf(w, "error: %s", err)
}
