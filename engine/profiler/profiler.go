// Package profiler records nested timing scopes into a fixed ring and dumps
// them as a speedscope evented profile. It is off until Enable is called;
// disabled scopes cost one atomic load.
package profiler

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultCapacity is the ring size used when Enable gets a non-positive value.
const DefaultCapacity = 1 << 16

// Enable starts recording into a ring of capacity scope events, dropping
// anything recorded before.
func Enable(capacity int) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	ring.init(capacity)
}

// Disable stops recording; recorded events stay available to Dump.
func Disable() { ring.ready.Store(false) }

// Enabled reports whether scopes are being recorded.
func Enabled() bool { return ring.ready.Load() }

// Start opens a scope and returns the func that closes it.
//
//	defer profiler.Start("batch.draw")()
func Start(name string) func() {
	if !ring.ready.Load() {
		return func() {}
	}
	id := intern(name)
	start := time.Now().UnixNano()
	ring.push(event{atNS: start, name: id, open: true})
	return func() {
		end := max(time.Now().UnixNano(), start)
		ring.push(event{atNS: end, name: id, open: false})
	}
}

// Recorded is the number of events currently held in the ring.
func Recorded() int { return len(ring.snapshot()) }

// MemStats is a runtime snapshot for debug overlays and logs.
type MemStats struct {
	Alloc      uint64
	Mallocs    uint64
	Goroutines int
	CPUs       int
}

func ReadMemStats() MemStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return MemStats{
		Alloc:      m.Alloc,
		Mallocs:    m.Mallocs,
		Goroutines: runtime.NumGoroutine(),
		CPUs:       runtime.NumCPU(),
	}
}

// ---------- event ring ----------

type event struct {
	atNS int64
	name int
	open bool
}

type eventRing struct {
	mu    sync.Mutex
	ready atomic.Bool
	size  uint64
	write atomic.Uint64
	evs   []event
}

func (r *eventRing) init(capacity int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.size = uint64(capacity)
	r.evs = make([]event, r.size)
	r.write.Store(0)
	r.ready.Store(true)
}

func (r *eventRing) push(e event) {
	i := r.write.Add(1) - 1
	r.evs[i%r.size] = e
}

// snapshot returns events oldest first, in write order.
func (r *eventRing) snapshot() []event {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := r.write.Load()
	if n == 0 || r.size == 0 {
		return nil
	}
	var start uint64
	if n > r.size {
		start = n - r.size
	}
	out := make([]event, 0, n-start)
	for k := start; k < n; k++ {
		out = append(out, r.evs[k%r.size])
	}
	return out
}

var ring eventRing

// ---------- scope names ----------

var (
	namesMu sync.Mutex
	names   []string
	nameIDs = map[string]int{}
)

func intern(name string) int {
	namesMu.Lock()
	defer namesMu.Unlock()
	if id, ok := nameIDs[name]; ok {
		return id
	}
	id := len(names)
	nameIDs[name] = id
	names = append(names, name)
	return id
}
