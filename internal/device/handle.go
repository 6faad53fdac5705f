package device

import (
	"sync"
	"sync/atomic"

	"github.com/zkaccel/accel-node/internal/params"
)

// Handle represents one physical accelerator instance. The Manager owns
// every handle exclusively; callers only ever see device IDs and Info
// snapshots. The mutex serializes init, execute, and deinit on the
// device, accelerators being single-stream, while the status is stored
// atomically so info queries never block on an in-flight execution.
type Handle struct {
	id      int
	devType Type
	backend Backend

	mu     sync.Mutex
	status atomic.Int32

	// param IDs whose data is loaded on this device. Guarded by mu;
	// the count is mirrored atomically for lock-free scheduling reads.
	loaded     map[params.ParamID]struct{}
	paramCount atomic.Int32
}

func newHandle(id int, devType Type, backend Backend) *Handle {
	return &Handle{
		id:      id,
		devType: devType,
		backend: backend,
		loaded:  make(map[params.ParamID]struct{}),
	}
}

// ID returns the manager-assigned device index.
func (h *Handle) ID() int { return h.id }

// Type returns the device's hardware type.
func (h *Handle) Type() Type { return h.devType }

// Status returns the last-observed lifecycle state.
func (h *Handle) Status() Status {
	return Status(h.status.Load())
}

func (h *Handle) setStatus(s Status) {
	h.status.Store(int32(s))
}

// Info assembles a read-only snapshot without taking the device lock.
func (h *Handle) Info() Info {
	bi := h.backend.Info()
	return Info{
		DeviceID:    h.id,
		Name:        bi.Name,
		Type:        h.devType.String(),
		Status:      h.Status().String(),
		TotalMemory: bi.TotalMemory,
		UsedMemory:  bi.UsedMemory,
	}
}

// markLoaded records that the device holds id's parameters. Callers
// hold h.mu.
func (h *Handle) markLoaded(id params.ParamID) {
	h.loaded[id] = struct{}{}
	h.paramCount.Store(int32(len(h.loaded)))
}

// clearLoaded drops all parameter associations. Callers hold h.mu.
func (h *Handle) clearLoaded() {
	h.loaded = make(map[params.ParamID]struct{})
	h.paramCount.Store(0)
}

// loadedParams returns the last-observed number of parameter sets on
// the device. Safe without the device lock.
func (h *Handle) loadedParams() int {
	return int(h.paramCount.Load())
}
