package device

import "github.com/zkaccel/accel-node/internal/params"

// BackendInfo is the device-local fragment of an Info snapshot.
type BackendInfo struct {
	Name        string
	TotalMemory int64
	UsedMemory  int64
}

// Backend is the capability set a device handle needs from one physical
// accelerator. Adapters implement it by translating the packed byte
// buffers of the boundary contract into their vendor kernel's native
// call convention and back; vendor types never cross this interface.
//
// Each param ID gets its own kernel context on the device, so circuits
// with different parameter sets stay isolated even when they share
// hardware.
//
// Implementation notes:
//   - InitUnit, Execute*, and Deinit arrive serialized under the owning
//     handle's lock; Info and IsAvailable may be called concurrently
//     with them and must not block.
//   - InitUnit may be called again for the same param ID to replace
//     previously loaded parameters.
type Backend interface {
	// InitUnit claims the hardware if needed and loads the record's
	// parameters for the given unit scope under id's context.
	InitUnit(unit UnitType, id params.ParamID, rec *params.Record) error

	// ExecuteMSM runs a multi-scalar multiplication of the packed
	// scalars against id's bases at basesIndex and returns the packed
	// point result.
	ExecuteMSM(id params.ParamID, scalars []byte, basesIndex int) ([]byte, error)

	// ExecuteNTT transforms the packed scalars in place under id's
	// omega; the buffer must hold exactly 1 << logN scalars.
	ExecuteNTT(id params.ParamID, scalars []byte, logN uint32) error

	// Deinit releases the hardware context and every param context.
	Deinit() error

	// Info reports the backend's identity and memory footprint.
	Info() BackendInfo

	// IsAvailable performs a quick presence check without heavy
	// initialization; the scheduler skips unavailable backends.
	IsAvailable() bool
}
