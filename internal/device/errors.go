package device

import "errors"

// Typed errors returned across the device-manager boundary. Callers
// discriminate with errors.Is; in particular ErrNoCompatibleDevice and
// ErrDeviceInit ("no usable hardware") are distinct from ErrExecution
// ("hardware present but the unit failed"), so a caller can pick a
// software fallback for the former and abort on the latter.
var (
	// ErrInvalidArgument reports malformed or missing init data, or a
	// length that does not match the requested transform size.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotInitialized reports an operation against a param ID or
	// device that is not in the Ready state.
	ErrNotInitialized = errors.New("not initialized")

	// ErrAlreadyInitialized reports a conflicting re-init of a param ID
	// without an explicit replace.
	ErrAlreadyInitialized = errors.New("already initialized")

	// ErrInvalidBasesIndex reports a bases index outside the range
	// loaded for the param ID.
	ErrInvalidBasesIndex = errors.New("invalid bases index")

	// ErrNoCompatibleDevice reports that the scheduler found no device
	// matching the requested unit and hardware preference.
	ErrNoCompatibleDevice = errors.New("no compatible device")

	// ErrDeviceInit reports a failed hardware claim or parameter load.
	ErrDeviceInit = errors.New("device init failed")

	// ErrDeviceBusy reports a deinit attempted while a device is
	// executing a unit.
	ErrDeviceBusy = errors.New("device busy")

	// ErrExecution reports a hardware fault during unit execution. The
	// device is returned to Ready before this is surfaced.
	ErrExecution = errors.New("execution failed")
)
