package device

// Type identifies the kind of physical accelerator behind a handle.
// TypeNone is a sentinel meaning "no device selected"; it is never a
// schedulable target.
type Type int

const (
	TypeNone Type = iota
	TypeGPU
	TypeFPGA
)

func (t Type) String() string {
	switch t {
	case TypeGPU:
		return "gpu"
	case TypeFPGA:
		return "fpga"
	default:
		return "none"
	}
}

// UnitType identifies which computation an initialization or execution
// call concerns. UnitAll is an initialization scope meaning both MSM
// and NTT; UnitNone is the unset sentinel.
type UnitType int

const (
	UnitNone UnitType = iota
	UnitMSM
	UnitNTT
	UnitAll
)

func (u UnitType) String() string {
	switch u {
	case UnitMSM:
		return "msm"
	case UnitNTT:
		return "ntt"
	case UnitAll:
		return "all"
	default:
		return "none"
	}
}

// Status is the lifecycle state of a device handle.
//
//	StatusNone:    never initialized, or released by deinit
//	StatusIdle:    hardware claimed, no parameters loaded
//	StatusReady:   parameters loaded, available for execution
//	StatusRunning: currently executing a unit
//
// Transitions only along None→Idle→Ready→Running→Ready, and
// {Idle,Ready}→None via deinit.
type Status int32

const (
	StatusNone Status = iota
	StatusIdle
	StatusReady
	StatusRunning
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusReady:
		return "ready"
	case StatusRunning:
		return "running"
	default:
		return "none"
	}
}

// Info is a read-only snapshot of one device. Taking a snapshot never
// blocks on an in-flight execution; the status is the last observed one.
type Info struct {
	DeviceID    int    `json:"deviceId"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Status      string `json:"status"`
	TotalMemory int64  `json:"totalMemory"`
	UsedMemory  int64  `json:"usedMemory"`
}
