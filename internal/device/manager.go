package device

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/zkaccel/accel-node/internal/codec"
	"github.com/zkaccel/accel-node/internal/config"
	"github.com/zkaccel/accel-node/internal/metrics"
	"github.com/zkaccel/accel-node/internal/params"
)

// InitRequest carries one initialization call. Unit selects the scope:
// UnitMSM requires Bases, UnitNTT requires Omega, UnitAll requires
// both. Re-initializing a param ID with byte-identical data is a
// no-op; conflicting data fails unless Replace is set.
type InitRequest struct {
	Unit    UnitType
	ParamID params.ParamID
	Bases   [][]byte
	Omega   []byte
	Replace bool
}

// Manager owns the device inventory and the parameter store, and is
// the only component that touches either. Callers hold no references
// into it: parameters are addressed by param ID, devices by device ID,
// and all payloads cross as packed byte buffers.
//
// Concurrency: Init and Deinit serialize against each other on the
// manager lock. Executions on distinct devices proceed concurrently;
// executions on one device serialize on its handle lock. Deinit does
// not wait for in-flight work; it fails with ErrDeviceBusy when any
// device is observed Running, and the caller retries once its
// executions have drained.
type Manager struct {
	log    *zap.Logger
	cdc    codec.Codec
	store  *params.Store
	policy Policy

	preferred Type

	mu       sync.RWMutex
	handles  []*Handle
	msmOwner map[params.ParamID]*Handle

	// Device and param ID of the active NTT context, set by the most
	// recent NTT-scoped Init.
	nttOwner *Handle
	nttParam params.ParamID
}

// NewManager builds the device inventory described by cfg and uses the
// reference dispatch policy.
func NewManager(cfg *config.Config, log *zap.Logger) (*Manager, error) {
	return NewManagerWithPolicy(cfg, PreferredTypePolicy{}, log)
}

// NewManagerWithPolicy is NewManager with a caller-supplied dispatch
// policy.
func NewManagerWithPolicy(cfg *config.Config, policy Policy, log *zap.Logger) (*Manager, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log = log.Named("device_manager")

	m := &Manager{
		log:      log,
		cdc:      codec.BN254,
		store:    params.NewStore(),
		policy:   policy,
		msmOwner: make(map[params.ParamID]*Handle),
	}
	if cfg.Devices.Preferred == "fpga" {
		m.preferred = TypeFPGA
	} else {
		m.preferred = TypeGPU
	}

	if cfg.Devices.GPU.Enabled {
		for i := 0; i < cfg.Devices.GPU.Count; i++ {
			m.handles = append(m.handles, newHandle(len(m.handles), TypeGPU, NewGPUBackend(i, log)))
		}
	}
	if cfg.Devices.FPGA.Enabled {
		for i := 0; i < cfg.Devices.FPGA.Count; i++ {
			m.handles = append(m.handles, newHandle(len(m.handles), TypeFPGA, NewFPGABackend(i, log)))
		}
	}

	log.Info("device inventory built",
		zap.Int("devices", len(m.handles)),
		zap.String("preferred", m.preferred.String()))
	m.publishInventory()
	return m, nil
}

// Init validates the request, registers the parameter record, and
// brings the scheduled device to Ready with the record loaded.
func (m *Manager) Init(req InitRequest) error {
	wantBases := req.Unit == UnitMSM || req.Unit == UnitAll
	wantOmega := req.Unit == UnitNTT || req.Unit == UnitAll
	if !wantBases && !wantOmega {
		return fmt.Errorf("%w: unit type %s is not initializable", ErrInvalidArgument, req.Unit)
	}
	if wantBases {
		if len(req.Bases) == 0 {
			return fmt.Errorf("%w: unit %s requires bases", ErrInvalidArgument, req.Unit)
		}
		for i, buf := range req.Bases {
			if _, err := m.cdc.PointCount(buf); err != nil {
				return fmt.Errorf("bases %d: %w", i, err)
			}
		}
	}
	if wantOmega && len(req.Omega) != m.cdc.ScalarWidth {
		return fmt.Errorf("%w: unit %s requires a %d-byte omega", ErrInvalidArgument, req.Unit, m.cdc.ScalarWidth)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Idempotence and conflict detection against the existing record.
	newBases, newOmega := req.Bases, req.Omega
	if existing := m.store.Get(req.ParamID); existing != nil {
		basesMatch := !wantBases || recordBasesEqual(existing, req.Bases)
		omegaMatch := !wantOmega || recordOmegaEqual(existing, req.Omega)
		if basesMatch && omegaMatch && m.ownersCover(req) {
			m.log.Debug("init is idempotent", zap.Uint32("param_id", req.ParamID), zap.String("unit", req.Unit.String()))
			return nil
		}
		conflict := (wantBases && len(existing.Bases) > 0 && !recordBasesEqual(existing, req.Bases)) ||
			(wantOmega && existing.Omega != nil && !recordOmegaEqual(existing, req.Omega))
		if conflict && !req.Replace {
			return fmt.Errorf("%w: param %d already holds different %s data", ErrAlreadyInitialized, req.ParamID, req.Unit)
		}
		// Merge: an init scoped to one unit keeps the record's data for
		// the other unit.
		if !wantBases {
			newBases = existing.Bases
		}
		if !wantOmega {
			newOmega = existing.Omega
		}
	}

	h, err := m.policy.Pick(req.Unit, m.preferred, m.handles)
	if err != nil {
		return err
	}

	rec := &params.Record{Bases: newBases, Omega: newOmega}
	if err := m.loadOnDevice(h, req.Unit, req.ParamID, rec); err != nil {
		return err
	}

	m.store.Put(req.ParamID, newBases, newOmega)
	if wantBases {
		m.msmOwner[req.ParamID] = h
	}
	if wantOmega {
		m.nttOwner = h
		m.nttParam = req.ParamID
	}

	m.publishParams()
	m.publishInventory()
	m.log.Info("param initialized",
		zap.Uint32("param_id", req.ParamID),
		zap.String("unit", req.Unit.String()),
		zap.Int("device_id", h.ID()),
		zap.String("device_type", h.Type().String()))
	return nil
}

// loadOnDevice walks one device through the claim/load transitions.
func (m *Manager) loadOnDevice(h *Handle, unit UnitType, id params.ParamID, rec *params.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	claimed := false
	if h.Status() == StatusNone {
		h.setStatus(StatusIdle)
		claimed = true
		m.log.Debug("hardware claimed", zap.Int("device_id", h.ID()))
	}

	if err := h.backend.InitUnit(unit, id, rec); err != nil {
		if claimed {
			// Claim is rolled back so a failed init leaves no
			// half-initialized device behind.
			h.setStatus(StatusNone)
		}
		if isCodecError(err) {
			return err
		}
		return fmt.Errorf("%w: device %d: %v", ErrDeviceInit, h.ID(), err)
	}

	h.markLoaded(id)
	h.setStatus(StatusReady)
	return nil
}

// ExecuteMSM runs an MSM of the packed scalars against the bases at
// basesIndex under paramID, returning the packed point result. The
// dispatched device must be Ready.
func (m *Manager) ExecuteMSM(paramID params.ParamID, basesIndex int, scalars []byte) ([]byte, error) {
	m.mu.RLock()
	h := m.msmOwner[paramID]
	m.mu.RUnlock()
	if h == nil {
		return nil, fmt.Errorf("%w: no MSM context for param %d", ErrNotInitialized, paramID)
	}

	rec := m.store.Get(paramID)
	if rec == nil {
		return nil, fmt.Errorf("%w: no parameters for param %d", ErrNotInitialized, paramID)
	}
	if basesIndex < 0 || basesIndex >= rec.BasesCount() {
		return nil, fmt.Errorf("%w: index %d, %d bases loaded", ErrInvalidBasesIndex, basesIndex, rec.BasesCount())
	}
	if _, err := m.cdc.ScalarCount(scalars); err != nil {
		return nil, err
	}

	out, err := m.runUnit(h, UnitMSM, func() ([]byte, error) {
		return h.backend.ExecuteMSM(paramID, scalars, basesIndex)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ExecuteNTT transforms the packed scalars in place over the active
// NTT context. The buffer must hold exactly 1 << logN scalars; on any
// failure the buffer is left unmodified.
func (m *Manager) ExecuteNTT(scalars []byte, logN uint32) error {
	n, err := m.cdc.ScalarCount(scalars)
	if err != nil {
		return err
	}
	if logN >= 63 || n != 1<<logN {
		return fmt.Errorf("%w: %d scalars, want 1<<%d", ErrInvalidArgument, n, logN)
	}

	m.mu.RLock()
	h := m.nttOwner
	paramID := m.nttParam
	m.mu.RUnlock()
	if h == nil {
		return fmt.Errorf("%w: no NTT context loaded", ErrNotInitialized)
	}

	_, err = m.runUnit(h, UnitNTT, func() ([]byte, error) {
		return nil, h.backend.ExecuteNTT(paramID, scalars, logN)
	})
	return err
}

// runUnit serializes one unit execution on the device, walking the
// Ready→Running→Ready transitions. On a kernel fault the device is
// deterministically returned to Ready before the error surfaces.
func (m *Manager) runUnit(h *Handle, unit UnitType, run func() ([]byte, error)) ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if st := h.Status(); st != StatusReady {
		return nil, fmt.Errorf("%w: device %d is %s", ErrNotInitialized, h.ID(), st)
	}

	h.setStatus(StatusRunning)
	start := time.Now()
	out, err := run()
	h.setStatus(StatusReady)

	elapsed := time.Since(start)
	if err != nil {
		metrics.ExecutionsTotal.WithLabelValues(unit.String(), "error").Inc()
		m.log.Error("unit execution failed",
			zap.String("unit", unit.String()),
			zap.Int("device_id", h.ID()),
			zap.Error(err))
		if isCodecError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: device %d: %v", ErrExecution, h.ID(), err)
	}

	metrics.ExecutionsTotal.WithLabelValues(unit.String(), "ok").Inc()
	metrics.ExecutionDuration.WithLabelValues(unit.String(), h.Type().String()).
		Observe(float64(elapsed.Microseconds()) / 1000.0)
	m.log.Debug("unit executed",
		zap.String("unit", unit.String()),
		zap.Int("device_id", h.ID()),
		zap.Duration("elapsed", elapsed))
	return out, nil
}

// Deinit releases every managed device and clears the parameter store.
// It does not wait for in-flight executions: if any device is observed
// Running, nothing is released and ErrDeviceBusy is returned.
func (m *Manager) Deinit() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, h := range m.handles {
		if h.Status() == StatusRunning {
			return fmt.Errorf("%w: device %d is running", ErrDeviceBusy, h.ID())
		}
	}

	for _, h := range m.handles {
		h.mu.Lock()
		if h.Status() != StatusNone {
			if err := h.backend.Deinit(); err != nil {
				m.log.Warn("backend deinit failed", zap.Int("device_id", h.ID()), zap.Error(err))
			}
			h.clearLoaded()
			h.setStatus(StatusNone)
		}
		h.mu.Unlock()
	}

	m.store.Clear()
	m.msmOwner = make(map[params.ParamID]*Handle)
	m.nttOwner = nil
	m.nttParam = 0

	m.publishParams()
	m.publishInventory()
	m.log.Info("all devices released")
	return nil
}

// DeviceInfos returns read-only snapshots of the managed devices of
// the given type; TypeNone selects every device. Snapshots never block
// on in-flight executions.
func (m *Manager) DeviceInfos(t Type) []Info {
	m.mu.RLock()
	defer m.mu.RUnlock()

	infos := make([]Info, 0, len(m.handles))
	for _, h := range m.handles {
		if t != TypeNone && h.Type() != t {
			continue
		}
		infos = append(infos, h.Info())
	}
	return infos
}

// GPUDeviceInfos returns snapshots of the managed GPUs.
func (m *Manager) GPUDeviceInfos() []Info { return m.DeviceInfos(TypeGPU) }

// FPGADeviceInfos returns snapshots of the managed FPGA cards.
func (m *Manager) FPGADeviceInfos() []Info { return m.DeviceInfos(TypeFPGA) }

// DeviceCount returns the number of managed devices of the given type;
// TypeNone counts every device.
func (m *Manager) DeviceCount(t Type) int {
	return len(m.DeviceInfos(t))
}

// DeviceInfo returns the snapshot for one device ID.
func (m *Manager) DeviceInfo(id int) (Info, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if id < 0 || id >= len(m.handles) {
		return Info{}, fmt.Errorf("%w: no device %d", ErrInvalidArgument, id)
	}
	return m.handles[id].Info(), nil
}

// ownersCover reports whether the request's unit scopes already map to
// a device, so an identical re-init can be skipped. Callers hold m.mu.
func (m *Manager) ownersCover(req InitRequest) bool {
	if req.Unit == UnitMSM || req.Unit == UnitAll {
		if m.msmOwner[req.ParamID] == nil {
			return false
		}
	}
	if req.Unit == UnitNTT || req.Unit == UnitAll {
		if m.nttOwner == nil || m.nttParam != req.ParamID {
			return false
		}
	}
	return true
}

func (m *Manager) publishParams() {
	metrics.ParamsLoaded.Set(float64(m.store.Len()))
	var total int64
	for _, id := range m.store.IDs() {
		if rec := m.store.Get(id); rec != nil {
			for _, b := range rec.Bases {
				total += int64(len(b))
			}
			total += int64(len(rec.Omega))
		}
	}
	metrics.ParamsBytesLoaded.Set(float64(total))
}

func (m *Manager) publishInventory() {
	metrics.DevicesByStatus.Reset()
	for _, h := range m.handles {
		metrics.DevicesByStatus.WithLabelValues(h.Type().String(), h.Status().String()).Inc()
		metrics.DeviceMemoryUsedBytes.WithLabelValues(h.Info().Name).Set(float64(h.Info().UsedMemory))
	}
}

func recordBasesEqual(rec *params.Record, bases [][]byte) bool {
	if len(rec.Bases) != len(bases) {
		return false
	}
	for i := range bases {
		if !bytes.Equal(rec.Bases[i], bases[i]) {
			return false
		}
	}
	return true
}

func recordOmegaEqual(rec *params.Record, omega []byte) bool {
	return bytes.Equal(rec.Omega, omega)
}

func isCodecError(err error) bool {
	return errors.Is(err, codec.ErrMalformedBuffer)
}
