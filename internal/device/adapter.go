package device

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"go.uber.org/zap"

	"github.com/zkaccel/accel-node/internal/codec"
	"github.com/zkaccel/accel-node/internal/kernel"
	"github.com/zkaccel/accel-node/internal/params"
)

// kernelBackend adapts the byte-stream boundary contract onto vendor
// kernels. Both device-type adapters embed it; they differ only in
// identity, card geometry, and kernel factory. Every param ID owns a
// separate kernel context, mirroring how vendor managers hold one
// handle per loaded parameter set. All typed field and curve values
// live strictly between decode and encode here; nothing above this
// file sees them.
type kernelBackend struct {
	name        string
	totalMemory int64
	cdc         codec.Codec
	newKernel   func() kernel.Kernel
	log         *zap.Logger

	// contexts is read by Info concurrently with executions, so it has
	// its own lock; usedMemory is the cached footprint across contexts.
	ctxMu      sync.RWMutex
	contexts   map[params.ParamID]kernel.Kernel
	usedMemory atomic.Int64
}

func newKernelBackend(name string, totalMemory int64, newKernel func() kernel.Kernel, log *zap.Logger) *kernelBackend {
	return &kernelBackend{
		name:        name,
		totalMemory: totalMemory,
		cdc:         codec.BN254,
		newKernel:   newKernel,
		log:         log,
		contexts:    make(map[params.ParamID]kernel.Kernel),
	}
}

// InitUnit decodes the record's buffers once and hands the typed values
// to id's kernel context; executions reference them by index afterwards.
func (b *kernelBackend) InitUnit(unit UnitType, id params.ParamID, rec *params.Record) error {
	kern := b.context(id)
	if kern == nil {
		kern = b.newKernel()
	}

	if unit == UnitMSM || unit == UnitAll {
		bases, err := b.decodeBases(rec.Bases)
		if err != nil {
			return err
		}
		if err := kern.LoadBases(bases); err != nil {
			return fmt.Errorf("load bases: %w", err)
		}
	}
	if unit == UnitNTT || unit == UnitAll {
		omega, err := b.decodeScalar(rec.Omega)
		if err != nil {
			return err
		}
		if err := kern.LoadOmega(omega); err != nil {
			return fmt.Errorf("load omega: %w", err)
		}
	}

	b.ctxMu.Lock()
	b.contexts[id] = kern
	b.ctxMu.Unlock()
	b.recountMemory()

	b.log.Debug("unit initialized",
		zap.String("backend", b.name),
		zap.String("unit", unit.String()),
		zap.Uint32("param_id", id),
		zap.Int("bases", rec.BasesCount()))
	return nil
}

// ExecuteMSM decodes the packed scalars, runs id's kernel against the
// bases at basesIndex, and returns the single packed point result.
func (b *kernelBackend) ExecuteMSM(id params.ParamID, scalars []byte, basesIndex int) ([]byte, error) {
	kern := b.context(id)
	if kern == nil {
		return nil, fmt.Errorf("no kernel context for param %d", id)
	}
	elems, err := b.decodeScalars(scalars)
	if err != nil {
		return nil, err
	}
	point, err := kern.MSM(elems, basesIndex)
	if err != nil {
		return nil, err
	}
	raw := point.RawBytes()
	return raw[:], nil
}

// ExecuteNTT transforms the packed scalars in place: the decoded values
// are re-encoded into the caller's buffer after the kernel returns.
func (b *kernelBackend) ExecuteNTT(id params.ParamID, scalars []byte, logN uint32) error {
	kern := b.context(id)
	if kern == nil {
		return fmt.Errorf("no kernel context for param %d", id)
	}
	elems, err := b.decodeScalars(scalars)
	if err != nil {
		return err
	}
	if err := kern.NTT(elems, logN); err != nil {
		return err
	}
	for i := range elems {
		enc := elems[i].Bytes()
		copy(scalars[i*b.cdc.ScalarWidth:(i+1)*b.cdc.ScalarWidth], enc[:])
	}
	return nil
}

// Deinit releases every param context.
func (b *kernelBackend) Deinit() error {
	b.ctxMu.Lock()
	for _, kern := range b.contexts {
		kern.Release()
	}
	b.contexts = make(map[params.ParamID]kernel.Kernel)
	b.ctxMu.Unlock()
	b.usedMemory.Store(0)
	b.log.Debug("backend released", zap.String("backend", b.name))
	return nil
}

// Info reports the backend's identity and memory footprint without
// blocking on in-flight executions.
func (b *kernelBackend) Info() BackendInfo {
	return BackendInfo{
		Name:        b.name,
		TotalMemory: b.totalMemory,
		UsedMemory:  b.usedMemory.Load(),
	}
}

// IsAvailable reports whether the backing kernel is usable. The
// reference kernel always is; cgo-backed kernels probe the driver.
func (b *kernelBackend) IsAvailable() bool {
	return b.newKernel != nil
}

func (b *kernelBackend) context(id params.ParamID) kernel.Kernel {
	b.ctxMu.RLock()
	defer b.ctxMu.RUnlock()
	return b.contexts[id]
}

func (b *kernelBackend) recountMemory() {
	b.ctxMu.RLock()
	var total int64
	for _, kern := range b.contexts {
		total += kern.MemoryUsed()
	}
	b.ctxMu.RUnlock()
	b.usedMemory.Store(total)
}

func (b *kernelBackend) decodeBases(buffers [][]byte) ([][]bn254.G1Affine, error) {
	bases := make([][]bn254.G1Affine, len(buffers))
	for i, buf := range buffers {
		frames, err := b.cdc.SplitPoints(buf)
		if err != nil {
			return nil, err
		}
		points := make([]bn254.G1Affine, len(frames))
		for j, f := range frames {
			if _, err := points[j].SetBytes(f); err != nil {
				return nil, fmt.Errorf("%w: bases %d point %d: %v", codec.ErrMalformedBuffer, i, j, err)
			}
		}
		bases[i] = points
	}
	return bases, nil
}

func (b *kernelBackend) decodeScalars(buf []byte) ([]fr.Element, error) {
	frames, err := b.cdc.SplitScalars(buf)
	if err != nil {
		return nil, err
	}
	elems := make([]fr.Element, len(frames))
	for i, f := range frames {
		elems[i].SetBytes(f)
	}
	return elems, nil
}

func (b *kernelBackend) decodeScalar(buf []byte) (fr.Element, error) {
	var e fr.Element
	if len(buf) != b.cdc.ScalarWidth {
		return e, fmt.Errorf("%w: omega is %d bytes, want %d", codec.ErrMalformedBuffer, len(buf), b.cdc.ScalarWidth)
	}
	e.SetBytes(buf)
	return e, nil
}
