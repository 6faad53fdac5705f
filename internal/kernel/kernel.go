package kernel

import (
	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Kernel is the narrow capability a vendor compute library must provide
// to back a device. The device adapters translate the byte-stream
// boundary contract into these typed calls and back; nothing above the
// adapters ever sees a kernel type.
//
// Implementation notes:
//   - A kernel instance backs exactly one device and is always called
//     under that device's lock, so implementations need no internal
//     synchronization.
//   - LoadBases/LoadOmega are called once per parameter load; MSM and
//     NTT reference the loaded data and must not copy it per call.
//   - Release must free all kernel-held memory; the instance is not
//     reused afterwards.
type Kernel interface {
	// LoadBases installs the fixed MSM bases, one slice per bases index.
	LoadBases(bases [][]bn254.G1Affine) error

	// LoadOmega installs the NTT twiddle-factor generator.
	LoadOmega(omega fr.Element) error

	// MSM computes the multi-scalar multiplication of the scalars
	// against the bases at basesIndex.
	MSM(scalars []fr.Element, basesIndex int) (bn254.G1Affine, error)

	// NTT transforms values in place; len(values) must be 1 << logN.
	NTT(values []fr.Element, logN uint32) error

	// Release frees all kernel-held resources.
	Release()

	// MemoryUsed reports the kernel's current memory footprint in bytes.
	MemoryUsed() int64

	// Name identifies the backing compute library for diagnostics.
	Name() string
}
