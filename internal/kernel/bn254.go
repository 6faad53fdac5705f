package kernel

import (
	"errors"
	"fmt"
	"math/big"
	"runtime"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

var (
	errNoBases       = errors.New("kernel: no bases loaded")
	errNoOmega       = errors.New("kernel: no omega loaded")
	errLengthMatch   = errors.New("kernel: scalar count does not match bases count")
	errNotPowerOfTwo = errors.New("kernel: value count is not 1 << log_n")
)

// BN254Kernel is a software reference kernel over the BN254 curve. It
// plays the role a vendor library (icicle, cuBLAS-backed MSM cores,
// FPGA bitstreams) plays in production: the adapters drive it through
// the Kernel interface and cannot tell it from real hardware. MSM uses
// gnark-crypto's multi-exponentiation; NTT is an in-place radix-2
// transform driven by the loaded omega.
type BN254Kernel struct {
	bases    [][]bn254.G1Affine
	omega    fr.Element
	hasOmega bool
	memUsed  int64
}

// NewBN254Kernel creates an empty reference kernel.
func NewBN254Kernel() *BN254Kernel {
	return &BN254Kernel{}
}

// Name identifies the backing compute library.
func (k *BN254Kernel) Name() string {
	return "bn254-reference"
}

// LoadBases installs the fixed MSM bases.
func (k *BN254Kernel) LoadBases(bases [][]bn254.G1Affine) error {
	k.bases = bases
	k.recountMemory()
	return nil
}

// LoadOmega installs the NTT twiddle-factor generator.
func (k *BN254Kernel) LoadOmega(omega fr.Element) error {
	k.omega = omega
	k.hasOmega = true
	return nil
}

// MSM computes the multi-scalar multiplication of scalars against the
// bases at basesIndex. Bases index validity is the caller's concern;
// the kernel only checks it has bases at all.
func (k *BN254Kernel) MSM(scalars []fr.Element, basesIndex int) (bn254.G1Affine, error) {
	var result bn254.G1Affine
	if basesIndex < 0 || basesIndex >= len(k.bases) {
		return result, errNoBases
	}
	points := k.bases[basesIndex]
	if len(scalars) != len(points) {
		return result, fmt.Errorf("%w: %d scalars, %d bases", errLengthMatch, len(scalars), len(points))
	}
	if len(scalars) == 0 {
		// Zero-value G1Affine is the point at infinity.
		return result, nil
	}
	if _, err := result.MultiExp(points, scalars, ecc.MultiExpConfig{NbTasks: runtime.NumCPU()}); err != nil {
		return result, fmt.Errorf("kernel: multiexp: %w", err)
	}
	return result, nil
}

// NTT transforms values in place using the loaded omega as the
// twiddle-factor generator for the 1<<logN domain. Decimation in time
// with an initial bit-reversal permutation.
func (k *BN254Kernel) NTT(values []fr.Element, logN uint32) error {
	if !k.hasOmega {
		return errNoOmega
	}
	n := 1 << logN
	if len(values) != n {
		return fmt.Errorf("%w: got %d values, log_n %d", errNotPowerOfTwo, len(values), logN)
	}
	if n == 1 {
		return nil
	}

	bitReverse(values)

	for length := 2; length <= n; length <<= 1 {
		// wlen generates the subgroup of order `length`.
		var wlen fr.Element
		wlen.Exp(k.omega, big.NewInt(int64(n/length)))

		half := length >> 1
		for start := 0; start < n; start += length {
			var w fr.Element
			w.SetOne()
			for i := 0; i < half; i++ {
				var v fr.Element
				v.Mul(&values[start+half+i], &w)
				u := values[start+i]
				values[start+i].Add(&u, &v)
				values[start+half+i].Sub(&u, &v)
				w.Mul(&w, &wlen)
			}
		}
	}
	return nil
}

// Release frees all kernel-held resources.
func (k *BN254Kernel) Release() {
	k.bases = nil
	k.hasOmega = false
	k.memUsed = 0
}

// MemoryUsed reports the kernel's current memory footprint in bytes.
func (k *BN254Kernel) MemoryUsed() int64 {
	return k.memUsed
}

func (k *BN254Kernel) recountMemory() {
	var total int64
	for _, b := range k.bases {
		total += int64(len(b)) * bn254.SizeOfG1AffineUncompressed
	}
	k.memUsed = total
}

func bitReverse(values []fr.Element) {
	n := len(values)
	j := 0
	for i := 1; i < n; i++ {
		bit := n >> 1
		for ; j&bit != 0; bit >>= 1 {
			j ^= bit
		}
		j |= bit
		if i < j {
			values[i], values[j] = values[j], values[i]
		}
	}
}
