package device

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/zkaccel/accel-node/internal/kernel"
)

// FPGABackend services MSM and NTT units on one FPGA card. In this
// build it drives the software reference kernel; a vendor build swaps
// in the card's shell API behind the same interface.
type FPGABackend struct {
	*kernelBackend
}

// NewFPGABackend creates the backend for one FPGA card.
func NewFPGABackend(ordinal int, log *zap.Logger) *FPGABackend {
	newKern := func() kernel.Kernel { return kernel.NewBN254Kernel() }
	name := fmt.Sprintf("FPGA%d (%s)", ordinal, kernel.NewBN254Kernel().Name())
	return &FPGABackend{
		kernelBackend: newKernelBackend(name, fpgaCardMemory, newKern, log),
	}
}
