package device

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/zkaccel/accel-node/internal/kernel"
)

// Simulated card geometry for builds without a vendor driver.
const (
	gpuCardMemory  = 16 << 30
	fpgaCardMemory = 8 << 30
)

// GPUBackend services MSM and NTT units on one GPU. In this build it
// drives the software reference kernel; a CUDA build swaps the kernel
// factory for the vendor library behind the same interface.
type GPUBackend struct {
	*kernelBackend
}

// NewGPUBackend creates the backend for one GPU instance.
func NewGPUBackend(ordinal int, log *zap.Logger) *GPUBackend {
	newKern := func() kernel.Kernel { return kernel.NewBN254Kernel() }
	name := fmt.Sprintf("GPU%d (%s)", ordinal, kernel.NewBN254Kernel().Name())
	return &GPUBackend{
		kernelBackend: newKernelBackend(name, gpuCardMemory, newKern, log),
	}
}
