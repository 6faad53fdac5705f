package device

import (
	"math/big"
	"sync/atomic"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/fft"
	"github.com/stretchr/testify/require"

	"github.com/zkaccel/accel-node/internal/codec"
	"github.com/zkaccel/accel-node/internal/config"
	"github.com/zkaccel/accel-node/internal/params"
)

func testConfig(gpus, fpgas int, preferred string) *config.Config {
	cfg := config.Default()
	cfg.Devices.Preferred = preferred
	cfg.Devices.GPU = config.DevicePool{Enabled: gpus > 0, Count: gpus}
	cfg.Devices.FPGA = config.DevicePool{Enabled: fpgas > 0, Count: fpgas}
	return cfg
}

// packedPoints returns n distinct generator multiples as one packed
// bases buffer.
func packedPoints(t *testing.T, n int) []byte {
	t.Helper()
	_, _, g1, _ := bn254.Generators()
	buf := make([]byte, 0, n*codec.BN254.PointWidth)
	for i := 0; i < n; i++ {
		var p bn254.G1Affine
		p.ScalarMultiplication(&g1, big.NewInt(int64(i+1)))
		raw := p.RawBytes()
		buf = append(buf, raw[:]...)
	}
	return buf
}

// packedRandomScalars returns n random field elements as one packed
// scalar buffer.
func packedRandomScalars(t *testing.T, n int) []byte {
	t.Helper()
	buf := make([]byte, 0, n*codec.BN254.ScalarWidth)
	for i := 0; i < n; i++ {
		var e fr.Element
		_, err := e.SetRandom()
		require.NoError(t, err)
		enc := e.Bytes()
		buf = append(buf, enc[:]...)
	}
	return buf
}

// omegaBytes returns the generator of the 1<<logN evaluation domain.
func omegaBytes(logN uint32) []byte {
	domain := fft.NewDomain(uint64(1) << logN)
	enc := domain.Generator.Bytes()
	return enc[:]
}

// stubBackend is a controllable Backend for lifecycle and concurrency
// tests. ExecuteMSM signals started and then waits for one token on
// block, so tests can hold an execution in flight.
type stubBackend struct {
	name      string
	started   chan struct{}
	block     chan struct{}
	active    atomic.Int32
	maxActive atomic.Int32
}

func newStubBackend(name string) *stubBackend {
	return &stubBackend{name: name}
}

func (s *stubBackend) InitUnit(unit UnitType, id params.ParamID, rec *params.Record) error {
	return nil
}

func (s *stubBackend) ExecuteMSM(id params.ParamID, scalars []byte, basesIndex int) ([]byte, error) {
	cur := s.active.Add(1)
	for {
		prev := s.maxActive.Load()
		if cur <= prev || s.maxActive.CompareAndSwap(prev, cur) {
			break
		}
	}
	if s.started != nil {
		s.started <- struct{}{}
	}
	if s.block != nil {
		<-s.block
	}
	s.active.Add(-1)
	return make([]byte, codec.BN254.PointWidth), nil
}

func (s *stubBackend) ExecuteNTT(id params.ParamID, scalars []byte, logN uint32) error {
	return nil
}

func (s *stubBackend) Deinit() error { return nil }

func (s *stubBackend) Info() BackendInfo {
	return BackendInfo{Name: s.name}
}

func (s *stubBackend) IsAvailable() bool { return true }
