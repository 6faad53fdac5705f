package integration

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr/fft"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"

	"github.com/zkaccel/accel-node/internal/codec"
	"github.com/zkaccel/accel-node/internal/config"
	"github.com/zkaccel/accel-node/internal/device"
)

func TestDeviceManager_EndToEnd(t *testing.T) {
	var manager *device.Manager

	app := fxtest.New(t,
		fx.Provide(
			func() *config.Config {
				cfg := config.Default()
				cfg.Devices.GPU = config.DevicePool{Enabled: true, Count: 2}
				cfg.Devices.FPGA = config.DevicePool{Enabled: true, Count: 1}
				return cfg
			},
			func() *zap.Logger { return zap.NewNop() },
			device.NewManager,
		),
		fx.Populate(&manager),
	)

	app.RequireStart()
	defer app.RequireStop()

	require.Equal(t, 2, manager.DeviceCount(device.TypeGPU))
	require.Equal(t, 1, manager.DeviceCount(device.TypeFPGA))

	const logN = 4
	const n = 1 << logN

	bases := packedPoints(t, n)
	domain := fft.NewDomain(n)
	omega := domain.Generator.Bytes()

	require.NoError(t, manager.Init(device.InitRequest{
		Unit:    device.UnitAll,
		ParamID: 1,
		Bases:   [][]byte{bases},
		Omega:   omega[:],
	}))

	// One device is Ready, the rest untouched.
	ready := 0
	for _, info := range manager.DeviceInfos(device.TypeNone) {
		if info.Status == "ready" {
			ready++
		}
	}
	assert.Equal(t, 1, ready)

	scalars := packedScalars(t, n)
	out, err := manager.ExecuteMSM(1, 0, scalars)
	require.NoError(t, err)
	assert.Len(t, out, codec.BN254.PointWidth)

	require.NoError(t, manager.ExecuteNTT(scalars, logN))

	// A second circuit with its own parameters lands on another device.
	require.NoError(t, manager.Init(device.InitRequest{
		Unit:    device.UnitMSM,
		ParamID: 2,
		Bases:   [][]byte{packedPoints(t, 8)},
	}))
	out, err = manager.ExecuteMSM(2, 0, packedScalars(t, 8))
	require.NoError(t, err)
	assert.Len(t, out, codec.BN254.PointWidth)

	require.NoError(t, manager.Deinit())
	for _, info := range manager.DeviceInfos(device.TypeNone) {
		assert.Equal(t, "none", info.Status)
	}

	_, err = manager.ExecuteMSM(1, 0, scalars)
	assert.ErrorIs(t, err, device.ErrNotInitialized)
}
