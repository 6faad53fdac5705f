package main

import (
	"fmt"
	"math/big"
	"time"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/fft"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/zkaccel/accel-node/internal/codec"
	"github.com/zkaccel/accel-node/internal/config"
	"github.com/zkaccel/accel-node/internal/device"
)

func benchCommand(cfg **config.Config, log **zap.Logger) *cli.Command {
	return &cli.Command{
		Name:  "bench",
		Usage: "Run one MSM and one NTT through the device layer and report timings",
		Flags: []cli.Flag{
			&cli.UintFlag{
				Name:  "log-n",
				Value: 10,
				Usage: "log2 of the MSM/NTT size",
			},
		},
		Action: func(c *cli.Context) error {
			logN := uint32(c.Uint("log-n"))
			if logN < 1 || logN > 24 {
				return fmt.Errorf("log-n %d out of range [1,24]", logN)
			}
			n := 1 << logN

			manager, err := device.NewManager(*cfg, *log)
			if err != nil {
				return err
			}
			defer func() {
				if err := manager.Deinit(); err != nil {
					(*log).Warn("deinit failed", zap.Error(err))
				}
			}()

			bases, err := randomBases(n)
			if err != nil {
				return err
			}
			scalars, err := randomScalars(n)
			if err != nil {
				return err
			}
			domain := fft.NewDomain(uint64(n))
			omega := domain.Generator.Bytes()

			loadStart := time.Now()
			if err := manager.Init(device.InitRequest{
				Unit:    device.UnitAll,
				ParamID: 1,
				Bases:   [][]byte{bases},
				Omega:   omega[:],
			}); err != nil {
				return err
			}
			fmt.Printf("init (%d points): %v\n", n, time.Since(loadStart))

			msmStart := time.Now()
			out, err := manager.ExecuteMSM(1, 0, scalars)
			if err != nil {
				return err
			}
			fmt.Printf("msm  (%d scalars): %v, %d result bytes\n", n, time.Since(msmStart), len(out))

			nttStart := time.Now()
			if err := manager.ExecuteNTT(scalars, logN); err != nil {
				return err
			}
			fmt.Printf("ntt  (2^%d values): %v\n", logN, time.Since(nttStart))

			return nil
		},
	}
}

// randomBases returns n pseudo-random curve points as one packed bases
// buffer.
func randomBases(n int) ([]byte, error) {
	_, _, g1, _ := bn254.Generators()
	buf := make([]byte, 0, n*codec.BN254.PointWidth)
	for i := 0; i < n; i++ {
		var e fr.Element
		if _, err := e.SetRandom(); err != nil {
			return nil, err
		}
		var s big.Int
		e.BigInt(&s)
		var p bn254.G1Affine
		p.ScalarMultiplication(&g1, &s)
		raw := p.RawBytes()
		buf = append(buf, raw[:]...)
	}
	return buf, nil
}

// randomScalars returns n random field elements as one packed scalar
// buffer.
func randomScalars(n int) ([]byte, error) {
	buf := make([]byte, 0, n*codec.BN254.ScalarWidth)
	for i := 0; i < n; i++ {
		var e fr.Element
		if _, err := e.SetRandom(); err != nil {
			return nil, err
		}
		enc := e.Bytes()
		buf = append(buf, enc[:]...)
	}
	return buf, nil
}
