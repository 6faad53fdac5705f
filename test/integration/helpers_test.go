package integration

import (
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"

	"github.com/zkaccel/accel-node/internal/codec"
)

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

func packedScalars(t *testing.T, n int) []byte {
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
