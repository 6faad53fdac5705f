package kernel

import (
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/fft"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomScalars(t *testing.T, n int) []fr.Element {
	t.Helper()
	scalars := make([]fr.Element, n)
	for i := range scalars {
		_, err := scalars[i].SetRandom()
		require.NoError(t, err)
	}
	return scalars
}

func generatorMultiples(n int) []bn254.G1Affine {
	_, _, g1, _ := bn254.Generators()
	points := make([]bn254.G1Affine, n)
	for i := range points {
		points[i].ScalarMultiplication(&g1, big.NewInt(int64(i+1)))
	}
	return points
}

func TestMSMMatchesNaiveSum(t *testing.T) {
	const n = 16

	k := NewBN254Kernel()
	points := generatorMultiples(n)
	require.NoError(t, k.LoadBases([][]bn254.G1Affine{points}))

	scalars := randomScalars(t, n)

	got, err := k.MSM(scalars, 0)
	require.NoError(t, err)

	// Naive weighted sum over the same inputs.
	var acc bn254.G1Jac
	for i := range scalars {
		var s big.Int
		scalars[i].BigInt(&s)
		var term bn254.G1Jac
		var affTerm bn254.G1Affine
		affTerm.ScalarMultiplication(&points[i], &s)
		term.FromAffine(&affTerm)
		acc.AddAssign(&term)
	}
	var want bn254.G1Affine
	want.FromJacobian(&acc)

	assert.True(t, got.Equal(&want), "multiexp result does not match naive sum")
}

func TestMSMLengthMismatch(t *testing.T) {
	k := NewBN254Kernel()
	require.NoError(t, k.LoadBases([][]bn254.G1Affine{generatorMultiples(4)}))

	_, err := k.MSM(randomScalars(t, 3), 0)
	assert.Error(t, err)
}

func TestMSMWithoutBases(t *testing.T) {
	k := NewBN254Kernel()
	_, err := k.MSM(randomScalars(t, 2), 0)
	assert.Error(t, err)
}

func TestNTTMatchesNaiveDFT(t *testing.T) {
	const logN = 4
	const n = 1 << logN

	domain := fft.NewDomain(n)
	omega := domain.Generator

	k := NewBN254Kernel()
	require.NoError(t, k.LoadOmega(omega))

	values := randomScalars(t, n)
	original := make([]fr.Element, n)
	copy(original, values)

	require.NoError(t, k.NTT(values, logN))

	// Naive O(n^2) DFT: out[i] = sum_j in[j] * omega^(i*j).
	for i := 0; i < n; i++ {
		var want, wi, acc fr.Element
		wi.Exp(omega, big.NewInt(int64(i)))
		acc.SetOne()
		for j := 0; j < n; j++ {
			var term fr.Element
			term.Mul(&original[j], &acc)
			want.Add(&want, &term)
			acc.Mul(&acc, &wi)
		}
		assert.True(t, values[i].Equal(&want), "output %d does not match naive DFT", i)
	}
}

func TestNTTRejectsWrongLength(t *testing.T) {
	domain := fft.NewDomain(8)

	k := NewBN254Kernel()
	require.NoError(t, k.LoadOmega(domain.Generator))

	values := randomScalars(t, 6)
	err := k.NTT(values, 3)
	assert.Error(t, err)
}

func TestNTTWithoutOmega(t *testing.T) {
	k := NewBN254Kernel()
	assert.Error(t, k.NTT(randomScalars(t, 2), 1))
}

func TestReleaseDropsState(t *testing.T) {
	k := NewBN254Kernel()
	require.NoError(t, k.LoadBases([][]bn254.G1Affine{generatorMultiples(8)}))
	assert.Equal(t, int64(8*bn254.SizeOfG1AffineUncompressed), k.MemoryUsed())

	k.Release()
	assert.Equal(t, int64(0), k.MemoryUsed())
	_, err := k.MSM(randomScalars(t, 1), 0)
	assert.Error(t, err)
}
