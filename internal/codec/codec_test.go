package codec

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frame(width int, fill byte) []byte {
	f := make([]byte, width)
	for i := range f {
		f[i] = fill
	}
	return f
}

func TestPackSplitScalarsRoundTrip(t *testing.T) {
	c := BN254

	testCases := []struct {
		name  string
		count int
	}{
		{name: "empty", count: 0},
		{name: "single", count: 1},
		{name: "several", count: 7},
		{name: "power of two", count: 64},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			scalars := make([][]byte, tc.count)
			for i := range scalars {
				scalars[i] = frame(c.ScalarWidth, byte(i+1))
			}

			buf, err := c.PackScalars(scalars)
			require.NoError(t, err)
			assert.Len(t, buf, tc.count*c.ScalarWidth)

			back, err := c.SplitScalars(buf)
			require.NoError(t, err)
			require.Len(t, back, tc.count)
			for i := range scalars {
				assert.True(t, bytes.Equal(scalars[i], back[i]), "scalar %d changed across round trip", i)
			}
		})
	}
}

func TestPackScalarsRejectsWrongWidth(t *testing.T) {
	c := BN254

	_, err := c.PackScalars([][]byte{frame(c.ScalarWidth-1, 0xab)})
	require.ErrorIs(t, err, ErrMalformedBuffer)

	_, err = c.PackScalars([][]byte{frame(c.ScalarWidth, 1), frame(c.ScalarWidth+3, 2)})
	require.ErrorIs(t, err, ErrMalformedBuffer)
}

func TestSplitRejectsPartialFrame(t *testing.T) {
	c := BN254

	_, err := c.SplitScalars(make([]byte, c.ScalarWidth+1))
	assert.ErrorIs(t, err, ErrMalformedBuffer)

	_, err = c.SplitPoints(make([]byte, c.PointWidth*2-1))
	assert.ErrorIs(t, err, ErrMalformedBuffer)
}

func TestPointCount(t *testing.T) {
	c := BN254

	n, err := c.PointCount(make([]byte, 3*c.PointWidth))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = c.PointCount(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	_, err = c.PointCount(make([]byte, c.PointWidth/2))
	assert.ErrorIs(t, err, ErrMalformedBuffer)
}

func TestPackPoints(t *testing.T) {
	c := BN254

	buf, err := c.PackPoints([][]byte{frame(c.PointWidth, 1), frame(c.PointWidth, 2)})
	require.NoError(t, err)
	assert.Len(t, buf, 2*c.PointWidth)

	_, err = c.PackPoints([][]byte{frame(c.ScalarWidth, 1)})
	assert.ErrorIs(t, err, ErrMalformedBuffer)
}
