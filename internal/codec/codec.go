package codec

import (
	"errors"
	"fmt"
)

// ErrMalformedBuffer is returned when a buffer's length is not an exact
// multiple of the element width, or an element has the wrong width.
var ErrMalformedBuffer = errors.New("malformed buffer")

// Codec converts typed field and curve elements to and from the packed
// byte buffers that cross the accelerator boundary. Every element is a
// fixed-width big-endian frame; a packed buffer is the concatenation of
// its frames with no header or padding. This is the only representation
// the device layer ever sees.
type Codec struct {
	// ScalarWidth is the encoded size of one field scalar in bytes.
	ScalarWidth int
	// PointWidth is the encoded size of one curve point in bytes.
	PointWidth int
}

// BN254 is the codec for the BN254 curve: 32-byte big-endian Fr scalars
// and 64-byte uncompressed G1 affine points.
var BN254 = Codec{ScalarWidth: 32, PointWidth: 64}

// PackScalars concatenates per-scalar frames into a single buffer.
// Every frame must be exactly ScalarWidth bytes.
func (c Codec) PackScalars(scalars [][]byte) ([]byte, error) {
	out := make([]byte, 0, len(scalars)*c.ScalarWidth)
	for i, s := range scalars {
		if len(s) != c.ScalarWidth {
			return nil, fmt.Errorf("%w: scalar %d is %d bytes, want %d", ErrMalformedBuffer, i, len(s), c.ScalarWidth)
		}
		out = append(out, s...)
	}
	return out, nil
}

// PackPoints concatenates per-point frames into a single buffer.
// Every frame must be exactly PointWidth bytes.
func (c Codec) PackPoints(points [][]byte) ([]byte, error) {
	out := make([]byte, 0, len(points)*c.PointWidth)
	for i, p := range points {
		if len(p) != c.PointWidth {
			return nil, fmt.Errorf("%w: point %d is %d bytes, want %d", ErrMalformedBuffer, i, len(p), c.PointWidth)
		}
		out = append(out, p...)
	}
	return out, nil
}

// SplitScalars slices a packed buffer back into per-scalar frames.
// The returned frames alias buf; callers must not retain them past the
// buffer's lifetime.
func (c Codec) SplitScalars(buf []byte) ([][]byte, error) {
	return split(buf, c.ScalarWidth)
}

// SplitPoints slices a packed buffer back into per-point frames.
func (c Codec) SplitPoints(buf []byte) ([][]byte, error) {
	return split(buf, c.PointWidth)
}

// ScalarCount returns the number of scalars in a packed buffer.
func (c Codec) ScalarCount(buf []byte) (int, error) {
	return count(buf, c.ScalarWidth)
}

// PointCount returns the number of points in a packed buffer.
func (c Codec) PointCount(buf []byte) (int, error) {
	return count(buf, c.PointWidth)
}

func split(buf []byte, width int) ([][]byte, error) {
	n, err := count(buf, width)
	if err != nil {
		return nil, err
	}
	frames := make([][]byte, n)
	for i := 0; i < n; i++ {
		frames[i] = buf[i*width : (i+1)*width]
	}
	return frames, nil
}

func count(buf []byte, width int) (int, error) {
	if width <= 0 {
		return 0, fmt.Errorf("%w: invalid element width %d", ErrMalformedBuffer, width)
	}
	if len(buf)%width != 0 {
		return 0, fmt.Errorf("%w: buffer length %d is not a multiple of element width %d", ErrMalformedBuffer, len(buf), width)
	}
	return len(buf) / width, nil
}
