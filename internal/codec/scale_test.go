// internal/codec/scale_test.go
package codec

import (
	"errors"
	"math"
	"testing"

	"gotest.tools/v3/assert"
)

func approx(t *testing.T, got, want float64) {
	t.Helper()
	assert.Assert(t, math.Abs(got-want) < 1e-9, "got %v want %v", got, want)
}

func TestScale_Int32(t *testing.T) {
	v := Scale(int32(1250), 0.01)
	approx(t, v.(float64), 12.5)

	v = Scale(int32(-1250), 0.01)
	approx(t, v.(float64), -12.5)
}

func TestScale_List(t *testing.T) {
	v := Scale([]uint16{2301, 2299, 15}, 0.1)
	list := v.([]float64)
	assert.Equal(t, len(list), 3)
	approx(t, list[0], 230.1)
	approx(t, list[1], 229.9)
	approx(t, list[2], 1.5)
}

func TestScale_StringPassthrough(t *testing.T) {
	assert.Equal(t, Scale("SUN2000", 10), "SUN2000")
}

func TestUnscale(t *testing.T) {
	raw, err := Unscale(12.5, 0.01)
	assert.NilError(t, err)
	assert.Equal(t, raw, int64(1250))

	raw, err = Unscale(-0.25, 0.001)
	assert.NilError(t, err)
	assert.Equal(t, raw, int64(-250))

	raw, err = Unscale(5000, 1)
	assert.NilError(t, err)
	assert.Equal(t, raw, int64(5000))

	raw, err = Unscale(7, 0)
	assert.NilError(t, err)
	assert.Equal(t, raw, int64(7))
}

func TestUnscale_NonFinite(t *testing.T) {
	_, err := Unscale(math.NaN(), 1)
	assert.Assert(t, errors.Is(err, ErrRange))

	_, err = Unscale(math.Inf(1), 0.1)
	assert.Assert(t, errors.Is(err, ErrRange))
}
