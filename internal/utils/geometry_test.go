package utils

import (
	"image"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBoxOrdersCoordinates(t *testing.T) {
	b := NewBox(10, 20, 2, 4)
	assert.InDelta(t, 2.0, b.MinX, 1e-9)
	assert.InDelta(t, 4.0, b.MinY, 1e-9)
	assert.InDelta(t, 10.0, b.MaxX, 1e-9)
	assert.InDelta(t, 20.0, b.MaxY, 1e-9)
	assert.InDelta(t, 8.0, b.Width(), 1e-9)
	assert.InDelta(t, 16.0, b.Height(), 1e-9)
}

func TestBoxCenterAndArea(t *testing.T) {
	b := NewBoxFromSize(10, 10, 4, 6)
	c := b.Center()
	assert.InDelta(t, 12.0, c.X, 1e-9)
	assert.InDelta(t, 13.0, c.Y, 1e-9)
	assert.InDelta(t, 24.0, b.Area(), 1e-9)
}

func TestIoU(t *testing.T) {
	cases := []struct {
		name string
		a, b Box
		want float64
	}{
		{"identical", NewBox(0, 0, 10, 10), NewBox(0, 0, 10, 10), 1.0},
		{"disjoint", NewBox(0, 0, 10, 10), NewBox(20, 20, 30, 30), 0.0},
		{"touching edge", NewBox(0, 0, 10, 10), NewBox(10, 0, 20, 10), 0.0},
		{"half overlap", NewBox(0, 0, 10, 10), NewBox(5, 0, 15, 10), 50.0 / 150.0},
		{"contained quarter", NewBox(0, 0, 10, 10), NewBox(0, 0, 5, 5), 0.25},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.InDelta(t, c.want, IoU(c.a, c.b), 1e-9)
			assert.InDelta(t, c.want, IoU(c.b, c.a), 1e-9, "IoU must be symmetric")
		})
	}
}

func TestIoUDegenerateBoxes(t *testing.T) {
	zero := Box{}
	assert.InDelta(t, 0.0, IoU(zero, zero), 1e-9)
	assert.InDelta(t, 0.0, IoU(zero, NewBox(0, 0, 10, 10)), 1e-9)
}

func TestCenterDistance(t *testing.T) {
	a := NewBoxFromSize(0, 0, 10, 10)
	b := NewBoxFromSize(30, 40, 10, 10)
	assert.InDelta(t, 50.0, CenterDistance(a, b), 1e-9)
}

func TestUnion(t *testing.T) {
	u := NewBox(0, 0, 10, 10).Union(NewBox(5, -5, 20, 8))
	assert.Equal(t, Box{MinX: 0, MinY: -5, MaxX: 20, MaxY: 10}, u)
}

func TestToRectClampsToBounds(t *testing.T) {
	bounds := image.Rect(0, 0, 100, 80)
	r := NewBox(-3.2, 10.4, 250.9, 60.1).ToRect(bounds)
	require.Equal(t, image.Rect(0, 10, 100, 61), r)
}

func TestRound2(t *testing.T) {
	assert.InDelta(t, 63.64, Round2(8.6*7.4), 1e-9)
	assert.InDelta(t, 9.6, Round2(3.2*3.0), 1e-9)
	assert.InDelta(t, 0.01, Round2(0.005), 1e-9)
	assert.True(t, math.Abs(Round2(1.005)-1.0) <= 0.01)
}
