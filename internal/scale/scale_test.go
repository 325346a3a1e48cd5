package scale

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFit(t *testing.T) {
	cases := []struct {
		name          string
		width, height float64
		wantX, wantY  float64
	}{
		{name: "native size", width: 200, height: 85, wantX: 1, wantY: 1},
		{name: "double size", width: 400, height: 170, wantX: 2, wantY: 2},
		{name: "narrow viewport bounded by width", width: 100, height: 1000, wantX: 0.5, wantY: 0.5},
		{name: "wide viewport bounded by height", width: 1000, height: 42.5, wantX: 0.5, wantY: 0.5},
		{name: "zero width", width: 0, height: 300, wantX: 0, wantY: 0},
		{name: "zero height", width: 300, height: 0, wantX: 0, wantY: 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := Fit(tc.width, tc.height)
			assert.InDelta(t, tc.wantX, s.X, 1e-9)
			assert.InDelta(t, tc.wantY, s.Y, 1e-9)
		})
	}
}

func TestFit_DrawingNeverExceedsViewport(t *testing.T) {
	for _, vp := range [][2]float64{{150, 300}, {450, 100}, {1024, 450}, {1, 1}} {
		s := Fit(vp[0], vp[1])
		w, h := s.Size()
		assert.LessOrEqual(t, w, vp[0]+1e-9)
		assert.LessOrEqual(t, h, vp[1]+1e-9)
		assert.InDelta(t, s.X, s.Y, 1e-9, "aspect ratio must be preserved")
	}
}

func TestScale_IsZero(t *testing.T) {
	assert.True(t, Fit(0, 0).IsZero())
	assert.False(t, Fit(200, 85).IsZero())
}
