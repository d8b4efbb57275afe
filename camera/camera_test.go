package camera

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < 0.01
}

func TestNewFitsArena(t *testing.T) {
	cam := New(800, 600, 1000, 500)

	if cam.X != 500 || cam.Y != 250 {
		t.Errorf("expected camera at (500, 250), got (%f, %f)", cam.X, cam.Y)
	}
	// min(800/1000, 600/500) = 0.8
	if !near(cam.Zoom, 0.8) || !near(cam.MinZoom, 0.8) {
		t.Errorf("expected zoom 0.8, got %f (min %f)", cam.Zoom, cam.MinZoom)
	}

	// Whole arena is on screen at min zoom.
	for _, corner := range []r2.Vec{{X: 0, Y: 0}, {X: 1000, Y: 500}} {
		sx, sy := cam.WorldVec(corner)
		if sx < -0.01 || sx > 800.01 || sy < -0.01 || sy > 600.01 {
			t.Errorf("corner %v maps off screen to (%f, %f)", corner, sx, sy)
		}
	}
}

func TestScreenToWorldRoundtrip(t *testing.T) {
	cam := New(1280, 720, 2560, 1440)
	cam.SetZoom(1.5)

	cases := []struct{ sx, sy float32 }{
		{640, 360},
		{100, 100},
		{1200, 600},
	}
	for _, tc := range cases {
		wx, wy := cam.ScreenToWorld(tc.sx, tc.sy)
		sx, sy := cam.WorldToScreen(wx, wy)
		if !near(sx, tc.sx) || !near(sy, tc.sy) {
			t.Errorf("roundtrip failed: (%f,%f) -> (%f,%f) -> (%f,%f)", tc.sx, tc.sy, wx, wy, sx, sy)
		}
	}

	v := cam.ScreenVec(640, 360)
	if v.X != float64(cam.X) || v.Y != float64(cam.Y) {
		t.Errorf("screen center should be camera center, got %v", v)
	}
}

func TestPanClampsToArena(t *testing.T) {
	cam := New(800, 600, 1000, 500)
	cam.SetZoom(2)

	cam.Pan(-10000, 0)
	if cam.X != 0 {
		t.Errorf("expected X clamped to 0, got %f", cam.X)
	}
	cam.Pan(0, 10000)
	if cam.Y != 500 {
		t.Errorf("expected Y clamped to 500, got %f", cam.Y)
	}
}

func TestZoomClamp(t *testing.T) {
	cam := New(800, 600, 1000, 500)

	cam.SetZoom(0.1)
	if !near(cam.Zoom, cam.MinZoom) {
		t.Errorf("expected zoom clamped to %f, got %f", cam.MinZoom, cam.Zoom)
	}
	cam.SetZoom(1000)
	if !near(cam.Zoom, cam.MaxZoom) {
		t.Errorf("expected zoom clamped to %f, got %f", cam.MaxZoom, cam.Zoom)
	}
}

func TestResizeRefits(t *testing.T) {
	cam := New(800, 600, 1000, 500)
	cam.Resize(400, 300)

	if !near(cam.MinZoom, 0.4) {
		t.Errorf("expected MinZoom 0.4 after resize, got %f", cam.MinZoom)
	}
	if cam.Zoom < cam.MinZoom || cam.Zoom > cam.MaxZoom {
		t.Errorf("zoom %f outside [%f, %f]", cam.Zoom, cam.MinZoom, cam.MaxZoom)
	}
}

func TestIsVisible(t *testing.T) {
	cam := New(1000, 1000, 1000, 1000)
	cam.SetZoom(2)
	// Visible world: (250, 250) to (750, 750)

	if !cam.IsVisible(500, 500, 1) {
		t.Error("center should be visible")
	}
	if cam.IsVisible(900, 900, 10) {
		t.Error("far point should not be visible")
	}
	if !cam.IsVisible(200, 500, 60) {
		t.Error("edge point with large radius should be visible")
	}

	minX, minY, maxX, maxY := cam.VisibleWorldBounds()
	if !near(minX, 250) || !near(minY, 250) || !near(maxX, 750) || !near(maxY, 750) {
		t.Errorf("unexpected bounds (%f,%f)-(%f,%f)", minX, minY, maxX, maxY)
	}
}

func TestReset(t *testing.T) {
	cam := New(800, 600, 1000, 500)
	cam.X, cam.Y = 10, 10
	cam.SetZoom(3)

	cam.Reset()

	if cam.X != 500 || cam.Y != 250 {
		t.Errorf("expected position (500, 250), got (%f, %f)", cam.X, cam.Y)
	}
	if cam.Zoom != cam.MinZoom {
		t.Errorf("expected zoom %f, got %f", cam.MinZoom, cam.Zoom)
	}
}
