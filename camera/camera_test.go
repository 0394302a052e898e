package camera

import "testing"

func TestWorldScreenRoundTrip(t *testing.T) {
	c := New(1280, 720, 1600, 900)
	c.CenterOn(400, 300)
	c.SetZoom(1.5)

	tests := []struct{ wx, wy float64 }{
		{400, 300},
		{0, 0},
		{1600, 900},
		{123.5, 678.25},
	}
	for _, tt := range tests {
		sx, sy := c.WorldToScreen(tt.wx, tt.wy)
		wx, wy := c.ScreenToWorld(sx, sy)
		if absf(wx-tt.wx) > 1e-9 || absf(wy-tt.wy) > 1e-9 {
			t.Errorf("round trip (%v,%v) -> (%v,%v)", tt.wx, tt.wy, wx, wy)
		}
	}
}

func TestCenterIsScreenCenter(t *testing.T) {
	c := New(1280, 720, 1600, 900)
	sx, sy := c.WorldToScreen(c.X, c.Y)
	if sx != 640 || sy != 360 {
		t.Errorf("center maps to (%v,%v), want (640,360)", sx, sy)
	}
}

func TestZoomClamping(t *testing.T) {
	c := New(1280, 720, 1600, 900)

	c.SetZoom(100)
	if c.Zoom != c.MaxZoom {
		t.Errorf("zoom = %v, want clamped to %v", c.Zoom, c.MaxZoom)
	}
	c.SetZoom(0.0001)
	if c.Zoom != c.MinZoom {
		t.Errorf("zoom = %v, want clamped to %v", c.Zoom, c.MinZoom)
	}
}

func TestPanClampsToWorld(t *testing.T) {
	c := New(1280, 720, 1600, 900)
	c.Pan(-1e9, -1e9)
	if c.X != 0 || c.Y != 0 {
		t.Errorf("camera at (%v,%v), want clamped to origin", c.X, c.Y)
	}
	c.Pan(1e9, 1e9)
	if c.X != 1600 || c.Y != 900 {
		t.Errorf("camera at (%v,%v), want clamped to far corner", c.X, c.Y)
	}
}

func TestVisibility(t *testing.T) {
	c := New(1280, 720, 1600, 900)
	c.CenterOn(800, 450)
	c.SetZoom(2)

	if !c.IsVisible(800, 450, 10) {
		t.Error("center should be visible")
	}
	if c.IsVisible(800+400, 450, 10) {
		t.Error("point past the half-viewport at 2x zoom should be culled")
	}
	// A large radius pulls an off-screen center back into view.
	if !c.IsVisible(800+400, 450, 200) {
		t.Error("big circle overlapping the view should not be culled")
	}
}
