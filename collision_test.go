package main

import "testing"

func TestCheckCollision(t *testing.T) {
	// Overlapping circles
	if !CheckCollision(0, 0, 10, 15, 0, 10) {
		t.Error("circles should collide (overlapping)")
	}

	// Touching circles
	if !CheckCollision(0, 0, 10, 20, 0, 10) {
		t.Error("circles should collide (touching)")
	}

	// Non-overlapping circles
	if CheckCollision(0, 0, 10, 25, 0, 10) {
		t.Error("circles should not collide")
	}

	// Point inside a radius
	if !CheckCollision(5, 5, 1.5, 6, 5, 0) {
		t.Error("point within radius should collide")
	}
}

func TestObstacleContains(t *testing.T) {
	o := Obstacle{X: 10, Z: -4, W: 4, D: 2}

	if !o.Contains(10, -4, 0) {
		t.Error("centre should be inside")
	}
	if !o.Contains(12, -3, 0) {
		t.Error("corner should be inside")
	}
	if o.Contains(12.5, -4, 0) {
		t.Error("point past the edge should be outside")
	}
	if !o.Contains(12.5, -4, 0.5) {
		t.Error("margin should grow the box")
	}
}

func TestObstacleOverlapsRect(t *testing.T) {
	o := Obstacle{X: 0, Z: 0, W: 2, D: 2}

	if !o.OverlapsRect(0.5, 0.5, 1.5, 1.5, 0) {
		t.Error("partially covered cell should overlap")
	}
	if o.OverlapsRect(1, 1, 2, 2, 0) {
		t.Error("cell sharing only a corner should not overlap")
	}
	if !o.OverlapsRect(1, 1, 2, 2, 0.1) {
		t.Error("margin should make the corner cell overlap")
	}
}
