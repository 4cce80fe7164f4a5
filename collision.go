package main

// CheckCollision checks if two circles overlap
func CheckCollision(x1, z1, r1, x2, z2, r2 float64) bool {
	dx := x2 - x1
	dz := z2 - z1
	dist2 := dx*dx + dz*dz
	radSum := r1 + r2
	return dist2 <= radSum*radSum
}

// Obstacle is an axis-aligned static box on the arena floor
type Obstacle struct {
	X    float64 `json:"x"` // centre
	Z    float64 `json:"z"`
	W    float64 `json:"w"` // extent along x
	D    float64 `json:"d"` // extent along z
	Kind string  `json:"kind,omitempty"`
}

// Contains reports whether the point lies inside the box grown by margin
func (o Obstacle) Contains(x, z, margin float64) bool {
	hw := o.W/2 + margin
	hd := o.D/2 + margin
	return x >= o.X-hw && x <= o.X+hw && z >= o.Z-hd && z <= o.Z+hd
}

// OverlapsRect reports whether the box grown by margin intersects the
// rectangle [minX,maxX]x[minZ,maxZ]
func (o Obstacle) OverlapsRect(minX, minZ, maxX, maxZ, margin float64) bool {
	hw := o.W/2 + margin
	hd := o.D/2 + margin
	return o.X-hw < maxX && o.X+hw > minX && o.Z-hd < maxZ && o.Z+hd > minZ
}
