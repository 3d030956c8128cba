package world

import "math"

// Vec3 is a free vector in block units.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (v Vec3) Add(o Vec3) Vec3      { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3      { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(f float64) Vec3 { return Vec3{v.X * f, v.Y * f, v.Z * f} }
func (v Vec3) Dot(o Vec3) float64   { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }
func (v Vec3) Length() float64      { return math.Sqrt(v.Dot(v)) }

// Normalize returns the unit vector along v, or the zero vector.
func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l == 0 {
		return Vec3{}
	}
	return v.Scale(1 / l)
}

// Angle returns the angle between v and o in radians.
func (v Vec3) Angle(o Vec3) float64 {
	dot := v.Normalize().Dot(o.Normalize())
	return math.Acos(math.Max(-1, math.Min(1, dot)))
}

// BlockPos addresses one block cell.
type BlockPos struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

func (p BlockPos) Offset(dx, dy, dz int) BlockPos {
	return BlockPos{p.X + dx, p.Y + dy, p.Z + dz}
}

// Location is a position with a view orientation. Yaw and pitch are degrees;
// yaw 0 faces +Z and positive pitch looks down.
type Location struct {
	World string  `json:"world"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
	Yaw   float64 `json:"yaw"`
	Pitch float64 `json:"pitch"`
}

func (l Location) Vec() Vec3 {
	return Vec3{l.X, l.Y, l.Z}
}

// Direction is the unit facing vector.
func (l Location) Direction() Vec3 {
	yaw := l.Yaw * math.Pi / 180
	pitch := l.Pitch * math.Pi / 180
	xz := math.Cos(pitch)
	return Vec3{X: -xz * math.Sin(yaw), Y: -math.Sin(pitch), Z: xz * math.Cos(yaw)}
}

// Add moves the location by v keeping the orientation.
func (l Location) Add(v Vec3) Location {
	l.X += v.X
	l.Y += v.Y
	l.Z += v.Z
	return l
}

func (l Location) Block() BlockPos {
	return BlockPos{int(math.Floor(l.X)), int(math.Floor(l.Y)), int(math.Floor(l.Z))}
}

// Distance is the euclidean distance, infinite across worlds.
func (l Location) Distance(o Location) float64 {
	if l.World != o.World {
		return math.Inf(1)
	}
	return l.Vec().Sub(o.Vec()).Length()
}

// BlockCenterTop is the point half a block in and one block above p, where
// effects triggered against a clicked block are anchored.
func BlockCenterTop(world string, p BlockPos) Location {
	return Location{World: world, X: float64(p.X) + 0.5, Y: float64(p.Y) + 1, Z: float64(p.Z) + 0.5}
}
