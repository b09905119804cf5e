package scene

import "github.com/go-gl/mathgl/mgl32"

// Transform is a local position/rotation/scale triple.
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

// IdentityTransform returns a transform at the origin with unit scale.
func IdentityTransform() Transform {
	return Transform{
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

// Equal reports whether two transforms are component-wise identical.
func (t Transform) Equal(o Transform) bool {
	return t.Position == o.Position &&
		t.Rotation.W == o.Rotation.W &&
		t.Rotation.V == o.Rotation.V &&
		t.Scale == o.Scale
}

// ApproxEqual reports whether two transforms match within epsilon.
func (t Transform) ApproxEqual(o Transform, epsilon float32) bool {
	return t.Position.ApproxEqualThreshold(o.Position, epsilon) &&
		t.Rotation.ApproxEqualThreshold(o.Rotation, epsilon) &&
		t.Scale.ApproxEqualThreshold(o.Scale, epsilon)
}
