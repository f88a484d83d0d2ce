package tracerfx

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Below this length a look or right axis is treated as collapsed.
const degenerateAxisEpsilon = 1e-6

var (
	worldUp      = mgl32.Vec3{0, 1, 0}
	worldRight   = mgl32.Vec3{1, 0, 0}
	worldForward = mgl32.Vec3{0, 0, 1}
)

// SolveBillboard builds the rotation that keeps a quad facing the camera while
// its local Y axis stays pinned to direction. Columns are (right, up, look).
//
// direction must be unit length. When the camera sits on the travel axis the
// right vector falls back to cross(direction, +Y) (or +X if direction is
// vertical), and when the camera sits on the object origin look falls back to
// +Z (or +X). Use SolveBillboardStrict to detect these frames instead.
func SolveBillboard(direction, objectPosition, cameraPosition mgl32.Vec3) mgl32.Mat3 {
	up := direction

	look := cameraPosition.Sub(objectPosition)
	if look.Len() < degenerateAxisEpsilon {
		look = fallbackAxis(up, worldForward, worldRight)
	} else {
		look = look.Normalize()
	}

	right := up.Cross(look)
	if right.Len() < degenerateAxisEpsilon {
		right = up.Cross(fallbackAxis(up, worldUp, worldRight))
	}
	right = right.Normalize()

	return mgl32.Mat3FromCols(right, up, look)
}

// SolveBillboardStrict is SolveBillboard without fallback axes.
func SolveBillboardStrict(direction, objectPosition, cameraPosition mgl32.Vec3) (mgl32.Mat3, error) {
	look := cameraPosition.Sub(objectPosition)
	if look.Len() < degenerateAxisEpsilon {
		return mgl32.Ident3(), ErrDegenerateOrientation
	}
	look = look.Normalize()

	right := direction.Cross(look)
	if right.Len() < degenerateAxisEpsilon {
		return mgl32.Ident3(), ErrDegenerateOrientation
	}

	return mgl32.Mat3FromCols(right.Normalize(), direction, look), nil
}

// fallbackAxis returns preferred unless it is (anti)parallel to axis.
func fallbackAxis(axis, preferred, alternative mgl32.Vec3) mgl32.Vec3 {
	if axis.Cross(preferred).Len() < degenerateAxisEpsilon {
		return alternative
	}
	return preferred
}
