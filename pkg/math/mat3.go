package math

// Mat3 is a 3x3 matrix in row-major order, as stored in RSM nodes.
type Mat3 [9]float32

// Identity3 returns an identity matrix.
func Identity3() Mat3 {
	return Mat3{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	}
}

// MulVec3 returns m * v with v as a row vector, matching the RSM node
// convention.
func (m Mat3) MulVec3(v Vec3) Vec3 {
	return Vec3{
		v.X*m[0] + v.Y*m[3] + v.Z*m[6],
		v.X*m[1] + v.Y*m[4] + v.Z*m[7],
		v.X*m[2] + v.Y*m[5] + v.Z*m[8],
	}
}

// Determinant returns the matrix determinant. A negative value means the
// transform mirrors geometry and flips triangle winding.
func (m Mat3) Determinant() float32 {
	return m[0]*(m[4]*m[8]-m[5]*m[7]) -
		m[1]*(m[3]*m[8]-m[5]*m[6]) +
		m[2]*(m[3]*m[7]-m[4]*m[6])
}
