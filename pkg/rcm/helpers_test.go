package rcm

import "math/rand"

// makeSquareMesh returns an unindexed two-triangle quad: six corners, two of
// them repeats of earlier corners.
func makeSquareMesh() *RawMesh {
	corners := [4][8]float32{
		{0, 0, 0, 0, 0, 1, 0, 0},
		{1, 0, 0, 0, 0, 1, 1, 0},
		{1, 1, 0, 0, 0, 1, 1, 1},
		{0, 1, 0, 0, 0, 1, 0, 1},
	}
	order := []int{0, 1, 2, 2, 3, 0}

	mesh := &RawMesh{
		Name:        "square",
		Flags:       FlagPosition | FlagNormal | FlagUV0,
		VertexCount: len(order),
		IndexCount:  len(order),
	}
	for i, c := range order {
		mesh.Vertices = append(mesh.Vertices, corners[c][:]...)
		mesh.Indices = append(mesh.Indices, uint16(i))
	}
	return mesh
}

// makeMesh returns an unindexed mesh of count vertices drawn from a small
// pool so that welding finds duplicates.
func makeMesh(flags VertexFlags, count int, seed int64) *RawMesh {
	rng := rand.New(rand.NewSource(seed))
	stride := Stride(flags)

	pool := make([][]float32, count/3+1)
	for i := range pool {
		v := make([]float32, stride)
		for k := range v {
			v[k] = rng.Float32()*200 - 100
		}
		pool[i] = v
	}

	mesh := &RawMesh{Name: "random", Flags: flags, VertexCount: count, IndexCount: count}
	for i := 0; i < count; i++ {
		mesh.Vertices = append(mesh.Vertices, pool[rng.Intn(len(pool))]...)
		mesh.Indices = append(mesh.Indices, uint16(i))
	}
	return mesh
}

// makeIndexedMesh returns a mesh with a non-trivial index buffer over
// partially duplicated vertices.
func makeIndexedMesh(flags VertexFlags, vertexCount, indexCount int, seed int64) *RawMesh {
	mesh := makeMesh(flags, vertexCount, seed)
	rng := rand.New(rand.NewSource(seed + 1))
	mesh.IndexCount = indexCount
	mesh.Indices = make([]uint16, indexCount)
	for i := range mesh.Indices {
		mesh.Indices[i] = uint16(rng.Intn(vertexCount))
	}
	return mesh
}
