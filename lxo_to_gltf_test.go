package lxo

import (
	"testing"

	"github.com/flywave/go3d/vec3"
	"github.com/qmuntal/gltf"
)

func quadScene() *LXOFile {
	f := &LXOFile{TagNames: []string{"Red"}}
	layer := f.AddLayer("Mesh", 0, 0, 1)
	layer.Points = []vec3.T{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}}
	layer.Polygons = [][]uint32{{0, 1, 2, 3}}
	layer.PTags[PTAG_MATR] = []PTag{{Poly: 0, Tag: 0}}
	layer.UVMaps["uv"] = map[uint32][]float32{
		0: {0, 0}, 1: {1, 0}, 2: {1, 1}, 3: {0, 1},
	}
	return f
}

func TestLxoToGltf(t *testing.T) {
	doc, err := LxoToGltf(quadScene())
	if err != nil {
		t.Fatalf("LxoToGltf failed: %v", err)
	}
	if len(doc.Meshes) != 1 || len(doc.Meshes[0].Primitives) != 1 {
		t.Fatalf("meshes = %d, primitives = %d", len(doc.Meshes), len(doc.Meshes[0].Primitives))
	}
	if doc.Meshes[0].Name != "Mesh" {
		t.Errorf("mesh name = %q", doc.Meshes[0].Name)
	}
	if len(doc.Materials) != 1 || doc.Materials[0].Name != "Red" {
		t.Fatalf("materials = %+v", doc.Materials)
	}

	ps := doc.Meshes[0].Primitives[0]
	if ps.Mode != gltf.PrimitiveTriangles || ps.Indices == nil || ps.Material == nil {
		t.Fatalf("primitive = %+v", ps)
	}
	idxAcc := doc.Accessors[*ps.Indices]
	if idxAcc.Count != 6 { // quad fan-triangulated into two triangles
		t.Errorf("index count = %d, want 6", idxAcc.Count)
	}
	posAcc := doc.Accessors[ps.Attributes["POSITION"]]
	if posAcc.Count != 4 || posAcc.Type != gltf.AccessorVec3 {
		t.Errorf("position accessor = %+v", posAcc)
	}
	if posAcc.Max[0] != 1 || posAcc.Min[0] != 0 {
		t.Errorf("position bounds = %v %v", posAcc.Min, posAcc.Max)
	}
	texAcc := doc.Accessors[ps.Attributes["TEXCOORD_0"]]
	if texAcc.Count != 4 || texAcc.Type != gltf.AccessorVec2 {
		t.Errorf("texcoord accessor = %+v", texAcc)
	}

	// positions 4*12 + texcoords 4*8 + indices 6*4
	buffer := doc.Buffers[0]
	if buffer.ByteLength != 104 || len(buffer.Data) != 104 {
		t.Errorf("buffer length = %d/%d, want 104", buffer.ByteLength, len(buffer.Data))
	}
}

func TestLxoToGltfSharedMaterial(t *testing.T) {
	f := quadScene()
	second := f.AddLayer("Mesh2", 0, 0, 2)
	second.Points = []vec3.T{{0, 0, 1}, {1, 0, 1}, {0, 1, 1}}
	second.Polygons = [][]uint32{{0, 1, 2}}
	second.PTags[PTAG_MATR] = []PTag{{Poly: 0, Tag: 0}}

	doc, err := LxoToGltf(f)
	if err != nil {
		t.Fatalf("LxoToGltf failed: %v", err)
	}
	if len(doc.Meshes) != 2 {
		t.Fatalf("meshes = %d, want 2", len(doc.Meshes))
	}
	if len(doc.Materials) != 1 {
		t.Errorf("materials = %d, want shared material", len(doc.Materials))
	}
	if len(doc.Nodes) != 2 || len(doc.Scenes[0].Nodes) != 2 {
		t.Errorf("nodes = %d, scene nodes = %d", len(doc.Nodes), len(doc.Scenes[0].Nodes))
	}
}

func TestLxoToGltfUntaggedPolys(t *testing.T) {
	f := &LXOFile{}
	layer := f.AddLayer("Plain", 0, 0, 1)
	layer.Points = []vec3.T{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	layer.Polygons = [][]uint32{{0, 1, 2}}

	doc, err := LxoToGltf(f)
	if err != nil {
		t.Fatalf("LxoToGltf failed: %v", err)
	}
	if len(doc.Materials) != 1 || doc.Materials[0].Name != "default" {
		t.Errorf("materials = %+v", doc.Materials)
	}
}

func TestGetGltfBinary(t *testing.T) {
	doc, err := LxoToGltf(quadScene())
	if err != nil {
		t.Fatalf("LxoToGltf failed: %v", err)
	}
	bt, err := GetGltfBinary(doc, 8)
	if err != nil {
		t.Fatalf("GetGltfBinary failed: %v", err)
	}
	if len(bt) == 0 || len(bt)%8 != 0 {
		t.Errorf("binary length = %d, want non-empty multiple of 8", len(bt))
	}
}
