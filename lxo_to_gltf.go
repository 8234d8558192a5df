package lxo

import (
	"bytes"
	"encoding/binary"
	"io"
	"sort"

	"github.com/flywave/go3d/vec2"

	"github.com/qmuntal/gltf"
)

const GLTF_VERSION = "2.0"

// LxoToGltf converts the mesh layers of a decoded scene into a glTF 2.0
// document. Polygons are fan-triangulated; material assignment comes from
// the derived MATR ptag view.
func LxoToGltf(f *LXOFile) (*gltf.Document, error) {
	doc := CreateDoc()
	for _, layer := range f.Layers {
		if err := BuildGltf(doc, f, layer); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

func CreateDoc() *gltf.Document {
	doc := &gltf.Document{}
	doc.Asset.Version = GLTF_VERSION
	srcIndex := uint32(0)
	doc.Scene = &srcIndex
	doc.Scenes = append(doc.Scenes, &gltf.Scene{})
	doc.Buffers = append(doc.Buffers, &gltf.Buffer{})
	return doc
}

type calcSizeWriter struct {
	writer io.Writer
	Size   int
}

func (w *calcSizeWriter) Write(p []byte) (n int, err error) {
	si := len(p)
	w.writer.Write(p)
	w.Size += int(si)
	return si, nil
}

func (w *calcSizeWriter) Bytes() []byte {
	return w.writer.(*bytes.Buffer).Bytes()
}

func newSizeWriter() calcSizeWriter {
	wt := bytes.NewBuffer([]byte{})
	return calcSizeWriter{Size: int(0), writer: wt}
}

func calcPadding(offset, paddingUnit int) int {
	padding := offset % paddingUnit
	if padding != 0 {
		padding = paddingUnit - padding
	}
	return padding
}

func GetGltfBinary(doc *gltf.Document, paddingUnit int) ([]byte, error) {
	w := newSizeWriter()
	enc := gltf.NewEncoder(w.writer)
	enc.AsBinary = true
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	padding := calcPadding(w.Size, paddingUnit)
	if padding == 0 {
		return w.Bytes(), nil
	}
	pad := make([]byte, padding)
	for i := range pad {
		pad[i] = 0x20
	}
	w.Write(pad)
	return w.Bytes(), nil
}

// BuildGltf appends one layer to the document as a mesh with one primitive
// per material group. Layers without points contribute nothing.
func BuildGltf(doc *gltf.Document, f *LXOFile, layer *Layer) error {
	if len(layer.Points) == 0 || len(layer.Polygons) == 0 {
		return nil
	}
	groups, names, err := materialGroups(f, layer)
	if err != nil {
		return err
	}

	buffer := doc.Buffers[0]
	var bt []byte
	buf := bytes.NewBuffer(bt)
	startLen := buffer.ByteLength

	postions := &gltf.BufferView{}
	postions.Buffer = 0
	postions.ByteOffset = startLen
	binary.Write(buf, binary.LittleEndian, layer.Points)
	postions.ByteLength = uint32(buf.Len())
	bvPos := uint32(len(doc.BufferViews))
	doc.BufferViews = append(doc.BufferViews, postions)

	posacc := &gltf.Accessor{}
	posacc.ComponentType = gltf.ComponentFloat
	posacc.Type = gltf.AccessorVec3
	posacc.Count = uint32(len(layer.Points))
	posacc.BufferView = &bvPos
	box := layer.pointBounds()
	posacc.Min = []float32{box.Min[0], box.Min[1], box.Min[2]}
	posacc.Max = []float32{box.Max[0], box.Max[1], box.Max[2]}
	accPos := uint32(len(doc.Accessors))
	doc.Accessors = append(doc.Accessors, posacc)

	texCoords := layer.pointTexCoords()
	var accTex uint32
	if texCoords != nil {
		texcood := &gltf.BufferView{}
		texcood.Buffer = 0
		texcood.ByteOffset = startLen + uint32(buf.Len())
		binary.Write(buf, binary.LittleEndian, texCoords)
		texcood.ByteLength = startLen + uint32(buf.Len()) - texcood.ByteOffset
		bvTexc := uint32(len(doc.BufferViews))
		doc.BufferViews = append(doc.BufferViews, texcood)

		texacc := &gltf.Accessor{}
		texacc.ComponentType = gltf.ComponentFloat
		texacc.Type = gltf.AccessorVec2
		texacc.Count = uint32(len(texCoords))
		texacc.BufferView = &bvTexc
		accTex = uint32(len(doc.Accessors))
		doc.Accessors = append(doc.Accessors, texacc)
	}

	mesh := &gltf.Mesh{Name: layer.Name}
	for _, name := range names {
		indices := groups[name]
		if len(indices) == 0 {
			continue
		}
		indecs := &gltf.BufferView{}
		indecs.Buffer = 0
		indecs.ByteOffset = startLen + uint32(buf.Len())
		binary.Write(buf, binary.LittleEndian, indices)
		indecs.ByteLength = startLen + uint32(buf.Len()) - indecs.ByteOffset
		bvIdx := uint32(len(doc.BufferViews))
		doc.BufferViews = append(doc.BufferViews, indecs)

		indexacc := &gltf.Accessor{}
		indexacc.ComponentType = gltf.ComponentUint
		indexacc.Type = gltf.AccessorScalar
		indexacc.Count = uint32(len(indices))
		indexacc.BufferView = &bvIdx
		accIdx := uint32(len(doc.Accessors))
		doc.Accessors = append(doc.Accessors, indexacc)

		mtlId := materialIndex(doc, name)
		ps := &gltf.Primitive{}
		ps.Mode = gltf.PrimitiveTriangles
		ps.Indices = &accIdx
		ps.Material = &mtlId
		ps.Attributes = make(gltf.Attribute)
		ps.Attributes["POSITION"] = accPos
		if texCoords != nil {
			ps.Attributes["TEXCOORD_0"] = accTex
		}
		mesh.Primitives = append(mesh.Primitives, ps)
	}

	buffer.ByteLength += uint32(buf.Len())
	buffer.Data = append(buffer.Data, buf.Bytes()...)

	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(len(doc.Nodes)))
	meshId := uint32(len(doc.Meshes))
	doc.Nodes = append(doc.Nodes, &gltf.Node{Name: layer.Name, Mesh: &meshId})
	doc.Meshes = append(doc.Meshes, mesh)
	return nil
}

// materialGroups fan-triangulates the layer polygons and buckets the
// indices by material name; untagged polygons land in the default group.
func materialGroups(f *LXOFile, layer *Layer) (map[string][]uint32, []string, error) {
	mats, err := layer.MaterialPolys(f)
	if err != nil {
		return nil, nil, err
	}
	polyMtl := make([]string, len(layer.Polygons))
	for name, polys := range mats {
		for _, pi := range polys {
			if int(pi) < len(polyMtl) {
				polyMtl[pi] = name
			}
		}
	}

	groups := make(map[string][]uint32)
	for pi, poly := range layer.Polygons {
		for i := 1; i+1 < len(poly); i++ {
			groups[polyMtl[pi]] = append(groups[polyMtl[pi]], poly[0], poly[i], poly[i+1])
		}
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return groups, names, nil
}

// materialIndex finds or creates the document material with the given
// name.
func materialIndex(doc *gltf.Document, name string) uint32 {
	if name == "" {
		name = "default"
	}
	for i, m := range doc.Materials {
		if m.Name == name {
			return uint32(i)
		}
	}
	gm := &gltf.Material{Name: name, DoubleSided: true, AlphaMode: gltf.AlphaMask}
	gm.PBRMetallicRoughness = &gltf.PBRMetallicRoughness{BaseColorFactor: &[4]float32{1, 1, 1, 1}}
	id := uint32(len(doc.Materials))
	doc.Materials = append(doc.Materials, gm)
	return id
}

// pointTexCoords flattens the first two-component UV map into a per-point
// slice aligned with Points. Points without a map entry get {0, 0}.
func (l *Layer) pointTexCoords() []vec2.T {
	names := make([]string, 0, len(l.UVMaps))
	for name := range l.UVMaps {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		values := l.UVMaps[name]
		out := make([]vec2.T, len(l.Points))
		used := false
		for index, vv := range values {
			if len(vv) != 2 || int(index) >= len(out) {
				continue
			}
			out[index] = vec2.T{vv[0], vv[1]}
			used = true
		}
		if used {
			return out
		}
	}
	return nil
}
