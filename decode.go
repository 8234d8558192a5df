package lxo

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/flywave/go3d/vec3"
)

// tagFilter is an optional allow-set of chunk keys. Top-level keys are the
// chunk tag; nested keys are the enclosing tag joined with the subchunk
// tag. An empty filter decodes everything.
type tagFilter map[string]struct{}

func newTagFilter(tags []string) tagFilter {
	if len(tags) == 0 {
		return nil
	}
	f := make(tagFilter, len(tags))
	for _, t := range tags {
		f[t] = struct{}{}
	}
	return f
}

func (f tagFilter) allows(key string) bool {
	if len(f) == 0 {
		return true
	}
	_, ok := f[key]
	return ok
}

type decoder struct {
	r      *reader
	filter tagFilter
	file   *LXOFile
}

// ReadFile decodes the LXO scene at path. When tags are given, only the
// listed chunk keys are decoded; everything else is seeked past. Skipping
// a chunk that establishes context for a retained one (LAYR before PNTS)
// is a caller configuration error and surfaces as ErrMissingContext.
func ReadFile(path string, tags ...string) (*LXOFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("lxo: open %s: %w", path, err)
	}
	defer f.Close()
	return Decode(f, tags...)
}

// Decode reads one scene from rd. The seeker is only ever moved forward.
func Decode(rd io.ReadSeeker, tags ...string) (*LXOFile, error) {
	head := make([]byte, 8)
	if _, err := io.ReadFull(rd, head); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTruncated, err)
	}
	if string(head[:4]) != "FORM" {
		return nil, fmt.Errorf("%w: leading tag %q", ErrMalformedContainer, head[:4])
	}
	size := binary.BigEndian.Uint32(head[4:])

	d := &decoder{
		r:      newReader(rd, int64(size)),
		filter: newTagFilter(tags),
		file:   &LXOFile{Size: size},
	}
	sceneType, err := d.r.id4()
	if err != nil {
		return nil, err
	}
	d.file.SceneType = sceneType

	if err := d.readChunks(); err != nil {
		return nil, err
	}
	return d.file, nil
}

// readChunks walks the top-level chunk sequence. The current layer is
// explicit sibling state: LAYR establishes it, the point/polygon/map/tag
// chunks consume it.
func (d *decoder) readChunks() error {
	var current *Layer
	for d.r.remain > 0 {
		tag, err := d.r.id4()
		if err != nil {
			return err
		}
		size, err := d.r.u4()
		if err != nil {
			return err
		}
		snap := d.r.remain

		if !d.filter.allows(tag) {
			if err := d.r.skip(int64(size)); err != nil {
				return err
			}
			continue
		}

		switch tag {
		case "DESC":
			err = d.readDescription()
		case "VRSN":
			err = d.readVersion()
		case "APPV":
			err = d.readAppVersion()
		case "ENCO":
			err = d.readEncoding()
		case "TAGS":
			d.file.TagNames, err = d.readStrings(snap, size)
		case "CHNM":
			err = d.readChannelNames()
		case "LAYR":
			current, err = d.readLayer(snap, size)
		case "PNTS":
			err = d.readPoints(current, snap, size)
		case "POLS":
			err = d.readPolygons(current, snap, size)
		case "VMAP":
			err = d.readVertexMap(current, snap, size)
		case "VMAD":
			err = d.readVertexMapDisco(current, snap, size)
		case "PTAG":
			err = d.readPolygonTags(current, snap, size)
		case "ENVL":
			err = d.readEnvelope(snap, size)
		case "BBOX":
			err = d.readBoundingBox(current)
		case "ITEM":
			err = d.readItem(snap, size)
		case "ACTN":
			err = d.readAction(snap, size)
		default:
			// Unknown tags are the format's forward-compatibility
			// path, not an error.
			err = d.r.skip(int64(size))
		}
		if err != nil {
			return fmt.Errorf("lxo: chunk %s: %w", tag, err)
		}
		if consumed := snap - d.r.remain; consumed != int64(size) {
			return fmt.Errorf("%w: chunk %s declared %d, consumed %d", ErrSizeMismatch, tag, size, consumed)
		}
	}
	return nil
}

func (d *decoder) readDescription() error {
	presetType, err := d.r.s0()
	if err != nil {
		return err
	}
	description, err := d.r.s0()
	if err != nil {
		return err
	}
	d.file.PresetType = presetType
	d.file.Description = description
	return nil
}

func (d *decoder) readVersion() error {
	major, err := d.r.u4()
	if err != nil {
		return err
	}
	if _, err := d.r.u4(); err != nil { // minor
		return err
	}
	app, err := d.r.s0()
	if err != nil {
		return err
	}
	d.file.Version = major
	d.file.AppVersion = app
	return nil
}

// readAppVersion consumes the APPV build record for byte alignment; none
// of it is retained.
func (d *decoder) readAppVersion() error {
	for i := 0; i < 4; i++ {
		if _, err := d.r.u4(); err != nil {
			return err
		}
	}
	_, err := d.r.s0()
	return err
}

func (d *decoder) readEncoding() error {
	index, err := d.r.u4()
	if err != nil {
		return err
	}
	if int(index) >= len(sceneEncodings) {
		return fmt.Errorf("%w: encoding %d of %d", ErrUnresolvedIndex, index, len(sceneEncodings))
	}
	d.file.EncodingIndex = index
	d.file.Encoding = sceneEncodings[index]
	return nil
}

// readStrings reads strings until the declared size is exhausted.
func (d *decoder) readStrings(snap int64, size uint32) ([]string, error) {
	var out []string
	for snap-d.r.remain < int64(size) {
		s, err := d.r.s0()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (d *decoder) readChannelNames() error {
	count, err := d.r.u4()
	if err != nil {
		return err
	}
	names := make([]string, 0, count)
	for i := uint32(0); i < count; i++ {
		s, err := d.r.s0()
		if err != nil {
			return err
		}
		names = append(names, s)
	}
	d.file.ChannelNames = names
	return nil
}

func (d *decoder) readLayer(snap int64, size uint32) (*Layer, error) {
	index, err := d.r.u2()
	if err != nil {
		return nil, err
	}
	flags, err := d.r.u2()
	if err != nil {
		return nil, err
	}
	rotPivot, err := d.r.vec12()
	if err != nil {
		return nil, err
	}
	name, err := d.r.s0()
	if err != nil {
		return nil, err
	}
	legacyParent, err := d.r.i2()
	if err != nil {
		return nil, err
	}
	refineSubD, err := d.r.f4()
	if err != nil {
		return nil, err
	}
	refineCrvs, err := d.r.f4()
	if err != nil {
		return nil, err
	}
	sclPivot, err := d.r.vec12()
	if err != nil {
		return nil, err
	}
	for i := 0; i < 6; i++ {
		if _, err := d.r.u4(); err != nil {
			return nil, err
		}
	}
	itemReference, err := d.r.u4()
	if err != nil {
		return nil, err
	}
	splineLevel, err := d.r.u2()
	if err != nil {
		return nil, err
	}
	for i := 0; i < 4; i++ {
		if _, err := d.r.u2(); err != nil {
			return nil, err
		}
	}
	ccRenderLvl, err := d.r.u2()
	if err != nil {
		return nil, err
	}
	ccPreviewLvl, err := d.r.u2()
	if err != nil {
		return nil, err
	}
	subdRenderLvl, err := d.r.u2()
	if err != nil {
		return nil, err
	}
	rest, err := d.r.blob(int(int64(size) - (snap - d.r.remain)))
	if err != nil {
		return nil, err
	}

	layer := d.file.AddLayer(name, refineSubD, ccPreviewLvl, itemReference)
	layer.Index = index
	layer.Flags = flags
	layer.RotPivot = rotPivot
	layer.SclPivot = sclPivot
	layer.LegacyParent = legacyParent
	layer.CurveLevel = refineCrvs
	layer.SplineLevel = splineLevel
	layer.CCRenderLvl = ccRenderLvl
	layer.SubDRender = subdRenderLvl
	layer.Rest = rest
	return layer, nil
}

func (d *decoder) readPoints(layer *Layer, snap int64, size uint32) error {
	if layer == nil {
		return ErrMissingContext
	}
	for snap-d.r.remain < int64(size) {
		p, err := d.r.vec12()
		if err != nil {
			return err
		}
		layer.Points = append(layer.Points, p)
	}
	return nil
}

func (d *decoder) readPolygons(layer *Layer, snap int64, size uint32) error {
	if layer == nil {
		return ErrMissingContext
	}
	polyType, err := d.r.id4()
	if err != nil {
		return err
	}
	if polyType == POLY_TYPE_SUBD || polyType == POLY_TYPE_PSUB {
		layer.IsSubD = true
	}
	for snap-d.r.remain < int64(size) {
		vertCount, err := d.r.u2()
		if err != nil {
			return err
		}
		poly := make([]uint32, 0, vertCount)
		for i := uint16(0); i < vertCount; i++ {
			index, err := d.r.vx()
			if err != nil {
				return err
			}
			poly = append(poly, index)
		}
		layer.Polygons = append(layer.Polygons, poly)
	}
	return nil
}

func (d *decoder) readVertexMap(layer *Layer, snap int64, size uint32) error {
	if layer == nil {
		return ErrMissingContext
	}
	mapType, err := d.r.id4()
	if err != nil {
		return err
	}
	dimension, err := d.r.u2()
	if err != nil {
		return err
	}
	name, err := d.r.s0()
	if err != nil {
		return err
	}
	values := make(map[uint32][]float32)
	for snap-d.r.remain < int64(size) {
		index, err := d.r.vx()
		if err != nil {
			return err
		}
		vv := make([]float32, dimension)
		for i := range vv {
			if vv[i], err = d.r.f4(); err != nil {
				return err
			}
		}
		values[index] = vv
	}
	if mapType == MAP_TYPE_UV {
		layer.UVMaps[name] = values
	}
	return nil
}

func (d *decoder) readVertexMapDisco(layer *Layer, snap int64, size uint32) error {
	if layer == nil {
		return ErrMissingContext
	}
	mapType, err := d.r.id4()
	if err != nil {
		return err
	}
	dimension, err := d.r.u2()
	if err != nil {
		return err
	}
	name, err := d.r.s0()
	if err != nil {
		return err
	}
	values := make(map[uint32]map[uint32][]float32)
	for snap-d.r.remain < int64(size) {
		vertIndex, err := d.r.vx()
		if err != nil {
			return err
		}
		polyIndex, err := d.r.vx()
		if err != nil {
			return err
		}
		vv := make([]float32, dimension)
		for i := range vv {
			if vv[i], err = d.r.f4(); err != nil {
				return err
			}
		}
		if _, ok := values[polyIndex]; !ok {
			values[polyIndex] = make(map[uint32][]float32)
		}
		values[polyIndex][vertIndex] = vv
	}
	if mapType == MAP_TYPE_UV {
		layer.UVMapsDisco[name] = values
	}
	return nil
}

func (d *decoder) readPolygonTags(layer *Layer, snap int64, size uint32) error {
	if layer == nil {
		return ErrMissingContext
	}
	tagType, err := d.r.id4()
	if err != nil {
		return err
	}
	var ptags []PTag
	for snap-d.r.remain < int64(size) {
		polyIndex, err := d.r.vx()
		if err != nil {
			return err
		}
		tagIndex, err := d.r.u2()
		if err != nil {
			return err
		}
		ptags = append(ptags, PTag{Poly: polyIndex, Tag: tagIndex})
	}
	layer.PTags[tagType] = ptags
	return nil
}

// readEnvelope keeps the envelope header and its subchunks as an opaque
// record; envelopes are not structurally decoded.
func (d *decoder) readEnvelope(snap int64, size uint32) error {
	index, err := d.r.vx()
	if err != nil {
		return err
	}
	typ, err := d.r.u4()
	if err != nil {
		return err
	}
	data, err := d.r.blob(int(int64(size) - (snap - d.r.remain)))
	if err != nil {
		return err
	}
	d.file.Envelopes = append(d.file.Envelopes, Envelope{Index: index, Type: typ, Data: data})
	return nil
}

// readBoundingBox stores the box on the current layer when one is active.
// Stray boxes before the first LAYR are decoded and dropped.
func (d *decoder) readBoundingBox(layer *Layer) error {
	min, err := d.r.vec12()
	if err != nil {
		return err
	}
	max, err := d.r.vec12()
	if err != nil {
		return err
	}
	if layer != nil {
		layer.BBox = &vec3.Box{Min: min, Max: max}
	}
	return nil
}
