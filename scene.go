package lxo

import (
	"fmt"

	"github.com/flywave/go3d/vec3"
)

// PTag associates a polygon with an entry in the file tag-name table.
type PTag struct {
	Poly uint32 `json:"poly"`
	Tag  uint16 `json:"tag"`
}

// Layer is one mesh layer of the scene.
type Layer struct {
	Name         string  `json:"name"`
	Index        uint16  `json:"index"`
	Flags        uint16  `json:"flags"`
	ReferenceID  uint32  `json:"referenceId"`
	IsSubD       bool    `json:"isSubD"`
	SubDLevel    float32 `json:"subdLevel"`
	CurveLevel   float32 `json:"curveLevel"`
	PSubLevel    uint16  `json:"psubLevel"`
	LegacyParent int16   `json:"legacyParent,omitempty"`
	SplineLevel  uint16  `json:"splineLevel,omitempty"`
	CCRenderLvl  uint16  `json:"ccRenderLvl,omitempty"`
	SubDRender   uint16  `json:"subdRenderLvl,omitempty"`

	RotPivot vec3.T    `json:"rotPivot"`
	SclPivot vec3.T    `json:"sclPivot"`
	BBox     *vec3.Box `json:"bbox,omitempty"`

	Points   []vec3.T   `json:"points,omitempty"`
	Polygons [][]uint32 `json:"polygons,omitempty"`
	PTags    map[string][]PTag

	// UVMaps holds per-point values, UVMapsDisco per-polygon-corner
	// values, both keyed by map name and restricted to TXUV maps.
	UVMaps      map[string]map[uint32][]float32
	UVMapsDisco map[string]map[uint32]map[uint32][]float32

	// Rest is the undecoded tail of the LAYR header.
	Rest []byte `json:"-"`
}

// MaterialPolys derives the material view from the layer's MATR polygon
// tags and the file tag-name table: material name to polygon indices. It
// is computed on demand and never cached.
func (l *Layer) MaterialPolys(f *LXOFile) (map[string][]uint32, error) {
	out := make(map[string][]uint32)
	for _, pt := range l.PTags[PTAG_MATR] {
		if int(pt.Tag) >= len(f.TagNames) {
			return nil, fmt.Errorf("%w: tag %d of %d", ErrUnresolvedIndex, pt.Tag, len(f.TagNames))
		}
		name := f.TagNames[pt.Tag]
		out[name] = append(out[name], pt.Poly)
	}
	return out, nil
}

// pointBounds computes the axis-aligned bounds of the layer points,
// preferring the decoded BBOX chunk when one was present.
func (l *Layer) pointBounds() vec3.Box {
	if l.BBox != nil {
		return *l.BBox
	}
	var box vec3.Box
	for i, p := range l.Points {
		if i == 0 {
			box.Min, box.Max = p, p
			continue
		}
		for c := 0; c < 3; c++ {
			if p[c] < box.Min[c] {
				box.Min[c] = p[c]
			}
			if p[c] > box.Max[c] {
				box.Max[c] = p[c]
			}
		}
	}
	return box
}

// Channel is one raw channel record kept when its name cannot be resolved
// against the file channel-name table.
type Channel struct {
	Name     string      `json:"name"`
	DataType uint16      `json:"datatype"`
	Value    interface{} `json:"value"`
}

// ChannelComponent is one named component of a vector channel.
type ChannelComponent struct {
	Name  string      `json:"name"`
	Value interface{} `json:"value"`
}

// ItemTag is one (type, value) tag attached to an item.
type ItemTag struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// GraphLink is an edge in a named item graph. ItemIndex is positional
// within the file item table, not a reference id.
type GraphLink struct {
	ItemIndex int32 `json:"itemIndex"`
	LinkIndex int32 `json:"linkIndex"`
}

// ItemLayer is an item's visual-layer association.
type ItemLayer struct {
	Index uint32   `json:"index"`
	Flags uint32   `json:"flags"`
	Color [4]uint8 `json:"color"`
}

// XRef records an external sub-scene reference; it is kept verbatim, never
// resolved.
type XRef struct {
	Index    uint32 `json:"index"`
	Filename string `json:"filename"`
	ItemID   string `json:"itemId"`
}

// SubBlob is the opaque payload of a subchunk retained without structural
// decoding.
type SubBlob struct {
	Tag  string `json:"tag"`
	Data []byte `json:"data"`
}

// Item is one scene-graph node.
type Item struct {
	ReferenceID uint32 `json:"referenceId"`
	Name        string `json:"name"`
	VName       string `json:"vname,omitempty"`
	TypeName    string `json:"typename"`

	// Channels maps channel name to its latest decoded value; later
	// writes overwrite earlier ones.
	Channels map[string]interface{} `json:"channels,omitempty"`
	// Unresolved keeps CHNL records whose names are absent from the file
	// channel-name table.
	Unresolved     []Channel                     `json:"unresolved,omitempty"`
	VectorChannels map[string][]ChannelComponent `json:"vectorChannels,omitempty"`

	Tags       []ItemTag            `json:"tags,omitempty"`
	Packages   []string             `json:"packages,omitempty"`
	GraphLinks map[string]GraphLink `json:"graphLinks,omitempty"`
	Layer      *ItemLayer           `json:"layer,omitempty"`
	XRefs      []XRef               `json:"xrefs,omitempty"`

	// RawChannels holds CHNC byte records; Blobs every subchunk kept as
	// an opaque payload (gradients, compiled links, unknown tags).
	RawChannels [][]byte  `json:"-"`
	Blobs       []SubBlob `json:"-"`
}

// ActionChannel is one channel override inside an action layer. Unlike the
// item-body record it carries an envelope index.
type ActionChannel struct {
	Name     string      `json:"name"`
	DataType uint16      `json:"datatype"`
	Envelope uint32      `json:"envelope"`
	Value    interface{} `json:"value"`
}

// StringChannel is one string-valued action channel.
type StringChannel struct {
	Name    string `json:"name"`
	Channel string `json:"channel"`
	Value   string `json:"value"`
}

// ActionItem is the set of channel overrides one action layer applies to
// the item with the given reference id.
type ActionItem struct {
	ReferenceID    uint32          `json:"referenceId"`
	Channels       []ActionChannel `json:"channels,omitempty"`
	Gradients      [][]byte        `json:"-"`
	StringChannels []StringChannel `json:"stringChannels,omitempty"`
	Blobs          []SubBlob       `json:"-"`
}

// ActionLayer is a named animation pass (edit, scene, setup) of per-item
// channel overrides.
type ActionLayer struct {
	Name  string        `json:"name"`
	Type  string        `json:"type"`
	Index uint32        `json:"index"`
	Items []*ActionItem `json:"items,omitempty"`
}

func (a *ActionLayer) AddItem(referenceID uint32) *ActionItem {
	item := &ActionItem{ReferenceID: referenceID}
	a.Items = append(a.Items, item)
	return item
}

// Envelope is an animation envelope retained as an opaque record.
type Envelope struct {
	Index uint32 `json:"index"`
	Type  uint32 `json:"type"`
	Data  []byte `json:"-"`
}

// LXOFile is the decoded scene aggregate. It owns every layer, item and
// action layer; cross references between them are plain ids and indices.
type LXOFile struct {
	Version       uint32 `json:"version"`
	AppVersion    string `json:"appversion,omitempty"`
	EncodingIndex uint32 `json:"encodingIndex"`
	Encoding      string `json:"encoding,omitempty"`
	Size          uint32 `json:"size"`
	SceneType     string `json:"type"`
	PresetType    string `json:"presetType,omitempty"`
	Description   string `json:"description,omitempty"`

	TagNames     []string `json:"tagnames,omitempty"`
	ChannelNames []string `json:"channelNames,omitempty"`

	Layers       []*Layer       `json:"layers,omitempty"`
	Items        []*Item        `json:"items,omitempty"`
	ActionLayers []*ActionLayer `json:"actionLayers,omitempty"`
	Envelopes    []Envelope     `json:"envelopes,omitempty"`
}

func (f *LXOFile) AddLayer(name string, subdLevel float32, psubLevel uint16, referenceID uint32) *Layer {
	layer := &Layer{
		Name:        name,
		SubDLevel:   subdLevel,
		PSubLevel:   psubLevel,
		ReferenceID: referenceID,
		PTags:       make(map[string][]PTag),
		UVMaps:      make(map[string]map[uint32][]float32),
		UVMapsDisco: make(map[string]map[uint32]map[uint32][]float32),
	}
	f.Layers = append(f.Layers, layer)
	return layer
}

func (f *LXOFile) AddItem(name string, referenceID uint32, typename string) *Item {
	item := &Item{
		Name:           name,
		ReferenceID:    referenceID,
		TypeName:       typename,
		Channels:       make(map[string]interface{}),
		VectorChannels: make(map[string][]ChannelComponent),
		GraphLinks:     make(map[string]GraphLink),
	}
	f.Items = append(f.Items, item)
	return item
}

func (f *LXOFile) AddActionLayer(name, typ string, index uint32) *ActionLayer {
	layer := &ActionLayer{Name: name, Type: typ, Index: index}
	f.ActionLayers = append(f.ActionLayers, layer)
	return layer
}

// channelName resolves an index into the channel-name table.
func (f *LXOFile) channelName(index uint32) (string, error) {
	if int(index) >= len(f.ChannelNames) {
		return "", fmt.Errorf("%w: channel %d of %d", ErrUnresolvedIndex, index, len(f.ChannelNames))
	}
	return f.ChannelNames[index], nil
}

// hasChannelName reports whether name is present in the channel-name
// table.
func (f *LXOFile) hasChannelName(name string) bool {
	for _, n := range f.ChannelNames {
		if n == name {
			return true
		}
	}
	return false
}

func (f *LXOFile) LayerCount() int {
	return len(f.Layers)
}

func (f *LXOFile) ItemCount() int {
	return len(f.Items)
}
