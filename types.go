package lxo

const LXOEXT string = ".lxo"

// Channel value datatypes. Stored values carry an extra bit (0x20) for the
// evaluated variant which is masked off before dispatch.
const (
	CHANNEL_DATATYPE_INTEGER = 1
	CHANNEL_DATATYPE_FLOAT   = 2
	CHANNEL_DATATYPE_HINT    = 3

	CHANNEL_DATATYPE_EVAL_BIT = 0x20
)

// Polygon type tags of interest. SUBD and PSUB mark subdivision surfaces.
const (
	POLY_TYPE_FACE = "FACE"
	POLY_TYPE_SUBD = "SUBD"
	POLY_TYPE_PSUB = "PSUB"
)

// MAP_TYPE_UV is the vertex-map type retained by VMAP/VMAD decoding; all
// other map types are consumed for alignment and discarded.
const MAP_TYPE_UV = "TXUV"

// PTAG_MATR keys the polygon tags the materials view is derived from.
const PTAG_MATR = "MATR"

// sceneEncodings is the fixed table the ENCO chunk indexes into.
var sceneEncodings = []string{
	"System Default",
	"ANSI",
	"UTF-8",
	"Shift-JIS (Japanese)",
	"EUC-JP (Japanese)",
	"EUC-KR (Korea KS C 5601)",
	"GB2312 (Simplified Chinese)",
	"BIG5 (Traditional Chinese)",
}
