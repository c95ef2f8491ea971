// Package wmf provides a parser for Windows Metafiles (standard and placeable).
package wmf

import "fmt"

// WMF 파일 포맷 상수 정의
// 참조: [MS-WMF] Windows Metafile Format

const (
	// PlaceableKey는 placeable 헤더의 시그니처
	PlaceableKey uint32 = 0x9AC6CDD7

	// EnhancedSignature는 EMF 헤더의 " EMF" 시그니처 (오프셋 40)
	EnhancedSignature uint32 = 0x464D4520

	PlaceableHeaderSize = 22 // placeable 헤더 크기
	MetaHeaderSize      = 18 // META 헤더 크기

	// DefaultDPI is the resolution assumed when a metafile does not carry one.
	DefaultDPI = 1440

	// 레코드 최소 크기 (size u32 + function u16, 16비트 워드 단위)
	minRecordWords = 3
)

// 레코드 함수 코드 (META_*)
const (
	FuncEOF                   uint16 = 0x0000
	FuncRealizePalette        uint16 = 0x0035
	FuncSetPalEntries         uint16 = 0x0037
	FuncSetBkMode             uint16 = 0x0102
	FuncSetMapMode            uint16 = 0x0103
	FuncSetROP2               uint16 = 0x0104
	FuncSetRelAbs             uint16 = 0x0105
	FuncSetPolyFillMode       uint16 = 0x0106
	FuncSetStretchBltMode     uint16 = 0x0107
	FuncSetTextCharExtra      uint16 = 0x0108
	FuncRestoreDC             uint16 = 0x0127
	FuncInvertRegion          uint16 = 0x012A
	FuncPaintRegion           uint16 = 0x012B
	FuncSelectClipRegion      uint16 = 0x012C
	FuncSelectObject          uint16 = 0x012D
	FuncSetTextAlign          uint16 = 0x012E
	FuncResizePalette         uint16 = 0x0139
	FuncDIBCreatePatternBrush uint16 = 0x0142
	FuncSetLayout             uint16 = 0x0149
	FuncDeleteObject          uint16 = 0x01F0
	FuncCreatePatternBrush    uint16 = 0x01F9
	FuncSetBkColor            uint16 = 0x0201
	FuncSetTextColor          uint16 = 0x0209
	FuncSetTextJustification  uint16 = 0x020A
	FuncSetWindowOrg          uint16 = 0x020B
	FuncSetWindowExt          uint16 = 0x020C
	FuncSetViewportOrg        uint16 = 0x020D
	FuncSetViewportExt        uint16 = 0x020E
	FuncOffsetWindowOrg       uint16 = 0x020F
	FuncOffsetViewportOrg     uint16 = 0x0211
	FuncLineTo                uint16 = 0x0213
	FuncMoveTo                uint16 = 0x0214
	FuncOffsetClipRgn         uint16 = 0x0220
	FuncFillRegion            uint16 = 0x0228
	FuncSetMapperFlags        uint16 = 0x0231
	FuncSelectPalette         uint16 = 0x0234
	FuncCreatePenIndirect     uint16 = 0x02FA
	FuncCreateFontIndirect    uint16 = 0x02FB
	FuncCreateBrushIndirect   uint16 = 0x02FC
	FuncPolygon               uint16 = 0x0324
	FuncPolyline              uint16 = 0x0325
	FuncScaleWindowExt        uint16 = 0x0410
	FuncScaleViewportExt      uint16 = 0x0412
	FuncExcludeClipRect       uint16 = 0x0415
	FuncIntersectClipRect     uint16 = 0x0416
	FuncEllipse               uint16 = 0x0418
	FuncFloodFill             uint16 = 0x0419
	FuncRectangle             uint16 = 0x041B
	FuncSetPixel              uint16 = 0x041F
	FuncFrameRegion           uint16 = 0x0429
	FuncAnimatePalette        uint16 = 0x0436
	FuncTextOut               uint16 = 0x0521
	FuncPolyPolygon           uint16 = 0x0538
	FuncExtFloodFill          uint16 = 0x0548
	FuncRoundRect             uint16 = 0x061C
	FuncPatBlt                uint16 = 0x061D
	FuncEscape                uint16 = 0x0626
	FuncCreateRegion          uint16 = 0x06FF
	FuncArc                   uint16 = 0x0817
	FuncPie                   uint16 = 0x081A
	FuncChord                 uint16 = 0x0830
	FuncBitBlt                uint16 = 0x0922
	FuncDIBBitBlt             uint16 = 0x0940
	FuncExtTextOut            uint16 = 0x0A32
	FuncStretchBlt            uint16 = 0x0B23
	FuncDIBStretchBlt         uint16 = 0x0B41
	FuncSetDIBToDev           uint16 = 0x0D33
	FuncStretchDIB            uint16 = 0x0F43
	FuncCreatePalette         uint16 = 0x00F7
	FuncSaveDC                uint16 = 0x001E
	FuncCreateBitmapIndirect  uint16 = 0x02FD
	FuncCreateBitmap          uint16 = 0x06FE
)

// 펜 스타일 (PS_*)
type PenStyle uint16

const (
	PenSolid PenStyle = iota
	PenDash
	PenDot
	PenDashDot
	PenDashDotDot
	PenNull
	PenInsideFrame
)

// 펜 끝 모양 (PS_ENDCAP_*)
type PenCap uint16

const (
	CapRound PenCap = iota
	CapSquare
	CapFlat
)

// 펜 연결 모양 (PS_JOIN_*)
type PenJoin uint16

const (
	JoinRound PenJoin = iota
	JoinBevel
	JoinMiter
)

const (
	penStyleMask = 0x000F
	penCapMask   = 0x0F00
	penJoinMask  = 0xF000
)

// 브러시 스타일 (BS_*)
type BrushStyle uint16

const (
	BrushSolid BrushStyle = iota
	BrushNull
	BrushHatched
	BrushPattern
	BrushIndexed
	BrushDIBPattern
	BrushDIBPatternPT
	BrushPattern8x8
	BrushDIBPattern8x8
)

// 해치 스타일 (HS_*)
var hatchNames = []string{
	"horizontal",
	"vertical",
	"fdiagonal",
	"bdiagonal",
	"cross",
	"diagcross",
}

// HatchName returns the name of a hatch style, or "" for an invalid one.
func HatchName(h uint16) string {
	if int(h) < len(hatchNames) {
		return hatchNames[h]
	}
	return ""
}

// 배경 모드 (SetBkMode)
const (
	BkTransparent = 1
	BkOpaque      = 2
)

// ExtTextOut 옵션
const (
	etoOpaque  = 0x0002
	etoClipped = 0x0004
)

// rop2Names는 SetROP2 이진 래스터 연산 이름 (R2_*)
var rop2Names = []string{
	"", "black", "notmergepen", "masknotpen", "notcopypen", "maskpennot",
	"not", "xorpen", "notmaskpen", "maskpen", "notxorpen", "nop",
	"mergenotpen", "copypen", "mergepennot", "mergepen", "white",
}

// ROP2Name returns the name of a binary raster operation.
func ROP2Name(op uint16) string {
	if op > 0 && int(op) < len(rop2Names) {
		return rop2Names[op]
	}
	return "copypen"
}

// recordNames는 WMF 함수 테이블
var recordNames = map[uint16]string{
	FuncEOF:                   "EOF",
	FuncRealizePalette:        "REALIZEPALETTE",
	FuncSetPalEntries:         "SETPALENTRIES",
	FuncSetBkMode:             "SETBKMODE",
	FuncSetMapMode:            "SETMAPMODE",
	FuncSetROP2:               "SETROP2",
	FuncSetRelAbs:             "SETRELABS",
	FuncSetPolyFillMode:       "SETPOLYFILLMODE",
	FuncSetStretchBltMode:     "SETSTRETCHBLTMODE",
	FuncSetTextCharExtra:      "SETTEXTCHAREXTRA",
	FuncRestoreDC:             "RESTOREDC",
	FuncInvertRegion:          "INVERTREGION",
	FuncPaintRegion:           "PAINTREGION",
	FuncSelectClipRegion:      "SELECTCLIPREGION",
	FuncSelectObject:          "SELECTOBJECT",
	FuncSetTextAlign:          "SETTEXTALIGN",
	FuncResizePalette:         "RESIZEPALETTE",
	FuncDIBCreatePatternBrush: "DIBCREATEPATTERNBRUSH",
	FuncSetLayout:             "SETLAYOUT",
	FuncDeleteObject:          "DELETEOBJECT",
	FuncCreatePatternBrush:    "CREATEPATTERNBRUSH",
	FuncSetBkColor:            "SETBKCOLOR",
	FuncSetTextColor:          "SETTEXTCOLOR",
	FuncSetTextJustification:  "SETTEXTJUSTIFICATION",
	FuncSetWindowOrg:          "SETWINDOWORG",
	FuncSetWindowExt:          "SETWINDOWEXT",
	FuncSetViewportOrg:        "SETVIEWPORTORG",
	FuncSetViewportExt:        "SETVIEWPORTEXT",
	FuncOffsetWindowOrg:       "OFFSETWINDOWORG",
	FuncOffsetViewportOrg:     "OFFSETVIEWPORTORG",
	FuncLineTo:                "LINETO",
	FuncMoveTo:                "MOVETO",
	FuncOffsetClipRgn:         "OFFSETCLIPRGN",
	FuncFillRegion:            "FILLREGION",
	FuncSetMapperFlags:        "SETMAPPERFLAGS",
	FuncSelectPalette:         "SELECTPALETTE",
	FuncCreatePenIndirect:     "CREATEPENINDIRECT",
	FuncCreateFontIndirect:    "CREATEFONTINDIRECT",
	FuncCreateBrushIndirect:   "CREATEBRUSHINDIRECT",
	FuncPolygon:               "POLYGON",
	FuncPolyline:              "POLYLINE",
	FuncScaleWindowExt:        "SCALEWINDOWEXT",
	FuncScaleViewportExt:      "SCALEVIEWPORTEXT",
	FuncExcludeClipRect:       "EXCLUDECLIPRECT",
	FuncIntersectClipRect:     "INTERSECTCLIPRECT",
	FuncEllipse:               "ELLIPSE",
	FuncFloodFill:             "FLOODFILL",
	FuncRectangle:             "RECTANGLE",
	FuncSetPixel:              "SETPIXEL",
	FuncFrameRegion:           "FRAMEREGION",
	FuncAnimatePalette:        "ANIMATEPALETTE",
	FuncTextOut:               "TEXTOUT",
	FuncPolyPolygon:           "POLYPOLYGON",
	FuncExtFloodFill:          "EXTFLOODFILL",
	FuncRoundRect:             "ROUNDRECT",
	FuncPatBlt:                "PATBLT",
	FuncEscape:                "ESCAPE",
	FuncCreateRegion:          "CREATEREGION",
	FuncArc:                   "ARC",
	FuncPie:                   "PIE",
	FuncChord:                 "CHORD",
	FuncBitBlt:                "BITBLT",
	FuncDIBBitBlt:             "DIBBITBLT",
	FuncExtTextOut:            "EXTTEXTOUT",
	FuncStretchBlt:            "STRETCHBLT",
	FuncDIBStretchBlt:         "DIBSTRETCHBLT",
	FuncSetDIBToDev:           "SETDIBTODEV",
	FuncStretchDIB:            "STRETCHDIB",
	FuncCreatePalette:         "CREATEPALETTE",
	FuncSaveDC:                "SAVEDC",
	FuncCreateBitmapIndirect:  "CREATEBITMAPINDIRECT",
	FuncCreateBitmap:          "CREATEBITMAP",
}

// RecordName returns the human-readable name for a record function.
func RecordName(fn uint16) string {
	if name, ok := recordNames[fn]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(0x%04X)", fn)
}

// knownFunction reports whether fn is part of the metafile function table.
func knownFunction(fn uint16) bool {
	_, ok := recordNames[fn]
	return ok
}
