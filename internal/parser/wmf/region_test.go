package wmf

import (
	"encoding/binary"
	"image"
	"testing"
)

func TestRegion(t *testing.T) {
	g := RectRegion(image.Rect(10, 10, 0, 0))
	if g.Empty() || g.Area() != 100 {
		t.Fatalf("Expected a canonical 10x10 region, got %v", g.Rects)
	}

	in := g.Intersect(image.Rect(5, 5, 20, 20))
	if in.Bounds() != image.Rect(5, 5, 10, 10) {
		t.Errorf("Expected intersection (5,5)-(10,10), got %v", in.Bounds())
	}

	out := g.Subtract(image.Rect(2, 2, 8, 8))
	if out.Area() != 100-36 {
		t.Errorf("Expected area 64 after subtracting a hole, got %d", out.Area())
	}
	if out.Bounds() != g.Bounds() {
		t.Errorf("Expected bounds to stay %v, got %v", g.Bounds(), out.Bounds())
	}

	if !g.Intersect(image.Rect(20, 20, 30, 30)).Empty() {
		t.Error("Expected a disjoint intersection to be empty")
	}
	if RectRegion(image.Rectangle{}).Area() != 0 {
		t.Error("Expected an empty rectangle to give an empty region")
	}
}

func TestReader_ClipRecords(t *testing.T) {
	m := &metafile{}
	m.window(0, 0, 100, 100)
	m.rect(FuncIntersectClipRect, 0, 0, 50, 50)
	m.rect(FuncExcludeClipRect, 0, 0, 10, 10)

	doc := importData(t, m.standard())
	if len(doc.Shapes()) != 0 {
		t.Errorf("Expected clip records to produce no shapes, got %d", len(doc.Shapes()))
	}

	r, err := Load(m.standard())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	im := beginImporter(t, m.standard(), doc)
	if err := r.Play(im); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if got := im.ClipRegion().Area(); got != 50*50-10*10 {
		t.Errorf("Expected clip area 2400, got %d", got)
	}
}

func TestDecodeANSI(t *testing.T) {
	tests := []struct {
		in   []byte
		want string
	}{
		{[]byte("plain"), "plain"},
		{[]byte{'c', 'a', 'f', 0xE9, 0, 'x'}, "café"},
		{[]byte{0x80}, "€"},
		{nil, ""},
	}

	for _, tt := range tests {
		if got := decodeANSI(tt.in); got != tt.want {
			t.Errorf("decodeANSI(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDIBToBMP(t *testing.T) {
	img, err := decodeDIB(dib24(3, 2, 0, 0, 0xFF))
	if err != nil {
		t.Fatalf("decodeDIB failed: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 3 || b.Dy() != 2 {
		t.Errorf("Expected 3x2 image, got %v", b)
	}
	r, g, b, _ := img.At(1, 1).RGBA()
	if r != 0 || g != 0 || b != 0xFFFF {
		t.Errorf("Expected blue pixel, got %d %d %d", r, g, b)
	}

	if _, err := decodeDIB(make([]byte, 10)); err == nil {
		t.Error("Expected error for a truncated DIB")
	}
}

func TestDIBToBMP_RejectsOversizedHeader(t *testing.T) {
	resize := func(w, h int32, bpp uint16) []byte {
		dib := dib24(1, 1, 0, 0, 0)
		binary.LittleEndian.PutUint32(dib[4:], uint32(w))
		binary.LittleEndian.PutUint32(dib[8:], uint32(h))
		binary.LittleEndian.PutUint16(dib[14:], bpp)
		return dib
	}

	tests := []struct {
		name string
		dib  []byte
		ok   bool
	}{
		{"fits", resize(1, 1, 24), true},
		{"top-down", resize(1, -1, 24), true},
		{"huge", resize(0x40000000, 0x40000000, 24), false},
		{"more rows than data", resize(1, 100, 24), false},
		{"zero width", resize(0, 1, 24), false},
		{"negative width", resize(-4, 1, 24), false},
		{"zero depth", resize(1, 1, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := dibToBMP(tt.dib)
			if (err == nil) != tt.ok {
				t.Errorf("dibToBMP() error = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}

func TestImporter_HugeBitmapRecord(t *testing.T) {
	dib := dib24(1, 1, 0, 0, 0)
	binary.LittleEndian.PutUint32(dib[4:], 0x40000000)
	binary.LittleEndian.PutUint32(dib[8:], 0x40000000)

	params := make([]byte, 0, 22+len(dib))
	for _, w := range []int{0x0020, 0x00CC, 0, 1, 1, 0, 0, 10, 10, 0, 0} {
		params = append(params, byte(w), byte(w>>8))
	}
	params = append(params, dib...)

	m := &metafile{objects: 1}
	m.raw(FuncStretchDIB, params)
	m.raw(FuncDIBCreatePatternBrush, append([]byte{0, 0, 0, 0}, dib...))

	doc := importData(t, m.standard())
	if n := len(doc.Shapes()); n != 0 {
		t.Errorf("Expected the bitmap to be skipped, got %d shapes", n)
	}
	if n := doc.Images().Len(); n != 0 {
		t.Errorf("Expected no stored images, got %d", n)
	}
}

func TestCropImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 1))
	for x := 0; x < 4; x++ {
		src.Pix[x*4] = uint8(x)
	}

	out := toRGBA(cropImage(src, 1, 0, -2, 1))
	if out.Bounds().Dx() != 2 {
		t.Fatalf("Expected 2 pixels, got %v", out.Bounds())
	}
	if out.Pix[0] != 2 || out.Pix[4] != 1 {
		t.Errorf("Expected mirrored pixels 2,1, got %d,%d", out.Pix[0], out.Pix[4])
	}
}
