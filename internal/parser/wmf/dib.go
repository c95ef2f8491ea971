package wmf

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

const (
	bmpFileHeaderSize = 14
	// maxDIBPixels bounds the decoded size of a single bitmap record.
	maxDIBPixels = 1 << 26
)

// dibToBMP prepends a BITMAPFILEHEADER to a packed DIB.
func dibToBMP(dib []byte) ([]byte, error) {
	if len(dib) < 40 {
		return nil, fmt.Errorf("DIB too small: %d bytes", len(dib))
	}
	le := binary.LittleEndian
	infoLen := le.Uint32(dib[0:])
	if infoLen < 40 || int(infoLen) > len(dib) {
		return nil, fmt.Errorf("unsupported DIB header size %d", infoLen)
	}
	bpp := le.Uint16(dib[14:])
	colors := le.Uint32(dib[32:])
	if bpp <= 8 && colors == 0 {
		colors = 1 << bpp
	}
	if bpp > 8 {
		colors = 0
	}

	if colors > 256 {
		return nil, fmt.Errorf("DIB color table too large: %d", colors)
	}
	offset := bmpFileHeaderSize + int(infoLen) + int(colors)*4
	if le.Uint32(dib[16:]) == 3 && infoLen == 40 {
		// BI_BITFIELDS 색 마스크
		offset += 12
	}

	// 디코더는 픽셀을 읽기 전에 버퍼를 할당하므로 크기를 먼저 확인한다
	width := int64(int32(le.Uint32(dib[4:])))
	height := int64(int32(le.Uint32(dib[8:])))
	if height < 0 {
		height = -height
	}
	if width <= 0 || height == 0 || bpp == 0 || bpp > 32 {
		return nil, fmt.Errorf("invalid DIB geometry %dx%d at %d bpp", width, height, bpp)
	}
	if width*height > maxDIBPixels {
		return nil, fmt.Errorf("DIB too large: %dx%d", width, height)
	}
	stride := (width*int64(bpp) + 31) / 32 * 4
	if avail := int64(len(dib) - (offset - bmpFileHeaderSize)); stride*height > avail {
		return nil, fmt.Errorf("DIB pixel data truncated: need %d bytes, have %d", stride*height, avail)
	}

	buf := make([]byte, bmpFileHeaderSize+len(dib))
	buf[0], buf[1] = 'B', 'M'
	le.PutUint32(buf[2:], uint32(len(buf)))
	le.PutUint32(buf[10:], uint32(offset))
	copy(buf[bmpFileHeaderSize:], dib)
	return buf, nil
}

// decodeDIB decodes a packed DIB as found in bitmap records.
func decodeDIB(dib []byte) (image.Image, error) {
	data, err := dibToBMP(dib)
	if err != nil {
		return nil, err
	}
	img, err := bmp.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode DIB: %w", err)
	}
	return img, nil
}

// cropImage returns the part of img inside the source rectangle. A negative
// width or height selects the mirrored part.
func cropImage(img image.Image, x, y, w, h int) image.Image {
	flipX, flipY := w < 0, h < 0
	r := image.Rect(x, y, x+abs(w), y+abs(h)).Add(img.Bounds().Min)
	r = r.Intersect(img.Bounds())
	if r.Empty() {
		return img
	}

	dst := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Copy(dst, image.Point{}, img, r, draw.Src, nil)
	return mirror(dst, flipX, flipY)
}

// mirror flips img in place.
func mirror(img *image.RGBA, flipX, flipY bool) *image.RGBA {
	b := img.Bounds()
	if flipX {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for l, r := b.Min.X, b.Max.X-1; l < r; l, r = l+1, r-1 {
				cl, cr := img.RGBAAt(l, y), img.RGBAAt(r, y)
				img.SetRGBA(l, y, cr)
				img.SetRGBA(r, y, cl)
			}
		}
	}
	if flipY {
		for t, u := b.Min.Y, b.Max.Y-1; t < u; t, u = t+1, u-1 {
			for x := b.Min.X; x < b.Max.X; x++ {
				ct, cu := img.RGBAAt(x, t), img.RGBAAt(x, u)
				img.SetRGBA(x, t, cu)
				img.SetRGBA(x, u, ct)
			}
		}
	}
	return img
}

// toRGBA copies img into a new RGBA image.
func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Copy(dst, image.Point{}, img, b, draw.Src, nil)
	return dst
}
