package clip_helper

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"image/png"

	_ "image/gif"
	_ "image/jpeg"
)

// biHeaderSize is the size of a BITMAPINFOHEADER (the v3 header CF_DIB uses).
const biHeaderSize = 40

const biRGB = 0

// DIBImage is a decoded image ready for the Windows clipboard: premultiplied
// BGRA pixels (top-down row order) alongside the canonical PNG encoding.
type DIBImage struct {
	BGRA   []byte // premultiplied, 4 bytes per pixel, rows top to bottom
	PNG    []byte
	Width  int
	Height int
}

// DecodeImage decodes PNG/JPEG/GIF bytes into a DIBImage. The PNG field is
// always the canonical re-encoding, so byte-identical input is not guaranteed
// but pixel-identical content always maps to the same PNG bytes.
func DecodeImage(data []byte) (*DIBImage, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return FromImage(img)
}

// FromImage converts any image.Image into a DIBImage.
func FromImage(img image.Image) (*DIBImage, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: empty image", ErrDecode)
	}

	bgra := make([]byte, w*h*4)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			// RGBA() already returns alpha-premultiplied 16-bit channels.
			r, g, bl, a := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			i := (y*w + x) * 4
			bgra[i+0] = byte(bl >> 8)
			bgra[i+1] = byte(g >> 8)
			bgra[i+2] = byte(r >> 8)
			bgra[i+3] = byte(a >> 8)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	return &DIBImage{BGRA: bgra, PNG: buf.Bytes(), Width: w, Height: h}, nil
}

// PremultiplyNRGBA converts straight-alpha RGBA bytes (as produced by browser
// canvases and data URLs) to premultiplied BGRA. A pixel with alpha 0 becomes
// all zeros.
func PremultiplyNRGBA(rgba []byte) []byte {
	out := make([]byte, len(rgba))
	for i := 0; i+3 < len(rgba); i += 4 {
		a := uint32(rgba[i+3])
		out[i+0] = byte(uint32(rgba[i+2]) * a / 255)
		out[i+1] = byte(uint32(rgba[i+1]) * a / 255)
		out[i+2] = byte(uint32(rgba[i+0]) * a / 255)
		out[i+3] = byte(a)
	}
	return out
}

// EncodeDIB renders the CF_DIB payload: a BITMAPINFOHEADER with negative
// biHeight (top-down), 32 bpp, BI_RGB, followed by the premultiplied BGRA
// rows exactly as held in the DIBImage.
func (d *DIBImage) EncodeDIB() []byte {
	buf := make([]byte, biHeaderSize+len(d.BGRA))
	le := binary.LittleEndian
	le.PutUint32(buf[0:], biHeaderSize)
	le.PutUint32(buf[4:], uint32(d.Width))
	le.PutUint32(buf[8:], uint32(-int32(d.Height)))
	le.PutUint16(buf[12:], 1)  // planes
	le.PutUint16(buf[14:], 32) // bit count
	le.PutUint32(buf[16:], biRGB)
	le.PutUint32(buf[20:], uint32(len(d.BGRA))) // biSizeImage
	copy(buf[biHeaderSize:], d.BGRA)
	return buf
}

// DecodeDIB parses a CF_DIB payload (32 or 24 bpp BI_RGB, either row order)
// back into a DIBImage. Alpha from 32 bpp sources is taken as premultiplied;
// a fully zero alpha channel is treated as opaque, which is how most Windows
// applications put screenshots on the clipboard.
func DecodeDIB(data []byte) (*DIBImage, error) {
	if len(data) < biHeaderSize {
		return nil, fmt.Errorf("%w: DIB header truncated", ErrDecode)
	}
	le := binary.LittleEndian
	hdrSize := int(le.Uint32(data[0:]))
	if hdrSize < biHeaderSize || hdrSize > len(data) {
		return nil, fmt.Errorf("%w: bad DIB header size %d", ErrDecode, hdrSize)
	}
	width := int(int32(le.Uint32(data[4:])))
	rawHeight := int(int32(le.Uint32(data[8:])))
	bpp := int(le.Uint16(data[14:]))
	compression := le.Uint32(data[16:])
	clrUsed := int(le.Uint32(data[32:]))

	if width <= 0 || rawHeight == 0 {
		return nil, fmt.Errorf("%w: bad DIB dimensions %dx%d", ErrDecode, width, rawHeight)
	}
	if compression != biRGB || (bpp != 32 && bpp != 24) {
		return nil, fmt.Errorf("%w: unsupported DIB (bpp=%d compression=%d)", ErrDecode, bpp, compression)
	}

	topDown := rawHeight < 0
	height := rawHeight
	if topDown {
		height = -rawHeight
	}

	pixels := data[hdrSize+clrUsed*4:]
	stride := ((width*bpp + 31) / 32) * 4
	if len(pixels) < stride*height {
		return nil, fmt.Errorf("%w: DIB pixel data truncated", ErrDecode)
	}

	hasAlpha := false
	if bpp == 32 {
		for y := 0; y < height && !hasAlpha; y++ {
			row := pixels[y*stride:]
			for x := 0; x < width; x++ {
				if row[x*4+3] != 0 {
					hasAlpha = true
					break
				}
			}
		}
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		srcY := y
		if !topDown {
			srcY = height - 1 - y
		}
		row := pixels[srcY*stride:]
		for x := 0; x < width; x++ {
			var c color.RGBA
			switch bpp {
			case 32:
				i := x * 4
				c = color.RGBA{R: row[i+2], G: row[i+1], B: row[i+0], A: row[i+3]}
				if !hasAlpha {
					c.A = 0xFF
				}
			case 24:
				i := x * 3
				c = color.RGBA{R: row[i+2], G: row[i+1], B: row[i+0], A: 0xFF}
			}
			img.SetRGBA(x, y, c)
		}
	}

	return FromImage(img)
}
