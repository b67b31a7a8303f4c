package platform

import (
	"encoding/binary"
	"math/bits"
)

// BytesPerPixel is the storage size of one pixel in every image surface.
const BytesPerPixel = 4

// PixelFormat converts 0x00RRGGBB colors to and from a TrueColor visual's pixels.
type PixelFormat struct {
	RedMask   uint32
	GreenMask uint32
	BlueMask  uint32
	// BigEndian is the server image byte order (MSBFirst).
	BigEndian bool
}

// DefaultPixelFormat is the common 24-bit little-endian TrueColor layout.
var DefaultPixelFormat = PixelFormat{
	RedMask:   0x00FF0000,
	GreenMask: 0x0000FF00,
	BlueMask:  0x000000FF,
}

// Encode converts a 0x00RRGGBB color to a pixel value. The top byte is ignored.
func (f PixelFormat) Encode(color uint32) uint32 {
	r := (color >> 16) & 0xFF
	g := (color >> 8) & 0xFF
	b := color & 0xFF
	return encodeChannel(r, f.RedMask) | encodeChannel(g, f.GreenMask) | encodeChannel(b, f.BlueMask)
}

// Decode converts a pixel value back to 0x00RRGGBB.
func (f PixelFormat) Decode(pixel uint32) uint32 {
	r := decodeChannel(pixel, f.RedMask)
	g := decodeChannel(pixel, f.GreenMask)
	b := decodeChannel(pixel, f.BlueMask)
	return r<<16 | g<<8 | b
}

// ByteOrder returns the byte order pixels are stored in.
func (f PixelFormat) ByteOrder() binary.ByteOrder {
	if f.BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// encodeChannel scales an 8-bit channel value into mask.
func encodeChannel(v, mask uint32) uint32 {
	if mask == 0 {
		return 0
	}
	shift := bits.TrailingZeros32(mask)
	width := bits.OnesCount32(mask)
	if width >= 8 {
		return (v << (width - 8) << shift) & mask
	}
	return (v >> (8 - width) << shift) & mask
}

func decodeChannel(pixel, mask uint32) uint32 {
	if mask == 0 {
		return 0
	}
	shift := bits.TrailingZeros32(mask)
	width := bits.OnesCount32(mask)
	v := (pixel & mask) >> shift
	if width >= 8 {
		return v >> (width - 8)
	}
	// Replicate high bits so full intensity stays 0xFF.
	v <<= 8 - width
	for filled := width; filled < 8; filled *= 2 {
		v |= v >> filled
	}
	return v
}
