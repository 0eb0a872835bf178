package types

// PixelFormat tags the raw byte layout of a submitted pixel buffer.
// The numeric values are part of the boundary contract and must not change.
type PixelFormat int

const (
	PixelFormatRGBA32 PixelFormat = 0
	PixelFormatBGRA32 PixelFormat = 1
)

// Known reports whether f is a recognized pixel format tag.
func (f PixelFormat) Known() bool {
	return f == PixelFormatRGBA32 || f == PixelFormatBGRA32
}

func (f PixelFormat) String() string {
	switch f {
	case PixelFormatRGBA32:
		return "rgba32"
	case PixelFormatBGRA32:
		return "bgra32"
	default:
		return "unknown"
	}
}
