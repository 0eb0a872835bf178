// Package pixels converts raw interleaved pixel buffers into the image type
// the caption engine consumes. The conversion is stateless and side-effect
// free; validation errors are typed so the boundary can report them
// synchronously.
package pixels

import (
	"image"
	"strconv"

	"visiond/pkg/types"
)

type invalidDimensionsError struct{ w, h, stride int }

func (e invalidDimensionsError) Error() string {
	return "invalid dimensions: width=" + strconv.Itoa(e.w) +
		" height=" + strconv.Itoa(e.h) + " stride=" + strconv.Itoa(e.stride)
}

func ErrInvalidDimensions(w, h, stride int) error {
	return invalidDimensionsError{w: w, h: h, stride: stride}
}

// IsInvalidDimensions reports whether err indicates non-positive or
// inconsistent width/height/stride.
func IsInvalidDimensions(err error) bool {
	_, ok := err.(invalidDimensionsError)
	return ok
}

type invalidPixelBufferError struct{ reason string }

func (e invalidPixelBufferError) Error() string { return "invalid pixel buffer: " + e.reason }

func ErrInvalidPixelBuffer(reason string) error { return invalidPixelBufferError{reason: reason} }

// IsInvalidPixelBuffer reports whether err indicates a nil or undersized buffer.
func IsInvalidPixelBuffer(err error) bool {
	_, ok := err.(invalidPixelBufferError)
	return ok
}

type unsupportedPixelFormatError struct{ tag int }

func (e unsupportedPixelFormatError) Error() string {
	return "unsupported pixel format: " + strconv.Itoa(e.tag)
}

func ErrUnsupportedPixelFormat(tag int) error { return unsupportedPixelFormatError{tag: tag} }

// IsUnsupportedPixelFormat reports whether err indicates an unrecognized format tag.
func IsUnsupportedPixelFormat(err error) bool {
	_, ok := err.(unsupportedPixelFormatError)
	return ok
}

type imageCreationFailedError struct{ reason string }

func (e imageCreationFailedError) Error() string { return "image creation failed: " + e.reason }

func ErrImageCreationFailed(reason string) error { return imageCreationFailedError{reason: reason} }

// IsImageCreationFailed reports whether err indicates the converted image
// could not be materialized.
func IsImageCreationFailed(err error) bool {
	_, ok := err.(imageCreationFailedError)
	return ok
}

const bytesPerPixel = 4

// Validate checks a frame's primitive inputs without touching pixel data.
func Validate(buf []byte, width, height, stride int, format types.PixelFormat) error {
	if width <= 0 || height <= 0 || stride <= 0 || stride < width*bytesPerPixel {
		return ErrInvalidDimensions(width, height, stride)
	}
	if !format.Known() {
		return ErrUnsupportedPixelFormat(int(format))
	}
	if buf == nil {
		return ErrInvalidPixelBuffer("nil buffer")
	}
	if len(buf) < stride*height {
		return ErrInvalidPixelBuffer("buffer shorter than stride*height")
	}
	return nil
}

// ToImage converts a validated frame into an RGBA image, swizzling BGRA input
// and flipping rows when the buffer is bottom-up.
func ToImage(buf []byte, width, height, stride int, format types.PixelFormat, flipVertical bool) (*image.RGBA, error) {
	if err := Validate(buf, width, height, stride, format); err != nil {
		return nil, err
	}
	if width > 1<<15 || height > 1<<15 {
		return nil, ErrImageCreationFailed("dimensions exceed supported range")
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	rowBytes := width * bytesPerPixel
	for y := 0; y < height; y++ {
		srcY := y
		if flipVertical {
			srcY = height - 1 - y
		}
		src := buf[srcY*stride : srcY*stride+rowBytes]
		dst := img.Pix[y*img.Stride : y*img.Stride+rowBytes]
		if format == types.PixelFormatRGBA32 {
			copy(dst, src)
			continue
		}
		// BGRA32: swap the blue and red channels per pixel.
		for x := 0; x < rowBytes; x += bytesPerPixel {
			dst[x+0] = src[x+2]
			dst[x+1] = src[x+1]
			dst[x+2] = src[x+0]
			dst[x+3] = src[x+3]
		}
	}
	return img, nil
}
