package pixels

import (
	"image/color"
	"testing"

	"visiond/pkg/types"
)

func frame(width, height, stride int, fill func(x, y int) [4]byte) []byte {
	buf := make([]byte, stride*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			px := fill(x, y)
			copy(buf[y*stride+x*4:], px[:])
		}
	}
	return buf
}

func TestValidateErrors(t *testing.T) {
	good := make([]byte, 2*2*4)
	cases := []struct {
		name   string
		buf    []byte
		w, h   int
		stride int
		format types.PixelFormat
		check  func(error) bool
	}{
		{"zero width", good, 0, 2, 8, types.PixelFormatRGBA32, IsInvalidDimensions},
		{"negative height", good, 2, -1, 8, types.PixelFormatRGBA32, IsInvalidDimensions},
		{"stride too small", good, 2, 2, 7, types.PixelFormatRGBA32, IsInvalidDimensions},
		{"unknown format", good, 2, 2, 8, types.PixelFormat(99), IsUnsupportedPixelFormat},
		{"nil buffer", nil, 2, 2, 8, types.PixelFormatRGBA32, IsInvalidPixelBuffer},
		{"short buffer", good[:7], 2, 2, 8, types.PixelFormatRGBA32, IsInvalidPixelBuffer},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.buf, tc.w, tc.h, tc.stride, tc.format)
			if err == nil || !tc.check(err) {
				t.Fatalf("unexpected error %v", err)
			}
		})
	}
}

func TestToImageRGBAPassthrough(t *testing.T) {
	buf := frame(2, 2, 8, func(x, y int) [4]byte {
		return [4]byte{byte(x), byte(y), 100, 255}
	})
	img, err := ToImage(buf, 2, 2, 8, types.PixelFormatRGBA32, false)
	if err != nil {
		t.Fatalf("toImage: %v", err)
	}
	got := img.RGBAAt(1, 0)
	want := color.RGBA{R: 1, G: 0, B: 100, A: 255}
	if got != want {
		t.Fatalf("pixel (1,0) = %v, want %v", got, want)
	}
}

func TestToImageBGRASwizzle(t *testing.T) {
	// One pixel: B=10 G=20 R=30 A=40 on the wire.
	buf := []byte{10, 20, 30, 40}
	img, err := ToImage(buf, 1, 1, 4, types.PixelFormatBGRA32, false)
	if err != nil {
		t.Fatalf("toImage: %v", err)
	}
	got := img.RGBAAt(0, 0)
	want := color.RGBA{R: 30, G: 20, B: 10, A: 40}
	if got != want {
		t.Fatalf("pixel = %v, want %v", got, want)
	}
}

func TestToImageFlipVertical(t *testing.T) {
	buf := frame(1, 3, 4, func(x, y int) [4]byte {
		return [4]byte{byte(y), 0, 0, 255}
	})
	img, err := ToImage(buf, 1, 3, 4, types.PixelFormatRGBA32, true)
	if err != nil {
		t.Fatalf("toImage: %v", err)
	}
	for y := 0; y < 3; y++ {
		if got := img.RGBAAt(0, y).R; got != byte(2-y) {
			t.Fatalf("row %d has R=%d, want %d", y, got, 2-y)
		}
	}
}

func TestToImageStridePadding(t *testing.T) {
	// stride carries 4 padding bytes per row that must be skipped.
	const stride = 2*4 + 4
	buf := frame(2, 2, stride, func(x, y int) [4]byte {
		return [4]byte{byte(10*y + x), 0, 0, 255}
	})
	img, err := ToImage(buf, 2, 2, stride, types.PixelFormatRGBA32, false)
	if err != nil {
		t.Fatalf("toImage: %v", err)
	}
	if got := img.RGBAAt(1, 1).R; got != 11 {
		t.Fatalf("pixel (1,1) R=%d, want 11", got)
	}
}

func TestToImageRejectsHugeDimensions(t *testing.T) {
	w := 1<<15 + 1
	_, err := ToImage(make([]byte, w*4), w, 1, w*4, types.PixelFormatRGBA32, false)
	if err == nil || !IsImageCreationFailed(err) {
		t.Fatalf("expected image creation failure, got %v", err)
	}
}
