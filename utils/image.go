package utils

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/xfmoulet/qoi"
	"golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
)

// ReadImage decodes a PNG, JPEG, GIF, BMP or QOI file.
func ReadImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// SaveImage encodes img by the file extension: .bmp, .qoi, anything else is
// PNG.
func SaveImage(img image.Image, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".bmp":
		err = bmp.Encode(f, img)
	case ".qoi":
		err = qoi.Encode(f, img)
	default:
		err = png.Encode(f, img)
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", filename, err)
	}
	return f.Close()
}

// FitSize scales size so that its longer side equals maxSide, keeping the
// aspect ratio. The shorter side is truncated but never below 1.
func FitSize(size image.Point, maxSide int) image.Point {
	if size.X <= 0 || size.Y <= 0 || maxSide <= 0 {
		return size
	}
	if size.X >= size.Y {
		return image.Pt(maxSide, max(1, int(float64(size.Y)/float64(size.X)*float64(maxSide))))
	}
	return image.Pt(max(1, int(float64(size.X)/float64(size.Y)*float64(maxSide))), maxSide)
}

// Resize resamples img to FitSize(img size, maxSide) with a Catmull-Rom
// kernel.
func Resize(img image.Image, maxSide int) *image.NRGBA {
	b := img.Bounds()
	size := FitSize(b.Size(), maxSide)
	dst := image.NewNRGBA(image.Rectangle{Max: size})
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}
