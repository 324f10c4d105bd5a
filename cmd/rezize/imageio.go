package main

import (
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	"image/png"
	"os"

	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WebP decoder

	"github.com/gogpu/resample"
	"github.com/gogpu/resample/worker"
)

// loadImage decodes a file into non-premultiplied RGBA8.
func loadImage(path string) (worker.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return worker.Image{}, err
	}
	defer f.Close()

	src, format, err := image.Decode(f)
	if err != nil {
		return worker.Image{}, fmt.Errorf("decode: %w", err)
	}
	nrgba := toNRGBA(src)
	b := nrgba.Bounds()
	img := worker.NewImage(nrgba.Pix, b.Dx(), b.Dy())
	if err := img.Validate("src"); err != nil {
		return worker.Image{}, err
	}
	resample.Logger().Debug("rezize: decoded", "file", path, "format", format, "size", [2]int{b.Dx(), b.Dy()})
	return img, nil
}

// toNRGBA returns src as a tightly packed *image.NRGBA at the origin.
func toNRGBA(src image.Image) *image.NRGBA {
	b := src.Bounds()
	if n, ok := src.(*image.NRGBA); ok && b.Min == (image.Point{}) && n.Stride == b.Dx()*4 {
		return n
	}
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

// savePNG writes img as a PNG file.
func savePNG(path string, img worker.Image) error {
	if err := img.Validate("result"); err != nil {
		return err
	}
	out := &image.NRGBA{
		Pix:    img.Data,
		Stride: img.Width * 4,
		Rect:   image.Rect(0, 0, img.Width, img.Height),
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, out); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// fitSize resolves the target size. A zero side follows the aspect ratio
// of the source and is at least 1.
func fitSize(srcW, srcH, w, h int) worker.Size {
	switch {
	case w > 0 && h > 0:
	case w > 0:
		h = max(1, (srcH*w+srcW/2)/srcW)
	case h > 0:
		w = max(1, (srcW*h+srcH/2)/srcH)
	default:
		w, h = srcW, srcH
	}
	return worker.Size{Width: w, Height: h}
}
