// Package assets decodes image files into tightly packed RGBA8 pixels ready
// for texture upload.
package assets

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/png"
	"io"
	"os"

	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// ErrUnsupportedFormat is returned when a file is not a png, bmp or webp image.
var ErrUnsupportedFormat = errors.New("assets: unsupported image format")

var decodable = map[string]bool{"png": true, "bmp": true, "webp": true}

// Image is a decoded RGBA8 image, row-major, stride 4*W, top row first.
type Image struct {
	W, H   int
	Format string // decoder name: "png", "bmp" or "webp"
	Pix    []byte
}

// LoadImage reads the image at path. The format is sniffed from the file
// header, not the extension.
func LoadImage(path string) (*Image, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", path, err)
	}
	kind, err := filetype.Match(b)
	if err != nil {
		return nil, fmt.Errorf("sniff %q: %w", path, err)
	}
	if !decodable[kind.Extension] {
		return nil, fmt.Errorf("load %q (%s): %w", path, kind.MIME.Value, ErrUnsupportedFormat)
	}

	img, err := DecodeImage(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("decode %q: %w", path, err)
	}
	return img, nil
}

// DecodeImage decodes any registered format from r.
func DecodeImage(r io.Reader) (*Image, error) {
	src, format, err := image.Decode(r)
	if err != nil {
		return nil, err
	}
	rgba := imageToRGBA(src)
	w, h := rgba.Bounds().Dx(), rgba.Bounds().Dy()

	// Repack in tight rows (stride == 4*w)
	out := make([]byte, w*h*4)
	for y := 0; y < h; y++ {
		row := rgba.Pix[y*rgba.Stride : y*rgba.Stride+w*4]
		copy(out[y*w*4:(y+1)*w*4], row)
	}
	return &Image{W: w, H: h, Format: format, Pix: out}, nil
}

// FlipVertical reverses the row order in place, for backends whose texture
// origin is bottom-left.
func (img *Image) FlipVertical() {
	stride := img.W * 4
	tmp := make([]byte, stride)
	for top, bot := 0, img.H-1; top < bot; top, bot = top+1, bot-1 {
		a := img.Pix[top*stride : (top+1)*stride]
		b := img.Pix[bot*stride : (bot+1)*stride]
		copy(tmp, a)
		copy(a, b)
		copy(b, tmp)
	}
}

func imageToRGBA(img image.Image) *image.RGBA {
	if m, ok := img.(*image.RGBA); ok && m.Rect.Min == (image.Point{}) {
		return m
	}
	dst := image.NewRGBA(image.Rect(0, 0, img.Bounds().Dx(), img.Bounds().Dy()))
	draw.Draw(dst, dst.Bounds(), img, img.Bounds().Min, draw.Src)
	return dst
}
