package device

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"os"
	"os/exec"

	"fujao/internal/model"
)

// MaxAssetBase64Len caps how large an acquired photo may be, measured on its
// base64 encoding. Larger assets are rejected, never truncated.
const MaxAssetBase64Len = 1_000_000

// jpegQuality matches the aggressive compression the capture flow always
// applied (quality 0.2).
const jpegQuality = 20

// Photos are normalized to 4:3 by center-cropping before encoding.
const (
	aspectW = 4
	aspectH = 3
)

// ErrOversizedAsset means the encoded photo exceeded MaxAssetBase64Len; the
// user must pick a smaller image.
var ErrOversizedAsset = errors.New("a imagem selecionada é muito grande; escolha uma imagem menor")

// ErrCancelled means the user backed out of the capture or pick flow.
var ErrCancelled = errors.New("seleção de imagem cancelada")

// ImageSource produces a photo attachment. Each source is tied to the
// capability that gates it.
type ImageSource interface {
	Capability() Capability
	Acquire(ctx context.Context) (*model.ImageAsset, error)
}

// GallerySource reads an existing picture from disk, the CLI stand-in for the
// media-library picker.
type GallerySource struct {
	Path string
}

func (g GallerySource) Capability() Capability { return CapMediaLibrary }

func (g GallerySource) Acquire(ctx context.Context) (*model.ImageAsset, error) {
	if g.Path == "" {
		return nil, ErrCancelled
	}
	return prepareAsset(g.Path)
}

// CameraSource runs a configured capture command which must write a picture
// to the path it is given as its final argument.
type CameraSource struct {
	Command string
}

func (c CameraSource) Capability() Capability { return CapCamera }

func (c CameraSource) Acquire(ctx context.Context) (*model.ImageAsset, error) {
	if c.Command == "" {
		return nil, fmt.Errorf("nenhum comando de câmera configurado")
	}
	f, err := os.CreateTemp("", "fujao-captura-*.jpg")
	if err != nil {
		return nil, fmt.Errorf("criar arquivo de captura: %w", err)
	}
	out := f.Name()
	f.Close()
	defer os.Remove(out)

	// The capture path travels as $0 so spaces in it never hit the shell
	// string, and each call gets its own file.
	cmd := exec.CommandContext(ctx, "sh", "-c", c.Command+` "$0"`, out)
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("capturar foto: %w", err)
	}
	return prepareAsset(out)
}

// prepareAsset loads a picture, center-crops it to 4:3, re-encodes it as an
// aggressively compressed JPEG and base64-encodes the result. Oversized
// results are rejected whole.
func prepareAsset(path string) (*model.ImageAsset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("abrir imagem: %w", err)
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decodificar imagem: %w", err)
	}

	cropped := centerCrop(src)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, cropped, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("comprimir imagem: %w", err)
	}

	encoded := base64.StdEncoding.EncodeToString(buf.Bytes())
	if len(encoded) > MaxAssetBase64Len {
		return nil, ErrOversizedAsset
	}
	return &model.ImageAsset{URI: path, Base64: encoded}, nil
}

// centerCrop trims the image to a 4:3 window around its center.
func centerCrop(src image.Image) image.Image {
	b := src.Bounds()
	r := cropRect(b.Dx(), b.Dy())
	r = r.Add(b.Min)

	type subImager interface {
		SubImage(image.Rectangle) image.Image
	}
	if s, ok := src.(subImager); ok {
		return s.SubImage(r)
	}
	out := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	for y := 0; y < r.Dy(); y++ {
		for x := 0; x < r.Dx(); x++ {
			out.Set(x, y, src.At(r.Min.X+x, r.Min.Y+y))
		}
	}
	return out
}

// cropRect computes the largest centered 4:3 rectangle inside a w×h image.
func cropRect(w, h int) image.Rectangle {
	cw, ch := w, h
	if w*aspectH > h*aspectW {
		cw = h * aspectW / aspectH
	} else {
		ch = w * aspectH / aspectW
	}
	x0 := (w - cw) / 2
	y0 := (h - ch) / 2
	return image.Rect(x0, y0, x0+cw, y0+ch)
}
