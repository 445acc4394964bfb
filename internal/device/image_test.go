package device

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
)

func TestCropRect(t *testing.T) {
	cases := []struct {
		name string
		w, h int
		want image.Rectangle
	}{
		{"already 4:3", 400, 300, image.Rect(0, 0, 400, 300)},
		{"too wide", 800, 300, image.Rect(200, 0, 600, 300)},
		{"too tall", 400, 600, image.Rect(0, 150, 400, 450)},
		{"square", 300, 300, image.Rect(0, 37, 300, 262)},
		{"tiny", 4, 3, image.Rect(0, 0, 4, 3)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := cropRect(tc.w, tc.h)
			if got != tc.want {
				t.Fatalf("cropRect(%d,%d) = %v, want %v", tc.w, tc.h, got, tc.want)
			}
			// The result must be 4:3 within integer rounding.
			if d := got.Dx()*aspectH - got.Dy()*aspectW; d < -aspectW || d > aspectW {
				t.Fatalf("crop %v is not 4:3", got)
			}
		})
	}
}

func writePNG(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), 100, 255})
		}
	}
	path := filepath.Join(t.TempDir(), "foto.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return path
}

func TestPrepareAssetProducesCroppedJPEG(t *testing.T) {
	path := writePNG(t, 160, 90)

	asset, err := prepareAsset(path)
	if err != nil {
		t.Fatalf("prepareAsset: %v", err)
	}
	if asset.URI != path {
		t.Fatalf("uri = %q", asset.URI)
	}
	raw, err := base64.StdEncoding.DecodeString(asset.Base64)
	if err != nil {
		t.Fatalf("payload is not valid base64: %v", err)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if format != "jpeg" {
		t.Fatalf("format = %q, want jpeg", format)
	}
	if cfg.Width != 120 || cfg.Height != 90 {
		t.Fatalf("result %dx%d, want 120x90", cfg.Width, cfg.Height)
	}
}

func TestGallerySourceEmptyPathIsCancelled(t *testing.T) {
	_, err := GallerySource{}.Acquire(context.Background())
	if err != ErrCancelled {
		t.Fatalf("err = %v, want ErrCancelled", err)
	}
}

func TestGalleryCapabilities(t *testing.T) {
	if got := (GallerySource{}).Capability(); got != CapMediaLibrary {
		t.Fatalf("gallery capability = %q", got)
	}
	if got := (CameraSource{}).Capability(); got != CapCamera {
		t.Fatalf("camera capability = %q", got)
	}
}

func TestPrepareAssetRejectsOversizedImage(t *testing.T) {
	// Random noise defeats JPEG compression, so even at quality 20 a large
	// enough frame re-encodes past the base64 acquisition ceiling.
	rng := rand.New(rand.NewSource(1))
	img := image.NewRGBA(image.Rect(0, 0, 4800, 3600))
	for i := range img.Pix {
		img.Pix[i] = uint8(rng.Intn(256))
	}

	path := filepath.Join(t.TempDir(), "ruido.jpg")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("encode: %v", err)
	}
	f.Close()

	if _, err := prepareAsset(path); !errors.Is(err, ErrOversizedAsset) {
		t.Fatalf("err = %v, want ErrOversizedAsset", err)
	}
}

func TestCameraSourceCapturesToFreshTempFile(t *testing.T) {
	// A source directory with a space checks that the capture path never
	// leaks into the shell string unquoted.
	dir := filepath.Join(t.TempDir(), "minhas fotos")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	src := writePNG(t, 40, 30)
	shot := filepath.Join(dir, "captura.png")
	data, err := os.ReadFile(src)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if err := os.WriteFile(shot, data, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cam := CameraSource{Command: fmt.Sprintf("cp %q", shot)}
	asset, err := cam.Acquire(context.Background())
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if asset.Base64 == "" {
		t.Fatal("empty capture")
	}
	if _, err := os.Stat(asset.URI); !os.IsNotExist(err) {
		t.Fatalf("capture temp file not cleaned up: %v", err)
	}
}

func TestCameraSourceWithoutCommand(t *testing.T) {
	if _, err := (CameraSource{}).Acquire(context.Background()); err == nil {
		t.Fatal("missing camera command accepted")
	}
}

func TestPrepareAssetRejectsNonImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nota.txt")
	if err := os.WriteFile(path, []byte("não é uma imagem"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := prepareAsset(path); err == nil {
		t.Fatal("non-image accepted")
	}
}
