package ioutils

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 40, B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestImageService_ResizeImage(t *testing.T) {
	svc := NewImageService()

	out, err := svc.ResizeImage(context.Background(), pngBytes(t, 300, 200), 150, 150)
	if err != nil {
		t.Fatalf("ResizeImage() error = %v", err)
	}

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("output is not JPEG: %v", err)
	}
	if cfg.Width != 150 || cfg.Height != 100 {
		t.Errorf("ResizeImage() = %dx%d, want 150x100", cfg.Width, cfg.Height)
	}
}

func TestImageService_ConvertFileToJPEG(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "01-Song.png")
	dst := filepath.Join(dir, "01-Song.jpg")
	if err := os.WriteFile(src, pngBytes(t, 10, 10), 0644); err != nil {
		t.Fatal(err)
	}

	if err := NewImageService().ConvertFileToJPEG(context.Background(), src, dst); err != nil {
		t.Fatalf("ConvertFileToJPEG() error = %v", err)
	}

	if FileExists(src) {
		t.Error("source image should be removed")
	}
	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := jpeg.DecodeConfig(bytes.NewReader(data)); err != nil {
		t.Errorf("converted file is not JPEG: %v", err)
	}
}
