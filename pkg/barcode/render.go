package barcode

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/pdf417"
)

// RenderOptions controls rasterization.
type RenderOptions struct {
	// Scale is the pixel size of one module (default 2).
	Scale int
	// SecurityLevel is the PDF417 error correction level, 0-8 (default 2).
	SecurityLevel byte
}

// DefaultRenderOptions matches the thermal receipt layout.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{Scale: 2, SecurityLevel: 2}
}

// RenderPNG encodes payload as a PDF417 symbol and returns PNG bytes.
func RenderPNG(payload string, opts RenderOptions) ([]byte, error) {
	if payload == "" {
		return nil, errors.New("barcode: empty payload")
	}
	if opts.Scale <= 0 {
		opts.Scale = 2
	}
	if opts.SecurityLevel > 8 {
		return nil, fmt.Errorf("barcode: security level %d out of range 0-8", opts.SecurityLevel)
	}

	code, err := pdf417.Encode(payload, opts.SecurityLevel)
	if err != nil {
		return nil, fmt.Errorf("barcode: encode pdf417: %w", err)
	}

	b := code.Bounds()
	scaled, err := barcode.Scale(code, b.Dx()*opts.Scale, b.Dy()*opts.Scale)
	if err != nil {
		return nil, fmt.Errorf("barcode: scale: %w", err)
	}

	// pdf417 yields 16-bit gray, which PDF writers reject; keep 8 bits
	gray := image.NewGray(scaled.Bounds())
	draw.Draw(gray, gray.Bounds(), scaled, scaled.Bounds().Min, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, gray); err != nil {
		return nil, fmt.Errorf("barcode: encode png: %w", err)
	}
	return buf.Bytes(), nil
}
