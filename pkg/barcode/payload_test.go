package barcode

import (
	"bytes"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleFields() Fields {
	return Fields{
		RefCode:          "INV-001",
		CreateDate:       "2024-03-15T10:30:00Z",
		SellerTaxID:      "0105551234567",
		BuyerTaxID:       "123",
		Subtotal:         250,
		TotalWithholding: 5,
		GrandTotal:       245,
	}
}

func TestPayloadFieldOrder(t *testing.T) {
	assert.Equal(t, "INV-001|20240315|0105551234567|123|250.00|5.00|245.00", Payload(sampleFields()))
}

func TestPayloadIsDeterministic(t *testing.T) {
	f := sampleFields()
	assert.Equal(t, Payload(f), Payload(f))
}

func TestPayloadSanitizesFields(t *testing.T) {
	f := sampleFields()
	f.RefCode = " INV|001\n"
	f.BuyerTaxID = "12\t3"

	got := Payload(f)
	parts := strings.Split(got, Delimiter)
	require.Len(t, parts, 7)
	assert.Equal(t, "INV/001", parts[0])
	assert.Equal(t, "12 3", parts[3])
}

func TestAmount(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.00"},
		{245, "245.00"},
		{1234.5, "1234.50"},
		{0.125, "0.13"},
		{-15, "-15.00"},
		{0.1 + 0.2, "0.30"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Amount(tt.in), "Amount(%v)", tt.in)
	}
}

func TestCompactDate(t *testing.T) {
	assert.Equal(t, "20240315", CompactDate("2024-03-15T10:30:00Z"))
	assert.Equal(t, "20240315", CompactDate("2024-03-15T23:30:00+07:00"))
	assert.Equal(t, "20240315", CompactDate("2024-03-15 08:00:00"))
	assert.Equal(t, "20240315", CompactDate("2024-03-15"))
	assert.Equal(t, "15/03/2567", CompactDate(" 15/03/2567 "))
	assert.Equal(t, "", CompactDate(""))
}

func TestRenderPNG(t *testing.T) {
	data, err := RenderPNG(Payload(sampleFields()), DefaultRenderOptions())
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Positive(t, img.Bounds().Dx())
	assert.Positive(t, img.Bounds().Dy())

	small, err := RenderPNG(Payload(sampleFields()), RenderOptions{Scale: 1, SecurityLevel: 2})
	require.NoError(t, err)
	smallImg, err := png.Decode(bytes.NewReader(small))
	require.NoError(t, err)
	assert.Equal(t, 2*smallImg.Bounds().Dx(), img.Bounds().Dx())
}

func TestRenderPNGIsEightBitGray(t *testing.T) {
	data, err := RenderPNG("INV-001|x", DefaultRenderOptions())
	require.NoError(t, err)

	// IHDR: 8-byte signature, length, type, width, height, then bit depth and color type
	require.Greater(t, len(data), 26)
	assert.Equal(t, "IHDR", string(data[12:16]))
	assert.Equal(t, byte(8), data[24], "bit depth")
	assert.Equal(t, byte(0), data[25], "color type")

	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, color.GrayModel, cfg.ColorModel)
}

func TestRenderPNGErrors(t *testing.T) {
	_, err := RenderPNG("", DefaultRenderOptions())
	require.Error(t, err)

	_, err = RenderPNG("x", RenderOptions{Scale: 2, SecurityLevel: 9})
	require.Error(t, err)
}
