package printer

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding"
)

// ESC/POS command constants
const (
	ESC = 0x1B
	GS  = 0x1D
	LF  = 0x0A
)

// Text alignment
const (
	AlignLeft   = 0
	AlignCenter = 1
	AlignRight  = 2
)

// Font size
const (
	FontNormal = 0x00
	FontDouble = 0x11 // Double width + double height
	FontWide   = 0x10 // Double width only
	FontTall   = 0x01 // Double height only
)

// pdf417MaxData is the largest payload a single GS ( k store command can carry.
const pdf417MaxData = 65535 - 3

// Document builds an ESC/POS byte stream for thermal printers.
type Document struct {
	buf   bytes.Buffer
	width int // print width in characters (default 32 for 58mm, 48 for 80mm)
	enc   *encoding.Encoder
}

// DocumentOption configures a Document.
type DocumentOption func(*Document)

// WithEncoding transcodes text (not commands) into the printer's code page,
// e.g. charmap.Windows874 for Thai. Unmappable runes become the code page's substitute byte.
func WithEncoding(e encoding.Encoding) DocumentOption {
	return func(d *Document) {
		if e != nil {
			d.enc = encoding.ReplaceUnsupported(e.NewEncoder())
		}
	}
}

// NewDocument creates a new ESC/POS document with the given character width.
// Common widths: 32 for 58mm paper, 48 for 80mm paper.
func NewDocument(charWidth int, opts ...DocumentOption) *Document {
	if charWidth <= 0 {
		charWidth = 32
	}
	d := &Document{width: charWidth}
	for _, opt := range opts {
		opt(d)
	}
	d.Init()
	return d
}

// Width returns the configured print width in characters.
func (d *Document) Width() int {
	return d.width
}

// Init sends the ESC @ (initialize printer) command.
func (d *Document) Init() *Document {
	d.buf.Write([]byte{ESC, '@'})
	return d
}

// SetCodePage selects a character code table with ESC t n.
func (d *Document) SetCodePage(n byte) *Document {
	d.buf.Write([]byte{ESC, 't', n})
	return d
}

// LineFeed sends a line feed.
func (d *Document) LineFeed() *Document {
	d.buf.WriteByte(LF)
	return d
}

// FeedLines sends n line feeds.
func (d *Document) FeedLines(n int) *Document {
	for i := 0; i < n; i++ {
		d.buf.WriteByte(LF)
	}
	return d
}

// SetAlign sets text alignment: AlignLeft, AlignCenter, AlignRight.
func (d *Document) SetAlign(align int) *Document {
	d.buf.Write([]byte{ESC, 'a', byte(align)})
	return d
}

// SetBold enables or disables bold text.
func (d *Document) SetBold(on bool) *Document {
	b := byte(0)
	if on {
		b = 1
	}
	d.buf.Write([]byte{ESC, 'E', b})
	return d
}

// SetFontSize sets the character size. Use FontNormal, FontDouble, FontWide, or FontTall.
func (d *Document) SetFontSize(size byte) *Document {
	d.buf.Write([]byte{GS, '!', size})
	return d
}

// Text writes a line of text followed by a line feed.
func (d *Document) Text(s string) *Document {
	d.writeText(s)
	d.buf.WriteByte(LF)
	return d
}

// TextF writes a formatted line of text followed by a line feed.
func (d *Document) TextF(format string, args ...any) *Document {
	return d.Text(fmt.Sprintf(format, args...))
}

// Separator prints a full-width separator line (e.g. "--------------------------------").
func (d *Document) Separator(char byte) *Document {
	d.buf.WriteString(strings.Repeat(string(char), d.width))
	d.buf.WriteByte(LF)
	return d
}

// KeyValue prints a left-aligned key and right-aligned value on the same line.
// Example: "Subtotal           $100.00"
func (d *Document) KeyValue(key, value string) *Document {
	return d.Text(d.pad(key, value))
}

// ItemLine prints a receipt item line: qty x name, then right-aligned total.
// qty and total arrive already formatted for the receipt locale.
// Example: "2x Widget              20.00"
func (d *Document) ItemLine(qty, name, total string) *Document {
	prefix := qty + "x " + name
	return d.Text(d.pad(prefix, total))
}

// PDF417 prints data as a PDF417 symbol using the printer's native 2D code
// support (GS ( k, cn=48). moduleWidth is 2-8 dots, rowHeight 2-8 times the
// module width, and level an error correction level 0-8.
func (d *Document) PDF417(data []byte, moduleWidth, rowHeight, level byte) (*Document, error) {
	if len(data) == 0 {
		return d, fmt.Errorf("printer: empty PDF417 data")
	}
	if len(data) > pdf417MaxData {
		return d, fmt.Errorf("printer: PDF417 data too long (%d bytes)", len(data))
	}
	moduleWidth = clamp(moduleWidth, 2, 8)
	rowHeight = clamp(rowHeight, 2, 8)
	level = clamp(level, 0, 8)

	// columns/rows: automatic
	d.pdf417Fn(65, 0)
	d.pdf417Fn(66, 0)
	d.pdf417Fn(67, moduleWidth)
	d.pdf417Fn(68, rowHeight)
	// error correction by level (m=48, n=48+level)
	d.buf.Write([]byte{GS, '(', 'k', 4, 0, 48, 69, 48, 48 + level})

	n := len(data) + 3
	d.buf.Write([]byte{GS, '(', 'k', byte(n % 256), byte(n / 256), 48, 80, 48})
	d.buf.Write(data)

	// print stored symbol
	d.pdf417Fn(81, 48)
	return d, nil
}

func (d *Document) pdf417Fn(fn, arg byte) {
	d.buf.Write([]byte{GS, '(', 'k', 3, 0, 48, fn, arg})
}

// Cut sends the paper cut command (full cut).
func (d *Document) Cut() *Document {
	d.buf.Write([]byte{GS, 'V', 0x00})
	return d
}

// PartialCut sends the partial cut command.
func (d *Document) PartialCut() *Document {
	d.buf.Write([]byte{GS, 'V', 0x01})
	return d
}

// Bytes returns the accumulated ESC/POS byte stream.
func (d *Document) Bytes() []byte {
	return d.buf.Bytes()
}

// Reset clears the buffer and reinitializes the document.
func (d *Document) Reset() *Document {
	d.buf.Reset()
	d.Init()
	return d
}

func (d *Document) writeText(s string) {
	if d.enc == nil {
		d.buf.WriteString(s)
		return
	}
	out, err := d.enc.String(s)
	if err != nil {
		d.buf.WriteString(s)
		return
	}
	d.buf.WriteString(out)
}

func (d *Document) pad(left, right string) string {
	spaces := d.width - DisplayWidth(left) - DisplayWidth(right)
	if spaces < 1 {
		spaces = 1
	}
	return left + strings.Repeat(" ", spaces) + right
}

// DisplayWidth counts printed cells: combining marks (Thai vowels and tone
// marks above/below the line) take no cell of their own.
func DisplayWidth(s string) int {
	n := 0
	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		s = s[size:]
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		n++
	}
	return n
}

func clamp(v, lo, hi byte) byte {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
