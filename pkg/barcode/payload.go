// Package barcode builds the verification payload printed on receipts and
// rasterizes it as a PDF417 symbol.
package barcode

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Delimiter separates payload fields.
const Delimiter = "|"

// dateLayouts are tried in order when compacting CreateDate.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Fields are the receipt values summarized in the symbol.
type Fields struct {
	RefCode          string
	CreateDate       string
	SellerTaxID      string
	BuyerTaxID       string
	Subtotal         float64
	TotalWithholding float64
	GrandTotal       float64
}

// Payload joins, in fixed order: reference code, create date (YYYYMMDD),
// seller tax id, buyer tax id, subtotal, total withholding and grand total.
// Equal fields always yield the same bytes.
func Payload(f Fields) string {
	fields := []string{
		f.RefCode,
		CompactDate(f.CreateDate),
		f.SellerTaxID,
		f.BuyerTaxID,
		Amount(f.Subtotal),
		Amount(f.TotalWithholding),
		Amount(f.GrandTotal),
	}
	for i, v := range fields {
		fields[i] = sanitize(v)
	}
	return strings.Join(fields, Delimiter)
}

// Amount renders a value with exactly two decimals, rounding half away from zero.
func Amount(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// CompactDate renders a parseable timestamp as YYYYMMDD in its own offset and
// returns anything else trimmed but otherwise unchanged.
func CompactDate(s string) string {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("20060102")
		}
	}
	return s
}

// sanitize keeps field boundaries unambiguous.
func sanitize(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, Delimiter, "/")
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == '\t' {
			return ' '
		}
		return r
	}, s)
}
