// Package schema turns loosely typed lookup responses into canonical receipts.
//
// The remote store is spreadsheet backed and loses the text/number distinction,
// so identifier, text and timestamp fields are accepted as either JSON strings
// or JSON numbers and normalized to text. Monetary and id fields must be numbers.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/sangkips/receipt-viewer/internal/domain/entity"
	"github.com/sangkips/receipt-viewer/pkg/apperror"
)

// ValidationError lists every field that violated the expected shape.
type ValidationError struct {
	Fields []apperror.FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "invalid receipt payload: " + strings.Join(parts, "; ")
}

// DecodeEnvelope parses a response body into a LookupEnvelope.
func DecodeEnvelope(body []byte) (*entity.LookupEnvelope, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, &ValidationError{Fields: []apperror.FieldError{
			{Field: "$", Message: "invalid JSON: " + err.Error()},
		}}
	}

	w := &walker{}
	obj, ok := raw.(map[string]any)
	if !ok {
		w.fail("$", "expected object")
		return nil, w.err()
	}

	env := &entity.LookupEnvelope{
		OK:    w.boolean(obj, "ok", "ok"),
		Error: w.optionalString(obj, "error", "error"),
	}
	if data, present := obj["data"]; present && data != nil {
		env.Data = w.receipt(data, "data")
	}

	if err := w.err(); err != nil {
		return nil, err
	}
	return env, nil
}

// decodeReceipt validates an already-decoded receipt value ({info, items}),
// reporting paths from "$". Numbers inside raw must be json.Number or float64.
func decodeReceipt(raw any) (*entity.Receipt, error) {
	w := &walker{}
	r := w.receipt(raw, "$")
	if err := w.err(); err != nil {
		return nil, err
	}
	return r, nil
}

type walker struct {
	errs []apperror.FieldError
}

func (w *walker) fail(path, msg string) {
	w.errs = append(w.errs, apperror.FieldError{Field: path, Message: msg})
}

func (w *walker) err() error {
	if len(w.errs) == 0 {
		return nil
	}
	return &ValidationError{Fields: w.errs}
}

func (w *walker) receipt(raw any, path string) *entity.Receipt {
	obj, ok := raw.(map[string]any)
	if !ok {
		w.fail(path, "expected object")
		return nil
	}

	r := &entity.Receipt{}

	infoPath := join(path, "info")
	if info, ok := obj["info"].(map[string]any); ok {
		r.Info = w.header(info, infoPath)
	} else if _, present := obj["info"]; !present {
		w.fail(infoPath, "is required")
	} else {
		w.fail(infoPath, "expected object")
	}

	itemsPath := join(path, "items")
	rawItems, present := obj["items"]
	list, ok := rawItems.([]any)
	switch {
	case !present:
		w.fail(itemsPath, "is required")
	case !ok:
		w.fail(itemsPath, "expected array")
	default:
		r.Items = make([]entity.ReceiptLineItem, 0, len(list))
		for i, el := range list {
			elPath := fmt.Sprintf("%s[%d]", itemsPath, i)
			item, ok := el.(map[string]any)
			if !ok {
				w.fail(elPath, "expected object")
				continue
			}
			r.Items = append(r.Items, w.item(item, elPath))
		}
	}

	return r
}

func (w *walker) header(obj map[string]any, path string) entity.ReceiptHeader {
	return entity.ReceiptHeader{
		ID:              w.number(obj, "ID", path),
		NameSeller:      w.text(obj, "NameSeller", path),
		SellerAddress:   w.text(obj, "SellerAddress", path),
		SellerTaxID:     w.text(obj, "SellerTaxId", path),
		BuyerName:       w.text(obj, "BuyerName", path),
		BuyerAddress:    w.text(obj, "BuyerAddress", path),
		BuyerTaxID:      w.text(obj, "BuyerTaxId", path),
		BuyerOrgType:    w.text(obj, "BuyerOrgType", path),
		RefCodeInfoItem: w.text(obj, "RefCodeInfoItem", path),
		CreateDate:      w.text(obj, "CreateDate", path),
		UpdateDate:      w.text(obj, "UpdateDate", path),
		RecordID:        w.text(obj, "RecordId", path),
	}
}

func (w *walker) item(obj map[string]any, path string) entity.ReceiptLineItem {
	return entity.ReceiptLineItem{
		ID:              w.number(obj, "ID", path),
		RefCodeInfoItem: w.text(obj, "RefCodeInfoItem", path),
		Item:            w.text(obj, "Item", path),
		Amount:          w.number(obj, "Amount", path),
		Price:           w.number(obj, "Price", path),
		WithholdingTax:  w.numberOrZero(obj, "WithholdingTax", path),
	}
}

// text accepts a string or a number; numbers become their decimal text.
func (w *walker) text(obj map[string]any, key, path string) string {
	p := join(path, key)
	v, present := obj[key]
	if !present || v == nil {
		w.fail(p, "is required")
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return numberText(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		w.fail(p, "expected string or number")
		return ""
	}
}

func (w *walker) number(obj map[string]any, key, path string) float64 {
	p := join(path, key)
	v, present := obj[key]
	if !present || v == nil {
		w.fail(p, "is required")
		return 0
	}
	return w.toNumber(v, p)
}

func (w *walker) numberOrZero(obj map[string]any, key, path string) float64 {
	v, present := obj[key]
	if !present || v == nil {
		return 0
	}
	return w.toNumber(v, join(path, key))
}

func (w *walker) toNumber(v any, path string) float64 {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			w.fail(path, "number out of range")
			return 0
		}
		return f
	case float64:
		return t
	case string:
		w.fail(path, "expected number, got string")
	default:
		w.fail(path, "expected number")
	}
	return 0
}

func (w *walker) boolean(obj map[string]any, key, path string) bool {
	v, present := obj[key]
	if !present {
		w.fail(path, "is required")
		return false
	}
	b, ok := v.(bool)
	if !ok {
		w.fail(path, "expected boolean")
	}
	return b
}

func (w *walker) optionalString(obj map[string]any, key, path string) string {
	v, present := obj[key]
	if !present || v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		w.fail(path, "expected string")
	}
	return s
}

// numberText keeps integer literals verbatim so long tax ids never pass
// through float64, and renders anything else in shortest decimal form.
func numberText(n json.Number) string {
	s := n.String()
	if isIntegerLiteral(s) {
		return s
	}
	f, err := n.Float64()
	if err != nil {
		return s
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func isIntegerLiteral(s string) bool {
	s = strings.TrimPrefix(s, "-")
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func join(path, key string) string {
	if path == "" || path == "$" {
		return key
	}
	return path + "." + key
}
