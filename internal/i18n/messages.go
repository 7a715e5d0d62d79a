// Package i18n holds the user-facing strings of the receipt screens in Thai
// and English.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys.
const (
	LabelTaxID        = "label.tax_id"
	LabelNumber       = "label.number"
	LabelDate         = "label.date"
	LabelCustomer     = "label.customer"
	LabelOrgType      = "label.org_type"
	LabelItems        = "label.items"
	LabelQty          = "label.qty"
	LabelPrice        = "label.price"
	LabelWithholding  = "label.withholding"
	LabelSubtotal     = "label.subtotal"
	LabelGrandTotal   = "label.grand_total"
	LabelCurrency     = "label.currency"
	LabelThanks       = "label.thanks"
	LabelLastUpdated  = "label.last_updated"
	LabelReceiptTitle = "label.receipt_title"

	ErrConnection   = "error.connection"
	ErrMalformed    = "error.malformed"
	ErrRemote       = "error.remote"
	ErrNotFound     = "error.not_found"
	ErrEmptyRefCode = "error.empty_ref_code"
	ErrPrint        = "error.print"
	ErrRender       = "error.render"
	ErrUnknown      = "error.unknown"
)

var supported = []language.Tag{language.Thai, language.English}

var entries = map[string][2]string{ // key -> {th, en}
	LabelTaxID:        {"เลขประจำตัวผู้เสียภาษี", "Tax ID"},
	LabelNumber:       {"เลขที่", "No."},
	LabelDate:         {"วันที่", "Date"},
	LabelCustomer:     {"ลูกค้า", "Customer"},
	LabelOrgType:      {"ประเภท", "Type"},
	LabelItems:        {"รายการ", "Item"},
	LabelQty:          {"จน.", "Qty"},
	LabelPrice:        {"ราคา", "Price"},
	LabelWithholding:  {"หัก ณ ที่จ่าย", "Withholding tax"},
	LabelSubtotal:     {"รวมเงิน", "Subtotal"},
	LabelGrandTotal:   {"ยอดชำระ", "Total due"},
	LabelCurrency:     {"บาท", "THB"},
	LabelThanks:       {"ขอบคุณที่ใช้บริการ", "Thank you for your business"},
	LabelLastUpdated:  {"อัพเดตล่าสุด", "Last updated"},
	LabelReceiptTitle: {"ใบเสร็จรับเงิน", "Receipt"},

	ErrConnection:   {"เกิดข้อผิดพลาดในการเชื่อมต่อ API", "Could not connect to the receipt service"},
	ErrMalformed:    {"ข้อมูลใบเสร็จที่ได้รับไม่ถูกต้อง", "The receipt service returned invalid data"},
	ErrRemote:       {"ไม่สามารถดึงข้อมูลได้", "Could not retrieve the receipt"},
	ErrNotFound:     {"ไม่พบข้อมูลใบเสร็จ", "Receipt not found"},
	ErrEmptyRefCode: {"กรุณากรอกเลขที่เอกสาร", "Please enter a reference code"},
	ErrPrint:        {"สร้างใบเสร็จแล้วแต่พิมพ์ไม่สำเร็จ", "Receipt generated but printing failed"},
	ErrRender:       {"ไม่สามารถสร้างเอกสารใบเสร็จได้", "Could not render the receipt document"},
	ErrUnknown:      {"เกิดข้อผิดพลาดที่ไม่คาดคิด", "An unexpected error occurred"},
}

var (
	cat     = build()
	matcher = language.NewMatcher(supported)
)

func build() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.Thai))
	for key, msgs := range entries {
		// keys and messages are static; SetString only fails on malformed tags
		_ = b.SetString(language.Thai, key, msgs[0])
		_ = b.SetString(language.English, key, msgs[1])
	}
	return b
}

// Match picks the best supported language for the given preferences
// (language codes or Accept-Language values), or fallback when none match.
func Match(fallback language.Tag, prefs ...string) language.Tag {
	var tags []language.Tag
	for _, p := range prefs {
		if p == "" {
			continue
		}
		parsed, _, err := language.ParseAcceptLanguage(p)
		if err != nil {
			continue
		}
		tags = append(tags, parsed...)
	}
	if len(tags) == 0 {
		return fallback
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return fallback
	}
	return supported[idx]
}

// Printer returns a message printer backed by the receipt catalog.
func Printer(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag, message.Catalog(cat))
}

// T returns the message for key in tag.
func T(tag language.Tag, key string) string {
	return Printer(tag).Sprintf(key)
}
