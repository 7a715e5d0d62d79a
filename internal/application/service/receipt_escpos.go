package service

import (
	"errors"
	"time"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/language"

	"github.com/sangkips/receipt-viewer/internal/i18n"
	"github.com/sangkips/receipt-viewer/pkg/barcode"
	"github.com/sangkips/receipt-viewer/pkg/format"
	"github.com/sangkips/receipt-viewer/pkg/printer"
)

// ErrPrintFailed marks a receipt that was rendered but could not be printed.
var ErrPrintFailed = errors.New("failed to print receipt")

// Layout carries the presentation choices shared by the ESC/POS and PDF renderers.
type Layout struct {
	Lang      language.Tag
	Location  *time.Location
	CharWidth int
	CodePage  int
	FontPath  string
	Barcode   barcode.RenderOptions
}

// FormatReceipt converts a receipt view into ESC/POS bytes.
func FormatReceipt(v *ReceiptView, l Layout) ([]byte, error) {
	var opts []printer.DocumentOption
	if l.CodePage > 0 {
		opts = append(opts, printer.WithEncoding(charmap.Windows874))
	}
	doc := printer.NewDocument(l.CharWidth, opts...)
	if l.CodePage > 0 {
		doc.SetCodePage(byte(l.CodePage))
	}

	info := v.Receipt.Info
	t := func(key string) string { return i18n.T(l.Lang, key) }
	money := func(f float64) string { return format.Currency(f, l.Lang) }

	// Header
	doc.SetAlign(printer.AlignCenter).
		SetBold(true).
		Text(info.NameSeller).
		SetBold(false)

	if info.SellerAddress != "" {
		doc.Text(info.SellerAddress)
	}
	doc.Text(t(i18n.LabelTaxID) + ": " + info.SellerTaxID)

	doc.Separator('-').
		SetFontSize(printer.FontTall).
		Text(t(i18n.LabelReceiptTitle)).
		SetFontSize(printer.FontNormal).
		SetAlign(printer.AlignLeft)

	// Receipt info
	doc.KeyValue(t(i18n.LabelNumber)+":", info.RefCodeInfoItem).
		KeyValue(t(i18n.LabelDate)+":", format.DateTime(info.CreateDate, l.Lang, l.Location))

	doc.Separator('-')

	// Buyer
	doc.SetBold(true).
		Text(t(i18n.LabelCustomer) + ":").
		SetBold(false).
		Text(info.BuyerName)
	if info.BuyerAddress != "" {
		doc.Text(info.BuyerAddress)
	}
	doc.Text(t(i18n.LabelTaxID) + ": " + info.BuyerTaxID)
	if info.BuyerOrgType != "" {
		doc.Text(t(i18n.LabelOrgType) + ": " + info.BuyerOrgType)
	}

	doc.Separator('-')

	// Items
	for _, item := range v.Receipt.Items {
		doc.ItemLine(format.Quantity(item.Amount, l.Lang), item.Item, money(item.LineTotal()))
		if item.Amount != 1 {
			doc.TextF("  @ %s", money(item.Price))
		}
		if item.WithholdingTax > 0 {
			doc.SetAlign(printer.AlignRight).
				Text(t(i18n.LabelWithholding) + ": -" + money(item.WithholdingTax)).
				SetAlign(printer.AlignLeft)
		}
	}

	doc.Separator('-')

	// Totals
	unit := " " + t(i18n.LabelCurrency)
	doc.KeyValue(t(i18n.LabelSubtotal)+":", money(v.Totals.Subtotal)+unit).
		KeyValue(t(i18n.LabelWithholding)+":", "-"+money(v.Totals.TotalWithholding)+unit).
		SetBold(true).
		KeyValue(t(i18n.LabelGrandTotal)+":", money(v.Totals.GrandTotal)+unit).
		SetBold(false)

	doc.Separator('-')

	// Footer
	doc.SetAlign(printer.AlignCenter).
		Text(t(i18n.LabelThanks)).
		Text(t(i18n.LabelLastUpdated) + ": " + format.DateTime(info.UpdateDate, l.Lang, l.Location)).
		LineFeed()

	moduleWidth := byte(l.Barcode.Scale)
	if _, err := doc.PDF417([]byte(v.BarcodePayload), moduleWidth, 3, l.Barcode.SecurityLevel); err != nil {
		return nil, err
	}

	doc.SetAlign(printer.AlignLeft).
		FeedLines(3).
		PartialCut()

	return doc.Bytes(), nil
}
