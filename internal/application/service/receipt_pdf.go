package service

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/extension"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/johnfercher/maroto/v2/pkg/repository"
	"golang.org/x/text/language"

	"github.com/sangkips/receipt-viewer/internal/i18n"
	"github.com/sangkips/receipt-viewer/pkg/barcode"
	"github.com/sangkips/receipt-viewer/pkg/format"
)

// Roll-paper page geometry in millimetres.
const (
	pdfPageWidth  = 80
	pdfPageHeight = 297
	pdfMargin     = 4
	pdfFontFamily = "receipt"
)

// pdfLang returns the label language the PDF can draw. The built-in core
// fonts are cp1252 only, so Thai labels need a UTF-8 font file.
func pdfLang(l Layout) language.Tag {
	if l.FontPath == "" && l.Lang != language.English {
		return language.English
	}
	return l.Lang
}

// RenderReceiptPDF renders a receipt view as a single roll-width PDF page.
// Without a font file the labels are English.
func RenderReceiptPDF(v *ReceiptView, l Layout) ([]byte, error) {
	l.Lang = pdfLang(l)
	builder := config.NewBuilder().
		WithDimensions(pdfPageWidth, pdfPageHeight).
		WithLeftMargin(pdfMargin).
		WithTopMargin(pdfMargin).
		WithRightMargin(pdfMargin)

	if l.FontPath != "" {
		fonts, err := repository.New().
			AddUTF8Font(pdfFontFamily, fontstyle.Normal, l.FontPath).
			AddUTF8Font(pdfFontFamily, fontstyle.Bold, l.FontPath).
			Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load PDF font: %w", err)
		}
		builder = builder.WithCustomFonts(fonts).
			WithDefaultFont(&props.Font{Family: pdfFontFamily, Size: 8})
	}

	symbol, err := barcode.RenderPNG(v.BarcodePayload, l.Barcode)
	if err != nil {
		return nil, err
	}

	m := maroto.New(builder.Build())
	addPDFHeader(m, v, l)
	addPDFBuyer(m, v, l)
	addPDFItems(m, v, l)
	addPDFTotals(m, v, l)
	addPDFFooter(m, v, l, symbol)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return doc.GetBytes(), nil
}

func centered(s string, size float64, style fontstyle.Type) core.Col {
	return col.New(12).Add(text.New(s, props.Text{Size: size, Style: style, Align: align.Center}))
}

func keyValueRow(m core.Maroto, key, value string, style fontstyle.Type) {
	m.AddRow(5,
		col.New(6).Add(text.New(key, props.Text{Size: 8, Style: style, Align: align.Left})),
		col.New(6).Add(text.New(value, props.Text{Size: 8, Style: style, Align: align.Right})),
	)
}

func addPDFHeader(m core.Maroto, v *ReceiptView, l Layout) {
	info := v.Receipt.Info
	m.AddRow(6, centered(info.NameSeller, 10, fontstyle.Bold))
	if info.SellerAddress != "" {
		m.AddRow(5, centered(info.SellerAddress, 7, fontstyle.Normal))
	}
	m.AddRow(5, centered(i18n.T(l.Lang, i18n.LabelTaxID)+": "+info.SellerTaxID, 7, fontstyle.Normal))
	m.AddRow(3, line.NewCol(12))
	m.AddRow(6, centered(i18n.T(l.Lang, i18n.LabelReceiptTitle), 10, fontstyle.Bold))

	keyValueRow(m, i18n.T(l.Lang, i18n.LabelNumber)+":", info.RefCodeInfoItem, fontstyle.Normal)
	keyValueRow(m, i18n.T(l.Lang, i18n.LabelDate)+":", format.DateTime(info.CreateDate, l.Lang, l.Location), fontstyle.Normal)
	m.AddRow(3, line.NewCol(12))
}

func addPDFBuyer(m core.Maroto, v *ReceiptView, l Layout) {
	info := v.Receipt.Info
	left := func(s string, style fontstyle.Type) {
		m.AddRow(4, col.New(12).Add(text.New(s, props.Text{Size: 8, Style: style, Align: align.Left})))
	}
	left(i18n.T(l.Lang, i18n.LabelCustomer)+":", fontstyle.Bold)
	left(info.BuyerName, fontstyle.Normal)
	if info.BuyerAddress != "" {
		left(info.BuyerAddress, fontstyle.Normal)
	}
	left(i18n.T(l.Lang, i18n.LabelTaxID)+": "+info.BuyerTaxID, fontstyle.Normal)
	if info.BuyerOrgType != "" {
		left(i18n.T(l.Lang, i18n.LabelOrgType)+": "+info.BuyerOrgType, fontstyle.Normal)
	}
	m.AddRow(3, line.NewCol(12))
}

func addPDFItems(m core.Maroto, v *ReceiptView, l Layout) {
	header := props.Text{Size: 8, Style: fontstyle.Bold}
	m.AddRow(5,
		col.New(6).Add(text.New(i18n.T(l.Lang, i18n.LabelItems), header)),
		col.New(2).Add(text.New(i18n.T(l.Lang, i18n.LabelQty), props.Text{Size: 8, Style: fontstyle.Bold, Align: align.Center})),
		col.New(4).Add(text.New(i18n.T(l.Lang, i18n.LabelPrice), props.Text{Size: 8, Style: fontstyle.Bold, Align: align.Right})),
	)

	for _, item := range v.Receipt.Items {
		m.AddRow(5,
			col.New(6).Add(text.New(item.Item, props.Text{Size: 8})),
			col.New(2).Add(text.New(format.Quantity(item.Amount, l.Lang), props.Text{Size: 8, Align: align.Center})),
			col.New(4).Add(text.New(format.Currency(item.LineTotal(), l.Lang), props.Text{Size: 8, Align: align.Right})),
		)
		if item.WithholdingTax > 0 {
			m.AddRow(4,
				col.New(12).Add(text.New(
					i18n.T(l.Lang, i18n.LabelWithholding)+": -"+format.Currency(item.WithholdingTax, l.Lang),
					props.Text{Size: 7, Align: align.Right},
				)),
			)
		}
	}
	m.AddRow(3, line.NewCol(12))
}

func addPDFTotals(m core.Maroto, v *ReceiptView, l Layout) {
	unit := " " + i18n.T(l.Lang, i18n.LabelCurrency)
	keyValueRow(m, i18n.T(l.Lang, i18n.LabelSubtotal)+":", format.Currency(v.Totals.Subtotal, l.Lang)+unit, fontstyle.Normal)
	keyValueRow(m, i18n.T(l.Lang, i18n.LabelWithholding)+":", "-"+format.Currency(v.Totals.TotalWithholding, l.Lang)+unit, fontstyle.Normal)
	keyValueRow(m, i18n.T(l.Lang, i18n.LabelGrandTotal)+":", format.Currency(v.Totals.GrandTotal, l.Lang)+unit, fontstyle.Bold)
	m.AddRow(3, line.NewCol(12))
}

func addPDFFooter(m core.Maroto, v *ReceiptView, l Layout, symbol []byte) {
	m.AddRow(5, centered(i18n.T(l.Lang, i18n.LabelThanks), 8, fontstyle.Normal))
	m.AddRow(5, centered(
		i18n.T(l.Lang, i18n.LabelLastUpdated)+": "+format.DateTime(v.Receipt.Info.UpdateDate, l.Lang, l.Location),
		7, fontstyle.Normal,
	))
	m.AddRow(22, image.NewFromBytesCol(12, symbol, extension.Png, props.Rect{Center: true, Percent: 95}))
}
