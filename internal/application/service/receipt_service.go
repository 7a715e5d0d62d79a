package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/sangkips/receipt-viewer/internal/domain/entity"
	"github.com/sangkips/receipt-viewer/pkg/barcode"
	"github.com/sangkips/receipt-viewer/pkg/printer"
)

// ReceiptFetcher is the remote lookup the service depends on.
type ReceiptFetcher interface {
	FetchReceipt(ctx context.Context, refCode string) (*entity.Receipt, error)
	Ping(ctx context.Context) bool
}

// ReceiptView is a validated receipt with its derived values.
type ReceiptView struct {
	Receipt        *entity.Receipt `json:"receipt"`
	Totals         entity.Totals   `json:"totals"`
	BarcodePayload string          `json:"barcode_payload"`
}

// NewReceiptView computes totals and the barcode payload for r.
func NewReceiptView(r *entity.Receipt) *ReceiptView {
	totals := entity.ComputeTotals(r.Items)
	return &ReceiptView{
		Receipt:        r,
		Totals:         totals,
		BarcodePayload: BarcodePayload(r, totals),
	}
}

// BarcodePayload builds the symbol payload for a receipt and its totals.
func BarcodePayload(r *entity.Receipt, t entity.Totals) string {
	return barcode.Payload(barcode.Fields{
		RefCode:          r.Info.RefCodeInfoItem,
		CreateDate:       r.Info.CreateDate,
		SellerTaxID:      r.Info.SellerTaxID,
		BuyerTaxID:       r.Info.BuyerTaxID,
		Subtotal:         t.Subtotal,
		TotalWithholding: t.TotalWithholding,
		GrandTotal:       t.GrandTotal,
	})
}

// ReceiptServiceConfig tunes document output.
type ReceiptServiceConfig struct {
	PrinterType string
	CharWidth   int
	CodePage    int
	FontPath    string
	Barcode     barcode.RenderOptions
	Location    *time.Location
}

// ReceiptService looks up receipts and renders them for screen, PDF and thermal print.
type ReceiptService struct {
	fetcher ReceiptFetcher
	printer printer.Printer
	cfg     ReceiptServiceConfig
	logger  *zap.Logger
}

// NewReceiptService creates a new receipt service.
func NewReceiptService(fetcher ReceiptFetcher, p printer.Printer, cfg ReceiptServiceConfig, logger *zap.Logger) *ReceiptService {
	if p == nil {
		p = printer.NewNullPrinter()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Barcode.Scale <= 0 {
		cfg.Barcode = barcode.DefaultRenderOptions()
	}
	return &ReceiptService{
		fetcher: fetcher,
		printer: p,
		cfg:     cfg,
		logger:  logger,
	}
}

// Lookup fetches a receipt and derives totals and barcode payload.
// Every call goes to the store; nothing is cached.
func (s *ReceiptService) Lookup(ctx context.Context, refCode string) (*ReceiptView, error) {
	r, err := s.fetcher.FetchReceipt(ctx, refCode)
	if err != nil {
		return nil, err
	}
	return NewReceiptView(r), nil
}

// BarcodePNG looks up a receipt and rasterizes its payload.
func (s *ReceiptService) BarcodePNG(ctx context.Context, refCode string) ([]byte, error) {
	view, err := s.Lookup(ctx, refCode)
	if err != nil {
		return nil, err
	}
	return barcode.RenderPNG(view.BarcodePayload, s.cfg.Barcode)
}

// RenderESCPOS looks up a receipt and formats it for a thermal printer.
func (s *ReceiptService) RenderESCPOS(ctx context.Context, refCode string, tag language.Tag) (*ReceiptView, []byte, error) {
	view, err := s.Lookup(ctx, refCode)
	if err != nil {
		return nil, nil, err
	}
	data, err := FormatReceipt(view, s.layout(tag))
	if err != nil {
		return view, nil, err
	}
	return view, data, nil
}

// RenderPDF looks up a receipt and renders it as a PDF document.
func (s *ReceiptService) RenderPDF(ctx context.Context, refCode string, tag language.Tag) (*ReceiptView, []byte, error) {
	view, err := s.Lookup(ctx, refCode)
	if err != nil {
		return nil, nil, err
	}
	data, err := RenderReceiptPDF(view, s.layout(tag))
	if err != nil {
		return view, nil, err
	}
	return view, data, nil
}

// Print looks up a receipt and sends it to the configured printer.
// When only printing fails, the view is returned together with the error.
func (s *ReceiptService) Print(ctx context.Context, refCode string, tag language.Tag) (*ReceiptView, error) {
	view, data, err := s.RenderESCPOS(ctx, refCode, tag)
	if err != nil {
		return view, err
	}
	if err := s.printer.Print(ctx, data); err != nil {
		s.logger.Warn("printer error",
			zap.String("ref", view.Receipt.Info.RefCodeInfoItem),
			zap.Error(err),
		)
		return view, fmt.Errorf("%w: %w", ErrPrintFailed, err)
	}
	return view, nil
}

// UpstreamStatus reports whether the receipt store answers pings.
func (s *ReceiptService) UpstreamStatus(ctx context.Context) bool {
	return s.fetcher.Ping(ctx)
}

// PrinterStatus returns the current printer status information.
type PrinterStatus struct {
	Configured bool   `json:"configured"`
	Connected  bool   `json:"connected"`
	Type       string `json:"type"`
}

// PrinterStatus returns printer connection status.
func (s *ReceiptService) PrinterStatus() *PrinterStatus {
	return &PrinterStatus{
		Configured: s.cfg.PrinterType != printer.TypeNone && s.cfg.PrinterType != "",
		Connected:  s.printer.IsConnected(),
		Type:       s.cfg.PrinterType,
	}
}

// TestPrint sends a sample receipt to the printer.
// The view is returned even when printing fails so callers can show it.
func (s *ReceiptService) TestPrint(ctx context.Context, tag language.Tag) (*ReceiptView, error) {
	view := NewReceiptView(&entity.Receipt{
		Info: entity.ReceiptHeader{
			NameSeller:      "PRINTER TEST",
			SellerAddress:   "Test Address",
			SellerTaxID:     "0000000000000",
			BuyerName:       "System",
			BuyerTaxID:      "0000000000000",
			RefCodeInfoItem: "TEST-001",
			CreateDate:      time.Now().In(s.cfg.Location).Format(time.RFC3339),
			UpdateDate:      time.Now().In(s.cfg.Location).Format(time.RFC3339),
		},
		Items: []entity.ReceiptLineItem{
			{ID: 1, Item: "Test Item 1", Amount: 1, Price: 10},
			{ID: 2, Item: "Test Item 2", Amount: 2, Price: 5, WithholdingTax: 0.3},
		},
	})

	data, err := FormatReceipt(view, s.layout(tag))
	if err != nil {
		return view, err
	}
	if err := s.printer.Print(ctx, data); err != nil {
		return view, fmt.Errorf("%w: %w", ErrPrintFailed, err)
	}
	return view, nil
}

func (s *ReceiptService) layout(tag language.Tag) Layout {
	return Layout{
		Lang:      tag,
		Location:  s.cfg.Location,
		CharWidth: s.cfg.CharWidth,
		CodePage:  s.cfg.CodePage,
		FontPath:  s.cfg.FontPath,
		Barcode:   s.cfg.Barcode,
	}
}
