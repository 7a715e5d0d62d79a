package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/sangkips/receipt-viewer/internal/application/service"
	"github.com/sangkips/receipt-viewer/internal/domain/entity"
	"github.com/sangkips/receipt-viewer/internal/i18n"
	"github.com/sangkips/receipt-viewer/internal/presentation/http/dto/request"
	"github.com/sangkips/receipt-viewer/internal/presentation/http/dto/response"
	"github.com/sangkips/receipt-viewer/pkg/format"
)

// ReceiptHandler handles receipt lookup and rendering requests.
type ReceiptHandler struct {
	receiptService *service.ReceiptService
	defaultLang    language.Tag
	location       *time.Location
	logger         *zap.Logger
}

// NewReceiptHandler creates a new receipt handler.
func NewReceiptHandler(receiptService *service.ReceiptService, defaultLang language.Tag, loc *time.Location, logger *zap.Logger) *ReceiptHandler {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReceiptHandler{
		receiptService: receiptService,
		defaultLang:    defaultLang,
		location:       loc,
		logger:         logger,
	}
}

// FormattedItem is a line item with display strings.
type FormattedItem struct {
	entity.ReceiptLineItem
	LineTotal         string `json:"line_total"`
	WithholdingAmount string `json:"withholding_amount,omitempty"`
	RunningSubtotal   string `json:"running_subtotal"`
}

// FormattedTotals are the totals as display strings.
type FormattedTotals struct {
	Subtotal         string `json:"subtotal"`
	TotalWithholding string `json:"total_withholding"`
	GrandTotal       string `json:"grand_total"`
	Currency         string `json:"currency"`
}

// ReceiptResponse is the JSON shape of a looked-up receipt.
type ReceiptResponse struct {
	Info           entity.ReceiptHeader `json:"info"`
	Items          []FormattedItem      `json:"items"`
	Totals         entity.Totals        `json:"totals"`
	Formatted      FormattedTotals      `json:"formatted"`
	CreateDate     string               `json:"create_date"`
	UpdateDate     string               `json:"update_date"`
	BarcodePayload string               `json:"barcode_payload"`
}

func (h *ReceiptHandler) newReceiptResponse(v *service.ReceiptView, tag language.Tag) *ReceiptResponse {
	running := entity.RunningSubtotals(v.Receipt.Items)
	items := make([]FormattedItem, len(v.Receipt.Items))
	for i, item := range v.Receipt.Items {
		items[i] = FormattedItem{
			ReceiptLineItem: item,
			LineTotal:       format.Currency(item.LineTotal(), tag),
			RunningSubtotal: format.Currency(running[i], tag),
		}
		if item.WithholdingTax > 0 {
			items[i].WithholdingAmount = format.Currency(item.WithholdingTax, tag)
		}
	}

	return &ReceiptResponse{
		Info:   v.Receipt.Info,
		Items:  items,
		Totals: v.Totals,
		Formatted: FormattedTotals{
			Subtotal:         format.Currency(v.Totals.Subtotal, tag),
			TotalWithholding: format.Currency(v.Totals.TotalWithholding, tag),
			GrandTotal:       format.Currency(v.Totals.GrandTotal, tag),
			Currency:         i18n.T(tag, i18n.LabelCurrency),
		},
		CreateDate:     format.DateTime(v.Receipt.Info.CreateDate, tag, h.location),
		UpdateDate:     format.DateTime(v.Receipt.Info.UpdateDate, tag, h.location),
		BarcodePayload: v.BarcodePayload,
	}
}

func (h *ReceiptHandler) bindRef(c *gin.Context, tag language.Tag) (string, bool) {
	var req request.ReceiptRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.BadRequest(c, i18n.T(tag, i18n.ErrEmptyRefCode))
		return "", false
	}
	return req.RefCode, true
}

func (h *ReceiptHandler) fail(c *gin.Context, tag language.Tag, err error) {
	_ = c.Error(err)
	response.Error(c, LookupAppError(tag, err))
}

// GetReceipt returns a receipt with totals, display strings and barcode payload.
func (h *ReceiptHandler) GetReceipt(c *gin.Context) {
	tag := GetLang(c, h.defaultLang)
	ref, ok := h.bindRef(c, tag)
	if !ok {
		return
	}

	view, err := h.receiptService.Lookup(c.Request.Context(), ref)
	if err != nil {
		h.fail(c, tag, err)
		return
	}
	response.OK(c, "Receipt retrieved", h.newReceiptResponse(view, tag))
}

// GetReceiptPDF renders the receipt as a PDF document.
func (h *ReceiptHandler) GetReceiptPDF(c *gin.Context) {
	tag := GetLang(c, h.defaultLang)
	ref, ok := h.bindRef(c, tag)
	if !ok {
		return
	}

	view, data, err := h.receiptService.RenderPDF(c.Request.Context(), ref, tag)
	if err != nil {
		if view != nil {
			h.logger.Error("pdf render failed", zap.String("ref", ref), zap.Error(err))
			response.InternalServerError(c, i18n.T(tag, i18n.ErrRender))
			return
		}
		h.fail(c, tag, err)
		return
	}
	response.Attachment(c, "application/pdf", fileName(view, "pdf"), c.Query("download") == "", data)
}

// GetReceiptBarcode returns the PDF417 symbol as PNG.
func (h *ReceiptHandler) GetReceiptBarcode(c *gin.Context) {
	tag := GetLang(c, h.defaultLang)
	ref, ok := h.bindRef(c, tag)
	if !ok {
		return
	}

	data, err := h.receiptService.BarcodePNG(c.Request.Context(), ref)
	if err != nil {
		h.fail(c, tag, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", data)
}

// GetReceiptESCPOS returns the raw ESC/POS stream for client-side printing.
func (h *ReceiptHandler) GetReceiptESCPOS(c *gin.Context) {
	tag := GetLang(c, h.defaultLang)
	ref, ok := h.bindRef(c, tag)
	if !ok {
		return
	}

	view, data, err := h.receiptService.RenderESCPOS(c.Request.Context(), ref, tag)
	if err != nil {
		if view != nil {
			h.logger.Error("escpos render failed", zap.String("ref", ref), zap.Error(err))
			response.InternalServerError(c, i18n.T(tag, i18n.ErrRender))
			return
		}
		h.fail(c, tag, err)
		return
	}
	response.Attachment(c, "application/octet-stream", fileName(view, "bin"), false, data)
}

// PrintReceipt sends the receipt to the configured thermal printer.
func (h *ReceiptHandler) PrintReceipt(c *gin.Context) {
	tag := GetLang(c, h.defaultLang)
	ref, ok := h.bindRef(c, tag)
	if !ok {
		return
	}

	view, err := h.receiptService.Print(c.Request.Context(), ref, tag)
	if err != nil {
		// If receipt was built but printing failed, return receipt with warning
		if view != nil && errors.Is(err, service.ErrPrintFailed) {
			response.OK(c, i18n.T(tag, i18n.ErrPrint), gin.H{
				"receipt": h.newReceiptResponse(view, tag),
				"warning": err.Error(),
			})
			return
		}
		if view != nil {
			h.logger.Error("print render failed", zap.String("ref", ref), zap.Error(err))
			response.InternalServerError(c, i18n.T(tag, i18n.ErrRender))
			return
		}
		h.fail(c, tag, err)
		return
	}
	response.OK(c, "Receipt printed successfully", gin.H{
		"receipt": h.newReceiptResponse(view, tag),
	})
}

// Ping reports whether the receipt store is reachable. It never fails.
func (h *ReceiptHandler) Ping(c *gin.Context) {
	reachable := h.receiptService.UpstreamStatus(c.Request.Context())
	response.OK(c, "Receipt store status retrieved", gin.H{
		"reachable": reachable,
	})
}

func fileName(v *service.ReceiptView, ext string) string {
	name := v.Receipt.Info.RefCodeInfoItem
	if name == "" {
		name = "receipt"
	}
	safe := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			safe = append(safe, r)
		default:
			safe = append(safe, '_')
		}
	}
	return "receipt-" + string(safe) + "." + ext
}
