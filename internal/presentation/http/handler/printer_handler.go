package handler

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"

	"github.com/sangkips/receipt-viewer/internal/application/service"
	"github.com/sangkips/receipt-viewer/internal/i18n"
	"github.com/sangkips/receipt-viewer/internal/presentation/http/dto/response"
)

// PrinterHandler handles printer-related HTTP requests.
type PrinterHandler struct {
	receiptService *service.ReceiptService
	defaultLang    language.Tag
}

// NewPrinterHandler creates a new printer handler.
func NewPrinterHandler(receiptService *service.ReceiptService, defaultLang language.Tag) *PrinterHandler {
	return &PrinterHandler{receiptService: receiptService, defaultLang: defaultLang}
}

// GetStatus returns the current printer connection status.
func (h *PrinterHandler) GetStatus(c *gin.Context) {
	status := h.receiptService.PrinterStatus()
	response.OK(c, "Printer status retrieved", status)
}

// TestPrint sends a test page to the printer.
func (h *PrinterHandler) TestPrint(c *gin.Context) {
	tag := GetLang(c, h.defaultLang)
	view, err := h.receiptService.TestPrint(c.Request.Context(), tag)
	if err != nil {
		// Return the receipt data anyway (useful when printer type is "none")
		response.OK(c, i18n.T(tag, i18n.ErrPrint), gin.H{
			"receipt": view,
			"warning": err.Error(),
		})
		return
	}

	response.OK(c, "Test page sent to printer", gin.H{
		"receipt": view,
	})
}
