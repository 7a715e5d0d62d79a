package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/sangkips/receipt-viewer/internal/application/service"
	"github.com/sangkips/receipt-viewer/internal/domain/entity"
	"github.com/sangkips/receipt-viewer/internal/domain/schema"
	"github.com/sangkips/receipt-viewer/internal/infrastructure/receiptapi"
	"github.com/sangkips/receipt-viewer/pkg/apperror"
	"github.com/sangkips/receipt-viewer/pkg/printer"
)

type stubFetcher struct {
	receipt *entity.Receipt
	err     error
	pong    bool
}

func (s *stubFetcher) FetchReceipt(_ context.Context, refCode string) (*entity.Receipt, error) {
	if strings.TrimSpace(refCode) == "" {
		return nil, receiptapi.ErrEmptyRefCode
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.receipt, nil
}

func (s *stubFetcher) Ping(context.Context) bool { return s.pong }

type stubPrinter struct{ err error }

func (p stubPrinter) Print(context.Context, []byte) error { return p.err }
func (p stubPrinter) IsConnected() bool                   { return p.err == nil }

type envelope struct {
	Success bool                  `json:"success"`
	Message string                `json:"message"`
	Data    json.RawMessage       `json:"data"`
	Errors  []apperror.FieldError `json:"errors"`
}

func testReceipt() *entity.Receipt {
	return &entity.Receipt{
		Info: entity.ReceiptHeader{
			ID:              1,
			NameSeller:      "Siam Supplies",
			SellerAddress:   "Bangkok",
			SellerTaxID:     "0105551234567",
			BuyerName:       "Acme Co",
			BuyerAddress:    "Sukhumvit",
			BuyerTaxID:      "123",
			BuyerOrgType:    "company",
			RefCodeInfoItem: "INV-001",
			CreateDate:      "2024-03-15T10:30:00Z",
			UpdateDate:      "2024-03-16T08:00:00Z",
			RecordID:        "rec-1",
		},
		Items: []entity.ReceiptLineItem{
			{ID: 1, RefCodeInfoItem: "INV-001", Item: "Paper", Amount: 2, Price: 1000, WithholdingTax: 5},
			{ID: 2, RefCodeInfoItem: "INV-001", Item: "Ink", Amount: 1, Price: 50},
		},
	}
}

func newRouter(t *testing.T, f *stubFetcher, p printer.Printer) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	loc := time.FixedZone("ICT", 7*60*60)
	svc := service.NewReceiptService(f, p, service.ReceiptServiceConfig{
		PrinterType: printer.TypeNetwork,
		CharWidth:   32,
		Location:    loc,
	}, nil)
	rh := NewReceiptHandler(svc, language.Thai, loc, nil)
	ph := NewPrinterHandler(svc, language.Thai)

	r := gin.New()
	v1 := r.Group("/api/v1")
	v1.GET("/ping", rh.Ping)
	v1.GET("/receipts/:refCode", rh.GetReceipt)
	v1.GET("/receipts/:refCode/pdf", rh.GetReceiptPDF)
	v1.GET("/receipts/:refCode/barcode.png", rh.GetReceiptBarcode)
	v1.GET("/receipts/:refCode/escpos", rh.GetReceiptESCPOS)
	v1.POST("/receipts/:refCode/print", rh.PrintReceipt)
	v1.GET("/printer/status", ph.GetStatus)
	v1.POST("/printer/test", ph.TestPrint)
	return r
}

func do(r http.Handler, method, target string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func TestGetReceipt(t *testing.T) {
	r := newRouter(t, &stubFetcher{receipt: testReceipt()}, nil)

	w := do(r, http.MethodGet, "/api/v1/receipts/INV-001?lang=en", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	env := decode(t, w)
	assert.True(t, env.Success)

	var body ReceiptResponse
	require.NoError(t, json.Unmarshal(env.Data, &body))
	assert.Equal(t, "INV-001", body.Info.RefCodeInfoItem)
	assert.Equal(t, entity.Totals{Subtotal: 2050, TotalWithholding: 5, GrandTotal: 2045}, body.Totals)
	assert.Equal(t, "2,050.00", body.Formatted.Subtotal)
	assert.Equal(t, "2,045.00", body.Formatted.GrandTotal)
	assert.Equal(t, "THB", body.Formatted.Currency)
	assert.Equal(t, "15/03/2024 17:30", body.CreateDate)
	assert.Equal(t, "INV-001|20240315|0105551234567|123|2050.00|5.00|2045.00", body.BarcodePayload)

	require.Len(t, body.Items, 2)
	assert.Equal(t, "2,000.00", body.Items[0].LineTotal)
	assert.Equal(t, "5.00", body.Items[0].WithholdingAmount)
	assert.Empty(t, body.Items[1].WithholdingAmount)
	assert.Equal(t, "2,050.00", body.Items[1].RunningSubtotal)
}

func TestGetReceiptThaiByDefault(t *testing.T) {
	r := newRouter(t, &stubFetcher{receipt: testReceipt()}, nil)

	w := do(r, http.MethodGet, "/api/v1/receipts/INV-001", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body ReceiptResponse
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &body))
	assert.Equal(t, "บาท", body.Formatted.Currency)
	assert.Equal(t, "15/03/2567 17:30", body.CreateDate)
}

func TestGetReceiptErrors(t *testing.T) {
	validation := &schema.ValidationError{Fields: []apperror.FieldError{
		{Field: "data.items[0].Amount", Message: "expected number, got string"},
	}}

	tests := []struct {
		name       string
		err        error
		lang       string
		wantStatus int
		wantMsg    string
		wantFields []apperror.FieldError
	}{
		{
			name:       "not found",
			err:        &receiptapi.LookupError{Kind: receiptapi.KindNotFound},
			lang:       "en",
			wantStatus: http.StatusNotFound,
			wantMsg:    "Receipt not found",
		},
		{
			name:       "not found in thai",
			err:        &receiptapi.LookupError{Kind: receiptapi.KindNotFound},
			lang:       "th",
			wantStatus: http.StatusNotFound,
			wantMsg:    "ไม่พบข้อมูลใบเสร็จ",
		},
		{
			name:       "remote message is shown verbatim",
			err:        &receiptapi.LookupError{Kind: receiptapi.KindRemote, Message: "Reference has been voided"},
			lang:       "en",
			wantStatus: http.StatusUnprocessableEntity,
			wantMsg:    "Reference has been voided",
		},
		{
			name:       "remote default message is localized",
			err:        &receiptapi.LookupError{Kind: receiptapi.KindRemote, Message: receiptapi.DefaultRemoteMessage},
			lang:       "th",
			wantStatus: http.StatusUnprocessableEntity,
			wantMsg:    "ไม่สามารถดึงข้อมูลได้",
		},
		{
			name:       "malformed",
			err:        &receiptapi.LookupError{Kind: receiptapi.KindMalformedResponse, Err: validation},
			lang:       "en",
			wantStatus: http.StatusBadGateway,
			wantMsg:    "The receipt service returned invalid data",
			wantFields: validation.Fields,
		},
		{
			name:       "upstream status",
			err:        &receiptapi.LookupError{Kind: receiptapi.KindConnection, StatusCode: 503},
			lang:       "en",
			wantStatus: http.StatusBadGateway,
			wantMsg:    "Could not connect to the receipt service",
			wantFields: []apperror.FieldError{{Field: "upstream_status", Message: "503"}},
		},
		{
			name:       "transport failure",
			err:        &receiptapi.LookupError{Kind: receiptapi.KindConnection, Err: errors.New("dial tcp: refused")},
			lang:       "en",
			wantStatus: http.StatusBadGateway,
			wantMsg:    "Could not connect to the receipt service",
		},
		{
			name:       "unexpected error",
			err:        errors.New("boom"),
			lang:       "en",
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter(t, &stubFetcher{err: tt.err}, nil)

			w := do(r, http.MethodGet, "/api/v1/receipts/INV-001?lang="+tt.lang, nil)
			assert.Equal(t, tt.wantStatus, w.Code)

			env := decode(t, w)
			assert.False(t, env.Success)
			assert.Equal(t, tt.wantMsg, env.Message)
			assert.Equal(t, tt.wantFields, env.Errors)
		})
	}
}

func TestGetReceiptBlankRefCode(t *testing.T) {
	r := newRouter(t, &stubFetcher{receipt: testReceipt()}, nil)

	w := do(r, http.MethodGet, "/api/v1/receipts/%20%20", map[string]string{"Accept-Language": "en-US"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Please enter a reference code", decode(t, w).Message)
}

func TestAcceptLanguageSelectsMessages(t *testing.T) {
	r := newRouter(t, &stubFetcher{err: &receiptapi.LookupError{Kind: receiptapi.KindNotFound}}, nil)

	w := do(r, http.MethodGet, "/api/v1/receipts/INV-001", map[string]string{"Accept-Language": "en-GB,en;q=0.8"})
	assert.Equal(t, "Receipt not found", decode(t, w).Message)

	w = do(r, http.MethodGet, "/api/v1/receipts/INV-001?lang=th", map[string]string{"Accept-Language": "en"})
	assert.Equal(t, "ไม่พบข้อมูลใบเสร็จ", decode(t, w).Message)
}

func TestGetReceiptPDF(t *testing.T) {
	r := newRouter(t, &stubFetcher{receipt: testReceipt()}, nil)

	w := do(r, http.MethodGet, "/api/v1/receipts/INV-001/pdf?lang=en", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `inline; filename="receipt-INV-001.pdf"`, w.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF-"))

	w = do(r, http.MethodGet, "/api/v1/receipts/INV-001/pdf?lang=en&download=1", nil)
	assert.Equal(t, `attachment; filename="receipt-INV-001.pdf"`, w.Header().Get("Content-Disposition"))
}

func TestGetReceiptBarcode(t *testing.T) {
	r := newRouter(t, &stubFetcher{receipt: testReceipt()}, nil)

	w := do(r, http.MethodGet, "/api/v1/receipts/INV-001/barcode.png", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "\x89PNG"))
}

func TestGetReceiptESCPOS(t *testing.T) {
	r := newRouter(t, &stubFetcher{receipt: testReceipt()}, nil)

	w := do(r, http.MethodGet, "/api/v1/receipts/INV-001/escpos?lang=en", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/octet-stream", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="receipt-INV-001.bin"`, w.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "\x1b@"))
}

func TestPrintReceipt(t *testing.T) {
	r := newRouter(t, &stubFetcher{receipt: testReceipt()}, stubPrinter{})

	w := do(r, http.MethodPost, "/api/v1/receipts/INV-001/print?lang=en", nil)
	require.Equal(t, http.StatusOK, w.Code)

	env := decode(t, w)
	assert.Equal(t, "Receipt printed successfully", env.Message)

	var data map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Contains(t, data, "receipt")
	assert.NotContains(t, data, "warning")
}

func TestPrintReceiptPrinterFailure(t *testing.T) {
	r := newRouter(t, &stubFetcher{receipt: testReceipt()}, stubPrinter{err: errors.New("paper out")})

	w := do(r, http.MethodPost, "/api/v1/receipts/INV-001/print?lang=en", nil)
	require.Equal(t, http.StatusOK, w.Code)

	env := decode(t, w)
	assert.Equal(t, "Receipt generated but printing failed", env.Message)

	var data struct {
		Receipt ReceiptResponse `json:"receipt"`
		Warning string          `json:"warning"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "INV-001", data.Receipt.Info.RefCodeInfoItem)
	assert.Contains(t, data.Warning, "paper out")
}

func TestPrintReceiptLookupFailure(t *testing.T) {
	r := newRouter(t, &stubFetcher{err: &receiptapi.LookupError{Kind: receiptapi.KindNotFound}}, stubPrinter{})

	w := do(r, http.MethodPost, "/api/v1/receipts/INV-001/print", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPing(t *testing.T) {
	for _, pong := range []bool{true, false} {
		r := newRouter(t, &stubFetcher{pong: pong}, nil)

		w := do(r, http.MethodGet, "/api/v1/ping", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var data struct {
			Reachable bool `json:"reachable"`
		}
		require.NoError(t, json.Unmarshal(decode(t, w).Data, &data))
		assert.Equal(t, pong, data.Reachable)
	}
}

func TestPrinterStatusAndTestPrint(t *testing.T) {
	r := newRouter(t, &stubFetcher{}, stubPrinter{})

	w := do(r, http.MethodGet, "/api/v1/printer/status", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var status service.PrinterStatus
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &status))
	assert.Equal(t, service.PrinterStatus{Configured: true, Connected: true, Type: printer.TypeNetwork}, status)

	w = do(r, http.MethodPost, "/api/v1/printer/test", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Test page sent to printer", decode(t, w).Message)
}

func TestFileName(t *testing.T) {
	v := &service.ReceiptView{Receipt: &entity.Receipt{Info: entity.ReceiptHeader{RefCodeInfoItem: "INV/2024 01"}}}
	assert.Equal(t, "receipt-INV_2024_01.pdf", fileName(v, "pdf"))

	v.Receipt.Info.RefCodeInfoItem = ""
	assert.Equal(t, "receipt-receipt.pdf", fileName(v, "pdf"))
}
