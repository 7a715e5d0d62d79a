package entity

import "errors"

// ReceiptHeader holds the seller/buyer header of a receipt ("info" on the wire).
// Tax ids and timestamps are always text, whatever type the source sent.
type ReceiptHeader struct {
	ID              float64 `json:"ID"`
	NameSeller      string  `json:"NameSeller"`
	SellerAddress   string  `json:"SellerAddress"`
	SellerTaxID     string  `json:"SellerTaxId"`
	BuyerName       string  `json:"BuyerName"`
	BuyerAddress    string  `json:"BuyerAddress"`
	BuyerTaxID      string  `json:"BuyerTaxId"`
	BuyerOrgType    string  `json:"BuyerOrgType"`
	RefCodeInfoItem string  `json:"RefCodeInfoItem"`
	CreateDate      string  `json:"CreateDate"`
	UpdateDate      string  `json:"UpdateDate"`
	RecordID        string  `json:"RecordId"`
}

// ReceiptLineItem represents a single line item on a receipt.
type ReceiptLineItem struct {
	ID              float64 `json:"ID"`
	RefCodeInfoItem string  `json:"RefCodeInfoItem"`
	Item            string  `json:"Item"`
	Amount          float64 `json:"Amount"`
	Price           float64 `json:"Price"`
	WithholdingTax  float64 `json:"WithholdingTax"`
}

// LineTotal returns Amount x Price for the item.
func (i ReceiptLineItem) LineTotal() float64 {
	return i.Amount * i.Price
}

// Receipt is a value object received whole from the remote store.
// It is never built or mutated locally.
type Receipt struct {
	Info  ReceiptHeader     `json:"info"`
	Items []ReceiptLineItem `json:"items"`
}

// LookupEnvelope is the success/error wrapper returned by the remote lookup.
type LookupEnvelope struct {
	OK    bool     `json:"ok"`
	Data  *Receipt `json:"data,omitempty"`
	Error string   `json:"error,omitempty"`
}

// Envelope outcomes that carry no receipt.
var (
	ErrReceiptNotFound = errors.New("receipt not found")
	ErrRemoteFailure   = errors.New("remote lookup failed")
)

// RemoteFailure is the outcome of an envelope with ok=false.
type RemoteFailure struct {
	Message string
}

func (e *RemoteFailure) Error() string {
	if e.Message == "" {
		return ErrRemoteFailure.Error()
	}
	return ErrRemoteFailure.Error() + ": " + e.Message
}

func (e *RemoteFailure) Unwrap() error { return ErrRemoteFailure }

// Outcome resolves the envelope into either a receipt or a typed error:
// ok with data yields the receipt, ok without data yields ErrReceiptNotFound,
// and !ok yields a *RemoteFailure carrying the remote message (possibly empty).
func (e *LookupEnvelope) Outcome() (*Receipt, error) {
	if !e.OK {
		return nil, &RemoteFailure{Message: e.Error}
	}
	if e.Data == nil {
		return nil, ErrReceiptNotFound
	}
	return e.Data, nil
}
