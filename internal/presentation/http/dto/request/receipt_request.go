package request

// ReceiptRequest identifies a receipt by the reference code in the path.
type ReceiptRequest struct {
	RefCode string `uri:"refCode" binding:"required,max=128"`
}

// LocaleQuery selects the language of labels and messages.
type LocaleQuery struct {
	Lang string `form:"lang" binding:"omitempty,oneof=th en"`
}
