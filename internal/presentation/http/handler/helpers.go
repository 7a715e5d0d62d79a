package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"

	"github.com/sangkips/receipt-viewer/internal/domain/schema"
	"github.com/sangkips/receipt-viewer/internal/i18n"
	"github.com/sangkips/receipt-viewer/internal/infrastructure/receiptapi"
	"github.com/sangkips/receipt-viewer/internal/presentation/http/dto/request"
	"github.com/sangkips/receipt-viewer/pkg/apperror"
)

// GetLang picks the response language from ?lang=, then Accept-Language,
// then the configured default.
func GetLang(c *gin.Context, fallback language.Tag) language.Tag {
	var q request.LocaleQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		q.Lang = ""
	}
	return i18n.Match(fallback, q.Lang, c.GetHeader("Accept-Language"))
}

// MessageForError returns the localized message for a lookup failure.
// Remote failures show the store's own message when it sent one.
func MessageForError(tag language.Tag, err error) string {
	if errors.Is(err, receiptapi.ErrEmptyRefCode) {
		return i18n.T(tag, i18n.ErrEmptyRefCode)
	}
	var le *receiptapi.LookupError
	if !errors.As(err, &le) {
		return i18n.T(tag, i18n.ErrUnknown)
	}
	switch le.Kind {
	case receiptapi.KindConnection:
		return i18n.T(tag, i18n.ErrConnection)
	case receiptapi.KindMalformedResponse:
		return i18n.T(tag, i18n.ErrMalformed)
	case receiptapi.KindRemote:
		if le.Message != "" && le.Message != receiptapi.DefaultRemoteMessage {
			return le.Message
		}
		return i18n.T(tag, i18n.ErrRemote)
	case receiptapi.KindNotFound:
		return i18n.T(tag, i18n.ErrNotFound)
	default:
		return i18n.T(tag, i18n.ErrUnknown)
	}
}

// LookupAppError converts a lookup failure into an AppError with a localized message.
func LookupAppError(tag language.Tag, err error) *apperror.AppError {
	msg := MessageForError(tag, err)

	if errors.Is(err, receiptapi.ErrEmptyRefCode) {
		return apperror.NewBadRequestError(msg)
	}

	var le *receiptapi.LookupError
	if !errors.As(err, &le) {
		return apperror.NewAppError(http.StatusInternalServerError, msg)
	}

	switch le.Kind {
	case receiptapi.KindNotFound:
		return apperror.NewAppError(http.StatusNotFound, msg)
	case receiptapi.KindRemote:
		return apperror.NewAppError(http.StatusUnprocessableEntity, msg)
	case receiptapi.KindMalformedResponse:
		var ve *schema.ValidationError
		if errors.As(err, &ve) {
			return apperror.NewBadGatewayError(msg, ve.Fields...)
		}
		return apperror.NewBadGatewayError(msg)
	case receiptapi.KindConnection:
		if le.StatusCode != 0 {
			return apperror.NewBadGatewayError(msg, apperror.FieldError{
				Field:   "upstream_status",
				Message: strconv.Itoa(le.StatusCode),
			})
		}
		return apperror.NewBadGatewayError(msg)
	default:
		return apperror.NewAppError(http.StatusInternalServerError, msg)
	}
}
