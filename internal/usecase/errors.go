package usecase

import (
	"errors"
	"fmt"
	"net/http"

	"storefront/internal/infra/fulfillment"
	"storefront/internal/infra/notify"
	"storefront/internal/infra/payment"
)

type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// 発送メールの宛先がイベントにも注文にもない
var ErrNoCustomerEmail = errors.New("no customer email for shipping notification")

// 外部サービスのエラーをHTTPErrorにする。
// 認証情報がない=500、プロバイダの失敗=502。
func providerError(err error) error {
	switch {
	case errors.Is(err, fulfillment.ErrNotConfigured):
		return NewHTTPError(http.StatusInternalServerError, "fulfillment provider is not configured")
	case errors.Is(err, payment.ErrNotConfigured):
		return NewHTTPError(http.StatusInternalServerError, "payment provider is not configured")
	case errors.Is(err, notify.ErrNotConfigured):
		return NewHTTPError(http.StatusInternalServerError, "mail provider is not configured")
	}

	var ue *fulfillment.UpstreamError
	if errors.As(err, &ue) {
		return NewHTTPError(http.StatusBadGateway, ue.Message)
	}
	var se *notify.SendError
	if errors.As(err, &se) {
		return NewHTTPError(http.StatusBadGateway, "failed to send notification")
	}
	return NewHTTPError(http.StatusBadGateway, "upstream error")
}
