package handler

import (
	"errors"
	"io"
	"net/http"

	"storefront/internal/infra/fulfillment"
	"storefront/internal/infra/payment"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// webhookのbody上限
const maxWebhookBody = 1 << 20

type WebhookHandler struct {
	reconcile *usecase.ReconcileUsecase
	checkout  *usecase.CheckoutUsecase
}

func NewWebhookHandler(reconcile *usecase.ReconcileUsecase, checkout *usecase.CheckoutUsecase) *WebhookHandler {
	return &WebhookHandler{reconcile: reconcile, checkout: checkout}
}

type ReceivedResponse struct {
	Received bool `json:"received"`
}

func (h *WebhookHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/webhooks")
	g.POST("/printful", h.printful)
	g.POST("/stripe", h.stripe)
}

var errBodyTooLarge = errors.New("body too large")

// 署名はバイト列そのものに対して計算するので、Bindせず生のbodyを読む
func readRawBody(c echo.Context) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody+1))
	if err != nil {
		return nil, err
	}
	if len(body) > maxWebhookBody {
		return nil, errBodyTooLarge
	}
	return body, nil
}

func writeBodyError(c echo.Context, err error) error {
	if errors.Is(err, errBodyTooLarge) {
		return c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: "body too large"})
	}
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
}

func (h *WebhookHandler) printful(c echo.Context) error {
	body, err := readRawBody(c)
	if err != nil {
		return writeBodyError(c, err)
	}

	ack, err := h.reconcile.HandleFulfillmentWebhook(
		c.Request().Context(),
		body,
		c.Request().Header.Get(fulfillment.SignatureHeader),
	)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, ack)
}

func (h *WebhookHandler) stripe(c echo.Context) error {
	body, err := readRawBody(c)
	if err != nil {
		return writeBodyError(c, err)
	}

	if err := h.checkout.HandlePaymentWebhook(
		c.Request().Context(),
		body,
		c.Request().Header.Get(payment.SignatureHeader),
	); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, ReceivedResponse{Received: true})
}
