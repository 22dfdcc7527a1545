package handler

import (
	"net/http"

	"storefront/internal/infra/fulfillment"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

type CheckoutHandler struct {
	checkout *usecase.CheckoutUsecase
	shipping *usecase.ShippingUsecase
}

func NewCheckoutHandler(checkout *usecase.CheckoutUsecase, shipping *usecase.ShippingUsecase) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout, shipping: shipping}
}

type CheckoutItemRequest struct {
	VariantID   int64  `json:"variant_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	UnitAmount  int64  `json:"unit_amount"`
	Quantity    int64  `json:"quantity"`
}

type CheckoutRequest struct {
	Items       []CheckoutItemRequest  `json:"items"`
	Email       string                 `json:"email"`
	Destination *fulfillment.Recipient `json:"destination"`
}

type ShippingRateItemRequest struct {
	VariantID int64 `json:"variant_id"`
	Quantity  int64 `json:"quantity"`
}

type ShippingRatesRequest struct {
	Recipient fulfillment.Recipient     `json:"recipient"`
	Items     []ShippingRateItemRequest `json:"items"`
}

func (h *CheckoutHandler) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api")
	api.POST("/checkout", h.create)
	api.POST("/shipping-rates", h.rates)
}

func (h *CheckoutHandler) create(c echo.Context) error {
	var req CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	items := make([]usecase.CheckoutItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, usecase.CheckoutItemInput{
			VariantID:   it.VariantID,
			Name:        it.Name,
			Description: it.Description,
			UnitAmount:  it.UnitAmount,
			Quantity:    it.Quantity,
		})
	}

	s, err := h.checkout.StartCheckout(c.Request().Context(), usecase.CheckoutInput{
		Items:       items,
		Email:       req.Email,
		Destination: req.Destination,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}

func (h *CheckoutHandler) rates(c echo.Context) error {
	var req ShippingRatesRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	items := make([]fulfillment.Item, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, fulfillment.Item{SyncVariantID: it.VariantID, Quantity: it.Quantity})
	}

	opts, err := h.shipping.QuoteForRequest(c.Request().Context(), usecase.ShippingQuoteInput{
		Recipient: req.Recipient,
		Items:     items,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"shipping_options": opts})
}
