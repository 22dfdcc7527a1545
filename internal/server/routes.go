package server

import (
	"storefront/internal/handler"

	"github.com/labstack/echo/v4"
)

// Handlersはルート登録に必要なものをまとめたもの
type Handlers struct {
	Webhook      *handler.WebhookHandler
	Reconcile    *handler.ReconcileHandler
	Checkout     *handler.CheckoutHandler
	Notification *handler.NotificationHandler
	Product      *handler.ProductHandler
	AdminOrder   *handler.AdminOrderHandler
	JWTSecret    string
}

func RegisterRoutes(e *echo.Echo, h Handlers) {
	handler.RegisterHealth(e)

	h.Webhook.RegisterRoutes(e)
	h.Reconcile.RegisterRoutes(e)
	h.Checkout.RegisterRoutes(e)
	h.Product.RegisterRoutes(e)

	//ここから管理者用
	h.Notification.RegisterRoutes(e, h.JWTSecret)
	h.AdminOrder.RegisterRoutes(e, h.JWTSecret)
}
