package usecase

import (
	"context"
	"time"

	"storefront/internal/infra/fulfillment"
	"storefront/internal/infra/notify"
	"storefront/internal/infra/payment"
)

// Printful側
type FulfillmentGateway interface {
	CreateOrder(ctx context.Context, in fulfillment.CreateOrderInput) (string, error)
	GetOrderStatus(ctx context.Context, ref string) (fulfillment.OrderStatus, error)
	GetShippingRates(ctx context.Context, recipient fulfillment.Recipient, items []fulfillment.Item, currency string) ([]fulfillment.ShippingRate, error)
	ListStoreProducts(ctx context.Context) ([]fulfillment.StoreProduct, error)
}

// Stripe側
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, in payment.CheckoutSessionInput) (payment.CheckoutSession, error)
	VerifyWebhook(body []byte, signature string) (payment.PaymentEvent, error)
}

// SendGrid側
type NotificationDispatcher interface {
	SendShippingNotification(ctx context.Context, n notify.ShippingNotification) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID() string
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }
