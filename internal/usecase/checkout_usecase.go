package usecase

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"storefront/internal/infra/fulfillment"
	"storefront/internal/infra/payment"
	"storefront/internal/validator"
)

const maxCheckoutItems = 50

type CheckoutUsecase struct {
	payments         PaymentGateway
	shipping         *ShippingUsecase
	reconcile        *ReconcileUsecase
	siteURL          string
	currency         string
	allowedCountries []string
	log              *slog.Logger
}

type CheckoutDeps struct {
	Payments         PaymentGateway
	Shipping         *ShippingUsecase
	Reconcile        *ReconcileUsecase
	SiteURL          string
	Currency         string
	AllowedCountries []string
	Logger           *slog.Logger
}

func NewCheckoutUsecase(d CheckoutDeps) *CheckoutUsecase {
	u := &CheckoutUsecase{
		payments:         d.Payments,
		shipping:         d.Shipping,
		reconcile:        d.Reconcile,
		siteURL:          strings.TrimRight(d.SiteURL, "/"),
		currency:         strings.ToUpper(d.Currency),
		allowedCountries: d.AllowedCountries,
		log:              d.Logger,
	}
	if u.currency == "" {
		u.currency = "USD"
	}
	if u.log == nil {
		u.log = slog.Default()
	}
	return u
}

type CheckoutItemInput struct {
	VariantID   int64
	Name        string
	Description string
	UnitAmount  int64
	Quantity    int64
}

type CheckoutInput struct {
	Items       []CheckoutItemInput
	Email       string
	Destination *fulfillment.Recipient // 分かっていれば送料を見積もる
}

func (in CheckoutInput) validate() error {
	if len(in.Items) == 0 {
		return NewHTTPError(http.StatusBadRequest, "items are required")
	}
	if len(in.Items) > maxCheckoutItems {
		return NewHTTPError(http.StatusBadRequest, "too many items")
	}
	for _, it := range in.Items {
		if it.VariantID <= 0 {
			return NewHTTPError(http.StatusBadRequest, "invalid variant_id")
		}
		if strings.TrimSpace(it.Name) == "" {
			return NewHTTPError(http.StatusBadRequest, "name required")
		}
		if it.UnitAmount <= 0 {
			return NewHTTPError(http.StatusBadRequest, "unit_amount must be > 0")
		}
		if it.Quantity <= 0 {
			return NewHTTPError(http.StatusBadRequest, "quantity must be > 0")
		}
	}
	if email := strings.TrimSpace(in.Email); email != "" && !validator.IsEmail(email) {
		return NewHTTPError(http.StatusBadRequest, "invalid email")
	}
	return nil
}

// StartCheckoutは決済ページのsessionを作ってURLを返す。
// カートはメタデータに入れて、決済完了のwebhookで取り出す。
func (u *CheckoutUsecase) StartCheckout(ctx context.Context, in CheckoutInput) (payment.CheckoutSession, error) {
	if err := in.validate(); err != nil {
		return payment.CheckoutSession{}, err
	}

	cart := make([]payment.CartItem, 0, len(in.Items))
	quoteItems := make([]fulfillment.Item, 0, len(in.Items))
	for _, it := range in.Items {
		cart = append(cart, payment.CartItem{
			VariantID:   it.VariantID,
			Name:        strings.TrimSpace(it.Name),
			Description: it.Description,
			UnitAmount:  it.UnitAmount,
			Quantity:    it.Quantity,
		})
		quoteItems = append(quoteItems, fulfillment.Item{SyncVariantID: it.VariantID, Quantity: it.Quantity})
	}

	md, err := payment.EncodeCart(cart)
	if err != nil {
		return payment.CheckoutSession{}, NewHTTPError(http.StatusBadRequest, "cart too large")
	}

	options := []payment.ShippingOption{DefaultShippingOption}
	if in.Destination != nil && in.Destination.CountryCode != "" {
		options = u.shipping.Quote(ctx, *in.Destination, quoteItems)
	}

	s, err := u.payments.CreateCheckoutSession(ctx, payment.CheckoutSessionInput{
		Items:            cart,
		Currency:         u.currency,
		CustomerEmail:    strings.TrimSpace(in.Email),
		SuccessURL:       u.siteURL + "/checkout/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:        u.siteURL + "/cart",
		Metadata:         md,
		CollectShipping:  true,
		AllowedCountries: u.allowedCountries,
		ShippingOptions:  options,
	})
	if err != nil {
		u.log.ErrorContext(ctx, "create checkout session failed", "error", err)
		return payment.CheckoutSession{}, providerError(err)
	}

	u.log.InfoContext(ctx, "checkout session created", "session_id", s.ID, "items", len(cart))
	return s, nil
}

// HandlePaymentWebhookはStripeのwebhookを検証して、決済完了だけ注文にする。
func (u *CheckoutUsecase) HandlePaymentWebhook(ctx context.Context, body []byte, signature string) error {
	ev, err := u.payments.VerifyWebhook(body, signature)
	if errors.Is(err, payment.ErrWebhookNotConfigured) {
		u.log.ErrorContext(ctx, "payment webhook secret not set")
		return NewHTTPError(http.StatusInternalServerError, "webhook is not configured")
	}
	if errors.Is(err, payment.ErrInvalidCheckout) {
		//再送しても読めないので受け取って捨てる
		u.log.ErrorContext(ctx, "payment webhook has unreadable checkout", "error", err)
		return nil
	}
	if err != nil {
		u.log.WarnContext(ctx, "payment webhook rejected", "error", err)
		return NewHTTPError(http.StatusBadRequest, "webhook signature verification failed")
	}

	log := u.log.With("event_id", ev.ID, "type", ev.Type)
	if ev.Type != payment.EventCheckoutCompleted || ev.Completed == nil {
		log.DebugContext(ctx, "payment event ignored")
		return nil
	}

	c := *ev.Completed
	if c.PaymentStatus == "unpaid" {
		//後払い系は未入金のまま届くので注文にしない
		log.InfoContext(ctx, "checkout completed without payment, skipping", "session_id", c.SessionID)
		return nil
	}

	if _, err := u.reconcile.HandleCheckoutCompleted(ctx, c); err != nil {
		if he, ok := AsHTTPError(err); ok && he.Status < http.StatusInternalServerError {
			//再送しても直らないので受け取る
			log.WarnContext(ctx, "checkout not recorded", "session_id", c.SessionID, "reason", he.Message)
			return nil
		}
		return err
	}
	return nil
}
