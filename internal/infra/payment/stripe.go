package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/domain/model"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/webhook"
)

// webhookの署名ヘッダ
const SignatureHeader = "Stripe-Signature"

var (
	ErrNotConfigured         = errors.New("stripe secret key is not configured")
	ErrWebhookNotConfigured  = errors.New("stripe webhook secret is not configured")
	ErrSignatureVerification = errors.New("stripe webhook signature verification failed")
	// 署名は正しいがカートのメタデータが読めない
	ErrInvalidCheckout = errors.New("stripe checkout session is unreadable")
)

// checkout sessionを作る部分（テストで差し替える）
type SessionCreator interface {
	New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

type StripeGateway struct {
	sessions      SessionCreator
	webhookSecret string
}

// secretKeyが空ならCreateCheckoutSessionはErrNotConfiguredを返す
func NewStripeGateway(secretKey string, webhookSecret string) *StripeGateway {
	g := &StripeGateway{webhookSecret: webhookSecret}
	if secretKey != "" {
		g.sessions = &session.Client{B: stripe.GetBackend(stripe.APIBackend), Key: secretKey}
	}
	return g
}

func NewStripeGatewayWithSessions(sessions SessionCreator, webhookSecret string) *StripeGateway {
	return &StripeGateway{sessions: sessions, webhookSecret: webhookSecret}
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, in CheckoutSessionInput) (CheckoutSession, error) {
	if g.sessions == nil {
		return CheckoutSession{}, ErrNotConfigured
	}

	currency := strings.ToLower(in.Currency)
	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(in.SuccessURL),
		CancelURL:  stripe.String(in.CancelURL),
	}
	params.Context = ctx

	for _, it := range in.Items {
		product := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripe.String(it.Name),
		}
		if it.Description != "" {
			product.Description = stripe.String(it.Description)
		}
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(currency),
				ProductData: product,
				UnitAmount:  stripe.Int64(it.UnitAmount),
			},
			Quantity: stripe.Int64(it.Quantity),
		})
	}

	if in.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(in.CustomerEmail)
	}
	for k, v := range in.Metadata {
		params.AddMetadata(k, v)
	}

	if in.CollectShipping {
		params.ShippingAddressCollection = &stripe.CheckoutSessionShippingAddressCollectionParams{
			AllowedCountries: stripe.StringSlice(in.AllowedCountries),
		}
	}
	for _, opt := range in.ShippingOptions {
		params.ShippingOptions = append(params.ShippingOptions, shippingOptionParams(opt))
	}

	s, err := g.sessions.New(params)
	if err != nil {
		return CheckoutSession{}, fmt.Errorf("stripe: create checkout session: %w", err)
	}
	return CheckoutSession{ID: s.ID, URL: s.URL}, nil
}

func shippingOptionParams(opt ShippingOption) *stripe.CheckoutSessionShippingOptionParams {
	data := &stripe.CheckoutSessionShippingOptionShippingRateDataParams{
		Type:        stripe.String("fixed_amount"),
		DisplayName: stripe.String(opt.Name),
		FixedAmount: &stripe.CheckoutSessionShippingOptionShippingRateDataFixedAmountParams{
			Amount:   stripe.Int64(opt.Amount),
			Currency: stripe.String(strings.ToLower(opt.Currency)),
		},
	}
	if opt.MinDays > 0 || opt.MaxDays > 0 {
		est := &stripe.CheckoutSessionShippingOptionShippingRateDataDeliveryEstimateParams{}
		if opt.MinDays > 0 {
			est.Minimum = &stripe.CheckoutSessionShippingOptionShippingRateDataDeliveryEstimateMinimumParams{
				Unit:  stripe.String("business_day"),
				Value: stripe.Int64(int64(opt.MinDays)),
			}
		}
		if opt.MaxDays > 0 {
			est.Maximum = &stripe.CheckoutSessionShippingOptionShippingRateDataDeliveryEstimateMaximumParams{
				Unit:  stripe.String("business_day"),
				Value: stripe.Int64(int64(opt.MaxDays)),
			}
		}
		data.DeliveryEstimate = est
	}
	return &stripe.CheckoutSessionShippingOptionParams{ShippingRateData: data}
}

// VerifyWebhookはSDKの署名検証を通してイベントを返す
func (g *StripeGateway) VerifyWebhook(body []byte, signature string) (PaymentEvent, error) {
	if g.webhookSecret == "" {
		return PaymentEvent{}, ErrWebhookNotConfigured
	}

	ev, err := webhook.ConstructEventWithOptions(body, signature, g.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return PaymentEvent{}, fmt.Errorf("%w: %v", ErrSignatureVerification, err)
	}

	out := PaymentEvent{ID: ev.ID, Type: string(ev.Type)}
	if out.Type != EventCheckoutCompleted || ev.Data == nil {
		return out, nil
	}

	completed, err := parseCompletedCheckout(ev.Data.Raw)
	if err != nil {
		return PaymentEvent{}, err
	}
	out.Completed = &completed
	return out, nil
}

// --- checkout.session.completed のdata.object ---

type rawAddress struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type rawShipping struct {
	Name    string     `json:"name"`
	Phone   string     `json:"phone"`
	Address rawAddress `json:"address"`
}

type rawSession struct {
	ID              string            `json:"id"`
	AmountTotal     int64             `json:"amount_total"`
	Currency        string            `json:"currency"`
	PaymentStatus   string            `json:"payment_status"`
	Metadata        map[string]string `json:"metadata"`
	CustomerEmail   string            `json:"customer_email"`
	CustomerDetails *struct {
		Email string `json:"email"`
		Name  string `json:"name"`
		Phone string `json:"phone"`
	} `json:"customer_details"`
	ShippingDetails      *rawShipping `json:"shipping_details"`
	CollectedInformation *struct {
		ShippingDetails *rawShipping `json:"shipping_details"`
	} `json:"collected_information"`
}

func parseCompletedCheckout(raw json.RawMessage) (CompletedCheckout, error) {
	var s rawSession
	if err := json.Unmarshal(raw, &s); err != nil {
		return CompletedCheckout{}, fmt.Errorf("%w: %v", ErrInvalidCheckout, err)
	}

	items, err := DecodeCart(s.Metadata)
	if err != nil {
		return CompletedCheckout{}, fmt.Errorf("%w: session %s: %v", ErrInvalidCheckout, s.ID, err)
	}

	out := CompletedCheckout{
		SessionID:     s.ID,
		PaymentStatus: s.PaymentStatus,
		Email:         s.CustomerEmail,
		AmountTotal:   s.AmountTotal,
		Currency:      strings.ToUpper(s.Currency),
		Items:         items,
		Metadata:      s.Metadata,
	}

	phone := ""
	if s.CustomerDetails != nil {
		if s.CustomerDetails.Email != "" {
			out.Email = s.CustomerDetails.Email
		}
		out.Name = s.CustomerDetails.Name
		phone = s.CustomerDetails.Phone
	}

	//API versionによって場所が違う
	ship := s.ShippingDetails
	if ship == nil && s.CollectedInformation != nil {
		ship = s.CollectedInformation.ShippingDetails
	}
	if ship != nil {
		if ship.Phone != "" {
			phone = ship.Phone
		}
		out.Shipping = model.ShippingAddress{
			Name:        ship.Name,
			Address1:    ship.Address.Line1,
			Address2:    ship.Address.Line2,
			City:        ship.Address.City,
			StateCode:   ship.Address.State,
			CountryCode: ship.Address.Country,
			Zip:         ship.Address.PostalCode,
			Phone:       phone,
		}
		if out.Name == "" {
			out.Name = ship.Name
		}
	}
	return out, nil
}
