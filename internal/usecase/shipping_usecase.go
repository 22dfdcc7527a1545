package usecase

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"storefront/internal/infra/fulfillment"
	"storefront/internal/infra/payment"
	"storefront/internal/validator"

	"github.com/shopspring/decimal"
)

// Printfulが答えない時の定額送料
var DefaultShippingOption = payment.ShippingOption{
	ID:       "STANDARD",
	Name:     "Standard Shipping",
	Amount:   499,
	Currency: "USD",
	MinDays:  5,
	MaxDays:  10,
}

type ShippingUsecase struct {
	fulfillment FulfillmentGateway
	currency    string
	log         *slog.Logger
}

func NewShippingUsecase(f FulfillmentGateway, currency string, logger *slog.Logger) *ShippingUsecase {
	if currency == "" {
		currency = "USD"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ShippingUsecase{fulfillment: f, currency: strings.ToUpper(currency), log: logger}
}

type ShippingQuoteInput struct {
	Recipient fulfillment.Recipient
	Items     []fulfillment.Item
}

func (in ShippingQuoteInput) validate() error {
	r := in.Recipient
	if !validator.IsCountryCode(strings.ToUpper(r.CountryCode)) {
		return NewHTTPError(http.StatusBadRequest, "invalid country_code")
	}
	if strings.TrimSpace(r.Address1) == "" || strings.TrimSpace(r.Zip) == "" {
		return NewHTTPError(http.StatusBadRequest, "address1 and zip are required")
	}
	if len(in.Items) == 0 {
		return NewHTTPError(http.StatusBadRequest, "items are required")
	}
	for _, it := range in.Items {
		if it.SyncVariantID <= 0 || it.Quantity <= 0 {
			return NewHTTPError(http.StatusBadRequest, "invalid item")
		}
	}
	return nil
}

// QuoteForRequestは送料計算エンドポイント用（入力チェックあり）
func (u *ShippingUsecase) QuoteForRequest(ctx context.Context, in ShippingQuoteInput) ([]payment.ShippingOption, error) {
	in.Recipient.CountryCode = strings.ToUpper(in.Recipient.CountryCode)
	if err := in.validate(); err != nil {
		return nil, err
	}
	return u.Quote(ctx, in.Recipient, in.Items), nil
}

// Quoteは送料を返す。失敗時は定額1件にする（checkoutを止めない）。
func (u *ShippingUsecase) Quote(ctx context.Context, recipient fulfillment.Recipient, items []fulfillment.Item) []payment.ShippingOption {
	rates, err := u.fulfillment.GetShippingRates(ctx, recipient, items, u.currency)
	if err != nil {
		u.log.WarnContext(ctx, "shipping rate lookup failed, using flat rate", "country", recipient.CountryCode, "error", err)
		return []payment.ShippingOption{DefaultShippingOption}
	}
	if len(rates) == 0 {
		return []payment.ShippingOption{DefaultShippingOption}
	}

	opts := make([]payment.ShippingOption, 0, len(rates))
	for _, r := range rates {
		opts = append(opts, toShippingOption(r))
	}
	return opts
}

// 金額は rate×100 を四捨五入した最小通貨単位
func toShippingOption(r fulfillment.ShippingRate) payment.ShippingOption {
	return payment.ShippingOption{
		ID:       r.ID,
		Name:     r.Name,
		Amount:   r.Rate.Mul(decimal.NewFromInt(100)).Round(0).IntPart(),
		Currency: r.Currency,
		MinDays:  r.MinDeliveryDays,
		MaxDays:  r.MaxDeliveryDays,
	}
}
