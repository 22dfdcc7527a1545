package payment

import (
	"storefront/internal/domain/model"
)

// カートの1行。checkout作成時にメタデータへ埋め込み、決済完了時に取り出す。
type CartItem struct {
	VariantID   int64  `json:"v"`
	Name        string `json:"n"`
	Description string `json:"-"`
	UnitAmount  int64  `json:"p"` // 最小通貨単位
	Quantity    int64  `json:"q"`
}

type ShippingOption struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Amount   int64  `json:"amount"` // 最小通貨単位
	Currency string `json:"currency"`
	MinDays  int    `json:"min_delivery_days"`
	MaxDays  int    `json:"max_delivery_days"`
}

type CheckoutSessionInput struct {
	Items            []CartItem
	Currency         string
	CustomerEmail    string
	SuccessURL       string
	CancelURL        string
	Metadata         map[string]string
	CollectShipping  bool
	AllowedCountries []string
	ShippingOptions  []ShippingOption
}

type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

const EventCheckoutCompleted = "checkout.session.completed"

// 検証済みの決済イベント
type PaymentEvent struct {
	ID        string
	Type      string
	Completed *CompletedCheckout // checkout.session.completedの時だけ
}

// 決済完了したcheckout session
type CompletedCheckout struct {
	SessionID     string
	PaymentStatus string
	Email         string
	Name          string
	AmountTotal   int64
	Currency      string
	Items         []CartItem
	Shipping      model.ShippingAddress
	Metadata      map[string]string
}
