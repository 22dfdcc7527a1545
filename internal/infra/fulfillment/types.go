package fulfillment

import (
	"encoding/json"
	"fmt"

	"storefront/internal/domain/model"

	"github.com/shopspring/decimal"
)

// Recipientは配送先（Printfulのrecipient）
type Recipient struct {
	Name        string `json:"name,omitempty"`
	Address1    string `json:"address1"`
	Address2    string `json:"address2,omitempty"`
	City        string `json:"city"`
	StateCode   string `json:"state_code,omitempty"`
	CountryCode string `json:"country_code"`
	Zip         string `json:"zip"`
	Phone       string `json:"phone,omitempty"`
	Email       string `json:"email,omitempty"`
}

func RecipientFromAddress(a model.ShippingAddress, email string) Recipient {
	return Recipient{
		Name:        a.Name,
		Address1:    a.Address1,
		Address2:    a.Address2,
		City:        a.City,
		StateCode:   a.StateCode,
		CountryCode: a.CountryCode,
		Zip:         a.Zip,
		Phone:       a.Phone,
		Email:       email,
	}
}

type Item struct {
	SyncVariantID int64  `json:"sync_variant_id,omitempty"`
	Quantity      int64  `json:"quantity"`
	RetailPrice   string `json:"retail_price,omitempty"` // "12.50"
	Name          string `json:"name,omitempty"`
}

type RetailCosts struct {
	Currency string `json:"currency,omitempty"`
	Subtotal string `json:"subtotal,omitempty"`
	Shipping string `json:"shipping,omitempty"`
	Tax      string `json:"tax,omitempty"`
}

type CreateOrderInput struct {
	ExternalID  string
	Recipient   Recipient
	Items       []Item
	RetailCosts RetailCosts
	Confirm     bool // trueなら即製作に回す
}

// 注文状態の照会結果
type OrderStatus struct {
	ID         string
	ExternalID string
	Status     string
	Event      model.ShipmentEvent
}

// 終端ステータス（発送済み）か
func (s OrderStatus) Shipped() bool {
	return s.Status == "fulfilled" || s.Status == "shipped"
}

// 製作中か
func (s OrderStatus) InProcess() bool {
	switch s.Status {
	case "inprocess", "pending", "onhold", "partial":
		return true
	}
	return false
}

type ShippingRate struct {
	ID              string
	Name            string
	Rate            decimal.Decimal
	Currency        string
	MinDeliveryDays int
	MaxDeliveryDays int
}

type StoreProduct struct {
	ID           int64  `json:"id"`
	ExternalID   string `json:"external_id"`
	Name         string `json:"name"`
	Variants     int    `json:"variants"`
	Synced       int    `json:"synced"`
	ThumbnailURL string `json:"thumbnail_url"`
	IsIgnored    bool   `json:"is_ignored"`
}

// UpstreamErrorはPrintfulが2xx以外を返した時のエラー
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("printful: %d: %s", e.Status, e.Message)
}

// --- wire形式 ---

type envelope struct {
	Code   int             `json:"code"`
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Reason  string `json:"reason"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

type orderRequest struct {
	ExternalID  string       `json:"external_id"`
	Recipient   Recipient    `json:"recipient"`
	Items       []Item       `json:"items"`
	RetailCosts *RetailCosts `json:"retail_costs,omitempty"`
}

type rateRequest struct {
	Recipient Recipient  `json:"recipient"`
	Items     []rateItem `json:"items"`
	Currency  string     `json:"currency,omitempty"`
}

type rateItem struct {
	SyncVariantID int64 `json:"sync_variant_id,omitempty"`
	Quantity      int64 `json:"quantity"`
}

type rateResult struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Rate            string `json:"rate"`
	Currency        string `json:"currency"`
	MinDeliveryDays int    `json:"minDeliveryDays"`
	MaxDeliveryDays int    `json:"maxDeliveryDays"`
}
