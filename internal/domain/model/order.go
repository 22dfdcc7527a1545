package model

import (
	"errors"
	"time"
)

type OrderStatus string

const (
	OrderStatusCreated    OrderStatus = "created"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
)

// 後戻り・未知のステータスへの遷移
var ErrInvalidTransition = errors.New("invalid order status transition")

// 遷移の順番（大きいほど後）
func (s OrderStatus) rank() int {
	switch s {
	case OrderStatusCreated:
		return 1
	case OrderStatusProcessing:
		return 2
	case OrderStatusShipped:
		return 3
	default:
		return 0
	}
}

func (s OrderStatus) Valid() bool {
	return s.rank() > 0
}

// 未発送（pollの対象）
func PendingStatuses() []OrderStatus {
	return []OrderStatus{OrderStatusCreated, OrderStatusProcessing}
}

// 配送先（Printfulのrecipientと同じ項目）
type ShippingAddress struct {
	Name        string `gorm:"type:varchar(255)" json:"name"`
	Address1    string `gorm:"type:varchar(255)" json:"address1"`
	Address2    string `gorm:"type:varchar(255)" json:"address2,omitempty"`
	City        string `gorm:"type:varchar(120)" json:"city"`
	StateCode   string `gorm:"type:varchar(20)" json:"state_code,omitempty"`
	CountryCode string `gorm:"type:varchar(2)" json:"country_code"`
	Zip         string `gorm:"type:varchar(20)" json:"zip"`
	Phone       string `gorm:"type:varchar(40)" json:"phone,omitempty"`
}

type Order struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	PaymentSessionID      string  `gorm:"type:varchar(255);not null;uniqueIndex" json:"payment_session_id"`
	FulfillmentOrderID    *string `gorm:"type:varchar(64);index" json:"fulfillment_order_id,omitempty"`
	FulfillmentExternalID *string `gorm:"type:varchar(64);uniqueIndex" json:"fulfillment_external_id,omitempty"`

	CustomerEmail string `gorm:"type:varchar(255);not null" json:"customer_email"`
	CustomerName  string `gorm:"type:varchar(255)" json:"customer_name"`
	AmountTotal   int64  `gorm:"not null" json:"amount_total"`
	Currency      string `gorm:"type:varchar(10);not null" json:"currency"`

	Items    []OrderItem     `gorm:"foreignKey:OrderID" json:"items"`
	Shipping ShippingAddress `gorm:"embedded;embeddedPrefix:ship_" json:"shipping"`

	Status OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`

	//発送済みになった時だけ入る
	TrackingNumber *string `gorm:"type:varchar(255)" json:"tracking_number,omitempty"`
	TrackingURL    *string `gorm:"type:text" json:"tracking_url,omitempty"`
	Carrier        *string `gorm:"type:varchar(120)" json:"carrier,omitempty"`

	CreatedAt time.Time  `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"not null;autoUpdateTime" json:"updated_at"`
	ShippedAt *time.Time `json:"shipped_at,omitempty"`
}

// Advanceはステータスを前に進める。
// 同じステータスならfalse（何もしない）、後戻りはErrInvalidTransition。
// shippedへはMarkShippedを使う。
func (o *Order) Advance(next OrderStatus, now time.Time) (bool, error) {
	if !next.Valid() {
		return false, ErrInvalidTransition
	}
	if o.Status == next {
		return false, nil
	}
	if next.rank() < o.Status.rank() || next == OrderStatusShipped {
		return false, ErrInvalidTransition
	}
	o.Status = next
	o.UpdatedAt = now
	return true, nil
}

// MarkShippedは発送済みにして追跡情報を入れる。
// 既にshippedならfalse（冪等）。追跡情報がnilでも遷移はする。
func (o *Order) MarkShipped(t Tracking, now time.Time) bool {
	if o.Status == OrderStatusShipped {
		return false
	}
	shippedAt := now
	o.Status = OrderStatusShipped
	o.ShippedAt = &shippedAt
	o.TrackingNumber = t.Number
	o.TrackingURL = t.URL
	o.Carrier = t.Carrier
	o.UpdatedAt = now
	return true
}

// OrderNumberはメールなどに出す注文番号
func (o Order) OrderNumber() string {
	if o.FulfillmentExternalID != nil && *o.FulfillmentExternalID != "" {
		return *o.FulfillmentExternalID
	}
	return o.PaymentSessionID
}
