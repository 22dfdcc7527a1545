package model

// 追跡情報。プロバイダが返さなければnilのまま。
type Tracking struct {
	Number  *string
	URL     *string
	Carrier *string
}

func (t Tracking) Empty() bool {
	return t.Number == nil && t.URL == nil && t.Carrier == nil
}

type ShipmentItem struct {
	Name     string
	Quantity int64
}

// ShipmentEventはwebhookかpollで届いた発送シグナル。保存しない。
type ShipmentEvent struct {
	FulfillmentOrderID string
	ExternalID         string
	ProviderStatus     string

	Tracking Tracking

	RecipientEmail string
	RecipientName  string
	Items          []ShipmentItem
}
