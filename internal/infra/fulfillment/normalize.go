package fulfillment

import (
	"bytes"
	"encoding/json"
	"strings"

	"storefront/internal/domain/model"
)

// flexStringは数値でも文字列でも受ける（Printfulのidは数値、external_idは文字列）
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// RawShipmentはwebhookとGET /ordersで名前が揺れる項目をまとめて受ける
type RawShipment struct {
	TrackingNumber    string `json:"tracking_number"`
	TrackingNumberAlt string `json:"trackingNumber"`
	TrackingCode      string `json:"tracking_code"`

	TrackingURL    string `json:"tracking_url"`
	TrackingURLAlt string `json:"trackingUrl"`
	TrackingLink   string `json:"tracking_link"`

	Carrier     string `json:"carrier"`
	CarrierName string `json:"carrier_name"`
	Service     string `json:"service"`
}

type RawRecipient struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type RawItem struct {
	Name     string `json:"name"`
	Quantity int64  `json:"quantity"`
}

type RawOrder struct {
	ID         flexString    `json:"id"`
	ExternalID flexString    `json:"external_id"`
	Status     string        `json:"status"`
	Recipient  RawRecipient  `json:"recipient"`
	Items      []RawItem     `json:"items"`
	Shipments  []RawShipment `json:"shipments"`
}

// NormalizeShipmentはプロバイダの形をShipmentEventにする。
// 揺れの吸収はここだけでやる。shipmentがnilなら注文の最後のshipmentを使う。
func NormalizeShipment(o RawOrder, shipment *RawShipment) model.ShipmentEvent {
	ev := model.ShipmentEvent{
		FulfillmentOrderID: string(o.ID),
		ExternalID:         string(o.ExternalID),
		ProviderStatus:     o.Status,
		RecipientEmail:     strings.TrimSpace(o.Recipient.Email),
		RecipientName:      strings.TrimSpace(o.Recipient.Name),
	}
	for _, it := range o.Items {
		ev.Items = append(ev.Items, model.ShipmentItem{Name: it.Name, Quantity: it.Quantity})
	}

	s := shipment
	if s == nil && len(o.Shipments) > 0 {
		//複数あれば最新（最後）が正
		s = &o.Shipments[len(o.Shipments)-1]
	}
	if s != nil {
		ev.Tracking = model.Tracking{
			Number:  firstNonEmpty(s.TrackingNumber, s.TrackingNumberAlt, s.TrackingCode),
			URL:     firstNonEmpty(s.TrackingURL, s.TrackingURLAlt, s.TrackingLink),
			Carrier: firstNonEmpty(s.Carrier, s.CarrierName, s.Service),
		}
	}
	return ev
}

func firstNonEmpty(vals ...string) *string {
	for _, v := range vals {
		v = strings.TrimSpace(v)
		if v != "" {
			return &v
		}
	}
	return nil
}
