package fulfillment

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"

	"storefront/internal/domain/model"
)

// webhookの署名ヘッダ（生のbodyのHMAC-SHA256をhexにしたもの）
const SignatureHeader = "X-Printful-Signature"

const (
	EventPackageShipped = "package_shipped"
	EventOrderUpdated   = "order_updated"
	EventOrderCreated   = "order_created"
)

var (
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrMalformedPayload = errors.New("malformed webhook payload")
)

type WebhookEvent struct {
	Type  string
	Event model.ShipmentEvent
}

type rawWebhook struct {
	Type string `json:"type"`
	Data struct {
		Order    RawOrder     `json:"order"`
		Shipment *RawShipment `json:"shipment"`
	} `json:"data"`
}

func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignatureは署名ヘッダとbodyのHMACをバイト単位で比べる
func VerifySignature(body []byte, signature string, secret string) error {
	signature = strings.TrimSpace(signature)
	if signature == "" {
		return ErrInvalidSignature
	}
	expected := Sign(body, secret)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrInvalidSignature
	}
	return nil
}

// ParseWebhookはwebhookのbodyを読む。
// JSON文字列に包まれて二重エンコードされていることがあるので、その時は中身をもう一度読む。
func ParseWebhook(body []byte) (WebhookEvent, error) {
	body = bytes.TrimSpace(body)
	if len(body) > 0 && body[0] == '"' {
		var inner string
		if err := json.Unmarshal(body, &inner); err != nil {
			return WebhookEvent{}, ErrMalformedPayload
		}
		body = []byte(inner)
	}

	var w rawWebhook
	if err := json.Unmarshal(body, &w); err != nil {
		return WebhookEvent{}, ErrMalformedPayload
	}
	if w.Type == "" {
		return WebhookEvent{}, ErrMalformedPayload
	}

	return WebhookEvent{
		Type:  w.Type,
		Event: NormalizeShipment(w.Data.Order, w.Data.Shipment),
	}, nil
}
