package fulfillment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

var ErrNotConfigured = errors.New("printful api key is not configured")

// PrintfulClientはPrintfulのREST APIを包む
type PrintfulClient struct {
	baseURL string
	apiKey  string
	storeID string
	http    *http.Client
	limiter *rate.Limiter
}

type Option func(*PrintfulClient)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *PrintfulClient) { c.http = hc }
}

func WithStoreID(id string) Option {
	return func(c *PrintfulClient) { c.storeID = id }
}

// rpsは秒間リクエスト数の上限
func NewPrintfulClient(baseURL string, apiKey string, rps float64, opts ...Option) *PrintfulClient {
	if rps <= 0 {
		rps = 2
	}
	c := &PrintfulClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    http.DefaultClient,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// CreateOrderはPrintfulに注文を作り、注文IDを返す
func (c *PrintfulClient) CreateOrder(ctx context.Context, in CreateOrderInput) (string, error) {
	body := orderRequest{
		ExternalID: in.ExternalID,
		Recipient:  in.Recipient,
		Items:      in.Items,
	}
	if in.RetailCosts != (RetailCosts{}) {
		rc := in.RetailCosts
		body.RetailCosts = &rc
	}

	path := "/orders"
	if in.Confirm {
		path += "?confirm=true"
	}

	var out RawOrder
	if err := c.do(ctx, http.MethodPost, path, body, &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", &UpstreamError{Status: http.StatusBadGateway, Message: "order id missing in response"}
	}
	return string(out.ID), nil
}

// GetOrderStatusは注文の状態と最新のshipmentを返す。
// refはPrintfulの注文IDか "@<external_id>"。
func (c *PrintfulClient) GetOrderStatus(ctx context.Context, ref string) (OrderStatus, error) {
	var o RawOrder
	if err := c.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(ref), nil, &o); err != nil {
		return OrderStatus{}, err
	}
	return OrderStatus{
		ID:         string(o.ID),
		ExternalID: string(o.ExternalID),
		Status:     o.Status,
		Event:      NormalizeShipment(o, nil),
	}, nil
}

// GetShippingRatesは配送方法ごとの料金を返す
func (c *PrintfulClient) GetShippingRates(ctx context.Context, recipient Recipient, items []Item, currency string) ([]ShippingRate, error) {
	req := rateRequest{Recipient: recipient, Currency: strings.ToUpper(currency)}
	for _, it := range items {
		req.Items = append(req.Items, rateItem{SyncVariantID: it.SyncVariantID, Quantity: it.Quantity})
	}

	var raw []rateResult
	if err := c.do(ctx, http.MethodPost, "/shipping/rates", req, &raw); err != nil {
		return nil, err
	}

	rates := make([]ShippingRate, 0, len(raw))
	for _, r := range raw {
		d, err := decimal.NewFromString(r.Rate)
		if err != nil {
			return nil, fmt.Errorf("printful: invalid rate %q for %s: %w", r.Rate, r.ID, err)
		}
		rates = append(rates, ShippingRate{
			ID:              r.ID,
			Name:            r.Name,
			Rate:            d,
			Currency:        strings.ToUpper(r.Currency),
			MinDeliveryDays: r.MinDeliveryDays,
			MaxDeliveryDays: r.MaxDeliveryDays,
		})
	}
	return rates, nil
}

// ListStoreProductsはストアの商品一覧
func (c *PrintfulClient) ListStoreProducts(ctx context.Context) ([]StoreProduct, error) {
	products := []StoreProduct{}
	if err := c.do(ctx, http.MethodGet, "/store/products", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *PrintfulClient) do(ctx context.Context, method string, path string, in any, out any) error {
	if c.apiKey == "" {
		return ErrNotConfigured
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var reqBody io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("printful: encode request: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.storeID != "" {
		req.Header.Set("X-PF-Store-Id", c.storeID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("printful: %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("printful: read body: %w", err)
	}

	var env envelope
	decodeErr := json.Unmarshal(data, &env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &UpstreamError{Status: resp.StatusCode, Message: upstreamMessage(env, decodeErr, data)}
	}
	if decodeErr != nil {
		return fmt.Errorf("printful: decode response: %w", decodeErr)
	}
	if out == nil || len(env.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return fmt.Errorf("printful: decode result: %w", err)
	}
	return nil
}

const maxUpstreamMessage = 300

// プロバイダのメッセージを優先して拾う
func upstreamMessage(env envelope, decodeErr error, raw []byte) string {
	if decodeErr == nil {
		if env.Error != nil && env.Error.Message != "" {
			return env.Error.Message
		}
		var s string
		if err := json.Unmarshal(env.Result, &s); err == nil && s != "" {
			return s
		}
	}
	msg := strings.TrimSpace(string(raw))
	if len(msg) > maxUpstreamMessage {
		end := maxUpstreamMessage
		for end > 0 && !utf8.RuneStart(msg[end]) {
			end--
		}
		msg = msg[:end]
	}
	if msg == "" {
		return "empty response"
	}
	return msg
}
