package usecase_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/infra/fulfillment"
	"storefront/internal/infra/notify"
	"storefront/internal/infra/payment"
	repo "storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// Repository mocks
// =====================

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) Create(ctx context.Context, order *model.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *OrderRepoMock) FindByPaymentSessionID(ctx context.Context, sessionID string) (model.Order, bool, error) {
	args := m.Called(ctx, sessionID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Bool(1), args.Error(2)
}

func (m *OrderRepoMock) FindByExternalID(ctx context.Context, externalID string) (model.Order, error) {
	args := m.Called(ctx, externalID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) FindByFulfillmentOrderID(ctx context.Context, id string) (model.Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) ListPending(ctx context.Context) ([]model.Order, error) {
	args := m.Called(ctx)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Error(1)
}

func (m *OrderRepoMock) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	args := m.Called(ctx, f)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Get(1).(int64), args.Error(2)
}

func (m *OrderRepoMock) UpdateStatus(ctx context.Context, orderID int64, from model.OrderStatus, to model.OrderStatus) (bool, error) {
	args := m.Called(ctx, orderID, from, to)
	return args.Bool(0), args.Error(1)
}

func (m *OrderRepoMock) MarkShipped(ctx context.Context, orderID int64, u repo.ShipmentUpdate) (bool, error) {
	args := m.Called(ctx, orderID, u)
	return args.Bool(0), args.Error(1)
}

type OrderItemRepoMock struct{ mock.Mock }

func (m *OrderItemRepoMock) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	args := m.Called(ctx, orderID, items)
	return args.Error(0)
}

func (m *OrderItemRepoMock) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	args := m.Called(ctx, orderID)
	items, _ := args.Get(0).([]model.OrderItem)
	return items, args.Error(1)
}

type AuditRepoMock struct{ mock.Mock }

func (m *AuditRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *AuditRepoMock) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	args := m.Called(ctx, filter)
	logs, _ := args.Get(0).([]model.AuditLog)
	return logs, args.Error(1)
}

// TxManagerMock は WithinTx の中で渡す repos を固定して unit テストを回す
type TxManagerMock struct {
	mock.Mock
	Repos repo.TxRepos
}

func (m *TxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	m.Called(ctx)
	return fn(m.Repos)
}

type TxReposMock struct {
	orders     repo.OrderRepository
	orderItems repo.OrderItemRepository
	auditLogs  repo.AuditLogRepository
}

func (r *TxReposMock) Orders() repo.OrderRepository         { return r.orders }
func (r *TxReposMock) OrderItems() repo.OrderItemRepository { return r.orderItems }
func (r *TxReposMock) AuditLogs() repo.AuditLogRepository   { return r.auditLogs }

// =====================
// Gateway mocks
// =====================

type FulfillmentMock struct{ mock.Mock }

func (m *FulfillmentMock) CreateOrder(ctx context.Context, in fulfillment.CreateOrderInput) (string, error) {
	args := m.Called(ctx, in)
	return args.String(0), args.Error(1)
}

func (m *FulfillmentMock) GetOrderStatus(ctx context.Context, ref string) (fulfillment.OrderStatus, error) {
	args := m.Called(ctx, ref)
	st, _ := args.Get(0).(fulfillment.OrderStatus)
	return st, args.Error(1)
}

func (m *FulfillmentMock) GetShippingRates(ctx context.Context, recipient fulfillment.Recipient, items []fulfillment.Item, currency string) ([]fulfillment.ShippingRate, error) {
	args := m.Called(ctx, recipient, items, currency)
	rates, _ := args.Get(0).([]fulfillment.ShippingRate)
	return rates, args.Error(1)
}

func (m *FulfillmentMock) ListStoreProducts(ctx context.Context) ([]fulfillment.StoreProduct, error) {
	args := m.Called(ctx)
	products, _ := args.Get(0).([]fulfillment.StoreProduct)
	return products, args.Error(1)
}

type PaymentMock struct{ mock.Mock }

func (m *PaymentMock) CreateCheckoutSession(ctx context.Context, in payment.CheckoutSessionInput) (payment.CheckoutSession, error) {
	args := m.Called(ctx, in)
	s, _ := args.Get(0).(payment.CheckoutSession)
	return s, args.Error(1)
}

func (m *PaymentMock) VerifyWebhook(body []byte, signature string) (payment.PaymentEvent, error) {
	args := m.Called(body, signature)
	ev, _ := args.Get(0).(payment.PaymentEvent)
	return ev, args.Error(1)
}

type NotifierMock struct{ mock.Mock }

func (m *NotifierMock) SendShippingNotification(ctx context.Context, n notify.ShippingNotification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

// =====================
// helper
// =====================

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type fixedIDs struct{ id string }

func (g fixedIDs) NewID() string { return g.id }

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func strp(s string) *string { return &s }

func auditAction(action model.AuditAction) interface{} {
	return mock.MatchedBy(func(l model.AuditLog) bool { return l.Action == action })
}

func assertErrContains(t *testing.T, err error, wantSubstr string) {
	t.Helper()
	if assert.Error(t, err) {
		assert.True(t, strings.Contains(err.Error(), wantSubstr), "err=%q want contains %q", err.Error(), wantSubstr)
	}
}

func assertHTTPStatus(t *testing.T, err error, status int) {
	t.Helper()
	he, ok := usecase.AsHTTPError(err)
	if assert.True(t, ok, "want HTTPError, got %v", err) {
		assert.Equal(t, status, he.Status)
	}
}
