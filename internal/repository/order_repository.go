package repository

import (
	"context"
	"errors"
	"time"

	"storefront/internal/domain/model"
)

var (
	ErrNotFound = errors.New("not found")
	// 一意制約に当たった（同じsessionが同時に入った時など）
	ErrDuplicate = errors.New("duplicate")
)

type AdminOrderListFilter struct {
	Page   int
	Limit  int
	Status string
	From   *time.Time
	To     *time.Time
}

// 発送済みにする時に書く項目
type ShipmentUpdate struct {
	TrackingNumber *string
	TrackingURL    *string
	Carrier        *string
	ShippedAt      time.Time
}

type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	FindByPaymentSessionID(ctx context.Context, sessionID string) (model.Order, bool, error)
	FindByExternalID(ctx context.Context, externalID string) (model.Order, error)
	FindByFulfillmentOrderID(ctx context.Context, fulfillmentOrderID string) (model.Order, error)

	//created / processing を古い順に
	ListPending(ctx context.Context) ([]model.Order, error)
	ListAdmin(ctx context.Context, f AdminOrderListFilter) ([]model.Order, int64, error)

	//from から to に進める。既に進んでいたらfalse。
	UpdateStatus(ctx context.Context, orderID int64, from model.OrderStatus, to model.OrderStatus) (bool, error)
	//shipped以外の時だけ書く。既にshippedならfalse。
	MarkShipped(ctx context.Context, orderID int64, u ShipmentUpdate) (bool, error)
}
