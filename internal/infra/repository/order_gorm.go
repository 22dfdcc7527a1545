package repository

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

func (r *OrderGormRepository) Create(ctx context.Context, order *model.Order) error {
	//明細はOrderItemRepositoryで入れる
	err := r.db.WithContext(ctx).Omit("Items").Create(order).Error
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return fmt.Errorf("%w: %s", repo.ErrDuplicate, pgErr.ConstraintName)
	}
	return err
}

func (r *OrderGormRepository) FindByPaymentSessionID(ctx context.Context, sessionID string) (model.Order, bool, error) {
	o, err := r.first(ctx, "payment_session_id = ?", sessionID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Order{}, false, nil
	}
	if err != nil {
		return model.Order{}, false, err
	}
	return o, true, nil
}

func (r *OrderGormRepository) FindByExternalID(ctx context.Context, externalID string) (model.Order, error) {
	return r.first(ctx, "fulfillment_external_id = ?", externalID)
}

func (r *OrderGormRepository) FindByFulfillmentOrderID(ctx context.Context, fulfillmentOrderID string) (model.Order, error) {
	return r.first(ctx, "fulfillment_order_id = ?", fulfillmentOrderID)
}

func (r *OrderGormRepository) first(ctx context.Context, query string, arg any) (model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).Preload("Items").Where(query, arg).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Order{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Order{}, err
	}
	return o, nil
}

func (r *OrderGormRepository) ListPending(ctx context.Context) ([]model.Order, error) {
	var items []model.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("status IN ?", model.PendingStatuses()).
		Order("id asc").
		Find(&items).Error
	if err != nil {
		return []model.Order{}, err
	}
	return items, nil
}

func (r *OrderGormRepository) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 50
	}

	q := r.db.WithContext(ctx).Model(&model.Order{})

	//status 絞り込み
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	//期間絞り込み
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at <= ?", *f.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return []model.Order{}, 0, err
	}

	var items []model.Order
	offset := (f.Page - 1) * f.Limit
	if err := q.Preload("Items").Order("id desc").Limit(f.Limit).Offset(offset).Find(&items).Error; err != nil {
		return []model.Order{}, 0, err
	}

	return items, total, nil
}

func (r *OrderGormRepository) UpdateStatus(ctx context.Context, orderID int64, from model.OrderStatus, to model.OrderStatus) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND status = ?", orderID, from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *OrderGormRepository) MarkShipped(ctx context.Context, orderID int64, u repo.ShipmentUpdate) (bool, error) {
	//shipped_atとstatusは必ず一緒に書く
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND status <> ?", orderID, model.OrderStatusShipped).
		Updates(map[string]any{
			"status":          model.OrderStatusShipped,
			"shipped_at":      u.ShippedAt,
			"tracking_number": u.TrackingNumber,
			"tracking_url":    u.TrackingURL,
			"carrier":         u.Carrier,
			"updated_at":      u.ShippedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
