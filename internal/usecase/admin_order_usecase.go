package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

type AdminOrderUsecase struct {
	tx        repo.TransactionManager
	auditRepo repo.AuditLogRepository
}

func NewAdminOrderUsecase(tx repo.TransactionManager, auditRepo repo.AuditLogRepository) *AdminOrderUsecase {
	return &AdminOrderUsecase{tx: tx, auditRepo: auditRepo}
}

type OrderItemOutput struct {
	VariantID int64  `json:"variant_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int64  `json:"quantity"`
}

type OrderOutput struct {
	ID                    int64             `json:"id"`
	PaymentSessionID      string            `json:"payment_session_id"`
	FulfillmentOrderID    *string           `json:"fulfillment_order_id"`
	FulfillmentExternalID *string           `json:"fulfillment_external_id"`
	CustomerEmail         string            `json:"customer_email"`
	Status                string            `json:"status"`
	AmountTotal           int64             `json:"amount_total"`
	Currency              string            `json:"currency"`
	TrackingNumber        *string           `json:"tracking_number"`
	TrackingURL           *string           `json:"tracking_url"`
	Carrier               *string           `json:"carrier"`
	CreatedAt             time.Time         `json:"created_at"`
	ShippedAt             *time.Time        `json:"shipped_at"`
	Items                 []OrderItemOutput `json:"items"`
}

type AdminOrderListOutput struct {
	Items []OrderOutput `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

// 注文一覧
func (u *AdminOrderUsecase) List(ctx context.Context, f repo.AdminOrderListFilter) (AdminOrderListOutput, error) {
	// page/limitの最低限チェック
	if f.Page < 1 {
		return AdminOrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if f.Limit < 1 || f.Limit > 100 {
		return AdminOrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	f.Status = strings.TrimSpace(f.Status)
	if f.Status != "" && !model.OrderStatus(f.Status).Valid() {
		return AdminOrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return AdminOrderListOutput{}, NewHTTPError(http.StatusBadRequest, "from must be <= to")
	}

	out := AdminOrderListOutput{Page: f.Page, Limit: f.Limit}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, total, err := r.Orders().ListAdmin(ctx, f)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out.Total = total
		out.Items = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			items := o.Items
			if len(items) == 0 {
				items, err = r.OrderItems().ListByOrderID(ctx, o.ID)
				if err != nil {
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}
			}
			out.Items = append(out.Items, toOrderOutput(o, items))
		}
		return nil
	})

	if err != nil {
		return AdminOrderListOutput{}, err
	}
	return out, nil
}

type AuditLogListInput struct {
	Action     string
	ResourceID *int64
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

// 監査ログ一覧（発送・通知失敗の確認用）
func (u *AdminOrderUsecase) ListAuditLogs(ctx context.Context, in AuditLogListInput) ([]model.AuditLog, error) {
	if in.Limit < 1 || in.Limit > 200 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if in.Offset < 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid offset")
	}

	f := repo.AuditLogFilter{
		ResourceID:  in.ResourceID,
		CreatedFrom: in.From,
		CreatedTo:   in.To,
		Limit:       in.Limit,
		Offset:      in.Offset,
	}
	if a := strings.TrimSpace(in.Action); a != "" {
		action := model.AuditAction(a)
		if !action.Valid() {
			return nil, NewHTTPError(http.StatusBadRequest, "invalid action")
		}
		f.Action = &action
	}

	logs, err := u.auditRepo.List(ctx, f)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return logs, nil
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			VariantID: it.VariantID,
			Name:      it.Name,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
		})
	}

	return OrderOutput{
		ID:                    o.ID,
		PaymentSessionID:      o.PaymentSessionID,
		FulfillmentOrderID:    o.FulfillmentOrderID,
		FulfillmentExternalID: o.FulfillmentExternalID,
		CustomerEmail:         o.CustomerEmail,
		Status:                string(o.Status),
		AmountTotal:           o.AmountTotal,
		Currency:              o.Currency,
		TrackingNumber:        o.TrackingNumber,
		TrackingURL:           o.TrackingURL,
		Carrier:               o.Carrier,
		CreatedAt:             o.CreatedAt,
		ShippedAt:             o.ShippedAt,
		Items:                 outItems,
	}
}
