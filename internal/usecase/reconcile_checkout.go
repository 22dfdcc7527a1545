package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"storefront/internal/domain/model"
	"storefront/internal/infra/fulfillment"
	"storefront/internal/infra/payment"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
)

const actorCheckout = "checkout"

var errNoShippingAddress = errors.New("checkout has no shipping address")

// HandleCheckoutCompletedは決済完了からPrintful注文と注文レコードを作る。
// Printfulが失敗しても注文はcreatedで残す（再作成は手動）。
// 同じsessionの再送は既存の注文を返す。
func (u *ReconcileUsecase) HandleCheckoutCompleted(ctx context.Context, c payment.CompletedCheckout) (model.Order, error) {
	log := u.log.With("session_id", c.SessionID)

	existing, found, err := u.orders.FindByPaymentSessionID(ctx, c.SessionID)
	if err != nil {
		log.ErrorContext(ctx, "order lookup failed", "error", err)
		return model.Order{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if found {
		log.InfoContext(ctx, "checkout already recorded", "order_id", existing.ID)
		return existing, nil
	}
	if len(c.Items) == 0 {
		return model.Order{}, NewHTTPError(http.StatusBadRequest, "checkout has no items")
	}

	//Printfulのexternal_idは32文字まで
	externalID := strings.ReplaceAll(u.ids.NewID(), "-", "")

	fulfillmentID, ferr := u.createFulfillment(ctx, c, externalID)
	if ferr != nil {
		log.ErrorContext(ctx, "fulfillment order creation failed", "external_id", externalID, "error", ferr)
	}

	now := u.clock.Now()
	order := model.Order{
		PaymentSessionID: c.SessionID,
		CustomerEmail:    c.Email,
		CustomerName:     c.Name,
		AmountTotal:      c.AmountTotal,
		Currency:         c.Currency,
		Shipping:         c.Shipping,
		Status:           model.OrderStatusCreated,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	//送信済みかもしれないのでexternal_idは残す（pollが@external_idで拾える）
	if !errors.Is(ferr, errNoShippingAddress) {
		order.FulfillmentExternalID = &externalID
	}
	if ferr == nil {
		order.Status = model.OrderStatusProcessing
		order.FulfillmentOrderID = &fulfillmentID
	}

	items := make([]model.OrderItem, 0, len(c.Items))
	for _, it := range c.Items {
		items = append(items, model.OrderItem{
			VariantID: it.VariantID,
			Name:      it.Name,
			UnitPrice: it.UnitAmount,
			Quantity:  it.Quantity,
			CreatedAt: now,
		})
	}

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := r.Orders().Create(ctx, &order); err != nil {
			return err
		}
		if err := r.OrderItems().CreateBulk(ctx, order.ID, items); err != nil {
			return err
		}
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			Actor:        actorCheckout,
			Action:       model.AuditActionOrderCreated,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   order.ID,
			AfterJSON:    statusJSON(order),
			CreatedAt:    now,
		}); err != nil {
			return err
		}
		if ferr != nil {
			return r.AuditLogs().Create(ctx, model.AuditLog{
				Actor:        actorCheckout,
				Action:       model.AuditActionFulfillmentFailed,
				ResourceType: model.AuditResourceOrder,
				ResourceID:   order.ID,
				Message:      ferr.Error(),
				CreatedAt:    now,
			})
		}
		return nil
	})
	if errors.Is(err, repo.ErrDuplicate) {
		//同時に同じsessionが入った時はもう一回探して同じ結果を返す
		if again, ok, err2 := u.orders.FindByPaymentSessionID(ctx, c.SessionID); err2 == nil && ok {
			log.InfoContext(ctx, "checkout recorded concurrently", "order_id", again.ID)
			return again, nil
		}
	}
	if err != nil {
		log.ErrorContext(ctx, "persist order failed", "error", err)
		return model.Order{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	order.Items = items
	log.InfoContext(ctx, "order created", "order_id", order.ID, "status", order.Status)
	return order, nil
}

func (u *ReconcileUsecase) createFulfillment(ctx context.Context, c payment.CompletedCheckout, externalID string) (string, error) {
	if c.Shipping.Address1 == "" || c.Shipping.CountryCode == "" {
		return "", errNoShippingAddress
	}

	var subtotal int64
	items := make([]fulfillment.Item, 0, len(c.Items))
	for _, it := range c.Items {
		items = append(items, fulfillment.Item{
			SyncVariantID: it.VariantID,
			Quantity:      it.Quantity,
			RetailPrice:   minorToDecimal(it.UnitAmount),
			Name:          it.Name,
		})
		subtotal += it.UnitAmount * it.Quantity
	}

	costs := fulfillment.RetailCosts{
		Currency: c.Currency,
		Subtotal: minorToDecimal(subtotal),
	}
	if shipping := c.AmountTotal - subtotal; shipping > 0 {
		costs.Shipping = minorToDecimal(shipping)
	}

	id, err := u.fulfillment.CreateOrder(ctx, fulfillment.CreateOrderInput{
		ExternalID:  externalID,
		Recipient:   fulfillment.RecipientFromAddress(c.Shipping, c.Email),
		Items:       items,
		RetailCosts: costs,
		Confirm:     true,
	})
	if err != nil {
		return "", fmt.Errorf("create fulfillment order: %w", err)
	}
	return id, nil
}

// 1250 → "12.50"
func minorToDecimal(v int64) string {
	return decimal.New(v, -2).StringFixed(2)
}
