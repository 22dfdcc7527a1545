package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"storefront/internal/domain/model"
	"storefront/internal/infra/fulfillment"
	"storefront/internal/infra/notify"
	repo "storefront/internal/repository"
)

const (
	actorWebhook = "webhook"
	actorPoll    = "poll"
)

type TransitionOutcome string

const (
	OutcomeShipped        TransitionOutcome = "shipped"
	OutcomeAlreadyShipped TransitionOutcome = "already_shipped"
)

// 発送遷移の結果。NotifyErrがあっても遷移は済んでいる。
type TransitionResult struct {
	Outcome   TransitionOutcome
	NotifyErr error
}

type WebhookAck struct {
	Received bool   `json:"received"`
	Message  string `json:"message"`
}

type PollSummary struct {
	Checked int      `json:"checked"`
	Shipped int      `json:"shipped"`
	Errors  []string `json:"errors,omitempty"`
}

type ReconcileDeps struct {
	Orders        repo.OrderRepository
	Tx            repo.TransactionManager
	AuditLogs     repo.AuditLogRepository
	Fulfillment   FulfillmentGateway
	Notifier      NotificationDispatcher
	WebhookSecret string
	Clock         Clock
	IDs           IDGenerator
	Logger        *slog.Logger
}

// ReconcileUsecaseは注文ステータスを書く唯一の場所。
// webhook（push）とpoll（pull）の両方から同じ遷移を通す。
type ReconcileUsecase struct {
	orders        repo.OrderRepository
	tx            repo.TransactionManager
	audit         repo.AuditLogRepository
	fulfillment   FulfillmentGateway
	notifier      NotificationDispatcher
	webhookSecret string
	clock         Clock
	ids           IDGenerator
	log           *slog.Logger
}

func NewReconcileUsecase(d ReconcileDeps) *ReconcileUsecase {
	u := &ReconcileUsecase{
		orders:        d.Orders,
		tx:            d.Tx,
		audit:         d.AuditLogs,
		fulfillment:   d.Fulfillment,
		notifier:      d.Notifier,
		webhookSecret: d.WebhookSecret,
		clock:         d.Clock,
		ids:           d.IDs,
		log:           d.Logger,
	}
	if u.clock == nil {
		u.clock = SystemClock{}
	}
	if u.log == nil {
		u.log = slog.Default()
	}
	return u
}

// HandleFulfillmentWebhookはPrintfulのwebhookを処理する。
// 注文が見つからなくても200で受け取る（再送を止めるため）。
func (u *ReconcileUsecase) HandleFulfillmentWebhook(ctx context.Context, body []byte, signature string) (WebhookAck, error) {
	if u.webhookSecret != "" {
		if err := fulfillment.VerifySignature(body, signature, u.webhookSecret); err != nil {
			u.log.WarnContext(ctx, "fulfillment webhook rejected", "reason", "signature mismatch")
			return WebhookAck{}, NewHTTPError(http.StatusUnauthorized, "invalid signature")
		}
	} else {
		u.log.WarnContext(ctx, "fulfillment webhook secret not set, skipping signature check")
	}

	ev, err := fulfillment.ParseWebhook(body)
	if err != nil {
		return WebhookAck{}, NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	log := u.log.With("type", ev.Type, "external_id", ev.Event.ExternalID, "fulfillment_order_id", ev.Event.FulfillmentOrderID)

	switch ev.Type {
	case fulfillment.EventPackageShipped:
		order, found, err := u.resolveOrder(ctx, ev.Event)
		if err != nil {
			log.ErrorContext(ctx, "order lookup failed", "error", err)
			return WebhookAck{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !found {
			log.WarnContext(ctx, "no local order for shipment webhook")
			return WebhookAck{Received: true, Message: "order not found"}, nil
		}

		res, err := u.ShipOrder(ctx, order, ev.Event, actorWebhook)
		if errors.Is(err, ErrNoCustomerEmail) {
			return WebhookAck{Received: true, Message: "no customer email, order left unchanged"}, nil
		}
		if err != nil {
			return WebhookAck{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return WebhookAck{Received: true, Message: res.message()}, nil

	case fulfillment.EventOrderUpdated, fulfillment.EventOrderCreated:
		if !(fulfillment.OrderStatus{Status: ev.Event.ProviderStatus}).InProcess() {
			return WebhookAck{Received: true, Message: "event ignored"}, nil
		}
		order, found, err := u.resolveOrder(ctx, ev.Event)
		if err != nil {
			log.ErrorContext(ctx, "order lookup failed", "error", err)
			return WebhookAck{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !found {
			return WebhookAck{Received: true, Message: "order not found"}, nil
		}
		changed, err := u.markProcessing(ctx, order, actorWebhook)
		if err != nil {
			return WebhookAck{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if changed {
			return WebhookAck{Received: true, Message: "order marked processing"}, nil
		}
		return WebhookAck{Received: true, Message: "no change"}, nil
	}

	return WebhookAck{Received: true, Message: "event ignored"}, nil
}

// external_id → fulfillment_order_id の順で探す
func (u *ReconcileUsecase) resolveOrder(ctx context.Context, ev model.ShipmentEvent) (model.Order, bool, error) {
	if ev.ExternalID != "" {
		o, err := u.orders.FindByExternalID(ctx, ev.ExternalID)
		if err == nil {
			return o, true, nil
		}
		if !errors.Is(err, repo.ErrNotFound) {
			return model.Order{}, false, err
		}
	}
	if ev.FulfillmentOrderID != "" {
		o, err := u.orders.FindByFulfillmentOrderID(ctx, ev.FulfillmentOrderID)
		if err == nil {
			return o, true, nil
		}
		if !errors.Is(err, repo.ErrNotFound) {
			return model.Order{}, false, err
		}
	}
	return model.Order{}, false, nil
}

// PollPendingOrdersは未発送の注文を1件ずつPrintfulに問い合わせる。
// 1件の失敗で止めず、エラーは集めて返す。
func (u *ReconcileUsecase) PollPendingOrders(ctx context.Context) (PollSummary, error) {
	orders, err := u.orders.ListPending(ctx)
	if err != nil {
		u.log.ErrorContext(ctx, "list pending orders failed", "error", err)
		return PollSummary{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	sum := PollSummary{Checked: len(orders)}
	for _, o := range orders {
		ref := fulfillmentRef(o)
		if ref == "" {
			sum.Errors = append(sum.Errors, fmt.Sprintf("order %d: no fulfillment reference", o.ID))
			continue
		}

		st, err := u.fulfillment.GetOrderStatus(ctx, ref)
		if errors.Is(err, fulfillment.ErrNotConfigured) {
			//設定不足は1件ずつではなく全体のエラー
			u.log.ErrorContext(ctx, "poll aborted", "error", err)
			return sum, providerError(err)
		}
		if err != nil {
			u.log.WarnContext(ctx, "fulfillment status lookup failed", "order_id", o.ID, "error", err)
			sum.Errors = append(sum.Errors, fmt.Sprintf("order %d: %v", o.ID, err))
			continue
		}

		switch {
		case st.Shipped():
			res, err := u.ShipOrder(ctx, o, st.Event, actorPoll)
			if err != nil {
				sum.Errors = append(sum.Errors, fmt.Sprintf("order %d: %v", o.ID, err))
				continue
			}
			if res.Outcome == OutcomeShipped {
				sum.Shipped++
			}
			if res.NotifyErr != nil {
				sum.Errors = append(sum.Errors, fmt.Sprintf("order %d: notification failed: %v", o.ID, res.NotifyErr))
			}
		case st.InProcess():
			if _, err := u.markProcessing(ctx, o, actorPoll); err != nil {
				sum.Errors = append(sum.Errors, fmt.Sprintf("order %d: %v", o.ID, err))
			}
		}
	}

	u.log.InfoContext(ctx, "poll finished", "checked", sum.Checked, "shipped", sum.Shipped, "errors", len(sum.Errors))
	return sum, nil
}

func fulfillmentRef(o model.Order) string {
	if o.FulfillmentOrderID != nil && *o.FulfillmentOrderID != "" {
		return *o.FulfillmentOrderID
	}
	if o.FulfillmentExternalID != nil && *o.FulfillmentExternalID != "" {
		return "@" + *o.FulfillmentExternalID
	}
	return ""
}

// ShipOrderはwebhookとpollで共通の発送遷移。
// 既にshippedなら何もしない。メール失敗でも遷移は戻さない。
func (u *ReconcileUsecase) ShipOrder(ctx context.Context, order model.Order, ev model.ShipmentEvent, actor string) (TransitionResult, error) {
	log := u.log.With("order_id", order.ID, "actor", actor)

	//冪等ガード
	if order.Status == model.OrderStatusShipped {
		log.InfoContext(ctx, "order already shipped, skipping")
		return TransitionResult{Outcome: OutcomeAlreadyShipped}, nil
	}

	email := firstNonBlank(ev.RecipientEmail, order.CustomerEmail)
	name := firstNonBlank(ev.RecipientName, order.CustomerName, order.Shipping.Name)
	if email == "" {
		log.ErrorContext(ctx, "no customer email, order left unchanged")
		u.record(ctx, model.AuditLog{
			Actor:      actor,
			Action:     model.AuditActionNotificationFailed,
			ResourceID: order.ID,
			Message:    ErrNoCustomerEmail.Error(),
		})
		return TransitionResult{}, ErrNoCustomerEmail
	}

	n := notify.ShippingNotification{
		Email:          email,
		Name:           name,
		OrderNumber:    order.OrderNumber(),
		TrackingNumber: ev.Tracking.Number,
		TrackingURL:    ev.Tracking.URL,
		Carrier:        ev.Tracking.Carrier,
		Items:          notificationItems(ev, order),
	}

	res := TransitionResult{Outcome: OutcomeShipped}
	if err := u.notifier.SendShippingNotification(ctx, n); err != nil {
		log.ErrorContext(ctx, "shipping notification failed", "error", err)
		res.NotifyErr = err
	}

	before := order
	now := u.clock.Now()
	order.MarkShipped(ev.Tracking, now)

	updated, err := u.orders.MarkShipped(ctx, order.ID, repo.ShipmentUpdate{
		TrackingNumber: order.TrackingNumber,
		TrackingURL:    order.TrackingURL,
		Carrier:        order.Carrier,
		ShippedAt:      now,
	})
	if err != nil {
		log.ErrorContext(ctx, "persist shipped state failed", "error", err)
		return TransitionResult{}, fmt.Errorf("mark shipped: %w", err)
	}
	if !updated {
		//別のリクエストが先に書いた
		log.WarnContext(ctx, "order was shipped concurrently")
		return TransitionResult{Outcome: OutcomeAlreadyShipped, NotifyErr: res.NotifyErr}, nil
	}

	u.record(ctx, model.AuditLog{
		Actor:      actor,
		Action:     model.AuditActionOrderShipped,
		ResourceID: order.ID,
		BeforeJSON: statusJSON(before),
		AfterJSON:  statusJSON(order),
	})
	if res.NotifyErr != nil {
		u.record(ctx, model.AuditLog{
			Actor:      actor,
			Action:     model.AuditActionNotificationFailed,
			ResourceID: order.ID,
			Message:    res.NotifyErr.Error(),
		})
	}

	log.InfoContext(ctx, "order shipped", "tracking", !ev.Tracking.Empty(), "notified", res.NotifyErr == nil)
	return res, nil
}

// created → processing
func (u *ReconcileUsecase) markProcessing(ctx context.Context, order model.Order, actor string) (bool, error) {
	before := order
	changed, err := order.Advance(model.OrderStatusProcessing, u.clock.Now())
	if errors.Is(err, model.ErrInvalidTransition) || !changed {
		//既に先に進んでいる
		return false, nil
	}

	ok, err := u.orders.UpdateStatus(ctx, order.ID, before.Status, model.OrderStatusProcessing)
	if err != nil {
		u.log.ErrorContext(ctx, "update status failed", "order_id", order.ID, "error", err)
		return false, err
	}
	if ok {
		u.record(ctx, model.AuditLog{
			Actor:      actor,
			Action:     model.AuditActionOrderProcessing,
			ResourceID: order.ID,
			BeforeJSON: statusJSON(before),
			AfterJSON:  statusJSON(order),
		})
	}
	return ok, nil
}

// 監査ログの失敗は処理を止めない
func (u *ReconcileUsecase) record(ctx context.Context, l model.AuditLog) {
	if u.audit == nil {
		return
	}
	l.ResourceType = model.AuditResourceOrder
	if l.CreatedAt.IsZero() {
		l.CreatedAt = u.clock.Now()
	}
	if err := u.audit.Create(ctx, l); err != nil {
		u.log.ErrorContext(ctx, "audit log write failed", "action", l.Action, "order_id", l.ResourceID, "error", err)
	}
}

func (r TransitionResult) message() string {
	switch {
	case r.Outcome == OutcomeAlreadyShipped:
		return "order already shipped"
	case r.NotifyErr != nil:
		return "order marked shipped, notification failed: " + r.NotifyErr.Error()
	default:
		return "order marked shipped, customer notified"
	}
}

func notificationItems(ev model.ShipmentEvent, order model.Order) []notify.Item {
	items := []notify.Item{}
	if len(ev.Items) > 0 {
		for _, it := range ev.Items {
			items = append(items, notify.Item{Name: it.Name, Quantity: it.Quantity})
		}
		return items
	}
	for _, it := range order.Items {
		items = append(items, notify.Item{Name: it.Name, Quantity: it.Quantity})
	}
	return items
}

type statusSnapshot struct {
	Status         model.OrderStatus `json:"status"`
	TrackingNumber *string           `json:"tracking_number,omitempty"`
	Carrier        *string           `json:"carrier,omitempty"`
}

func statusJSON(o model.Order) string {
	b, _ := json.Marshal(statusSnapshot{Status: o.Status, TrackingNumber: o.TrackingNumber, Carrier: o.Carrier})
	return string(b)
}

func firstNonBlank(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
