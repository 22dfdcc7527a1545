package usecase

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"storefront/internal/infra/notify"
	"storefront/internal/validator"
)

type NotificationUsecase struct {
	notifier NotificationDispatcher
	log      *slog.Logger
}

func NewNotificationUsecase(n NotificationDispatcher, logger *slog.Logger) *NotificationUsecase {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationUsecase{notifier: n, log: logger}
}

// SendTestはダミーの発送メールを送る（メール設定の確認用）
func (u *NotificationUsecase) SendTest(ctx context.Context, actor string, email string) error {
	email = strings.TrimSpace(email)
	if err := validator.ValidateEmail(email); err != nil {
		return NewHTTPError(http.StatusBadRequest, err.Error())
	}

	tn, url, carrier := "TEST123456789", "https://example.com/track/TEST123456789", "USPS"
	err := u.notifier.SendShippingNotification(ctx, notify.ShippingNotification{
		Email:          email,
		Name:           "Test Customer",
		OrderNumber:    "TEST-ORDER",
		TrackingNumber: &tn,
		TrackingURL:    &url,
		Carrier:        &carrier,
		Items:          []notify.Item{{Name: "Sample T-Shirt", Quantity: 1}},
	})
	if err != nil {
		u.log.ErrorContext(ctx, "test notification failed", "actor", actor, "error", err)
		return providerError(err)
	}

	u.log.InfoContext(ctx, "test notification sent", "actor", actor)
	return nil
}
