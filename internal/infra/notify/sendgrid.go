package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

var ErrNotConfigured = errors.New("sendgrid api key is not configured")

type Item struct {
	Name     string
	Quantity int64
}

// 発送メール1通分。追跡情報は任意。
type ShippingNotification struct {
	Email          string
	Name           string
	OrderNumber    string
	TrackingNumber *string
	TrackingURL    *string
	Carrier        *string
	Items          []Item
}

// SendErrorはメール送信の失敗
type SendError struct {
	Status int
	Body   string
	Err    error
}

func (e *SendError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("sendgrid: send failed: %v", e.Err)
	}
	return fmt.Sprintf("sendgrid: send failed: %d: %s", e.Status, e.Body)
}

func (e *SendError) Unwrap() error { return e.Err }

// SendGridのクライアント部分（テストで差し替える）
type Sender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

type SendGridDispatcher struct {
	sender   Sender
	fromAddr string
	fromName string
}

// apiKeyが空なら送信時にErrNotConfigured
func NewSendGridDispatcher(apiKey string, fromAddr string, fromName string) *SendGridDispatcher {
	d := &SendGridDispatcher{fromAddr: fromAddr, fromName: fromName}
	if apiKey != "" {
		d.sender = sendgrid.NewSendClient(apiKey)
	}
	return d
}

func NewSendGridDispatcherWithSender(sender Sender, fromAddr string, fromName string) *SendGridDispatcher {
	return &SendGridDispatcher{sender: sender, fromAddr: fromAddr, fromName: fromName}
}

// SendShippingNotificationは1回呼ばれたら1通送る（重複防止は呼び出し側）
func (d *SendGridDispatcher) SendShippingNotification(ctx context.Context, n ShippingNotification) error {
	if d.sender == nil {
		return ErrNotConfigured
	}
	if n.Email == "" {
		return &SendError{Err: errors.New("recipient email is empty")}
	}

	subject, text, html, err := Render(n)
	if err != nil {
		return fmt.Errorf("render shipping notification: %w", err)
	}

	from := mail.NewEmail(d.fromName, d.fromAddr)
	to := mail.NewEmail(n.Name, n.Email)
	msg := mail.NewSingleEmail(from, subject, to, text, html)

	resp, err := d.sender.SendWithContext(ctx, msg)
	if err != nil {
		return &SendError{Err: err}
	}
	if resp != nil && resp.StatusCode >= 400 {
		return &SendError{Status: resp.StatusCode, Body: resp.Body}
	}
	return nil
}
