package notify_test

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/infra/notify"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type SenderMock struct{ mock.Mock }

func (m *SenderMock) SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error) {
	args := m.Called(ctx, email)
	resp, _ := args.Get(0).(*rest.Response)
	return resp, args.Error(1)
}

func strp(s string) *string { return &s }

func notification() notify.ShippingNotification {
	return notify.ShippingNotification{
		Email:          "jane@example.com",
		Name:           "Jane",
		OrderNumber:    "ext123",
		TrackingNumber: strp("1Z999"),
		TrackingURL:    strp("https://track.example/1Z999"),
		Carrier:        strp("UPS"),
		Items:          []notify.Item{{Name: "Tee", Quantity: 2}},
	}
}

func TestSendGridDispatcher_Send(t *testing.T) {
	sender := new(SenderMock)
	d := notify.NewSendGridDispatcherWithSender(sender, "orders@shop.example", "Shop")

	sender.On("SendWithContext", mock.Anything, mock.MatchedBy(func(m *mail.SGMailV3) bool {
		return m.From.Address == "orders@shop.example" &&
			m.Subject == "Your order ext123 has shipped" &&
			len(m.Personalizations) == 1 &&
			m.Personalizations[0].To[0].Address == "jane@example.com" &&
			len(m.Content) == 2
	})).Return(&rest.Response{StatusCode: 202}, nil).Once()

	err := d.SendShippingNotification(context.Background(), notification())
	assert.NoError(t, err)
	sender.AssertExpectations(t)
}

func TestSendGridDispatcher_ProviderRejects(t *testing.T) {
	sender := new(SenderMock)
	d := notify.NewSendGridDispatcherWithSender(sender, "orders@shop.example", "Shop")
	sender.On("SendWithContext", mock.Anything, mock.Anything).Return(&rest.Response{StatusCode: 401, Body: `{"errors":[{"message":"bad key"}]}`}, nil)

	err := d.SendShippingNotification(context.Background(), notification())

	var se *notify.SendError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 401, se.Status)
	assert.Contains(t, se.Body, "bad key")
}

func TestSendGridDispatcher_TransportError(t *testing.T) {
	sender := new(SenderMock)
	d := notify.NewSendGridDispatcherWithSender(sender, "orders@shop.example", "Shop")
	boom := errors.New("connection reset")
	sender.On("SendWithContext", mock.Anything, mock.Anything).Return(nil, boom)

	err := d.SendShippingNotification(context.Background(), notification())

	var se *notify.SendError
	require.True(t, errors.As(err, &se))
	assert.ErrorIs(t, err, boom)
}

func TestSendGridDispatcher_NotConfigured(t *testing.T) {
	d := notify.NewSendGridDispatcher("", "orders@shop.example", "Shop")
	err := d.SendShippingNotification(context.Background(), notification())
	assert.ErrorIs(t, err, notify.ErrNotConfigured)
}

func TestSendGridDispatcher_EmptyRecipient(t *testing.T) {
	sender := new(SenderMock)
	d := notify.NewSendGridDispatcherWithSender(sender, "orders@shop.example", "Shop")

	n := notification()
	n.Email = ""
	err := d.SendShippingNotification(context.Background(), n)

	var se *notify.SendError
	assert.True(t, errors.As(err, &se))
	sender.AssertNotCalled(t, "SendWithContext", mock.Anything, mock.Anything)
}
