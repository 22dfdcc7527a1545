package usecase_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"storefront/internal/infra/notify"
	"storefront/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newNotification(n *NotifierMock) *usecase.NotificationUsecase {
	return usecase.NewNotificationUsecase(n, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSendTest_InvalidEmail(t *testing.T) {
	n := new(NotifierMock)

	err := newNotification(n).SendTest(context.Background(), "admin:1", "nope")

	assertHTTPStatus(t, err, http.StatusBadRequest)
	n.AssertNotCalled(t, "SendShippingNotification", mock.Anything, mock.Anything)
}

func TestSendTest_SendsPlaceholder(t *testing.T) {
	n := new(NotifierMock)
	n.On("SendShippingNotification", mock.Anything, mock.MatchedBy(func(s notify.ShippingNotification) bool {
		return s.Email == "ops@example.com" &&
			s.OrderNumber == "TEST-ORDER" &&
			s.TrackingNumber != nil && *s.TrackingNumber == "TEST123456789" &&
			len(s.Items) == 1 && s.Items[0].Name == "Sample T-Shirt"
	})).Return(nil)

	err := newNotification(n).SendTest(context.Background(), "admin:1", " ops@example.com ")

	assert.NoError(t, err)
	n.AssertExpectations(t)
}

func TestSendTest_ProviderErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not configured", notify.ErrNotConfigured, http.StatusInternalServerError},
		{"rejected", &notify.SendError{Status: 401, Body: "bad key"}, http.StatusBadGateway},
		{"network", fmt.Errorf("dial tcp: timeout"), http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := new(NotifierMock)
			n.On("SendShippingNotification", mock.Anything, mock.Anything).Return(tt.err)

			err := newNotification(n).SendTest(context.Background(), "admin:1", "ops@example.com")
			assertHTTPStatus(t, err, tt.status)
		})
	}
}
