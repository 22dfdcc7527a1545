package notify_test

import (
	"testing"

	"storefront/internal/infra/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_WithTracking(t *testing.T) {
	subject, text, html, err := notify.Render(notification())
	require.NoError(t, err)

	assert.Equal(t, "Your order ext123 has shipped", subject)
	assert.Contains(t, text, "Tracking number: 1Z999")
	assert.Contains(t, text, "Carrier: UPS")
	assert.Contains(t, text, "- Tee x2")
	assert.Contains(t, html, `href="https://track.example/1Z999"`)
	assert.NotContains(t, text, "being prepared")
}

func TestRender_WithoutTracking(t *testing.T) {
	n := notification()
	n.TrackingNumber = nil
	n.TrackingURL = nil
	n.Carrier = nil

	subject, text, html, err := notify.Render(n)
	require.NoError(t, err)

	assert.Equal(t, "Your order ext123 is being prepared for shipment", subject)
	assert.Contains(t, text, "is being prepared for shipment")
	assert.NotContains(t, text, "Tracking number")
	assert.NotContains(t, html, "Track your package")
}

func TestRender_CarrierOnlyIsNotTracking(t *testing.T) {
	n := notification()
	n.TrackingNumber = nil
	n.TrackingURL = nil

	subject, _, _, err := notify.Render(n)
	require.NoError(t, err)
	assert.Contains(t, subject, "being prepared")
}

func TestRender_EscapesHTML(t *testing.T) {
	n := notification()
	n.Name = "<script>x</script>"

	_, _, html, err := notify.Render(n)
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
}
