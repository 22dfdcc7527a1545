package notify

import (
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
)

const textBody = `Hi {{.Name}},
{{if .HasTracking}}
Good news! Your order {{.OrderNumber}} has shipped.
{{if .Carrier}}Carrier: {{.Carrier}}
{{end}}{{if .TrackingNumber}}Tracking number: {{.TrackingNumber}}
{{end}}{{if .TrackingURL}}Track your package: {{.TrackingURL}}
{{end}}{{else}}
Your order {{.OrderNumber}} is being prepared for shipment. We'll send tracking details as soon as they are available.
{{end}}
Items:
{{range .Items}}- {{.Name}} x{{.Quantity}}
{{end}}
Thanks for your order!
`

const htmlBody = `<!doctype html>
<html><body style="font-family:sans-serif">
<p>Hi {{.Name}},</p>
{{if .HasTracking}}<p>Good news! Your order <strong>{{.OrderNumber}}</strong> has shipped.</p>
<table>
{{if .Carrier}}<tr><td>Carrier</td><td>{{.Carrier}}</td></tr>{{end}}
{{if .TrackingNumber}}<tr><td>Tracking number</td><td>{{.TrackingNumber}}</td></tr>{{end}}
</table>
{{if .TrackingURL}}<p><a href="{{.TrackingURL}}">Track your package</a></p>{{end}}
{{else}}<p>Your order <strong>{{.OrderNumber}}</strong> is being prepared for shipment. We'll send tracking details as soon as they are available.</p>
{{end}}<ul>
{{range .Items}}<li>{{.Name}} &times; {{.Quantity}}</li>
{{end}}</ul>
<p>Thanks for your order!</p>
</body></html>
`

var (
	textTmpl = texttemplate.Must(texttemplate.New("text").Parse(textBody))
	htmlTmpl = htmltemplate.Must(htmltemplate.New("html").Parse(htmlBody))
)

type view struct {
	Name           string
	OrderNumber    string
	HasTracking    bool
	TrackingNumber string
	TrackingURL    string
	Carrier        string
	Items          []Item
}

func newView(n ShippingNotification) view {
	v := view{
		Name:        n.Name,
		OrderNumber: n.OrderNumber,
		Items:       n.Items,
	}
	if v.Name == "" {
		v.Name = "there"
	}
	if n.TrackingNumber != nil {
		v.TrackingNumber = *n.TrackingNumber
	}
	if n.TrackingURL != nil {
		v.TrackingURL = *n.TrackingURL
	}
	if n.Carrier != nil {
		v.Carrier = *n.Carrier
	}
	//番号かURLがあれば「発送済み」の文面
	v.HasTracking = v.TrackingNumber != "" || v.TrackingURL != ""
	return v
}

// Renderは件名・テキスト・HTMLを返す
func Render(n ShippingNotification) (subject string, text string, html string, err error) {
	v := newView(n)

	if v.HasTracking {
		subject = "Your order " + v.OrderNumber + " has shipped"
	} else {
		subject = "Your order " + v.OrderNumber + " is being prepared for shipment"
	}

	var tb strings.Builder
	if err := textTmpl.Execute(&tb, v); err != nil {
		return "", "", "", err
	}
	var hb strings.Builder
	if err := htmlTmpl.Execute(&hb, v); err != nil {
		return "", "", "", err
	}
	return subject, tb.String(), hb.String(), nil
}
