package notify

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"math"
	texttemplate "text/template"

	"github.com/pinobite/storefront/internal/models"
	"github.com/pinobite/storefront/internal/types"
)

type emailTemplate struct {
	subject *texttemplate.Template
	text    *texttemplate.Template
	html    *htmltemplate.Template
}

func newEmailTemplate(name, subject, text, html string) emailTemplate {
	return emailTemplate{
		subject: texttemplate.Must(texttemplate.New(name + ".subject").Parse(subject)),
		text:    texttemplate.Must(texttemplate.New(name + ".txt").Parse(text)),
		html:    htmltemplate.Must(htmltemplate.New(name + ".html").Parse(html)),
	}
}

func (t emailTemplate) render(to string, data any) (types.Message, error) {
	var subject, text, html bytes.Buffer
	if err := t.subject.Execute(&subject, data); err != nil {
		return types.Message{}, fmt.Errorf("failed to render subject: %w", err)
	}
	if err := t.text.Execute(&text, data); err != nil {
		return types.Message{}, fmt.Errorf("failed to render text body: %w", err)
	}
	if err := t.html.Execute(&html, data); err != nil {
		return types.Message{}, fmt.Errorf("failed to render html body: %w", err)
	}
	return types.Message{To: to, Subject: subject.String(), Text: text.String(), HTML: html.String()}, nil
}

// statusCopy is the status-specific wording of order update emails.
var statusCopy = map[models.OrderStatus]struct{ Subject, Headline, Detail string }{
	models.OrderStatusPending: {
		"Order #%d received",
		"We have received your order.",
		"Complete the payment to confirm it.",
	},
	models.OrderStatusProcessing: {
		"Order #%d confirmed",
		"Your payment was successful and your order is confirmed.",
		"We are packing your goodies now and will let you know once they ship.",
	},
	models.OrderStatusShipped: {
		"Order #%d has shipped",
		"Good news, your order is on its way.",
		"It should reach you in a few days.",
	},
	models.OrderStatusDelivered: {
		"Order #%d delivered",
		"Your order has been delivered.",
		"We hope you enjoy it. Tell us what you think with a review.",
	},
	models.OrderStatusCancelled: {
		"Order #%d cancelled",
		"Your order has been cancelled.",
		"If you were charged, the amount will be refunded to your original payment method.",
	},
}

var (
	orderTemplate = newEmailTemplate("order_status",
		`{{.Subject}}`,
		`Hi {{.Name}},

{{.Headline}}
{{.Detail}}

Order #{{.OrderID}} ({{.Status}})
{{range .Items}}- {{.ProductName}} x {{.Quantity}}: {{.Price}}
{{end}}
Total: {{.Currency}} {{.Total}}

Thanks for shopping with Pinobite!
`,
		`<p>Hi {{.Name}},</p>
<p><strong>{{.Headline}}</strong><br>{{.Detail}}</p>
<p>Order #{{.OrderID}} ({{.Status}})</p>
<ul>{{range .Items}}<li>{{.ProductName}} &times; {{.Quantity}}: {{.Price}}</li>{{end}}</ul>
<p>Total: {{.Currency}} {{.Total}}</p>
<p>Thanks for shopping with Pinobite!</p>
`)

	passwordResetTemplate = newEmailTemplate("password_reset",
		`Your password reset code`,
		`Hello {{.Name}},

Your one-time password is {{.Code}}.
It is valid for {{.Minutes}} minutes. If you did not ask for a reset you can ignore this email.
`,
		`<p>Hello {{.Name}},</p>
<p>Your one-time password is <strong>{{.Code}}</strong>.</p>
<p>It is valid for {{.Minutes}} minutes. If you did not ask for a reset you can ignore this email.</p>
`)

	visitorTemplate = newEmailTemplate("visitor_submitted",
		`Thanks for registering at {{.EventName}}`,
		`Hi {{.Name}},

Thanks for stopping by our stall at {{.EventName}}. You are now on our list and will hear about new launches and offers first.

Team Pinobite
`,
		`<p>Hi {{.Name}},</p>
<p>Thanks for stopping by our stall at <strong>{{.EventName}}</strong>. You are now on our list and will hear about new launches and offers first.</p>
<p>Team Pinobite</p>
`)
)

// Render builds the email for an event.
func Render(event Event) (types.Message, error) {
	switch e := event.(type) {
	case OrderStatusChanged:
		return renderOrder(e)
	case PasswordResetRequested:
		minutes := int(math.Ceil(e.TTL.Minutes()))
		return passwordResetTemplate.render(e.Email, struct {
			Name    string
			Code    string
			Minutes int
		}{nameOr(e.Name), e.Code, minutes})
	case VisitorSubmitted:
		return visitorTemplate.render(e.Submission.Email, struct {
			Name      string
			EventName string
		}{nameOr(e.Submission.Name), e.Form.EventName})
	default:
		return types.Message{}, fmt.Errorf("no template for event %T", event)
	}
}

func renderOrder(e OrderStatusChanged) (types.Message, error) {
	wording, ok := statusCopy[e.Order.Status]
	if !ok {
		return types.Message{}, fmt.Errorf("no template for order status %q", e.Order.Status)
	}

	type line struct {
		ProductName string
		Quantity    int
		Price       string
	}
	items := make([]line, 0, len(e.Order.Items))
	for _, item := range e.Order.Items {
		items = append(items, line{item.ProductName, item.Quantity, item.LineTotal().StringFixed(2)})
	}

	return orderTemplate.render(e.Order.Email, struct {
		Subject  string
		Name     string
		Headline string
		Detail   string
		OrderID  int64
		Status   models.OrderStatus
		Items    []line
		Currency string
		Total    string
	}{
		Subject:  fmt.Sprintf(wording.Subject, e.Order.ID),
		Name:     e.Order.CustomerName(),
		Headline: wording.Headline,
		Detail:   wording.Detail,
		OrderID:  e.Order.ID,
		Status:   e.Order.Status,
		Items:    items,
		Currency: e.Order.Currency,
		Total:    e.Order.TotalAmount.StringFixed(2),
	})
}

func nameOr(name string) string {
	if name == "" {
		return "there"
	}
	return name
}
