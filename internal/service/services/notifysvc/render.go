package notifysvc

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/merchkit/storefront/internal/service/models/event"
	"github.com/merchkit/storefront/internal/service/models/order"
)

// Product names come from user-controlled input, so the fragment goes
// through html/template and gets escaped.
var notificationTmpl = template.Must(template.New("notification").Parse(`<h1>Thanks for your order!</h1>
<p>Order <strong>{{.OrderID}}</strong> was received{{if .CreatedAt}} at {{.CreatedAt}}{{end}}.</p>
{{if .Items}}<ul>
{{range .Items}}  <li>{{.Quantity}} &times; {{.ProductName}}</li>
{{end}}</ul>
{{end}}{{if .Total}}<p>Total: {{.Total}}</p>
{{end}}`))

type notificationView struct {
	OrderID   string
	CreatedAt string
	Items     []order.LineItem
	Total     string
}

// renderNotification builds the HTML email body for one order event.
func renderNotification(ev event.OrderEvent) (string, error) {
	view := notificationView{
		OrderID:   ev.OrderID,
		CreatedAt: ev.CreatedAt,
		Items:     ev.Items,
	}
	if ev.TotalCents != nil {
		view.Total = formatMinorUnits(*ev.TotalCents, ev.Currency)
	}

	var sb strings.Builder
	if err := notificationTmpl.Execute(&sb, view); err != nil {
		return "", fmt.Errorf("failed to render notification template: %w", err)
	}

	return sb.String(), nil
}

func formatMinorUnits(cents int64, currency string) string {
	amount := fmt.Sprintf("%d.%02d", cents/100, cents%100)
	if currency == "" {
		return amount
	}

	return amount + " " + currency
}
